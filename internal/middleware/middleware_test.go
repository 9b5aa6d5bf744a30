package middleware

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"

	chiMid "github.com/go-chi/chi/v5/middleware"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/pulheze/Hafen/internal/observability"
)

func newTestSessions(t *testing.T) *Sessions {
	t.Helper()
	s, err := NewSessions(SessionConfig{HashKey: []byte("0123456789abcdef0123456789abcdef")})
	require.NoError(t, err)
	return s
}

func findCookie(cookies []*http.Cookie, name string) *http.Cookie {
	for _, c := range cookies {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func TestSessionRoundTrip(t *testing.T) {
	sessions := newTestSessions(t)
	var seen *SessionData
	handler := sessions.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetSession(r)
		seen.SetPage("page-1")
		w.WriteHeader(http.StatusNoContent)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	cookie := findCookie(rec.Result().Cookies(), sessionCookieName)
	require.NotNil(t, cookie)
	require.True(t, cookie.HttpOnly)
	require.NotEmpty(t, seen.ID)
	require.NotEmpty(t, seen.CSRFToken)
	firstID := seen.ID

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookie)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	require.Equal(t, firstID, seen.ID)
	require.Equal(t, "page-1", seen.PageID)
	require.Nil(t, findCookie(rec.Result().Cookies(), sessionCookieName), "unchanged session should not be rewritten")
}

func TestSessionRejectsTamperedCookie(t *testing.T) {
	sessions := newTestSessions(t)
	var seen *SessionData
	handler := sessions.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetSession(r)
	}))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: sessionCookieName, Value: "forged"})
	handler.ServeHTTP(httptest.NewRecorder(), req)
	require.NotEmpty(t, seen.ID)
	require.Empty(t, seen.PageID)
}

func TestNewSessionsRejectsBadBlockKey(t *testing.T) {
	_, err := NewSessions(SessionConfig{BlockKey: []byte("short")})
	require.ErrorIs(t, err, ErrSessionConfig)
}

func csrfHandler() http.Handler {
	return CSRF(false)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
}

func TestCSRFAcceptsHeaderOrFormField(t *testing.T) {
	sd := &SessionData{ID: "s", CSRFToken: "tok"}
	cookie := &http.Cookie{Name: csrfCookieName, Value: "tok"}

	req := httptest.NewRequest(http.MethodPost, "/frete", nil)
	req = req.WithContext(WithSession(req.Context(), sd))
	req.Header.Set(CSRFHeader, "tok")
	req.AddCookie(cookie)
	rec := httptest.NewRecorder()
	csrfHandler().ServeHTTP(rec, req)
	require.Equal(t, http.StatusNoContent, rec.Code)

	form := url.Values{CSRFFormField: {"tok"}}
	req = httptest.NewRequest(http.MethodPost, "/contato", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req = req.WithContext(WithSession(req.Context(), sd))
	req.AddCookie(cookie)
	rec = httptest.NewRecorder()
	csrfHandler().ServeHTTP(rec, req)
	require.Equal(t, http.StatusNoContent, rec.Code)
}

func TestCSRFRejectsMissingOrWrongToken(t *testing.T) {
	sd := &SessionData{ID: "s", CSRFToken: "tok"}

	req := httptest.NewRequest(http.MethodPost, "/frete", nil)
	req = req.WithContext(WithSession(WithHTMX(req.Context(), true), sd))
	req.AddCookie(&http.Cookie{Name: csrfCookieName, Value: "tok"})
	rec := httptest.NewRecorder()
	csrfHandler().ServeHTTP(rec, req)
	require.Equal(t, http.StatusForbidden, rec.Code)
	require.Contains(t, rec.Header().Get("Content-Type"), "application/json")

	req = httptest.NewRequest(http.MethodPost, "/frete", nil)
	req = req.WithContext(WithSession(req.Context(), sd))
	req.Header.Set(CSRFHeader, "tok")
	rec = httptest.NewRecorder()
	csrfHandler().ServeHTTP(rec, req)
	require.Equal(t, http.StatusForbidden, rec.Code, "missing cookie")
}

func TestCSRFIssuesCookieOnSafeRequest(t *testing.T) {
	sd := &SessionData{ID: "s"}
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(WithSession(req.Context(), sd))
	rec := httptest.NewRecorder()
	csrfHandler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusNoContent, rec.Code)
	require.NotEmpty(t, sd.CSRFToken)
	c := findCookie(rec.Result().Cookies(), csrfCookieName)
	require.NotNil(t, c)
	require.Equal(t, sd.CSRFToken, c.Value)
}

func TestHTMXFlag(t *testing.T) {
	var is bool
	h := HTMX(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { is = IsHTMX(r.Context()) }))
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	req.Header.Set("HX-Request", "true")
	h.ServeHTTP(httptest.NewRecorder(), req)
	require.True(t, is)
}

func TestLoggerEmitsRequestEntry(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	h := observability.InjectLogger(zap.New(core))(chiMid.RequestID(Logger(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		observability.FromContext(r.Context()).Info("inside")
		w.WriteHeader(http.StatusTeapot)
	}))))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/healthz", nil))

	entries := logs.All()
	require.Len(t, entries, 2)
	require.Equal(t, "inside", entries[0].Message)
	require.NotEmpty(t, entries[0].ContextMap()["request_id"])
	require.Equal(t, "request", entries[1].Message)
	require.Equal(t, zap.WarnLevel, entries[1].Level)
	require.Equal(t, int64(http.StatusTeapot), entries[1].ContextMap()["status"])
	require.Equal(t, "/healthz", entries[1].ContextMap()["path"])
}

func TestResponseRecorderRunsHookOnce(t *testing.T) {
	calls := 0
	rec := httptest.NewRecorder()
	rw := NewResponseRecorder(rec)
	rw.SetBeforeWrite(func(w http.ResponseWriter) {
		calls++
		w.Header().Set("X-Hook", "1")
	})
	_, _ = rw.Write([]byte("a"))
	_, _ = rw.Write([]byte("b"))
	require.Equal(t, 1, calls)
	require.True(t, rw.Wrote())
	require.Equal(t, "1", rec.Header().Get("X-Hook"))
}

func TestAssetsWithCache(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "app.js"), []byte("console.log(1)"), 0o644))

	h := AssetsWithCache(dir, "/assets", false)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/assets/app.js", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	etag := rec.Header().Get("ETag")
	require.NotEmpty(t, etag)
	require.Contains(t, rec.Header().Get("Cache-Control"), "max-age")

	req := httptest.NewRequest(http.MethodGet, "/assets/app.js", nil)
	req.Header.Set("If-None-Match", etag)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusNotModified, rec.Code)

	rec = httptest.NewRecorder()
	AssetsWithCache(dir, "/assets", true).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/assets/app.js", nil))
	require.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
	require.Empty(t, rec.Header().Get("ETag"))

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/assets/", nil))
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestContentLanguage(t *testing.T) {
	rec := httptest.NewRecorder()
	ContentLanguage("pt")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})).
		ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, "pt-BR", rec.Header().Get("Content-Language"))
}
