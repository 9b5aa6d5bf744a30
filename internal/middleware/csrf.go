package middleware

import (
	"crypto/subtle"
	"net/http"
	"time"

	"github.com/google/uuid"
)

const (
	csrfCookieName = "csrf_token"
	// CSRFHeader is sent by htmx through hx-headers.
	CSRFHeader = "X-CSRF-Token"
	// CSRFFormField is the hidden input used by plain form posts.
	CSRFFormField = "csrf_token"
)

// CSRF issues a CSRF cookie and verifies modifying requests carry the token in
// the header or the form.
func CSRF(secure bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Tie token to session: use per-session token from session data
			s := GetSession(r)
			token := s.CSRFToken
			if token == "" { // initialize if missing
				token = newCSRFToken()
				s.CSRFToken = token
				s.MarkDirty()
			}

			// Ensure client has cookie with the same token (double submit cookie)
			needSet := true
			if c, err := r.Cookie(csrfCookieName); err == nil && c.Value == token {
				needSet = false
			}
			if needSet {
				http.SetCookie(w, &http.Cookie{
					Name:     csrfCookieName,
					Value:    token,
					Path:     "/",
					HttpOnly: false,
					Secure:   secure,
					SameSite: http.SameSiteLaxMode,
					Expires:  time.Now().Add(24 * time.Hour),
				})
			}

			if !isSafeMethod(r.Method) {
				sent := r.Header.Get(CSRFHeader)
				if sent == "" {
					sent = r.PostFormValue(CSRFFormField)
				}
				if !tokensEqual(sent, token) {
					writeError(w, r, http.StatusForbidden, "invalid CSRF token")
					return
				}
				if c, err := r.Cookie(csrfCookieName); err != nil || !tokensEqual(c.Value, token) {
					writeError(w, r, http.StatusForbidden, "invalid CSRF token")
					return
				}
			}

			next.ServeHTTP(w, r)
		})
	}
}

// CSRFToken returns the token templates embed in forms and hx-headers.
func CSRFToken(r *http.Request) string {
	return GetSession(r).CSRFToken
}

func newCSRFToken() string {
	return uuid.NewString()
}

func tokensEqual(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

func isSafeMethod(m string) bool {
	switch m {
	case http.MethodGet, http.MethodHead, http.MethodOptions, http.MethodTrace:
		return true
	default:
		return false
	}
}
