package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/securecookie"
	"go.uber.org/zap"

	"github.com/pulheze/Hafen/internal/observability"
)

const (
	sessionCookieName = "HAFEN_SESSION"
	sessionLifetime   = 24 * time.Hour
)

// ErrSessionConfig indicates the session keys are unusable.
var ErrSessionConfig = errors.New("session: invalid config")

// SessionData is the cookie payload. The cart itself lives server-side under PageID.
type SessionData struct {
	ID        string    `json:"id"`
	PageID    string    `json:"page,omitempty"`
	CSRFToken string    `json:"csrf,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
	// internal dirty flag; not serialized
	dirty bool
}

// SessionConfig controls cookie encoding.
type SessionConfig struct {
	HashKey  []byte
	BlockKey []byte
	Secure   bool
	Now      func() time.Time
}

// Sessions encodes SessionData into a signed (and optionally encrypted) cookie.
type Sessions struct {
	codec  *securecookie.SecureCookie
	secure bool
	now    func() time.Time
}

// NewSessions builds the cookie codec. An empty hash key gets a process-ephemeral
// one so local runs work without configuration.
func NewSessions(cfg SessionConfig) (*Sessions, error) {
	hashKey := cfg.HashKey
	if len(hashKey) == 0 {
		hashKey = securecookie.GenerateRandomKey(32)
		if hashKey == nil {
			return nil, fmt.Errorf("%w: unable to generate hash key", ErrSessionConfig)
		}
	}
	if n := len(cfg.BlockKey); n != 0 && n != 16 && n != 24 && n != 32 {
		return nil, fmt.Errorf("%w: block key must be 16, 24 or 32 bytes", ErrSessionConfig)
	}
	var blockKey []byte
	if len(cfg.BlockKey) > 0 {
		blockKey = cfg.BlockKey
	}
	codec := securecookie.New(hashKey, blockKey)
	codec.SetSerializer(securecookie.JSONEncoder{})
	codec.MaxAge(int(sessionLifetime.Seconds()))

	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &Sessions{codec: codec, secure: cfg.Secure, now: now}, nil
}

// Middleware loads or initializes a session and stores it in request context.
func (s *Sessions) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sd, fromCookie := s.read(r)
		if sd.ID == "" {
			sd.ID = uuid.NewString()
			sd.CreatedAt = s.now().UTC()
			sd.UpdatedAt = sd.CreatedAt
			sd.CSRFToken = newCSRFToken()
			sd.dirty = true
		}
		ctx := context.WithValue(r.Context(), ctxKeySession, sd)
		rw := NewResponseRecorder(w)
		// ensure cookie is set just before first write if needed
		rw.SetBeforeWrite(func(w http.ResponseWriter) {
			if sd.dirty || !fromCookie {
				s.write(w, r, sd)
			}
		})
		next.ServeHTTP(rw, r.WithContext(ctx))
		// If nothing was written yet (e.g., HEAD), persist cookie now
		if !rw.Wrote() && (sd.dirty || !fromCookie) {
			s.write(w, r, sd)
		}
	})
}

// GetSession returns session data from context
func GetSession(r *http.Request) *SessionData {
	if v := r.Context().Value(ctxKeySession); v != nil {
		if sd, ok := v.(*SessionData); ok {
			return sd
		}
	}
	return &SessionData{}
}

// WithSession attaches sd to ctx. Intended for handler tests.
func WithSession(ctx context.Context, sd *SessionData) context.Context {
	return context.WithValue(ctx, ctxKeySession, sd)
}

// MarkDirty flags the session for writing at end of request
func (sd *SessionData) MarkDirty() { sd.dirty = true; sd.UpdatedAt = time.Now().UTC() }

// SetPage binds the session to a page key.
func (sd *SessionData) SetPage(id string) {
	if sd.PageID != id {
		sd.PageID = id
		sd.MarkDirty()
	}
}

func (s *Sessions) read(r *http.Request) (*SessionData, bool) {
	c, err := r.Cookie(sessionCookieName)
	if err != nil || c.Value == "" {
		return &SessionData{}, false
	}
	var sd SessionData
	if err := s.codec.Decode(sessionCookieName, c.Value, &sd); err != nil {
		observability.FromContext(r.Context()).Debug("session cookie rejected", zap.Error(err))
		return &SessionData{}, false
	}
	return &sd, true
}

func (s *Sessions) write(w http.ResponseWriter, r *http.Request, sd *SessionData) {
	encoded, err := s.codec.Encode(sessionCookieName, sd)
	if err != nil {
		observability.FromContext(r.Context()).Error("session encode failed", zap.Error(err))
		return
	}
	// httpOnly to prevent JS access
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    encoded,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
		Expires:  s.now().Add(sessionLifetime),
		MaxAge:   int(sessionLifetime.Seconds()),
	})
}
