// Package session keeps per-browser state in pkg/cache (Redis, or memory
// when Redis is down). Sign-in binds the user id and role here so browser
// clients without a bearer token stay authenticated.
//
//	sess := session.FromCtx(r)
//	sess.Regenerate()
//	sess.Set(session.UserIDKey, user.ID)
//	sess.Save(w)
package session

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/shashiranjanraj/cafe/pkg/cache"
	"github.com/shashiranjanraj/cafe/pkg/logger"
)

// Keys written at sign-in.
const (
	UserIDKey = "user_id"
	RoleKey   = "role"
)

// ─── Options ─────────────────────────────────────────────────────────────────

type Options struct {
	CookieName string
	TTL        time.Duration
	HTTPOnly   bool
	Secure     bool
	SameSite   http.SameSite
	Path       string
}

func DefaultOptions() Options {
	return Options{
		CookieName: "cafe_session",
		TTL:        2 * time.Hour,
		HTTPOnly:   true,
		SameSite:   http.SameSiteLaxMode,
		Path:       "/",
	}
}

// ─── Session ─────────────────────────────────────────────────────────────────

// Session is the handle for one request. Changes are only persisted by Save.
type Session struct {
	id      string
	stale   string // previous id dropped on Save after Regenerate
	data    map[string]any
	opts    Options
	dirty   bool
	expired bool
}

type ctxKey struct{}

func storeKey(id string) string { return "cafe:session:" + id }

func mint() string {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		// crypto/rand does not fail on supported platforms.
		panic(fmt.Sprintf("session: rand: %v", err))
	}
	return hex.EncodeToString(b)
}

func fresh(opts Options) *Session {
	return &Session{id: mint(), data: map[string]any{}, opts: opts}
}

// resume loads the session named by the cookie. Unknown ids are never
// adopted, so a client cannot pick its own session id.
func resume(r *http.Request, opts Options) *Session {
	cookie, err := r.Cookie(opts.CookieName)
	if err != nil || cookie.Value == "" {
		return fresh(opts)
	}
	var data map[string]any
	if !cache.Get(storeKey(cookie.Value), &data) || data == nil {
		return fresh(opts)
	}
	return &Session{id: cookie.Value, data: data, opts: opts}
}

func (s *Session) ID() string { return s.id }

func (s *Session) Set(key string, value any) {
	s.data[key] = value
	s.dirty = true
}

func (s *Session) Get(key string) (any, bool) {
	v, ok := s.data[key]
	return v, ok
}

func (s *Session) GetString(key string) (string, bool) {
	v, ok := s.data[key].(string)
	return v, ok
}

// GetUint reads an id. Values that came back through JSON are float64.
func (s *Session) GetUint(key string) (uint, bool) {
	switch n := s.data[key].(type) {
	case float64:
		if n < 0 {
			return 0, false
		}
		return uint(n), true
	case uint:
		return n, true
	case int:
		if n < 0 {
			return 0, false
		}
		return uint(n), true
	}
	return 0, false
}

func (s *Session) Delete(key string) {
	delete(s.data, key)
	s.dirty = true
}

// Regenerate moves the data to a new id. Call it whenever privileges change
// (sign-in) so an id seen before authentication is useless afterwards.
func (s *Session) Regenerate() {
	if s.stale == "" {
		s.stale = s.id
	}
	s.id = mint()
	s.dirty = true
}

// Invalidate clears the data and expires the cookie on Save.
func (s *Session) Invalidate() {
	s.data = map[string]any{}
	s.expired = true
	s.dirty = true
}

// Save writes the data to the store and sets (or expires) the cookie.
func (s *Session) Save(w http.ResponseWriter) error {
	if !s.dirty {
		return nil
	}
	if s.stale != "" {
		if err := cache.Forget(storeKey(s.stale)); err != nil {
			logger.Warn("session: drop previous id", "error", err)
		}
		s.stale = ""
	}

	cookie := &http.Cookie{
		Name:     s.opts.CookieName,
		Path:     s.opts.Path,
		HttpOnly: s.opts.HTTPOnly,
		Secure:   s.opts.Secure,
		SameSite: s.opts.SameSite,
	}

	if s.expired {
		if err := cache.Forget(storeKey(s.id)); err != nil {
			return fmt.Errorf("session: forget: %w", err)
		}
		cookie.MaxAge = -1
		http.SetCookie(w, cookie)
		s.dirty = false
		return nil
	}

	raw, err := json.Marshal(s.data)
	if err != nil {
		return fmt.Errorf("session: marshal: %w", err)
	}
	if err := cache.Set(storeKey(s.id), json.RawMessage(raw), s.opts.TTL); err != nil {
		return fmt.Errorf("session: store: %w", err)
	}

	cookie.Value = s.id
	cookie.MaxAge = int(s.opts.TTL.Seconds())
	http.SetCookie(w, cookie)
	s.dirty = false
	return nil
}

// ─── Middleware ──────────────────────────────────────────────────────────────

// Middleware attaches the request's session to its context.
func Middleware(opts Options) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := context.WithValue(r.Context(), ctxKey{}, resume(r, opts))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// FromCtx returns the attached session, or a detached empty one.
func FromCtx(r *http.Request) *Session {
	if s, ok := r.Context().Value(ctxKey{}).(*Session); ok {
		return s
	}
	return fresh(DefaultOptions())
}
