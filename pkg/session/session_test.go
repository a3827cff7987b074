package session

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shashiranjanraj/cafe/pkg/cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// serve runs h behind the middleware and returns the cookies it set.
func serve(t *testing.T, h func(*Session, http.ResponseWriter), cookies ...*http.Cookie) []*http.Cookie {
	t.Helper()
	var handled bool
	mw := Middleware(DefaultOptions())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handled = true
		h(FromCtx(r), w)
	}))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	mw.ServeHTTP(rec, req)
	require.True(t, handled)
	return rec.Result().Cookies()
}

func TestSessionPersistsAcrossRequests(t *testing.T) {
	t.Cleanup(cache.Flush)

	cookies := serve(t, func(s *Session, w http.ResponseWriter) {
		s.Set(UserIDKey, uint(7))
		s.Set(RoleKey, "admin")
		require.NoError(t, s.Save(w))
	})
	require.Len(t, cookies, 1)
	assert.Equal(t, "cafe_session", cookies[0].Name)
	assert.True(t, cookies[0].HttpOnly)

	var id uint
	var role string
	serve(t, func(s *Session, _ http.ResponseWriter) {
		id, _ = s.GetUint(UserIDKey)
		role, _ = s.GetString(RoleKey)
	}, cookies[0])

	assert.Equal(t, uint(7), id)
	assert.Equal(t, "admin", role)
}

func TestUnknownCookieIsNotAdopted(t *testing.T) {
	t.Cleanup(cache.Flush)

	planted := &http.Cookie{Name: "cafe_session", Value: "attacker-chosen"}
	cookies := serve(t, func(s *Session, w http.ResponseWriter) {
		assert.NotEqual(t, "attacker-chosen", s.ID())
		s.Set(UserIDKey, uint(1))
		require.NoError(t, s.Save(w))
	}, planted)

	require.Len(t, cookies, 1)
	assert.NotEqual(t, "attacker-chosen", cookies[0].Value)
}

func TestRegenerateDropsPreviousID(t *testing.T) {
	t.Cleanup(cache.Flush)

	first := serve(t, func(s *Session, w http.ResponseWriter) {
		s.Set("cart", "3 items")
		require.NoError(t, s.Save(w))
	})
	require.Len(t, first, 1)

	second := serve(t, func(s *Session, w http.ResponseWriter) {
		s.Regenerate()
		s.Set(UserIDKey, uint(2))
		require.NoError(t, s.Save(w))
	}, first[0])
	require.Len(t, second, 1)
	assert.NotEqual(t, first[0].Value, second[0].Value)

	var data map[string]any
	assert.False(t, cache.Get(storeKey(first[0].Value), &data))

	var cart string
	serve(t, func(s *Session, _ http.ResponseWriter) {
		cart, _ = s.GetString("cart")
	}, second[0])
	assert.Equal(t, "3 items", cart)
}

func TestInvalidateExpiresCookie(t *testing.T) {
	t.Cleanup(cache.Flush)

	cookies := serve(t, func(s *Session, w http.ResponseWriter) {
		s.Set(UserIDKey, uint(9))
		require.NoError(t, s.Save(w))
	})
	require.Len(t, cookies, 1)

	out := serve(t, func(s *Session, w http.ResponseWriter) {
		s.Invalidate()
		require.NoError(t, s.Save(w))
	}, cookies[0])
	require.Len(t, out, 1)
	assert.Equal(t, -1, out[0].MaxAge)

	var data map[string]any
	assert.False(t, cache.Get(storeKey(cookies[0].Value), &data))
}

func TestSaveWithoutChangesWritesNothing(t *testing.T) {
	cookies := serve(t, func(s *Session, w http.ResponseWriter) {
		require.NoError(t, s.Save(w))
	})
	assert.Empty(t, cookies)
}

func TestGetUintRejectsNegatives(t *testing.T) {
	s := &Session{data: map[string]any{"a": float64(-1), "b": float64(4), "c": "x"}}

	_, ok := s.GetUint("a")
	assert.False(t, ok)
	n, ok := s.GetUint("b")
	assert.True(t, ok)
	assert.Equal(t, uint(4), n)
	_, ok = s.GetUint("c")
	assert.False(t, ok)
}
