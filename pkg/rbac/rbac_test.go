package rbac_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/cafe/pkg/auth"
	"github.com/shashiranjanraj/cafe/pkg/middleware"
	"github.com/shashiranjanraj/cafe/pkg/rbac"
)

func call(t *testing.T, guard func(http.Handler) http.Handler, role string) int {
	t.Helper()
	h := middleware.Authenticate(guard(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})))
	req := httptest.NewRequest(http.MethodPost, "/Menu/AddProduct", nil)
	if role != "" {
		token, err := auth.GenerateToken(9, role)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec.Code
}

func TestPolicyCan(t *testing.T) {
	p := rbac.NewPolicy().
		Grant("admin", rbac.Wildcard).
		Grant("barista", "orders.manage")

	assert.True(t, p.Allows("admin", "menu.manage"))
	assert.True(t, p.Allows("barista", "orders.manage"))
	assert.False(t, p.Allows("barista", "menu.manage"))
	assert.False(t, p.Allows("customer", "orders.manage"))

	assert.Equal(t, http.StatusOK, call(t, p.Can("orders.manage"), "barista"))
	assert.Equal(t, http.StatusForbidden, call(t, p.Can("orders.manage", "menu.manage"), "barista"))
	assert.Equal(t, http.StatusOK, call(t, p.Can("orders.manage", "menu.manage"), "admin"))
	assert.Equal(t, http.StatusForbidden, call(t, p.Can("orders.manage"), ""))
}

func TestHasRole(t *testing.T) {
	assert.Equal(t, http.StatusOK, call(t, rbac.HasRole("admin"), "admin"))
	assert.Equal(t, http.StatusForbidden, call(t, rbac.HasRole("admin"), "customer"))
}
