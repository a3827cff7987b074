package kernel_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shashiranjanraj/cafe/app/models"
	"github.com/shashiranjanraj/cafe/app/providers"
	"github.com/shashiranjanraj/cafe/app/repositories"
	"github.com/shashiranjanraj/cafe/internal/kernel"
	"github.com/shashiranjanraj/cafe/pkg/testkit"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "github.com/shashiranjanraj/cafe/database/migrations"
)

func boot(t *testing.T) http.Handler {
	t.Helper()
	testkit.FreshDB(t)
	providers.Reset()
	t.Cleanup(providers.Reset)

	users := repositories.NewUserRepository()
	for _, u := range []models.User{
		{Email: "admin@cafe.test", Password: "x", Role: models.RoleAdmin, Nickname: "Admin"},
		{Email: "bo@cafe.test", Password: "x", Role: models.RoleCustomer, FirstName: "Bo", LastName: "Lin"},
	} {
		u := u
		require.NoError(t, users.Create(context.Background(), &u))
	}
	return kernel.NewHTTPKernel().Handler()
}

// The scenarios run in file order against one database: the admin builds
// the menu, the customer orders, the admin moves the order along.
func TestOrderingFlow(t *testing.T) {
	testkit.RunDir(t, boot(t), "testdata")
}

func TestRouteTable(t *testing.T) {
	k := kernel.NewHTTPKernel()

	names := map[string]string{}
	for _, r := range k.Router().Routes() {
		names[r.Name] = r.Method + " " + r.Path
	}
	assert.Equal(t, "POST /Menu/AddProduct", names["menu.products.add"])
	assert.Equal(t, "GET /OrderHistory/StatusStream", names["history.stream"])
	assert.Equal(t, "GET /ws/orders", names["feed.orders"])
	assert.Equal(t, "* /graphql", names["graphql"])
	assert.Contains(t, names, "metrics")
}

func TestHealthReportsDatabase(t *testing.T) {
	h := boot(t)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"database":"ok"`)
}

func TestRequestIDIsEchoed(t *testing.T) {
	h := boot(t)

	req := httptest.NewRequest(http.MethodGet, "/Menu/GetAllCategories", nil)
	req.Header.Set("X-Request-ID", "req-123")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, "req-123", rec.Header().Get("X-Request-ID"))
	assert.Contains(t, rec.Body.String(), `"success":true`)
}
