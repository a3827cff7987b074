package routes

import (
	"net/http"

	"github.com/shashiranjanraj/cafe/app/models"
	"github.com/shashiranjanraj/cafe/app/providers"
	"github.com/shashiranjanraj/cafe/pkg/ctx"
	cafegql "github.com/shashiranjanraj/cafe/pkg/graphql"
	"github.com/shashiranjanraj/cafe/pkg/logger"
	"github.com/shashiranjanraj/cafe/pkg/metrics"
	"github.com/shashiranjanraj/cafe/pkg/middleware"
	"github.com/shashiranjanraj/cafe/pkg/rbac"
	"github.com/shashiranjanraj/cafe/pkg/response"
	"github.com/shashiranjanraj/cafe/pkg/router"
)

func RegisterAPI(r *router.Router) {
	c := providers.Build()
	rbac.Grant(models.RoleAdmin, rbac.Wildcard)

	// ─── Menu ────────────────────────────────────────────────────────────

	menu := r.Group("/Menu")
	menu.Get("/GetAllProducts", "menu.products.index", ctx.Wrap(c.Menu.GetAllProducts))
	menu.Get("/GetAllCategories", "menu.categories.index", ctx.Wrap(c.Menu.GetAllCategories))
	menu.Get("/GetAllCustomizations", "menu.customizations.index", ctx.Wrap(c.Menu.GetAllCustomizations))

	menuAdmin := menu.Group("", rbac.Can(models.PermManageMenu))
	menuAdmin.Post("/AddProduct", "menu.products.add", ctx.Wrap(c.Menu.AddProduct))
	menuAdmin.Post("/UpdateProduct", "menu.products.update", ctx.Wrap(c.Menu.UpdateProduct))
	menuAdmin.Post("/DeleteProduct", "menu.products.delete", ctx.Wrap(c.Menu.DeleteProduct))
	menuAdmin.Post("/UploadProductImage", "menu.products.image", ctx.Wrap(c.Menu.UploadProductImage))
	menuAdmin.Post("/AddCategory", "menu.categories.add", ctx.Wrap(c.Menu.AddCategory))
	menuAdmin.Post("/UpdateCategory", "menu.categories.update", ctx.Wrap(c.Menu.UpdateCategory))
	menuAdmin.Post("/DeleteCategory", "menu.categories.delete", ctx.Wrap(c.Menu.DeleteCategory))
	menuAdmin.Post("/ReorderCategories", "menu.categories.reorder", ctx.Wrap(c.Menu.ReorderCategories))
	menuAdmin.Post("/AddCustomization", "menu.customizations.add", ctx.Wrap(c.Menu.AddCustomization))
	menuAdmin.Post("/UpdateCustomization", "menu.customizations.update", ctx.Wrap(c.Menu.UpdateCustomization))
	menuAdmin.Post("/DeleteCustomization", "menu.customizations.delete", ctx.Wrap(c.Menu.DeleteCustomization))

	// ─── Cart ────────────────────────────────────────────────────────────

	cart := r.Group("/Cart", middleware.AuthMiddleware)
	cart.Get("/GetCart", "cart.get", ctx.Wrap(c.Cart.GetCart))
	cart.Post("/AddToCart", "cart.add", ctx.Wrap(c.Cart.AddToCart))
	cart.Post("/UpdateQuantity", "cart.quantity", ctx.Wrap(c.Cart.UpdateQuantity))
	cart.Post("/RemoveFromCart", "cart.remove", ctx.Wrap(c.Cart.RemoveFromCart))
	cart.Post("/ClearCart", "cart.clear", ctx.Wrap(c.Cart.ClearCart))

	// ─── Orders ──────────────────────────────────────────────────────────

	order := r.Group("/Order", middleware.AuthMiddleware)
	order.Post("/PlaceOrder", "orders.place", ctx.Wrap(c.Order.PlaceOrder))

	orderAdmin := order.Group("", rbac.Can(models.PermManageOrders))
	orderAdmin.Get("/GetAllOrders", "orders.index", ctx.Wrap(c.Order.GetAllOrders))
	orderAdmin.Get("/GetOrder", "orders.show", ctx.Wrap(c.Order.GetOrder))
	orderAdmin.Post("/UpdateOrderStatus", "orders.status", ctx.Wrap(c.Order.UpdateOrderStatus))
	orderAdmin.Post("/CancelOrder", "orders.cancel", ctx.Wrap(c.Order.CancelOrder))

	history := r.Group("/OrderHistory", middleware.AuthMiddleware)
	history.Get("/GetOrders", "history.index", ctx.Wrap(c.OrderHistory.GetOrders))
	history.Get("/GetOrderDetails", "history.show", ctx.Wrap(c.OrderHistory.GetOrderDetails))
	history.Get("/GetOrderStatuses", "history.statuses", ctx.Wrap(c.OrderHistory.GetOrderStatuses))
	history.Get("/StatusStream", "history.stream", ctx.Wrap(c.OrderHistory.StatusStream))

	r.Get("/Dashboard/GetSnapshot", "dashboard.snapshot", ctx.Wrap(c.Dashboard.GetSnapshot),
		middleware.AuthMiddleware, rbac.Can(models.PermViewDashboard))

	// ─── Account ─────────────────────────────────────────────────────────

	account := r.Group("/Account")
	account.Post("/Login", "account.login", ctx.Wrap(c.Account.Login))
	account.Post("/Register", "account.register", ctx.Wrap(c.Account.Register))
	account.Post("/Refresh", "account.refresh", ctx.Wrap(c.Account.Refresh))

	signedIn := account.Group("", middleware.AuthMiddleware)
	signedIn.Post("/Logout", "account.logout", ctx.Wrap(c.Account.Logout))
	signedIn.Get("/Profile", "account.profile", ctx.Wrap(c.Account.Profile))
	signedIn.Post("/UpdateProfile", "account.profile.update", ctx.Wrap(c.Account.UpdateProfile))

	// ─── Feeds and ops ───────────────────────────────────────────────────

	hub := providers.Hub()
	hub.AllowOrigins(middleware.CORSFromConfig().AllowedOrigins)
	r.Get("/ws/orders", "feed.orders", hub.ServeHTTP, middleware.AuthMiddleware, rbac.Can(models.PermManageOrders))

	if schema, err := c.Graph.Schema(); err != nil {
		logger.Error("routes: graphql schema", "error", err)
	} else {
		r.Handle("/graphql", "graphql", cafegql.Handler(schema))
	}

	r.Get("/metrics", "metrics", metrics.Handler())
	r.Get("/health", "health", health)
}

func health(w http.ResponseWriter, r *http.Request) {
	checks := map[string]string{}
	healthy := true
	for name, probe := range providers.Probes() {
		if err := probe(r.Context()); err != nil {
			checks[name] = err.Error()
			healthy = false
			continue
		}
		checks[name] = "ok"
	}

	if !healthy {
		response.Error(w, http.StatusServiceUnavailable, "unhealthy")
		return
	}
	response.Success(w, checks)
}
