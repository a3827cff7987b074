// Package providers binds the application's services and controllers into
// the container and starts the in-process side-effect machinery.
package providers

import (
	"context"
	"sync"

	"github.com/shashiranjanraj/cafe/app/controllers"
	appgraphql "github.com/shashiranjanraj/cafe/app/graphql"
	"github.com/shashiranjanraj/cafe/app/listeners"
	"github.com/shashiranjanraj/cafe/app/services"
	"github.com/shashiranjanraj/cafe/pkg/container"
	"github.com/shashiranjanraj/cafe/pkg/event"
	"github.com/shashiranjanraj/cafe/pkg/sse"
	"github.com/shashiranjanraj/cafe/pkg/ws"
)

const (
	keyProducts       = "services.products"
	keyCategories     = "services.categories"
	keyCustomizations = "services.customizations"
	keyCart           = "services.cart"
	keyOrders         = "services.orders"
	keyHistory        = "services.history"
	keyDashboard      = "services.dashboard"
	keyUsers          = "services.users"
	keyEmail          = "services.email"
	keyStreams        = "sse.broker"
	keyHub            = "ws.hub"
)

var (
	registerOnce sync.Once
	bootOnce     sync.Once
)

// Register binds every service once. Safe to call repeatedly.
func Register() {
	registerOnce.Do(func() {
		container.Singleton(keyProducts, services.NewProductService)
		container.Singleton(keyCategories, services.NewCategoryService)
		container.Singleton(keyCustomizations, services.NewCustomizationService)
		container.Singleton(keyCart, services.NewCartService)
		container.Singleton(keyOrders, services.NewOrderService)
		container.Singleton(keyHistory, services.NewOrderHistoryService)
		container.Singleton(keyDashboard, services.NewDashboardService)
		container.Singleton(keyUsers, services.NewUserService)
		container.Singleton(keyEmail, services.NewEmailService)
		container.Singleton(keyStreams, func() *sse.Broker { return sse.NewBroker(16) })
		container.Singleton(keyHub, ws.NewHub)
	})
}

// Boot starts the admin feed hub and subscribes the event listeners. The
// hub stops when ctx is cancelled.
func Boot(ctx context.Context) {
	Register()
	bootOnce.Do(func() {
		go Hub().Run(ctx)
		listeners.New(Email(), Hub(), Streams()).Register()
	})
}

// ─── Accessors ───────────────────────────────────────────────────────────────

func Products() *services.ProductService {
	return container.Make[*services.ProductService](keyProducts)
}

func Categories() *services.CategoryService {
	return container.Make[*services.CategoryService](keyCategories)
}

func Customizations() *services.CustomizationService {
	return container.Make[*services.CustomizationService](keyCustomizations)
}

func Cart() *services.CartService { return container.Make[*services.CartService](keyCart) }

func Orders() *services.OrderService { return container.Make[*services.OrderService](keyOrders) }

func History() *services.OrderHistoryService {
	return container.Make[*services.OrderHistoryService](keyHistory)
}

func Dashboard() *services.DashboardService {
	return container.Make[*services.DashboardService](keyDashboard)
}

func Users() *services.UserService { return container.Make[*services.UserService](keyUsers) }

func Email() *services.EmailService { return container.Make[*services.EmailService](keyEmail) }

// Streams carries per-customer order status updates.
func Streams() *sse.Broker { return container.Make[*sse.Broker](keyStreams) }

// Hub is the admin live order feed.
func Hub() *ws.Hub { return container.Make[*ws.Hub](keyHub) }

// ─── Controllers ─────────────────────────────────────────────────────────────

// Controllers groups the HTTP controllers the routes mount.
type Controllers struct {
	Menu         *controllers.MenuController
	Cart         *controllers.CartController
	Order        *controllers.OrderController
	OrderHistory *controllers.OrderHistoryController
	Dashboard    *controllers.DashboardController
	Account      *controllers.AccountController
	Graph        *appgraphql.Menu
}

// Build wires controllers over the registered services.
func Build() Controllers {
	Register()
	return Controllers{
		Menu:         controllers.NewMenuController(Products(), Categories(), Customizations()),
		Cart:         controllers.NewCartController(Cart()),
		Order:        controllers.NewOrderController(Orders()),
		OrderHistory: controllers.NewOrderHistoryController(History(), Streams()),
		Dashboard:    controllers.NewDashboardController(Dashboard()),
		Account:      controllers.NewAccountController(Users()),
		Graph:        appgraphql.NewMenu(Products(), Categories(), Customizations()),
	}
}

// Reset forgets every binding and listener. Tests call it between runs.
func Reset() {
	container.Reset()
	event.Flush()
	registerOnce = sync.Once{}
	bootOnce = sync.Once{}
}
