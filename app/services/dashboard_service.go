package services

import (
	"context"
	"time"

	"github.com/shashiranjanraj/cafe/app/models"
	"github.com/shashiranjanraj/cafe/app/repositories"
	"github.com/shashiranjanraj/cafe/config"
	"github.com/shashiranjanraj/cafe/pkg/cache"
	"github.com/shashiranjanraj/cafe/pkg/collection"
	"github.com/shashiranjanraj/cafe/pkg/logger"
)

const (
	recentOrdersLimit = 10
	dashboardCacheKey = "dashboard:snapshot"
)

// RecentOrder is one row of the dashboard's "today" list.
type RecentOrder struct {
	ID            uint               `json:"id"`
	InvoiceNumber string             `json:"invoiceNumber"`
	CustomerName  string             `json:"customerName"`
	OrderDate     time.Time          `json:"orderDate"`
	Status        models.OrderStatus `json:"status"`
	TotalPrice    float64            `json:"totalPrice"`
}

type DashboardSnapshot struct {
	RevenueToday     float64       `json:"revenueToday"`
	TotalRevenue     float64       `json:"totalRevenue"`
	RevenueChangePct float64       `json:"revenueChangePct"`
	OrdersToday      int64         `json:"ordersToday"`
	ActiveOrders     int64         `json:"activeOrders"`
	CompletedToday   int64         `json:"completedToday"`
	CancelledToday   int64         `json:"cancelledToday"`
	OrdersChangePct  float64       `json:"ordersChangePct"`
	RecentOrders     []RecentOrder `json:"recentOrders"`
}

type DashboardService struct {
	orders   *repositories.OrderRepository
	now      func() time.Time
	cacheTTL time.Duration
}

func NewDashboardService() *DashboardService {
	return &DashboardService{
		orders:   repositories.NewOrderRepository(),
		now:      time.Now,
		cacheTTL: config.Duration("DASHBOARD_CACHE_TTL", 0),
	}
}

func (s *DashboardService) WithClock(now func() time.Time) *DashboardService {
	s.now = now
	return s
}

// GetSnapshot computes today's figures in the configured timezone. With
// DASHBOARD_CACHE_TTL set the result is cached that long; status changes
// and new orders invalidate it.
func (s *DashboardService) GetSnapshot(ctx context.Context) (*DashboardSnapshot, error) {
	if s.cacheTTL <= 0 {
		return s.compute(ctx)
	}
	var snap DashboardSnapshot
	err := cache.Remember(dashboardCacheKey, s.cacheTTL, &snap, func() (interface{}, error) {
		return s.compute(ctx)
	})
	if err != nil {
		return nil, err
	}
	return &snap, nil
}

// InvalidateDashboard drops the cached snapshot.
func InvalidateDashboard() {
	if err := cache.Forget(dashboardCacheKey); err != nil {
		logger.Warn("services: dashboard cache invalidation failed", "error", err)
	}
}

func (s *DashboardService) compute(ctx context.Context) (*DashboardSnapshot, error) {
	now := s.now().In(config.Location())
	todayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	tomorrow := todayStart.AddDate(0, 0, 1)
	yesterday := todayStart.AddDate(0, 0, -1)

	today := repositories.OrderFilter{From: todayStart, To: tomorrow}
	prev := repositories.OrderFilter{From: yesterday, To: todayStart}
	notCancelled := []models.OrderStatus{models.StatusCancelled}

	var (
		snap        DashboardSnapshot
		revenuePrev float64
		ordersPrev  int64
	)

	steps := []func() error{
		func() (e error) {
			snap.RevenueToday, e = s.orders.Revenue(ctx, withExclude(today, notCancelled))
			return
		},
		func() (e error) {
			snap.TotalRevenue, e = s.orders.Revenue(ctx, repositories.OrderFilter{Exclude: notCancelled})
			return
		},
		func() (e error) {
			revenuePrev, e = s.orders.Revenue(ctx, withExclude(prev, notCancelled))
			return
		},
		func() (e error) {
			snap.OrdersToday, e = s.orders.Count(ctx, today)
			return
		},
		func() (e error) {
			ordersPrev, e = s.orders.Count(ctx, prev)
			return
		},
		func() (e error) {
			snap.ActiveOrders, e = s.orders.Count(ctx, repositories.OrderFilter{
				Exclude: []models.OrderStatus{models.StatusServed, models.StatusCompleted, models.StatusCancelled},
			})
			return
		},
		func() (e error) {
			f := today
			f.Statuses = []models.OrderStatus{models.StatusServed, models.StatusCompleted}
			snap.CompletedToday, e = s.orders.Count(ctx, f)
			return
		},
		func() (e error) {
			f := today
			f.Statuses = []models.OrderStatus{models.StatusCancelled}
			snap.CancelledToday, e = s.orders.Count(ctx, f)
			return
		},
	}
	for _, step := range steps {
		if err := step(); err != nil {
			return nil, fault(ctx, "dashboard.snapshot", "", err)
		}
	}

	recent, err := s.orders.Recent(ctx, today, recentOrdersLimit)
	if err != nil {
		return nil, fault(ctx, "dashboard.recent", "", err)
	}

	snap.RevenueToday = models.RoundMoney(snap.RevenueToday)
	snap.TotalRevenue = models.RoundMoney(snap.TotalRevenue)
	snap.RevenueChangePct = percentChange(snap.RevenueToday, revenuePrev)
	snap.OrdersChangePct = percentChange(float64(snap.OrdersToday), float64(ordersPrev))
	snap.RecentOrders = collection.Map(recent, func(o models.Order) RecentOrder {
		return RecentOrder{
			ID:            o.ID,
			InvoiceNumber: o.InvoiceNumber,
			CustomerName:  o.CustomerName(),
			OrderDate:     o.OrderDate,
			Status:        o.Status,
			TotalPrice:    o.TotalPrice,
		}
	})
	return &snap, nil
}

func withExclude(f repositories.OrderFilter, statuses []models.OrderStatus) repositories.OrderFilter {
	f.Exclude = statuses
	return f
}

// percentChange is 0 when there is no baseline.
func percentChange(today, yesterday float64) float64 {
	if yesterday == 0 {
		return 0
	}
	return models.RoundMoney((today - yesterday) / yesterday * 100)
}
