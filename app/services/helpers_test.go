package services_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shashiranjanraj/cafe/app/models"
	"github.com/shashiranjanraj/cafe/app/repositories"
	"github.com/shashiranjanraj/cafe/pkg/testkit"
	"github.com/stretchr/testify/require"

	_ "github.com/shashiranjanraj/cafe/database/migrations"
)

func setup(t *testing.T) context.Context {
	t.Helper()
	testkit.FreshDB(t)
	return context.Background()
}

func seedUser(t *testing.T, ctx context.Context, email string) models.User {
	t.Helper()
	u := models.User{Email: email, Password: "x", FirstName: "Ana", LastName: "Lima", Role: models.RoleCustomer}
	require.NoError(t, repositories.NewUserRepository().Create(ctx, &u))
	return u
}

func seedProduct(t *testing.T, ctx context.Context, name string, price float64, stock int) models.Product {
	t.Helper()
	p := models.Product{
		Name:        name,
		BasePrice:   price,
		Status:      models.ProductAvailable,
		Stock:       stock,
		IsAvailable: true,
	}
	require.NoError(t, repositories.NewProductRepository().Create(ctx, &p))
	return p
}

func seedCategory(t *testing.T, ctx context.Context, name string) models.Category {
	t.Helper()
	c := models.Category{Name: name, IsActive: true}
	require.NoError(t, repositories.NewCategoryRepository().Create(ctx, &c))
	return c
}

func seedOrder(t *testing.T, ctx context.Context, userID uint, at time.Time, status models.OrderStatus, total float64) models.Order {
	t.Helper()
	o := models.Order{
		UserID:        userID,
		InvoiceNumber: "SEED0000",
		OrderDate:     at.UTC(),
		Status:        status,
		TotalPrice:    total,
		PaymentMethod: "Cash",
	}
	require.NoError(t, repositories.NewOrderRepository().Create(ctx, &o))
	return o
}

func latte(productID uint, qty int) models.CartItem {
	return models.CartItem{
		ProductID:   productID,
		ProductName: "Latte",
		UnitPrice:   120,
		Quantity:    qty,
		LineOptions: models.LineOptions{Size: "Medium", MilkType: "Oat"},
	}
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

type emitted struct {
	Name    string
	Payload interface{}
}

// recorder captures events instead of dispatching them.
type recorder struct {
	mu     sync.Mutex
	events []emitted
}

func (r *recorder) emit(name string, payload interface{}) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, emitted{Name: name, Payload: payload})
}

func (r *recorder) names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.Name)
	}
	return out
}
