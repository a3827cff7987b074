package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/shashiranjanraj/cafe/app/models"
	"github.com/shashiranjanraj/cafe/app/repositories"
	"github.com/shashiranjanraj/cafe/app/services"
	"github.com/shashiranjanraj/cafe/pkg/orm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddItemMergesIdenticalLines(t *testing.T) {
	ctx := setup(t)
	user := seedUser(t, ctx, "ana@example.com")
	p := seedProduct(t, ctx, "Latte", 120, 10)
	cart := services.NewCartService()

	require.NoError(t, cart.AddItem(ctx, user.ID, latte(p.ID, 2)))
	require.NoError(t, cart.AddItem(ctx, user.ID, latte(p.ID, 1)))

	items, err := cart.GetItems(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, 3, items[0].Quantity)
	assert.Equal(t, 360.0, items[0].TotalPrice)
}

func TestAddItemKeepsDifferentCustomizationsApart(t *testing.T) {
	ctx := setup(t)
	user := seedUser(t, ctx, "ana@example.com")
	p := seedProduct(t, ctx, "Latte", 120, 10)
	cart := services.NewCartService()

	oat := latte(p.ID, 1)
	whole := latte(p.ID, 1)
	whole.MilkType = "Whole"

	require.NoError(t, cart.AddItem(ctx, user.ID, oat))
	require.NoError(t, cart.AddItem(ctx, user.ID, whole))

	items, err := cart.GetItems(ctx, user.ID)
	require.NoError(t, err)
	assert.Len(t, items, 2)
}

func TestAddItemRejectsNonPositiveQuantity(t *testing.T) {
	ctx := setup(t)
	err := services.NewCartService().AddItem(ctx, 1, latte(1, 0))
	assert.ErrorIs(t, err, services.ErrInvalidData)
}

func TestSetQuantityZeroRemovesLine(t *testing.T) {
	ctx := setup(t)
	user := seedUser(t, ctx, "ana@example.com")
	latteP := seedProduct(t, ctx, "Latte", 120, 10)
	mocha := seedProduct(t, ctx, "Mocha", 140, 10)
	cart := services.NewCartService()

	require.NoError(t, cart.AddItem(ctx, user.ID, latte(latteP.ID, 2)))
	m := latte(mocha.ID, 1)
	m.ProductName = "Mocha"
	require.NoError(t, cart.AddItem(ctx, user.ID, m))

	require.NoError(t, cart.SetQuantity(ctx, user.ID, latteP.ID, 0))

	items, err := cart.GetItems(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, mocha.ID, items[0].ProductID)
}

func TestSetItemQuantityReturnsTotals(t *testing.T) {
	ctx := setup(t)
	user := seedUser(t, ctx, "ana@example.com")
	p := seedProduct(t, ctx, "Latte", 120, 10)
	cart := services.NewCartService()
	require.NoError(t, cart.AddItem(ctx, user.ID, latte(p.ID, 1)))

	items, err := cart.GetItems(ctx, user.ID)
	require.NoError(t, err)

	itemTotal, sum, err := cart.SetItemQuantity(ctx, user.ID, items[0].ID, 3)
	require.NoError(t, err)
	assert.Equal(t, 360.0, itemTotal)
	assert.Equal(t, services.CartSummary{Subtotal: 360, Total: 360, CartCount: 3}, sum)
}

func TestLineOperationsAreScopedToOwner(t *testing.T) {
	ctx := setup(t)
	ana := seedUser(t, ctx, "ana@example.com")
	ben := seedUser(t, ctx, "ben@example.com")
	p := seedProduct(t, ctx, "Latte", 120, 10)
	cart := services.NewCartService()
	require.NoError(t, cart.AddItem(ctx, ana.ID, latte(p.ID, 1)))
	items, _ := cart.GetItems(ctx, ana.ID)

	_, err := cart.RemoveLine(ctx, ben.ID, items[0].ID)
	require.ErrorIs(t, err, services.ErrInvalidData)
	assert.Equal(t, "Item not found in cart.", services.PublicMessage(err, ""))
}

func linkCustomization(t *testing.T, ctx context.Context, productID uint, in services.CustomizationInput) models.Customization {
	t.Helper()
	c, err := services.NewCustomizationService().Create(ctx, in)
	require.NoError(t, err)
	require.NoError(t, repositories.NewProductRepository().LinkCustomizations(ctx, productID, []uint{c.ID}))
	return *c
}

func latteWithExtras(t *testing.T, ctx context.Context) models.Product {
	t.Helper()
	p := seedProduct(t, ctx, "Latte", 120, 10)
	three := 3
	linkCustomization(t, ctx, p.ID, services.CustomizationInput{
		Name: "Extra shot", Type: string(models.CustomizationQuantity), MaxQuantity: &three, PricePerUnit: 25,
	})
	linkCustomization(t, ctx, p.ID, services.CustomizationInput{
		Name: "Milk",
		Type: string(models.CustomizationSingleSelect),
		Options: []services.OptionInput{
			{Name: "Whole", IsDefault: true},
			{Name: "Oat", PriceModifier: 15},
		},
	})
	return p
}

func TestAddProductPricesFromCatalogue(t *testing.T) {
	ctx := setup(t)
	user := seedUser(t, ctx, "ana@example.com")
	p := latteWithExtras(t, ctx)
	cart := services.NewCartService()

	sum, err := cart.AddProduct(ctx, user.ID, services.AddToCartInput{
		ProductID:   p.ID,
		Quantity:    2,
		LineOptions: models.LineOptions{Size: "Large"},
		Customizations: []models.SelectedCustomization{
			{Name: "Extra shot", Value: "2"},
			{Name: "Milk", Value: "Oat"},
		},
	})
	require.NoError(t, err)

	// (120 + 2*25 + 15) * 2
	assert.Equal(t, 370.0, sum.Subtotal)
	assert.Equal(t, 2, sum.CartCount)

	items, err := cart.GetItems(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, 185.0, items[0].UnitPrice)
}

func TestAddProductIgnoresClientPrices(t *testing.T) {
	ctx := setup(t)
	user := seedUser(t, ctx, "ana@example.com")
	p := latteWithExtras(t, ctx)
	cart := services.NewCartService()

	sum, err := cart.AddProduct(ctx, user.ID, services.AddToCartInput{
		ProductID: p.ID,
		Quantity:  1,
		Customizations: []models.SelectedCustomization{
			{Name: "Milk", Value: "Whole", Price: -500},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, 120.0, sum.Subtotal)

	details, err := newOrders(&recorder{}).PlaceFromCart(ctx, user.ID, services.PlaceOrderInput{PaymentMethod: "Cash"})
	require.NoError(t, err)
	assert.Equal(t, 120.0, details.TotalPrice)
}

func TestAddProductRejectsUnknownCustomizations(t *testing.T) {
	ctx := setup(t)
	user := seedUser(t, ctx, "ana@example.com")
	p := latteWithExtras(t, ctx)
	cart := services.NewCartService()

	cases := map[string][]models.SelectedCustomization{
		"not linked":    {{Name: "Syrup", Value: "Vanilla"}},
		"no such value": {{Name: "Milk", Value: "Goat"}},
		"over maximum":  {{Name: "Extra shot", Value: "4"}},
		"not a number":  {{Name: "Extra shot", Value: "-1"}},
		"chosen twice":  {{Name: "Milk", Value: "Oat"}, {Name: "Milk", Value: "Whole"}},
	}
	for name, selected := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := cart.AddProduct(ctx, user.ID, services.AddToCartInput{
				ProductID:      p.ID,
				Customizations: selected,
			})
			assert.ErrorIs(t, err, services.ErrInvalidData)
		})
	}

	items, err := cart.GetItems(ctx, user.ID)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestAddProductRejectsUnavailable(t *testing.T) {
	ctx := setup(t)
	user := seedUser(t, ctx, "ana@example.com")
	p := seedProduct(t, ctx, "Latte", 120, 0)
	_, err := services.NewProductService().Update(ctx, p.ID, services.ProductInput{
		Name: "Latte", Price: 120, Status: string(models.ProductUnavailable),
	})
	require.NoError(t, err)

	_, err = services.NewCartService().AddProduct(ctx, user.ID, services.AddToCartInput{ProductID: p.ID})
	assert.ErrorIs(t, err, services.ErrInvalidOperation)
}

func TestPruneStaleCarts(t *testing.T) {
	ctx := setup(t)
	ana := seedUser(t, ctx, "ana@example.com")
	ben := seedUser(t, ctx, "ben@example.com")
	p := seedProduct(t, ctx, "Latte", 120, 10)

	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	old := services.NewCartService().WithClock(fixedClock(now.AddDate(0, 0, -40)))
	fresh := services.NewCartService().WithClock(fixedClock(now))
	require.NoError(t, old.AddItem(ctx, ana.ID, latte(p.ID, 1)))
	require.NoError(t, fresh.AddItem(ctx, ben.ID, latte(p.ID, 1)))

	n, err := fresh.PruneStale(ctx, now.AddDate(0, 0, -30))
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	items, err := fresh.GetItems(ctx, ana.ID)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestRemoveItemDropsEveryLineOfProduct(t *testing.T) {
	ctx := setup(t)
	user := seedUser(t, ctx, "ana@example.com")
	latteP := seedProduct(t, ctx, "Latte", 120, 10)
	mocha := seedProduct(t, ctx, "Mocha", 140, 10)
	cart := services.NewCartService()

	oat := latte(latteP.ID, 1)
	whole := latte(latteP.ID, 2)
	whole.MilkType = "Whole"
	m := latte(mocha.ID, 1)
	m.ProductName = "Mocha"
	require.NoError(t, cart.AddItem(ctx, user.ID, oat))
	require.NoError(t, cart.AddItem(ctx, user.ID, whole))
	require.NoError(t, cart.AddItem(ctx, user.ID, m))

	require.NoError(t, cart.RemoveItem(ctx, user.ID, latteP.ID))

	items, err := cart.GetItems(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, mocha.ID, items[0].ProductID)

	err = cart.RemoveItem(ctx, user.ID, latteP.ID)
	assert.ErrorIs(t, err, services.ErrInvalidData)
}

func TestClearDeletesCart(t *testing.T) {
	ctx := setup(t)
	user := seedUser(t, ctx, "ana@example.com")
	p := seedProduct(t, ctx, "Latte", 120, 10)
	cart := services.NewCartService()
	require.NoError(t, cart.AddItem(ctx, user.ID, latte(p.ID, 2)))

	require.NoError(t, cart.Clear(ctx, user.ID))

	_, err := repositories.NewCartRepository().FindByUser(ctx, user.ID)
	assert.True(t, orm.IsNotFound(err))

	items, err := cart.GetItems(ctx, user.ID)
	require.NoError(t, err)
	assert.Empty(t, items)

	require.NoError(t, cart.Clear(ctx, user.ID))
}
