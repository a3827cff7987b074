package services_test

import (
	"context"
	"strconv"
	"strings"
	"testing"

	"github.com/shashiranjanraj/cafe/app/models"
	"github.com/shashiranjanraj/cafe/app/repositories"
	"github.com/shashiranjanraj/cafe/app/services"
	"github.com/shashiranjanraj/cafe/pkg/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func itemsCount(t *testing.T, ctx context.Context, id uint) int {
	t.Helper()
	c, err := services.NewCategoryService().Get(ctx, id)
	require.NoError(t, err)
	return c.ItemsCount
}

func ids(vals ...uint) []string {
	out := make([]string, 0, len(vals))
	for _, v := range vals {
		out = append(out, strconv.FormatUint(uint64(v), 10))
	}
	return out
}

func TestItemsCountIncrementAndDecrementAreInverse(t *testing.T) {
	ctx := setup(t)
	cats := services.NewCategoryService()
	c := seedCategory(t, ctx, "Coffee")

	require.NoError(t, cats.UpdateCategoryItemCount(ctx, c.ID, true))
	require.NoError(t, cats.UpdateCategoryItemCount(ctx, c.ID, true))
	require.NoError(t, cats.UpdateCategoryItemCount(ctx, c.ID, false))
	assert.Equal(t, 1, itemsCount(t, ctx, c.ID))

	require.NoError(t, cats.UpdateCategoryItemCount(ctx, c.ID, false))
	require.NoError(t, cats.UpdateCategoryItemCount(ctx, c.ID, false))
	assert.Equal(t, 0, itemsCount(t, ctx, c.ID))
}

func TestCategoryCRUD(t *testing.T) {
	ctx := setup(t)
	cats := services.NewCategoryService()

	coffee, err := cats.Create(ctx, services.CategoryInput{Name: "Coffee"})
	require.NoError(t, err)
	tea, err := cats.Create(ctx, services.CategoryInput{Name: " Tea "})
	require.NoError(t, err)
	assert.Equal(t, 1, coffee.DisplayOrder)
	assert.Equal(t, 2, tea.DisplayOrder)
	assert.Equal(t, "Tea", tea.Name)
	assert.True(t, tea.IsActive)

	_, err = cats.Create(ctx, services.CategoryInput{Name: "Coffee"})
	assert.ErrorIs(t, err, services.ErrInvalidData)

	require.NoError(t, cats.Reorder(ctx, []uint{tea.ID, coffee.ID}))
	all, err := cats.All(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "Tea", all[0].Name)

	assert.ErrorIs(t, cats.Reorder(ctx, []uint{tea.ID, tea.ID}), services.ErrInvalidData)

	require.NoError(t, cats.Delete(ctx, tea.ID))
	assert.ErrorIs(t, cats.Delete(ctx, tea.ID), services.ErrInvalidData)

	_, err = cats.Get(ctx, tea.ID)
	assert.ErrorIs(t, err, services.ErrNotFound)
}

func TestProductLinksMoveItemsCount(t *testing.T) {
	ctx := setup(t)
	products := services.NewProductService()
	coffee := seedCategory(t, ctx, "Coffee")
	hot := seedCategory(t, ctx, "Hot drinks")
	cold := seedCategory(t, ctx, "Cold drinks")

	p, err := products.Create(ctx, services.ProductInput{
		Name:       "Latte",
		Price:      120,
		Categories: ids(coffee.ID, hot.ID),
	})
	require.NoError(t, err)
	assert.Equal(t, 1, itemsCount(t, ctx, coffee.ID))
	assert.Equal(t, 1, itemsCount(t, ctx, hot.ID))
	assert.Equal(t, models.ProductAvailable, p.Status)
	assert.Len(t, p.Categories, 2)

	_, err = products.Update(ctx, p.ID, services.ProductInput{
		Name:       "Iced Latte",
		Price:      130,
		Categories: ids(coffee.ID, cold.ID),
	})
	require.NoError(t, err)
	assert.Equal(t, 1, itemsCount(t, ctx, coffee.ID))
	assert.Equal(t, 0, itemsCount(t, ctx, hot.ID))
	assert.Equal(t, 1, itemsCount(t, ctx, cold.ID))

	require.NoError(t, products.Delete(ctx, p.ID))
	assert.Equal(t, 0, itemsCount(t, ctx, coffee.ID))
	assert.Equal(t, 0, itemsCount(t, ctx, cold.ID))

	assert.ErrorIs(t, products.Delete(ctx, p.ID), services.ErrInvalidData)
}

func TestProductRejectsUnknownLinks(t *testing.T) {
	ctx := setup(t)
	_, err := services.NewProductService().Create(ctx, services.ProductInput{
		Name:       "Latte",
		Categories: []string{"42"},
	})
	assert.ErrorIs(t, err, services.ErrInvalidData)

	_, err = services.NewProductService().Create(ctx, services.ProductInput{
		Name:       "Latte",
		Categories: []string{"abc"},
	})
	assert.ErrorIs(t, err, services.ErrInvalidData)
}

func TestMenuListingIsInvalidatedOnChange(t *testing.T) {
	ctx := setup(t)
	products := services.NewProductService()

	_, err := products.Create(ctx, services.ProductInput{Name: "Latte", Price: 120})
	require.NoError(t, err)
	first, err := products.All(ctx)
	require.NoError(t, err)
	require.Len(t, first, 1)

	_, err = products.Create(ctx, services.ProductInput{Name: "Mocha", Price: 140})
	require.NoError(t, err)
	second, err := products.All(ctx)
	require.NoError(t, err)
	assert.Len(t, second, 2)
}

const pngHeader = "\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"

func TestUploadImage(t *testing.T) {
	ctx := setup(t)
	disk := storage.NewLocalDisk(t.TempDir(), "/storage")
	products := services.NewProductService().WithDisk(disk)
	p, err := products.Create(ctx, services.ProductInput{Name: "Latte", Price: 120})
	require.NoError(t, err)

	url, err := products.UploadImage(ctx, p.ID, "latte.PNG", strings.NewReader(pngHeader))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "/storage/products/"))
	assert.True(t, strings.HasSuffix(url, ".png"))

	got, err := products.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, url, got.ImageURL)
	ok, err := disk.Exists(ctx, got.ImagePath)
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = products.UploadImage(ctx, p.ID, "latte.png", strings.NewReader("plain text"))
	assert.ErrorIs(t, err, services.ErrInvalidData)

	_, err = products.UploadImage(ctx, p.ID, "latte.exe", strings.NewReader("x"))
	assert.ErrorIs(t, err, services.ErrInvalidData)
}

func TestCustomizationOptionsAreReplaced(t *testing.T) {
	ctx := setup(t)
	svc := services.NewCustomizationService()

	milk, err := svc.Create(ctx, services.CustomizationInput{
		Name: "Milk",
		Type: string(models.CustomizationSingleSelect),
		Options: []services.OptionInput{
			{Name: "Whole", IsDefault: true},
			{Name: "Oat", PriceModifier: 15},
		},
	})
	require.NoError(t, err)
	require.Len(t, milk.Options, 2)

	updated, err := svc.Update(ctx, milk.ID, services.CustomizationInput{
		Name:    "Milk",
		Type:    string(models.CustomizationSingleSelect),
		Options: []services.OptionInput{{Name: "Soy"}, {Name: "Almond"}, {Name: "Oat"}},
	})
	require.NoError(t, err)
	require.Len(t, updated.Options, 3)
	orders := map[string]int{}
	for _, o := range updated.Options {
		orders[o.Name] = o.DisplayOrder
	}
	assert.Equal(t, map[string]int{"Soy": 1, "Almond": 2, "Oat": 3}, orders)

	stored, err := repositories.NewCustomizationRepository().FindByID(ctx, milk.ID)
	require.NoError(t, err)
	require.Len(t, stored.Options, 3)
	for _, o := range stored.Options {
		assert.NotEqual(t, "Whole", o.Name)
		assert.False(t, o.IsDefault)
		if o.Name == "Oat" {
			assert.Zero(t, o.PriceModifier)
		}
	}

	_, err = svc.Create(ctx, services.CustomizationInput{
		Name:    "Size",
		Type:    string(models.CustomizationSingleSelect),
		Options: []services.OptionInput{{Name: "S", IsDefault: true}, {Name: "M", IsDefault: true}},
	})
	assert.ErrorIs(t, err, services.ErrInvalidData)

	_, err = svc.Create(ctx, services.CustomizationInput{Name: "Syrup", Type: string(models.CustomizationMultiSelect)})
	assert.ErrorIs(t, err, services.ErrInvalidData)

	require.NoError(t, svc.Delete(ctx, milk.ID))
	assert.ErrorIs(t, svc.Delete(ctx, milk.ID), services.ErrInvalidData)
}
