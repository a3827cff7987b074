package graphql_test

import (
	"context"
	"strconv"
	"testing"

	gql "github.com/graphql-go/graphql"
	menugql "github.com/shashiranjanraj/cafe/app/graphql"
	"github.com/shashiranjanraj/cafe/app/services"
	_ "github.com/shashiranjanraj/cafe/database/migrations"
	"github.com/shashiranjanraj/cafe/pkg/testkit"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func schema(t *testing.T) (gql.Schema, *services.ProductService, *services.CategoryService) {
	t.Helper()
	testkit.FreshDB(t)
	products, cats := services.NewProductService(), services.NewCategoryService()
	s, err := menugql.NewMenu(products, cats, services.NewCustomizationService()).Schema()
	require.NoError(t, err)
	return s, products, cats
}

func run(t *testing.T, s gql.Schema, query string, vars map[string]interface{}) map[string]interface{} {
	t.Helper()
	res := gql.Do(gql.Params{Schema: s, RequestString: query, VariableValues: vars, Context: context.Background()})
	require.Empty(t, res.Errors)
	return res.Data.(map[string]interface{})
}

func TestProductsByCategory(t *testing.T) {
	s, products, cats := schema(t)
	ctx := context.Background()
	coffee, err := cats.Create(ctx, services.CategoryInput{Name: "Coffee"})
	require.NoError(t, err)
	_, err = products.Create(ctx, services.ProductInput{Name: "Latte", Price: 120, Categories: []string{strconv.FormatUint(uint64(coffee.ID), 10)}})
	require.NoError(t, err)
	_, err = products.Create(ctx, services.ProductInput{Name: "Croissant", Price: 60})
	require.NoError(t, err)

	data := run(t, s, `query($c:Int){ products(categoryId:$c){ name price categories{ name } } }`,
		map[string]interface{}{"c": int(coffee.ID)})

	list := data["products"].([]interface{})
	require.Len(t, list, 1)
	latte := list[0].(map[string]interface{})
	assert.Equal(t, "Latte", latte["name"])
	assert.Equal(t, 120.0, latte["price"])
	assert.Equal(t, "Coffee", latte["categories"].([]interface{})[0].(map[string]interface{})["name"])
}

func TestUnknownProductIsNull(t *testing.T) {
	s, _, _ := schema(t)
	data := run(t, s, `{ product(id: 99){ name } }`, nil)
	assert.Nil(t, data["product"])
}

func TestCategoriesActiveOnly(t *testing.T) {
	s, _, cats := schema(t)
	ctx := context.Background()
	off := false
	_, err := cats.Create(ctx, services.CategoryInput{Name: "Coffee"})
	require.NoError(t, err)
	_, err = cats.Create(ctx, services.CategoryInput{Name: "Seasonal", IsActive: &off})
	require.NoError(t, err)

	data := run(t, s, `{ categories(activeOnly: true){ name itemsCount } }`, nil)
	assert.Len(t, data["categories"], 1)
}
