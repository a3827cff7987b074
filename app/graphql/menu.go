// Package graphql exposes the menu as a read-only GraphQL schema at
// /graphql, for kiosk and signage clients that want to pick their fields.
package graphql

import (
	"errors"

	"github.com/graphql-go/graphql"
	"github.com/shashiranjanraj/cafe/app/models"
	"github.com/shashiranjanraj/cafe/app/services"
	cafegql "github.com/shashiranjanraj/cafe/pkg/graphql"
)

type Menu struct {
	products       *services.ProductService
	categories     *services.CategoryService
	customizations *services.CustomizationService
}

func NewMenu(p *services.ProductService, c *services.CategoryService, cu *services.CustomizationService) *Menu {
	return &Menu{products: p, categories: c, customizations: cu}
}

var optionType = graphql.NewObject(graphql.ObjectConfig{
	Name: "CustomizationOption",
	Fields: graphql.Fields{
		"id":            &graphql.Field{Type: graphql.Int},
		"name":          &graphql.Field{Type: graphql.String},
		"description":   &graphql.Field{Type: graphql.String},
		"priceModifier": &graphql.Field{Type: graphql.Float},
		"isDefault":     &graphql.Field{Type: graphql.Boolean},
	},
})

var customizationType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Customization",
	Fields: graphql.Fields{
		"id":           &graphql.Field{Type: graphql.Int},
		"name":         &graphql.Field{Type: graphql.String},
		"type":         &graphql.Field{Type: graphql.String},
		"required":     &graphql.Field{Type: graphql.Boolean},
		"description":  &graphql.Field{Type: graphql.String},
		"maxQuantity":  &graphql.Field{Type: graphql.Int},
		"pricePerUnit": &graphql.Field{Type: graphql.Float},
		"options":      &graphql.Field{Type: graphql.NewList(optionType)},
	},
})

var categoryType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Category",
	Fields: graphql.Fields{
		"id":           &graphql.Field{Type: graphql.Int},
		"name":         &graphql.Field{Type: graphql.String},
		"description":  &graphql.Field{Type: graphql.String},
		"itemsCount":   &graphql.Field{Type: graphql.Int},
		"displayOrder": &graphql.Field{Type: graphql.Int},
		"isActive":     &graphql.Field{Type: graphql.Boolean},
	},
})

var productType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Product",
	Fields: graphql.Fields{
		"id":             &graphql.Field{Type: graphql.Int},
		"name":           &graphql.Field{Type: graphql.String},
		"description":    &graphql.Field{Type: graphql.String},
		"price":          &graphql.Field{Type: graphql.Float},
		"status":         &graphql.Field{Type: graphql.String},
		"stock":          &graphql.Field{Type: graphql.Int},
		"isAvailable":    &graphql.Field{Type: graphql.Boolean},
		"imageUrl":       &graphql.Field{Type: graphql.String},
		"categories":     &graphql.Field{Type: graphql.NewList(categoryType)},
		"customizations": &graphql.Field{Type: graphql.NewList(customizationType)},
	},
})

// Schema builds the menu schema. Queries:
//
//	products(categoryId: Int, availableOnly: Boolean)
//	product(id: Int!)
//	categories(activeOnly: Boolean)
//	customizations
func (m *Menu) Schema() (graphql.Schema, error) {
	return cafegql.NewSchema(graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"products": &graphql.Field{
				Type: graphql.NewList(productType),
				Args: graphql.FieldConfigArgument{
					"categoryId":    &graphql.ArgumentConfig{Type: graphql.Int},
					"availableOnly": &graphql.ArgumentConfig{Type: graphql.Boolean, DefaultValue: false},
				},
				Resolve: m.resolveProducts,
			},
			"product": &graphql.Field{
				Type:    productType,
				Args:    graphql.FieldConfigArgument{"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Int)}},
				Resolve: m.resolveProduct,
			},
			"categories": &graphql.Field{
				Type:    graphql.NewList(categoryType),
				Args:    graphql.FieldConfigArgument{"activeOnly": &graphql.ArgumentConfig{Type: graphql.Boolean, DefaultValue: false}},
				Resolve: m.resolveCategories,
			},
			"customizations": &graphql.Field{
				Type:    graphql.NewList(customizationType),
				Resolve: m.resolveCustomizations,
			},
		},
	}))
}

func (m *Menu) resolveProducts(p graphql.ResolveParams) (interface{}, error) {
	all, err := m.products.All(p.Context)
	if err != nil {
		return nil, publicError(err)
	}
	catID, filterCat := p.Args["categoryId"].(int)
	availableOnly, _ := p.Args["availableOnly"].(bool)

	out := make([]map[string]interface{}, 0, len(all))
	for _, v := range all {
		if availableOnly && (!v.IsAvailable || v.Status != models.ProductAvailable) {
			continue
		}
		if filterCat && !inCategory(v, uint(catID)) {
			continue
		}
		out = append(out, productFields(v))
	}
	return out, nil
}

func (m *Menu) resolveProduct(p graphql.ResolveParams) (interface{}, error) {
	id, _ := p.Args["id"].(int)
	if id <= 0 {
		return nil, nil
	}
	v, err := m.products.Get(p.Context, uint(id))
	if err != nil {
		if services.IsDomain(err) {
			return nil, nil
		}
		return nil, publicError(err)
	}
	return productFields(*v), nil
}

func (m *Menu) resolveCategories(p graphql.ResolveParams) (interface{}, error) {
	cats, err := m.categories.All(p.Context)
	if err != nil {
		return nil, publicError(err)
	}
	activeOnly, _ := p.Args["activeOnly"].(bool)
	out := make([]map[string]interface{}, 0, len(cats))
	for _, c := range cats {
		if activeOnly && !c.IsActive {
			continue
		}
		out = append(out, categoryFields(c))
	}
	return out, nil
}

func (m *Menu) resolveCustomizations(p graphql.ResolveParams) (interface{}, error) {
	all, err := m.customizations.All(p.Context)
	if err != nil {
		return nil, publicError(err)
	}
	out := make([]map[string]interface{}, 0, len(all))
	for _, c := range all {
		out = append(out, customizationFields(c))
	}
	return out, nil
}

func inCategory(v services.ProductView, id uint) bool {
	for _, c := range v.Categories {
		if c.ID == id {
			return true
		}
	}
	return false
}

func productFields(v services.ProductView) map[string]interface{} {
	cats := make([]map[string]interface{}, 0, len(v.Categories))
	for _, c := range v.Categories {
		cats = append(cats, map[string]interface{}{"id": int(c.ID), "name": c.Name})
	}
	custs := make([]map[string]interface{}, 0, len(v.Customizations))
	for _, c := range v.Customizations {
		custs = append(custs, customizationFields(c))
	}
	return map[string]interface{}{
		"id":             int(v.ID),
		"name":           v.Name,
		"description":    v.Description,
		"price":          v.BasePrice,
		"status":         string(v.Status),
		"stock":          v.Stock,
		"isAvailable":    v.IsAvailable,
		"imageUrl":       v.ImageURL,
		"categories":     cats,
		"customizations": custs,
	}
}

func categoryFields(c models.Category) map[string]interface{} {
	return map[string]interface{}{
		"id":           int(c.ID),
		"name":         c.Name,
		"description":  c.Description,
		"itemsCount":   c.ItemsCount,
		"displayOrder": c.DisplayOrder,
		"isActive":     c.IsActive,
	}
}

func customizationFields(c models.Customization) map[string]interface{} {
	opts := make([]map[string]interface{}, 0, len(c.Options))
	for _, o := range c.Options {
		opts = append(opts, map[string]interface{}{
			"id":            int(o.ID),
			"name":          o.Name,
			"description":   o.Description,
			"priceModifier": o.PriceModifier,
			"isDefault":     o.IsDefault,
		})
	}
	var maxQty interface{}
	if c.MaxQuantity != nil {
		maxQty = *c.MaxQuantity
	}
	return map[string]interface{}{
		"id":           int(c.ID),
		"name":         c.Name,
		"type":         string(c.Type),
		"required":     c.Required,
		"description":  c.Description,
		"maxQuantity":  maxQty,
		"pricePerUnit": c.PricePerUnit,
		"options":      opts,
	}
}

func publicError(err error) error {
	return errors.New(services.PublicMessage(err, "Unable to load the menu."))
}
