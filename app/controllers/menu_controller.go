package controllers

import (
	"github.com/shashiranjanraj/cafe/app/services"
	"github.com/shashiranjanraj/cafe/pkg/ctx"
)

const maxImageBytes = 5 << 20

type MenuController struct {
	products       *services.ProductService
	categories     *services.CategoryService
	customizations *services.CustomizationService
}

func NewMenuController(p *services.ProductService, c *services.CategoryService, cu *services.CustomizationService) *MenuController {
	return &MenuController{products: p, categories: c, customizations: cu}
}

// ─── Products ────────────────────────────────────────────────────────────────

func (m *MenuController) GetAllProducts(c *ctx.Context) {
	list, err := m.products.All(c.Context())
	if err != nil {
		fail(c, err, "Unable to load products.")
		return
	}
	c.Success(list)
}

func (m *MenuController) AddProduct(c *ctx.Context) {
	var in services.ProductInput
	if !c.BindJSON(&in) {
		return
	}
	p, err := m.products.Create(c.Context(), in)
	if err != nil {
		fail(c, err, "Unable to add the product.")
		return
	}
	c.Done("Product added successfully.", p)
}

func (m *MenuController) UpdateProduct(c *ctx.Context) {
	id, ok := queryID(c)
	if !ok {
		return
	}
	var in services.ProductInput
	if !c.BindJSON(&in) {
		return
	}
	p, err := m.products.Update(c.Context(), id, in)
	if err != nil {
		fail(c, err, "Unable to update the product.")
		return
	}
	c.Done("Product updated successfully.", p)
}

func (m *MenuController) DeleteProduct(c *ctx.Context) {
	id, ok := queryID(c)
	if !ok {
		return
	}
	if err := m.products.Delete(c.Context(), id); err != nil {
		fail(c, err, "Unable to delete the product.")
		return
	}
	c.Message("Product deleted successfully.")
}

// UploadProductImage stores the multipart "image" file and points the
// product at it.
func (m *MenuController) UploadProductImage(c *ctx.Context) {
	id, ok := queryID(c)
	if !ok {
		return
	}
	file, header, err := c.FormFile("image", maxImageBytes)
	if err != nil {
		c.Fail("An image file is required.")
		return
	}
	defer file.Close()

	if header.Size > maxImageBytes {
		c.Fail("The image may not be larger than 5 MB.")
		return
	}
	url, err := m.products.UploadImage(c.Context(), id, header.Filename, file)
	if err != nil {
		fail(c, err, "Unable to upload the image.")
		return
	}
	c.Succeed(map[string]any{"message": "Image uploaded successfully.", "imageUrl": url})
}

// ─── Categories ──────────────────────────────────────────────────────────────

func (m *MenuController) GetAllCategories(c *ctx.Context) {
	list, err := m.categories.All(c.Context())
	if err != nil {
		fail(c, err, "Unable to load categories.")
		return
	}
	c.Success(list)
}

func (m *MenuController) AddCategory(c *ctx.Context) {
	var in services.CategoryInput
	if !c.BindJSON(&in) {
		return
	}
	cat, err := m.categories.Create(c.Context(), in)
	if err != nil {
		fail(c, err, "Unable to add the category.")
		return
	}
	c.Done("Category added successfully.", cat)
}

func (m *MenuController) UpdateCategory(c *ctx.Context) {
	id, ok := queryID(c)
	if !ok {
		return
	}
	var in services.CategoryInput
	if !c.BindJSON(&in) {
		return
	}
	cat, err := m.categories.Update(c.Context(), id, in)
	if err != nil {
		fail(c, err, "Unable to update the category.")
		return
	}
	c.Done("Category updated successfully.", cat)
}

func (m *MenuController) DeleteCategory(c *ctx.Context) {
	id, ok := queryID(c)
	if !ok {
		return
	}
	if err := m.categories.Delete(c.Context(), id); err != nil {
		fail(c, err, "Unable to delete the category.")
		return
	}
	c.Message("Category deleted successfully.")
}

type reorderInput struct {
	IDs []uint `json:"ids" validate:"required"`
}

func (m *MenuController) ReorderCategories(c *ctx.Context) {
	var in reorderInput
	if !c.BindJSON(&in) {
		return
	}
	if err := m.categories.Reorder(c.Context(), in.IDs); err != nil {
		fail(c, err, "Unable to reorder categories.")
		return
	}
	c.Message("Categories reordered.")
}

// ─── Customizations ──────────────────────────────────────────────────────────

func (m *MenuController) GetAllCustomizations(c *ctx.Context) {
	list, err := m.customizations.All(c.Context())
	if err != nil {
		fail(c, err, "Unable to load customizations.")
		return
	}
	c.Success(list)
}

func (m *MenuController) AddCustomization(c *ctx.Context) {
	var in services.CustomizationInput
	if !c.BindJSON(&in) {
		return
	}
	cu, err := m.customizations.Create(c.Context(), in)
	if err != nil {
		fail(c, err, "Unable to add the customization.")
		return
	}
	c.Done("Customization added successfully.", cu)
}

func (m *MenuController) UpdateCustomization(c *ctx.Context) {
	id, ok := queryID(c)
	if !ok {
		return
	}
	var in services.CustomizationInput
	if !c.BindJSON(&in) {
		return
	}
	cu, err := m.customizations.Update(c.Context(), id, in)
	if err != nil {
		fail(c, err, "Unable to update the customization.")
		return
	}
	c.Done("Customization updated successfully.", cu)
}

func (m *MenuController) DeleteCustomization(c *ctx.Context) {
	id, ok := queryID(c)
	if !ok {
		return
	}
	if err := m.customizations.Delete(c.Context(), id); err != nil {
		fail(c, err, "Unable to delete the customization.")
		return
	}
	c.Message("Customization deleted successfully.")
}
