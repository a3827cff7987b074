package repositories

import (
	"context"
	"errors"

	"github.com/shashiranjanraj/cafe/app/models"
	"github.com/shashiranjanraj/cafe/pkg/orm"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrInsufficientStock is returned by DecrementStock when fewer units remain
// than requested.
var ErrInsufficientStock = errors.New("repositories: insufficient stock")

type ProductRepository struct{ base }

func NewProductRepository() *ProductRepository {
	return &ProductRepository{}
}

func (r *ProductRepository) WithTx(tx *orm.Query) *ProductRepository {
	return &ProductRepository{base{tx: tx}}
}

func (r *ProductRepository) withLinks(ctx context.Context) *orm.Query {
	return r.query(ctx).Model(&models.Product{}).
		Preload("ProductCategories.Category").
		Preload("ProductCustomizations.Customization.Options", orderedOptions)
}

// All returns every product with its category and customization links.
func (r *ProductRepository) All(ctx context.Context) ([]models.Product, error) {
	var out []models.Product
	err := r.withLinks(ctx).Order("display_order, name").Get(&out)
	return out, err
}

func (r *ProductRepository) FindByID(ctx context.Context, id uint) (models.Product, error) {
	var p models.Product
	err := r.withLinks(ctx).Where("id = ?", id).First(&p)
	return p, err
}

func (r *ProductRepository) Exists(ctx context.Context, id uint) (bool, error) {
	return r.query(ctx).Model(&models.Product{}).Where("id = ?", id).Exists()
}

// Create inserts the product row only; links are written separately.
func (r *ProductRepository) Create(ctx context.Context, p *models.Product) error {
	return r.query(ctx).Omit(clause.Associations).Create(p)
}

// Update writes the product row only; links are written separately.
func (r *ProductRepository) Update(ctx context.Context, p *models.Product) error {
	return r.query(ctx).Omit(clause.Associations, "created_at").Save(p)
}

// Delete removes the product and its links. Order history keeps its own
// snapshot, so orders are untouched.
func (r *ProductRepository) Delete(ctx context.Context, id uint) error {
	if _, err := r.query(ctx).Where("product_id = ?", id).Delete(&models.ProductCategory{}); err != nil {
		return err
	}
	if _, err := r.query(ctx).Where("product_id = ?", id).Delete(&models.ProductCustomization{}); err != nil {
		return err
	}
	_, err := r.query(ctx).Delete(&models.Product{}, id)
	return err
}

// ─── Links ───────────────────────────────────────────────────────────────────

func (r *ProductRepository) CategoryIDs(ctx context.Context, productID uint) ([]uint, error) {
	var ids []uint
	err := r.query(ctx).Model(&models.ProductCategory{}).
		Where("product_id = ?", productID).
		Order("category_id").
		Pluck("category_id", &ids)
	return ids, err
}

func (r *ProductRepository) CustomizationIDs(ctx context.Context, productID uint) ([]uint, error) {
	var ids []uint
	err := r.query(ctx).Model(&models.ProductCustomization{}).
		Where("product_id = ?", productID).
		Order("customization_id").
		Pluck("customization_id", &ids)
	return ids, err
}

func (r *ProductRepository) LinkCategories(ctx context.Context, productID uint, ids []uint) error {
	if len(ids) == 0 {
		return nil
	}
	links := make([]models.ProductCategory, 0, len(ids))
	for _, id := range ids {
		links = append(links, models.ProductCategory{ProductID: productID, CategoryID: id})
	}
	return r.query(ctx).Omit(clause.Associations).Create(&links)
}

func (r *ProductRepository) UnlinkCategories(ctx context.Context, productID uint, ids []uint) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := r.query(ctx).Where("product_id = ? AND category_id IN ?", productID, ids).Delete(&models.ProductCategory{})
	return err
}

func (r *ProductRepository) LinkCustomizations(ctx context.Context, productID uint, ids []uint) error {
	if len(ids) == 0 {
		return nil
	}
	links := make([]models.ProductCustomization, 0, len(ids))
	for _, id := range ids {
		links = append(links, models.ProductCustomization{ProductID: productID, CustomizationID: id})
	}
	return r.query(ctx).Omit(clause.Associations).Create(&links)
}

func (r *ProductRepository) UnlinkCustomizations(ctx context.Context, productID uint, ids []uint) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := r.query(ctx).Where("product_id = ? AND customization_id IN ?", productID, ids).Delete(&models.ProductCustomization{})
	return err
}

// ─── Stock & images ──────────────────────────────────────────────────────────

// DecrementStock removes qty units in a single conditional update. When the
// last unit goes the product is flagged OutOfStock and unavailable.
func (r *ProductRepository) DecrementStock(ctx context.Context, productID uint, qty int) error {
	rows, err := r.query(ctx).Model(&models.Product{}).
		Where("id = ? AND stock >= ?", productID, qty).
		Update("stock", gorm.Expr("stock - ?", qty))
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrInsufficientStock
	}

	_, err = r.query(ctx).Model(&models.Product{}).
		Where("id = ? AND stock <= 0", productID).
		Updates(map[string]interface{}{"status": models.ProductOutOfStock, "is_available": false})
	return err
}

func (r *ProductRepository) SetImage(ctx context.Context, productID uint, url, path string) error {
	_, err := r.query(ctx).Model(&models.Product{}).Where("id = ?", productID).
		Updates(map[string]interface{}{"image_url": url, "image_path": path})
	return err
}
