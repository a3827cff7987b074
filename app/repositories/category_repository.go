package repositories

import (
	"context"

	"github.com/shashiranjanraj/cafe/app/models"
	"github.com/shashiranjanraj/cafe/pkg/orm"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CategoryRepository struct{ base }

func NewCategoryRepository() *CategoryRepository {
	return &CategoryRepository{}
}

func (r *CategoryRepository) WithTx(tx *orm.Query) *CategoryRepository {
	return &CategoryRepository{base{tx: tx}}
}

// All returns every category in menu order.
func (r *CategoryRepository) All(ctx context.Context) ([]models.Category, error) {
	var cats []models.Category
	err := r.query(ctx).Model(&models.Category{}).Order("display_order, name").Get(&cats)
	return cats, err
}

func (r *CategoryRepository) FindByID(ctx context.Context, id uint) (models.Category, error) {
	var cat models.Category
	err := r.query(ctx).Model(&models.Category{}).Where("id = ?", id).First(&cat)
	return cat, err
}

// FindByIDs returns the categories among ids that exist.
func (r *CategoryRepository) FindByIDs(ctx context.Context, ids []uint) ([]models.Category, error) {
	var cats []models.Category
	if len(ids) == 0 {
		return cats, nil
	}
	err := r.query(ctx).Model(&models.Category{}).Where("id IN ?", ids).Get(&cats)
	return cats, err
}

// NameTaken reports whether another category (other than exceptID) uses name.
func (r *CategoryRepository) NameTaken(ctx context.Context, name string, exceptID uint) (bool, error) {
	return r.query(ctx).Model(&models.Category{}).
		Where("name = ? AND id <> ?", name, exceptID).
		Exists()
}

func (r *CategoryRepository) Exists(ctx context.Context, id uint) (bool, error) {
	return r.query(ctx).Model(&models.Category{}).Where("id = ?", id).Exists()
}

// NextDisplayOrder returns one past the highest display order in use.
func (r *CategoryRepository) NextDisplayOrder(ctx context.Context) (int, error) {
	var max struct{ Max int }
	err := r.query(ctx).Model(&models.Category{}).Select("COALESCE(MAX(display_order), 0) AS max").Gorm().Scan(&max).Error
	return max.Max + 1, err
}

func (r *CategoryRepository) Create(ctx context.Context, cat *models.Category) error {
	return r.query(ctx).Omit(clause.Associations).Create(cat)
}

// Update writes the editable columns. ItemsCount is owned by AdjustItemsCount.
func (r *CategoryRepository) Update(ctx context.Context, cat *models.Category) error {
	_, err := r.query(ctx).Model(&models.Category{}).Where("id = ?", cat.ID).Updates(map[string]interface{}{
		"name":          cat.Name,
		"description":   cat.Description,
		"display_order": cat.DisplayOrder,
		"is_active":     cat.IsActive,
	})
	return err
}

// Delete removes the category together with its product links.
func (r *CategoryRepository) Delete(ctx context.Context, id uint) error {
	if _, err := r.query(ctx).Where("category_id = ?", id).Delete(&models.ProductCategory{}); err != nil {
		return err
	}
	_, err := r.query(ctx).Delete(&models.Category{}, id)
	return err
}

// AdjustItemsCount adds delta to the category's itemsCount, clamping at 0.
func (r *CategoryRepository) AdjustItemsCount(ctx context.Context, id uint, delta int) error {
	_, err := r.query(ctx).Model(&models.Category{}).Where("id = ?", id).
		Update("items_count", gorm.Expr("CASE WHEN items_count + ? < 0 THEN 0 ELSE items_count + ? END", delta, delta))
	return err
}

func (r *CategoryRepository) SetDisplayOrder(ctx context.Context, id uint, order int) error {
	_, err := r.query(ctx).Model(&models.Category{}).Where("id = ?", id).Update("display_order", order)
	return err
}

// CountLinks counts the product links of a category; itemsCount should
// always equal it.
func (r *CategoryRepository) CountLinks(ctx context.Context, id uint) (int64, error) {
	return r.query(ctx).Model(&models.ProductCategory{}).Where("category_id = ?", id).Count()
}
