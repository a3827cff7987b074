package repositories

import (
	"context"

	"github.com/shashiranjanraj/cafe/app/models"
	"github.com/shashiranjanraj/cafe/pkg/orm"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CustomizationRepository struct{ base }

func NewCustomizationRepository() *CustomizationRepository {
	return &CustomizationRepository{}
}

func (r *CustomizationRepository) WithTx(tx *orm.Query) *CustomizationRepository {
	return &CustomizationRepository{base{tx: tx}}
}

func orderedOptions(db *gorm.DB) *gorm.DB {
	return db.Order("display_order, id")
}

// All returns every customization with its options, in display order.
func (r *CustomizationRepository) All(ctx context.Context) ([]models.Customization, error) {
	var out []models.Customization
	err := r.query(ctx).Model(&models.Customization{}).
		Preload("Options", orderedOptions).
		Order("display_order, name").
		Get(&out)
	return out, err
}

func (r *CustomizationRepository) FindByID(ctx context.Context, id uint) (models.Customization, error) {
	var c models.Customization
	err := r.query(ctx).Model(&models.Customization{}).
		Preload("Options", orderedOptions).
		Where("id = ?", id).
		First(&c)
	return c, err
}

// FindByIDs returns the customizations among ids that exist.
func (r *CustomizationRepository) FindByIDs(ctx context.Context, ids []uint) ([]models.Customization, error) {
	var out []models.Customization
	if len(ids) == 0 {
		return out, nil
	}
	err := r.query(ctx).Model(&models.Customization{}).Where("id IN ?", ids).Get(&out)
	return out, err
}

func (r *CustomizationRepository) Exists(ctx context.Context, id uint) (bool, error) {
	return r.query(ctx).Model(&models.Customization{}).Where("id = ?", id).Exists()
}

// Create inserts the customization and its options.
func (r *CustomizationRepository) Create(ctx context.Context, c *models.Customization) error {
	opts := c.Options
	c.Options = nil
	if err := r.query(ctx).Omit(clause.Associations).Create(c); err != nil {
		return err
	}
	c.Options = opts
	return r.createOptions(ctx, c)
}

// Update writes the customization row and replaces its options wholesale;
// every option gets a fresh id.
func (r *CustomizationRepository) Update(ctx context.Context, c *models.Customization) error {
	_, err := r.query(ctx).Model(&models.Customization{}).Where("id = ?", c.ID).Updates(map[string]interface{}{
		"name":           c.Name,
		"type":           c.Type,
		"required":       c.Required,
		"display_order":  c.DisplayOrder,
		"description":    c.Description,
		"max_quantity":   c.MaxQuantity,
		"price_per_unit": c.PricePerUnit,
	})
	if err != nil {
		return err
	}
	if _, err := r.query(ctx).Where("customization_id = ?", c.ID).Delete(&models.CustomizationOption{}); err != nil {
		return err
	}
	return r.createOptions(ctx, c)
}

func (r *CustomizationRepository) createOptions(ctx context.Context, c *models.Customization) error {
	for i := range c.Options {
		c.Options[i].ID = 0
		c.Options[i].CustomizationID = c.ID
	}
	if len(c.Options) == 0 {
		return nil
	}
	return r.query(ctx).Create(&c.Options)
}

// Delete removes the customization, its options and its product links.
func (r *CustomizationRepository) Delete(ctx context.Context, id uint) error {
	if _, err := r.query(ctx).Where("customization_id = ?", id).Delete(&models.CustomizationOption{}); err != nil {
		return err
	}
	if _, err := r.query(ctx).Where("customization_id = ?", id).Delete(&models.ProductCustomization{}); err != nil {
		return err
	}
	_, err := r.query(ctx).Delete(&models.Customization{}, id)
	return err
}
