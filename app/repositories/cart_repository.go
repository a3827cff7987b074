package repositories

import (
	"context"
	"time"

	"github.com/shashiranjanraj/cafe/app/models"
	"github.com/shashiranjanraj/cafe/pkg/orm"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CartRepository struct{ base }

func NewCartRepository() *CartRepository {
	return &CartRepository{}
}

func (r *CartRepository) WithTx(tx *orm.Query) *CartRepository {
	return &CartRepository{base{tx: tx}}
}

func orderedLines(db *gorm.DB) *gorm.DB {
	return db.Order("id")
}

// FindByUser loads the user's cart with its lines. orm.ErrNotFound means
// the user has no cart yet.
func (r *CartRepository) FindByUser(ctx context.Context, userID uint) (models.Cart, error) {
	var cart models.Cart
	err := r.query(ctx).Model(&models.Cart{}).
		Preload("Items", orderedLines).
		Preload("Items.Customizations", orderedLines).
		Where("user_id = ?", userID).
		First(&cart)
	return cart, err
}

// Create inserts an empty cart row for the user.
func (r *CartRepository) Create(ctx context.Context, userID uint, now time.Time) error {
	return r.query(ctx).Omit(clause.Associations).Create(&models.Cart{UserID: userID, CreatedAt: now, UpdatedAt: now})
}

// Touch bumps the cart's updatedAt.
func (r *CartRepository) Touch(ctx context.Context, userID uint, now time.Time) error {
	_, err := r.query(ctx).Model(&models.Cart{}).Where("user_id = ?", userID).Update("updated_at", now)
	return err
}

// AddItem inserts a line and its customization rows.
func (r *CartRepository) AddItem(ctx context.Context, item *models.CartItem) error {
	custom := item.Customizations
	item.Customizations = nil
	if err := r.query(ctx).Omit(clause.Associations).Create(item); err != nil {
		return err
	}
	item.Customizations = custom
	if len(custom) == 0 {
		return nil
	}
	for i := range item.Customizations {
		item.Customizations[i].ID = 0
		item.Customizations[i].CartItemID = item.ID
	}
	return r.query(ctx).Create(&item.Customizations)
}

// SetLineQuantity writes the quantity and the recomputed total of one line.
func (r *CartRepository) SetLineQuantity(ctx context.Context, itemID uint, qty int, total float64) error {
	_, err := r.query(ctx).Model(&models.CartItem{}).Where("id = ?", itemID).
		Updates(map[string]interface{}{"quantity": qty, "total_price": total})
	return err
}

// DeleteItems removes the given lines and their customization rows.
func (r *CartRepository) DeleteItems(ctx context.Context, itemIDs ...uint) error {
	if len(itemIDs) == 0 {
		return nil
	}
	if _, err := r.query(ctx).Where("cart_item_id IN ?", itemIDs).Delete(&models.CartItemCustomization{}); err != nil {
		return err
	}
	_, err := r.query(ctx).Where("id IN ?", itemIDs).Delete(&models.CartItem{})
	return err
}

// Delete removes the cart and everything in it.
func (r *CartRepository) Delete(ctx context.Context, userID uint) error {
	var ids []uint
	if err := r.query(ctx).Model(&models.CartItem{}).Where("cart_id = ?", userID).Pluck("id", &ids); err != nil {
		return err
	}
	if err := r.DeleteItems(ctx, ids...); err != nil {
		return err
	}
	_, err := r.query(ctx).Where("user_id = ?", userID).Delete(&models.Cart{})
	return err
}

// StaleOwners returns the users whose cart was last touched before cutoff.
func (r *CartRepository) StaleOwners(ctx context.Context, cutoff time.Time) ([]uint, error) {
	var ids []uint
	err := r.query(ctx).Model(&models.Cart{}).Where("updated_at < ?", cutoff).Pluck("user_id", &ids)
	return ids, err
}
