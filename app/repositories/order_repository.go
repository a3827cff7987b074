package repositories

import (
	"context"
	"time"

	"github.com/shashiranjanraj/cafe/app/models"
	"github.com/shashiranjanraj/cafe/pkg/orm"
	"gorm.io/gorm/clause"
)

type OrderRepository struct{ base }

func NewOrderRepository() *OrderRepository {
	return &OrderRepository{}
}

func (r *OrderRepository) WithTx(tx *orm.Query) *OrderRepository {
	return &OrderRepository{base{tx: tx}}
}

// OrderFilter narrows order queries. Zero values mean "no restriction".
// Order dates are stored in UTC, so bounds are converted before comparing.
type OrderFilter struct {
	UserID   uint
	From     time.Time // inclusive
	To       time.Time // exclusive
	Statuses []models.OrderStatus
	Exclude  []models.OrderStatus
}

func (r *OrderRepository) filtered(ctx context.Context, f OrderFilter) *orm.Query {
	q := r.query(ctx).Model(&models.Order{})
	if f.UserID != 0 {
		q = q.Where("user_id = ?", f.UserID)
	}
	if !f.From.IsZero() {
		q = q.Where("order_date >= ?", f.From.UTC())
	}
	if !f.To.IsZero() {
		q = q.Where("order_date < ?", f.To.UTC())
	}
	if len(f.Statuses) > 0 {
		q = q.Where("status IN ?", f.Statuses)
	}
	if len(f.Exclude) > 0 {
		q = q.Where("status NOT IN ?", f.Exclude)
	}
	return q
}

// Create inserts the order with its lines and their customization rows.
func (r *OrderRepository) Create(ctx context.Context, order *models.Order) error {
	items := order.Items
	order.Items = nil
	if err := r.query(ctx).Omit(clause.Associations).Create(order); err != nil {
		return err
	}
	order.Items = items

	for i := range order.Items {
		item := &order.Items[i]
		item.ID = 0
		item.OrderID = order.ID
		custom := item.Customizations
		item.Customizations = nil
		if err := r.query(ctx).Omit(clause.Associations).Create(item); err != nil {
			return err
		}
		item.Customizations = custom
		for j := range item.Customizations {
			item.Customizations[j].ID = 0
			item.Customizations[j].OrderItemID = item.ID
		}
		if len(item.Customizations) > 0 {
			if err := r.query(ctx).Create(&item.Customizations); err != nil {
				return err
			}
		}
	}
	return nil
}

// FindByID loads an order with its lines and customer.
func (r *OrderRepository) FindByID(ctx context.Context, id uint) (models.Order, error) {
	var o models.Order
	err := r.query(ctx).Model(&models.Order{}).
		Preload("User").
		Preload("Items", orderedLines).
		Preload("Items.Customizations", orderedLines).
		Where("id = ?", id).
		First(&o)
	return o, err
}

// Find returns matching orders, newest first, with customers preloaded.
// Lines are only loaded when withItems is set.
func (r *OrderRepository) Find(ctx context.Context, f OrderFilter, withItems bool) ([]models.Order, error) {
	q := r.filtered(ctx, f).Preload("User")
	if withItems {
		q = q.Preload("Items", orderedLines).Preload("Items.Customizations", orderedLines)
	}
	var out []models.Order
	err := q.Order("order_date DESC, id DESC").Get(&out)
	return out, err
}

// Recent returns at most limit matching orders, newest first.
func (r *OrderRepository) Recent(ctx context.Context, f OrderFilter, limit int) ([]models.Order, error) {
	var out []models.Order
	err := r.filtered(ctx, f).Preload("User").Order("order_date DESC, id DESC").Limit(limit).Get(&out)
	return out, err
}

func (r *OrderRepository) Count(ctx context.Context, f OrderFilter) (int64, error) {
	return r.filtered(ctx, f).Count()
}

// Revenue sums totalPrice over the matching orders.
func (r *OrderRepository) Revenue(ctx context.Context, f OrderFilter) (float64, error) {
	var sum struct{ Total float64 }
	err := r.filtered(ctx, f).Select("COALESCE(SUM(total_price), 0) AS total").Gorm().Scan(&sum).Error
	return sum.Total, err
}

// Statuses returns id/status pairs for a user's orders, newest first.
func (r *OrderRepository) Statuses(ctx context.Context, userID uint) ([]models.Order, error) {
	var out []models.Order
	err := r.query(ctx).Model(&models.Order{}).
		Select("id", "status").
		Where("user_id = ?", userID).
		Order("order_date DESC, id DESC").
		Get(&out)
	return out, err
}

// UpdateStatus writes the status column only.
func (r *OrderRepository) UpdateStatus(ctx context.Context, id uint, status models.OrderStatus) error {
	_, err := r.query(ctx).Model(&models.Order{}).Where("id = ?", id).Update("status", status)
	return err
}
