package services

import (
	"context"
	"time"

	"github.com/shashiranjanraj/cafe/app/models"
	"github.com/shashiranjanraj/cafe/app/repositories"
	"github.com/shashiranjanraj/cafe/config"
	"github.com/shashiranjanraj/cafe/pkg/collection"
	"github.com/shashiranjanraj/cafe/pkg/orm"
)

// displayDateLayout formats order dates shown to customers and in email.
const displayDateLayout = "Jan 2, 2006 3:04 PM"

// OrderSummary is one row of a customer's order history.
type OrderSummary struct {
	ID            uint               `json:"id"`
	InvoiceNumber string             `json:"invoiceNumber"`
	OrderDate     time.Time          `json:"orderDate"`
	Status        models.OrderStatus `json:"status"`
	TotalPrice    float64            `json:"totalPrice"`
	ItemCount     int                `json:"itemCount"`
}

// OrderDetailsView is an order as shown to its owner.
type OrderDetailsView struct {
	ID                uint               `json:"id"`
	InvoiceNumber     string             `json:"invoiceNumber"`
	Nickname          string             `json:"nickname"`
	OrderDate         string             `json:"orderDate"`
	Status            models.OrderStatus `json:"status"`
	PaymentMethod     string             `json:"paymentMethod"`
	AdditionalRequest string             `json:"additionalRequest"`
	TotalPrice        float64            `json:"totalPrice"`
	Items             []models.OrderItem `json:"items"`
}

type OrderStatusView struct {
	ID     uint               `json:"id"`
	Status models.OrderStatus `json:"status"`
}

type OrderHistoryService struct {
	orders *repositories.OrderRepository
	placed *OrderService
}

func NewOrderHistoryService() *OrderHistoryService {
	return &OrderHistoryService{orders: repositories.NewOrderRepository(), placed: NewOrderService()}
}

// ListForUser returns the user's orders, newest first.
func (s *OrderHistoryService) ListForUser(ctx context.Context, userID uint) ([]OrderSummary, error) {
	orders, err := s.placed.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return collection.Map(orders, func(o models.Order) OrderSummary {
		count := collection.Sum(o.Items, func(it models.OrderItem) int { return it.Quantity })
		return OrderSummary{
			ID:            o.ID,
			InvoiceNumber: o.InvoiceNumber,
			OrderDate:     o.OrderDate,
			Status:        o.Status,
			TotalPrice:    o.TotalPrice,
			ItemCount:     count,
		}
	}), nil
}

// GetOrderDetails loads one of the user's orders. Orders belonging to
// someone else are reported as missing.
func (s *OrderHistoryService) GetOrderDetails(ctx context.Context, userID, orderID uint) (*OrderDetailsView, error) {
	o, err := s.orders.FindByID(ctx, orderID)
	if orm.IsNotFound(err) || (err == nil && o.UserID != userID) {
		return nil, notFound("Order not found.")
	}
	if err != nil {
		return nil, fault(ctx, "history.details", orderID, err)
	}

	return &OrderDetailsView{
		ID:                o.ID,
		InvoiceNumber:     o.InvoiceNumber,
		Nickname:          o.Nickname,
		OrderDate:         formatOrderDate(o.OrderDate),
		Status:            o.Status,
		PaymentMethod:     o.PaymentMethod,
		AdditionalRequest: o.AdditionalRequest,
		TotalPrice:        o.TotalPrice,
		Items:             o.Items,
	}, nil
}

// GetOrderStatuses returns id/status pairs for polling clients.
func (s *OrderHistoryService) GetOrderStatuses(ctx context.Context, userID uint) ([]OrderStatusView, error) {
	orders, err := s.orders.Statuses(ctx, userID)
	if err != nil {
		return nil, fault(ctx, "history.statuses", userID, err)
	}
	return collection.Map(orders, func(o models.Order) OrderStatusView {
		return OrderStatusView{ID: o.ID, Status: o.Status}
	}), nil
}

func formatOrderDate(t time.Time) string {
	return t.In(config.Location()).Format(displayDateLayout)
}
