package services

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shashiranjanraj/cafe/app/models"
	"github.com/shashiranjanraj/cafe/app/repositories"
	"github.com/shashiranjanraj/cafe/config"
	"github.com/shashiranjanraj/cafe/pkg/collection"
	"github.com/shashiranjanraj/cafe/pkg/metrics"
	"github.com/shashiranjanraj/cafe/pkg/orm"
)

// PlaceOrderInput is the body of PlaceOrder.
type PlaceOrderInput struct {
	Nickname          string `json:"nickname"          validate:"max=100"`
	AdditionalRequest string `json:"additionalRequest" validate:"max=1000"`
	PaymentMethod     string `json:"paymentMethod"     validate:"required,max=50"`
}

// OrderDetails is an order as reloaded from storage, with the resolved
// customer name.
type OrderDetails struct {
	models.Order
	CustomerName string `json:"customerName"`
}

func newOrderDetails(o models.Order) OrderDetails {
	return OrderDetails{Order: o, CustomerName: o.CustomerName()}
}

type OrderService struct {
	orders   *repositories.OrderRepository
	carts    *repositories.CartRepository
	products *repositories.ProductRepository
	now      func() time.Time
	invoice  func() string
	emit     Emitter
}

func NewOrderService() *OrderService {
	return &OrderService{
		orders:   repositories.NewOrderRepository(),
		carts:    repositories.NewCartRepository(),
		products: repositories.NewProductRepository(),
		now:      time.Now,
		invoice:  newInvoiceNumber,
		emit:     defaultEmitter,
	}
}

func (s *OrderService) WithClock(now func() time.Time) *OrderService {
	s.now = now
	return s
}

func (s *OrderService) WithEmitter(e Emitter) *OrderService {
	s.emit = e
	return s
}

// newInvoiceNumber returns the first 8 hex digits of a random UUID,
// uppercased. Collisions are possible and not checked.
func newInvoiceNumber() string {
	return strings.ToUpper(uuid.NewString()[:8])
}

// CreateOrder turns items into a Pending order. The order insert, the stock
// decrement (when ORDER_REDUCE_STOCK is on) and the removal of the user's
// cart commit together or not at all.
func (s *OrderService) CreateOrder(ctx context.Context, userID uint, nickname, additionalRequest, paymentMethod string, items []models.CartItem) (*OrderDetails, error) {
	if len(items) == 0 {
		return nil, invalidOperation("Your cart is empty.")
	}

	order := models.Order{
		UserID:            userID,
		InvoiceNumber:     s.invoice(),
		OrderDate:         s.now().UTC(),
		Nickname:          strings.TrimSpace(nickname),
		AdditionalRequest: strings.TrimSpace(additionalRequest),
		PaymentMethod:     strings.TrimSpace(paymentMethod),
		Status:            models.StatusPending,
		Items:             make([]models.OrderItem, 0, len(items)),
	}

	var total float64
	for _, line := range items {
		if line.Quantity <= 0 {
			return nil, invalidData("%s has an invalid quantity.", line.ProductName)
		}
		if line.UnitPrice < 0 {
			return nil, invalidData("%s has an invalid price.", line.ProductName)
		}
		line.Recalculate()
		total += line.TotalPrice
		order.Items = append(order.Items, orderItemFrom(line))
	}
	order.TotalPrice = models.RoundMoney(total)

	reduceStock := config.OrderReduceStock()
	err := repositories.Transaction(ctx, func(tx *orm.Query) error {
		if reduceStock {
			if err := s.reserveStock(ctx, tx, order.Items); err != nil {
				return err
			}
		}
		if err := s.orders.WithTx(tx).Create(ctx, &order); err != nil {
			return err
		}
		return s.carts.WithTx(tx).Delete(ctx, userID)
	})
	if err != nil {
		if IsDomain(err) {
			return nil, err
		}
		return nil, fault(ctx, "order.create", userID, err)
	}

	metrics.RecordOrderPlaced(order.PaymentMethod, order.TotalPrice)
	if reduceStock {
		invalidateMenu(ctx)
	}

	details, err := s.GetDetails(ctx, order.ID)
	if err != nil {
		return nil, err
	}

	email := ""
	if details.User != nil {
		email = details.User.Email
	}
	s.emit(EventOrderPlaced, OrderPlaced{Order: *details, Email: email})
	return details, nil
}

// PlaceFromCart checks out the user's current cart.
func (s *OrderService) PlaceFromCart(ctx context.Context, userID uint, in PlaceOrderInput) (*OrderDetails, error) {
	cart, err := s.carts.FindByUser(ctx, userID)
	if orm.IsNotFound(err) {
		return nil, invalidOperation("Your cart is empty.")
	}
	if err != nil {
		return nil, fault(ctx, "order.place_from_cart", userID, err)
	}
	return s.CreateOrder(ctx, userID, in.Nickname, in.AdditionalRequest, in.PaymentMethod, cart.Items)
}

// reserveStock decrements stock per product, summing lines of the same
// product first so the check covers the whole order.
func (s *OrderService) reserveStock(ctx context.Context, tx *orm.Query, items []models.OrderItem) error {
	need := map[uint]int{}
	names := map[uint]string{}
	for _, it := range items {
		need[it.ProductID] += it.Quantity
		names[it.ProductID] = it.ProductName
	}

	ids := make([]uint, 0, len(need))
	for id := range need {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	repo := s.products.WithTx(tx)
	for _, id := range ids {
		err := repo.DecrementStock(ctx, id, need[id])
		if errors.Is(err, repositories.ErrInsufficientStock) {
			return invalidOperation("Not enough stock for %s.", names[id])
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// GetDetails reloads an order with its lines and customer.
func (s *OrderService) GetDetails(ctx context.Context, orderID uint) (*OrderDetails, error) {
	o, err := s.orders.FindByID(ctx, orderID)
	if orm.IsNotFound(err) {
		return nil, notFound("Order not found.")
	}
	if err != nil {
		return nil, fault(ctx, "order.get_details", orderID, err)
	}
	d := newOrderDetails(o)
	return &d, nil
}

// UpdateStatus moves an order to newStatus. Unknown statuses and any move
// out of a terminal status, including to the same status, are rejected.
func (s *OrderService) UpdateStatus(ctx context.Context, orderID uint, newStatus string) error {
	next, ok := models.ParseOrderStatus(newStatus)
	if !ok {
		return invalidData("Invalid status %q.", newStatus)
	}

	o, err := s.orders.FindByID(ctx, orderID)
	if orm.IsNotFound(err) {
		return invalidData("Order not found.")
	}
	if err != nil {
		return fault(ctx, "order.update_status", orderID, err)
	}

	if !o.Status.CanTransitionTo(next) {
		return invalidData("Cannot change the status of a %s order.", o.Status)
	}
	return s.setStatus(ctx, o, next)
}

// Cancel cancels an order unless it was already served or cancelled.
func (s *OrderService) Cancel(ctx context.Context, orderID uint) error {
	o, err := s.orders.FindByID(ctx, orderID)
	if orm.IsNotFound(err) {
		return invalidData("Order not found.")
	}
	if err != nil {
		return fault(ctx, "order.cancel", orderID, err)
	}

	switch {
	case o.Status.IsFulfilled():
		return invalidData("A served order cannot be cancelled.")
	case o.Status == models.StatusCancelled:
		return invalidData("The order is already cancelled.")
	}
	return s.setStatus(ctx, o, models.StatusCancelled)
}

func (s *OrderService) setStatus(ctx context.Context, o models.Order, next models.OrderStatus) error {
	if err := s.orders.UpdateStatus(ctx, o.ID, next); err != nil {
		return fault(ctx, "order.set_status", o.ID, err)
	}
	metrics.RecordStatusTransition(string(o.Status), string(next))
	s.emit(EventOrderStatusChanged, OrderStatusChanged{
		OrderID:       o.ID,
		UserID:        o.UserID,
		InvoiceNumber: o.InvoiceNumber,
		From:          o.Status,
		To:            next,
		At:            s.now(),
	})
	return nil
}

// ListAll returns orders newest first, optionally filtered by exact status
// and by a case-insensitive search over invoice number, customer name and
// nickname. "" and "All" mean no status filter; a filter naming no known
// status matches nothing.
func (s *OrderService) ListAll(ctx context.Context, statusFilter, search string) ([]OrderDetails, error) {
	var f repositories.OrderFilter
	if statusFilter != "" && statusFilter != "All" {
		status, ok := filterStatus(statusFilter)
		if !ok {
			return []OrderDetails{}, nil
		}
		f.Statuses = []models.OrderStatus{status}
	}

	orders, err := s.orders.Find(ctx, f, true)
	if err != nil {
		return nil, fault(ctx, "order.list_all", statusFilter, err)
	}
	out := collection.Map(orders, newOrderDetails)

	term := strings.ToLower(strings.TrimSpace(search))
	if term == "" {
		return out, nil
	}
	return collection.Filter(out, func(d OrderDetails) bool {
		return strings.Contains(strings.ToLower(d.InvoiceNumber), term) ||
			strings.Contains(strings.ToLower(d.CustomerName), term) ||
			strings.Contains(strings.ToLower(d.Nickname), term)
	}), nil
}

// ListByUser returns the user's orders with lines, newest first.
func (s *OrderService) ListByUser(ctx context.Context, userID uint) ([]models.Order, error) {
	orders, err := s.orders.Find(ctx, repositories.OrderFilter{UserID: userID}, true)
	if err != nil {
		return nil, fault(ctx, "order.list_by_user", userID, err)
	}
	return orders, nil
}

// filterStatus resolves a status filter. With ORDER_BREWING_ALIAS=pending,
// Brewing selects Pending orders; the legacy Completed value is accepted.
func filterStatus(s string) (models.OrderStatus, bool) {
	if s == string(models.StatusCompleted) {
		return models.StatusCompleted, true
	}
	st, ok := models.ParseOrderStatus(s)
	if !ok {
		return "", false
	}
	if st == models.StatusBrewing && config.OrderBrewingAlias() == "pending" {
		return models.StatusPending, true
	}
	return st, true
}

func orderItemFrom(line models.CartItem) models.OrderItem {
	custom := make([]models.OrderItemCustomization, 0, len(line.Customizations))
	for _, c := range line.Customizations {
		custom = append(custom, models.OrderItemCustomization{SelectedCustomization: c.SelectedCustomization})
	}
	return models.OrderItem{
		ProductID:      line.ProductID,
		ProductName:    line.ProductName,
		UnitPrice:      line.UnitPrice,
		Description:    line.Description,
		ImageURL:       line.ImageURL,
		Quantity:       line.Quantity,
		TotalPrice:     line.TotalPrice,
		LineOptions:    line.LineOptions,
		Customizations: custom,
	}
}
