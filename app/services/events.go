package services

import (
	"time"

	"github.com/shashiranjanraj/cafe/app/models"
	"github.com/shashiranjanraj/cafe/pkg/event"
)

// Domain events, fired after the corresponding transaction commits.
const (
	EventOrderPlaced        = "order.placed"
	EventOrderStatusChanged = "order.status_changed"
	EventUserRegistered     = "user.registered"
)

// OrderPlaced is the payload of EventOrderPlaced.
type OrderPlaced struct {
	Order OrderDetails
	Email string
}

// OrderStatusChanged is the payload of EventOrderStatusChanged.
type OrderStatusChanged struct {
	OrderID       uint               `json:"orderId"`
	UserID        uint               `json:"userId"`
	InvoiceNumber string             `json:"invoiceNumber"`
	From          models.OrderStatus `json:"from"`
	To            models.OrderStatus `json:"to"`
	At            time.Time          `json:"at"`
}

// UserRegistered is the payload of EventUserRegistered.
type UserRegistered struct {
	User models.User
}

// Emitter publishes a domain event. event.FireAsync in production; tests
// substitute a recorder.
type Emitter func(name string, payload interface{})

var defaultEmitter Emitter = event.FireAsync
