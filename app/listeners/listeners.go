// Package listeners reacts to domain events after their transaction has
// committed: customer e-mail, staff alerts, live feeds and cache busting.
package listeners

import (
	"context"
	"fmt"

	"github.com/shashiranjanraj/cafe/app/jobs"
	"github.com/shashiranjanraj/cafe/app/models"
	"github.com/shashiranjanraj/cafe/app/services"
	"github.com/shashiranjanraj/cafe/pkg/event"
	"github.com/shashiranjanraj/cafe/pkg/logger"
	"github.com/shashiranjanraj/cafe/pkg/queue"
	"github.com/shashiranjanraj/cafe/pkg/sse"
)

// StatusEvent is the SSE event name on a customer's status stream.
const StatusEvent = "status"

// Publisher pushes a frame to every admin live-feed client.
type Publisher interface {
	Publish(event string, data any) error
}

// Listener holds the side-effect targets shared by every handler.
type Listener struct {
	email    *services.EmailService
	feed     Publisher
	streams  *sse.Broker
	dispatch services.Dispatcher
}

func New(email *services.EmailService, feed Publisher, streams *sse.Broker) *Listener {
	return &Listener{email: email, feed: feed, streams: streams, dispatch: queue.Dispatch}
}

// WithDispatcher routes staff alerts to d instead of the default queue.
func (l *Listener) WithDispatcher(d services.Dispatcher) *Listener {
	l.dispatch = d
	return l
}

// Register subscribes the handlers to the event bus.
func (l *Listener) Register() {
	event.Listen(services.EventOrderPlaced, l.OrderPlaced)
	event.Listen(services.EventOrderStatusChanged, l.OrderStatusChanged)
	event.Listen(services.EventUserRegistered, l.UserRegistered)
}

// UserTopic is the broker topic carrying one customer's status updates.
func UserTopic(userID uint) string {
	return fmt.Sprintf("orders:user:%d", userID)
}

func (l *Listener) OrderPlaced(payload interface{}) {
	p, ok := payload.(services.OrderPlaced)
	if !ok {
		return
	}
	ctx := context.Background()
	order := p.Order

	services.InvalidateDashboard()

	if p.Email != "" {
		if err := l.email.SendOrderConfirmation(ctx, order, p.Email); err != nil {
			logger.Warn("listeners: order confirmation", "order_id", order.ID, "error", err)
		}
	}

	l.publish(services.EventOrderPlaced, map[string]any{
		"id":            order.ID,
		"invoiceNumber": order.InvoiceNumber,
		"customerName":  order.CustomerName,
		"nickname":      order.Nickname,
		"totalPrice":    order.TotalPrice,
		"status":        order.Status,
		"orderDate":     order.OrderDate,
	})

	l.alert(&jobs.NotifyStaffJob{
		Event: services.EventOrderPlaced,
		Title: fmt.Sprintf("New order %s", order.InvoiceNumber),
		Text:  fmt.Sprintf("%s · %d item(s) · %.2f", order.CustomerName, len(order.Items), order.TotalPrice),
		Color: "#2eb886",
		Payload: map[string]interface{}{
			"orderId":       order.ID,
			"invoiceNumber": order.InvoiceNumber,
			"totalPrice":    order.TotalPrice,
		},
	})
}

func (l *Listener) OrderStatusChanged(payload interface{}) {
	p, ok := payload.(services.OrderStatusChanged)
	if !ok {
		return
	}

	services.InvalidateDashboard()

	if l.streams != nil {
		l.streams.Publish(UserTopic(p.UserID), sse.Event{
			Name: StatusEvent,
			Data: services.OrderStatusView{ID: p.OrderID, Status: p.To},
		})
	}
	l.publish(services.EventOrderStatusChanged, p)

	if p.To == models.StatusCancelled {
		l.alert(&jobs.NotifyStaffJob{
			Event: services.EventOrderStatusChanged,
			Title: fmt.Sprintf("Order %s cancelled", p.InvoiceNumber),
			Text:  fmt.Sprintf("%s → %s", p.From, p.To),
			Color: "#e01e5a",
			Payload: map[string]interface{}{
				"orderId": p.OrderID,
				"from":    p.From,
				"to":      p.To,
			},
		})
	}
}

func (l *Listener) UserRegistered(payload interface{}) {
	p, ok := payload.(services.UserRegistered)
	if !ok {
		return
	}
	if err := l.email.SendWelcome(context.Background(), p.User); err != nil {
		logger.Warn("listeners: welcome mail", "user_id", p.User.ID, "error", err)
	}
}

func (l *Listener) publish(name string, data any) {
	if l.feed == nil {
		return
	}
	if err := l.feed.Publish(name, data); err != nil {
		logger.Warn("listeners: live feed", "event", name, "error", err)
	}
}

// alert queues a staff notification when at least one channel is set up.
func (l *Listener) alert(job *jobs.NotifyStaffJob) {
	if len(job.Via()) == 0 {
		return
	}
	if err := l.dispatch(job); err != nil {
		logger.Warn("listeners: staff alert", "event", job.Event, "error", err)
	}
}
