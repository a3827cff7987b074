package services

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"strings"

	"github.com/shashiranjanraj/cafe/app/jobs"
	"github.com/shashiranjanraj/cafe/app/models"
	"github.com/shashiranjanraj/cafe/config"
	"github.com/shashiranjanraj/cafe/pkg/queue"
)

// Dispatcher hands a job to the queue.
type Dispatcher func(queue.Job) error

// EmailService renders café e-mails and queues them for SMTP delivery.
type EmailService struct {
	dispatch Dispatcher
}

func NewEmailService() *EmailService {
	return &EmailService{dispatch: queue.Dispatch}
}

// WithDispatcher routes jobs to d instead of the default queue.
func (s *EmailService) WithDispatcher(d Dispatcher) *EmailService {
	s.dispatch = d
	return s
}

// Send queues one HTML e-mail.
func (s *EmailService) Send(ctx context.Context, to, subject, htmlBody string) error {
	to = strings.TrimSpace(to)
	if to == "" {
		return invalidData("A recipient is required.")
	}
	if err := s.dispatch(&jobs.SendMailJob{To: to, Subject: subject, HTML: htmlBody}); err != nil {
		return fault(ctx, "email.send", to, err)
	}
	return nil
}

// SendOrderConfirmation mails the receipt for order to email.
func (s *EmailService) SendOrderConfirmation(ctx context.Context, order OrderDetails, email string) error {
	body, err := render(orderConfirmationTmpl, map[string]interface{}{
		"App":      config.Get("APP_NAME", "Cafe"),
		"Order":    order,
		"Customer": order.CustomerName,
		"Date":     formatOrderDate(order.OrderDate),
	})
	if err != nil {
		return fault(ctx, "email.order_confirmation", order.ID, err)
	}
	return s.Send(ctx, email, fmt.Sprintf("Your order %s", order.InvoiceNumber), body)
}

// SendWelcome greets a newly registered user.
func (s *EmailService) SendWelcome(ctx context.Context, user models.User) error {
	name := user.FullName()
	if name == "" {
		name = user.Nickname
	}
	body, err := render(welcomeTmpl, map[string]interface{}{
		"App":  config.Get("APP_NAME", "Cafe"),
		"Name": name,
	})
	if err != nil {
		return fault(ctx, "email.welcome", user.ID, err)
	}
	return s.Send(ctx, user.Email, "Welcome!", body)
}

func render(t *template.Template, data interface{}) (string, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

var orderConfirmationTmpl = template.Must(template.New("order").Parse(`<h2>Thank you{{if .Customer}}, {{.Customer}}{{end}}!</h2>
<p>Order <strong>{{.Order.InvoiceNumber}}</strong> was received on {{.Date}}.</p>
<table>
{{range .Order.Items}}<tr><td>{{.Quantity}} × {{.ProductName}}{{if .Size}} ({{.Size}}){{end}}</td><td>{{printf "%.2f" .TotalPrice}}</td></tr>
{{end}}</table>
<p>Total: <strong>{{printf "%.2f" .Order.TotalPrice}}</strong> ({{.Order.PaymentMethod}})</p>
<p>{{.App}}</p>`))

var welcomeTmpl = template.Must(template.New("welcome").Parse(`<h2>Welcome to {{.App}}{{if .Name}}, {{.Name}}{{end}}!</h2>
<p>Your account is ready. Browse the menu and place your first order any time.</p>`))
