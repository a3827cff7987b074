package services_test

import (
	"errors"
	"testing"
	"time"

	"github.com/shashiranjanraj/cafe/app/jobs"
	"github.com/shashiranjanraj/cafe/app/models"
	"github.com/shashiranjanraj/cafe/app/services"
	"github.com/shashiranjanraj/cafe/pkg/queue"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func capture(sent *[]*jobs.SendMailJob) services.Dispatcher {
	return func(j queue.Job) error {
		*sent = append(*sent, j.(*jobs.SendMailJob))
		return nil
	}
}

func TestOrderConfirmationEmail(t *testing.T) {
	var sent []*jobs.SendMailJob
	svc := services.NewEmailService().WithDispatcher(capture(&sent))

	order := services.OrderDetails{
		Order: models.Order{
			InvoiceNumber: "AB12CD34",
			OrderDate:     time.Date(2026, 3, 10, 9, 30, 0, 0, time.UTC),
			TotalPrice:    290,
			PaymentMethod: "Cash",
			Items: []models.OrderItem{
				{ProductName: "Latte", Quantity: 2, TotalPrice: 290, LineOptions: models.LineOptions{Size: "Medium"}},
			},
		},
		CustomerName: "Ana Lima",
	}
	require.NoError(t, svc.SendOrderConfirmation(t.Context(), order, "ana@cafe.test"))

	require.Len(t, sent, 1)
	assert.Equal(t, "ana@cafe.test", sent[0].To)
	assert.Equal(t, "Your order AB12CD34", sent[0].Subject)
	assert.Contains(t, sent[0].HTML, "Ana Lima")
	assert.Contains(t, sent[0].HTML, "2 × Latte (Medium)")
	assert.Contains(t, sent[0].HTML, "290.00")
}

func TestWelcomeEmailFallsBackToNickname(t *testing.T) {
	var sent []*jobs.SendMailJob
	svc := services.NewEmailService().WithDispatcher(capture(&sent))

	require.NoError(t, svc.SendWelcome(t.Context(), models.User{Email: "bo@cafe.test", Nickname: "Bo"}))
	require.Len(t, sent, 1)
	assert.Contains(t, sent[0].HTML, "Bo!")
}

func TestSendRequiresRecipient(t *testing.T) {
	svc := services.NewEmailService().WithDispatcher(func(queue.Job) error { return nil })
	assert.ErrorIs(t, svc.Send(t.Context(), " ", "Hi", "<p>hi</p>"), services.ErrInvalidData)
}

func TestSendWrapsDispatchFailure(t *testing.T) {
	svc := services.NewEmailService().WithDispatcher(func(queue.Job) error { return errors.New("queue down") })
	err := svc.Send(t.Context(), "ana@cafe.test", "Hi", "<p>hi</p>")
	require.Error(t, err)
	assert.False(t, services.IsDomain(err))
}
