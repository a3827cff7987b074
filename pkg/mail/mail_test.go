package mail_test

import (
	"testing"

	"github.com/shashiranjanraj/cafe/config"
	"github.com/shashiranjanraj/cafe/pkg/mail"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSendUsesTransport(t *testing.T) {
	config.Set("MAIL_FROM", "orders@example.com")
	config.Set("MAIL_FROM_NAME", "Corner Café")

	var got []mail.Envelope
	restore := mail.UseTransport(func(_ mail.SMTP, e mail.Envelope) error {
		got = append(got, e)
		return nil
	})
	defer restore()

	err := mail.To("ana@example.com").Subject("Your order").Body("<p>Thanks</p>").Send()
	require.NoError(t, err)

	require.Len(t, got, 1)
	assert.Equal(t, "Corner Café <orders@example.com>", got[0].From)
	assert.Equal(t, []string{"ana@example.com"}, got[0].To)
	assert.True(t, got[0].HTML)
	assert.Equal(t, "<p>Thanks</p>", got[0].Body)
}

func TestSendWithoutRecipients(t *testing.T) {
	assert.Error(t, mail.To().Subject("x").Send())
}

func TestDefaultTransportRequiresCredentials(t *testing.T) {
	config.Set("MAIL_USERNAME", "")
	err := mail.To("ana@example.com").Text("hi").Send()
	assert.ErrorIs(t, err, mail.ErrNotConfigured)
}
