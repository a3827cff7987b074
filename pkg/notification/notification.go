// Package notification pushes staff alerts to Slack and to a generic JSON
// webhook. A notification picks its channels with Via and implements the
// matching To* method for each:
//
//	type NewOrder struct{ Invoice string }
//
//	func (n NewOrder) Via() []string { return []string{notification.Slack} }
//	func (n NewOrder) ToSlack() notification.SlackMessage {
//	    return notification.SlackMessage{Text: "New order " + n.Invoice}
//	}
//
//	err := notification.Send(ctx, NewOrder{Invoice: "A1B2C3D4"})
package notification

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shashiranjanraj/cafe/config"
	"github.com/shashiranjanraj/cafe/pkg/http"
	"github.com/shashiranjanraj/cafe/pkg/logger"
)

// Channel names returned from Via.
const (
	Slack   = "slack"
	Webhook = "webhook"
)

type Notification interface {
	Via() []string
}

type Slackable interface {
	ToSlack() SlackMessage
}

type Webhookable interface {
	ToWebhook() WebhookMessage
}

// SlackMessage is posted to an incoming webhook. WebhookURL defaults to
// SLACK_WEBHOOK_URL.
type SlackMessage struct {
	WebhookURL  string            `json:"-"`
	Text        string            `json:"text,omitempty"`
	Attachments []SlackAttachment `json:"attachments,omitempty"`
}

type SlackAttachment struct {
	Color  string `json:"color,omitempty"` // good | warning | danger
	Title  string `json:"title,omitempty"`
	Text   string `json:"text,omitempty"`
	Footer string `json:"footer,omitempty"`
}

// WebhookMessage is POSTed as JSON. URL defaults to STAFF_WEBHOOK_URL and
// the body is signed with STAFF_WEBHOOK_SECRET when that is set.
type WebhookMessage struct {
	URL     string
	Payload interface{}
	Headers map[string]string
}

// Send delivers n on every channel it asks for and joins the failures.
func Send(ctx context.Context, n Notification) error {
	var errs []error
	for _, channel := range n.Via() {
		if err := deliver(ctx, channel, n); err != nil {
			logger.WithCtx(ctx).Error("notification: channel failed", "channel", channel, "error", err)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func deliver(ctx context.Context, channel string, n Notification) error {
	switch channel {
	case Slack:
		s, ok := n.(Slackable)
		if !ok {
			return fmt.Errorf("notification: %T cannot be sent to slack", n)
		}
		return sendSlack(ctx, s.ToSlack())
	case Webhook:
		w, ok := n.(Webhookable)
		if !ok {
			return fmt.Errorf("notification: %T cannot be sent to a webhook", n)
		}
		return sendWebhook(ctx, w.ToWebhook())
	default:
		return fmt.Errorf("notification: unknown channel %q", channel)
	}
}

func sendSlack(ctx context.Context, m SlackMessage) error {
	url := m.WebhookURL
	if url == "" {
		url = config.Get("SLACK_WEBHOOK_URL", "")
	}
	if url == "" {
		return errors.New("notification: SLACK_WEBHOOK_URL not configured")
	}
	return post(ctx, url, m, nil, "", 5*time.Second)
}

func sendWebhook(ctx context.Context, m WebhookMessage) error {
	url := m.URL
	if url == "" {
		url = config.Get("STAFF_WEBHOOK_URL", "")
	}
	if url == "" {
		return errors.New("notification: STAFF_WEBHOOK_URL not configured")
	}
	return post(ctx, url, m.Payload, m.Headers, config.Get("STAFF_WEBHOOK_SECRET", ""), 10*time.Second)
}

func post(ctx context.Context, url string, body any, headers map[string]string, secret string, timeout time.Duration) error {
	resp, err := http.Post(url).
		WithContext(ctx).
		Headers(headers).
		Body(body).
		Sign(secret).
		Timeout(timeout).
		Retry(3, 500*time.Millisecond).
		Send()
	if err != nil {
		return fmt.Errorf("notification: post: %w", err)
	}
	if err := resp.Throw(); err != nil {
		return fmt.Errorf("notification: %w", err)
	}
	return nil
}
