package jobs

import (
	"context"
	"fmt"

	"github.com/shashiranjanraj/cafe/config"
	"github.com/shashiranjanraj/cafe/pkg/notification"
)

// NotifyStaffJob alerts the counter about an order event on every channel
// that has a URL configured.
type NotifyStaffJob struct {
	Event   string                 `json:"event"`
	Title   string                 `json:"title"`
	Text    string                 `json:"text"`
	Color   string                 `json:"color"`
	Payload map[string]interface{} `json:"payload"`
}

func (j *NotifyStaffJob) Via() []string {
	var channels []string
	if config.Get("SLACK_WEBHOOK_URL", "") != "" {
		channels = append(channels, notification.Slack)
	}
	if config.Get("STAFF_WEBHOOK_URL", "") != "" {
		channels = append(channels, notification.Webhook)
	}
	return channels
}

func (j *NotifyStaffJob) ToSlack() notification.SlackMessage {
	return notification.SlackMessage{
		Text: j.Title,
		Attachments: []notification.SlackAttachment{{
			Color:  j.Color,
			Text:   j.Text,
			Footer: j.Event,
		}},
	}
}

func (j *NotifyStaffJob) ToWebhook() notification.WebhookMessage {
	return notification.WebhookMessage{
		Payload: map[string]interface{}{
			"event": j.Event,
			"title": j.Title,
			"data":  j.Payload,
		},
		Headers: map[string]string{"X-Cafe-Event": j.Event},
	}
}

func (j *NotifyStaffJob) Handle(ctx context.Context) error {
	if err := notification.Send(ctx, j); err != nil {
		return fmt.Errorf("jobs: notify staff (%s): %w", j.Event, err)
	}
	return nil
}
