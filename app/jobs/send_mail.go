// Package jobs holds the café's queued background jobs.
package jobs

import (
	"context"
	"fmt"

	"github.com/shashiranjanraj/cafe/pkg/mail"
	"github.com/shashiranjanraj/cafe/pkg/queue"
)

func init() {
	queue.Register(queue.TypeName(&SendMailJob{}), func() queue.Job { return &SendMailJob{} })
	queue.Register(queue.TypeName(&NotifyStaffJob{}), func() queue.Job { return &NotifyStaffJob{} })
}

// SendMailJob delivers one HTML e-mail.
type SendMailJob struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	HTML    string `json:"html"`
}

func (j *SendMailJob) Handle(context.Context) error {
	if err := mail.To(j.To).Subject(j.Subject).Body(j.HTML).Send(); err != nil {
		return fmt.Errorf("jobs: send mail to %s: %w", j.To, err)
	}
	return nil
}
