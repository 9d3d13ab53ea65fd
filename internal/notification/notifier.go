// Package notification bridges the outreach channels to the sequence
// processor.
package notification

import (
	"context"

	"bdc_backend/internal/email"
	"bdc_backend/internal/sequences/processor"
	"bdc_backend/internal/sms"
)

// Notifier fans sequence step sends out to the configured channels.
type Notifier struct {
	email email.Sender
	sms   *sms.Client
}

func New(sender email.Sender, smsClient *sms.Client) *Notifier {
	return &Notifier{email: sender, sms: smsClient}
}

func (n *Notifier) SendEmail(ctx context.Context, to, subject, body string) error {
	return n.email.Send(ctx, to, subject, body)
}

func (n *Notifier) SendSMS(ctx context.Context, to, body string) error {
	return n.sms.Send(ctx, to, body)
}

var _ processor.Notifier = (*Notifier)(nil)
