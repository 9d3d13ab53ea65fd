package templates

import (
	"context"
	"fmt"
)

// Default templates inserted on first boot so new installs can build
// sequences immediately. Seeding only runs against empty tables; operator
// edits are never overwritten.

var defaultEmailTemplates = []struct {
	name, subject, body string
}{
	{
		name:    "Initial Contact",
		subject: "Thanks for your interest, {lead_name}",
		body:    "Hi {lead_name},\n\nThanks for reaching out. One of our team members will be in touch shortly to answer your questions and help you find the right vehicle.\n\nTalk soon,\nThe Sales Team",
	},
	{
		name:    "Follow Up",
		subject: "Still looking, {lead_name}?",
		body:    "Hi {lead_name},\n\nJust checking in. If you have any questions about pricing, availability, or financing, reply to this email and we will get right back to you.\n\nBest,\nThe Sales Team",
	},
	{
		name:    "Appointment Reminder",
		subject: "Your upcoming visit",
		body:    "Hi {lead_name},\n\nThis is a reminder about your upcoming appointment with us. If you need to reschedule, just let us know.\n\nSee you soon,\nThe Sales Team",
	},
}

var defaultSMSTemplates = []struct {
	name, body string
}{
	{
		name: "Quick Check-In",
		body: "Hi {lead_name}, this is the dealership. Still interested? Reply and we'll help you out.",
	},
	{
		name: "Appointment Reminder",
		body: "Hi {lead_name}, a quick reminder about your upcoming appointment with us. Reply to reschedule.",
	},
}

// Seed inserts the default templates when the tables are empty.
func (r *Repository) Seed(ctx context.Context) error {
	var emailCount, smsCount int
	err := r.pool.QueryRow(ctx,
		`SELECT (SELECT COUNT(*) FROM email_templates), (SELECT COUNT(*) FROM sms_templates)`,
	).Scan(&emailCount, &smsCount)
	if err != nil {
		return fmt.Errorf("count templates: %w", err)
	}

	if emailCount == 0 {
		for _, t := range defaultEmailTemplates {
			if _, err := r.CreateEmail(ctx, t.name, t.subject, t.body); err != nil {
				return fmt.Errorf("seed email template %q: %w", t.name, err)
			}
		}
	}
	if smsCount == 0 {
		for _, t := range defaultSMSTemplates {
			if _, err := r.CreateSMS(ctx, t.name, t.body); err != nil {
				return fmt.Errorf("seed sms template %q: %w", t.name, err)
			}
		}
	}
	return nil
}
