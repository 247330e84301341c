// Package email forwards synced reports to the responsible government
// agencies.
package email

import (
	"context"
	"fmt"

	"reportaqui/config"
	"reportaqui/queue"

	"github.com/apex/log"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

// Forwarder mails report summaries with their evidence attached.
type Forwarder struct {
	cfg    *config.Config
	client *sendgrid.Client
}

func NewForwarder(cfg *config.Config) *Forwarder {
	return &Forwarder{
		cfg:    cfg,
		client: sendgrid.NewSendClient(cfg.SendGridAPIKey),
	}
}

// ForwardReport sends the report to every configured agency recipient.
// Per-recipient failures are logged and skipped.
func (f *Forwarder) ForwardReport(ctx context.Context, r *queue.PendingReport, seq int64) error {
	if len(f.cfg.AgencyRecipients) == 0 {
		return nil
	}
	log.Infof("Forwarding report %s to %d agency recipients", r.Protocol, len(f.cfg.AgencyRecipients))
	for _, recipient := range f.cfg.AgencyRecipients {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("forwarding of report %s cut short: %w", r.Protocol, err)
		}
		if err := f.sendOneEmail(ctx, recipient, r, seq); err != nil {
			log.Warnf("Error forwarding report %s to %s: %v", r.Protocol, recipient, err)
		}
	}
	return nil
}

func (f *Forwarder) sendOneEmail(ctx context.Context, recipient string, r *queue.PendingReport, seq int64) error {
	from := mail.NewEmail(f.cfg.SendGridFromName, f.cfg.SendGridFromEmail)
	to := mail.NewEmail(recipient, recipient)
	subject := fmt.Sprintf("Citizen report %s: %s in %s/%s", r.Protocol, r.Category, r.City, r.UF)

	author := "Anonymous"
	if !r.IsAnonymous {
		author = fmt.Sprintf("%s (%s)", r.AuthorName, r.AuthorContact)
	}
	plain := fmt.Sprintf(
		"Protocol: %s\nRemote id: %d\nCategory: %s\nLocation: %s, %s/%s\nOccurred at: %s\nAuthor: %s\n\n%s\n",
		r.Protocol, seq, r.Category, r.AddressText, r.City, r.UF, r.OccurredAt, author, r.Description)
	html := fmt.Sprintf(
		"<p><strong>Citizen report %s</strong></p><p>Category: %s<br>Location: %s, %s/%s<br>Occurred at: %s<br>Author: %s</p><p>%s</p>",
		r.Protocol, r.Category, r.AddressText, r.City, r.UF, r.OccurredAt, author, r.Description)

	message := mail.NewV3Mail()
	message.SetFrom(from)
	message.Subject = subject

	p := mail.NewPersonalization()
	p.AddTos(to)
	message.AddPersonalizations(p)

	message.AddContent(mail.NewContent("text/plain", plain))
	message.AddContent(mail.NewContent("text/html", html))

	// Evidence content is already base64, exactly what the attachment needs.
	for _, ev := range r.Evidence {
		attachment := mail.NewAttachment()
		attachment.SetContent(ev.Content)
		attachment.SetType(ev.MimeType)
		attachment.SetFilename(ev.Name)
		attachment.SetDisposition("attachment")
		message.AddAttachment(attachment)
	}

	response, err := f.client.SendWithContext(ctx, message)
	if err != nil {
		return err
	}
	if response.StatusCode >= 300 {
		return fmt.Errorf("sendgrid returned status %d: %s", response.StatusCode, response.Body)
	}
	return nil
}
