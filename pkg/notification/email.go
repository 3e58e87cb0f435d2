package notification

import (
	"context"
	"errors"
	"fmt"
	"html"

	"FoodShare-Backend/entities"
)

// MailSender is implemented by mailing.Mailer.
type MailSender interface {
	SendMail(ctx context.Context, toEmail string, subject string, body string) error
}

type EmailChannel struct {
	mailer MailSender
	appURL string
}

func NewEmailChannel(mailer MailSender, appURL string) *EmailChannel {
	return &EmailChannel{mailer: mailer, appURL: appURL}
}

func (c *EmailChannel) Name() string { return entities.ChannelEmail }

func (c *EmailChannel) Send(ctx context.Context, target Target, msg Message) error {
	if target.Email == "" {
		return errors.New("target has no email address")
	}
	subject := msg.Subject
	if msg.Urgent {
		subject = "[URGENT] " + subject
	}
	return c.mailer.SendMail(ctx, target.Email, subject, c.render(target, msg))
}

func (c *EmailChannel) render(target Target, msg Message) string {
	link := ""
	if c.appURL != "" && msg.DonationID != nil {
		link = fmt.Sprintf(`<p><a href="%s/donations/%s">View donation</a></p>`, c.appURL, msg.DonationID)
	}
	return fmt.Sprintf(
		`<html><body><p>Hello %s,</p><p>%s</p>%s<p>Food Distribution Platform</p></body></html>`,
		html.EscapeString(target.Name), html.EscapeString(msg.Body), link,
	)
}
