package mailing

import (
	"context"

	"FoodShare-Backend/internal/utils"

	"gopkg.in/gomail.v2"
)

type MailConfig struct {
	AppURL       string
	SMTPHost     string
	SMTPPort     int
	SMTPSender   string
	SMTPEmail    string
	SMTPPassword string
}

func LoadMailConfig(cfg *utils.Config) MailConfig {
	return MailConfig{
		AppURL:       cfg.AppURL,
		SMTPHost:     cfg.SMTPHost,
		SMTPPort:     cfg.SMTPPortNumber(),
		SMTPSender:   cfg.SMTPSenderName,
		SMTPEmail:    cfg.SMTPAuthEmail,
		SMTPPassword: cfg.SMTPAuthPassword,
	}
}

// Sender is satisfied by gomail.Dialer.
type Sender interface {
	DialAndSend(m ...*gomail.Message) error
}

type Mailer struct {
	config MailConfig
	sender Sender
}

func NewMailer(config MailConfig) *Mailer {
	dialer := gomail.NewDialer(
		config.SMTPHost,
		config.SMTPPort,
		config.SMTPEmail,
		config.SMTPPassword,
	)
	return &Mailer{config: config, sender: dialer}
}

// NewMailerWithSender is used by tests to capture outgoing mail.
func NewMailerWithSender(config MailConfig, sender Sender) *Mailer {
	return &Mailer{config: config, sender: sender}
}

func (m *Mailer) Configured() bool {
	return m.config.SMTPHost != "" && m.config.SMTPEmail != ""
}

func (m *Mailer) AppURL() string {
	return m.config.AppURL
}

func (m *Mailer) SendMail(ctx context.Context, toEmail string, subject string, body string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	mailer := gomail.NewMessage()
	mailer.SetHeader("From", mailer.FormatAddress(m.config.SMTPEmail, m.config.SMTPSender))
	mailer.SetHeader("To", toEmail)
	mailer.SetHeader("Subject", subject)
	mailer.SetBody("text/html", body)

	return m.sender.DialAndSend(mailer)
}
