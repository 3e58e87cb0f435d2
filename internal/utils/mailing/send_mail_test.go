package mailing

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/gomail.v2"
)

type captureSender struct {
	messages []*gomail.Message
}

func (c *captureSender) DialAndSend(m ...*gomail.Message) error {
	c.messages = append(c.messages, m...)
	return nil
}

func TestSendMail(t *testing.T) {
	sender := &captureSender{}
	m := NewMailerWithSender(MailConfig{
		SMTPHost:   "smtp.example.org",
		SMTPEmail:  "noreply@example.org",
		SMTPSender: "Food Distribution Platform",
	}, sender)
	assert.True(t, m.Configured())

	require.NoError(t, m.SendMail(context.Background(), "ada@example.org", "Hello", "<p>hi</p>"))
	require.Len(t, sender.messages, 1)

	msg := sender.messages[0]
	assert.Equal(t, []string{"ada@example.org"}, msg.GetHeader("To"))
	assert.Equal(t, []string{"Hello"}, msg.GetHeader("Subject"))

	var buf bytes.Buffer
	_, err := msg.WriteTo(&buf)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "<p>hi</p>")
}

func TestSendMail_CancelledContext(t *testing.T) {
	sender := &captureSender{}
	m := NewMailerWithSender(MailConfig{}, sender)
	assert.False(t, m.Configured())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, m.SendMail(ctx, "a@example.org", "s", "b"), context.Canceled)
	assert.Empty(t, sender.messages)
}
