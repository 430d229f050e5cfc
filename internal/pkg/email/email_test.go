package email

import (
	"bytes"
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSendWithoutRelayLogsInstead(t *testing.T) {
	var buf bytes.Buffer
	s := NewSMTPSender(SMTPConfig{FromEmail: "noreply@org.example"}, zerolog.New(&buf))

	id, err := s.Send(context.Background(), Message{To: "ada@example.com", Subject: "Hello", HTML: "<p>hi</p>"})
	require.NoError(t, err)
	assert.Contains(t, id, "@org.example>")
	assert.Contains(t, buf.String(), "ada@example.com")
}

func TestSendRequiresRecipient(t *testing.T) {
	s := NewSMTPSender(SMTPConfig{}, zerolog.Nop())
	_, err := s.Send(context.Background(), Message{Subject: "x"})
	assert.Error(t, err)
}

func TestSendHonoursCancelledContext(t *testing.T) {
	s := NewSMTPSender(SMTPConfig{}, zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := s.Send(ctx, Message{To: "ada@example.com"})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestBuildMessageHeaders(t *testing.T) {
	s := NewSMTPSender(SMTPConfig{FromName: "Recruitment Team", FromEmail: "noreply@org.example"}, zerolog.Nop())
	raw := string(s.buildMessage(Message{To: "ada@example.com", ToName: "Ada", Subject: "Your application", HTML: "<p>ok</p>"}, "<id@org.example>"))

	assert.Contains(t, raw, "From: Recruitment Team <noreply@org.example>\r\n")
	assert.Contains(t, raw, "To: Ada <ada@example.com>\r\n")
	assert.Contains(t, raw, "Message-ID: <id@org.example>\r\n")
	assert.Contains(t, raw, "Content-Type: text/html; charset=UTF-8\r\n\r\n<p>ok</p>")
}
