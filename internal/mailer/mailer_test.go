package mailer

import (
	"context"
	"errors"
	"net/smtp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/growlify/growlify-api/internal/config"
)

type captured struct {
	addr string
	auth smtp.Auth
	from string
	to   []string
	msg  []byte
}

func newTestMailer(cfg config.SMTPConfig, c *captured, err error) *SMTPMailer {
	return &SMTPMailer{
		cfg: cfg,
		send: func(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
			c.addr, c.auth, c.from, c.to, c.msg = addr, a, from, to, msg
			return err
		},
		now: func() time.Time { return time.Date(2026, 2, 16, 12, 0, 0, 0, time.UTC) },
	}
}

func TestSMTPMailer_SendResetPassword(t *testing.T) {
	var c captured
	m := newTestMailer(config.SMTPConfig{
		Host:     "smtp.example.com",
		Port:     587,
		User:     "mailer",
		Password: "secret",
		From:     "Growlify <no-reply@growlify.app>",
	}, &c, nil)

	err := m.SendResetPassword(context.Background(), ResetPasswordEmail{
		To:        "ana@example.com",
		Name:      "Ana Souza",
		ResetLink: "https://app.growlify.app/reset-password?token=abc&x=1",
	})
	require.NoError(t, err)

	assert.Equal(t, "smtp.example.com:587", c.addr)
	assert.NotNil(t, c.auth)
	assert.Equal(t, "no-reply@growlify.app", c.from)
	assert.Equal(t, []string{"ana@example.com"}, c.to)

	body := string(c.msg)
	assert.Contains(t, body, "To: ana@example.com\r\n")
	assert.Contains(t, body, "multipart/alternative")
	assert.Contains(t, body, "Ana,\n")
	assert.Contains(t, body, "https://app.growlify.app/reset-password?token=abc&x=1\n")
	assert.Contains(t, body, `href="https://app.growlify.app/reset-password?token=abc&amp;x=1"`)
}

func TestSMTPMailer_NoAuthWithoutCredentials(t *testing.T) {
	var c captured
	m := newTestMailer(config.SMTPConfig{Host: "localhost", Port: 25, From: "no-reply@growlify.app"}, &c, nil)

	require.NoError(t, m.SendResetPassword(context.Background(), ResetPasswordEmail{To: "a@b.c", ResetLink: "x"}))
	assert.Nil(t, c.auth)
	assert.Equal(t, "no-reply@growlify.app", c.from)
	assert.Contains(t, string(c.msg), "Olá,\n")
}

func TestSMTPMailer_PropagatesSendError(t *testing.T) {
	var c captured
	m := newTestMailer(config.SMTPConfig{Host: "localhost", Port: 25, From: "x@y.z"}, &c, errors.New("connection refused"))

	err := m.SendResetPassword(context.Background(), ResetPasswordEmail{To: "a@b.c", ResetLink: "x"})
	assert.ErrorContains(t, err, "connection refused")
}

func TestSMTPMailer_CanceledContext(t *testing.T) {
	var c captured
	m := newTestMailer(config.SMTPConfig{Host: "localhost", Port: 25, From: "x@y.z"}, &c, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := m.SendResetPassword(ctx, ResetPasswordEmail{To: "a@b.c", ResetLink: "x"})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, c.addr)
}

func TestEnvelopeAddress(t *testing.T) {
	assert.Equal(t, "no-reply@growlify.app", envelopeAddress("Growlify <no-reply@growlify.app>"))
	assert.Equal(t, "plain@growlify.app", envelopeAddress(" plain@growlify.app "))
}

func TestFirstName(t *testing.T) {
	assert.Equal(t, "Ana", firstName("  Ana   Souza "))
	assert.Equal(t, "Olá", firstName("   "))
	assert.True(t, strings.HasPrefix(firstName("Bruno"), "B"))
}
