// Package mailer sends transactional email.
package mailer

import (
	"bytes"
	"context"
	"fmt"
	"html"
	"mime"
	"mime/multipart"
	"net"
	"net/smtp"
	"net/textproto"
	"strconv"
	"strings"
	"time"

	"github.com/growlify/growlify-api/internal/config"
)

// ResetPasswordEmail is the input of a password reset message
type ResetPasswordEmail struct {
	To        string
	Name      string
	ResetLink string
}

// Mailer delivers transactional email
type Mailer interface {
	SendResetPassword(ctx context.Context, msg ResetPasswordEmail) error
}

// NoOpMailer drops every message, used when SMTP is not configured
type NoOpMailer struct{}

// SendResetPassword does nothing
func (NoOpMailer) SendResetPassword(ctx context.Context, msg ResetPasswordEmail) error { return nil }

type sendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// SMTPMailer sends mail through an SMTP relay with STARTTLS
type SMTPMailer struct {
	cfg  config.SMTPConfig
	send sendFunc
	now  func() time.Time
}

// NewSMTPMailer creates an SMTPMailer
func NewSMTPMailer(cfg config.SMTPConfig) *SMTPMailer {
	return &SMTPMailer{cfg: cfg, send: smtp.SendMail, now: time.Now}
}

// SendResetPassword emails the reset link
func (m *SMTPMailer) SendResetPassword(ctx context.Context, msg ResetPasswordEmail) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	body, err := buildResetPasswordMessage(m.cfg.From, msg, m.now())
	if err != nil {
		return err
	}

	var auth smtp.Auth
	if m.cfg.User != "" && m.cfg.Password != "" {
		auth = smtp.PlainAuth("", m.cfg.User, m.cfg.Password, m.cfg.Host)
	}

	addr := net.JoinHostPort(m.cfg.Host, strconv.Itoa(m.cfg.Port))
	if err := m.send(addr, auth, envelopeAddress(m.cfg.From), []string{msg.To}, body); err != nil {
		return fmt.Errorf("send reset email: %w", err)
	}
	return nil
}

// firstName returns the greeting name, "Olá" when unknown
func firstName(name string) string {
	if fields := strings.Fields(name); len(fields) > 0 {
		return fields[0]
	}
	return "Olá"
}

// envelopeAddress extracts the bare address from "Name <addr>"
func envelopeAddress(from string) string {
	if i := strings.LastIndex(from, "<"); i >= 0 {
		if j := strings.LastIndex(from, ">"); j > i {
			return from[i+1 : j]
		}
	}
	return strings.TrimSpace(from)
}

func buildResetPasswordMessage(from string, msg ResetPasswordEmail, now time.Time) ([]byte, error) {
	greeting := firstName(msg.Name)

	text := fmt.Sprintf("%s,\n\nRecebemos uma solicitação para redefinir sua senha.\n\n"+
		"Use o link abaixo para criar uma nova senha (válido por tempo limitado):\n%s\n\n"+
		"Se você não solicitou isso, ignore este e-mail.\n", greeting, msg.ResetLink)

	link := html.EscapeString(msg.ResetLink)
	htmlBody := fmt.Sprintf(`<div style="font-family: Inter, Arial, sans-serif; line-height: 1.5; color: #0b1220;">
<p style="margin:0 0 12px;">%s,</p>
<p style="margin:0 0 12px;">Recebemos uma solicitação para redefinir sua senha.</p>
<p style="margin:0 0 12px;">Use o link abaixo para criar uma nova senha (válido por tempo limitado):</p>
<p style="margin:0 0 18px;"><a href="%s" target="_blank" rel="noreferrer">%s</a></p>
<p style="margin:0;">Se você não solicitou isso, ignore este e-mail.</p>
</div>`, html.EscapeString(greeting), link, link)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	headers := [][2]string{
		{"From", from},
		{"To", msg.To},
		{"Subject", mime.QEncoding.Encode("utf-8", "Redefinição de senha - Growlify")},
		{"Date", now.Format(time.RFC1123Z)},
		{"MIME-Version", "1.0"},
		{"Content-Type", "multipart/alternative; boundary=" + mw.Boundary()},
	}

	var out bytes.Buffer
	for _, h := range headers {
		fmt.Fprintf(&out, "%s: %s\r\n", h[0], h[1])
	}
	out.WriteString("\r\n")

	for _, part := range []struct {
		contentType string
		body        string
	}{
		{"text/plain; charset=utf-8", text},
		{"text/html; charset=utf-8", htmlBody},
	} {
		w, err := mw.CreatePart(textproto.MIMEHeader{
			"Content-Type":              {part.contentType},
			"Content-Transfer-Encoding": {"8bit"},
		})
		if err != nil {
			return nil, err
		}
		if _, err := w.Write([]byte(part.body)); err != nil {
			return nil, err
		}
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}

	out.Write(buf.Bytes())
	return out.Bytes(), nil
}
