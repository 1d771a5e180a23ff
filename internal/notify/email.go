// Launchpad - Youth Employability Platform
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/launchpad

package notify

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"mime"
	"net"
	"net/mail"
	"net/smtp"
	"net/textproto"
	"strings"
	"time"

	"github.com/tomtom215/launchpad/internal/config"
	"github.com/tomtom215/launchpad/internal/models"
)

// EmailChannel sends plain-text mail over SMTP.
type EmailChannel struct {
	cfg     config.SMTPConfig
	baseURL string
	timeout time.Duration
	now     func() time.Time
	// send is swapped in tests.
	send func(ctx context.Context, to, msg string) error
}

// NewEmailChannel returns nil when no SMTP host is configured. baseURL
// turns notification links into absolute URLs.
func NewEmailChannel(cfg config.SMTPConfig, baseURL string) *EmailChannel {
	if cfg.Host == "" {
		return nil
	}
	if cfg.Port == 0 {
		cfg.Port = 587
	}
	c := &EmailChannel{
		cfg:     cfg,
		baseURL: strings.TrimRight(baseURL, "/"),
		timeout: 30 * time.Second,
		now:     time.Now,
	}
	c.send = c.sendSMTP
	return c
}

// Name returns email.
func (c *EmailChannel) Name() models.NotificationChannel { return models.ChannelEmail }

// Send mails the notification to the recipient's address.
func (c *EmailChannel) Send(ctx context.Context, d *Delivery) error {
	addr, err := mail.ParseAddress(d.Recipient.Email)
	if err != nil {
		return permanentError(ErrorCodeInvalidRecipient, fmt.Errorf("recipient email: %w", err))
	}
	msg := c.buildMessage(addr.Address, d)
	if err := c.send(ctx, addr.Address, msg); err != nil {
		code := classifyEmailError(err)
		return &DeliveryError{Code: code, Transient: isTransientEmailError(code), Err: err}
	}
	return nil
}

func (c *EmailChannel) buildMessage(to string, d *Delivery) string {
	fromName := c.cfg.FromName
	if fromName == "" {
		fromName = "Launchpad"
	}
	from := mail.Address{Name: fromName, Address: c.cfg.From}
	rcpt := mail.Address{Name: d.Recipient.Name, Address: to}
	n := d.Notification

	var msg strings.Builder
	fmt.Fprintf(&msg, "From: %s\r\n", from.String())
	fmt.Fprintf(&msg, "To: %s\r\n", rcpt.String())
	fmt.Fprintf(&msg, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", headerSafe(n.Title)))
	fmt.Fprintf(&msg, "Date: %s\r\n", c.now().UTC().Format(time.RFC1123Z))
	if n.ID != "" {
		fmt.Fprintf(&msg, "X-Launchpad-Notification: %s\r\n", headerSafe(n.ID))
	}
	fmt.Fprintf(&msg, "X-Launchpad-Type: %s\r\n", n.Type)
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/plain; charset=UTF-8\r\n")
	msg.WriteString("Content-Transfer-Encoding: 8bit\r\n")
	msg.WriteString("\r\n")

	if d.Recipient.Name != "" {
		fmt.Fprintf(&msg, "Hi %s,\r\n\r\n", d.Recipient.Name)
	}
	msg.WriteString(normalizeNewlines(n.Body))
	msg.WriteString("\r\n")
	if n.Link != "" {
		link := n.Link
		if strings.HasPrefix(link, "/") {
			link = c.baseURL + link
		}
		fmt.Fprintf(&msg, "\r\n%s\r\n", link)
	}
	msg.WriteString("\r\n-- \r\nYou can change which emails you receive in your notification settings.\r\n")
	return msg.String()
}

func headerSafe(s string) string {
	return strings.NewReplacer("\r", " ", "\n", " ").Replace(s)
}

func normalizeNewlines(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\n", "\r\n")
}

func (c *EmailChannel) sendSMTP(ctx context.Context, to, msg string) error {
	addr := net.JoinHostPort(c.cfg.Host, fmt.Sprint(c.cfg.Port))

	dialer := &net.Dialer{Timeout: c.timeout}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("connect to SMTP server: %w", err)
	}
	defer func() { _ = conn.Close() }()
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	} else {
		_ = conn.SetDeadline(time.Now().Add(c.timeout))
	}

	client, err := smtp.NewClient(conn, c.cfg.Host)
	if err != nil {
		return fmt.Errorf("create SMTP client: %w", err)
	}
	defer func() { _ = client.Close() }()

	if c.cfg.UseTLS {
		if err := client.StartTLS(&tls.Config{ServerName: c.cfg.Host, MinVersion: tls.VersionTLS12}); err != nil {
			return fmt.Errorf("start TLS: %w", err)
		}
	}
	if c.cfg.Username != "" && c.cfg.Password != "" {
		auth := smtp.PlainAuth("", c.cfg.Username, c.cfg.Password, c.cfg.Host)
		if err := client.Auth(auth); err != nil {
			return fmt.Errorf("SMTP authentication failed: %w", err)
		}
	}
	if err := client.Mail(c.cfg.From); err != nil {
		return fmt.Errorf("set sender: %w", err)
	}
	if err := client.Rcpt(to); err != nil {
		return fmt.Errorf("set recipient: %w", err)
	}
	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("start message: %w", err)
	}
	if _, err := w.Write([]byte(msg)); err != nil {
		return fmt.Errorf("write message: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("close message: %w", err)
	}
	// The message is accepted once DATA completes.
	_ = client.Quit()
	return nil
}

func classifyEmailError(err error) string {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return ErrorCodeTimeout
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrorCodeTimeout
	}
	var tpErr *textproto.Error
	if errors.As(err, &tpErr) {
		switch {
		case tpErr.Code == 535:
			return ErrorCodeAuthFailed
		case tpErr.Code >= 400 && tpErr.Code < 500:
			return ErrorCodeServerError
		default:
			return ErrorCodeRejected
		}
	}
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "authentication"):
		return ErrorCodeAuthFailed
	case strings.Contains(msg, "connect"):
		return ErrorCodeConnectionFailed
	}
	return ErrorCodeUnknown
}

func isTransientEmailError(code string) bool {
	switch code {
	case ErrorCodeConnectionFailed, ErrorCodeTimeout, ErrorCodeRateLimited, ErrorCodeServerError:
		return true
	}
	return false
}
