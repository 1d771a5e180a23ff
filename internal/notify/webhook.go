// Launchpad - Youth Employability Platform
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/launchpad

package notify

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/goccy/go-json"
	"golang.org/x/time/rate"

	"github.com/tomtom215/launchpad/internal/breaker"
	"github.com/tomtom215/launchpad/internal/config"
	"github.com/tomtom215/launchpad/internal/models"
)

// Webhook headers.
const (
	HeaderSignature = "X-Launchpad-Signature"
	HeaderTimestamp = "X-Launchpad-Timestamp"
	HeaderDelivery  = "X-Launchpad-Delivery"
)

// WebhookPayload is the JSON body of a webhook delivery.
type WebhookPayload struct {
	Event        string              `json:"event"`
	Timestamp    time.Time           `json:"timestamp"`
	Recipient    WebhookRecipient    `json:"recipient"`
	Notification models.Notification `json:"notification"`
}

// WebhookRecipient identifies the user the notification is for.
type WebhookRecipient struct {
	UserID string `json:"user_id"`
	Name   string `json:"name,omitempty"`
}

// WebhookChannel posts signed JSON to the configured URL.
type WebhookChannel struct {
	url     string
	secret  []byte
	client  *http.Client
	limiter *rate.Limiter
	breaker *breaker.Breaker
	now     func() time.Time
}

// NewWebhookChannel returns nil when no URL is configured.
func NewWebhookChannel(cfg config.WebhookConfig) *WebhookChannel {
	if cfg.URL == "" {
		return nil
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	limit := rate.Inf
	burst := 1
	if cfg.RatePerSec > 0 {
		limit = rate.Limit(cfg.RatePerSec)
		burst = int(cfg.RatePerSec)
		if burst < 1 {
			burst = 1
		}
	}
	return &WebhookChannel{
		url:     cfg.URL,
		secret:  []byte(cfg.Secret),
		client:  &http.Client{Timeout: timeout},
		limiter: rate.NewLimiter(limit, burst),
		breaker: breaker.New("notify-webhook", breaker.Settings{}),
		now:     time.Now,
	}
}

// Name returns webhook.
func (c *WebhookChannel) Name() models.NotificationChannel { return models.ChannelWebhook }

// Sign returns the hex HMAC-SHA256 of "timestamp.body" under secret.
// Receivers recompute it to authenticate a delivery.
func Sign(secret []byte, timestamp string, body []byte) string {
	mac := hmac.New(sha256.New, secret)
	mac.Write([]byte(timestamp))
	mac.Write([]byte{'.'})
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

// Send posts the notification. 429 and 5xx responses are transient; other
// non-2xx responses are permanent and do not count against the breaker.
func (c *WebhookChannel) Send(ctx context.Context, d *Delivery) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return transientError(ErrorCodeRateLimited, err)
	}

	now := c.now().UTC()
	body, err := json.Marshal(WebhookPayload{
		Event:        "notification." + string(d.Notification.Type),
		Timestamp:    now,
		Recipient:    WebhookRecipient{UserID: d.Recipient.UserID, Name: d.Recipient.Name},
		Notification: d.Notification,
	})
	if err != nil {
		return permanentError(ErrorCodeUnknown, fmt.Errorf("marshal payload: %w", err))
	}
	ts := strconv.FormatInt(now.Unix(), 10)

	_, err = breaker.Execute(c.breaker, isPermanent, func() (struct{}, error) {
		return struct{}{}, c.post(ctx, d, ts, body)
	})
	if breaker.IsRejection(err) {
		return transientError(ErrorCodeServerError, err)
	}
	return err
}

func isPermanent(err error) bool {
	return err != nil && !IsTransient(err)
}

func (c *WebhookChannel) post(ctx context.Context, d *Delivery, ts string, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return permanentError(ErrorCodeInvalidConfig, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "Launchpad-Webhook/1.0")
	req.Header.Set(HeaderTimestamp, ts)
	req.Header.Set(HeaderDelivery, d.Notification.ID)
	if len(c.secret) > 0 {
		req.Header.Set(HeaderSignature, "sha256="+Sign(c.secret, ts, body))
	}

	resp, err := c.client.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return transientError(ErrorCodeTimeout, err)
		}
		return transientError(ErrorCodeConnectionFailed, err)
	}
	defer resp.Body.Close()
	snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return nil
	case resp.StatusCode == http.StatusTooManyRequests:
		return transientError(ErrorCodeRateLimited, fmt.Errorf("webhook returned %d", resp.StatusCode))
	case resp.StatusCode >= 500:
		return transientError(ErrorCodeServerError, fmt.Errorf("webhook returned %d: %s", resp.StatusCode, snippet))
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return permanentError(ErrorCodeAuthFailed, fmt.Errorf("webhook returned %d", resp.StatusCode))
	default:
		return permanentError(ErrorCodeRejected, fmt.Errorf("webhook returned %d: %s", resp.StatusCode, snippet))
	}
}
