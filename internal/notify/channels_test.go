// Launchpad - Youth Employability Platform
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/launchpad

package notify

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/launchpad/internal/config"
	"github.com/tomtom215/launchpad/internal/models"
)

func sampleDelivery() *Delivery {
	return &Delivery{
		Recipient: Recipient{UserID: "u1", Email: "amina@example.org", Name: "Amina"},
		Notification: models.Notification{
			ID:    "n-1",
			Type:  models.NotifyApplicationStatus,
			Title: "Your application is now interview",
			Body:  "Line one\nLine two",
			Link:  "/applications/a1",
		},
	}
}

func TestInAppChannel_Send(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	pusher := &recordingPusher{}
	ch := NewInAppChannel(store, pusher)

	if err := ch.Send(context.Background(), sampleDelivery()); err != nil {
		t.Fatalf("Send() error = %v", err)
	}
	if len(store.notifications) != 1 || store.notifications[0].UserID != "u1" {
		t.Fatalf("stored = %+v", store.notifications)
	}
	want := []string{"u1:notification", "u1:unread_count"}
	if strings.Join(pusher.messages, ",") != strings.Join(want, ",") {
		t.Errorf("pushes = %v, want %v", pusher.messages, want)
	}
}

func TestInAppChannel_Errors(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	ch := NewInAppChannel(store, nil)

	d := sampleDelivery()
	d.Recipient.UserID = ""
	if err := ch.Send(context.Background(), d); IsTransient(err) || err == nil {
		t.Errorf("empty recipient error = %v, want permanent", err)
	}

	store.createErr = errors.New("database is locked")
	if err := ch.Send(context.Background(), sampleDelivery()); !IsTransient(err) {
		t.Errorf("store error = %v, want transient", err)
	}
}

func TestNewEmailChannel_DisabledWithoutHost(t *testing.T) {
	t.Parallel()

	if ch := NewEmailChannel(config.SMTPConfig{}, ""); ch != nil {
		t.Error("NewEmailChannel() without host returned a channel")
	}
}

func TestEmailChannel_Send(t *testing.T) {
	t.Parallel()

	ch := NewEmailChannel(config.SMTPConfig{Host: "smtp.example.org", From: "noreply@launchpad.example"}, "https://launchpad.example/")
	ch.now = func() time.Time { return time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC) }
	var gotTo, gotMsg string
	ch.send = func(_ context.Context, to, msg string) error {
		gotTo, gotMsg = to, msg
		return nil
	}

	d := sampleDelivery()
	d.Notification.Title = "Hello\r\nBcc: evil@example.org"
	if err := ch.Send(context.Background(), d); err != nil {
		t.Fatalf("Send() error = %v", err)
	}
	if gotTo != "amina@example.org" {
		t.Errorf("to = %q", gotTo)
	}
	for _, want := range []string{
		"From: \"Launchpad\" <noreply@launchpad.example>\r\n",
		"To: \"Amina\" <amina@example.org>\r\n",
		"Subject: Hello  Bcc: evil@example.org\r\n",
		"X-Launchpad-Notification: n-1\r\n",
		"Hi Amina,\r\n",
		"Line one\r\nLine two\r\n",
		"https://launchpad.example/applications/a1\r\n",
	} {
		if !strings.Contains(gotMsg, want) {
			t.Errorf("message missing %q:\n%s", want, gotMsg)
		}
	}
	if strings.Contains(gotMsg, "\r\nBcc:") {
		t.Error("header injection not neutralized")
	}
}

func TestEmailChannel_SendErrors(t *testing.T) {
	t.Parallel()

	ch := NewEmailChannel(config.SMTPConfig{Host: "smtp.example.org", From: "noreply@launchpad.example"}, "")

	d := sampleDelivery()
	d.Recipient.Email = "not-an-address"
	if err := ch.Send(context.Background(), d); err == nil || IsTransient(err) || ErrorCode(err) != ErrorCodeInvalidRecipient {
		t.Errorf("invalid address error = %v", err)
	}

	ch.send = func(context.Context, string, string) error {
		return fmt.Errorf("set recipient: %w", &textproto.Error{Code: 451, Msg: "try later"})
	}
	if err := ch.Send(context.Background(), sampleDelivery()); !IsTransient(err) {
		t.Errorf("451 error = %v, want transient", err)
	}
}

func TestClassifyEmailError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want string
	}{
		{"4xx reply", &textproto.Error{Code: 421, Msg: "busy"}, ErrorCodeServerError},
		{"5xx reply", &textproto.Error{Code: 550, Msg: "no such user"}, ErrorCodeRejected},
		{"auth reply", &textproto.Error{Code: 535, Msg: "bad credentials"}, ErrorCodeAuthFailed},
		{"deadline", fmt.Errorf("write: %w", context.DeadlineExceeded), ErrorCodeTimeout},
		{"dial", errors.New("connect to SMTP server: refused"), ErrorCodeConnectionFailed},
		{"other", errors.New("boom"), ErrorCodeUnknown},
	}
	for _, tt := range tests {
		if got := classifyEmailError(tt.err); got != tt.want {
			t.Errorf("%s: classifyEmailError() = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestWebhookChannel_SignsPayload(t *testing.T) {
	t.Parallel()

	secret := "s3cret"
	type received struct {
		header http.Header
		body   []byte
	}
	got := make(chan received, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		got <- received{header: r.Header.Clone(), body: body}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	ch := NewWebhookChannel(config.WebhookConfig{URL: srv.URL, Secret: secret, RatePerSec: 100})
	if err := ch.Send(context.Background(), sampleDelivery()); err != nil {
		t.Fatalf("Send() error = %v", err)
	}

	r := <-got
	ts := r.header.Get(HeaderTimestamp)
	if want := "sha256=" + Sign([]byte(secret), ts, r.body); r.header.Get(HeaderSignature) != want {
		t.Errorf("signature = %q, want %q", r.header.Get(HeaderSignature), want)
	}
	if r.header.Get(HeaderDelivery) != "n-1" {
		t.Errorf("delivery header = %q", r.header.Get(HeaderDelivery))
	}
	var payload WebhookPayload
	if err := json.Unmarshal(r.body, &payload); err != nil {
		t.Fatalf("payload: %v", err)
	}
	if payload.Event != "notification.application_status" || payload.Recipient.UserID != "u1" {
		t.Errorf("payload = %+v", payload)
	}
}

func TestWebhookChannel_StatusClassification(t *testing.T) {
	t.Parallel()

	tests := []struct {
		status        int
		wantErr       bool
		wantTransient bool
	}{
		{http.StatusOK, false, false},
		{http.StatusTooManyRequests, true, true},
		{http.StatusBadGateway, true, true},
		{http.StatusUnauthorized, true, false},
		{http.StatusBadRequest, true, false},
	}
	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			t.Parallel()
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
			}))
			defer srv.Close()

			err := NewWebhookChannel(config.WebhookConfig{URL: srv.URL}).Send(context.Background(), sampleDelivery())
			if (err != nil) != tt.wantErr {
				t.Fatalf("Send() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && IsTransient(err) != tt.wantTransient {
				t.Errorf("IsTransient(%v) = %v, want %v", err, IsTransient(err), tt.wantTransient)
			}
		})
	}
}

func TestWebhookChannel_UnreachableIsTransient(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	ch := NewWebhookChannel(config.WebhookConfig{URL: url, Timeout: time.Second})
	if err := ch.Send(context.Background(), sampleDelivery()); !IsTransient(err) {
		t.Errorf("Send() to closed server error = %v, want transient", err)
	}
	if NewWebhookChannel(config.WebhookConfig{}) != nil {
		t.Error("NewWebhookChannel() without URL returned a channel")
	}
}
