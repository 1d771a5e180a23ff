// Launchpad - Youth Employability Platform
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/launchpad

package notify

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/tomtom215/launchpad/internal/models"
)

// Channel delivers one notification to one recipient.
type Channel interface {
	Name() models.NotificationChannel
	Send(ctx context.Context, d *Delivery) error
}

// Recipient is the addressee of a delivery.
type Recipient struct {
	UserID string
	Email  string
	Name   string
}

// Delivery is the unit of work handed to a channel.
type Delivery struct {
	Recipient    Recipient
	Notification models.Notification
	Attempt      int
}

// Error codes for delivery failures.
const (
	ErrorCodeInvalidConfig    = "INVALID_CONFIG"
	ErrorCodeInvalidRecipient = "INVALID_RECIPIENT"
	ErrorCodeConnectionFailed = "CONNECTION_FAILED"
	ErrorCodeAuthFailed       = "AUTH_FAILED"
	ErrorCodeRateLimited      = "RATE_LIMITED"
	ErrorCodeServerError      = "SERVER_ERROR"
	ErrorCodeRejected         = "REJECTED"
	ErrorCodeTimeout          = "TIMEOUT"
	ErrorCodeStore            = "STORE"
	ErrorCodeUnknown          = "UNKNOWN"
)

// DeliveryError classifies a failed send.
type DeliveryError struct {
	Code      string
	Transient bool
	Err       error
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf("%s: %v", e.Code, e.Err)
}

func (e *DeliveryError) Unwrap() error { return e.Err }

func transientError(code string, err error) error {
	return &DeliveryError{Code: code, Transient: true, Err: err}
}

func permanentError(code string, err error) error {
	return &DeliveryError{Code: code, Err: err}
}

// IsTransient reports whether err may succeed on retry. Unclassified
// errors are treated as transient.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	var de *DeliveryError
	if errors.As(err, &de) {
		return de.Transient
	}
	return !errors.Is(err, context.Canceled)
}

// ErrorCode returns the classification of err, or ErrorCodeUnknown.
func ErrorCode(err error) string {
	var de *DeliveryError
	if errors.As(err, &de) {
		return de.Code
	}
	return ErrorCodeUnknown
}

// Registry holds the enabled channels.
type Registry struct {
	channels map[models.NotificationChannel]Channel
}

// NewRegistry registers channels; nil entries are skipped.
func NewRegistry(channels ...Channel) *Registry {
	r := &Registry{channels: make(map[models.NotificationChannel]Channel)}
	for _, ch := range channels {
		if ch != nil {
			r.Register(ch)
		}
	}
	return r
}

// Register adds or replaces a channel.
func (r *Registry) Register(ch Channel) {
	r.channels[ch.Name()] = ch
}

// Get retrieves a channel by name.
func (r *Registry) Get(name models.NotificationChannel) (Channel, bool) {
	ch, ok := r.channels[name]
	return ch, ok
}

// List returns the registered channel names in a stable order.
func (r *Registry) List() []models.NotificationChannel {
	names := make([]models.NotificationChannel, 0, len(r.channels))
	for name := range r.channels {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })
	return names
}
