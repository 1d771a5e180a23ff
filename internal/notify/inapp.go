// Launchpad - Youth Employability Platform
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/launchpad

package notify

import (
	"context"
	"errors"

	"github.com/tomtom215/launchpad/internal/models"
	"github.com/tomtom215/launchpad/internal/websocket"
)

// InAppStore persists in-app notifications.
type InAppStore interface {
	CreateNotification(ctx context.Context, n *models.Notification) error
	UnreadNotificationCount(ctx context.Context, userID string) (int, error)
}

// Pusher sends realtime messages to a user's open connections.
type Pusher interface {
	SendToUser(userID, messageType string, data interface{}) bool
}

// InAppChannel stores the notification and pushes it to connected clients.
type InAppChannel struct {
	store  InAppStore
	pusher Pusher
}

// NewInAppChannel creates the in-app channel. pusher may be nil.
func NewInAppChannel(store InAppStore, pusher Pusher) *InAppChannel {
	return &InAppChannel{store: store, pusher: pusher}
}

// Name returns in_app.
func (c *InAppChannel) Name() models.NotificationChannel { return models.ChannelInApp }

// Send stores the notification, then pushes it and the new unread count.
// Push failures do not fail the delivery; the client catches up on reload.
func (c *InAppChannel) Send(ctx context.Context, d *Delivery) error {
	if d.Recipient.UserID == "" {
		return permanentError(ErrorCodeInvalidRecipient, errors.New("recipient user id is empty"))
	}
	n := d.Notification
	n.UserID = d.Recipient.UserID
	if err := c.store.CreateNotification(ctx, &n); err != nil {
		return transientError(ErrorCodeStore, err)
	}

	if c.pusher == nil {
		return nil
	}
	c.pusher.SendToUser(n.UserID, websocket.MessageTypeNotification, n)
	if count, err := c.store.UnreadNotificationCount(ctx, n.UserID); err == nil {
		c.pusher.SendToUser(n.UserID, websocket.MessageTypeUnreadCount, map[string]int{"count": count})
	}
	return nil
}
