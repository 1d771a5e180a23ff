// Launchpad - Youth Employability Platform
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/launchpad

package models

import (
	"time"
)

// NotificationType classifies a notification for preference lookups.
type NotificationType string

const (
	NotifyApplicationSubmitted NotificationType = "application_submitted"
	NotifyApplicationStatus    NotificationType = "application_status"
	NotifyNewMessage           NotificationType = "new_message"
	NotifyJobRecommendation    NotificationType = "job_recommendation"
	NotifyCourseCompleted      NotificationType = "course_completed"
	NotifyJobPublished         NotificationType = "job_published"
	NotifySystem               NotificationType = "system"
)

// AllNotificationTypes in display order.
var AllNotificationTypes = []NotificationType{
	NotifyApplicationSubmitted,
	NotifyApplicationStatus,
	NotifyNewMessage,
	NotifyJobRecommendation,
	NotifyCourseCompleted,
	NotifyJobPublished,
	NotifySystem,
}

// Valid reports whether t is a known type.
func (t NotificationType) Valid() bool {
	for _, v := range AllNotificationTypes {
		if v == t {
			return true
		}
	}
	return false
}

// NotificationChannel is a delivery medium.
type NotificationChannel string

const (
	ChannelInApp   NotificationChannel = "in_app"
	ChannelEmail   NotificationChannel = "email"
	ChannelWebhook NotificationChannel = "webhook"
)

// AllNotificationChannels in display order.
var AllNotificationChannels = []NotificationChannel{ChannelInApp, ChannelEmail, ChannelWebhook}

// Valid reports whether c is a known channel.
func (c NotificationChannel) Valid() bool {
	return c == ChannelInApp || c == ChannelEmail || c == ChannelWebhook
}

// DefaultPreference is the toggle used when a user has not set one.
func DefaultPreference(t NotificationType, c NotificationChannel) bool {
	switch c {
	case ChannelInApp:
		return true
	case ChannelEmail:
		return t == NotifyApplicationStatus || t == NotifyJobRecommendation
	}
	return false
}

// Notification is an in-app notice.
type Notification struct {
	ID        string                 `json:"id"`
	UserID    string                 `json:"user_id"`
	Type      NotificationType       `json:"type"`
	Title     string                 `json:"title"`
	Body      string                 `json:"body"`
	Link      string                 `json:"link,omitempty"`
	Data      map[string]interface{} `json:"data,omitempty"`
	ReadAt    *time.Time             `json:"read_at,omitempty"`
	CreatedAt time.Time              `json:"created_at"`
}

// NotificationPreference is one (type, channel) toggle.
type NotificationPreference struct {
	UserID  string              `json:"user_id,omitempty"`
	Type    NotificationType    `json:"type"`
	Channel NotificationChannel `json:"channel"`
	Enabled bool                `json:"enabled"`
	// IsDefault is true when no stored row exists.
	IsDefault bool `json:"is_default"`
}

// PreferenceMatrix expands stored toggles into the full type x channel grid.
func PreferenceMatrix(userID string, stored []NotificationPreference) []NotificationPreference {
	type key struct {
		t NotificationType
		c NotificationChannel
	}
	set := make(map[key]bool, len(stored))
	for _, p := range stored {
		set[key{p.Type, p.Channel}] = p.Enabled
	}
	out := make([]NotificationPreference, 0, len(AllNotificationTypes)*len(AllNotificationChannels))
	for _, t := range AllNotificationTypes {
		for _, c := range AllNotificationChannels {
			enabled, ok := set[key{t, c}]
			if !ok {
				enabled = DefaultPreference(t, c)
			}
			out = append(out, NotificationPreference{
				UserID:    userID,
				Type:      t,
				Channel:   c,
				Enabled:   enabled,
				IsDefault: !ok,
			})
		}
	}
	return out
}
