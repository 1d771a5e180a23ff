// Launchpad - Youth Employability Platform
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/launchpad

package events

import (
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
)

// Topics.
const (
	TopicJobPublished             = "job.published"
	TopicApplicationSubmitted     = "application.submitted"
	TopicApplicationStatusChanged = "application.status_changed"
	TopicMessageSent              = "message.sent"
	TopicCourseCompleted          = "course.completed"
)

// AllTopics lists every topic the platform publishes.
var AllTopics = []string{
	TopicJobPublished,
	TopicApplicationSubmitted,
	TopicApplicationStatusChanged,
	TopicMessageSent,
	TopicCourseCompleted,
}

// Event is the envelope carried on the bus.
type Event struct {
	ID         string          `json:"id"`
	Type       string          `json:"type"`
	OccurredAt time.Time       `json:"occurred_at"`
	ActorID    string          `json:"actor_id,omitempty"`
	Payload    json.RawMessage `json:"payload"`
}

// NewEvent wraps payload in an envelope with a fresh id.
func NewEvent(topic, actorID string, payload interface{}) (Event, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return Event{}, fmt.Errorf("marshal %s payload: %w", topic, err)
	}
	return Event{
		ID:         uuid.New().String(),
		Type:       topic,
		OccurredAt: time.Now().UTC(),
		ActorID:    actorID,
		Payload:    data,
	}, nil
}

// Decode unmarshals the payload of e into T.
func Decode[T any](e Event) (T, error) {
	var v T
	if err := json.Unmarshal(e.Payload, &v); err != nil {
		return v, fmt.Errorf("decode %s payload: %w", e.Type, err)
	}
	return v, nil
}

// JobPublished is the payload of job.published.
type JobPublished struct {
	JobID    string `json:"job_id"`
	TenantID string `json:"tenant_id"`
	Title    string `json:"title"`
}

// ApplicationSubmitted is the payload of application.submitted.
type ApplicationSubmitted struct {
	ApplicationID string `json:"application_id"`
	JobID         string `json:"job_id"`
	JobTitle      string `json:"job_title"`
	TenantID      string `json:"tenant_id"`
	ApplicantID   string `json:"applicant_id"`
	ApplicantName string `json:"applicant_name"`
}

// ApplicationStatusChanged is the payload of application.status_changed.
type ApplicationStatusChanged struct {
	ApplicationID string `json:"application_id"`
	JobID         string `json:"job_id"`
	JobTitle      string `json:"job_title"`
	TenantID      string `json:"tenant_id"`
	ApplicantID   string `json:"applicant_id"`
	From          string `json:"from"`
	To            string `json:"to"`
}

// MessageSent is the payload of message.sent.
type MessageSent struct {
	MessageID      string `json:"message_id"`
	ConversationID string `json:"conversation_id"`
	SenderID       string `json:"sender_id"`
	SenderName     string `json:"sender_name"`
	RecipientID    string `json:"recipient_id"`
	Preview        string `json:"preview"`
}

// CourseCompleted is the payload of course.completed.
type CourseCompleted struct {
	CourseID    string   `json:"course_id"`
	CourseTitle string   `json:"course_title"`
	TenantID    string   `json:"tenant_id"`
	UserID      string   `json:"user_id"`
	Skills      []string `json:"skills"`
}
