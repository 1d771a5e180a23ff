// Launchpad - Youth Employability Platform
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/launchpad

package models

import (
	"time"
)

// Conversation is a direct thread between two users. ParticipantA sorts
// before ParticipantB so each pair has exactly one row.
type Conversation struct {
	ID            string    `json:"id"`
	ParticipantA  string    `json:"participant_a"`
	ParticipantB  string    `json:"participant_b"`
	LastMessageAt time.Time `json:"last_message_at"`
	CreatedAt     time.Time `json:"created_at"`
}

// OrderedPair returns the two ids in storage order.
func OrderedPair(a, b string) (string, string) {
	if a < b {
		return a, b
	}
	return b, a
}

// HasParticipant reports whether userID is in the conversation.
func (c *Conversation) HasParticipant(userID string) bool {
	return c.ParticipantA == userID || c.ParticipantB == userID
}

// Other returns the participant that is not userID.
func (c *Conversation) Other(userID string) string {
	if c.ParticipantA == userID {
		return c.ParticipantB
	}
	return c.ParticipantA
}

// Message is a single chat message.
type Message struct {
	ID             string     `json:"id"`
	ConversationID string     `json:"conversation_id"`
	SenderID       string     `json:"sender_id"`
	Body           string     `json:"body"`
	ReadAt         *time.Time `json:"read_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}

// ConversationSummary is a conversation as listed for one participant.
type ConversationSummary struct {
	Conversation
	OtherUserID   string `json:"other_user_id"`
	OtherUserName string `json:"other_user_name"`
	OtherUserRole Role   `json:"other_user_role"`
	LastMessage   string `json:"last_message"`
	UnreadCount   int    `json:"unread_count"`
}

// MaxMessageBody is the longest accepted message body in runes.
const MaxMessageBody = 5000
