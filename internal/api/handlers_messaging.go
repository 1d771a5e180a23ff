// Launchpad - Youth Employability Platform
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/launchpad

package api

import (
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/launchpad/internal/events"
	"github.com/tomtom215/launchpad/internal/logging"
	"github.com/tomtom215/launchpad/internal/models"
	ws "github.com/tomtom215/launchpad/internal/websocket"
)

const (
	defaultMessagePage = 50
	maxMessagePage     = 200
	previewRunes       = 120
)

// checkMessageBody trims body and enforces the length bounds.
func checkMessageBody(body string) (string, *fieldError) {
	body = strings.TrimSpace(body)
	n := utf8.RuneCountInString(body)
	if n == 0 {
		return "", &fieldError{Field: "body", Message: "message body is required"}
	}
	if n > models.MaxMessageBody {
		return "", &fieldError{Field: "body", Message: "message body must be at most 5000 characters"}
	}
	return body, nil
}

func preview(body string) string {
	if utf8.RuneCountInString(body) <= previewRunes {
		return body
	}
	return string([]rune(body)[:previewRunes]) + "…"
}

// senderActive rejects suspended accounts. Suspended users keep read access.
func (h *Handler) senderActive(w http.ResponseWriter, r *http.Request, userID string) bool {
	u, err := h.db.GetUserByID(r.Context(), userID)
	if err != nil {
		respondStoreError(w, r, err, "user")
		return false
	}
	if u.Status == models.UserSuspended {
		respondError(w, http.StatusForbidden, ErrCodeForbidden, "suspended accounts cannot send messages", nil)
		return false
	}
	return true
}

// StartConversation opens (or reuses) the thread with a recipient and posts
// the first message
//
// @Summary Start conversation
// @Tags Messaging
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body StartConversationRequest true "Recipient and first message"
// @Success 201 {object} models.APIResponse{data=models.Message}
// @Failure 400 {object} models.APIResponse
// @Failure 403 {object} models.APIResponse "Sender suspended"
// @Failure 404 {object} models.APIResponse "Unknown recipient"
// @Router /conversations [post]
func (h *Handler) StartConversation(w http.ResponseWriter, r *http.Request) {
	s := subject(r)
	var req StartConversationRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.RecipientID == s.UserID {
		respondFieldError(w, "recipient_id", "you cannot message yourself")
		return
	}
	body, ferr := checkMessageBody(req.Body)
	if ferr != nil {
		ferr.respond(w)
		return
	}
	if !h.senderActive(w, r, s.UserID) {
		return
	}
	if _, err := h.db.GetUserByID(r.Context(), req.RecipientID); err != nil {
		respondStoreError(w, r, err, "recipient")
		return
	}

	conv, err := h.db.GetOrCreateConversation(r.Context(), s.UserID, req.RecipientID)
	if err != nil {
		respondStoreError(w, r, err, "conversation")
		return
	}
	msg, ok := h.postMessage(w, r, conv, body)
	if !ok {
		return
	}
	respondData(w, http.StatusCreated, msg)
}

// ListConversations returns the caller's threads
//
// @Summary List conversations
// @Tags Messaging
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.APIResponse{data=[]models.ConversationSummary}
// @Router /conversations [get]
func (h *Handler) ListConversations(w http.ResponseWriter, r *http.Request) {
	list, err := h.db.ListConversations(r.Context(), subject(r).UserID)
	if err != nil {
		respondStoreError(w, r, err, "conversations")
		return
	}
	if list == nil {
		list = []models.ConversationSummary{}
	}
	respondOK(w, list)
}

// loadConversation returns a conversation the caller participates in.
func (h *Handler) loadConversation(w http.ResponseWriter, r *http.Request) (*models.Conversation, bool) {
	conv, err := h.db.GetConversation(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondStoreError(w, r, err, "conversation")
		return nil, false
	}
	if !conv.HasParticipant(subject(r).UserID) {
		respondError(w, http.StatusForbidden, ErrCodeForbidden, "not a participant in this conversation", nil)
		return nil, false
	}
	return conv, true
}

// ListMessages pages backwards through a conversation
//
// @Summary List messages
// @Description Newest first. Pass the created_at of the oldest message seen as before to load older ones.
// @Tags Messaging
// @Produce json
// @Security BearerAuth
// @Param id path string true "Conversation ID"
// @Param before query string false "RFC3339 cursor"
// @Param limit query int false "Page size (max 200)"
// @Success 200 {object} models.APIResponse{data=[]models.Message}
// @Failure 403 {object} models.APIResponse
// @Router /conversations/{id}/messages [get]
func (h *Handler) ListMessages(w http.ResponseWriter, r *http.Request) {
	conv, ok := h.loadConversation(w, r)
	if !ok {
		return
	}
	before, ferr := parseTimeParam(r, "before")
	if ferr != nil {
		ferr.respond(w)
		return
	}
	p, ferr := parsePageWith(r, defaultMessagePage, maxMessagePage)
	if ferr != nil {
		ferr.respond(w)
		return
	}
	msgs, err := h.db.ListMessages(r.Context(), conv.ID, before, p.Limit)
	if err != nil {
		respondStoreError(w, r, err, "messages")
		return
	}
	if msgs == nil {
		msgs = []models.Message{}
	}
	respondOK(w, msgs)
}

// PostMessage sends a message in an existing conversation
//
// @Summary Send message
// @Tags Messaging
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Conversation ID"
// @Param body body MessageRequest true "Message"
// @Success 201 {object} models.APIResponse{data=models.Message}
// @Failure 403 {object} models.APIResponse
// @Router /conversations/{id}/messages [post]
func (h *Handler) PostMessage(w http.ResponseWriter, r *http.Request) {
	conv, ok := h.loadConversation(w, r)
	if !ok {
		return
	}
	var req MessageRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	body, ferr := checkMessageBody(req.Body)
	if ferr != nil {
		ferr.respond(w)
		return
	}
	if !h.senderActive(w, r, subject(r).UserID) {
		return
	}
	msg, ok := h.postMessage(w, r, conv, body)
	if !ok {
		return
	}
	respondData(w, http.StatusCreated, msg)
}

// postMessage stores the message, pushes it to the recipient's sockets and
// emits message.sent for the notification dispatcher.
func (h *Handler) postMessage(w http.ResponseWriter, r *http.Request, conv *models.Conversation, body string) (*models.Message, bool) {
	s := subject(r)
	msg, err := h.db.PostMessage(r.Context(), conv.ID, s.UserID, body)
	if err != nil {
		respondStoreError(w, r, err, "message")
		return nil, false
	}
	recipient := conv.Other(s.UserID)
	if h.hub != nil {
		h.hub.SendToUsers([]string{recipient, s.UserID}, ws.MessageTypeMessage, msg)
	}

	senderName := s.Email
	if names, err := h.db.UserNames(r.Context(), []string{s.UserID}); err == nil && names[s.UserID] != "" {
		senderName = names[s.UserID]
	}
	h.emit(r, events.TopicMessageSent, s.UserID, events.MessageSent{
		MessageID:      msg.ID,
		ConversationID: conv.ID,
		SenderID:       s.UserID,
		SenderName:     senderName,
		RecipientID:    recipient,
		Preview:        preview(body),
	})
	return msg, true
}

// MarkConversationRead marks the other participant's messages as read
//
// @Summary Mark conversation read
// @Tags Messaging
// @Produce json
// @Security BearerAuth
// @Param id path string true "Conversation ID"
// @Success 200 {object} models.APIResponse
// @Router /conversations/{id}/read [post]
func (h *Handler) MarkConversationRead(w http.ResponseWriter, r *http.Request) {
	conv, ok := h.loadConversation(w, r)
	if !ok {
		return
	}
	n, err := h.db.MarkConversationRead(r.Context(), conv.ID, subject(r).UserID)
	if err != nil {
		respondStoreError(w, r, err, "conversation")
		return
	}
	respondOK(w, map[string]interface{}{"conversation_id": conv.ID, "marked": n})
}

// WebSocket upgrades the connection for realtime pushes
//
// @Summary WebSocket
// @Description Pushes message, notification and unread_count frames to the authenticated user.
// @Tags Messaging
// @Security BearerAuth
// @Success 101 "Switching Protocols"
// @Router /ws [get]
func (h *Handler) WebSocket(w http.ResponseWriter, r *http.Request) {
	if h.hub == nil {
		unavailable(w, "websocket")
		return
	}
	userID := subject(r).UserID
	if err := ws.ServeUser(h.hub, h.upgrader, w, r, userID); err != nil {
		// The upgrader has already written the HTTP error.
		logging.Ctx(r.Context()).Warn().Err(err).Str("user_id", userID).Msg("WebSocket upgrade failed")
	}
}
