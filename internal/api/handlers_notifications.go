// Launchpad - Youth Employability Platform
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/launchpad

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/launchpad/internal/logging"
	"github.com/tomtom215/launchpad/internal/models"
	ws "github.com/tomtom215/launchpad/internal/websocket"
)

// ListNotifications returns the caller's inbox, newest first
//
// @Summary List notifications
// @Tags Notifications
// @Produce json
// @Security BearerAuth
// @Param unread_only query bool false "Only unread"
// @Param limit query int false "Page size"
// @Param offset query int false "Offset"
// @Success 200 {object} models.APIResponse{data=[]models.Notification}
// @Router /notifications [get]
func (h *Handler) ListNotifications(w http.ResponseWriter, r *http.Request) {
	p, ferr := h.parsePage(r)
	if ferr != nil {
		ferr.respond(w)
		return
	}
	unread, ferr := parseBoolParam(r, "unread_only")
	if ferr != nil {
		ferr.respond(w)
		return
	}
	page, err := h.db.ListNotifications(r.Context(), subject(r).UserID, unread != nil && *unread, p.Limit, p.Offset)
	if err != nil {
		respondStoreError(w, r, err, "notifications")
		return
	}
	respondPage(w, page, p)
}

// UnreadCount returns the number of unread notifications
//
// @Summary Unread count
// @Tags Notifications
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.APIResponse
// @Router /notifications/unread-count [get]
func (h *Handler) UnreadCount(w http.ResponseWriter, r *http.Request) {
	n, err := h.db.UnreadNotificationCount(r.Context(), subject(r).UserID)
	if err != nil {
		respondStoreError(w, r, err, "notifications")
		return
	}
	respondOK(w, map[string]int{"count": n})
}

// pushUnreadCount keeps the caller's open sockets in sync after inbox edits.
func (h *Handler) pushUnreadCount(r *http.Request, userID string) {
	if h.hub == nil || !h.hub.IsOnline(userID) {
		return
	}
	n, err := h.db.UnreadNotificationCount(r.Context(), userID)
	if err != nil {
		logging.Ctx(r.Context()).Warn().Err(err).Msg("Failed to count unread notifications")
		return
	}
	h.hub.SendToUser(userID, ws.MessageTypeUnreadCount, map[string]int{"count": n})
}

// MarkNotificationRead marks one notification as read
//
// @Summary Mark notification read
// @Tags Notifications
// @Produce json
// @Security BearerAuth
// @Param id path string true "Notification ID"
// @Success 200 {object} models.APIResponse
// @Failure 404 {object} models.APIResponse
// @Router /notifications/{id}/read [post]
func (h *Handler) MarkNotificationRead(w http.ResponseWriter, r *http.Request) {
	userID := subject(r).UserID
	id := chi.URLParam(r, "id")
	if err := h.db.MarkNotificationRead(r.Context(), userID, id); err != nil {
		respondStoreError(w, r, err, "notification")
		return
	}
	h.pushUnreadCount(r, userID)
	respondOK(w, map[string]string{"id": id})
}

// MarkAllNotificationsRead clears the unread badge
//
// @Summary Mark all read
// @Tags Notifications
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.APIResponse
// @Router /notifications/read-all [post]
func (h *Handler) MarkAllNotificationsRead(w http.ResponseWriter, r *http.Request) {
	userID := subject(r).UserID
	n, err := h.db.MarkAllNotificationsRead(r.Context(), userID)
	if err != nil {
		respondStoreError(w, r, err, "notifications")
		return
	}
	h.pushUnreadCount(r, userID)
	respondOK(w, map[string]int64{"marked": n})
}

// DeleteNotification removes a notification from the inbox
//
// @Summary Delete notification
// @Tags Notifications
// @Produce json
// @Security BearerAuth
// @Param id path string true "Notification ID"
// @Success 200 {object} models.APIResponse
// @Router /notifications/{id} [delete]
func (h *Handler) DeleteNotification(w http.ResponseWriter, r *http.Request) {
	userID := subject(r).UserID
	id := chi.URLParam(r, "id")
	if err := h.db.DeleteNotification(r.Context(), userID, id); err != nil {
		respondStoreError(w, r, err, "notification")
		return
	}
	h.pushUnreadCount(r, userID)
	respondOK(w, map[string]string{"deleted": id})
}

func (h *Handler) respondPreferences(w http.ResponseWriter, r *http.Request, userID string) {
	stored, err := h.db.GetPreferences(r.Context(), userID)
	if err != nil {
		respondStoreError(w, r, err, "preferences")
		return
	}
	respondOK(w, models.PreferenceMatrix(userID, stored))
}

// GetPreferences returns every type x channel toggle with defaults applied
//
// @Summary Notification preferences
// @Tags Notifications
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.APIResponse{data=[]models.NotificationPreference}
// @Router /notifications/preferences [get]
func (h *Handler) GetPreferences(w http.ResponseWriter, r *http.Request) {
	h.respondPreferences(w, r, subject(r).UserID)
}

// parseToggle validates a type/channel pair.
func parseToggle(typ, channel string) (models.NotificationType, models.NotificationChannel, *fieldError) {
	t, c := models.NotificationType(typ), models.NotificationChannel(channel)
	if !t.Valid() {
		return "", "", &fieldError{Field: "type", Message: "unknown notification type " + sanitizeLogValue(typ)}
	}
	if !c.Valid() {
		return "", "", &fieldError{Field: "channel", Message: "unknown channel " + sanitizeLogValue(channel)}
	}
	return t, c, nil
}

// UpdatePreferences stores a batch of toggles
//
// @Summary Set preferences
// @Tags Notifications
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body PreferencesRequest true "Toggles"
// @Success 200 {object} models.APIResponse{data=[]models.NotificationPreference}
// @Router /notifications/preferences [put]
func (h *Handler) UpdatePreferences(w http.ResponseWriter, r *http.Request) {
	userID := subject(r).UserID
	var req PreferencesRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	prefs := make([]models.NotificationPreference, 0, len(req.Preferences))
	for _, p := range req.Preferences {
		t, c, ferr := parseToggle(p.Type, p.Channel)
		if ferr != nil {
			ferr.respond(w)
			return
		}
		prefs = append(prefs, models.NotificationPreference{UserID: userID, Type: t, Channel: c, Enabled: p.Enabled})
	}
	if err := h.db.SetPreferences(r.Context(), userID, prefs); err != nil {
		respondStoreError(w, r, err, "preferences")
		return
	}
	h.respondPreferences(w, r, userID)
}

// PatchPreference flips a single toggle
//
// @Summary Set one preference
// @Tags Notifications
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param type path string true "Notification type"
// @Param channel path string true "Channel"
// @Param body body PreferencePatchRequest true "Toggle"
// @Success 200 {object} models.APIResponse{data=models.NotificationPreference}
// @Router /notifications/preferences/{type}/{channel} [patch]
func (h *Handler) PatchPreference(w http.ResponseWriter, r *http.Request) {
	userID := subject(r).UserID
	t, c, ferr := parseToggle(chi.URLParam(r, "type"), chi.URLParam(r, "channel"))
	if ferr != nil {
		ferr.respond(w)
		return
	}
	var req PreferencePatchRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	pref := models.NotificationPreference{UserID: userID, Type: t, Channel: c, Enabled: *req.Enabled}
	if err := h.db.SetPreferences(r.Context(), userID, []models.NotificationPreference{pref}); err != nil {
		respondStoreError(w, r, err, "preferences")
		return
	}
	respondOK(w, pref)
}
