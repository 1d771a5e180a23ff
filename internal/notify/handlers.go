// Launchpad - Youth Employability Platform
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/launchpad

package notify

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/tomtom215/launchpad/internal/database"
	"github.com/tomtom215/launchpad/internal/events"
	"github.com/tomtom215/launchpad/internal/logging"
	"github.com/tomtom215/launchpad/internal/models"
	"github.com/tomtom215/launchpad/internal/recommend"
)

// EventStore is what the event handlers read to resolve recipients.
type EventStore interface {
	ListTenantMemberIDs(ctx context.Context, tenantID string) ([]string, error)
	ListUserIDsByRole(ctx context.Context, role models.Role) ([]string, error)
	GetProfile(ctx context.Context, userID string) (*models.YouthProfile, error)
	GetJob(ctx context.Context, id string) (*models.Job, error)
}

// Subscriber registers event handlers.
type Subscriber interface {
	Subscribe(name, topic string, h events.Handler) error
}

// EventHandlers turns domain events into notices.
type EventHandlers struct {
	notifier Notifier
	store    EventStore
	logger   zerolog.Logger
}

// NewEventHandlers creates the handlers.
func NewEventHandlers(notifier Notifier, store EventStore) *EventHandlers {
	return &EventHandlers{notifier: notifier, store: store, logger: logging.WithComponent("notify-events")}
}

// Register subscribes one handler per topic.
func (h *EventHandlers) Register(bus Subscriber) error {
	handlers := map[string]events.Handler{
		events.TopicJobPublished:             h.onJobPublished,
		events.TopicApplicationSubmitted:     h.onApplicationSubmitted,
		events.TopicApplicationStatusChanged: h.onApplicationStatusChanged,
		events.TopicMessageSent:              h.onMessageSent,
		events.TopicCourseCompleted:          h.onCourseCompleted,
	}
	for _, topic := range events.AllTopics {
		if err := bus.Subscribe("notify-"+topic, topic, handlers[topic]); err != nil {
			return fmt.Errorf("subscribe %s: %w", topic, err)
		}
	}
	return nil
}

// onJobPublished notifies youth whose skills overlap the job's skills.
func (h *EventHandlers) onJobPublished(ctx context.Context, e events.Event) error {
	p, err := events.Decode[events.JobPublished](e)
	if err != nil {
		return nil //nolint:nilerr // undecodable payloads are not retried
	}
	job, err := h.store.GetJob(ctx, p.JobID)
	if errors.Is(err, database.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	wanted := make(map[string]struct{})
	for _, s := range append(append([]string{}, job.RequiredSkills...), job.PreferredSkills...) {
		wanted[recommend.CanonicalSkill(s)] = struct{}{}
	}
	if len(wanted) == 0 {
		return nil
	}

	youth, err := h.store.ListUserIDsByRole(ctx, models.RoleYouth)
	if err != nil {
		return err
	}
	var recipients []string
	for _, id := range youth {
		profile, err := h.store.GetProfile(ctx, id)
		if errors.Is(err, database.ErrNotFound) {
			continue
		}
		if err != nil {
			return err
		}
		if overlaps(profile.Skills, wanted) {
			recipients = append(recipients, id)
		}
	}
	if len(recipients) == 0 {
		return nil
	}

	company := job.CompanyName
	if company == "" {
		company = "A company"
	}
	_, err = h.notifier.Notify(ctx, recipients, Notice{
		Key:   e.ID,
		Type:  models.NotifyJobPublished,
		Title: "New job matching your skills: " + job.Title,
		Body:  fmt.Sprintf("%s posted %q. It asks for skills you have.", company, job.Title),
		Link:  "/jobs/" + job.ID,
		Data:  map[string]interface{}{"job_id": job.ID},
	})
	return err
}

func overlaps(skills []string, wanted map[string]struct{}) bool {
	for _, s := range skills {
		if _, ok := wanted[recommend.CanonicalSkill(s)]; ok {
			return true
		}
	}
	return false
}

// onApplicationSubmitted notifies the hiring tenant's members.
func (h *EventHandlers) onApplicationSubmitted(ctx context.Context, e events.Event) error {
	p, err := events.Decode[events.ApplicationSubmitted](e)
	if err != nil {
		return nil //nolint:nilerr // undecodable payloads are not retried
	}
	members, err := h.store.ListTenantMemberIDs(ctx, p.TenantID)
	if err != nil {
		return err
	}
	applicant := p.ApplicantName
	if applicant == "" {
		applicant = "A candidate"
	}
	_, err = h.notifier.Notify(ctx, members, Notice{
		Key:   e.ID,
		Type:  models.NotifyApplicationSubmitted,
		Title: "New application for " + p.JobTitle,
		Body:  fmt.Sprintf("%s applied to %q.", applicant, p.JobTitle),
		Link:  "/applications/" + p.ApplicationID,
		Data:  map[string]interface{}{"application_id": p.ApplicationID, "job_id": p.JobID},
	})
	return err
}

// onApplicationStatusChanged notifies the applicant, or the hiring tenant
// when the applicant withdrew.
func (h *EventHandlers) onApplicationStatusChanged(ctx context.Context, e events.Event) error {
	p, err := events.Decode[events.ApplicationStatusChanged](e)
	if err != nil {
		return nil //nolint:nilerr // undecodable payloads are not retried
	}
	status := strings.ReplaceAll(p.To, "_", " ")
	data := map[string]interface{}{"application_id": p.ApplicationID, "from": p.From, "to": p.To}

	if p.To == string(models.AppWithdrawn) {
		members, err := h.store.ListTenantMemberIDs(ctx, p.TenantID)
		if err != nil {
			return err
		}
		_, err = h.notifier.Notify(ctx, members, Notice{
			Key:   e.ID,
			Type:  models.NotifyApplicationStatus,
			Title: "Application withdrawn for " + p.JobTitle,
			Body:  fmt.Sprintf("A candidate withdrew their application for %q.", p.JobTitle),
			Link:  "/applications/" + p.ApplicationID,
			Data:  data,
		})
		return err
	}

	_, err = h.notifier.Notify(ctx, []string{p.ApplicantID}, Notice{
		Key:   e.ID,
		Type:  models.NotifyApplicationStatus,
		Title: fmt.Sprintf("Your application for %s is now %s", p.JobTitle, status),
		Body:  fmt.Sprintf("The status of your application for %q changed from %s to %s.", p.JobTitle, strings.ReplaceAll(p.From, "_", " "), status),
		Link:  "/applications/" + p.ApplicationID,
		Data:  data,
	})
	return err
}

// onMessageSent notifies the recipient of a direct message.
func (h *EventHandlers) onMessageSent(ctx context.Context, e events.Event) error {
	p, err := events.Decode[events.MessageSent](e)
	if err != nil {
		return nil //nolint:nilerr // undecodable payloads are not retried
	}
	sender := p.SenderName
	if sender == "" {
		sender = "Someone"
	}
	_, err = h.notifier.Notify(ctx, []string{p.RecipientID}, Notice{
		Key:   e.ID,
		Type:  models.NotifyNewMessage,
		Title: "New message from " + sender,
		Body:  p.Preview,
		Link:  "/messages/" + p.ConversationID,
		Data:  map[string]interface{}{"conversation_id": p.ConversationID, "message_id": p.MessageID},
	})
	return err
}

// onCourseCompleted congratulates the learner.
func (h *EventHandlers) onCourseCompleted(ctx context.Context, e events.Event) error {
	p, err := events.Decode[events.CourseCompleted](e)
	if err != nil {
		return nil //nolint:nilerr // undecodable payloads are not retried
	}
	body := fmt.Sprintf("You completed %q.", p.CourseTitle)
	if len(p.Skills) > 0 {
		body += " Skills added to your profile: " + strings.Join(p.Skills, ", ") + "."
	}
	_, err = h.notifier.Notify(ctx, []string{p.UserID}, Notice{
		Key:   e.ID,
		Type:  models.NotifyCourseCompleted,
		Title: "Course completed: " + p.CourseTitle,
		Body:  body,
		Link:  "/courses/" + p.CourseID,
		Data:  map[string]interface{}{"course_id": p.CourseID},
	})
	return err
}
