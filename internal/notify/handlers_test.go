// Launchpad - Youth Employability Platform
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/launchpad

package notify

import (
	"context"
	"errors"
	"sort"
	"strings"
	"testing"

	"github.com/tomtom215/launchpad/internal/events"
	"github.com/tomtom215/launchpad/internal/models"
)

func mustEvent(t *testing.T, topic string, payload interface{}) events.Event {
	t.Helper()
	e, err := events.NewEvent(topic, "actor", payload)
	if err != nil {
		t.Fatalf("NewEvent() error = %v", err)
	}
	return e
}

func singleCall(t *testing.T, n *recordingNotifier) notifyCall {
	t.Helper()
	if len(n.calls) != 1 {
		t.Fatalf("Notify called %d times, want 1", len(n.calls))
	}
	c := n.calls[0]
	sort.Strings(c.userIDs)
	return c
}

type fakeSubscriber struct {
	subs map[string]string
}

func (f *fakeSubscriber) Subscribe(name, topic string, h events.Handler) error {
	if h == nil {
		return nil
	}
	f.subs[name] = topic
	return nil
}

func TestEventHandlers_Register(t *testing.T) {
	t.Parallel()

	sub := &fakeSubscriber{subs: make(map[string]string)}
	if err := NewEventHandlers(&recordingNotifier{}, newFakeStore()).Register(sub); err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if len(sub.subs) != len(events.AllTopics) {
		t.Fatalf("registered %d handlers, want %d", len(sub.subs), len(events.AllTopics))
	}
	for _, topic := range events.AllTopics {
		if sub.subs["notify-"+topic] != topic {
			t.Errorf("handler for %s missing", topic)
		}
	}
}

func TestEventHandlers_JobPublished(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	store.jobs["j1"] = &models.Job{ID: "j1", Title: "Junior Web Developer", CompanyName: "Acme", RequiredSkills: []string{"javascript"}, PreferredSkills: []string{"Docker"}}
	store.addUser("y1", models.RoleYouth, models.UserActive)
	store.addUser("y2", models.RoleYouth, models.UserActive)
	store.addUser("y3", models.RoleYouth, models.UserActive)
	store.addUser("y4", models.RoleYouth, models.UserSuspended)
	store.addUser("c1", models.RoleCompany, models.UserActive)
	store.profiles["y1"] = &models.YouthProfile{UserID: "y1", Skills: []string{"JS"}}
	store.profiles["y2"] = &models.YouthProfile{UserID: "y2", Skills: []string{"excel"}}
	store.profiles["y3"] = &models.YouthProfile{UserID: "y3", Skills: []string{"docker"}}
	store.profiles["y4"] = &models.YouthProfile{UserID: "y4", Skills: []string{"javascript"}}

	n := &recordingNotifier{}
	h := NewEventHandlers(n, store)
	err := h.onJobPublished(context.Background(), mustEvent(t, events.TopicJobPublished, events.JobPublished{JobID: "j1", Title: "Junior Web Developer"}))
	if err != nil {
		t.Fatalf("onJobPublished() error = %v", err)
	}

	c := singleCall(t, n)
	if strings.Join(c.userIDs, ",") != "y1,y3" {
		t.Errorf("recipients = %v, want [y1 y3]", c.userIDs)
	}
	if c.notice.Type != models.NotifyJobPublished || c.notice.Link != "/jobs/j1" {
		t.Errorf("notice = %+v", c.notice)
	}
}

func TestEventHandlers_JobPublishedUnknownJob(t *testing.T) {
	t.Parallel()

	n := &recordingNotifier{}
	h := NewEventHandlers(n, newFakeStore())
	if err := h.onJobPublished(context.Background(), mustEvent(t, events.TopicJobPublished, events.JobPublished{JobID: "gone"})); err != nil {
		t.Fatalf("onJobPublished() error = %v", err)
	}
	if len(n.calls) != 0 {
		t.Errorf("Notify called for unknown job")
	}
}

func TestEventHandlers_ApplicationSubmitted(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	store.members["t1"] = []string{"c1", "c2"}
	n := &recordingNotifier{}
	h := NewEventHandlers(n, store)

	err := h.onApplicationSubmitted(context.Background(), mustEvent(t, events.TopicApplicationSubmitted, events.ApplicationSubmitted{
		ApplicationID: "a1", JobID: "j1", JobTitle: "Barista", TenantID: "t1", ApplicantID: "y1", ApplicantName: "Amina",
	}))
	if err != nil {
		t.Fatalf("onApplicationSubmitted() error = %v", err)
	}
	c := singleCall(t, n)
	if strings.Join(c.userIDs, ",") != "c1,c2" {
		t.Errorf("recipients = %v", c.userIDs)
	}
	if c.notice.Title != "New application for Barista" || !strings.Contains(c.notice.Body, "Amina") {
		t.Errorf("notice = %+v", c.notice)
	}
}

func TestEventHandlers_ApplicationStatusChanged(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		to        models.ApplicationStatus
		wantUsers string
		wantTitle string
	}{
		{"applicant told", models.AppInterview, "y1", "Your application for Barista is now interview"},
		{"company told of withdrawal", models.AppWithdrawn, "c1", "Application withdrawn for Barista"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			store := newFakeStore()
			store.members["t1"] = []string{"c1"}
			n := &recordingNotifier{}
			h := NewEventHandlers(n, store)

			err := h.onApplicationStatusChanged(context.Background(), mustEvent(t, events.TopicApplicationStatusChanged, events.ApplicationStatusChanged{
				ApplicationID: "a1", JobID: "j1", JobTitle: "Barista", TenantID: "t1", ApplicantID: "y1",
				From: string(models.AppSubmitted), To: string(tt.to),
			}))
			if err != nil {
				t.Fatalf("onApplicationStatusChanged() error = %v", err)
			}
			c := singleCall(t, n)
			if strings.Join(c.userIDs, ",") != tt.wantUsers {
				t.Errorf("recipients = %v, want %s", c.userIDs, tt.wantUsers)
			}
			if c.notice.Title != tt.wantTitle {
				t.Errorf("title = %q, want %q", c.notice.Title, tt.wantTitle)
			}
			if c.notice.Type != models.NotifyApplicationStatus {
				t.Errorf("type = %s", c.notice.Type)
			}
		})
	}
}

func TestEventHandlers_MessageAndCourse(t *testing.T) {
	t.Parallel()

	n := &recordingNotifier{}
	h := NewEventHandlers(n, newFakeStore())
	ctx := context.Background()

	if err := h.onMessageSent(ctx, mustEvent(t, events.TopicMessageSent, events.MessageSent{
		MessageID: "m1", ConversationID: "cv1", SenderID: "c1", SenderName: "Acme HR", RecipientID: "y1", Preview: "Are you free Tuesday?",
	})); err != nil {
		t.Fatalf("onMessageSent() error = %v", err)
	}
	if err := h.onCourseCompleted(ctx, mustEvent(t, events.TopicCourseCompleted, events.CourseCompleted{
		CourseID: "k1", CourseTitle: "Intro to SQL", UserID: "y1", Skills: []string{"sql"},
	})); err != nil {
		t.Fatalf("onCourseCompleted() error = %v", err)
	}

	if len(n.calls) != 2 {
		t.Fatalf("Notify called %d times, want 2", len(n.calls))
	}
	msg, course := n.calls[0].notice, n.calls[1].notice
	if msg.Title != "New message from Acme HR" || msg.Body != "Are you free Tuesday?" || msg.Link != "/messages/cv1" {
		t.Errorf("message notice = %+v", msg)
	}
	if course.Type != models.NotifyCourseCompleted || !strings.Contains(course.Body, "sql") {
		t.Errorf("course notice = %+v", course)
	}
}

func TestEventHandlers_MalformedPayloadIsDropped(t *testing.T) {
	t.Parallel()

	n := &recordingNotifier{}
	h := NewEventHandlers(n, newFakeStore())
	e := events.Event{ID: "e1", Type: events.TopicMessageSent, Payload: []byte(`{"recipient_id": 7`)}
	if err := h.onMessageSent(context.Background(), e); err != nil {
		t.Errorf("onMessageSent() error = %v, want nil", err)
	}
	if len(n.calls) != 0 {
		t.Error("Notify called for malformed payload")
	}
}

func TestEventHandlers_RedeliveryAfterPartialFanout(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	for _, id := range []string{"c1", "c2", "c3"} {
		store.addUser(id, models.RoleCompany, models.UserActive)
	}
	store.members["t1"] = []string{"c1", "c2", "c3"}
	store.channelErrs["c2"] = errors.New("connection reset")

	inApp := newRecordingChannel(models.ChannelInApp)
	d := NewDispatcher(store, NewRegistry(inApp), testNotifyConfig())
	t.Cleanup(d.Close)
	h := NewEventHandlers(d, store)

	e := mustEvent(t, events.TopicApplicationSubmitted, events.ApplicationSubmitted{
		ApplicationID: "a1", JobID: "j1", JobTitle: "Barista", TenantID: "t1", ApplicantID: "y1", ApplicantName: "Amina",
	})
	if err := h.onApplicationSubmitted(context.Background(), e); err == nil {
		t.Fatal("first attempt error = nil, want store failure")
	}
	if got := d.QueueLen(); got != 1 {
		t.Fatalf("queued after failed attempt = %d, want 1", got)
	}

	// The router retries with the same event.
	if err := h.onApplicationSubmitted(context.Background(), e); err != nil {
		t.Fatalf("redelivery error = %v", err)
	}
	if got := d.QueueLen(); got != 3 {
		t.Fatalf("queued after redelivery = %d, want 3", got)
	}

	runDispatcher(t, d)
	perUser := make(map[string]int)
	for i := 0; i < 3; i++ {
		perUser[waitDelivery(t, inApp).Recipient.UserID]++
	}
	for _, id := range []string{"c1", "c2", "c3"} {
		if perUser[id] != 1 {
			t.Errorf("deliveries to %s = %d, want 1", id, perUser[id])
		}
	}
}
