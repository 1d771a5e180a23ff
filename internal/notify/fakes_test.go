// Launchpad - Youth Employability Platform
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/launchpad

package notify

import (
	"context"
	"sync"
	"time"

	"github.com/tomtom215/launchpad/internal/database"
	"github.com/tomtom215/launchpad/internal/models"
	"github.com/tomtom215/launchpad/internal/recommend"
)

type prefKey struct {
	user    string
	typ     models.NotificationType
	channel models.NotificationChannel
}

// fakeStore implements Store, InAppStore, EventStore and DigestStore.
type fakeStore struct {
	mu            sync.Mutex
	users         map[string]*models.User
	prefs         map[prefKey]bool
	profiles      map[string]*models.YouthProfile
	jobs          map[string]*models.Job
	members       map[string][]string
	notifications []models.Notification
	lastDigest    map[string]time.Time
	createErr     error
	// channelErrs fails the next preference lookup of a user once.
	channelErrs map[string]error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		users:       make(map[string]*models.User),
		prefs:       make(map[prefKey]bool),
		profiles:    make(map[string]*models.YouthProfile),
		jobs:        make(map[string]*models.Job),
		members:     make(map[string][]string),
		lastDigest:  make(map[string]time.Time),
		channelErrs: make(map[string]error),
	}
}

func (s *fakeStore) addUser(id string, role models.Role, status models.UserStatus) {
	s.users[id] = &models.User{ID: id, Email: id + "@example.org", Name: "User " + id, Role: role, Status: status}
}

func (s *fakeStore) GetUserByID(_ context.Context, id string) (*models.User, error) {
	u, ok := s.users[id]
	if !ok {
		return nil, database.ErrNotFound
	}
	return u, nil
}

func (s *fakeStore) IsChannelEnabled(_ context.Context, userID string, t models.NotificationType, c models.NotificationChannel) (bool, error) {
	s.mu.Lock()
	err, fail := s.channelErrs[userID]
	delete(s.channelErrs, userID)
	s.mu.Unlock()
	if fail {
		return false, err
	}
	if v, ok := s.prefs[prefKey{userID, t, c}]; ok {
		return v, nil
	}
	return models.DefaultPreference(t, c), nil
}

func (s *fakeStore) CreateNotification(_ context.Context, n *models.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.createErr != nil {
		return s.createErr
	}
	s.notifications = append(s.notifications, *n)
	return nil
}

func (s *fakeStore) UnreadNotificationCount(_ context.Context, userID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, x := range s.notifications {
		if x.UserID == userID && x.ReadAt == nil {
			n++
		}
	}
	return n, nil
}

func (s *fakeStore) ListTenantMemberIDs(_ context.Context, tenantID string) ([]string, error) {
	return s.members[tenantID], nil
}

func (s *fakeStore) ListUserIDsByRole(_ context.Context, role models.Role) ([]string, error) {
	var ids []string
	for id, u := range s.users {
		if u.Role == role && u.IsActive() {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func (s *fakeStore) GetProfile(_ context.Context, userID string) (*models.YouthProfile, error) {
	p, ok := s.profiles[userID]
	if !ok {
		return nil, database.ErrNotFound
	}
	return p, nil
}

func (s *fakeStore) GetJob(_ context.Context, id string) (*models.Job, error) {
	j, ok := s.jobs[id]
	if !ok {
		return nil, database.ErrNotFound
	}
	return j, nil
}

func (s *fakeStore) LastDigestAt(_ context.Context, userID string) (*time.Time, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t, ok := s.lastDigest[userID]; ok {
		return &t, nil
	}
	return nil, nil
}

func (s *fakeStore) RecordDigest(_ context.Context, userID string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastDigest[userID] = at
	return nil
}

// recordingNotifier captures Notify calls.
type recordingNotifier struct {
	mu    sync.Mutex
	calls []notifyCall
}

type notifyCall struct {
	userIDs []string
	notice  Notice
}

func (r *recordingNotifier) Notify(_ context.Context, userIDs []string, n Notice) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, notifyCall{userIDs: append([]string(nil), userIDs...), notice: n})
	return len(userIDs), nil
}

// recordingChannel records deliveries and fails according to errs, one
// entry per call; nil or exhausted means success.
type recordingChannel struct {
	name models.NotificationChannel

	mu    sync.Mutex
	errs  []error
	calls []Delivery
	done  chan Delivery
}

func newRecordingChannel(name models.NotificationChannel, errs ...error) *recordingChannel {
	return &recordingChannel{name: name, errs: errs, done: make(chan Delivery, 64)}
}

func (c *recordingChannel) Name() models.NotificationChannel { return c.name }

func (c *recordingChannel) Send(_ context.Context, d *Delivery) error {
	c.mu.Lock()
	call := len(c.calls)
	c.calls = append(c.calls, *d)
	var err error
	if call < len(c.errs) {
		err = c.errs[call]
	}
	c.mu.Unlock()
	if err == nil {
		c.done <- *d
	}
	return err
}

func (c *recordingChannel) callCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.calls)
}

// fakeRecommender returns fixed recommendations and records requests.
type fakeRecommender struct {
	mu       sync.Mutex
	byUser   map[string][]models.Recommendation
	requests []recommend.Request
}

func (f *fakeRecommender) Recommend(_ context.Context, req recommend.Request) (*models.RecommendationResponse, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, req)
	return &models.RecommendationResponse{UserID: req.UserID, Recommendations: f.byUser[req.UserID]}, false, nil
}

// recordingPusher captures websocket pushes.
type recordingPusher struct {
	mu       sync.Mutex
	messages []string
}

func (p *recordingPusher) SendToUser(userID, messageType string, _ interface{}) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.messages = append(p.messages, userID+":"+messageType)
	return true
}
