// Launchpad - Youth Employability Platform
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/launchpad

package database

import (
	"context"
	"testing"
	"time"

	"github.com/tomtom215/launchpad/internal/models"
)

func TestConversationFlow(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	youth := createYouth(t, db, "y@example.com")
	company := createOrgUser(t, db, "hr@acme.example", models.RoleCompany)

	c1, err := db.GetOrCreateConversation(ctx, youth.ID, company.ID)
	if err != nil {
		t.Fatalf("GetOrCreateConversation: %v", err)
	}
	c2, err := db.GetOrCreateConversation(ctx, company.ID, youth.ID)
	if err != nil {
		t.Fatalf("GetOrCreateConversation reversed: %v", err)
	}
	if c1.ID != c2.ID {
		t.Fatalf("pair created twice: %s vs %s", c1.ID, c2.ID)
	}

	for i, body := range []string{"hello", "are you hiring?"} {
		at := testNow.Add(time.Duration(i) * time.Minute)
		db.SetClock(func() time.Time { return at })
		if _, err := db.PostMessage(ctx, c1.ID, youth.ID, body); err != nil {
			t.Fatalf("PostMessage: %v", err)
		}
	}

	summaries, err := db.ListConversations(ctx, company.ID)
	if err != nil {
		t.Fatalf("ListConversations: %v", err)
	}
	if len(summaries) != 1 {
		t.Fatalf("summaries = %+v", summaries)
	}
	s := summaries[0]
	if s.OtherUserID != youth.ID || s.UnreadCount != 2 || s.LastMessage != "are you hiring?" || s.OtherUserRole != models.RoleYouth {
		t.Errorf("summary = %+v", s)
	}

	msgs, err := db.ListMessages(ctx, c1.ID, nil, 10)
	if err != nil {
		t.Fatalf("ListMessages: %v", err)
	}
	if len(msgs) != 2 || msgs[0].Body != "hello" {
		t.Fatalf("messages not chronological: %+v", msgs)
	}
	before := msgs[1].CreatedAt
	older, err := db.ListMessages(ctx, c1.ID, &before, 10)
	if err != nil || len(older) != 1 {
		t.Errorf("before cursor = %+v, %v", older, err)
	}

	// The sender's own messages are not marked.
	if n, err := db.MarkConversationRead(ctx, c1.ID, youth.ID); err != nil || n != 0 {
		t.Errorf("sender mark read = %d, %v", n, err)
	}
	if n, err := db.MarkConversationRead(ctx, c1.ID, company.ID); err != nil || n != 2 {
		t.Errorf("recipient mark read = %d, %v", n, err)
	}
}
