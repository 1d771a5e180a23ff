// Launchpad - Youth Employability Platform
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/launchpad

package models

import (
	"reflect"
	"testing"
	"time"
)

func TestNormalizeSkills(t *testing.T) {
	t.Parallel()

	got := NormalizeSkills([]string{"  Go ", "go", "Data  Analysis", "", "SQL", "sql"})
	want := []string{"data analysis", "go", "sql"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("NormalizeSkills = %v, want %v", got, want)
	}

	if got := NormalizeSkills(nil); got == nil || len(got) != 0 {
		t.Errorf("NormalizeSkills(nil) = %#v, want empty non-nil slice", got)
	}
}

func TestSkillSpellings(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want []string
	}{
		{"JS", []string{"javascript", "ecmascript", "js"}},
		{"golang", []string{"go", "golang"}},
		{"  Welding ", []string{"welding"}},
		{"", nil},
	}
	for _, tt := range tests {
		if got := SkillSpellings(tt.in); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("SkillSpellings(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestApplicationStatus_CanTransition(t *testing.T) {
	t.Parallel()

	tests := []struct {
		from  ApplicationStatus
		to    ApplicationStatus
		actor Role
		want  bool
	}{
		{AppSubmitted, AppReviewing, RoleCompany, true},
		{AppSubmitted, AppInterview, RoleCompany, true},
		{AppInterview, AppReviewing, RoleCompany, false},
		{AppOffered, AppHired, RoleCompany, true},
		{AppShortlisted, AppRejected, RoleCompany, true},
		{AppHired, AppRejected, RoleCompany, false},
		{AppSubmitted, AppWithdrawn, RoleCompany, false},
		{AppSubmitted, AppWithdrawn, RoleYouth, true},
		{AppInterview, AppWithdrawn, RoleYouth, true},
		{AppSubmitted, AppReviewing, RoleYouth, false},
		{AppRejected, AppWithdrawn, RoleYouth, false},
		{AppReviewing, AppReviewing, RoleCompany, false},
		{AppReviewing, AppShortlisted, RoleSuperadmin, true},
		{AppReviewing, AppShortlisted, RoleInstitution, false},
		{AppReviewing, "bogus", RoleCompany, false},
	}
	for _, tt := range tests {
		if got := tt.from.CanTransition(tt.to, tt.actor); got != tt.want {
			t.Errorf("%s -> %s by %s = %v, want %v", tt.from, tt.to, tt.actor, got, tt.want)
		}
	}
}

func TestApplicationStatus_IsTerminal(t *testing.T) {
	t.Parallel()

	for _, s := range AllApplicationStatuses {
		want := s == AppHired || s == AppRejected || s == AppWithdrawn
		if s.IsTerminal() != want {
			t.Errorf("%s.IsTerminal() = %v", s, !want)
		}
	}
}

func TestEducationRank(t *testing.T) {
	t.Parallel()

	if EducationNone.Rank() >= EducationSecondary.Rank() {
		t.Error("none should rank below secondary")
	}
	if EducationMaster.Rank()-EducationBachelor.Rank() != 1 {
		t.Error("master should be one above bachelor")
	}
	if EducationLevel("phd").Valid() {
		t.Error("unknown level should be invalid")
	}
}

func TestDefaultPreference(t *testing.T) {
	t.Parallel()

	for _, typ := range AllNotificationTypes {
		if !DefaultPreference(typ, ChannelInApp) {
			t.Errorf("in_app should default on for %s", typ)
		}
		if DefaultPreference(typ, ChannelWebhook) {
			t.Errorf("webhook should default off for %s", typ)
		}
	}
	if !DefaultPreference(NotifyApplicationStatus, ChannelEmail) {
		t.Error("email should default on for application_status")
	}
	if DefaultPreference(NotifyNewMessage, ChannelEmail) {
		t.Error("email should default off for new_message")
	}
}

func TestPreferenceMatrix(t *testing.T) {
	t.Parallel()

	stored := []NotificationPreference{
		{Type: NotifyNewMessage, Channel: ChannelInApp, Enabled: false},
	}
	matrix := PreferenceMatrix("u1", stored)
	if len(matrix) != len(AllNotificationTypes)*len(AllNotificationChannels) {
		t.Fatalf("matrix size = %d", len(matrix))
	}
	for _, p := range matrix {
		if p.Type == NotifyNewMessage && p.Channel == ChannelInApp {
			if p.Enabled || p.IsDefault {
				t.Errorf("stored toggle not applied: %+v", p)
			}
		}
		if p.Type == NotifySystem && p.Channel == ChannelInApp && !p.IsDefault {
			t.Errorf("unset toggle should be marked default: %+v", p)
		}
	}
}

func TestCourseProgress(t *testing.T) {
	t.Parallel()

	tests := []struct{ done, total, want int }{
		{0, 0, 0},
		{1, 3, 33},
		{2, 3, 67},
		{3, 3, 100},
		{5, 3, 100},
	}
	for _, tt := range tests {
		if got := CourseProgress(tt.done, tt.total); got != tt.want {
			t.Errorf("CourseProgress(%d,%d) = %d, want %d", tt.done, tt.total, got, tt.want)
		}
	}
}

func TestJobIsOpen(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	if !(&Job{Status: JobPublished}).IsOpen(now) {
		t.Error("published job without deadline should be open")
	}
	if (&Job{Status: JobPublished, Deadline: &past}).IsOpen(now) {
		t.Error("expired job should be closed")
	}
	if !(&Job{Status: JobPublished, Deadline: &future}).IsOpen(now) {
		t.Error("job before deadline should be open")
	}
	if (&Job{Status: JobDraft}).IsOpen(now) {
		t.Error("draft should not be open")
	}
}

func TestProfileCompleteness(t *testing.T) {
	t.Parallel()

	p := &YouthProfile{}
	if p.Completeness() != 0 {
		t.Errorf("empty profile = %v", p.Completeness())
	}
	p = &YouthProfile{
		Headline: "h", Bio: "b", Location: "Nairobi, Kenya", Skills: []string{"go"},
		EducationLevel: EducationBachelor, PreferredJobTypes: []JobType{JobInternship},
		Interests: []string{"data"}, ResumeUploadID: "r1",
	}
	if p.Completeness() != 100 {
		t.Errorf("full profile = %v", p.Completeness())
	}
}

func TestOrderedPair(t *testing.T) {
	t.Parallel()

	a, b := OrderedPair("z", "a")
	if a != "a" || b != "z" {
		t.Errorf("OrderedPair = %s,%s", a, b)
	}
	c := Conversation{ParticipantA: a, ParticipantB: b}
	if c.Other("a") != "z" || !c.HasParticipant("z") || c.HasParticipant("q") {
		t.Error("conversation participant helpers wrong")
	}
}

func TestNewPagination(t *testing.T) {
	t.Parallel()

	if p := NewPagination(20, 0, 45); !p.HasMore {
		t.Error("expected more")
	}
	if p := NewPagination(20, 40, 45); p.HasMore {
		t.Error("expected last page")
	}
}
