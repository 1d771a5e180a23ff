// Launchpad - Youth Employability Platform
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/launchpad

package api

import (
	"net/http"
	"testing"

	"github.com/tomtom215/launchpad/internal/config"
	"github.com/tomtom215/launchpad/internal/models"
	"github.com/tomtom215/launchpad/internal/recommend"
)

func TestHealthLive(t *testing.T) {
	env := setupTestEnv(t)

	res := env.expect(env.do(http.MethodGet, "/api/v1/health/live", "", nil), http.StatusOK)
	if res.Status != "success" {
		t.Errorf("status = %q", res.Status)
	}
}

func TestUnknownRoute(t *testing.T) {
	env := setupTestEnv(t)

	res := env.expect(env.do(http.MethodGet, "/no/such/route", "", nil), http.StatusNotFound)
	if res.Error == nil || res.Error.Code != ErrCodeNotFound {
		t.Errorf("error = %+v", res.Error)
	}
}

func TestAuthFlow(t *testing.T) {
	env := setupTestEnv(t)

	youth := env.signUp("ama@example.org", models.RoleYouth, "")
	if youth.user.Role != models.RoleYouth || youth.user.TenantID != "" {
		t.Errorf("user = %+v", youth.user)
	}

	t.Run("me", func(t *testing.T) {
		res := env.expect(env.do(http.MethodGet, "/api/v1/auth/me", youth.token, nil), http.StatusOK)
		var me struct {
			User     models.User `json:"user"`
			Provider string      `json:"provider"`
		}
		env.decodeData(res, &me)
		if me.User.ID != youth.user.ID || me.User.Email != "ama@example.org" {
			t.Errorf("me = %+v", me.User)
		}
		if me.User.PasswordHash != "" {
			t.Error("password hash serialized")
		}
	})

	t.Run("no token", func(t *testing.T) {
		env.expect(env.do(http.MethodGet, "/api/v1/auth/me", "", nil), http.StatusUnauthorized)
	})

	t.Run("duplicate email", func(t *testing.T) {
		res := env.expect(env.do(http.MethodPost, "/api/v1/auth/register", "", RegisterRequest{
			Email:    "AMA@example.org",
			Password: "another-long-passphrase-3",
			Name:     "Ama Again",
			Role:     "youth",
		}), http.StatusConflict)
		if res.Error.Code != ErrCodeConflict {
			t.Errorf("code = %s", res.Error.Code)
		}
	})

	t.Run("superadmin cannot self-register", func(t *testing.T) {
		env.expect(env.do(http.MethodPost, "/api/v1/auth/register", "", RegisterRequest{
			Email:    "root@example.org",
			Password: "another-long-passphrase-3",
			Name:     "Root",
			Role:     "superadmin",
		}), http.StatusBadRequest)
	})

	t.Run("company needs organization", func(t *testing.T) {
		res := env.expect(env.do(http.MethodPost, "/api/v1/auth/register", "", RegisterRequest{
			Email:    "hr@example.org",
			Password: "another-long-passphrase-3",
			Name:     "HR",
			Role:     "company",
		}), http.StatusBadRequest)
		if res.Error.Details["field"] != "organization_name" {
			t.Errorf("details = %v", res.Error.Details)
		}
	})

	t.Run("wrong password", func(t *testing.T) {
		env.expect(env.do(http.MethodPost, "/api/v1/auth/login", "", LoginRequest{
			Email:    "ama@example.org",
			Password: "not-the-password",
		}), http.StatusUnauthorized)
	})

	t.Run("logout revokes token", func(t *testing.T) {
		session := env.login("ama@example.org", "correct-horse-battery-9")
		env.expect(env.do(http.MethodPost, "/api/v1/auth/logout", session.token, nil), http.StatusOK)
		env.expect(env.do(http.MethodGet, "/api/v1/auth/me", session.token, nil), http.StatusUnauthorized)
	})
}

func TestJobLifecycle(t *testing.T) {
	env := setupTestEnv(t)

	company := env.signUp("hr@acme.example", models.RoleCompany, "Acme Ltd")
	rival := env.signUp("hr@rival.example", models.RoleCompany, "Rival Inc")
	youth := env.signUp("kofi@example.org", models.RoleYouth, "")

	t.Run("youth cannot post", func(t *testing.T) {
		res := env.expect(env.do(http.MethodPost, "/api/v1/jobs", youth.token, JobRequest{
			Title:       "Sneaky posting",
			Description: "Youth accounts must not post jobs.",
			JobType:     string(models.JobFullTime),
		}), http.StatusForbidden)
		if res.Error.Code != ErrCodeForbidden {
			t.Errorf("code = %s", res.Error.Code)
		}
	})

	// Draft jobs are invisible outside the owning company.
	draftRes := env.expect(env.do(http.MethodPost, "/api/v1/jobs", company.token, JobRequest{
		Title:       "Warehouse Assistant",
		Description: "Help us keep the shelves stocked and tidy.",
		JobType:     string(models.JobFullTime),
	}), http.StatusCreated)
	var draft models.Job
	env.decodeData(draftRes, &draft)
	if draft.Status != models.JobDraft || draft.TenantID != company.user.TenantID {
		t.Fatalf("draft = %+v", draft)
	}

	env.expect(env.do(http.MethodGet, "/api/v1/jobs/"+draft.ID, "", nil), http.StatusNotFound)
	env.expect(env.do(http.MethodGet, "/api/v1/jobs/"+draft.ID, youth.token, nil), http.StatusNotFound)
	env.expect(env.do(http.MethodGet, "/api/v1/jobs/"+draft.ID, company.token, nil), http.StatusOK)

	t.Run("other company cannot publish", func(t *testing.T) {
		env.expect(env.do(http.MethodPost, "/api/v1/jobs/"+draft.ID+"/publish", rival.token, nil), http.StatusForbidden)
	})

	pubRes := env.expect(env.do(http.MethodPost, "/api/v1/jobs/"+draft.ID+"/publish", company.token, nil), http.StatusOK)
	var published models.Job
	env.decodeData(pubRes, &published)
	if published.Status != models.JobPublished {
		t.Errorf("status after publish = %s", published.Status)
	}

	env.expect(env.do(http.MethodGet, "/api/v1/jobs/"+draft.ID, "", nil), http.StatusOK)

	listRes := env.expect(env.do(http.MethodGet, "/api/v1/jobs?limit=10", "", nil), http.StatusOK)
	var jobs []models.Job
	env.decodeData(listRes, &jobs)
	if len(jobs) != 1 || jobs[0].ID != draft.ID {
		t.Errorf("public list = %+v", jobs)
	}
	if p := listRes.Metadata.Pagination; p == nil || p.Total != 1 || p.Limit != 10 {
		t.Errorf("pagination = %+v", p)
	}

	t.Run("save and unsave", func(t *testing.T) {
		env.expect(env.do(http.MethodPost, "/api/v1/jobs/"+draft.ID+"/save", youth.token, nil), http.StatusOK)
		res := env.expect(env.do(http.MethodGet, "/api/v1/jobs/saved", youth.token, nil), http.StatusOK)
		var saved []models.Job
		env.decodeData(res, &saved)
		if len(saved) != 1 {
			t.Errorf("saved = %d jobs, want 1", len(saved))
		}
		env.expect(env.do(http.MethodDelete, "/api/v1/jobs/"+draft.ID+"/save", youth.token, nil), http.StatusOK)
	})

	env.expect(env.do(http.MethodPost, "/api/v1/jobs/"+draft.ID+"/close", company.token, nil), http.StatusOK)
	res := env.expect(env.do(http.MethodPost, "/api/v1/jobs/"+draft.ID+"/apply", youth.token, ApplyRequest{}), http.StatusConflict)
	if res.Error.Message != "job is not accepting applications" {
		t.Errorf("message = %q", res.Error.Message)
	}
}

func TestApplicationFlow(t *testing.T) {
	env := setupTestEnv(t)

	company := env.signUp("hr@acme.example", models.RoleCompany, "Acme Ltd")
	youth := env.signUp("kofi@example.org", models.RoleYouth, "")
	other := env.signUp("esi@example.org", models.RoleYouth, "")
	job := env.publishedJob(company, "Junior Barista", "customer service", "coffee")

	applyRes := env.expect(env.do(http.MethodPost, "/api/v1/jobs/"+job.ID+"/apply", youth.token, ApplyRequest{
		CoverLetter: "I love coffee and people.",
	}), http.StatusCreated)
	var app models.Application
	env.decodeData(applyRes, &app)
	if app.Status != models.AppSubmitted || app.JobID != job.ID || app.TenantID != company.user.TenantID {
		t.Fatalf("application = %+v", app)
	}

	t.Run("duplicate", func(t *testing.T) {
		res := env.expect(env.do(http.MethodPost, "/api/v1/jobs/"+job.ID+"/apply", youth.token, ApplyRequest{}), http.StatusConflict)
		if res.Error.Message != "you have already applied to this job" {
			t.Errorf("message = %q", res.Error.Message)
		}
	})

	t.Run("visibility", func(t *testing.T) {
		env.expect(env.do(http.MethodGet, "/api/v1/applications/"+app.ID, youth.token, nil), http.StatusOK)
		env.expect(env.do(http.MethodGet, "/api/v1/applications/"+app.ID, company.token, nil), http.StatusOK)
		env.expect(env.do(http.MethodGet, "/api/v1/applications/"+app.ID, other.token, nil), http.StatusNotFound)

		res := env.expect(env.do(http.MethodGet, "/api/v1/applications", company.token, nil), http.StatusOK)
		var list []models.Application
		env.decodeData(res, &list)
		if len(list) != 1 || list[0].ID != app.ID {
			t.Errorf("company list = %+v", list)
		}
	})

	path := "/api/v1/applications/" + app.ID + "/status"

	t.Run("applicant cannot advance", func(t *testing.T) {
		env.expect(env.do(http.MethodPatch, path, youth.token, ApplicationStatusRequest{Status: "hired"}), http.StatusConflict)
	})

	t.Run("company advances", func(t *testing.T) {
		res := env.expect(env.do(http.MethodPatch, path, company.token, ApplicationStatusRequest{
			Status: "reviewing",
			Notes:  "Strong cover letter",
		}), http.StatusOK)
		var updated models.Application
		env.decodeData(res, &updated)
		if updated.Status != models.AppReviewing {
			t.Errorf("status = %s", updated.Status)
		}
	})

	t.Run("backwards is rejected with details", func(t *testing.T) {
		res := env.expect(env.do(http.MethodPatch, path, company.token, ApplicationStatusRequest{Status: "submitted"}), http.StatusConflict)
		if res.Error.Details["current_status"] != "reviewing" || res.Error.Details["requested_status"] != "submitted" {
			t.Errorf("details = %v", res.Error.Details)
		}
	})

	t.Run("unknown status", func(t *testing.T) {
		res := env.expect(env.do(http.MethodPatch, path, company.token, ApplicationStatusRequest{Status: "promoted"}), http.StatusBadRequest)
		if res.Error.Details["field"] != "status" {
			t.Errorf("details = %v", res.Error.Details)
		}
	})

	t.Run("applicant withdraws", func(t *testing.T) {
		res := env.expect(env.do(http.MethodPatch, path, youth.token, ApplicationStatusRequest{Status: "withdrawn"}), http.StatusOK)
		var updated models.Application
		env.decodeData(res, &updated)
		if updated.Status != models.AppWithdrawn {
			t.Errorf("status = %s", updated.Status)
		}
		// Terminal.
		env.expect(env.do(http.MethodPatch, path, company.token, ApplicationStatusRequest{Status: "rejected"}), http.StatusConflict)
	})
}

func TestRecommendations(t *testing.T) {
	env := setupTestEnv(t)

	engine, err := recommend.NewEngine(env.db, config.RecommendConfig{})
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(engine.Close)

	company := env.signUp("hr@acme.example", models.RoleCompany, "Acme Ltd")
	youth := env.signUp("kofi@example.org", models.RoleYouth, "")

	t.Run("not configured", func(t *testing.T) {
		env.expect(env.do(http.MethodGet, "/api/v1/jobs/recommendations", youth.token, nil), http.StatusServiceUnavailable)
	})

	env.handler.SetRecommender(engine)

	env.expect(env.do(http.MethodPut, "/api/v1/profile", youth.token, ProfileRequest{
		Headline:          "Aspiring barista",
		Location:          "Nairobi",
		Skills:            []string{"customer service", "coffee"},
		PreferredJobTypes: []string{string(models.JobFullTime)},
	}), http.StatusOK)

	match := env.publishedJob(company, "Junior Barista", "customer service", "coffee")
	env.publishedJob(company, "Forklift Operator", "forklift licence")

	get := func(path string) models.RecommendationResponse {
		t.Helper()
		res := env.expect(env.do(http.MethodGet, path, youth.token, nil), http.StatusOK)
		var resp models.RecommendationResponse
		env.decodeData(res, &resp)
		return resp
	}

	resp := get("/api/v1/jobs/recommendations")
	if len(resp.Recommendations) == 0 || resp.Recommendations[0].Job.ID != match.ID {
		t.Fatalf("recommendations = %+v", resp.Recommendations)
	}
	top := resp.Recommendations[0]
	if top.Score <= 0 || top.Score > 100 || len(top.MatchedSkills) != 2 {
		t.Errorf("top = score %v, matched %v", top.Score, top.MatchedSkills)
	}

	t.Run("legacy path", func(t *testing.T) {
		alias := get("/api/jobs/recommendations?limit=1")
		if len(alias.Recommendations) != 1 || alias.Recommendations[0].Job.ID != match.ID {
			t.Errorf("alias = %+v", alias.Recommendations)
		}
	})

	t.Run("applied jobs are excluded", func(t *testing.T) {
		env.expect(env.do(http.MethodPost, "/api/v1/jobs/"+match.ID+"/apply", youth.token, ApplyRequest{}), http.StatusCreated)
		after := get("/api/v1/jobs/recommendations")
		for _, rec := range after.Recommendations {
			if rec.Job.ID == match.ID {
				t.Error("applied job still recommended")
			}
		}
	})

	t.Run("companies are refused", func(t *testing.T) {
		env.expect(env.do(http.MethodGet, "/api/v1/jobs/recommendations", company.token, nil), http.StatusForbidden)
	})

	t.Run("bad min_score", func(t *testing.T) {
		env.expect(env.do(http.MethodGet, "/api/v1/jobs/recommendations?min_score=150", youth.token, nil), http.StatusBadRequest)
	})
}

func TestCourseFlow(t *testing.T) {
	env := setupTestEnv(t)

	inst := env.signUp("registrar@college.example", models.RoleInstitution, "City College")
	youth := env.signUp("kofi@example.org", models.RoleYouth, "")

	res := env.expect(env.do(http.MethodPost, "/api/v1/courses", inst.token, CourseRequest{
		Title:  "Barista Basics",
		Skills: []string{"coffee"},
		Level:  "beginner",
	}), http.StatusCreated)
	var course models.Course
	env.decodeData(res, &course)

	t.Run("youth cannot create", func(t *testing.T) {
		env.expect(env.do(http.MethodPost, "/api/v1/courses", youth.token, CourseRequest{Title: "Nope", Level: "beginner"}), http.StatusForbidden)
	})

	t.Run("publish needs a lesson", func(t *testing.T) {
		res := env.expect(env.do(http.MethodPost, "/api/v1/courses/"+course.ID+"/publish", inst.token, nil), http.StatusConflict)
		if res.Error.Message != "course needs at least one lesson" {
			t.Errorf("message = %q", res.Error.Message)
		}
	})

	t.Run("course without lessons cannot be completed", func(t *testing.T) {
		res := env.expect(env.do(http.MethodPost, "/api/v1/courses/"+course.ID+"/lessons/none/complete", youth.token, nil), http.StatusNotFound)
		if res.Error.Code != ErrCodeNotFound {
			t.Errorf("code = %q", res.Error.Code)
		}
	})

	t.Run("draft is hidden", func(t *testing.T) {
		env.expect(env.do(http.MethodGet, "/api/v1/courses/"+course.ID, youth.token, nil), http.StatusNotFound)
		env.expect(env.do(http.MethodPost, "/api/v1/courses/"+course.ID+"/enroll", youth.token, nil), http.StatusConflict)
	})

	var lessons []models.Lesson
	for _, title := range []string{"Espresso", "Milk"} {
		res := env.expect(env.do(http.MethodPost, "/api/v1/courses/"+course.ID+"/lessons", inst.token, LessonRequest{
			Title:           title,
			DurationMinutes: 30,
		}), http.StatusCreated)
		var l models.Lesson
		env.decodeData(res, &l)
		lessons = append(lessons, l)
	}
	if lessons[0].Position != 1 || lessons[1].Position != 2 {
		t.Errorf("positions = %d, %d", lessons[0].Position, lessons[1].Position)
	}

	env.expect(env.do(http.MethodPost, "/api/v1/courses/"+course.ID+"/publish", inst.token, nil), http.StatusOK)

	enrollRes := env.expect(env.do(http.MethodPost, "/api/v1/courses/"+course.ID+"/enroll", youth.token, nil), http.StatusCreated)
	var e models.Enrollment
	env.decodeData(enrollRes, &e)
	if e.Status != models.EnrollmentActive || e.Progress != 0 {
		t.Errorf("enrollment = %+v", e)
	}

	res = env.expect(env.do(http.MethodPost, "/api/v1/courses/"+course.ID+"/enroll", youth.token, nil), http.StatusConflict)
	if res.Error.Message != "already enrolled in this course" {
		t.Errorf("message = %q", res.Error.Message)
	}

	complete := func(lessonID string) models.Enrollment {
		t.Helper()
		res := env.expect(env.do(http.MethodPost, "/api/v1/courses/"+course.ID+"/lessons/"+lessonID+"/complete", youth.token, nil), http.StatusOK)
		var out models.Enrollment
		env.decodeData(res, &out)
		return out
	}

	if half := complete(lessons[0].ID); half.Progress != 50 || half.Status != models.EnrollmentActive {
		t.Errorf("after one lesson = %+v", half)
	}
	done := complete(lessons[1].ID)
	if done.Progress != 100 || done.Status != models.EnrollmentCompleted || done.CompletedAt == nil {
		t.Errorf("after two lessons = %+v", done)
	}

	t.Run("completion adds skills to profile", func(t *testing.T) {
		res := env.expect(env.do(http.MethodGet, "/api/v1/profile", youth.token, nil), http.StatusOK)
		var p models.YouthProfile
		env.decodeData(res, &p)
		found := false
		for _, s := range p.Skills {
			if s == "coffee" {
				found = true
			}
		}
		if !found {
			t.Errorf("skills = %v, want coffee", p.Skills)
		}
	})

	t.Run("institution sees enrollments", func(t *testing.T) {
		res := env.expect(env.do(http.MethodGet, "/api/v1/courses/"+course.ID+"/enrollments", inst.token, nil), http.StatusOK)
		var list []models.Enrollment
		env.decodeData(res, &list)
		if len(list) != 1 || list[0].UserID != youth.user.ID {
			t.Errorf("enrollments = %+v", list)
		}
	})

	t.Run("published course keeps its last lesson", func(t *testing.T) {
		env.expect(env.do(http.MethodDelete, "/api/v1/courses/"+course.ID+"/lessons/"+lessons[0].ID, inst.token, nil), http.StatusOK)
		res := env.expect(env.do(http.MethodDelete, "/api/v1/courses/"+course.ID+"/lessons/"+lessons[1].ID, inst.token, nil), http.StatusConflict)
		if res.Error.Code != ErrCodeConflict || res.Error.Message != "course needs at least one lesson" {
			t.Errorf("error = %+v", res.Error)
		}
	})
}

func TestMessagingFlow(t *testing.T) {
	env := setupTestEnv(t)

	company := env.signUp("hr@acme.example", models.RoleCompany, "Acme Ltd")
	youth := env.signUp("kofi@example.org", models.RoleYouth, "")
	outsider := env.signUp("esi@example.org", models.RoleYouth, "")

	t.Run("self message", func(t *testing.T) {
		res := env.expect(env.do(http.MethodPost, "/api/v1/conversations", youth.token, StartConversationRequest{
			RecipientID: youth.user.ID,
			Body:        "hello me",
		}), http.StatusBadRequest)
		if res.Error.Details["field"] != "recipient_id" {
			t.Errorf("details = %v", res.Error.Details)
		}
	})

	t.Run("unknown recipient", func(t *testing.T) {
		env.expect(env.do(http.MethodPost, "/api/v1/conversations", youth.token, StartConversationRequest{
			RecipientID: "nobody",
			Body:        "hello?",
		}), http.StatusNotFound)
	})

	res := env.expect(env.do(http.MethodPost, "/api/v1/conversations", company.token, StartConversationRequest{
		RecipientID: youth.user.ID,
		Body:        "  Are you free for an interview on Monday?  ",
	}), http.StatusCreated)
	var first models.Message
	env.decodeData(res, &first)
	if first.Body != "Are you free for an interview on Monday?" || first.SenderID != company.user.ID {
		t.Fatalf("message = %+v", first)
	}
	convPath := "/api/v1/conversations/" + first.ConversationID

	t.Run("reply reuses conversation", func(t *testing.T) {
		res := env.expect(env.do(http.MethodPost, "/api/v1/conversations", youth.token, StartConversationRequest{
			RecipientID: company.user.ID,
			Body:        "Yes, Monday works.",
		}), http.StatusCreated)
		var reply models.Message
		env.decodeData(res, &reply)
		if reply.ConversationID != first.ConversationID {
			t.Errorf("conversation = %s, want %s", reply.ConversationID, first.ConversationID)
		}
	})

	t.Run("outsider is refused", func(t *testing.T) {
		env.expect(env.do(http.MethodGet, convPath+"/messages", outsider.token, nil), http.StatusForbidden)
		env.expect(env.do(http.MethodPost, convPath+"/messages", outsider.token, MessageRequest{Body: "hi"}), http.StatusForbidden)
	})

	t.Run("list and read", func(t *testing.T) {
		res := env.expect(env.do(http.MethodGet, "/api/v1/conversations", company.token, nil), http.StatusOK)
		var convs []models.ConversationSummary
		env.decodeData(res, &convs)
		if len(convs) != 1 || convs[0].OtherUserID != youth.user.ID || convs[0].UnreadCount != 1 {
			t.Fatalf("conversations = %+v", convs)
		}

		env.expect(env.do(http.MethodPost, convPath+"/read", company.token, nil), http.StatusOK)

		res = env.expect(env.do(http.MethodGet, "/api/v1/conversations", company.token, nil), http.StatusOK)
		env.decodeData(res, &convs)
		if convs[0].UnreadCount != 0 {
			t.Errorf("unread after read = %d", convs[0].UnreadCount)
		}

		res = env.expect(env.do(http.MethodGet, convPath+"/messages", youth.token, nil), http.StatusOK)
		var msgs []models.Message
		env.decodeData(res, &msgs)
		if len(msgs) != 2 {
			t.Errorf("messages = %d, want 2", len(msgs))
		}
	})
}

func TestNotificationPreferences(t *testing.T) {
	env := setupTestEnv(t)
	youth := env.signUp("kofi@example.org", models.RoleYouth, "")

	res := env.expect(env.do(http.MethodGet, "/api/v1/notifications/preferences", youth.token, nil), http.StatusOK)
	var matrix []models.NotificationPreference
	env.decodeData(res, &matrix)
	if want := len(models.AllNotificationTypes) * len(models.AllNotificationChannels); len(matrix) != want {
		t.Fatalf("matrix has %d entries, want %d", len(matrix), want)
	}

	enabled := false
	env.expect(env.do(http.MethodPatch, "/api/v1/notifications/preferences/application_status/email", youth.token,
		PreferencePatchRequest{Enabled: &enabled}), http.StatusOK)

	res = env.expect(env.do(http.MethodGet, "/api/v1/notifications/preferences", youth.token, nil), http.StatusOK)
	env.decodeData(res, &matrix)
	for _, p := range matrix {
		if p.Type == models.NotifyApplicationStatus && p.Channel == models.ChannelEmail {
			if p.Enabled || p.IsDefault {
				t.Errorf("patched preference = %+v", p)
			}
		}
	}

	t.Run("unknown channel", func(t *testing.T) {
		env.expect(env.do(http.MethodPatch, "/api/v1/notifications/preferences/system/pigeon", youth.token,
			PreferencePatchRequest{Enabled: &enabled}), http.StatusBadRequest)
	})

	t.Run("unread count", func(t *testing.T) {
		res := env.expect(env.do(http.MethodGet, "/api/v1/notifications/unread-count", youth.token, nil), http.StatusOK)
		var out map[string]int
		env.decodeData(res, &out)
		if out["count"] != 0 {
			t.Errorf("count = %d", out["count"])
		}
	})
}

func TestAdminUserStatus(t *testing.T) {
	env := setupTestEnv(t)

	admin := env.superadmin("admin@launchpad.example")
	youth := env.signUp("kofi@example.org", models.RoleYouth, "")

	t.Run("youth cannot reach admin", func(t *testing.T) {
		env.expect(env.do(http.MethodGet, "/api/v1/admin/users", youth.token, nil), http.StatusForbidden)
	})

	t.Run("filter by role", func(t *testing.T) {
		res := env.expect(env.do(http.MethodGet, "/api/v1/admin/users?role=youth", admin.token, nil), http.StatusOK)
		var users []models.User
		env.decodeData(res, &users)
		if len(users) != 1 || users[0].ID != youth.user.ID {
			t.Errorf("users = %+v", users)
		}
		env.expect(env.do(http.MethodGet, "/api/v1/admin/users?role=pirate", admin.token, nil), http.StatusBadRequest)
	})

	t.Run("cannot change own status", func(t *testing.T) {
		env.expect(env.do(http.MethodPatch, "/api/v1/admin/users/"+admin.user.ID+"/status", admin.token,
			UserStatusRequest{Status: "suspended"}), http.StatusConflict)
	})

	res := env.expect(env.do(http.MethodPatch, "/api/v1/admin/users/"+youth.user.ID+"/status", admin.token,
		UserStatusRequest{Status: "suspended"}), http.StatusOK)
	var updated models.User
	env.decodeData(res, &updated)
	if updated.Status != models.UserSuspended {
		t.Errorf("status = %s", updated.Status)
	}

	env.expect(env.do(http.MethodGet, "/api/v1/auth/me", youth.token, nil), http.StatusUnauthorized)
	env.expect(env.do(http.MethodPost, "/api/v1/auth/login", "", LoginRequest{
		Email:    "kofi@example.org",
		Password: "correct-horse-battery-9",
	}), http.StatusForbidden)

	t.Run("broadcast without notifier", func(t *testing.T) {
		env.expect(env.do(http.MethodPost, "/api/v1/admin/notifications/broadcast", admin.token, BroadcastRequest{
			Title: "Maintenance",
			Body:  "Launchpad is down for upgrades on Sunday.",
		}), http.StatusServiceUnavailable)
	})
}
