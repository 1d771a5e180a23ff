// Launchpad - Youth Employability Platform
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/launchpad

package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/launchpad/internal/auth"
	"github.com/tomtom215/launchpad/internal/database"
	"github.com/tomtom215/launchpad/internal/events"
	"github.com/tomtom215/launchpad/internal/models"
)

// ListCourses lists published courses
//
// @Summary List courses
// @Tags Courses
// @Produce json
// @Param q query string false "Search title and description"
// @Param skill query string false "Taught skill"
// @Param level query string false "beginner, intermediate or advanced"
// @Param tenant_id query string false "Institution tenant"
// @Param limit query int false "Page size"
// @Param offset query int false "Offset"
// @Success 200 {object} models.APIResponse{data=[]models.Course}
// @Router /courses [get]
func (h *Handler) ListCourses(w http.ResponseWriter, r *http.Request) {
	p, ferr := h.parsePage(r)
	if ferr != nil {
		ferr.respond(w)
		return
	}
	q := r.URL.Query()
	f := models.CourseFilter{
		Query:    strings.TrimSpace(q.Get("q")),
		Skill:    q.Get("skill"),
		TenantID: q.Get("tenant_id"),
		Limit:    p.Limit,
		Offset:   p.Offset,
	}
	if lv := q.Get("level"); lv != "" {
		f.Level = models.CourseLevel(lv)
		if !f.Level.Valid() {
			respondFieldError(w, "level", "unknown level")
			return
		}
	}
	// Institutions browsing their own catalogue also see drafts and archives.
	if f.TenantID != "" && auth.SubjectFromContext(r.Context()).CanManageTenant(f.TenantID) {
		f.Statuses = []models.CourseStatus{models.CourseDraft, models.CoursePublished, models.CourseArchived}
		if st := q.Get("status"); st != "" {
			f.Statuses = []models.CourseStatus{models.CourseStatus(st)}
		}
	}
	page, err := h.db.ListCourses(r.Context(), f)
	if err != nil {
		respondStoreError(w, r, err, "courses")
		return
	}
	respondPage(w, page, p)
}

// loadVisibleCourse returns a course the caller may read: published
// courses for everyone, others for the owning institution.
func (h *Handler) loadVisibleCourse(w http.ResponseWriter, r *http.Request, withLessons bool) (*models.Course, bool) {
	id := chi.URLParam(r, "id")
	var (
		c   *models.Course
		err error
	)
	if withLessons {
		c, err = h.db.GetCourseWithLessons(r.Context(), id)
	} else {
		c, err = h.db.GetCourse(r.Context(), id)
	}
	if err != nil {
		respondStoreError(w, r, err, "course")
		return nil, false
	}
	if c.Status != models.CoursePublished && !auth.SubjectFromContext(r.Context()).CanManageTenant(c.TenantID) {
		respondError(w, http.StatusNotFound, ErrCodeNotFound, "course not found", nil)
		return nil, false
	}
	return c, true
}

// GetCourse returns a course with its lessons
//
// @Summary Get course
// @Tags Courses
// @Produce json
// @Param id path string true "Course ID"
// @Success 200 {object} models.APIResponse{data=models.Course}
// @Failure 404 {object} models.APIResponse
// @Router /courses/{id} [get]
func (h *Handler) GetCourse(w http.ResponseWriter, r *http.Request) {
	c, ok := h.loadVisibleCourse(w, r, true)
	if !ok {
		return
	}
	if c.Lessons == nil {
		c.Lessons = []models.Lesson{}
	}
	respondOK(w, c)
}

// ListLessons returns a course's lessons in order
//
// @Summary List lessons
// @Tags Courses
// @Produce json
// @Param id path string true "Course ID"
// @Success 200 {object} models.APIResponse{data=[]models.Lesson}
// @Router /courses/{id}/lessons [get]
func (h *Handler) ListLessons(w http.ResponseWriter, r *http.Request) {
	c, ok := h.loadVisibleCourse(w, r, true)
	if !ok {
		return
	}
	lessons := c.Lessons
	if lessons == nil {
		lessons = []models.Lesson{}
	}
	respondOK(w, lessons)
}

// GetLesson returns one lesson
//
// @Summary Get lesson
// @Tags Courses
// @Produce json
// @Param id path string true "Course ID"
// @Param lessonID path string true "Lesson ID"
// @Success 200 {object} models.APIResponse{data=models.Lesson}
// @Router /courses/{id}/lessons/{lessonID} [get]
func (h *Handler) GetLesson(w http.ResponseWriter, r *http.Request) {
	c, ok := h.loadVisibleCourse(w, r, false)
	if !ok {
		return
	}
	l, err := h.db.GetLesson(r.Context(), c.ID, chi.URLParam(r, "lessonID"))
	if err != nil {
		respondStoreError(w, r, err, "lesson")
		return
	}
	respondOK(w, l)
}

// CreateCourse adds a draft course for the caller's institution
//
// @Summary Create course
// @Tags Courses
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body CourseRequest true "Course"
// @Success 201 {object} models.APIResponse{data=models.Course}
// @Router /courses [post]
func (h *Handler) CreateCourse(w http.ResponseWriter, r *http.Request) {
	s := subject(r)
	if !s.Is(models.RoleInstitution) || s.TenantID == "" {
		respondError(w, http.StatusForbidden, ErrCodeForbidden, "only institution accounts can create courses", nil)
		return
	}
	var req CourseRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	c := &models.Course{TenantID: s.TenantID, CreatedBy: s.UserID, Status: models.CourseDraft}
	req.toCourse(c)
	if err := h.db.CreateCourse(r.Context(), c); err != nil {
		respondStoreError(w, r, err, "course")
		return
	}
	respondData(w, http.StatusCreated, c)
}

// loadManagedCourse loads a course the caller's institution owns.
func (h *Handler) loadManagedCourse(w http.ResponseWriter, r *http.Request) (*models.Course, bool) {
	c, err := h.db.GetCourse(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondStoreError(w, r, err, "course")
		return nil, false
	}
	if !subject(r).CanManageTenant(c.TenantID) {
		respondError(w, http.StatusForbidden, ErrCodeForbidden, "course belongs to another institution", nil)
		return nil, false
	}
	return c, true
}

// UpdateCourse edits a course
//
// @Summary Update course
// @Tags Courses
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Course ID"
// @Param body body CourseRequest true "Course"
// @Success 200 {object} models.APIResponse{data=models.Course}
// @Router /courses/{id} [put]
func (h *Handler) UpdateCourse(w http.ResponseWriter, r *http.Request) {
	c, ok := h.loadManagedCourse(w, r)
	if !ok {
		return
	}
	var req CourseRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	req.toCourse(c)
	if err := h.db.UpdateCourse(r.Context(), c); err != nil {
		respondStoreError(w, r, err, "course")
		return
	}
	respondOK(w, c)
}

// DeleteCourse removes a course with its lessons and enrollments
//
// @Summary Delete course
// @Tags Courses
// @Produce json
// @Security BearerAuth
// @Param id path string true "Course ID"
// @Success 200 {object} models.APIResponse
// @Router /courses/{id} [delete]
func (h *Handler) DeleteCourse(w http.ResponseWriter, r *http.Request) {
	c, ok := h.loadManagedCourse(w, r)
	if !ok {
		return
	}
	if err := h.db.DeleteCourse(r.Context(), c.ID); err != nil {
		respondStoreError(w, r, err, "course")
		return
	}
	respondOK(w, map[string]string{"deleted": c.ID})
}

// PublishCourse opens a course for enrollment. It needs at least one lesson.
//
// @Summary Publish course
// @Tags Courses
// @Produce json
// @Security BearerAuth
// @Param id path string true "Course ID"
// @Success 200 {object} models.APIResponse{data=models.Course}
// @Failure 409 {object} models.APIResponse "Course has no lessons"
// @Router /courses/{id}/publish [post]
func (h *Handler) PublishCourse(w http.ResponseWriter, r *http.Request) {
	c, ok := h.loadManagedCourse(w, r)
	if !ok {
		return
	}
	h.setCourseStatus(w, r, c, models.CoursePublished)
}

// ArchiveCourse hides a course from the catalogue. Enrollments are kept.
//
// @Summary Archive course
// @Tags Courses
// @Produce json
// @Security BearerAuth
// @Param id path string true "Course ID"
// @Success 200 {object} models.APIResponse{data=models.Course}
// @Router /courses/{id}/archive [post]
func (h *Handler) ArchiveCourse(w http.ResponseWriter, r *http.Request) {
	c, ok := h.loadManagedCourse(w, r)
	if !ok {
		return
	}
	h.setCourseStatus(w, r, c, models.CourseArchived)
}

func (h *Handler) setCourseStatus(w http.ResponseWriter, r *http.Request, c *models.Course, status models.CourseStatus) {
	updated, err := h.db.SetCourseStatus(r.Context(), c.ID, status)
	if err != nil {
		respondStoreError(w, r, err, "course")
		return
	}
	respondOK(w, updated)
}

// CreateLesson adds a lesson to a course
//
// @Summary Create lesson
// @Tags Courses
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Course ID"
// @Param body body LessonRequest true "Lesson"
// @Success 201 {object} models.APIResponse{data=models.Lesson}
// @Router /courses/{id}/lessons [post]
func (h *Handler) CreateLesson(w http.ResponseWriter, r *http.Request) {
	c, ok := h.loadManagedCourse(w, r)
	if !ok {
		return
	}
	var req LessonRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	l := &models.Lesson{
		CourseID:        c.ID,
		Position:        req.Position,
		Title:           strings.TrimSpace(req.Title),
		Content:         req.Content,
		DurationMinutes: req.DurationMinutes,
	}
	if err := h.db.CreateLesson(r.Context(), l); err != nil {
		respondStoreError(w, r, err, "lesson")
		return
	}
	respondData(w, http.StatusCreated, l)
}

// UpdateLesson edits a lesson
//
// @Summary Update lesson
// @Tags Courses
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Course ID"
// @Param lessonID path string true "Lesson ID"
// @Param body body LessonRequest true "Lesson"
// @Success 200 {object} models.APIResponse{data=models.Lesson}
// @Router /courses/{id}/lessons/{lessonID} [put]
func (h *Handler) UpdateLesson(w http.ResponseWriter, r *http.Request) {
	c, ok := h.loadManagedCourse(w, r)
	if !ok {
		return
	}
	var req LessonRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	l, err := h.db.GetLesson(r.Context(), c.ID, chi.URLParam(r, "lessonID"))
	if err != nil {
		respondStoreError(w, r, err, "lesson")
		return
	}
	l.Title = strings.TrimSpace(req.Title)
	l.Content = req.Content
	l.DurationMinutes = req.DurationMinutes
	if req.Position > 0 {
		l.Position = req.Position
	}
	if err := h.db.UpdateLesson(r.Context(), l); err != nil {
		respondStoreError(w, r, err, "lesson")
		return
	}
	respondOK(w, l)
}

// DeleteLesson removes a lesson
//
// @Summary Delete lesson
// @Tags Courses
// @Produce json
// @Security BearerAuth
// @Param id path string true "Course ID"
// @Param lessonID path string true "Lesson ID"
// @Success 200 {object} models.APIResponse
// @Router /courses/{id}/lessons/{lessonID} [delete]
func (h *Handler) DeleteLesson(w http.ResponseWriter, r *http.Request) {
	c, ok := h.loadManagedCourse(w, r)
	if !ok {
		return
	}
	lessonID := chi.URLParam(r, "lessonID")
	if err := h.db.DeleteLesson(r.Context(), c.ID, lessonID); err != nil {
		respondStoreError(w, r, err, "lesson")
		return
	}
	respondOK(w, map[string]string{"deleted": lessonID})
}

// Enroll enrolls the caller in a published course
//
// @Summary Enroll
// @Tags Courses
// @Produce json
// @Security BearerAuth
// @Param id path string true "Course ID"
// @Success 201 {object} models.APIResponse{data=models.Enrollment}
// @Failure 409 {object} models.APIResponse "Already enrolled or course not published"
// @Router /courses/{id}/enroll [post]
func (h *Handler) Enroll(w http.ResponseWriter, r *http.Request) {
	e, err := h.db.Enroll(r.Context(), chi.URLParam(r, "id"), subject(r).UserID)
	switch {
	case errors.Is(err, database.ErrInvalidState):
		respondError(w, http.StatusConflict, ErrCodeConflict, "course is not open for enrollment", nil)
		return
	case errors.Is(err, database.ErrConflict):
		respondError(w, http.StatusConflict, ErrCodeConflict, "already enrolled in this course", nil)
		return
	case err != nil:
		respondStoreError(w, r, err, "course")
		return
	}
	respondData(w, http.StatusCreated, e)
}

// DropEnrollment leaves a course
//
// @Summary Drop course
// @Tags Courses
// @Produce json
// @Security BearerAuth
// @Param id path string true "Course ID"
// @Success 200 {object} models.APIResponse
// @Failure 409 {object} models.APIResponse "Course already completed"
// @Router /courses/{id}/enroll [delete]
func (h *Handler) DropEnrollment(w http.ResponseWriter, r *http.Request) {
	courseID := chi.URLParam(r, "id")
	if err := h.db.DropEnrollment(r.Context(), courseID, subject(r).UserID); err != nil {
		respondStoreError(w, r, err, "enrollment")
		return
	}
	respondOK(w, map[string]interface{}{"course_id": courseID, "status": models.EnrollmentDropped})
}

// CompleteLesson marks a lesson done and recomputes progress
//
// @Summary Complete lesson
// @Description At 100% the enrollment completes and the course skills are added to the profile
// @Tags Courses
// @Produce json
// @Security BearerAuth
// @Param id path string true "Course ID"
// @Param lessonID path string true "Lesson ID"
// @Success 200 {object} models.APIResponse{data=models.Enrollment}
// @Failure 404 {object} models.APIResponse "Not enrolled or unknown lesson"
// @Failure 409 {object} models.APIResponse "Enrollment dropped or course has no lessons"
// @Router /courses/{id}/lessons/{lessonID}/complete [post]
func (h *Handler) CompleteLesson(w http.ResponseWriter, r *http.Request) {
	s := subject(r)
	courseID := chi.URLParam(r, "id")
	e, completedNow, err := h.db.CompleteLesson(r.Context(), courseID, chi.URLParam(r, "lessonID"), s.UserID)
	if err != nil {
		respondStoreError(w, r, err, "enrollment")
		return
	}
	if completedNow {
		if h.recommender != nil {
			h.recommender.Invalidate(s.UserID)
		}
		if c, err := h.db.GetCourse(r.Context(), courseID); err == nil {
			h.emit(r, events.TopicCourseCompleted, s.UserID, events.CourseCompleted{
				CourseID:    c.ID,
				CourseTitle: c.Title,
				TenantID:    c.TenantID,
				UserID:      s.UserID,
				Skills:      c.Skills,
			})
		}
	}
	respondOK(w, e)
}

// ListEnrollments returns the caller's enrollments
//
// @Summary Own enrollments
// @Tags Courses
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.APIResponse{data=[]models.Enrollment}
// @Router /enrollments [get]
func (h *Handler) ListEnrollments(w http.ResponseWriter, r *http.Request) {
	list, err := h.db.ListUserEnrollments(r.Context(), subject(r).UserID)
	if err != nil {
		respondStoreError(w, r, err, "enrollments")
		return
	}
	if list == nil {
		list = []models.Enrollment{}
	}
	respondOK(w, list)
}

// CourseEnrollments lists learners of a course
//
// @Summary Course enrollments
// @Tags Courses
// @Produce json
// @Security BearerAuth
// @Param id path string true "Course ID"
// @Param limit query int false "Page size"
// @Param offset query int false "Offset"
// @Success 200 {object} models.APIResponse{data=[]models.Enrollment}
// @Router /courses/{id}/enrollments [get]
func (h *Handler) CourseEnrollments(w http.ResponseWriter, r *http.Request) {
	c, ok := h.loadManagedCourse(w, r)
	if !ok {
		return
	}
	p, ferr := h.parsePage(r)
	if ferr != nil {
		ferr.respond(w)
		return
	}
	page, err := h.db.ListCourseEnrollments(r.Context(), c.ID, p.Limit, p.Offset)
	if err != nil {
		respondStoreError(w, r, err, "enrollments")
		return
	}
	respondPage(w, page, p)
}
