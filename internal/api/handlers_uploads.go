// Launchpad - Youth Employability Platform
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/launchpad

package api

import (
	"errors"
	"io"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/launchpad/internal/logging"
	"github.com/tomtom215/launchpad/internal/models"
	"github.com/tomtom215/launchpad/internal/uploads"
)

// multipartSlack covers the multipart framing and the kind field on top of
// the file itself.
const multipartSlack = 64 << 10

// UploadFile stores one multipart file
//
// @Summary Upload file
// @Description Multipart form with a kind field (resume, avatar, logo, course_material) followed by file. kind may also be passed as a query parameter.
// @Tags Uploads
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param kind formData string true "Upload kind"
// @Param file formData file true "File"
// @Success 201 {object} models.APIResponse{data=models.Upload}
// @Failure 413 {object} models.APIResponse
// @Failure 415 {object} models.APIResponse
// @Failure 502 {object} models.APIResponse
// @Router /uploads [post]
func (h *Handler) UploadFile(w http.ResponseWriter, r *http.Request) {
	if h.uploads == nil {
		unavailable(w, "uploads")
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, h.uploads.MaxSize()+multipartSlack)
	mr, err := r.MultipartReader()
	if err != nil {
		respondError(w, http.StatusBadRequest, ErrCodeBadRequest, "expected a multipart/form-data body", nil)
		return
	}

	kind := models.UploadKind(r.URL.Query().Get("kind"))
	for {
		part, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			respondFieldError(w, "file", "file is required")
			return
		}
		if err != nil {
			h.respondUploadError(w, r, err)
			return
		}
		switch part.FormName() {
		case "kind":
			b, err := io.ReadAll(io.LimitReader(part, 64))
			if err != nil {
				h.respondUploadError(w, r, err)
				return
			}
			kind = models.UploadKind(strings.TrimSpace(string(b)))
		case "file":
			if !kind.Valid() {
				respondFieldError(w, "kind", "kind must be one of resume, avatar, logo, course_material")
				return
			}
			u, err := h.uploads.Save(r.Context(), subject(r).UserID, kind, part.FileName(), part)
			if err != nil {
				h.respondUploadError(w, r, err)
				return
			}
			respondData(w, http.StatusCreated, u)
			return
		}
	}
}

func (h *Handler) respondUploadError(w http.ResponseWriter, r *http.Request, err error) {
	var maxErr *http.MaxBytesError
	switch {
	case errors.Is(err, uploads.ErrTooLarge), errors.As(err, &maxErr):
		respondErrorDetails(w, http.StatusRequestEntityTooLarge, ErrCodePayloadTooLarge, "file exceeds the upload size limit",
			map[string]interface{}{"max_bytes": h.uploads.MaxSize()})
	case errors.Is(err, uploads.ErrUnsupportedType):
		respondError(w, http.StatusUnsupportedMediaType, ErrCodeUnsupportedMedia, "file type is not allowed for this kind", err)
	case errors.Is(err, uploads.ErrUpstream):
		logging.Ctx(r.Context()).Error().Err(err).Msg("Upload backend unavailable")
		respondError(w, http.StatusBadGateway, ErrCodeUpstream, "file storage is unavailable", nil)
	case errors.Is(err, uploads.ErrObjectNotFound):
		respondError(w, http.StatusNotFound, ErrCodeNotFound, "file not found", nil)
	default:
		respondStoreError(w, r, err, "upload")
	}
}

// canReadUpload allows the owner, a superadmin, and members of a company
// that received the resume with an application.
func (h *Handler) canReadUpload(r *http.Request, u *models.Upload) (bool, error) {
	s := subject(r)
	if s.UserID == u.OwnerID || s.IsSuperadmin() {
		return true, nil
	}
	if u.Kind != models.UploadResume || !s.Is(models.RoleCompany) || s.TenantID == "" {
		return false, nil
	}
	return h.db.ResumeSharedWithTenant(r.Context(), u.ID, s.TenantID)
}

// DownloadUpload streams a stored file
//
// @Summary Download file
// @Tags Uploads
// @Produce octet-stream
// @Security BearerAuth
// @Param id path string true "Upload ID"
// @Success 200 {file} file
// @Failure 404 {object} models.APIResponse
// @Router /uploads/{id} [get]
func (h *Handler) DownloadUpload(w http.ResponseWriter, r *http.Request) {
	if h.uploads == nil {
		unavailable(w, "uploads")
		return
	}
	u, err := h.uploads.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondStoreError(w, r, err, "upload")
		return
	}
	allowed, err := h.canReadUpload(r, u)
	if err != nil {
		respondStoreError(w, r, err, "upload")
		return
	}
	if !allowed {
		// Existence is not revealed to other users.
		respondError(w, http.StatusNotFound, ErrCodeNotFound, "upload not found", nil)
		return
	}

	rc, err := h.uploads.Open(r.Context(), u)
	if err != nil {
		h.respondUploadError(w, r, err)
		return
	}
	defer rc.Close()

	w.Header().Set("Content-Type", u.ContentType)
	w.Header().Set("Content-Length", strconv.FormatInt(u.Size, 10))
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": u.Filename}))
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, rc); err != nil {
		logging.Ctx(r.Context()).Warn().Err(err).Str("upload_id", u.ID).Msg("Upload stream interrupted")
	}
}

// DeleteUpload removes a file owned by the caller
//
// @Summary Delete file
// @Tags Uploads
// @Produce json
// @Security BearerAuth
// @Param id path string true "Upload ID"
// @Success 200 {object} models.APIResponse
// @Router /uploads/{id} [delete]
func (h *Handler) DeleteUpload(w http.ResponseWriter, r *http.Request) {
	if h.uploads == nil {
		unavailable(w, "uploads")
		return
	}
	u, err := h.uploads.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondStoreError(w, r, err, "upload")
		return
	}
	if u.OwnerID != subject(r).UserID {
		respondError(w, http.StatusNotFound, ErrCodeNotFound, "upload not found", nil)
		return
	}
	if err := h.uploads.Delete(r.Context(), u); err != nil {
		h.respondUploadError(w, r, err)
		return
	}
	respondOK(w, map[string]string{"deleted": u.ID})
}
