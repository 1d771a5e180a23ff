// Launchpad - Youth Employability Platform
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/launchpad

package models

import (
	"time"
)

// UploadKind is the purpose of an uploaded file.
type UploadKind string

const (
	UploadResume         UploadKind = "resume"
	UploadAvatar         UploadKind = "avatar"
	UploadLogo           UploadKind = "logo"
	UploadCourseMaterial UploadKind = "course_material"
)

// Valid reports whether k is a known kind.
func (k UploadKind) Valid() bool {
	switch k {
	case UploadResume, UploadAvatar, UploadLogo, UploadCourseMaterial:
		return true
	}
	return false
}

// Upload is the metadata row for a stored file.
type Upload struct {
	ID          string     `json:"id"`
	OwnerID     string     `json:"owner_id"`
	Kind        UploadKind `json:"kind"`
	Filename    string     `json:"filename"`
	ContentType string     `json:"content_type"`
	Size        int64      `json:"size"`
	SHA256      string     `json:"sha256"`
	StorageKey  string     `json:"-"`
	CreatedAt   time.Time  `json:"created_at"`
}
