// Launchpad - Youth Employability Platform
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/launchpad

package jobimport

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/tomtom215/launchpad/internal/models"
	"github.com/tomtom215/launchpad/internal/recommend"
)

const (
	maxTitleLen       = 200
	maxDescriptionLen = 20000
	maxLocationLen    = 200
)

// closedSourceStatuses mark rows the tracker already discarded.
var closedSourceStatuses = map[string]struct{}{
	"reject":   {},
	"rejected": {},
	"closed":   {},
	"expired":  {},
	"deleted":  {},
}

// Mapper converts source rows to draft jobs.
type Mapper struct {
	vocab *recommend.Vocabulary
}

// NewMapper uses recommend.DefaultVocabulary when vocab is nil.
func NewMapper(vocab *recommend.Vocabulary) *Mapper {
	if vocab == nil {
		vocab = recommend.DefaultVocabulary
	}
	return &Mapper{vocab: vocab}
}

// ValidateRecord reports why a row cannot be imported.
func (m *Mapper) ValidateRecord(rec *Record) error {
	if strings.TrimSpace(rec.Title) == "" {
		return errors.New("missing title")
	}
	if _, closed := closedSourceStatuses[strings.ToLower(strings.TrimSpace(rec.Status))]; closed {
		return fmt.Errorf("source status %q", rec.Status)
	}
	if rec.URL != "" {
		u, err := url.Parse(rec.URL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
			return fmt.Errorf("invalid url %q", rec.URL)
		}
	}
	return nil
}

// FilterValidRecords splits records into importable ones and a skip count.
func (m *Mapper) FilterValidRecords(records []Record) (valid []Record, skipped int) {
	for i := range records {
		if err := m.ValidateRecord(&records[i]); err == nil {
			valid = append(valid, records[i])
		} else {
			skipped++
		}
	}
	return valid, skipped
}

// ToJob maps one row to a draft job for tenantID.
func (m *Mapper) ToJob(rec *Record, tenantID, postedBy string) *models.Job {
	title := truncate(collapseSpace(rec.Title), maxTitleLen)
	location := truncate(collapseSpace(rec.Location), maxLocationLen)
	text := title + "\n" + rec.Description

	job := &models.Job{
		TenantID:        tenantID,
		CompanyName:     collapseSpace(rec.Company),
		PostedBy:        postedBy,
		Title:           title,
		Description:     truncate(strings.TrimSpace(rec.Description), maxDescriptionLen),
		Location:        location,
		Remote:          isRemote(title, location),
		JobType:         guessJobType(text),
		RequiredSkills:  m.vocab.Extract(text),
		PreferredSkills: []string{},
		EducationLevel:  models.EducationNone,
		Status:          models.JobDraft,
		SourceURL:       rec.URL,
	}
	if !rec.CreatedAt.IsZero() {
		job.CreatedAt = rec.CreatedAt
	}
	return job
}

func isRemote(title, location string) bool {
	s := strings.ToLower(title + " " + location)
	return strings.Contains(s, "remote") || strings.Contains(s, "work from home") || strings.Contains(s, "anywhere")
}

// jobTypeHints are checked in order; the first hit wins.
var jobTypeHints = []struct {
	words []string
	typ   models.JobType
}{
	{[]string{"apprentice", "apprenticeship"}, models.JobApprenticeship},
	{[]string{"intern", "internship", "graduate trainee"}, models.JobInternship},
	{[]string{"volunteer", "unpaid"}, models.JobVolunteer},
	{[]string{"freelance", "contractor", "contract"}, models.JobFreelance},
	{[]string{"part-time", "part time", "parttime"}, models.JobPartTime},
}

func guessJobType(text string) models.JobType {
	s := " " + collapseSpace(strings.Map(hintRune, strings.ToLower(text))) + " "
	for _, h := range jobTypeHints {
		for _, w := range h.words {
			if strings.Contains(s, " "+w+" ") {
				return h.typ
			}
		}
	}
	return models.JobFullTime
}

// hintRune keeps letters, digits and hyphens; everything else separates words.
func hintRune(r rune) rune {
	if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' {
		return r
	}
	return ' '
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// truncate cuts s to at most n bytes on a rune boundary.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	s = s[:n]
	for !utf8.ValidString(s) {
		s = s[:len(s)-1]
	}
	return s
}
