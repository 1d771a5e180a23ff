// Launchpad - Youth Employability Platform
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/launchpad

package recommend

import (
	"sort"
	"strings"

	"github.com/tomtom215/launchpad/internal/models"
)

// CanonicalSkill normalizes a skill token. See models.CanonicalSkill.
func CanonicalSkill(s string) string {
	return models.CanonicalSkill(s)
}

// skillSet is a set of canonical skills.
type skillSet map[string]struct{}

func newSkillSet(skills []string) skillSet {
	set := make(skillSet, len(skills))
	for _, s := range skills {
		if c := CanonicalSkill(s); c != "" {
			set[c] = struct{}{}
		}
	}
	return set
}

func (s skillSet) has(skill string) bool {
	_, ok := s[CanonicalSkill(skill)]
	return ok
}

// ambiguousTokens are skills or synonyms that are also everyday words; free
// text extraction ignores them. Profiles and job postings still match them
// exactly.
var ambiguousTokens = map[string]struct{}{
	"go": {}, "word": {}, "pm": {}, "rest": {}, "node": {},
	"ts": {}, "py": {}, "ui": {}, "ux": {}, "dl": {}, "ai": {}, "ml": {},
}

// Vocabulary recognizes known skills in free text.
type Vocabulary struct {
	words   map[string]string // single-token skill -> canonical
	phrases []string          // multi-word or punctuated canonical skills
}

// DefaultVocabulary is built from the synonym table plus common skills.
var DefaultVocabulary = NewVocabulary([]string{
	"javascript", "typescript", "go", "python", "java", "kotlin", "swift",
	"php", "ruby", "rust", "c#", "c++", "sql", "postgresql", "mongodb",
	"react", "vue", "angular", "node.js", "docker", "kubernetes", "linux",
	"git", "html", "css", "excel", "word", "powerpoint", "figma",
	"photoshop", "accounting", "sales", "marketing", "communication",
	"leadership", "customer service", "data analysis", "data entry",
	"machine learning", "project management", "graphic design",
	"ux design", "social media", "copywriting", "translation", "teaching",
	"driving", "welding", "carpentry", "plumbing", "electrical",
	"first aid", "cooking", "agriculture", "logistics", "retail",
})

// NewVocabulary builds a vocabulary from canonical skills and every
// synonym that maps to one of them.
func NewVocabulary(skills []string) *Vocabulary {
	v := &Vocabulary{words: make(map[string]string)}
	add := func(term, canon string) {
		if _, skip := ambiguousTokens[term]; skip {
			return
		}
		if isWord(term) {
			v.words[term] = canon
			return
		}
		v.phrases = append(v.phrases, term)
	}

	known := make(map[string]struct{}, len(skills))
	for _, s := range skills {
		c := CanonicalSkill(s)
		known[c] = struct{}{}
		add(c, c)
	}
	for syn, canon := range models.SkillSynonyms() {
		if _, ok := known[canon]; ok {
			add(syn, canon)
		}
	}
	sort.Strings(v.phrases)
	return v
}

// isWord reports whether term is a single alphanumeric token.
func isWord(term string) bool {
	for _, r := range term {
		if !isAlnum(r) {
			return false
		}
	}
	return term != ""
}

func isAlnum(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9')
}

// Extract returns the canonical skills mentioned in text, sorted and
// deduplicated.
func (v *Vocabulary) Extract(text string) []string {
	text = strings.ToLower(text)
	found := make(map[string]struct{})

	for tok := range tokenize(text) {
		if canon, ok := v.words[tok]; ok {
			found[canon] = struct{}{}
		}
	}
	padded := " " + strings.Join(strings.Fields(text), " ") + " "
	for _, p := range v.phrases {
		if containsPhrase(padded, p) {
			found[CanonicalSkill(p)] = struct{}{}
		}
	}

	out := make([]string, 0, len(found))
	for s := range found {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

// tokenize splits text into lowercase alphanumeric tokens.
func tokenize(text string) map[string]struct{} {
	var b strings.Builder
	for _, r := range text {
		if isAlnum(r) {
			b.WriteRune(r)
		} else {
			b.WriteRune(' ')
		}
	}
	words := strings.Fields(b.String())
	out := make(map[string]struct{}, len(words))
	for _, w := range words {
		out[w] = struct{}{}
	}
	return out
}

// containsPhrase matches p in padded text only at token boundaries, so
// "c++" does not match inside "c+++" and "java" not inside "javascript".
func containsPhrase(padded, p string) bool {
	for i := 0; ; {
		j := strings.Index(padded[i:], p)
		if j < 0 {
			return false
		}
		start := i + j
		end := start + len(p)
		if boundary(padded, start-1) && boundary(padded, end) {
			return true
		}
		i = start + 1
	}
}

func boundary(s string, i int) bool {
	if i < 0 || i >= len(s) {
		return true
	}
	c := s[i]
	return !isAlnum(rune(c)) && c != '+' && c != '#'
}
