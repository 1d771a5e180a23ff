// Launchpad - Youth Employability Platform
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/launchpad

package models

import (
	"sort"
	"strings"
)

// skillSynonyms maps spellings to a canonical skill token. Keys and values
// are lowercase.
var skillSynonyms = map[string]string{
	"js":                      "javascript",
	"ecmascript":              "javascript",
	"ts":                      "typescript",
	"golang":                  "go",
	"py":                      "python",
	"python3":                 "python",
	"k8s":                     "kubernetes",
	"postgres":                "postgresql",
	"psql":                    "postgresql",
	"mongo":                   "mongodb",
	"reactjs":                 "react",
	"react.js":                "react",
	"vuejs":                   "vue",
	"vue.js":                  "vue",
	"node":                    "node.js",
	"nodejs":                  "node.js",
	"csharp":                  "c#",
	"c sharp":                 "c#",
	"cpp":                     "c++",
	"ml":                      "machine learning",
	"ai":                      "artificial intelligence",
	"dl":                      "deep learning",
	"nlp":                     "natural language processing",
	"ms excel":                "excel",
	"microsoft excel":         "excel",
	"ms word":                 "word",
	"microsoft word":          "word",
	"ux":                      "ux design",
	"ui":                      "ui design",
	"ui/ux":                   "ux design",
	"aws":                     "amazon web services",
	"gcp":                     "google cloud",
	"html5":                   "html",
	"css3":                    "css",
	"customer support":        "customer service",
	"project mgmt":            "project management",
	"pm":                      "project management",
	"seo":                     "search engine optimization",
	"social media marketing":  "social media",
	"data analytics":          "data analysis",
	"communication skills":    "communication",
	"public speaking":         "presentation",
	"teamwork":                "collaboration",
	"bookkeeping":             "accounting",
	"graphic designer":        "graphic design",
	"spreadsheet":             "excel",
	"spreadsheets":            "excel",
	"git/github":              "git",
	"github":                  "git",
	"rest":                    "rest api",
	"restful":                 "rest api",
	"sql server":              "sql",
	"mysql":                   "sql",
	"digital marketing":       "marketing",
	"first aid certification": "first aid",
}

// CanonicalSkill normalizes a skill token: lowercase, single-spaced, and
// mapped through the synonym table.
func CanonicalSkill(s string) string {
	s = strings.ToLower(strings.Join(strings.Fields(s), " "))
	if canon, ok := skillSynonyms[s]; ok {
		return canon
	}
	return s
}

// SkillSpellings returns the canonical form of s followed by every synonym
// that maps to it, sorted. Stored skills are lowercased but not
// canonicalized, so lookups match on all of them.
func SkillSpellings(s string) []string {
	canon := CanonicalSkill(s)
	if canon == "" {
		return nil
	}
	var syns []string
	for syn, c := range skillSynonyms {
		if c == canon {
			syns = append(syns, syn)
		}
	}
	sort.Strings(syns)
	return append([]string{canon}, syns...)
}

// SkillSynonyms returns a copy of the synonym table.
func SkillSynonyms() map[string]string {
	out := make(map[string]string, len(skillSynonyms))
	for k, v := range skillSynonyms {
		out[k] = v
	}
	return out
}
