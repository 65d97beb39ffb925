// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the mendeley-mirror pipeline:
// the catalogue records mirrored from the Mendeley API, the access token used to
// fetch them, and the configuration that scopes a mirror.
package types

import "strings"

// EarliestYear is the oldest publication year the mirror considers. Year
// filters default to it and the crawl never scans below it.
const EarliestYear = 1970

// Author is a contributor to an Article as returned by the catalogue search.
type Author struct {
	FirstName string `json:"first_name,omitempty" yaml:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty" yaml:"last_name,omitempty"`

	// ScopusAuthorID is the Scopus identifier when the upstream knows it.
	ScopusAuthorID string `json:"scopus_author_id,omitempty" yaml:"scopus_author_id,omitempty"`
}

// DisplayName returns "First Last" with surrounding whitespace removed.
// Author filtering compares this string against configured author names, so
// an author with no first name matches on the last name alone.
func (a Author) DisplayName() string {
	return strings.TrimSpace(a.FirstName + " " + a.LastName)
}

// Article is a publication record from the Mendeley catalogue. Records are
// stored exactly as decoded; the mirror does not validate upstream payloads.
type Article struct {
	// ID is the Mendeley catalogue document ID, when present.
	ID string `json:"id,omitempty" yaml:"id,omitempty"`

	Title string `json:"title" yaml:"title"`

	// Year is the four-digit publication year.
	Year int `json:"year" yaml:"year"`

	// Authors lists the contributors in upstream order.
	Authors []Author `json:"authors" yaml:"authors"`

	// Source is the venue, usually a journal or proceedings name.
	Source string `json:"source,omitempty" yaml:"source,omitempty"`

	// Type is the Mendeley document type (e.g. "journal", "conference_proceedings").
	Type string `json:"type,omitempty" yaml:"type,omitempty"`

	Abstract string `json:"abstract,omitempty" yaml:"abstract,omitempty"`

	// Identifiers maps identifier kinds ("doi", "issn", "scopus", ...) to values.
	Identifiers map[string]string `json:"identifiers" yaml:"identifiers,omitempty"`

	// Link is the public catalogue URL for the record.
	Link string `json:"link" yaml:"link"`
}

// HasAuthor reports whether any author's display name equals name exactly.
func (a Article) HasAuthor(name string) bool {
	for _, au := range a.Authors {
		if au.DisplayName() == name {
			return true
		}
	}
	return false
}

// DOI returns the "doi" identifier, or "" when absent.
func (a Article) DOI() string {
	return a.Identifiers["doi"]
}
