// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package query filters, paginates and summarises an in-memory article
// collection. Every function is pure: inputs are never modified and the
// relative order of articles is preserved.
package query

import (
	"slices"
	"strings"

	"github.com/pdiddy/mendeley-mirror/pkg/types"
)

// DefaultPageSize is the number of articles per page when none is given.
const DefaultPageSize = 15

// FilterByAuthor keeps articles with at least one author whose display name
// is in authors. When authors equals configured (same names, same order) the
// collection is returned unchanged without inspecting any author.
func FilterByAuthor(articles []types.Article, authors, configured []string) []types.Article {
	if slices.Equal(authors, configured) {
		return articles
	}
	out := make([]types.Article, 0, len(articles))
	for _, a := range articles {
		if slices.ContainsFunc(authors, a.HasAuthor) {
			out = append(out, a)
		}
	}
	return out
}

// FilterByTerm keeps articles whose title contains term, ignoring case. An
// empty term keeps everything.
func FilterByTerm(articles []types.Article, term string) []types.Article {
	if term == "" {
		return articles
	}
	needle := strings.ToLower(term)
	out := make([]types.Article, 0, len(articles))
	for _, a := range articles {
		if strings.Contains(strings.ToLower(a.Title), needle) {
			out = append(out, a)
		}
	}
	return out
}

// FilterByYearRange keeps articles published in [start, end].
func FilterByYearRange(articles []types.Article, start, end int) []types.Article {
	out := make([]types.Article, 0, len(articles))
	for _, a := range articles {
		if a.Year >= start && a.Year <= end {
			out = append(out, a)
		}
	}
	return out
}

// Paginate returns the 1-indexed page of pageSize articles. Pages past the
// end are empty. A page below 1 is treated as 1 and a non-positive pageSize
// as DefaultPageSize.
func Paginate(articles []types.Article, page, pageSize int) []types.Article {
	page, pageSize = normalizePage(page, pageSize)
	start := pageSize * (page - 1)
	if start >= len(articles) {
		return []types.Article{}
	}
	end := min(start+pageSize, len(articles))
	return articles[start:end]
}

// TotalPages returns ceil(len(articles) / pageSize), using DefaultPageSize
// for a non-positive pageSize.
func TotalPages(articles []types.Article, pageSize int) int {
	_, pageSize = normalizePage(1, pageSize)
	return (len(articles) + pageSize - 1) / pageSize
}

func normalizePage(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return page, pageSize
}

// ExtremeYear returns the newest (or oldest) publication year present, or
// types.EarliestYear for an empty collection.
func ExtremeYear(articles []types.Article, newest bool) int {
	if len(articles) == 0 {
		return types.EarliestYear
	}
	year := articles[0].Year
	for _, a := range articles[1:] {
		if (newest && a.Year > year) || (!newest && a.Year < year) {
			year = a.Year
		}
	}
	return year
}

// CountByAuthor counts articles listing an author whose display name is name.
func CountByAuthor(articles []types.Article, name string) int {
	n := 0
	for _, a := range articles {
		if a.HasAuthor(name) {
			n++
		}
	}
	return n
}

// AuthorInfo is one row of the author information table.
type AuthorInfo struct {
	Name         string `json:"name" yaml:"name"`
	Selected     bool   `json:"selected" yaml:"selected"`
	ArticleCount int    `json:"article_count" yaml:"article_count"`
}

// AuthorTable builds one row per configured author, flagging those in
// selected and counting their articles in articles.
func AuthorTable(configured, selected []string, articles []types.Article) []AuthorInfo {
	rows := make([]AuthorInfo, len(configured))
	for i, name := range configured {
		rows[i] = AuthorInfo{
			Name:         name,
			Selected:     slices.Contains(selected, name),
			ArticleCount: CountByAuthor(articles, name),
		}
	}
	return rows
}
