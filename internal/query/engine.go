// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package query

import (
	"time"

	"github.com/pdiddy/mendeley-mirror/pkg/types"
)

// Filters holds the parameters of one catalogue view. Zero values select the
// defaults: every configured author, no term, the full year range, the
// first page and the engine's page size.
type Filters struct {
	Authors   []string `json:"authors,omitempty" yaml:"authors,omitempty"`
	Term      string   `json:"term,omitempty" yaml:"term,omitempty"`
	StartYear int      `json:"start_year,omitempty" yaml:"start_year,omitempty"`
	EndYear   int      `json:"end_year,omitempty" yaml:"end_year,omitempty"`
	PageSize  int      `json:"page_size,omitempty" yaml:"page_size,omitempty"`
	Page      int      `json:"page,omitempty" yaml:"page,omitempty"`
}

// View is a rendered catalogue page.
type View struct {
	Articles []types.Article `json:"articles" yaml:"articles"`
	Authors  []AuthorInfo    `json:"authors" yaml:"authors"`
	Term     string          `json:"term" yaml:"term"`

	// OldestYear and NewestYear span the whole collection, before filtering.
	OldestYear int `json:"oldest_year" yaml:"oldest_year"`
	NewestYear int `json:"newest_year" yaml:"newest_year"`

	StartYear  int `json:"start_year" yaml:"start_year"`
	EndYear    int `json:"end_year" yaml:"end_year"`
	Page       int `json:"page" yaml:"page"`
	PageSize   int `json:"page_size" yaml:"page_size"`
	Total      int `json:"total" yaml:"total"`
	TotalPages int `json:"total_pages" yaml:"total_pages"`
}

// Engine applies Filters to a collection for a configured author list.
type Engine struct {
	Configured []string
	PageSize   int
	Now        func() time.Time
}

// NewEngine returns an engine for the configured authors. A non-positive
// pageSize uses DefaultPageSize.
func NewEngine(configured []string, pageSize int) *Engine {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &Engine{Configured: configured, PageSize: pageSize, Now: time.Now}
}

// Run filters articles by author, then term, then year range, and returns
// the requested page along with the author table for the filtered set.
func (e *Engine) Run(articles []types.Article, f Filters) View {
	f = e.resolve(f)

	filtered := FilterByAuthor(articles, f.Authors, e.Configured)
	filtered = FilterByTerm(filtered, f.Term)
	filtered = FilterByYearRange(filtered, f.StartYear, f.EndYear)

	return View{
		Articles:   Paginate(filtered, f.Page, f.PageSize),
		Authors:    AuthorTable(e.Configured, f.Authors, filtered),
		Term:       f.Term,
		OldestYear: ExtremeYear(articles, false),
		NewestYear: ExtremeYear(articles, true),
		StartYear:  f.StartYear,
		EndYear:    f.EndYear,
		Page:       f.Page,
		PageSize:   f.PageSize,
		Total:      len(filtered),
		TotalPages: TotalPages(filtered, f.PageSize),
	}
}

func (e *Engine) resolve(f Filters) Filters {
	if f.Authors == nil {
		f.Authors = e.Configured
	}
	if f.StartYear == 0 {
		f.StartYear = types.EarliestYear
	}
	if f.EndYear == 0 {
		now := time.Now
		if e.Now != nil {
			now = e.Now
		}
		f.EndYear = now().Year()
	}
	if f.PageSize <= 0 {
		f.PageSize = e.PageSize
	}
	f.Page, f.PageSize = normalizePage(f.Page, f.PageSize)
	return f
}
