// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package retrieve assembles the full article set for the configured authors
// by crawling the catalogue search one publication year at a time, newest
// first, until an author shows a run of blank years.
package retrieve

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/pdiddy/mendeley-mirror/internal/observability"
	"github.com/pdiddy/mendeley-mirror/pkg/types"
)

// DefaultBlankYearTolerance is the number of consecutive years without
// results that ends an author's crawl.
const DefaultBlankYearTolerance = 2

// Searcher runs one windowed catalogue search.
type Searcher interface {
	SearchCatalog(ctx context.Context, author string, minYear, maxYear int) ([]types.Article, error)
}

// AuthorSummary records how one author's crawl went.
type AuthorSummary struct {
	Author       string
	Articles     int
	YearsScanned int
	NewestYear   int
	OldestYear   int
}

// Result is a completed retrieval.
type Result struct {
	Articles []types.Article
	Authors  []AuthorSummary
}

// Calls returns the number of upstream searches the retrieval made.
func (r Result) Calls() int {
	n := 0
	for _, a := range r.Authors {
		n += a.YearsScanned
	}
	return n
}

// Retriever crawls the catalogue for a fixed author list.
type Retriever struct {
	// Now returns the current time; the crawl starts at its calendar year.
	Now func() time.Time

	searcher  Searcher
	authors   []string
	tolerance int
	logger    zerolog.Logger
	metrics   *observability.Metrics
}

// New returns a retriever for authors. A tolerance below 1 uses
// DefaultBlankYearTolerance.
func New(s Searcher, authors []string, tolerance int, logger zerolog.Logger, metrics *observability.Metrics) *Retriever {
	if tolerance < 1 {
		tolerance = DefaultBlankYearTolerance
	}
	if metrics == nil {
		metrics = observability.NopMetrics()
	}
	return &Retriever{
		Now:       time.Now,
		searcher:  s,
		authors:   authors,
		tolerance: tolerance,
		logger:    observability.Component(logger, "retrieve"),
		metrics:   metrics,
	}
}

// Retrieve crawls every configured author and concatenates their records in
// author order. Records are not deduplicated. The first failed search aborts
// the whole retrieval and nothing is returned.
func (r *Retriever) Retrieve(ctx context.Context) (Result, error) {
	start := r.Now()
	var res Result

	for _, author := range r.authors {
		articles, summary, err := r.crawlAuthor(ctx, author, start.Year())
		if err != nil {
			return Result{}, err
		}
		res.Articles = append(res.Articles, articles...)
		res.Authors = append(res.Authors, summary)

		r.logger.Info().
			Str("author", author).
			Int("articles", summary.Articles).
			Int("years_scanned", summary.YearsScanned).
			Msg("author crawled")
	}

	if res.Articles == nil {
		res.Articles = []types.Article{}
	}
	return res, nil
}

// crawlAuthor scans backwards from year. A hit resets the blank-year count;
// the scan ends once the count reaches the tolerance or the year drops
// below types.EarliestYear.
func (r *Retriever) crawlAuthor(ctx context.Context, author string, year int) ([]types.Article, AuthorSummary, error) {
	summary := AuthorSummary{Author: author}
	var articles []types.Article
	blank := 0

	for ; blank < r.tolerance && year >= types.EarliestYear; year-- {
		if err := ctx.Err(); err != nil {
			return nil, summary, err
		}

		batch, err := r.searcher.SearchCatalog(ctx, author, year, year)
		if err != nil {
			return nil, summary, fmt.Errorf("searching %q for %d: %w", author, year, err)
		}
		summary.YearsScanned++

		if len(batch) == 0 {
			blank++
			r.metrics.CrawlYears.WithLabelValues("true").Inc()
			r.logger.Debug().Str("author", author).Int("year", year).Int("blank_run", blank).Msg("no records")
			continue
		}

		blank = 0
		r.metrics.CrawlYears.WithLabelValues("false").Inc()
		articles = append(articles, batch...)
		summary.Articles += len(batch)
		if summary.NewestYear == 0 {
			summary.NewestYear = year
		}
		summary.OldestYear = year
		r.logger.Debug().Str("author", author).Int("year", year).Int("records", len(batch)).Msg("records found")
	}

	return articles, summary, nil
}
