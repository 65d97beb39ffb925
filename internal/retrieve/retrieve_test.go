// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package retrieve

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/mendeley-mirror/internal/observability"
	"github.com/pdiddy/mendeley-mirror/pkg/types"
)

type call struct {
	author string
	year   int
}

// fakeSearcher answers from a per-author, per-year table and records calls.
type fakeSearcher struct {
	data  map[string]map[int][]types.Article
	fail  map[call]error
	calls []call
}

func (f *fakeSearcher) SearchCatalog(_ context.Context, author string, minYear, maxYear int) ([]types.Article, error) {
	if minYear != maxYear {
		return nil, fmt.Errorf("expected single-year window, got %d-%d", minYear, maxYear)
	}
	c := call{author, minYear}
	f.calls = append(f.calls, c)
	if err := f.fail[c]; err != nil {
		return nil, err
	}
	return f.data[author][minYear], nil
}

func article(title string, year int, author string) types.Article {
	return types.Article{Title: title, Year: year, Authors: []types.Author{{LastName: author}}}
}

func newRetriever(s Searcher, authors []string, tolerance int, year int) *Retriever {
	r := New(s, authors, tolerance, zerolog.Nop(), nil)
	r.Now = func() time.Time { return time.Date(year, 6, 1, 0, 0, 0, 0, time.UTC) }
	return r
}

func years(calls []call) []int {
	out := make([]int, len(calls))
	for i, c := range calls {
		out[i] = c.year
	}
	return out
}

func TestRetrieve_GapYearResetsBlankCount(t *testing.T) {
	// Single blank years between hits never end the crawl.
	s := &fakeSearcher{data: map[string]map[int][]types.Article{
		"Jane Doe": {
			2025: {article("a", 2025, "Doe")},
			2023: {article("b", 2023, "Doe")},
			2021: {article("c", 2021, "Doe"), article("d", 2021, "Doe")},
		},
	}}

	res, err := newRetriever(s, []string{"Jane Doe"}, 2, 2025).Retrieve(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []int{2025, 2024, 2023, 2022, 2021, 2020, 2019}, years(s.calls))
	assert.Len(t, res.Articles, 4)
	require.Len(t, res.Authors, 1)
	assert.Equal(t, AuthorSummary{Author: "Jane Doe", Articles: 4, YearsScanned: 7, NewestYear: 2025, OldestYear: 2021}, res.Authors[0])
	assert.Equal(t, 7, res.Calls())
}

func TestRetrieve_HitAfterBlankRunContinuesScan(t *testing.T) {
	s := &fakeSearcher{data: map[string]map[int][]types.Article{
		"Jane Doe": {
			2021: {article("hit", 2021, "Doe")},
		},
	}}

	res, err := newRetriever(s, []string{"Jane Doe"}, 3, 2023).Retrieve(context.Background())
	require.NoError(t, err)

	// 2023 and 2022 are blank, 2021 resets the run, then three blanks end it.
	assert.Equal(t, []int{2023, 2022, 2021, 2020, 2019, 2018}, years(s.calls))
	assert.Len(t, res.Articles, 1)
}

func TestRetrieve_StopsAfterConsecutiveBlanks(t *testing.T) {
	s := &fakeSearcher{data: map[string]map[int][]types.Article{
		"Jane Doe": {
			2024: {article("old", 2024, "Doe")},
			// 2021 exists but is never reached.
			2021: {article("unreached", 2021, "Doe")},
		},
	}}

	res, err := newRetriever(s, []string{"Jane Doe"}, 2, 2024).Retrieve(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []int{2024, 2023, 2022}, years(s.calls))
	require.Len(t, res.Articles, 1)
	assert.Equal(t, "old", res.Articles[0].Title)
}

func TestRetrieve_EarliestYearBoundsTheScan(t *testing.T) {
	data := map[int][]types.Article{}
	for y := types.EarliestYear; y <= 1975; y++ {
		data[y] = []types.Article{article(fmt.Sprint(y), y, "Doe")}
	}
	s := &fakeSearcher{data: map[string]map[int][]types.Article{"Jane Doe": data}}

	res, err := newRetriever(s, []string{"Jane Doe"}, 2, 1975).Retrieve(context.Background())
	require.NoError(t, err)

	assert.Len(t, res.Articles, 6)
	assert.Equal(t, types.EarliestYear, s.calls[len(s.calls)-1].year)
}

func TestRetrieve_ConcatenatesAuthorsWithoutDedup(t *testing.T) {
	shared := types.Article{
		Title:   "Joint Paper",
		Year:    2024,
		Authors: []types.Author{{FirstName: "Jane", LastName: "Doe"}, {FirstName: "John", LastName: "Smith"}},
	}
	s := &fakeSearcher{data: map[string]map[int][]types.Article{
		"Jane Doe":   {2024: {shared}},
		"John Smith": {2024: {shared}},
	}}

	res, err := newRetriever(s, []string{"Jane Doe", "John Smith"}, 1, 2024).Retrieve(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []types.Article{shared, shared}, res.Articles)
	assert.Equal(t, []call{{"Jane Doe", 2024}, {"Jane Doe", 2023}, {"John Smith", 2024}, {"John Smith", 2023}}, s.calls)
}

func TestRetrieve_FailureAbortsEverything(t *testing.T) {
	boom := errors.New("upstream down")
	s := &fakeSearcher{
		data: map[string]map[int][]types.Article{
			"Jane Doe":   {2024: {article("a", 2024, "Doe")}},
			"John Smith": {2024: {article("b", 2024, "Smith")}},
		},
		fail: map[call]error{{"John Smith", 2023}: boom},
	}

	res, err := newRetriever(s, []string{"Jane Doe", "John Smith"}, 2, 2024).Retrieve(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), `"John Smith" for 2023`)
	assert.Empty(t, res.Articles)

	// No further calls after the failure.
	assert.Equal(t, call{"John Smith", 2023}, s.calls[len(s.calls)-1])
}

func TestRetrieve_NoAuthors(t *testing.T) {
	s := &fakeSearcher{}
	res, err := newRetriever(s, nil, 2, 2024).Retrieve(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, res.Articles)
	assert.Empty(t, res.Articles)
	assert.Empty(t, s.calls)
}

func TestRetrieve_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := &fakeSearcher{}
	_, err := newRetriever(s, []string{"Jane Doe"}, 2, 2024).Retrieve(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, s.calls)
}

func TestNew_ToleranceDefault(t *testing.T) {
	assert.Equal(t, DefaultBlankYearTolerance, New(&fakeSearcher{}, nil, 0, zerolog.Nop(), nil).tolerance)
	assert.Equal(t, 5, New(&fakeSearcher{}, nil, 5, zerolog.Nop(), nil).tolerance)
}

func TestRetrieve_Metrics(t *testing.T) {
	m := observability.NewMetrics(prometheus.NewRegistry())
	s := &fakeSearcher{data: map[string]map[int][]types.Article{
		"Jane Doe": {2024: {article("a", 2024, "Doe")}},
	}}
	r := New(s, []string{"Jane Doe"}, 2, zerolog.Nop(), m)
	r.Now = func() time.Time { return time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC) }

	_, err := r.Retrieve(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.CrawlYears.WithLabelValues("false")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.CrawlYears.WithLabelValues("true")))
}
