// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package query

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/mendeley-mirror/pkg/types"
)

var (
	jane  = types.Author{FirstName: "Jane", LastName: "Doe"}
	john  = types.Author{FirstName: "John", LastName: "Smith"}
	alice = types.Author{FirstName: "Alice", LastName: "Wong"}
)

func art(title string, year int, authors ...types.Author) types.Article {
	return types.Article{Title: title, Year: year, Authors: authors}
}

func numbered(n int) []types.Article {
	out := make([]types.Article, n)
	for i := range out {
		out[i] = art(fmt.Sprintf("Paper %02d", i), 2000+i%20, jane)
	}
	return out
}

func titles(articles []types.Article) []string {
	out := make([]string, len(articles))
	for i, a := range articles {
		out[i] = a.Title
	}
	return out
}

func TestFilterByAuthor(t *testing.T) {
	articles := []types.Article{
		art("A", 2020, jane),
		art("B", 2021, john),
		art("C", 2022, jane, john),
		art("D", 2023, alice),
		art("E", 2023, types.Author{LastName: "Doe"}),
	}
	configured := []string{"Jane Doe", "John Smith"}

	tests := []struct {
		name    string
		authors []string
		want    []string
	}{
		{"full list short-circuits", []string{"Jane Doe", "John Smith"}, []string{"A", "B", "C", "D", "E"}},
		{"reordered list filters", []string{"John Smith", "Jane Doe"}, []string{"A", "B", "C"}},
		{"single author", []string{"Jane Doe"}, []string{"A", "C"}},
		{"last name only", []string{"Doe"}, []string{"E"}},
		{"unknown author", []string{"Nobody"}, []string{}},
		{"empty list", []string{}, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, titles(FilterByAuthor(articles, tt.authors, configured)))
		})
	}
}

func TestFilterByAuthor_IdentityForAnyCollection(t *testing.T) {
	configured := []string{"Someone Else"}
	for _, collection := range [][]types.Article{nil, {}, numbered(3), {art("x", 2020)}} {
		assert.Equal(t, collection, FilterByAuthor(collection, configured, configured))
	}
}

func TestFilterByTerm(t *testing.T) {
	articles := []types.Article{
		art("Deep Learning for Cells", 2020),
		art("Protein FOLDING", 2021),
		art("Cell Biology", 2022),
	}

	assert.Equal(t, []string{"Deep Learning for Cells", "Cell Biology"}, titles(FilterByTerm(articles, "cell")))
	assert.Equal(t, []string{"Protein FOLDING"}, titles(FilterByTerm(articles, "folding")))
	assert.Empty(t, FilterByTerm(articles, "quantum"))
	assert.Equal(t, articles, FilterByTerm(articles, ""))
}

func TestFilterByYearRange_Inclusive(t *testing.T) {
	articles := []types.Article{
		art("2019", 2019, jane),
		art("2020", 2020, jane),
		art("2021", 2021, jane),
		art("2022", 2022, jane),
	}

	got := FilterByYearRange(articles, 2020, 2021)
	assert.Equal(t, []string{"2020", "2021"}, titles(got))

	// Idempotent.
	assert.Equal(t, got, FilterByYearRange(got, 2020, 2021))
	assert.Empty(t, FilterByYearRange(articles, 2022, 2020))
}

func TestPaginate_PartialLastPage(t *testing.T) {
	articles := numbered(20)

	page := Paginate(articles, 2, 15)
	require.Len(t, page, 5)
	assert.Equal(t, articles[15:20], page)
}

func TestPaginate_Edges(t *testing.T) {
	articles := numbered(20)

	assert.Empty(t, Paginate(articles, 3, 15))
	assert.NotNil(t, Paginate(articles, 99, 15))
	assert.Empty(t, Paginate(nil, 1, 15))
	assert.Equal(t, articles[:15], Paginate(articles, 0, 15), "page below 1 is the first page")
	assert.Equal(t, articles[:DefaultPageSize], Paginate(articles, 1, 0))
}

func TestPaginate_PagesReconstructCollection(t *testing.T) {
	for _, n := range []int{0, 1, 14, 15, 16, 47} {
		for _, size := range []int{1, 5, 15, 100} {
			articles := numbered(n)
			pages := TotalPages(articles, size)

			var joined []types.Article
			for p := 1; p <= pages; p++ {
				page := Paginate(articles, p, size)
				assert.LessOrEqual(t, len(page), size)
				joined = append(joined, page...)
			}
			assert.Equal(t, titles(articles), titles(joined), "n=%d size=%d", n, size)
			assert.Empty(t, Paginate(articles, pages+1, size))
		}
	}
}

func TestTotalPages(t *testing.T) {
	tests := []struct {
		n, size, want int
	}{
		{0, 15, 0},
		{1, 15, 1},
		{15, 15, 1},
		{16, 15, 2},
		{20, 15, 2},
		{45, 15, 3},
		{7, 1, 7},
		{20, 0, 2},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, TotalPages(numbered(tt.n), tt.size), "n=%d size=%d", tt.n, tt.size)
	}
}

func TestExtremeYear(t *testing.T) {
	assert.Equal(t, types.EarliestYear, ExtremeYear(nil, true))
	assert.Equal(t, types.EarliestYear, ExtremeYear([]types.Article{}, false))

	articles := []types.Article{art("a", 2020), art("b", 2003), art("c", 2024), art("d", 2011)}
	assert.Equal(t, 2024, ExtremeYear(articles, true))
	assert.Equal(t, 2003, ExtremeYear(articles, false))
}

func TestCountByAuthor(t *testing.T) {
	articles := []types.Article{
		art("A", 2020, jane),
		art("B", 2021, jane, john),
		art("C", 2022, john),
	}
	assert.Equal(t, 2, CountByAuthor(articles, "Jane Doe"))
	assert.Equal(t, 2, CountByAuthor(articles, "John Smith"))
	assert.Equal(t, 0, CountByAuthor(articles, "jane doe"), "matching is case sensitive")
}

func TestAuthorTable(t *testing.T) {
	articles := []types.Article{art("A", 2020, jane), art("B", 2021, jane, john)}
	got := AuthorTable([]string{"Jane Doe", "John Smith", "Alice Wong"}, []string{"John Smith"}, articles)

	assert.Equal(t, []AuthorInfo{
		{Name: "Jane Doe", Selected: false, ArticleCount: 2},
		{Name: "John Smith", Selected: true, ArticleCount: 1},
		{Name: "Alice Wong", Selected: false, ArticleCount: 0},
	}, got)
}

func TestEngineRun(t *testing.T) {
	articles := []types.Article{
		art("Cell Atlas", 2018, jane),
		art("Cell Division", 2021, john),
		art("Protein Folding", 2022, jane, john),
		art("Cell Signalling", 2023, alice),
	}
	configured := []string{"Jane Doe", "John Smith"}
	e := NewEngine(configured, 0)
	e.Now = func() time.Time { return time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC) }

	t.Run("defaults", func(t *testing.T) {
		v := e.Run(articles, Filters{})

		assert.Len(t, v.Articles, 4)
		assert.Equal(t, types.EarliestYear, v.StartYear)
		assert.Equal(t, 2024, v.EndYear)
		assert.Equal(t, 1, v.Page)
		assert.Equal(t, DefaultPageSize, v.PageSize)
		assert.Equal(t, 4, v.Total)
		assert.Equal(t, 1, v.TotalPages)
		assert.Equal(t, 2018, v.OldestYear)
		assert.Equal(t, 2023, v.NewestYear)
		assert.True(t, v.Authors[0].Selected)
		assert.True(t, v.Authors[1].Selected)
	})

	t.Run("author then term then year", func(t *testing.T) {
		v := e.Run(articles, Filters{Authors: []string{"John Smith"}, Term: "cell", StartYear: 2020, EndYear: 2022})

		assert.Equal(t, []string{"Cell Division"}, titles(v.Articles))
		assert.Equal(t, "cell", v.Term)
		assert.Equal(t, 2018, v.OldestYear, "year span ignores filters")
		assert.Equal(t, []AuthorInfo{
			{Name: "Jane Doe", Selected: false, ArticleCount: 0},
			{Name: "John Smith", Selected: true, ArticleCount: 1},
		}, v.Authors)
	})

	t.Run("pagination", func(t *testing.T) {
		v := e.Run(articles, Filters{PageSize: 3, Page: 2})

		assert.Equal(t, []string{"Cell Signalling"}, titles(v.Articles))
		assert.Equal(t, 2, v.TotalPages)
		assert.Equal(t, 4, v.Total)
	})

	t.Run("empty collection", func(t *testing.T) {
		v := e.Run(nil, Filters{})

		assert.Empty(t, v.Articles)
		assert.Equal(t, types.EarliestYear, v.OldestYear)
		assert.Equal(t, types.EarliestYear, v.NewestYear)
		assert.Equal(t, 0, v.TotalPages)
	})
}
