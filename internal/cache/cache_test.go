// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package cache

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/mendeley-mirror/pkg/types"
)

func sampleArticles() []types.Article {
	return []types.Article{
		{
			ID:    "c1",
			Title: "Segmentation <of> Cells & Tissues",
			Year:  2021,
			Authors: []types.Author{
				{FirstName: "Jane", LastName: "Doe"},
				{FirstName: "John", LastName: "Smith"},
			},
			Source:      "Nature Methods",
			Identifiers: map[string]string{"doi": "10.1000/abc123"},
			Link:        "https://www.mendeley.com/catalogue/c1/",
		},
		{
			Title:   "Protein Folding",
			Year:    2019,
			Authors: []types.Author{{FirstName: "Jane", LastName: "Doe"}},
			Link:    "https://www.mendeley.com/catalogue/c2/",
		},
		{
			Title:       "Untitled Preprint",
			Year:        2018,
			Authors:     []types.Author{{LastName: "Smith"}},
			Identifiers: map[string]string{},
			Link:        "https://www.mendeley.com/catalogue/c3/",
		},
	}
}

func TestReplaceLoad_RoundTrip(t *testing.T) {
	s := NewStore(filepath.Join(t.TempDir(), "nested", "cache"))
	assert.False(t, s.Exists())

	want := sampleArticles()
	require.NoError(t, s.Replace(want))
	assert.True(t, s.Exists())

	got, err := s.Load()
	require.NoError(t, err)
	assert.Equal(t, want, got)
	assert.Nil(t, got[1].Identifiers)
	assert.NotNil(t, got[2].Identifiers, "an empty identifier map survives the round trip")
}

func TestReplace_DoesNotEscapeHTML(t *testing.T) {
	s := NewStore(t.TempDir())
	require.NoError(t, s.Replace(sampleArticles()))

	data, err := os.ReadFile(s.Path())
	require.NoError(t, err)
	assert.Contains(t, string(data), "Segmentation <of> Cells & Tissues")
}

func TestReplace_OverwritesWholesale(t *testing.T) {
	s := NewStore(t.TempDir())
	require.NoError(t, s.Replace(sampleArticles()))
	require.NoError(t, s.Replace(sampleArticles()[1:2]))

	got, err := s.Load()
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Protein Folding", got[0].Title)

	entries, err := os.ReadDir(filepath.Dir(s.Path()))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temporary files are left behind")
}

func TestReplace_EmptyCollection(t *testing.T) {
	s := NewStore(t.TempDir())
	require.NoError(t, s.Replace(nil))

	got, err := s.Load()
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestLoad_Errors(t *testing.T) {
	s := NewStore(t.TempDir())

	_, err := s.Load()
	assert.True(t, errors.Is(err, os.ErrNotExist))

	for _, content := range []string{"", "  \n", "{not json", `{"title":"object not array"}`} {
		require.NoError(t, os.WriteFile(s.Path(), []byte(content), 0o644))
		_, err := s.Load()
		assert.ErrorIs(t, err, ErrCorrupt, "content %q", content)
	}
}

func TestClear(t *testing.T) {
	s := NewStore(t.TempDir())
	require.NoError(t, s.Clear(), "clearing an absent cache")

	require.NoError(t, s.Replace(sampleArticles()))
	require.NoError(t, s.Clear())
	assert.False(t, s.Exists())
	require.NoError(t, s.Clear())
}

func TestNeedsRefresh(t *testing.T) {
	s := NewStore(t.TempDir())
	now := time.Now()
	assert.True(t, s.NeedsRefresh(now, time.Hour), "missing cache")

	require.NoError(t, s.Replace(sampleArticles()))
	mod, ok := s.LastModified()
	require.True(t, ok)

	assert.False(t, s.NeedsRefresh(mod.Add(30*time.Minute), time.Hour))
	assert.True(t, s.NeedsRefresh(mod.Add(time.Hour), time.Hour))
	assert.False(t, s.NeedsRefresh(mod.Add(1000*time.Hour), 0))
}

func TestExport(t *testing.T) {
	articles := sampleArticles()

	t.Run("json", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, Export(&buf, articles, FormatJSON))

		var entries []ExportEntry
		require.NoError(t, json.Unmarshal(buf.Bytes(), &entries))
		require.Len(t, entries, len(articles))
		assert.Equal(t, []string{"Jane Doe", "John Smith"}, entries[0].Authors)
		assert.Equal(t, "10.1000/abc123", entries[0].DOI)
		assert.Empty(t, entries[1].DOI)
	})

	t.Run("yaml", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, Export(&buf, articles, FormatYAML))

		var entries []ExportEntry
		require.NoError(t, yaml.Unmarshal(buf.Bytes(), &entries))
		require.Len(t, entries, len(articles))
		assert.Equal(t, 2019, entries[1].Year)
		assert.Contains(t, buf.String(), "title: Protein Folding")
	})

	t.Run("unknown format", func(t *testing.T) {
		err := Export(&bytes.Buffer{}, articles, "csv")
		assert.ErrorContains(t, err, "unknown export format")
	})
}
