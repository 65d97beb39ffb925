// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package cache

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/mendeley-mirror/pkg/types"
)

// ExportEntry is the flattened form of an article used by exports.
type ExportEntry struct {
	Title   string   `json:"title" yaml:"title"`
	Year    int      `json:"year" yaml:"year"`
	Authors []string `json:"authors" yaml:"authors"`
	Source  string   `json:"source,omitempty" yaml:"source,omitempty"`
	DOI     string   `json:"doi,omitempty" yaml:"doi,omitempty"`
	Link    string   `json:"link" yaml:"link"`
}

// Export formats.
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// ExportEntries flattens articles for export, keeping their order.
func ExportEntries(articles []types.Article) []ExportEntry {
	entries := make([]ExportEntry, len(articles))
	for i, a := range articles {
		names := make([]string, len(a.Authors))
		for j, au := range a.Authors {
			names[j] = au.DisplayName()
		}
		entries[i] = ExportEntry{
			Title:   a.Title,
			Year:    a.Year,
			Authors: names,
			Source:  a.Source,
			DOI:     a.DOI(),
			Link:    a.Link,
		}
	}
	return entries
}

// Export writes articles to w in the given format ("json" or "yaml").
func Export(w io.Writer, articles []types.Article, format string) error {
	entries := ExportEntries(articles)
	switch strings.ToLower(format) {
	case FormatYAML, "yml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(entries); err != nil {
			return fmt.Errorf("marshaling YAML: %w", err)
		}
		return enc.Close()
	case FormatJSON, "":
		enc := json.NewEncoder(w)
		enc.SetEscapeHTML(false)
		enc.SetIndent("", "  ")
		if err := enc.Encode(entries); err != nil {
			return fmt.Errorf("marshaling JSON: %w", err)
		}
		return nil
	default:
		return fmt.Errorf("unknown export format %q (want json or yaml)", format)
	}
}
