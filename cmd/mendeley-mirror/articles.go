// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/mendeley-mirror/internal/query"
	"github.com/pdiddy/mendeley-mirror/pkg/types"
)

var articlesCmd = &cobra.Command{
	Use:   "articles",
	Short: "Query the cached catalogue",
	Long: `Articles renders one page of the cached catalogue, filtered by author,
search term and publication year range. The cache is built first when it is
missing or unreadable.

Without --select every configured author is included. Passing --select with
an empty value selects no authors and yields an empty page.`,
	RunE: runArticles,
}

func init() {
	articlesCmd.Flags().StringSlice("select", nil, "authors to include (repeatable or comma-separated)")
	articlesCmd.Flags().StringP("search", "s", "", "case-insensitive title search term")
	articlesCmd.Flags().Int("start-year", 0, "earliest publication year (default 1970)")
	articlesCmd.Flags().Int("end-year", 0, "latest publication year (default current year)")
	articlesCmd.Flags().IntP("page", "p", 1, "page number, starting at 1")
	articlesCmd.Flags().Int("page-size", 0, "articles per page (default catalogue.page_size)")
	articlesCmd.Flags().StringP("format", "f", "table", "output format: table, json, or yaml")
	rootCmd.AddCommand(articlesCmd)
}

func runArticles(cmd *cobra.Command, args []string) error {
	f := filtersFromFlags(cmd)
	format, _ := cmd.Flags().GetString("format")

	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	view, err := a.mirror.Catalogue(context.Background(), f)
	if err != nil {
		return err
	}
	return formatView(view, format)
}

func filtersFromFlags(cmd *cobra.Command) query.Filters {
	var f query.Filters
	if cmd.Flags().Changed("select") {
		selected, _ := cmd.Flags().GetStringSlice("select")
		f.Authors = []string{}
		for _, s := range selected {
			f.Authors = append(f.Authors, types.ParseAuthors(s)...)
		}
	}
	f.Term, _ = cmd.Flags().GetString("search")
	f.StartYear, _ = cmd.Flags().GetInt("start-year")
	f.EndYear, _ = cmd.Flags().GetInt("end-year")
	f.Page, _ = cmd.Flags().GetInt("page")
	f.PageSize, _ = cmd.Flags().GetInt("page-size")
	return f
}

func formatView(view query.View, format string) error {
	switch format {
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		enc.SetEscapeHTML(false)
		return enc.Encode(view)
	case "yaml":
		enc := yaml.NewEncoder(os.Stdout)
		enc.SetIndent(2)
		if err := enc.Encode(view); err != nil {
			return err
		}
		return enc.Close()
	case "table", "":
	default:
		return fmt.Errorf("unsupported format %q: use table, json, or yaml", format)
	}

	if len(view.Articles) == 0 {
		fmt.Println("No articles found.")
	} else {
		fmt.Fprintf(os.Stdout, "%-4s  %-60s  %-30s  %s\n", "Year", "Title", "Authors", "Source")
		fmt.Fprintln(os.Stdout, strings.Repeat("-", 120))
		for _, art := range view.Articles {
			names := make([]string, len(art.Authors))
			for i, au := range art.Authors {
				names[i] = au.DisplayName()
			}
			fmt.Fprintf(os.Stdout, "%-4d  %-60s  %-30s  %s\n",
				art.Year, truncate(art.Title, 60), truncate(strings.Join(names, ", "), 30), truncate(art.Source, 25))
		}
	}

	fmt.Fprintf(os.Stdout, "\nPage %d of %d (%d articles, %d per page, years %d-%d)\n",
		view.Page, max(view.TotalPages, 1), view.Total, view.PageSize, view.StartYear, view.EndYear)

	fmt.Fprintf(os.Stdout, "\n%-3s  %-30s  %s\n", "Sel", "Author", "Articles")
	for _, au := range view.Authors {
		mark := " "
		if au.Selected {
			mark = "*"
		}
		fmt.Fprintf(os.Stdout, "%-3s  %-30s  %d\n", mark, truncate(au.Name, 30), au.ArticleCount)
	}
	return nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
