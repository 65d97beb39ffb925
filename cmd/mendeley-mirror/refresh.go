// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var refreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Rebuild the article cache from the Mendeley catalogue",
	Long: `Refresh crawls the catalogue for every configured author, newest year
first, and replaces articles.json with the combined result. The existing
cache is left untouched when any request fails.

With --if-stale the crawl only runs when the cache is missing or older than
cache.refresh_interval.`,
	RunE: runRefresh,
}

func init() {
	refreshCmd.Flags().Bool("if-stale", false, "only refresh when the cache is missing or older than cache.refresh_interval")
	rootCmd.AddCommand(refreshCmd)
}

func runRefresh(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	ctx := context.Background()

	ifStale, _ := cmd.Flags().GetBool("if-stale")
	if ifStale {
		refreshed, err := a.mirror.RefreshIfStale(ctx, a.cfg.Cache.RefreshInterval)
		if err != nil {
			return err
		}
		if !refreshed {
			fmt.Fprintln(os.Stdout, "Cache is fresh; nothing to do.")
		} else {
			fmt.Fprintln(os.Stdout, "Cache refreshed.")
		}
		return nil
	}

	articles, err := a.mirror.Refresh(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "Cached %d articles for %d authors\n", len(articles), len(a.cfg.Catalogue.AuthorList()))
	return nil
}
