// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show cache and access token state",
	Long: `Status reports where the article cache lives, when it was written, how
many articles it holds, and whether a stored access token is present. It
never contacts the Mendeley API.`,
	RunE: runStatus,
}

func init() {
	statusCmd.Flags().Bool("json", false, "output in JSON format")
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	st, err := a.mirror.Status(context.Background())
	if err != nil {
		return err
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(st)
	}

	fmt.Fprintf(os.Stdout, "Cache:    %s\n", st.CachePath)
	switch {
	case !st.CacheExists:
		fmt.Fprintln(os.Stdout, "  state:  missing")
	case st.CacheCorrupt:
		fmt.Fprintln(os.Stdout, "  state:  corrupt (next query rebuilds it)")
	default:
		fmt.Fprintf(os.Stdout, "  state:  %d articles, %d-%d\n", st.Articles, st.OldestYear, st.NewestYear)
	}
	if !st.LastModified.IsZero() {
		fmt.Fprintf(os.Stdout, "  written: %s (%s ago)\n",
			st.LastModified.Format(time.RFC3339), time.Since(st.LastModified).Round(time.Second))
	}

	fmt.Fprintln(os.Stdout, "Token:")
	if !st.TokenPresent {
		fmt.Fprintln(os.Stdout, "  none stored")
		return nil
	}
	state := "valid"
	if !time.Now().Before(st.TokenExpiresAt) {
		state = "expired"
	}
	fmt.Fprintf(os.Stdout, "  %s, expires %s\n", state, st.TokenExpiresAt.Format(time.RFC3339))
	return nil
}
