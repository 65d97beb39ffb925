// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/mendeley-mirror/internal/cache"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the cached catalogue to JSON or YAML",
	Long: `Export writes every cached article as a flat record (title, year,
author names, source, DOI, link) to stdout or to the file named by --out.
The cache is built first when it is missing.`,
	RunE: runExport,
}

func init() {
	exportCmd.Flags().StringP("format", "f", cache.FormatJSON, "export format: json or yaml")
	exportCmd.Flags().StringP("out", "O", "", "output file (default stdout)")
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")
	out, _ := cmd.Flags().GetString("out")

	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	var w io.Writer = os.Stdout
	if out != "" {
		f, err := os.Create(out)
		if err != nil {
			return fmt.Errorf("creating %s: %w", out, err)
		}
		defer f.Close()
		w = f
	}

	n, err := a.mirror.Export(context.Background(), w, format)
	if err != nil {
		return err
	}
	if out != "" {
		fmt.Fprintf(os.Stderr, "Exported %d articles to %s\n", n, out)
	}
	return nil
}
