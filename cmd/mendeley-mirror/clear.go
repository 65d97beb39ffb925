// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete the article cache",
	Long: `Clear removes articles.json. The next query rebuilds it from the
catalogue. Clearing a missing cache is not an error.`,
	RunE: runClear,
}

func init() {
	rootCmd.AddCommand(clearCmd)
}

func runClear(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.mirror.Clear(); err != nil {
		return err
	}
	fmt.Fprintln(os.Stdout, "Article cache cleared.")
	return nil
}
