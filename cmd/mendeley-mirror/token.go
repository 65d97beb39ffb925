// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Generate a new Mendeley access token",
	Long: `Token exchanges the application credentials for a fresh access token
and stores it with its expiry in the settings database, replacing any
previous token. With --forget the stored token is deleted instead.`,
	RunE: runToken,
}

func init() {
	tokenCmd.Flags().Bool("forget", false, "delete the stored access token")
	rootCmd.AddCommand(tokenCmd)
}

func runToken(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	ctx := context.Background()

	forget, _ := cmd.Flags().GetBool("forget")
	if forget {
		if err := a.tokens.Forget(ctx); err != nil {
			return err
		}
		fmt.Fprintln(os.Stdout, "Stored access token deleted.")
		return nil
	}

	tok, err := a.mirror.RefreshToken(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "Access token generated, expires %s\n", tok.ExpiresAt.Format(time.RFC3339))
	return nil
}
