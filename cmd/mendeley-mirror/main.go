// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the mendeley-mirror CLI.
package main

import (
	"errors"
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/mendeley-mirror/internal/config"
	"github.com/pdiddy/mendeley-mirror/internal/secrets"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds credentials loaded from .secrets/ at startup.
var loadedSecrets map[string]string

// rootCmd is the base command for the mendeley-mirror CLI.
var rootCmd = &cobra.Command{
	Use:   "mendeley-mirror",
	Short: "Mirror Mendeley catalogue records for a fixed set of authors",
	Long: `mendeley-mirror keeps a local cache of every Mendeley catalogue record
published by a configured list of authors and serves filtered, paginated
views over it.

The cache is built by crawling the catalogue search one publication year at
a time. Use refresh to rebuild it, clear to drop it, articles to query it,
and serve to expose the same actions over HTTP with optional schedules.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		s, err := secrets.Load(secrets.DefaultDir)
		if err != nil {
			return err
		}
		loadedSecrets = s
		if len(s) > 0 {
			keys := make([]string, 0, len(s))
			for k := range s {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			fmt.Fprintf(os.Stderr, "Loaded secrets: %v\n", keys)
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./mendeley-mirror.yaml or $XDG_CONFIG_HOME/mendeley-mirror/mendeley-mirror.yaml)")
	rootCmd.PersistentFlags().String("authors", "", "comma-separated author list (overrides catalogue.authors)")
	rootCmd.PersistentFlags().String("cache-dir", "", "directory holding articles.json (overrides cache.dir)")
	rootCmd.PersistentFlags().String("log-level", "", "log level: trace, debug, info, warn, error")

	_ = viper.BindPFlag("catalogue.authors", rootCmd.PersistentFlags().Lookup("authors"))
	_ = viper.BindPFlag("cache.dir", rootCmd.PersistentFlags().Lookup("cache-dir"))
	_ = viper.BindPFlag("logging.level", rootCmd.PersistentFlags().Lookup("log-level"))
}

func initConfig() {
	v := viper.GetViper()
	config.SetDefaults(v, version)
	config.BindEnv(v)

	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		config.AddConfigPaths(v)
	}

	if err := v.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", v.ConfigFileUsed())
	} else {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			fmt.Fprintln(os.Stderr, "warning: reading config:", err)
		}
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
