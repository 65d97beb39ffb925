// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package config builds the typed mirror configuration from viper: defaults,
// an optional YAML file, MENDELEY_MIRROR_* environment variables and the
// .secrets/ credential files.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/spf13/viper"

	"github.com/pdiddy/mendeley-mirror/internal/secrets"
	"github.com/pdiddy/mendeley-mirror/pkg/types"
)

const (
	// AppName names the config file and the XDG directories.
	AppName = "mendeley-mirror"

	// EnvPrefix prefixes environment overrides, e.g. MENDELEY_MIRROR_CATALOGUE_AUTHORS.
	EnvPrefix = "MENDELEY_MIRROR"
)

// SetDefaults registers every configuration key with its default. Keys must
// be registered for environment overrides to reach Unmarshal.
func SetDefaults(v *viper.Viper, version string) {
	v.SetDefault("mendeley.application_id", "")
	v.SetDefault("mendeley.application_secret", "")
	v.SetDefault("mendeley.base_url", "https://api.mendeley.com")
	v.SetDefault("mendeley.timeout", "0s")
	v.SetDefault("mendeley.user_agent", AppName+"/"+version)
	v.SetDefault("mendeley.rate_limit", 0)
	v.SetDefault("mendeley.page_limit", 100)

	v.SetDefault("catalogue.authors", "")
	v.SetDefault("catalogue.blank_year_tolerance", 2)
	v.SetDefault("catalogue.page_size", 15)

	v.SetDefault("cache.dir", filepath.Join(xdg.DataHome, AppName))
	v.SetDefault("cache.auto_refresh", false)
	v.SetDefault("cache.refresh_interval", "720h")

	v.SetDefault("token.auto_refresh", false)
	v.SetDefault("token.refresh_interval", "1h")

	v.SetDefault("settings.path", "")

	v.SetDefault("server.address", ":8080")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
}

// BindEnv enables MENDELEY_MIRROR_* overrides with "." mapped to "_".
func BindEnv(v *viper.Viper) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
}

// AddConfigPaths looks for mendeley-mirror.yaml in the working directory and
// in $XDG_CONFIG_HOME/mendeley-mirror.
func AddConfigPaths(v *viper.Viper) {
	v.SetConfigName(AppName)
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath(filepath.Join(xdg.ConfigHome, AppName))
}

// Load unmarshals v, fills credentials missing from v with the secrets map,
// derives dependent defaults and validates the result.
func Load(v *viper.Viper, loaded map[string]string) (types.Config, error) {
	var cfg types.Config
	if err := v.Unmarshal(&cfg); err != nil {
		return types.Config{}, fmt.Errorf("unmarshaling config: %w", err)
	}

	ApplySecrets(&cfg, loaded)

	if cfg.Settings.Path == "" && cfg.Cache.Dir != "" {
		cfg.Settings.Path = filepath.Join(cfg.Cache.Dir, "settings.db")
	}

	if err := Validate(cfg); err != nil {
		return types.Config{}, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

// ApplySecrets fills the application ID and secret from the secrets
// directory when configuration and environment leave them empty.
func ApplySecrets(cfg *types.Config, loaded map[string]string) {
	if cfg.Mendeley.ApplicationID == "" {
		cfg.Mendeley.ApplicationID = loaded[secrets.ApplicationIDKey]
	}
	if cfg.Mendeley.ApplicationSecret == "" {
		cfg.Mendeley.ApplicationSecret = loaded[secrets.ApplicationSecretKey]
	}
}

var validLogLevels = map[string]bool{
	"trace": true, "debug": true, "info": true, "warn": true, "warning": true,
	"error": true, "disabled": true, "off": true,
}

// Validate checks cfg for values no component can run with. Missing
// credentials are not an error here; they surface when a token is needed.
func Validate(cfg types.Config) error {
	var errs []error

	u, err := url.Parse(cfg.Mendeley.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		errs = append(errs, fmt.Errorf("mendeley.base_url %q must be an absolute http(s) URL", cfg.Mendeley.BaseURL))
	}
	if cfg.Mendeley.PageLimit < 1 || cfg.Mendeley.PageLimit > 100 {
		errs = append(errs, fmt.Errorf("mendeley.page_limit must be between 1 and 100, got %d", cfg.Mendeley.PageLimit))
	}
	if cfg.Mendeley.RateLimit < 0 {
		errs = append(errs, fmt.Errorf("mendeley.rate_limit must not be negative"))
	}
	if cfg.Mendeley.Timeout < 0 {
		errs = append(errs, fmt.Errorf("mendeley.timeout must not be negative"))
	}

	if cfg.Catalogue.BlankYearTolerance < 1 {
		errs = append(errs, fmt.Errorf("catalogue.blank_year_tolerance must be at least 1, got %d", cfg.Catalogue.BlankYearTolerance))
	}
	if cfg.Catalogue.PageSize < 1 {
		errs = append(errs, fmt.Errorf("catalogue.page_size must be at least 1, got %d", cfg.Catalogue.PageSize))
	}

	if cfg.Cache.Dir == "" {
		errs = append(errs, errors.New("cache.dir is required"))
	}
	errs = append(errs, checkInterval("cache.refresh_interval", cfg.Cache.AutoRefresh, cfg.Cache.RefreshInterval))
	errs = append(errs, checkInterval("token.refresh_interval", cfg.Token.AutoRefresh, cfg.Token.RefreshInterval))

	if !validLogLevels[strings.ToLower(cfg.Logging.Level)] {
		errs = append(errs, fmt.Errorf("logging.level %q is not a known level", cfg.Logging.Level))
	}
	switch strings.ToLower(cfg.Logging.Format) {
	case "json", "console":
	default:
		errs = append(errs, fmt.Errorf("logging.format must be json or console, got %q", cfg.Logging.Format))
	}

	return errors.Join(errs...)
}

func checkInterval(key string, enabled bool, d time.Duration) error {
	if enabled && d <= 0 {
		return fmt.Errorf("%s must be positive when auto refresh is enabled", key)
	}
	return nil
}
