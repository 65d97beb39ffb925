// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"strings"
	"time"
)

// HTTPConfig holds the HTTP settings used for upstream requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout. Zero leaves the http.Client default.
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "mendeley-mirror/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent" mapstructure:"user_agent"`
}

// MendeleyConfig holds the upstream API credentials and request settings.
type MendeleyConfig struct {
	HTTPConfig `yaml:",inline" mapstructure:",squash"`

	// ApplicationID and ApplicationSecret are the client credentials of the
	// registered Mendeley application.
	ApplicationID     string `json:"application_id,omitempty" yaml:"application_id,omitempty" mapstructure:"application_id"`
	ApplicationSecret string `json:"application_secret,omitempty" yaml:"application_secret,omitempty" mapstructure:"application_secret"`

	// BaseURL is the API root (default https://api.mendeley.com).
	BaseURL string `json:"base_url" yaml:"base_url" mapstructure:"base_url"`

	// RateLimit caps upstream requests per second. Zero disables pacing.
	RateLimit float64 `json:"rate_limit" yaml:"rate_limit" mapstructure:"rate_limit"`

	// PageLimit is the number of records requested per catalogue search (default 100).
	PageLimit int `json:"page_limit" yaml:"page_limit" mapstructure:"page_limit"`
}

// HasCredentials reports whether both application ID and secret are set.
func (c MendeleyConfig) HasCredentials() bool {
	return c.ApplicationID != "" && c.ApplicationSecret != ""
}

// CatalogueConfig scopes the mirrored catalogue and its default views.
type CatalogueConfig struct {
	// Authors is the comma-separated list of author names to mirror.
	Authors string `json:"authors" yaml:"authors" mapstructure:"authors"`

	// BlankYearTolerance is the number of consecutive years without results
	// that ends an author's crawl (default 2).
	BlankYearTolerance int `json:"blank_year_tolerance" yaml:"blank_year_tolerance" mapstructure:"blank_year_tolerance"`

	// PageSize is the default number of articles per page (default 15).
	PageSize int `json:"page_size" yaml:"page_size" mapstructure:"page_size"`
}

// AuthorList parses Authors into the configured author list: split on
// commas, each entry trimmed, order preserved. An empty setting yields an
// empty list.
func (c CatalogueConfig) AuthorList() []string {
	return ParseAuthors(c.Authors)
}

// ParseAuthors splits a comma-separated author setting. Entries are trimmed
// of surrounding whitespace and empty entries are dropped.
func ParseAuthors(serialized string) []string {
	var authors []string
	for _, part := range strings.Split(serialized, ",") {
		name := strings.TrimSpace(part)
		if name != "" {
			authors = append(authors, name)
		}
	}
	return authors
}

// CacheConfig locates the article cache and controls scheduled refreshes.
type CacheConfig struct {
	// Dir is the directory holding articles.json.
	Dir string `json:"dir" yaml:"dir" mapstructure:"dir"`

	// AutoRefresh enables the scheduled cache rebuild in serve mode.
	AutoRefresh bool `json:"auto_refresh" yaml:"auto_refresh" mapstructure:"auto_refresh"`

	// RefreshInterval is the maximum cache age before a scheduled rebuild (default 720h).
	RefreshInterval time.Duration `json:"refresh_interval" yaml:"refresh_interval" mapstructure:"refresh_interval"`
}

// TokenConfig controls scheduled access token renewal in serve mode.
type TokenConfig struct {
	AutoRefresh     bool          `json:"auto_refresh" yaml:"auto_refresh" mapstructure:"auto_refresh"`
	RefreshInterval time.Duration `json:"refresh_interval" yaml:"refresh_interval" mapstructure:"refresh_interval"`
}

// SettingsConfig locates the persistent key-value settings store.
type SettingsConfig struct {
	// Path is the SQLite database file. Empty keeps settings in memory.
	Path string `json:"path" yaml:"path" mapstructure:"path"`
}

// ServerConfig holds the HTTP trigger surface settings.
type ServerConfig struct {
	Address string `json:"address" yaml:"address" mapstructure:"address"`
}

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	// Level is the minimum log level (debug, info, warn, error).
	Level string `json:"level" yaml:"level" mapstructure:"level"`

	// Format is json or console.
	Format string `json:"format" yaml:"format" mapstructure:"format"`
}

// Config groups every setting of a mirror. It is built once at startup and
// passed explicitly to the components that need it.
type Config struct {
	Mendeley  MendeleyConfig  `json:"mendeley" yaml:"mendeley" mapstructure:"mendeley"`
	Catalogue CatalogueConfig `json:"catalogue" yaml:"catalogue" mapstructure:"catalogue"`
	Cache     CacheConfig     `json:"cache" yaml:"cache" mapstructure:"cache"`
	Token     TokenConfig     `json:"token" yaml:"token" mapstructure:"token"`
	Settings  SettingsConfig  `json:"settings" yaml:"settings" mapstructure:"settings"`
	Server    ServerConfig    `json:"server" yaml:"server" mapstructure:"server"`
	Logging   LoggingConfig   `json:"logging" yaml:"logging" mapstructure:"logging"`
}
