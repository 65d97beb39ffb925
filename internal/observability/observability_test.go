// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package observability

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/mendeley-mirror/pkg/types"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]zerolog.Level{
		"debug":   zerolog.DebugLevel,
		"INFO":    zerolog.InfoLevel,
		"warning": zerolog.WarnLevel,
		"error":   zerolog.ErrorLevel,
		"off":     zerolog.Disabled,
		"bogus":   zerolog.InfoLevel,
		"":        zerolog.InfoLevel,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseLevel(in), "level %q", in)
	}
}

func TestNewLogger_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger := Component(NewLogger(types.LoggingConfig{Level: "info", Format: "json"}, &buf), "retrieve")

	logger.Debug().Msg("hidden")
	logger.Info().Str("author", "Jane Doe").Msg("crawled")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "crawled", entry["message"])
	assert.Equal(t, "retrieve", entry["component"])
	assert.Equal(t, "Jane Doe", entry["author"])
}

func TestNewMetrics_PrivateRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	m.TokenRefreshes.WithLabelValues("success").Inc()
	m.CachedArticles.Set(42)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.TokenRefreshes.WithLabelValues("success")))
	assert.Equal(t, 42.0, testutil.ToFloat64(m.CachedArticles))

	// A second set on its own registry must not collide.
	assert.NotPanics(t, func() { NopMetrics() })
}
