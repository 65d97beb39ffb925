// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package mendeley

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/pdiddy/mendeley-mirror/internal/observability"
	"github.com/pdiddy/mendeley-mirror/internal/settings"
	"github.com/pdiddy/mendeley-mirror/pkg/types"
)

// Settings keys holding the persisted token.
const (
	SettingAccessToken          = "api_access_token"
	SettingAccessTokenExpiresAt = "api_access_token_expires_at"
)

// Exchanger trades application credentials for a token grant.
type Exchanger interface {
	ExchangeCredentials(ctx context.Context, applicationID, applicationSecret string) (TokenGrant, error)
}

// TokenManager owns the access token: it serves the current token while it
// is valid and exchanges credentials for a new one when it is absent or
// expired. Every new token is persisted to the settings store.
type TokenManager struct {
	// Now returns the current time. Tests replace it.
	Now func() time.Time

	exchanger Exchanger
	store     settings.Store
	appID     string
	appSecret string
	logger    zerolog.Logger
	metrics   *observability.Metrics

	mu      sync.Mutex
	current types.AccessToken
}

// NewTokenManager builds a manager for the credentials in cfg.
func NewTokenManager(ex Exchanger, store settings.Store, cfg types.MendeleyConfig, logger zerolog.Logger, metrics *observability.Metrics) *TokenManager {
	if metrics == nil {
		metrics = observability.NopMetrics()
	}
	return &TokenManager{
		Now:       time.Now,
		exchanger: ex,
		store:     store,
		appID:     cfg.ApplicationID,
		appSecret: cfg.ApplicationSecret,
		logger:    observability.Component(logger, "token"),
		metrics:   metrics,
	}
}

// Token returns a usable token, refreshing it when the in-memory and
// persisted tokens are both absent or expired.
func (m *TokenManager) Token(ctx context.Context) (types.AccessToken, error) {
	if m.appID == "" || m.appSecret == "" {
		return types.AccessToken{}, ErrCredentialsMissing
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.Now()
	if m.current.Valid(now) {
		return m.current, nil
	}

	stored, err := m.load(ctx)
	if err != nil {
		return types.AccessToken{}, err
	}
	if stored.Valid(now) {
		m.current = stored
		return stored, nil
	}

	return m.refreshLocked(ctx)
}

// Refresh exchanges the credentials for a new token unconditionally and
// persists it, replacing any prior token. Failures are returned as-is.
func (m *TokenManager) Refresh(ctx context.Context) (types.AccessToken, error) {
	if m.appID == "" || m.appSecret == "" {
		return types.AccessToken{}, ErrCredentialsMissing
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	return m.refreshLocked(ctx)
}

func (m *TokenManager) refreshLocked(ctx context.Context) (types.AccessToken, error) {
	grant, err := m.exchanger.ExchangeCredentials(ctx, m.appID, m.appSecret)
	if err != nil {
		m.metrics.TokenRefreshes.WithLabelValues("failure").Inc()
		return types.AccessToken{}, fmt.Errorf("refreshing access token: %w", err)
	}

	tok := types.AccessToken{
		Value:     grant.AccessToken,
		ExpiresAt: m.Now().Add(time.Duration(grant.ExpiresIn) * time.Second),
	}
	if err := m.save(ctx, tok); err != nil {
		m.metrics.TokenRefreshes.WithLabelValues("failure").Inc()
		return types.AccessToken{}, err
	}
	m.current = tok
	m.metrics.TokenRefreshes.WithLabelValues("success").Inc()

	m.logger.Info().Time("expires_at", tok.ExpiresAt).Msg("access token refreshed")
	return tok, nil
}

// Stored returns the persisted token without refreshing it. A missing
// token yields the zero AccessToken.
func (m *TokenManager) Stored(ctx context.Context) (types.AccessToken, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.load(ctx)
}

// Forget deletes the persisted token so the next Token call exchanges the
// credentials again.
func (m *TokenManager) Forget(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.current = types.AccessToken{}
	for _, key := range []string{SettingAccessToken, SettingAccessTokenExpiresAt} {
		if err := m.store.Delete(ctx, key); err != nil {
			return fmt.Errorf("deleting %s: %w", key, err)
		}
	}
	m.logger.Info().Msg("access token forgotten")
	return nil
}

func (m *TokenManager) load(ctx context.Context) (types.AccessToken, error) {
	value, ok, err := m.store.Get(ctx, SettingAccessToken)
	if err != nil || !ok {
		return types.AccessToken{}, err
	}
	raw, ok, err := m.store.Get(ctx, SettingAccessTokenExpiresAt)
	if err != nil || !ok {
		return types.AccessToken{}, err
	}
	unix, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		// An unreadable expiry is treated as expired.
		m.logger.Warn().Str("value", raw).Msg("ignoring malformed token expiry")
		return types.AccessToken{}, nil
	}
	return types.AccessToken{Value: value, ExpiresAt: time.Unix(unix, 0)}, nil
}

func (m *TokenManager) save(ctx context.Context, tok types.AccessToken) error {
	if err := m.store.Set(ctx, SettingAccessToken, tok.Value); err != nil {
		return fmt.Errorf("persisting access token: %w", err)
	}
	expires := strconv.FormatInt(tok.ExpiresAt.Unix(), 10)
	if err := m.store.Set(ctx, SettingAccessTokenExpiresAt, expires); err != nil {
		return fmt.Errorf("persisting access token expiry: %w", err)
	}
	return nil
}
