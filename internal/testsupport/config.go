package testsupport

import (
	"path/filepath"
	"testing"

	"talentd/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.DataDir = filepath.Join(base, "data")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Paths.APIBind = "127.0.0.1:0"

	for _, opt := range opts {
		opt(&cfg)
	}

	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("ensure directories: %v", err)
	}
	return &cfg
}

// WithQueueCapacity overrides the notification queue capacity.
func WithQueueCapacity(capacity int) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Notifications.QueueCapacity = capacity
	}
}

// WithToken adds a bearer token identity to the auth table.
func WithToken(token string, userID int64, email, role string, companyID int64) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Auth.Tokens = append(cfg.Auth.Tokens, config.TokenIdentity{
			Token:     token,
			UserID:    userID,
			Email:     email,
			Role:      role,
			CompanyID: companyID,
		})
	}
}

// WithGateway points outbound notifications at the given URL.
func WithGateway(url string) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Notifications.GatewayURL = url
	}
}
