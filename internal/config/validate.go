package config

import (
	"errors"
	"fmt"
	"net/url"
)

var knownRoles = map[string]struct{}{
	"CANDIDATE":      {},
	"RECRUITER":      {},
	"HIRING_MANAGER": {},
}

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateAuth(); err != nil {
		return err
	}
	if err := c.validateNotifications(); err != nil {
		return err
	}
	if err := c.validateWorker(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateAuth() error {
	seen := make(map[string]struct{}, len(c.Auth.Tokens))
	for i, token := range c.Auth.Tokens {
		if token.Token == "" {
			return fmt.Errorf("auth.tokens[%d]: token must not be empty", i)
		}
		if _, dup := seen[token.Token]; dup {
			return fmt.Errorf("auth.tokens[%d]: duplicate token value", i)
		}
		seen[token.Token] = struct{}{}
		if token.UserID <= 0 {
			return fmt.Errorf("auth.tokens[%d]: user_id must be positive", i)
		}
		if _, ok := knownRoles[token.Role]; !ok {
			return fmt.Errorf("auth.tokens[%d]: unknown role %q (expected CANDIDATE, RECRUITER, or HIRING_MANAGER)", i, token.Role)
		}
	}
	return nil
}

func (c *Config) validateNotifications() error {
	if c.Notifications.GatewayURL != "" {
		parsed, err := url.Parse(c.Notifications.GatewayURL)
		if err != nil || parsed.Scheme == "" || parsed.Host == "" {
			return errors.New("notifications.gateway_url must be an absolute URL")
		}
	}
	return nil
}

func (c *Config) validateWorker() error {
	if c.Worker.RetryBackoffMax < c.Worker.RetryBackoff {
		return errors.New("worker.retry_backoff_max must be >= worker.retry_backoff")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	return nil
}
