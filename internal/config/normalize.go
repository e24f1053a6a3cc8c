package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeAuth()
	c.normalizeNotifications()
	c.normalizeWorker()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		c.Paths.DataDir = defaultDataDir
	}
	if c.Paths.DataDir, err = ExpandPath(c.Paths.DataDir); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = ExpandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	c.Paths.APIBind = strings.TrimSpace(c.Paths.APIBind)
	if c.Paths.APIBind == "" {
		c.Paths.APIBind = defaultAPIBind
	}
	return nil
}

func (c *Config) normalizeAuth() {
	for i := range c.Auth.Tokens {
		token := &c.Auth.Tokens[i]
		token.Token = strings.TrimSpace(token.Token)
		token.Email = strings.TrimSpace(token.Email)
		token.Role = strings.ToUpper(strings.TrimSpace(token.Role))
	}
}

func (c *Config) normalizeNotifications() {
	c.Notifications.GatewayURL = strings.TrimSpace(c.Notifications.GatewayURL)
	c.Notifications.FromAddress = strings.TrimSpace(c.Notifications.FromAddress)
	if c.Notifications.AuthToken == "" {
		if value, ok := os.LookupEnv("TALENTD_GATEWAY_TOKEN"); ok {
			c.Notifications.AuthToken = value
		}
	}
	if c.Notifications.RequestTimeout <= 0 {
		c.Notifications.RequestTimeout = defaultRequestTimeout
	}
	if c.Notifications.QueueCapacity <= 0 {
		c.Notifications.QueueCapacity = defaultQueueCapacity
	}
}

func (c *Config) normalizeWorker() {
	if c.Worker.PollInterval <= 0 {
		c.Worker.PollInterval = defaultPollInterval
	}
	if c.Worker.SendTimeout <= 0 {
		c.Worker.SendTimeout = defaultSendTimeout
	}
	if c.Worker.MaxAttempts <= 0 {
		c.Worker.MaxAttempts = defaultMaxAttempts
	}
	if c.Worker.RetryBackoff <= 0 {
		c.Worker.RetryBackoff = defaultRetryBackoff
	}
	if c.Worker.RetryBackoffMax <= 0 {
		c.Worker.RetryBackoffMax = defaultRetryBackoffMax
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
