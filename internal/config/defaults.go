package config

const (
	defaultDataDir = "~/.local/share/talentd"
	defaultLogDir  = "~/.local/share/talentd/logs"
	defaultAPIBind = "127.0.0.1:8471"

	defaultRequestTimeout  = 10
	defaultQueueCapacity   = 256
	defaultPollInterval    = 3
	defaultSendTimeout     = 10
	defaultMaxAttempts     = 3
	defaultRetryBackoff    = 2
	defaultRetryBackoffMax = 30

	defaultLogFormat = "console"
	defaultLogLevel  = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir: defaultDataDir,
			LogDir:  defaultLogDir,
			APIBind: defaultAPIBind,
		},
		Notifications: Notifications{
			RequestTimeout: defaultRequestTimeout,
			QueueCapacity:  defaultQueueCapacity,
		},
		Worker: Worker{
			PollInterval:    defaultPollInterval,
			SendTimeout:     defaultSendTimeout,
			MaxAttempts:     defaultMaxAttempts,
			RetryBackoff:    defaultRetryBackoff,
			RetryBackoffMax: defaultRetryBackoffMax,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
