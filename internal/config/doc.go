// Package config loads and validates talentd configuration.
//
// Configuration lives in a TOML file (default ~/.config/talentd/config.toml)
// and is split into sections per subsystem: paths and bind address, API
// identity tokens, mail-gateway notification settings, worker timing, and
// logging. Load applies defaults, expands paths, pulls secret fallbacks from
// the environment, and validates the result so the rest of the system can
// treat the Config value as trusted.
package config
