// Package config loads, validates, and hot-reloads the daemon configuration
// from a JSON or YAML file.
package config

import (
	"fmt"
	"strings"
)

// Config is the full daemon configuration. Unknown fields are rejected on
// load so typos fail loudly instead of silently using defaults.
type Config struct {
	Logging       Logging       `json:"logging"`
	Storage       Storage       `json:"storage"`
	Notifications Notifications `json:"notifications"`
	Permissions   Permissions   `json:"permissions"`
	Telegram      Telegram      `json:"telegram"`
	Export        Export        `json:"export"`
}

type Logging struct {
	Level   string `json:"level"`
	Console bool   `json:"console"`
	File    struct {
		Enabled bool   `json:"enabled"`
		Path    string `json:"path"`
	} `json:"file"`
}

type Storage struct {
	Driver        string `json:"driver"` // "file", "sqlite", or "none"
	Path          string `json:"path"`
	BusyTimeoutMS int    `json:"busy_timeout_ms"`
}

type Notifications struct {
	Timezone   string `json:"timezone"`
	QueueSize  int    `json:"queue_size"`
	RatePerSec int    `json:"rate_per_sec"`
}

type Permissions struct {
	AutoGrant bool `json:"auto_grant"`
}

type Telegram struct {
	Enabled       bool   `json:"enabled"`
	Token         string `json:"token"`
	ChatID        int64  `json:"chat_id"`
	PollTimeoutMS int    `json:"poll_timeout_ms"`
}

type Export struct {
	Enabled bool   `json:"enabled"`
	Path    string `json:"path"`
}

// Default returns the configuration used when fields are left unset.
func Default() Config {
	var cfg Config
	cfg.Logging.Level = "info"
	cfg.Logging.Console = true
	cfg.Storage.Driver = "file"
	cfg.Storage.Path = "./data"
	cfg.Notifications.QueueSize = 64
	cfg.Notifications.RatePerSec = 1
	return cfg
}

// applyDefaults fills unset fields in place after a strict decode.
func (c *Config) applyDefaults() {
	def := Default()
	if strings.TrimSpace(c.Logging.Level) == "" {
		c.Logging.Level = def.Logging.Level
	}
	if strings.TrimSpace(c.Storage.Driver) == "" {
		c.Storage.Driver = def.Storage.Driver
	}
	if strings.TrimSpace(c.Storage.Path) == "" && c.Storage.Driver != "none" {
		c.Storage.Path = def.Storage.Path
	}
	if c.Notifications.QueueSize <= 0 {
		c.Notifications.QueueSize = def.Notifications.QueueSize
	}
	if c.Notifications.RatePerSec <= 0 {
		c.Notifications.RatePerSec = def.Notifications.RatePerSec
	}
}

// Validate rejects configurations that cannot be acted on.
func (c *Config) Validate() error {
	switch strings.ToLower(strings.TrimSpace(c.Storage.Driver)) {
	case "", "none", "file", "sqlite", "sqlite3":
	default:
		return fmt.Errorf("storage.driver %q unknown", c.Storage.Driver)
	}
	if c.Telegram.Enabled {
		if strings.TrimSpace(c.Telegram.Token) == "" {
			return fmt.Errorf("telegram.token required when telegram.enabled")
		}
		if c.Telegram.ChatID == 0 {
			return fmt.Errorf("telegram.chat_id required when telegram.enabled")
		}
	}
	if c.Export.Enabled && strings.TrimSpace(c.Export.Path) == "" {
		return fmt.Errorf("export.path required when export.enabled")
	}
	return nil
}
