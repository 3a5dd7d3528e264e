/*
Package configs is responsible for loading and parsing the application's configuration settings.

Configuration lives in a TOML file whose path is given on the command line. It covers
the chat listener address, the admin HTTP server, logging, the user directory path,
and connection admission limits.
*/
package configs

import (
	"fmt"

	"github.com/BurntSushi/toml"
)

// ServerConfig holds the chat listener settings.
type ServerConfig struct {
	// Addr is the interface the TCP listener binds to.
	Addr string `toml:"addr"`

	// Port is the TCP listener port.
	Port int `toml:"port"`
}

// AdminConfig holds the admin HTTP server settings.
type AdminConfig struct {
	// Start toggles the admin server entirely.
	Start bool `toml:"start"`

	// Addr is the admin HTTP listen address, host:port.
	Addr string `toml:"addr"`

	// AllowedOrigins lists browser origins permitted by CORS and the WebSocket
	// bridge. Empty means same-origin only outside development.
	AllowedOrigins []string `toml:"allowed_origins"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	// Development switches to colored console output at Debug level.
	Development bool `toml:"development"`

	// File, when set, duplicates log output to this path in JSON format.
	File string `toml:"file"`
}

// LimitsConfig holds connection admission and queue limits.
type LimitsConfig struct {
	// AcceptRate is the sustained connections-per-second allowed per client IP.
	AcceptRate float64 `toml:"accept_rate"`

	// AcceptBurst is the connection burst allowed per client IP.
	AcceptBurst int `toml:"accept_burst"`

	// MailboxCapacity bounds each session's pending-delivery queue.
	MailboxCapacity int `toml:"mailbox_capacity"`

	// WsConnectRate is the sustained WebSocket bridge connections-per-second
	// allowed per client IP.
	WsConnectRate float64 `toml:"ws_connect_rate"`

	// WsConnectBurst is the WebSocket bridge connection burst allowed per client IP.
	WsConnectBurst int `toml:"ws_connect_burst"`
}

// AppConfig contains all configuration parameters required for the server to run.
type AppConfig struct {
	Server ServerConfig `toml:"server"`
	Admin  AdminConfig  `toml:"admin"`
	Log    LogConfig    `toml:"log"`
	Limits LimitsConfig `toml:"limits"`

	// DirectoryPath is the JSON user directory file consulted at login.
	DirectoryPath string `toml:"directory_path"`
}

// defaults returns the configuration used for any field the file leaves unset.
func defaults() AppConfig {
	return AppConfig{
		Server: ServerConfig{
			Addr: "0.0.0.0",
			Port: 7878,
		},
		Admin: AdminConfig{
			Start: true,
			Addr:  "127.0.0.1:8080",
		},
		Log: LogConfig{
			Development: true,
		},
		Limits: LimitsConfig{
			AcceptRate:      1,
			AcceptBurst:     5,
			MailboxCapacity: 256,
			WsConnectRate:   0.2,
			WsConnectBurst:  5,
		},
		DirectoryPath: "users.json",
	}
}

// LoadConfig reads and validates the configuration file at path.
func LoadConfig(path string) (*AppConfig, error) {
	cfg := defaults()

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	if cfg.Server.Port < 1 || cfg.Server.Port > 65535 {
		return nil, fmt.Errorf("server port %d is outside the valid range (1-65535)", cfg.Server.Port)
	}

	if cfg.Limits.AcceptRate <= 0 {
		return nil, fmt.Errorf("limits.accept_rate must be positive, got %v", cfg.Limits.AcceptRate)
	}

	if cfg.Limits.AcceptBurst < 1 {
		return nil, fmt.Errorf("limits.accept_burst must be at least 1, got %d", cfg.Limits.AcceptBurst)
	}

	if cfg.Limits.MailboxCapacity < 1 {
		return nil, fmt.Errorf("limits.mailbox_capacity must be at least 1, got %d", cfg.Limits.MailboxCapacity)
	}

	if cfg.Limits.WsConnectRate <= 0 {
		return nil, fmt.Errorf("limits.ws_connect_rate must be positive, got %v", cfg.Limits.WsConnectRate)
	}

	if cfg.Limits.WsConnectBurst < 1 {
		return nil, fmt.Errorf("limits.ws_connect_burst must be at least 1, got %d", cfg.Limits.WsConnectBurst)
	}

	if cfg.Admin.Start && cfg.Admin.Addr == "" {
		return nil, fmt.Errorf("admin.addr is required when the admin server is enabled")
	}

	if cfg.DirectoryPath == "" {
		return nil, fmt.Errorf("directory_path is required")
	}

	return &cfg, nil
}

// ListenAddr returns the chat listener address in host:port form.
func (c *AppConfig) ListenAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.Addr, c.Server.Port)
}
