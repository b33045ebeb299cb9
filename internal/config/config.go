// Package config holds server and CLI configuration. Values are layered:
// defaults, then an optional JSONC file, then BUSDESK_* environment
// variables (a .env file is honored), then command-line flags.
package config

import "time"

// ExportConfig configures the object store that CSV exports are uploaded to.
type ExportConfig struct {
	Bucket   string `json:"bucket,omitempty"`
	Prefix   string `json:"prefix,omitempty"`
	Region   string `json:"region,omitempty"`
	Endpoint string `json:"endpoint,omitempty"` // S3-compatible endpoint; empty means AWS
}

// Enabled reports whether exports should be uploaded.
func (e ExportConfig) Enabled() bool { return e.Bucket != "" }

// ServerConfig holds configuration for the busdesk server.
type ServerConfig struct {
	Addr      string        // Listen address (default ":8080")
	LogLevel  string        // Log level: debug, info, warn, error
	LogFormat string        // Log format: text, json, tint
	DBPath    string        // SQLite database path (default ~/.busdesk/busdesk.db, ":memory:" for testing)
	APIURL    string        // Booking API base URL
	APIToken  string        // Booking API bearer token
	Owner     string        // Default owner id for /owner pages
	CacheTTL  time.Duration // Lifetime of a fetched collection snapshot
	Export    ExportConfig
}

// DefaultServerConfig returns sensible defaults.
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Addr:      ":8080",
		LogLevel:  "info",
		LogFormat: "text",
		APIURL:    "http://localhost:5000/api",
		CacheTTL:  5 * time.Minute,
	}
}

// CLIConfig holds configuration for the busdesk CLI.
type CLIConfig struct {
	Server    string // busdesk server URL
	Owner     string // Default owner id
	Output    string // table, json, yaml
	LogLevel  string
	LogFormat string
}

// DefaultCLIConfig returns sensible defaults.
func DefaultCLIConfig() CLIConfig {
	return CLIConfig{
		Server:    "http://localhost:8080",
		Output:    "table",
		LogLevel:  "warn",
		LogFormat: "tint",
	}
}
