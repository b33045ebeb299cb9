package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/natefinch/atomic"
	"github.com/tailscale/hujson"
)

// FileName is the default config file name under the user's config dir.
const FileName = "config.jsonc"

// ErrConfigExists is returned by WriteStarter when the file already exists.
var ErrConfigExists = errors.New("config file already exists")

// File is the on-disk configuration shared by the server and the CLI.
// Empty fields leave the lower layer untouched.
type File struct {
	Addr      string       `json:"addr,omitempty"`
	LogLevel  string       `json:"log_level,omitempty"`
	LogFormat string       `json:"log_format,omitempty"`
	DBPath    string       `json:"db_path,omitempty"`
	APIURL    string       `json:"api_url,omitempty"`
	APIToken  string       `json:"api_token,omitempty"`
	Owner     string       `json:"owner,omitempty"`
	CacheTTL  string       `json:"cache_ttl,omitempty"`
	Server    string       `json:"server,omitempty"`
	Output    string       `json:"output,omitempty"`
	Export    ExportConfig `json:"export,omitempty"`
}

// DefaultPath returns ~/.busdesk/config.jsonc, or "" if the home directory
// cannot be determined.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".busdesk", FileName)
}

// LoadFile reads a JSONC config file. A missing file is not an error unless
// mustExist is set.
func LoadFile(path string, mustExist bool) (File, error) {
	if path == "" {
		return File{}, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !mustExist {
			return File{}, nil
		}
		return File{}, fmt.Errorf("read config %s: %w", path, err)
	}
	return ParseFile(data)
}

// ParseFile decodes JSONC (JSON with comments and trailing commas).
func ParseFile(data []byte) (File, error) {
	std, err := hujson.Standardize(data)
	if err != nil {
		return File{}, fmt.Errorf("invalid JSONC: %w", err)
	}
	var f File
	if err := json.Unmarshal(std, &f); err != nil {
		return File{}, fmt.Errorf("invalid config: %w", err)
	}
	if f.CacheTTL != "" {
		if _, err := time.ParseDuration(f.CacheTTL); err != nil {
			return File{}, fmt.Errorf("invalid cache_ttl %q: %w", f.CacheTTL, err)
		}
	}
	return f, nil
}

// ApplyServer overlays non-empty file values onto cfg.
func (f File) ApplyServer(cfg ServerConfig) ServerConfig {
	setIf(&cfg.Addr, f.Addr)
	setIf(&cfg.LogLevel, f.LogLevel)
	setIf(&cfg.LogFormat, f.LogFormat)
	setIf(&cfg.DBPath, f.DBPath)
	setIf(&cfg.APIURL, f.APIURL)
	setIf(&cfg.APIToken, f.APIToken)
	setIf(&cfg.Owner, f.Owner)
	if d, err := time.ParseDuration(f.CacheTTL); err == nil && d > 0 {
		cfg.CacheTTL = d
	}
	setIf(&cfg.Export.Bucket, f.Export.Bucket)
	setIf(&cfg.Export.Prefix, f.Export.Prefix)
	setIf(&cfg.Export.Region, f.Export.Region)
	setIf(&cfg.Export.Endpoint, f.Export.Endpoint)
	return cfg
}

// ApplyCLI overlays non-empty file values onto cfg.
func (f File) ApplyCLI(cfg CLIConfig) CLIConfig {
	setIf(&cfg.Server, f.Server)
	setIf(&cfg.Owner, f.Owner)
	setIf(&cfg.Output, f.Output)
	return cfg
}

// LoadDotEnv loads variables from a .env file into the process environment
// without overriding variables that are already set. A missing file is
// ignored.
func LoadDotEnv(path string) error {
	if path == "" {
		path = ".env"
	}
	if _, err := os.Stat(path); err != nil {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

// ApplyServerEnv overlays BUSDESK_* variables onto cfg.
func ApplyServerEnv(cfg ServerConfig, getenv func(string) string) ServerConfig {
	setIf(&cfg.Addr, getenv("BUSDESK_ADDR"))
	setIf(&cfg.DBPath, getenv("BUSDESK_DB"))
	setIf(&cfg.APIURL, getenv("BUSDESK_API_URL"))
	setIf(&cfg.APIToken, getenv("BUSDESK_API_TOKEN"))
	setIf(&cfg.Owner, getenv("BUSDESK_OWNER"))
	setIf(&cfg.LogLevel, getenv("BUSDESK_LOG_LEVEL"))
	setIf(&cfg.Export.Bucket, getenv("BUSDESK_EXPORT_BUCKET"))
	setIf(&cfg.Export.Endpoint, getenv("BUSDESK_EXPORT_ENDPOINT"))
	setIf(&cfg.Export.Region, getenv("AWS_REGION"))
	if d, err := time.ParseDuration(getenv("BUSDESK_CACHE_TTL")); err == nil && d > 0 {
		cfg.CacheTTL = d
	}
	return cfg
}

// ApplyCLIEnv overlays BUSDESK_* variables onto cfg.
func ApplyCLIEnv(cfg CLIConfig, getenv func(string) string) CLIConfig {
	setIf(&cfg.Server, getenv("BUSDESK_SERVER"))
	setIf(&cfg.Owner, getenv("BUSDESK_OWNER"))
	return cfg
}

const starter = `// busdesk configuration (JSON with comments).
{
  // Server
  "addr": ":8080",
  "api_url": %q,
  // "api_token": "",
  // "owner": "",
  "cache_ttl": "5m",

  // CLI
  "server": %q,
  "output": "table",

  // CSV export uploads; leave bucket empty to disable.
  "export": {
    "bucket": "",
    "prefix": "exports/",
    "region": "us-east-1",
  },
}
`

// WriteStarter atomically writes a commented starter config to path. It
// refuses to overwrite an existing file unless force is set.
func WriteStarter(path string, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%w: %s", ErrConfigExists, path)
		}
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	body := fmt.Sprintf(starter, DefaultServerConfig().APIURL, DefaultCLIConfig().Server)
	if err := atomic.WriteFile(path, bytes.NewReader([]byte(body))); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

func setIf(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
