package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/pflag"
)

// Sink types.
const (
	SinkDir = "dir"
	SinkS3  = "s3"
)

// SinkConfig selects where downloaded files go.
type SinkConfig struct {
	Type string
	Dir  string

	S3Bucket    string
	S3Prefix    string
	S3Region    string
	S3Endpoint  string
	S3AccessKey string
	S3SecretKey string
}

// Config holds runtime settings for the ulak CLI.
type Config struct {
	// ServerURL is the backend origin, e.g. http://localhost:8000.
	ServerURL string
	// APIPrefix is prepended to every API path. /health is served outside it.
	APIPrefix string
	// DatabasePath is the SQLite file holding the credential and flags.
	DatabasePath string
	// RequestTimeout bounds every HTTP exchange.
	RequestTimeout time.Duration
	// ListLimit is the page size for the transfer list.
	ListLimit int
	LogLevel  string

	Sink SinkConfig
}

func defaultDatabasePath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "ulak.db"
	}
	return filepath.Join(dir, "ulak", "ulak.db")
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerURL = "http://localhost:8000"
	c.APIPrefix = "/api"
	c.DatabasePath = defaultDatabasePath()
	c.RequestTimeout = 30 * time.Second
	c.ListLimit = 200
	c.LogLevel = "warn"
	c.Sink = SinkConfig{
		Type:     SinkDir,
		Dir:      "downloads",
		S3Region: "us-east-1",
	}
}

// Validate reports the first setting that cannot work.
func (c *Config) Validate() error {
	u, err := url.Parse(c.ServerURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid server url %q", c.ServerURL)
	}
	if c.APIPrefix != "" && !strings.HasPrefix(c.APIPrefix, "/") {
		return fmt.Errorf("api prefix %q must start with /", c.APIPrefix)
	}
	if c.DatabasePath == "" {
		return errors.New("database path is required")
	}
	if c.RequestTimeout <= 0 {
		return errors.New("request timeout must be positive")
	}
	if c.ListLimit <= 0 {
		return errors.New("list limit must be positive")
	}

	switch c.Sink.Type {
	case SinkDir:
		if c.Sink.Dir == "" {
			return errors.New("download directory is required")
		}
	case SinkS3:
		if c.Sink.S3Bucket == "" {
			return errors.New("s3 bucket is required")
		}
	default:
		return fmt.Errorf("unknown sink type %q", c.Sink.Type)
	}
	return nil
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if a config file is named) and command-line flags the user set.
// Later sources take precedence over earlier ones.
func LoadConfig(fs *pflag.FlagSet) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	if path := configFile(fs); path != "" {
		if err := parseJson(cfg, path); err != nil {
			return nil, err
		}
	}
	if err := applyFlags(cfg, fs); err != nil {
		return nil, err
	}

	cfg.ServerURL = strings.TrimRight(cfg.ServerURL, "/")
	cfg.APIPrefix = strings.TrimRight(cfg.APIPrefix, "/")

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
