package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dmitrijs2005/ulak/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling.
// It relies on timex.Duration so JSON can specify the timeout either as a
// string like "30s" or as integer nanoseconds. Keys absent from the file
// keep their previous values.
type JsonConfig struct {
	ServerURL      string         `json:"server_url"`
	APIPrefix      string         `json:"api_prefix"`
	DatabasePath   string         `json:"database_path"`
	RequestTimeout timex.Duration `json:"request_timeout"`
	ListLimit      int            `json:"list_limit"`
	LogLevel       string         `json:"log_level"`
	Sink           JsonSinkConfig `json:"sink"`
}

type JsonSinkConfig struct {
	Type        string `json:"type"`
	Dir         string `json:"dir"`
	S3Bucket    string `json:"s3_bucket"`
	S3Prefix    string `json:"s3_prefix"`
	S3Region    string `json:"s3_region"`
	S3Endpoint  string `json:"s3_endpoint"`
	S3AccessKey string `json:"s3_access_key"`
	S3SecretKey string `json:"s3_secret_key"`
}

// parseJson overlays cfg with the values in the JSON file at path.
func parseJson(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}

	jc := JsonConfig{
		ServerURL:      cfg.ServerURL,
		APIPrefix:      cfg.APIPrefix,
		DatabasePath:   cfg.DatabasePath,
		RequestTimeout: timex.Duration{Duration: cfg.RequestTimeout},
		ListLimit:      cfg.ListLimit,
		LogLevel:       cfg.LogLevel,
		Sink:           JsonSinkConfig(cfg.Sink),
	}
	if err := json.Unmarshal(data, &jc); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}

	cfg.ServerURL = jc.ServerURL
	cfg.APIPrefix = jc.APIPrefix
	cfg.DatabasePath = jc.DatabasePath
	cfg.RequestTimeout = jc.RequestTimeout.Duration
	cfg.ListLimit = jc.ListLimit
	cfg.LogLevel = jc.LogLevel
	cfg.Sink = SinkConfig(jc.Sink)
	return nil
}
