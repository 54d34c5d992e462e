package config

import (
	"github.com/spf13/pflag"
)

// Flag names.
const (
	FlagConfig      = "config"
	FlagServer      = "server"
	FlagAPIPrefix   = "api-prefix"
	FlagDatabase    = "db"
	FlagTimeout     = "timeout"
	FlagListLimit   = "limit"
	FlagLogLevel    = "log-level"
	FlagSinkType    = "sink"
	FlagDownloadDir = "download-dir"
	FlagS3Bucket    = "s3-bucket"
	FlagS3Prefix    = "s3-prefix"
	FlagS3Region    = "s3-region"
	FlagS3Endpoint  = "s3-endpoint"
	FlagS3AccessKey = "s3-access-key"
	FlagS3SecretKey = "s3-secret-key"
)

// RegisterFlags defines the configuration flags on fs. Defaults shown in
// help are the built-in ones; only flags the user sets override the JSON
// file.
func RegisterFlags(fs *pflag.FlagSet) {
	var d Config
	d.LoadDefaults()

	fs.StringP(FlagConfig, "c", "", "path to JSON config file")
	fs.StringP(FlagServer, "a", d.ServerURL, "backend server URL")
	fs.String(FlagAPIPrefix, d.APIPrefix, "API path prefix")
	fs.String(FlagDatabase, d.DatabasePath, "local state database file")
	fs.Duration(FlagTimeout, d.RequestTimeout, "HTTP request timeout")
	fs.Int(FlagListLimit, d.ListLimit, "number of transfer sessions to fetch")
	fs.String(FlagLogLevel, d.LogLevel, "log level (debug, info, warn, error)")

	fs.String(FlagSinkType, d.Sink.Type, "download destination: dir or s3")
	fs.StringP(FlagDownloadDir, "o", d.Sink.Dir, "download directory")
	fs.String(FlagS3Bucket, d.Sink.S3Bucket, "S3 bucket for downloads")
	fs.String(FlagS3Prefix, d.Sink.S3Prefix, "S3 key prefix for downloads")
	fs.String(FlagS3Region, d.Sink.S3Region, "S3 region")
	fs.String(FlagS3Endpoint, d.Sink.S3Endpoint, "S3 endpoint URL (MinIO and friends)")
	fs.String(FlagS3AccessKey, d.Sink.S3AccessKey, "S3 access key")
	fs.String(FlagS3SecretKey, d.Sink.S3SecretKey, "S3 secret key")
}

func configFile(fs *pflag.FlagSet) string {
	if fs == nil || fs.Lookup(FlagConfig) == nil {
		return ""
	}
	path, _ := fs.GetString(FlagConfig)
	return path
}

// applyFlags copies the flags the user changed into cfg.
func applyFlags(cfg *Config, fs *pflag.FlagSet) error {
	if fs == nil {
		return nil
	}

	strs := map[string]*string{
		FlagServer:      &cfg.ServerURL,
		FlagAPIPrefix:   &cfg.APIPrefix,
		FlagDatabase:    &cfg.DatabasePath,
		FlagLogLevel:    &cfg.LogLevel,
		FlagSinkType:    &cfg.Sink.Type,
		FlagDownloadDir: &cfg.Sink.Dir,
		FlagS3Bucket:    &cfg.Sink.S3Bucket,
		FlagS3Prefix:    &cfg.Sink.S3Prefix,
		FlagS3Region:    &cfg.Sink.S3Region,
		FlagS3Endpoint:  &cfg.Sink.S3Endpoint,
		FlagS3AccessKey: &cfg.Sink.S3AccessKey,
		FlagS3SecretKey: &cfg.Sink.S3SecretKey,
	}
	for name, dst := range strs {
		if !fs.Changed(name) {
			continue
		}
		v, err := fs.GetString(name)
		if err != nil {
			return err
		}
		*dst = v
	}

	if fs.Changed(FlagTimeout) {
		v, err := fs.GetDuration(FlagTimeout)
		if err != nil {
			return err
		}
		cfg.RequestTimeout = v
	}
	if fs.Changed(FlagListLimit) {
		v, err := fs.GetInt(FlagListLimit)
		if err != nil {
			return err
		}
		cfg.ListLimit = v
	}
	return nil
}
