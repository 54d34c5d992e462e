// Package config loads runtime configuration for the ulak CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file named by --config / -c.
//  3. Command-line flags the user set, which override earlier values.
//
// # JSON schema
//
// The JSON loader uses timex.Duration for the timeout, so it can be either a
// string like "30s" or integer nanoseconds. Absent keys keep their defaults:
//
//	{
//	  "server_url": "http://localhost:8000",
//	  "api_prefix": "/api",
//	  "request_timeout": "30s",
//	  "list_limit": 200,
//	  "sink": {"type": "s3", "s3_bucket": "ulak", "s3_endpoint": "http://127.0.0.1:9000"}
//	}
//
// Note: This package does not read environment variables directly; use the
// JSON file or flags to configure values.
package config
