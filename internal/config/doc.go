// Package config loads runtime configuration for the store admin CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file (see parseJson) selected via flags: -c or -config.
//  3. Command-line flags (see parseFlags), which override earlier values.
//
// Supported flags
//
//	-a string   base URL of the backend REST API
//	-t int      request timeout (seconds)
//	-i int      health check interval (seconds)
//	-d string   path of the local sqlite database
//
// # JSON schema
//
// The JSON loader uses timex.Duration for intervals, so values can be either
// strings like "3s" or integer nanoseconds:
//
//	{
//	  "server_base_url": "http://localhost:5000/api",
//	  "request_timeout": "10s",
//	  "health_check_interval": "3s",
//	  "database_dsn": "storeadmin.db"
//	}
//
// Note: This package does not read environment variables directly; use the
// JSON file or flags to configure values.
package config
