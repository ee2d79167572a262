// Package config provides configuration management for datadiff.
//
// It utilizes Viper for loading configuration from environment variables and an
// optional .env file. Defaults come from `default` struct tags.
//
// # Configuration Structure
//
// The Config struct is divided into subsections:
//   - Server: HTTP server settings (port, API key, body limit)
//   - Database: MySQL or SQLite connection details
//   - Postgres: connection string for pg: sources
//   - Storage: S3/MinIO credentials and bucket settings
//   - Log: Logging level and format
//   - Compare: worker count, dataset cache TTL, report locations, default labels
//
// # Usage
//
//	cfg, err := config.LoadConfig(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.Compare.Workers)
package config
