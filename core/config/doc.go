// Package config provides configuration management for the Geo Manager.
//
// It utilizes Viper for loading configuration from environment variables
// and an optional .env file.
//
// # Configuration Structure
//
// The Config struct is the central repository for all application settings, divided into subsections:
//   - Server: HTTP server settings (port, API key)
//   - Database: MySQL connection details for the reference-data store
//   - Storage: S3/MinIO credentials for dataset snapshots and flag imagery
//   - Log: Logging level and format
//
// # Usage
//
//	cfg, err := config.LoadConfig(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.Server.Port)
//
// Defaults are declared on struct tags ('default') and registered in Viper
// via reflection, so every key is overridable through the environment.
package config
