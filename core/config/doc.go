// Package config provides configuration management for the replay manager.
//
// It utilizes Viper for loading configuration from environment variables and
// an optional .env file.
//
// # Configuration Structure
//
// The Config struct is the central repository for all application settings, divided into subsections:
//   - Sync: replay folder, recursion, lock and validation file paths
//   - Monitor: lobby marker path and poll interval
//   - Decoder: external decoder command and timeout
//   - Database: cache store file and connection limits
//   - Log: logging level, format and optional file sink
//
// # Usage
//
//	cfg, err := config.LoadConfig(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.Sync.Dir)
package config
