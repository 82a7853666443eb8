// Package config provides configuration management for the ban ledger.
//
// It utilizes Viper for loading configuration from environment variables
// and an optional .env file.
//
// # Configuration Structure
//
// The Config struct is the central repository for all application settings, divided into subsections:
//   - Server: HTTP server settings (port, API key)
//   - Storage: S3/MinIO credentials and bucket settings
//   - Log: Logging level and format
//   - Store: ban ledger directory
//   - Search: full-text index directory
//   - Banlist: where the game server publishes its ban file
//   - Steam: Steam Web API credentials
//   - Bans: sync and backup scheduling
//
// # Usage
//
//	cfg, err := config.LoadConfig(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.Server.Port)
package config
