package store

// Config configures the ledger store.
type Config struct {
	// Dir holds the database and its backups.
	Dir string `mapstructure:"dir" default:"data/ledger"`
}
