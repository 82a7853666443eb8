package search

// Config configures the search index.
type Config struct {
	// Dir holds the on-disk index. Deleting it is safe; the index is
	// rebuilt from the ledger on the next start.
	Dir string `mapstructure:"dir" default:"data/index"`
}
