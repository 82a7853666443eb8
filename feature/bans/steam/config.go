package steam

// Config configures the Steam Web API client. An empty APIKey disables
// resolution; everything depending on it degrades to identity-only output.
type Config struct {
	APIKey          string `mapstructure:"api_key"`
	BaseURL         string `mapstructure:"base_url" default:"https://api.steampowered.com"`
	TimeoutSeconds  int    `mapstructure:"timeout_seconds" default:"10"`
	CacheTTLMinutes int    `mapstructure:"cache_ttl_minutes" default:"60"`
	CacheSize       int    `mapstructure:"cache_size" default:"4096"`
}
