package banlist

// Config holds configuration for the ban list source.
type Config struct {
	// URL is the HTTP(S) location of the server's ban list file.
	URL string `mapstructure:"url" default:""`
	// Object is the object-storage key of the ban list, used when the
	// file is published to the storage bucket instead of a URL.
	Object string `mapstructure:"object" default:""`
	// TimeoutSeconds bounds the HTTP download.
	TimeoutSeconds int `mapstructure:"timeout_seconds" default:"30"`
}
