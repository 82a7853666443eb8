package bans

// Config configures the bans feature.
type Config struct {
	Enabled bool `mapstructure:"enabled" default:"true"`

	// SyncIntervalMinutes is how often the periodic sync fires;
	// MinSyncIntervalMinutes is the floor below which non-forced syncs are
	// refused, so restarts and manual triggers cannot hammer the source.
	SyncIntervalMinutes    int `mapstructure:"sync_interval_minutes" default:"60"`
	MinSyncIntervalMinutes int `mapstructure:"min_sync_interval_minutes" default:"60"`

	BackupIntervalHours int  `mapstructure:"backup_interval_hours" default:"24"`
	UploadBackups       bool `mapstructure:"upload_backups"`

	// Workers bounds concurrent background jobs (sync, backup, reindex).
	Workers int `mapstructure:"workers" default:"2"`
}
