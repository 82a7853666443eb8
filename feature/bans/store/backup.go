package store

import (
	"compress/gzip"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
)

// Backup writes a gzip-compressed full backup of the ledger into the
// backups directory under the store dir and returns its path. The backup
// is a consistent snapshot; writers are not blocked while it runs.
func (s *Store) Backup() (string, error) {
	dir := filepath.Join(s.dir, "backups")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create backup directory: %w", err)
	}
	name := fmt.Sprintf("bans-backup-%s.gz", time.Now().UTC().Format("20060102-150405"))
	path := filepath.Join(dir, name)

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create backup file: %w", err)
	}

	gz := gzip.NewWriter(f)
	if _, err := s.db.Backup(gz, 0); err != nil {
		f.Close()
		os.Remove(path)
		return "", fmt.Errorf("failed to back up ledger: %w", err)
	}
	if err := gz.Close(); err != nil {
		f.Close()
		os.Remove(path)
		return "", fmt.Errorf("failed to finish backup: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("failed to finish backup: %w", err)
	}

	s.logger.Info("Wrote ledger backup", zap.String("path", path))
	return path, nil
}
