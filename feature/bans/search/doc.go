// Package search maintains a bleve full-text index over ban player names
// and reasons. Documents are keyed by content fingerprint; the ledger is
// the source of truth and the index is disposable, rebuilt from ledger
// history whenever its directory is missing.
package search
