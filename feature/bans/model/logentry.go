package model

import "time"

// Ledger actions.
const (
	ActionAdd    = "add"
	ActionRemove = "remove"
)

// LogEntry is one append-only ledger record: a ban as it looked when its
// appearance or disappearance was detected. Entries are never updated.
type LogEntry struct {
	DetectedAt time.Time `json:"detected_at"`
	Action     string    `json:"action"`
	Ban        Ban       `json:"ban"`
}
