// Package bans tracks game server bans over time. Periodic snapshots of
// the server's ban file are reconciled into an append-only ledger, which
// feeds a full-text search index, per-player history and timelines, an
// operator-staged offline-ban overlay and paste-able ban file lines.
// Chat mentions of player profiles are recorded alongside, so a player's
// timeline shows when they were being discussed.
package bans
