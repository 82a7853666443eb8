// Package model defines the immutable value types of the ban ledger:
// player identities, ban records, append-only log entries, staged offline
// bans and chat mentions.
//
// # Identity
//
// SteamID is the canonical 64-bit identity. All accepted textual forms
// round-trip through it; see ParseSteamID.
//
// # Equality vs fingerprint
//
// Ban.Same is the reconciliation equality (identity + enactment +
// duration). Fingerprint is the search-index uniqueness hash and also
// covers player name and reason. The two are deliberately different: a
// corrected reason should be re-indexed but must not produce a
// remove/add pair in the ledger.
package model
