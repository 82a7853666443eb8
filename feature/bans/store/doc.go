// Package store persists the ban ledger in an embedded badger database.
//
// The ledger is append-only: reconciling a server snapshot produces add
// and remove entries rather than mutating history. Alongside the log the
// store keeps the derived current-ban set, the operator-staged offline-ban
// overlay, the fingerprint set feeding the search index, chat mentions and
// per-channel scan watermarks. All of it changes inside the single
// serialized reconciliation transaction, so readers always see a
// consistent ledger.
package store
