// Package store provides durable key/value storage for the dashboard.
//
// # Overview
//
// The web dashboard keeps per-browser state here: the serialized admin
// session (session.StorageKey/<browser-id>) and queued notices
// (notices/<browser-id>). Values are opaque bytes with an optional expiry.
//
// # Implementations
//
//   - SQLiteStore: modernc.org/sqlite, WAL mode, schema created on open
//   - MockStore: in-memory, for tests
//
// Both satisfy KVStore and session.KV.
//
// # Expiry
//
// Expired entries are invisible to Get and Take immediately. They are
// physically removed by DeleteExpired, which StartJanitor runs on an
// interval until its context is cancelled.
package store
