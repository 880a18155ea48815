// Package session holds the client-side admin session.
//
// # Overview
//
// A Session records who is logged in to the dashboard: the admin user and
// the bearer token the remote API issued for them. It is either anonymous
// or authenticated. User and token are always set or cleared together.
//
// # Transitions
//
// The state changes only through the pure constructors Authenticated and
// Anonymous. Store applies them atomically:
//
//	st := session.NewStore(persister)
//	_ = st.Rehydrate(ctx)             // restore after restart
//	_ = st.SetAuth(ctx, user, token)  // persist, then swap in
//	_ = st.Logout(ctx)                // clear, then reset
//
// # Persistence
//
// Durable storage is a port (Persister) and is kept out of the
// transitions. The serialized session lives under one fixed key
// (StorageKey). Adapters:
//
//   - FilePersister: a JSON file, used by the operator CLI
//   - KVPersister: a key in a KV backend, used by the web dashboard
//   - MemoryPersister: tests
//
// # Advisory role check
//
// IsAdmin is a UX gate only. The remote API authorizes every request by
// its token.
package session
