// Package querycache caches API reads for the dashboard between renders.
//
// Entries are keyed by a scope (the browser id) plus ordered parts such as
// ("reports", "page=2"). A fresh entry is served without calling the API;
// concurrent misses for the same key share one fetch. Mutations call
// Invalidate with a part prefix, which drops the matching keys in every
// scope. Logout drops a whole scope. Entries expire after the TTL and the
// oldest are evicted once the cache is full.
package querycache
