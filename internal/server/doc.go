// Package server hosts the web dashboard process.
//
// It opens the SQLite session store, mounts the webadmin routes next to
// /health and /health/ready, and serves them on a TCP address or a tsnet
// node. Run blocks until its context is canceled and then shuts down with
// a fresh five second deadline. A background janitor sweeps expired
// sessions and notices from the store while the server runs.
package server
