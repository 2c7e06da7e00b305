// ABOUTME: Package documentation for the gateway orchestrator
// ABOUTME: Describes how the store, chat core, REST API, and listeners fit together

// Package gateway wires the famcoin server together: it opens the SQLite
// store, builds the JWT verifier, mounts the REST API and the realtime
// websocket endpoint on one HTTP server, and serves over a plain TCP
// listener or a Tailscale tsnet listener depending on configuration.
//
// The gateway owns component lifecycles. Run blocks until the context is
// cancelled or the server fails, then shuts the HTTP server, the tsnet
// server, and the store down in that order.
package gateway
