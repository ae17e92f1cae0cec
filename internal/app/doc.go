// Package app assembles the dashboard server: configuration, logging,
// tracing, the TMS client, the dashboard and health services, and the
// chi router with its middleware chain.
package app
