// Package http wires the dashboard, ops, and health endpoints onto chi
// routers. Handlers return structured JSON via go-chi/render and push
// failures through the RFC 7807 error handler.
package http
