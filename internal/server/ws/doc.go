// Package ws streams completed evaluation reports to WebSocket clients.
// Unlike a polling feed, the hub is push-driven: every report produced by the
// API is published to all connected clients the moment it is generated.
package ws
