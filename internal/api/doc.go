// Package api implements the HTTP API and WebSocket feed for ISP Devices.
//
// This package provides:
//   - Plain-text device routes (/isp/v1/celular, /isp/v1/tablet)
//   - Capability discovery and per-variant exercise/call routes
//   - The invocation trail endpoint, optionally behind JWT bearer auth
//   - A WebSocket hub broadcasting device.invoked events
//   - Middleware stack (request ID, logging, recovery, CORS, body limit)
//
// # Architecture
//
// Handlers look up a variant's shared device in the catalogue, run the
// operations its capabilities allow, and write the outputs joined by
// newlines. Each operation becomes an invocation.Invocation handed to the
// configured recorder, which may fan out to SQLite, MQTT, InfluxDB and the
// WebSocket hub. Recorder failures are logged and never fail a request.
//
// # Legacy route
//
// GET /isp/v1/tablet/sin-chip serves a tablet through the flat five-method
// interface. It is mounted only when api.legacy_routes is true; its call
// stubs panic and the recovery middleware turns that into a 500.
//
// # Security
//
// When security.jwt.secret is set, /isp/v1/invocations requires an HS256
// bearer token and WebSocket connections need a single-use ticket from
// POST /isp/v1/auth/ws-ticket. With no secret both are open.
package api
