// Package server provides the HTTP server for the jobhunt service using
// Gin with HTTP/2 h2c support.
//
// The server follows the component pattern with lifecycle management,
// health endpoints, and a configurable middleware chain.
//
// # Middleware
//
// Built-in middleware (server/middleware):
//
//   - Recovery: panic recovery with structured logging
//   - RequestID: request ID generation and propagation
//   - CORS: cross-origin resource sharing configuration
//   - BodySizeLimit: request body size limits
//   - RequestLogger: request/response logging with duration tracking
//
// # Endpoints
//
// Built-in endpoints (server/endpoint):
//
//   - /health: component health aggregation
//   - /info: service and build information
package server
