// Package component defines the lifecycle contract for long-lived parts
// of the application (HTTP server, telemetry) and a registry that starts
// them in order and stops them in reverse.
package component
