// Package util provides small shared helpers for the jobhunt service:
// size parsing, secret masking, string sanitization, and generic
// slice/value utilities.
package util
