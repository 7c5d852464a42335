// Package httpclient provides a configurable HTTP client used by the
// Google API clients (OAuth token endpoint, Drive lookup, Sheets append).
//
// It supports pluggable authentication, default headers, JSON and
// multipart request bodies, and classifies response status codes into
// typed errors so callers can distinguish auth failures from not-found
// and server errors.
package httpclient
