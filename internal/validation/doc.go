// Package validation provides input validation helpers.
//
// Two styles are supported:
//
//   - Fluent validation for request-level checks:
//     v := validation.New().Required("audio_data", name).OneOf("extension", ext, allowed)
//     if err := v.Validate(); err != nil { ... }
//
//   - Struct tag validation for decoded payloads:
//     err := validation.Struct(&key)
//
// Both return *apperr.Error with code VALIDATION_ERROR so handlers can
// map them straight to an HTTP response.
package validation
