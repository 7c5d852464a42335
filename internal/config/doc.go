// Package config loads and validates the application configuration.
//
// Configuration is assembled from three layers, later layers winning:
//
//  1. an optional YAML file (./cmd/jobhunt/config.yml by default, or the
//     path given via JOBHUNT_CONFIG / an explicit loader option),
//  2. an optional .env file loaded through godotenv,
//  3. process environment variables, including the upstream API keys
//     ASSEMBLYAI_API_KEY and GEMINI_API_KEY.
//
// The resulting Config is validated once at startup and then treated as
// immutable; components receive their sections by value at construction.
package config
