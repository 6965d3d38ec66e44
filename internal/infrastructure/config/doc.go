// Package config loads and validates patrad configuration from YAML files
// with environment variable overrides.
//
// Secrets (the token signing key) are only ever held in memory. They are
// never logged and never appear in any API response.
package config
