// Package config defines the application's configuration structure and
// loading logic. Settings come from environment variables with the
// PAPERTRAIL_ prefix, an optional config.yaml, and built-in defaults,
// in that order of precedence, and are validated before use.
package config
