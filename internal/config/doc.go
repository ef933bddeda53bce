// Package config loads, parses and validates application settings from
// environment variables (prefixed USERADMIN_) and an optional config.yaml.
package config
