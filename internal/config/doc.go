// Package config loads, normalizes, and validates taskline configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// TASKLINE_API_URL. The Config type centralizes every knob the CLI needs:
// the remote API endpoint, local data and log directories, and audio capture
// settings.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
