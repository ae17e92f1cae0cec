// Package config loads application configuration (defaults, optional
// YAML file, environment overrides) and manages the TMS credential
// pair, including tolerant persistence of refreshed tokens.
package config
