// Package config loads and validates service configuration.
//
// Configuration is read from a YAML file with ${VAR} environment
// variable expansion. Missing optional fields receive defaults.
package config
