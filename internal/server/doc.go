// Package server exposes the HTTP surface: REST price lookups, the
// streaming subscriber endpoint, the on-demand fetch endpoint, and the
// health check.
package server
