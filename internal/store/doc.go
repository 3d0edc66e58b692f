// Package store implements the latest-value price cache.
//
// The store keeps exactly one entry per instrument, overwritten on every
// update. There is no history, no TTL, and no eviction; entries live for
// the life of the process.
package store
