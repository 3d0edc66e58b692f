// Package subscriber implements the downstream connection registry and
// the broadcast fan-out.
//
// Each registered connection is owned by the registry between handshake
// and teardown. Broadcast takes a point-in-time snapshot of the
// registered set and attempts one delivery per connection; a failed or
// timed-out send drops only that connection.
package subscriber
