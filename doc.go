// Package tickemit provides a virtual clock that advances an integer
// time counter on a fixed wall-clock cadence and emits events
// to handlers registered for an exact time (At)
// or for every multiple of a period (Every).
// All methods of both the package and an Emitter instance
// are thread-safe and can safely be used from within multiple goroutines.
package tickemit
