package tickemit

import (
	"github.com/segmentio/ksuid"
)

// Kind is the kind of a registration.
type Kind int8

const (
	_ Kind = iota

	// KindAt handlers fire when the clock equals their key.
	KindAt

	// KindEvery handlers fire when the clock is a positive multiple of their key.
	KindEvery
)

// String returns the name of the kind.
func (k Kind) String() string {
	switch k {
	case KindAt:
		return "at"
	case KindEvery:
		return "every"
	}
	return "unknown"
}

// Registration describes a registered handler.
type Registration struct {
	ID   ID
	Kind Kind

	// Key is the time of an at-registration
	// or the period of an every-registration.
	Key int64

	Handler Handler
}

// ID is a unique registration identifier.
type ID ksuid.KSUID

// String returns the stringified identifier.
func (id ID) String() string {
	return ksuid.KSUID(id).String()
}

// Registered returns the wall-clock time of registration
// with a precision of one second.
func (id ID) Registered() Time {
	return ksuid.KSUID(id).Time()
}
