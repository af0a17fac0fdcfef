package wallet

import (
	"errors"
)

// ErrSession indicates the wallet reports a connection but no address.
var ErrSession = errors.New("wallet connected but address is indeterminate")

// Session is the connection state reported by the wallet. Address is only
// meaningful while Connected; an empty Address means absent.
type Session struct {
	Connected bool
	Address   string
}

// Disconnected is the zero session.
var Disconnected = Session{}

// Validate returns ErrSession for a connected session without an address.
func (s Session) Validate() error {
	if s.Connected && s.Address == "" {
		return ErrSession
	}
	return nil
}

func (s Session) normalize() Session {
	if !s.Connected {
		return Disconnected
	}
	return s
}

// EventKind classifies a session transition.
type EventKind int

const (
	EventConnected EventKind = iota + 1
	EventDisconnected
	EventAddressChanged
)

func (k EventKind) String() string {
	switch k {
	case EventConnected:
		return "connected"
	case EventDisconnected:
		return "disconnected"
	case EventAddressChanged:
		return "address_changed"
	default:
		return "unknown"
	}
}

// Event is a single session transition.
type Event struct {
	Kind     EventKind
	Session  Session
	Previous Session
}

// classify returns the transition from prev to next, if any.
func classify(prev, next Session) (EventKind, bool) {
	switch {
	case prev == next:
		return 0, false
	case !prev.Connected && next.Connected:
		return EventConnected, true
	case prev.Connected && !next.Connected:
		return EventDisconnected, true
	default:
		return EventAddressChanged, true
	}
}
