package wallet

import (
	"sync"

	"wallet_vote/internal/broadcast"
)

// Observer holds the current wallet Session and fans every transition out to
// subscribers. Nothing is debounced or coalesced: subscribers see each
// transition in order, including an address change without a disconnect.
type Observer struct {
	mu      sync.Mutex
	current Session
	hub     *broadcast.Hub[Event]
}

// NewObserver creates an Observer in the disconnected state.
func NewObserver() *Observer {
	return &Observer{hub: broadcast.NewHub[Event]()}
}

// Current returns the latest session.
func (o *Observer) Current() Session {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.current
}

// Set replaces the session and publishes the transition. It reports false when
// the new session equals the current one.
func (o *Observer) Set(s Session) (Event, bool) {
	s = s.normalize()

	o.mu.Lock()
	defer o.mu.Unlock()

	kind, changed := classify(o.current, s)
	if !changed {
		return Event{}, false
	}
	ev := Event{Kind: kind, Session: s, Previous: o.current}
	o.current = s
	o.hub.Publish(ev)
	return ev, true
}

// Subscribe returns a channel receiving every subsequent transition and a
// function that cancels the subscription and closes the channel.
func (o *Observer) Subscribe() (<-chan Event, func()) {
	return o.hub.Subscribe()
}
