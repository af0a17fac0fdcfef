package wallet

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func recv(t *testing.T, ch <-chan Event) Event {
	t.Helper()
	select {
	case ev, ok := <-ch:
		require.True(t, ok, "channel closed")
		return ev
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for session event")
		return Event{}
	}
}

func TestObserver_DeliversEveryTransition(t *testing.T) {
	o := NewObserver()
	events, cancel := o.Subscribe()
	defer cancel()

	o.Set(Session{Connected: true, Address: "0x1"})
	o.Set(Session{Connected: true, Address: "0x2"})
	o.Set(Session{Connected: true, Address: "0x2"}) // no transition
	o.Set(Disconnected)
	o.Set(Session{Connected: true})

	want := []struct {
		kind EventKind
		addr string
	}{
		{EventConnected, "0x1"},
		{EventAddressChanged, "0x2"},
		{EventDisconnected, ""},
		{EventConnected, ""},
	}
	for _, w := range want {
		ev := recv(t, events)
		assert.Equal(t, w.kind, ev.Kind)
		assert.Equal(t, w.addr, ev.Session.Address)
	}
	assert.Equal(t, Session{Connected: true}, o.Current())
}

func TestObserver_SetReportsChange(t *testing.T) {
	o := NewObserver()

	_, changed := o.Set(Disconnected)
	assert.False(t, changed)

	// Address is dropped on a disconnected session.
	_, changed = o.Set(Session{Connected: false, Address: "0x1"})
	assert.False(t, changed)

	ev, changed := o.Set(Session{Connected: true, Address: "0x1"})
	assert.True(t, changed)
	assert.Equal(t, EventConnected, ev.Kind)
	assert.Equal(t, Disconnected, ev.Previous)
}

func TestObserver_CancelClosesChannel(t *testing.T) {
	o := NewObserver()
	events, cancel := o.Subscribe()
	cancel()
	cancel()

	select {
	case _, ok := <-events:
		assert.False(t, ok)
	case <-time.After(2 * time.Second):
		t.Fatal("channel not closed")
	}

	// Publishing after cancel must not block.
	o.Set(Session{Connected: true, Address: "0x1"})
}

func TestSession_Validate(t *testing.T) {
	assert.NoError(t, Disconnected.Validate())
	assert.NoError(t, Session{Connected: true, Address: "0x1"}.Validate())
	assert.ErrorIs(t, Session{Connected: true}.Validate(), ErrSession)
}
