package broadcast

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func recv[T any](t *testing.T, ch <-chan T) T {
	t.Helper()
	select {
	case v, ok := <-ch:
		require.True(t, ok, "channel closed")
		return v
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for value")
	}
	var zero T
	return zero
}

func TestHub_DeliversInOrderWithoutBlocking(t *testing.T) {
	h := NewHub[int]()
	ch, cancel := h.Subscribe()
	defer cancel()

	for i := 0; i < 100; i++ {
		h.Publish(i)
	}
	for i := 0; i < 100; i++ {
		assert.Equal(t, i, recv(t, ch))
	}
}

func TestHub_CancelClosesChannel(t *testing.T) {
	h := NewHub[string]()
	ch, cancel := h.Subscribe()
	cancel()
	cancel()

	h.Publish("late")
	select {
	case _, ok := <-ch:
		assert.False(t, ok)
	case <-time.After(2 * time.Second):
		t.Fatal("channel not closed")
	}
}

func TestHub_Close(t *testing.T) {
	h := NewHub[string]()
	ch, cancel := h.Subscribe()
	h.Close()
	cancel()

	_, ok := <-ch
	assert.False(t, ok)

	late, _ := h.Subscribe()
	_, ok = <-late
	assert.False(t, ok)
}
