// Package broadcast fans values out to any number of subscribers without ever
// blocking the publisher.
package broadcast

import "sync"

// Hub delivers every published value, in order, to each live subscriber.
// Each subscriber has its own unbounded queue, so a slow reader delays only itself.
type Hub[T any] struct {
	mu     sync.Mutex
	subs   map[int]*subscriber[T]
	nextID int
	closed bool
}

// NewHub creates an empty Hub.
func NewHub[T any]() *Hub[T] {
	return &Hub[T]{subs: make(map[int]*subscriber[T])}
}

// Publish queues v for every current subscriber.
func (h *Hub[T]) Publish(v T) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, sub := range h.subs {
		sub.push(v)
	}
}

// Subscribe returns a channel receiving every subsequently published value and
// a function that cancels the subscription and closes the channel. Subscribing
// to a closed Hub yields an already closed channel.
func (h *Hub[T]) Subscribe() (<-chan T, func()) {
	sub := newSubscriber[T]()

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		sub.close()
		return sub.out, func() {}
	}
	id := h.nextID
	h.nextID++
	h.subs[id] = sub
	h.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			h.mu.Lock()
			_, live := h.subs[id]
			delete(h.subs, id)
			h.mu.Unlock()
			if live {
				sub.close()
			}
		})
	}
	return sub.out, cancel
}

// Close cancels every subscription. Later publishes are dropped.
func (h *Hub[T]) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	for id, sub := range h.subs {
		delete(h.subs, id)
		sub.close()
	}
}

type subscriber[T any] struct {
	mu     sync.Mutex
	queue  []T
	notify chan struct{}
	done   chan struct{}
	out    chan T
}

func newSubscriber[T any]() *subscriber[T] {
	s := &subscriber[T]{
		notify: make(chan struct{}, 1),
		done:   make(chan struct{}),
		out:    make(chan T),
	}
	go s.pump()
	return s
}

func (s *subscriber[T]) push(v T) {
	s.mu.Lock()
	s.queue = append(s.queue, v)
	s.mu.Unlock()
	select {
	case s.notify <- struct{}{}:
	default:
	}
}

func (s *subscriber[T]) close() {
	close(s.done)
}

func (s *subscriber[T]) pump() {
	defer close(s.out)
	for {
		s.mu.Lock()
		if len(s.queue) == 0 {
			s.mu.Unlock()
			select {
			case <-s.notify:
				continue
			case <-s.done:
				return
			}
		}
		v := s.queue[0]
		var zero T
		s.queue[0] = zero
		s.queue = s.queue[1:]
		s.mu.Unlock()

		select {
		case s.out <- v:
		case <-s.done:
			return
		}
	}
}
