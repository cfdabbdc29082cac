package harvest

import (
	"sync"
	"sync/atomic"

	"github.com/rileyhilliard/rrtop/internal/metrics"
)

// Slot hands snapshots from the harvester to any number of consumers.
// Every subscriber has a one-element buffer that always holds the newest
// unread snapshot.
type Slot struct {
	latest atomic.Pointer[metrics.Snapshot]

	mu     sync.Mutex
	subs   map[int]chan *metrics.Snapshot
	nextID int
	closed bool
}

// NewSlot returns an empty slot.
func NewSlot() *Slot {
	return &Slot{subs: make(map[int]chan *metrics.Snapshot)}
}

// Publish stores snap as the latest snapshot and offers it to every
// subscriber, replacing any snapshot the subscriber has not read yet.
// It never blocks. Only one goroutine may publish.
func (s *Slot) Publish(snap *metrics.Snapshot) {
	if snap == nil {
		return
	}
	s.latest.Store(snap)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	for _, ch := range s.subs {
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- snap:
		default:
		}
	}
}

// Latest returns the most recently published snapshot, or nil.
func (s *Slot) Latest() *metrics.Snapshot {
	return s.latest.Load()
}

// Subscribe returns a channel receiving the newest snapshot and a function
// that unsubscribes. If a snapshot was already published it is delivered
// immediately. The channel is closed when the slot closes or on unsubscribe.
func (s *Slot) Subscribe() (<-chan *metrics.Snapshot, func()) {
	ch := make(chan *metrics.Snapshot, 1)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		close(ch)
		return ch, func() {}
	}
	id := s.nextID
	s.nextID++
	s.subs[id] = ch
	if snap := s.latest.Load(); snap != nil {
		ch <- snap
	}

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			if c, ok := s.subs[id]; ok {
				delete(s.subs, id)
				close(c)
			}
		})
	}
}

// Close closes every subscriber channel. Later publishes only update Latest.
func (s *Slot) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	for id, ch := range s.subs {
		close(ch)
		delete(s.subs, id)
	}
}
