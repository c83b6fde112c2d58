package web

import (
	"sync"

	"github.com/lcalzada-xor/nearby/internal/core/domain"
	"github.com/lcalzada-xor/nearby/internal/core/ports"
)

// Store keeps the latest published snapshot and fans it out to subscribers.
// It is the only state the web server reads; the capture loop writes it.
type Store struct {
	mu     sync.RWMutex
	latest domain.Snapshot
	has    bool
	subs   map[int]chan domain.Snapshot
	nextID int
}

var _ ports.SnapshotPublisher = (*Store)(nil)

func NewStore() *Store {
	return &Store{subs: make(map[int]chan domain.Snapshot)}
}

// Publish replaces the latest snapshot. Subscribers that are not keeping up
// miss intermediate snapshots; they always get the newest one eventually.
func (s *Store) Publish(snap domain.Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.latest = snap
	s.has = true
	for _, ch := range s.subs {
		select {
		case <-ch:
		default:
		}
		ch <- snap
	}
}

// Latest returns the most recent snapshot; ok is false before the first Publish.
func (s *Store) Latest() (domain.Snapshot, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.latest, s.has
}

// Subscribe returns a channel that receives published snapshots and a
// function that unsubscribes and closes it.
func (s *Store) Subscribe() (<-chan domain.Snapshot, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID
	s.nextID++
	ch := make(chan domain.Snapshot, 1)
	s.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subs, id)
			s.mu.Unlock()
			close(ch)
		})
	}
}
