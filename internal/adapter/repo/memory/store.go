package memory

import (
	"sync"

	"forager/internal/domain/forage"
)

// Store backs the in-memory repositories. Writes happen inside TxManager.RunInTx,
// which holds the write lock; reads take the read lock themselves.
type Store struct {
	mu       sync.RWMutex
	episodes map[string]forage.Report
	events   map[string][]forage.DomainEvent
}

func NewStore() *Store {
	return &Store{
		episodes: make(map[string]forage.Report),
		events:   make(map[string][]forage.DomainEvent),
	}
}

type checkpoint struct {
	episodes map[string]forage.Report
	events   map[string][]forage.DomainEvent
}

// checkpoint copies the maps. Event slices are only ever appended to, so
// keeping their old headers is enough to undo an append.
func (s *Store) checkpoint() checkpoint {
	c := checkpoint{
		episodes: make(map[string]forage.Report, len(s.episodes)),
		events:   make(map[string][]forage.DomainEvent, len(s.events)),
	}
	for k, v := range s.episodes {
		c.episodes[k] = v
	}
	for k, v := range s.events {
		c.events[k] = v
	}
	return c
}

func (s *Store) restore(c checkpoint) {
	s.episodes = c.episodes
	s.events = c.events
}
