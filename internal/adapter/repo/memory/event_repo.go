package memory

import (
	"context"

	"forager/internal/app/ports"
	"forager/internal/domain/forage"
)

type EventRepo struct {
	store *Store
}

func NewEventRepo(store *Store) EventRepo {
	return EventRepo{store: store}
}

func (r EventRepo) Append(_ context.Context, episodeID string, events []forage.DomainEvent) error {
	r.store.events[episodeID] = append(r.store.events[episodeID], events...)
	return nil
}

// ListByEpisodeID returns events oldest first. A positive limit keeps the latest ones.
func (r EventRepo) ListByEpisodeID(_ context.Context, episodeID string, limit int) ([]forage.DomainEvent, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	events := r.store.events[episodeID]
	if len(events) == 0 {
		return nil, ports.ErrNotFound
	}
	if limit > 0 && len(events) > limit {
		events = events[len(events)-limit:]
	}
	return append([]forage.DomainEvent{}, events...), nil
}
