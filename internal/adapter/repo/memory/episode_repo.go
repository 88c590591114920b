package memory

import (
	"context"

	"forager/internal/app/ports"
	"forager/internal/domain/forage"
)

type EpisodeRepo struct {
	store *Store
}

func NewEpisodeRepo(store *Store) EpisodeRepo {
	return EpisodeRepo{store: store}
}

func (r EpisodeRepo) Save(_ context.Context, report forage.Report) error {
	if _, ok := r.store.episodes[report.EpisodeID]; ok {
		return ports.ErrConflict
	}
	r.store.episodes[report.EpisodeID] = report
	return nil
}

func (r EpisodeRepo) GetByID(_ context.Context, episodeID string) (forage.Report, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	report, ok := r.store.episodes[episodeID]
	if !ok {
		return forage.Report{}, ports.ErrNotFound
	}
	return report, nil
}
