package ports

import (
	"context"

	"forager/internal/domain/forage"
)

type EpisodeRepository interface {
	Save(ctx context.Context, report forage.Report) error
	GetByID(ctx context.Context, episodeID string) (forage.Report, error)
}

type EventRepository interface {
	Append(ctx context.Context, episodeID string, events []forage.DomainEvent) error
	ListByEpisodeID(ctx context.Context, episodeID string, limit int) ([]forage.DomainEvent, error)
}
