package gormrepo

import (
	"context"
	"encoding/json"

	"forager/internal/adapter/repo/gorm/model"
	"forager/internal/app/ports"
	"forager/internal/domain/forage"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type EventRepo struct {
	db *gorm.DB
}

func NewEventRepo(db *gorm.DB) EventRepo {
	return EventRepo{db: db}
}

func (r EventRepo) Append(ctx context.Context, episodeID string, events []forage.DomainEvent) error {
	if len(events) == 0 {
		return nil
	}
	db := conn(ctx, r.db)
	var last int32
	if err := db.Model(&model.DomainEvent{}).
		Where("episode_id = ?", episodeID).
		Select("COALESCE(MAX(seq), 0)").
		Scan(&last).Error; err != nil {
		return err
	}
	rows := make([]model.DomainEvent, 0, len(events))
	for i, e := range events {
		b, err := json.Marshal(e.Payload)
		if err != nil {
			return err
		}
		rows = append(rows, model.DomainEvent{
			EpisodeID:  episodeID,
			Seq:        last + int32(i) + 1,
			Type:       e.Type,
			OccurredAt: e.OccurredAt,
			Payload:    b,
		})
	}
	return db.Create(&rows).Error
}

// ListByEpisodeID returns events oldest first. A positive limit keeps the latest ones.
func (r EventRepo) ListByEpisodeID(ctx context.Context, episodeID string, limit int) ([]forage.DomainEvent, error) {
	rows := []model.DomainEvent{}
	query := conn(ctx, r.db).
		Where(&model.DomainEvent{EpisodeID: episodeID}).
		Clauses(clause.OrderBy{
			Columns: []clause.OrderByColumn{{Column: clause.Column{Name: "seq"}, Desc: true}},
		})
	if limit > 0 {
		query = query.Limit(limit)
	}
	err := query.Find(&rows).Error
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ports.ErrNotFound
	}

	out := make([]forage.DomainEvent, 0, len(rows))
	for i := len(rows) - 1; i >= 0; i-- {
		row := rows[i]
		var payload map[string]any
		if len(row.Payload) > 0 {
			_ = json.Unmarshal(row.Payload, &payload)
		}
		out = append(out, forage.DomainEvent{
			Type:       row.Type,
			OccurredAt: row.OccurredAt,
			Payload:    payload,
		})
	}
	return out, nil
}
