package gormrepo

import (
	"context"
	"encoding/json"
	"errors"

	"forager/internal/adapter/repo/gorm/model"
	"forager/internal/app/ports"
	"forager/internal/domain/forage"
	"forager/internal/domain/world"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type EpisodeRepo struct {
	db *gorm.DB
}

func NewEpisodeRepo(db *gorm.DB) EpisodeRepo {
	return EpisodeRepo{db: db}
}

func (r EpisodeRepo) Save(ctx context.Context, report forage.Report) error {
	m, err := encodeEpisode(report)
	if err != nil {
		return err
	}
	res := conn(ctx, r.db).Clauses(clause.OnConflict{DoNothing: true}).Create(&m)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ports.ErrConflict
	}
	return nil
}

func (r EpisodeRepo) GetByID(ctx context.Context, episodeID string) (forage.Report, error) {
	var m model.Episode
	if err := conn(ctx, r.db).Where("episode_id = ?", episodeID).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return forage.Report{}, ports.ErrNotFound
		}
		return forage.Report{}, err
	}
	return decodeEpisode(m)
}

func encodeEpisode(r forage.Report) (model.Episode, error) {
	targets, err := json.Marshal(nonNil(r.Targets))
	if err != nil {
		return model.Episode{}, err
	}
	outcomes, err := json.Marshal(r.Outcomes)
	if err != nil {
		return model.Episode{}, err
	}
	if r.Outcomes == nil {
		outcomes = []byte("[]")
	}
	collected, err := json.Marshal(nonNil(r.Collected))
	if err != nil {
		return model.Episode{}, err
	}
	m := model.Episode{
		EpisodeID:     r.EpisodeID,
		Seed:          r.Seed,
		Height:        int32(r.Size.Height),
		Width:         int32(r.Size.Width),
		StartRow:      int32(r.Explore.Start.Row),
		StartCol:      int32(r.Explore.Start.Col),
		OpenTiles:     int32(r.Explore.Open),
		BlockedTiles:  int32(r.Explore.Blocked),
		UnknownTiles:  int32(r.Explore.Unknown),
		ExploreMoves:  int32(r.Explore.Moves),
		ExploreProbes: int32(r.Explore.Probes),
		MaxDepth:      int32(r.Explore.MaxDepth),
		RouteMoves:    int32(r.RouteMoves),
		ProbeMoves:    int32(r.ProbeMoves),
		Targets:       targets,
		Outcomes:      outcomes,
		Collected:     collected,
		StartedAt:     r.StartedAt,
		FinishedAt:    r.FinishedAt,
		MoveCost:      int32(r.MoveCost),
	}
	if !r.ExploredAt.IsZero() {
		at := r.ExploredAt
		m.ExploredAt = &at
	}
	return m, nil
}

func decodeEpisode(m model.Episode) (forage.Report, error) {
	out := forage.Report{
		EpisodeID: m.EpisodeID,
		Seed:      m.Seed,
		Size:      world.Size{Height: int(m.Height), Width: int(m.Width)},
		Explore: forage.ExploreStats{
			Start:    world.Point{Row: int(m.StartRow), Col: int(m.StartCol)},
			Open:     int(m.OpenTiles),
			Blocked:  int(m.BlockedTiles),
			Unknown:  int(m.UnknownTiles),
			Moves:    int(m.ExploreMoves),
			Probes:   int(m.ExploreProbes),
			MaxDepth: int(m.MaxDepth),
		},
		RouteMoves: int(m.RouteMoves),
		ProbeMoves: int(m.ProbeMoves),
		MoveCost:   int(m.MoveCost),
		StartedAt:  m.StartedAt,
		FinishedAt: m.FinishedAt,
	}
	if m.ExploredAt != nil {
		out.ExploredAt = *m.ExploredAt
	}
	if err := json.Unmarshal(m.Targets, &out.Targets); err != nil {
		return forage.Report{}, err
	}
	if err := json.Unmarshal(m.Outcomes, &out.Outcomes); err != nil {
		return forage.Report{}, err
	}
	if err := json.Unmarshal(m.Collected, &out.Collected); err != nil {
		return forage.Report{}, err
	}
	return out, nil
}

func nonNil(ids []string) []string {
	if ids == nil {
		return []string{}
	}
	return ids
}
