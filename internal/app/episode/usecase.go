// Package episode runs one complete foraging episode: host a world, map it,
// let the emergent resources appear, collect the targets and keep the report.
package episode

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"forager/internal/app/collect"
	"forager/internal/app/explore"
	"forager/internal/app/ports"
	"forager/internal/domain/forage"
	"forager/internal/domain/world"
)

var ErrInvalidRequest = errors.New("invalid episode request")

type UseCase struct {
	TxManager ports.TxManager
	Episodes  ports.EpisodeRepository
	Events    ports.EventRepository
	Worlds    ports.WorldProvider
	Metrics   ports.EpisodeMetrics
	Tracer    ports.Tracer
	Logger    *slog.Logger
	Now       func() time.Time
	NewID     func(now time.Time) (string, error)
}

func (u UseCase) Run(ctx context.Context, req Request) (Response, error) {
	req, err := normalize(req)
	if err != nil {
		return Response{}, err
	}
	nowFn := u.Now
	if nowFn == nil {
		nowFn = time.Now
	}
	newID := u.NewID
	if newID == nil {
		newID = newEpisodeID
	}
	started := nowFn()
	id, err := newID(started)
	if err != nil {
		return Response{}, err
	}
	logger := u.logger().With("episode_id", id)

	report, err := u.play(ctx, logger, id, req, nowFn)
	if err != nil {
		u.recordFailure()
		logger.Error("episode_failed", "err", err)
		return Response{}, err
	}
	report.EpisodeID = id
	report.Targets = req.Targets
	report.StartedAt = started
	report.FinishedAt = nowFn()

	err = u.TxManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := u.Episodes.Save(txCtx, report); err != nil {
			return err
		}
		return u.Events.Append(txCtx, id, report.Events())
	})
	if err != nil {
		u.recordFailure()
		return Response{}, err
	}
	if u.Metrics != nil {
		u.Metrics.RecordEpisode(report)
	}
	logger.Info("episode_finished",
		"collected", len(report.Collected),
		"uncollected", len(report.Outcomes)-len(report.Collected),
		"total_moves", report.TotalMoves(),
		"move_cost", report.MoveCost,
	)
	return Response{Report: report}, nil
}

// seeded is implemented by hosts that generate their world from a seed.
type seeded interface {
	Seed() int64
}

// metered is implemented by hosts that charge for movement.
type metered interface {
	Spent() int
}

// play hosts the world and drives the agent through it. The returned report
// carries everything but the episode bookkeeping.
func (u UseCase) play(ctx context.Context, logger *slog.Logger, id string, req Request, now func() time.Time) (forage.Report, error) {
	arena, err := u.Worlds.Open(ctx, req.World)
	if err != nil {
		return forage.Report{}, fmt.Errorf("open world: %w", err)
	}
	host := arena
	seed := req.World.Seed
	if s, ok := host.(seeded); ok {
		seed = s.Seed()
	}
	if u.Tracer != nil {
		traced, err := u.Tracer.Trace(id, arena)
		if err != nil {
			return forage.Report{}, fmt.Errorf("open trace: %w", err)
		}
		defer func() {
			if err := traced.Close(); err != nil {
				logger.Warn("trace_close_failed", "err", err)
			}
		}()
		arena = traced
	}

	explored, err := explore.UseCase{Body: arena, Speed: req.Speed, Logger: logger}.Execute(ctx)
	if err != nil {
		return forage.Report{}, fmt.Errorf("explore: %w", err)
	}
	exploredAt := now()
	if err := arena.Bloom(ctx); err != nil {
		return forage.Report{}, fmt.Errorf("bloom: %w", err)
	}
	collected, err := collect.UseCase{Body: arena, Speed: req.Speed, Logger: logger}.Execute(ctx, collect.Request{
		Map:     explored.Map,
		Targets: req.Targets,
	})
	if err != nil {
		return forage.Report{}, fmt.Errorf("collect: %w", err)
	}
	cost := 0
	if m, ok := host.(metered); ok {
		cost = m.Spent()
	}
	return forage.Report{
		Seed:       seed,
		Size:       explored.Map.Size(),
		Explore:    explored.Stats(),
		Outcomes:   collected.Outcomes,
		Collected:  collected.Collected,
		RouteMoves: collected.RouteMoves,
		ProbeMoves: collected.ProbeMoves,
		MoveCost:   cost,
		ExploredAt: exploredAt,
	}, nil
}

func normalize(req Request) (Request, error) {
	targets := make([]string, 0, len(req.Targets))
	seen := map[string]bool{}
	for _, id := range req.Targets {
		id = strings.TrimSpace(id)
		if id == "" {
			return Request{}, fmt.Errorf("%w: empty target id", ErrInvalidRequest)
		}
		if seen[id] {
			continue
		}
		seen[id] = true
		targets = append(targets, id)
	}
	if len(targets) == 0 {
		return Request{}, fmt.Errorf("%w: at least one target is required", ErrInvalidRequest)
	}
	req.Targets = targets
	if req.Speed == "" {
		req.Speed = world.SpeedNormal
	}
	if !req.Speed.Valid() {
		return Request{}, fmt.Errorf("%w: unknown speed %q", ErrInvalidRequest, req.Speed)
	}
	w := req.World
	if w.Height < 0 || w.Width < 0 {
		return Request{}, fmt.Errorf("%w: negative world size", ErrInvalidRequest)
	}
	if w.Height > 0 && w.Width > 0 {
		if err := (world.Size{Height: w.Height, Width: w.Width}).Validate(); err != nil {
			return Request{}, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
		}
	}
	if w.ObstacleRatio < 0 || w.ObstacleRatio >= 1 {
		return Request{}, fmt.Errorf("%w: obstacle_ratio must be in [0,1)", ErrInvalidRequest)
	}
	return req, nil
}

func (u UseCase) recordFailure() {
	if u.Metrics != nil {
		u.Metrics.RecordFailure()
	}
}

func (u UseCase) logger() *slog.Logger {
	if u.Logger == nil {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return u.Logger
}
