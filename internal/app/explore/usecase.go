// Package explore maps an unknown torus by walking it depth-first and
// physically backtracking out of every branch.
package explore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"forager/internal/app/ports"
	"forager/internal/domain/forage"
	"forager/internal/domain/world"
)

type UseCase struct {
	Body   ports.Body
	Speed  world.Speed
	Logger *slog.Logger
}

type Result struct {
	Map   *world.Map
	Start world.Point
	// Moves counts successful steps, backtracks included.
	Moves int
	// Probes counts move attempts refused by an obstacle.
	Probes   int
	MaxDepth int
}

func (r Result) Stats() forage.ExploreStats {
	return forage.ExploreStats{
		Start:    r.Start,
		Open:     r.Map.OpenCount(),
		Blocked:  r.Map.BlockedCount(),
		Unknown:  r.Map.UnknownCount(),
		Moves:    r.Moves,
		Probes:   r.Probes,
		MaxDepth: r.MaxDepth,
	}
}

// frame is one entry of the move stack: a tile the agent physically entered,
// the step that brought it there, and the next direction still to try.
type frame struct {
	at      world.Point
	via     world.Direction
	entered bool
	next    int
}

// Execute walks every tile reachable from the agent's position and classifies
// every tile adjacent to one of them. It returns with the agent back on its start tile.
func (u UseCase) Execute(ctx context.Context) (Result, error) {
	size, err := u.Body.Dimensions(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("read dimensions: %w", err)
	}
	m, err := world.NewMap(size)
	if err != nil {
		return Result{}, err
	}
	start, err := u.Body.Location(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("read location: %w", err)
	}
	if !size.Contains(start) {
		return Result{}, &world.MalformedWorldError{Point: &start, Reason: "start outside reported dimensions"}
	}
	res := Result{Map: m, Start: start}
	if err := u.enter(ctx, m, start); err != nil {
		return res, err
	}

	stack := []frame{{at: start}}
	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		if top.next < len(world.Directions) {
			dir := world.Directions[top.next]
			top.next++
			from := top.at
			target := size.Step(from, dir)
			if m.IsClassified(target) {
				continue
			}
			err := u.Body.Move(ctx, dir, u.speed())
			if errors.Is(err, ports.ErrObstacle) {
				res.Probes++
				if err := m.MarkBlocked(target); err != nil {
					return res, err
				}
				continue
			}
			if err != nil {
				return res, fmt.Errorf("move %s from %s: %w", dir, from, err)
			}
			res.Moves++
			if err := u.expectAt(ctx, target); err != nil {
				return res, err
			}
			if err := u.enter(ctx, m, target); err != nil {
				return res, err
			}
			stack = append(stack, frame{at: target, via: dir, entered: true})
			res.MaxDepth = max(res.MaxDepth, len(stack)-1)
			continue
		}

		done := *top
		stack = stack[:len(stack)-1]
		if !done.entered {
			break
		}
		if err := u.backtrack(ctx, done, stack[len(stack)-1].at); err != nil {
			return res, err
		}
		res.Moves++
	}

	u.logger().Info("exploration_finished",
		"start", start.String(),
		"open", m.OpenCount(),
		"blocked", m.BlockedCount(),
		"unknown", m.UnknownCount(),
		"moves", res.Moves,
		"probes", res.Probes,
		"max_depth", res.MaxDepth,
	)
	return res, nil
}

func (u UseCase) enter(ctx context.Context, m *world.Map, at world.Point) error {
	obs, err := u.Body.Sense(ctx)
	if err != nil {
		return fmt.Errorf("sense %s: %w", at, err)
	}
	return m.MarkOpen(at, obs)
}

// backtrack undoes the step that entered f. It must land on parent.
func (u UseCase) backtrack(ctx context.Context, f frame, parent world.Point) error {
	back := f.via.Inverse()
	err := u.Body.Move(ctx, back, u.speed())
	if errors.Is(err, ports.ErrObstacle) {
		return &world.MalformedWorldError{Point: &parent, Reason: fmt.Sprintf("backtrack %s from %s refused", back, f.at)}
	}
	if err != nil {
		return fmt.Errorf("backtrack %s from %s: %w", back, f.at, err)
	}
	return u.expectAt(ctx, parent)
}

func (u UseCase) expectAt(ctx context.Context, want world.Point) error {
	got, err := u.Body.Location(ctx)
	if err != nil {
		return fmt.Errorf("read location: %w", err)
	}
	if got != want {
		return &world.MalformedWorldError{Point: &got, Reason: fmt.Sprintf("expected agent at %s", want)}
	}
	return nil
}

func (u UseCase) speed() world.Speed {
	if u.Speed == "" {
		return world.SpeedNormal
	}
	return u.Speed
}

func (u UseCase) logger() *slog.Logger {
	if u.Logger == nil {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return u.Logger
}
