// Package collect visits requested resources on a mapped torus. Resources seen
// while mapping are fetched by replaying shortest routes from the origin;
// resources that appeared later are tracked down by climbing their signal.
package collect

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"forager/internal/app/ports"
	"forager/internal/domain/forage"
	"forager/internal/domain/route"
	"forager/internal/domain/world"
)

var ErrInvalidRequest = errors.New("invalid collect request")

type UseCase struct {
	Body   ports.Body
	Speed  world.Speed
	Logger *slog.Logger
}

type Request struct {
	Map     *world.Map
	Targets []string
}

type Response struct {
	Origin    world.Point
	Outcomes  []forage.TargetOutcome
	Collected []string
	// Reachable counts open tiles with a route from the origin, the origin included.
	Reachable int
	// RouteMoves counts committed steps: route legs, gradient commits and walks home.
	RouteMoves int
	// ProbeMoves counts the out-and-back steps spent reading neighbor signals.
	ProbeMoves int
}

func (u UseCase) Execute(ctx context.Context, req Request) (Response, error) {
	if req.Map == nil {
		return Response{}, fmt.Errorf("%w: map is required", ErrInvalidRequest)
	}
	targets := dedupe(req.Targets)
	for _, id := range targets {
		if id == "" {
			return Response{}, fmt.Errorf("%w: empty target id", ErrInvalidRequest)
		}
	}
	origin, err := u.Body.Location(ctx)
	if err != nil {
		return Response{}, fmt.Errorf("read location: %w", err)
	}
	table := route.Build(req.Map, origin)
	r := &run{
		UseCase: u,
		m:       req.Map,
		table:   table,
		resp: Response{
			Origin:    origin,
			Outcomes:  []forage.TargetOutcome{},
			Collected: []string{},
			Reachable: table.ReachableCount(),
		},
	}
	if r.resp.Reachable < req.Map.OpenCount() {
		u.logger().Info("routes_partial", "origin", origin.String(), "reachable", r.resp.Reachable, "open", req.Map.OpenCount())
	}

	wanted := make(map[string]bool, len(targets))
	for _, id := range targets {
		wanted[id] = true
	}
	done := map[string]bool{}
	for _, pl := range req.Map.KnownResources() {
		if !wanted[pl.Resource.ID] || done[pl.Resource.ID] {
			continue
		}
		done[pl.Resource.ID] = true
		if err := r.fetch(ctx, pl); err != nil {
			return r.resp, err
		}
	}
	for _, id := range targets {
		if done[id] {
			continue
		}
		done[id] = true
		if err := r.search(ctx, id); err != nil {
			return r.resp, err
		}
	}
	return r.resp, nil
}

// run carries the state of one Execute call.
type run struct {
	UseCase
	m     *world.Map
	table *route.Table
	resp  Response
}

// fetch walks out to a known resource, collects it and walks back.
func (r *run) fetch(ctx context.Context, pl world.Placement) error {
	at := pl.Point
	out := forage.TargetOutcome{ResourceID: pl.Resource.ID, Strategy: forage.StrategyRoute, Tile: &at}
	d, ok := r.table.Distance(at)
	if !ok {
		out.Outcome = forage.OutcomeUnreachable
		r.record(out)
		return nil
	}
	out.Distance = d
	home, err := r.table.PathHome(at)
	if err != nil {
		return err
	}
	if err := r.walk(ctx, route.Outbound(home)); err != nil {
		return err
	}
	out.Outcome, err = r.collect(ctx, pl.Resource.ID)
	if err != nil {
		return err
	}
	if err := r.walk(ctx, home); err != nil {
		return err
	}
	out.Moves = 2 * len(home)
	r.record(out)
	return nil
}

// search climbs the target's signal from the origin. A neighbor is committed to
// only when it reads strictly higher than the current tile; among neighbors the
// earlier direction wins a tie.
func (r *run) search(ctx context.Context, id string) error {
	size := r.m.Size()
	out := forage.TargetOutcome{ResourceID: id, Strategy: forage.StrategyGradient, Outcome: forage.OutcomeStalled}
	cur := r.resp.Origin
	var committed []world.Direction

	obs, err := r.sense(ctx, cur)
	if err != nil {
		return err
	}
	reading, hasSignal := obs.Intensity(id)
	for hasSignal && !obs.Has(id) && len(committed) < r.m.OpenCount() {
		bestDir, bestObs, bestReading, found := world.Direction(0), world.Observation{}, 0.0, false
		for _, n := range size.Neighbors(cur) {
			if !r.m.IsTraversable(n.Point) {
				continue
			}
			probed, err := r.probe(ctx, cur, n)
			if err != nil {
				return err
			}
			out.Probes++
			v, ok := probed.Intensity(id)
			if ok && (!found || v > bestReading) {
				bestDir, bestObs, bestReading, found = n.Dir, probed, v, true
			}
		}
		if !found || bestReading <= reading {
			break
		}
		if err := r.step(ctx, cur, bestDir); err != nil {
			return err
		}
		committed = append(committed, bestDir)
		cur = size.Step(cur, bestDir)
		obs, reading = bestObs, bestReading
	}
	out.Tile = &cur
	out.Moves = len(committed)
	r.resp.RouteMoves += len(committed)
	if d, ok := r.table.Distance(cur); ok {
		out.Distance = d
	}

	switch {
	case !hasSignal:
		r.logger().Info("emergent_search_stalled", "resource_id", id, "reason", "no_signal")
	case obs.Has(id):
		out.Outcome, err = r.collect(ctx, id)
		if err != nil {
			return err
		}
	default:
		r.logger().Info("emergent_search_stalled", "resource_id", id, "at", cur.String(), "reading", reading)
	}
	r.record(out)
	return r.returnHome(ctx, cur, committed)
}

// probe steps onto n, reads it and steps back onto from.
func (r *run) probe(ctx context.Context, from world.Point, n world.Neighbor) (world.Observation, error) {
	if err := r.step(ctx, from, n.Dir); err != nil {
		return world.Observation{}, err
	}
	obs, err := r.sense(ctx, n.Point)
	if err != nil {
		return world.Observation{}, err
	}
	if err := r.step(ctx, n.Point, n.Dir.Inverse()); err != nil {
		return world.Observation{}, err
	}
	r.resp.ProbeMoves += 2
	return obs, nil
}

func (r *run) returnHome(ctx context.Context, cur world.Point, committed []world.Direction) error {
	home, err := r.table.PathHome(cur)
	if errors.Is(err, route.ErrUnreachable) {
		home, err = route.Outbound(committed), nil
	}
	if err != nil {
		return err
	}
	return r.walk(ctx, home)
}

func (r *run) collect(ctx context.Context, id string) (forage.Outcome, error) {
	err := r.Body.Collect(ctx, id)
	if errors.Is(err, ports.ErrResourceAbsent) {
		return forage.OutcomeVanished, nil
	}
	if err != nil {
		return "", fmt.Errorf("collect %q: %w", id, err)
	}
	r.resp.Collected = append(r.resp.Collected, id)
	return forage.OutcomeCollected, nil
}

// walk replays a committed route from the agent's current tile.
func (r *run) walk(ctx context.Context, dirs []world.Direction) error {
	cur, err := r.Body.Location(ctx)
	if err != nil {
		return fmt.Errorf("read location: %w", err)
	}
	for _, d := range dirs {
		if err := r.step(ctx, cur, d); err != nil {
			return err
		}
		cur = r.m.Size().Step(cur, d)
		r.resp.RouteMoves++
	}
	return nil
}

// step moves across a tile the map records as open. A refusal there means the
// world no longer matches its map.
func (r *run) step(ctx context.Context, from world.Point, d world.Direction) error {
	err := r.Body.Move(ctx, d, r.speed())
	if errors.Is(err, ports.ErrObstacle) {
		to := r.m.Size().Step(from, d)
		return &world.MalformedWorldError{Point: &to, Reason: fmt.Sprintf("mapped open tile refused entry from %s", from)}
	}
	if err != nil {
		return fmt.Errorf("move %s from %s: %w", d, from, err)
	}
	return nil
}

func (r *run) sense(ctx context.Context, at world.Point) (world.Observation, error) {
	obs, err := r.Body.Sense(ctx)
	if err != nil {
		return world.Observation{}, fmt.Errorf("sense %s: %w", at, err)
	}
	return obs, nil
}

func (r *run) record(out forage.TargetOutcome) {
	r.resp.Outcomes = append(r.resp.Outcomes, out)
	attrs := []any{"resource_id", out.ResourceID, "strategy", string(out.Strategy), "outcome", string(out.Outcome), "moves", out.Moves}
	if out.Collected() {
		r.logger().Info("target_collected", attrs...)
		return
	}
	r.logger().Info("target_uncollected", attrs...)
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

func dedupe(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
