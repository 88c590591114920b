package trace

import (
	"context"
	"errors"
	"path/filepath"

	"forager/internal/app/ports"
	"forager/internal/domain/world"
)

const (
	OpMove    = "move"
	OpSense   = "sense"
	OpCollect = "collect"
	OpBloom   = "bloom"
)

const (
	ResultOK       = "ok"
	ResultObstacle = "obstacle"
	ResultAbsent   = "absent"
	ResultError    = "error"
)

type Entry struct {
	Seq      int                `json:"seq"`
	Op       string             `json:"op"`
	Dir      *world.Direction   `json:"dir,omitempty"`
	Speed    world.Speed        `json:"speed,omitempty"`
	Resource string             `json:"resource,omitempty"`
	At       world.Point        `json:"at"`
	Result   string             `json:"result"`
	Detail   string             `json:"detail,omitempty"`
	Sensed   *world.Observation `json:"sensed,omitempty"`
}

// Tracer opens one trace file per episode under Dir.
type Tracer struct {
	Dir string
}

func (t Tracer) Path(episodeID string) string {
	return filepath.Join(t.Dir, episodeID+".jsonl.zst")
}

func (t Tracer) Trace(episodeID string, arena ports.Arena) (ports.TracedArena, error) {
	w, err := NewJSONLZstdWriter(t.Path(episodeID))
	if err != nil {
		return nil, err
	}
	return &Arena{inner: arena, w: w}, nil
}

// Arena forwards every call to the hosted world and logs it. A failed trace
// write never fails the call; the first one is reported by Close.
type Arena struct {
	inner   ports.Arena
	w       *JSONLZstdWriter
	seq     int
	lastErr error
}

func (a *Arena) Location(ctx context.Context) (world.Point, error) {
	return a.inner.Location(ctx)
}

func (a *Arena) Dimensions(ctx context.Context) (world.Size, error) {
	return a.inner.Dimensions(ctx)
}

func (a *Arena) Move(ctx context.Context, dir world.Direction, speed world.Speed) error {
	err := a.inner.Move(ctx, dir, speed)
	result := ResultOK
	switch {
	case errors.Is(err, ports.ErrObstacle):
		result = ResultObstacle
	case err != nil:
		result = ResultError
	}
	a.record(ctx, Entry{Op: OpMove, Dir: &dir, Speed: speed, Result: result}, err)
	return err
}

func (a *Arena) Sense(ctx context.Context) (world.Observation, error) {
	obs, err := a.inner.Sense(ctx)
	e := Entry{Op: OpSense, Result: ResultOK}
	if err != nil {
		e.Result = ResultError
	} else {
		e.Sensed = &obs
	}
	a.record(ctx, e, err)
	return obs, err
}

func (a *Arena) Collect(ctx context.Context, resourceID string) error {
	err := a.inner.Collect(ctx, resourceID)
	result := ResultOK
	switch {
	case errors.Is(err, ports.ErrResourceAbsent):
		result = ResultAbsent
	case err != nil:
		result = ResultError
	}
	a.record(ctx, Entry{Op: OpCollect, Resource: resourceID, Result: result}, err)
	return err
}

func (a *Arena) Bloom(ctx context.Context) error {
	err := a.inner.Bloom(ctx)
	e := Entry{Op: OpBloom, Result: ResultOK}
	if err != nil {
		e.Result = ResultError
	}
	a.record(ctx, e, err)
	return err
}

func (a *Arena) Close() error {
	if err := a.w.Close(); err != nil {
		return err
	}
	return a.lastErr
}

func (a *Arena) record(ctx context.Context, e Entry, callErr error) {
	a.seq++
	e.Seq = a.seq
	if callErr != nil && e.Result == ResultError {
		e.Detail = callErr.Error()
	}
	if at, err := a.inner.Location(ctx); err == nil {
		e.At = at
	}
	if err := a.w.Write(e); err != nil && a.lastErr == nil {
		a.lastErr = err
	}
}
