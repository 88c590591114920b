package mock

import (
	"context"
	"errors"

	"forager/internal/app/ports"
	"forager/internal/domain/world"
)

var ErrMalfunction = errors.New("actuator malfunction")

// Body wraps a working body and misbehaves on cue. Call indexes are 1-based;
// zero disables the fault.
type Body struct {
	ports.Body

	Size         *world.Size
	RefuseMoveAt int
	FailMoveAt   int
	FailSenseAt  int
	Err          error

	moves  int
	senses int
}

func (b *Body) Dimensions(ctx context.Context) (world.Size, error) {
	if b.Size != nil {
		return *b.Size, nil
	}
	return b.Body.Dimensions(ctx)
}

func (b *Body) Move(ctx context.Context, dir world.Direction, speed world.Speed) error {
	b.moves++
	switch b.moves {
	case b.RefuseMoveAt:
		return ports.ErrObstacle
	case b.FailMoveAt:
		return b.err()
	}
	return b.Body.Move(ctx, dir, speed)
}

func (b *Body) Sense(ctx context.Context) (world.Observation, error) {
	b.senses++
	if b.senses == b.FailSenseAt {
		return world.Observation{}, b.err()
	}
	return b.Body.Sense(ctx)
}

func (b *Body) MoveCalls() int {
	return b.moves
}

func (b *Body) err() error {
	if b.Err != nil {
		return b.Err
	}
	return ErrMalfunction
}
