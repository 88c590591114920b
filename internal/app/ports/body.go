package ports

import (
	"context"

	"forager/internal/domain/world"
)

// Body is the agent's physical presence in a world. Calls are synchronous and
// never issued concurrently.
type Body interface {
	Location(ctx context.Context) (world.Point, error)
	Dimensions(ctx context.Context) (world.Size, error)
	// Move returns nil, ErrObstacle, or a fatal error.
	Move(ctx context.Context, dir world.Direction, speed world.Speed) error
	Sense(ctx context.Context) (world.Observation, error)
	Collect(ctx context.Context, resourceID string) error
}

// Arena is a hosted world for one episode.
type Arena interface {
	Body
	// Bloom places the resources that only exist once mapping is over.
	Bloom(ctx context.Context) error
}

type WorldSpec struct {
	Seed          int64
	Height        int
	Width         int
	ObstacleRatio float64
	Resources     []string
	Emergent      []string
}

type WorldProvider interface {
	Open(ctx context.Context, spec WorldSpec) (Arena, error)
}
