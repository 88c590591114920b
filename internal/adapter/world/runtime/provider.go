package runtime

import (
	"context"
	"errors"
	"fmt"

	"forager/internal/app/ports"
)

// Provider hosts a fresh World per episode. Fields left zero in a request fall
// back to the base config.
type Provider struct {
	cfg Config
}

func NewProvider(cfg Config) Provider {
	def := DefaultConfig()
	if cfg.Height <= 0 && len(cfg.Layout) == 0 {
		cfg.Height = def.Height
	}
	if cfg.Width <= 0 && len(cfg.Layout) == 0 {
		cfg.Width = def.Width
	}
	if cfg.MoveCost == nil {
		cfg.MoveCost = def.MoveCost
	}
	return Provider{cfg: cfg}
}

func (p Provider) Config() Config {
	return p.cfg
}

func (p Provider) Open(_ context.Context, spec ports.WorldSpec) (ports.Arena, error) {
	w, err := NewWorld(p.configFor(spec))
	if errors.Is(err, ErrInvalidConfig) {
		return nil, fmt.Errorf("%w: %v", ports.ErrInvalidWorldSpec, err)
	}
	if err != nil {
		return nil, err
	}
	return w, nil
}

func (p Provider) configFor(spec ports.WorldSpec) Config {
	cfg := p.cfg
	cfg.Resources = append([]string{}, p.cfg.Resources...)
	cfg.Emergent = append([]string{}, p.cfg.Emergent...)
	if spec.Seed != 0 {
		cfg.Seed = spec.Seed
	}
	if len(cfg.Layout) > 0 {
		return cfg
	}
	if spec.Height > 0 {
		cfg.Height = spec.Height
	}
	if spec.Width > 0 {
		cfg.Width = spec.Width
	}
	if spec.ObstacleRatio > 0 {
		cfg.ObstacleRatio = spec.ObstacleRatio
	}
	if len(spec.Resources) > 0 {
		cfg.Resources = append([]string{}, spec.Resources...)
	}
	if len(spec.Emergent) > 0 {
		cfg.Emergent = append([]string{}, spec.Emergent...)
	}
	if cfg.Start != nil && !cfg.Size().Contains(*cfg.Start) {
		cfg.Start = nil
	}
	return cfg
}
