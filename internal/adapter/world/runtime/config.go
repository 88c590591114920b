package runtime

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"forager/internal/domain/world"
)

//go:embed defaults.yaml
var defaultsYAML []byte

var ErrInvalidConfig = errors.New("invalid world config")

// MaxTiles caps the area of a hosted world; a request beyond it is refused
// before anything is allocated.
const MaxTiles = 1 << 20

type Config struct {
	Height        int                 `yaml:"height"`
	Width         int                 `yaml:"width"`
	Seed          int64               `yaml:"seed"`
	ObstacleRatio float64             `yaml:"obstacle_ratio"`
	Start         *world.Point        `yaml:"start,omitempty"`
	Resources     []string            `yaml:"resources"`
	Emergent      []string            `yaml:"emergent"`
	Signal        SignalConfig        `yaml:"signal"`
	MoveCost      map[world.Speed]int `yaml:"move_cost"`

	// Layout replaces generation when set: '#' blocked, '.' open, 'S' start,
	// any other rune is looked up in Legend. Resources and Emergent are then ignored.
	Layout []string               `yaml:"layout,omitempty"`
	Legend map[string]LegendEntry `yaml:"legend,omitempty"`
}

type LegendEntry struct {
	ID       string `yaml:"id"`
	Emergent bool   `yaml:"emergent"`
}

// SignalConfig shapes each resource's emission: Strength minus the torus
// distance, cut off beyond Radius. Zero values derive from the grid size.
type SignalConfig struct {
	Strength float64 `yaml:"strength"`
	Radius   int     `yaml:"radius"`
}

func DefaultConfig() Config {
	cfg := Config{}
	if err := yaml.Unmarshal(defaultsYAML, &cfg); err != nil {
		panic(fmt.Sprintf("parsing embedded defaults: %v", err))
	}
	return cfg
}

// LoadConfig overlays the file at path on the embedded defaults. An empty path
// returns the defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("reading world config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing world config: %w", err)
	}
	if len(cfg.Layout) > 0 {
		cfg.Height = len(cfg.Layout)
		cfg.Width = len([]rune(cfg.Layout[0]))
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Size() world.Size {
	if len(c.Layout) > 0 {
		return world.Size{Height: len(c.Layout), Width: len([]rune(c.Layout[0]))}
	}
	return world.Size{Height: c.Height, Width: c.Width}
}

func (c Config) Validate() error {
	size := c.Size()
	if err := size.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if size.Area() > MaxTiles {
		return fmt.Errorf("%w: %dx%d exceeds %d tiles", ErrInvalidConfig, size.Height, size.Width, MaxTiles)
	}
	if c.ObstacleRatio < 0 || c.ObstacleRatio >= 1 {
		return fmt.Errorf("%w: obstacle_ratio %.2f outside [0,1)", ErrInvalidConfig, c.ObstacleRatio)
	}
	if c.Start != nil && !size.Contains(*c.Start) {
		return fmt.Errorf("%w: start %s outside %dx%d", ErrInvalidConfig, c.Start, size.Height, size.Width)
	}
	for i, row := range c.Layout {
		if n := len([]rune(row)); n != size.Width {
			return fmt.Errorf("%w: layout row %d has width %d, want %d", ErrInvalidConfig, i, n, size.Width)
		}
	}
	if len(c.Layout) > 0 {
		start := c.layoutStart()
		if []rune(c.Layout[start.Row])[start.Col] == '#' {
			return fmt.Errorf("%w: start %s is blocked", ErrInvalidConfig, start)
		}
	}
	for key, entry := range c.Legend {
		if len([]rune(key)) != 1 || key == "#" || key == "." || key == "S" {
			return fmt.Errorf("%w: legend key %q", ErrInvalidConfig, key)
		}
		if entry.ID == "" {
			return fmt.Errorf("%w: legend %q has no id", ErrInvalidConfig, key)
		}
	}
	seen := map[string]bool{}
	for _, id := range append(append([]string{}, c.Resources...), c.Emergent...) {
		if id == "" || seen[id] {
			return fmt.Errorf("%w: resource id %q empty or repeated", ErrInvalidConfig, id)
		}
		seen[id] = true
	}
	return nil
}

// layoutStart is where a layout world puts the agent: the 'S' tile, else Start,
// else the origin.
func (c Config) layoutStart() world.Point {
	for r, row := range c.Layout {
		for col, ch := range []rune(row) {
			if ch == 'S' {
				return world.Point{Row: r, Col: col}
			}
		}
	}
	if c.Start != nil {
		return *c.Start
	}
	return world.Point{}
}

func (c Config) costOf(speed world.Speed) int {
	if v, ok := c.MoveCost[speed]; ok {
		return v
	}
	return 1
}
