package runtime

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sort"
	"sync"

	"forager/internal/app/ports"
	"forager/internal/domain/world"
)

var ErrInvalidMove = errors.New("invalid move")

// World is an in-memory torus hosting one agent for one episode.
type World struct {
	mu       sync.Mutex
	cfg      Config
	size     world.Size
	blocked  []bool
	pos      world.Point
	placed   map[string]world.Point
	pending  map[string]world.Point
	bloomed  bool
	taken    []string
	moves    int
	spent    int
	visits   []int
	refusals []int
}

func NewWorld(cfg Config) (*World, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	size := cfg.Size()
	w := &World{
		cfg:      cfg,
		size:     size,
		blocked:  make([]bool, size.Area()),
		placed:   map[string]world.Point{},
		pending:  map[string]world.Point{},
		visits:   make([]int, size.Area()),
		refusals: make([]int, size.Area()),
	}
	if cfg.Start != nil {
		w.pos = *cfg.Start
	}
	var err error
	if len(cfg.Layout) > 0 {
		err = w.loadLayout()
	} else {
		err = w.generate()
	}
	if err != nil {
		return nil, err
	}
	w.visits[size.Index(w.pos)]++
	return w, nil
}

func (w *World) loadLayout() error {
	startSet := false
	for r, row := range w.cfg.Layout {
		for c, ch := range []rune(row) {
			p := world.Point{Row: r, Col: c}
			switch ch {
			case '#':
				w.blocked[w.size.Index(p)] = true
			case '.':
			case 'S':
				if startSet {
					return fmt.Errorf("%w: layout has more than one start", ErrInvalidConfig)
				}
				w.pos = p
				startSet = true
			default:
				entry, ok := w.cfg.Legend[string(ch)]
				if !ok {
					return fmt.Errorf("%w: layout rune %q at %s not in legend", ErrInvalidConfig, ch, p)
				}
				if err := w.put(entry.ID, p, entry.Emergent); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func (w *World) generate() error {
	for i := range w.blocked {
		p := w.size.PointAt(i)
		w.blocked[i] = p != w.pos && obstacleAt(w.cfg.Seed, p, w.cfg.ObstacleRatio)
	}
	rng := rand.New(rand.NewSource(w.cfg.Seed))
	free := make([]world.Point, 0, w.size.Area())
	for _, i := range rng.Perm(w.size.Area()) {
		p := w.size.PointAt(i)
		if !w.blocked[i] && p != w.pos {
			free = append(free, p)
		}
	}
	ids := append(append([]string{}, w.cfg.Resources...), w.cfg.Emergent...)
	if len(ids) > len(free) {
		return fmt.Errorf("%w: %d resources for %d free tiles", ErrInvalidConfig, len(ids), len(free))
	}
	for i, id := range ids {
		if err := w.put(id, free[i], i >= len(w.cfg.Resources)); err != nil {
			return err
		}
	}
	return nil
}

func (w *World) put(id string, p world.Point, emergent bool) error {
	if _, dup := w.placed[id]; dup {
		return fmt.Errorf("%w: resource %q placed twice", ErrInvalidConfig, id)
	}
	if _, dup := w.pending[id]; dup {
		return fmt.Errorf("%w: resource %q placed twice", ErrInvalidConfig, id)
	}
	if emergent {
		w.pending[id] = p
		return nil
	}
	w.placed[id] = p
	return nil
}

func (w *World) Location(_ context.Context) (world.Point, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.pos, nil
}

func (w *World) Dimensions(_ context.Context) (world.Size, error) {
	return w.size, nil
}

func (w *World) Move(_ context.Context, dir world.Direction, speed world.Speed) error {
	if !dir.Valid() {
		return fmt.Errorf("%w: direction %s", ErrInvalidMove, dir)
	}
	if !speed.Valid() {
		return fmt.Errorf("%w: speed %q", ErrInvalidMove, speed)
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	target := w.size.Step(w.pos, dir)
	i := w.size.Index(target)
	if w.blocked[i] {
		w.refusals[i]++
		return ports.ErrObstacle
	}
	w.pos = target
	w.visits[i]++
	w.moves++
	w.spent += w.cfg.costOf(speed)
	return nil
}

func (w *World) Sense(_ context.Context) (world.Observation, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	obs := world.Observation{Resources: []world.Resource{}, Signals: []world.Signal{}}
	for _, id := range sortedIDs(w.placed) {
		p := w.placed[id]
		if p == w.pos {
			obs.Resources = append(obs.Resources, world.Resource{ID: id})
		}
		if v, ok := w.intensity(p); ok {
			obs.Signals = append(obs.Signals, world.Signal{ResourceID: id, Intensity: v})
		}
	}
	return obs, nil
}

func (w *World) intensity(source world.Point) (float64, bool) {
	d := w.size.Distance(w.pos, source)
	if w.cfg.Signal.Radius > 0 && d > w.cfg.Signal.Radius {
		return 0, false
	}
	strength := w.cfg.Signal.Strength
	if strength <= 0 {
		strength = float64(w.size.Height + w.size.Width)
	}
	v := strength - float64(d)
	if v <= 0 {
		return 0, false
	}
	return v, true
}

func (w *World) Collect(_ context.Context, resourceID string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	p, ok := w.placed[resourceID]
	if !ok || p != w.pos {
		return fmt.Errorf("%w: %q at %s", ports.ErrResourceAbsent, resourceID, w.pos)
	}
	delete(w.placed, resourceID)
	w.taken = append(w.taken, resourceID)
	return nil
}

// Bloom makes the emergent resources appear. Calling it again is a no-op.
func (w *World) Bloom(_ context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.bloomed {
		return nil
	}
	for id, p := range w.pending {
		w.placed[id] = p
	}
	w.pending = map[string]world.Point{}
	w.bloomed = true
	return nil
}

// Place drops a resource on p right away, as a late bloom.
func (w *World) Place(id string, p world.Point) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	p = w.size.Wrap(p, 0, 0)
	if w.blocked[w.size.Index(p)] {
		return fmt.Errorf("%w: %s is blocked", ErrInvalidConfig, p)
	}
	return w.put(id, p, false)
}

func (w *World) Blocked(p world.Point) bool {
	return w.blocked[w.size.Index(p)]
}

func (w *World) ResourceAt(id string) (world.Point, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if p, ok := w.placed[id]; ok {
		return p, true
	}
	p, ok := w.pending[id]
	return p, ok
}

func (w *World) Moves() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.moves
}

// Spent is the summed move cost by speed.
func (w *World) Spent() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.spent
}

func (w *World) Visits(p world.Point) int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.visits[w.size.Index(p)]
}

// Refusals counts refused attempts to enter p.
func (w *World) Refusals(p world.Point) int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.refusals[w.size.Index(p)]
}

func (w *World) Collected() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]string{}, w.taken...)
}

func (w *World) Seed() int64 {
	return w.cfg.Seed
}

func obstacleAt(seed int64, p world.Point, ratio float64) bool {
	if ratio <= 0 {
		return false
	}
	return float64(tileSeed(seed, p)%1000) < ratio*1000
}

func tileSeed(seed int64, p world.Point) int {
	v := p.Col*73856093 ^ p.Row*19349663 ^ int(seed)*83492791
	if v < 0 {
		v = -v
	}
	return v
}

func sortedIDs(m map[string]world.Point) []string {
	out := make([]string, 0, len(m))
	for id := range m {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}
