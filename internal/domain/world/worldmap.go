package world

import (
	"errors"
	"fmt"
)

var ErrMalformedWorld = errors.New("malformed world")

// MalformedWorldError reports a host that broke the grid contract. It always matches ErrMalformedWorld.
type MalformedWorldError struct {
	Point  *Point
	Reason string
}

func (e *MalformedWorldError) Error() string {
	if e.Point != nil {
		return fmt.Sprintf("%s at %s: %s", ErrMalformedWorld, e.Point, e.Reason)
	}
	return fmt.Sprintf("%s: %s", ErrMalformedWorld, e.Reason)
}

func (e *MalformedWorldError) Unwrap() error {
	return ErrMalformedWorld
}

// Map is the agent's knowledge of the torus for one episode.
type Map struct {
	size    Size
	tiles   []Tile
	open    int
	blocked int
}

func NewMap(size Size) (*Map, error) {
	if err := size.Validate(); err != nil {
		return nil, err
	}
	return &Map{size: size, tiles: make([]Tile, size.Area())}, nil
}

func (m *Map) Size() Size {
	return m.size
}

func (m *Map) Get(p Point) Tile {
	return m.tiles[m.size.Index(p)]
}

func (m *Map) IsTraversable(p Point) bool {
	return m.Get(p).State == TileOpen
}

func (m *Map) IsClassified(p Point) bool {
	return m.Get(p).State != TileUnknown
}

func (m *Map) MarkOpen(p Point, content Observation) error {
	i := m.size.Index(p)
	switch m.tiles[i].State {
	case TileOpen:
		return nil
	case TileBlocked:
		at := m.size.PointAt(i)
		return &MalformedWorldError{Point: &at, Reason: "entered a tile recorded as blocked"}
	}
	m.tiles[i] = Tile{State: TileOpen, Content: content}
	m.open++
	return nil
}

func (m *Map) MarkBlocked(p Point) error {
	i := m.size.Index(p)
	switch m.tiles[i].State {
	case TileBlocked:
		return nil
	case TileOpen:
		at := m.size.PointAt(i)
		return &MalformedWorldError{Point: &at, Reason: "obstacle reported on a tile recorded as open"}
	}
	m.tiles[i].State = TileBlocked
	m.blocked++
	return nil
}

func (m *Map) OpenCount() int {
	return m.open
}

func (m *Map) BlockedCount() int {
	return m.blocked
}

func (m *Map) UnknownCount() int {
	return len(m.tiles) - m.open - m.blocked
}

type Placement struct {
	Point    Point
	Resource Resource
}

// KnownResources lists resources recorded during mapping, row-major.
func (m *Map) KnownResources() []Placement {
	out := make([]Placement, 0)
	for i, t := range m.tiles {
		if t.State != TileOpen {
			continue
		}
		for _, r := range t.Content.Resources {
			out = append(out, Placement{Point: m.size.PointAt(i), Resource: r})
		}
	}
	return out
}

func (m *Map) Holds(resourceID string) (Point, bool) {
	for _, p := range m.KnownResources() {
		if p.Resource.ID == resourceID {
			return p.Point, true
		}
	}
	return Point{}, false
}
