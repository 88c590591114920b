// Package route computes shortest return paths to an origin over a discovered world map.
package route

import (
	"errors"
	"fmt"

	"forager/internal/domain/world"
)

var ErrUnreachable = errors.New("tile unreachable from origin")

const unreached = -1

// Table holds, for every tile, the next hop back toward the origin. It is rebuilt, never patched.
type Table struct {
	size   world.Size
	origin world.Point
	dist   []int
	back   []world.Direction
}

// Build runs a unit-weight shortest path search from origin over the open tiles of m.
// Blocked and unknown tiles are not part of the graph.
func Build(m *world.Map, origin world.Point) *Table {
	size := m.Size()
	origin = size.Wrap(origin, 0, 0)
	t := &Table{
		size:   size,
		origin: origin,
		dist:   make([]int, size.Area()),
		back:   make([]world.Direction, size.Area()),
	}
	for i := range t.dist {
		t.dist[i] = unreached
	}
	t.dist[size.Index(origin)] = 0

	// With unit weights the FIFO frontier pops tiles in nondecreasing distance,
	// which is exactly Dijkstra's extraction order.
	frontier := []world.Point{origin}
	for len(frontier) > 0 {
		cur := frontier[0]
		frontier = frontier[1:]
		next := t.dist[size.Index(cur)] + 1
		for _, n := range size.Neighbors(cur) {
			if !m.IsTraversable(n.Point) {
				continue
			}
			i := size.Index(n.Point)
			if t.dist[i] != unreached && t.dist[i] <= next {
				continue
			}
			t.dist[i] = next
			t.back[i] = n.Dir.Inverse()
			frontier = append(frontier, n.Point)
		}
	}
	return t
}

func (t *Table) Origin() world.Point {
	return t.origin
}

func (t *Table) Distance(p world.Point) (int, bool) {
	d := t.dist[t.size.Index(p)]
	return d, d != unreached
}

func (t *Table) Reachable(p world.Point) bool {
	_, ok := t.Distance(p)
	return ok
}

// Back returns the back-pointer of p. The origin and unreached tiles have none.
func (t *Table) Back(p world.Point) (world.Direction, bool) {
	i := t.size.Index(p)
	if t.dist[i] <= 0 {
		return 0, false
	}
	return t.back[i], true
}

// ReachableCount counts tiles with a finite distance, the origin included.
func (t *Table) ReachableCount() int {
	n := 0
	for _, d := range t.dist {
		if d != unreached {
			n++
		}
	}
	return n
}

// PathHome follows back-pointers from p to the origin. Moving along the result
// in order walks from p to the origin.
func (t *Table) PathHome(p world.Point) ([]world.Direction, error) {
	d, ok := t.Distance(p)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnreachable, p)
	}
	path := make([]world.Direction, 0, d)
	cur := t.size.Wrap(p, 0, 0)
	for cur != t.origin {
		dir, ok := t.Back(cur)
		if !ok {
			return nil, fmt.Errorf("%w: broken back-pointer chain at %s", ErrUnreachable, cur)
		}
		path = append(path, dir)
		cur = t.size.Step(cur, dir)
	}
	return path, nil
}

// Outbound turns a path toward the origin into the path from the origin back out.
func Outbound(home []world.Direction) []world.Direction {
	out := make([]world.Direction, len(home))
	for i, d := range home {
		out[len(home)-1-i] = d.Inverse()
	}
	return out
}
