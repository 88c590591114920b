package world

import (
	"fmt"
	"math"
)

// Point is a (row, col) cell on the torus.
type Point struct {
	Row int `json:"row" yaml:"row"`
	Col int `json:"col" yaml:"col"`
}

func (p Point) String() string {
	return fmt.Sprintf("(%d,%d)", p.Row, p.Col)
}

type Size struct {
	Height int `json:"height" yaml:"height"`
	Width  int `json:"width" yaml:"width"`
}

func (s Size) Validate() error {
	if s.Height < 1 || s.Width < 1 {
		return &MalformedWorldError{Reason: fmt.Sprintf("dimensions %dx%d", s.Height, s.Width)}
	}
	if s.Height > math.MaxInt/s.Width {
		return &MalformedWorldError{Reason: fmt.Sprintf("dimensions %dx%d overflow the tile count", s.Height, s.Width)}
	}
	return nil
}

func (s Size) Area() int {
	return s.Height * s.Width
}

func (s Size) Contains(p Point) bool {
	return p.Row >= 0 && p.Row < s.Height && p.Col >= 0 && p.Col < s.Width
}

// Wrap applies (dRow, dCol) to p modulo the grid dimensions.
func (s Size) Wrap(p Point, dRow, dCol int) Point {
	return Point{Row: mod(p.Row+dRow, s.Height), Col: mod(p.Col+dCol, s.Width)}
}

func (s Size) Step(p Point, d Direction) Point {
	dr, dc := d.Delta()
	return s.Wrap(p, dr, dc)
}

// Index is the row-major offset of p after wrapping.
func (s Size) Index(p Point) int {
	p = s.Wrap(p, 0, 0)
	return p.Row*s.Width + p.Col
}

func (s Size) PointAt(i int) Point {
	return Point{Row: i / s.Width, Col: i % s.Width}
}

type Neighbor struct {
	Dir   Direction
	Point Point
}

// Neighbors lists the cells one step from p in canonical direction order.
// On small grids several entries may name the same cell, or p itself.
func (s Size) Neighbors(p Point) []Neighbor {
	out := make([]Neighbor, 0, len(Directions))
	for _, d := range Directions {
		out = append(out, Neighbor{Dir: d, Point: s.Step(p, d)})
	}
	return out
}

// Distance is the fewest 8-way moves between a and b on an obstacle-free torus.
func (s Size) Distance(a, b Point) int {
	return max(axisDistance(a.Row, b.Row, s.Height), axisDistance(a.Col, b.Col, s.Width))
}

func axisDistance(a, b, n int) int {
	d := mod(a-b, n)
	if n-d < d {
		return n - d
	}
	return d
}

func mod(a, n int) int {
	if n <= 0 {
		return 0
	}
	m := a % n
	if m < 0 {
		m += n
	}
	return m
}

type Direction uint8

const (
	North Direction = iota
	NorthEast
	East
	SouthEast
	South
	SouthWest
	West
	NorthWest
)

// Directions is the canonical iteration order used by exploration, routing and gradient search.
var Directions = [...]Direction{North, NorthEast, East, SouthEast, South, SouthWest, West, NorthWest}

var directionDeltas = [...][2]int{
	North:     {-1, 0},
	NorthEast: {-1, 1},
	East:      {0, 1},
	SouthEast: {1, 1},
	South:     {1, 0},
	SouthWest: {1, -1},
	West:      {0, -1},
	NorthWest: {-1, -1},
}

var directionNames = [...]string{
	North:     "N",
	NorthEast: "NE",
	East:      "E",
	SouthEast: "SE",
	South:     "S",
	SouthWest: "SW",
	West:      "W",
	NorthWest: "NW",
}

func (d Direction) Valid() bool {
	return int(d) < len(Directions)
}

func (d Direction) Delta() (dRow, dCol int) {
	if !d.Valid() {
		return 0, 0
	}
	v := directionDeltas[d]
	return v[0], v[1]
}

func (d Direction) Inverse() Direction {
	return (d + 4) % Direction(len(Directions))
}

func (d Direction) String() string {
	if !d.Valid() {
		return fmt.Sprintf("Direction(%d)", uint8(d))
	}
	return directionNames[d]
}

func (d Direction) MarshalText() ([]byte, error) {
	if !d.Valid() {
		return nil, fmt.Errorf("invalid direction %d", uint8(d))
	}
	return []byte(directionNames[d]), nil
}

func (d *Direction) UnmarshalText(b []byte) error {
	v, err := ParseDirection(string(b))
	if err != nil {
		return err
	}
	*d = v
	return nil
}

func ParseDirection(s string) (Direction, error) {
	for i, name := range directionNames {
		if name == s {
			return Direction(i), nil
		}
	}
	return 0, fmt.Errorf("unknown direction %q", s)
}

type Speed string

const (
	SpeedSlow   Speed = "slow"
	SpeedNormal Speed = "normal"
	SpeedFast   Speed = "fast"
)

func (s Speed) Valid() bool {
	switch s {
	case SpeedSlow, SpeedNormal, SpeedFast:
		return true
	default:
		return false
	}
}
