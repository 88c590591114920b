package world

import (
	"errors"
	"math"
	"testing"
)

func TestSizeWrap(t *testing.T) {
	s := Size{Height: 3, Width: 4}
	cases := []struct {
		name       string
		p          Point
		dRow, dCol int
		want       Point
	}{
		{"inside", Point{1, 1}, 1, 1, Point{2, 2}},
		{"off top", Point{0, 2}, -1, 0, Point{2, 2}},
		{"off left", Point{1, 0}, 0, -1, Point{1, 3}},
		{"off corner", Point{2, 3}, 1, 1, Point{0, 0}},
		{"large delta", Point{0, 0}, -7, 9, Point{2, 1}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := s.Wrap(tc.p, tc.dRow, tc.dCol); got != tc.want {
				t.Fatalf("Wrap(%v,%d,%d)=%v want %v", tc.p, tc.dRow, tc.dCol, got, tc.want)
			}
		})
	}
}

func TestDirectionInverseReturnsToOrigin(t *testing.T) {
	s := Size{Height: 2, Width: 5}
	for _, d := range Directions {
		for i := 0; i < s.Area(); i++ {
			p := s.PointAt(i)
			if got := s.Step(s.Step(p, d), d.Inverse()); got != p {
				t.Fatalf("step %s then %s from %v landed on %v", d, d.Inverse(), p, got)
			}
		}
		if d.Inverse().Inverse() != d {
			t.Fatalf("inverse of inverse of %s is %s", d, d.Inverse().Inverse())
		}
	}
}

func TestNeighborsCanonicalOrder(t *testing.T) {
	s := Size{Height: 5, Width: 5}
	got := s.Neighbors(Point{0, 0})
	if len(got) != len(Directions) {
		t.Fatalf("expected %d neighbors, got %d", len(Directions), len(got))
	}
	want := []Point{{4, 0}, {4, 1}, {0, 1}, {1, 1}, {1, 0}, {1, 4}, {0, 4}, {4, 4}}
	for i, n := range got {
		if n.Dir != Directions[i] {
			t.Fatalf("neighbor %d dir=%s want %s", i, n.Dir, Directions[i])
		}
		if n.Point != want[i] {
			t.Fatalf("neighbor %s=%v want %v", n.Dir, n.Point, want[i])
		}
	}
}

func TestNeighborsOnSingleCellTorusAreSelf(t *testing.T) {
	s := Size{Height: 1, Width: 1}
	for _, n := range s.Neighbors(Point{}) {
		if n.Point != (Point{}) {
			t.Fatalf("neighbor %s=%v want self", n.Dir, n.Point)
		}
	}
}

func TestSizeDistance(t *testing.T) {
	s := Size{Height: 3, Width: 3}
	if got := s.Distance(Point{0, 0}, Point{2, 2}); got != 1 {
		t.Fatalf("distance across wrap=%d want 1", got)
	}
	wide := Size{Height: 10, Width: 10}
	if got := wide.Distance(Point{1, 1}, Point{4, 8}); got != 4 {
		t.Fatalf("distance=%d want 4", got)
	}
}

func TestSizeValidate(t *testing.T) {
	for _, s := range []Size{{0, 3}, {3, 0}, {-1, 2}, {math.MaxInt/2 + 1, 2}, {math.MaxInt, math.MaxInt}} {
		if err := s.Validate(); !errors.Is(err, ErrMalformedWorld) {
			t.Fatalf("Validate(%+v)=%v want ErrMalformedWorld", s, err)
		}
	}
	if err := (Size{Height: 1, Width: 1}).Validate(); err != nil {
		t.Fatalf("1x1 should be valid, got %v", err)
	}
}

func TestDirectionTextRoundTrip(t *testing.T) {
	for _, d := range Directions {
		b, err := d.MarshalText()
		if err != nil {
			t.Fatalf("marshal %d: %v", d, err)
		}
		var back Direction
		if err := back.UnmarshalText(b); err != nil {
			t.Fatalf("unmarshal %q: %v", b, err)
		}
		if back != d {
			t.Fatalf("round trip %s -> %s", d, back)
		}
	}
	if _, err := ParseDirection("UP"); err == nil {
		t.Fatalf("expected error for unknown direction")
	}
}
