package explore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"testing"

	"forager/internal/adapter/world/mock"
	"forager/internal/adapter/world/runtime"
	"forager/internal/app/ports"
	"forager/internal/domain/world"
)

func newLayoutWorld(t *testing.T, legend map[string]runtime.LegendEntry, rows ...string) *runtime.World {
	t.Helper()
	w, err := runtime.NewWorld(runtime.Config{Layout: rows, Legend: legend})
	if err != nil {
		t.Fatalf("NewWorld: %v", err)
	}
	return w
}

func TestExecute_CenterObstacleOnThreeByThree(t *testing.T) {
	w := newLayoutWorld(t, nil,
		"S..",
		".#.",
		"...",
	)
	res, err := UseCase{Body: w}.Execute(context.Background())
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	m := res.Map
	if m.UnknownCount() != 0 {
		t.Fatalf("unknown=%d want 0", m.UnknownCount())
	}
	if m.OpenCount() != 8 || m.BlockedCount() != 1 {
		t.Fatalf("open=%d blocked=%d want 8/1", m.OpenCount(), m.BlockedCount())
	}
	center := world.Point{Row: 1, Col: 1}
	if m.Get(center).State != world.TileBlocked {
		t.Fatalf("center state=%v want blocked", m.Get(center).State)
	}
	if got := w.Refusals(center); got != 1 {
		t.Fatalf("obstacle signalled %d times want 1", got)
	}
	if res.Probes != 1 {
		t.Fatalf("probes=%d want 1", res.Probes)
	}
	if res.Moves != 2*(m.OpenCount()-1) {
		t.Fatalf("moves=%d want %d", res.Moves, 2*(m.OpenCount()-1))
	}
	if pos, _ := w.Location(context.Background()); pos != res.Start {
		t.Fatalf("agent ended at %v want start %v", pos, res.Start)
	}
}

func TestExecute_TinyTori(t *testing.T) {
	cases := []struct {
		name string
		rows []string
		open int
	}{
		{name: "1x1", rows: []string{"S"}, open: 1},
		{name: "1x2", rows: []string{"S."}, open: 2},
		{name: "2x1", rows: []string{"S", "."}, open: 2},
		{name: "1x5", rows: []string{"S...."}, open: 5},
		{name: "1x5 wall", rows: []string{"S.#.."}, open: 4},
		{name: "2x2", rows: []string{"S.", ".."}, open: 4},
		{name: "2x2 blocked", rows: []string{"S#", "#."}, open: 2},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := newLayoutWorld(t, nil, tc.rows...)
			res, err := UseCase{Body: w}.Execute(context.Background())
			if err != nil {
				t.Fatalf("execute: %v", err)
			}
			if res.Map.OpenCount() != tc.open {
				t.Fatalf("open=%d want %d", res.Map.OpenCount(), tc.open)
			}
			if res.Map.UnknownCount() != 0 {
				t.Fatalf("unknown=%d want 0", res.Map.UnknownCount())
			}
			if res.Moves != 2*(tc.open-1) {
				t.Fatalf("moves=%d want %d", res.Moves, 2*(tc.open-1))
			}
			if pos, _ := w.Location(context.Background()); pos != res.Start {
				t.Fatalf("agent ended at %v want %v", pos, res.Start)
			}
		})
	}
}

// reachableTruth floods the host's real layout from start.
func reachableTruth(w *runtime.World, size world.Size, start world.Point) map[world.Point]bool {
	seen := map[world.Point]bool{start: true}
	queue := []world.Point{start}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, n := range size.Neighbors(cur) {
			if seen[n.Point] || w.Blocked(n.Point) {
				continue
			}
			seen[n.Point] = true
			queue = append(queue, n.Point)
		}
	}
	return seen
}

func TestExecute_FrontierClosureOnGeneratedWorlds(t *testing.T) {
	ctx := context.Background()
	for seed := int64(1); seed <= 12; seed++ {
		t.Run(fmt.Sprintf("seed %d", seed), func(t *testing.T) {
			w, err := runtime.NewWorld(runtime.Config{
				Height:        7 + int(seed%4),
				Width:         9 + int(seed%3),
				Seed:          seed,
				ObstacleRatio: 0.35,
			})
			if err != nil {
				t.Fatalf("NewWorld: %v", err)
			}
			res, err := UseCase{Body: w}.Execute(ctx)
			if err != nil {
				t.Fatalf("execute: %v", err)
			}
			m := res.Map
			size := m.Size()
			truth := reachableTruth(w, size, res.Start)

			for i := 0; i < size.Area(); i++ {
				p := size.PointAt(i)
				if truth[p] != m.IsTraversable(p) {
					t.Fatalf("%v: reachable=%v open=%v", p, truth[p], m.IsTraversable(p))
				}
				if !m.IsTraversable(p) {
					continue
				}
				for _, n := range size.Neighbors(p) {
					tile := m.Get(n.Point)
					if tile.State == world.TileUnknown {
						t.Fatalf("neighbor %v of open %v left unknown", n.Point, p)
					}
					if (tile.State == world.TileBlocked) != w.Blocked(n.Point) {
						t.Fatalf("%v classified %v, host blocked=%v", n.Point, tile.State, w.Blocked(n.Point))
					}
				}
			}
			if res.Probes != m.BlockedCount() {
				t.Fatalf("probes=%d want one per blocked tile (%d)", res.Probes, m.BlockedCount())
			}
			if res.Moves != 2*(m.OpenCount()-1) {
				t.Fatalf("moves=%d want %d", res.Moves, 2*(m.OpenCount()-1))
			}
			if pos, _ := w.Location(ctx); pos != res.Start {
				t.Fatalf("agent ended at %v want %v", pos, res.Start)
			}
		})
	}
}

func TestExecute_RecordsContentSnapshot(t *testing.T) {
	w := newLayoutWorld(t, map[string]runtime.LegendEntry{
		"a": {ID: "apple"},
		"b": {ID: "berry", Emergent: true},
	},
		"S.a",
		"#.b",
	)
	res, err := UseCase{Body: w}.Execute(context.Background())
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	p, ok := res.Map.Holds("apple")
	if !ok || p != (world.Point{Row: 0, Col: 2}) {
		t.Fatalf("apple at %v,%v want (0,2)", p, ok)
	}
	if _, ok := res.Map.Holds("berry"); ok {
		t.Fatalf("emergent berry must not be mapped before bloom")
	}
	stats := res.Stats()
	if stats.Open != 5 || stats.Blocked != 1 || stats.Unknown != 0 {
		t.Fatalf("stats=%+v", stats)
	}
}

func TestExecute_LogsSummary(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	w := newLayoutWorld(t, nil, "S.", "..")
	if _, err := (UseCase{Body: w, Logger: logger}).Execute(context.Background()); err != nil {
		t.Fatalf("execute: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "exploration_finished") || !strings.Contains(out, "open=4") {
		t.Fatalf("unexpected log output: %s", out)
	}
}

func TestExecute_MalformedDimensions(t *testing.T) {
	for _, size := range []world.Size{
		{Height: 0, Width: 3},
		{Height: math.MaxInt/2 + 1, Width: 4},
	} {
		body := &mock.Body{Body: newLayoutWorld(t, nil, "S.."), Size: &size}
		_, err := UseCase{Body: body}.Execute(context.Background())
		if !errors.Is(err, world.ErrMalformedWorld) {
			t.Fatalf("%dx%d: expected ErrMalformedWorld, got %v", size.Height, size.Width, err)
		}
	}
}

func TestExecute_RefusedBacktrackIsMalformed(t *testing.T) {
	// On "S..": NE to (0,1), NE to (0,2), then the third call is the first backtrack.
	body := &mock.Body{Body: newLayoutWorld(t, nil, "S.."), RefuseMoveAt: 3}
	_, err := UseCase{Body: body}.Execute(context.Background())
	var malformed *world.MalformedWorldError
	if !errors.As(err, &malformed) {
		t.Fatalf("expected MalformedWorldError, got %v", err)
	}
	if malformed.Point == nil || *malformed.Point != (world.Point{Row: 0, Col: 1}) {
		t.Fatalf("malformed point=%v want (0,1)", malformed.Point)
	}
}

func TestExecute_BodyFailuresAreFatal(t *testing.T) {
	cases := []struct {
		name string
		body *mock.Body
	}{
		{name: "move", body: &mock.Body{FailMoveAt: 1}},
		{name: "sense on start", body: &mock.Body{FailSenseAt: 1}},
		{name: "sense after move", body: &mock.Body{FailSenseAt: 2}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tc.body.Body = newLayoutWorld(t, nil, "S..", "...")
			_, err := UseCase{Body: tc.body}.Execute(context.Background())
			if !errors.Is(err, mock.ErrMalfunction) {
				t.Fatalf("expected malfunction, got %v", err)
			}
			if errors.Is(err, world.ErrMalformedWorld) {
				t.Fatalf("body failure must not read as a malformed world: %v", err)
			}
		})
	}
}

// slipperyBody moves twice for every move it is asked to make.
type slipperyBody struct {
	*runtime.World
}

func (b slipperyBody) Move(ctx context.Context, dir world.Direction, speed world.Speed) error {
	if err := b.World.Move(ctx, dir, speed); err != nil {
		return err
	}
	return b.World.Move(ctx, dir, speed)
}

func TestExecute_LocationMismatchIsMalformed(t *testing.T) {
	var body ports.Body = slipperyBody{World: newLayoutWorld(t, nil, "S....")}
	_, err := UseCase{Body: body}.Execute(context.Background())
	if !errors.Is(err, world.ErrMalformedWorld) {
		t.Fatalf("expected ErrMalformedWorld, got %v", err)
	}
}
