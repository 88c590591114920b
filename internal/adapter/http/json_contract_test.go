package httpadapter

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"forager/internal/app/episode"
	"forager/internal/app/replay"
	"forager/internal/app/status"
	"forager/internal/domain/forage"
	"forager/internal/domain/world"
)

func TestResponseJSONUsesSnakeCase(t *testing.T) {
	now := time.Unix(1700000000, 0).UTC()
	tile := world.Point{Row: 1, Col: 2}
	report := forage.Report{
		EpisodeID: "ep-1",
		Size:      world.Size{Height: 3, Width: 4},
		Explore:   forage.ExploreStats{MaxDepth: 3},
		Outcomes: []forage.TargetOutcome{{
			ResourceID: "apple",
			Strategy:   forage.StrategyRoute,
			Outcome:    forage.OutcomeCollected,
			Tile:       &tile,
		}},
		RouteMoves: 2,
		StartedAt:  now,
		FinishedAt: now,
	}
	event := forage.DomainEvent{Type: "test_event", OccurredAt: now, Payload: map[string]any{"ok": true}}

	cases := []struct {
		name    string
		payload any
		want    []string
		notWant []string
	}{
		{
			name:    "episode",
			payload: episode.Response{Report: report},
			want:    []string{`"episode_id"`, `"max_depth"`, `"resource_id"`, `"route_moves"`, `"started_at"`, `"explored_at"`, `"move_cost"`},
			notWant: []string{`"EpisodeID"`, `"MaxDepth"`, `"RouteMoves"`},
		},
		{
			name:    "status",
			payload: status.Response{Report: report, Uncollected: []string{}, TotalMoves: 2},
			want:    []string{`"report"`, `"uncollected"`, `"total_moves"`},
			notWant: []string{`"TotalMoves"`},
		},
		{
			name:    "replay",
			payload: replay.Response{Events: []forage.DomainEvent{event}},
			want:    []string{`"events"`, `"occurred_at"`, `"tally"`},
			notWant: []string{`"OccurredAt"`},
		},
	}
	for _, tc := range cases {
		b, err := json.Marshal(tc.payload)
		if err != nil {
			t.Fatalf("%s: marshal: %v", tc.name, err)
		}
		s := string(b)
		for _, w := range tc.want {
			if !strings.Contains(s, w) {
				t.Fatalf("%s: expected %s in %s", tc.name, w, s)
			}
		}
		for _, nw := range tc.notWant {
			if strings.Contains(s, nw) {
				t.Fatalf("%s: unexpected %s in %s", tc.name, nw, s)
			}
		}
	}
}
