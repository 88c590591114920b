package forage

import (
	"time"

	"forager/internal/domain/world"
)

type Strategy string

const (
	StrategyRoute    Strategy = "route"
	StrategyGradient Strategy = "gradient"
)

type Outcome string

const (
	OutcomeCollected   Outcome = "collected"
	OutcomeUnreachable Outcome = "unreachable"
	OutcomeStalled     Outcome = "stalled"
	OutcomeVanished    Outcome = "vanished"
)

// TargetOutcome is the per-resource result of one retrieval.
type TargetOutcome struct {
	ResourceID string       `json:"resource_id"`
	Strategy   Strategy     `json:"strategy"`
	Outcome    Outcome      `json:"outcome"`
	Tile       *world.Point `json:"tile,omitempty"`
	Distance   int          `json:"distance"`
	Moves      int          `json:"moves"`
	Probes     int          `json:"probes"`
}

func (o TargetOutcome) Collected() bool {
	return o.Outcome == OutcomeCollected
}

type ExploreStats struct {
	Start    world.Point `json:"start"`
	Open     int         `json:"open"`
	Blocked  int         `json:"blocked"`
	Unknown  int         `json:"unknown"`
	Moves    int         `json:"moves"`
	Probes   int         `json:"probes"`
	MaxDepth int         `json:"max_depth"`
}

// Report is everything an episode leaves behind. The map itself is never kept.
// MoveCost is what the host charged for the completed moves, speed included.
type Report struct {
	EpisodeID  string          `json:"episode_id"`
	Seed       int64           `json:"seed"`
	Size       world.Size      `json:"size"`
	Explore    ExploreStats    `json:"explore"`
	Targets    []string        `json:"targets"`
	Outcomes   []TargetOutcome `json:"outcomes"`
	Collected  []string        `json:"collected"`
	RouteMoves int             `json:"route_moves"`
	ProbeMoves int             `json:"probe_moves"`
	MoveCost   int             `json:"move_cost"`
	StartedAt  time.Time       `json:"started_at"`
	ExploredAt time.Time       `json:"explored_at"`
	FinishedAt time.Time       `json:"finished_at"`
}

func (r Report) TotalMoves() int {
	return r.Explore.Moves + r.RouteMoves + r.ProbeMoves
}

// exploredAt falls back to the episode start for reports saved without it.
func (r Report) exploredAt() time.Time {
	if r.ExploredAt.IsZero() {
		return r.StartedAt
	}
	return r.ExploredAt
}

func (r Report) Uncollected() []string {
	out := make([]string, 0)
	for _, o := range r.Outcomes {
		if !o.Collected() {
			out = append(out, o.ResourceID)
		}
	}
	return out
}

type DomainEvent struct {
	Type       string         `json:"type"`
	OccurredAt time.Time      `json:"occurred_at"`
	Payload    map[string]any `json:"payload"`
}

const (
	EventEpisodeStarted      = "episode_started"
	EventExplorationFinished = "exploration_finished"
	EventTargetCollected     = "target_collected"
	EventTargetUncollected   = "target_uncollected"
	EventEpisodeFinished     = "episode_finished"
)

// Events derives the episode's event log from its report.
func (r Report) Events() []DomainEvent {
	events := []DomainEvent{
		{Type: EventEpisodeStarted, OccurredAt: r.StartedAt, Payload: map[string]any{
			"episode_id": r.EpisodeID,
			"seed":       r.Seed,
			"height":     r.Size.Height,
			"width":      r.Size.Width,
			"targets":    r.Targets,
		}},
		{Type: EventExplorationFinished, OccurredAt: r.exploredAt(), Payload: map[string]any{
			"episode_id": r.EpisodeID,
			"open":       r.Explore.Open,
			"blocked":    r.Explore.Blocked,
			"moves":      r.Explore.Moves,
			"probes":     r.Explore.Probes,
			"max_depth":  r.Explore.MaxDepth,
		}},
	}
	for _, o := range r.Outcomes {
		typ := EventTargetCollected
		if !o.Collected() {
			typ = EventTargetUncollected
		}
		payload := map[string]any{
			"episode_id":  r.EpisodeID,
			"resource_id": o.ResourceID,
			"strategy":    string(o.Strategy),
			"outcome":     string(o.Outcome),
			"moves":       o.Moves,
			"probes":      o.Probes,
		}
		if o.Tile != nil {
			payload["row"] = o.Tile.Row
			payload["col"] = o.Tile.Col
		}
		events = append(events, DomainEvent{Type: typ, OccurredAt: r.FinishedAt, Payload: payload})
	}
	events = append(events, DomainEvent{Type: EventEpisodeFinished, OccurredAt: r.FinishedAt, Payload: map[string]any{
		"episode_id":  r.EpisodeID,
		"collected":   len(r.Collected),
		"uncollected": len(r.Outcomes) - len(r.Collected),
		"total_moves": r.TotalMoves(),
		"move_cost":   r.MoveCost,
	}})
	return events
}
