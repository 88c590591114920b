// Package summary flattens episode reports into CSV rows.
package summary

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"

	"forager/internal/domain/forage"
)

// TargetRow is one requested resource of one episode.
type TargetRow struct {
	EpisodeID  string `csv:"episode_id"`
	Seed       int64  `csv:"seed"`
	ResourceID string `csv:"resource_id"`
	Strategy   string `csv:"strategy"`
	Outcome    string `csv:"outcome"`
	Tile       string `csv:"tile"`
	Distance   int    `csv:"distance"`
	Moves      int    `csv:"moves"`
	Probes     int    `csv:"probes"`
}

// EpisodeRow is the per-episode roll-up.
type EpisodeRow struct {
	EpisodeID    string `csv:"episode_id"`
	Seed         int64  `csv:"seed"`
	Height       int    `csv:"height"`
	Width        int    `csv:"width"`
	Open         int    `csv:"open"`
	Blocked      int    `csv:"blocked"`
	ExploreMoves int    `csv:"explore_moves"`
	RouteMoves   int    `csv:"route_moves"`
	ProbeMoves   int    `csv:"probe_moves"`
	MoveCost     int    `csv:"move_cost"`
	Collected    int    `csv:"collected"`
	Uncollected  int    `csv:"uncollected"`
}

func TargetRows(r forage.Report) []TargetRow {
	rows := make([]TargetRow, 0, len(r.Outcomes))
	for _, o := range r.Outcomes {
		row := TargetRow{
			EpisodeID:  r.EpisodeID,
			Seed:       r.Seed,
			ResourceID: o.ResourceID,
			Strategy:   string(o.Strategy),
			Outcome:    string(o.Outcome),
			Distance:   o.Distance,
			Moves:      o.Moves,
			Probes:     o.Probes,
		}
		if o.Tile != nil {
			row.Tile = o.Tile.String()
		}
		rows = append(rows, row)
	}
	return rows
}

func EpisodeRowOf(r forage.Report) EpisodeRow {
	return EpisodeRow{
		EpisodeID:    r.EpisodeID,
		Seed:         r.Seed,
		Height:       r.Size.Height,
		Width:        r.Size.Width,
		Open:         r.Explore.Open,
		Blocked:      r.Explore.Blocked,
		ExploreMoves: r.Explore.Moves,
		RouteMoves:   r.RouteMoves,
		ProbeMoves:   r.ProbeMoves,
		MoveCost:     r.MoveCost,
		Collected:    len(r.Collected),
		Uncollected:  len(r.Outcomes) - len(r.Collected),
	}
}

// WriteTargets writes the target rows of r with a header line.
func WriteTargets(w io.Writer, r forage.Report) error {
	return gocsv.Marshal(TargetRows(r), w)
}

// Writer appends episodes to targets.csv and episodes.csv under one directory.
// Headers are written once per file.
type Writer struct {
	targets        *os.File
	episodes       *os.File
	targetsHeader  bool
	episodesHeader bool
}

func NewWriter(dir string) (*Writer, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating summary directory: %w", err)
	}
	targets, err := os.Create(filepath.Join(dir, "targets.csv"))
	if err != nil {
		return nil, fmt.Errorf("creating targets.csv: %w", err)
	}
	episodes, err := os.Create(filepath.Join(dir, "episodes.csv"))
	if err != nil {
		targets.Close()
		return nil, fmt.Errorf("creating episodes.csv: %w", err)
	}
	return &Writer{targets: targets, episodes: episodes}, nil
}

func (w *Writer) Append(r forage.Report) error {
	if err := marshal(TargetRows(r), w.targets, &w.targetsHeader); err != nil {
		return fmt.Errorf("writing targets: %w", err)
	}
	if err := marshal([]EpisodeRow{EpisodeRowOf(r)}, w.episodes, &w.episodesHeader); err != nil {
		return fmt.Errorf("writing episodes: %w", err)
	}
	return nil
}

func (w *Writer) Close() error {
	err := w.targets.Close()
	if err2 := w.episodes.Close(); err == nil {
		err = err2
	}
	return err
}

func marshal(records any, f *os.File, headerWritten *bool) error {
	if *headerWritten {
		return gocsv.MarshalWithoutHeaders(records, f)
	}
	if err := gocsv.Marshal(records, f); err != nil {
		return err
	}
	*headerWritten = true
	return nil
}
