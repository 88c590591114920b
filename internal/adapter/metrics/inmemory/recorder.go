package inmemory

import (
	"sort"
	"sync"

	"gonum.org/v1/gonum/stat"

	"forager/internal/domain/forage"
)

// window bounds the per-episode samples kept for the move statistics.
const window = 1024

type Snapshot struct {
	EpisodeTotal   uint64            `json:"episode_total"`
	EpisodeSuccess uint64            `json:"episode_success"`
	EpisodeFailure uint64            `json:"episode_failure"`
	ByOutcome      map[string]uint64 `json:"by_outcome"`
	Moves          MoveStats         `json:"moves"`
	CollectRate    float64           `json:"collect_rate"`
}

type MoveStats struct {
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"std_dev"`
	Median float64 `json:"median"`
	Max    float64 `json:"max"`
	// ExploreShare is the mean fraction of an episode's moves spent mapping.
	ExploreShare float64 `json:"explore_share"`
}

type Recorder struct {
	mu        sync.Mutex
	success   uint64
	failure   uint64
	byOutcome map[string]uint64
	moves     []float64
	share     []float64
	rates     []float64
}

func NewRecorder() *Recorder {
	return &Recorder{
		byOutcome: map[string]uint64{},
	}
}

func (r *Recorder) RecordEpisode(report forage.Report) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.success++
	for _, o := range report.Outcomes {
		r.byOutcome[string(o.Outcome)]++
	}
	total := float64(report.TotalMoves())
	r.moves = push(r.moves, total)
	if total > 0 {
		r.share = push(r.share, float64(report.Explore.Moves)/total)
	}
	if n := len(report.Outcomes); n > 0 {
		r.rates = push(r.rates, float64(len(report.Collected))/float64(n))
	}
}

func (r *Recorder) RecordFailure() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failure++
}

func (r *Recorder) Snapshot() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := Snapshot{
		EpisodeSuccess: r.success,
		EpisodeFailure: r.failure,
		EpisodeTotal:   r.success + r.failure,
		ByOutcome:      make(map[string]uint64, len(r.byOutcome)),
	}
	for k, v := range r.byOutcome {
		out.ByOutcome[k] = v
	}
	if len(r.moves) > 0 {
		sorted := append([]float64{}, r.moves...)
		sort.Float64s(sorted)
		out.Moves.Mean, out.Moves.StdDev = stat.MeanStdDev(sorted, nil)
		if len(sorted) == 1 {
			out.Moves.StdDev = 0
		}
		out.Moves.Median = stat.Quantile(0.5, stat.Empirical, sorted, nil)
		out.Moves.Max = sorted[len(sorted)-1]
	}
	if len(r.share) > 0 {
		out.Moves.ExploreShare = stat.Mean(r.share, nil)
	}
	if len(r.rates) > 0 {
		out.CollectRate = stat.Mean(r.rates, nil)
	}
	return out
}

func (r *Recorder) SnapshotAny() any {
	return r.Snapshot()
}

func push(samples []float64, v float64) []float64 {
	samples = append(samples, v)
	if len(samples) > window {
		samples = samples[len(samples)-window:]
	}
	return samples
}
