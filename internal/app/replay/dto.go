package replay

import "forager/internal/domain/forage"

type Request struct {
	EpisodeID    string
	Limit        int
	Kind         string
	OccurredFrom int64
	OccurredTo   int64
}

type Response struct {
	Events []forage.DomainEvent `json:"events"`
	Tally  Tally                `json:"tally"`
}

// Tally is what the returned events say about the episode.
type Tally struct {
	Collected   []string `json:"collected"`
	Uncollected []string `json:"uncollected"`
	TotalMoves  int      `json:"total_moves"`
	Finished    bool     `json:"finished"`
}
