package status

import "forager/internal/domain/forage"

type Request struct {
	EpisodeID string
}

type Response struct {
	Report      forage.Report `json:"report"`
	Uncollected []string      `json:"uncollected"`
	TotalMoves  int           `json:"total_moves"`
}
