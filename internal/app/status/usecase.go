package status

import (
	"context"
	"errors"
	"strings"

	"forager/internal/app/ports"
)

var ErrInvalidRequest = errors.New("invalid status request")

type UseCase struct {
	Episodes ports.EpisodeRepository
}

func (u UseCase) Execute(ctx context.Context, req Request) (Response, error) {
	if strings.TrimSpace(req.EpisodeID) == "" {
		return Response{}, ErrInvalidRequest
	}
	report, err := u.Episodes.GetByID(ctx, req.EpisodeID)
	if err != nil {
		return Response{}, err
	}
	return Response{Report: report, Uncollected: report.Uncollected(), TotalMoves: report.TotalMoves()}, nil
}
