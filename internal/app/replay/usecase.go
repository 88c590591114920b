package replay

import (
	"context"
	"errors"
	"strings"

	"forager/internal/app/ports"
	"forager/internal/domain/forage"
)

var ErrInvalidRequest = errors.New("invalid replay request")

type UseCase struct {
	Events ports.EventRepository
}

func (u UseCase) Execute(ctx context.Context, req Request) (Response, error) {
	if strings.TrimSpace(req.EpisodeID) == "" || req.Limit < 0 {
		return Response{}, ErrInvalidRequest
	}
	events, err := u.Events.ListByEpisodeID(ctx, req.EpisodeID, req.Limit)
	if err != nil {
		return Response{}, err
	}
	events = filterByTimeWindow(events, req.OccurredFrom, req.OccurredTo)
	tally := reconstruct(events)
	events = filterByKind(events, strings.TrimSpace(req.Kind))
	return Response{Events: events, Tally: tally}, nil
}

func filterByKind(events []forage.DomainEvent, kind string) []forage.DomainEvent {
	if kind == "" {
		return events
	}
	out := make([]forage.DomainEvent, 0, len(events))
	for _, evt := range events {
		if evt.Type == kind {
			out = append(out, evt)
		}
	}
	return out
}

func filterByTimeWindow(events []forage.DomainEvent, from, to int64) []forage.DomainEvent {
	if from <= 0 && to <= 0 {
		return events
	}
	out := make([]forage.DomainEvent, 0, len(events))
	for _, evt := range events {
		ts := evt.OccurredAt.Unix()
		if from > 0 && ts < from {
			continue
		}
		if to > 0 && ts > to {
			continue
		}
		out = append(out, evt)
	}
	return out
}

func reconstruct(events []forage.DomainEvent) Tally {
	tally := Tally{Collected: []string{}, Uncollected: []string{}}
	for _, evt := range events {
		id, _ := evt.Payload["resource_id"].(string)
		switch evt.Type {
		case forage.EventTargetCollected:
			tally.Collected = append(tally.Collected, id)
		case forage.EventTargetUncollected:
			tally.Uncollected = append(tally.Uncollected, id)
		case forage.EventEpisodeFinished:
			tally.TotalMoves = int(num(evt.Payload["total_moves"]))
			tally.Finished = true
		}
	}
	return tally
}

// num reads a number that may have been through a JSON round trip.
func num(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case int:
		return float64(n)
	case int64:
		return float64(n)
	default:
		return 0
	}
}
