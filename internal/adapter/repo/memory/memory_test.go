package memory

import (
	"context"
	"errors"
	"testing"

	"forager/internal/app/ports"
	"forager/internal/domain/forage"
)

func TestEpisodeRepo_SaveAndGet(t *testing.T) {
	store := NewStore()
	tx := NewTxManager(store)
	repo := NewEpisodeRepo(store)
	ctx := context.Background()

	report := forage.Report{EpisodeID: "ep-1", Seed: 7, Collected: []string{"apple"}}
	if err := tx.RunInTx(ctx, func(ctx context.Context) error { return repo.Save(ctx, report) }); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := repo.GetByID(ctx, "ep-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Seed != 7 || len(got.Collected) != 1 {
		t.Fatalf("got=%+v", got)
	}
	err = tx.RunInTx(ctx, func(ctx context.Context) error { return repo.Save(ctx, report) })
	if !errors.Is(err, ports.ErrConflict) {
		t.Fatalf("second save: expected ErrConflict, got %v", err)
	}
	if _, err := repo.GetByID(ctx, "missing"); !errors.Is(err, ports.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestEventRepo_ListKeepsLatest(t *testing.T) {
	store := NewStore()
	tx := NewTxManager(store)
	repo := NewEventRepo(store)
	ctx := context.Background()

	events := []forage.DomainEvent{{Type: "a"}, {Type: "b"}, {Type: "c"}}
	if err := tx.RunInTx(ctx, func(ctx context.Context) error { return repo.Append(ctx, "ep-1", events) }); err != nil {
		t.Fatalf("append: %v", err)
	}
	got, err := repo.ListByEpisodeID(ctx, "ep-1", 2)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 2 || got[0].Type != "b" || got[1].Type != "c" {
		t.Fatalf("got=%v want [b c]", got)
	}
	all, _ := repo.ListByEpisodeID(ctx, "ep-1", 0)
	if len(all) != 3 {
		t.Fatalf("unlimited list len=%d want 3", len(all))
	}
	if _, err := repo.ListByEpisodeID(ctx, "ep-2", 0); !errors.Is(err, ports.ErrNotFound) {
		t.Fatalf("unknown episode: expected ErrNotFound, got %v", err)
	}
}

func TestTxManager_RollsBackOnError(t *testing.T) {
	store := NewStore()
	tx := NewTxManager(store)
	episodes := NewEpisodeRepo(store)
	events := NewEventRepo(store)
	ctx := context.Background()

	if err := tx.RunInTx(ctx, func(ctx context.Context) error {
		return events.Append(ctx, "ep-1", []forage.DomainEvent{{Type: "kept"}})
	}); err != nil {
		t.Fatalf("seed events: %v", err)
	}

	boom := errors.New("boom")
	err := tx.RunInTx(ctx, func(ctx context.Context) error {
		if err := episodes.Save(ctx, forage.Report{EpisodeID: "ep-2"}); err != nil {
			return err
		}
		if err := events.Append(ctx, "ep-1", []forage.DomainEvent{{Type: "dropped"}}); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	if _, err := episodes.GetByID(ctx, "ep-2"); !errors.Is(err, ports.ErrNotFound) {
		t.Fatalf("rolled back episode should be gone, got err=%v", err)
	}
	got, err := events.ListByEpisodeID(ctx, "ep-1", 0)
	if err != nil || len(got) != 1 || got[0].Type != "kept" {
		t.Fatalf("events after rollback=%v err=%v want [kept]", got, err)
	}
}
