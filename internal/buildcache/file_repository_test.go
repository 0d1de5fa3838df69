package buildcache

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"
)

func newFileRepo(t *testing.T) *FileRepository {
	t.Helper()
	return NewFileRepository(filepath.Join(t.TempDir(), "history.json"))
}

func record(start time.Time, built int) *Record {
	return &Record{
		StartedAt:      start,
		Duration:       2 * time.Second,
		DocumentsBuilt: built,
		Succeeded:      true,
	}
}

func TestLatestOnEmptyRepository(t *testing.T) {
	repo := newFileRepo(t)

	_, err := repo.Latest(context.Background())
	if !errors.Is(err, ErrRecordNotFound) {
		t.Errorf("err = %v, want ErrRecordNotFound", err)
	}
}

func TestSaveAndLatest(t *testing.T) {
	repo := newFileRepo(t)
	ctx := context.Background()

	older := record(time.Date(2026, 8, 20, 10, 0, 0, 0, time.UTC), 5)
	newer := record(time.Date(2026, 8, 24, 10, 0, 0, 0, time.UTC), 7)

	if err := repo.Save(ctx, older); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := repo.Save(ctx, newer); err != nil {
		t.Fatalf("Save: %v", err)
	}

	latest, err := repo.Latest(ctx)
	if err != nil {
		t.Fatalf("Latest: %v", err)
	}
	if latest.DocumentsBuilt != 7 {
		t.Errorf("latest.DocumentsBuilt = %d, want 7", latest.DocumentsBuilt)
	}
	if latest.ID == older.ID {
		t.Error("latest returned the older record")
	}
}

func TestListNewestFirst(t *testing.T) {
	repo := newFileRepo(t)
	ctx := context.Background()

	base := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		if err := repo.Save(ctx, record(base.AddDate(0, 0, i), i)); err != nil {
			t.Fatalf("Save %d: %v", i, err)
		}
	}

	records, err := repo.List(ctx, 3)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("got %d records, want 3", len(records))
	}
	for i := 1; i < len(records); i++ {
		if records[i].StartedAt.After(records[i-1].StartedAt) {
			t.Errorf("records out of order at %d", i)
		}
	}
}

func TestPruneKeepsNewest(t *testing.T) {
	repo := newFileRepo(t)
	ctx := context.Background()

	base := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		if err := repo.Save(ctx, record(base.AddDate(0, 0, i), i)); err != nil {
			t.Fatalf("Save %d: %v", i, err)
		}
	}

	if err := repo.Prune(ctx, 2); err != nil {
		t.Fatalf("Prune: %v", err)
	}

	records, err := repo.List(ctx, 10)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("got %d records after prune, want 2", len(records))
	}
	if records[0].DocumentsBuilt != 4 {
		t.Errorf("newest record built = %d, want 4", records[0].DocumentsBuilt)
	}
}
