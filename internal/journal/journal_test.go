package journal

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/ytget/course-archiver/internal/model"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()

	db, err := OpenAndMigrate(filepath.Join(t.TempDir(), "journal.db"))
	if err != nil {
		t.Fatalf("open journal: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	return NewStore(db)
}

func TestMigrate_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.db")
	for i := 0; i < 2; i++ {
		db, err := OpenAndMigrate(path)
		if err != nil {
			t.Fatalf("open %d: %v", i, err)
		}
		var count int
		if err := db.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&count); err != nil {
			t.Fatalf("count migrations: %v", err)
		}
		if count != 1 {
			t.Errorf("Expected 1 applied migration, got %d", count)
		}
		db.Close()
	}
}

func TestStore_RunLifecycle(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	start := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	summary := &model.RunSummary{RunID: "run-1", Input: "data.json", Output: "downloads", StartedAt: start}
	if err := store.StartRun(ctx, summary); err != nil {
		t.Fatalf("StartRun: %v", err)
	}

	got, err := store.GetRun(ctx, "run-1")
	if err != nil {
		t.Fatalf("GetRun: %v", err)
	}
	if got.IsFinished() {
		t.Error("Run must not be finished before FinishRun")
	}

	summary.Modules, summary.Lessons = 2, 5
	summary.Fetched, summary.Skipped, summary.Failed = 3, 4, 1
	summary.FinishedAt = start.Add(90 * time.Second)
	if err := store.FinishRun(ctx, summary); err != nil {
		t.Fatalf("FinishRun: %v", err)
	}

	got, err = store.GetRun(ctx, "run-1")
	if err != nil {
		t.Fatalf("GetRun: %v", err)
	}
	if got.Fetched != 3 || got.Skipped != 4 || got.Failed != 1 || got.Modules != 2 || got.Lessons != 5 {
		t.Errorf("Unexpected counts: %+v", got)
	}
	if got.Duration() != 90*time.Second {
		t.Errorf("Expected 90s duration, got %v", got.Duration())
	}

	if _, err := store.GetRun(ctx, "run-missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
	if err := store.FinishRun(ctx, &model.RunSummary{RunID: "run-missing", FinishedAt: start}); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestStore_RecentRuns(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	base := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	for i, id := range []string{"run-a", "run-b", "run-c"} {
		summary := &model.RunSummary{RunID: id, Input: "in", Output: "out", StartedAt: base.Add(time.Duration(i) * time.Hour)}
		if err := store.StartRun(ctx, summary); err != nil {
			t.Fatalf("StartRun %s: %v", id, err)
		}
	}

	runs, err := store.RecentRuns(ctx, 2)
	if err != nil {
		t.Fatalf("RecentRuns: %v", err)
	}
	if len(runs) != 2 || runs[0].RunID != "run-c" || runs[1].RunID != "run-b" {
		t.Errorf("Expected run-c, run-b; got %+v", runs)
	}
}

func TestStore_RunAssets(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	start := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	if err := store.StartRun(ctx, &model.RunSummary{RunID: "run-1", Input: "in", Output: "out", StartedAt: start}); err != nil {
		t.Fatal(err)
	}

	tasks := []*model.AssetTask{
		{ID: "asset-1", RunID: "run-1", Kind: model.AssetKindVideo, Status: model.FetchStatusFetched, Size: 10, StartedAt: start, FinishedAt: start.Add(time.Second)},
		{ID: "asset-2", RunID: "run-1", Kind: model.AssetKindFile, Status: model.FetchStatusFailed, LastError: "404", StartedAt: start.Add(2 * time.Second)},
	}
	for _, task := range tasks {
		if err := store.RecordAsset(ctx, task); err != nil {
			t.Fatalf("RecordAsset %s: %v", task.ID, err)
		}
	}

	// Recording the same asset again updates it
	tasks[1].Status = model.FetchStatusFetched
	tasks[1].LastError = ""
	if err := store.RecordAsset(ctx, tasks[1]); err != nil {
		t.Fatalf("RecordAsset update: %v", err)
	}

	all, err := store.RunAssets(ctx, "run-1", "")
	if err != nil {
		t.Fatalf("RunAssets: %v", err)
	}
	if len(all) != 2 || all[0].ID != "asset-1" || all[0].Kind != model.AssetKindVideo {
		t.Fatalf("Unexpected assets: %+v", all)
	}
	if all[0].Duration() != time.Second {
		t.Errorf("Expected 1s duration, got %v", all[0].Duration())
	}

	failed, err := store.RunAssets(ctx, "run-1", model.FetchStatusFailed)
	if err != nil {
		t.Fatalf("RunAssets failed: %v", err)
	}
	if len(failed) != 0 {
		t.Errorf("Expected no failed assets after update, got %d", len(failed))
	}
}

func TestRecorder(t *testing.T) {
	store := setupTestStore(t)
	recorder := NewRecorder(store, zerolog.Nop())
	start := time.Now()

	summary := &model.RunSummary{RunID: "run-1", Input: "in", Output: "out", StartedAt: start}
	recorder.OnRun(summary)

	recorder.OnAsset(&model.AssetTask{ID: "asset-1", RunID: "run-1", Kind: model.AssetKindFile, Status: model.FetchStatusFetching})
	recorder.OnAsset(&model.AssetTask{ID: "asset-1", RunID: "run-1", Kind: model.AssetKindFile, Status: model.FetchStatusSkipped})
	recorder.OnAsset(&model.AssetTask{ID: "asset-2", Kind: model.AssetKindFile, Status: model.FetchStatusFailed})

	summary.Skipped = 1
	summary.FinishedAt = start.Add(time.Second)
	recorder.OnRun(summary)

	got, err := store.GetRun(context.Background(), "run-1")
	if err != nil {
		t.Fatalf("GetRun: %v", err)
	}
	if !got.IsFinished() || got.Skipped != 1 {
		t.Errorf("Unexpected run: %+v", got)
	}

	assets, err := store.RunAssets(context.Background(), "run-1", "")
	if err != nil {
		t.Fatal(err)
	}
	if len(assets) != 1 || assets[0].Status != model.FetchStatusSkipped {
		t.Errorf("Expected one skipped asset, got %+v", assets)
	}
}
