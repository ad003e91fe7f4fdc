package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/valpere/doctran/internal"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	s, err := New(dbPath)
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleRun(id string) internal.RunRecord {
	return internal.RunRecord{
		ID:          id,
		InputFile:   "paper.txt",
		OutputFile:  "paper.ko.txt",
		SourceLang:  "en",
		TargetLang:  "ko",
		Service:     "openai",
		Model:       "gpt-5-mini",
		TotalTokens: 27707,
		TotalChunks: 2,
		Successes:   2,
		Failures:    0,
		DurationMS:  4200,
		Timestamp:   time.Now(),
	}
}

func TestStore_New(t *testing.T) {
	s := newTestStore(t)
	if s == nil {
		t.Fatal("expected non-nil store")
	}
}

func TestStore_New_CreatesParentDirectory(t *testing.T) {
	// Default configuration points at ./data/doctran.db before ./data
	// exists; New must create the directory itself.
	dbPath := filepath.Join(t.TempDir(), "data", "doctran.db")

	s, err := New(dbPath)
	if err != nil {
		t.Fatalf("failed to create store in missing directory: %v", err)
	}
	defer s.Close()

	if _, err := os.Stat(filepath.Dir(dbPath)); err != nil {
		t.Errorf("expected parent directory created: %v", err)
	}
}

func TestStore_New_InvalidPath(t *testing.T) {
	// A regular file where a directory is needed cannot be MkdirAll'd.
	tmpDir := t.TempDir()
	blocker := filepath.Join(tmpDir, "blocker")
	if err := os.WriteFile(blocker, []byte("x"), 0644); err != nil {
		t.Fatalf("failed to write blocker file: %v", err)
	}

	_, err := New(filepath.Join(blocker, "sub", "test.db"))
	if err == nil {
		t.Error("expected error for invalid path")
	}
}

func TestStore_SaveAndListRuns(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.SaveRun(ctx, sampleRun("run-1")); err != nil {
		t.Fatalf("SaveRun failed: %v", err)
	}

	runs, err := s.ListRuns(ctx)
	if err != nil {
		t.Fatalf("ListRuns failed: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("expected 1 run, got %d", len(runs))
	}
	r := runs[0]
	if r.ID != "run-1" {
		t.Errorf("expected run-1, got %q", r.ID)
	}
	if r.TargetLang != "ko" {
		t.Errorf("expected ko, got %q", r.TargetLang)
	}
	if r.TotalChunks != 2 || r.Successes != 2 || r.Failures != 0 {
		t.Errorf("unexpected counts: chunks=%d successes=%d failures=%d",
			r.TotalChunks, r.Successes, r.Failures)
	}
}

func TestStore_SaveChunkResults(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.SaveRun(ctx, sampleRun("run-1")); err != nil {
		t.Fatalf("SaveRun failed: %v", err)
	}

	chunks := []internal.ChunkRecord{
		{RunID: "run-1", ChunkIndex: 0, Tokens: 13900, Attempts: 1, State: "success"},
		{RunID: "run-1", ChunkIndex: 1, Tokens: 13807, Attempts: 3, State: "failed", Error: "rate limited"},
	}
	if err := s.SaveChunkResults(ctx, chunks); err != nil {
		t.Fatalf("SaveChunkResults failed: %v", err)
	}

	got, err := s.GetRunChunks(ctx, "run-1")
	if err != nil {
		t.Fatalf("GetRunChunks failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 chunks, got %d", len(got))
	}
	if got[0].ChunkIndex != 0 || got[1].ChunkIndex != 1 {
		t.Errorf("expected chunks in index order, got %d then %d", got[0].ChunkIndex, got[1].ChunkIndex)
	}
	if got[1].Error != "rate limited" {
		t.Errorf("expected error preserved, got %q", got[1].Error)
	}
}

func TestStore_ListRuns_MostRecentFirst(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	older := sampleRun("run-old")
	older.Timestamp = time.Now().Add(-time.Hour)
	newer := sampleRun("run-new")

	if err := s.SaveRun(ctx, older); err != nil {
		t.Fatalf("SaveRun failed: %v", err)
	}
	if err := s.SaveRun(ctx, newer); err != nil {
		t.Fatalf("SaveRun failed: %v", err)
	}

	runs, err := s.ListRuns(ctx)
	if err != nil {
		t.Fatalf("ListRuns failed: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(runs))
	}
	if runs[0].ID != "run-new" {
		t.Errorf("expected newest run first, got %q", runs[0].ID)
	}
}

func TestStore_Stats(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	stats, err := s.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats failed: %v", err)
	}
	if stats.TotalRuns != 0 {
		t.Errorf("expected 0 runs, got %d", stats.TotalRuns)
	}

	if err := s.SaveRun(ctx, sampleRun("run-1")); err != nil {
		t.Fatalf("SaveRun failed: %v", err)
	}
	chunks := []internal.ChunkRecord{
		{RunID: "run-1", ChunkIndex: 0, Attempts: 1, State: "success"},
		{RunID: "run-1", ChunkIndex: 1, Attempts: 3, State: "failed", Error: "boom"},
	}
	if err := s.SaveChunkResults(ctx, chunks); err != nil {
		t.Fatalf("SaveChunkResults failed: %v", err)
	}

	stats, err = s.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats failed: %v", err)
	}
	if stats.TotalRuns != 1 {
		t.Errorf("expected 1 run, got %d", stats.TotalRuns)
	}
	if stats.TotalChunks != 2 {
		t.Errorf("expected 2 chunks, got %d", stats.TotalChunks)
	}
	if stats.TotalRetried != 1 {
		t.Errorf("expected 1 retried chunk, got %d", stats.TotalRetried)
	}
	if stats.TotalFailed != 1 {
		t.Errorf("expected 1 failed chunk, got %d", stats.TotalFailed)
	}
}

func TestStore_DeleteRun(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.RecordRun(ctx, sampleRun("run-1"), []internal.ChunkRecord{
		{RunID: "run-1", ChunkIndex: 0, State: "success"},
	}); err != nil {
		t.Fatalf("RecordRun failed: %v", err)
	}

	if err := s.DeleteRun(ctx, "run-1"); err != nil {
		t.Fatalf("DeleteRun failed: %v", err)
	}

	runs, err := s.ListRuns(ctx)
	if err != nil {
		t.Fatalf("ListRuns failed: %v", err)
	}
	if len(runs) != 0 {
		t.Errorf("expected 0 runs after delete, got %d", len(runs))
	}
	chunks, err := s.GetRunChunks(ctx, "run-1")
	if err != nil {
		t.Fatalf("GetRunChunks failed: %v", err)
	}
	if len(chunks) != 0 {
		t.Errorf("expected 0 chunks after delete, got %d", len(chunks))
	}
}

func TestStore_ClearRuns(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.SaveRun(ctx, sampleRun("run-1")); err != nil {
		t.Fatalf("SaveRun failed: %v", err)
	}
	if err := s.SaveRun(ctx, sampleRun("run-2")); err != nil {
		t.Fatalf("SaveRun failed: %v", err)
	}

	count, err := s.ClearRuns(ctx)
	if err != nil {
		t.Fatalf("ClearRuns failed: %v", err)
	}
	if count != 2 {
		t.Errorf("expected 2 cleared, got %d", count)
	}

	runs, err := s.ListRuns(ctx)
	if err != nil {
		t.Fatalf("ListRuns failed: %v", err)
	}
	if len(runs) != 0 {
		t.Errorf("expected 0 runs after clear, got %d", len(runs))
	}
}
