package executor

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/valpere/doctran/internal/planner"
	"github.com/valpere/doctran/internal/translator"
)

type mockTranslator struct {
	translateFunc func(ctx context.Context, cfg translator.Config, text string) (string, error)
	callCount     atomic.Int32
}

func (m *mockTranslator) Name() string { return "mock" }

func (m *mockTranslator) TranslateChunk(ctx context.Context, cfg translator.Config, text string) (string, error) {
	m.callCount.Add(1)
	if m.translateFunc != nil {
		return m.translateFunc(ctx, cfg, text)
	}
	return "translated: " + text, nil
}

func makeChunks(n int) []planner.Chunk {
	chunks := make([]planner.Chunk, n)
	for i := range chunks {
		chunks[i] = planner.Chunk{Index: i, Text: fmt.Sprintf("chunk %d\n", i), Lines: 1, Tokens: 100}
	}
	return chunks
}

func countSuccesses(outcomes []Outcome) (successes, failures int) {
	for _, o := range outcomes {
		if o.Success() {
			successes++
		} else {
			failures++
		}
	}
	return
}

func TestConfig_Clamping(t *testing.T) {
	svc := &mockTranslator{}

	low := New(svc, Config{MaxWorkers: 0}, translator.Config{}, nil)
	if low.MaxWorkers() != 1 {
		t.Errorf("expected MaxWorkers clamped to 1, got %d", low.MaxWorkers())
	}

	high := New(svc, Config{MaxWorkers: 20}, translator.Config{}, nil)
	if high.MaxWorkers() != MaxWorkersLimit {
		t.Errorf("expected MaxWorkers clamped to %d, got %d", MaxWorkersLimit, high.MaxWorkers())
	}
}

func TestRun_AllChunksSucceed(t *testing.T) {
	svc := &mockTranslator{}
	e := New(svc, Config{MaxWorkers: 3}, translator.Config{}, nil)

	outcomes := e.Run(context.Background(), makeChunks(6), nil)

	if len(outcomes) != 6 {
		t.Fatalf("expected 6 outcomes, got %d", len(outcomes))
	}
	for i, o := range outcomes {
		if o.Index != i {
			t.Errorf("outcome %d has index %d", i, o.Index)
		}
		if !o.Success() {
			t.Errorf("chunk %d unexpectedly failed: %v", i, o.Err)
		}
		if o.Attempts != 1 {
			t.Errorf("chunk %d took %d attempts, expected 1", i, o.Attempts)
		}
		want := fmt.Sprintf("translated: chunk %d\n", i)
		if o.Text != want {
			t.Errorf("chunk %d text %q, expected %q", i, o.Text, want)
		}
		if e.ChunkState(i) != StateSuccess {
			t.Errorf("chunk %d state %s, expected success", i, e.ChunkState(i))
		}
	}
}

func TestRun_EmptyInput(t *testing.T) {
	e := New(&mockTranslator{}, Config{MaxWorkers: 3}, translator.Config{}, nil)
	if outcomes := e.Run(context.Background(), nil, nil); len(outcomes) != 0 {
		t.Errorf("expected no outcomes, got %d", len(outcomes))
	}
}

func TestRun_TransientFailureRetried(t *testing.T) {
	callCount := atomic.Int32{}
	svc := &mockTranslator{
		translateFunc: func(ctx context.Context, cfg translator.Config, text string) (string, error) {
			if callCount.Add(1) < 3 {
				return "", translator.NewTransient(errors.New("rate limited"))
			}
			return "success on 3rd attempt", nil
		},
	}
	e := New(svc, Config{MaxWorkers: 1, MaxRetries: 2}, translator.Config{}, nil)

	outcomes := e.Run(context.Background(), makeChunks(1), nil)

	if !outcomes[0].Success() {
		t.Fatalf("expected success after retries, got %v", outcomes[0].Err)
	}
	if outcomes[0].Attempts != 3 {
		t.Errorf("expected 3 attempts (1 initial + 2 retries), got %d", outcomes[0].Attempts)
	}
}

func TestRun_RetriesExhausted(t *testing.T) {
	svc := &mockTranslator{
		translateFunc: func(ctx context.Context, cfg translator.Config, text string) (string, error) {
			return "", translator.NewTransient(errors.New("still rate limited"))
		},
	}
	e := New(svc, Config{MaxWorkers: 1, MaxRetries: 2}, translator.Config{}, nil)

	outcomes := e.Run(context.Background(), makeChunks(1), nil)

	if outcomes[0].Success() {
		t.Fatal("expected failure after exhausted retries")
	}
	if outcomes[0].Attempts != 3 {
		t.Errorf("expected 3 attempts, got %d", outcomes[0].Attempts)
	}
	if got := svc.callCount.Load(); got != 3 {
		t.Errorf("expected 3 calls, got %d", got)
	}
	if e.ChunkState(0) != StateFailed {
		t.Errorf("expected failed state, got %s", e.ChunkState(0))
	}
}

func TestRun_PermanentFailureNotRetried(t *testing.T) {
	svc := &mockTranslator{
		translateFunc: func(ctx context.Context, cfg translator.Config, text string) (string, error) {
			return "", translator.NewPermanent(errors.New("empty response"))
		},
	}
	e := New(svc, Config{MaxWorkers: 1, MaxRetries: 5}, translator.Config{}, nil)

	outcomes := e.Run(context.Background(), makeChunks(1), nil)

	if outcomes[0].Success() {
		t.Fatal("expected failure")
	}
	if outcomes[0].Attempts != 1 {
		t.Errorf("expected 1 attempt for permanent failure, got %d", outcomes[0].Attempts)
	}
	if got := svc.callCount.Load(); got != 1 {
		t.Errorf("expected 1 call, got %d", got)
	}
}

func TestRun_FailedChunkDoesNotAbortRun(t *testing.T) {
	// 6 chunks, 3 workers, chunk 2 fails permanently.
	svc := &mockTranslator{
		translateFunc: func(ctx context.Context, cfg translator.Config, text string) (string, error) {
			if text == "chunk 2\n" {
				return "", translator.NewPermanent(errors.New("malformed response"))
			}
			return "translated: " + text, nil
		},
	}
	e := New(svc, Config{MaxWorkers: 3}, translator.Config{}, nil)

	outcomes := e.Run(context.Background(), makeChunks(6), nil)

	successes, failures := countSuccesses(outcomes)
	if successes != 5 {
		t.Errorf("expected 5 successes, got %d", successes)
	}
	if failures != 1 {
		t.Errorf("expected 1 failure, got %d", failures)
	}
	if outcomes[2].Success() {
		t.Error("expected chunk 2 to be the failed one")
	}
}

func TestRun_SingleWorkerIsSequential(t *testing.T) {
	var mu sync.Mutex
	var order []string

	svc := &mockTranslator{
		translateFunc: func(ctx context.Context, cfg translator.Config, text string) (string, error) {
			mu.Lock()
			order = append(order, text)
			mu.Unlock()
			return text, nil
		},
	}
	e := New(svc, Config{MaxWorkers: 1}, translator.Config{}, nil)

	e.Run(context.Background(), makeChunks(5), nil)

	for i, text := range order {
		want := fmt.Sprintf("chunk %d\n", i)
		if text != want {
			t.Errorf("position %d processed %q, expected %q (sequential order)", i, text, want)
		}
	}
}

func TestRun_WorkersRunConcurrently(t *testing.T) {
	// With 3 workers and 3 chunks, all three calls must be in flight at
	// once before any is allowed to finish.
	var wg sync.WaitGroup
	wg.Add(3)

	svc := &mockTranslator{
		translateFunc: func(ctx context.Context, cfg translator.Config, text string) (string, error) {
			wg.Done()
			wg.Wait()
			return text, nil
		},
	}
	e := New(svc, Config{MaxWorkers: 3}, translator.Config{}, nil)

	done := make(chan []Outcome, 1)
	go func() {
		done <- e.Run(context.Background(), makeChunks(3), nil)
	}()

	select {
	case outcomes := <-done:
		successes, _ := countSuccesses(outcomes)
		if successes != 3 {
			t.Errorf("expected 3 successes, got %d", successes)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("deadlock: workers never ran concurrently")
	}
}

func TestRun_RetryBackoffApplied(t *testing.T) {
	callCount := atomic.Int32{}
	svc := &mockTranslator{
		translateFunc: func(ctx context.Context, cfg translator.Config, text string) (string, error) {
			if callCount.Add(1) == 1 {
				return "", translator.NewTransient(errors.New("once"))
			}
			return text, nil
		},
	}
	backoff := 50 * time.Millisecond
	e := New(svc, Config{MaxWorkers: 1, MaxRetries: 1, RetryBackoff: backoff}, translator.Config{}, nil)

	start := time.Now()
	outcomes := e.Run(context.Background(), makeChunks(1), nil)

	if !outcomes[0].Success() {
		t.Fatalf("expected success, got %v", outcomes[0].Err)
	}
	if elapsed := time.Since(start); elapsed < backoff {
		t.Errorf("expected at least %v elapsed for backoff, got %v", backoff, elapsed)
	}
}

type recordingSink struct {
	mu       sync.Mutex
	total    int
	consumed []Outcome
}

func (s *recordingSink) Begin(total int) {
	s.mu.Lock()
	s.total = total
	s.mu.Unlock()
}

func (s *recordingSink) Consume(o Outcome) {
	s.mu.Lock()
	s.consumed = append(s.consumed, o)
	s.mu.Unlock()
}

func TestRun_SinkReceivesAllOutcomes(t *testing.T) {
	svc := &mockTranslator{}
	e := New(svc, Config{MaxWorkers: 3}, translator.Config{}, nil)

	sink := &recordingSink{}
	e.Run(context.Background(), makeChunks(4), sink)

	if sink.total != 4 {
		t.Errorf("expected Begin(4), got %d", sink.total)
	}
	if len(sink.consumed) != 4 {
		t.Errorf("expected 4 consumed outcomes, got %d", len(sink.consumed))
	}
	seen := make(map[int]bool)
	for _, o := range sink.consumed {
		seen[o.Index] = true
	}
	for i := 0; i < 4; i++ {
		if !seen[i] {
			t.Errorf("outcome for chunk %d never consumed", i)
		}
	}
}
