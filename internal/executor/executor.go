// Package executor drives every planned chunk to a terminal outcome
// through a bounded pool of concurrent translation workers.
//
// Each chunk moves through PENDING → RUNNING → (RETRYING → RUNNING)* →
// SUCCESS | FAILED. Transient failures are retried with a fixed backoff;
// permanent failures and exhausted retries mark the chunk failed without
// aborting the run. With MaxWorkers == 1 execution is strictly sequential
// in chunk index order.
package executor

import (
	"context"
	"sync"
	"time"

	"github.com/valpere/doctran/internal/planner"
	"github.com/valpere/doctran/internal/translator"
)

const (
	// DefaultMaxWorkers is the pool size used when the caller does not
	// choose one.
	DefaultMaxWorkers = 3
	// MaxWorkersLimit is the hard ceiling on pool size.
	MaxWorkersLimit = 10
	// DefaultMaxRetries is the number of additional attempts granted to
	// a chunk after a transient failure.
	DefaultMaxRetries = 2
)

// Config holds the concurrency and retry settings for one run.
type Config struct {
	// MaxWorkers is clamped to [1, MaxWorkersLimit].
	MaxWorkers int
	// MaxRetries is the number of retry attempts after the first try.
	MaxRetries int
	// RetryBackoff is the fixed delay between attempts on the same chunk.
	RetryBackoff time.Duration
}

func (c Config) clamped() Config {
	if c.MaxWorkers < 1 {
		c.MaxWorkers = 1
	}
	if c.MaxWorkers > MaxWorkersLimit {
		c.MaxWorkers = MaxWorkersLimit
	}
	if c.MaxRetries < 0 {
		c.MaxRetries = 0
	}
	return c
}

// State is the lifecycle position of one chunk.
type State int32

const (
	StatePending State = iota
	StateRunning
	StateRetrying
	StateSuccess
	StateFailed
)

func (s State) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateRunning:
		return "running"
	case StateRetrying:
		return "retrying"
	case StateSuccess:
		return "success"
	case StateFailed:
		return "failed"
	}
	return "unknown"
}

// Outcome is the terminal result of one chunk. Err is nil on success and
// carries the classified failure otherwise.
type Outcome struct {
	Index    int
	Text     string
	Attempts int
	Err      error
}

func (o Outcome) Success() bool { return o.Err == nil }

// Sink receives outcomes as they complete, in completion order. The
// aggregator implements it; a nil sink is allowed.
type Sink interface {
	Begin(total int)
	Consume(o Outcome)
}

// Executor fans chunks out to a bounded worker pool and fans terminal
// outcomes back in.
type Executor struct {
	svc      translator.ChunkTranslator
	cfg      Config
	tcfg     translator.Config
	reporter Reporter

	mu     sync.Mutex
	states []State
}

// New builds an Executor. A nil reporter silences progress reporting.
func New(svc translator.ChunkTranslator, cfg Config, tcfg translator.Config, reporter Reporter) *Executor {
	if reporter == nil {
		reporter = NopReporter{}
	}
	return &Executor{
		svc:      svc,
		cfg:      cfg.clamped(),
		tcfg:     tcfg,
		reporter: reporter,
	}
}

// MaxWorkers reports the clamped pool size in effect.
func (e *Executor) MaxWorkers() int { return e.cfg.MaxWorkers }

// ChunkState returns the current lifecycle state of chunk index.
func (e *Executor) ChunkState(index int) State {
	e.mu.Lock()
	defer e.mu.Unlock()
	if index < 0 || index >= len(e.states) {
		return StatePending
	}
	return e.states[index]
}

func (e *Executor) setState(index int, s State) {
	e.mu.Lock()
	e.states[index] = s
	e.mu.Unlock()
}

// Run drives all chunks to completion and returns outcomes indexed by
// chunk index. Outcomes are additionally streamed to sink in completion
// order. Run never fails: per-chunk errors live inside the outcomes.
func (e *Executor) Run(ctx context.Context, chunks []planner.Chunk, sink Sink) []Outcome {
	total := len(chunks)

	e.mu.Lock()
	e.states = make([]State, total)
	e.mu.Unlock()

	if sink != nil {
		sink.Begin(total)
	}
	e.reporter.RunStarted(total, e.cfg.MaxWorkers)

	if total == 0 {
		return nil
	}

	jobs := make(chan planner.Chunk)
	results := make(chan Outcome, total)

	var wg sync.WaitGroup
	for w := 0; w < e.cfg.MaxWorkers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for chunk := range jobs {
				results <- e.translateChunk(ctx, chunk, total)
			}
		}()
	}

	go func() {
		// Feed in index order so a single worker processes sequentially.
		for _, c := range chunks {
			jobs <- c
		}
		close(jobs)
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	outcomes := make([]Outcome, total)
	for o := range results {
		outcomes[o.Index] = o
		if sink != nil {
			sink.Consume(o)
		}
	}

	return outcomes
}

// translateChunk runs the retry loop for one chunk. All state is local to
// this call except the shared state table and the reporter.
func (e *Executor) translateChunk(ctx context.Context, chunk planner.Chunk, total int) Outcome {
	e.setState(chunk.Index, StateRunning)
	e.reporter.ChunkStarted(chunk.Index, total)

	attempts := 0
	for {
		attempts++
		text, err := e.svc.TranslateChunk(ctx, e.tcfg, chunk.Text)
		if err == nil {
			e.setState(chunk.Index, StateSuccess)
			e.reporter.ChunkFinished(chunk.Index, attempts, nil)
			return Outcome{Index: chunk.Index, Text: text, Attempts: attempts}
		}

		if !translator.IsTransient(err) || attempts > e.cfg.MaxRetries {
			e.setState(chunk.Index, StateFailed)
			e.reporter.ChunkFinished(chunk.Index, attempts, err)
			return Outcome{Index: chunk.Index, Attempts: attempts, Err: err}
		}

		e.setState(chunk.Index, StateRetrying)
		e.reporter.ChunkRetrying(chunk.Index, attempts, err)
		if e.cfg.RetryBackoff > 0 {
			time.Sleep(e.cfg.RetryBackoff)
		}
		e.setState(chunk.Index, StateRunning)
	}
}
