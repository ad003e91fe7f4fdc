// Package aggregator collects chunk outcomes as they complete and
// reassembles them into the output document in original chunk order.
package aggregator

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/valpere/doctran/internal/executor"
)

// Metrics summarizes one completed run.
type Metrics struct {
	Successes int
	Failures  int
	// Duration spans from the start of execution to the last outcome.
	Duration time.Duration
}

// Aggregator receives outcomes from concurrently finishing chunks and
// assembles the successful ones in chunk index order. It implements
// executor.Sink and is safe for concurrent use.
type Aggregator struct {
	mu       sync.Mutex
	total    int
	outcomes map[int]executor.Outcome
	started  time.Time
	finished time.Time
}

func New() *Aggregator {
	return &Aggregator{outcomes: make(map[int]executor.Outcome)}
}

// Begin marks the start of a run of total chunks. It resets any state
// from a previous run.
func (a *Aggregator) Begin(total int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.total = total
	a.outcomes = make(map[int]executor.Outcome, total)
	a.started = time.Now()
	a.finished = a.started
}

// Consume records one terminal outcome. Workers call it concurrently in
// completion order; ordering is restored at assembly time.
func (a *Aggregator) Consume(o executor.Outcome) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.outcomes[o.Index] = o
	a.finished = time.Now()
}

// Complete reports whether every chunk announced by Begin has an outcome.
func (a *Aggregator) Complete() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.outcomes) == a.total
}

// Failed returns the failed outcomes sorted by chunk index.
func (a *Aggregator) Failed() []executor.Outcome {
	a.mu.Lock()
	defer a.mu.Unlock()
	var failed []executor.Outcome
	for _, o := range a.outcomes {
		if !o.Success() {
			failed = append(failed, o)
		}
	}
	sort.Slice(failed, func(i, j int) bool { return failed[i].Index < failed[j].Index })
	return failed
}

// Assemble writes the translated document to w: successful chunks in
// chunk index order, separated by one blank line. Failed chunks are
// omitted; callers surface them through Failed and Metrics instead.
func (a *Aggregator) Assemble(w io.Writer) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	wrote := false
	for i := 0; i < a.total; i++ {
		o, ok := a.outcomes[i]
		if !ok || !o.Success() {
			continue
		}
		if wrote {
			if _, err := io.WriteString(w, "\n\n"); err != nil {
				return fmt.Errorf("failed to write separator: %w", err)
			}
		}
		if _, err := io.WriteString(w, strings.TrimRight(o.Text, "\n")); err != nil {
			return fmt.Errorf("failed to write chunk %d: %w", i, err)
		}
		wrote = true
	}
	if wrote {
		if _, err := io.WriteString(w, "\n"); err != nil {
			return fmt.Errorf("failed to write trailing newline: %w", err)
		}
	}
	return nil
}

// Metrics reports success and failure counts and the elapsed time from
// Begin to the last consumed outcome.
func (a *Aggregator) Metrics() Metrics {
	a.mu.Lock()
	defer a.mu.Unlock()

	m := Metrics{Duration: a.finished.Sub(a.started)}
	for _, o := range a.outcomes {
		if o.Success() {
			m.Successes++
		} else {
			m.Failures++
		}
	}
	return m
}
