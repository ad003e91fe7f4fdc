package executor

import (
	"fmt"
	"io"
)

// Reporter receives progress events during a run. Implementations must be
// safe for concurrent use; workers call them in parallel.
type Reporter interface {
	RunStarted(totalChunks, maxWorkers int)
	ChunkStarted(index, total int)
	ChunkRetrying(index, attempt int, err error)
	ChunkFinished(index, attempts int, err error)
}

// NopReporter discards all progress events. It is the default so callers
// never need a nil check before reporting.
type NopReporter struct{}

func (NopReporter) RunStarted(totalChunks, maxWorkers int)    {}
func (NopReporter) ChunkStarted(index, total int)             {}
func (NopReporter) ChunkRetrying(index, attempt int, e error) {}
func (NopReporter) ChunkFinished(index, attempts int, e error) {
}

// LogReporter writes one line per event to w, typically stderr.
// fmt.Fprintf to a single writer is safe for concurrent workers.
type LogReporter struct {
	w io.Writer
}

func NewLogReporter(w io.Writer) *LogReporter {
	return &LogReporter{w: w}
}

func (r *LogReporter) RunStarted(totalChunks, maxWorkers int) {
	fmt.Fprintf(r.w, "Translating %d chunks with %d workers\n", totalChunks, maxWorkers)
}

func (r *LogReporter) ChunkStarted(index, total int) {
	fmt.Fprintf(r.w, "Chunk %d/%d started\n", index+1, total)
}

func (r *LogReporter) ChunkRetrying(index, attempt int, err error) {
	fmt.Fprintf(r.w, "Chunk %d attempt %d failed, retrying: %v\n", index+1, attempt, err)
}

func (r *LogReporter) ChunkFinished(index, attempts int, err error) {
	if err != nil {
		fmt.Fprintf(r.w, "Chunk %d failed after %d attempts: %v\n", index+1, attempts, err)
		return
	}
	fmt.Fprintf(r.w, "Chunk %d done (%d attempts)\n", index+1, attempts)
}
