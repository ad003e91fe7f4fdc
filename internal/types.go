package internal

import "time"

// RunRecord is one completed translation run as persisted in the run
// history database.
type RunRecord struct {
	ID          string    `json:"id"`
	InputFile   string    `json:"input_file"`
	OutputFile  string    `json:"output_file"`
	SourceLang  string    `json:"source_lang"`
	TargetLang  string    `json:"target_lang"`
	Service     string    `json:"service"`
	Model       string    `json:"model"`
	TotalTokens int       `json:"total_tokens"`
	TotalChunks int       `json:"total_chunks"`
	Successes   int       `json:"successes"`
	Failures    int       `json:"failures"`
	DurationMS  int64     `json:"duration_ms"`
	Timestamp   time.Time `json:"timestamp"`
}

// ChunkRecord is the per-chunk outcome of a run.
type ChunkRecord struct {
	RunID      string `json:"run_id"`
	ChunkIndex int    `json:"chunk_index"`
	Tokens     int    `json:"tokens"`
	Attempts   int    `json:"attempts"`
	State      string `json:"state"`
	Error      string `json:"error,omitempty"`
}
