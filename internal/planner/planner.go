// Package planner distributes the lines of a document into token-bounded
// translation chunks.
//
// Unlike a greedy packer, the planner balances chunk sizes: it first
// computes how many chunks the document needs, then aims every chunk at
// the same real-valued token target. Chunk boundaries always fall between
// lines, never inside one.
package planner

import (
	"fmt"
	"strings"
)

// mergeThreshold is the fraction of the target size below which a trailing
// chunk is merged into its predecessor.
const mergeThreshold = 0.7

// TokenCounter counts tokens in text. *tokenizer.Counter satisfies it.
type TokenCounter interface {
	Count(text string) int
}

// Line is one source line with its precomputed token count. Lines are
// atomic: the planner never splits inside one.
type Line struct {
	Text   string
	Tokens int
}

// Chunk is a contiguous run of lines translated as one unit. Index is the
// stable zero-based position of the chunk within the document.
type Chunk struct {
	Index  int
	Text   string
	Lines  int
	Tokens int
}

// SplitLines splits text into lines (each keeping its trailing newline)
// and counts tokens per line with counter.
func SplitLines(text string, counter TokenCounter) []Line {
	if text == "" {
		return nil
	}
	raw := strings.SplitAfter(text, "\n")
	// SplitAfter leaves a trailing empty element when text ends in \n.
	if raw[len(raw)-1] == "" {
		raw = raw[:len(raw)-1]
	}
	lines := make([]Line, len(raw))
	for i, s := range raw {
		lines[i] = Line{Text: s, Tokens: counter.Count(s)}
	}
	return lines
}

// Plan distributes lines into balanced chunks of at most maxTokens tokens.
//
// When the whole input fits within maxTokens a single chunk is returned.
// Otherwise the number of chunks is ceil(total/maxTokens) and each chunk is
// closed at the first line boundary at or past total/numChunks tokens.
//
// Two exceptions to the limit logic:
//   - a single line larger than maxTokens becomes its own chunk and is the
//     only kind of chunk allowed to exceed the limit
//   - a trailing chunk smaller than 70% of the target is merged into the
//     previous chunk, unless the merged chunk would exceed maxTokens
func Plan(lines []Line, maxTokens int) ([]Chunk, error) {
	if maxTokens <= 0 {
		return nil, fmt.Errorf("max token length must be positive, got %d", maxTokens)
	}
	if len(lines) == 0 {
		return nil, nil
	}

	total := 0
	for _, ln := range lines {
		total += ln.Tokens
	}

	if total <= maxTokens {
		return []Chunk{buildChunk(0, lines)}, nil
	}

	numChunks := (total + maxTokens - 1) / maxTokens
	target := float64(total) / float64(numChunks)

	var chunks []Chunk
	var cur []Line
	curTokens := 0

	flush := func() {
		if len(cur) == 0 {
			return
		}
		chunks = append(chunks, buildChunk(len(chunks), cur))
		cur = nil
		curTokens = 0
	}

	for _, ln := range lines {
		// An oversized line is always a standalone chunk.
		if ln.Tokens > maxTokens {
			flush()
			chunks = append(chunks, buildChunk(len(chunks), []Line{ln}))
			continue
		}
		// Close early rather than let a multi-line chunk exceed the limit.
		if curTokens > 0 && curTokens+ln.Tokens > maxTokens {
			flush()
		}
		cur = append(cur, ln)
		curTokens += ln.Tokens
		if float64(curTokens) >= target {
			flush()
		}
	}
	flush()

	chunks = mergeTrailing(chunks, target, maxTokens)
	return chunks, nil
}

// mergeTrailing folds an undersized last chunk into its predecessor when
// the combined chunk stays within maxTokens.
func mergeTrailing(chunks []Chunk, target float64, maxTokens int) []Chunk {
	n := len(chunks)
	if n < 2 {
		return chunks
	}
	last, prev := chunks[n-1], chunks[n-2]
	if float64(last.Tokens) >= mergeThreshold*target {
		return chunks
	}
	if prev.Tokens+last.Tokens > maxTokens {
		return chunks
	}
	merged := Chunk{
		Index:  prev.Index,
		Text:   prev.Text + last.Text,
		Lines:  prev.Lines + last.Lines,
		Tokens: prev.Tokens + last.Tokens,
	}
	return append(chunks[:n-2], merged)
}

func buildChunk(index int, lines []Line) Chunk {
	var b strings.Builder
	tokens := 0
	for _, ln := range lines {
		b.WriteString(ln.Text)
		tokens += ln.Tokens
	}
	return Chunk{Index: index, Text: b.String(), Lines: len(lines), Tokens: tokens}
}
