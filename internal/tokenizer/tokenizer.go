// Package tokenizer counts tokens the way the translation model sees them.
//
// A Counter is an explicitly constructed service passed by reference to the
// chunk planner and anything else that needs token counts. It is safe for
// concurrent use.
package tokenizer

import (
	"fmt"
	"sync"

	"github.com/pkoukk/tiktoken-go"
)

// encodingName is the BPE encoding used by the supported chat models.
const encodingName = "cl100k_base"

// estimatorCharsPerToken is the heuristic used when no real encoder is
// available: roughly four characters per token for Latin-script text.
const estimatorCharsPerToken = 4

// Counter counts tokens in text. The zero value is not usable; construct
// with New or NewEstimator.
type Counter struct {
	mu  sync.Mutex
	enc *tiktoken.Tiktoken
}

// New returns a Counter backed by the cl100k_base encoder. Loading the
// encoding may fetch the BPE ranks on first use; when that fails the caller
// can fall back to NewEstimator.
func New() (*Counter, error) {
	enc, err := tiktoken.GetEncoding(encodingName)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s encoding: %w", encodingName, err)
	}
	return &Counter{enc: enc}, nil
}

// NewEstimator returns a Counter that estimates token counts from byte
// length instead of running a real encoder. Estimates skew low for CJK
// text, which only makes chunks smaller, never over the limit.
func NewEstimator() *Counter {
	return &Counter{}
}

// Count returns the number of tokens in text.
func (c *Counter) Count(text string) int {
	if text == "" {
		return 0
	}
	if c.enc == nil {
		n := len(text) / estimatorCharsPerToken
		if n == 0 {
			n = 1
		}
		return n
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.enc.Encode(text, nil, nil))
}
