package tokenizer_test

import (
	"strings"
	"sync"
	"testing"

	"github.com/valpere/doctran/internal/tokenizer"
)

func TestEstimator_Empty(t *testing.T) {
	c := tokenizer.NewEstimator()
	if got := c.Count(""); got != 0 {
		t.Errorf("expected 0 tokens for empty text, got %d", got)
	}
}

func TestEstimator_ShortTextAtLeastOne(t *testing.T) {
	c := tokenizer.NewEstimator()
	if got := c.Count("ab"); got != 1 {
		t.Errorf("expected 1 token for short text, got %d", got)
	}
}

func TestEstimator_FourCharsPerToken(t *testing.T) {
	c := tokenizer.NewEstimator()
	text := strings.Repeat("word", 100) // 400 bytes
	if got := c.Count(text); got != 100 {
		t.Errorf("expected 100 tokens, got %d", got)
	}
}

func TestEstimator_ConcurrentUse(t *testing.T) {
	c := tokenizer.NewEstimator()
	text := strings.Repeat("concurrent text ", 50)
	want := c.Count(text)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				if got := c.Count(text); got != want {
					t.Errorf("expected %d tokens, got %d", want, got)
					return
				}
			}
		}()
	}
	wg.Wait()
}
