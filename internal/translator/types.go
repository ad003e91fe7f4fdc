package translator

import (
	"context"
	"time"
)

// Config carries the per-run translation settings shared by every chunk.
type Config struct {
	Model       string        `mapstructure:"model" json:"model"`
	Temperature float32       `mapstructure:"temperature" json:"temperature"`
	Glossary    string        `mapstructure:"glossary" json:"glossary"`
	SourceLang  string        `mapstructure:"source_lang" json:"source_lang"`
	TargetLang  string        `mapstructure:"target_lang" json:"target_lang"`
	APIKey      string        `mapstructure:"api_key" json:"api_key"`
	BaseURL     string        `mapstructure:"base_url" json:"base_url"`
	Credentials string        `mapstructure:"credentials" json:"credentials"`
	Timeout     time.Duration `mapstructure:"timeout" json:"timeout"`
}

// applyTimeout derives a per-request deadline from Timeout. A zero
// Timeout leaves ctx unchanged.
func (c Config) applyTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.Timeout > 0 {
		return context.WithTimeout(ctx, c.Timeout)
	}
	return ctx, func() {}
}

// ChunkTranslator translates one chunk of a document. Implementations
// classify failures with NewTransient / NewPermanent so the executor can
// decide whether to retry.
type ChunkTranslator interface {
	Name() string
	TranslateChunk(ctx context.Context, cfg Config, text string) (string, error)
}
