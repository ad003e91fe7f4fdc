package translator

import (
	"context"
	"fmt"

	"github.com/valpere/doctran/internal/validator"
)

// ValidatedTranslator wraps a ChunkTranslator and rejects output that is
// not in the target language. A wrong-language result is a malformed
// response: retrying the same prompt rarely fixes it, so it is classified
// permanent.
type ValidatedTranslator struct {
	inner ChunkTranslator
	v     *validator.Validator
}

func NewValidated(inner ChunkTranslator) *ValidatedTranslator {
	return &ValidatedTranslator{inner: inner, v: validator.New()}
}

func (s *ValidatedTranslator) Name() string {
	return s.inner.Name()
}

func (s *ValidatedTranslator) TranslateChunk(ctx context.Context, cfg Config, text string) (string, error) {
	translated, err := s.inner.TranslateChunk(ctx, cfg, text)
	if err != nil {
		return "", err
	}

	ok, verr := s.v.IsValid(translated, cfg.TargetLang)
	if !ok {
		return "", NewPermanent(fmt.Errorf("translation rejected: %w", verr))
	}

	return translated, nil
}
