package translator

import (
	"context"
	"fmt"

	translate "cloud.google.com/go/translate"
	"golang.org/x/text/language"
	"google.golang.org/api/option"
)

// GoogleTranslator translates chunks through the Google Cloud Translation
// API. It is the non-LLM path: the prompt template and glossary do not
// apply, only the raw chunk text is sent.
type GoogleTranslator struct{}

func NewGoogleTranslator() *GoogleTranslator {
	return &GoogleTranslator{}
}

func (s *GoogleTranslator) Name() string {
	return "google"
}

func (s *GoogleTranslator) TranslateChunk(ctx context.Context, cfg Config, text string) (string, error) {
	ctx, cancel := cfg.applyTimeout(ctx)
	defer cancel()

	targetLangTag, err := language.Parse(cfg.TargetLang)
	if err != nil {
		return "", NewPermanent(fmt.Errorf("invalid target language: %w", err))
	}

	opts := []option.ClientOption{}
	if cfg.Credentials != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.Credentials))
	}

	client, err := translate.NewClient(ctx, opts...)
	if err != nil {
		return "", NewTransient(fmt.Errorf("failed to create client: %w", err))
	}
	defer client.Close()

	var translations []translate.Translation
	if cfg.SourceLang == "" || cfg.SourceLang == "auto" {
		translations, err = client.Translate(ctx, []string{text}, targetLangTag, nil)
	} else {
		sourceLangTag, _ := language.Parse(cfg.SourceLang)
		translations, err = client.Translate(ctx, []string{text}, targetLangTag, &translate.Options{
			Source: sourceLangTag,
		})
	}
	if err != nil {
		return "", NewTransient(fmt.Errorf("translation failed: %w", err))
	}

	if len(translations) == 0 || translations[0].Text == "" {
		return "", NewPermanent(fmt.Errorf("no translation returned"))
	}

	return translations[0].Text, nil
}
