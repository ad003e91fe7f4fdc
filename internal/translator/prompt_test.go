package translator

import (
	"strings"
	"testing"
)

func TestRenderPrompt_IncludesGlossaryAndText(t *testing.T) {
	cfg := Config{
		TargetLang: "ko",
		Glossary:   "- attention > 어텐션",
	}
	prompt := RenderPrompt(cfg, "The attention mechanism.")

	if !strings.Contains(prompt, "Korean") {
		t.Error("prompt should name the target language")
	}
	if !strings.Contains(prompt, "- attention > 어텐션") {
		t.Error("prompt should include glossary lines")
	}
	if !strings.HasSuffix(strings.TrimSpace(prompt), "The attention mechanism.") {
		t.Error("prompt should end with the chunk text")
	}
}

func TestRenderPrompt_EmptyGlossary(t *testing.T) {
	prompt := RenderPrompt(Config{TargetLang: "de"}, "text")
	if !strings.Contains(prompt, "(no glossary provided)") {
		t.Error("empty glossary should render a placeholder")
	}
}

func TestLanguageName(t *testing.T) {
	if got := LanguageName("ko"); got != "Korean" {
		t.Errorf("expected Korean, got %q", got)
	}
	if got := LanguageName("uk"); got != "Ukrainian" {
		t.Errorf("expected Ukrainian, got %q", got)
	}
	// Unparseable codes pass through untouched.
	if got := LanguageName("???"); got != "???" {
		t.Errorf("expected passthrough, got %q", got)
	}
}
