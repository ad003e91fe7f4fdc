package translator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/valpere/doctran/internal/postprocess"
)

// DefaultOllamaModel is used when no model is configured.
const DefaultOllamaModel = "llama3.2"

// OllamaTranslator translates chunks against a self-hosted Ollama server.
type OllamaTranslator struct {
	baseURL string
	client  *http.Client
}

// maxRequestTimeout bounds a single generate call when the caller sets
// no timeout of its own. Local models can be slow on long chunks.
const maxRequestTimeout = 300 * time.Second

func NewOllamaTranslator(baseURL string) *OllamaTranslator {
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}
	return &OllamaTranslator{
		baseURL: baseURL,
		client:  &http.Client{Timeout: maxRequestTimeout},
	}
}

func (s *OllamaTranslator) Name() string {
	return "ollama"
}

func (s *OllamaTranslator) TranslateChunk(ctx context.Context, cfg Config, text string) (string, error) {
	ctx, cancel := cfg.applyTimeout(ctx)
	defer cancel()

	model := cfg.Model
	if model == "" {
		model = DefaultOllamaModel
	}

	ollamaReq := map[string]interface{}{
		"model":  model,
		"prompt": RenderPrompt(cfg, text),
		"stream": false,
		"options": map[string]interface{}{
			"temperature": cfg.Temperature,
		},
	}

	jsonData, err := json.Marshal(ollamaReq)
	if err != nil {
		return "", NewPermanent(fmt.Errorf("failed to marshal request: %w", err))
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", fmt.Sprintf("%s/api/generate", s.baseURL), bytes.NewBuffer(jsonData))
	if err != nil {
		return "", NewPermanent(fmt.Errorf("failed to create request: %w", err))
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(httpReq)
	if err != nil {
		return "", NewTransient(fmt.Errorf("request failed: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		err := fmt.Errorf("API returned status %d", resp.StatusCode)
		if retryableStatus(resp.StatusCode) {
			return "", NewTransient(err)
		}
		return "", NewPermanent(err)
	}

	var ollamaResp struct {
		Response string `json:"response"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&ollamaResp); err != nil {
		return "", NewPermanent(fmt.Errorf("failed to decode response: %w", err))
	}

	translated := postprocess.Clean(ollamaResp.Response)
	if translated == "" {
		return "", NewPermanent(fmt.Errorf("empty translation returned"))
	}

	return translated, nil
}

// IsAvailable checks that the Ollama server answers before a run starts.
func (s *OllamaTranslator) IsAvailable(ctx context.Context) error {
	req, _ := http.NewRequestWithContext(ctx, "GET", fmt.Sprintf("%s/api/tags", s.baseURL), nil)
	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("Ollama not available: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("Ollama returned status %d", resp.StatusCode)
	}
	return nil
}
