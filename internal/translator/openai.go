package translator

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"github.com/sony/gobreaker"
)

// DefaultOpenAIModel matches the chat model the translation prompt is
// tuned for.
const DefaultOpenAIModel = "gpt-5-mini"

// OpenAITranslator translates chunks through the OpenAI chat completions
// API. Calls run through a circuit breaker so a dying upstream trips fast
// instead of burning every chunk's retry budget.
type OpenAITranslator struct {
	client  *openai.Client
	breaker *gobreaker.CircuitBreaker
}

func NewOpenAITranslator(apiKey, baseURL string) *OpenAITranslator {
	if apiKey == "" {
		apiKey = os.Getenv("OPENAI_API_KEY")
	}
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    "openai-translate",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	})

	return &OpenAITranslator{
		client:  openai.NewClientWithConfig(cfg),
		breaker: breaker,
	}
}

func (s *OpenAITranslator) Name() string {
	return "openai"
}

func (s *OpenAITranslator) TranslateChunk(ctx context.Context, cfg Config, text string) (string, error) {
	ctx, cancel := cfg.applyTimeout(ctx)
	defer cancel()

	model := cfg.Model
	if model == "" {
		model = DefaultOpenAIModel
	}

	req := openai.ChatCompletionRequest{
		Model: model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleUser,
				Content: RenderPrompt(cfg, text),
			},
		},
		Temperature: cfg.Temperature,
	}

	res, err := s.breaker.Execute(func() (interface{}, error) {
		return s.client.CreateChatCompletion(ctx, req)
	})
	if err != nil {
		return "", classifyOpenAIError(err)
	}

	resp := res.(openai.ChatCompletionResponse)
	if len(resp.Choices) == 0 {
		return "", NewPermanent(fmt.Errorf("no choices returned"))
	}

	translated := strings.TrimSpace(resp.Choices[0].Message.Content)
	if translated == "" {
		return "", NewPermanent(fmt.Errorf("empty translation returned"))
	}

	return translated, nil
}

// classifyOpenAIError maps API/transport errors onto the transient /
// permanent taxonomy.
func classifyOpenAIError(err error) error {
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		// Breaker open: the upstream may recover, worth retrying later.
		return NewTransient(err)
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		if retryableStatus(apiErr.HTTPStatusCode) {
			return NewTransient(err)
		}
		return NewPermanent(err)
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		if retryableStatus(reqErr.HTTPStatusCode) {
			return NewTransient(err)
		}
		return NewPermanent(err)
	}

	// Network-level failures (connection reset, timeout) have no status
	// code; treat them as transient.
	return NewTransient(err)
}

func retryableStatus(status int) bool {
	switch {
	case status == http.StatusTooManyRequests:
		return true
	case status == http.StatusRequestTimeout:
		return true
	case status >= http.StatusInternalServerError:
		return true
	}
	return false
}
