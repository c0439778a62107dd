package analysis

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

// ErrNoAnalysis is returned when the completion endpoint answered but
// produced no usable text.
var ErrNoAnalysis = errors.New("no analysis generated")

// Backend is a JSON-mode chat completion: fixed system instruction, corpus as
// the user turn, JSON text back.
type Backend interface {
	Complete(ctx context.Context, model, system, user string) (string, error)
}

// ModelProvider resolves a completion model name for an api_name key.
// Implemented by the model-config lookup table.
type ModelProvider interface {
	ModelFor(ctx context.Context, apiName string) (string, error)
}

// Analyzer wraps a Backend with model selection. Most callers use the
// configured default model; sources with a lookup key resolve theirs from the
// model-config table at call time and fall back to the default when the
// lookup fails.
type Analyzer struct {
	backend      Backend
	models       ModelProvider
	defaultModel string
}

func NewAnalyzer(backend Backend, models ModelProvider, defaultModel string) *Analyzer {
	return &Analyzer{
		backend:      backend,
		models:       models,
		defaultModel: defaultModel,
	}
}

// Synthesize runs the prompt contract against the corpus. lookupKey selects a
// model from the config table when non-empty.
func (a *Analyzer) Synthesize(ctx context.Context, lookupKey, system, corpus string) (string, error) {
	model := a.defaultModel
	if lookupKey != "" && a.models != nil {
		m, err := a.models.ModelFor(ctx, lookupKey)
		switch {
		case err != nil:
			log.Printf("[ERROR] model lookup for %s failed, falling back to %s: %v", lookupKey, a.defaultModel, err)
		case m != "":
			model = m
		}
	}

	return a.backend.Complete(ctx, model, system, corpus)
}

// OpenAIBackend talks to any OpenAI-compatible chat-completions endpoint.
type OpenAIBackend struct {
	client      *openai.Client
	temperature float32
	maxTokens   int
	timeout     time.Duration
}

// NewOpenAIBackend creates a backend for api.openai.com or, when baseURL is
// non-empty, any compatible server (LM Studio, llama.cpp, Ollama's /v1
// endpoint, etc.).
func NewOpenAIBackend(baseURL, apiKey string, temperature float64, maxTokens int, timeout time.Duration) *OpenAIBackend {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &OpenAIBackend{
		client:      openai.NewClientWithConfig(cfg),
		temperature: float32(temperature),
		maxTokens:   maxTokens,
		timeout:     timeout,
	}
}

func (b *OpenAIBackend) Complete(ctx context.Context, model, system, user string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()

	resp, err := b.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
		Temperature: b.temperature,
		MaxTokens:   b.maxTokens,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}

	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", ErrNoAnalysis
	}

	return resp.Choices[0].Message.Content, nil
}
