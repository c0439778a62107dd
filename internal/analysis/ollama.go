package analysis

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/ollama/ollama/api"
)

// OllamaBackend runs completions against a local Ollama server in JSON format
// mode. Generation is serialized; a single local model does not benefit from
// concurrent requests.
type OllamaBackend struct {
	client      *api.Client
	temperature float64
	timeout     time.Duration
	mu          sync.Mutex
}

func NewOllamaBackend(baseURL string, temperature float64, timeout time.Duration) *OllamaBackend {
	httpClient := &http.Client{}

	c := api.NewClient(&url.URL{
		Scheme: "http",
		Host:   baseURL,
		Path:   "/",
	}, httpClient)

	return &OllamaBackend{
		client:      c,
		temperature: temperature,
		timeout:     timeout,
	}
}

func (b *OllamaBackend) Complete(ctx context.Context, model, system, user string) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	req := &api.GenerateRequest{
		Model:  model,
		System: system,
		Prompt: user,
		Format: json.RawMessage(`"json"`),
		Options: map[string]any{
			"temperature": b.temperature,
		},
	}

	ctx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()

	var parts []string
	err := b.client.Generate(ctx, req, func(resp api.GenerateResponse) error {
		parts = append(parts, resp.Response)
		return nil
	})
	if err != nil {
		return "", err
	}

	out := strings.Join(parts, "")
	if strings.TrimSpace(out) == "" {
		return "", ErrNoAnalysis
	}
	return out, nil
}
