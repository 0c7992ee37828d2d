// Package embeddings talks to an Ollama server to turn text into vectors.
package embeddings

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// ErrEmptyEmbedding is returned when the server answers without a vector.
var ErrEmptyEmbedding = errors.New("ollama returned empty embeddings")

// Client is an index.Encoder backed by Ollama's embedding API.
type Client struct {
	model string
	http  *resty.Client
}

func NewClient(host, model string) *Client {
	return &Client{
		model: model,
		http: resty.New().
			SetBaseURL(strings.TrimRight(host, "/")).
			SetTimeout(120 * time.Second).
			SetHeader("Content-Type", "application/json"),
	}
}

// Name identifies the model so cached vectors from another model are not reused.
func (c *Client) Name() string {
	return "ollama-" + c.model
}

// Encode returns the embedding vector for the given text. Empty text is sent
// as a single space; the server rejects empty input.
func (c *Client) Encode(ctx context.Context, text string) ([]float32, error) {
	if strings.TrimSpace(text) == "" {
		text = " "
	}

	var (
		result  embedResponse
		failure errorResponse
	)
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(embedRequest{Model: c.model, Input: text}).
		SetResult(&result).
		SetError(&failure).
		Post("/api/embed")
	if err != nil {
		return nil, fmt.Errorf("ollama embed request: %w", err)
	}

	if resp.StatusCode() != http.StatusOK {
		if failure.Error != "" {
			return nil, fmt.Errorf("ollama embed: status %d: %s", resp.StatusCode(), failure.Error)
		}
		return nil, fmt.Errorf("ollama embed: status %d", resp.StatusCode())
	}

	if len(result.Embeddings) == 0 || len(result.Embeddings[0]) == 0 {
		return nil, ErrEmptyEmbedding
	}

	return result.Embeddings[0], nil
}

// IsHealthy checks if Ollama is reachable.
func (c *Client) IsHealthy(ctx context.Context) bool {
	resp, err := c.http.R().SetContext(ctx).Get("/api/tags")
	if err != nil {
		return false
	}
	return resp.StatusCode() == http.StatusOK
}
