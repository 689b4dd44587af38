package quotes

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Generator produces synthetic quotes from archived chat text
type Generator interface {
	Generate(ctx context.Context, chatID int64, author string, seed []string) (string, error)
}

// HTTPGenerator calls an external markov service over HTTP
type HTTPGenerator struct {
	url    string
	client *http.Client
}

// NewHTTPGenerator creates a generator pointed at the given service URL
func NewHTTPGenerator(url string, timeout time.Duration) *HTTPGenerator {
	return &HTTPGenerator{
		url:    url,
		client: &http.Client{Timeout: timeout},
	}
}

type generateRequest struct {
	ChatID int64    `json:"chat_id"`
	Author string   `json:"author,omitempty"`
	Seed   []string `json:"seed,omitempty"`
}

type generateResponse struct {
	Quote string `json:"quote"`
}

// Generate requests a synthetic quote from the markov service
func (g *HTTPGenerator) Generate(ctx context.Context, chatID int64, author string, seed []string) (string, error) {
	body, err := json.Marshal(generateRequest{
		ChatID: chatID,
		Author: author,
		Seed:   seed,
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal generate request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create generate request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("markov service request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("markov service returned status %d", resp.StatusCode)
	}

	var out generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("failed to decode generate response: %w", err)
	}
	if out.Quote == "" {
		return "", fmt.Errorf("markov service returned an empty quote")
	}
	return out.Quote, nil
}
