// Package zipcode turns a city and state into the zipcode used for a listing search.
package zipcode

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"regexp"
	"strings"
	"time"
)

// ErrUnresolved is returned when no valid zipcode could be determined.
var ErrUnresolved = errors.New("could not determine a valid zipcode")

var zipPattern = regexp.MustCompile(`^\d{5}$`)

// Valid reports whether s is a five-digit US zipcode.
func Valid(s string) bool {
	return zipPattern.MatchString(s)
}

// Resolver finds the main zipcode for a city.
type Resolver interface {
	Resolve(ctx context.Context, city, state string) (string, error)
}

const (
	systemPrompt = "You are a helpful assistant that provides zipcodes for US cities. Only respond with the zipcode number, nothing else."
	userPrompt   = "What is the main zipcode for %s, %s? Only respond with the zipcode number."
)

// LLMResolver asks an OpenAI-compatible chat completions endpoint.
type LLMResolver struct {
	URL    string
	APIKey string
	Model  string
	Client *http.Client
}

// NewLLMResolver creates a resolver with a 15 second HTTP timeout.
func NewLLMResolver(url, apiKey, model string) *LLMResolver {
	return &LLMResolver{
		URL:    url,
		APIKey: apiKey,
		Model:  model,
		Client: &http.Client{Timeout: 15 * time.Second},
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// Resolve returns a validated five-digit zipcode or an error wrapping ErrUnresolved.
func (r *LLMResolver) Resolve(ctx context.Context, city, state string) (string, error) {
	if r.URL == "" {
		return "", fmt.Errorf("%w: no resolver endpoint configured", ErrUnresolved)
	}

	body, err := json.Marshal(chatRequest{
		Model: r.Model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: fmt.Sprintf(userPrompt, city, state)},
		},
		MaxTokens: 16,
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.URL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if r.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+r.APIKey)
	}

	client := r.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("zipcode lookup for %s, %s: %w", city, state, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
		return "", fmt.Errorf("zipcode lookup returned %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet)))
	}

	var out chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("failed to decode zipcode response: %w", err)
	}
	if len(out.Choices) == 0 {
		return "", fmt.Errorf("%w for %s, %s: empty response", ErrUnresolved, city, state)
	}

	zip := strings.TrimSpace(out.Choices[0].Message.Content)
	if !Valid(zip) {
		log.Printf("⚠️  [zipcode] rejected answer %q for %s, %s", zip, city, state)
		return "", fmt.Errorf("%w for %s, %s", ErrUnresolved, city, state)
	}

	log.Printf("✅ [zipcode] %s, %s -> %s", city, state, zip)
	return zip, nil
}
