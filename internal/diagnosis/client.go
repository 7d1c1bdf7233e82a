package diagnosis

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// ErrNotConfigured is returned when no diagnosis endpoint is set up.
var ErrNotConfigured = errors.New("diagnosis service not configured")

// Config points at an OpenAI-compatible chat completion endpoint.
type Config struct {
	URL    string
	APIKey string
	Model  string
}

// Client asks the LLM collaborator for a plant diagnosis. It is a narrow
// interface: the gateway resolves the principal and checks CSRF before any
// call lands here.
type Client struct {
	cfg        Config
	httpClient *http.Client
}

func NewClient(cfg Config) *Client {
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// Configured reports whether diagnosis calls can be made.
func (c *Client) Configured() bool {
	return c.cfg.URL != "" && c.cfg.APIKey != ""
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

const systemPrompt = "You are a plant-care assistant. Given a description of symptoms, suggest the most likely causes and remedies in a short paragraph."

// Diagnose sends the symptom description and returns the model's answer.
func (c *Client) Diagnose(ctx context.Context, description string) (string, error) {
	if !c.Configured() {
		return "", ErrNotConfigured
	}

	body, err := json.Marshal(chatRequest{
		Model: c.cfg.Model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: description},
		},
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.URL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("diagnosis request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("diagnosis service returned %d", resp.StatusCode)
	}

	var chatResp chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chatResp); err != nil {
		return "", fmt.Errorf("decode diagnosis response: %w", err)
	}
	if len(chatResp.Choices) == 0 {
		return "", errors.New("diagnosis response contained no choices")
	}
	return chatResp.Choices[0].Message.Content, nil
}
