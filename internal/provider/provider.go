// Package provider implements the engine's collaborator capabilities
// against OpenAI-compatible HTTP services. Both clients are thin: the
// engine treats them as opaque boundaries and imposes timeouts via ctx.
package provider

// #region imports
import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// #endregion imports

// #region config

// Config holds connection settings shared by both clients.
type Config struct {
	BaseURL          string
	APIKey           string
	Model            string
	EmbeddingModel   string
	Timeout          time.Duration
	MaxResponseBytes int64
}

func (c *Config) applyDefaults() {
	if c.BaseURL == "" {
		c.BaseURL = "https://api.openai.com/v1"
	}
	if c.Timeout <= 0 {
		c.Timeout = 60 * time.Second
	}
	if c.MaxResponseBytes <= 0 {
		c.MaxResponseBytes = 4 * 1024 * 1024
	}
}

// #endregion config

// #region chat-client

// ChatClient is a Generator over the chat-completions endpoint.
type ChatClient struct {
	cfg    Config
	client *http.Client
}

// NewChatClient creates a generation client.
func NewChatClient(cfg Config) *ChatClient {
	cfg.applyDefaults()
	return &ChatClient{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
	}
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

// Generate sends prompt as a single user message and returns the first
// choice's content.
func (c *ChatClient) Generate(ctx context.Context, prompt string) (string, error) {
	body := chatRequest{
		Model:    c.cfg.Model,
		Messages: []chatMessage{{Role: "user", Content: prompt}},
	}

	var resp chatResponse
	if err := c.post(ctx, "/chat/completions", body, &resp); err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("chat completion returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}

// #endregion chat-client

// #region embed-client

// EmbedClient is an Embedder over the embeddings endpoint.
type EmbedClient struct {
	cfg    Config
	client *http.Client
}

// NewEmbedClient creates an embedding client.
func NewEmbedClient(cfg Config) *EmbedClient {
	cfg.applyDefaults()
	return &EmbedClient{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
	}
}

type embedRequest struct {
	Model string `json:"model"`
	Input string `json:"input"`
}

type embedResponse struct {
	Data []struct {
		Embedding []float32 `json:"embedding"`
	} `json:"data"`
}

// Embed returns the embedding vector for text.
func (c *EmbedClient) Embed(ctx context.Context, text string) ([]float32, error) {
	body := embedRequest{
		Model: c.cfg.EmbeddingModel,
		Input: text,
	}

	var resp embedResponse
	if err := post(ctx, c.client, c.cfg, "/embeddings", body, &resp); err != nil {
		return nil, err
	}
	if len(resp.Data) == 0 {
		return nil, fmt.Errorf("embedding response carried no data")
	}
	return resp.Data[0].Embedding, nil
}

// #endregion embed-client

// #region http-plumbing

func (c *ChatClient) post(ctx context.Context, path string, body, out any) error {
	return post(ctx, c.client, c.cfg, path, body, out)
}

type errorResponse struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

func post(ctx context.Context, client *http.Client, cfg Config, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, cfg.BaseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+cfg.APIKey)
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("call %s: %w", path, err)
	}
	defer resp.Body.Close()

	limited := io.LimitReader(resp.Body, cfg.MaxResponseBytes+1)
	respBody, err := io.ReadAll(limited)
	if err != nil {
		return fmt.Errorf("read %s response: %w", path, err)
	}
	if int64(len(respBody)) > cfg.MaxResponseBytes {
		return fmt.Errorf("%s response exceeded limit (%d bytes)", path, cfg.MaxResponseBytes)
	}

	if resp.StatusCode >= 400 {
		var errBody errorResponse
		if err := json.Unmarshal(respBody, &errBody); err == nil && errBody.Error.Message != "" {
			return fmt.Errorf("%s error: %s (type=%s)", path, errBody.Error.Message, errBody.Error.Type)
		}
		return fmt.Errorf("%s error: status %d", path, resp.StatusCode)
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}

// #endregion http-plumbing
