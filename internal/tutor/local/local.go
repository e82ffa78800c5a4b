// Package local implements the tutor Backend using a self-hosted model.
//
// It speaks either Ollama's /api/generate or any OpenAI-compatible chat
// endpoint (Ollama, vLLM, llama.cpp server), picked from the endpoint URL.
package local

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/nadzzz/speakgenie/internal/config"
	"github.com/nadzzz/speakgenie/internal/tutor"
)

// Backend calls a self-hosted LLM.
type Backend struct {
	endpoint string
	model    string
	client   *http.Client
}

// New creates a new local backend from config.
func New(cfg config.LocalConfig) *Backend {
	model := cfg.LLMModel
	if model == "" {
		model = "llama3"
	}
	return &Backend{
		endpoint: cfg.LLMEndpoint,
		model:    model,
		client:   &http.Client{},
	}
}

// Name returns the backend identifier.
func (b *Backend) Name() string { return "local" }

// Complete sends the prompt to the local LLM endpoint.
func (b *Backend) Complete(ctx context.Context, r tutor.Request) (string, error) {
	var reqBody map[string]any
	if strings.HasSuffix(b.endpoint, "/api/generate") {
		reqBody = map[string]any{
			"model":  b.model,
			"system": r.System,
			"prompt": r.Prompt,
			"stream": false,
			"options": map[string]any{
				"temperature": r.Temperature,
				"num_predict": r.MaxTokens,
			},
		}
	} else {
		reqBody = map[string]any{
			"model": b.model,
			"messages": []map[string]string{
				{"role": "system", "content": r.System},
				{"role": "user", "content": r.Prompt},
			},
			"temperature": r.Temperature,
			"max_tokens":  r.MaxTokens,
			"stream":      false,
		}
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshalling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.endpoint, bytes.NewReader(bodyBytes))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := b.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("local LLM request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return "", fmt.Errorf("local LLM failed (status %d): %s", resp.StatusCode, respBody)
	}

	respData, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading LLM response: %w", err)
	}

	content := extractContent(respData)
	slog.Debug("local completion", "model", b.model, "reply_length", len(content))
	return content, nil
}

// Close is a no-op for the local backend.
func (b *Backend) Close() error { return nil }

func extractContent(data []byte) string {
	// OpenAI-compatible format: {"choices": [{"message": {"content": "..."}}]}
	var chatResp struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(data, &chatResp); err == nil && len(chatResp.Choices) > 0 {
		return chatResp.Choices[0].Message.Content
	}

	// Ollama format: {"response": "..."}
	var ollamaResp struct {
		Response string `json:"response"`
	}
	if err := json.Unmarshal(data, &ollamaResp); err == nil {
		return ollamaResp.Response
	}

	return string(data)
}
