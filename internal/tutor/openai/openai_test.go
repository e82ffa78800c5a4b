package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/nadzzz/speakgenie/internal/config"
	"github.com/nadzzz/speakgenie/internal/tutor"
)

func TestComplete(t *testing.T) {
	var got chatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer sk-test" {
			t.Errorf("Authorization = %q", auth)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decoding request: %v", err)
		}
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"Welcome aboard! ✈️"}}]}`))
	}))
	defer srv.Close()

	b := New(config.OpenAIConfig{APIKey: "sk-test", BaseURL: srv.URL + "/v1/", CompletionModel: "gpt-test"})
	reply, err := b.Complete(context.Background(), tutor.Request{
		System: "be an airline agent", Prompt: "hi", Temperature: 0.9, MaxTokens: 150,
	})
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if reply != "Welcome aboard! ✈️" {
		t.Errorf("reply = %q", reply)
	}
	if got.Model != "gpt-test" || got.MaxTokens != 150 || got.Temperature != 0.9 {
		t.Errorf("request = %+v", got)
	}
	if len(got.Messages) != 2 || got.Messages[0].Role != "system" || got.Messages[1].Content != "hi" {
		t.Errorf("messages = %+v", got.Messages)
	}
}

func TestCompleteErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"http error", http.StatusTooManyRequests, `{"error":"rate limited"}`},
		{"no choices", http.StatusOK, `{"choices":[]}`},
		{"bad json", http.StatusOK, `not json`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			b := New(config.OpenAIConfig{BaseURL: srv.URL})
			if _, err := b.Complete(context.Background(), tutor.Request{Prompt: "hi"}); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestNewDefaults(t *testing.T) {
	b := New(config.OpenAIConfig{})
	if b.url != defaultBaseURL+"/chat/completions" || b.model == "" {
		t.Errorf("defaults = %s %s", b.url, b.model)
	}
}
