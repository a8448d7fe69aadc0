package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	openai "github.com/sashabaranov/go-openai"
)

var questionSchema = &Schema{
	Name: "test-question",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"title":  map[string]any{"type": "string"},
			"answer": map[string]any{"type": "integer"},
		},
		"required":             []string{"title", "answer"},
		"additionalProperties": false,
	},
}

func anthropicServer(t *testing.T, status int, body any) *AnthropicProvider {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(body)
	}))
	t.Cleanup(srv.Close)

	client := anthropic.NewClient(option.WithAPIKey("test-key"), option.WithBaseURL(srv.URL), option.WithMaxRetries(0))
	return &AnthropicProvider{client: &client, model: "claude-haiku-4-5-20251001"}
}

func anthropicMessage(text, stop string) map[string]any {
	return map[string]any{
		"id":          "msg_1",
		"type":        "message",
		"role":        "assistant",
		"content":     []map[string]any{{"type": "text", "text": text}},
		"model":       "claude-haiku-4-5-20251001",
		"stop_reason": stop,
		"usage":       map[string]any{"input_tokens": 50, "output_tokens": 30},
	}
}

func TestAnthropicGenerate(t *testing.T) {
	p := anthropicServer(t, http.StatusOK, anthropicMessage(`{"title":"Maps","answer":2}`, "end_turn"))
	req := UserPrompt("You write Go quizzes.", "One question please.")
	req.Schema = questionSchema
	req.MaxTokens = 256

	resp, err := p.Generate(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Usage.TotalTokens != 80 {
		t.Errorf("total tokens = %d, want 80", resp.Usage.TotalTokens)
	}
	if resp.StopReason != StopEnd {
		t.Errorf("stop reason = %q", resp.StopReason)
	}
}

func TestAnthropicSchemaViolation(t *testing.T) {
	p := anthropicServer(t, http.StatusOK, anthropicMessage(`{"title":"Maps"}`, "end_turn"))
	req := UserPrompt("", "q")
	req.Schema = questionSchema
	req.MaxTokens = 64

	_, err := p.Generate(context.Background(), req)
	var invalid *ErrInvalidResponse
	if !errors.As(err, &invalid) {
		t.Fatalf("expected ErrInvalidResponse, got %T (%v)", err, err)
	}
}

func TestAnthropicTruncated(t *testing.T) {
	p := anthropicServer(t, http.StatusOK, anthropicMessage(`{"title":`, "max_tokens"))
	req := UserPrompt("", "q")
	req.Schema = questionSchema
	req.MaxTokens = 4

	_, err := p.Generate(context.Background(), req)
	var truncated *ErrMaxTokensExceeded
	if !errors.As(err, &truncated) {
		t.Fatalf("expected ErrMaxTokensExceeded, got %T (%v)", err, err)
	}
}

func TestAnthropicErrorStatus(t *testing.T) {
	apiError := func(kind string) map[string]any {
		return map[string]any{"type": "error", "error": map[string]any{"type": kind, "message": "nope"}}
	}

	p := anthropicServer(t, http.StatusTooManyRequests, apiError("rate_limit_error"))
	_, err := p.Generate(context.Background(), Request{Messages: []Message{{Role: RoleUser, Content: "x"}}, MaxTokens: 10})
	var limited *ErrRateLimit
	if !errors.As(err, &limited) {
		t.Fatalf("429: expected ErrRateLimit, got %T (%v)", err, err)
	}

	p = anthropicServer(t, http.StatusInternalServerError, apiError("api_error"))
	_, err = p.Generate(context.Background(), Request{Messages: []Message{{Role: RoleUser, Content: "x"}}, MaxTokens: 10})
	var down *ErrProviderUnavailable
	if !errors.As(err, &down) {
		t.Fatalf("500: expected ErrProviderUnavailable, got %T (%v)", err, err)
	}
}

func openAIServer(t *testing.T, handler http.HandlerFunc) *OpenAIProvider {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := openai.DefaultConfig("test-key")
	cfg.BaseURL = srv.URL + "/v1"
	return &OpenAIProvider{client: openai.NewClientWithConfig(cfg), model: "gpt-4o-mini", name: ProviderOpenAI}
}

func TestOpenAIGenerate(t *testing.T) {
	var got struct {
		Messages []struct {
			Role string `json:"role"`
		} `json:"messages"`
		ResponseFormat struct {
			JSONSchema struct {
				Name string `json:"name"`
			} `json:"json_schema"`
		} `json:"response_format"`
	}
	p := openAIServer(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&got)
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"id":    "chatcmpl-1",
			"model": "gpt-4o-mini",
			"choices": []map[string]any{{
				"index":         0,
				"message":       map[string]any{"role": "assistant", "content": `{"title":"Slices","answer":3}`},
				"finish_reason": "stop",
			}},
			"usage": map[string]any{"prompt_tokens": 40, "completion_tokens": 25, "total_tokens": 65},
		})
	})

	req := UserPrompt("sys", "user")
	req.Schema = questionSchema
	resp, err := p.Generate(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(resp.Content) != `{"title":"Slices","answer":3}` {
		t.Errorf("content = %s", resp.Content)
	}
	if resp.Usage.TotalTokens != 65 {
		t.Errorf("total tokens = %d", resp.Usage.TotalTokens)
	}
	if len(got.Messages) != 2 || got.Messages[0].Role != openai.ChatMessageRoleSystem {
		t.Errorf("messages = %+v", got.Messages)
	}
	if got.ResponseFormat.JSONSchema.Name != "test-question" {
		t.Errorf("response format not sent: %+v", got.ResponseFormat)
	}
}

func TestOpenAINoChoices(t *testing.T) {
	p := openAIServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{"id": "x", "model": "gpt-4o-mini", "choices": []any{}})
	})
	_, err := p.Generate(context.Background(), UserPrompt("", "x"))
	var invalid *ErrInvalidResponse
	if !errors.As(err, &invalid) {
		t.Fatalf("expected ErrInvalidResponse, got %T (%v)", err, err)
	}
}

func TestOpenAIRateLimit(t *testing.T) {
	p := openAIServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		json.NewEncoder(w).Encode(map[string]any{"error": map[string]any{"message": "slow down", "type": "rate_limit"}})
	})
	_, err := p.Generate(context.Background(), UserPrompt("", "x"))
	var limited *ErrRateLimit
	if !errors.As(err, &limited) {
		t.Fatalf("expected ErrRateLimit, got %T (%v)", err, err)
	}
}

func TestOpenRouterProvider(t *testing.T) {
	if _, err := NewOpenRouterProvider(BackendConfig{Model: "x"}); err == nil {
		t.Fatal("expected error without API key")
	}
	p, err := NewOpenRouterProvider(BackendConfig{APIKey: "sk-or", Model: "anthropic/claude-3-haiku"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.ModelID() != "anthropic/claude-3-haiku" {
		t.Errorf("model = %q, aliases must not apply", p.ModelID())
	}
}

func TestResolveModel(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"claude-haiku", "claude-haiku-4-5-20251001"},
		{"claude-sonnet", "claude-sonnet-4-20250514"},
		{"claude-opus-4-1", "claude-opus-4-1"},
	}
	for _, tt := range tests {
		if got := resolveModel(tt.in, anthropicModels); got != tt.want {
			t.Errorf("resolveModel(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestGeminiSchema(t *testing.T) {
	s := geminiSchema(map[string]any{
		"type": "object",
		"properties": map[string]any{
			"options": map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
			"level":   map[string]any{"type": "string", "enum": []any{"EASY", "HARD"}},
		},
		"required": []string{"options"},
	})
	if s.Properties["options"].Items == nil {
		t.Fatal("items not converted")
	}
	if len(s.Properties["level"].Enum) != 2 {
		t.Errorf("enum = %v", s.Properties["level"].Enum)
	}
	if len(s.Required) != 1 || s.Required[0] != "options" {
		t.Errorf("required = %v", s.Required)
	}
}
