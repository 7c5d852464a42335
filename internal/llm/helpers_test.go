package llm

import (
	"context"
	"errors"
	"strings"
	"testing"
)

type mockProvider struct {
	content string
	err     error
	lastReq CompletionRequest
}

func (m *mockProvider) Name() string                       { return "mock" }
func (m *mockProvider) IsAvailable(_ context.Context) bool { return true }

func (m *mockProvider) Complete(_ context.Context, req CompletionRequest) (*CompletionResponse, error) {
	m.lastReq = req
	if m.err != nil {
		return nil, m.err
	}
	return &CompletionResponse{Content: m.content, Model: "mock-model"}, nil
}

func (m *mockProvider) CompleteStructured(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
	return m.Complete(ctx, req)
}

func TestComplete(t *testing.T) {
	p := &mockProvider{content: "The answer is 42."}

	result, err := Complete(context.Background(), p, "You are helpful.", "What is the answer?")
	if err != nil {
		t.Fatalf("Complete() error: %v", err)
	}
	if result != "The answer is 42." {
		t.Errorf("result = %q, want %q", result, "The answer is 42.")
	}
	if p.lastReq.SystemPrompt != "You are helpful." {
		t.Errorf("SystemPrompt = %q", p.lastReq.SystemPrompt)
	}
	if len(p.lastReq.Messages) != 1 || p.lastReq.Messages[0].Content != "What is the answer?" {
		t.Errorf("Messages = %+v", p.lastReq.Messages)
	}
}

func TestCompleteStructured(t *testing.T) {
	p := &mockProvider{content: `{"company": "Google", "role": "Software Engineer"}`}

	var result struct {
		Company string `json:"company"`
		Role    string `json:"role"`
	}
	err := CompleteStructured(context.Background(), p, "Extract fields.", "I applied to Google.", &result)
	if err != nil {
		t.Fatalf("CompleteStructured() error: %v", err)
	}
	if result.Company != "Google" || result.Role != "Software Engineer" {
		t.Errorf("result = %+v, want {Google Software Engineer}", result)
	}
	if !strings.Contains(p.lastReq.SystemPrompt, "ONLY the JSON object") {
		t.Errorf("SystemPrompt missing JSON instructions: %q", p.lastReq.SystemPrompt)
	}
}

func TestCompleteStructured_WithMarkdownFence(t *testing.T) {
	p := &mockProvider{content: "```json\n{\"company\": \"Meta\"}\n```"}

	var result struct {
		Company string `json:"company"`
	}
	err := CompleteStructured(context.Background(), p, "Extract.", "Meta", &result)
	if err != nil {
		t.Fatalf("CompleteStructured() error: %v", err)
	}
	if result.Company != "Meta" {
		t.Errorf("Company = %q, want %q", result.Company, "Meta")
	}
}

func TestCompleteStructured_IntoMap(t *testing.T) {
	p := &mockProvider{content: `{"Company Name": "Stripe", "status": "applied"}`}

	result := map[string]any{}
	err := CompleteStructured(context.Background(), p, "Extract.", "Stripe", &result)
	if err != nil {
		t.Fatalf("CompleteStructured() error: %v", err)
	}
	if result["Company Name"] != "Stripe" {
		t.Errorf("result = %+v, want Company Name key preserved", result)
	}
}

func TestCompleteStructured_ProviderError(t *testing.T) {
	p := &mockProvider{err: errors.New("model overloaded")}

	var result map[string]any
	err := CompleteStructured(context.Background(), p, "Extract.", "text", &result)
	if err == nil {
		t.Fatal("CompleteStructured() error = nil, want provider error")
	}
	if !strings.Contains(err.Error(), "model overloaded") {
		t.Errorf("error = %v", err)
	}
}

func TestCompleteStructured_InvalidJSON(t *testing.T) {
	p := &mockProvider{content: "I could not find any job details in this text."}

	var result map[string]any
	err := CompleteStructured(context.Background(), p, "Extract.", "text", &result)
	if err == nil {
		t.Fatal("CompleteStructured() error = nil, want unmarshal error")
	}
	if !strings.Contains(err.Error(), "unmarshal structured response") {
		t.Errorf("error = %v", err)
	}
}

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain json", `{"key": "value"}`, `{"key": "value"}`},
		{"with whitespace", `  {"key": "value"}  `, `{"key": "value"}`},
		{"markdown fence", "```json\n{\"key\": \"value\"}\n```", `{"key": "value"}`},
		{"bare fence", "```\n{\"key\": \"value\"}\n```", `{"key": "value"}`},
		{"with prefix text", `Here is the result: {"key": "value"}`, `{"key": "value"}`},
		{"no json", "just text", "just text"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := extractJSON(tt.input)
			if got != tt.want {
				t.Errorf("extractJSON(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
