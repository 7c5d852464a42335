// Package gemini implements llm.Provider against the Google Gemini
// generateContent REST API.
package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/skillsenselab/jobhunt/internal/llm"
	"github.com/skillsenselab/jobhunt/internal/provider"
)

const (
	// ProviderName is the registered name for the Gemini provider.
	ProviderName = "gemini"

	defaultBaseURL = "https://generativelanguage.googleapis.com"
	defaultModel   = "gemini-1.5-flash"
	defaultTimeout = 20 * time.Second

	jsonMimeType = "application/json"
)

// Config holds configuration for the Gemini LLM provider.
type Config struct {
	APIKey      string        `json:"api_key" yaml:"api_key"`
	BaseURL     string        `json:"base_url" yaml:"base_url"`
	Model       string        `json:"model" yaml:"model"`
	Temperature float64       `json:"temperature" yaml:"temperature"`
	Timeout     time.Duration `json:"timeout" yaml:"timeout"`
}

// Provider implements llm.Provider using the Gemini HTTP API.
type Provider struct {
	cfg    Config
	client *http.Client
}

// NewProvider creates a new Gemini LLM provider.
func NewProvider(cfg Config) *Provider {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = defaultModel
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	return &Provider{
		cfg: cfg,
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

// Factory returns a provider.Factory that creates Gemini Provider instances
// from a generic config map.
func Factory() provider.Factory[llm.Provider] {
	return func(cfg map[string]any) (llm.Provider, error) {
		gc := Config{}
		if v, ok := cfg["api_key"].(string); ok {
			gc.APIKey = v
		}
		if v, ok := cfg["base_url"].(string); ok {
			gc.BaseURL = v
		}
		if v, ok := cfg["model"].(string); ok {
			gc.Model = v
		}
		if v, ok := cfg["temperature"].(float64); ok {
			gc.Temperature = v
		}
		if v, ok := cfg["timeout"].(time.Duration); ok {
			gc.Timeout = v
		}
		if gc.APIKey == "" {
			return nil, fmt.Errorf("gemini: api_key is required")
		}
		return NewProvider(gc), nil
	}
}

// Name returns the provider name.
func (p *Provider) Name() string { return ProviderName }

// IsAvailable checks if the Gemini API accepts the configured key.
func (p *Provider) IsAvailable(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.cfg.BaseURL+"/v1beta/models", http.NoBody)
	if err != nil {
		return false
	}
	req.Header.Set("x-goog-api-key", p.cfg.APIKey)
	resp, err := p.client.Do(req)
	if err != nil {
		return false
	}
	_ = resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

// Complete sends a completion request and returns the full response.
func (p *Provider) Complete(ctx context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
	genReq := p.buildGenerateRequest(req, false)

	resp, err := p.doRequest(ctx, p.model(req), genReq)
	if err != nil {
		return nil, fmt.Errorf("gemini complete: %w", err)
	}
	return p.toCompletionResponse(resp)
}

// CompleteStructured sends a completion request with JSON response mode.
func (p *Provider) CompleteStructured(ctx context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
	genReq := p.buildGenerateRequest(req, true)

	resp, err := p.doRequest(ctx, p.model(req), genReq)
	if err != nil {
		return nil, fmt.Errorf("gemini complete structured: %w", err)
	}
	return p.toCompletionResponse(resp)
}

func (p *Provider) model(req llm.CompletionRequest) string {
	if req.Model != "" {
		return req.Model
	}
	return p.cfg.Model
}

// buildGenerateRequest maps the universal request to the Gemini wire format.
// The system prompt goes into system_instruction; assistant messages map to
// the "model" role.
func (p *Provider) buildGenerateRequest(req llm.CompletionRequest, jsonMode bool) generateContentRequest {
	genReq := generateContentRequest{}

	if req.SystemPrompt != "" {
		genReq.SystemInstruction = &content{Parts: []part{{Text: req.SystemPrompt}}}
	}

	for _, msg := range req.Messages {
		role := "user"
		if msg.Role == "assistant" {
			role = "model"
		}
		genReq.Contents = append(genReq.Contents, content{
			Role:  role,
			Parts: []part{{Text: msg.Content}},
		})
	}

	cfg := generationConfig{}
	hasConfig := false
	if temp := req.Temperature; temp > 0 || p.cfg.Temperature > 0 {
		if temp <= 0 {
			temp = p.cfg.Temperature
		}
		cfg.Temperature = &temp
		hasConfig = true
	}
	if req.MaxTokens > 0 {
		cfg.MaxOutputTokens = req.MaxTokens
		hasConfig = true
	}
	if jsonMode {
		cfg.ResponseMimeType = jsonMimeType
		hasConfig = true
	}
	if hasConfig {
		genReq.GenerationConfig = &cfg
	}

	return genReq
}

// doRequest executes a generateContent call and decodes the response.
func (p *Provider) doRequest(ctx context.Context, model string, genReq generateContentRequest) (*generateContentResponse, error) {
	body, err := json.Marshal(genReq)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent", p.cfg.BaseURL, model)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", jsonMimeType)
	httpReq.Header.Set("x-goog-api-key", p.cfg.APIKey)

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck // Error on close is safe to ignore for read operations

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(respBody))
	}

	var genResp generateContentResponse
	if err := json.NewDecoder(resp.Body).Decode(&genResp); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &genResp, nil
}

// toCompletionResponse maps the Gemini wire response to the universal type.
func (p *Provider) toCompletionResponse(resp *generateContentResponse) (*llm.CompletionResponse, error) {
	if len(resp.Candidates) == 0 {
		return nil, fmt.Errorf("gemini: no candidates in response")
	}

	var sb strings.Builder
	for _, pt := range resp.Candidates[0].Content.Parts {
		sb.WriteString(pt.Text)
	}

	model := resp.ModelVersion
	if model == "" {
		model = p.cfg.Model
	}

	return &llm.CompletionResponse{
		Content: sb.String(),
		Model:   model,
		Usage: llm.Usage{
			PromptTokens:     resp.UsageMetadata.PromptTokenCount,
			CompletionTokens: resp.UsageMetadata.CandidatesTokenCount,
			TotalTokens:      resp.UsageMetadata.TotalTokenCount,
		},
	}, nil
}

// --- internal Gemini API types ---

type part struct {
	Text string `json:"text"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type generationConfig struct {
	Temperature      *float64 `json:"temperature,omitempty"`
	MaxOutputTokens  int      `json:"maxOutputTokens,omitempty"`
	ResponseMimeType string   `json:"response_mime_type,omitempty"`
}

type generateContentRequest struct {
	Contents          []content         `json:"contents"`
	SystemInstruction *content          `json:"system_instruction,omitempty"`
	GenerationConfig  *generationConfig `json:"generationConfig,omitempty"`
}

type candidate struct {
	Content      content `json:"content"`
	FinishReason string  `json:"finishReason,omitempty"`
}

type usageMetadata struct {
	PromptTokenCount     int `json:"promptTokenCount"`
	CandidatesTokenCount int `json:"candidatesTokenCount"`
	TotalTokenCount      int `json:"totalTokenCount"`
}

type generateContentResponse struct {
	Candidates    []candidate   `json:"candidates"`
	UsageMetadata usageMetadata `json:"usageMetadata"`
	ModelVersion  string        `json:"modelVersion,omitempty"`
}
