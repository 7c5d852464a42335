// Package assemblyai implements transcription.Provider against the
// AssemblyAI REST API v2: upload the audio, create a transcript job,
// then poll until the job completes or fails.
package assemblyai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/skillsenselab/jobhunt/internal/provider"
	"github.com/skillsenselab/jobhunt/internal/transcription"
)

const (
	// ProviderName is the registered name for the AssemblyAI provider.
	ProviderName = "assemblyai"

	defaultBaseURL      = "https://api.assemblyai.com"
	defaultPollInterval = 3 * time.Second
	defaultPollTimeout  = 5 * time.Minute
	defaultHTTPTimeout  = 60 * time.Second

	statusCompleted = "completed"
	statusError     = "error"
)

// Config holds configuration for the AssemblyAI transcription provider.
type Config struct {
	APIKey       string        `json:"api_key" yaml:"api_key"`
	BaseURL      string        `json:"base_url" yaml:"base_url"`
	PollInterval time.Duration `json:"poll_interval" yaml:"poll_interval"`
	PollTimeout  time.Duration `json:"poll_timeout" yaml:"poll_timeout"`
}

// Provider implements transcription.Provider using the AssemblyAI HTTP API.
type Provider struct {
	cfg    Config
	client *http.Client
}

// NewProvider creates a new AssemblyAI transcription provider.
func NewProvider(cfg Config) *Provider {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = defaultPollInterval
	}
	if cfg.PollTimeout <= 0 {
		cfg.PollTimeout = defaultPollTimeout
	}
	return &Provider{
		cfg: cfg,
		client: &http.Client{
			Timeout: defaultHTTPTimeout,
		},
	}
}

// Factory returns a provider.Factory that creates AssemblyAI Provider
// instances from a generic config map.
func Factory() provider.Factory[transcription.Provider] {
	return func(cfg map[string]any) (transcription.Provider, error) {
		ac := Config{}
		if v, ok := cfg["api_key"].(string); ok {
			ac.APIKey = v
		}
		if v, ok := cfg["base_url"].(string); ok {
			ac.BaseURL = v
		}
		if v, ok := cfg["poll_interval"].(time.Duration); ok {
			ac.PollInterval = v
		}
		if v, ok := cfg["poll_timeout"].(time.Duration); ok {
			ac.PollTimeout = v
		}
		if ac.APIKey == "" {
			return nil, fmt.Errorf("assemblyai: api_key is required")
		}
		return NewProvider(ac), nil
	}
}

// Name returns the provider name.
func (p *Provider) Name() string { return ProviderName }

// IsAvailable checks if the AssemblyAI API accepts the configured key.
func (p *Provider) IsAvailable(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.cfg.BaseURL+"/v2/transcript?limit=1", http.NoBody)
	if err != nil {
		return false
	}
	req.Header.Set("Authorization", p.cfg.APIKey)
	resp, err := p.client.Do(req)
	if err != nil {
		return false
	}
	_ = resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

// Transcribe uploads the audio, creates a transcript job and polls it to
// completion. The poll loop stops on ctx cancellation or when the
// configured poll timeout elapses.
func (p *Provider) Transcribe(ctx context.Context, req transcription.Request) (*transcription.Result, error) {
	if len(req.Audio) == 0 {
		return nil, fmt.Errorf("assemblyai: no audio data")
	}

	uploadURL, err := p.upload(ctx, req.Audio)
	if err != nil {
		return nil, fmt.Errorf("assemblyai upload: %w", err)
	}

	job, err := p.createTranscript(ctx, uploadURL, req.Language)
	if err != nil {
		return nil, fmt.Errorf("assemblyai create transcript: %w", err)
	}
	if job.Status == statusError {
		return nil, fmt.Errorf("assemblyai transcript failed: %s", job.Error)
	}

	final, err := p.pollTranscript(ctx, job.ID)
	if err != nil {
		return nil, err
	}

	return &transcription.Result{
		Text:     final.Text,
		ID:       final.ID,
		Language: final.LanguageCode,
		Duration: final.AudioDuration,
	}, nil
}

// upload sends the raw audio bytes and returns the temporary upload URL.
func (p *Provider) upload(ctx context.Context, audio []byte) (string, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.cfg.BaseURL+"/v2/upload", bytes.NewReader(audio))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Authorization", p.cfg.APIKey)
	httpReq.Header.Set("Content-Type", "application/octet-stream")

	var resp uploadResponse
	if err := p.send(httpReq, &resp); err != nil {
		return "", err
	}
	if resp.UploadURL == "" {
		return "", fmt.Errorf("empty upload_url in response")
	}
	return resp.UploadURL, nil
}

// createTranscript starts a transcription job for an uploaded file.
func (p *Provider) createTranscript(ctx context.Context, audioURL, language string) (*transcriptResponse, error) {
	body, err := json.Marshal(transcriptRequest{
		AudioURL:     audioURL,
		LanguageCode: language,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.cfg.BaseURL+"/v2/transcript", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Authorization", p.cfg.APIKey)
	httpReq.Header.Set("Content-Type", "application/json")

	var resp transcriptResponse
	if err := p.send(httpReq, &resp); err != nil {
		return nil, err
	}
	if resp.ID == "" {
		return nil, fmt.Errorf("empty transcript id in response")
	}
	return &resp, nil
}

// getTranscript fetches the current state of a transcription job.
func (p *Provider) getTranscript(ctx context.Context, id string) (*transcriptResponse, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, p.cfg.BaseURL+"/v2/transcript/"+id, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Authorization", p.cfg.APIKey)

	var resp transcriptResponse
	if err := p.send(httpReq, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// pollTranscript polls the job at the configured interval until it reaches
// a terminal status. The vendor protocol completes asynchronously; this is
// job-completion polling, not request retrying.
func (p *Provider) pollTranscript(ctx context.Context, id string) (*transcriptResponse, error) {
	pollCtx, cancel := context.WithTimeout(ctx, p.cfg.PollTimeout)
	defer cancel()

	ticker := time.NewTicker(p.cfg.PollInterval)
	defer ticker.Stop()

	for {
		resp, err := p.getTranscript(pollCtx, id)
		if err != nil {
			if pollCtx.Err() != nil {
				return nil, fmt.Errorf("assemblyai poll transcript %s: %w", id, pollCtx.Err())
			}
			return nil, fmt.Errorf("assemblyai poll transcript %s: %w", id, err)
		}

		switch resp.Status {
		case statusCompleted:
			return resp, nil
		case statusError:
			return nil, fmt.Errorf("assemblyai transcript %s failed: %s", id, resp.Error)
		}

		select {
		case <-pollCtx.Done():
			return nil, fmt.Errorf("assemblyai poll transcript %s: %w", id, pollCtx.Err())
		case <-ticker.C:
		}
	}
}

// send executes the request and decodes a JSON response into out.
func (p *Provider) send(req *http.Request, out any) error {
	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck // Error on close is safe to ignore for read operations

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// --- internal AssemblyAI API types ---

type uploadResponse struct {
	UploadURL string `json:"upload_url"`
}

type transcriptRequest struct {
	AudioURL     string `json:"audio_url"`
	LanguageCode string `json:"language_code,omitempty"`
}

type transcriptResponse struct {
	ID            string  `json:"id"`
	Status        string  `json:"status"`
	Text          string  `json:"text"`
	Error         string  `json:"error,omitempty"`
	LanguageCode  string  `json:"language_code,omitempty"`
	AudioDuration float64 `json:"audio_duration,omitempty"`
}
