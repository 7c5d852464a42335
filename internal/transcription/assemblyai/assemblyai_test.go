package assemblyai

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/skillsenselab/jobhunt/internal/transcription"
)

// newTestServer simulates the upload, create and poll endpoints. The
// transcript stays in processing for pollsUntilDone GET calls, then
// flips to finalStatus.
func newTestServer(t *testing.T, pollsUntilDone int, finalStatus, finalText, finalError string) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var polls atomic.Int32

	mux := http.NewServeMux()
	mux.HandleFunc("POST /v2/upload", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "test-key" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/octet-stream" {
			t.Errorf("upload Content-Type = %q, want application/octet-stream", ct)
		}
		body, _ := io.ReadAll(r.Body)
		if len(body) == 0 {
			t.Error("upload body is empty")
		}
		_ = json.NewEncoder(w).Encode(map[string]string{
			"upload_url": "https://cdn.example.com/upload/abc123",
		})
	})
	mux.HandleFunc("POST /v2/transcript", func(w http.ResponseWriter, r *http.Request) {
		var req map[string]any
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode transcript request: %v", err)
		}
		if req["audio_url"] != "https://cdn.example.com/upload/abc123" {
			t.Errorf("audio_url = %v, want upload URL", req["audio_url"])
		}
		_ = json.NewEncoder(w).Encode(map[string]string{
			"id":     "tr-1",
			"status": "queued",
		})
	})
	mux.HandleFunc("GET /v2/transcript/tr-1", func(w http.ResponseWriter, r *http.Request) {
		n := polls.Add(1)
		resp := transcriptResponse{ID: "tr-1", Status: "processing"}
		if int(n) > pollsUntilDone {
			resp.Status = finalStatus
			resp.Text = finalText
			resp.Error = finalError
			resp.LanguageCode = "en"
			resp.AudioDuration = 12.5
		}
		_ = json.NewEncoder(w).Encode(resp)
	})

	return httptest.NewServer(mux), &polls
}

func newTestProvider(url string) *Provider {
	return NewProvider(Config{
		APIKey:       "test-key",
		BaseURL:      url,
		PollInterval: 5 * time.Millisecond,
		PollTimeout:  2 * time.Second,
	})
}

func TestTranscribe_Success(t *testing.T) {
	server, polls := newTestServer(t, 2, "completed", "I applied to Google today", "")
	defer server.Close()

	p := newTestProvider(server.URL)
	result, err := p.Transcribe(context.Background(), transcription.Request{
		Audio:    []byte("fake webm bytes"),
		Filename: "recording.webm",
	})
	if err != nil {
		t.Fatalf("Transcribe() error = %v", err)
	}
	if result.Text != "I applied to Google today" {
		t.Errorf("Text = %q, want transcript text", result.Text)
	}
	if result.ID != "tr-1" {
		t.Errorf("ID = %q, want tr-1", result.ID)
	}
	if result.Language != "en" {
		t.Errorf("Language = %q, want en", result.Language)
	}
	if result.Duration != 12.5 {
		t.Errorf("Duration = %v, want 12.5", result.Duration)
	}
	if got := polls.Load(); got < 3 {
		t.Errorf("poll count = %d, want at least 3", got)
	}
}

func TestTranscribe_VendorError(t *testing.T) {
	server, _ := newTestServer(t, 1, "error", "", "audio file is corrupted")
	defer server.Close()

	p := newTestProvider(server.URL)
	_, err := p.Transcribe(context.Background(), transcription.Request{
		Audio: []byte("bad bytes"),
	})
	if err == nil {
		t.Fatal("Transcribe() error = nil, want vendor error")
	}
	if !strings.Contains(err.Error(), "audio file is corrupted") {
		t.Errorf("error = %v, want vendor error message", err)
	}
}

func TestTranscribe_PollTimeout(t *testing.T) {
	// Never completes.
	server, _ := newTestServer(t, 1000, "completed", "", "")
	defer server.Close()

	p := NewProvider(Config{
		APIKey:       "test-key",
		BaseURL:      server.URL,
		PollInterval: 5 * time.Millisecond,
		PollTimeout:  50 * time.Millisecond,
	})
	_, err := p.Transcribe(context.Background(), transcription.Request{
		Audio: []byte("slow bytes"),
	})
	if err == nil {
		t.Fatal("Transcribe() error = nil, want timeout")
	}
	if !strings.Contains(err.Error(), "deadline exceeded") {
		t.Errorf("error = %v, want deadline exceeded", err)
	}
}

func TestTranscribe_ContextCanceled(t *testing.T) {
	server, _ := newTestServer(t, 1000, "completed", "", "")
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(30 * time.Millisecond)
		cancel()
	}()

	p := newTestProvider(server.URL)
	_, err := p.Transcribe(ctx, transcription.Request{
		Audio: []byte("canceled bytes"),
	})
	if err == nil {
		t.Fatal("Transcribe() error = nil, want cancellation")
	}
	if !strings.Contains(err.Error(), "context canceled") {
		t.Errorf("error = %v, want context canceled", err)
	}
}

func TestTranscribe_EmptyAudio(t *testing.T) {
	p := newTestProvider("http://127.0.0.1:1")
	_, err := p.Transcribe(context.Background(), transcription.Request{})
	if err == nil {
		t.Fatal("Transcribe() error = nil, want no audio error")
	}
	if !strings.Contains(err.Error(), "no audio data") {
		t.Errorf("error = %v, want no audio data", err)
	}
}

func TestTranscribe_UploadRejected(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = fmt.Fprint(w, `{"error": "invalid api key"}`)
	}))
	defer server.Close()

	p := newTestProvider(server.URL)
	_, err := p.Transcribe(context.Background(), transcription.Request{
		Audio: []byte("bytes"),
	})
	if err == nil {
		t.Fatal("Transcribe() error = nil, want upload error")
	}
	if !strings.Contains(err.Error(), "assemblyai upload") {
		t.Errorf("error = %v, want upload wrapping", err)
	}
	if !strings.Contains(err.Error(), "401") {
		t.Errorf("error = %v, want status code", err)
	}
}

func TestTranscribe_LanguagePassthrough(t *testing.T) {
	var gotLanguage string
	mux := http.NewServeMux()
	mux.HandleFunc("POST /v2/upload", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{"upload_url": "https://cdn.example.com/u/1"})
	})
	mux.HandleFunc("POST /v2/transcript", func(w http.ResponseWriter, r *http.Request) {
		var req transcriptRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		gotLanguage = req.LanguageCode
		_ = json.NewEncoder(w).Encode(transcriptResponse{ID: "tr-2", Status: "completed", Text: "hola"})
	})
	mux.HandleFunc("GET /v2/transcript/tr-2", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(transcriptResponse{ID: "tr-2", Status: "completed", Text: "hola"})
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	p := newTestProvider(server.URL)
	result, err := p.Transcribe(context.Background(), transcription.Request{
		Audio:    []byte("audio"),
		Language: "es",
	})
	if err != nil {
		t.Fatalf("Transcribe() error = %v", err)
	}
	if gotLanguage != "es" {
		t.Errorf("language_code = %q, want es", gotLanguage)
	}
	if result.Text != "hola" {
		t.Errorf("Text = %q, want hola", result.Text)
	}
}

func TestFactory(t *testing.T) {
	factory := Factory()

	p, err := factory(map[string]any{
		"api_key":       "key-123",
		"base_url":      "http://localhost:9999",
		"poll_interval": 100 * time.Millisecond,
		"poll_timeout":  10 * time.Second,
	})
	if err != nil {
		t.Fatalf("factory error = %v", err)
	}
	if p.Name() != ProviderName {
		t.Errorf("Name() = %q, want %q", p.Name(), ProviderName)
	}

	ap, ok := p.(*Provider)
	if !ok {
		t.Fatalf("factory returned %T, want *Provider", p)
	}
	if ap.cfg.PollInterval != 100*time.Millisecond {
		t.Errorf("PollInterval = %v, want 100ms", ap.cfg.PollInterval)
	}
}

func TestFactory_MissingKey(t *testing.T) {
	factory := Factory()
	_, err := factory(map[string]any{"base_url": "http://localhost"})
	if err == nil {
		t.Fatal("factory error = nil, want api_key required")
	}
	if !strings.Contains(err.Error(), "api_key") {
		t.Errorf("error = %v, want api_key mention", err)
	}
}

func TestNewProvider_Defaults(t *testing.T) {
	p := NewProvider(Config{APIKey: "k"})
	if p.cfg.BaseURL != defaultBaseURL {
		t.Errorf("BaseURL = %q, want %q", p.cfg.BaseURL, defaultBaseURL)
	}
	if p.cfg.PollInterval != defaultPollInterval {
		t.Errorf("PollInterval = %v, want %v", p.cfg.PollInterval, defaultPollInterval)
	}
	if p.cfg.PollTimeout != defaultPollTimeout {
		t.Errorf("PollTimeout = %v, want %v", p.cfg.PollTimeout, defaultPollTimeout)
	}
}

func TestIsAvailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") == "good-key" {
			w.WriteHeader(http.StatusOK)
			return
		}
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	good := NewProvider(Config{APIKey: "good-key", BaseURL: server.URL})
	if !good.IsAvailable(context.Background()) {
		t.Error("IsAvailable() = false for accepted key")
	}

	bad := NewProvider(Config{APIKey: "bad-key", BaseURL: server.URL})
	if bad.IsAvailable(context.Background()) {
		t.Error("IsAvailable() = true for rejected key")
	}
}
