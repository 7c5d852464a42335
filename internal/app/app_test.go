package app

import (
	"context"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/skillsenselab/jobhunt/internal/apperr"
	"github.com/skillsenselab/jobhunt/internal/component"
	"github.com/skillsenselab/jobhunt/internal/config"
	"github.com/skillsenselab/jobhunt/internal/sheets"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// mockComponent implements component.Component for registry tests.
type mockComponent struct {
	name    string
	health  component.Health
	started bool
	stopped bool
}

func (m *mockComponent) Name() string { return m.name }
func (m *mockComponent) Start(ctx context.Context) error {
	m.started = true
	return nil
}
func (m *mockComponent) Stop(ctx context.Context) error {
	m.stopped = true
	return nil
}
func (m *mockComponent) Health(ctx context.Context) component.Health {
	return m.health
}

func testAppConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Logging.Level = "error"
	cfg.Server.Host = "127.0.0.1"
	cfg.Transcription.APIKey = "aa-test-key"
	cfg.LLM.APIKey = "gem-test-key"
	return cfg
}

func TestNew(t *testing.T) {
	a, err := New(testAppConfig())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if a.cfg.Name != "jobhunt" {
		t.Errorf("expected default name 'jobhunt', got %q", a.cfg.Name)
	}
	if a.version == "" {
		t.Error("expected resolved version")
	}
	for _, name := range []string{"telemetry", "sheets", "http-server"} {
		if a.registry.Get(name) == nil {
			t.Errorf("expected component %q registered", name)
		}
	}
}

func TestNewConfigVersionWins(t *testing.T) {
	cfg := testAppConfig()
	cfg.Version = "9.9.9"
	a, err := New(cfg)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if a.version != "9.9.9" {
		t.Errorf("expected version '9.9.9', got %q", a.version)
	}
}

func TestNewMissingTranscriptionKey(t *testing.T) {
	cfg := testAppConfig()
	cfg.Transcription.APIKey = ""
	_, err := New(cfg)
	if err == nil {
		t.Fatal("expected error for missing transcription key")
	}
	appErr, ok := apperr.As(err)
	if !ok {
		t.Fatalf("expected structured error, got %v", err)
	}
	if appErr.Code != apperr.CodeConfiguration {
		t.Errorf("expected configuration code, got %q", appErr.Code)
	}
}

func TestNewMissingLLMKey(t *testing.T) {
	cfg := testAppConfig()
	cfg.LLM.APIKey = ""
	if _, err := New(cfg); err == nil {
		t.Error("expected error for missing llm key")
	}
}

func TestNewInvalidEnvironment(t *testing.T) {
	cfg := testAppConfig()
	cfg.Environment = "canary"
	if _, err := New(cfg); err == nil {
		t.Error("expected error for unknown environment")
	}
}

func TestConfigureRegistersRoutes(t *testing.T) {
	a, err := New(testAppConfig())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if err := a.configure(context.Background()); err != nil {
		t.Fatalf("configure failed: %v", err)
	}

	registered := make(map[string]bool)
	for _, r := range a.srv.GinEngine().Routes() {
		registered[r.Method+" "+r.Path] = true
	}
	for _, want := range []string{
		"GET /", "GET /app", "POST /upload-audio", "GET /health", "GET /info",
	} {
		if !registered[want] {
			t.Errorf("expected route %q, got %v", want, registered)
		}
	}
}

func TestConfigureUnknownProvider(t *testing.T) {
	cfg := testAppConfig()
	cfg.Transcription.Provider = "whisper-local"
	a, err := New(cfg)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if err := a.configure(context.Background()); err == nil {
		t.Error("expected error for unregistered provider")
	}
}

func TestReadyCheckIgnoresDegraded(t *testing.T) {
	a, err := New(testAppConfig())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	// The sheets component reports degraded until the credentials bundle
	// loads, which must not fail the ready check.
	if err := a.readyCheck(context.Background()); err != nil {
		t.Errorf("expected clean ready check, got %v", err)
	}
}

func TestReadyCheckFlagsUnhealthy(t *testing.T) {
	a, err := New(testAppConfig())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	a.registry.Register(&mockComponent{
		name:   "broken",
		health: component.Health{Name: "broken", Status: component.StatusUnhealthy, Message: "timeout"},
	})

	if err := a.readyCheck(context.Background()); err == nil {
		t.Error("expected error for unhealthy component")
	}
}

func TestStopBeforeStart(t *testing.T) {
	a, err := New(testAppConfig())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if err := a.stop(); err != nil {
		t.Errorf("stop before start failed: %v", err)
	}
}

func TestWaitForSignalContextCancellation(t *testing.T) {
	a, err := New(testAppConfig())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		a.waitForSignal(ctx)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("waitForSignal did not return on context cancellation")
	}
}

func TestSheetsComponent(t *testing.T) {
	cfg := sheets.Config{CredentialsFile: "testdata/nope.json", SpreadsheetName: "JobsHunt-sheet"}
	cfg.ApplyDefaults()
	client, err := sheets.New(cfg)
	if err != nil {
		t.Fatalf("sheets.New failed: %v", err)
	}

	sc := newSheetsComponent(client, cfg)
	if sc.Name() != "sheets" {
		t.Errorf("Name = %q", sc.Name())
	}
	if err := sc.Start(context.Background()); err != nil {
		t.Errorf("Start failed: %v", err)
	}
	if err := sc.Stop(context.Background()); err != nil {
		t.Errorf("Stop failed: %v", err)
	}

	h := sc.Health(context.Background())
	if h.Status != component.StatusDegraded {
		t.Errorf("expected degraded before first append, got %q", h.Status)
	}

	d := sc.Describe()
	if d.Type != "client" {
		t.Errorf("Type = %q, want client", d.Type)
	}
	if d.Name != "Google Sheets" {
		t.Errorf("Name = %q", d.Name)
	}
}

func TestNewSummary(t *testing.T) {
	s := NewSummary("jobhunt", "1.0.0")
	if s == nil {
		t.Fatal("expected non-nil summary")
	}
	if s.serviceName != "jobhunt" {
		t.Errorf("expected 'jobhunt', got %q", s.serviceName)
	}
	if s.version != "1.0.0" {
		t.Errorf("expected '1.0.0', got %q", s.version)
	}
}

func TestSummaryTrackBusiness(t *testing.T) {
	s := NewSummary("svc", "1.0")
	s.TrackBusiness("pipeline", "service", []string{"assemblyai", "gemini", "sheets"})

	if len(s.business) != 1 {
		t.Fatalf("expected 1 business component, got %d", len(s.business))
	}
	if s.business[0].Name != "pipeline" {
		t.Errorf("expected 'pipeline', got %q", s.business[0].Name)
	}
	if len(s.business[0].Dependencies) != 3 {
		t.Errorf("expected 3 dependencies, got %d", len(s.business[0].Dependencies))
	}
}

func TestSummaryTrackClient(t *testing.T) {
	s := NewSummary("svc", "1.0")
	s.TrackClient("gemini", "generativelanguage.googleapis.com", "llm")

	if len(s.clients) != 1 {
		t.Fatalf("expected 1 client, got %d", len(s.clients))
	}
	if s.clients[0].Type != "llm" {
		t.Errorf("expected type 'llm', got %q", s.clients[0].Type)
	}
}

func TestSummarySetStartupDuration(t *testing.T) {
	s := NewSummary("svc", "1.0")
	s.SetStartupDuration(500 * time.Millisecond)

	if s.startupDuration != 500*time.Millisecond {
		t.Errorf("expected 500ms, got %v", s.startupDuration)
	}
}

// mockDescribableComponent implements Component, Describable and RouteProvider.
type mockDescribableComponent struct {
	mockComponent
	desc   component.Description
	routes []component.Route
}

func (m *mockDescribableComponent) Describe() component.Description { return m.desc }
func (m *mockDescribableComponent) Routes() []component.Route       { return m.routes }

func TestSummaryDisplay(t *testing.T) {
	s := NewSummary("jobhunt", "1.0.0")
	s.SetStartupDuration(100 * time.Millisecond)
	s.TrackBusiness("pipeline", "service", []string{"assemblyai"})
	s.TrackClient("sheets", "spreadsheet JobsHunt-sheet", "spreadsheet")

	registry := component.NewRegistry()
	registry.Register(&mockDescribableComponent{
		mockComponent: mockComponent{
			name:   "http-server",
			health: component.Health{Name: "http-server", Status: component.StatusHealthy},
		},
		desc: component.Description{
			Name:    "HTTP Server",
			Type:    "server",
			Details: "127.0.0.1:5000",
			Port:    5000,
		},
		routes: []component.Route{
			{Method: "POST", Path: "/upload-audio", Handler: "Handler.Upload"},
		},
	})

	// Display writes to stdout and must not panic.
	s.Display(registry)
}

func TestSummaryDisplayNilRegistry(t *testing.T) {
	s := NewSummary("jobhunt", "1.0.0")
	s.SetStartupDuration(100 * time.Millisecond)
	s.Display(nil)
}

func TestTreePrefix(t *testing.T) {
	if p := treePrefix(2, 3); p != "└──" {
		t.Errorf("expected '└──' for last item, got %q", p)
	}
	if p := treePrefix(0, 3); p != "├──" {
		t.Errorf("expected '├──' for non-last item, got %q", p)
	}
}

func TestHealthIcon(t *testing.T) {
	tests := []struct {
		status component.HealthStatus
		icon   string
	}{
		{component.StatusHealthy, "✅"},
		{component.StatusDegraded, "⚠️"},
		{component.StatusUnhealthy, "❌"},
		{"unknown", "❓"},
	}

	for _, tc := range tests {
		if got := healthIcon(tc.status); got != tc.icon {
			t.Errorf("healthIcon(%q) = %q, expected %q", tc.status, got, tc.icon)
		}
	}
}

func TestBusinessIcon(t *testing.T) {
	if businessIcon("service") != "⚙️" {
		t.Error("expected ⚙️ for service")
	}
	if businessIcon("handler") != "🎯" {
		t.Error("expected 🎯 for handler")
	}
	if businessIcon("other") != "💼" {
		t.Error("expected 💼 for other")
	}
}
