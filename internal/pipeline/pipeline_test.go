package pipeline

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"go.opentelemetry.io/otel/metric/noop"

	"github.com/skillsenselab/jobhunt/internal/apperr"
	"github.com/skillsenselab/jobhunt/internal/extract"
	"github.com/skillsenselab/jobhunt/internal/observability"
	"github.com/skillsenselab/jobhunt/internal/sheets"
	"github.com/skillsenselab/jobhunt/internal/transcription"
)

type mockTranscriber struct {
	result  *transcription.Result
	err     error
	calls   int
	lastReq transcription.Request
	seq     *[]string
}

func (m *mockTranscriber) Transcribe(_ context.Context, req transcription.Request) (*transcription.Result, error) {
	m.calls++
	m.lastReq = req
	if m.seq != nil {
		*m.seq = append(*m.seq, "transcribe")
	}
	if m.err != nil {
		return nil, m.err
	}
	return m.result, nil
}

type mockExtractor struct {
	rec            *extract.Record
	err            error
	calls          int
	lastTranscript string
	seq            *[]string
}

func (m *mockExtractor) Extract(_ context.Context, transcript string) (*extract.Record, error) {
	m.calls++
	m.lastTranscript = transcript
	if m.seq != nil {
		*m.seq = append(*m.seq, "extract")
	}
	if m.err != nil {
		return nil, m.err
	}
	return m.rec, nil
}

type mockAppender struct {
	result  *sheets.AppendResult
	err     error
	calls   int
	lastRec *extract.Record
	seq     *[]string
}

func (m *mockAppender) AppendRow(_ context.Context, rec *extract.Record) (*sheets.AppendResult, error) {
	m.calls++
	m.lastRec = rec
	if m.seq != nil {
		*m.seq = append(*m.seq, "append")
	}
	if m.err != nil {
		return nil, m.err
	}
	return m.result, nil
}

func testRecord() *extract.Record {
	return &extract.Record{
		Company:       "Google",
		Role:          "Software Engineer",
		ResumeVersion: "2.1",
		Platform:      "LinkedIn",
		Status:        "applied",
	}
}

func testMocks() (*mockTranscriber, *mockExtractor, *mockAppender) {
	t := &mockTranscriber{result: &transcription.Result{Text: "I applied to Google today", ID: "tr-1"}}
	e := &mockExtractor{rec: testRecord()}
	a := &mockAppender{result: &sheets.AppendResult{SpreadsheetID: "sheet-1", UpdatedRange: "Sheet1!A5:F5", UpdatedRows: 1}}
	return t, e, a
}

func TestProcess(t *testing.T) {
	tr, ex, ap := testMocks()
	p := New(tr, ex, ap, nil)

	req := transcription.Request{Audio: []byte("audio"), Filename: "recording.webm", ContentType: "audio/webm"}
	rec, err := p.Process(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if rec.Company != "Google" || rec.Status != "applied" {
		t.Errorf("unexpected record: %+v", rec)
	}
	if tr.calls != 1 || ex.calls != 1 || ap.calls != 1 {
		t.Errorf("calls = %d/%d/%d, want 1/1/1", tr.calls, ex.calls, ap.calls)
	}
	if tr.lastReq.Filename != "recording.webm" {
		t.Errorf("transcriber filename = %q", tr.lastReq.Filename)
	}
	if ap.lastRec != rec {
		t.Error("appended record differs from returned record")
	}
}

func TestProcess_StageOrder(t *testing.T) {
	var seq []string
	tr, ex, ap := testMocks()
	tr.seq, ex.seq, ap.seq = &seq, &seq, &seq
	p := New(tr, ex, ap, nil)

	if _, err := p.Process(context.Background(), transcription.Request{Audio: []byte("a")}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{"transcribe", "extract", "append"}
	if len(seq) != len(want) {
		t.Fatalf("seq = %v, want %v", seq, want)
	}
	for i, s := range want {
		if seq[i] != s {
			t.Errorf("seq[%d] = %q, want %q", i, seq[i], s)
		}
	}
}

func TestProcess_TrimsTranscript(t *testing.T) {
	tr, ex, ap := testMocks()
	tr.result = &transcription.Result{Text: "  I applied to Stripe today \n", ID: "tr-2"}
	p := New(tr, ex, ap, nil)

	if _, err := p.Process(context.Background(), transcription.Request{Audio: []byte("a")}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ex.lastTranscript != "I applied to Stripe today" {
		t.Errorf("extractor transcript = %q", ex.lastTranscript)
	}
}

func TestProcess_TranscriptionError(t *testing.T) {
	tr, ex, ap := testMocks()
	tr.err = fmt.Errorf("assemblyai upload: unexpected status 500")
	p := New(tr, ex, ap, nil)

	_, err := p.Process(context.Background(), transcription.Request{Audio: []byte("a")})
	if err == nil {
		t.Fatal("expected error")
	}

	var appErr *apperr.Error
	if !errors.As(err, &appErr) {
		t.Fatalf("expected *apperr.Error, got %T", err)
	}
	if appErr.Stage != apperr.StageTranscribing {
		t.Errorf("stage = %q, want transcribing", appErr.Stage)
	}
	if appErr.Code != apperr.CodeTranscription {
		t.Errorf("code = %q, want %q", appErr.Code, apperr.CodeTranscription)
	}
	if !appErr.Retryable {
		t.Error("transcription failures should be retryable")
	}
	if !errors.Is(err, tr.err) {
		t.Error("expected wrapped error to retain the cause")
	}
	if ex.calls != 0 || ap.calls != 0 {
		t.Errorf("downstream calls = %d/%d, want 0/0", ex.calls, ap.calls)
	}
}

func TestProcess_EmptyTranscript(t *testing.T) {
	for _, text := range []string{"", "   ", "\n\t  "} {
		tr, ex, ap := testMocks()
		tr.result = &transcription.Result{Text: text, ID: "tr-3"}
		p := New(tr, ex, ap, nil)

		_, err := p.Process(context.Background(), transcription.Request{Audio: []byte("a")})
		if err == nil {
			t.Fatalf("text %q: expected error", text)
		}

		var appErr *apperr.Error
		if !errors.As(err, &appErr) {
			t.Fatalf("text %q: expected *apperr.Error, got %T", text, err)
		}
		if appErr.Stage != apperr.StageTranscribing {
			t.Errorf("text %q: stage = %q, want transcribing", text, appErr.Stage)
		}
		if appErr.Cause != nil {
			t.Errorf("text %q: empty transcript error should not be double wrapped", text)
		}
		if ex.calls != 0 || ap.calls != 0 {
			t.Errorf("text %q: downstream calls = %d/%d, want 0/0", text, ex.calls, ap.calls)
		}
	}
}

func TestProcess_ExtractionError(t *testing.T) {
	tr, ex, ap := testMocks()
	ex.err = fmt.Errorf("extract job details: model returned no fields")
	p := New(tr, ex, ap, nil)

	_, err := p.Process(context.Background(), transcription.Request{Audio: []byte("a")})
	if err == nil {
		t.Fatal("expected error")
	}

	var appErr *apperr.Error
	if !errors.As(err, &appErr) {
		t.Fatalf("expected *apperr.Error, got %T", err)
	}
	if appErr.Stage != apperr.StageExtracting {
		t.Errorf("stage = %q, want extracting", appErr.Stage)
	}
	if ap.calls != 0 {
		t.Errorf("appender calls = %d, want 0", ap.calls)
	}
}

func TestProcess_AppendErrorPassesThrough(t *testing.T) {
	tr, ex, ap := testMocks()
	ap.err = apperr.SheetConfiguration("credentials bundle unavailable", fmt.Errorf("open credentials.json: no such file"))
	p := New(tr, ex, ap, nil)

	_, err := p.Process(context.Background(), transcription.Request{Audio: []byte("a")})
	if err == nil {
		t.Fatal("expected error")
	}

	var appErr *apperr.Error
	if !errors.As(err, &appErr) {
		t.Fatalf("expected *apperr.Error, got %T", err)
	}
	// The appender's own classification must survive untouched.
	if appErr.Code != apperr.CodeConfiguration {
		t.Errorf("code = %q, want %q", appErr.Code, apperr.CodeConfiguration)
	}
	if appErr.Stage != apperr.StageAppending {
		t.Errorf("stage = %q, want appending", appErr.Stage)
	}
	if appErr.Retryable {
		t.Error("configuration faults are not retryable")
	}
}

func TestProcess_AppendErrorWrapsPlain(t *testing.T) {
	tr, ex, ap := testMocks()
	ap.err = fmt.Errorf("connection reset")
	p := New(tr, ex, ap, nil)

	_, err := p.Process(context.Background(), transcription.Request{Audio: []byte("a")})
	var appErr *apperr.Error
	if !errors.As(err, &appErr) {
		t.Fatalf("expected *apperr.Error, got %T", err)
	}
	if appErr.Code != apperr.CodeSheet || appErr.Stage != apperr.StageAppending {
		t.Errorf("code/stage = %q/%q", appErr.Code, appErr.Stage)
	}
}

func TestProcess_PartialRecordStillAppends(t *testing.T) {
	tr, ex, ap := testMocks()
	ex.rec = &extract.Record{
		Company:       "Google",
		Role:          extract.Placeholder,
		ResumeVersion: extract.Placeholder,
		Platform:      extract.Placeholder,
		Status:        extract.DefaultStatus,
	}
	p := New(tr, ex, ap, nil)

	rec, err := p.Process(context.Background(), transcription.Request{Audio: []byte("a")})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ap.calls != 1 {
		t.Errorf("appender calls = %d, want 1", ap.calls)
	}
	if rec.Role != extract.Placeholder {
		t.Errorf("Role = %q, want placeholder", rec.Role)
	}
}

func TestProcess_SequentialRequests(t *testing.T) {
	tr, ex, ap := testMocks()
	p := New(tr, ex, ap, nil)

	for i := 0; i < 2; i++ {
		if _, err := p.Process(context.Background(), transcription.Request{Audio: []byte("a")}); err != nil {
			t.Fatalf("request %d: unexpected error: %v", i, err)
		}
	}
	if ap.calls != 2 {
		t.Errorf("appender calls = %d, want 2", ap.calls)
	}
}

func TestProcess_WithMetrics(t *testing.T) {
	metrics, err := observability.NewMetrics(noop.NewMeterProvider().Meter("test"))
	if err != nil {
		t.Fatalf("unexpected error creating metrics: %v", err)
	}

	tr, ex, ap := testMocks()
	p := New(tr, ex, ap, metrics)

	if _, err := p.Process(context.Background(), transcription.Request{Audio: []byte("a")}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	tr.err = fmt.Errorf("transcode failed")
	if _, err := p.Process(context.Background(), transcription.Request{Audio: []byte("a")}); err == nil {
		t.Fatal("expected error")
	}
}
