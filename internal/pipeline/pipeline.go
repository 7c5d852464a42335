// Package pipeline orchestrates the recording-to-spreadsheet flow.
//
// A submitted recording moves through three stages in order: transcribing
// (speech to text), extracting (structured field extraction), and appending
// (spreadsheet persistence). Stages run strictly sequentially, each stage
// consumes the previous stage's output, and a failure stops the flow with
// an error tagged by the stage that produced it. Each stage execution is
// traced and measured.
package pipeline

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/skillsenselab/jobhunt/internal/apperr"
	"github.com/skillsenselab/jobhunt/internal/extract"
	"github.com/skillsenselab/jobhunt/internal/logger"
	"github.com/skillsenselab/jobhunt/internal/observability"
	"github.com/skillsenselab/jobhunt/internal/sheets"
	"github.com/skillsenselab/jobhunt/internal/transcription"
)

// Transcriber converts recorded audio into text.
type Transcriber interface {
	Transcribe(ctx context.Context, req transcription.Request) (*transcription.Result, error)
}

// Extractor pulls structured job application fields out of a transcript.
type Extractor interface {
	Extract(ctx context.Context, transcript string) (*extract.Record, error)
}

// Appender persists an extracted record to the spreadsheet.
type Appender interface {
	AppendRow(ctx context.Context, rec *extract.Record) (*sheets.AppendResult, error)
}

// Pipeline runs recordings through transcription, extraction, and append.
// It is safe for concurrent use when its stage implementations are.
type Pipeline struct {
	transcriber Transcriber
	extractor   Extractor
	appender    Appender
	log         *logger.Logger
	metrics     *observability.Metrics
}

// New creates a Pipeline over the given stage implementations.
// metrics may be nil when telemetry is disabled.
func New(t Transcriber, e Extractor, a Appender, metrics *observability.Metrics) *Pipeline {
	return &Pipeline{
		transcriber: t,
		extractor:   e,
		appender:    a,
		log:         logger.WithComponent("pipeline"),
		metrics:     metrics,
	}
}

// Process runs a recording through all stages and returns the appended
// record. The returned error is always an *apperr.Error carrying the
// stage that failed.
func (p *Pipeline) Process(ctx context.Context, req transcription.Request) (*extract.Record, error) {
	var result *transcription.Result
	err := p.runStage(ctx, observability.SpanTranscribing, apperr.StageTranscribing, func(ctx context.Context) error {
		var err error
		result, err = p.transcriber.Transcribe(ctx, req)
		if err != nil {
			return err
		}
		if strings.TrimSpace(result.Text) == "" {
			return apperr.EmptyTranscript()
		}
		return nil
	})
	if err != nil {
		return nil, stageError(err, func(cause error) *apperr.Error {
			return apperr.Transcription("could not transcribe audio", cause)
		})
	}

	transcript := strings.TrimSpace(result.Text)
	p.log.Debug("transcript ready", map[string]interface{}{
		"transcript_id": result.ID,
		"chars":         len(transcript),
	})

	var rec *extract.Record
	err = p.runStage(ctx, observability.SpanExtracting, apperr.StageExtracting, func(ctx context.Context) error {
		var err error
		rec, err = p.extractor.Extract(ctx, transcript)
		return err
	})
	if err != nil {
		return nil, stageError(err, func(cause error) *apperr.Error {
			return apperr.Extraction("could not extract job details from transcript", cause)
		})
	}

	var appended *sheets.AppendResult
	err = p.runStage(ctx, observability.SpanAppending, apperr.StageAppending, func(ctx context.Context) error {
		var err error
		appended, err = p.appender.AppendRow(ctx, rec)
		return err
	})
	if err != nil {
		return nil, stageError(err, func(cause error) *apperr.Error {
			return apperr.Sheet("could not append to spreadsheet", cause)
		})
	}

	if p.metrics != nil {
		p.metrics.RecordRowAppended(ctx)
	}
	p.log.Info("recording processed", map[string]interface{}{
		"company":      rec.Company,
		"role":         rec.Role,
		"spreadsheet":  appended.SpreadsheetID,
		"updated_rows": appended.UpdatedRows,
	})

	return rec, nil
}

// runStage executes fn inside a span with stage metrics and logging.
func (p *Pipeline) runStage(ctx context.Context, spanName string, stage apperr.Stage, fn func(ctx context.Context) error) error {
	ctx, span := observability.StartSpan(ctx, spanName)
	defer span.End()

	observability.SetSpanAttribute(ctx, observability.AttrStage, string(stage))

	start := time.Now()
	err := fn(ctx)
	duration := time.Since(start)

	status := "ok"
	if err != nil {
		status = "error"
		observability.SetSpanError(ctx, err)
	}
	if p.metrics != nil {
		p.metrics.RecordStage(ctx, string(stage), status, duration)
		if err != nil {
			p.metrics.RecordError(ctx, string(stage), "pipeline")
		}
	}

	fields := map[string]interface{}{
		"stage":    string(stage),
		"duration": duration.String(),
	}
	if err != nil {
		fields["error"] = err.Error()
		p.log.Error("pipeline stage failed", fields)
	} else {
		p.log.Debug("pipeline stage completed", fields)
	}

	return err
}

// stageError returns err unchanged when it already carries stage tagging,
// otherwise wraps it with the stage's constructor.
func stageError(err error, wrap func(cause error) *apperr.Error) error {
	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return wrap(err)
}
