// Package api serves the public HTTP surface: the root status probe, the
// recorder page, and the audio upload endpoint that feeds the pipeline.
package api

import (
	"context"
	"errors"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/skillsenselab/jobhunt/internal/apperr"
	"github.com/skillsenselab/jobhunt/internal/extract"
	"github.com/skillsenselab/jobhunt/internal/logger"
	"github.com/skillsenselab/jobhunt/internal/observability"
	"github.com/skillsenselab/jobhunt/internal/server"
	"github.com/skillsenselab/jobhunt/internal/transcription"
	"github.com/skillsenselab/jobhunt/internal/util"
)

// rootMessage is the fixed body served at GET /.
const rootMessage = "JobHunt Backend is running."

// uploadField is the multipart form field carrying the recording.
const uploadField = "audio_data"

// allowedExtensions lists the audio containers the recorder page produces
// plus common manual-upload formats.
var allowedExtensions = map[string]bool{
	".webm": true,
	".mp3":  true,
	".wav":  true,
	".m4a":  true,
}

// Processor runs a recording through the processing pipeline.
type Processor interface {
	Process(ctx context.Context, req transcription.Request) (*extract.Record, error)
}

// Handler serves the public routes of the service.
type Handler struct {
	processor Processor
	metrics   *observability.Metrics
	service   string
	maxSize   string
	maxBytes  int64
	webDir    string
	log       *logger.Logger
}

// New creates the API handler. maxBodySize mirrors the server's body limit
// and is quoted in file-too-large responses; metrics may be nil when
// telemetry is disabled.
func New(serviceName string, processor Processor, metrics *observability.Metrics, maxBodySize, webDir string) *Handler {
	return &Handler{
		processor: processor,
		metrics:   metrics,
		service:   serviceName,
		maxSize:   maxBodySize,
		maxBytes:  util.ParseSize(maxBodySize, 0),
		webDir:    webDir,
		log:       logger.WithComponent("api"),
	}
}

// RegisterRoutes registers the public routes on the Gin engine.
func (h *Handler) RegisterRoutes(engine *gin.Engine) {
	engine.GET("/", h.Root)
	engine.GET("/app", h.App)
	engine.POST("/upload-audio", h.Upload)
}

// Root confirms the service is running.
func (h *Handler) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": rootMessage})
}

// App serves the browser recorder page.
func (h *Handler) App(c *gin.Context) {
	c.File(filepath.Join(h.webDir, "index.html"))
}

// Upload accepts a recording, runs it through the pipeline, and returns
// the extracted record. Validation failures never reach the pipeline.
func (h *Handler) Upload(c *gin.Context) {
	requestID := c.GetString("request_id")
	oc := observability.NewOperationContext(h.service, "upload-audio", requestID, h.metrics)
	ctx := observability.WithOperationContext(c.Request.Context(), oc)
	ctx, span := oc.StartSpanForOperation(ctx, observability.SpanUpload)

	req, err := h.parseUpload(c)
	if err != nil {
		oc.EndOperation(ctx, span, "rejected", err)
		server.RespondWithError(c, err)
		return
	}

	h.log.Debug("upload accepted", map[string]interface{}{
		"filename":     req.Filename,
		"bytes":        len(req.Audio),
		"content_type": req.ContentType,
	})

	rec, err := h.processor.Process(ctx, *req)
	if err != nil {
		oc.EndOperation(ctx, span, "error", err)
		server.RespondWithError(c, err)
		return
	}

	oc.EndOperation(ctx, span, "ok", nil)
	server.RespondOK(c, rec)
}

// parseUpload reads the recording from either a multipart form or a raw
// request body and validates it.
func (h *Handler) parseUpload(c *gin.Context) (*transcription.Request, error) {
	if h.maxBytes > 0 && c.Request.ContentLength > h.maxBytes {
		return nil, apperr.FileTooLarge(h.maxSize)
	}
	if strings.HasPrefix(c.ContentType(), "multipart/form-data") {
		return h.parseMultipart(c)
	}
	return h.parseRaw(c)
}

func (h *Handler) parseMultipart(c *gin.Context) (*transcription.Request, error) {
	file, err := c.FormFile(uploadField)
	if err != nil {
		if tooLarge(err) {
			return nil, apperr.FileTooLarge(h.maxSize)
		}
		return nil, apperr.Validation("No audio file provided")
	}
	if file.Filename == "" {
		return nil, apperr.Validation("No file selected")
	}
	if !allowedExtensions[strings.ToLower(filepath.Ext(file.Filename))] {
		return nil, apperr.Validation("Invalid file type. Please upload an audio file.")
	}

	f, err := file.Open()
	if err != nil {
		return nil, apperr.Internal(err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		if tooLarge(err) {
			return nil, apperr.FileTooLarge(h.maxSize)
		}
		return nil, apperr.Internal(err)
	}
	if len(data) == 0 {
		return nil, apperr.Validation("Empty audio file")
	}

	return &transcription.Request{
		Audio:       data,
		Filename:    file.Filename,
		ContentType: file.Header.Get("Content-Type"),
	}, nil
}

func (h *Handler) parseRaw(c *gin.Context) (*transcription.Request, error) {
	contentType := c.ContentType()
	if !strings.HasPrefix(contentType, "audio/") && contentType != "application/octet-stream" {
		return nil, apperr.Validation("Invalid file type. Please upload an audio file.")
	}

	data, err := io.ReadAll(c.Request.Body)
	if err != nil {
		if tooLarge(err) {
			return nil, apperr.FileTooLarge(h.maxSize)
		}
		return nil, apperr.Internal(err)
	}
	if len(data) == 0 {
		return nil, apperr.Validation("No audio file provided")
	}

	return &transcription.Request{
		Audio:       data,
		ContentType: contentType,
	}, nil
}

func tooLarge(err error) bool {
	var maxErr *http.MaxBytesError
	return errors.As(err, &maxErr)
}
