// Package extract turns a spoken job-application transcript into a
// fully-populated Record using an LLM provider. Parsing is tolerant:
// field labels are matched case- and separator-insensitively across
// common synonyms, and anything the model omits falls back to a
// placeholder instead of failing the extraction.
package extract

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/skillsenselab/jobhunt/internal/llm"
	"github.com/skillsenselab/jobhunt/internal/util"
)

const systemPrompt = `You are an assistant that extracts job application details from a spoken transcript and returns them as a clean JSON object.

Extract these five fields:
  - company_name: the company applied to
  - job_role: the role or job title
  - resume_version: which resume version or revision was used
  - platform: where the application was submitted (LinkedIn, company site, referral, ...)
  - status: the application status, if mentioned

Return only valid JSON with exactly these field names: company_name, job_role, resume_version, platform, status. Use "N/A" for any field the transcript does not mention.`

// Extractor extracts job-application fields from transcripts.
type Extractor struct {
	provider llm.Provider
}

// New creates an Extractor backed by the given LLM provider.
func New(p llm.Provider) *Extractor {
	return &Extractor{provider: p}
}

// Extract prompts the model with the transcript and parses the response
// into a Record. Partial extraction is not an error: absent fields get
// Placeholder and an absent status gets DefaultStatus. It fails only
// when the model call errors or returns no usable content.
func (e *Extractor) Extract(ctx context.Context, transcript string) (*Record, error) {
	raw := map[string]any{}
	if err := llm.CompleteStructured(ctx, e.provider, systemPrompt, userPrompt(transcript), &raw); err != nil {
		return nil, fmt.Errorf("extract job details: %w", err)
	}
	if len(raw) == 0 {
		return nil, fmt.Errorf("extract job details: model returned no fields")
	}

	rec := recordFromMap(raw)
	return &rec, nil
}

func userPrompt(transcript string) string {
	return fmt.Sprintf("Here is the transcript:\n%q", transcript)
}

// recordFromMap maps model output keys onto Record fields, tolerating
// label variants the model is known to produce.
func recordFromMap(raw map[string]any) Record {
	rec := Record{
		Company:       Placeholder,
		Role:          Placeholder,
		ResumeVersion: Placeholder,
		Platform:      Placeholder,
		Status:        DefaultStatus,
	}

	for key, value := range raw {
		text := util.SanitizeString(stringify(value))
		if text == "" {
			continue
		}
		switch normalizeKey(key) {
		case "company", "companyname", "employer":
			rec.Company = text
		case "role", "jobrole", "jobtitle", "roletitle", "position":
			rec.Role = text
		case "resumeversion", "resume", "cvversion":
			rec.ResumeVersion = text
		case "platform", "appliedvia", "applicationplatform", "source":
			rec.Platform = text
		case "status", "applicationstatus":
			rec.Status = text
		}
	}

	// A placeholder status means the speaker never said one.
	if strings.EqualFold(rec.Status, Placeholder) {
		rec.Status = DefaultStatus
	}
	return rec
}

// normalizeKey lowercases a label and strips separators so that
// "Company Name", "company_name" and "companyName" all match.
func normalizeKey(key string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(key) {
		switch r {
		case ' ', '_', '-':
			continue
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// stringify renders a decoded JSON value as a cell-ready string.
func stringify(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	case nil:
		return ""
	default:
		return fmt.Sprintf("%v", t)
	}
}
