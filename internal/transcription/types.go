package transcription

// Request holds parameters for a transcription call.
type Request struct {
	// Audio is the raw audio content to transcribe.
	Audio []byte `json:"-"`
	// Filename is the original upload filename (informational).
	Filename string `json:"filename,omitempty"`
	// ContentType is the MIME type of the audio, if known.
	ContentType string `json:"content_type,omitempty"`
	// Language is the expected language of the audio (e.g. "en").
	Language string `json:"language,omitempty"`
}

// Result holds the result of a transcription call.
type Result struct {
	// Text is the full transcript text.
	Text string `json:"text"`
	// ID is the vendor-side transcript identifier, if any.
	ID string `json:"id,omitempty"`
	// Language is the detected or specified language.
	Language string `json:"language,omitempty"`
	// Duration is the audio duration in seconds.
	Duration float64 `json:"duration,omitempty"`
}
