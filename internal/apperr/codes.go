package apperr

// Code represents a machine-readable error code.
type Code string

const (
	// CodeConfiguration indicates missing or invalid configuration
	// (absent API keys, unreadable credential bundle).
	CodeConfiguration Code = "CONFIGURATION_ERROR"
	// CodeTranscription indicates a speech-to-text failure or an empty transcript.
	CodeTranscription Code = "TRANSCRIPTION_ERROR"
	// CodeExtraction indicates a language-model call failure or unusable response.
	CodeExtraction Code = "EXTRACTION_ERROR"
	// CodeSheet indicates a spreadsheet lookup, auth, or append failure.
	CodeSheet Code = "SHEET_ERROR"
	// CodeValidation indicates the request was rejected before the pipeline ran.
	CodeValidation Code = "VALIDATION_ERROR"
	// CodeInternal indicates an unexpected internal error.
	CodeInternal Code = "INTERNAL_ERROR"
)

// Stage identifies the pipeline stage an error belongs to.
type Stage string

const (
	StageReceived     Stage = "received"
	StageTranscribing Stage = "transcribing"
	StageExtracting   Stage = "extracting"
	StageAppending    Stage = "appending"
)

var retryableCodes = map[Code]bool{
	CodeTranscription: true,
	CodeExtraction:    true,
	CodeSheet:         true,
	CodeConfiguration: false,
	CodeValidation:    false,
	CodeInternal:      false,
}

// IsRetryableCode returns true if the error code indicates the caller may
// usefully submit the same recording again.
func IsRetryableCode(code Code) bool {
	return retryableCodes[code]
}
