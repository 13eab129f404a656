package analysis

// AnalysisError represents analysis pipeline failures
type AnalysisError struct {
	Word    string `json:"word"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Cause   error  `json:"-"`
}

func (e *AnalysisError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *AnalysisError) Unwrap() error {
	return e.Cause
}

// Common error codes
const (
	ErrCodeDecode                = "DECODE_FAILED"
	ErrCodeExtraction            = "EXTRACTION_FAILED"
	ErrCodeRecognizerUnavailable = "RECOGNIZER_UNAVAILABLE"
	ErrCodePhonemizerUnavailable = "PHONEMIZER_UNAVAILABLE"
	ErrCodeTimeout               = "TIMEOUT"
)

// NewAnalysisError creates a new analysis error
func NewAnalysisError(word, code, message string, cause error) *AnalysisError {
	return &AnalysisError{
		Word:    word,
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}
