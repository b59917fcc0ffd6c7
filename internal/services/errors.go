package services

import (
	"errors"
	"fmt"
	"net/http"

	"alfredoptarigan/research-advisor/internal/models"
)

// ErrorKind classifies why an analysis run failed.
type ErrorKind string

const (
	KindInvalidRequest        ErrorKind = "INVALID_REQUEST"
	KindExtractionFailed      ErrorKind = "EXTRACTION_FAILED"
	KindAnalysisServiceFailed ErrorKind = "ANALYSIS_SERVICE_FAILED"
	KindTrendServiceFailed    ErrorKind = "TREND_SERVICE_FAILED"

	// KindFileTooLarge is reported by the upload layer before a run starts.
	KindFileTooLarge ErrorKind = "FILE_TOO_LARGE"
)

// Sentinels, one per kind. Match with errors.Is.
var (
	ErrInvalidRequest        = errors.New("invalid analysis request")
	ErrExtractionFailed      = errors.New("text extraction failed")
	ErrAnalysisServiceFailed = errors.New("cv analysis service failed")
	ErrTrendServiceFailed    = errors.New("paper trend service failed")
)

func (k ErrorKind) sentinel() error {
	switch k {
	case KindInvalidRequest:
		return ErrInvalidRequest
	case KindExtractionFailed:
		return ErrExtractionFailed
	case KindAnalysisServiceFailed:
		return ErrAnalysisServiceFailed
	case KindTrendServiceFailed:
		return ErrTrendServiceFailed
	default:
		return nil
	}
}

// StatusCode maps a kind onto the HTTP status returned to API callers.
func (k ErrorKind) StatusCode() int {
	switch k {
	case KindInvalidRequest:
		return http.StatusBadRequest
	case KindExtractionFailed:
		return http.StatusUnprocessableEntity
	case KindAnalysisServiceFailed, KindTrendServiceFailed:
		return http.StatusBadGateway
	case KindFileTooLarge:
		return http.StatusRequestEntityTooLarge
	default:
		return http.StatusInternalServerError
	}
}

// PipelineError is the only error type RunAnalysis returns. Err keeps the raw
// diagnostic for logs; callers show Localize() to end users.
type PipelineError struct {
	Kind  ErrorKind
	Stage models.PipelineStage
	Err   error
}

func newPipelineError(kind ErrorKind, stage models.PipelineStage, err error) *PipelineError {
	return &PipelineError{Kind: kind, Stage: stage, Err: err}
}

func (e *PipelineError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s during %s: %v", e.Kind, e.Stage, e.Err)
	}
	return fmt.Sprintf("%s during %s", e.Kind, e.Stage)
}

func (e *PipelineError) Unwrap() error {
	return e.Err
}

func (e *PipelineError) Is(target error) bool {
	sentinel := e.Kind.sentinel()
	return sentinel != nil && target == sentinel
}

// Localize returns the single user-facing message for this failure kind.
func (e *PipelineError) Localize(locale string) string {
	return Message(locale, e.Kind)
}

// AsPipelineError extracts a *PipelineError from err, if present.
func AsPipelineError(err error) (*PipelineError, bool) {
	var pe *PipelineError
	if errors.As(err, &pe) {
		return pe, true
	}
	return nil, false
}
