package domain

import (
	"errors"
	"fmt"
)

var (
	ErrMissingCredential   = errors.New("inference API key is not set")
	ErrInvalidModel        = errors.New("unsupported model")
	ErrInvalidLanguage     = errors.New("unsupported language")
	ErrUnsupportedFileType = errors.New("unsupported file type")
	ErrEmptyCompletion     = errors.New("completion response has no choices")
	ErrNoTextDetected      = errors.New("no text detected in image")
)

// MissingInputError indicates a required image path was not supplied.
type MissingInputError struct {
	Field string
}

func (e *MissingInputError) Error() string {
	return fmt.Sprintf("missing input: %s is required", e.Field)
}

// OCRFailureError indicates the OCR engine failed or returned an unusable result.
type OCRFailureError struct {
	Path string
	Err  error
}

func (e *OCRFailureError) Error() string {
	return fmt.Sprintf("ocr failed for %s: %v", e.Path, e.Err)
}

func (e *OCRFailureError) Unwrap() error {
	return e.Err
}

// RemoteServiceError indicates the chat-completion call failed.
// StatusCode is 0 when no HTTP response was received.
type RemoteServiceError struct {
	Provider   string
	StatusCode int
	Err        error
}

func (e *RemoteServiceError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s request failed (status %d): %v", e.Provider, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s request failed: %v", e.Provider, e.Err)
}

func (e *RemoteServiceError) Unwrap() error {
	return e.Err
}

// LoggingError indicates the refined-text record could not be written.
type LoggingError struct {
	Path string
	Err  error
}

func (e *LoggingError) Error() string {
	return fmt.Sprintf("writing record to %s: %v", e.Path, e.Err)
}

func (e *LoggingError) Unwrap() error {
	return e.Err
}

// ValidationError indicates a selector value outside its closed set.
type ValidationError struct {
	Field string
	Value string
	Err   error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s %q: %v", e.Field, e.Value, e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}
