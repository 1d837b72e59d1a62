package ocr

import (
	"errors"
	"fmt"
)

// Common OCR processing errors
var (
	// ErrServiceUnavailable is returned when the OCR engine cannot be
	// reached or errors out (Tesseract missing, Vision API failure).
	ErrServiceUnavailable = errors.New("OCR engine unavailable")

	// ErrUnsupportedLanguage is returned when the engine has no data
	// for the requested language/script.
	ErrUnsupportedLanguage = errors.New("OCR language not supported by engine")

	// ErrEmptyText is returned when the engine produced no text at all
	// for the raster.
	ErrEmptyText = errors.New("no text recognized in image")

	// ErrMissingCredentials is returned when the Vision backend is
	// selected but no Google Cloud credentials are configured.
	ErrMissingCredentials = errors.New("missing Google Cloud credentials: set GOOGLE_APPLICATION_CREDENTIALS or GOOGLE_CREDENTIALS environment variable")
)

// OCRError wraps errors with additional context about the OCR failure.
type OCRError struct {
	// Op is the operation that failed (e.g., "Recognize").
	Op string

	// Err is the underlying error.
	Err error

	// Details provides additional context about the failure.
	Details string
}

// Error implements the error interface.
func (e *OCRError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("ocr: %s failed: %s: %v", e.Op, e.Details, e.Err)
	}
	return fmt.Sprintf("ocr: %s failed: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error for error unwrapping.
func (e *OCRError) Unwrap() error {
	return e.Err
}

// Is implements error matching for errors.Is.
func (e *OCRError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// WrapOCRError wraps an error as an OCRError if it isn't already one.
func WrapOCRError(op string, err error, details string) error {
	if err == nil {
		return nil
	}

	var ocrErr *OCRError
	if errors.As(err, &ocrErr) {
		return err
	}

	return &OCRError{Op: op, Err: err, Details: details}
}
