// Package ocr provides OCR (Optical Character Recognition) over cleaned
// receipt rasters.
//
// Two engines are supported and chosen by configuration:
//   - Tesseract (via gosseract), the default, running locally with the
//     Vietnamese traineddata.
//   - Google Cloud Vision document text detection, for deployments that
//     prefer a managed engine.
//
// Both return unstructured text that may contain misrecognitions,
// merged or split words, and spurious punctuation; downstream stages
// are responsible for correction and extraction. The adapter does not
// retry on its own; a failed call is a hard failure for that receipt.
package ocr

import (
	"context"
	"image"
)

// Service defines the contract for OCR text extraction engines.
type Service interface {
	// Recognize extracts text from a cleaned binary raster using the
	// given language/script identifier (Tesseract language code, e.g.
	// "vie"). Returns the raw recognized text.
	Recognize(ctx context.Context, img image.Image, lang string) (string, error)

	// Close releases any resources held by the engine.
	Close() error
}
