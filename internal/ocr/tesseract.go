package ocr

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"strings"

	"github.com/otiai10/gosseract/v2"
	"hoadon/internal/logger"
)

// TesseractService implements Service using a local Tesseract engine
// through gosseract. A fresh client is created per call: gosseract
// clients are not safe for concurrent use, and per-call clients let
// independent pipeline runs recognize in parallel.
type TesseractService struct{}

// NewTesseractService creates the default local OCR engine.
func NewTesseractService() *TesseractService {
	return &TesseractService{}
}

// Recognize runs Tesseract over the raster. The page segmentation mode
// is a single uniform text block, which fits the flattened single-column
// layout of retail receipts, and inter-word spaces are preserved so the
// item table's columns survive into the raw text.
func (t *TesseractService) Recognize(ctx context.Context, img image.Image, lang string) (string, error) {
	const op = "Recognize"
	log := logger.WithComponent("ocr-tesseract")

	if err := ctx.Err(); err != nil {
		return "", WrapOCRError(op, err, "context done before recognition")
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", WrapOCRError(op, err, "failed to encode raster as PNG")
	}

	client := gosseract.NewClient()

	if err := client.SetLanguage(lang); err != nil {
		client.Close()
		return "", WrapOCRError(op, ErrUnsupportedLanguage, lang)
	}
	if err := client.SetVariable("preserve_interword_spaces", "1"); err != nil {
		client.Close()
		return "", WrapOCRError(op, err, "failed to set preserve_interword_spaces")
	}
	if err := client.SetPageSegMode(gosseract.PSM_SINGLE_BLOCK); err != nil {
		client.Close()
		return "", WrapOCRError(op, err, "failed to set page segmentation mode")
	}
	if err := client.SetImageFromBytes(buf.Bytes()); err != nil {
		client.Close()
		return "", WrapOCRError(op, err, "failed to load raster into engine")
	}

	// The engine call blocks with no cancellation hook, so it runs on
	// its own goroutine. The client owns a native Tesseract handle and
	// must stay alive until that call returns, even when the caller has
	// already given up on the result.
	text, err := runBlocking(ctx, client.Text, func() { client.Close() })
	switch {
	case err == nil:
	case ctx.Err() != nil:
		return "", WrapOCRError(op, ctx.Err(), "recognition canceled")
	default:
		return "", WrapOCRError(op, ErrServiceUnavailable, err.Error())
	}

	if strings.TrimSpace(text) == "" {
		return "", WrapOCRError(op, ErrEmptyText, "")
	}
	log.Debug().
		Str("lang", lang).
		Int("text_length", len(text)).
		Msg("Tesseract recognition completed")
	return text, nil
}

// Close is a no-op; clients are per-call.
func (t *TesseractService) Close() error {
	return nil
}

type textResult struct {
	text string
	err  error
}

// runBlocking invokes fn on its own goroutine and waits for its result
// or for ctx to end, whichever comes first. cleanup runs only after fn
// has returned: when the caller abandons a canceled call, the goroutine
// drains fn in the background and releases fn's resources once no call
// is live on them.
func runBlocking(ctx context.Context, fn func() (string, error), cleanup func()) (string, error) {
	done := make(chan textResult, 1)
	go func() {
		text, err := fn()
		cleanup()
		done <- textResult{text: text, err: err}
	}()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res := <-done:
		return res.text, res.err
	}
}
