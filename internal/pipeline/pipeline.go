// Package pipeline runs one receipt photo end to end: load, normalize,
// binarize, close, recognize, correct, extract, parse. Each stage gets
// its own deadline and its failures are classified so batch callers can
// decide per image what to do next.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/disintegration/imaging"
	"github.com/rs/zerolog"

	"hoadon/internal/correct"
	"hoadon/internal/extract"
	"hoadon/internal/logger"
	"hoadon/internal/ocr"
	"hoadon/internal/preprocess"
	"hoadon/pkg/models"
)

// FailureKind classifies why a run produced no record. The distinction
// matters downstream: a resource failure is the operator's problem, an
// unavailable service may recover on its own, a timeout is tuning, and
// an output format failure means the model replied with something we
// refused to trust.
type FailureKind string

const (
	FailureNone         FailureKind = ""
	FailureResource     FailureKind = "resource"
	FailureUnavailable  FailureKind = "service_unavailable"
	FailureTimeout      FailureKind = "timeout"
	FailureOutputFormat FailureKind = "output_format"
)

// Result is the outcome of processing one image. Exactly one of Record
// and Err is set. RawReply carries the model's cleaned reply when the
// failure was an output format problem, so the operator can see what
// came back.
type Result struct {
	Filename   string
	Record     *models.InvoiceRecord
	Mismatches []models.Mismatch
	Kind       FailureKind
	RawReply   string
	Err        error
}

// Failed reports whether the run produced no usable record.
func (r Result) Failed() bool {
	return r.Err != nil
}

// Options tunes the stages. Zero values fall back to the package
// defaults used by the reference deployment.
type Options struct {
	TargetDPI      int
	MinSizeInches  int
	OCRLanguage    string
	OCRTimeout     time.Duration
	LLMTimeout     time.Duration
	MaxTextLength  int
	CrossTolerance float64
}

// Pipeline wires the three external collaborators together. It is safe
// for concurrent use when its collaborators are; the Tesseract service
// creates a fresh client per call for exactly this reason.
type Pipeline struct {
	ocr       ocr.Service
	corrector correct.Corrector
	extractor extract.Extractor
	opts      Options
	log       zerolog.Logger
}

// New builds a pipeline. corrector may be a Passthrough when no
// correction service is configured.
func New(ocrService ocr.Service, corrector correct.Corrector, extractor extract.Extractor, opts Options) *Pipeline {
	if opts.TargetDPI <= 0 {
		opts.TargetDPI = preprocess.DefaultTargetDPI
	}
	if opts.MinSizeInches <= 0 {
		opts.MinSizeInches = preprocess.DefaultMinSizeInches
	}
	if opts.OCRLanguage == "" {
		opts.OCRLanguage = "vie"
	}
	if opts.OCRTimeout <= 0 {
		opts.OCRTimeout = 60 * time.Second
	}
	if opts.LLMTimeout <= 0 {
		opts.LLMTimeout = 120 * time.Second
	}
	if opts.MaxTextLength <= 0 {
		opts.MaxTextLength = correct.DefaultMaxLength
	}
	return &Pipeline{
		ocr:       ocrService,
		corrector: corrector,
		extractor: extractor,
		opts:      opts,
		log:       logger.WithComponent("pipeline"),
	}
}

// Process runs one image file through every stage and returns a
// classified Result. It never panics on bad input; unreadable or
// undecodable files come back as resource failures.
func (p *Pipeline) Process(ctx context.Context, path string) Result {
	log := logger.WithReceipt("pipeline", path)
	result := Result{Filename: path}
	start := time.Now()

	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		return p.fail(result, FailureResource, fmt.Errorf("load image: %w", err))
	}

	normalized := preprocess.Normalize(img, p.opts.TargetDPI, p.opts.MinSizeInches)
	binary := preprocess.Binarize(normalized)
	closed := preprocess.Close(binary)
	log.Debug().
		Dur("elapsed", time.Since(start)).
		Int("width", closed.Bounds().Dx()).
		Int("height", closed.Bounds().Dy()).
		Msg("Image preprocessed")

	ocrCtx, cancel := context.WithTimeout(ctx, p.opts.OCRTimeout)
	text, err := p.ocr.Recognize(ocrCtx, closed, p.opts.OCRLanguage)
	cancel()
	if err != nil {
		return p.fail(result, classify(err), fmt.Errorf("recognize: %w", err))
	}
	log.Debug().Int("text_len", len(text)).Msg("OCR complete")

	corrected, err := p.corrector.Correct(ctx, text, p.opts.MaxTextLength)
	if err != nil {
		// Correction is best effort. The raw OCR text still extracts,
		// just with more misspellings for the ruleset to absorb.
		log.Warn().Err(err).Msg("Text correction failed, using raw OCR text")
		corrected = text
	}

	llmCtx, cancel := context.WithTimeout(ctx, p.opts.LLMTimeout)
	reply, err := p.extractor.Extract(llmCtx, corrected)
	cancel()
	if err != nil {
		return p.fail(result, classify(err), fmt.Errorf("extract: %w", err))
	}

	record, err := extract.ParseReply(reply)
	if err != nil {
		var formatErr *extract.FormatError
		if errors.As(err, &formatErr) {
			result.RawReply = formatErr.Raw
		}
		return p.fail(result, FailureOutputFormat, err)
	}

	result.Record = record
	result.Mismatches = record.CrossCheck(p.opts.CrossTolerance)
	log.Info().
		Dur("elapsed", time.Since(start)).
		Int("items", len(record.Items)).
		Int("mismatches", len(result.Mismatches)).
		Msg("Receipt processed")
	return result
}

func (p *Pipeline) fail(result Result, kind FailureKind, err error) Result {
	result.Kind = kind
	result.Err = err
	p.log.Error().
		Err(err).
		Str("filename", result.Filename).
		Str("kind", string(kind)).
		Msg("Receipt processing failed")
	return result
}

// classify maps stage errors onto failure kinds. Timeouts are detected
// before service errors because a cancelled call usually surfaces both.
func classify(err error) FailureKind {
	switch {
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return FailureTimeout
	case errors.Is(err, os.ErrNotExist):
		return FailureResource
	case errors.Is(err, ocr.ErrServiceUnavailable),
		errors.Is(err, ocr.ErrMissingCredentials),
		errors.Is(err, correct.ErrServiceUnavailable),
		errors.Is(err, extract.ErrServiceUnavailable):
		return FailureUnavailable
	case errors.Is(err, ocr.ErrEmptyText), errors.Is(err, ocr.ErrUnsupportedLanguage):
		return FailureResource
	default:
		return FailureUnavailable
	}
}
