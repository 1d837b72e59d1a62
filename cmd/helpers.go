package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"hoadon/internal/config"
	"hoadon/internal/correct"
	"hoadon/internal/extract"
	"hoadon/internal/ocr"
	"hoadon/internal/pipeline"
)

// createContextWithTimeout creates a context with timeout and signal handling
func createContextWithTimeout(timeout time.Duration, log zerolog.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)

	// Handle interrupt signals for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		select {
		case sig := <-sigChan:
			log.Info().
				Str("signal", sig.String()).
				Msg("Received interrupt signal, canceling")
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, cancel
}

// createOCRService picks the OCR backend from configuration.
func createOCRService(ctx context.Context, cfg *config.Config, log zerolog.Logger) (ocr.Service, error) {
	switch cfg.OCRProvider {
	case "vision":
		service, err := ocr.NewVisionService(ctx)
		if err != nil {
			log.Error().Err(err).Msg("Failed to create Vision OCR service")
			return nil, fmt.Errorf("failed to create Vision OCR service: %w", err)
		}
		return service, nil
	default:
		return ocr.NewTesseractService(), nil
	}
}

// createCorrector returns the configured correction client, or a
// passthrough when no correction service is configured.
func createCorrector(cfg *config.Config) correct.Corrector {
	if cfg.CorrectorURL == "" {
		return correct.Passthrough{}
	}
	return correct.NewHTTPCorrector(cfg.CorrectorURL)
}

// createExtractor picks the LLM backend from configuration.
func createExtractor(ctx context.Context, cfg *config.Config, log zerolog.Logger) (extract.Extractor, error) {
	switch cfg.LLMProvider {
	case "openai":
		extractor, err := extract.NewOpenAIExtractor(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.OpenAIModel, cfg.LLMMaxRetries)
		if err != nil {
			log.Error().Err(err).Msg("Failed to create OpenAI extractor")
			return nil, fmt.Errorf("failed to create OpenAI extractor: %w", err)
		}
		return extractor, nil
	default:
		extractor, err := extract.NewGeminiExtractor(ctx, cfg.GeminiKeys, cfg.GeminiModel, cfg.LLMMaxRetries)
		if err != nil {
			log.Error().Err(err).Msg("Failed to create Gemini extractor")
			return nil, fmt.Errorf("failed to create Gemini extractor: %w", err)
		}
		return extractor, nil
	}
}

// buildPipeline assembles the full processing pipeline from
// configuration. The returned cleanup releases the OCR and extractor
// clients.
func buildPipeline(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*pipeline.Pipeline, func(), error) {
	ocrService, err := createOCRService(ctx, cfg, log)
	if err != nil {
		return nil, nil, err
	}

	extractor, err := createExtractor(ctx, cfg, log)
	if err != nil {
		ocrService.Close()
		return nil, nil, err
	}

	p := pipeline.New(ocrService, createCorrector(cfg), extractor, pipeline.Options{
		TargetDPI:      cfg.TargetDPI,
		MinSizeInches:  cfg.MinSizeInches,
		OCRLanguage:    cfg.OCRLanguage,
		OCRTimeout:     cfg.OCRTimeout,
		LLMTimeout:     cfg.LLMTimeout,
		MaxTextLength:  cfg.CorrectorMaxLength,
		CrossTolerance: cfg.CrossTolerance,
	})

	cleanup := func() {
		if err := ocrService.Close(); err != nil {
			log.Warn().Err(err).Msg("Failed to close OCR service")
		}
		if err := extractor.Close(); err != nil {
			log.Warn().Err(err).Msg("Failed to close extractor")
		}
	}
	return p, cleanup, nil
}

// loadConfig is the shared entry point of every subcommand.
func loadConfig(log zerolog.Logger) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		log.Error().Err(err).Msg("Failed to load configuration")
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return cfg, nil
}
