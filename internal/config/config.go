package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"hoadon/internal/logger"
)

// Config carries every knob the pipeline and its collaborators need.
// All values come from the environment (a .env file is loaded in main),
// with defaults matching the reference deployment: Vietnamese receipts,
// Tesseract OCR, Gemini extraction.
type Config struct {
	// OCR Configuration
	OCRProvider string // "tesseract" or "vision"
	OCRLanguage string // Tesseract language code, e.g. "vie"
	OCRTimeout  time.Duration

	// Text Correction Configuration
	CorrectorURL       string // base URL of the seq2seq correction service; empty disables correction
	CorrectorMaxLength int    // maximum input length the corrector accepts per span

	// LLM Extraction Configuration
	LLMProvider    string   // "gemini" or "openai"
	GeminiKeys     []string // one is picked at random per client
	GeminiModel    string
	OpenAIAPIKey   string
	OpenAIBaseURL  string // optional, for OpenAI-compatible servers
	OpenAIModel    string
	LLMTimeout     time.Duration
	LLMMaxRetries  int
	CrossTolerance float64 // relative tolerance for arithmetic cross-checks

	// Image Normalization
	TargetDPI     int
	MinSizeInches int

	// Storage Configuration
	DBPath    string // bbolt database file
	OutputDir string // where exported JSON documents go

	// Embedding / Vector Index Configuration
	EmbedderURL  string // base URL of the embedding service; empty disables ingestion
	VectorDBPath string // bbolt file holding the vector index

	// Logging Configuration
	LogLevel      string
	LogFormat     string
	LogTimeFormat string
	LogOutput     string
}

func Load() (*Config, error) {
	config := &Config{
		OCRProvider:        getEnv("OCR_PROVIDER", "tesseract"),
		OCRLanguage:        getEnv("OCR_LANGUAGE", "vie"),
		OCRTimeout:         getDurationEnv("OCR_TIMEOUT", 60*time.Second),
		CorrectorURL:       getEnv("CORRECTOR_URL", ""),
		CorrectorMaxLength: getIntEnv("CORRECTOR_MAX_LENGTH", 512),
		LLMProvider:        getEnv("LLM_PROVIDER", "gemini"),
		GeminiKeys:         splitList(getEnv("GEMINI_KEYS", "")),
		GeminiModel:        getEnv("GEMINI_MODEL", "gemini-2.5-flash"),
		OpenAIAPIKey:       getEnv("OPENAI_API_KEY", ""),
		OpenAIBaseURL:      getEnv("OPENAI_BASE_URL", ""),
		OpenAIModel:        getEnv("OPENAI_MODEL", "gpt-4o-mini"),
		LLMTimeout:         getDurationEnv("LLM_TIMEOUT", 120*time.Second),
		LLMMaxRetries:      getIntEnv("LLM_MAX_RETRIES", 3),
		CrossTolerance:     getFloatEnv("CROSS_CHECK_TOLERANCE", 0.01),
		TargetDPI:          getIntEnv("TARGET_DPI", 300),
		MinSizeInches:      getIntEnv("MIN_SIZE_INCHES", 4),
		DBPath:             getEnv("DB_PATH", "hoadon.db"),
		OutputDir:          getEnv("OUTPUT_DIR", "output_structured"),
		EmbedderURL:        getEnv("EMBEDDER_URL", ""),
		VectorDBPath:       getEnv("VECTOR_DB_PATH", "hoadon.vec.db"),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		LogFormat:          getEnv("LOG_FORMAT", "console"),
		LogTimeFormat:      getEnv("LOG_TIME_FORMAT", "2006-01-02T15:04:05Z07:00"),
		LogOutput:          getEnv("LOG_OUTPUT", "stderr"),
	}

	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return config, nil
}

func (c *Config) validate() error {
	switch c.OCRProvider {
	case "tesseract", "vision":
	default:
		return fmt.Errorf("OCR_PROVIDER must be \"tesseract\" or \"vision\", got %q", c.OCRProvider)
	}
	switch c.LLMProvider {
	case "gemini":
		if len(c.GeminiKeys) == 0 {
			return fmt.Errorf("GEMINI_KEYS is required when LLM_PROVIDER=gemini")
		}
	case "openai":
		if c.OpenAIAPIKey == "" {
			return fmt.Errorf("OPENAI_API_KEY is required when LLM_PROVIDER=openai")
		}
	default:
		return fmt.Errorf("LLM_PROVIDER must be \"gemini\" or \"openai\", got %q", c.LLMProvider)
	}
	if c.CorrectorMaxLength <= 0 {
		return fmt.Errorf("CORRECTOR_MAX_LENGTH must be positive")
	}
	if c.TargetDPI <= 0 || c.MinSizeInches <= 0 {
		return fmt.Errorf("TARGET_DPI and MIN_SIZE_INCHES must be positive")
	}
	return nil
}

// GetLoggerConfig returns a logger configuration from the main config
func (c *Config) GetLoggerConfig() logger.LogConfig {
	return logger.LogConfig{
		Level:      c.LogLevel,
		Format:     c.LogFormat,
		TimeFormat: c.LogTimeFormat,
		Output:     c.LogOutput,
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getFloatEnv(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
