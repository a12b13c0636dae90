package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

type Config struct {
	APIPort  string `validate:"required,numeric"`
	LogLevel string `validate:"oneof=debug info warn error"`

	MaxUploadBytes      int64    `validate:"gt=0"`
	AllowedExtensions   []string `validate:"min=1,dive,required"`
	ConfidenceThreshold float64  `validate:"gte=0,lte=1"`
	ReferenceCorpusPath string

	EmbedProvider         string `validate:"oneof=ollama hashing"`
	OllamaURL             string `validate:"required_if=EmbedProvider ollama"`
	OllamaEmbedModel      string `validate:"required_if=EmbedProvider ollama"`
	EmbedTimeoutSeconds   int    `validate:"gt=0"`
	EmbedRetryMaxAttempts int    `validate:"gte=1"`
	HashingDimensions     int    `validate:"gt=0"`
	EmbedBreakerEnabled   bool

	TesseractPath     string `validate:"required"`
	TesseractLang     string `validate:"required"`
	TesseractPSM      int    `validate:"gte=0,lte=13"`
	OCRTimeoutSeconds int    `validate:"gte=0"`

	APIRateLimitRPS   float64 `validate:"gte=0"`
	APIRateLimitBurst int     `validate:"gte=0"`
	APIMaxInFlight    int     `validate:"gte=0"`
	APIOverloadWaitMS int     `validate:"gte=0"`

	MetricsEnabled bool
}

func Load() Config {
	return Config{
		APIPort:  mustEnv("API_PORT", "8080"),
		LogLevel: strings.ToLower(mustEnv("LOG_LEVEL", "info")),

		MaxUploadBytes:      int64(mustEnvInt("MAX_UPLOAD_BYTES", 16<<20)),
		AllowedExtensions:   mustEnvList("ALLOWED_EXTENSIONS", []string{"pdf", "png", "jpg"}),
		ConfidenceThreshold: mustEnvFloat("CONFIDENCE_THRESHOLD", 0.3),
		ReferenceCorpusPath: mustEnv("REFERENCE_CORPUS_PATH", ""),

		EmbedProvider:         strings.ToLower(mustEnv("EMBED_PROVIDER", "ollama")),
		OllamaURL:             mustEnv("OLLAMA_URL", "http://localhost:11434"),
		OllamaEmbedModel:      mustEnv("OLLAMA_EMBED_MODEL", "all-minilm"),
		EmbedTimeoutSeconds:   mustEnvInt("EMBED_TIMEOUT_SECONDS", 60),
		EmbedRetryMaxAttempts: mustEnvInt("EMBED_RETRY_MAX_ATTEMPTS", 1),
		EmbedBreakerEnabled:   mustEnvBool("EMBED_BREAKER_ENABLED", true),
		HashingDimensions:     mustEnvInt("HASHING_DIMENSIONS", 1024),

		TesseractPath:     mustEnv("TESSERACT_PATH", "tesseract"),
		TesseractLang:     mustEnv("TESSERACT_LANG", "eng"),
		TesseractPSM:      mustEnvInt("TESSERACT_PSM", 0),
		OCRTimeoutSeconds: mustEnvInt("OCR_TIMEOUT_SECONDS", 60),

		APIRateLimitRPS:   mustEnvFloat("API_RATE_LIMIT_RPS", 0),
		APIRateLimitBurst: mustEnvInt("API_RATE_LIMIT_BURST", 0),
		APIMaxInFlight:    mustEnvInt("API_MAX_IN_FLIGHT", 0),
		APIOverloadWaitMS: mustEnvInt("API_OVERLOAD_WAIT_MS", 50),

		MetricsEnabled: mustEnvBool("METRICS_ENABLED", true),
	}
}

// Validate reports the first invalid field by its Go name.
func (c Config) Validate() error {
	err := validator.New().Struct(c)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return fmt.Errorf("invalid config: %s failed %q (value %v)", fe.Field(), fe.Tag(), fe.Value())
	}
	return fmt.Errorf("invalid config: %w", err)
}

func mustEnv(key, fallback string) string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v
}

func mustEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func mustEnvBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return parsed
}

func mustEnvFloat(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	parsed, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fallback
	}
	return parsed
}

// mustEnvList splits a comma separated value, dropping blanks.
func mustEnvList(key string, fallback []string) []string {
	v := os.Getenv(key)
	if strings.TrimSpace(v) == "" {
		return fallback
	}
	out := make([]string, 0, 4)
	for _, item := range strings.Split(v, ",") {
		item = strings.TrimSpace(item)
		if item != "" {
			out = append(out, item)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
