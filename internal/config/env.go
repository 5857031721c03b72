package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Mode selects which system prompt the pipeline uses.
type Mode string

const (
	ModeMCQ    Mode = "mcq"
	ModeCoding Mode = "coding"
)

// LoggingConfig holds logging-related configuration.
type LoggingConfig struct {
	Level      string
	Pretty     bool
	File       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

// AxiomConfig holds Axiom logging configuration.
type AxiomConfig struct {
	Send          bool
	APIKey        string
	OrgID         string
	Dataset       string
	FlushInterval time.Duration
}

// ProvidersConfig defines the primary (vision) and secondary (text-only) models.
type ProvidersConfig struct {
	OpenAIKey       string
	GeminiKey       string
	VisionModel     string // primary, accepts inline images
	TextModel       string // secondary, text-only; also the fallback target
	ConfiguredModel string // model id selected by the user; text-only ids force the OCR path
}

// RetryConfig defines retry and fallback behavior for one dispatch.
type RetryConfig struct {
	MaxRetries       int
	BaseDelay        time.Duration
	MaxDelay         time.Duration
	RequestTimeout   time.Duration
	FallbackCooldown time.Duration
}

// OCRConfig defines tesseract extraction settings.
type OCRConfig struct {
	Language string
}

// ImagingConfig defines screenshot compression settings.
type ImagingConfig struct {
	MaxEdge     int
	JPEGQuality int
}

// ArchiveConfig defines optional S3 archiving of parsed solutions.
type ArchiveConfig struct {
	Bucket string
	Prefix string
}

// StateConfig defines where shared fallback state lives. Empty RedisURL keeps it in-process.
type StateConfig struct {
	RedisURL string
}

// Config is the top-level configuration.
type Config struct {
	Logging   LoggingConfig
	Axiom     AxiomConfig
	Providers ProvidersConfig
	Retry     RetryConfig
	OCR       OCRConfig
	Imaging   ImagingConfig
	Archive   ArchiveConfig
	State     StateConfig
	Mode      Mode
	Language  string
}

// FromEnv loads configuration from environment with sensible defaults.
func FromEnv() Config {
	cfg := Config{}

	cfg.Logging = LoggingConfig{
		Level:      getEnv("LOG_LEVEL", "info"),
		Pretty:     parseBool(getEnv("LOG_PRETTY", devDefaultPretty())),
		File:       getEnv("LOG_FILE", "logs/answerpipe.log"),
		MaxSizeMB:  parseInt(getEnv("LOG_MAX_SIZE_MB", "100"), 100),
		MaxBackups: parseInt(getEnv("LOG_MAX_BACKUPS", "10"), 10),
		MaxAgeDays: parseInt(getEnv("LOG_MAX_AGE_DAYS", "30"), 30),
		Compress:   parseBool(getEnv("LOG_COMPRESS", "true")),
	}

	baseDataset := getEnv("AXIOM_DATASET", "dev")
	cfg.Axiom = AxiomConfig{
		Send:          parseBool(getEnv("SEND_LOGS_TO_AXIOM", "0")),
		APIKey:        getEnv("AXIOM_API_KEY", ""),
		OrgID:         getEnv("AXIOM_ORG_ID", ""),
		Dataset:       baseDataset + "_answerpipe",
		FlushInterval: parseDuration(getEnv("AXIOM_FLUSH_INTERVAL", "10s"), 10*time.Second),
	}

	cfg.Providers = ProvidersConfig{
		OpenAIKey:       getEnv("OPENAI_API_KEY", ""),
		GeminiKey:       getEnv("GEMINI_API_KEY", ""),
		VisionModel:     getEnv("VISION_MODEL", "gpt-4o"),
		TextModel:       getEnv("TEXT_MODEL", "gemini-2.0-flash"),
		ConfiguredModel: getEnv("CONFIGURED_MODEL", getEnv("VISION_MODEL", "gpt-4o")),
	}

	cfg.Retry = RetryConfig{
		MaxRetries:       parseInt(getEnv("MAX_RETRIES", "3"), 3),
		BaseDelay:        parseDuration(getEnv("RETRY_BASE_DELAY", "1s"), time.Second),
		MaxDelay:         parseDuration(getEnv("RETRY_MAX_DELAY", "5s"), 5*time.Second),
		RequestTimeout:   parseDuration(getEnv("REQUEST_TIMEOUT", "30s"), 30*time.Second),
		FallbackCooldown: parseDuration(getEnv("FALLBACK_COOLDOWN", "60s"), 60*time.Second),
	}

	cfg.OCR = OCRConfig{
		Language: getEnv("OCR_LANGUAGE", "eng"),
	}

	cfg.Imaging = ImagingConfig{
		MaxEdge:     parseInt(getEnv("IMAGE_MAX_EDGE", "1200"), 1200),
		JPEGQuality: parseInt(getEnv("IMAGE_JPEG_QUALITY", "80"), 80),
	}

	cfg.Archive = ArchiveConfig{
		Bucket: getEnv("ARCHIVE_BUCKET", ""),
		Prefix: getEnv("ARCHIVE_PREFIX", "solutions"),
	}

	cfg.State = StateConfig{
		RedisURL: getEnv("STATE_REDIS_URL", ""),
	}

	cfg.Mode = ParseMode(getEnv("ANSWER_MODE", "mcq"))
	cfg.Language = getEnv("PREFERRED_LANGUAGE", "python")

	return cfg
}

// ParseMode normalizes a user-facing mode string; unknown values fall back to MCQ.
func ParseMode(s string) Mode {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "coding", "code":
		return ModeCoding
	default:
		return ModeMCQ
	}
}

// IsTextOnlyModel reports whether a configured model id cannot accept images.
func IsTextOnlyModel(modelID string) bool {
	id := strings.ToLower(modelID)
	if strings.Contains(id, "vision") {
		return false
	}
	return strings.Contains(id, "instruct") ||
		strings.Contains(id, "text-") ||
		strings.HasSuffix(id, "-text") ||
		strings.Contains(id, "gpt-3.5")
}

// Helpers
func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func parseInt(s string, def int) int {
	if s == "" {
		return def
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	return def
}

func parseBool(s string) bool {
	v := strings.ToLower(strings.TrimSpace(s))
	return v == "1" || v == "true" || v == "yes" || v == "on"
}

func parseDuration(s string, def time.Duration) time.Duration {
	if s == "" {
		return def
	}
	if d, err := time.ParseDuration(s); err == nil {
		return d
	}
	return def
}

func devDefaultPretty() string {
	env := strings.ToLower(os.Getenv("ENVIRONMENT"))
	if env == "dev" || env == "development" || env == "local" {
		return "true"
	}
	return "false"
}
