package common

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all application configuration
type Config struct {
	Server       ServerConfig       `yaml:"server"`
	OCR          OCRConfig          `yaml:"ocr"`
	Limits       LimitsConfig       `yaml:"limits"`
	Log          LogConfig          `yaml:"log"`
	Capabilities CapabilitiesConfig `yaml:"capabilities"`
}

// ServerConfig holds transport-related configuration
type ServerConfig struct {
	HTTPAddr          string        `yaml:"http_addr"`
	GRPCAddr          string        `yaml:"grpc_addr"`
	ReadHeaderTimeout time.Duration `yaml:"read_header_timeout"`
	ReadTimeout       time.Duration `yaml:"read_timeout"`
	WriteTimeout      time.Duration `yaml:"write_timeout"`
	IdleTimeout       time.Duration `yaml:"idle_timeout"`
	// ExtractTimeout bounds a single extraction call; 0 disables the deadline.
	ExtractTimeout time.Duration `yaml:"extract_timeout"`
	AllowedOrigins []string      `yaml:"allowed_origins"`
}

// OCRConfig holds OCR-backend configuration
type OCRConfig struct {
	Backend     string `yaml:"backend"` // "cli" | "gosseract"
	Tesseract   string `yaml:"tesseract"`
	TessdataDir string `yaml:"tessdata_dir"`
	PopplerDir  string `yaml:"poppler_dir"`
	Pdftoppm    string `yaml:"pdftoppm"`
	DefaultLang string `yaml:"default_lang"`
}

// LimitsConfig bounds what a single client can ask of the daemon
type LimitsConfig struct {
	MaxUploadBytes           int64   `yaml:"max_upload_bytes"`
	MaxConcurrentExtractions int     `yaml:"max_concurrent_extractions"`
	RateLimitPerSecond       float64 `yaml:"rate_limit_per_second"`
	RateLimitBurst           int     `yaml:"rate_limit_burst"`
}

// LogConfig selects the slog handler
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// CapabilitiesConfig toggles the optional document formats.
// Pointers distinguish "absent from the file" from an explicit false.
type CapabilitiesConfig struct {
	DOCX *bool `yaml:"docx"`
	ODT  *bool `yaml:"odt"`
}

// DOCXEnabled reports the resolved DOCX capability.
func (c CapabilitiesConfig) DOCXEnabled() bool { return c.DOCX == nil || *c.DOCX }

// ODTEnabled reports the resolved ODT capability.
func (c CapabilitiesConfig) ODTEnabled() bool { return c.ODT == nil || *c.ODT }

const (
	OCRBackendCLI       = "cli"
	OCRBackendGosseract = "gosseract"
)

// LoadConfig reads an optional YAML file, applies environment overrides and fills defaults.
func LoadConfig(path string) (*Config, error) {
	cfg := &Config{}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, NewAppError("CONFIG_ERROR", "reading config file", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, NewAppError("CONFIG_ERROR", fmt.Sprintf("parsing %s", path), err)
		}
	}
	cfg.applyEnv()
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	c.Server.HTTPAddr = getEnv("HTTP_ADDR", c.Server.HTTPAddr)
	c.Server.GRPCAddr = getEnv("GRPC_ADDR", c.Server.GRPCAddr)
	c.Server.ExtractTimeout = getEnvAsDuration("EXTRACT_TIMEOUT", c.Server.ExtractTimeout)
	if origins := getEnvAsList("CORS_ALLOWED_ORIGINS"); len(origins) > 0 {
		c.Server.AllowedOrigins = origins
	}

	c.OCR.Backend = getEnv("OCR_BACKEND", c.OCR.Backend)
	c.OCR.Tesseract = getEnv("TESSERACT_CMD", c.OCR.Tesseract)
	c.OCR.TessdataDir = getEnv("TESSDATA_PREFIX", c.OCR.TessdataDir)
	c.OCR.PopplerDir = getEnv("POPPLER_PATH", c.OCR.PopplerDir)
	c.OCR.Pdftoppm = getEnv("PDFTOPPM_CMD", c.OCR.Pdftoppm)
	c.OCR.DefaultLang = getEnv("OCR_DEFAULT_LANG", c.OCR.DefaultLang)

	c.Limits.MaxUploadBytes = getEnvAsInt64("MAX_UPLOAD_BYTES", c.Limits.MaxUploadBytes)
	c.Limits.MaxConcurrentExtractions = getEnvAsInt("MAX_CONCURRENT_EXTRACTIONS", c.Limits.MaxConcurrentExtractions)
	c.Limits.RateLimitPerSecond = getEnvAsFloat64("RATE_LIMIT_PER_SECOND", c.Limits.RateLimitPerSecond)
	c.Limits.RateLimitBurst = getEnvAsInt("RATE_LIMIT_BURST", c.Limits.RateLimitBurst)

	c.Log.Level = getEnv("LOG_LEVEL", c.Log.Level)
	c.Log.Format = getEnv("LOG_FORMAT", c.Log.Format)

	c.Capabilities.DOCX = getEnvAsBoolPtr("DOCX_ENABLED", c.Capabilities.DOCX)
	c.Capabilities.ODT = getEnvAsBoolPtr("ODT_ENABLED", c.Capabilities.ODT)
}

func (c *Config) applyDefaults() {
	if c.Server.HTTPAddr == "" {
		c.Server.HTTPAddr = ":5000"
	}
	if c.Server.GRPCAddr == "" {
		c.Server.GRPCAddr = ":9090"
	}
	if c.Server.ReadHeaderTimeout == 0 {
		c.Server.ReadHeaderTimeout = 10 * time.Second
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = 60 * time.Second
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = 5 * time.Minute
	}
	if c.Server.IdleTimeout == 0 {
		c.Server.IdleTimeout = 2 * time.Minute
	}
	if len(c.Server.AllowedOrigins) == 0 {
		c.Server.AllowedOrigins = []string{"*"}
	}
	if c.OCR.Backend == "" {
		c.OCR.Backend = OCRBackendCLI
	}
	if c.OCR.DefaultLang == "" {
		c.OCR.DefaultLang = "eng"
	}
	if c.Limits.MaxUploadBytes == 0 {
		c.Limits.MaxUploadBytes = 32 << 20
	}
	if c.Limits.MaxConcurrentExtractions == 0 {
		c.Limits.MaxConcurrentExtractions = 4
	}
	if c.Limits.RateLimitPerSecond == 0 {
		c.Limits.RateLimitPerSecond = 5
	}
	if c.Limits.RateLimitBurst == 0 {
		c.Limits.RateLimitBurst = 10
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "json"
	}
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsFloat64(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getEnvAsBoolPtr(key string, defaultValue *bool) *bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return &b
		}
	}
	return defaultValue
}

func getEnvAsList(key string) []string {
	value := os.Getenv(key)
	if value == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Validate validates the loaded configuration
func (c *Config) Validate() error {
	if c.Server.HTTPAddr == "" && c.Server.GRPCAddr == "" {
		return NewAppError("CONFIG_ERROR", "at least one of HTTP_ADDR or GRPC_ADDR is required", ErrInvalidInput)
	}
	switch c.OCR.Backend {
	case OCRBackendCLI, OCRBackendGosseract:
	default:
		return NewAppError("CONFIG_ERROR", fmt.Sprintf("unknown OCR_BACKEND %q (want cli or gosseract)", c.OCR.Backend), ErrInvalidInput)
	}
	if err := LanguageCode("default_lang", c.OCR.DefaultLang); err != nil {
		return NewAppError("CONFIG_ERROR", err.Error(), ErrInvalidInput)
	}
	if c.Limits.MaxUploadBytes < 0 {
		return NewAppError("CONFIG_ERROR", "MAX_UPLOAD_BYTES must not be negative", ErrInvalidInput)
	}
	if c.Limits.MaxConcurrentExtractions < 1 {
		return NewAppError("CONFIG_ERROR", "MAX_CONCURRENT_EXTRACTIONS must be at least 1", ErrInvalidInput)
	}
	if c.Limits.RateLimitPerSecond < 0 || c.Limits.RateLimitBurst < 1 {
		return NewAppError("CONFIG_ERROR", "rate limit must be non-negative with a burst of at least 1", ErrInvalidInput)
	}
	return nil
}
