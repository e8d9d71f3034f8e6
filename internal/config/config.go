package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"foodsafe/internal/domain"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	Log       LogConfig
	Inference InferenceConfig
	OCR       OCRConfig
	Record    RecordConfig
	Pipeline  PipelineConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port            string        `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	Environment     string        `mapstructure:"environment"`
	MaxUploadSizeMB int64         `mapstructure:"max_upload_size_mb"`
	AllowedOrigins  []string      `mapstructure:"allowed_origins"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// InferenceConfig holds chat-completion provider settings and decoding parameters.
type InferenceConfig struct {
	Provider        string   `mapstructure:"provider"`
	APIKey          string   `mapstructure:"api_key"`
	FallbackAPIKeys []string `mapstructure:"fallback_api_keys"`
	Endpoint        string   `mapstructure:"endpoint"`
	RefineModel     string   `mapstructure:"refine_model"`
	TimeoutSecs     int      `mapstructure:"timeout_secs"`
	Temperature     float64  `mapstructure:"temperature"`
	TopP            float64  `mapstructure:"top_p"`
	RefineMaxTokens int      `mapstructure:"refine_max_tokens"`
	EvalMaxTokens   int      `mapstructure:"eval_max_tokens"`
}

// OCRConfig holds OCR engine settings.
type OCRConfig struct {
	Languages []string `mapstructure:"languages"`
}

// RecordConfig holds the refined-text log settings.
type RecordConfig struct {
	Path string `mapstructure:"path"`
}

// PipelineConfig holds analysis pipeline settings.
type PipelineConfig struct {
	TimeoutSecs int `mapstructure:"timeout_secs"`
}

// Timeout returns the whole-pipeline deadline.
func (p *PipelineConfig) Timeout() time.Duration {
	return time.Duration(p.TimeoutSecs) * time.Second
}

// Validate reports configuration that makes the process unusable.
func (c *Config) Validate() error {
	if c.Inference.APIKey == "" {
		return &domain.RemoteServiceError{Provider: c.Inference.Provider, Err: domain.ErrMissingCredential}
	}
	if _, err := domain.ParseModel(c.Inference.RefineModel); err != nil {
		return fmt.Errorf("inference.refine_model: %w", err)
	}
	if c.Pipeline.TimeoutSecs <= 0 {
		return fmt.Errorf("pipeline.timeout_secs must be positive, got %d", c.Pipeline.TimeoutSecs)
	}
	return nil
}

// Load reads configuration from an optional .env file and environment variables
// with the FOODSAFE_ prefix. GROQ_API_KEY is accepted as a fallback credential.
func Load() (*Config, error) {
	if err := loadEnvFile(".env"); err != nil {
		return nil, err
	}

	v := viper.New()
	v.SetEnvPrefix("FOODSAFE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Server defaults
	v.SetDefault("server.port", ":8080")
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "240s")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.max_upload_size_mb", 10)
	v.SetDefault("server.allowed_origins", "http://localhost:3000")

	// Log defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")

	// Inference defaults
	v.SetDefault("inference.provider", "groq")
	v.SetDefault("inference.api_key", "")
	v.SetDefault("inference.fallback_api_keys", "")
	v.SetDefault("inference.endpoint", "")
	v.SetDefault("inference.refine_model", string(domain.DefaultModel))
	v.SetDefault("inference.timeout_secs", 60)
	v.SetDefault("inference.temperature", 0.7)
	v.SetDefault("inference.top_p", 1.0)
	v.SetDefault("inference.refine_max_tokens", 300)
	v.SetDefault("inference.eval_max_tokens", 400)

	// OCR defaults
	v.SetDefault("ocr.languages", "eng")

	// Record log defaults
	v.SetDefault("record.path", "refined_text_log.csv")

	// Pipeline defaults
	v.SetDefault("pipeline.timeout_secs", 180)

	envBindings := map[string]string{
		"server.port":                 "FOODSAFE_SERVER_PORT",
		"server.read_timeout":         "FOODSAFE_SERVER_READ_TIMEOUT",
		"server.write_timeout":        "FOODSAFE_SERVER_WRITE_TIMEOUT",
		"server.environment":          "FOODSAFE_SERVER_ENVIRONMENT",
		"server.max_upload_size_mb":   "FOODSAFE_SERVER_MAX_UPLOAD_SIZE_MB",
		"server.allowed_origins":      "FOODSAFE_SERVER_ALLOWED_ORIGINS",
		"log.level":                   "FOODSAFE_LOG_LEVEL",
		"log.format":                  "FOODSAFE_LOG_FORMAT",
		"inference.provider":          "FOODSAFE_INFERENCE_PROVIDER",
		"inference.api_key":           "FOODSAFE_INFERENCE_API_KEY",
		"inference.fallback_api_keys": "FOODSAFE_INFERENCE_FALLBACK_API_KEYS",
		"inference.endpoint":          "FOODSAFE_INFERENCE_ENDPOINT",
		"inference.refine_model":      "FOODSAFE_INFERENCE_REFINE_MODEL",
		"inference.timeout_secs":      "FOODSAFE_INFERENCE_TIMEOUT_SECS",
		"inference.temperature":       "FOODSAFE_INFERENCE_TEMPERATURE",
		"inference.top_p":             "FOODSAFE_INFERENCE_TOP_P",
		"inference.refine_max_tokens": "FOODSAFE_INFERENCE_REFINE_MAX_TOKENS",
		"inference.eval_max_tokens":   "FOODSAFE_INFERENCE_EVAL_MAX_TOKENS",
		"ocr.languages":               "FOODSAFE_OCR_LANGUAGES",
		"record.path":                 "FOODSAFE_RECORD_PATH",
		"pipeline.timeout_secs":       "FOODSAFE_PIPELINE_TIMEOUT_SECS",
	}
	for key, env := range envBindings {
		_ = v.BindEnv(key, env)
	}

	cfg := &Config{}

	cfg.Server = ServerConfig{
		Port:            v.GetString("server.port"),
		ReadTimeout:     v.GetDuration("server.read_timeout"),
		WriteTimeout:    v.GetDuration("server.write_timeout"),
		Environment:     v.GetString("server.environment"),
		MaxUploadSizeMB: v.GetInt64("server.max_upload_size_mb"),
		AllowedOrigins:  splitList(v.GetString("server.allowed_origins")),
	}
	cfg.Log = LogConfig{
		Level:  v.GetString("log.level"),
		Format: v.GetString("log.format"),
	}

	apiKey := v.GetString("inference.api_key")
	if apiKey == "" {
		apiKey = os.Getenv("GROQ_API_KEY")
	}
	cfg.Inference = InferenceConfig{
		Provider:        v.GetString("inference.provider"),
		APIKey:          apiKey,
		FallbackAPIKeys: splitList(v.GetString("inference.fallback_api_keys")),
		Endpoint:        v.GetString("inference.endpoint"),
		RefineModel:     v.GetString("inference.refine_model"),
		TimeoutSecs:     v.GetInt("inference.timeout_secs"),
		Temperature:     v.GetFloat64("inference.temperature"),
		TopP:            v.GetFloat64("inference.top_p"),
		RefineMaxTokens: v.GetInt("inference.refine_max_tokens"),
		EvalMaxTokens:   v.GetInt("inference.eval_max_tokens"),
	}

	cfg.OCR = OCRConfig{Languages: splitList(v.GetString("ocr.languages"))}

	cfg.Record = RecordConfig{
		Path: v.GetString("record.path"),
	}
	cfg.Pipeline = PipelineConfig{
		TimeoutSecs: v.GetInt("pipeline.timeout_secs"),
	}

	return cfg, nil
}

// splitList parses a comma-separated list, dropping empty entries.
func splitList(raw string) []string {
	var out []string
	for _, item := range strings.Split(raw, ",") {
		item = strings.TrimSpace(item)
		if item != "" {
			out = append(out, item)
		}
	}
	return out
}

// loadEnvFile loads variables from path into the process environment without
// overriding ones already set. A missing file is not an error.
func loadEnvFile(path string) error {
	if _, err := os.Stat(path); err != nil {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("loading %s: %w", path, err)
	}
	return nil
}
