package common

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pelletier/go-toml/v2"
)

// Config represents the application configuration
type Config struct {
	Environment string          `toml:"environment"` // "development" or "production"
	Server      ServerConfig    `toml:"server"`
	Logging     LoggingConfig   `toml:"logging"`
	Storage     StorageConfig   `toml:"storage"`
	Weaviate    WeaviateConfig  `toml:"weaviate"`
	Graph       GraphConfig     `toml:"graph"`
	Parser      ParserConfig    `toml:"parser"`
	Retrieval   RetrievalConfig `toml:"retrieval"`
	Assembler   AssemblerConfig `toml:"assembler"`
	LLM         LLMConfig       `toml:"llm"`
	Claude      ClaudeConfig    `toml:"claude"`
	Gemini      GeminiConfig    `toml:"gemini"`
	Cache       CacheConfig     `toml:"cache"`
	Batch       BatchConfig     `toml:"batch"`
}

type ServerConfig struct {
	Port int    `toml:"port" validate:"min=1,max=65535"`
	Host string `toml:"host"`
}

type LoggingConfig struct {
	Level      string   `toml:"level"`       // "debug", "info", "warn", "error"
	Output     []string `toml:"output"`      // "stdout", "file"
	TimeFormat string   `toml:"time_format"` // Time format for logs
}

type StorageConfig struct {
	SQLite SQLiteConfig `toml:"sqlite"`
	Badger BadgerConfig `toml:"badger"`
}

// SQLiteConfig holds the relational full-text store configuration
type SQLiteConfig struct {
	Path          string `toml:"path" validate:"required"` // Database file path
	CacheSizeMB   int    `toml:"cache_size_mb"`
	BusyTimeoutMS int    `toml:"busy_timeout_ms"`
	WALMode       bool   `toml:"wal_mode"`
}

// BadgerConfig holds the metadata store configuration
type BadgerConfig struct {
	Path           string `toml:"path" validate:"required"` // Database directory path
	ResetOnStartup bool   `toml:"reset_on_startup"`         // Delete database on startup for clean test runs
}

// WeaviateConfig configures the hybrid search tier
type WeaviateConfig struct {
	Enabled bool    `toml:"enabled"`
	Scheme  string  `toml:"scheme"` // "http" or "https"
	Host    string  `toml:"host"`   // e.g. "localhost:8080"
	APIKey  string  `toml:"api_key"`
	Class   string  `toml:"class"` // Weaviate class name, default "LegalDocument"
	Alpha   float32 `toml:"alpha"` // Hybrid lexical/vector balance (0=bm25, 1=vector)
	Timeout string  `toml:"timeout"`
}

// GraphConfig configures the graph traversal tier
type GraphConfig struct {
	Enabled bool   `toml:"enabled"`
	URL     string `toml:"url"` // Graph engine base URL
	Timeout string `toml:"timeout"`
}

// ParserConfig configures the external NLP query parser
type ParserConfig struct {
	URL     string `toml:"url"` // Empty = heuristic-only parsing
	Timeout string `toml:"timeout"`
}

// RetrievalConfig tunes the tier orchestrator
type RetrievalConfig struct {
	DesiredCount int     `toml:"desired_count" validate:"min=1,max=100"` // Documents requested per tier
	TierTimeout  string  `toml:"tier_timeout"`                           // Per-tier call timeout
	MinTierScore float64 `toml:"min_tier_score"`                         // 0 disables the quality floor (default)
}

// AssemblerConfig bounds the generated context block
type AssemblerConfig struct {
	MaxDocs  int `toml:"max_docs" validate:"min=1,max=20"`
	MaxChars int `toml:"max_chars" validate:"min=500"`
}

// LLMConfig selects and tunes the generation provider
type LLMConfig struct {
	Provider          string  `toml:"provider" validate:"oneof=claude gemini"` // Chosen once at startup
	MaxRetries        int     `toml:"max_retries" validate:"min=0,max=10"`
	BaseDelay         string  `toml:"base_delay"` // Initial backoff, e.g. "1s"
	BackoffMultiplier float64 `toml:"backoff_multiplier" validate:"min=1"`
	RatePerMinute     int     `toml:"rate_per_minute" validate:"min=1"` // Generation call budget
	Temperature       float32 `toml:"temperature"`
	MaxTokens         int     `toml:"max_tokens"`
	SystemPrompt      string  `toml:"system_prompt"`
}

// ClaudeConfig holds Anthropic API settings
type ClaudeConfig struct {
	APIKey  string `toml:"api_key"`
	Model   string `toml:"model"`
	Timeout string `toml:"timeout"`
}

// GeminiConfig holds Google Gemini API settings
type GeminiConfig struct {
	APIKey string `toml:"api_key"`
	Model  string `toml:"model"`
}

// CacheConfig tunes the answer cache
type CacheConfig struct {
	TTLSeconds    int    `toml:"ttl_seconds" validate:"min=1"`
	Capacity      int    `toml:"capacity" validate:"min=1"`
	SweepSchedule string `toml:"sweep_schedule"` // Cron expression for the expiry sweep
}

// BatchConfig bounds concurrent pipeline execution
type BatchConfig struct {
	AnswerWorkers int `toml:"answer_workers" validate:"min=1,max=16"` // Low: generation is rate-limited
	SearchWorkers int `toml:"search_workers" validate:"min=1,max=64"` // Higher: retrieval-only
}

// NewDefaultConfig returns a config populated with defaults; file, env,
// and CLI values are layered on top.
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Server:      ServerConfig{Port: 8085, Host: "localhost"},
		Logging: LoggingConfig{
			Level:      "info",
			Output:     []string{"stdout"},
			TimeFormat: "15:04:05.000",
		},
		Storage: StorageConfig{
			SQLite: SQLiteConfig{
				Path:          "./data/respondeo.db",
				CacheSizeMB:   64,
				BusyTimeoutMS: 5000,
				WALMode:       true,
			},
			Badger: BadgerConfig{Path: "./data/badger"},
		},
		Weaviate: WeaviateConfig{
			Enabled: true,
			Scheme:  "http",
			Host:    "localhost:8080",
			Class:   "LegalDocument",
			Alpha:   0.5,
			Timeout: "5s",
		},
		Graph:  GraphConfig{Enabled: true, URL: "http://localhost:8600", Timeout: "5s"},
		Parser: ParserConfig{URL: "", Timeout: "3s"},
		Retrieval: RetrievalConfig{
			DesiredCount: 10,
			TierTimeout:  "5s",
			MinTierScore: 0,
		},
		Assembler: AssemblerConfig{MaxDocs: 5, MaxChars: 4000},
		LLM: LLMConfig{
			Provider:          "claude",
			MaxRetries:        3,
			BaseDelay:         "1s",
			BackoffMultiplier: 2,
			RatePerMinute:     30,
			Temperature:       0.3,
			MaxTokens:         1024,
		},
		Claude: ClaudeConfig{Model: "claude-sonnet-4-20250514", Timeout: "60s"},
		Gemini: GeminiConfig{Model: "gemini-2.0-flash"},
		Cache: CacheConfig{
			TTLSeconds:    3600,
			Capacity:      1000,
			SweepSchedule: "@every 5m",
		},
		Batch: BatchConfig{AnswerWorkers: 2, SearchWorkers: 8},
	}
}

// LoadFromFile loads configuration from a single file (with defaults and env overrides).
func LoadFromFile(path string) (*Config, error) {
	if path == "" {
		return LoadFromFiles()
	}
	return LoadFromFiles(path)
}

// LoadFromFiles loads configuration from multiple files with priority:
// defaults -> file1 -> file2 -> ... -> env. Later files override earlier
// files; environment variables override all files.
func LoadFromFiles(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	for i, path := range paths {
		if path == "" {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s (file %d of %d): %w", path, i+1, len(paths), err)
		}
	}

	applyEnvOverrides(config)

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("RESPONDEO_ENV"); env != "" {
		config.Environment = env
	} else if env := os.Getenv("GO_ENV"); env != "" {
		config.Environment = env
	}

	if port := os.Getenv("RESPONDEO_SERVER_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}
	if host := os.Getenv("RESPONDEO_SERVER_HOST"); host != "" {
		config.Server.Host = host
	}
	if level := os.Getenv("RESPONDEO_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}

	if key := os.Getenv("ANTHROPIC_API_KEY"); key != "" {
		config.Claude.APIKey = key
	}
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		config.Gemini.APIKey = key
	}
	if key := os.Getenv("WEAVIATE_API_KEY"); key != "" {
		config.Weaviate.APIKey = key
	}
	if host := os.Getenv("RESPONDEO_WEAVIATE_HOST"); host != "" {
		config.Weaviate.Host = host
	}
	if url := os.Getenv("RESPONDEO_GRAPH_URL"); url != "" {
		config.Graph.URL = url
	}
	if url := os.Getenv("RESPONDEO_PARSER_URL"); url != "" {
		config.Parser.URL = url
	}
	if provider := os.Getenv("RESPONDEO_LLM_PROVIDER"); provider != "" {
		config.LLM.Provider = provider
	}
}

// Validate checks structural constraints on the loaded configuration.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	for name, value := range map[string]string{
		"weaviate.timeout":       c.Weaviate.Timeout,
		"graph.timeout":          c.Graph.Timeout,
		"parser.timeout":         c.Parser.Timeout,
		"retrieval.tier_timeout": c.Retrieval.TierTimeout,
		"llm.base_delay":         c.LLM.BaseDelay,
		"claude.timeout":         c.Claude.Timeout,
	} {
		if value == "" {
			continue
		}
		if _, err := time.ParseDuration(value); err != nil {
			return fmt.Errorf("invalid duration for %s: %q: %w", name, value, err)
		}
	}

	return nil
}

// ParseDuration parses a config duration string with a fallback default.
func ParseDuration(value string, fallback time.Duration) time.Duration {
	if value == "" {
		return fallback
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return d
}
