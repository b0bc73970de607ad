package config

import "time"

// Config holds all application configuration, organized into logical groups.
type Config struct {
	Server      ServerConfig      `mapstructure:"server" validate:"required"`
	Database    DatabaseConfig    `mapstructure:"database"`
	Redis       RedisConfig       `mapstructure:"redis"`
	LLM         LLMConfig         `mapstructure:"llm"`
	Source      SourceConfig      `mapstructure:"source" validate:"required"`
	Search      SearchConfig      `mapstructure:"search" validate:"required"`
	Maintenance MaintenanceConfig `mapstructure:"maintenance"`
}

// ServerConfig contains all HTTP server settings.
type ServerConfig struct {
	Port            int           `mapstructure:"port" validate:"required,gt=0,lt=65536"`
	LogLevel        string        `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"required"`
}

// DatabaseConfig contains the PostgreSQL settings backing topic search.
// Topic-based author ranking is disabled when no URL is configured.
type DatabaseConfig struct {
	URL string `mapstructure:"url" validate:"omitempty,url"`
}

// RedisConfig contains the Redis cache settings. The in-memory cache is
// used when no address is configured.
type RedisConfig struct {
	Addr string `mapstructure:"addr"`
}

// LLMConfig contains the summarization model settings. Author summaries
// are skipped when no API key is configured.
type LLMConfig struct {
	GeminiAPIKey string `mapstructure:"gemini_api_key"`
	ModelName    string `mapstructure:"model_name" validate:"required"`
}

// SourceConfig contains upstream scholarly source settings.
type SourceConfig struct {
	OpenAlexBaseURL   string  `mapstructure:"openalex_base_url" validate:"required,url"`
	MailTo            string  `mapstructure:"mailto" validate:"omitempty,email"`
	RequestsPerSecond float64 `mapstructure:"requests_per_second" validate:"required,gt=0"`
	SliceSize         int     `mapstructure:"slice_size" validate:"required,gt=0"`
}

// SearchConfig contains the streaming search engine settings.
type SearchConfig struct {
	MaxConcurrentTasks int           `mapstructure:"max_concurrent_tasks" validate:"required,gt=0"`
	MaxTotalTasks      int           `mapstructure:"max_total_tasks" validate:"required,gt=0"`
	TaskTimeout        time.Duration `mapstructure:"task_timeout" validate:"required"`
	TopKPublications   int           `mapstructure:"top_k_publications" validate:"required,gt=0"`
}

// MaintenanceConfig contains background maintenance settings.
type MaintenanceConfig struct {
	CacheSweepSchedule string `mapstructure:"cache_sweep_schedule"`
}
