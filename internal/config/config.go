package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds the configuration for the article service
type Config struct {
	Server  ServerConfig
	Content ContentConfig
	Cache   CacheConfig
	Search  SearchConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	BindAddr        string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// ContentConfig points at the document corpus and its metadata workbook
type ContentConfig struct {
	DataDir      string
	MetadataFile string
	DocExtension string
}

// CacheConfig tunes the warm-up phase
type CacheConfig struct {
	BatchSize int
}

// SearchConfig holds query-path limits
type SearchConfig struct {
	DefaultLimit int
	MaxLimit     int
}

// Load loads configuration from environment variables with defaults
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			BindAddr:        GetStringEnv("SERVER_BIND_ADDR", ":8080"),
			ReadTimeout:     GetDurationEnv("SERVER_READ_TIMEOUT", 10*time.Second),
			WriteTimeout:    GetDurationEnv("SERVER_WRITE_TIMEOUT", 15*time.Second),
			ShutdownTimeout: GetDurationEnv("SERVER_SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		Content: ContentConfig{
			DataDir:      GetStringEnv("CONTENT_DATA_DIR", "./data"),
			MetadataFile: GetStringEnv("CONTENT_METADATA_FILE", "./data/articles_metadata.xlsx"),
			DocExtension: GetStringEnv("CONTENT_DOC_EXTENSION", ".docx"),
		},
		Cache: CacheConfig{
			BatchSize: GetIntEnv("CACHE_BATCH_SIZE", 10),
		},
		Search: SearchConfig{
			DefaultLimit: GetIntEnv("SEARCH_DEFAULT_LIMIT", 20),
			MaxLimit:     GetIntEnv("SEARCH_MAX_LIMIT", 100),
		},
	}
}

func GetStringEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func GetIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func GetDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
