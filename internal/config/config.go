// Package config loads SFE's runtime configuration from the environment,
// following the teacher's godotenv-then-env-vars pattern.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all tunables for one SFE process, matching the environment
// table in the external-interfaces section of the specification.
type Config struct {
	Port string

	SerpAPIKey          string
	SerpZone            string
	SerpBaseURL         string
	SerpPollBudget      time.Duration
	HostedCrawlerAPIKey string
	HostedCrawlerURL    string

	MaxContentBytes  int
	MaxContentTokens int

	ParallelFetchTimeout time.Duration
	SingleURLTimeout     time.Duration

	AutoFetchLimit       int
	MaxConcurrentFetch   int
	MaxConcurrentQueries int

	EnableFailureLearning bool
	ConfidenceThreshold   float64
	FailureRetentionDays  int

	RelevanceGate bool

	CacheBackend string // "memory" | "sharded" | "redis"
	RedisURL     string
	RedisPassword string
	RedisDB      int

	Debug bool
}

// Load reads configuration from a .env file (if present) and the process
// environment, applying the defaults from the specification.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		fmt.Printf("info: no .env file loaded: %v (ok if using real environment variables)\n", err)
	}

	cfg := &Config{
		Port: getEnv("PORT", "8080"),

		SerpAPIKey:          os.Getenv("SERP_API_KEY"),
		SerpZone:            getEnv("SERP_ZONE", "serp_sfe"),
		SerpBaseURL:         getEnv("SERP_BASE_URL", "https://api.brightdata.com/request"),
		SerpPollBudget:      getEnvSeconds("SERP_POLL_BUDGET_SECONDS", 30),
		HostedCrawlerAPIKey: os.Getenv("HOSTED_CRAWLER_API_KEY"),
		HostedCrawlerURL:    getEnv("HOSTED_CRAWLER_URL", "https://api.firecrawl.dev/v1/scrape"),

		MaxContentBytes:  getEnvInt("SFE_MAX_CONTENT_BYTES", 10_000),
		MaxContentTokens: getEnvInt("SFE_MAX_CONTENT_TOKENS", 3_000),

		ParallelFetchTimeout: getEnvSeconds("SFE_PARALLEL_FETCH_TIMEOUT_SECONDS", 30),
		SingleURLTimeout:     getEnvSeconds("SFE_SINGLE_URL_TIMEOUT_SECONDS", 15),

		AutoFetchLimit:       getEnvInt("SFE_AUTO_FETCH_LIMIT", 3),
		MaxConcurrentFetch:   getEnvInt("SFE_MAX_CONCURRENT_FETCH", 3),
		MaxConcurrentQueries: getEnvInt("SFE_MAX_CONCURRENT_QUERIES", 3),

		EnableFailureLearning: getEnvBool("SFE_ENABLE_FAILURE_LEARNING", true),
		ConfidenceThreshold:   getEnvFloat("SFE_CONFIDENCE_THRESHOLD", 0.7),
		FailureRetentionDays:  getEnvInt("SFE_FAILURE_RETENTION_DAYS", 30),

		RelevanceGate: getEnvBool("SFE_RELEVANCE_GATE", false),

		CacheBackend:  getEnv("SFE_CACHE_BACKEND", "memory"),
		RedisURL:      getEnv("REDIS_URL", ""),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		Debug: getEnvBool("SFE_DEBUG", false),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// Validate checks enum-like and numeric fields for sane values.
func (c *Config) Validate() error {
	if _, err := strconv.Atoi(c.Port); err != nil {
		return fmt.Errorf("invalid port number: %s", c.Port)
	}
	switch c.CacheBackend {
	case "memory", "sharded", "redis":
	default:
		return fmt.Errorf("invalid SFE_CACHE_BACKEND: %s (must be memory, sharded or redis)", c.CacheBackend)
	}
	if c.MaxConcurrentQueries < 1 || c.MaxConcurrentFetch < 1 {
		return fmt.Errorf("concurrency gates must be >= 1")
	}
	if c.SerpAPIKey == "" {
		fmt.Println("warning: SERP_API_KEY not set - SERP submission will fail")
	}
	if c.HostedCrawlerAPIKey == "" {
		fmt.Println("warning: HOSTED_CRAWLER_API_KEY not set - hosted-crawler fallback is disabled")
	}
	return nil
}

func (c *Config) HasHostedCrawler() bool { return c.HostedCrawlerAPIKey != "" }

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if v, ok := os.LookupEnv(key); ok {
		if n, err := strconv.ParseFloat(v, 64); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v, ok := os.LookupEnv(key); ok {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvSeconds(key string, fallbackSeconds int) time.Duration {
	return time.Duration(getEnvInt(key, fallbackSeconds)) * time.Second
}
