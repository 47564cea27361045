// Package config provides configuration for the questioning engine.
// Values load from defaults, then a .env file if present, then environment
// variables. Out-of-range tunables are rejected at startup rather than
// clamped, so a misconfigured engine never runs half-initialized.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Storage driver names
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
	DriverMemory   = "memory"
)

// Cache backend names
const (
	CacheMemory = "memory"
	CacheRedis  = "redis"
	CacheNone   = "none"
)

// Config represents the engine configuration
type Config struct {
	Storage  StorageConfig  `json:"storage"`
	Cache    CacheConfig    `json:"cache"`
	Scoring  ScoringConfig  `json:"scoring"`
	Conflict ConflictConfig `json:"conflict"`
	Session  SessionConfig  `json:"session"`
	NLU      NLUConfig      `json:"nlu"`
	Logging  LoggingConfig  `json:"logging"`
}

// StorageConfig configures the durable question-record ledger
type StorageConfig struct {
	Driver        string        `json:"driver"`
	DSN           string        `json:"-"` // May embed credentials, never serialize
	QueryTimeout  time.Duration `json:"query_timeout"`
	RetentionDays int           `json:"retention_days"`
}

// CacheConfig configures the per-user recency cache
type CacheConfig struct {
	Backend       string        `json:"backend"`
	TTL           time.Duration `json:"ttl"`
	MaxRecent     int           `json:"max_recent"`
	RedisAddr     string        `json:"redis_addr"`
	RedisPassword string        `json:"-"` // Never serialize credentials
	RedisDB       int           `json:"redis_db"`
}

// ScoringConfig holds the four axis weights for question scoring. These are
// tunables, not load-bearing business rules; only their relative ordering is
// asserted by tests.
type ScoringConfig struct {
	InformationWeight float64 `json:"information_weight"`
	EngagementWeight  float64 `json:"engagement_weight"`
	TimingWeight      float64 `json:"timing_weight"`
	NoveltyWeight     float64 `json:"novelty_weight"`

	LowEngagementThreshold  float64 `json:"low_engagement_threshold"`
	HighEngagementThreshold float64 `json:"high_engagement_threshold"`

	RecentCooldownDays  int `json:"recent_cooldown_days"`
	StaleCooldownDays   int `json:"stale_cooldown_days"`
}

// ConflictConfig holds the severity confidence bands for conflict detection
type ConflictConfig struct {
	TriggerConfidence  float64 `json:"trigger_confidence"`
	HighConfidence     float64 `json:"high_confidence"`
	CriticalConfidence float64 `json:"critical_confidence"`
}

// SessionConfig bounds questioning within one session
type SessionConfig struct {
	MaxQuestionsPerSession int           `json:"max_questions_per_session"`
	MinQuestionGap         time.Duration `json:"min_question_gap"`
	LongPause              time.Duration `json:"long_pause"`
}

// NLUConfig configures the optional LLM parser behind the family module
type NLUConfig struct {
	OpenAIAPIKey   string        `json:"-"` // Never serialize API key
	Model          string        `json:"model"`
	RequestTimeout time.Duration `json:"request_timeout"`
}

// LoggingConfig configures structured logging
type LoggingConfig struct {
	Level  string `json:"level"`
	Format string `json:"format"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Storage: StorageConfig{
			Driver:        DriverSQLite,
			DSN:           "./data/advisor.db",
			QueryTimeout:  5 * time.Second,
			RetentionDays: 365,
		},
		Cache: CacheConfig{
			Backend:   CacheMemory,
			TTL:       10 * time.Minute,
			MaxRecent: 100,
			RedisAddr: "localhost:6379",
		},
		Scoring: ScoringConfig{
			InformationWeight:       0.35,
			EngagementWeight:        0.25,
			TimingWeight:            0.20,
			NoveltyWeight:           0.20,
			LowEngagementThreshold:  0.4,
			HighEngagementThreshold: 0.8,
			RecentCooldownDays:      7,
			StaleCooldownDays:       30,
		},
		Conflict: ConflictConfig{
			TriggerConfidence:  0.7,
			HighConfidence:     0.75,
			CriticalConfidence: 0.9,
		},
		Session: SessionConfig{
			MaxQuestionsPerSession: 10,
			MinQuestionGap:         30 * time.Second,
			LongPause:              5 * time.Minute,
		},
		NLU: NLUConfig{
			Model:          "gpt-4o-mini",
			RequestTimeout: 30 * time.Second,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// LoadConfig loads configuration from environment variables and defaults
func LoadConfig() (*Config, error) {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("error loading .env file: %w", err)
		}
	}

	cfg := DefaultConfig()
	loadFromEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func loadFromEnv(cfg *Config) {
	setString(&cfg.Storage.Driver, "ADVISOR_STORAGE_DRIVER")
	setString(&cfg.Storage.DSN, "ADVISOR_STORAGE_DSN")
	setDuration(&cfg.Storage.QueryTimeout, "ADVISOR_STORAGE_TIMEOUT")
	setInt(&cfg.Storage.RetentionDays, "ADVISOR_RETENTION_DAYS")

	setString(&cfg.Cache.Backend, "ADVISOR_CACHE_BACKEND")
	setDuration(&cfg.Cache.TTL, "ADVISOR_CACHE_TTL")
	setInt(&cfg.Cache.MaxRecent, "ADVISOR_CACHE_MAX_RECENT")
	setString(&cfg.Cache.RedisAddr, "ADVISOR_REDIS_ADDR")
	setString(&cfg.Cache.RedisPassword, "ADVISOR_REDIS_PASSWORD")
	setInt(&cfg.Cache.RedisDB, "ADVISOR_REDIS_DB")

	setFloat(&cfg.Scoring.InformationWeight, "ADVISOR_WEIGHT_INFORMATION")
	setFloat(&cfg.Scoring.EngagementWeight, "ADVISOR_WEIGHT_ENGAGEMENT")
	setFloat(&cfg.Scoring.TimingWeight, "ADVISOR_WEIGHT_TIMING")
	setFloat(&cfg.Scoring.NoveltyWeight, "ADVISOR_WEIGHT_NOVELTY")

	setInt(&cfg.Session.MaxQuestionsPerSession, "ADVISOR_MAX_QUESTIONS_PER_SESSION")

	setString(&cfg.NLU.OpenAIAPIKey, "OPENAI_API_KEY")
	setString(&cfg.NLU.Model, "ADVISOR_NLU_MODEL")
	setDuration(&cfg.NLU.RequestTimeout, "ADVISOR_NLU_TIMEOUT")

	setString(&cfg.Logging.Level, "LOG_LEVEL")
	setString(&cfg.Logging.Format, "LOG_FORMAT")
}

// Validate checks the configuration for out-of-range values
func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case DriverPostgres, DriverSQLite, DriverMemory:
	default:
		return fmt.Errorf("unknown storage driver: %s", c.Storage.Driver)
	}
	if c.Storage.Driver != DriverMemory && c.Storage.DSN == "" {
		return errors.New("storage DSN cannot be empty")
	}
	if c.Storage.QueryTimeout <= 0 {
		return errors.New("storage query timeout must be positive")
	}

	switch c.Cache.Backend {
	case CacheMemory, CacheRedis, CacheNone:
	default:
		return fmt.Errorf("unknown cache backend: %s", c.Cache.Backend)
	}
	if c.Cache.Backend != CacheNone {
		if c.Cache.TTL <= 0 {
			return errors.New("cache TTL must be positive")
		}
		if c.Cache.MaxRecent <= 0 {
			return errors.New("cache max recent must be positive")
		}
	}

	for name, w := range map[string]float64{
		"information": c.Scoring.InformationWeight,
		"engagement":  c.Scoring.EngagementWeight,
		"timing":      c.Scoring.TimingWeight,
		"novelty":     c.Scoring.NoveltyWeight,
	} {
		if w < 0 || w > 1 {
			return fmt.Errorf("scoring weight %s=%f out of range [0,1]", name, w)
		}
	}

	if c.Conflict.TriggerConfidence < 0 || c.Conflict.TriggerConfidence > 1 {
		return fmt.Errorf("conflict trigger confidence %f out of range [0,1]", c.Conflict.TriggerConfidence)
	}
	if c.Conflict.HighConfidence < c.Conflict.TriggerConfidence {
		return errors.New("conflict high confidence must not be below trigger confidence")
	}
	if c.Conflict.CriticalConfidence < c.Conflict.HighConfidence {
		return errors.New("conflict critical confidence must not be below high confidence")
	}
	if c.Conflict.CriticalConfidence > 1 {
		return errors.New("conflict critical confidence must not exceed 1")
	}

	if c.Session.MaxQuestionsPerSession <= 0 {
		return errors.New("max questions per session must be positive")
	}
	if c.Session.MinQuestionGap < 0 || c.Session.LongPause < 0 {
		return errors.New("session pacing durations must not be negative")
	}

	return nil
}

// Env helpers

func setString(target *string, key string) {
	if val := os.Getenv(key); val != "" {
		*target = val
	}
}

func setInt(target *int, key string) {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil {
			*target = parsed
		}
	}
}

func setFloat(target *float64, key string) {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.ParseFloat(val, 64); err == nil {
			*target = parsed
		}
	}
}

func setDuration(target *time.Duration, key string) {
	if val := os.Getenv(key); val != "" {
		if parsed, err := time.ParseDuration(val); err == nil {
			*target = parsed
		}
	}
}
