// internal/common/config/config.go
package config

import (
	"fmt"
	"time"
)

// Config is the main application configuration struct.
type Config struct {
	App      AppConfig      `mapstructure:"app"`
	Database DatabaseConfig `mapstructure:"database"`
	Matching MatchingConfig `mapstructure:"matching"`
	ML       MLConfig       `mapstructure:"ml"`
	Events   EventsConfig   `mapstructure:"events"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// --- Core App/Infrastructure Config ---
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
	MetricsAddr string `mapstructure:"metrics_addr"`
}

type DatabaseConfig struct {
	Postgres      PostgresConfig      `mapstructure:"postgres"`
	Elasticsearch ElasticsearchConfig `mapstructure:"elasticsearch"`
	Redis         RedisConfig         `mapstructure:"redis"`
}

type PostgresConfig struct {
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	Database       string `mapstructure:"database"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	MaxConnections int    `mapstructure:"max_connections"`
	MaxIdle        int    `mapstructure:"max_idle"`
	SSLMode        string `mapstructure:"sslmode"`
}

// GetDSN returns the PostgreSQL connection string.
func (p PostgresConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

type ElasticsearchConfig struct {
	Addresses []string `mapstructure:"addresses"`
	Username  string   `mapstructure:"username"`
	Password  string   `mapstructure:"password"`
	Index     string   `mapstructure:"index"`
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// MatchingConfig holds the business settings of the match engine.
type MatchingConfig struct {
	Weights               WeightsConfig `mapstructure:"weights"`
	HardMismatchThreshold float64       `mapstructure:"hard_mismatch_threshold"`
	TopN                  int           `mapstructure:"top_n"`
	MaxCandidates         int           `mapstructure:"max_candidates"`
	TaskTTL               time.Duration `mapstructure:"task_ttl"`
	Searcher              string        `mapstructure:"searcher"` // postgres | elasticsearch
	Pool                  PoolConfig    `mapstructure:"pool"`
}

// WeightsConfig mirrors feature.Weights; it is normalized before use.
type WeightsConfig struct {
	Variety float64 `mapstructure:"variety"`
	Region  float64 `mapstructure:"region"`
	Climate float64 `mapstructure:"climate"`
	Season  float64 `mapstructure:"season"`
	Quality float64 `mapstructure:"quality"`
	Intent  float64 `mapstructure:"intent"`
}

// PoolConfig sizes the background worker pool.
type PoolConfig struct {
	CoreSize  int `mapstructure:"core_size"`
	MaxSize   int `mapstructure:"max_size"`
	QueueSize int `mapstructure:"queue_size"`
}

// MLConfig controls the hybrid scoring canary.
type MLConfig struct {
	Enabled      bool          `mapstructure:"enabled"`
	Endpoint     string        `mapstructure:"endpoint"`
	TrafficRatio int           `mapstructure:"traffic_ratio"` // 0-100
	Timeout      time.Duration `mapstructure:"timeout"`
}

// EventsConfig controls the optional audit event publisher.
type EventsConfig struct {
	SNS struct {
		Enabled  bool   `mapstructure:"enabled"`
		TopicARN string `mapstructure:"topic_arn"`
		Region   string `mapstructure:"region"`
	} `mapstructure:"sns"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}
