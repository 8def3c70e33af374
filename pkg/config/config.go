package config

import (
	"fmt"
	"os"
	"time"

	"github.com/minhNhat-ctrl/crawl-coordinator/pkg/errors"
	"github.com/minhNhat-ctrl/crawl-coordinator/pkg/logger/conf"
	"github.com/minhNhat-ctrl/crawl-coordinator/pkg/sql"
	"gopkg.in/yaml.v2"
)

type Config struct {
	HttpPort   int                `json:"httpPort" yaml:"httpPort"`
	HealthPort int                `json:"healthPort" yaml:"healthPort"`
	Log        *conf.LogConfig    `json:"log" yaml:"log"`
	Database   sql.DatabaseConfig `json:"database" yaml:"database"`
	Redis      RedisConfig        `json:"redis" yaml:"redis"`
	Scheduler  SchedulerConfig    `json:"scheduler" yaml:"scheduler"`
	AutoRecord AutoRecordRunner   `json:"autoRecord" yaml:"autoRecord"`
	Middleware MiddlewareConfig   `json:"middleware" yaml:"middleware"`
}

// RedisConfig is the connection used for both the pending-jobs cache and
// the auto-record queue. Per-strategy cache behavior lives in the persisted
// CacheConfig row, not here.
type RedisConfig struct {
	Host     string `json:"host" yaml:"host"`
	Port     int    `json:"port" yaml:"port"`
	DB       int    `json:"db" yaml:"db"`
	Password string `json:"password" yaml:"password"`
}

func (c RedisConfig) Addr() string {
	host := c.Host
	if host == "" {
		host = "localhost"
	}
	port := c.Port
	if port == 0 {
		port = 6379
	}
	return fmt.Sprintf("%s:%d", host, port)
}

type SchedulerConfig struct {
	// Interval between materializer passes. Default 60s.
	IntervalSeconds int `json:"interval_seconds" yaml:"interval_seconds"`
	// Max due policies loaded per pass. Default 500.
	PolicyBatch int `json:"policy_batch" yaml:"policy_batch"`
	// Max candidate URLs enumerated per policy per pass. Default 1000.
	URLBatch int `json:"url_batch" yaml:"url_batch"`
	// Max expired leases swept per pass. Default 200.
	SweepBatch int `json:"sweep_batch" yaml:"sweep_batch"`
	// Terminal jobs older than this are deleted by the cleanup job. Default 30d.
	RetentionDays int `json:"retention_days" yaml:"retention_days"`
}

func (c SchedulerConfig) Interval() time.Duration {
	if c.IntervalSeconds <= 0 {
		return 60 * time.Second
	}
	return time.Duration(c.IntervalSeconds) * time.Second
}

func (c SchedulerConfig) GetPolicyBatch() int {
	if c.PolicyBatch <= 0 {
		return 500
	}
	return c.PolicyBatch
}

func (c SchedulerConfig) GetURLBatch() int {
	if c.URLBatch <= 0 {
		return 1000
	}
	return c.URLBatch
}

func (c SchedulerConfig) GetSweepBatch() int {
	if c.SweepBatch <= 0 {
		return 200
	}
	return c.SweepBatch
}

func (c SchedulerConfig) Retention() time.Duration {
	days := c.RetentionDays
	if days <= 0 {
		days = 30
	}
	return time.Duration(days) * 24 * time.Hour
}

// AutoRecordRunner tunes the queue consumer loop. The recording criteria
// themselves are the persisted AutoRecordConfig row.
type AutoRecordRunner struct {
	// Items consumed per drain pass. Default 100.
	Batch int `json:"batch" yaml:"batch"`
	// Queue-level retries per result id before the failed set. Default 3.
	MaxRetries int `json:"max_retries" yaml:"max_retries"`
	// Failed-set recovery runs every this many drain passes. Default 10.
	RetryFailedEvery int `json:"retry_failed_every" yaml:"retry_failed_every"`
	// Items popped from the failed set per recovery pass. Default 100.
	RetryFailedLimit int `json:"retry_failed_limit" yaml:"retry_failed_limit"`
}

func (c AutoRecordRunner) GetBatch() int {
	if c.Batch <= 0 {
		return 100
	}
	return c.Batch
}

func (c AutoRecordRunner) GetMaxRetries() int {
	if c.MaxRetries <= 0 {
		return 3
	}
	return c.MaxRetries
}

func (c AutoRecordRunner) GetRetryFailedEvery() int {
	if c.RetryFailedEvery <= 0 {
		return 10
	}
	return c.RetryFailedEvery
}

func (c AutoRecordRunner) GetRetryFailedLimit() int {
	if c.RetryFailedLimit <= 0 {
		return 100
	}
	return c.RetryFailedLimit
}

type MiddlewareConfig struct {
	Logging *bool `json:"logging" yaml:"logging"`
}

func (c MiddlewareConfig) IsLoggingEnabled() bool {
	if c.Logging == nil {
		return true
	}
	return *c.Logging
}

var config *Config

func LoadConfig() (*Config, error) {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config.yaml"
	}
	configFile, err := os.Open(configPath)
	if err != nil {
		return nil, errors.NewError().
			WithCode(errors.CodeInitializeError).
			WithMessage("failed to open config file").
			WithError(err)
	}
	defer configFile.Close()
	decoder := yaml.NewDecoder(configFile)
	err = decoder.Decode(&config)
	if err != nil {
		return nil, errors.NewError().
			WithCode(errors.CodeInitializeError).
			WithMessage("failed to parse config file").
			WithError(err)
	}
	if config.Log == nil {
		config.Log = conf.DefaultConfig()
	}
	return config, nil
}

func GetConfig() *Config {
	return config
}
