package main

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"compliflow/internal/common/cache"
	"compliflow/internal/common/db"
	"compliflow/internal/common/mq"
	"compliflow/internal/common/storage"
	"compliflow/pkg/utils/logger"
)

// Config is the top-level service configuration.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Store   StoreConfig   `yaml:"store"`
	Redis   RedisConfig   `yaml:"redis"`
	Kafka   KafkaConfig   `yaml:"kafka"`
	MinIO   MinIOConfig   `yaml:"minio"`
	Auth    AuthConfig    `yaml:"auth"`
	Sample  SampleConfig  `yaml:"sample"`
	Logging logger.Config `yaml:"logging"`
}

// ServerConfig holds the HTTP listener settings.
type ServerConfig struct {
	Addr            string        `yaml:"addr"`
	Mode            string        `yaml:"mode"`
	ReadTimeout     time.Duration `yaml:"readTimeout"`
	WriteTimeout    time.Duration `yaml:"writeTimeout"`
	ShutdownTimeout time.Duration `yaml:"shutdownTimeout"`
}

// StoreConfig selects and configures the submission store backend.
type StoreConfig struct {
	Driver string         `yaml:"driver"` // memory or mysql
	MySQL  db.MySQLConfig `yaml:"mysql"`
}

// RedisConfig enables the cache layer when Addr is set.
type RedisConfig struct {
	Enabled bool              `yaml:"enabled"`
	Config  cache.RedisConfig `yaml:",inline"`
}

// KafkaConfig enables event publishing when brokers are set.
type KafkaConfig struct {
	Enabled bool           `yaml:"enabled"`
	Topic   string         `yaml:"topic"`
	Config  mq.KafkaConfig `yaml:",inline"`
}

// MinIOConfig enables content storage when the endpoint is set.
type MinIOConfig struct {
	Enabled bool                `yaml:"enabled"`
	Config  storage.MinIOConfig `yaml:",inline"`
}

// AuthConfig configures bearer token verification. Empty secret disables it.
type AuthConfig struct {
	JWTSecret string `yaml:"jwtSecret"`
}

// SampleConfig seeds demo data on startup when Count is positive.
type SampleConfig struct {
	Count int   `yaml:"count"`
	Seed  int64 `yaml:"seed"`
}

// LoadConfig reads the YAML configuration file at path.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := defaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:            ":8080",
			Mode:            "release",
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Store: StoreConfig{Driver: "memory"},
		Logging: logger.Config{
			Level:  "info",
			Format: "json",
		},
	}
}

func (c *Config) validate() error {
	switch c.Store.Driver {
	case "memory":
	case "mysql":
		if c.Store.MySQL.DSN == "" {
			return fmt.Errorf("store.mysql.dsn is required when store.driver is mysql")
		}
	default:
		return fmt.Errorf("unknown store driver %q", c.Store.Driver)
	}
	if c.Redis.Enabled && c.Redis.Config.Addr == "" {
		return fmt.Errorf("redis.addr is required when redis is enabled")
	}
	if c.Kafka.Enabled && len(c.Kafka.Config.Brokers) == 0 {
		return fmt.Errorf("kafka.brokers is required when kafka is enabled")
	}
	if c.MinIO.Enabled && c.MinIO.Config.Endpoint == "" {
		return fmt.Errorf("minio.endpoint is required when minio is enabled")
	}
	return nil
}
