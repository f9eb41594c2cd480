package config

import (
	"fmt"
	"strings"
	"time"
)

// Config represents the complete application configuration
type Config struct {
	Server       ServerConfig       `mapstructure:"server"`
	Auth         AuthConfig         `mapstructure:"auth"`
	Logging      LoggingConfig      `mapstructure:"logging"`
	Queue        QueueConfig        `mapstructure:"queue"`
	Etcd         EtcdConfig         `mapstructure:"etcd"`
	Ingest       IngestConfig       `mapstructure:"ingest"`
	ControlStore ControlStoreConfig `mapstructure:"control_store"`
}

// ServerConfig represents HTTP and gRPC server configuration
type ServerConfig struct {
	Host     string `mapstructure:"host"`      // Bind address (e.g., 0.0.0.0 for all interfaces)
	HTTPPort int    `mapstructure:"http_port"` // HTTP server port
	GRPCPort int    `mapstructure:"grpc_port"` // gRPC health server port, 0 disables it
}

// AuthConfig represents authentication configuration
type AuthConfig struct {
	Enabled bool     `mapstructure:"enabled"`  // Enable/disable API key authentication
	APIKeys []string `mapstructure:"api_keys"` // List of valid API keys
}

// LoggingConfig represents logging configuration
type LoggingConfig struct {
	Level      string `mapstructure:"level"`       // debug, info, warn, error
	Format     string `mapstructure:"format"`      // json, console
	OutputPath string `mapstructure:"output_path"` // stdout, stderr, file path
	TimeFormat string `mapstructure:"time_format"` // RFC3339, Unix, Kitchen
}

// QueueConfig represents message queue configuration
type QueueConfig struct {
	Type     string `mapstructure:"type"` // nats (default), redis, kafka, memory
	URL      string `mapstructure:"url"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`

	RedisDB       int    `mapstructure:"redis_db"`
	RedisStream   string `mapstructure:"redis_stream"`   // Stream prefix (default: "diskhealth")
	RedisGroup    string `mapstructure:"redis_group"`    // Consumer group (default: "diskhealth-group")
	RedisConsumer string `mapstructure:"redis_consumer"` // Consumer name (default: hostname)

	KafkaBrokers []string `mapstructure:"kafka_brokers"`
	KafkaGroupID string   `mapstructure:"kafka_group_id"`
}

// EtcdConfig represents etcd configuration
type EtcdConfig struct {
	Endpoints   []string      `mapstructure:"endpoints"`
	DialTimeout time.Duration `mapstructure:"dial_timeout"`
	Username    string        `mapstructure:"username"`
	Password    string        `mapstructure:"password"`
	Prefix      string        `mapstructure:"prefix"` // Key prefix for control records
}

// IngestConfig controls the snapshot ingest worker
type IngestConfig struct {
	Enabled         bool   `mapstructure:"enabled"`
	SnapshotSubject string `mapstructure:"snapshot_subject"`
	ResultSubject   string `mapstructure:"result_subject"`
	Compression     string `mapstructure:"compression"` // none, snappy
}

// ControlStoreConfig selects where control-plane records are kept
type ControlStoreConfig struct {
	Type     string        `mapstructure:"type"`      // memory, etcd
	CacheTTL time.Duration `mapstructure:"cache_ttl"` // Read cache TTL for the etcd store
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if err := c.Server.Validate(); err != nil {
		return fmt.Errorf("server config: %w", err)
	}

	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("logging config: %w", err)
	}

	if err := c.ControlStore.Validate(); err != nil {
		return fmt.Errorf("control_store config: %w", err)
	}

	if c.ControlStore.Type == "etcd" {
		if err := c.Etcd.Validate(); err != nil {
			return fmt.Errorf("etcd config: %w", err)
		}
	}

	if err := c.Ingest.Validate(); err != nil {
		return fmt.Errorf("ingest config: %w", err)
	}

	return nil
}

// Validate validates server configuration
func (c *ServerConfig) Validate() error {
	if c.HTTPPort < 1 || c.HTTPPort > 65535 {
		return fmt.Errorf("invalid http_port: %d", c.HTTPPort)
	}
	if c.GRPCPort == 0 {
		return nil
	}
	if c.GRPCPort < 1 || c.GRPCPort > 65535 {
		return fmt.Errorf("invalid grpc_port: %d", c.GRPCPort)
	}
	if c.HTTPPort == c.GRPCPort {
		return fmt.Errorf("http_port and grpc_port cannot be the same")
	}
	return nil
}

// Validate validates etcd configuration
func (c *EtcdConfig) Validate() error {
	if len(c.Endpoints) == 0 {
		return fmt.Errorf("etcd.endpoints is required")
	}

	if c.DialTimeout <= 0 {
		return fmt.Errorf("etcd.dial_timeout must be positive")
	}

	if c.Prefix != "" && !strings.HasPrefix(c.Prefix, "/") {
		return fmt.Errorf("etcd.prefix must start with '/'")
	}

	return nil
}

// Validate validates logging configuration
func (c *LoggingConfig) Validate() error {
	switch c.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be one of: debug, info, warn, error")
	}

	switch c.Format {
	case "json", "console":
	default:
		return fmt.Errorf("logging.format must be 'json' or 'console'")
	}

	return nil
}

// Validate validates ingest configuration
func (c *IngestConfig) Validate() error {
	if !c.Enabled {
		return nil
	}

	if c.SnapshotSubject == "" {
		return fmt.Errorf("ingest.snapshot_subject is required")
	}

	if c.ResultSubject == "" {
		return fmt.Errorf("ingest.result_subject is required")
	}

	if c.SnapshotSubject == c.ResultSubject {
		return fmt.Errorf("ingest.snapshot_subject and ingest.result_subject cannot be the same")
	}

	switch c.Compression {
	case "", "none", "snappy":
	default:
		return fmt.Errorf("ingest.compression must be 'none' or 'snappy'")
	}

	return nil
}

// Validate validates control store configuration
func (c *ControlStoreConfig) Validate() error {
	switch c.Type {
	case "memory", "etcd":
	default:
		return fmt.Errorf("control_store.type must be 'memory' or 'etcd'")
	}

	if c.CacheTTL < 0 {
		return fmt.Errorf("control_store.cache_ttl cannot be negative")
	}

	return nil
}

// Address returns the HTTP listen address
func (c *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.HTTPPort)
}

// GRPCAddress returns the gRPC bind address
func (c *ServerConfig) GRPCAddress() string {
	return fmt.Sprintf("%s:%d", c.Host, c.GRPCPort)
}
