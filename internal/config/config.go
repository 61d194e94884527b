// Package config provides unified configuration for the hiveconnect
// read-planning layer.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// PrewhereMethod selects the early-filter promotion policy.
type PrewhereMethod string

const (
	PrewhereAll        PrewhereMethod = "all"
	PrewhereColumnSize PrewhereMethod = "column_size"
	PrewhereNever      PrewhereMethod = "never"
)

// Config holds the unified configuration for the connector.
type Config struct {
	// Metastore configuration
	Metastore MetastoreConfig `json:"metastore" yaml:"metastore"`

	// Planner configuration
	Planner PlannerConfig `json:"planner" yaml:"planner"`

	// S3 configuration for directory listing
	S3 S3Config `json:"s3" yaml:"s3"`
}

// MetastoreConfig holds metastore client configuration.
type MetastoreConfig struct {
	// URL of the metastore service; embedded catalogs use a file path
	// with the "sqlite://" scheme.
	URL string `json:"url" yaml:"url"`
}

// PlannerConfig holds the read-planning settings surface.
type PlannerConfig struct {
	// MaxPartitionsToRead is the partition-count ceiling enforced after
	// pruning; 0 means unlimited.
	MaxPartitionsToRead int `json:"max_partitions_to_read" yaml:"max_partitions_to_read"`

	// UseMetastoreFilter controls sending the derived partition filter
	// string to the metastore.
	UseMetastoreFilter bool `json:"use_hive_metastore_filter" yaml:"use_hive_metastore_filter"`

	// UsePartitionFilter controls the local partition range pruner.
	UsePartitionFilter bool `json:"use_hive_partition_filter" yaml:"use_hive_partition_filter"`

	// UseClusterKeyFilter controls bucket resolution and pruning.
	UseClusterKeyFilter bool `json:"use_hive_cluster_key_filter" yaml:"use_hive_cluster_key_filter"`

	// MoveToPrewhereMethod is the early-filter promotion policy.
	MoveToPrewhereMethod PrewhereMethod `json:"hive_move_to_prewhere_method" yaml:"hive_move_to_prewhere_method"`

	// MaxStreams bounds the concurrent partition listings.
	MaxStreams int `json:"max_streams" yaml:"max_streams"`

	// MergePartitionStats controls whether table statistics merge
	// per-partition statistics.
	MergePartitionStats bool `json:"merge_partition_stats" yaml:"merge_partition_stats"`
}

// S3Config holds S3 client configuration for directory listers.
type S3Config struct {
	// Region is the AWS region.
	Region string `json:"region" yaml:"region"`

	// Endpoint is an optional custom endpoint (for MinIO, LocalStack, etc.).
	Endpoint string `json:"endpoint" yaml:"endpoint"`

	// UsePathStyle enables path-style addressing (required for MinIO).
	UsePathStyle bool `json:"use_path_style" yaml:"use_path_style"`
}

// DefaultConfig returns the default configuration for local development.
func DefaultConfig() *Config {
	return &Config{
		Metastore: MetastoreConfig{
			URL: "sqlite://./data/hiveconnect/metastore.db",
		},
		Planner: PlannerConfig{
			MaxPartitionsToRead:  0,
			UseMetastoreFilter:   true,
			UsePartitionFilter:   true,
			UseClusterKeyFilter:  true,
			MoveToPrewhereMethod: PrewhereColumnSize,
			MaxStreams:           8,
			MergePartitionStats:  true,
		},
		S3: S3Config{
			Region: "us-east-1",
		},
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Metastore.URL == "" {
		return fmt.Errorf("metastore.url is required")
	}

	switch c.Planner.MoveToPrewhereMethod {
	case PrewhereAll, PrewhereColumnSize, PrewhereNever:
	default:
		return fmt.Errorf("invalid hive_move_to_prewhere_method: %s (must be all, column_size, or never)",
			c.Planner.MoveToPrewhereMethod)
	}

	if c.Planner.MaxPartitionsToRead < 0 {
		return fmt.Errorf("max_partitions_to_read must be >= 0, got %d", c.Planner.MaxPartitionsToRead)
	}

	if c.Planner.MaxStreams < 1 {
		return fmt.Errorf("max_streams must be >= 1, got %d", c.Planner.MaxStreams)
	}

	return nil
}

// LoadFromFile loads configuration from a YAML or JSON file.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := DefaultConfig()

	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse YAML config: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse JSON config: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported config file format: %s", ext)
	}

	return cfg, nil
}

// LoadFromEnv overrides configuration from environment variables.
// Environment variables use the HIVECONNECT_ prefix.
func LoadFromEnv(cfg *Config) {
	if v := os.Getenv("HIVECONNECT_METASTORE_URL"); v != "" {
		cfg.Metastore.URL = v
	}
	if v := os.Getenv("HIVECONNECT_MAX_PARTITIONS_TO_READ"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Planner.MaxPartitionsToRead = n
		}
	}
	if v := os.Getenv("HIVECONNECT_USE_METASTORE_FILTER"); v != "" {
		cfg.Planner.UseMetastoreFilter = v == "true" || v == "1"
	}
	if v := os.Getenv("HIVECONNECT_USE_PARTITION_FILTER"); v != "" {
		cfg.Planner.UsePartitionFilter = v == "true" || v == "1"
	}
	if v := os.Getenv("HIVECONNECT_USE_CLUSTER_KEY_FILTER"); v != "" {
		cfg.Planner.UseClusterKeyFilter = v == "true" || v == "1"
	}
	if v := os.Getenv("HIVECONNECT_MOVE_TO_PREWHERE_METHOD"); v != "" {
		cfg.Planner.MoveToPrewhereMethod = PrewhereMethod(v)
	}
	if v := os.Getenv("HIVECONNECT_MAX_STREAMS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Planner.MaxStreams = n
		}
	}
	if v := os.Getenv("HIVECONNECT_S3_REGION"); v != "" {
		cfg.S3.Region = v
	}
	if v := os.Getenv("HIVECONNECT_S3_ENDPOINT"); v != "" {
		cfg.S3.Endpoint = v
	}
}
