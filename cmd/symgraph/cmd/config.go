package cmd

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	miniostore "github.com/hupe1980/symgraph/blobstore/minio"
	"github.com/hupe1980/symgraph/bsgraph"
	"github.com/hupe1980/symgraph/codec"
	"github.com/hupe1980/symgraph/persistence"
)

// Config is the CLI configuration file.
//
//	store:
//	  kind: s3
//	  s3: {bucket: grammars, prefix: tables/, table: grammar-head}
//	cache:
//	  capacity_bytes: 67108864
//	ranking:
//	  damping_factor: 0.85
type Config struct {
	Store       StoreConfig      `yaml:"store"`
	Cache       CacheConfig      `yaml:"cache"`
	Resources   ResourceConfig   `yaml:"resources"`
	Ranking     RankingConfig    `yaml:"ranking"`
	Centrality  CentralityConfig `yaml:"centrality"`
	Compression string           `yaml:"compression"`
	Codec       string           `yaml:"codec"`
}

// StoreConfig selects and configures the snapshot store.
type StoreConfig struct {
	// Kind is one of local, memory, s3 or minio.
	Kind  string            `yaml:"kind"`
	Path  string            `yaml:"path"`
	S3    S3Config          `yaml:"s3"`
	MinIO miniostore.Config `yaml:"minio"`
}

// S3Config configures the S3 store. A non-empty Table keeps HEAD in
// DynamoDB.
type S3Config struct {
	Bucket   string `yaml:"bucket"`
	Prefix   string `yaml:"prefix"`
	Region   string `yaml:"region"`
	Endpoint string `yaml:"endpoint"`
	Table    string `yaml:"table"`
}

// CacheConfig sizes the block cache placed in front of remote stores.
type CacheConfig struct {
	CapacityBytes int64 `yaml:"capacity_bytes"`
	BlockSize     int64 `yaml:"block_size"`
}

// ResourceConfig bounds snapshot IO.
type ResourceConfig struct {
	MemoryLimitBytes   int64 `yaml:"memory_limit_bytes"`
	MaxWorkers         int64 `yaml:"max_workers"`
	IOLimitBytesPerSec int64 `yaml:"io_limit_bytes_per_sec"`
}

// RankingConfig holds PageRank parameters.
type RankingConfig struct {
	DampingFactor            float64 `yaml:"damping_factor"`
	MaxIterations            int     `yaml:"max_iterations"`
	MaxError                 float64 `yaml:"max_error"`
	RedistributeDanglingMass bool    `yaml:"redistribute_dangling_mass"`
	Monotonic                bool    `yaml:"monotonic"`
}

// CentralityConfig holds eigenvector centrality parameters.
type CentralityConfig struct {
	MaxIterations   int     `yaml:"max_iterations"`
	Tolerance       float64 `yaml:"tolerance"`
	UseInbound      bool    `yaml:"use_inbound"`
	IgnoreSelfEdges bool    `yaml:"ignore_self_edges"`
}

// DefaultConfig returns a configuration for a local store in the current
// directory.
func DefaultConfig() Config {
	pr := bsgraph.DefaultPageRankOptions()
	ec := bsgraph.DefaultCentralityOptions()
	return Config{
		Store: StoreConfig{Kind: "local", Path: "."},
		Cache: CacheConfig{
			CapacityBytes: 64 << 20,
		},
		Resources: ResourceConfig{MaxWorkers: 4},
		Ranking: RankingConfig{
			DampingFactor:            pr.DampingFactor,
			MaxIterations:            pr.MaxIterations,
			MaxError:                 pr.MaxError,
			RedistributeDanglingMass: pr.RedistributeDanglingMass,
			Monotonic:                pr.Monotonic,
		},
		Centrality: CentralityConfig{
			MaxIterations:   ec.MaxIterations,
			Tolerance:       ec.Tolerance,
			UseInbound:      ec.UseInbound,
			IgnoreSelfEdges: ec.IgnoreSelfEdges,
		},
		Compression: persistence.CompressionLZ4.String(),
		Codec:       "json",
	}
}

// LoadConfig reads path over the defaults. An empty path or a missing file
// yields the defaults. SYMGRAPH_* environment variables override the file.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return cfg, err
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return cfg, fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}

	loadConfigFromEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func loadConfigFromEnv(cfg *Config) {
	if v := os.Getenv("SYMGRAPH_STORE"); v != "" {
		cfg.Store.Kind = v
	}
	if v := os.Getenv("SYMGRAPH_STORE_PATH"); v != "" {
		cfg.Store.Path = v
	}
	if v := os.Getenv("SYMGRAPH_S3_BUCKET"); v != "" {
		cfg.Store.S3.Bucket = v
	}
	if v := os.Getenv("SYMGRAPH_S3_PREFIX"); v != "" {
		cfg.Store.S3.Prefix = v
	}
	if v := os.Getenv("SYMGRAPH_S3_TABLE"); v != "" {
		cfg.Store.S3.Table = v
	}
	if v := os.Getenv("SYMGRAPH_MINIO_ACCESS_KEY"); v != "" {
		cfg.Store.MinIO.AccessKey = v
	}
	if v := os.Getenv("SYMGRAPH_MINIO_SECRET_KEY"); v != "" {
		cfg.Store.MinIO.SecretKey = v
	}
	if v := os.Getenv("SYMGRAPH_CACHE_BYTES"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			cfg.Cache.CapacityBytes = n
		}
	}
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	switch c.Store.Kind {
	case "local":
		if c.Store.Path == "" {
			return errors.New("store.path is required for a local store")
		}
	case "memory":
	case "s3":
		if c.Store.S3.Bucket == "" {
			return errors.New("store.s3.bucket is required")
		}
	case "minio":
		if c.Store.MinIO.Endpoint == "" || c.Store.MinIO.Bucket == "" {
			return errors.New("store.minio.endpoint and store.minio.bucket are required")
		}
	default:
		return fmt.Errorf("unknown store kind %q", c.Store.Kind)
	}

	if _, err := persistence.ParseCompression(c.Compression); err != nil {
		return err
	}
	if _, ok := codec.ByName(c.Codec); !ok {
		return fmt.Errorf("unknown codec %q (want one of %v)", c.Codec, codec.Names())
	}
	if c.Cache.CapacityBytes < 0 || c.Cache.BlockSize < 0 {
		return errors.New("cache sizes must not be negative")
	}
	if c.Ranking.DampingFactor < 0 || c.Ranking.DampingFactor > 1 {
		return fmt.Errorf("ranking.damping_factor %v outside [0, 1]", c.Ranking.DampingFactor)
	}
	return nil
}

// PageRankOptions converts the ranking section.
func (c Config) PageRankOptions() bsgraph.PageRankOptions {
	opts := bsgraph.PageRankOptions{
		DampingFactor:            c.Ranking.DampingFactor,
		MaxIterations:            c.Ranking.MaxIterations,
		MaxError:                 c.Ranking.MaxError,
		RedistributeDanglingMass: c.Ranking.RedistributeDanglingMass,
		Monotonic:                c.Ranking.Monotonic,
	}
	opts.Validate()
	return opts
}

// CentralityOptions converts the centrality section.
func (c Config) CentralityOptions() bsgraph.CentralityOptions {
	opts := bsgraph.CentralityOptions{
		MaxIterations:   c.Centrality.MaxIterations,
		Tolerance:       c.Centrality.Tolerance,
		UseInbound:      c.Centrality.UseInbound,
		IgnoreSelfEdges: c.Centrality.IgnoreSelfEdges,
	}
	opts.Validate()
	return opts
}
