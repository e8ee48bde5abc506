// Package config 提供配置加载和管理功能
package config

import (
	"fmt"
	"math"
	"time"
)

// Config 应用配置根结构
type Config struct {
	App           AppConfig           `yaml:"app" mapstructure:"app"`
	Server        ServerConfig        `yaml:"server" mapstructure:"server"`
	Cache         CacheConfig         `yaml:"cache" mapstructure:"cache"`
	Embedding     EmbeddingConfig     `yaml:"embedding" mapstructure:"embedding"`
	Curation      CurationConfig      `yaml:"curation" mapstructure:"curation"`
	Ranking       RankingConfig       `yaml:"ranking" mapstructure:"ranking"`
	Messaging     MessagingConfig     `yaml:"messaging" mapstructure:"messaging"`
	Observability ObservabilityConfig `yaml:"observability" mapstructure:"observability"`
	Security      SecurityConfig      `yaml:"security" mapstructure:"security"`
	Features      FeaturesConfig      `yaml:"features" mapstructure:"features"`
}

// AppConfig 应用基础配置
type AppConfig struct {
	Name    string `yaml:"name" mapstructure:"name"`
	Version string `yaml:"version" mapstructure:"version"`
	Env     string `yaml:"env" mapstructure:"env"`
}

// ServerConfig 服务器配置
type ServerConfig struct {
	HTTP HTTPServerConfig `yaml:"http" mapstructure:"http"`
}

// HTTPServerConfig HTTP 服务器配置
type HTTPServerConfig struct {
	Host         string        `yaml:"host" mapstructure:"host"`
	Port         int           `yaml:"port" mapstructure:"port"`
	ReadTimeout  time.Duration `yaml:"read_timeout" mapstructure:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout" mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `yaml:"idle_timeout" mapstructure:"idle_timeout"`
}

// CacheConfig 缓存配置
type CacheConfig struct {
	Redis     RedisConfig          `yaml:"redis" mapstructure:"redis"`
	Embedding EmbeddingCacheConfig `yaml:"embedding" mapstructure:"embedding"`
}

// RedisConfig Redis 配置
type RedisConfig struct {
	// Enabled 为 false 时不连接 Redis，缓存/限流/事件/统计均关闭
	Enabled      bool          `yaml:"enabled" mapstructure:"enabled"`
	Host         string        `yaml:"host" mapstructure:"host"`
	Port         int           `yaml:"port" mapstructure:"port"`
	Password     string        `yaml:"password" mapstructure:"password"`
	DB           int           `yaml:"db" mapstructure:"db"`
	PoolSize     int           `yaml:"pool_size" mapstructure:"pool_size"`
	MinIdleConns int           `yaml:"min_idle_conns" mapstructure:"min_idle_conns"`
	DialTimeout  time.Duration `yaml:"dial_timeout" mapstructure:"dial_timeout"`
	ReadTimeout  time.Duration `yaml:"read_timeout" mapstructure:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout" mapstructure:"write_timeout"`
}

// EmbeddingCacheConfig 向量缓存配置
type EmbeddingCacheConfig struct {
	Enabled bool          `yaml:"enabled" mapstructure:"enabled"`
	TTL     time.Duration `yaml:"ttl" mapstructure:"ttl"`
}

// EmbeddingConfig Embedding 配置
type EmbeddingConfig struct {
	// Provider http: 本地 sentence-transformers 推理服务; openai: OpenAI 兼容接口 (eino)
	Provider       string        `yaml:"provider" mapstructure:"provider"`
	Model          string        `yaml:"model" mapstructure:"model"`
	Dimension      int           `yaml:"dimension" mapstructure:"dimension"`
	BatchSize      int           `yaml:"batch_size" mapstructure:"batch_size"`
	Endpoint       string        `yaml:"endpoint" mapstructure:"endpoint"`
	APIKey         string        `yaml:"api_key" mapstructure:"api_key"`
	Timeout        time.Duration `yaml:"timeout" mapstructure:"timeout"`
	MaxConcurrency int           `yaml:"max_concurrency" mapstructure:"max_concurrency"`
	Breaker        BreakerConfig `yaml:"breaker" mapstructure:"breaker"`
}

// BreakerConfig 熔断器配置
type BreakerConfig struct {
	Enabled bool `yaml:"enabled" mapstructure:"enabled"`
	// ConsecutiveFailures 连续失败多少次后熔断
	ConsecutiveFailures uint32        `yaml:"consecutive_failures" mapstructure:"consecutive_failures"`
	MaxRequests         uint32        `yaml:"max_requests" mapstructure:"max_requests"`
	Interval            time.Duration `yaml:"interval" mapstructure:"interval"`
	Timeout             time.Duration `yaml:"timeout" mapstructure:"timeout"`
}

// CurationConfig 过滤配置
type CurationConfig struct {
	SemanticThreshold float64 `yaml:"semantic_threshold" mapstructure:"semantic_threshold"`
	MaxCandidates     int     `yaml:"max_candidates" mapstructure:"max_candidates"`
	MaxDisinterests   int     `yaml:"max_disinterests" mapstructure:"max_disinterests"`
}

// RankingConfig 排序配置
type RankingConfig struct {
	Markers []MarkerConfig `yaml:"markers" mapstructure:"markers"`
}

// MarkerConfig 排序关键词及权重
type MarkerConfig struct {
	Term   string  `yaml:"term" mapstructure:"term"`
	Weight float64 `yaml:"weight" mapstructure:"weight"`
}

// MessagingConfig 消息队列配置
type MessagingConfig struct {
	RedisStream RedisStreamConfig `yaml:"redis_stream" mapstructure:"redis_stream"`
}

// RedisStreamConfig Redis Stream 配置
type RedisStreamConfig struct {
	MaxLen              int           `yaml:"max_len" mapstructure:"max_len"`
	ConsumerGroupPrefix string        `yaml:"consumer_group_prefix" mapstructure:"consumer_group_prefix"`
	BlockTimeout        time.Duration `yaml:"block_timeout" mapstructure:"block_timeout"`
	ClaimInterval       time.Duration `yaml:"claim_interval" mapstructure:"claim_interval"`
	RetryLimit          int           `yaml:"retry_limit" mapstructure:"retry_limit"`
	RetryBackoff        BackoffConfig `yaml:"retry_backoff" mapstructure:"retry_backoff"`
}

// BackoffConfig 退避配置
type BackoffConfig struct {
	Initial    time.Duration `yaml:"initial" mapstructure:"initial"`
	Max        time.Duration `yaml:"max" mapstructure:"max"`
	Multiplier float64       `yaml:"multiplier" mapstructure:"multiplier"`
}

// ObservabilityConfig 可观测性配置
type ObservabilityConfig struct {
	Logging LoggingConfig `yaml:"logging" mapstructure:"logging"`
	Tracing TracingConfig `yaml:"tracing" mapstructure:"tracing"`
	Metrics MetricsConfig `yaml:"metrics" mapstructure:"metrics"`
}

// LoggingConfig 日志配置
type LoggingConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// TracingConfig 追踪配置
type TracingConfig struct {
	Enabled    bool    `yaml:"enabled" mapstructure:"enabled"`
	Endpoint   string  `yaml:"endpoint" mapstructure:"endpoint"`
	SampleRate float64 `yaml:"sample_rate" mapstructure:"sample_rate"`
}

// MetricsConfig 指标配置
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled" mapstructure:"enabled"`
	Path    string `yaml:"path" mapstructure:"path"`
}

// SecurityConfig 安全配置
type SecurityConfig struct {
	JWT       JWTConfig       `yaml:"jwt" mapstructure:"jwt"`
	RateLimit RateLimitConfig `yaml:"rate_limit" mapstructure:"rate_limit"`
	CORS      CORSConfig      `yaml:"cors" mapstructure:"cors"`
}

// JWTConfig JWT 配置
type JWTConfig struct {
	Enabled bool   `yaml:"enabled" mapstructure:"enabled"`
	Secret  string `yaml:"secret" mapstructure:"secret"`
	Issuer  string `yaml:"issuer" mapstructure:"issuer"`
}

// RateLimitConfig 限流配置
type RateLimitConfig struct {
	Enabled           bool `yaml:"enabled" mapstructure:"enabled"`
	RequestsPerSecond int  `yaml:"requests_per_second" mapstructure:"requests_per_second"`
}

// CORSConfig CORS 配置
type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins" mapstructure:"allowed_origins"`
	AllowedMethods []string `yaml:"allowed_methods" mapstructure:"allowed_methods"`
	AllowedHeaders []string `yaml:"allowed_headers" mapstructure:"allowed_headers"`
}

// FeaturesConfig 功能开关配置
type FeaturesConfig struct {
	FilterEvents FilterEventsFeature `yaml:"filter_events" mapstructure:"filter_events"`
}

// FilterEventsFeature 过滤事件投递开关
type FilterEventsFeature struct {
	Enabled bool `yaml:"enabled" mapstructure:"enabled"`
}

// Validate 校验启动配置
func (c *Config) Validate() error {
	t := c.Curation.SemanticThreshold
	if math.IsNaN(t) || t < 0 || t > 1 {
		return fmt.Errorf("curation.semantic_threshold must be within [0,1], got %v", t)
	}
	switch c.Embedding.Provider {
	case "http", "openai":
	default:
		return fmt.Errorf("unknown embedding provider %q", c.Embedding.Provider)
	}
	if c.Embedding.MaxConcurrency <= 0 {
		return fmt.Errorf("embedding.max_concurrency must be positive, got %d", c.Embedding.MaxConcurrency)
	}
	if c.Embedding.Dimension < 0 {
		return fmt.Errorf("embedding.dimension must not be negative, got %d", c.Embedding.Dimension)
	}
	if c.Curation.MaxCandidates <= 0 || c.Curation.MaxDisinterests <= 0 {
		return fmt.Errorf("curation limits must be positive")
	}
	if c.Security.JWT.Enabled && c.Security.JWT.Secret == "" {
		return fmt.Errorf("security.jwt.secret is required when jwt is enabled")
	}
	if c.Cache.Embedding.Enabled && !c.Cache.Redis.Enabled {
		return fmt.Errorf("cache.embedding requires cache.redis.enabled")
	}
	return nil
}
