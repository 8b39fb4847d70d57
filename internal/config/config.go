package config

import (
	"os"
	"strconv"
	"time"
)

// Config はアプリケーション設定を表す
type Config struct {
	Server  ServerConfig
	Gateway GatewayConfig
	Redis   RedisConfig
	Session SessionConfig
	Warmup  WarmupConfig
}

// ServerConfig はサーバー設定
type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// GatewayConfig はチケットAPIゲートウェイ設定
type GatewayConfig struct {
	BaseURL string
	Timeout time.Duration
	Source  string
}

// RedisConfig はRedis設定
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	Enabled  bool
}

// SessionConfig は予約セッション設定
type SessionConfig struct {
	TTL             time.Duration
	CleanupInterval time.Duration
}

// WarmupConfig は空き状況スナップショットのウォームアップ設定
type WarmupConfig struct {
	Enabled     bool
	CronSpec    string
	SnapshotTTL time.Duration
	Concurrency int
}

// Load は環境変数から設定を読み込む
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         getEnv("PORT", "8080"),
			ReadTimeout:  getDurationEnv("SERVER_READ_TIMEOUT", 30*time.Second),
			WriteTimeout: getDurationEnv("SERVER_WRITE_TIMEOUT", 30*time.Second),
		},
		Gateway: GatewayConfig{
			BaseURL: getEnv("GATEWAY_BASE_URL", "http://localhost:9000/api"),
			Timeout: getDurationEnv("GATEWAY_TIMEOUT", 10*time.Second),
			Source:  getEnv("GATEWAY_SOURCE", "web"),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getIntEnv("REDIS_DB", 0),
			Enabled:  getBoolEnv("REDIS_ENABLED", false),
		},
		Session: SessionConfig{
			TTL:             getDurationEnv("SESSION_TTL", 30*time.Minute),
			CleanupInterval: getDurationEnv("SESSION_CLEANUP_INTERVAL", 5*time.Minute),
		},
		Warmup: WarmupConfig{
			Enabled:     getBoolEnv("WARMUP_ENABLED", false),
			CronSpec:    getEnv("WARMUP_CRON", "@every 1h"),
			SnapshotTTL: getDurationEnv("WARMUP_SNAPSHOT_TTL", 15*time.Minute),
			Concurrency: getIntEnv("WARMUP_CONCURRENCY", 5),
		},
	}
}

// Addr はRedis接続アドレスを返す
func (c *RedisConfig) Addr() string {
	return c.Host + ":" + c.Port
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
