package config

import (
	"os"
	"strconv"
	"time"
)

// Config はアプリケーション設定を表す
type Config struct {
	Env         string
	Server      ServerConfig
	Store       StoreConfig
	Database    DatabaseConfig
	Redis       RedisConfig
	Reservation ReservationConfig
	Worker      WorkerConfig
	Log         LogConfig
	RateLimit   RateLimitConfig
	Metrics     MetricsConfig
}

// ServerConfig はサーバー設定
type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// StoreConfig は永続化の設定
type StoreConfig struct {
	// Driver は memory または postgres
	Driver         string
	MigrationsPath string
	RoomsSeedFile  string
}

// DatabaseConfig はデータベース設定
type DatabaseConfig struct {
	// URL が指定されている場合は個別の項目より優先する
	URL      string
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// RedisConfig はRedis設定
type RedisConfig struct {
	Enabled  bool
	URL      string
	Host     string
	Port     string
	Password string
	DB       int
	CacheTTL time.Duration
}

// ReservationConfig は予約処理の設定
type ReservationConfig struct {
	LockTimeout           time.Duration
	SurchargeRate         float64
	Currency              string
	SettlementSuccessRate float64
}

// WorkerConfig はバックグラウンドワーカーの設定
type WorkerConfig struct {
	StaleCleanerInterval time.Duration
	StalePendingAfter    time.Duration
	StaleProcessingAfter time.Duration
}

// LogConfig はログ出力の設定
type LogConfig struct {
	Level      string
	File       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

// RateLimitConfig は予約作成のレート制限設定
type RateLimitConfig struct {
	RPS   float64
	Burst int
}

// MetricsConfig は /metrics の認証設定
type MetricsConfig struct {
	User     string
	Password string
}

// Load は環境変数から設定を読み込む
func Load() *Config {
	return &Config{
		Env: getEnv("APP_ENV", "development"),
		Server: ServerConfig{
			Port:         getEnv("PORT", "8080"),
			ReadTimeout:  getDurationEnv("SERVER_READ_TIMEOUT", 30*time.Second),
			WriteTimeout: getDurationEnv("SERVER_WRITE_TIMEOUT", 30*time.Second),
		},
		Store: StoreConfig{
			Driver:         getEnv("STORE_DRIVER", "memory"),
			MigrationsPath: getEnv("MIGRATIONS_PATH", "migrations"),
			RoomsSeedFile:  getEnv("ROOMS_SEED_FILE", ""),
		},
		Database: DatabaseConfig{
			URL:      getEnv("DATABASE_URL", ""),
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "hotel_reservation"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Enabled:  getBoolEnv("REDIS_ENABLED", false),
			URL:      getEnv("REDIS_URL", ""),
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getIntEnv("REDIS_DB", 0),
			CacheTTL: getDurationEnv("ROOM_CACHE_TTL", 5*time.Minute),
		},
		Reservation: ReservationConfig{
			LockTimeout:           getDurationEnv("RESERVATION_LOCK_TIMEOUT", 10*time.Second),
			SurchargeRate:         getFloatEnv("PAYMENT_SURCHARGE_RATE", 0.03),
			Currency:              getEnv("PAYMENT_CURRENCY", "USD"),
			SettlementSuccessRate: getFloatEnv("SETTLEMENT_SUCCESS_RATE", 1.0),
		},
		Worker: WorkerConfig{
			StaleCleanerInterval: getDurationEnv("STALE_CLEANER_INTERVAL", time.Minute),
			StalePendingAfter:    getDurationEnv("STALE_PENDING_AFTER", 15*time.Minute),
			StaleProcessingAfter: getDurationEnv("STALE_PROCESSING_AFTER", time.Hour),
		},
		Log: LogConfig{
			Level:      getEnv("LOG_LEVEL", ""),
			File:       getEnv("LOG_FILE", ""),
			MaxSizeMB:  getIntEnv("LOG_MAX_SIZE_MB", 100),
			MaxBackups: getIntEnv("LOG_MAX_BACKUPS", 3),
			MaxAgeDays: getIntEnv("LOG_MAX_AGE_DAYS", 28),
		},
		RateLimit: RateLimitConfig{
			RPS:   getFloatEnv("RATE_LIMIT_RPS", 10),
			Burst: getIntEnv("RATE_LIMIT_BURST", 20),
		},
		Metrics: MetricsConfig{
			User:     getEnv("METRICS_USER", ""),
			Password: getEnv("METRICS_PASSWORD", ""),
		},
	}
}

// DSN はPostgreSQL接続文字列を返す
func (c *DatabaseConfig) DSN() string {
	if c.URL != "" {
		return c.URL
	}
	return "host=" + c.Host +
		" port=" + c.Port +
		" user=" + c.User +
		" password=" + c.Password +
		" dbname=" + c.DBName +
		" sslmode=" + c.SSLMode
}

// Addr はRedis接続アドレスを返す
func (c *RedisConfig) Addr() string {
	return c.Host + ":" + c.Port
}

// UsePostgres はPostgreSQLを永続化に使うかを返す
func (c *StoreConfig) UsePostgres() bool {
	return c.Driver == "postgres"
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

func getFloatEnv(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
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
