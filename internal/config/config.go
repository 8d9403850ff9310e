// File: internal/config/config.go
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config 啟動時一次載入的服務設定，載入後不再變動
type Config struct {
	DatabaseURL   string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	JWTSecret     string
	TokenTTL      time.Duration
	Port          string
	UploadDir     string
	WorkerCount   int
	Env           string
}

// IsProduction 回報是否為正式環境
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// Load 從環境變數讀取設定，必要值缺漏時回傳錯誤
func Load() (*Config, error) {
	cfg := &Config{
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		JWTSecret:     os.Getenv("JWT_SECRET"),
		TokenTTL:      time.Hour,
		Port:          getString("PORT", "8080"),
		UploadDir:     getString("UPLOAD_DIR", "uploads"),
		Env:           getString("APP_ENV", "development"),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("環境變數 DATABASE_URL 未設定")
	}
	if cfg.RedisAddr == "" {
		return nil, fmt.Errorf("環境變數 REDIS_ADDR 未設定")
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("環境變數 JWT_SECRET 未設定")
	}

	redisDBStr := os.Getenv("REDIS_DB")
	if redisDBStr == "" {
		return nil, fmt.Errorf("環境變數 REDIS_DB 未設定")
	}
	redisIndex, err := strconv.Atoi(redisDBStr)
	if err != nil {
		return nil, fmt.Errorf("無效的 REDIS_DB: %v", err)
	}
	cfg.RedisDB = redisIndex

	cfg.WorkerCount = 1
	if v := os.Getenv("WORKER_COUNT"); v != "" {
		c, err := strconv.Atoi(v)
		if err != nil || c <= 0 {
			return nil, fmt.Errorf("無效的 WORKER_COUNT: %v", err)
		}
		cfg.WorkerCount = c
	}

	return cfg, nil
}

func getString(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}
