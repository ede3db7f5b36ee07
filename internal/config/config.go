package config

import (
	"os"
	"strconv"
	"time"

	commoncfg "banmaytinh/common/config"

	"github.com/joho/godotenv"
)

// Config banmaytinh（HTTP API）配置
type Config struct {
	HTTP struct {
		Addr string
	}
	DBEnabled    bool
	Database     commoncfg.DatabaseConfig
	RedisEnabled bool
	Redis        commoncfg.RedisConfig
	Log          struct {
		Level  string
		Format string
	}
	Session SessionConfig
	Advisor AdvisorConfig
	Order   OrderConfig
	Seed    SeedConfig
}

// SessionConfig 登录会话与登录限流
type SessionConfig struct {
	TTL                time.Duration
	LoginRatePerSecond int
	LoginRateBurst     int
}

// AdvisorConfig 选购顾问（话题目录缓存）
type AdvisorConfig struct {
	TopicCacheTTL time.Duration
}

// OrderConfig 订单通知
type OrderConfig struct {
	WebhookURL string // 为空时不推送
}

// SeedConfig 开发环境初始管理员
type SeedConfig struct {
	Enabled       bool
	AdminName     string
	AdminEmail    string
	AdminPassword string
}

// Usable 已开启且设置了 ADMIN_PASSWORD
func (s SeedConfig) Usable() bool {
	return s.Enabled && s.AdminPassword != ""
}

// Load 读取环境变量；若当前目录存在 .env 先加载（已设置的环境变量优先）
func Load() *Config {
	_ = godotenv.Load()

	cfg := &Config{}
	cfg.HTTP.Addr = getEnv("HTTP_ADDR", ":8080")

	// DB 不可用时回退到内存 repo
	cfg.DBEnabled = getEnv("DB_ENABLED", "true") == "true"
	cfg.Database = commoncfg.DatabaseConfig{
		Host:     "localhost",
		Port:     5432,
		User:     "postgres",
		Password: "postgres",
		Database: "banmaytinh",
		SSLMode:  "disable",
		MaxConns: 20,
		MaxIdle:  5,
	}
	cfg.Database.LoadFromEnv("DB")

	cfg.RedisEnabled = getEnv("REDIS_ENABLED", "true") == "true"
	cfg.Redis = commoncfg.RedisConfig{Addr: "localhost:6379"}
	cfg.Redis.LoadFromEnv("REDIS")

	cfg.Log.Level = getEnv("LOG_LEVEL", "info")
	cfg.Log.Format = getEnv("LOG_FORMAT", "json")

	cfg.Session.TTL = time.Duration(parseInt(getEnv("SESSION_TTL_HOURS", "72"), 72)) * time.Hour
	cfg.Session.LoginRatePerSecond = parseInt(getEnv("LOGIN_RATE_PER_SECOND", "1"), 1)
	cfg.Session.LoginRateBurst = parseInt(getEnv("LOGIN_RATE_BURST", "5"), 5)

	cfg.Advisor.TopicCacheTTL = time.Duration(parseInt(getEnv("TOPIC_CACHE_TTL_SECONDS", "300"), 300)) * time.Second

	cfg.Order.WebhookURL = getEnv("ORDER_WEBHOOK_URL", "")

	// 仅开发环境显式开启；密码未设置时不创建管理员
	cfg.Seed.Enabled = getEnv("SEED_ADMIN", "false") == "true"
	cfg.Seed.AdminName = getEnv("ADMIN_NAME", "admin")
	cfg.Seed.AdminEmail = getEnv("ADMIN_EMAIL", "admin@banmaytinh.local")
	cfg.Seed.AdminPassword = os.Getenv("ADMIN_PASSWORD")

	return cfg
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func parseInt(s string, def int) int {
	i, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return i
}
