package shared

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	AppEnv       string
	HTTPAddr     string
	MetricsAddr  string
	Ledger       string // memory | mysql
	MySQLDSN     string
	RedisAddr    string
	RedisDB      int
	RedisPass    string
	CacheTTL     time.Duration
	RateLimitRPS int
	SeedFile     string
	SeedWorkers  int
}

func Load() Config {
	atoi := func(k string, def int) int {
		if v := os.Getenv(k); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				return n
			}
		}
		return def
	}
	return Config{
		AppEnv:       env("APP_ENV", "prod"),
		HTTPAddr:     env("HTTP_ADDR", ":8080"),
		MetricsAddr:  env("METRICS_ADDR", ":9100"),
		Ledger:       env("LEDGER_BACKEND", "mysql"),
		MySQLDSN:     env("MYSQL_DSN", "root:root@tcp(localhost:3306)/booking?parseTime=true&charset=utf8mb4,utf8&loc=UTC"),
		RedisAddr:    env("REDIS_ADDR", "localhost:6379"),
		RedisDB:      atoi("REDIS_DB", 0),
		RedisPass:    env("REDIS_PASSWORD", ""),
		CacheTTL:     time.Duration(atoi("CACHE_TTL_SECONDS", 30)) * time.Second,
		RateLimitRPS: atoi("RATE_LIMIT_RPS", 0),
		SeedFile:     env("SEED_FILE", "seed/bookings.json"),
		SeedWorkers:  atoi("SEED_WORKERS", 8),
	}
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
