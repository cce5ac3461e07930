package shared

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

type Config struct {
	AppEnv      string
	HTTPAddr    string
	MetricsAddr string
	MySQLDSN    string
	RedisAddr   string
	RedisDB     int
	RedisPass   string
	JWTSecret   string
	AMQPURL     string
	WebhookURL  string
	WebhookKey  string
	WebhookRPS  int
	CacheTTLSec int
	RateRPS     float64
	RateBurst   int
	SeedFile    string
	SeedWorkers int
}

func Load() Config {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	atoi := func(k string, def int) int {
		if v := os.Getenv(k); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				return n
			}
		}
		return def
	}
	atof := func(k string, def float64) float64 {
		if v := os.Getenv(k); v != "" {
			if f, err := strconv.ParseFloat(v, 64); err == nil {
				return f
			}
		}
		return def
	}
	c := Config{
		AppEnv:      env("APP_ENV", "prod"),
		HTTPAddr:    env("HTTP_ADDR", ":8080"),
		MetricsAddr: env("METRICS_ADDR", ":9100"),
		MySQLDSN:    env("MYSQL_DSN", "root:root@tcp(localhost:3306)/quickstay?parseTime=true&charset=utf8mb4,utf8&loc=UTC"),
		RedisAddr:   env("REDIS_ADDR", "localhost:6379"),
		RedisDB:     atoi("REDIS_DB", 0),
		RedisPass:   env("REDIS_PASSWORD", ""),
		JWTSecret:   env("JWT_SECRET", ""),
		AMQPURL:     env("AMQP_URL", ""),
		WebhookURL:  env("WEBHOOK_URL", ""),
		WebhookKey:  env("WEBHOOK_API_KEY", ""),
		WebhookRPS:  atoi("WEBHOOK_RPS", 5),
		CacheTTLSec: atoi("CACHE_TTL_SECONDS", 900),
		RateRPS:     atof("RATE_LIMIT_RPS", 10),
		RateBurst:   atoi("RATE_LIMIT_BURST", 20),
		SeedFile:    env("SEED_FILE", "seed/hotels.json"),
		SeedWorkers: atoi("SEED_WORKERS", 8),
	}
	if c.JWTSecret == "" {
		log.Warn().Msg("JWT_SECRET is empty")
	}
	return c
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
