package main

import (
	"database/sql"
	"net/http"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"

	amqppub "quickstay/internal/adapters/amqp"
	server "quickstay/internal/adapters/http_server"
	"quickstay/internal/adapters/observability"
	redisad "quickstay/internal/adapters/redis"
	"quickstay/internal/adapters/webhook"
	"quickstay/internal/app"
	"quickstay/internal/domain"
	"quickstay/internal/shared"
	mysqlrepo "quickstay/internal/storage/mysql"
)

func main() {
	cfg := shared.Load()

	// set global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv)

	observability.Serve()

	// db
	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("sql.Open failed")
	}
	if err := db.Ping(); err != nil {
		log.Fatal().Err(err).Msg("db.Ping failed")
	}
	log.Info().Msg("database connection ok")

	// deps
	repo := mysqlrepo.New(db)
	cache := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)

	var fan app.Fanout
	if cfg.AMQPURL != "" {
		fan = append(fan, amqppub.New(cfg.AMQPURL))
	}
	if cfg.WebhookURL != "" {
		n, err := webhook.New(cfg.WebhookURL, cfg.WebhookKey, cfg.WebhookRPS)
		if err != nil {
			log.Fatal().Err(err).Msg("webhook notifier init failed")
		}
		fan = append(fan, n)
	}
	var events domain.EventPublisher
	if len(fan) > 0 {
		events = fan
	}

	bookings := app.NewBookingService(repo, repo, cache, events, cfg.CacheTTLSec)
	rooms := app.NewRoomService(repo, cache, cfg.CacheTTLSec)

	// http
	srv := server.New()
	reg := observability.InitRegistry()
	srv.Mount("/metrics", observability.MetricsHandler(reg))
	srv.MountHandlers(&server.Handlers{
		B:            bookings,
		R:            rooms,
		JWTSecret:    cfg.JWTSecret,
		BookingLimit: server.RateLimit(cfg.RateRPS, cfg.RateBurst),
	})

	log.Info().Str("addr", cfg.HTTPAddr).Msg("API listening")
	httpSrv := &http.Server{Addr: cfg.HTTPAddr, Handler: srv.Mux()}

	if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal().Err(err).Msg("http server failed")
	}
}
