package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/hongminglow/bank-be/internal/auth"
	"github.com/hongminglow/bank-be/internal/bootstrap"
	"github.com/hongminglow/bank-be/internal/config"
	"github.com/hongminglow/bank-be/internal/logging"
	"github.com/hongminglow/bank-be/internal/metrics"
	"github.com/hongminglow/bank-be/internal/rates"
	"github.com/hongminglow/bank-be/internal/server"
	"github.com/hongminglow/bank-be/internal/service"
	"github.com/hongminglow/bank-be/internal/storage/postgres"
)

const shutdownTimeout = 15 * time.Second

func main() {
	loadLocalEnv()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Load config")
	}
	if _, err := logging.Setup(cfg.LogLevel, cfg.LogOutput); err != nil {
		log.Fatal().Err(err).Msg("Setup logging")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := postgres.NewStore(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Init database")
	}
	defer store.Close()

	reg := metrics.New()
	users := service.NewUserService(store, auth.NewBcryptHasher(0))
	bills := service.NewBillService(store)
	currencies := service.NewCurrencyService(store)
	additionals := service.NewAdditionalService(store)
	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTTTL)

	refresher := rates.NewRefresher(currencies, rates.NewClient(cfg.Rates.APIURL, cfg.Rates.Timeout), reg)
	scheduler, err := rates.NewScheduler(cfg.Rates.Timezone)
	if err != nil {
		log.Fatal().Err(err).Msg("Init scheduler")
	}

	srv := server.New(cfg, server.Deps{
		Users:      users,
		Bills:      bills,
		Currencies: currencies,
		Tokens:     tokens,
		Metrics:    reg,
	})
	go func() {
		log.Info().Str("addr", cfg.HTTPAddress()).Msg("Bank backend listening")
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("HTTP server error")
		}
	}()

	seq := bootstrap.New(bootstrap.Deps{
		Users:       users,
		Bills:       bills,
		Currencies:  currencies,
		Additionals: additionals,
		Transactor:  store,
		Refresher:   refresher,
		Scheduler:   scheduler,
		Metrics:     reg,
	}, cfg.Admin, cfg.Rates.Schedule)
	if err := seq.Run(ctx); err != nil {
		log.Error().Err(err).Msg("Bootstrap failed")
		shutdown(srv, scheduler)
		store.Close()
		os.Exit(1)
	}

	scheduler.Start()
	log.Info().Times("next_runs", scheduler.Entries()).Msg("Scheduler started")
	srv.MarkReady()

	<-ctx.Done()
	log.Info().Msg("Shutting down")
	shutdown(srv, scheduler)
}

func shutdown(srv *server.Server, scheduler *rates.Scheduler) {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := scheduler.Stop(ctx); err != nil {
		log.Warn().Err(err).Msg("Scheduler did not stop cleanly")
	}
	if err := srv.Shutdown(ctx); err != nil {
		log.Warn().Err(err).Msg("Graceful shutdown error")
	}
}

func loadLocalEnv() {
	if err := godotenv.Load(); err != nil {
		log.Info().Msg("No .env file found; relying on existing environment")
	}
}
