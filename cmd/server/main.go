package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cobranza/internal/config"
	"cobranza/internal/infra"
	"cobranza/internal/repository"
	"cobranza/internal/router"
	"cobranza/internal/service"
	"cobranza/internal/worker"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	// Structured logger: dev pretty, prod JSON
	if cfg.Env != "production" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	loc, err := cfg.Location()
	if err != nil {
		log.Fatal().Err(err).Str("tz", cfg.TZ).Msg("invalid timezone")
	}
	params, err := cfg.Parametros()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid business parameters")
	}
	reloj := service.RelojSistema{Loc: loc}

	if cfg.MigrateOnStart {
		if err := infra.RunMigrations(cfg.DatabaseURL); err != nil {
			log.Fatal().Err(err).Msg("failed to run migrations")
		}
	}

	db, err := infra.NewDatabase(cfg.DatabaseURL, infra.PoolConfig{
		MaxOpen:     cfg.DBMaxOpenConns,
		MaxIdle:     cfg.DBMaxIdleConns,
		MaxLifetime: cfg.DBConnLifetime,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}

	rdb, err := infra.NewRedis(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}
	defer rdb.Close()

	metrics := infra.NewMetrics()
	breaker := infra.NewCircuitBreaker(infra.DefaultCBConfig("redis-jobs"))
	dispatcher := worker.NewDispatcher(rdb, breaker)

	// Background jobs are wired here (composition root): the recovery
	// worker consumes the queue fed by allocations, and the sweep picks up
	// loans that fall overdue without any new payment.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	prestamoRepo := repository.NewPrestamoRepository(db)
	recuperacion := worker.NewRecuperacionWorker(prestamoRepo, reloj)

	worker.StartWorkerPool(ctx, rdb, worker.PoolConfig{
		Handlers:    map[string]worker.Handler{worker.JobRecuperacion: recuperacion},
		Workers:     cfg.WorkerPoolSize,
		MaxIntentos: cfg.MaxIntentosJob,
		Metrics:     metrics,
	})
	worker.StartVencimientosCron(ctx, worker.VencimientosCronConfig{
		Prestamos:    prestamoRepo,
		Worker:       recuperacion,
		Reloj:        reloj,
		Intervalo:    cfg.BarridoIntervalo,
		Lote:         cfg.BarridoLote,
		Concurrencia: cfg.BarridoConcurrencia,
		Metrics:      metrics,
	})

	r := router.New(ctx, router.Deps{
		Config:  cfg,
		DB:      db,
		RDB:     rdb,
		Breaker: breaker,
		Metrics: metrics,
		Reloj:   reloj,
		Params:  params,
		Jobs:    dispatcher,
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown on SIGINT / SIGTERM
	go func() {
		log.Info().Str("tz", loc.String()).Msgf("cobranza backend listening on :%d", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")
	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("forced shutdown")
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	log.Info().Msg("server exited")
}
