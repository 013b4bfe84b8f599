package worker

// vencimientos_cron.go
// Background goroutine that periodically walks the open loans with overdue
// installments and recomputes their recovery status. A loan whose last
// payment was days ago only turns moroso through this sweep.

import (
	"context"
	"time"

	"cobranza/internal/infra"
	"cobranza/internal/model"
	"cobranza/internal/repository"
	"cobranza/internal/service"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

const JobBarridoVencimientos = "barrido_vencimientos"

// VencimientosCronConfig holds all dependencies for the sweep goroutine.
type VencimientosCronConfig struct {
	Prestamos    repository.PrestamoRepository
	Worker       *RecuperacionWorker
	Reloj        service.Reloj
	Intervalo    time.Duration
	Lote         int
	Concurrencia int
	Metrics      *infra.Metrics
}

// StartVencimientosCron runs one sweep immediately and then one per
// Intervalo until ctx is cancelled.
func StartVencimientosCron(ctx context.Context, cfg VencimientosCronConfig) {
	if cfg.Intervalo <= 0 {
		cfg.Intervalo = 15 * time.Minute
	}
	if cfg.Lote <= 0 {
		cfg.Lote = 200
	}
	if cfg.Concurrencia <= 0 {
		cfg.Concurrencia = 4
	}
	go func() {
		ticker := time.NewTicker(cfg.Intervalo)
		defer ticker.Stop()

		log.Info().Dur("intervalo", cfg.Intervalo).Msg("vencimientos_cron: started")
		barrerVencidos(ctx, cfg)

		for {
			select {
			case <-ctx.Done():
				log.Info().Msg("vencimientos_cron: shutting down")
				return
			case <-ticker.C:
				barrerVencidos(ctx, cfg)
			}
		}
	}()
}

// barrerVencidos pages through every loan with an overdue installment.
// A failure on one loan is logged and does not stop the sweep.
func barrerVencidos(ctx context.Context, cfg VencimientosCronConfig) (procesados, fallidos int) {
	hoy := model.DiaDe(cfg.Reloj.Ahora())
	cursor := uuid.Nil
	for {
		ids, err := cfg.Prestamos.ListIDsConVencidos(ctx, hoy, cursor, cfg.Lote)
		if err != nil {
			log.Error().Err(err).Msg("vencimientos_cron: failed to list overdue loans")
			cfg.Metrics.Job(JobBarridoVencimientos, err)
			return procesados, fallidos
		}
		if len(ids) == 0 {
			break
		}

		errs := make([]error, len(ids))
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(cfg.Concurrencia)
		for i, id := range ids {
			i, id := i, id
			g.Go(func() error {
				errs[i] = cfg.Worker.Recalcular(gctx, id)
				return nil
			})
		}
		_ = g.Wait()

		for i, err := range errs {
			procesados++
			if err != nil {
				fallidos++
				log.Warn().Err(err).Str("prestamo_id", ids[i].String()).Msg("vencimientos_cron: recalculo fallido")
			}
		}
		if len(ids) < cfg.Lote || ctx.Err() != nil {
			break
		}
		cursor = ids[len(ids)-1]
	}

	cfg.Metrics.Job(JobBarridoVencimientos, nil)
	if procesados > 0 {
		log.Info().Int("procesados", procesados).Int("fallidos", fallidos).Msg("vencimientos_cron: sweep done")
	}
	return procesados, fallidos
}
