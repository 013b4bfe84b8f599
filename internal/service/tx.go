package service

import (
	"context"
	"errors"
	"math/rand"
	"time"

	"cobranza/internal/infra"
	"cobranza/internal/repository"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// runTx runs fn inside a transaction. With a nil db (unit tests with
// in-memory repositories) fn runs directly with a nil tx.
func runTx(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	if db == nil {
		return fn(nil)
	}
	return db.WithContext(ctx).Transaction(fn)
}

// Reintentos bounds the retries of an operation that lost a compare-and-swap.
type Reintentos struct {
	MaxIntentos   int
	EsperaInicial time.Duration
}

// conReintentos runs fn and runs it again, with exponential backoff and
// jitter, while it fails with repository.ErrConflictoVersion. Any other
// error is returned as is. When the attempts run out the caller gets a
// *ConflictoError.
func conReintentos(ctx context.Context, cfg Reintentos, m *infra.Metrics, recurso string, fn func() error) error {
	intentos := cfg.MaxIntentos
	if intentos < 1 {
		intentos = 1
	}
	for intento := 1; ; intento++ {
		err := fn()
		if err == nil || !errors.Is(err, repository.ErrConflictoVersion) {
			return err
		}
		m.Conflicto(recurso)
		if intento >= intentos {
			log.Warn().Str("recurso", recurso).Int("intentos", intento).Msg("conflicto de concurrencia persistente")
			return &ConflictoError{Recurso: recurso, Intentos: intento}
		}

		espera := cfg.EsperaInicial << (intento - 1)
		if espera > 0 {
			espera += time.Duration(rand.Int63n(int64(espera/2) + 1))
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(espera):
		}
	}
}
