package worker

// recuperacion_worker.go
// Recomputes a loan's recovery statistics (complete/partial installments,
// amount collected) and moves it between activo, moroso and pagado.

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"cobranza/internal/model"
	"cobranza/internal/repository"
	"cobranza/internal/service"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// RecuperacionPayload is the job envelope sent to QueueRecuperacion.
type RecuperacionPayload struct {
	PrestamoID string `json:"prestamo_id"`
}

type RecuperacionWorker struct {
	prestamos repository.PrestamoRepository
	reloj     service.Reloj
}

func NewRecuperacionWorker(prestamos repository.PrestamoRepository, reloj service.Reloj) *RecuperacionWorker {
	return &RecuperacionWorker{prestamos: prestamos, reloj: reloj}
}

func (w *RecuperacionWorker) Process(ctx context.Context, raw json.RawMessage) error {
	var payload RecuperacionPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return fmt.Errorf("%w: %v", errJobInvalido, err)
	}
	id, err := uuid.Parse(payload.PrestamoID)
	if err != nil {
		return fmt.Errorf("%w: prestamo_id %q", errJobInvalido, payload.PrestamoID)
	}
	return w.Recalcular(ctx, id)
}

// Recalcular locks the loan row, reads its schedule and writes back the
// recovery statistics in the same transaction, so a job never overwrites
// the result of a later abono. Renewed and cancelled loans keep their status.
func (w *RecuperacionWorker) Recalcular(ctx context.Context, prestamoID uuid.UUID) error {
	var p *model.Prestamo
	var anterior string
	err := enTx(ctx, w.prestamos.DB(), func(tx *gorm.DB) error {
		var err error
		p, err = w.prestamos.FindByIDForUpdate(ctx, tx, prestamoID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: préstamo %s no existe", errJobInvalido, prestamoID)
		}
		if err != nil {
			return fmt.Errorf("buscar préstamo %s: %w", prestamoID, err)
		}
		anterior = p.Estado
		p.ActualizarRecuperacion(p.Pagos, w.reloj.Ahora())
		if err := w.prestamos.UpdateRecuperacion(ctx, tx, p); err != nil {
			return fmt.Errorf("actualizar recuperación %s: %w", prestamoID, err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	ev := log.Debug()
	if p.Estado != anterior {
		ev = log.Info()
	}
	ev.Str("prestamo_id", prestamoID.String()).Str("estado", p.Estado).
		Str("recuperacion", p.EstadoRecuperacion).Int("completos", p.PagosCompletos).
		Msg("recuperación recalculada")
	return nil
}

// enTx runs fn inside a transaction on db. A nil db (unit tests) runs fn
// with a nil tx.
func enTx(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	if db == nil {
		return fn(nil)
	}
	return db.WithContext(ctx).Transaction(fn)
}
