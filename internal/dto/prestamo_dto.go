package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ─── Request DTOs ────────────────────────────────────────────────────────────

// CrearPrestamoRequest: Plazo 0 selects the default term for the type.
type CrearPrestamoRequest struct {
	ClienteID    uuid.UUID       `json:"cliente_id"    validate:"required"`
	AsignacionID uuid.UUID       `json:"asignacion_id" validate:"required"`
	Monto        decimal.Decimal `json:"monto"         validate:"required,gt=0"`
	TipoPrestamo string          `json:"tipo_prestamo" validate:"required,oneof=semanal diario"`
	Plazo        int             `json:"plazo"         validate:"min=0"`
}

// RenovarPrestamoRequest: Monto zero reuses the previous principal; both are
// capped at the client's credit line.
type RenovarPrestamoRequest struct {
	AsignacionID uuid.UUID       `json:"asignacion_id" validate:"required"`
	Monto        decimal.Decimal `json:"monto"         validate:"min=0"`
	Plazo        int             `json:"plazo"         validate:"min=0"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type PrestamoResponse struct {
	ID                   string          `json:"id"`
	NumeroContrato       string          `json:"numero_contrato"`
	ClienteID            string          `json:"cliente_id"`
	TrabajadorID         string          `json:"trabajador_id"`
	AsignacionID         string          `json:"asignacion_id"`
	PrestamoAnteriorID   *string         `json:"prestamo_anterior_id,omitempty"`
	TipoPrestamo         string          `json:"tipo_prestamo"`
	Monto                decimal.Decimal `json:"monto"`
	TasaInteres          decimal.Decimal `json:"tasa_interes"`
	Plazo                int             `json:"plazo"`
	MontoPorPeriodo      decimal.Decimal `json:"monto_por_periodo"`
	MontoTotal           decimal.Decimal `json:"monto_total"`
	FechaIngreso         time.Time       `json:"fecha_ingreso"`
	FechaTermino         time.Time       `json:"fecha_termino"`
	Estado               string          `json:"estado"`
	PuedeRenovar         bool            `json:"puede_renovar"`
	PagoMinimoRenovacion int             `json:"pago_minimo_renovacion"`
	PagosCompletos       int             `json:"pagos_completos"`
	PagosParciales       int             `json:"pagos_parciales"`
	MontoAbonado         decimal.Decimal `json:"monto_abonado"`
	EstadoRecuperacion   string          `json:"estado_recuperacion"`
	Pagos                []PagoResponse  `json:"pagos,omitempty"`
}

type RenovableResponse struct {
	PrestamoID           string `json:"prestamo_id"`
	PuedeRenovar         bool   `json:"puede_renovar"`
	PagosCompletos       int    `json:"pagos_completos"`
	PagoMinimoRenovacion int    `json:"pago_minimo_renovacion"`
}
