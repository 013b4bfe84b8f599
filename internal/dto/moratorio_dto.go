package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ─── Request DTOs ────────────────────────────────────────────────────────────

// AplicarMoratorioRequest needs Porcentaje or Monto. An explicit Monto wins.
type AplicarMoratorioRequest struct {
	PagoID     uuid.UUID        `json:"pago_id"    validate:"required"`
	Dias       int              `json:"dias"       validate:"required,min=1"`
	Porcentaje *decimal.Decimal `json:"porcentaje"`
	Monto      *decimal.Decimal `json:"monto"`
	Motivo     string           `json:"motivo"`
}

type CondonarMoratorioRequest struct {
	Motivo string `json:"motivo" validate:"required,min=3"`
}

type AjustarMoratorioRequest struct {
	NuevoMonto decimal.Decimal `json:"nuevo_monto" validate:"min=0"`
	Direccion  string          `json:"direccion"   validate:"required,oneof=incrementado reducido"`
	Motivo     string          `json:"motivo"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type MoratorioResponse struct {
	ID            string          `json:"id"`
	PagoID        string          `json:"pago_id"`
	PrestamoID    string          `json:"prestamo_id"`
	ClienteID     string          `json:"cliente_id"`
	Dias          int             `json:"dias"`
	Porcentaje    decimal.Decimal `json:"porcentaje"`
	Monto         decimal.Decimal `json:"monto"`
	MontoOriginal decimal.Decimal `json:"monto_original"`
	MontoEfectivo decimal.Decimal `json:"monto_efectivo"`
	Activo        bool            `json:"activo"`
	Accion        string          `json:"accion"`
	AccionPor     *string         `json:"accion_por,omitempty"`
	AccionFecha   *time.Time      `json:"accion_fecha,omitempty"`
	Motivo        string          `json:"motivo,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
}

type EstadisticasMoratorioResponse struct {
	Total          int64           `json:"total"`
	Activos        int64           `json:"activos"`
	MontoActivo    decimal.Decimal `json:"monto_activo"`
	Condonados     int64           `json:"condonados"`
	MontoCondonado decimal.Decimal `json:"monto_condonado"`
}
