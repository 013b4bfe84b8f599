package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ─── Request DTOs ────────────────────────────────────────────────────────────

type AbrirCajaRequest struct {
	Mes          int             `json:"mes"           validate:"required,min=1,max=12"`
	Anio         int             `json:"anio"          validate:"required,min=2000"`
	MontoInicial decimal.Decimal `json:"monto_inicial" validate:"min=0"`
}

// MovimientoRequest is a manual posting. Asignacion and devolucion movements
// are only posted by the assignment flow.
type MovimientoRequest struct {
	Tipo         string          `json:"tipo"          validate:"required,oneof=ingreso egreso ajuste"`
	Monto        decimal.Decimal `json:"monto"         validate:"required"`
	Descripcion  string          `json:"descripcion"   validate:"required,min=3"`
	TrabajadorID *uuid.UUID      `json:"trabajador_id"`
}

// FiltroMovimientos is built from the query string of GET /v1/cajas/:id/movimientos.
type FiltroMovimientos struct {
	Tipo         string
	TrabajadorID *uuid.UUID
	Desde        *time.Time
	Hasta        *time.Time // exclusive
	Page         int
	Limit        int // 0 = no limit
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type CajaResponse struct {
	ID                  string           `json:"id"`
	Mes                 int              `json:"mes"`
	Anio                int              `json:"anio"`
	Estado              string           `json:"estado"`
	MontoInicial        decimal.Decimal  `json:"monto_inicial"`
	MontoActual         decimal.Decimal  `json:"monto_actual"`
	MontoAsignado       decimal.Decimal  `json:"monto_asignado"`
	MontoRecaudado      decimal.Decimal  `json:"monto_recaudado"`
	MontoPrestado       decimal.Decimal  `json:"monto_prestado"`
	MontoDevuelto       decimal.Decimal  `json:"monto_devuelto"`
	EnLaCalle           decimal.Decimal  `json:"en_la_calle"`
	TotalIngresos       decimal.Decimal  `json:"total_ingresos"`
	TotalEgresos        decimal.Decimal  `json:"total_egresos"`
	Ganancia            decimal.Decimal  `json:"ganancia"`
	PorcentajeGanancia  decimal.Decimal  `json:"porcentaje_ganancia"`
	PrestamosRealizados int              `json:"prestamos_realizados"`
	GananciaBruta       *decimal.Decimal `json:"ganancia_bruta,omitempty"`
	GananciaNeta        *decimal.Decimal `json:"ganancia_neta,omitempty"`
	CerradoPor          *string          `json:"cerrado_por,omitempty"`
	FechaCierre         *time.Time       `json:"fecha_cierre,omitempty"`
	CreatedAt           time.Time        `json:"created_at"`
}

type MovimientoResponse struct {
	ID              string          `json:"id"`
	CajaID          string          `json:"caja_id"`
	Secuencia       int64           `json:"secuencia"`
	Tipo            string          `json:"tipo"`
	Monto           decimal.Decimal `json:"monto"`
	Descripcion     string          `json:"descripcion"`
	BalanceAnterior decimal.Decimal `json:"balance_anterior"`
	BalanceNuevo    decimal.Decimal `json:"balance_nuevo"`
	Responsable     string          `json:"responsable"`
	TrabajadorID    *string         `json:"trabajador_id,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
}

type MovimientosPage struct {
	Data  []MovimientoResponse `json:"data"`
	Total int64                `json:"total"`
	Page  int                  `json:"page"`
	Limit int                  `json:"limit"`
}

type CierreCajaResponse struct {
	Caja          CajaResponse    `json:"caja"`
	GananciaBruta decimal.Decimal `json:"ganancia_bruta"`
	GananciaNeta  decimal.Decimal `json:"ganancia_neta"`
	CerradoPor    string          `json:"cerrado_por"`
	FechaCierre   time.Time       `json:"fecha_cierre"`
}

type ResumenDiaResponse struct {
	CajaID       string          `json:"caja_id"`
	Fecha        string          `json:"fecha"` // YYYY-MM-DD
	Ingresos     decimal.Decimal `json:"ingresos"`
	Egresos      decimal.Decimal `json:"egresos"`
	Asignaciones decimal.Decimal `json:"asignaciones"`
	Devoluciones decimal.Decimal `json:"devoluciones"`
	Ajustes      decimal.Decimal `json:"ajustes"`
	Neto         decimal.Decimal `json:"neto"`
	Movimientos  int             `json:"movimientos"`
}

type AuditoriaResponse struct {
	CajaID          string          `json:"caja_id"`
	MontoRegistrado decimal.Decimal `json:"monto_registrado"`
	MontoReplay     decimal.Decimal `json:"monto_replay"`
	Diferencia      decimal.Decimal `json:"diferencia"`
	Movimientos     int             `json:"movimientos"`
	Consistente     bool            `json:"consistente"`
	Estado          string          `json:"estado"`
}
