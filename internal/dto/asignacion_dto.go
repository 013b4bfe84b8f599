package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ─── Request DTOs ────────────────────────────────────────────────────────────

type AsignarRequest struct {
	TrabajadorID uuid.UUID       `json:"trabajador_id" validate:"required"`
	CajaID       uuid.UUID       `json:"caja_id"       validate:"required"`
	Monto        decimal.Decimal `json:"monto"         validate:"required,gt=0"`
	Notas        string          `json:"notas"`
}

type ReconciliarRequest struct {
	MontoDevuelto decimal.Decimal `json:"monto_devuelto" validate:"min=0"`
	Observaciones string          `json:"observaciones"`
}

type CancelarAsignacionRequest struct {
	Motivo string `json:"motivo" validate:"required,min=3"`
}

// FiltroAsignaciones narrows GET /v1/trabajadores/:id/asignaciones.
// Desde and Hasta are inclusive days.
type FiltroAsignaciones struct {
	Estado string
	Desde  *time.Time
	Hasta  *time.Time
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type PrestamoAsignadoResponse struct {
	Secuencia    int             `json:"secuencia"`
	PrestamoID   string          `json:"prestamo_id"`
	Monto        decimal.Decimal `json:"monto"`
	TipoPrestamo string          `json:"tipo_prestamo"`
	Fecha        time.Time       `json:"fecha"`
}

type CobroAsignadoResponse struct {
	Secuencia int             `json:"secuencia"`
	PagoID    string          `json:"pago_id"`
	ClienteID string          `json:"cliente_id"`
	Monto     decimal.Decimal `json:"monto"`
	Fecha     time.Time       `json:"fecha"`
}

type ReporteDevolucionResponse struct {
	Fecha         time.Time       `json:"fecha"`
	MontoEsperado decimal.Decimal `json:"monto_esperado"`
	MontoReal     decimal.Decimal `json:"monto_real"`
	Diferencia    decimal.Decimal `json:"diferencia"`
	Observaciones string          `json:"observaciones"`
	AprobadoPor   string          `json:"aprobado_por"`
}

type AsignacionResponse struct {
	ID             string                     `json:"id"`
	CajaID         string                     `json:"caja_id"`
	TrabajadorID   string                     `json:"trabajador_id"`
	Fecha          string                     `json:"fecha"` // YYYY-MM-DD
	Estado         string                     `json:"estado"`
	MontoAsignado  decimal.Decimal            `json:"monto_asignado"`
	MontoUtilizado decimal.Decimal            `json:"monto_utilizado"`
	MontoRecaudado decimal.Decimal            `json:"monto_recaudado"`
	MontoDevuelto  decimal.Decimal            `json:"monto_devuelto"`
	Disponible     decimal.Decimal            `json:"disponible"`
	Esperado       decimal.Decimal            `json:"esperado"`
	Notas          string                     `json:"notas,omitempty"`
	Prestamos      []PrestamoAsignadoResponse `json:"prestamos"`
	Cobros         []CobroAsignadoResponse    `json:"cobros"`
	Devolucion     *ReporteDevolucionResponse `json:"devolucion,omitempty"`
}

type BalanceAsignacionResponse struct {
	AsignacionID          string          `json:"asignacion_id"`
	Estado                string          `json:"estado"`
	MontoAsignado         decimal.Decimal `json:"monto_asignado"`
	MontoUtilizado        decimal.Decimal `json:"monto_utilizado"`
	MontoRecaudado        decimal.Decimal `json:"monto_recaudado"`
	Disponible            decimal.Decimal `json:"disponible"`
	Esperado              decimal.Decimal `json:"esperado"`
	PorcentajeUtilizacion decimal.Decimal `json:"porcentaje_utilizacion"`
	Rendimiento           decimal.Decimal `json:"rendimiento"`
	Prestamos             int             `json:"prestamos"`
	Cobros                int             `json:"cobros"`
}

type AsignacionesDiaResponse struct {
	Fecha          string               `json:"fecha"`
	Data           []AsignacionResponse `json:"data"`
	TotalAsignado  decimal.Decimal      `json:"total_asignado"`
	TotalUtilizado decimal.Decimal      `json:"total_utilizado"`
	TotalRecaudado decimal.Decimal      `json:"total_recaudado"`
	TotalDevuelto  decimal.Decimal      `json:"total_devuelto"`
}

type ConciliacionResponse struct {
	Asignacion    AsignacionResponse `json:"asignacion"`
	MontoEsperado decimal.Decimal    `json:"monto_esperado"`
	MontoDevuelto decimal.Decimal    `json:"monto_devuelto"`
	Diferencia    decimal.Decimal    `json:"diferencia"`
}

type AsignacionesTrabajadorResponse struct {
	TrabajadorID   string               `json:"trabajador_id"`
	Data           []AsignacionResponse `json:"data"`
	Total          int                  `json:"total"`
	TotalAsignado  decimal.Decimal      `json:"total_asignado"`
	TotalUtilizado decimal.Decimal      `json:"total_utilizado"`
	TotalRecaudado decimal.Decimal      `json:"total_recaudado"`
}

// ProductividadDiaResponse aggregates one working day of a trabajador.
type ProductividadDiaResponse struct {
	Fecha             string          `json:"fecha"` // YYYY-MM-DD
	MontoAsignado     decimal.Decimal `json:"monto_asignado"`
	Prestamos         int             `json:"prestamos"`
	MontoPrestado     decimal.Decimal `json:"monto_prestado"`
	Cobros            int             `json:"cobros"`
	MontoRecaudado    decimal.Decimal `json:"monto_recaudado"`
	ClientesAtendidos int             `json:"clientes_atendidos"`
	Diferencia        decimal.Decimal `json:"diferencia"`
}

type ProductividadResponse struct {
	TrabajadorID              string                     `json:"trabajador_id"`
	Desde                     string                     `json:"desde"`
	Hasta                     string                     `json:"hasta"`
	DiasTrabajados            int                        `json:"dias_trabajados"`
	TotalPrestamos            int                        `json:"total_prestamos"`
	MontoPrestado             decimal.Decimal            `json:"monto_prestado"`
	TotalCobros               int                        `json:"total_cobros"`
	MontoRecaudado            decimal.Decimal            `json:"monto_recaudado"`
	ClientesAtendidos         int                        `json:"clientes_atendidos"`
	Diferencia                decimal.Decimal            `json:"diferencia"`
	PromedioCobrosDiario      decimal.Decimal            `json:"promedio_cobros_diario"`
	PromedioRecaudacionDiaria decimal.Decimal            `json:"promedio_recaudacion_diaria"`
	Dias                      []ProductividadDiaResponse `json:"dias"`
}
