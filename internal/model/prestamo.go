package model

import (
	"time"

	"cobranza/internal/money"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Tipo de préstamo: "semanal" | "diario"
const (
	PrestamoSemanal = "semanal"
	PrestamoDiario  = "diario"
)

// Estado de préstamo: "activo" | "pagado" | "moroso" | "renovado" | "cancelado"
const (
	PrestamoActivo    = "activo"
	PrestamoPagado    = "pagado"
	PrestamoMoroso    = "moroso"
	PrestamoRenovado  = "renovado"
	PrestamoCancelado = "cancelado"
)

// Estado de recuperación: "pendiente" | "parcial" | "completo" | "moroso"
const (
	RecuperacionPendiente = "pendiente"
	RecuperacionParcial   = "parcial"
	RecuperacionCompleta  = "completo"
	RecuperacionMorosa    = "moroso"
)

// Prestamo is a loan disbursed from a money assignment.
type Prestamo struct {
	ID                 uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	NumeroContrato     string          `gorm:"type:varchar(20);uniqueIndex;not null"`
	ClienteID          uuid.UUID       `gorm:"type:uuid;not null;index"`
	TrabajadorID       uuid.UUID       `gorm:"type:uuid;not null;index"`
	AsignacionID       uuid.UUID       `gorm:"type:uuid;not null;index"`
	PrestamoAnteriorID *uuid.UUID      `gorm:"type:uuid"`
	TipoPrestamo       string          `gorm:"type:varchar(10);not null"`
	Monto              decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	TasaInteres        decimal.Decimal `gorm:"type:decimal(5,4);not null"`
	Plazo              int             `gorm:"not null"`
	MontoPorPeriodo    decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	MontoTotal         decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	FechaIngreso       time.Time       `gorm:"not null"`
	FechaTermino       time.Time       `gorm:"not null"`
	Estado             string          `gorm:"type:varchar(20);not null;default:'activo'"`
	// PagoMinimoRenovacion is the installment number from which renewal is allowed.
	PagoMinimoRenovacion   int             `gorm:"not null"`
	PuedeRenovar           bool            `gorm:"not null;default:false"`
	IncrementoLineaCredito decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	// Recovery statistics, recomputed by the recuperacion worker
	PagosCompletos     int             `gorm:"not null;default:0"`
	PagosParciales     int             `gorm:"not null;default:0"`
	MontoAbonado       decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	EstadoRecuperacion string          `gorm:"type:varchar(20);not null;default:'pendiente'"`
	CreadoPor          uuid.UUID       `gorm:"type:uuid;not null"`
	CreatedAt          time.Time
	UpdatedAt          time.Time

	Pagos []Pago `gorm:"foreignKey:PrestamoID"`
}

func (Prestamo) TableName() string { return "prestamos" }

// Cerrado reports whether the loan no longer changes status on recovery updates.
func (p *Prestamo) Cerrado() bool {
	return p.Estado == PrestamoRenovado || p.Estado == PrestamoCancelado
}

// DiasEntrePagos is the distance in days between two consecutive due dates.
func DiasEntrePagos(tipo string) int {
	if tipo == PrestamoDiario {
		return 1
	}
	return 7
}

// CuotaPorPeriodo returns round2(monto × (1+tasa) / plazo).
func CuotaPorPeriodo(monto, tasa decimal.Decimal, plazo int) decimal.Decimal {
	total := monto.Mul(decimal.NewFromInt(1).Add(tasa))
	return money.R2(total.Div(decimal.NewFromInt(int64(plazo))))
}

// GenerarCalendario builds the installment schedule; due dates step from
// FechaIngreso by one period per installment.
func (p *Prestamo) GenerarCalendario() []Pago {
	dias := DiasEntrePagos(p.TipoPrestamo)
	pagos := make([]Pago, 0, p.Plazo)
	for i := 1; i <= p.Plazo; i++ {
		pago := Pago{
			PrestamoID:       p.ID,
			NumeroPago:       i,
			TipoPago:         p.TipoPrestamo,
			Monto:            p.MontoPorPeriodo,
			FechaVencimiento: p.FechaIngreso.AddDate(0, 0, dias*i),
		}
		pago.Recalcular(p.FechaIngreso)
		pagos = append(pagos, pago)
	}
	return pagos
}

// ActualizarRecuperacion recomputes recovery statistics from the schedule and
// moves an open loan between activo, moroso and pagado.
func (p *Prestamo) ActualizarRecuperacion(pagos []Pago, ahora time.Time) {
	hoy := DiaDe(ahora)
	completos, parciales, vencidos := 0, 0, 0
	abonado := decimal.Zero
	for i := range pagos {
		pg := &pagos[i]
		abonado = abonado.Add(pg.MontoAbonado)
		switch pg.Estado {
		case PagoCompleto:
			completos++
			continue
		case PagoParcial:
			parciales++
		}
		if pg.FechaVencimiento.Before(hoy) {
			vencidos++
		}
	}

	p.PagosCompletos = completos
	p.PagosParciales = parciales
	p.MontoAbonado = money.R2(abonado)

	switch {
	case len(pagos) > 0 && completos == len(pagos):
		p.EstadoRecuperacion = RecuperacionCompleta
	case vencidos > 0:
		p.EstadoRecuperacion = RecuperacionMorosa
	case completos+parciales > 0:
		p.EstadoRecuperacion = RecuperacionParcial
	default:
		p.EstadoRecuperacion = RecuperacionPendiente
	}

	if p.Cerrado() {
		return
	}
	switch p.EstadoRecuperacion {
	case RecuperacionCompleta:
		p.Estado = PrestamoPagado
	case RecuperacionMorosa:
		p.Estado = PrestamoMoroso
	default:
		p.Estado = PrestamoActivo
	}
}
