package model

import (
	"time"

	"cobranza/internal/money"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Estado de pago: "pendiente" | "parcial" | "completo"
const (
	PagoPendiente = "pendiente"
	PagoParcial   = "parcial"
	PagoCompleto  = "completo"
)

// Pago is one scheduled installment of a Prestamo.
// SaldoPendiente and Estado are derived from Monto and MontoAbonado by
// Recalcular and are never set on their own.
type Pago struct {
	ID               uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	PrestamoID       uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_pagos_prestamo_numero"`
	NumeroPago       int             `gorm:"not null;uniqueIndex:idx_pagos_prestamo_numero"`
	TipoPago         string          `gorm:"type:varchar(10);not null"`
	Monto            decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	MontoAbonado     decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	SaldoPendiente   decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Estado           string          `gorm:"type:varchar(20);not null;default:'pendiente'"`
	FechaVencimiento time.Time       `gorm:"not null;index"`
	FechaPago        *time.Time
	DiasMoratorio    int             `gorm:"not null;default:0"`
	MontoMoratorio   decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	TrabajadorCobro  *uuid.UUID      `gorm:"type:uuid"`
	Observaciones    string          `gorm:"not null;default:''"`
	CreatedAt        time.Time
	UpdatedAt        time.Time

	Historial []AbonoPago `gorm:"foreignKey:PagoID"`
}

func (Pago) TableName() string { return "pagos" }

// AbonoPago is one allocation applied to an installment.
type AbonoPago struct {
	ID             uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	PagoID         uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_pago_abonos_secuencia"`
	Secuencia      int             `gorm:"not null;uniqueIndex:idx_pago_abonos_secuencia"`
	Monto          decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	AbonoCapital   decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	AbonoMoratorio decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	TrabajadorID   uuid.UUID       `gorm:"type:uuid;not null"`
	Observaciones  string          `gorm:"not null;default:''"`
	Fecha          time.Time       `gorm:"not null"`
}

func (AbonoPago) TableName() string { return "pago_abonos" }

// EstadoPago derives outstanding balance and state from due and applied amounts.
func EstadoPago(monto, abonado decimal.Decimal) (saldo decimal.Decimal, estado string) {
	saldo = money.NoNegativo(money.R2(monto.Sub(abonado)))
	switch {
	case saldo.LessThanOrEqual(money.Tolerancia):
		return saldo, PagoCompleto
	case money.EsCero(abonado):
		return saldo, PagoPendiente
	default:
		return saldo, PagoParcial
	}
}

// Recalcular rounds the monetary fields and re-derives SaldoPendiente and
// Estado. FechaPago is stamped with ahora the first time the installment
// becomes complete.
func (p *Pago) Recalcular(ahora time.Time) {
	p.Monto = money.R2(p.Monto)
	p.MontoAbonado = money.R2(p.MontoAbonado)
	p.MontoMoratorio = money.R2(money.NoNegativo(p.MontoMoratorio))
	p.SaldoPendiente, p.Estado = EstadoPago(p.Monto, p.MontoAbonado)
	if p.Estado != PagoCompleto {
		p.FechaPago = nil
		return
	}
	if p.FechaPago == nil {
		t := ahora
		p.FechaPago = &t
	}
}

// Vencido reports whether the installment is unpaid past its due date.
func (p *Pago) Vencido(ahora time.Time) bool {
	return p.Estado != PagoCompleto && p.FechaVencimiento.Before(DiaDe(ahora))
}

// DiasVencido counts whole days since the due date, zero when not overdue.
func (p *Pago) DiasVencido(ahora time.Time) int {
	if !p.Vencido(ahora) {
		return 0
	}
	return int(DiaDe(ahora).Sub(DiaDe(p.FechaVencimiento)).Hours() / 24)
}
