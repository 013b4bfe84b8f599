package model

import (
	"fmt"
	"time"

	"cobranza/internal/money"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Estado de caja: "abierta" | "cerrada" | "auditoria"
const (
	CajaAbierta   = "abierta"
	CajaCerrada   = "cerrada"
	CajaAuditoria = "auditoria"
)

// Tipos de movimiento.
const (
	MovIngreso    = "ingreso"
	MovEgreso     = "egreso"
	MovAsignacion = "asignacion"
	MovDevolucion = "devolucion"
	MovAjuste     = "ajuste"
)

// Periodo identifies the calendar month a Caja belongs to.
type Periodo struct {
	Mes  int
	Anio int
}

// PeriodoDe returns the period containing t (in t's location).
func PeriodoDe(t time.Time) Periodo { return Periodo{Mes: int(t.Month()), Anio: t.Year()} }

func (p Periodo) Valido() bool { return p.Mes >= 1 && p.Mes <= 12 && p.Anio >= 2000 }

func (p Periodo) String() string { return fmt.Sprintf("%04d-%02d", p.Anio, p.Mes) }

// Caja is the monthly cash box. One per (mes, anio).
// MontoActual is only ever changed through Aplicar; the repository persists
// the result with a compare-and-swap on Version.
type Caja struct {
	ID                  uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Mes                 int             `gorm:"not null;uniqueIndex:idx_cajas_periodo"`
	Anio                int             `gorm:"not null;uniqueIndex:idx_cajas_periodo"`
	MontoInicial        decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	MontoActual         decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	MontoAsignado       decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	MontoRecaudado      decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	MontoDevuelto       decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	MontoPrestado       decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	TotalIngresos       decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	TotalEgresos        decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	PrestamosRealizados int             `gorm:"not null;default:0"`
	Estado              string          `gorm:"type:varchar(20);not null;default:'abierta'"`
	Version             int64           `gorm:"not null;default:0"`
	// Set on close
	GananciaBruta *decimal.Decimal `gorm:"type:decimal(12,2)"`
	GananciaNeta  *decimal.Decimal `gorm:"type:decimal(12,2)"`
	CreadoPor     uuid.UUID        `gorm:"type:uuid;not null"`
	CerradoPor    *uuid.UUID       `gorm:"type:uuid"`
	FechaCierre   *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time

	Movimientos []MovimientoCaja `gorm:"foreignKey:CajaID"`
}

func (Caja) TableName() string { return "cajas" }

func (c *Caja) Periodo() Periodo { return Periodo{Mes: c.Mes, Anio: c.Anio} }

// MovimientoCaja is an immutable entry of the cash box log.
// Monto is positive for every type except ajuste, which carries its sign.
type MovimientoCaja struct {
	ID              uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CajaID          uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_movimientos_caja_secuencia"`
	Secuencia       int64           `gorm:"not null;uniqueIndex:idx_movimientos_caja_secuencia"`
	Tipo            string          `gorm:"type:varchar(20);not null"`
	Monto           decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Descripcion     string          `gorm:"not null;default:''"`
	BalanceAnterior decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	BalanceNuevo    decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Responsable     uuid.UUID       `gorm:"type:uuid;not null"`
	TrabajadorID    *uuid.UUID      `gorm:"type:uuid;index"`
	CreatedAt       time.Time
}

func (MovimientoCaja) TableName() string { return "movimientos_caja" }

// EfectoMovimiento is the signed change a movement applies to MontoActual.
func EfectoMovimiento(tipo string, monto decimal.Decimal) decimal.Decimal {
	switch tipo {
	case MovEgreso, MovAsignacion:
		return monto.Neg()
	default:
		return monto
	}
}

// EsSalida reports whether the movement takes money out of the box.
func EsSalida(tipo string, monto decimal.Decimal) bool {
	return EfectoMovimiento(tipo, monto).IsNegative()
}

// Aplicar updates balance and running totals for one movement and returns
// the movement with BalanceAnterior/BalanceNuevo filled in.
func (c *Caja) Aplicar(tipo string, monto decimal.Decimal) MovimientoCaja {
	monto = money.R2(monto)
	anterior := c.MontoActual
	efecto := EfectoMovimiento(tipo, monto)
	c.MontoActual = money.R2(anterior.Add(efecto))

	switch tipo {
	case MovIngreso:
		c.MontoRecaudado = c.MontoRecaudado.Add(monto)
	case MovDevolucion:
		c.MontoRecaudado = c.MontoRecaudado.Add(monto)
		c.MontoDevuelto = c.MontoDevuelto.Add(monto)
	case MovAsignacion:
		c.MontoAsignado = c.MontoAsignado.Add(monto)
	}
	if efecto.IsNegative() {
		c.TotalEgresos = c.TotalEgresos.Add(efecto.Neg())
	} else {
		c.TotalIngresos = c.TotalIngresos.Add(efecto)
	}

	return MovimientoCaja{
		CajaID:          c.ID,
		Tipo:            tipo,
		Monto:           monto,
		BalanceAnterior: anterior,
		BalanceNuevo:    c.MontoActual,
	}
}

// Replay recomputes the balance from MontoInicial and the movement log.
func (c *Caja) Replay(movs []MovimientoCaja) decimal.Decimal {
	total := c.MontoInicial
	for _, m := range movs {
		total = total.Add(EfectoMovimiento(m.Tipo, m.Monto))
	}
	return money.R2(total)
}

// EnLaCalle is the money handed to workers and not yet returned.
func (c *Caja) EnLaCalle() decimal.Decimal {
	return money.NoNegativo(c.MontoAsignado.Sub(c.MontoDevuelto))
}
