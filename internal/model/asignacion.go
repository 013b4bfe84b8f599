package model

import (
	"time"

	"cobranza/internal/money"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Estado de asignación: "pendiente" | "parcial" | "completado" | "cancelado"
const (
	AsignacionPendiente  = "pendiente"
	AsignacionParcial    = "parcial"
	AsignacionCompletada = "completado"
	AsignacionCancelada  = "cancelado"
)

// AsignacionDinero is the money handed to one worker on one day.
// At most one pendiente/parcial row exists per (trabajador, fecha).
type AsignacionDinero struct {
	ID             uuid.UUID         `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CajaID         uuid.UUID         `gorm:"type:uuid;not null;index"`
	TrabajadorID   uuid.UUID         `gorm:"type:uuid;not null;index:idx_asignaciones_trabajador_fecha"`
	Fecha          time.Time         `gorm:"type:date;not null;index:idx_asignaciones_trabajador_fecha"`
	MontoAsignado  decimal.Decimal   `gorm:"type:decimal(12,2);not null"`
	MontoUtilizado decimal.Decimal   `gorm:"type:decimal(12,2);not null;default:0"`
	MontoRecaudado decimal.Decimal   `gorm:"type:decimal(12,2);not null;default:0"`
	MontoDevuelto  decimal.Decimal   `gorm:"type:decimal(12,2);not null;default:0"`
	Estado         string            `gorm:"type:varchar(20);not null;default:'pendiente'"`
	AsignadoPor    uuid.UUID         `gorm:"type:uuid;not null"`
	Notas          string            `gorm:"not null;default:''"`
	Devolucion     ReporteDevolucion `gorm:"embedded;embeddedPrefix:devolucion_"`
	CreatedAt      time.Time
	UpdatedAt      time.Time

	Prestamos []PrestamoAsignado `gorm:"foreignKey:AsignacionID"`
	Cobros    []CobroAsignado    `gorm:"foreignKey:AsignacionID"`
}

func (AsignacionDinero) TableName() string { return "asignaciones_dinero" }

// ReporteDevolucion is filled by the end-of-day reconciliation.
type ReporteDevolucion struct {
	Fecha         *time.Time
	MontoEsperado *decimal.Decimal `gorm:"type:decimal(12,2)"`
	MontoReal     *decimal.Decimal `gorm:"type:decimal(12,2)"`
	Diferencia    *decimal.Decimal `gorm:"type:decimal(12,2)"`
	Observaciones *string
	AprobadoPor   *uuid.UUID `gorm:"type:uuid"`
}

// PrestamoAsignado records a loan disbursed from an assignment.
type PrestamoAsignado struct {
	ID           uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	AsignacionID uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_asignacion_prestamos_secuencia"`
	Secuencia    int             `gorm:"not null;uniqueIndex:idx_asignacion_prestamos_secuencia"`
	PrestamoID   uuid.UUID       `gorm:"type:uuid;not null"`
	Monto        decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	TipoPrestamo string          `gorm:"type:varchar(10);not null"`
	Fecha        time.Time       `gorm:"not null"`
}

func (PrestamoAsignado) TableName() string { return "asignacion_prestamos" }

// CobroAsignado records a collection made by the worker of an assignment.
type CobroAsignado struct {
	ID           uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	AsignacionID uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_asignacion_cobros_secuencia"`
	Secuencia    int             `gorm:"not null;uniqueIndex:idx_asignacion_cobros_secuencia"`
	PagoID       uuid.UUID       `gorm:"type:uuid;not null"`
	ClienteID    uuid.UUID       `gorm:"type:uuid;not null"`
	Monto        decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Fecha        time.Time       `gorm:"not null"`
}

func (CobroAsignado) TableName() string { return "asignacion_cobros" }

// Activa reports whether the assignment still accepts loans and collections.
func (a *AsignacionDinero) Activa() bool {
	return a.Estado == AsignacionPendiente || a.Estado == AsignacionParcial
}

// Disponible is the money the worker can still lend.
func (a *AsignacionDinero) Disponible() decimal.Decimal {
	return money.R2(a.MontoAsignado.Sub(a.MontoUtilizado))
}

// Esperado is what the worker should return at day end.
func (a *AsignacionDinero) Esperado() decimal.Decimal {
	return money.R2(a.MontoAsignado.Sub(a.MontoUtilizado).Add(a.MontoRecaudado))
}

// Faltante returns how much a loan of monto exceeds the available money,
// or zero when it fits.
func (a *AsignacionDinero) Faltante(monto decimal.Decimal) decimal.Decimal {
	return money.NoNegativo(money.R2(a.MontoUtilizado.Add(monto).Sub(a.MontoAsignado)))
}

func (a *AsignacionDinero) marcarMovimiento() {
	if a.Estado == AsignacionPendiente {
		a.Estado = AsignacionParcial
	}
}

// AgregarPrestamo appends a loan reference; the caller has already checked Faltante.
func (a *AsignacionDinero) AgregarPrestamo(prestamoID uuid.UUID, monto decimal.Decimal, tipo string, ahora time.Time) PrestamoAsignado {
	monto = money.R2(monto)
	a.MontoUtilizado = money.R2(a.MontoUtilizado.Add(monto))
	a.marcarMovimiento()
	ref := PrestamoAsignado{
		AsignacionID: a.ID,
		Secuencia:    len(a.Prestamos) + 1,
		PrestamoID:   prestamoID,
		Monto:        monto,
		TipoPrestamo: tipo,
		Fecha:        ahora,
	}
	a.Prestamos = append(a.Prestamos, ref)
	return ref
}

// AgregarCobro appends a collection reference.
func (a *AsignacionDinero) AgregarCobro(pagoID, clienteID uuid.UUID, monto decimal.Decimal, ahora time.Time) CobroAsignado {
	monto = money.R2(monto)
	a.MontoRecaudado = money.R2(a.MontoRecaudado.Add(monto))
	a.marcarMovimiento()
	ref := CobroAsignado{
		AsignacionID: a.ID,
		Secuencia:    len(a.Cobros) + 1,
		PagoID:       pagoID,
		ClienteID:    clienteID,
		Monto:        monto,
		Fecha:        ahora,
	}
	a.Cobros = append(a.Cobros, ref)
	return ref
}

// Cerrar records the return report and completes the assignment.
func (a *AsignacionDinero) Cerrar(devuelto decimal.Decimal, observaciones string, aprobadoPor uuid.UUID, ahora time.Time) {
	devuelto = money.R2(devuelto)
	esperado := a.Esperado()
	diferencia := money.R2(devuelto.Sub(esperado))
	obs := observaciones
	aprobador := aprobadoPor
	fecha := ahora

	a.MontoDevuelto = devuelto
	a.Estado = AsignacionCompletada
	a.Devolucion = ReporteDevolucion{
		Fecha:         &fecha,
		MontoEsperado: &esperado,
		MontoReal:     &devuelto,
		Diferencia:    &diferencia,
		Observaciones: &obs,
		AprobadoPor:   &aprobador,
	}
}

// DiaDe truncates t to the calendar day in t's location.
func DiaDe(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
