package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Acción administrativa sobre un moratorio.
const (
	MoratorioSinAccion    = "ninguna"
	MoratorioCondonado    = "condonado"
	MoratorioIncrementado = "incrementado"
	MoratorioReducido     = "reducido"
)

// Moratorio is an administrator-applied late fee on an installment.
// At most one active row exists per pago (partial unique index).
type Moratorio struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	PagoID        uuid.UUID       `gorm:"type:uuid;not null;index"`
	PrestamoID    uuid.UUID       `gorm:"type:uuid;not null;index"`
	ClienteID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	Dias          int             `gorm:"not null"`
	Porcentaje    decimal.Decimal `gorm:"type:decimal(6,2);not null;default:0"`
	Monto         decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	MontoOriginal decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Activo        bool            `gorm:"not null;default:true"`
	Accion        string          `gorm:"type:varchar(20);not null;default:'ninguna'"`
	AccionPor     *uuid.UUID      `gorm:"type:uuid"`
	AccionFecha   *time.Time
	Motivo        string    `gorm:"not null;default:''"`
	CreadoPor     uuid.UUID `gorm:"type:uuid;not null"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (Moratorio) TableName() string { return "moratorios" }

// Efectivo is the fee amount that counts toward what is owed.
func (m *Moratorio) Efectivo() decimal.Decimal {
	if m == nil || !m.Activo || m.Accion == MoratorioCondonado {
		return decimal.Zero
	}
	return m.Monto
}

// RegistrarAccion stamps an administrative action.
func (m *Moratorio) RegistrarAccion(accion string, actor uuid.UUID, ahora time.Time) {
	a := actor
	t := ahora
	m.Accion = accion
	m.AccionPor = &a
	m.AccionFecha = &t
}
