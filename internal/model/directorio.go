package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Trabajador is a field worker. Rows are owned by the staff module; this
// core only reads them.
type Trabajador struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	NombreCompleto string    `gorm:"not null"`
	Telefono       string
	Zona           string
	Activo         bool `gorm:"not null;default:true"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (Trabajador) TableName() string { return "trabajadores" }

// Cliente is a borrower. LineaCredito grows when a loan becomes renewable.
type Cliente struct {
	ID             uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	NombreCompleto string          `gorm:"not null"`
	Telefono       string
	Direccion      string
	TrabajadorID   *uuid.UUID      `gorm:"type:uuid"`
	LineaCredito   decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	Activo         bool            `gorm:"not null;default:true"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (Cliente) TableName() string { return "clientes" }
