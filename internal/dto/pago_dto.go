package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ─── Request DTOs ────────────────────────────────────────────────────────────

type AbonoRequest struct {
	TrabajadorID  uuid.UUID       `json:"trabajador_id" validate:"required"`
	AsignacionID  uuid.UUID       `json:"asignacion_id" validate:"required"`
	Monto         decimal.Decimal `json:"monto"         validate:"required,gt=0"`
	Observaciones string          `json:"observaciones"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type AbonoHistorialResponse struct {
	Secuencia      int             `json:"secuencia"`
	Monto          decimal.Decimal `json:"monto"`
	AbonoCapital   decimal.Decimal `json:"abono_capital"`
	AbonoMoratorio decimal.Decimal `json:"abono_moratorio"`
	TrabajadorID   string          `json:"trabajador_id"`
	Observaciones  string          `json:"observaciones,omitempty"`
	Fecha          time.Time       `json:"fecha"`
}

type PagoResponse struct {
	ID               string                   `json:"id"`
	PrestamoID       string                   `json:"prestamo_id"`
	NumeroPago       int                      `json:"numero_pago"`
	TipoPago         string                   `json:"tipo_pago"`
	Monto            decimal.Decimal          `json:"monto"`
	MontoAbonado     decimal.Decimal          `json:"monto_abonado"`
	SaldoPendiente   decimal.Decimal          `json:"saldo_pendiente"`
	Estado           string                   `json:"estado"`
	FechaVencimiento time.Time                `json:"fecha_vencimiento"`
	FechaPago        *time.Time               `json:"fecha_pago,omitempty"`
	DiasMoratorio    int                      `json:"dias_moratorio"`
	MontoMoratorio   decimal.Decimal          `json:"monto_moratorio"`
	Historial        []AbonoHistorialResponse `json:"historial,omitempty"`
	Moratorio        *MoratorioResponse       `json:"moratorio,omitempty"`
}

// AplicacionAbonoResponse reports how a collected amount was split.
type AplicacionAbonoResponse struct {
	Pago                     PagoResponse    `json:"pago"`
	MontoAplicado            decimal.Decimal `json:"monto_aplicado"`
	AbonoMoratorio           decimal.Decimal `json:"abono_moratorio"`
	AbonoCapital             decimal.Decimal `json:"abono_capital"`
	MoratorioRestante        decimal.Decimal `json:"moratorio_restante"`
	PrestamoRenovable        bool            `json:"prestamo_renovable"`
	LineaCreditoIncrementada decimal.Decimal `json:"linea_credito_incrementada"`
}

type PagoVencidoResponse struct {
	Pago              PagoResponse    `json:"pago"`
	NumeroContrato    string          `json:"numero_contrato"`
	ClienteID         string          `json:"cliente_id"`
	DiasVencido       int             `json:"dias_vencido"`
	MoratorioSugerido decimal.Decimal `json:"moratorio_sugerido"`
	TieneMoratorio    bool            `json:"tiene_moratorio"`
}

// PagoRutaResponse is one stop of a trabajador's collection route.
type PagoRutaResponse struct {
	Pago           PagoResponse `json:"pago"`
	NumeroContrato string       `json:"numero_contrato"`
	ClienteID      string       `json:"cliente_id"`
	DiasVencido    int          `json:"dias_vencido"`
}

type ResumenRutaResponse struct {
	TotalClientes  int             `json:"total_clientes"`
	TotalPagos     int             `json:"total_pagos"`
	Parciales      int             `json:"parciales"`
	MontoEsperado  decimal.Decimal `json:"monto_esperado"`  // installments due on fecha
	MontoRecaudado decimal.Decimal `json:"monto_recaudado"` // already paid of those
	SaldoVencido   decimal.Decimal `json:"saldo_vencido"`
	PorCobrar      decimal.Decimal `json:"por_cobrar"`
}

// RutaCobroResponse groups the installments a trabajador has to visit on a
// day: earlier unpaid ones first, then those due that day.
type RutaCobroResponse struct {
	TrabajadorID string              `json:"trabajador_id"`
	Fecha        string              `json:"fecha"`
	Resumen      ResumenRutaResponse `json:"resumen"`
	Vencidos     []PagoRutaResponse  `json:"vencidos"`
	DelDia       []PagoRutaResponse  `json:"del_dia"`
	Completados  []PagoRutaResponse  `json:"completados"`
}
