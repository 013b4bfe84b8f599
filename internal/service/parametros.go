package service

import (
	"time"

	"github.com/shopspring/decimal"
)

// Parametros holds the business constants of the lending operation.
type Parametros struct {
	TasaSemanal decimal.Decimal // 0.50 = 50% over the whole term
	TasaDiaria  decimal.Decimal

	PlazoSemanal   int // default term when the request sends 0
	PlazoDiario    int
	PlazoDiarioMin int
	PlazoDiarioMax int

	// Installment number from which a loan may be renewed; capped at the term.
	RenovacionSemanal int
	RenovacionDiaria  int

	IncrementoLineaCredito decimal.Decimal
	// Daily percentage of principal used to suggest a late fee.
	MoratorioSugeridoPct decimal.Decimal

	Reintentos Reintentos
}

func ParametrosPorDefecto() Parametros {
	return Parametros{
		TasaSemanal:            decimal.RequireFromString("0.50"),
		TasaDiaria:             decimal.RequireFromString("0.20"),
		PlazoSemanal:           12,
		PlazoDiario:            22,
		PlazoDiarioMin:         20,
		PlazoDiarioMax:         24,
		RenovacionSemanal:      11,
		RenovacionDiaria:       19,
		IncrementoLineaCredito: decimal.NewFromInt(1000),
		MoratorioSugeridoPct:   decimal.RequireFromString("0.5"),
		Reintentos:             Reintentos{MaxIntentos: 5, EsperaInicial: 5 * time.Millisecond},
	}
}
