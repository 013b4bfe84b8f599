package service

import (
	"cobranza/internal/dto"
	"cobranza/internal/model"
	"cobranza/internal/money"

	"github.com/google/uuid"
)

func uuidPtrString(id *uuid.UUID) *string {
	if id == nil {
		return nil
	}
	s := id.String()
	return &s
}

func toCajaResponse(c *model.Caja) dto.CajaResponse {
	ganancia := money.R2(c.MontoActual.Sub(c.MontoInicial))
	return dto.CajaResponse{
		ID:                  c.ID.String(),
		Mes:                 c.Mes,
		Anio:                c.Anio,
		Estado:              c.Estado,
		MontoInicial:        c.MontoInicial,
		MontoActual:         c.MontoActual,
		MontoAsignado:       c.MontoAsignado,
		MontoRecaudado:      c.MontoRecaudado,
		MontoPrestado:       c.MontoPrestado,
		MontoDevuelto:       c.MontoDevuelto,
		EnLaCalle:           c.EnLaCalle(),
		TotalIngresos:       c.TotalIngresos,
		TotalEgresos:        c.TotalEgresos,
		Ganancia:            ganancia,
		PorcentajeGanancia:  money.Porcentaje(ganancia, c.MontoInicial),
		PrestamosRealizados: c.PrestamosRealizados,
		GananciaBruta:       c.GananciaBruta,
		GananciaNeta:        c.GananciaNeta,
		CerradoPor:          uuidPtrString(c.CerradoPor),
		FechaCierre:         c.FechaCierre,
		CreatedAt:           c.CreatedAt,
	}
}

func toMovimientoResponse(m *model.MovimientoCaja) dto.MovimientoResponse {
	return dto.MovimientoResponse{
		ID:              m.ID.String(),
		CajaID:          m.CajaID.String(),
		Secuencia:       m.Secuencia,
		Tipo:            m.Tipo,
		Monto:           m.Monto,
		Descripcion:     m.Descripcion,
		BalanceAnterior: m.BalanceAnterior,
		BalanceNuevo:    m.BalanceNuevo,
		Responsable:     m.Responsable.String(),
		TrabajadorID:    uuidPtrString(m.TrabajadorID),
		CreatedAt:       m.CreatedAt,
	}
}

func toAsignacionResponse(a *model.AsignacionDinero) dto.AsignacionResponse {
	resp := dto.AsignacionResponse{
		ID:             a.ID.String(),
		CajaID:         a.CajaID.String(),
		TrabajadorID:   a.TrabajadorID.String(),
		Fecha:          a.Fecha.Format("2006-01-02"),
		Estado:         a.Estado,
		MontoAsignado:  a.MontoAsignado,
		MontoUtilizado: a.MontoUtilizado,
		MontoRecaudado: a.MontoRecaudado,
		MontoDevuelto:  a.MontoDevuelto,
		Disponible:     a.Disponible(),
		Esperado:       a.Esperado(),
		Notas:          a.Notas,
		Prestamos:      make([]dto.PrestamoAsignadoResponse, 0, len(a.Prestamos)),
		Cobros:         make([]dto.CobroAsignadoResponse, 0, len(a.Cobros)),
	}
	for _, p := range a.Prestamos {
		resp.Prestamos = append(resp.Prestamos, dto.PrestamoAsignadoResponse{
			Secuencia:    p.Secuencia,
			PrestamoID:   p.PrestamoID.String(),
			Monto:        p.Monto,
			TipoPrestamo: p.TipoPrestamo,
			Fecha:        p.Fecha,
		})
	}
	for _, c := range a.Cobros {
		resp.Cobros = append(resp.Cobros, dto.CobroAsignadoResponse{
			Secuencia: c.Secuencia,
			PagoID:    c.PagoID.String(),
			ClienteID: c.ClienteID.String(),
			Monto:     c.Monto,
			Fecha:     c.Fecha,
		})
	}
	if d := a.Devolucion; d.Fecha != nil {
		rep := &dto.ReporteDevolucionResponse{Fecha: *d.Fecha}
		if d.MontoEsperado != nil {
			rep.MontoEsperado = *d.MontoEsperado
		}
		if d.MontoReal != nil {
			rep.MontoReal = *d.MontoReal
		}
		if d.Diferencia != nil {
			rep.Diferencia = *d.Diferencia
		}
		if d.Observaciones != nil {
			rep.Observaciones = *d.Observaciones
		}
		if d.AprobadoPor != nil {
			rep.AprobadoPor = d.AprobadoPor.String()
		}
		resp.Devolucion = rep
	}
	return resp
}

func toPagoResponse(p *model.Pago, mor *model.Moratorio) dto.PagoResponse {
	resp := dto.PagoResponse{
		ID:               p.ID.String(),
		PrestamoID:       p.PrestamoID.String(),
		NumeroPago:       p.NumeroPago,
		TipoPago:         p.TipoPago,
		Monto:            p.Monto,
		MontoAbonado:     p.MontoAbonado,
		SaldoPendiente:   p.SaldoPendiente,
		Estado:           p.Estado,
		FechaVencimiento: p.FechaVencimiento,
		FechaPago:        p.FechaPago,
		DiasMoratorio:    p.DiasMoratorio,
		MontoMoratorio:   p.MontoMoratorio,
	}
	for _, h := range p.Historial {
		resp.Historial = append(resp.Historial, dto.AbonoHistorialResponse{
			Secuencia:      h.Secuencia,
			Monto:          h.Monto,
			AbonoCapital:   h.AbonoCapital,
			AbonoMoratorio: h.AbonoMoratorio,
			TrabajadorID:   h.TrabajadorID.String(),
			Observaciones:  h.Observaciones,
			Fecha:          h.Fecha,
		})
	}
	if mor != nil {
		m := toMoratorioResponse(mor)
		resp.Moratorio = &m
	}
	return resp
}

func toPrestamoResponse(p *model.Prestamo) dto.PrestamoResponse {
	resp := dto.PrestamoResponse{
		ID:                   p.ID.String(),
		NumeroContrato:       p.NumeroContrato,
		ClienteID:            p.ClienteID.String(),
		TrabajadorID:         p.TrabajadorID.String(),
		AsignacionID:         p.AsignacionID.String(),
		PrestamoAnteriorID:   uuidPtrString(p.PrestamoAnteriorID),
		TipoPrestamo:         p.TipoPrestamo,
		Monto:                p.Monto,
		TasaInteres:          p.TasaInteres,
		Plazo:                p.Plazo,
		MontoPorPeriodo:      p.MontoPorPeriodo,
		MontoTotal:           p.MontoTotal,
		FechaIngreso:         p.FechaIngreso,
		FechaTermino:         p.FechaTermino,
		Estado:               p.Estado,
		PuedeRenovar:         p.PuedeRenovar,
		PagoMinimoRenovacion: p.PagoMinimoRenovacion,
		PagosCompletos:       p.PagosCompletos,
		PagosParciales:       p.PagosParciales,
		MontoAbonado:         p.MontoAbonado,
		EstadoRecuperacion:   p.EstadoRecuperacion,
	}
	for i := range p.Pagos {
		resp.Pagos = append(resp.Pagos, toPagoResponse(&p.Pagos[i], nil))
	}
	return resp
}

func toMoratorioResponse(m *model.Moratorio) dto.MoratorioResponse {
	return dto.MoratorioResponse{
		ID:            m.ID.String(),
		PagoID:        m.PagoID.String(),
		PrestamoID:    m.PrestamoID.String(),
		ClienteID:     m.ClienteID.String(),
		Dias:          m.Dias,
		Porcentaje:    m.Porcentaje,
		Monto:         m.Monto,
		MontoOriginal: m.MontoOriginal,
		MontoEfectivo: m.Efectivo(),
		Activo:        m.Activo,
		Accion:        m.Accion,
		AccionPor:     uuidPtrString(m.AccionPor),
		AccionFecha:   m.AccionFecha,
		Motivo:        m.Motivo,
		CreatedAt:     m.CreatedAt,
	}
}
