package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"cobranza/internal/dto"
	"cobranza/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type escenarioPrestamo struct {
	f          *fixture
	cajaID     uuid.UUID
	trabajador uuid.UUID
	cliente    uuid.UUID
	asigID     uuid.UUID
}

func nuevoEscenario(t *testing.T, asignado, linea string) *escenarioPrestamo {
	f := newFixture()
	e := &escenarioPrestamo{f: f}
	e.cajaID = f.abrirCaja(t, "50000")
	e.trabajador = f.nuevoTrabajador(true)
	e.cliente = f.nuevoCliente(linea)
	e.asigID = f.asignar(t, e.trabajador, e.cajaID, asignado)
	return e
}

func (e *escenarioPrestamo) crear(t *testing.T, monto, tipo string, plazo int) *dto.PrestamoResponse {
	t.Helper()
	p, err := e.f.prestamos.Crear(context.Background(), e.f.admin, dto.CrearPrestamoRequest{
		ClienteID: e.cliente, AsignacionID: e.asigID, Monto: dec(monto), TipoPrestamo: tipo, Plazo: plazo,
	})
	require.NoError(t, err)
	return p
}

func (e *escenarioPrestamo) abonar(t *testing.T, pagoID string, monto string) *dto.AplicacionAbonoResponse {
	t.Helper()
	r, err := e.f.pagos.AplicarAbono(context.Background(), uuid.MustParse(pagoID), dto.AbonoRequest{
		TrabajadorID: e.trabajador, AsignacionID: e.asigID, Monto: dec(monto),
	})
	require.NoError(t, err)
	return r
}

// ── Crear ─────────────────────────────────────────────────────────────────────

func TestCrearPrestamo_Semanal(t *testing.T) {
	e := nuevoEscenario(t, "2000", "5000")
	p := e.crear(t, "1000", model.PrestamoSemanal, 0)

	assert.True(t, strings.HasPrefix(p.NumeroContrato, "PREST-S-"))
	assert.Len(t, p.NumeroContrato, 16)
	assert.Equal(t, 12, p.Plazo)
	assert.True(t, dec("125").Equal(p.MontoPorPeriodo))
	assert.True(t, dec("1500").Equal(p.MontoTotal))
	assert.True(t, dec("0.50").Equal(p.TasaInteres))
	assert.Equal(t, 11, p.PagoMinimoRenovacion)
	assert.Equal(t, e.trabajador.String(), p.TrabajadorID)
	assert.Equal(t, model.PrestamoActivo, p.Estado)

	require.Len(t, p.Pagos, 12)
	for i, pg := range p.Pagos {
		assert.Equal(t, i+1, pg.NumeroPago)
		assert.Equal(t, model.PagoPendiente, pg.Estado)
		assert.True(t, pg.Monto.Equal(pg.SaldoPendiente))
		assert.Equal(t, ahoraPrueba.AddDate(0, 0, 7*(i+1)), pg.FechaVencimiento)
	}
	assert.Equal(t, ahoraPrueba.AddDate(0, 0, 84), p.FechaTermino)

	c := e.f.caja(e.cajaID.String())
	assert.True(t, dec("1000").Equal(c.MontoPrestado))
	assert.Equal(t, 1, c.PrestamosRealizados)
	// Lending does not move the box balance; the money left with the assignment.
	assert.True(t, dec("48000").Equal(c.MontoActual))

	a := e.f.asignacion(e.asigID)
	assert.True(t, dec("1000").Equal(a.MontoUtilizado))
	require.Len(t, a.Prestamos, 1)
	assert.Equal(t, p.ID, a.Prestamos[0].PrestamoID.String())
}

func TestCrearPrestamo_Diario(t *testing.T) {
	e := nuevoEscenario(t, "5000", "5000")

	p := e.crear(t, "1000", model.PrestamoDiario, 0)
	assert.True(t, strings.HasPrefix(p.NumeroContrato, "PREST-D-"))
	assert.Equal(t, 22, p.Plazo)
	assert.True(t, dec("54.55").Equal(p.MontoPorPeriodo))
	assert.Equal(t, 19, p.PagoMinimoRenovacion)
	assert.Equal(t, ahoraPrueba.AddDate(0, 0, 1), p.Pagos[0].FechaVencimiento)

	p20 := e.crear(t, "100", model.PrestamoDiario, 20)
	assert.Equal(t, 19, p20.PagoMinimoRenovacion)
	assert.Len(t, p20.Pagos, 20)
}

func TestCrearPrestamo_UmbralNoSuperaPlazo(t *testing.T) {
	e := nuevoEscenario(t, "2000", "5000")
	p := e.crear(t, "300", model.PrestamoSemanal, 4)
	assert.Equal(t, 4, p.PagoMinimoRenovacion)
	assert.True(t, dec("112.5").Equal(p.MontoPorPeriodo))
}

func TestCrearPrestamo_Rechazos(t *testing.T) {
	e := nuevoEscenario(t, "2000", "5000")
	ctx := context.Background()

	cases := []struct {
		name  string
		req   dto.CrearPrestamoRequest
		campo string
	}{
		{"plazo diario corto", dto.CrearPrestamoRequest{Monto: dec("100"), TipoPrestamo: model.PrestamoDiario, Plazo: 19}, "plazo"},
		{"plazo diario largo", dto.CrearPrestamoRequest{Monto: dec("100"), TipoPrestamo: model.PrestamoDiario, Plazo: 25}, "plazo"},
		{"plazo negativo", dto.CrearPrestamoRequest{Monto: dec("100"), TipoPrestamo: model.PrestamoSemanal, Plazo: -1}, "plazo"},
		{"tipo", dto.CrearPrestamoRequest{Monto: dec("100"), TipoPrestamo: "mensual"}, "tipo_prestamo"},
		{"monto", dto.CrearPrestamoRequest{Monto: dec("0"), TipoPrestamo: model.PrestamoSemanal}, "monto"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tc.req.ClienteID, tc.req.AsignacionID = e.cliente, e.asigID
			_, err := e.f.prestamos.Crear(ctx, e.f.admin, tc.req)
			var verr *ValidacionError
			require.True(t, errors.As(err, &verr))
			assert.Equal(t, tc.campo, verr.Campo)
		})
	}

	e.f.store.clientes[e.cliente].Activo = false
	_, err := e.f.prestamos.Crear(ctx, e.f.admin, dto.CrearPrestamoRequest{
		ClienteID: e.cliente, AsignacionID: e.asigID, Monto: dec("100"), TipoPrestamo: model.PrestamoSemanal,
	})
	assert.ErrorIs(t, err, ErrClienteInactivo)

	assert.Empty(t, e.f.store.prestamos)
	assert.True(t, e.f.asignacion(e.asigID).MontoUtilizado.IsZero())
}

// ── Renovar ───────────────────────────────────────────────────────────────────

func TestRenovar(t *testing.T) {
	e := nuevoEscenario(t, "5000", "500")
	ctx := context.Background()
	p := e.crear(t, "1000", model.PrestamoSemanal, 0)
	prestamoID := uuid.MustParse(p.ID)

	ren, err := e.f.prestamos.PuedeRenovar(ctx, prestamoID)
	require.NoError(t, err)
	assert.False(t, ren.PuedeRenovar)

	_, err = e.f.prestamos.Renovar(ctx, e.f.admin, prestamoID, dto.RenovarPrestamoRequest{AsignacionID: e.asigID})
	require.ErrorIs(t, err, ErrNoRenovable)

	for i := 0; i < 10; i++ {
		r := e.abonar(t, p.Pagos[i].ID, "125")
		assert.False(t, r.PrestamoRenovable)
	}
	r := e.abonar(t, p.Pagos[10].ID, "125")
	assert.True(t, r.PrestamoRenovable)
	assert.True(t, dec("1000").Equal(r.LineaCreditoIncrementada))
	assert.True(t, dec("1500").Equal(e.f.store.clientes[e.cliente].LineaCredito))

	ren, err = e.f.prestamos.PuedeRenovar(ctx, prestamoID)
	require.NoError(t, err)
	assert.True(t, ren.PuedeRenovar)
	assert.Equal(t, 11, ren.PagosCompletos)

	// Capped at the credit line.
	nuevo, err := e.f.prestamos.Renovar(ctx, e.f.admin, prestamoID, dto.RenovarPrestamoRequest{
		AsignacionID: e.asigID, Monto: dec("2000"),
	})
	require.NoError(t, err)
	assert.True(t, dec("1500").Equal(nuevo.Monto))
	require.NotNil(t, nuevo.PrestamoAnteriorID)
	assert.Equal(t, p.ID, *nuevo.PrestamoAnteriorID)
	assert.Equal(t, model.PrestamoSemanal, nuevo.TipoPrestamo)
	assert.Len(t, nuevo.Pagos, 12)

	anterior, err := e.f.prestamos.Obtener(ctx, prestamoID)
	require.NoError(t, err)
	assert.Equal(t, model.PrestamoRenovado, anterior.Estado)

	_, err = e.f.prestamos.Renovar(ctx, e.f.admin, prestamoID, dto.RenovarPrestamoRequest{AsignacionID: e.asigID})
	assert.ErrorIs(t, err, ErrNoRenovable)

	c := e.f.caja(e.cajaID.String())
	assert.Equal(t, 2, c.PrestamosRealizados)
	assert.True(t, dec("2500").Equal(c.MontoPrestado))
}

func TestRenovar_MontoCeroReusaPrincipal(t *testing.T) {
	e := nuevoEscenario(t, "5000", "5000")
	ctx := context.Background()
	p := e.crear(t, "400", model.PrestamoSemanal, 2)
	e.abonar(t, p.Pagos[0].ID, "300")
	e.abonar(t, p.Pagos[1].ID, "300")

	nuevo, err := e.f.prestamos.Renovar(ctx, e.f.admin, uuid.MustParse(p.ID), dto.RenovarPrestamoRequest{AsignacionID: e.asigID})
	require.NoError(t, err)
	assert.True(t, dec("400").Equal(nuevo.Monto))
	assert.Equal(t, 12, nuevo.Plazo)
}

func TestRenovar_SinLineaCredito(t *testing.T) {
	e := nuevoEscenario(t, "5000", "5000")
	ctx := context.Background()
	p := e.crear(t, "400", model.PrestamoSemanal, 1)
	e.abonar(t, p.Pagos[0].ID, "600")

	e.f.store.clientes[e.cliente].LineaCredito = dec("0")
	_, err := e.f.prestamos.Renovar(ctx, e.f.admin, uuid.MustParse(p.ID), dto.RenovarPrestamoRequest{AsignacionID: e.asigID})
	assert.ErrorIs(t, err, ErrSinLineaCredito)

	anterior, err := e.f.prestamos.Obtener(ctx, uuid.MustParse(p.ID))
	require.NoError(t, err)
	assert.Equal(t, model.PrestamoActivo, anterior.Estado)
}

func TestRenovar_FondosInsuficientesNoCierraAnterior(t *testing.T) {
	e := nuevoEscenario(t, "1000", "5000")
	ctx := context.Background()
	p := e.crear(t, "800", model.PrestamoSemanal, 1)
	e.abonar(t, p.Pagos[0].ID, "1200")

	_, err := e.f.prestamos.Renovar(ctx, e.f.admin, uuid.MustParse(p.ID), dto.RenovarPrestamoRequest{AsignacionID: e.asigID})
	require.ErrorIs(t, err, ErrFondosInsuficientesAsignacion)

	anterior, err := e.f.prestamos.Obtener(ctx, uuid.MustParse(p.ID))
	require.NoError(t, err)
	assert.Equal(t, model.PrestamoActivo, anterior.Estado)
	assert.Len(t, e.f.store.prestamos, 1)
}
