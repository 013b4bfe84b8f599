package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"cobranza/internal/dto"
	"cobranza/internal/model"
	"cobranza/internal/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"gorm.io/gorm"
)

func (f *fixture) asignar(t *testing.T, trabajador, cajaID uuid.UUID, monto string) uuid.UUID {
	t.Helper()
	resp, err := f.asignaciones.Asignar(context.Background(), f.admin, dto.AsignarRequest{
		TrabajadorID: trabajador, CajaID: cajaID, Monto: dec(monto),
	})
	require.NoError(t, err)
	return uuid.MustParse(resp.ID)
}

func (f *fixture) asignacion(id uuid.UUID) *model.AsignacionDinero {
	a, err := (&fakeAsignacionRepo{s: f.store}).find(id)
	if err != nil {
		panic(err)
	}
	return a
}

// ── Asignar ───────────────────────────────────────────────────────────────────

func TestAsignar_AcumulaEnElDia(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	cajaID := f.abrirCaja(t, "10000")
	trabajador := f.nuevoTrabajador(true)

	primera := f.asignar(t, trabajador, cajaID, "1000")
	segunda := f.asignar(t, trabajador, cajaID, "500")
	assert.Equal(t, primera, segunda)

	a := f.asignacion(primera)
	assert.True(t, dec("1500").Equal(a.MontoAsignado))
	assert.Equal(t, model.AsignacionPendiente, a.Estado)

	movs := f.movimientos(cajaID)
	require.Len(t, movs, 2)
	for _, m := range movs {
		assert.Equal(t, model.MovAsignacion, m.Tipo)
		require.NotNil(t, m.TrabajadorID)
		assert.Equal(t, trabajador, *m.TrabajadorID)
	}
	c := f.caja(cajaID.String())
	assert.True(t, dec("8500").Equal(c.MontoActual))
	assert.True(t, dec("1500").Equal(c.MontoAsignado))
	assert.True(t, dec("1500").Equal(c.EnLaCalle()))

	f.reloj.Avanzar(24 * time.Hour)
	tercera := f.asignar(t, trabajador, cajaID, "200")
	assert.NotEqual(t, primera, tercera)

	dia, err := f.asignaciones.ListarDelDia(ctx, ahoraPrueba)
	require.NoError(t, err)
	require.Len(t, dia.Data, 1)
	assert.True(t, dec("1500").Equal(dia.TotalAsignado))
}

func TestAsignar_Rechazos(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	cajaID := f.abrirCaja(t, "1000")
	activo := f.nuevoTrabajador(true)
	inactivo := f.nuevoTrabajador(false)

	_, err := f.asignaciones.Asignar(ctx, f.admin, dto.AsignarRequest{TrabajadorID: activo, CajaID: cajaID, Monto: dec("0")})
	var verr *ValidacionError
	assert.True(t, errors.As(err, &verr))

	_, err = f.asignaciones.Asignar(ctx, f.admin, dto.AsignarRequest{TrabajadorID: uuid.New(), CajaID: cajaID, Monto: dec("10")})
	var nf *NoEncontradoError
	assert.True(t, errors.As(err, &nf))

	_, err = f.asignaciones.Asignar(ctx, f.admin, dto.AsignarRequest{TrabajadorID: inactivo, CajaID: cajaID, Monto: dec("10")})
	assert.ErrorIs(t, err, ErrTrabajadorInactivo)

	_, err = f.asignaciones.Asignar(ctx, f.admin, dto.AsignarRequest{TrabajadorID: activo, CajaID: cajaID, Monto: dec("1200")})
	require.ErrorIs(t, err, ErrFondosInsuficientesCaja)
	var perr *PrecondicionError
	require.True(t, errors.As(err, &perr))
	assert.True(t, dec("200").Equal(perr.Faltante))

	assert.Empty(t, f.movimientos(cajaID))
	assert.Empty(t, f.store.asignaciones)
	assert.True(t, dec("1000").Equal(f.caja(cajaID.String()).MontoActual))
}

func TestAsignar_TrabajadorInactivoConMock(t *testing.T) {
	ctrl := gomock.NewController(t)
	dir := repository.NewMockDirectorioRepository(ctrl)
	store := newMemStore()
	svc := NewAsignacionService(&fakeAsignacionRepo{s: store}, &fakeCajaRepo{s: store}, dir,
		RelojFijo{T: ahoraPrueba}, nil, ParametrosPorDefecto())

	inactivo := uuid.New()
	desconocido := uuid.New()
	dir.EXPECT().FindTrabajador(gomock.Any(), inactivo).
		Return(&model.Trabajador{ID: inactivo, Activo: false}, nil)
	dir.EXPECT().FindTrabajador(gomock.Any(), desconocido).
		Return(nil, gorm.ErrRecordNotFound)

	_, err := svc.Asignar(context.Background(), uuid.New(), dto.AsignarRequest{TrabajadorID: inactivo, CajaID: uuid.New(), Monto: dec("100")})
	assert.ErrorIs(t, err, ErrTrabajadorInactivo)

	_, err = svc.Asignar(context.Background(), uuid.New(), dto.AsignarRequest{TrabajadorID: desconocido, CajaID: uuid.New(), Monto: dec("100")})
	var nf *NoEncontradoError
	require.True(t, errors.As(err, &nf))
	assert.Equal(t, "trabajador", nf.Recurso)
}

// ── Flujo del día ─────────────────────────────────────────────────────────────

// 1000 assigned, a loan of 600, a loan of 500 rejected, 200 collected,
// 600 returned.
func TestFlujoDelDia_ConciliacionExacta(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	cajaID := f.abrirCaja(t, "10000")
	trabajador := f.nuevoTrabajador(true)
	cliente := f.nuevoCliente("5000")
	asigID := f.asignar(t, trabajador, cajaID, "1000")

	_, err := f.prestamos.Crear(ctx, f.admin, dto.CrearPrestamoRequest{
		ClienteID: cliente, AsignacionID: asigID, Monto: dec("600"), TipoPrestamo: model.PrestamoSemanal,
	})
	require.NoError(t, err)

	_, err = f.prestamos.Crear(ctx, f.admin, dto.CrearPrestamoRequest{
		ClienteID: cliente, AsignacionID: asigID, Monto: dec("500"), TipoPrestamo: model.PrestamoSemanal,
	})
	require.ErrorIs(t, err, ErrFondosInsuficientesAsignacion)
	var perr *PrecondicionError
	require.True(t, errors.As(err, &perr))
	assert.True(t, dec("400").Equal(perr.Disponible))
	assert.True(t, dec("500").Equal(perr.Solicitado))
	assert.True(t, dec("100").Equal(perr.Faltante))

	a := f.asignacion(asigID)
	assert.True(t, dec("600").Equal(a.MontoUtilizado))
	assert.Len(t, a.Prestamos, 1)
	assert.Equal(t, model.AsignacionParcial, a.Estado)
	assert.Len(t, f.store.prestamos, 1)
	assert.True(t, dec("600").Equal(f.caja(cajaID.String()).MontoPrestado))

	_, err = f.asignaciones.RegistrarCobro(ctx, nil, asigID, trabajador, uuid.New(), cliente, dec("200"))
	require.NoError(t, err)

	conc, err := f.asignaciones.Reconciliar(ctx, f.admin, asigID, dto.ReconciliarRequest{MontoDevuelto: dec("600")})
	require.NoError(t, err)
	assert.True(t, dec("600").Equal(conc.MontoEsperado))
	assert.True(t, conc.Diferencia.IsZero())
	assert.Equal(t, model.AsignacionCompletada, conc.Asignacion.Estado)
	require.NotNil(t, conc.Asignacion.Devolucion)
	assert.Equal(t, f.admin.String(), conc.Asignacion.Devolucion.AprobadoPor)

	c := f.caja(cajaID.String())
	assert.True(t, dec("9600").Equal(c.MontoActual))
	assert.True(t, dec("600").Equal(c.MontoDevuelto))
	movimientos := len(f.movimientos(cajaID))

	_, err = f.asignaciones.Reconciliar(ctx, f.admin, asigID, dto.ReconciliarRequest{MontoDevuelto: dec("600")})
	assert.ErrorIs(t, err, ErrAsignacionCompletada)
	assert.Len(t, f.movimientos(cajaID), movimientos)
	assert.True(t, dec("9600").Equal(f.caja(cajaID.String()).MontoActual))

	_, err = f.asignaciones.RegistrarCobro(ctx, nil, asigID, trabajador, uuid.New(), cliente, dec("10"))
	assert.ErrorIs(t, err, ErrAsignacionCompletada)
}

func TestReconciliar_Faltante(t *testing.T) {
	f := newFixture()
	cajaID := f.abrirCaja(t, "2000")
	asigID := f.asignar(t, f.nuevoTrabajador(true), cajaID, "1000")

	conc, err := f.asignaciones.Reconciliar(context.Background(), f.admin, asigID, dto.ReconciliarRequest{
		MontoDevuelto: dec("950"), Observaciones: "faltaron 50",
	})
	require.NoError(t, err)
	assert.True(t, dec("-50").Equal(conc.Diferencia))
	assert.Equal(t, "faltaron 50", conc.Asignacion.Devolucion.Observaciones)
	assert.True(t, dec("1950").Equal(f.caja(cajaID.String()).MontoActual))
}

func TestReconciliar_DevolucionCeroNoMueveCaja(t *testing.T) {
	f := newFixture()
	cajaID := f.abrirCaja(t, "2000")
	asigID := f.asignar(t, f.nuevoTrabajador(true), cajaID, "1000")

	conc, err := f.asignaciones.Reconciliar(context.Background(), f.admin, asigID, dto.ReconciliarRequest{})
	require.NoError(t, err)
	assert.True(t, dec("-1000").Equal(conc.Diferencia))
	assert.Len(t, f.movimientos(cajaID), 1)
}

func TestRegistrarCobro_OtroTrabajador(t *testing.T) {
	f := newFixture()
	cajaID := f.abrirCaja(t, "2000")
	asigID := f.asignar(t, f.nuevoTrabajador(true), cajaID, "1000")

	_, err := f.asignaciones.RegistrarCobro(context.Background(), nil, asigID, uuid.New(), uuid.New(), uuid.New(), dec("10"))
	var verr *ValidacionError
	require.True(t, errors.As(err, &verr))
	assert.True(t, f.asignacion(asigID).MontoRecaudado.IsZero())
}

// ── Cancelar / Balance ────────────────────────────────────────────────────────

func TestCancelar(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	cajaID := f.abrirCaja(t, "3000")
	trabajador := f.nuevoTrabajador(true)

	t.Run("sin movimientos devuelve todo", func(t *testing.T) {
		asigID := f.asignar(t, trabajador, cajaID, "1000")
		resp, err := f.asignaciones.Cancelar(ctx, f.admin, asigID, dto.CancelarAsignacionRequest{Motivo: "ruta suspendida"})
		require.NoError(t, err)
		assert.Equal(t, model.AsignacionCancelada, resp.Estado)
		assert.True(t, dec("3000").Equal(f.caja(cajaID.String()).MontoActual))

		_, err = f.asignaciones.Cancelar(ctx, f.admin, asigID, dto.CancelarAsignacionRequest{Motivo: "otra vez"})
		assert.ErrorIs(t, err, ErrAsignacionInactiva)
	})

	t.Run("con préstamo", func(t *testing.T) {
		asigID := f.asignar(t, trabajador, cajaID, "1000")
		_, err := f.prestamos.Crear(ctx, f.admin, dto.CrearPrestamoRequest{
			ClienteID: f.nuevoCliente("1000"), AsignacionID: asigID, Monto: dec("100"), TipoPrestamo: model.PrestamoSemanal,
		})
		require.NoError(t, err)

		_, err = f.asignaciones.Cancelar(ctx, f.admin, asigID, dto.CancelarAsignacionRequest{Motivo: "ruta suspendida"})
		assert.ErrorIs(t, err, ErrAsignacionConMovimientos)
		assert.Equal(t, model.AsignacionParcial, f.asignacion(asigID).Estado)
	})
}

func TestBalanceAsignacion(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	cajaID := f.abrirCaja(t, "3000")
	trabajador := f.nuevoTrabajador(true)
	asigID := f.asignar(t, trabajador, cajaID, "1000")

	_, err := f.prestamos.Crear(ctx, f.admin, dto.CrearPrestamoRequest{
		ClienteID: f.nuevoCliente("1000"), AsignacionID: asigID, Monto: dec("250"), TipoPrestamo: model.PrestamoSemanal,
	})
	require.NoError(t, err)
	_, err = f.asignaciones.RegistrarCobro(ctx, nil, asigID, trabajador, uuid.New(), uuid.New(), dec("50"))
	require.NoError(t, err)

	b, err := f.asignaciones.Balance(ctx, asigID)
	require.NoError(t, err)
	assert.True(t, dec("750").Equal(b.Disponible))
	assert.True(t, dec("800").Equal(b.Esperado))
	assert.True(t, dec("25").Equal(b.PorcentajeUtilizacion))
	assert.True(t, dec("20").Equal(b.Rendimiento))
	assert.Equal(t, 1, b.Prestamos)
	assert.Equal(t, 1, b.Cobros)
}

// ── Por trabajador ────────────────────────────────────────────────────────────

func TestListarPorTrabajador(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	cajaID := f.abrirCaja(t, "5000")
	trabajador := f.nuevoTrabajador(true)
	otro := f.nuevoTrabajador(true)

	ayer := f.asignar(t, trabajador, cajaID, "1000")
	_, err := f.asignaciones.Reconciliar(ctx, f.admin, ayer, dto.ReconciliarRequest{MontoDevuelto: dec("1000")})
	require.NoError(t, err)
	f.reloj.Avanzar(24 * time.Hour)
	hoy := f.asignar(t, trabajador, cajaID, "500")
	f.asignar(t, otro, cajaID, "700")

	resp, err := f.asignaciones.ListarPorTrabajador(ctx, trabajador, dto.FiltroAsignaciones{})
	require.NoError(t, err)
	require.Equal(t, 2, resp.Total)
	assert.Equal(t, hoy.String(), resp.Data[0].ID)
	assert.Equal(t, ayer.String(), resp.Data[1].ID)
	assert.True(t, dec("1500").Equal(resp.TotalAsignado))

	completadas, err := f.asignaciones.ListarPorTrabajador(ctx, trabajador, dto.FiltroAsignaciones{Estado: model.AsignacionCompletada})
	require.NoError(t, err)
	require.Len(t, completadas.Data, 1)
	assert.Equal(t, ayer.String(), completadas.Data[0].ID)

	dia := model.DiaDe(f.reloj.Ahora())
	soloHoy, err := f.asignaciones.ListarPorTrabajador(ctx, trabajador, dto.FiltroAsignaciones{Desde: &dia, Hasta: &dia})
	require.NoError(t, err)
	require.Len(t, soloHoy.Data, 1)
	assert.Equal(t, hoy.String(), soloHoy.Data[0].ID)

	_, err = f.asignaciones.ListarPorTrabajador(ctx, trabajador, dto.FiltroAsignaciones{Estado: "perdida"})
	var verr *ValidacionError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "estado", verr.Campo)

	_, err = f.asignaciones.ListarPorTrabajador(ctx, uuid.New(), dto.FiltroAsignaciones{})
	var nf *NoEncontradoError
	require.True(t, errors.As(err, &nf))
	assert.Equal(t, "trabajador", nf.Recurso)
}

// Day one: two loans and one collection, reconciled 5 short. Day two: two
// collections from two clients, still open.
func TestProductividad(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	cajaID := f.abrirCaja(t, "10000")
	trabajador := f.nuevoTrabajador(true)
	c1, c2 := f.nuevoCliente("5000"), f.nuevoCliente("5000")
	desde := model.DiaDe(f.reloj.Ahora())

	dia1 := f.asignar(t, trabajador, cajaID, "3000")
	p1, err := f.prestamos.Crear(ctx, f.admin, dto.CrearPrestamoRequest{
		ClienteID: c1, AsignacionID: dia1, Monto: dec("1000"), TipoPrestamo: model.PrestamoSemanal,
	})
	require.NoError(t, err)
	p2, err := f.prestamos.Crear(ctx, f.admin, dto.CrearPrestamoRequest{
		ClienteID: c2, AsignacionID: dia1, Monto: dec("200"), TipoPrestamo: model.PrestamoSemanal, Plazo: 3,
	})
	require.NoError(t, err)
	cobrar := func(asig uuid.UUID, pagoID, monto string) {
		t.Helper()
		_, err := f.pagos.AplicarAbono(ctx, uuid.MustParse(pagoID), dto.AbonoRequest{
			TrabajadorID: trabajador, AsignacionID: asig, Monto: dec(monto),
		})
		require.NoError(t, err)
	}
	cobrar(dia1, p1.Pagos[0].ID, "125")
	// esperado = 3000 - 1200 + 125
	_, err = f.asignaciones.Reconciliar(ctx, f.admin, dia1, dto.ReconciliarRequest{MontoDevuelto: dec("1920")})
	require.NoError(t, err)

	f.reloj.Avanzar(24 * time.Hour)
	dia2 := f.asignar(t, trabajador, cajaID, "1000")
	cobrar(dia2, p1.Pagos[1].ID, "125")
	cobrar(dia2, p2.Pagos[0].ID, "100")

	r, err := f.asignaciones.Productividad(ctx, trabajador, desde, f.reloj.Ahora())
	require.NoError(t, err)
	assert.Equal(t, 2, r.DiasTrabajados)
	assert.Equal(t, 2, r.TotalPrestamos)
	assert.True(t, dec("1200").Equal(r.MontoPrestado))
	assert.Equal(t, 3, r.TotalCobros)
	assert.True(t, dec("350").Equal(r.MontoRecaudado))
	assert.Equal(t, 2, r.ClientesAtendidos)
	assert.True(t, dec("-5").Equal(r.Diferencia))
	assert.True(t, dec("1.5").Equal(r.PromedioCobrosDiario))
	assert.True(t, dec("175").Equal(r.PromedioRecaudacionDiaria))

	require.Len(t, r.Dias, 2)
	d1, d2 := r.Dias[0], r.Dias[1]
	assert.Equal(t, desde.Format("2006-01-02"), d1.Fecha)
	assert.Equal(t, 2, d1.Prestamos)
	assert.Equal(t, 1, d1.Cobros)
	assert.Equal(t, 1, d1.ClientesAtendidos)
	assert.True(t, dec("3000").Equal(d1.MontoAsignado))
	assert.Equal(t, 0, d2.Prestamos)
	assert.Equal(t, 2, d2.Cobros)
	assert.Equal(t, 2, d2.ClientesAtendidos)
	assert.True(t, dec("225").Equal(d2.MontoRecaudado))
	assert.True(t, d2.Diferencia.IsZero())

	soloAyer, err := f.asignaciones.Productividad(ctx, trabajador, desde, desde)
	require.NoError(t, err)
	assert.Equal(t, 1, soloAyer.DiasTrabajados)
	assert.True(t, dec("125").Equal(soloAyer.MontoRecaudado))
}

func TestProductividad_Rango(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	trabajador := f.nuevoTrabajador(true)
	hoy := f.reloj.Ahora()

	vacio, err := f.asignaciones.Productividad(ctx, trabajador, hoy.AddDate(0, 0, -6), hoy)
	require.NoError(t, err)
	assert.Zero(t, vacio.DiasTrabajados)
	assert.NotNil(t, vacio.Dias)
	assert.True(t, vacio.PromedioRecaudacionDiaria.IsZero())

	var verr *ValidacionError
	_, err = f.asignaciones.Productividad(ctx, trabajador, hoy, hoy.AddDate(0, 0, -1))
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "hasta", verr.Campo)

	_, err = f.asignaciones.Productividad(ctx, trabajador, hoy.AddDate(0, 0, -100), hoy)
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "desde", verr.Campo)
}
