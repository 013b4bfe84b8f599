package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"cobranza/internal/dto"
	"cobranza/internal/infra"
	"cobranza/internal/model"
	"cobranza/internal/money"
	"cobranza/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type AsignacionService interface {
	Asignar(ctx context.Context, actor uuid.UUID, req dto.AsignarRequest) (*dto.AsignacionResponse, error)
	Reconciliar(ctx context.Context, actor, asignacionID uuid.UUID, req dto.ReconciliarRequest) (*dto.ConciliacionResponse, error)
	Cancelar(ctx context.Context, actor, asignacionID uuid.UUID, req dto.CancelarAsignacionRequest) (*dto.AsignacionResponse, error)
	Obtener(ctx context.Context, asignacionID uuid.UUID) (*dto.AsignacionResponse, error)
	Balance(ctx context.Context, asignacionID uuid.UUID) (*dto.BalanceAsignacionResponse, error)
	ListarDelDia(ctx context.Context, fecha time.Time) (*dto.AsignacionesDiaResponse, error)
	ListarPorTrabajador(ctx context.Context, trabajadorID uuid.UUID, filtro dto.FiltroAsignaciones) (*dto.AsignacionesTrabajadorResponse, error)
	// Productividad aggregates a worker's assignment ledgers per day between
	// desde and hasta, both inclusive.
	Productividad(ctx context.Context, trabajadorID uuid.UUID, desde, hasta time.Time) (*dto.ProductividadResponse, error)

	// RegistrarPrestamo and RegistrarCobro run inside the caller's
	// transaction (PrestamoService, PagoService). They lock the assignment row.
	RegistrarPrestamo(ctx context.Context, tx *gorm.DB, asignacionID, prestamoID uuid.UUID, monto decimal.Decimal, tipo string) (*model.AsignacionDinero, error)
	RegistrarCobro(ctx context.Context, tx *gorm.DB, asignacionID, trabajadorID, pagoID, clienteID uuid.UUID, monto decimal.Decimal) (*model.AsignacionDinero, error)
}

type asignacionService struct {
	repo       repository.AsignacionRepository
	cajas      repository.CajaRepository
	directorio repository.DirectorioRepository
	reloj      Reloj
	metrics    *infra.Metrics
	reintentos Reintentos
}

func NewAsignacionService(
	repo repository.AsignacionRepository,
	cajas repository.CajaRepository,
	directorio repository.DirectorioRepository,
	reloj Reloj,
	metrics *infra.Metrics,
	params Parametros,
) AsignacionService {
	return &asignacionService{
		repo:       repo,
		cajas:      cajas,
		directorio: directorio,
		reloj:      reloj,
		metrics:    metrics,
		reintentos: params.Reintentos,
	}
}

// ── Asignar ───────────────────────────────────────────────────────────────────
// Upsert per (trabajador, día): tops up the active assignment or opens a new
// one. Each call posts its own asignacion movement.

func (s *asignacionService) Asignar(ctx context.Context, actor uuid.UUID, req dto.AsignarRequest) (*dto.AsignacionResponse, error) {
	if actor == uuid.Nil {
		return nil, validacion("actor", "requerido")
	}
	monto := money.R2(req.Monto)
	if !monto.IsPositive() {
		return nil, validacion("monto", "debe ser mayor a cero")
	}

	trabajador, err := s.directorio.FindTrabajador(ctx, req.TrabajadorID)
	if err != nil {
		return nil, buscar(err, "trabajador", req.TrabajadorID)
	}
	if !trabajador.Activo {
		return nil, precondicion(ErrTrabajadorInactivo)
	}

	ahora := s.reloj.Ahora()
	fecha := model.DiaDe(ahora)
	trabajadorID := trabajador.ID

	var out *model.AsignacionDinero
	var caja *model.Caja
	err = conReintentos(ctx, s.reintentos, s.metrics, "caja", func() error {
		return runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
			a, err := s.repo.FindActiva(ctx, tx, trabajadorID, fecha)
			nueva := false
			switch {
			case errors.Is(err, gorm.ErrRecordNotFound):
				nueva = true
				a = &model.AsignacionDinero{
					ID:           uuid.New(),
					CajaID:       req.CajaID,
					TrabajadorID: trabajadorID,
					Fecha:        fecha,
					Estado:       model.AsignacionPendiente,
					AsignadoPor:  actor,
					Notas:        req.Notas,
				}
			case err != nil:
				return fmt.Errorf("buscar asignación activa: %w", err)
			case a.CajaID != req.CajaID:
				return precondicion(ErrCajaDistinta)
			}

			c, _, err := postear(ctx, tx, s.cajas, asiento{
				cajaID:       req.CajaID,
				tipo:         model.MovAsignacion,
				monto:        monto,
				descripcion:  "Asignación a " + trabajador.NombreCompleto,
				trabajadorID: &trabajadorID,
				actor:        actor,
			}, ahora)
			if err != nil {
				return err
			}

			a.MontoAsignado = money.R2(a.MontoAsignado.Add(monto))
			if nueva {
				err = s.repo.Create(ctx, tx, a)
			} else {
				if req.Notas != "" {
					a.Notas = strings.TrimSpace(a.Notas + "\n" + req.Notas)
				}
				err = s.repo.Update(ctx, tx, a)
			}
			if err != nil {
				return err
			}
			out, caja = a, c
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	s.metrics.MovimientoRegistrado(model.MovAsignacion, caja.Periodo().String(), caja.MontoActual)
	log.Info().Str("asignacion_id", out.ID.String()).Str("trabajador_id", trabajadorID.String()).
		Str("monto", monto.StringFixed(2)).Str("total", out.MontoAsignado.StringFixed(2)).
		Msg("dinero asignado")
	resp := toAsignacionResponse(out)
	return &resp, nil
}

// ── Préstamos y cobros ────────────────────────────────────────────────────────

func (s *asignacionService) bloquearActiva(ctx context.Context, tx *gorm.DB, asignacionID uuid.UUID) (*model.AsignacionDinero, error) {
	a, err := s.repo.FindByIDForUpdate(ctx, tx, asignacionID)
	if err != nil {
		return nil, buscar(err, "asignación", asignacionID)
	}
	switch a.Estado {
	case model.AsignacionPendiente, model.AsignacionParcial:
		return a, nil
	case model.AsignacionCompletada:
		return nil, precondicion(ErrAsignacionCompletada)
	default:
		return nil, precondicion(ErrAsignacionInactiva)
	}
}

func (s *asignacionService) RegistrarPrestamo(ctx context.Context, tx *gorm.DB, asignacionID, prestamoID uuid.UUID, monto decimal.Decimal, tipo string) (*model.AsignacionDinero, error) {
	monto = money.R2(monto)
	a, err := s.bloquearActiva(ctx, tx, asignacionID)
	if err != nil {
		return nil, err
	}
	if f := a.Faltante(monto); f.IsPositive() {
		return nil, faltante(ErrFondosInsuficientesAsignacion, a.Disponible(), monto)
	}

	ref := a.AgregarPrestamo(prestamoID, monto, tipo, s.reloj.Ahora())
	if err := s.repo.AddPrestamo(ctx, tx, &ref); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, tx, a); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *asignacionService) RegistrarCobro(ctx context.Context, tx *gorm.DB, asignacionID, trabajadorID, pagoID, clienteID uuid.UUID, monto decimal.Decimal) (*model.AsignacionDinero, error) {
	a, err := s.bloquearActiva(ctx, tx, asignacionID)
	if err != nil {
		return nil, err
	}
	if a.TrabajadorID != trabajadorID {
		return nil, validacion("asignacion_id", "la asignación no pertenece al trabajador")
	}

	ref := a.AgregarCobro(pagoID, clienteID, monto, s.reloj.Ahora())
	if err := s.repo.AddCobro(ctx, tx, &ref); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, tx, a); err != nil {
		return nil, err
	}
	return a, nil
}

// ── Reconciliar ───────────────────────────────────────────────────────────────
// End of day: the worker hands back what is left plus what was collected.

func (s *asignacionService) Reconciliar(ctx context.Context, actor, asignacionID uuid.UUID, req dto.ReconciliarRequest) (*dto.ConciliacionResponse, error) {
	if actor == uuid.Nil {
		return nil, validacion("actor", "requerido")
	}
	devuelto := money.R2(req.MontoDevuelto)
	if devuelto.IsNegative() {
		return nil, validacion("monto_devuelto", "no puede ser negativo")
	}
	ahora := s.reloj.Ahora()

	var out *model.AsignacionDinero
	var caja *model.Caja
	err := conReintentos(ctx, s.reintentos, s.metrics, "caja", func() error {
		return runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
			a, err := s.bloquearActiva(ctx, tx, asignacionID)
			if err != nil {
				return err
			}
			trabajadorID := a.TrabajadorID
			var c *model.Caja
			if devuelto.IsPositive() {
				c, _, err = postear(ctx, tx, s.cajas, asiento{
					cajaID:       a.CajaID,
					tipo:         model.MovDevolucion,
					monto:        devuelto,
					descripcion:  "Devolución de asignación del " + a.Fecha.Format("2006-01-02"),
					trabajadorID: &trabajadorID,
					actor:        actor,
				}, ahora)
				if err != nil {
					return err
				}
			}

			a.Cerrar(devuelto, req.Observaciones, actor, ahora)
			if err := s.repo.Update(ctx, tx, a); err != nil {
				return err
			}
			out, caja = a, c
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	diferencia := *out.Devolucion.Diferencia
	if caja != nil {
		s.metrics.MovimientoRegistrado(model.MovDevolucion, caja.Periodo().String(), caja.MontoActual)
	}
	s.metrics.Conciliacion(diferencia)

	evt := log.Info()
	if !diferencia.IsZero() {
		evt = log.Warn()
	}
	evt.Str("asignacion_id", out.ID.String()).Str("esperado", out.Devolucion.MontoEsperado.StringFixed(2)).
		Str("devuelto", devuelto.StringFixed(2)).Str("diferencia", diferencia.StringFixed(2)).
		Msg("asignación conciliada")

	return &dto.ConciliacionResponse{
		Asignacion:    toAsignacionResponse(out),
		MontoEsperado: *out.Devolucion.MontoEsperado,
		MontoDevuelto: devuelto,
		Diferencia:    diferencia,
	}, nil
}

// ── Cancelar ──────────────────────────────────────────────────────────────────
// Only an untouched assignment can be cancelled; the full amount goes back to
// the box as a devolucion.

func (s *asignacionService) Cancelar(ctx context.Context, actor, asignacionID uuid.UUID, req dto.CancelarAsignacionRequest) (*dto.AsignacionResponse, error) {
	if actor == uuid.Nil {
		return nil, validacion("actor", "requerido")
	}
	motivo := strings.TrimSpace(req.Motivo)
	if motivo == "" {
		return nil, validacion("motivo", "requerido")
	}
	ahora := s.reloj.Ahora()

	var out *model.AsignacionDinero
	err := conReintentos(ctx, s.reintentos, s.metrics, "caja", func() error {
		return runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
			a, err := s.bloquearActiva(ctx, tx, asignacionID)
			if err != nil {
				return err
			}
			if !a.MontoUtilizado.IsZero() || !a.MontoRecaudado.IsZero() {
				return precondicion(ErrAsignacionConMovimientos)
			}
			trabajadorID := a.TrabajadorID
			if _, _, err := postear(ctx, tx, s.cajas, asiento{
				cajaID:       a.CajaID,
				tipo:         model.MovDevolucion,
				monto:        a.MontoAsignado,
				descripcion:  "Cancelación de asignación: " + motivo,
				trabajadorID: &trabajadorID,
				actor:        actor,
			}, ahora); err != nil {
				return err
			}

			a.MontoDevuelto = a.MontoAsignado
			a.Estado = model.AsignacionCancelada
			a.Notas = strings.TrimSpace(a.Notas + "\nCancelada: " + motivo)
			if err := s.repo.Update(ctx, tx, a); err != nil {
				return err
			}
			out = a
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	log.Info().Str("asignacion_id", out.ID.String()).Str("monto", out.MontoAsignado.StringFixed(2)).
		Msg("asignación cancelada")
	resp := toAsignacionResponse(out)
	return &resp, nil
}

// ── Consultas ─────────────────────────────────────────────────────────────────

func (s *asignacionService) Obtener(ctx context.Context, asignacionID uuid.UUID) (*dto.AsignacionResponse, error) {
	a, err := s.repo.FindByID(ctx, asignacionID)
	if err != nil {
		return nil, buscar(err, "asignación", asignacionID)
	}
	resp := toAsignacionResponse(a)
	return &resp, nil
}

func (s *asignacionService) Balance(ctx context.Context, asignacionID uuid.UUID) (*dto.BalanceAsignacionResponse, error) {
	a, err := s.repo.FindByID(ctx, asignacionID)
	if err != nil {
		return nil, buscar(err, "asignación", asignacionID)
	}
	return &dto.BalanceAsignacionResponse{
		AsignacionID:          a.ID.String(),
		Estado:                a.Estado,
		MontoAsignado:         a.MontoAsignado,
		MontoUtilizado:        a.MontoUtilizado,
		MontoRecaudado:        a.MontoRecaudado,
		Disponible:            a.Disponible(),
		Esperado:              a.Esperado(),
		PorcentajeUtilizacion: money.Porcentaje(a.MontoUtilizado, a.MontoAsignado),
		Rendimiento:           money.Porcentaje(a.MontoRecaudado, a.MontoUtilizado),
		Prestamos:             len(a.Prestamos),
		Cobros:                len(a.Cobros),
	}, nil
}

func (s *asignacionService) ListarDelDia(ctx context.Context, fecha time.Time) (*dto.AsignacionesDiaResponse, error) {
	dia := model.DiaDe(fecha)
	lista, err := s.repo.ListByFecha(ctx, dia)
	if err != nil {
		return nil, err
	}
	resp := &dto.AsignacionesDiaResponse{
		Fecha:          dia.Format("2006-01-02"),
		Data:           make([]dto.AsignacionResponse, 0, len(lista)),
		TotalAsignado:  decimal.Zero,
		TotalUtilizado: decimal.Zero,
		TotalRecaudado: decimal.Zero,
		TotalDevuelto:  decimal.Zero,
	}
	for i := range lista {
		a := &lista[i]
		resp.Data = append(resp.Data, toAsignacionResponse(a))
		resp.TotalAsignado = resp.TotalAsignado.Add(a.MontoAsignado)
		resp.TotalUtilizado = resp.TotalUtilizado.Add(a.MontoUtilizado)
		resp.TotalRecaudado = resp.TotalRecaudado.Add(a.MontoRecaudado)
		resp.TotalDevuelto = resp.TotalDevuelto.Add(a.MontoDevuelto)
	}
	return resp, nil
}

// ── ListarPorTrabajador ───────────────────────────────────────────────────────

var estadosAsignacion = map[string]bool{
	model.AsignacionPendiente:  true,
	model.AsignacionParcial:    true,
	model.AsignacionCompletada: true,
	model.AsignacionCancelada:  true,
}

func (s *asignacionService) ListarPorTrabajador(ctx context.Context, trabajadorID uuid.UUID, filtro dto.FiltroAsignaciones) (*dto.AsignacionesTrabajadorResponse, error) {
	if filtro.Estado != "" && !estadosAsignacion[filtro.Estado] {
		return nil, validacion("estado", "desconocido: "+filtro.Estado)
	}
	if _, err := s.directorio.FindTrabajador(ctx, trabajadorID); err != nil {
		return nil, buscar(err, "trabajador", trabajadorID)
	}
	lista, err := s.repo.ListByTrabajador(ctx, trabajadorID, filtro)
	if err != nil {
		return nil, err
	}

	resp := &dto.AsignacionesTrabajadorResponse{
		TrabajadorID:   trabajadorID.String(),
		Data:           make([]dto.AsignacionResponse, 0, len(lista)),
		Total:          len(lista),
		TotalAsignado:  decimal.Zero,
		TotalUtilizado: decimal.Zero,
		TotalRecaudado: decimal.Zero,
	}
	for i := range lista {
		a := &lista[i]
		resp.Data = append(resp.Data, toAsignacionResponse(a))
		resp.TotalAsignado = resp.TotalAsignado.Add(a.MontoAsignado)
		resp.TotalUtilizado = resp.TotalUtilizado.Add(a.MontoUtilizado)
		resp.TotalRecaudado = resp.TotalRecaudado.Add(a.MontoRecaudado)
	}
	return resp, nil
}

// ── Productividad ─────────────────────────────────────────────────────────────

const maxDiasProductividad = 92

func (s *asignacionService) Productividad(ctx context.Context, trabajadorID uuid.UUID, desde, hasta time.Time) (*dto.ProductividadResponse, error) {
	desde, hasta = model.DiaDe(desde), model.DiaDe(hasta)
	if hasta.Before(desde) {
		return nil, validacion("hasta", "anterior a desde")
	}
	if hasta.Sub(desde) > maxDiasProductividad*24*time.Hour {
		return nil, validacion("desde", fmt.Sprintf("el rango no puede superar %d días", maxDiasProductividad))
	}
	if _, err := s.directorio.FindTrabajador(ctx, trabajadorID); err != nil {
		return nil, buscar(err, "trabajador", trabajadorID)
	}
	lista, err := s.repo.ListByTrabajador(ctx, trabajadorID, dto.FiltroAsignaciones{Desde: &desde, Hasta: &hasta})
	if err != nil {
		return nil, err
	}

	porDia := make(map[string]*dto.ProductividadDiaResponse)
	clientesDia := make(map[string]map[uuid.UUID]bool)
	clientes := make(map[uuid.UUID]bool)
	resp := &dto.ProductividadResponse{
		TrabajadorID:   trabajadorID.String(),
		Desde:          desde.Format("2006-01-02"),
		Hasta:          hasta.Format("2006-01-02"),
		MontoPrestado:  decimal.Zero,
		MontoRecaudado: decimal.Zero,
		Diferencia:     decimal.Zero,
		Dias:           []dto.ProductividadDiaResponse{},
	}
	for i := range lista {
		a := &lista[i]
		if a.Estado == model.AsignacionCancelada {
			continue
		}
		fecha := a.Fecha.Format("2006-01-02")
		dia, ok := porDia[fecha]
		if !ok {
			dia = &dto.ProductividadDiaResponse{
				Fecha:          fecha,
				MontoAsignado:  decimal.Zero,
				MontoPrestado:  decimal.Zero,
				MontoRecaudado: decimal.Zero,
				Diferencia:     decimal.Zero,
			}
			porDia[fecha] = dia
			clientesDia[fecha] = make(map[uuid.UUID]bool)
		}
		dia.MontoAsignado = dia.MontoAsignado.Add(a.MontoAsignado)
		for _, p := range a.Prestamos {
			dia.Prestamos++
			dia.MontoPrestado = dia.MontoPrestado.Add(p.Monto)
		}
		for _, c := range a.Cobros {
			dia.Cobros++
			dia.MontoRecaudado = dia.MontoRecaudado.Add(c.Monto)
			clientesDia[fecha][c.ClienteID] = true
			clientes[c.ClienteID] = true
		}
		if a.Devolucion.Diferencia != nil {
			dia.Diferencia = dia.Diferencia.Add(*a.Devolucion.Diferencia)
		}
	}

	for fecha, dia := range porDia {
		dia.ClientesAtendidos = len(clientesDia[fecha])
		resp.Dias = append(resp.Dias, *dia)
		resp.TotalPrestamos += dia.Prestamos
		resp.MontoPrestado = resp.MontoPrestado.Add(dia.MontoPrestado)
		resp.TotalCobros += dia.Cobros
		resp.MontoRecaudado = resp.MontoRecaudado.Add(dia.MontoRecaudado)
		resp.Diferencia = resp.Diferencia.Add(dia.Diferencia)
	}
	sort.Slice(resp.Dias, func(i, j int) bool { return resp.Dias[i].Fecha < resp.Dias[j].Fecha })

	resp.DiasTrabajados = len(resp.Dias)
	resp.ClientesAtendidos = len(clientes)
	dias := decimal.NewFromInt(int64(max(resp.DiasTrabajados, 1)))
	resp.PromedioCobrosDiario = money.R2(decimal.NewFromInt(int64(resp.TotalCobros)).Div(dias))
	resp.PromedioRecaudacionDiaria = money.R2(resp.MontoRecaudado.Div(dias))
	return resp, nil
}
