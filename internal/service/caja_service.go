package service

import (
	"context"
	"errors"
	"fmt"
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

type CajaService interface {
	Abrir(ctx context.Context, actor uuid.UUID, req dto.AbrirCajaRequest) (*dto.CajaResponse, error)
	Actual(ctx context.Context) (*dto.CajaResponse, error)
	Balance(ctx context.Context, cajaID uuid.UUID) (*dto.CajaResponse, error)
	RegistrarMovimiento(ctx context.Context, actor, cajaID uuid.UUID, req dto.MovimientoRequest) (*dto.MovimientoResponse, error)
	Cerrar(ctx context.Context, actor, cajaID uuid.UUID) (*dto.CierreCajaResponse, error)
	ListarMovimientos(ctx context.Context, cajaID uuid.UUID, filtro dto.FiltroMovimientos) (*dto.MovimientosPage, error)
	ResumenDia(ctx context.Context, cajaID uuid.UUID, fecha time.Time) (*dto.ResumenDiaResponse, error)
	Historial(ctx context.Context, anio int) ([]dto.CajaResponse, error)
	Auditar(ctx context.Context, cajaID uuid.UUID) (*dto.AuditoriaResponse, error)
	// RegistrarPrestamo is called by PrestamoService inside its transaction.
	RegistrarPrestamo(ctx context.Context, tx *gorm.DB, cajaID uuid.UUID, monto decimal.Decimal) error
}

type cajaService struct {
	repo         repository.CajaRepository
	asignaciones repository.AsignacionRepository
	reloj        Reloj
	metrics      *infra.Metrics
	reintentos   Reintentos
}

func NewCajaService(repo repository.CajaRepository, asignaciones repository.AsignacionRepository, reloj Reloj, metrics *infra.Metrics, params Parametros) CajaService {
	return &cajaService{
		repo:         repo,
		asignaciones: asignaciones,
		reloj:        reloj,
		metrics:      metrics,
		reintentos:   params.Reintentos,
	}
}

// ── Asientos ──────────────────────────────────────────────────────────────────
// Every change to MontoActual goes through postear. The caller runs it inside
// runTx and wraps the transaction with conReintentos.

type asiento struct {
	cajaID       uuid.UUID
	tipo         string
	monto        decimal.Decimal
	descripcion  string
	trabajadorID *uuid.UUID
	actor        uuid.UUID
}

func postear(ctx context.Context, tx *gorm.DB, repo repository.CajaRepository, a asiento, ahora time.Time) (*model.Caja, *model.MovimientoCaja, error) {
	caja, err := repo.FindByIDTx(ctx, tx, a.cajaID)
	if err != nil {
		return nil, nil, buscar(err, "caja", a.cajaID)
	}
	if caja.Estado != model.CajaAbierta {
		return nil, nil, precondicion(ErrCajaCerrada)
	}

	monto := money.R2(a.monto)
	if efecto := model.EfectoMovimiento(a.tipo, monto); efecto.IsNegative() && efecto.Neg().GreaterThan(caja.MontoActual) {
		return nil, nil, faltante(ErrFondosInsuficientesCaja, caja.MontoActual, efecto.Neg())
	}

	version := caja.Version
	mov := caja.Aplicar(a.tipo, monto)
	mov.Descripcion = a.descripcion
	mov.Responsable = a.actor
	mov.TrabajadorID = a.trabajadorID
	mov.CreatedAt = ahora
	if err := repo.GuardarMovimiento(ctx, tx, caja, version, &mov); err != nil {
		return nil, nil, err
	}
	return caja, &mov, nil
}

// ── Abrir ─────────────────────────────────────────────────────────────────────

func (s *cajaService) Abrir(ctx context.Context, actor uuid.UUID, req dto.AbrirCajaRequest) (*dto.CajaResponse, error) {
	if actor == uuid.Nil {
		return nil, validacion("actor", "requerido")
	}
	periodo := model.Periodo{Mes: req.Mes, Anio: req.Anio}
	if !periodo.Valido() {
		return nil, validacion("mes", "período inválido")
	}
	inicial := money.R2(req.MontoInicial)
	if inicial.IsNegative() {
		return nil, validacion("monto_inicial", "no puede ser negativo")
	}

	if _, err := s.repo.FindByPeriodo(ctx, periodo); err == nil {
		return nil, precondicion(ErrPeriodoDuplicado)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("buscar caja: %w", err)
	}

	caja := &model.Caja{
		ID:           uuid.New(),
		Mes:          periodo.Mes,
		Anio:         periodo.Anio,
		MontoInicial: inicial,
		MontoActual:  inicial,
		Estado:       model.CajaAbierta,
		CreadoPor:    actor,
	}
	if err := s.repo.Create(ctx, caja); err != nil {
		if errors.Is(err, repository.ErrDuplicado) {
			return nil, precondicion(ErrPeriodoDuplicado)
		}
		return nil, err
	}

	log.Info().Str("caja_id", caja.ID.String()).Str("periodo", periodo.String()).
		Str("monto_inicial", inicial.StringFixed(2)).Msg("caja abierta")
	resp := toCajaResponse(caja)
	return &resp, nil
}

// ── Consultas ─────────────────────────────────────────────────────────────────

func (s *cajaService) Actual(ctx context.Context) (*dto.CajaResponse, error) {
	periodo := model.PeriodoDe(s.reloj.Ahora())
	caja, err := s.repo.FindByPeriodo(ctx, periodo)
	if err != nil {
		return nil, buscar(err, "caja", periodo)
	}
	resp := toCajaResponse(caja)
	return &resp, nil
}

func (s *cajaService) Balance(ctx context.Context, cajaID uuid.UUID) (*dto.CajaResponse, error) {
	caja, err := s.repo.FindByID(ctx, cajaID)
	if err != nil {
		return nil, buscar(err, "caja", cajaID)
	}
	resp := toCajaResponse(caja)
	return &resp, nil
}

func (s *cajaService) Historial(ctx context.Context, anio int) ([]dto.CajaResponse, error) {
	cajas, err := s.repo.ListByAnio(ctx, anio)
	if err != nil {
		return nil, err
	}
	out := make([]dto.CajaResponse, 0, len(cajas))
	for i := range cajas {
		out = append(out, toCajaResponse(&cajas[i]))
	}
	return out, nil
}

func (s *cajaService) ListarMovimientos(ctx context.Context, cajaID uuid.UUID, filtro dto.FiltroMovimientos) (*dto.MovimientosPage, error) {
	if _, err := s.repo.FindByID(ctx, cajaID); err != nil {
		return nil, buscar(err, "caja", cajaID)
	}
	if filtro.Page < 1 {
		filtro.Page = 1
	}
	movs, total, err := s.repo.ListMovimientos(ctx, cajaID, filtro)
	if err != nil {
		return nil, err
	}
	data := make([]dto.MovimientoResponse, 0, len(movs))
	for i := range movs {
		data = append(data, toMovimientoResponse(&movs[i]))
	}
	return &dto.MovimientosPage{Data: data, Total: total, Page: filtro.Page, Limit: filtro.Limit}, nil
}

// ── RegistrarMovimiento ───────────────────────────────────────────────────────
// Manual postings only: ingreso, egreso and ajuste. An ajuste carries its sign.

func (s *cajaService) RegistrarMovimiento(ctx context.Context, actor, cajaID uuid.UUID, req dto.MovimientoRequest) (*dto.MovimientoResponse, error) {
	if actor == uuid.Nil {
		return nil, validacion("actor", "requerido")
	}
	monto := money.R2(req.Monto)
	switch req.Tipo {
	case model.MovIngreso, model.MovEgreso:
		if !monto.IsPositive() {
			return nil, validacion("monto", "debe ser mayor a cero")
		}
	case model.MovAjuste:
		if monto.IsZero() {
			return nil, validacion("monto", "un ajuste no puede ser cero")
		}
	default:
		return nil, validacion("tipo", "debe ser ingreso, egreso o ajuste")
	}
	if len(req.Descripcion) < 3 {
		return nil, validacion("descripcion", "requerida")
	}

	ahora := s.reloj.Ahora()
	a := asiento{
		cajaID:       cajaID,
		tipo:         req.Tipo,
		monto:        monto,
		descripcion:  req.Descripcion,
		trabajadorID: req.TrabajadorID,
		actor:        actor,
	}

	var caja *model.Caja
	var mov *model.MovimientoCaja
	err := conReintentos(ctx, s.reintentos, s.metrics, "caja", func() error {
		return runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
			var err error
			caja, mov, err = postear(ctx, tx, s.repo, a, ahora)
			return err
		})
	})
	if err != nil {
		return nil, err
	}

	s.metrics.MovimientoRegistrado(mov.Tipo, caja.Periodo().String(), caja.MontoActual)
	log.Info().Str("caja_id", cajaID.String()).Str("tipo", mov.Tipo).Int64("secuencia", mov.Secuencia).
		Str("monto", mov.Monto.StringFixed(2)).Str("balance", mov.BalanceNuevo.StringFixed(2)).
		Msg("movimiento de caja registrado")
	resp := toMovimientoResponse(mov)
	return &resp, nil
}

// ── Cerrar ────────────────────────────────────────────────────────────────────

func (s *cajaService) Cerrar(ctx context.Context, actor, cajaID uuid.UUID) (*dto.CierreCajaResponse, error) {
	if actor == uuid.Nil {
		return nil, validacion("actor", "requerido")
	}
	ahora := s.reloj.Ahora()

	var caja *model.Caja
	err := conReintentos(ctx, s.reintentos, s.metrics, "caja", func() error {
		return runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
			c, err := s.repo.FindByIDTx(ctx, tx, cajaID)
			if err != nil {
				return buscar(err, "caja", cajaID)
			}
			if c.Estado != model.CajaAbierta {
				return precondicion(ErrCajaCerrada)
			}
			pendientes, err := s.asignaciones.CountActivasByCaja(ctx, tx, cajaID)
			if err != nil {
				return err
			}
			if pendientes > 0 {
				return &PrecondicionError{Causa: ErrAsignacionesPendientes, Pendientes: int(pendientes)}
			}

			bruta := money.R2(c.MontoRecaudado.Sub(c.MontoPrestado))
			neta := money.R2(c.MontoActual.Sub(c.MontoInicial))
			cerradoPor := actor
			fecha := ahora
			version := c.Version
			c.Estado = model.CajaCerrada
			c.GananciaBruta = &bruta
			c.GananciaNeta = &neta
			c.CerradoPor = &cerradoPor
			c.FechaCierre = &fecha
			if err := s.repo.Cerrar(ctx, tx, c, version); err != nil {
				return err
			}
			caja = c
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	log.Info().Str("caja_id", cajaID.String()).Str("periodo", caja.Periodo().String()).
		Str("ganancia_neta", caja.GananciaNeta.StringFixed(2)).Msg("caja cerrada")
	return &dto.CierreCajaResponse{
		Caja:          toCajaResponse(caja),
		GananciaBruta: *caja.GananciaBruta,
		GananciaNeta:  *caja.GananciaNeta,
		CerradoPor:    actor.String(),
		FechaCierre:   ahora,
	}, nil
}

// ── ResumenDia ────────────────────────────────────────────────────────────────

func (s *cajaService) ResumenDia(ctx context.Context, cajaID uuid.UUID, fecha time.Time) (*dto.ResumenDiaResponse, error) {
	if _, err := s.repo.FindByID(ctx, cajaID); err != nil {
		return nil, buscar(err, "caja", cajaID)
	}
	desde := model.DiaDe(fecha)
	hasta := desde.AddDate(0, 0, 1)
	movs, _, err := s.repo.ListMovimientos(ctx, cajaID, dto.FiltroMovimientos{Desde: &desde, Hasta: &hasta})
	if err != nil {
		return nil, err
	}

	resp := &dto.ResumenDiaResponse{
		CajaID:       cajaID.String(),
		Fecha:        desde.Format("2006-01-02"),
		Ingresos:     decimal.Zero,
		Egresos:      decimal.Zero,
		Asignaciones: decimal.Zero,
		Devoluciones: decimal.Zero,
		Ajustes:      decimal.Zero,
		Neto:         decimal.Zero,
		Movimientos:  len(movs),
	}
	for _, m := range movs {
		switch m.Tipo {
		case model.MovIngreso:
			resp.Ingresos = resp.Ingresos.Add(m.Monto)
		case model.MovEgreso:
			resp.Egresos = resp.Egresos.Add(m.Monto)
		case model.MovAsignacion:
			resp.Asignaciones = resp.Asignaciones.Add(m.Monto)
		case model.MovDevolucion:
			resp.Devoluciones = resp.Devoluciones.Add(m.Monto)
		case model.MovAjuste:
			resp.Ajustes = resp.Ajustes.Add(m.Monto)
		}
		resp.Neto = resp.Neto.Add(model.EfectoMovimiento(m.Tipo, m.Monto))
	}
	return resp, nil
}

// ── Auditar ───────────────────────────────────────────────────────────────────
// Replays the movement log against MontoInicial. Only movements up to the
// version read are replayed, so postings committed after that read are not
// counted against the stored balance. A drifted open box is flagged with
// estado auditoria under the same version it was read at.

func (s *cajaService) Auditar(ctx context.Context, cajaID uuid.UUID) (*dto.AuditoriaResponse, error) {
	var resp *dto.AuditoriaResponse
	err := conReintentos(ctx, s.reintentos, s.metrics, "caja", func() error {
		caja, err := s.repo.FindByID(ctx, cajaID)
		if err != nil {
			return buscar(err, "caja", cajaID)
		}
		todos, _, err := s.repo.ListMovimientos(ctx, cajaID, dto.FiltroMovimientos{})
		if err != nil {
			return err
		}
		movs := make([]model.MovimientoCaja, 0, len(todos))
		for _, m := range todos {
			if m.Secuencia <= caja.Version {
				movs = append(movs, m)
			}
		}

		replay := caja.Replay(movs)
		diferencia := money.R2(caja.MontoActual.Sub(replay))
		consistente := diferencia.IsZero()
		if !consistente && caja.Estado == model.CajaAbierta {
			if err := s.repo.MarcarAuditoria(ctx, cajaID, caja.Version); err != nil {
				return err
			}
			caja.Estado = model.CajaAuditoria
			log.Error().Str("caja_id", cajaID.String()).Str("registrado", caja.MontoActual.StringFixed(2)).
				Str("replay", replay.StringFixed(2)).Msg("caja inconsistente, marcada para auditoría")
		}

		resp = &dto.AuditoriaResponse{
			CajaID:          cajaID.String(),
			MontoRegistrado: caja.MontoActual,
			MontoReplay:     replay,
			Diferencia:      diferencia,
			Movimientos:     len(movs),
			Consistente:     consistente,
			Estado:          caja.Estado,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// ── RegistrarPrestamo ─────────────────────────────────────────────────────────

func (s *cajaService) RegistrarPrestamo(ctx context.Context, tx *gorm.DB, cajaID uuid.UUID, monto decimal.Decimal) error {
	if err := s.repo.IncrementarPrestado(ctx, tx, cajaID, money.R2(monto)); err != nil {
		return buscar(err, "caja", cajaID)
	}
	return nil
}
