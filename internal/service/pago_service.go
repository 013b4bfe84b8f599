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

// Encolador schedules background work once a transaction has committed.
// worker.Dispatcher implements it.
type Encolador interface {
	EncolarRecuperacion(ctx context.Context, prestamoID uuid.UUID) error
}

type PagoService interface {
	AplicarAbono(ctx context.Context, pagoID uuid.UUID, req dto.AbonoRequest) (*dto.AplicacionAbonoResponse, error)
	Obtener(ctx context.Context, pagoID uuid.UUID) (*dto.PagoResponse, error)
	// RutaCobro lists what a worker has to collect on fecha.
	RutaCobro(ctx context.Context, trabajadorID uuid.UUID, fecha time.Time) (*dto.RutaCobroResponse, error)
}

type pagoService struct {
	repo         repository.PagoRepository
	prestamos    repository.PrestamoRepository
	moratorios   repository.MoratorioRepository
	asignaciones AsignacionService
	directorio   repository.DirectorioRepository
	reloj        Reloj
	metrics      *infra.Metrics
	jobs         Encolador // optional
}

func NewPagoService(
	repo repository.PagoRepository,
	prestamos repository.PrestamoRepository,
	moratorios repository.MoratorioRepository,
	asignaciones AsignacionService,
	directorio repository.DirectorioRepository,
	reloj Reloj,
	metrics *infra.Metrics,
	jobs Encolador,
) PagoService {
	return &pagoService{
		repo:         repo,
		prestamos:    prestamos,
		moratorios:   moratorios,
		asignaciones: asignaciones,
		directorio:   directorio,
		reloj:        reloj,
		metrics:      metrics,
		jobs:         jobs,
	}
}

// reparto is the split of a collected amount between late fee and principal.
type reparto struct {
	moratorio decimal.Decimal
	capital   decimal.Decimal
}

func (r reparto) total() decimal.Decimal { return r.moratorio.Add(r.capital) }

// repartir applies monto to the late fee first and the rest to the
// installment balance. The caller has already rejected overpayment.
func repartir(monto, saldo, moratorio decimal.Decimal) reparto {
	aMoratorio := money.R2(money.Min(monto, moratorio))
	aCapital := money.R2(money.Min(monto.Sub(aMoratorio), saldo))
	return reparto{moratorio: aMoratorio, capital: money.NoNegativo(aCapital)}
}

// ── AplicarAbono ──────────────────────────────────────────────────────────────

func (s *pagoService) AplicarAbono(ctx context.Context, pagoID uuid.UUID, req dto.AbonoRequest) (*dto.AplicacionAbonoResponse, error) {
	if req.TrabajadorID == uuid.Nil {
		return nil, validacion("trabajador_id", "requerido")
	}
	if req.AsignacionID == uuid.Nil {
		return nil, validacion("asignacion_id", "requerido")
	}
	monto := money.R2(req.Monto)
	if !monto.IsPositive() {
		return nil, validacion("monto", "debe ser mayor a cero")
	}
	ahora := s.reloj.Ahora()

	var (
		pago      *model.Pago
		prestamo  *model.Prestamo
		mor       *model.Moratorio
		r         reparto
		renovable bool
		linea     = decimal.Zero
	)
	err := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		var err error
		pago, err = s.repo.FindByIDForUpdate(ctx, tx, pagoID)
		if err != nil {
			return buscar(err, "pago", pagoID)
		}
		if pago.Estado == model.PagoCompleto {
			return precondicion(ErrPagoCompletado)
		}
		prestamo, err = s.prestamos.FindByIDForUpdate(ctx, tx, pago.PrestamoID)
		if err != nil {
			return buscar(err, "préstamo", pago.PrestamoID)
		}
		mor, err = s.moratorios.FindActivoByPago(ctx, tx, pago.ID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			mor = nil
		} else if err != nil {
			return fmt.Errorf("buscar moratorio: %w", err)
		}

		deuda := money.R2(pago.SaldoPendiente.Add(mor.Efectivo()))
		if money.Excede(monto, deuda) {
			return faltante(ErrSobrepago, deuda, monto)
		}
		r = repartir(monto, pago.SaldoPendiente, mor.Efectivo())

		if _, err := s.asignaciones.RegistrarCobro(ctx, tx, req.AsignacionID, req.TrabajadorID, pago.ID, prestamo.ClienteID, r.total()); err != nil {
			return err
		}

		if mor != nil && r.moratorio.IsPositive() {
			mor.Monto = money.NoNegativo(money.R2(mor.Monto.Sub(r.moratorio)))
			if err := s.moratorios.Update(ctx, tx, mor); err != nil {
				return err
			}
		}

		trabajador := req.TrabajadorID
		pago.MontoMoratorio = money.NoNegativo(pago.MontoMoratorio.Sub(r.moratorio))
		pago.MontoAbonado = pago.MontoAbonado.Add(r.capital)
		pago.TrabajadorCobro = &trabajador
		pago.Recalcular(ahora)

		abono := model.AbonoPago{
			PagoID:         pago.ID,
			Secuencia:      len(pago.Historial) + 1,
			Monto:          r.total(),
			AbonoCapital:   r.capital,
			AbonoMoratorio: r.moratorio,
			TrabajadorID:   trabajador,
			Observaciones:  req.Observaciones,
			Fecha:          ahora,
		}
		if err := s.repo.AddAbono(ctx, tx, &abono); err != nil {
			return err
		}
		pago.Historial = append(pago.Historial, abono)
		if err := s.repo.Update(ctx, tx, pago); err != nil {
			return err
		}

		if pago.Estado == model.PagoCompleto && pago.NumeroPago >= prestamo.PagoMinimoRenovacion && !prestamo.PuedeRenovar {
			prestamo.PuedeRenovar = true
			if err := s.prestamos.Update(ctx, tx, prestamo); err != nil {
				return err
			}
			if inc := prestamo.IncrementoLineaCredito; inc.IsPositive() {
				if err := s.directorio.IncrementarLineaCredito(ctx, tx, prestamo.ClienteID, inc); err != nil {
					return buscar(err, "cliente", prestamo.ClienteID)
				}
				linea = inc
			}
			renovable = true
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.AbonoAplicado(r.total())
	log.Info().Str("pago_id", pago.ID.String()).Str("prestamo_id", prestamo.ID.String()).
		Str("capital", r.capital.StringFixed(2)).Str("moratorio", r.moratorio.StringFixed(2)).
		Str("estado", pago.Estado).Msg("abono aplicado")
	if s.jobs != nil {
		if err := s.jobs.EncolarRecuperacion(ctx, prestamo.ID); err != nil {
			log.Warn().Err(err).Str("prestamo_id", prestamo.ID.String()).Msg("no se pudo encolar recuperación")
		}
	}

	return &dto.AplicacionAbonoResponse{
		Pago:                     toPagoResponse(pago, mor),
		MontoAplicado:            r.total(),
		AbonoMoratorio:           r.moratorio,
		AbonoCapital:             r.capital,
		MoratorioRestante:        mor.Efectivo(),
		PrestamoRenovable:        renovable || prestamo.PuedeRenovar,
		LineaCreditoIncrementada: linea,
	}, nil
}

// ── Obtener ───────────────────────────────────────────────────────────────────

func (s *pagoService) Obtener(ctx context.Context, pagoID uuid.UUID) (*dto.PagoResponse, error) {
	pago, err := s.repo.FindByID(ctx, pagoID)
	if err != nil {
		return nil, buscar(err, "pago", pagoID)
	}
	activos, err := s.moratorios.ListActivosByPagos(ctx, []uuid.UUID{pago.ID})
	if err != nil {
		return nil, err
	}
	var mor *model.Moratorio
	if len(activos) > 0 {
		mor = &activos[0]
	}
	resp := toPagoResponse(pago, mor)
	return &resp, nil
}

// ── RutaCobro ─────────────────────────────────────────────────────────────────

func (s *pagoService) RutaCobro(ctx context.Context, trabajadorID uuid.UUID, fecha time.Time) (*dto.RutaCobroResponse, error) {
	if _, err := s.directorio.FindTrabajador(ctx, trabajadorID); err != nil {
		return nil, buscar(err, "trabajador", trabajadorID)
	}
	hoy := model.DiaDe(fecha)
	pagos, err := s.repo.ListRuta(ctx, trabajadorID, hoy)
	if err != nil {
		return nil, err
	}

	ids := make([]uuid.UUID, 0, len(pagos))
	for _, p := range pagos {
		ids = append(ids, p.ID)
	}
	porPago := make(map[uuid.UUID]*model.Moratorio)
	if len(ids) > 0 {
		activos, err := s.moratorios.ListActivosByPagos(ctx, ids)
		if err != nil {
			return nil, err
		}
		for i := range activos {
			porPago[activos[i].PagoID] = &activos[i]
		}
	}

	resp := &dto.RutaCobroResponse{
		TrabajadorID: trabajadorID.String(),
		Fecha:        hoy.Format("2006-01-02"),
		Resumen: dto.ResumenRutaResponse{
			MontoEsperado:  decimal.Zero,
			MontoRecaudado: decimal.Zero,
			SaldoVencido:   decimal.Zero,
			PorCobrar:      decimal.Zero,
		},
		Vencidos:    []dto.PagoRutaResponse{},
		DelDia:      []dto.PagoRutaResponse{},
		Completados: []dto.PagoRutaResponse{},
	}
	prestamos := make(map[uuid.UUID]*model.Prestamo)
	clientes := make(map[uuid.UUID]bool)
	for i := range pagos {
		pago := &pagos[i]
		prestamo, ok := prestamos[pago.PrestamoID]
		if !ok {
			prestamo, err = s.prestamos.FindByID(ctx, pago.PrestamoID)
			if err != nil {
				return nil, buscar(err, "préstamo", pago.PrestamoID)
			}
			prestamos[pago.PrestamoID] = prestamo
		}
		clientes[prestamo.ClienteID] = true

		parada := dto.PagoRutaResponse{
			Pago:           toPagoResponse(pago, porPago[pago.ID]),
			NumeroContrato: prestamo.NumeroContrato,
			ClienteID:      prestamo.ClienteID.String(),
			DiasVencido:    pago.DiasVencido(hoy),
		}
		if pago.Estado == model.PagoParcial {
			resp.Resumen.Parciales++
		}
		switch {
		case pago.FechaVencimiento.Before(hoy):
			resp.Vencidos = append(resp.Vencidos, parada)
			resp.Resumen.SaldoVencido = resp.Resumen.SaldoVencido.Add(pago.SaldoPendiente)
		case pago.Estado == model.PagoCompleto:
			resp.Completados = append(resp.Completados, parada)
		default:
			resp.DelDia = append(resp.DelDia, parada)
		}
		if !pago.FechaVencimiento.Before(hoy) {
			resp.Resumen.MontoEsperado = resp.Resumen.MontoEsperado.Add(pago.Monto)
			resp.Resumen.MontoRecaudado = resp.Resumen.MontoRecaudado.Add(pago.MontoAbonado)
		}
		resp.Resumen.PorCobrar = resp.Resumen.PorCobrar.Add(pago.SaldoPendiente)
	}
	resp.Resumen.TotalClientes = len(clientes)
	resp.Resumen.TotalPagos = len(pagos)
	return resp, nil
}
