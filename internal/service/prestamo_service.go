package service

import (
	"context"
	"strings"

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

type PrestamoService interface {
	Crear(ctx context.Context, actor uuid.UUID, req dto.CrearPrestamoRequest) (*dto.PrestamoResponse, error)
	Obtener(ctx context.Context, prestamoID uuid.UUID) (*dto.PrestamoResponse, error)
	PuedeRenovar(ctx context.Context, prestamoID uuid.UUID) (*dto.RenovableResponse, error)
	Renovar(ctx context.Context, actor, prestamoID uuid.UUID, req dto.RenovarPrestamoRequest) (*dto.PrestamoResponse, error)
}

type prestamoService struct {
	repo         repository.PrestamoRepository
	asignaciones AsignacionService
	cajas        CajaService
	directorio   repository.DirectorioRepository
	reloj        Reloj
	metrics      *infra.Metrics
	params       Parametros
}

func NewPrestamoService(
	repo repository.PrestamoRepository,
	asignaciones AsignacionService,
	cajas CajaService,
	directorio repository.DirectorioRepository,
	reloj Reloj,
	metrics *infra.Metrics,
	params Parametros,
) PrestamoService {
	return &prestamoService{
		repo:         repo,
		asignaciones: asignaciones,
		cajas:        cajas,
		directorio:   directorio,
		reloj:        reloj,
		metrics:      metrics,
		params:       params,
	}
}

// plazo resolves the term for tipo; 0 selects the default.
func (s *prestamoService) plazo(tipo string, pedido int) (int, error) {
	switch tipo {
	case model.PrestamoSemanal:
		if pedido == 0 {
			return s.params.PlazoSemanal, nil
		}
		if pedido < 1 {
			return 0, validacion("plazo", "debe ser al menos 1 semana")
		}
		return pedido, nil
	case model.PrestamoDiario:
		if pedido == 0 {
			return s.params.PlazoDiario, nil
		}
		if pedido < s.params.PlazoDiarioMin || pedido > s.params.PlazoDiarioMax {
			return 0, validacion("plazo", "fuera del rango permitido para préstamos diarios")
		}
		return pedido, nil
	default:
		return 0, validacion("tipo_prestamo", "debe ser semanal o diario")
	}
}

func (s *prestamoService) tasa(tipo string) decimal.Decimal {
	if tipo == model.PrestamoDiario {
		return s.params.TasaDiaria
	}
	return s.params.TasaSemanal
}

// umbralRenovacion is the installment number from which the loan may be renewed.
func (s *prestamoService) umbralRenovacion(tipo string, plazo int) int {
	umbral := s.params.RenovacionSemanal
	if tipo == model.PrestamoDiario {
		umbral = s.params.RenovacionDiaria
	}
	if plazo < umbral {
		return plazo
	}
	return umbral
}

func numeroContrato(tipo string, id uuid.UUID) string {
	prefijo := "PREST-S-"
	if tipo == model.PrestamoDiario {
		prefijo = "PREST-D-"
	}
	return prefijo + strings.ToUpper(id.String()[:8])
}

// nuevoPrestamo builds a loan with its installment schedule. Nothing is persisted.
func (s *prestamoService) nuevoPrestamo(actor, clienteID uuid.UUID, monto decimal.Decimal, tipo string, plazo int) *model.Prestamo {
	ahora := s.reloj.Ahora()
	id := uuid.New()
	tasa := s.tasa(tipo)
	cuota := model.CuotaPorPeriodo(monto, tasa, plazo)

	p := &model.Prestamo{
		ID:                     id,
		NumeroContrato:         numeroContrato(tipo, id),
		ClienteID:              clienteID,
		TipoPrestamo:           tipo,
		Monto:                  monto,
		TasaInteres:            tasa,
		Plazo:                  plazo,
		MontoPorPeriodo:        cuota,
		MontoTotal:             money.R2(cuota.Mul(decimal.NewFromInt(int64(plazo)))),
		FechaIngreso:           ahora,
		FechaTermino:           ahora.AddDate(0, 0, model.DiasEntrePagos(tipo)*plazo),
		Estado:                 model.PrestamoActivo,
		PagoMinimoRenovacion:   s.umbralRenovacion(tipo, plazo),
		IncrementoLineaCredito: s.params.IncrementoLineaCredito,
		MontoAbonado:           decimal.Zero,
		EstadoRecuperacion:     model.RecuperacionPendiente,
		CreadoPor:              actor,
	}
	p.Pagos = p.GenerarCalendario()
	for i := range p.Pagos {
		p.Pagos[i].ID = uuid.New()
	}
	return p
}

// desembolsar records the loan against the assignment and the cash box, then
// persists it. Runs inside tx.
func (s *prestamoService) desembolsar(ctx context.Context, tx *gorm.DB, p *model.Prestamo, asignacionID uuid.UUID) error {
	a, err := s.asignaciones.RegistrarPrestamo(ctx, tx, asignacionID, p.ID, p.Monto, p.TipoPrestamo)
	if err != nil {
		return err
	}
	p.AsignacionID = a.ID
	p.TrabajadorID = a.TrabajadorID
	if err := s.repo.Create(ctx, tx, p); err != nil {
		return err
	}
	return s.cajas.RegistrarPrestamo(ctx, tx, a.CajaID, p.Monto)
}

// ── Crear ─────────────────────────────────────────────────────────────────────

func (s *prestamoService) Crear(ctx context.Context, actor uuid.UUID, req dto.CrearPrestamoRequest) (*dto.PrestamoResponse, error) {
	if actor == uuid.Nil {
		return nil, validacion("actor", "requerido")
	}
	monto := money.R2(req.Monto)
	if !monto.IsPositive() {
		return nil, validacion("monto", "debe ser mayor a cero")
	}
	plazo, err := s.plazo(req.TipoPrestamo, req.Plazo)
	if err != nil {
		return nil, err
	}

	cliente, err := s.directorio.FindCliente(ctx, req.ClienteID)
	if err != nil {
		return nil, buscar(err, "cliente", req.ClienteID)
	}
	if !cliente.Activo {
		return nil, precondicion(ErrClienteInactivo)
	}

	p := s.nuevoPrestamo(actor, cliente.ID, monto, req.TipoPrestamo, plazo)
	err = runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		return s.desembolsar(ctx, tx, p, req.AsignacionID)
	})
	if err != nil {
		return nil, err
	}

	s.metrics.PrestamoCreado(p.TipoPrestamo)
	log.Info().Str("prestamo_id", p.ID.String()).Str("contrato", p.NumeroContrato).
		Str("tipo", p.TipoPrestamo).Str("monto", p.Monto.StringFixed(2)).Int("plazo", p.Plazo).
		Msg("préstamo creado")
	resp := toPrestamoResponse(p)
	return &resp, nil
}

// ── Consultas ─────────────────────────────────────────────────────────────────

func (s *prestamoService) Obtener(ctx context.Context, prestamoID uuid.UUID) (*dto.PrestamoResponse, error) {
	p, err := s.repo.FindByID(ctx, prestamoID)
	if err != nil {
		return nil, buscar(err, "préstamo", prestamoID)
	}
	resp := toPrestamoResponse(p)
	return &resp, nil
}

func pagosCompletos(pagos []model.Pago) int {
	n := 0
	for _, pg := range pagos {
		if pg.Estado == model.PagoCompleto {
			n++
		}
	}
	return n
}

func (s *prestamoService) PuedeRenovar(ctx context.Context, prestamoID uuid.UUID) (*dto.RenovableResponse, error) {
	p, err := s.repo.FindByID(ctx, prestamoID)
	if err != nil {
		return nil, buscar(err, "préstamo", prestamoID)
	}
	completos := pagosCompletos(p.Pagos)
	return &dto.RenovableResponse{
		PrestamoID:           p.ID.String(),
		PuedeRenovar:         completos >= p.PagoMinimoRenovacion,
		PagosCompletos:       completos,
		PagoMinimoRenovacion: p.PagoMinimoRenovacion,
	}, nil
}

// ── Renovar ───────────────────────────────────────────────────────────────────
// Closes the old loan as renovado and disburses a new one of the same type,
// capped at the client's credit line.

func (s *prestamoService) Renovar(ctx context.Context, actor, prestamoID uuid.UUID, req dto.RenovarPrestamoRequest) (*dto.PrestamoResponse, error) {
	if actor == uuid.Nil {
		return nil, validacion("actor", "requerido")
	}
	if req.Monto.IsNegative() {
		return nil, validacion("monto", "no puede ser negativo")
	}

	var nuevo *model.Prestamo
	err := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		anterior, err := s.repo.FindByIDForUpdate(ctx, tx, prestamoID)
		if err != nil {
			return buscar(err, "préstamo", prestamoID)
		}
		if anterior.Estado != model.PrestamoActivo && anterior.Estado != model.PrestamoPagado {
			return precondicion(ErrNoRenovable)
		}
		if completos := pagosCompletos(anterior.Pagos); completos < anterior.PagoMinimoRenovacion {
			return &PrecondicionError{Causa: ErrNoRenovable, Pendientes: anterior.PagoMinimoRenovacion - completos}
		}
		plazo, err := s.plazo(anterior.TipoPrestamo, req.Plazo)
		if err != nil {
			return err
		}

		cliente, err := s.directorio.FindCliente(ctx, anterior.ClienteID)
		if err != nil {
			return buscar(err, "cliente", anterior.ClienteID)
		}
		if !cliente.Activo {
			return precondicion(ErrClienteInactivo)
		}
		if !cliente.LineaCredito.IsPositive() {
			return precondicion(ErrSinLineaCredito)
		}

		monto := money.R2(req.Monto)
		if monto.IsZero() {
			monto = anterior.Monto
		}
		monto = money.R2(money.Min(monto, cliente.LineaCredito))

		p := s.nuevoPrestamo(actor, cliente.ID, monto, anterior.TipoPrestamo, plazo)
		anteriorID := anterior.ID
		p.PrestamoAnteriorID = &anteriorID
		if err := s.desembolsar(ctx, tx, p, req.AsignacionID); err != nil {
			return err
		}

		anterior.Estado = model.PrestamoRenovado
		if err := s.repo.Update(ctx, tx, anterior); err != nil {
			return err
		}
		nuevo = p
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.PrestamoCreado(nuevo.TipoPrestamo)
	log.Info().Str("prestamo_id", nuevo.ID.String()).Str("anterior_id", prestamoID.String()).
		Str("monto", nuevo.Monto.StringFixed(2)).Msg("préstamo renovado")
	resp := toPrestamoResponse(nuevo)
	return &resp, nil
}
