package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"cobranza/internal/dto"
	"cobranza/internal/model"
	"cobranza/internal/money"
	"cobranza/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type MoratorioService interface {
	Aplicar(ctx context.Context, actor uuid.UUID, req dto.AplicarMoratorioRequest) (*dto.MoratorioResponse, error)
	Condonar(ctx context.Context, actor, moratorioID uuid.UUID, req dto.CondonarMoratorioRequest) (*dto.MoratorioResponse, error)
	Ajustar(ctx context.Context, actor, moratorioID uuid.UUID, req dto.AjustarMoratorioRequest) (*dto.MoratorioResponse, error)
	Obtener(ctx context.Context, moratorioID uuid.UUID) (*dto.MoratorioResponse, error)
	HistorialCliente(ctx context.Context, clienteID uuid.UUID) ([]dto.MoratorioResponse, error)
	Estadisticas(ctx context.Context) (*dto.EstadisticasMoratorioResponse, error)
	// PagosPendientes lists overdue installments with a suggested late fee.
	PagosPendientes(ctx context.Context, limit int) ([]dto.PagoVencidoResponse, error)
}

type moratorioService struct {
	repo      repository.MoratorioRepository
	pagos     repository.PagoRepository
	prestamos repository.PrestamoRepository
	reloj     Reloj
	params    Parametros
}

func NewMoratorioService(
	repo repository.MoratorioRepository,
	pagos repository.PagoRepository,
	prestamos repository.PrestamoRepository,
	reloj Reloj,
	params Parametros,
) MoratorioService {
	return &moratorioService{repo: repo, pagos: pagos, prestamos: prestamos, reloj: reloj, params: params}
}

var cien = decimal.NewFromInt(100)

// montoMoratorio = principal × pct/100 × dias.
func montoMoratorio(principal, pct decimal.Decimal, dias int) decimal.Decimal {
	return money.R2(principal.Mul(pct).Div(cien).Mul(decimal.NewFromInt(int64(dias))))
}

// ── Aplicar ───────────────────────────────────────────────────────────────────

func (s *moratorioService) Aplicar(ctx context.Context, actor uuid.UUID, req dto.AplicarMoratorioRequest) (*dto.MoratorioResponse, error) {
	if actor == uuid.Nil {
		return nil, validacion("actor", "requerido")
	}
	if req.Dias < 1 {
		return nil, validacion("dias", "debe ser al menos 1")
	}
	if req.Porcentaje == nil && req.Monto == nil {
		return nil, validacion("porcentaje", "indique porcentaje o monto")
	}
	if req.Porcentaje != nil && req.Porcentaje.IsNegative() {
		return nil, validacion("porcentaje", "no puede ser negativo")
	}
	if req.Monto != nil && !money.Positivo(*req.Monto) {
		return nil, validacion("monto", "debe ser mayor a cero")
	}
	if req.Monto == nil && !req.Porcentaje.IsPositive() {
		return nil, validacion("porcentaje", "debe ser mayor a cero")
	}
	ahora := s.reloj.Ahora()

	var m *model.Moratorio
	err := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		pago, err := s.pagos.FindByIDForUpdate(ctx, tx, req.PagoID)
		if err != nil {
			return buscar(err, "pago", req.PagoID)
		}
		if pago.Estado == model.PagoCompleto {
			return precondicion(ErrPagoCompletado)
		}
		if _, err := s.repo.FindActivoByPago(ctx, tx, pago.ID); err == nil {
			return precondicion(ErrMoratorioActivo)
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("buscar moratorio: %w", err)
		}
		prestamo, err := s.prestamos.FindByID(ctx, pago.PrestamoID)
		if err != nil {
			return buscar(err, "préstamo", pago.PrestamoID)
		}

		pct := decimal.Zero
		if req.Porcentaje != nil {
			pct = *req.Porcentaje
		}
		var monto decimal.Decimal
		if req.Monto != nil {
			monto = money.R2(*req.Monto)
		} else {
			monto = montoMoratorio(prestamo.Monto, pct, req.Dias)
		}

		m = &model.Moratorio{
			ID:            uuid.New(),
			PagoID:        pago.ID,
			PrestamoID:    prestamo.ID,
			ClienteID:     prestamo.ClienteID,
			Dias:          req.Dias,
			Porcentaje:    pct,
			Monto:         monto,
			MontoOriginal: monto,
			Activo:        true,
			Accion:        model.MoratorioSinAccion,
			Motivo:        req.Motivo,
			CreadoPor:     actor,
			CreatedAt:     ahora,
		}
		if err := s.repo.Create(ctx, tx, m); err != nil {
			if errors.Is(err, repository.ErrDuplicado) {
				return precondicion(ErrMoratorioActivo)
			}
			return err
		}

		pago.DiasMoratorio = req.Dias
		pago.MontoMoratorio = monto
		pago.Recalcular(ahora)
		return s.pagos.Update(ctx, tx, pago)
	})
	if err != nil {
		return nil, err
	}

	log.Info().Str("moratorio_id", m.ID.String()).Str("pago_id", m.PagoID.String()).
		Int("dias", m.Dias).Str("monto", m.Monto.StringFixed(2)).Msg("moratorio aplicado")
	resp := toMoratorioResponse(m)
	return &resp, nil
}

// modificar locks the installment and then the late fee, in that order, and
// runs fn on both inside one transaction.
func (s *moratorioService) modificar(ctx context.Context, moratorioID uuid.UUID, fn func(tx *gorm.DB, pago *model.Pago, m *model.Moratorio) error) (*model.Moratorio, error) {
	previo, err := s.repo.FindByID(ctx, moratorioID)
	if err != nil {
		return nil, buscar(err, "moratorio", moratorioID)
	}

	var out *model.Moratorio
	err = runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		pago, err := s.pagos.FindByIDForUpdate(ctx, tx, previo.PagoID)
		if err != nil {
			return buscar(err, "pago", previo.PagoID)
		}
		m, err := s.repo.FindByIDForUpdate(ctx, tx, moratorioID)
		if err != nil {
			return buscar(err, "moratorio", moratorioID)
		}
		if !m.Activo {
			return precondicion(ErrMoratorioInactivo)
		}
		if err := fn(tx, pago, m); err != nil {
			return err
		}
		out = m
		return nil
	})
	return out, err
}

// ── Condonar ──────────────────────────────────────────────────────────────────

func (s *moratorioService) Condonar(ctx context.Context, actor, moratorioID uuid.UUID, req dto.CondonarMoratorioRequest) (*dto.MoratorioResponse, error) {
	if actor == uuid.Nil {
		return nil, validacion("actor", "requerido")
	}
	motivo := strings.TrimSpace(req.Motivo)
	if motivo == "" {
		return nil, validacion("motivo", "requerido")
	}
	ahora := s.reloj.Ahora()

	m, err := s.modificar(ctx, moratorioID, func(tx *gorm.DB, pago *model.Pago, m *model.Moratorio) error {
		m.Activo = false
		m.Motivo = motivo
		m.RegistrarAccion(model.MoratorioCondonado, actor, ahora)
		if err := s.repo.Update(ctx, tx, m); err != nil {
			return err
		}
		pago.DiasMoratorio = 0
		pago.MontoMoratorio = decimal.Zero
		pago.Recalcular(ahora)
		return s.pagos.Update(ctx, tx, pago)
	})
	if err != nil {
		return nil, err
	}

	log.Info().Str("moratorio_id", m.ID.String()).Str("monto", m.Monto.StringFixed(2)).
		Str("actor", actor.String()).Msg("moratorio condonado")
	resp := toMoratorioResponse(m)
	return &resp, nil
}

// ── Ajustar ───────────────────────────────────────────────────────────────────

func (s *moratorioService) Ajustar(ctx context.Context, actor, moratorioID uuid.UUID, req dto.AjustarMoratorioRequest) (*dto.MoratorioResponse, error) {
	if actor == uuid.Nil {
		return nil, validacion("actor", "requerido")
	}
	nuevo := money.R2(req.NuevoMonto)
	if nuevo.IsNegative() {
		return nil, validacion("nuevo_monto", "no puede ser negativo")
	}
	if req.Direccion != model.MoratorioIncrementado && req.Direccion != model.MoratorioReducido {
		return nil, validacion("direccion", "debe ser incrementado o reducido")
	}
	ahora := s.reloj.Ahora()

	m, err := s.modificar(ctx, moratorioID, func(tx *gorm.DB, pago *model.Pago, m *model.Moratorio) error {
		switch {
		case req.Direccion == model.MoratorioIncrementado && !nuevo.GreaterThan(m.Monto):
			return validacion("nuevo_monto", "debe ser mayor al monto actual")
		case req.Direccion == model.MoratorioReducido && !nuevo.LessThan(m.Monto):
			return validacion("nuevo_monto", "debe ser menor al monto actual")
		}
		m.Monto = nuevo
		if req.Motivo != "" {
			m.Motivo = req.Motivo
		}
		m.RegistrarAccion(req.Direccion, actor, ahora)
		if err := s.repo.Update(ctx, tx, m); err != nil {
			return err
		}
		pago.MontoMoratorio = nuevo
		pago.Recalcular(ahora)
		return s.pagos.Update(ctx, tx, pago)
	})
	if err != nil {
		return nil, err
	}

	log.Info().Str("moratorio_id", m.ID.String()).Str("direccion", req.Direccion).
		Str("monto", m.Monto.StringFixed(2)).Msg("moratorio ajustado")
	resp := toMoratorioResponse(m)
	return &resp, nil
}

// ── Consultas ─────────────────────────────────────────────────────────────────

func (s *moratorioService) Obtener(ctx context.Context, moratorioID uuid.UUID) (*dto.MoratorioResponse, error) {
	m, err := s.repo.FindByID(ctx, moratorioID)
	if err != nil {
		return nil, buscar(err, "moratorio", moratorioID)
	}
	resp := toMoratorioResponse(m)
	return &resp, nil
}

func (s *moratorioService) HistorialCliente(ctx context.Context, clienteID uuid.UUID) ([]dto.MoratorioResponse, error) {
	lista, err := s.repo.ListByCliente(ctx, clienteID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.MoratorioResponse, 0, len(lista))
	for i := range lista {
		out = append(out, toMoratorioResponse(&lista[i]))
	}
	return out, nil
}

func (s *moratorioService) Estadisticas(ctx context.Context) (*dto.EstadisticasMoratorioResponse, error) {
	st, err := s.repo.Estadisticas(ctx)
	if err != nil {
		return nil, err
	}
	return &dto.EstadisticasMoratorioResponse{
		Total:          st.Total,
		Activos:        st.Activos,
		MontoActivo:    st.MontoActivo,
		Condonados:     st.Condonados,
		MontoCondonado: st.MontoCondonado,
	}, nil
}

func (s *moratorioService) PagosPendientes(ctx context.Context, limit int) ([]dto.PagoVencidoResponse, error) {
	if limit <= 0 {
		limit = 100
	}
	ahora := s.reloj.Ahora()
	vencidos, err := s.pagos.ListVencidos(ctx, model.DiaDe(ahora), limit)
	if err != nil {
		return nil, err
	}
	if len(vencidos) == 0 {
		return []dto.PagoVencidoResponse{}, nil
	}

	ids := make([]uuid.UUID, 0, len(vencidos))
	for _, p := range vencidos {
		ids = append(ids, p.ID)
	}
	activos, err := s.repo.ListActivosByPagos(ctx, ids)
	if err != nil {
		return nil, err
	}
	porPago := make(map[uuid.UUID]*model.Moratorio, len(activos))
	for i := range activos {
		porPago[activos[i].PagoID] = &activos[i]
	}

	prestamos := make(map[uuid.UUID]*model.Prestamo)
	out := make([]dto.PagoVencidoResponse, 0, len(vencidos))
	for i := range vencidos {
		pago := &vencidos[i]
		prestamo, ok := prestamos[pago.PrestamoID]
		if !ok {
			prestamo, err = s.prestamos.FindByID(ctx, pago.PrestamoID)
			if err != nil {
				return nil, buscar(err, "préstamo", pago.PrestamoID)
			}
			prestamos[pago.PrestamoID] = prestamo
		}
		dias := pago.DiasVencido(ahora)
		mor := porPago[pago.ID]
		out = append(out, dto.PagoVencidoResponse{
			Pago:              toPagoResponse(pago, mor),
			NumeroContrato:    prestamo.NumeroContrato,
			ClienteID:         prestamo.ClienteID.String(),
			DiasVencido:       dias,
			MoratorioSugerido: montoMoratorio(prestamo.Monto, s.params.MoratorioSugeridoPct, dias),
			TieneMoratorio:    mor != nil,
		})
	}
	return out, nil
}
