package service

import (
	"bytes"
	"context"
	"sort"
	"sync"
	"time"

	"cobranza/internal/dto"
	"cobranza/internal/model"
	"cobranza/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ── In-memory store ──────────────────────────────────────────────────────────
// Every repository fake reads and writes copies, so a rejected operation
// leaves the stored state untouched. DB() returns nil and runTx calls fn
// directly.

type memStore struct {
	mu sync.Mutex

	cajas            map[uuid.UUID]*model.Caja
	movimientos      map[uuid.UUID][]model.MovimientoCaja
	forzarConflictos int

	asignaciones      map[uuid.UUID]*model.AsignacionDinero
	ordenAsignaciones []uuid.UUID
	refsPrestamo      map[uuid.UUID][]model.PrestamoAsignado
	refsCobro         map[uuid.UUID][]model.CobroAsignado

	prestamos map[uuid.UUID]*model.Prestamo
	pagos     map[uuid.UUID]*model.Pago
	abonos    map[uuid.UUID][]model.AbonoPago

	moratorios      map[uuid.UUID]*model.Moratorio
	ordenMoratorios []uuid.UUID

	trabajadores map[uuid.UUID]*model.Trabajador
	clientes     map[uuid.UUID]*model.Cliente
}

func newMemStore() *memStore {
	return &memStore{
		cajas:        make(map[uuid.UUID]*model.Caja),
		movimientos:  make(map[uuid.UUID][]model.MovimientoCaja),
		asignaciones: make(map[uuid.UUID]*model.AsignacionDinero),
		refsPrestamo: make(map[uuid.UUID][]model.PrestamoAsignado),
		refsCobro:    make(map[uuid.UUID][]model.CobroAsignado),
		prestamos:    make(map[uuid.UUID]*model.Prestamo),
		pagos:        make(map[uuid.UUID]*model.Pago),
		abonos:       make(map[uuid.UUID][]model.AbonoPago),
		moratorios:   make(map[uuid.UUID]*model.Moratorio),
		trabajadores: make(map[uuid.UUID]*model.Trabajador),
		clientes:     make(map[uuid.UUID]*model.Cliente),
	}
}

// ── Cajas ────────────────────────────────────────────────────────────────────

type fakeCajaRepo struct{ s *memStore }

var _ repository.CajaRepository = (*fakeCajaRepo)(nil)

func (r *fakeCajaRepo) DB() *gorm.DB { return nil }

func (r *fakeCajaRepo) Create(_ context.Context, c *model.Caja) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existente := range r.s.cajas {
		if existente.Mes == c.Mes && existente.Anio == c.Anio {
			return repository.ErrDuplicado
		}
	}
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now()
	}
	cp := *c
	cp.Movimientos = nil
	r.s.cajas[c.ID] = &cp
	return nil
}

func (r *fakeCajaRepo) find(id uuid.UUID) (*model.Caja, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.cajas[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *c
	return &cp, nil
}

func (r *fakeCajaRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Caja, error) {
	return r.find(id)
}

func (r *fakeCajaRepo) FindByIDTx(_ context.Context, _ *gorm.DB, id uuid.UUID) (*model.Caja, error) {
	return r.find(id)
}

func (r *fakeCajaRepo) FindByPeriodo(_ context.Context, p model.Periodo) (*model.Caja, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, c := range r.s.cajas {
		if c.Mes == p.Mes && c.Anio == p.Anio {
			cp := *c
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeCajaRepo) ListByAnio(_ context.Context, anio int) ([]model.Caja, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []model.Caja
	for _, c := range r.s.cajas {
		if c.Anio == anio {
			out = append(out, *c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Mes > out[j].Mes })
	return out, nil
}

func (r *fakeCajaRepo) GuardarMovimiento(_ context.Context, _ *gorm.DB, c *model.Caja, version int64, mov *model.MovimientoCaja) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.forzarConflictos > 0 {
		r.s.forzarConflictos--
		return repository.ErrConflictoVersion
	}
	stored, ok := r.s.cajas[c.ID]
	if !ok || stored.Version != version || stored.Estado != model.CajaAbierta {
		return repository.ErrConflictoVersion
	}
	stored.MontoActual = c.MontoActual
	stored.MontoAsignado = c.MontoAsignado
	stored.MontoRecaudado = c.MontoRecaudado
	stored.MontoDevuelto = c.MontoDevuelto
	stored.TotalIngresos = c.TotalIngresos
	stored.TotalEgresos = c.TotalEgresos
	stored.Version = version + 1

	c.Version = stored.Version
	mov.Secuencia = stored.Version
	if mov.ID == uuid.Nil {
		mov.ID = uuid.New()
	}
	r.s.movimientos[c.ID] = append(r.s.movimientos[c.ID], *mov)
	return nil
}

func (r *fakeCajaRepo) Cerrar(_ context.Context, _ *gorm.DB, c *model.Caja, version int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	stored, ok := r.s.cajas[c.ID]
	if !ok || stored.Version != version || stored.Estado != model.CajaAbierta {
		return repository.ErrConflictoVersion
	}
	stored.Estado = c.Estado
	stored.GananciaBruta = c.GananciaBruta
	stored.GananciaNeta = c.GananciaNeta
	stored.CerradoPor = c.CerradoPor
	stored.FechaCierre = c.FechaCierre
	stored.Version = version + 1
	c.Version = stored.Version
	return nil
}

func (r *fakeCajaRepo) IncrementarPrestado(_ context.Context, _ *gorm.DB, cajaID uuid.UUID, monto decimal.Decimal) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.cajas[cajaID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	c.MontoPrestado = c.MontoPrestado.Add(monto)
	c.PrestamosRealizados++
	return nil
}

func (r *fakeCajaRepo) MarcarAuditoria(_ context.Context, id uuid.UUID, version int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.cajas[id]
	if !ok || c.Version != version || c.Estado != model.CajaAbierta {
		return repository.ErrConflictoVersion
	}
	c.Estado = model.CajaAuditoria
	return nil
}

func (r *fakeCajaRepo) ListMovimientos(_ context.Context, cajaID uuid.UUID, f dto.FiltroMovimientos) ([]model.MovimientoCaja, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []model.MovimientoCaja
	for _, m := range r.s.movimientos[cajaID] {
		if f.Tipo != "" && m.Tipo != f.Tipo {
			continue
		}
		if f.TrabajadorID != nil && (m.TrabajadorID == nil || *m.TrabajadorID != *f.TrabajadorID) {
			continue
		}
		if f.Desde != nil && m.CreatedAt.Before(*f.Desde) {
			continue
		}
		if f.Hasta != nil && !m.CreatedAt.Before(*f.Hasta) {
			continue
		}
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Secuencia < out[j].Secuencia })
	total := int64(len(out))
	if f.Limit > 0 {
		page := f.Page
		if page < 1 {
			page = 1
		}
		start := (page - 1) * f.Limit
		if start >= len(out) {
			return nil, total, nil
		}
		end := start + f.Limit
		if end > len(out) {
			end = len(out)
		}
		out = out[start:end]
	}
	return out, total, nil
}

// ── Asignaciones ─────────────────────────────────────────────────────────────

type fakeAsignacionRepo struct{ s *memStore }

var _ repository.AsignacionRepository = (*fakeAsignacionRepo)(nil)

func (r *fakeAsignacionRepo) DB() *gorm.DB { return nil }

// armar returns a copy with its references; the caller holds the lock.
func (r *fakeAsignacionRepo) armar(a *model.AsignacionDinero) *model.AsignacionDinero {
	cp := *a
	cp.Prestamos = append([]model.PrestamoAsignado(nil), r.s.refsPrestamo[a.ID]...)
	cp.Cobros = append([]model.CobroAsignado(nil), r.s.refsCobro[a.ID]...)
	return &cp
}

func (r *fakeAsignacionRepo) find(id uuid.UUID) (*model.AsignacionDinero, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a, ok := r.s.asignaciones[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return r.armar(a), nil
}

func (r *fakeAsignacionRepo) FindByID(_ context.Context, id uuid.UUID) (*model.AsignacionDinero, error) {
	return r.find(id)
}

func (r *fakeAsignacionRepo) FindByIDForUpdate(_ context.Context, _ *gorm.DB, id uuid.UUID) (*model.AsignacionDinero, error) {
	return r.find(id)
}

func (r *fakeAsignacionRepo) FindActiva(_ context.Context, _ *gorm.DB, trabajadorID uuid.UUID, fecha time.Time) (*model.AsignacionDinero, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, id := range r.s.ordenAsignaciones {
		a := r.s.asignaciones[id]
		if a.TrabajadorID == trabajadorID && a.Fecha.Equal(fecha) && a.Activa() {
			return r.armar(a), nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeAsignacionRepo) Create(_ context.Context, _ *gorm.DB, a *model.AsignacionDinero) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existente := range r.s.asignaciones {
		if existente.TrabajadorID == a.TrabajadorID && existente.Fecha.Equal(a.Fecha) && existente.Activa() {
			return repository.ErrConflictoVersion
		}
	}
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	cp := *a
	cp.Prestamos, cp.Cobros = nil, nil
	r.s.asignaciones[a.ID] = &cp
	r.s.ordenAsignaciones = append(r.s.ordenAsignaciones, a.ID)
	return nil
}

func (r *fakeAsignacionRepo) Update(_ context.Context, _ *gorm.DB, a *model.AsignacionDinero) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.asignaciones[a.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	cp := *a
	cp.Prestamos, cp.Cobros = nil, nil
	r.s.asignaciones[a.ID] = &cp
	return nil
}

func (r *fakeAsignacionRepo) AddPrestamo(_ context.Context, _ *gorm.DB, ref *model.PrestamoAsignado) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if ref.ID == uuid.Nil {
		ref.ID = uuid.New()
	}
	r.s.refsPrestamo[ref.AsignacionID] = append(r.s.refsPrestamo[ref.AsignacionID], *ref)
	return nil
}

func (r *fakeAsignacionRepo) AddCobro(_ context.Context, _ *gorm.DB, ref *model.CobroAsignado) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if ref.ID == uuid.Nil {
		ref.ID = uuid.New()
	}
	r.s.refsCobro[ref.AsignacionID] = append(r.s.refsCobro[ref.AsignacionID], *ref)
	return nil
}

func (r *fakeAsignacionRepo) CountActivasByCaja(_ context.Context, _ *gorm.DB, cajaID uuid.UUID) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for _, a := range r.s.asignaciones {
		if a.CajaID == cajaID && a.Activa() {
			n++
		}
	}
	return n, nil
}

func (r *fakeAsignacionRepo) ListByFecha(_ context.Context, fecha time.Time) ([]model.AsignacionDinero, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []model.AsignacionDinero
	for _, id := range r.s.ordenAsignaciones {
		if a := r.s.asignaciones[id]; a.Fecha.Equal(fecha) {
			out = append(out, *r.armar(a))
		}
	}
	return out, nil
}

func (r *fakeAsignacionRepo) ListByTrabajador(_ context.Context, trabajadorID uuid.UUID, f dto.FiltroAsignaciones) ([]model.AsignacionDinero, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []model.AsignacionDinero
	for _, id := range r.s.ordenAsignaciones {
		a := r.s.asignaciones[id]
		if a.TrabajadorID != trabajadorID {
			continue
		}
		if f.Estado != "" && a.Estado != f.Estado {
			continue
		}
		if f.Desde != nil && a.Fecha.Before(*f.Desde) {
			continue
		}
		if f.Hasta != nil && a.Fecha.After(*f.Hasta) {
			continue
		}
		out = append(out, *r.armar(a))
	}
	// ordenAsignaciones is creation order; newest day first, then newest row.
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Fecha.After(out[j].Fecha) })
	return out, nil
}

// ── Préstamos y pagos ────────────────────────────────────────────────────────

type fakePrestamoRepo struct{ s *memStore }

var _ repository.PrestamoRepository = (*fakePrestamoRepo)(nil)

func (r *fakePrestamoRepo) DB() *gorm.DB { return nil }

// pagoArmado returns a copy with its history; the caller holds the lock.
func (s *memStore) pagoArmado(p *model.Pago) model.Pago {
	cp := *p
	cp.Historial = append([]model.AbonoPago(nil), s.abonos[p.ID]...)
	return cp
}

func (s *memStore) pagosDe(prestamoID uuid.UUID) []model.Pago {
	var out []model.Pago
	for _, p := range s.pagos {
		if p.PrestamoID == prestamoID {
			out = append(out, s.pagoArmado(p))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].NumeroPago < out[j].NumeroPago })
	return out
}

func (r *fakePrestamoRepo) Create(_ context.Context, _ *gorm.DB, p *model.Prestamo) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	cp := *p
	cp.Pagos = nil
	r.s.prestamos[p.ID] = &cp
	for i := range p.Pagos {
		pg := p.Pagos[i]
		if pg.ID == uuid.Nil {
			pg.ID = uuid.New()
			p.Pagos[i].ID = pg.ID
		}
		pg.PrestamoID = p.ID
		pg.Historial = nil
		r.s.pagos[pg.ID] = &pg
	}
	return nil
}

func (r *fakePrestamoRepo) find(id uuid.UUID) (*model.Prestamo, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.prestamos[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *p
	cp.Pagos = r.s.pagosDe(id)
	return &cp, nil
}

func (r *fakePrestamoRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Prestamo, error) {
	return r.find(id)
}

func (r *fakePrestamoRepo) FindByIDForUpdate(_ context.Context, _ *gorm.DB, id uuid.UUID) (*model.Prestamo, error) {
	return r.find(id)
}

func (r *fakePrestamoRepo) Update(_ context.Context, _ *gorm.DB, p *model.Prestamo) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.prestamos[p.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	cp := *p
	cp.Pagos = nil
	r.s.prestamos[p.ID] = &cp
	return nil
}

func (r *fakePrestamoRepo) UpdateRecuperacion(_ context.Context, _ *gorm.DB, p *model.Prestamo) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	stored, ok := r.s.prestamos[p.ID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	stored.PagosCompletos = p.PagosCompletos
	stored.PagosParciales = p.PagosParciales
	stored.MontoAbonado = p.MontoAbonado
	stored.EstadoRecuperacion = p.EstadoRecuperacion
	if !stored.Cerrado() {
		stored.Estado = p.Estado
	}
	return nil
}

func (r *fakePrestamoRepo) ListIDsConVencidos(_ context.Context, hoy time.Time, despues uuid.UUID, limit int) ([]uuid.UUID, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	vistos := make(map[uuid.UUID]bool)
	var out []uuid.UUID
	for _, pg := range r.s.pagos {
		p := r.s.prestamos[pg.PrestamoID]
		if p == nil || (p.Estado != model.PrestamoActivo && p.Estado != model.PrestamoMoroso) {
			continue
		}
		if pg.Estado == model.PagoCompleto || !pg.FechaVencimiento.Before(hoy) || vistos[p.ID] {
			continue
		}
		if bytes.Compare(p.ID[:], despues[:]) <= 0 {
			continue
		}
		vistos[p.ID] = true
		out = append(out, p.ID)
	}
	sort.Slice(out, func(i, j int) bool { return bytes.Compare(out[i][:], out[j][:]) < 0 })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type fakePagoRepo struct{ s *memStore }

var _ repository.PagoRepository = (*fakePagoRepo)(nil)

func (r *fakePagoRepo) DB() *gorm.DB { return nil }

func (r *fakePagoRepo) find(id uuid.UUID) (*model.Pago, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.pagos[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := r.s.pagoArmado(p)
	return &cp, nil
}

func (r *fakePagoRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Pago, error) {
	return r.find(id)
}

func (r *fakePagoRepo) FindByIDForUpdate(_ context.Context, _ *gorm.DB, id uuid.UUID) (*model.Pago, error) {
	return r.find(id)
}

func (r *fakePagoRepo) Update(_ context.Context, _ *gorm.DB, p *model.Pago) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.pagos[p.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	cp := *p
	cp.Historial = nil
	r.s.pagos[p.ID] = &cp
	return nil
}

func (r *fakePagoRepo) AddAbono(_ context.Context, _ *gorm.DB, a *model.AbonoPago) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	r.s.abonos[a.PagoID] = append(r.s.abonos[a.PagoID], *a)
	return nil
}

func (r *fakePagoRepo) ListByPrestamo(_ context.Context, prestamoID uuid.UUID) ([]model.Pago, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.pagosDe(prestamoID), nil
}

func (r *fakePagoRepo) ListVencidos(_ context.Context, hoy time.Time, limit int) ([]model.Pago, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []model.Pago
	for _, p := range r.s.pagos {
		if p.Estado != model.PagoCompleto && p.FechaVencimiento.Before(hoy) {
			out = append(out, r.s.pagoArmado(p))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].FechaVencimiento.Equal(out[j].FechaVencimiento) {
			return out[i].NumeroPago < out[j].NumeroPago
		}
		return out[i].FechaVencimiento.Before(out[j].FechaVencimiento)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *fakePagoRepo) ListRuta(_ context.Context, trabajadorID uuid.UUID, hoy time.Time) ([]model.Pago, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	manana := hoy.AddDate(0, 0, 1)
	var out []model.Pago
	for _, p := range r.s.pagos {
		prestamo, ok := r.s.prestamos[p.PrestamoID]
		if !ok || prestamo.TrabajadorID != trabajadorID {
			continue
		}
		if prestamo.Estado == model.PrestamoRenovado || prestamo.Estado == model.PrestamoCancelado {
			continue
		}
		delDia := !p.FechaVencimiento.Before(hoy) && p.FechaVencimiento.Before(manana)
		atrasado := p.Estado != model.PagoCompleto && p.FechaVencimiento.Before(hoy)
		if delDia || atrasado {
			out = append(out, r.s.pagoArmado(p))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].FechaVencimiento.Equal(out[j].FechaVencimiento) {
			return out[i].NumeroPago < out[j].NumeroPago
		}
		return out[i].FechaVencimiento.Before(out[j].FechaVencimiento)
	})
	return out, nil
}

// ── Moratorios ───────────────────────────────────────────────────────────────

type fakeMoratorioRepo struct{ s *memStore }

var _ repository.MoratorioRepository = (*fakeMoratorioRepo)(nil)

func (r *fakeMoratorioRepo) DB() *gorm.DB { return nil }

func (r *fakeMoratorioRepo) Create(_ context.Context, _ *gorm.DB, m *model.Moratorio) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existente := range r.s.moratorios {
		if existente.PagoID == m.PagoID && existente.Activo {
			return repository.ErrDuplicado
		}
	}
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	cp := *m
	r.s.moratorios[m.ID] = &cp
	r.s.ordenMoratorios = append(r.s.ordenMoratorios, m.ID)
	return nil
}

func (r *fakeMoratorioRepo) find(id uuid.UUID) (*model.Moratorio, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	m, ok := r.s.moratorios[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *m
	return &cp, nil
}

func (r *fakeMoratorioRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Moratorio, error) {
	return r.find(id)
}

func (r *fakeMoratorioRepo) FindByIDForUpdate(_ context.Context, _ *gorm.DB, id uuid.UUID) (*model.Moratorio, error) {
	return r.find(id)
}

func (r *fakeMoratorioRepo) FindActivoByPago(_ context.Context, _ *gorm.DB, pagoID uuid.UUID) (*model.Moratorio, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, m := range r.s.moratorios {
		if m.PagoID == pagoID && m.Activo {
			cp := *m
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeMoratorioRepo) Update(_ context.Context, _ *gorm.DB, m *model.Moratorio) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.moratorios[m.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	cp := *m
	r.s.moratorios[m.ID] = &cp
	return nil
}

func (r *fakeMoratorioRepo) ListByCliente(_ context.Context, clienteID uuid.UUID) ([]model.Moratorio, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []model.Moratorio
	for i := len(r.s.ordenMoratorios) - 1; i >= 0; i-- {
		if m := r.s.moratorios[r.s.ordenMoratorios[i]]; m.ClienteID == clienteID {
			out = append(out, *m)
		}
	}
	return out, nil
}

func (r *fakeMoratorioRepo) ListActivosByPagos(_ context.Context, pagoIDs []uuid.UUID) ([]model.Moratorio, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	buscados := make(map[uuid.UUID]bool, len(pagoIDs))
	for _, id := range pagoIDs {
		buscados[id] = true
	}
	var out []model.Moratorio
	for _, id := range r.s.ordenMoratorios {
		if m := r.s.moratorios[id]; m.Activo && buscados[m.PagoID] {
			out = append(out, *m)
		}
	}
	return out, nil
}

func (r *fakeMoratorioRepo) Estadisticas(_ context.Context) (*repository.EstadisticasMoratorio, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	st := &repository.EstadisticasMoratorio{MontoActivo: decimal.Zero, MontoCondonado: decimal.Zero}
	for _, m := range r.s.moratorios {
		st.Total++
		if m.Activo {
			st.Activos++
			st.MontoActivo = st.MontoActivo.Add(m.Monto)
		}
		if m.Accion == model.MoratorioCondonado {
			st.Condonados++
			st.MontoCondonado = st.MontoCondonado.Add(m.Monto)
		}
	}
	return st, nil
}

// ── Directorio ───────────────────────────────────────────────────────────────

type fakeDirectorio struct{ s *memStore }

var _ repository.DirectorioRepository = (*fakeDirectorio)(nil)

func (r *fakeDirectorio) FindTrabajador(_ context.Context, id uuid.UUID) (*model.Trabajador, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t, ok := r.s.trabajadores[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *t
	return &cp, nil
}

func (r *fakeDirectorio) FindCliente(_ context.Context, id uuid.UUID) (*model.Cliente, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.clientes[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *c
	return &cp, nil
}

func (r *fakeDirectorio) IncrementarLineaCredito(_ context.Context, _ *gorm.DB, clienteID uuid.UUID, monto decimal.Decimal) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.clientes[clienteID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	c.LineaCredito = c.LineaCredito.Add(monto)
	return nil
}

// ── Fixture ──────────────────────────────────────────────────────────────────

// fakeEncolador records the loans scheduled for recovery.
type fakeEncolador struct {
	mu        sync.Mutex
	prestamos []uuid.UUID
}

func (e *fakeEncolador) EncolarRecuperacion(_ context.Context, prestamoID uuid.UUID) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.prestamos = append(e.prestamos, prestamoID)
	return nil
}

var ahoraPrueba = time.Date(2024, time.March, 4, 10, 0, 0, 0, time.UTC)

type fixture struct {
	store  *memStore
	params Parametros
	reloj  *relojMovil
	jobs   *fakeEncolador

	cajas        CajaService
	asignaciones AsignacionService
	prestamos    PrestamoService
	pagos        PagoService
	moratorios   MoratorioService

	admin uuid.UUID
}

// relojMovil lets a test advance time between operations.
type relojMovil struct {
	mu sync.Mutex
	t  time.Time
}

func (r *relojMovil) Ahora() time.Time {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.t
}

func (r *relojMovil) Avanzar(d time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.t = r.t.Add(d)
}

func newFixture() *fixture {
	store := newMemStore()
	params := ParametrosPorDefecto()
	params.Reintentos = Reintentos{MaxIntentos: 5, EsperaInicial: time.Millisecond}
	reloj := &relojMovil{t: ahoraPrueba}
	jobs := &fakeEncolador{}

	cajaRepo := &fakeCajaRepo{s: store}
	asigRepo := &fakeAsignacionRepo{s: store}
	prestamoRepo := &fakePrestamoRepo{s: store}
	pagoRepo := &fakePagoRepo{s: store}
	morRepo := &fakeMoratorioRepo{s: store}
	dir := &fakeDirectorio{s: store}

	cajas := NewCajaService(cajaRepo, asigRepo, reloj, nil, params)
	asignaciones := NewAsignacionService(asigRepo, cajaRepo, dir, reloj, nil, params)
	return &fixture{
		store:        store,
		params:       params,
		reloj:        reloj,
		jobs:         jobs,
		cajas:        cajas,
		asignaciones: asignaciones,
		prestamos:    NewPrestamoService(prestamoRepo, asignaciones, cajas, dir, reloj, nil, params),
		pagos:        NewPagoService(pagoRepo, prestamoRepo, morRepo, asignaciones, dir, reloj, nil, jobs),
		moratorios:   NewMoratorioService(morRepo, pagoRepo, prestamoRepo, reloj, params),
		admin:        uuid.New(),
	}
}

func (f *fixture) nuevoTrabajador(activo bool) uuid.UUID {
	t := &model.Trabajador{ID: uuid.New(), NombreCompleto: "Cobrador de prueba", Activo: activo}
	f.store.mu.Lock()
	f.store.trabajadores[t.ID] = t
	f.store.mu.Unlock()
	return t.ID
}

func (f *fixture) nuevoCliente(linea string) uuid.UUID {
	c := &model.Cliente{ID: uuid.New(), NombreCompleto: "Cliente de prueba", LineaCredito: decimal.RequireFromString(linea), Activo: true}
	f.store.mu.Lock()
	f.store.clientes[c.ID] = c
	f.store.mu.Unlock()
	return c.ID
}

func (f *fixture) caja(id string) *model.Caja {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	cp := *f.store.cajas[uuid.MustParse(id)]
	return &cp
}
