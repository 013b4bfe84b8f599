package repository

import (
	"context"
	"time"

	"cobranza/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PagoRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*model.Pago, error)
	FindByIDForUpdate(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*model.Pago, error)
	Update(ctx context.Context, tx *gorm.DB, p *model.Pago) error
	AddAbono(ctx context.Context, tx *gorm.DB, a *model.AbonoPago) error
	ListByPrestamo(ctx context.Context, prestamoID uuid.UUID) ([]model.Pago, error)
	// ListVencidos returns unpaid installments due before hoy, oldest first.
	ListVencidos(ctx context.Context, hoy time.Time, limit int) ([]model.Pago, error)
	// ListRuta returns the installments of a worker's loans that fall due on
	// hoy, plus earlier unpaid ones, oldest first. Renewed and cancelled loans
	// are left out.
	ListRuta(ctx context.Context, trabajadorID uuid.UUID, hoy time.Time) ([]model.Pago, error)
	DB() *gorm.DB
}

type pagoRepo struct{ db *gorm.DB }

func NewPagoRepository(db *gorm.DB) PagoRepository { return &pagoRepo{db: db} }

func (r *pagoRepo) DB() *gorm.DB { return r.db }

func historialOrdenado(db *gorm.DB) *gorm.DB { return db.Order("secuencia ASC") }

func (r *pagoRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Pago, error) {
	var p model.Pago
	err := r.db.WithContext(ctx).Preload("Historial", historialOrdenado).First(&p, "id = ?", id).Error
	return &p, err
}

func (r *pagoRepo) FindByIDForUpdate(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*model.Pago, error) {
	var p model.Pago
	err := tx.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}).
		Preload("Historial", historialOrdenado).
		First(&p, "id = ?", id).Error
	return &p, err
}

func (r *pagoRepo) Update(ctx context.Context, tx *gorm.DB, p *model.Pago) error {
	return tx.WithContext(ctx).Omit(clause.Associations).Save(p).Error
}

func (r *pagoRepo) AddAbono(ctx context.Context, tx *gorm.DB, a *model.AbonoPago) error {
	return tx.WithContext(ctx).Create(a).Error
}

func (r *pagoRepo) ListByPrestamo(ctx context.Context, prestamoID uuid.UUID) ([]model.Pago, error) {
	var pagos []model.Pago
	err := r.db.WithContext(ctx).Where("prestamo_id = ?", prestamoID).Order("numero_pago ASC").Find(&pagos).Error
	return pagos, err
}

func (r *pagoRepo) ListVencidos(ctx context.Context, hoy time.Time, limit int) ([]model.Pago, error) {
	var pagos []model.Pago
	err := r.db.WithContext(ctx).
		Where("estado <> ? AND fecha_vencimiento < ?", model.PagoCompleto, hoy).
		Order("fecha_vencimiento ASC").
		Limit(limit).
		Find(&pagos).Error
	return pagos, err
}

func (r *pagoRepo) ListRuta(ctx context.Context, trabajadorID uuid.UUID, hoy time.Time) ([]model.Pago, error) {
	var pagos []model.Pago
	err := r.db.WithContext(ctx).
		Joins("JOIN prestamos ON prestamos.id = pagos.prestamo_id").
		Where("prestamos.trabajador_id = ? AND prestamos.estado IN ?", trabajadorID,
			[]string{model.PrestamoActivo, model.PrestamoMoroso, model.PrestamoPagado}).
		Where("(pagos.fecha_vencimiento >= ? AND pagos.fecha_vencimiento < ?) OR (pagos.estado <> ? AND pagos.fecha_vencimiento < ?)",
			hoy, hoy.AddDate(0, 0, 1), model.PagoCompleto, hoy).
		Order("pagos.fecha_vencimiento ASC, pagos.numero_pago ASC").
		Find(&pagos).Error
	return pagos, err
}
