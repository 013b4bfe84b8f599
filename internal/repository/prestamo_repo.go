package repository

//go:generate mockgen -source=prestamo_repo.go -destination=prestamo_repo_mock.go -package=repository

import (
	"context"
	"time"

	"cobranza/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PrestamoRepository interface {
	// Create inserts the loan together with its Pagos.
	Create(ctx context.Context, tx *gorm.DB, p *model.Prestamo) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Prestamo, error)
	FindByIDForUpdate(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*model.Prestamo, error)
	Update(ctx context.Context, tx *gorm.DB, p *model.Prestamo) error
	// UpdateRecuperacion writes recovery statistics inside tx, which must hold
	// the row lock taken by FindByIDForUpdate. Status is only written while
	// the loan is still open (not renovado/cancelado).
	UpdateRecuperacion(ctx context.Context, tx *gorm.DB, p *model.Prestamo) error
	// ListIDsConVencidos pages, by id, through open loans with an installment
	// past due before hoy. Pass uuid.Nil to start.
	ListIDsConVencidos(ctx context.Context, hoy time.Time, despues uuid.UUID, limit int) ([]uuid.UUID, error)
	DB() *gorm.DB
}

type prestamoRepo struct{ db *gorm.DB }

func NewPrestamoRepository(db *gorm.DB) PrestamoRepository { return &prestamoRepo{db: db} }

func (r *prestamoRepo) DB() *gorm.DB { return r.db }

func pagosOrdenados(db *gorm.DB) *gorm.DB { return db.Order("numero_pago ASC") }

func (r *prestamoRepo) Create(ctx context.Context, tx *gorm.DB, p *model.Prestamo) error {
	return tx.WithContext(ctx).Create(p).Error
}

func (r *prestamoRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Prestamo, error) {
	var p model.Prestamo
	err := r.db.WithContext(ctx).Preload("Pagos", pagosOrdenados).First(&p, "id = ?", id).Error
	return &p, err
}

func (r *prestamoRepo) FindByIDForUpdate(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*model.Prestamo, error) {
	var p model.Prestamo
	err := tx.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}).
		Preload("Pagos", pagosOrdenados).
		First(&p, "id = ?", id).Error
	return &p, err
}

func (r *prestamoRepo) Update(ctx context.Context, tx *gorm.DB, p *model.Prestamo) error {
	return tx.WithContext(ctx).Omit(clause.Associations).Save(p).Error
}

func (r *prestamoRepo) UpdateRecuperacion(ctx context.Context, tx *gorm.DB, p *model.Prestamo) error {
	tx = tx.WithContext(ctx)
	if err := tx.Model(&model.Prestamo{}).Where("id = ?", p.ID).Updates(map[string]interface{}{
		"pagos_completos":     p.PagosCompletos,
		"pagos_parciales":     p.PagosParciales,
		"monto_abonado":       p.MontoAbonado,
		"estado_recuperacion": p.EstadoRecuperacion,
	}).Error; err != nil {
		return err
	}
	return tx.Model(&model.Prestamo{}).
		Where("id = ? AND estado NOT IN ?", p.ID, []string{model.PrestamoRenovado, model.PrestamoCancelado}).
		Update("estado", p.Estado).Error
}

func (r *prestamoRepo) ListIDsConVencidos(ctx context.Context, hoy time.Time, despues uuid.UUID, limit int) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).
		Model(&model.Pago{}).
		Distinct("pagos.prestamo_id").
		Joins("JOIN prestamos ON prestamos.id = pagos.prestamo_id").
		Where("pagos.estado <> ? AND pagos.fecha_vencimiento < ?", model.PagoCompleto, hoy).
		Where("prestamos.estado IN ?", []string{model.PrestamoActivo, model.PrestamoMoroso}).
		Where("pagos.prestamo_id > ?", despues).
		Order("pagos.prestamo_id").
		Limit(limit).
		Pluck("pagos.prestamo_id", &ids).Error
	return ids, err
}
