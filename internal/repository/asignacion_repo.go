package repository

import (
	"context"
	"errors"
	"time"

	"cobranza/internal/dto"
	"cobranza/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type AsignacionRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*model.AsignacionDinero, error)
	// FindByIDForUpdate locks the assignment row for the rest of tx.
	FindByIDForUpdate(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*model.AsignacionDinero, error)
	// FindActiva returns the locked pendiente/parcial assignment of a worker
	// for a day, or gorm.ErrRecordNotFound.
	FindActiva(ctx context.Context, tx *gorm.DB, trabajadorID uuid.UUID, fecha time.Time) (*model.AsignacionDinero, error)
	Create(ctx context.Context, tx *gorm.DB, a *model.AsignacionDinero) error
	Update(ctx context.Context, tx *gorm.DB, a *model.AsignacionDinero) error
	AddPrestamo(ctx context.Context, tx *gorm.DB, ref *model.PrestamoAsignado) error
	AddCobro(ctx context.Context, tx *gorm.DB, ref *model.CobroAsignado) error
	CountActivasByCaja(ctx context.Context, tx *gorm.DB, cajaID uuid.UUID) (int64, error)
	ListByFecha(ctx context.Context, fecha time.Time) ([]model.AsignacionDinero, error)
	// ListByTrabajador returns a worker's assignments with their history,
	// newest day first.
	ListByTrabajador(ctx context.Context, trabajadorID uuid.UUID, filtro dto.FiltroAsignaciones) ([]model.AsignacionDinero, error)
	DB() *gorm.DB
}

type asignacionRepo struct{ db *gorm.DB }

func NewAsignacionRepository(db *gorm.DB) AsignacionRepository { return &asignacionRepo{db: db} }

func (r *asignacionRepo) DB() *gorm.DB { return r.db }

func withHistorial(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Prestamos", func(db *gorm.DB) *gorm.DB { return db.Order("secuencia ASC") }).
		Preload("Cobros", func(db *gorm.DB) *gorm.DB { return db.Order("secuencia ASC") })
}

func (r *asignacionRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.AsignacionDinero, error) {
	var a model.AsignacionDinero
	err := withHistorial(r.db.WithContext(ctx)).First(&a, "id = ?", id).Error
	return &a, err
}

func (r *asignacionRepo) FindByIDForUpdate(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*model.AsignacionDinero, error) {
	var a model.AsignacionDinero
	err := withHistorial(tx.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"})).
		First(&a, "id = ?", id).Error
	return &a, err
}

func (r *asignacionRepo) FindActiva(ctx context.Context, tx *gorm.DB, trabajadorID uuid.UUID, fecha time.Time) (*model.AsignacionDinero, error) {
	var a model.AsignacionDinero
	err := withHistorial(tx.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"})).
		Where("trabajador_id = ? AND fecha = ? AND estado IN ?", trabajadorID, fecha,
			[]string{model.AsignacionPendiente, model.AsignacionParcial}).
		First(&a).Error
	return &a, err
}

func (r *asignacionRepo) Create(ctx context.Context, tx *gorm.DB, a *model.AsignacionDinero) error {
	err := tx.WithContext(ctx).Omit(clause.Associations).Create(a).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		// Another request opened the (worker, day) assignment first.
		return ErrConflictoVersion
	}
	return err
}

func (r *asignacionRepo) Update(ctx context.Context, tx *gorm.DB, a *model.AsignacionDinero) error {
	return tx.WithContext(ctx).Omit(clause.Associations).Save(a).Error
}

func (r *asignacionRepo) AddPrestamo(ctx context.Context, tx *gorm.DB, ref *model.PrestamoAsignado) error {
	return tx.WithContext(ctx).Create(ref).Error
}

func (r *asignacionRepo) AddCobro(ctx context.Context, tx *gorm.DB, ref *model.CobroAsignado) error {
	return tx.WithContext(ctx).Create(ref).Error
}

func (r *asignacionRepo) CountActivasByCaja(ctx context.Context, tx *gorm.DB, cajaID uuid.UUID) (int64, error) {
	var n int64
	err := tx.WithContext(ctx).Model(&model.AsignacionDinero{}).
		Where("caja_id = ? AND estado IN ?", cajaID, []string{model.AsignacionPendiente, model.AsignacionParcial}).
		Count(&n).Error
	return n, err
}

func (r *asignacionRepo) ListByFecha(ctx context.Context, fecha time.Time) ([]model.AsignacionDinero, error) {
	var out []model.AsignacionDinero
	err := withHistorial(r.db.WithContext(ctx)).
		Where("fecha = ?", fecha).
		Order("created_at ASC").
		Find(&out).Error
	return out, err
}

func (r *asignacionRepo) ListByTrabajador(ctx context.Context, trabajadorID uuid.UUID, filtro dto.FiltroAsignaciones) ([]model.AsignacionDinero, error) {
	q := withHistorial(r.db.WithContext(ctx)).Where("trabajador_id = ?", trabajadorID)
	if filtro.Estado != "" {
		q = q.Where("estado = ?", filtro.Estado)
	}
	if filtro.Desde != nil {
		q = q.Where("fecha >= ?", *filtro.Desde)
	}
	if filtro.Hasta != nil {
		q = q.Where("fecha <= ?", *filtro.Hasta)
	}
	var out []model.AsignacionDinero
	err := q.Order("fecha DESC, created_at DESC").Find(&out).Error
	return out, err
}
