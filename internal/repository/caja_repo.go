package repository

import (
	"context"
	"errors"

	"cobranza/internal/dto"
	"cobranza/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type CajaRepository interface {
	Create(ctx context.Context, c *model.Caja) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Caja, error)
	FindByIDTx(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*model.Caja, error)
	FindByPeriodo(ctx context.Context, p model.Periodo) (*model.Caja, error)
	ListByAnio(ctx context.Context, anio int) ([]model.Caja, error)
	// GuardarMovimiento persists balance and totals of c and appends mov,
	// only if the stored version still equals version. On success c.Version
	// and mov.Secuencia are set to the new version.
	GuardarMovimiento(ctx context.Context, tx *gorm.DB, c *model.Caja, version int64, mov *model.MovimientoCaja) error
	// Cerrar persists the close summary under the same compare-and-swap.
	Cerrar(ctx context.Context, tx *gorm.DB, c *model.Caja, version int64) error
	// IncrementarPrestado adds to the lent statistics atomically.
	IncrementarPrestado(ctx context.Context, tx *gorm.DB, cajaID uuid.UUID, monto decimal.Decimal) error
	// MarcarAuditoria moves an open box to auditoria only if it is still at
	// version; otherwise it returns ErrConflictoVersion.
	MarcarAuditoria(ctx context.Context, id uuid.UUID, version int64) error
	ListMovimientos(ctx context.Context, cajaID uuid.UUID, filtro dto.FiltroMovimientos) ([]model.MovimientoCaja, int64, error)
	DB() *gorm.DB
}

type cajaRepo struct{ db *gorm.DB }

func NewCajaRepository(db *gorm.DB) CajaRepository { return &cajaRepo{db: db} }

func (r *cajaRepo) DB() *gorm.DB { return r.db }

func (r *cajaRepo) Create(ctx context.Context, c *model.Caja) error {
	err := r.db.WithContext(ctx).Omit("Movimientos").Create(c).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrDuplicado
	}
	return err
}

func (r *cajaRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Caja, error) {
	var c model.Caja
	err := r.db.WithContext(ctx).First(&c, "id = ?", id).Error
	return &c, err
}

func (r *cajaRepo) FindByIDTx(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*model.Caja, error) {
	var c model.Caja
	err := tx.WithContext(ctx).First(&c, "id = ?", id).Error
	return &c, err
}

func (r *cajaRepo) FindByPeriodo(ctx context.Context, p model.Periodo) (*model.Caja, error) {
	var c model.Caja
	err := r.db.WithContext(ctx).Where("mes = ? AND anio = ?", p.Mes, p.Anio).First(&c).Error
	return &c, err
}

func (r *cajaRepo) ListByAnio(ctx context.Context, anio int) ([]model.Caja, error) {
	var cajas []model.Caja
	err := r.db.WithContext(ctx).Where("anio = ?", anio).Order("mes DESC").Find(&cajas).Error
	return cajas, err
}

func (r *cajaRepo) GuardarMovimiento(ctx context.Context, tx *gorm.DB, c *model.Caja, version int64, mov *model.MovimientoCaja) error {
	res := tx.WithContext(ctx).Model(&model.Caja{}).
		Where("id = ? AND version = ? AND estado = ?", c.ID, version, model.CajaAbierta).
		Updates(map[string]interface{}{
			"monto_actual":    c.MontoActual,
			"monto_asignado":  c.MontoAsignado,
			"monto_recaudado": c.MontoRecaudado,
			"monto_devuelto":  c.MontoDevuelto,
			"total_ingresos":  c.TotalIngresos,
			"total_egresos":   c.TotalEgresos,
			"version":         version + 1,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrConflictoVersion
	}
	c.Version = version + 1
	mov.Secuencia = c.Version
	return tx.WithContext(ctx).Create(mov).Error
}

func (r *cajaRepo) Cerrar(ctx context.Context, tx *gorm.DB, c *model.Caja, version int64) error {
	res := tx.WithContext(ctx).Model(&model.Caja{}).
		Where("id = ? AND version = ? AND estado = ?", c.ID, version, model.CajaAbierta).
		Updates(map[string]interface{}{
			"estado":         c.Estado,
			"ganancia_bruta": c.GananciaBruta,
			"ganancia_neta":  c.GananciaNeta,
			"cerrado_por":    c.CerradoPor,
			"fecha_cierre":   c.FechaCierre,
			"version":        version + 1,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrConflictoVersion
	}
	c.Version = version + 1
	return nil
}

func (r *cajaRepo) IncrementarPrestado(ctx context.Context, tx *gorm.DB, cajaID uuid.UUID, monto decimal.Decimal) error {
	res := tx.WithContext(ctx).Model(&model.Caja{}).
		Where("id = ?", cajaID).
		Updates(map[string]interface{}{
			"monto_prestado":       gorm.Expr("monto_prestado + ?", monto),
			"prestamos_realizados": gorm.Expr("prestamos_realizados + 1"),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *cajaRepo) MarcarAuditoria(ctx context.Context, id uuid.UUID, version int64) error {
	res := r.db.WithContext(ctx).Model(&model.Caja{}).
		Where("id = ? AND version = ? AND estado = ?", id, version, model.CajaAbierta).
		Update("estado", model.CajaAuditoria)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrConflictoVersion
	}
	return nil
}

func (r *cajaRepo) ListMovimientos(ctx context.Context, cajaID uuid.UUID, filtro dto.FiltroMovimientos) ([]model.MovimientoCaja, int64, error) {
	var movs []model.MovimientoCaja
	var total int64

	q := r.db.WithContext(ctx).Model(&model.MovimientoCaja{}).Where("caja_id = ?", cajaID)
	if filtro.Tipo != "" {
		q = q.Where("tipo = ?", filtro.Tipo)
	}
	if filtro.TrabajadorID != nil {
		q = q.Where("trabajador_id = ?", *filtro.TrabajadorID)
	}
	if filtro.Desde != nil {
		q = q.Where("created_at >= ?", *filtro.Desde)
	}
	if filtro.Hasta != nil {
		q = q.Where("created_at < ?", *filtro.Hasta)
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	q = q.Order("secuencia ASC")
	if filtro.Limit > 0 {
		page := filtro.Page
		if page < 1 {
			page = 1
		}
		q = q.Offset((page - 1) * filtro.Limit).Limit(filtro.Limit)
	}
	err := q.Find(&movs).Error
	return movs, total, err
}
