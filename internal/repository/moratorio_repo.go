package repository

import (
	"context"
	"errors"

	"cobranza/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// EstadisticasMoratorio aggregates late fees by status.
type EstadisticasMoratorio struct {
	Total          int64
	Activos        int64
	MontoActivo    decimal.Decimal
	Condonados     int64
	MontoCondonado decimal.Decimal
}

type MoratorioRepository interface {
	// Create returns ErrDuplicado when the pago already has an active late fee.
	Create(ctx context.Context, tx *gorm.DB, m *model.Moratorio) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Moratorio, error)
	FindByIDForUpdate(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*model.Moratorio, error)
	// FindActivoByPago returns the locked active late fee of a pago, or
	// gorm.ErrRecordNotFound.
	FindActivoByPago(ctx context.Context, tx *gorm.DB, pagoID uuid.UUID) (*model.Moratorio, error)
	Update(ctx context.Context, tx *gorm.DB, m *model.Moratorio) error
	ListByCliente(ctx context.Context, clienteID uuid.UUID) ([]model.Moratorio, error)
	ListActivosByPagos(ctx context.Context, pagoIDs []uuid.UUID) ([]model.Moratorio, error)
	Estadisticas(ctx context.Context) (*EstadisticasMoratorio, error)
	DB() *gorm.DB
}

type moratorioRepo struct{ db *gorm.DB }

func NewMoratorioRepository(db *gorm.DB) MoratorioRepository { return &moratorioRepo{db: db} }

func (r *moratorioRepo) DB() *gorm.DB { return r.db }

func (r *moratorioRepo) Create(ctx context.Context, tx *gorm.DB, m *model.Moratorio) error {
	err := tx.WithContext(ctx).Create(m).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrDuplicado
	}
	return err
}

func (r *moratorioRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Moratorio, error) {
	var m model.Moratorio
	err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error
	return &m, err
}

func (r *moratorioRepo) FindByIDForUpdate(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*model.Moratorio, error) {
	var m model.Moratorio
	err := tx.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}).First(&m, "id = ?", id).Error
	return &m, err
}

func (r *moratorioRepo) FindActivoByPago(ctx context.Context, tx *gorm.DB, pagoID uuid.UUID) (*model.Moratorio, error) {
	var m model.Moratorio
	err := tx.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("pago_id = ? AND activo = true", pagoID).
		First(&m).Error
	return &m, err
}

func (r *moratorioRepo) Update(ctx context.Context, tx *gorm.DB, m *model.Moratorio) error {
	return tx.WithContext(ctx).Save(m).Error
}

func (r *moratorioRepo) ListByCliente(ctx context.Context, clienteID uuid.UUID) ([]model.Moratorio, error) {
	var out []model.Moratorio
	err := r.db.WithContext(ctx).Where("cliente_id = ?", clienteID).Order("created_at DESC").Find(&out).Error
	return out, err
}

func (r *moratorioRepo) ListActivosByPagos(ctx context.Context, pagoIDs []uuid.UUID) ([]model.Moratorio, error) {
	var out []model.Moratorio
	if len(pagoIDs) == 0 {
		return out, nil
	}
	err := r.db.WithContext(ctx).Where("pago_id IN ? AND activo = true", pagoIDs).Find(&out).Error
	return out, err
}

func (r *moratorioRepo) Estadisticas(ctx context.Context) (*EstadisticasMoratorio, error) {
	var row struct {
		Total          int64
		Activos        int64
		MontoActivo    decimal.Decimal
		Condonados     int64
		MontoCondonado decimal.Decimal
	}
	err := r.db.WithContext(ctx).Model(&model.Moratorio{}).Select(`
		COUNT(*) AS total,
		COUNT(*) FILTER (WHERE activo) AS activos,
		COALESCE(SUM(monto) FILTER (WHERE activo), 0) AS monto_activo,
		COUNT(*) FILTER (WHERE accion = ?) AS condonados,
		COALESCE(SUM(monto) FILTER (WHERE accion = ?), 0) AS monto_condonado`,
		model.MoratorioCondonado, model.MoratorioCondonado).
		Scan(&row).Error
	if err != nil {
		return nil, err
	}
	return &EstadisticasMoratorio{
		Total:          row.Total,
		Activos:        row.Activos,
		MontoActivo:    row.MontoActivo,
		Condonados:     row.Condonados,
		MontoCondonado: row.MontoCondonado,
	}, nil
}
