package repository

//go:generate mockgen -source=directorio_repo.go -destination=directorio_repo_mock.go -package=repository

import (
	"context"

	"cobranza/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// DirectorioRepository reads workers and clients, which are owned by the
// staff and client modules. The only write is the credit-line increment.
type DirectorioRepository interface {
	FindTrabajador(ctx context.Context, id uuid.UUID) (*model.Trabajador, error)
	FindCliente(ctx context.Context, id uuid.UUID) (*model.Cliente, error)
	IncrementarLineaCredito(ctx context.Context, tx *gorm.DB, clienteID uuid.UUID, monto decimal.Decimal) error
}

type directorioRepo struct{ db *gorm.DB }

func NewDirectorioRepository(db *gorm.DB) DirectorioRepository { return &directorioRepo{db: db} }

func (r *directorioRepo) FindTrabajador(ctx context.Context, id uuid.UUID) (*model.Trabajador, error) {
	var t model.Trabajador
	err := r.db.WithContext(ctx).First(&t, "id = ?", id).Error
	return &t, err
}

func (r *directorioRepo) FindCliente(ctx context.Context, id uuid.UUID) (*model.Cliente, error) {
	var c model.Cliente
	err := r.db.WithContext(ctx).First(&c, "id = ?", id).Error
	return &c, err
}

func (r *directorioRepo) IncrementarLineaCredito(ctx context.Context, tx *gorm.DB, clienteID uuid.UUID, monto decimal.Decimal) error {
	res := tx.WithContext(ctx).Model(&model.Cliente{}).
		Where("id = ?", clienteID).
		Update("linea_credito", gorm.Expr("linea_credito + ?", monto))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
