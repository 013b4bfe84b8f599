//go:build integration

package worker

// Recovery recompute against a real Postgres: the job must wait for an
// abono holding the loan row and then see its result.
// Run with: go test -tags integration ./internal/worker/... -v

import (
	"context"
	"testing"
	"time"

	"cobranza/internal/dto"
	"cobranza/internal/infra"
	"cobranza/internal/model"
	"cobranza/internal/repository"
	"cobranza/internal/service"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcPostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"gorm.io/gorm"
)

func startPostgres(t *testing.T) *gorm.DB {
	t.Helper()
	ctx := context.Background()

	pgC, err := tcPostgres.RunContainer(ctx,
		testcontainers.WithImage("postgres:15-alpine"),
		tcPostgres.WithDatabase("cobranza_test"),
		tcPostgres.WithUsername("cobranza"),
		tcPostgres.WithPassword("cobranza"),
		tcPostgres.BasicWaitStrategies(),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = pgC.Terminate(ctx) })

	url, err := pgC.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)
	require.NoError(t, infra.RunMigrations(url))

	db, err := infra.NewDatabase(url, infra.PoolConfig{MaxOpen: 5})
	require.NoError(t, err)
	return db
}

func TestRecalcular_EsperaAbonoEnCurso(t *testing.T) {
	db := startPostgres(t)
	ctx := context.Background()
	reloj := service.RelojSistema{Loc: time.UTC}
	params := service.ParametrosPorDefecto()
	actor := uuid.New()

	trabajador := model.Trabajador{ID: uuid.New(), NombreCompleto: "Cobrador Prueba", Activo: true}
	require.NoError(t, db.Create(&trabajador).Error)
	cliente := model.Cliente{ID: uuid.New(), NombreCompleto: "Cliente Prueba", LineaCredito: decimal.NewFromInt(5000), Activo: true}
	require.NoError(t, db.Create(&cliente).Error)

	cajaRepo := repository.NewCajaRepository(db)
	asignacionRepo := repository.NewAsignacionRepository(db)
	prestamoRepo := repository.NewPrestamoRepository(db)
	directorio := repository.NewDirectorioRepository(db)
	cajas := service.NewCajaService(cajaRepo, asignacionRepo, reloj, nil, params)
	asignaciones := service.NewAsignacionService(asignacionRepo, cajaRepo, directorio, reloj, nil, params)
	prestamos := service.NewPrestamoService(prestamoRepo, asignaciones, cajas, directorio, reloj, nil, params)

	ahora := time.Now().UTC()
	caja, err := cajas.Abrir(ctx, actor, dto.AbrirCajaRequest{Mes: int(ahora.Month()), Anio: ahora.Year(), MontoInicial: decimal.NewFromInt(5000)})
	require.NoError(t, err)
	asig, err := asignaciones.Asignar(ctx, actor, dto.AsignarRequest{
		TrabajadorID: trabajador.ID, CajaID: uuid.MustParse(caja.ID), Monto: decimal.NewFromInt(2000),
	})
	require.NoError(t, err)
	p, err := prestamos.Crear(ctx, actor, dto.CrearPrestamoRequest{
		ClienteID: cliente.ID, AsignacionID: uuid.MustParse(asig.ID), Monto: decimal.NewFromInt(1000), TipoPrestamo: model.PrestamoSemanal,
	})
	require.NoError(t, err)
	prestamoID := uuid.MustParse(p.ID)
	primero := p.Pagos[0]

	// Hold the loan row the way an abono does and settle the first installment.
	tx := db.Begin()
	require.NoError(t, tx.Error)
	defer tx.Rollback()
	_, err = prestamoRepo.FindByIDForUpdate(ctx, tx, prestamoID)
	require.NoError(t, err)
	require.NoError(t, tx.Model(&model.Pago{}).Where("id = ?", primero.ID).Updates(map[string]interface{}{
		"monto_abonado":   primero.Monto,
		"saldo_pendiente": decimal.Zero,
		"estado":          model.PagoCompleto,
	}).Error)

	done := make(chan error, 1)
	go func() {
		done <- NewRecuperacionWorker(prestamoRepo, reloj).Recalcular(ctx, prestamoID)
	}()

	select {
	case err := <-done:
		t.Fatalf("el recálculo no esperó el bloqueo: %v", err)
	case <-time.After(300 * time.Millisecond):
	}

	require.NoError(t, tx.Commit().Error)
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("el recálculo no terminó")
	}

	got, err := prestamoRepo.FindByID(ctx, prestamoID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.PagosCompletos)
	assert.True(t, primero.Monto.Equal(got.MontoAbonado))
	assert.Equal(t, model.RecuperacionParcial, got.EstadoRecuperacion)
}
