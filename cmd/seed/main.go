// cmd/seed/main.go: creates demo trabajadores and a client, and prints a
// development access token for each trabajador.
// Uso: go run ./cmd/seed
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"cobranza/internal/config"
	"cobranza/internal/infra"
	"cobranza/internal/middleware"
	"cobranza/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm/clause"
)

type semilla struct {
	id     uuid.UUID
	nombre string
	rol    string
	zona   string
}

// Fixed ids so re-running the seed updates instead of duplicating.
var trabajadores = []semilla{
	{uuid.MustParse("00000000-0000-4000-8000-000000000001"), "Admin Demo", middleware.RolAdministrador, "central"},
	{uuid.MustParse("00000000-0000-4000-8000-000000000002"), "Supervisor Demo", middleware.RolSupervisor, "central"},
	{uuid.MustParse("00000000-0000-4000-8000-000000000003"), "Cobrador Demo", middleware.RolCobrador, "norte"},
}

var clienteDemo = uuid.MustParse("00000000-0000-4000-8000-0000000000c1")

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	if cfg.JWTSecret == "" {
		log.Fatal().Msg("JWT_SECRET es obligatorio para emitir tokens")
	}
	if err := infra.RunMigrations(cfg.DatabaseURL); err != nil {
		log.Fatal().Err(err).Msg("failed to run migrations")
	}
	db, err := infra.NewDatabase(cfg.DatabaseURL, infra.PoolConfig{MaxOpen: 2})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}
	ctx := context.Background()

	upsert := clause.OnConflict{Columns: []clause.Column{{Name: "id"}}, UpdateAll: true}
	for _, s := range trabajadores {
		t := model.Trabajador{ID: s.id, NombreCompleto: s.nombre, Zona: s.zona, Activo: true}
		if err := db.WithContext(ctx).Clauses(upsert).Create(&t).Error; err != nil {
			log.Fatal().Err(err).Str("trabajador", s.nombre).Msg("insert error")
		}
	}

	cobrador := trabajadores[2].id
	cliente := model.Cliente{
		ID:             clienteDemo,
		NombreCompleto: "Cliente Demo",
		Direccion:      "Calle 1 #100",
		TrabajadorID:   &cobrador,
		LineaCredito:   decimal.NewFromInt(3000),
		Activo:         true,
	}
	if err := db.WithContext(ctx).Clauses(upsert).Create(&cliente).Error; err != nil {
		log.Fatal().Err(err).Msg("insert error")
	}

	ttl := time.Duration(cfg.JWTExpirationHours) * time.Hour
	for _, s := range trabajadores {
		tok, err := middleware.FirmarToken(cfg.JWTSecret, s.id, s.nombre, s.rol, ttl)
		if err != nil {
			log.Fatal().Err(err).Msg("sign error")
		}
		fmt.Printf("%-14s %s\n%s\n\n", s.rol, s.id, tok)
	}
	fmt.Printf("cliente        %s\n", clienteDemo)
}
