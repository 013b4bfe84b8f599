package router

import (
	"context"
	"strings"
	"time"

	"cobranza/internal/config"
	"cobranza/internal/handler"
	"cobranza/internal/infra"
	"cobranza/internal/middleware"
	"cobranza/internal/repository"
	"cobranza/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sony/gobreaker"
	"gorm.io/gorm"
)

// Deps are the process-wide collaborators built in main. RDB, Breaker and
// Jobs may be nil; loans are then only recomputed by the overdue sweep.
type Deps struct {
	Config  *config.Config
	DB      *gorm.DB
	RDB     *redis.Client
	Breaker *gobreaker.CircuitBreaker
	Metrics *infra.Metrics
	Reloj   service.Reloj
	Params  service.Parametros
	Jobs    service.Encolador
}

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
// ctx bounds the background purge of the rate limiter.
func New(ctx context.Context, d Deps) *gin.Engine {
	cfg := d.Config
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	var origins []string
	if cfg.CORSOrigins != "" {
		origins = strings.Split(cfg.CORSOrigins, ",")
	}
	limite := cfg.RateLimitPorMinuto
	if limite <= 0 {
		limite = 300
	}
	limiter := middleware.NewRateLimiter(limite, time.Minute)
	limiter.StartPurge(ctx, 5*time.Minute)

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS(origins...))
	r.Use(middleware.ErrorHandler())

	// ── Repositories ─────────────────────────────────────────────────────────
	cajaRepo := repository.NewCajaRepository(d.DB)
	asignacionRepo := repository.NewAsignacionRepository(d.DB)
	prestamoRepo := repository.NewPrestamoRepository(d.DB)
	pagoRepo := repository.NewPagoRepository(d.DB)
	moratorioRepo := repository.NewMoratorioRepository(d.DB)
	directorioRepo := repository.NewDirectorioRepository(d.DB)

	// ── Services ─────────────────────────────────────────────────────────────
	cajaSvc := service.NewCajaService(cajaRepo, asignacionRepo, d.Reloj, d.Metrics, d.Params)
	asignacionSvc := service.NewAsignacionService(asignacionRepo, cajaRepo, directorioRepo, d.Reloj, d.Metrics, d.Params)
	prestamoSvc := service.NewPrestamoService(prestamoRepo, asignacionSvc, cajaSvc, directorioRepo, d.Reloj, d.Metrics, d.Params)
	pagoSvc := service.NewPagoService(pagoRepo, prestamoRepo, moratorioRepo, asignacionSvc, directorioRepo, d.Reloj, d.Metrics, d.Jobs)
	moratorioSvc := service.NewMoratorioService(moratorioRepo, pagoRepo, prestamoRepo, d.Reloj, d.Params)

	// ── Handlers ─────────────────────────────────────────────────────────────
	cajaH := handler.NewCajaHandler(cajaSvc, d.Reloj)
	asignacionH := handler.NewAsignacionHandler(asignacionSvc, d.Reloj)
	prestamoH := handler.NewPrestamoHandler(prestamoSvc)
	pagoH := handler.NewPagoHandler(pagoSvc)
	moratorioH := handler.NewMoratorioHandler(moratorioSvc)
	trabajadorH := handler.NewTrabajadorHandler(asignacionSvc, pagoSvc, d.Reloj)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	r.GET("/health", handler.Health(d.DB, d.RDB, d.Breaker))
	if d.Metrics != nil {
		r.GET("/metrics", handler.Metrics(d.Metrics))
	}

	todos := middleware.RequireRole(middleware.RolAdministrador, middleware.RolSupervisor, middleware.RolCobrador)
	gestion := middleware.RequireRole(middleware.RolAdministrador, middleware.RolSupervisor)

	// Protected routes
	v1 := r.Group("/v1", middleware.JWTAuth(cfg.JWTSecret), limiter.Middleware())
	{
		cajas := v1.Group("/cajas")
		{
			cajas.POST("", middleware.RequireRole(middleware.RolAdministrador), cajaH.Abrir)
			cajas.GET("", gestion, cajaH.Historial)
			cajas.GET("/actual", todos, cajaH.Actual)
			cajas.GET("/:id/balance", gestion, cajaH.Balance)
			cajas.GET("/:id/movimientos", gestion, cajaH.ListarMovimientos)
			cajas.POST("/:id/movimientos", gestion, cajaH.RegistrarMovimiento)
			cajas.POST("/:id/cerrar", middleware.RequireRole(middleware.RolAdministrador), cajaH.Cerrar)
			cajas.GET("/:id/resumen-dia", gestion, cajaH.ResumenDia)
			cajas.GET("/:id/auditoria", gestion, cajaH.Auditar)
		}

		asig := v1.Group("/asignaciones")
		{
			asig.POST("", gestion, asignacionH.Asignar)
			asig.GET("", gestion, asignacionH.ListarDelDia)
			asig.GET("/:id", todos, asignacionH.Obtener)
			asig.GET("/:id/balance", todos, asignacionH.Balance)
			asig.POST("/:id/reconciliar", gestion, asignacionH.Reconciliar)
			asig.POST("/:id/cancelar", gestion, asignacionH.Cancelar)
		}

		prest := v1.Group("/prestamos", todos)
		{
			prest.POST("", prestamoH.Crear)
			prest.GET("/:id", prestamoH.Obtener)
			prest.GET("/:id/renovable", prestamoH.PuedeRenovar)
			prest.POST("/:id/renovar", prestamoH.Renovar)
		}

		pagos := v1.Group("/pagos", todos)
		{
			pagos.GET("/:id", pagoH.Obtener)
			pagos.POST("/:id/abonos", pagoH.AplicarAbono)
		}

		mora := v1.Group("/moratorios")
		{
			mora.POST("", gestion, moratorioH.Aplicar)
			mora.GET("/pendientes", todos, moratorioH.PagosPendientes)
			mora.GET("/estadisticas", gestion, moratorioH.Estadisticas)
			mora.GET("/:id", todos, moratorioH.Obtener)
			mora.POST("/:id/condonar", gestion, moratorioH.Condonar)
			mora.POST("/:id/ajustar", gestion, moratorioH.Ajustar)
		}

		v1.GET("/clientes/:id/moratorios", todos, moratorioH.HistorialCliente)

		trab := v1.Group("/trabajadores/:id", todos)
		{
			trab.GET("/asignaciones", trabajadorH.Asignaciones)
			trab.GET("/productividad", trabajadorH.Productividad)
			trab.GET("/ruta-cobro", trabajadorH.RutaCobro)
		}

		if d.RDB != nil {
			v1.POST("/jobs/dlq/reintentar", middleware.RequireRole(middleware.RolAdministrador), handler.ReplayDLQ(d.RDB))
		}
	}

	return r
}
