package handler

import (
	"net/http"

	"cobranza/internal/apierror"
	"cobranza/internal/dto"
	"cobranza/internal/middleware"
	"cobranza/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type CajaHandler struct {
	svc   service.CajaService
	reloj service.Reloj
}

func NewCajaHandler(svc service.CajaService, reloj service.Reloj) *CajaHandler {
	return &CajaHandler{svc: svc, reloj: reloj}
}

// Abrir creates the cash box for a month. POST /v1/cajas
func (h *CajaHandler) Abrir(c *gin.Context) {
	var req dto.AbrirCajaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Abrir(c.Request.Context(), middleware.Actor(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Actual returns the box of the current period. GET /v1/cajas/actual
func (h *CajaHandler) Actual(c *gin.Context) {
	resp, err := h.svc.Actual(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Historial lists the boxes of a year. GET /v1/cajas?anio=2026
func (h *CajaHandler) Historial(c *gin.Context) {
	anio, ok := queryInt(c, "anio", h.reloj.Ahora().Year())
	if !ok {
		return
	}
	resp, err := h.svc.Historial(c.Request.Context(), anio)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *CajaHandler) Balance(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.Balance(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// RegistrarMovimiento posts a manual ingreso, egreso or ajuste.
func (h *CajaHandler) RegistrarMovimiento(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	var req dto.MovimientoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.RegistrarMovimiento(c.Request.Context(), middleware.Actor(c), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// ListarMovimientos: ?tipo=&trabajador_id=&desde=&hasta=&page=&limit=
// hasta is inclusive for the caller; the day after is the exclusive bound.
func (h *CajaHandler) ListarMovimientos(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	loc := h.reloj.Ahora().Location()
	filtro := dto.FiltroMovimientos{Tipo: c.Query("tipo")}

	if raw := c.Query("trabajador_id"); raw != "" {
		tid, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, apierror.New("trabajador_id invalido"))
			return
		}
		filtro.TrabajadorID = &tid
	}
	if c.Query("desde") != "" {
		desde, ok := queryFecha(c, "desde", loc, h.reloj.Ahora())
		if !ok {
			return
		}
		filtro.Desde = &desde
	}
	if c.Query("hasta") != "" {
		hasta, ok := queryFecha(c, "hasta", loc, h.reloj.Ahora())
		if !ok {
			return
		}
		hasta = hasta.AddDate(0, 0, 1)
		filtro.Hasta = &hasta
	}
	if filtro.Page, ok = queryInt(c, "page", 1); !ok {
		return
	}
	if filtro.Limit, ok = queryInt(c, "limit", 50); !ok {
		return
	}

	resp, err := h.svc.ListarMovimientos(c.Request.Context(), id, filtro)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Cerrar closes the box and reports the profit. POST /v1/cajas/:id/cerrar
func (h *CajaHandler) Cerrar(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.Cerrar(c.Request.Context(), middleware.Actor(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ResumenDia: ?fecha=YYYY-MM-DD, today by default.
func (h *CajaHandler) ResumenDia(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	ahora := h.reloj.Ahora()
	fecha, ok := queryFecha(c, "fecha", ahora.Location(), ahora)
	if !ok {
		return
	}
	resp, err := h.svc.ResumenDia(c.Request.Context(), id, fecha)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Auditar replays the movement log against the stored balance.
func (h *CajaHandler) Auditar(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.Auditar(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
