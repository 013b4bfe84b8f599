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

// TrabajadorHandler serves the per-worker views: assignment history,
// productivity and the day's collection route.
type TrabajadorHandler struct {
	asignaciones service.AsignacionService
	pagos        service.PagoService
	reloj        service.Reloj
}

func NewTrabajadorHandler(asignaciones service.AsignacionService, pagos service.PagoService, reloj service.Reloj) *TrabajadorHandler {
	return &TrabajadorHandler{asignaciones: asignaciones, pagos: pagos, reloj: reloj}
}

// trabajador parses :id. A cobrador may only look at their own data.
func (h *TrabajadorHandler) trabajador(c *gin.Context) (uuid.UUID, bool) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return uuid.Nil, false
	}
	if claims := middleware.GetClaims(c); claims != nil && claims.Rol == middleware.RolCobrador && middleware.Actor(c) != id {
		c.JSON(http.StatusForbidden, apierror.New("Permisos insuficientes"))
		return uuid.Nil, false
	}
	return id, true
}

// Asignaciones: GET /v1/trabajadores/:id/asignaciones?estado=&desde=&hasta=
func (h *TrabajadorHandler) Asignaciones(c *gin.Context) {
	id, ok := h.trabajador(c)
	if !ok {
		return
	}
	ahora := h.reloj.Ahora()
	filtro := dto.FiltroAsignaciones{Estado: c.Query("estado")}
	if c.Query("desde") != "" {
		desde, ok := queryFecha(c, "desde", ahora.Location(), ahora)
		if !ok {
			return
		}
		filtro.Desde = &desde
	}
	if c.Query("hasta") != "" {
		hasta, ok := queryFecha(c, "hasta", ahora.Location(), ahora)
		if !ok {
			return
		}
		filtro.Hasta = &hasta
	}

	resp, err := h.asignaciones.ListarPorTrabajador(c.Request.Context(), id, filtro)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Productividad: GET /v1/trabajadores/:id/productividad?desde=&hasta=
// Defaults to the last seven days ending today.
func (h *TrabajadorHandler) Productividad(c *gin.Context) {
	id, ok := h.trabajador(c)
	if !ok {
		return
	}
	ahora := h.reloj.Ahora()
	hasta, ok := queryFecha(c, "hasta", ahora.Location(), ahora)
	if !ok {
		return
	}
	desde, ok := queryFecha(c, "desde", ahora.Location(), hasta.AddDate(0, 0, -6))
	if !ok {
		return
	}

	resp, err := h.asignaciones.Productividad(c.Request.Context(), id, desde, hasta)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// RutaCobro: GET /v1/trabajadores/:id/ruta-cobro?fecha=YYYY-MM-DD
func (h *TrabajadorHandler) RutaCobro(c *gin.Context) {
	id, ok := h.trabajador(c)
	if !ok {
		return
	}
	ahora := h.reloj.Ahora()
	fecha, ok := queryFecha(c, "fecha", ahora.Location(), ahora)
	if !ok {
		return
	}

	resp, err := h.pagos.RutaCobro(c.Request.Context(), id, fecha)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
