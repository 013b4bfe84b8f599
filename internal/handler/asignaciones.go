package handler

import (
	"net/http"

	"cobranza/internal/dto"
	"cobranza/internal/middleware"
	"cobranza/internal/service"

	"github.com/gin-gonic/gin"
)

type AsignacionHandler struct {
	svc   service.AsignacionService
	reloj service.Reloj
}

func NewAsignacionHandler(svc service.AsignacionService, reloj service.Reloj) *AsignacionHandler {
	return &AsignacionHandler{svc: svc, reloj: reloj}
}

// Asignar hands money from the box to a trabajador for today.
func (h *AsignacionHandler) Asignar(c *gin.Context) {
	var req dto.AsignarRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Asignar(c.Request.Context(), middleware.Actor(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// ListarDelDia: GET /v1/asignaciones?fecha=YYYY-MM-DD
func (h *AsignacionHandler) ListarDelDia(c *gin.Context) {
	ahora := h.reloj.Ahora()
	fecha, ok := queryFecha(c, "fecha", ahora.Location(), ahora)
	if !ok {
		return
	}
	resp, err := h.svc.ListarDelDia(c.Request.Context(), fecha)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *AsignacionHandler) Obtener(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.Obtener(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *AsignacionHandler) Balance(c *gin.Context) {
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

// Reconciliar records the cash the trabajador brought back.
func (h *AsignacionHandler) Reconciliar(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	var req dto.ReconciliarRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Reconciliar(c.Request.Context(), middleware.Actor(c), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *AsignacionHandler) Cancelar(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	var req dto.CancelarAsignacionRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Cancelar(c.Request.Context(), middleware.Actor(c), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
