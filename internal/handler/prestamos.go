package handler

import (
	"net/http"

	"cobranza/internal/dto"
	"cobranza/internal/middleware"
	"cobranza/internal/service"

	"github.com/gin-gonic/gin"
)

type PrestamoHandler struct{ svc service.PrestamoService }

func NewPrestamoHandler(svc service.PrestamoService) *PrestamoHandler {
	return &PrestamoHandler{svc: svc}
}

func (h *PrestamoHandler) Crear(c *gin.Context) {
	var req dto.CrearPrestamoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Crear(c.Request.Context(), middleware.Actor(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *PrestamoHandler) Obtener(c *gin.Context) {
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

func (h *PrestamoHandler) PuedeRenovar(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.PuedeRenovar(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Renovar closes the loan as renovado and disburses a new one.
func (h *PrestamoHandler) Renovar(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	var req dto.RenovarPrestamoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Renovar(c.Request.Context(), middleware.Actor(c), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}
