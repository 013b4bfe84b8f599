package handler

import (
	"net/http"

	"cobranza/internal/dto"
	"cobranza/internal/middleware"
	"cobranza/internal/service"

	"github.com/gin-gonic/gin"
)

type MoratorioHandler struct{ svc service.MoratorioService }

func NewMoratorioHandler(svc service.MoratorioService) *MoratorioHandler {
	return &MoratorioHandler{svc: svc}
}

func (h *MoratorioHandler) Aplicar(c *gin.Context) {
	var req dto.AplicarMoratorioRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Aplicar(c.Request.Context(), middleware.Actor(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *MoratorioHandler) Obtener(c *gin.Context) {
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

func (h *MoratorioHandler) Condonar(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	var req dto.CondonarMoratorioRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Condonar(c.Request.Context(), middleware.Actor(c), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *MoratorioHandler) Ajustar(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	var req dto.AjustarMoratorioRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Ajustar(c.Request.Context(), middleware.Actor(c), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// HistorialCliente: GET /v1/clientes/:id/moratorios
func (h *MoratorioHandler) HistorialCliente(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.HistorialCliente(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *MoratorioHandler) Estadisticas(c *gin.Context) {
	resp, err := h.svc.Estadisticas(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// PagosPendientes lists overdue installments without a late fee, with a
// suggested amount. ?limit= defaults to 100.
func (h *MoratorioHandler) PagosPendientes(c *gin.Context) {
	limit, ok := queryInt(c, "limit", 100)
	if !ok {
		return
	}
	resp, err := h.svc.PagosPendientes(c.Request.Context(), limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
