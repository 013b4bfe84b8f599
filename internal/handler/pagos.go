package handler

import (
	"net/http"

	"cobranza/internal/dto"
	"cobranza/internal/service"

	"github.com/gin-gonic/gin"
)

type PagoHandler struct{ svc service.PagoService }

func NewPagoHandler(svc service.PagoService) *PagoHandler { return &PagoHandler{svc: svc} }

func (h *PagoHandler) Obtener(c *gin.Context) {
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

// AplicarAbono: late fee first, then the installment balance.
// POST /v1/pagos/:id/abonos
func (h *PagoHandler) AplicarAbono(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	var req dto.AbonoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.AplicarAbono(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
