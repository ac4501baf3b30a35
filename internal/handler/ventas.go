package handler

import (
	"errors"
	"net/http"

	"ananda/internal/apierror"
	"ananda/internal/dto"
	"ananda/internal/infra"
	"ananda/internal/middleware"
	"ananda/internal/proceso"
	"ananda/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type VentaHandler struct {
	svc         service.VentaService
	storagePath string
}

func NewVentaHandler(svc service.VentaService, storagePath string) *VentaHandler {
	return &VentaHandler{svc: svc, storagePath: storagePath}
}

// ProcesarCompleta godoc
// @Summary Procesa la venta completa en una sola operacion atomica
// @Tags ventas
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.ProcesarVentaRequest true "Venta a procesar"
// @Success 201 {object} dto.VentaResponse
// @Failure 400 {object} apierror.APIError
// @Router /ventas/procesar-completa [post]
func (h *VentaHandler) ProcesarCompleta(c *gin.Context) {
	var req dto.ProcesarVentaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	claims := middleware.GetClaims(c)
	usuarioID, _ := uuid.Parse(claims.UserID)

	resp, err := h.svc.ProcesarCompleta(c.Request.Context(), usuarioID, req)
	if err != nil {
		var ve *proceso.ValidationError
		if errors.As(err, &ve) {
			c.JSON(http.StatusUnprocessableEntity, apierror.New(ve.Msg))
			return
		}
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Listar godoc
// @Summary Lista las ventas con filtros y paginacion
// @Tags ventas
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.VentaListResponse
// @Router /ventas [get]
func (h *VentaHandler) Listar(c *gin.Context) {
	var filter dto.VentaFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("filtros inválidos"))
		return
	}
	resp, err := h.svc.Listar(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Detalle godoc
// @Summary Devuelve una venta con sus items
// @Tags ventas
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID de venta"
// @Success 200 {object} dto.VentaResponse
// @Failure 404 {object} apierror.APIError
// @Router /ventas/{id} [get]
func (h *VentaHandler) Detalle(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID inválido"))
		return
	}
	resp, err := h.svc.Detalle(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusNotFound, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Ticket godoc
// @Summary Genera y descarga el ticket PDF de una venta
// @Tags ventas
// @Produce application/pdf
// @Security BearerAuth
// @Param id path string true "ID de venta"
// @Success 200
// @Failure 404 {object} apierror.APIError
// @Router /ventas/{id}/ticket [get]
func (h *VentaHandler) Ticket(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID inválido"))
		return
	}
	venta, err := h.svc.ObtenerParaTicket(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusNotFound, apierror.New(err.Error()))
		return
	}
	path, err := infra.GenerateTicketPDF(venta, h.storagePath)
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("No se pudo generar el ticket"))
		return
	}
	c.FileAttachment(path, "ticket.pdf")
}

// Resumen godoc
// @Summary Totales de ventas agrupados por dia
// @Tags ventas
// @Produce json
// @Security BearerAuth
// @Success 200 {array} dto.ResumenDia
// @Router /ventas/resumen [get]
func (h *VentaHandler) Resumen(c *gin.Context) {
	resp, err := h.svc.Resumen(c.Request.Context(), c.Query("fecha_inicio"), c.Query("fecha_fin"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}
