package handler

import (
	"net/http"

	"ananda/internal/apierror"
	"ananda/internal/dto"
	"ananda/internal/middleware"
	"ananda/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type CajaHandler struct{ svc service.CajaService }

func NewCajaHandler(svc service.CajaService) *CajaHandler { return &CajaHandler{svc: svc} }

// Actual godoc
// @Summary Devuelve la caja abierta actual (o caja: null si no hay)
// @Tags caja
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.CajaResponse
// @Router /caja/actual [get]
func (h *CajaHandler) Actual(c *gin.Context) {
	caja, err := h.svc.Actual(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New(err.Error()))
		return
	}
	if caja == nil {
		c.JSON(http.StatusOK, gin.H{"caja": nil})
		return
	}
	c.JSON(http.StatusOK, gin.H{"caja": service.CajaToResponse(caja)})
}

// Abrir godoc
// @Summary Abre una nueva caja (o adopta la ya abierta)
// @Tags caja
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.AbrirCajaRequest true "Monto inicial"
// @Success 201 {object} dto.CajaResponse
// @Failure 400 {object} apierror.APIError
// @Router /caja/abrir [post]
func (h *CajaHandler) Abrir(c *gin.Context) {
	var req dto.AbrirCajaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	claims := middleware.GetClaims(c)
	usuarioID, _ := uuid.Parse(claims.UserID)

	resp, err := h.svc.Abrir(c.Request.Context(), usuarioID, req)
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Cerrar godoc
// @Summary Cierra la caja abierta declarando el monto contado
// @Tags caja
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.CerrarCajaRequest true "Monto declarado y notas"
// @Success 200 {object} dto.CajaResponse
// @Failure 400 {object} apierror.APIError
// @Router /caja/cerrar [post]
func (h *CajaHandler) Cerrar(c *gin.Context) {
	var req dto.CerrarCajaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	claims := middleware.GetClaims(c)
	usuarioID, _ := uuid.Parse(claims.UserID)

	resp, err := h.svc.Cerrar(c.Request.Context(), usuarioID, req)
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// MarcarControlada godoc
// @Summary Marca una caja cerrada como controlada (solo administrador)
// @Tags caja
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.MarcarControladaRequest true "ID de caja"
// @Success 200 {object} dto.CajaResponse
// @Failure 400 {object} apierror.APIError
// @Router /caja/marcar-controlada [post]
func (h *CajaHandler) MarcarControlada(c *gin.Context) {
	var req dto.MarcarControladaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	cajaID, err := uuid.Parse(req.CajaID)
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("caja_id inválido"))
		return
	}
	resp, err := h.svc.MarcarControlada(c.Request.Context(), cajaID)
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Listar godoc
// @Summary Lista el historial de cajas con filtros
// @Tags caja
// @Produce json
// @Security BearerAuth
// @Success 200 {array} dto.CajaResponse
// @Router /caja [get]
func (h *CajaHandler) Listar(c *gin.Context) {
	var filter dto.CajaFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("filtros inválidos"))
		return
	}
	resp, err := h.svc.Listar(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

// Detalle godoc
// @Summary Devuelve una caja con sus ventas
// @Tags caja
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID de caja"
// @Success 200 {object} dto.CajaResponse
// @Failure 404 {object} apierror.APIError
// @Router /caja/{id} [get]
func (h *CajaHandler) Detalle(c *gin.Context) {
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
