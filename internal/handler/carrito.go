package handler

import (
	"net/http"

	"ananda/internal/apierror"
	"ananda/internal/dto"
	"ananda/internal/middleware"
	"ananda/internal/repository"
	"ananda/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// CarritoHandler exposes the per-user checkout session: cart mutations plus
// the venta wizard (paso, cliente, descuento, metodo de pago).
type CarritoHandler struct{ svc service.CarritoService }

func NewCarritoHandler(svc service.CarritoService) *CarritoHandler {
	return &CarritoHandler{svc: svc}
}

func usuarioIDDeClaims(c *gin.Context) (uuid.UUID, bool) {
	claims := middleware.GetClaims(c)
	id, err := uuid.Parse(claims.UserID)
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID de usuario inválido"))
		return uuid.Nil, false
	}
	return id, true
}

func sesionToResponse(s *repository.SesionVenta) gin.H {
	proc := dto.ProcesoResponse{
		Paso:                 s.Estado.Paso,
		DescuentoPorcentaje:  s.Estado.DescuentoPorcentaje,
		MetodoPago:           s.Estado.MetodoPago,
		Procesando:           s.Estado.Procesando,
		Error:                s.Estado.Error,
		VentaExitosa:         s.Estado.VentaExitosa,
		NuevaVentaCompletada: s.Estado.NuevaVentaCompletada,
		CantidadTotal:        s.Carrito.CantidadTotal,
		Total:                s.Carrito.Total,
	}
	if s.Estado.ClienteID != nil {
		id := s.Estado.ClienteID.String()
		proc.ClienteID = &id
	}
	return gin.H{"carrito": s.Carrito, "proceso": proc}
}

func (h *CarritoHandler) respond(c *gin.Context, s *repository.SesionVenta, err error) {
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusOK, sesionToResponse(s))
}

// Obtener devuelve la sesion de venta del usuario autenticado.
func (h *CarritoHandler) Obtener(c *gin.Context) {
	usuarioID, ok := usuarioIDDeClaims(c)
	if !ok {
		return
	}
	s, err := h.svc.Obtener(c.Request.Context(), usuarioID)
	h.respond(c, s, err)
}

// Agregar suma un producto al carrito (cantidad clampeada al stock).
func (h *CarritoHandler) Agregar(c *gin.Context) {
	usuarioID, ok := usuarioIDDeClaims(c)
	if !ok {
		return
	}
	var req dto.AgregarCarritoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	s, err := h.svc.Agregar(c.Request.Context(), usuarioID, req)
	h.respond(c, s, err)
}

// ActualizarCantidad fija la cantidad exacta de una linea.
func (h *CarritoHandler) ActualizarCantidad(c *gin.Context) {
	usuarioID, ok := usuarioIDDeClaims(c)
	if !ok {
		return
	}
	var req dto.ActualizarCantidadRequest
	if !bindAndValidate(c, &req) {
		return
	}
	s, err := h.svc.ActualizarCantidad(c.Request.Context(), usuarioID, req)
	h.respond(c, s, err)
}

// Eliminar quita una linea del carrito.
func (h *CarritoHandler) Eliminar(c *gin.Context) {
	usuarioID, ok := usuarioIDDeClaims(c)
	if !ok {
		return
	}
	productoID, err := uuid.Parse(c.Param("producto_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("producto_id inválido"))
		return
	}
	s, err := h.svc.Eliminar(c.Request.Context(), usuarioID, productoID)
	h.respond(c, s, err)
}

// Vaciar descarta todas las lineas del carrito.
func (h *CarritoHandler) Vaciar(c *gin.Context) {
	usuarioID, ok := usuarioIDDeClaims(c)
	if !ok {
		return
	}
	s, err := h.svc.Vaciar(c.Request.Context(), usuarioID)
	h.respond(c, s, err)
}

// SetCliente selecciona el cliente de la venta en curso.
func (h *CarritoHandler) SetCliente(c *gin.Context) {
	usuarioID, ok := usuarioIDDeClaims(c)
	if !ok {
		return
	}
	var req dto.SetClienteRequest
	if !bindAndValidate(c, &req) {
		return
	}
	s, err := h.svc.SetCliente(c.Request.Context(), usuarioID, req)
	h.respond(c, s, err)
}

// SetDescuento fija el descuento porcentual (clampeado a [0,100]).
func (h *CarritoHandler) SetDescuento(c *gin.Context) {
	usuarioID, ok := usuarioIDDeClaims(c)
	if !ok {
		return
	}
	var req dto.SetDescuentoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	s, err := h.svc.SetDescuento(c.Request.Context(), usuarioID, req.DescuentoPorcentaje)
	h.respond(c, s, err)
}

// SetMetodoPago selecciona el metodo de pago (FT | TC | TB).
func (h *CarritoHandler) SetMetodoPago(c *gin.Context) {
	usuarioID, ok := usuarioIDDeClaims(c)
	if !ok {
		return
	}
	var req dto.SetMetodoPagoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	s, err := h.svc.SetMetodoPago(c.Request.Context(), usuarioID, req.MetodoPago)
	h.respond(c, s, err)
}

// AvanzarPaso pasa del paso 2 al 3. El paso 3 solo se alcanza por esta via.
func (h *CarritoHandler) AvanzarPaso(c *gin.Context) {
	usuarioID, ok := usuarioIDDeClaims(c)
	if !ok {
		return
	}
	s, err := h.svc.AvanzarPaso(c.Request.Context(), usuarioID)
	h.respond(c, s, err)
}

// Reiniciar descarta la sesion completa: carrito y wizard vuelven al inicio.
func (h *CarritoHandler) Reiniciar(c *gin.Context) {
	usuarioID, ok := usuarioIDDeClaims(c)
	if !ok {
		return
	}
	s, err := h.svc.Reiniciar(c.Request.Context(), usuarioID)
	h.respond(c, s, err)
}
