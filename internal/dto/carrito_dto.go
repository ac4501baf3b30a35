package dto

import "github.com/shopspring/decimal"

// ─── Carrito ─────────────────────────────────────────────────────────────────

type AgregarCarritoRequest struct {
	ProductoID string `json:"producto_id" validate:"required,uuid"`
	Cantidad   int    `json:"cantidad"`
}

type ActualizarCantidadRequest struct {
	ProductoID string `json:"producto_id" validate:"required,uuid"`
	Cantidad   int    `json:"cantidad"    validate:"required,gt=0"`
}

// ─── Proceso de venta ────────────────────────────────────────────────────────

type SetClienteRequest struct {
	ClienteID string `json:"cliente_id" validate:"required,uuid"`
}

type SetDescuentoRequest struct {
	DescuentoPorcentaje decimal.Decimal `json:"descuento_porcentaje" validate:"min=0,max=100"`
}

type SetMetodoPagoRequest struct {
	MetodoPago string `json:"metodo_pago" validate:"required,oneof=FT TC TB"`
}

// ProcesoResponse mirrors the wizard state plus the cart it is derived from.
type ProcesoResponse struct {
	Paso                 int             `json:"paso"`
	ClienteID            *string         `json:"cliente_id"`
	DescuentoPorcentaje  decimal.Decimal `json:"descuento_porcentaje"`
	MetodoPago           string          `json:"metodo_pago"`
	Procesando           bool            `json:"procesando"`
	Error                string          `json:"error"`
	VentaExitosa         bool            `json:"venta_exitosa"`
	NuevaVentaCompletada bool            `json:"nueva_venta_completada"`
	CantidadTotal        int             `json:"cantidad_total"`
	Total                decimal.Decimal `json:"total"`
}
