package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type ItemVentaRequest struct {
	ProductoID string `json:"producto_id" validate:"required,uuid"`
	Cantidad   int    `json:"cantidad"    validate:"required,gt=0"`
}

// ProcesarVentaRequest is the atomic sale payload: the whole checkout in one
// round-trip (sale + stock decrement + register attachment).
type ProcesarVentaRequest struct {
	ClienteID  string             `json:"cliente_id" validate:"omitempty,uuid"`
	MetodoPago string             `json:"metodo_pago" validate:"omitempty,oneof=FT TC TB"`
	Descuento  decimal.Decimal    `json:"descuento"   validate:"min=0,max=100"`
	Items      []ItemVentaRequest `json:"items"       validate:"dive"`
	CajaID     string             `json:"caja_id"     validate:"omitempty,uuid"`
}

// VentaFilter narrows the sales history listing.
type VentaFilter struct {
	FechaInicio string `form:"fecha_inicio"`
	FechaFin    string `form:"fecha_fin"`
	Estado      string `form:"estado"`
	Page        int    `form:"page"`
	Limit       int    `form:"limit"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type ItemVentaResponse struct {
	ProductoID     string          `json:"producto_id"`
	Producto       string          `json:"producto"`
	Cantidad       int             `json:"cantidad"`
	PrecioUnitario decimal.Decimal `json:"precio_unitario"`
	Subtotal       decimal.Decimal `json:"subtotal"`
}

type VentaResponse struct {
	ID                  string              `json:"id"`
	NumeroTicket        int                 `json:"numero_ticket"`
	CajaID              string              `json:"caja_id"`
	Cliente             string              `json:"cliente"`
	MetodoPago          string              `json:"metodo_pago"`
	DescuentoPorcentaje decimal.Decimal     `json:"descuento_porcentaje"`
	Subtotal            decimal.Decimal     `json:"subtotal"`
	Total               decimal.Decimal     `json:"total"`
	Estado              string              `json:"estado"`
	Items               []ItemVentaResponse `json:"items"`
	CreatedAt           string              `json:"created_at"`
}

type VentaListItem struct {
	ID           string          `json:"id"`
	NumeroTicket int             `json:"numero_ticket"`
	Cliente      string          `json:"cliente"`
	Vendedor     string          `json:"vendedor"`
	MetodoPago   string          `json:"metodo_pago"`
	Total        decimal.Decimal `json:"total"`
	Estado       string          `json:"estado"`
	CreatedAt    string          `json:"created_at"`
}

type VentaListResponse struct {
	Data  []VentaListItem `json:"data"`
	Total int64           `json:"total"`
	Page  int             `json:"page"`
	Limit int             `json:"limit"`
}

// ResumenDia feeds the dashboard chart: one bucket per calendar day.
type ResumenDia struct {
	Fecha    string          `json:"fecha"`
	Total    decimal.Decimal `json:"total"`
	Cantidad int64           `json:"cantidad"`
}
