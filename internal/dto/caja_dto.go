package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

// AbrirCajaRequest: monto_inicial must be a well-formed decimal >= 0.
// Unparsable input is rejected at bind time, never coerced to zero.
type AbrirCajaRequest struct {
	MontoInicial decimal.Decimal `json:"monto_inicial" validate:"min=0"`
}

type CerrarCajaRequest struct {
	MontoDeclarado decimal.Decimal `json:"monto_declarado" validate:"min=0"`
	Notas          *string         `json:"notas"`
}

type MarcarControladaRequest struct {
	CajaID string `json:"caja_id" validate:"required,uuid"`
}

// CajaFilter narrows the historical listing.
type CajaFilter struct {
	FechaInicio string `form:"fecha_inicio"`
	FechaFin    string `form:"fecha_fin"`
	UsuarioID   string `form:"usuario_id"`
	Estado      string `form:"estado"` // abierta | cerrada | controlada
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type CajaResponse struct {
	ID             string           `json:"id"`
	Estado         string           `json:"estado"`
	MontoInicial   decimal.Decimal  `json:"monto_inicial"`
	MontoSistema   decimal.Decimal  `json:"monto_sistema"`
	MontoFinal     *decimal.Decimal `json:"monto_final"`
	MontoDeclarado *decimal.Decimal `json:"monto_declarado"`
	Diferencia     *DiferenciaResponse `json:"diferencia"`
	Notas          *string          `json:"notas"`
	FechaApertura  string           `json:"fecha_apertura"`
	FechaCierre    *string          `json:"fecha_cierre"`
	FechaControl   *string          `json:"fecha_control"`
	UsuarioApertura string          `json:"usuario_apertura"`
	UsuarioCierre   *string         `json:"usuario_cierre"`
	VentasTotal    decimal.Decimal  `json:"ventas_total"`
	VentasCantidad int64            `json:"ventas_cantidad"`
	Ventas         []VentaListItem  `json:"ventas,omitempty"`
}

type DiferenciaResponse struct {
	Monto         decimal.Decimal `json:"monto"`
	Clasificacion string          `json:"clasificacion"` // igual | positiva | negativa
}
