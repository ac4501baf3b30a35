package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Caja lifecycle states, derived from the timestamp fields; never stored.
const (
	CajaAbierta    = "abierta"
	CajaCerrada    = "cerrada"
	CajaControlada = "controlada"
)

// Diferencia classifications (display only).
const (
	DiferenciaIgual    = "igual"
	DiferenciaPositiva = "positiva"
	DiferenciaNegativa = "negativa"
)

// Caja is a per-shift cash-drawer session. Lifecycle:
// abierta (FechaCierre nil) → cerrada (FechaCierre set) → controlada
// (FechaControl set). Transitions never regress.
type Caja struct {
	ID           uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	MontoInicial decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"monto_inicial"`
	// MontoFinal is the system-computed amount recorded at close.
	MontoFinal     *decimal.Decimal `gorm:"type:decimal(12,2)" json:"monto_final"`
	MontoDeclarado *decimal.Decimal `gorm:"type:decimal(12,2)" json:"monto_declarado"`
	Diferencia     *decimal.Decimal `gorm:"type:decimal(12,2)" json:"diferencia"`
	Notas          *string          `json:"notas"`
	FechaApertura  time.Time        `gorm:"not null" json:"fecha_apertura"`
	FechaCierre    *time.Time       `gorm:"index" json:"fecha_cierre"`
	FechaControl   *time.Time       `json:"fecha_control"`

	UsuarioAperturaID uuid.UUID  `gorm:"type:uuid;not null" json:"usuario_apertura_id"`
	UsuarioCierreID   *uuid.UUID `gorm:"type:uuid" json:"usuario_cierre_id"`

	UsuarioApertura *Usuario `gorm:"foreignKey:UsuarioAperturaID" json:"usuario_apertura,omitempty"`
	UsuarioCierre   *Usuario `gorm:"foreignKey:UsuarioCierreID" json:"usuario_cierre,omitempty"`

	Ventas []Venta `gorm:"foreignKey:CajaID" json:"ventas,omitempty"`
	// Aggregates filled by list queries when line items are not loaded.
	VentasTotalAgg *decimal.Decimal `gorm:"-" json:"ventas_total,omitempty"`
	VentasCantidad int64            `gorm:"-" json:"ventas_cantidad"`
}

func (Caja) TableName() string { return "cajas" }

// Estado derives the lifecycle state from the timestamp fields.
func (c *Caja) Estado() string {
	switch {
	case c.FechaCierre == nil:
		return CajaAbierta
	case c.FechaControl == nil:
		return CajaCerrada
	default:
		return CajaControlada
	}
}

// VentasTotal resolves the total sold during the session, in strict
// preference order:
//  1. sum of loaded Ventas line records
//  2. the ventas_total aggregate from a list query
//  3. MontoFinal − MontoInicial as a last-resort estimate
//
// Returns zero when none are available.
func (c *Caja) VentasTotal() decimal.Decimal {
	if len(c.Ventas) > 0 {
		total := decimal.Zero
		for _, v := range c.Ventas {
			if v.Estado != VentaAnulada {
				total = total.Add(v.Total)
			}
		}
		return total
	}
	if c.VentasTotalAgg != nil {
		return *c.VentasTotalAgg
	}
	if c.MontoFinal != nil {
		return c.MontoFinal.Sub(c.MontoInicial)
	}
	return decimal.Zero
}

// MontoSistema is the expected drawer amount: opening balance plus sales.
func (c *Caja) MontoSistema() decimal.Decimal {
	return c.MontoInicial.Add(c.VentasTotal())
}

// CalcularDiferencia returns monto declarado − monto sistema.
func (c *Caja) CalcularDiferencia(declarado decimal.Decimal) decimal.Decimal {
	return declarado.Sub(c.MontoSistema())
}

// ClasificarDiferencia maps the reconciliation delta sign onto
// "igual" | "positiva" | "negativa".
func ClasificarDiferencia(diferencia decimal.Decimal) string {
	switch diferencia.Sign() {
	case 0:
		return DiferenciaIgual
	case 1:
		return DiferenciaPositiva
	default:
		return DiferenciaNegativa
	}
}
