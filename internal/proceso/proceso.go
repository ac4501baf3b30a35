// Package proceso implements the 3-step sale wizard as an explicit finite
// state machine: select customer (paso 1) → build cart (paso 2) → confirm and
// pay (paso 3). All transition logic is pure; the I/O effect layer
// (service.VentaService) only runs after validation succeeds.
package proceso

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Pasos del asistente de venta.
const (
	PasoCliente      = 1
	PasoCarrito      = 2
	PasoConfirmacion = 3
)

// Precondition rejection messages, surfaced verbatim to the user.
const (
	ErrSinCliente    = "Debe seleccionar un cliente"
	ErrSinProductos  = "Debe agregar al menos un producto"
	ErrSinMetodoPago = "Debe seleccionar un método de pago"
	ErrSinCaja       = "No hay una caja abierta"
)

// ValidationError is a client-recoverable precondition failure. It carries a
// plain user-facing message and nothing else; no partial state exists when
// one is returned, so there is nothing to roll back.
type ValidationError struct{ Msg string }

func (e *ValidationError) Error() string { return e.Msg }

// Estado is the wizard state for one checkout session.
type Estado struct {
	Paso                 int             `json:"paso"`
	ClienteID            *uuid.UUID      `json:"cliente_id"`
	DescuentoPorcentaje  decimal.Decimal `json:"descuento_porcentaje"`
	MetodoPago           string          `json:"metodo_pago"`
	Procesando           bool            `json:"procesando"`
	Error                string          `json:"error"`
	VentaExitosa         bool            `json:"venta_exitosa"`
	NuevaVentaCompletada bool            `json:"nueva_venta_completada"`
}

// NuevoEstado returns the initial wizard shape (paso 1, nothing selected).
func NuevoEstado() *Estado {
	return &Estado{Paso: PasoCliente, DescuentoPorcentaje: decimal.Zero}
}

// CorregirPaso derives the reachable paso from the full relevant snapshot.
// Rules, in order:
//
//	(a) no cliente            → paso 1
//	(b) cliente, empty cart   → paso 1
//	(c) cliente, items, paso 1 → paso 2
//	(d) cliente, items, paso 2|3 → unchanged
//
// Idempotent, and never advances past paso 2 automatically; paso 3 is only
// reached by an explicit user action (AvanzarPaso).
func CorregirPaso(paso int, clienteSet bool, itemCount int) int {
	if !clienteSet || itemCount == 0 {
		return PasoCliente
	}
	if paso == PasoCliente {
		return PasoCarrito
	}
	return paso
}

// Corregir applies CorregirPaso to the estado in place.
func (e *Estado) Corregir(itemCount int) {
	e.Paso = CorregirPaso(e.Paso, e.ClienteID != nil, itemCount)
}

// SetCliente records the selection; navigation is decoupled, so the paso is
// only touched by the correction pass.
func (e *Estado) SetCliente(id uuid.UUID) {
	e.ClienteID = &id
}

// SetDescuento clamps the percentage to [0, 100].
func (e *Estado) SetDescuento(pct decimal.Decimal) {
	switch {
	case pct.IsNegative():
		e.DescuentoPorcentaje = decimal.Zero
	case pct.GreaterThan(decimal.NewFromInt(100)):
		e.DescuentoPorcentaje = decimal.NewFromInt(100)
	default:
		e.DescuentoPorcentaje = pct
	}
}

// SetMetodoPago records the payment-method code. Codes are validated against
// the canonical list at the DTO boundary.
func (e *Estado) SetMetodoPago(codigo string) {
	e.MetodoPago = codigo
}

// AvanzarPaso moves 2 → 3 on explicit user action. Any other transition
// request is ignored; forward jumps and regressions both go through the
// correction rules instead.
func (e *Estado) AvanzarPaso() {
	if e.Paso == PasoCarrito {
		e.Paso = PasoConfirmacion
	}
}

// Reiniciar returns the estado to the initial shape. The service resets the
// cart in the same operation; the two always restart together.
func (e *Estado) Reiniciar() {
	*e = *NuevoEstado()
}

// Snapshot is everything ValidarVenta needs, gathered before any mutation.
type Snapshot struct {
	ClienteSet  bool
	ItemCount   int
	MetodoPago  string
	CajaAbierta bool
}

// ValidarVenta checks the four sale preconditions in order, each with its own
// rejection reason. The first failure wins: with no cliente set the result is
// always ErrSinCliente, whatever else is missing.
func ValidarVenta(s Snapshot) error {
	if !s.ClienteSet {
		return &ValidationError{Msg: ErrSinCliente}
	}
	if s.ItemCount == 0 {
		return &ValidationError{Msg: ErrSinProductos}
	}
	if s.MetodoPago == "" {
		return &ValidationError{Msg: ErrSinMetodoPago}
	}
	if !s.CajaAbierta {
		return &ValidationError{Msg: ErrSinCaja}
	}
	return nil
}
