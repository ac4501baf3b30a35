// Package carrito implements the in-progress cart as pure, synchronous
// reducer logic. It performs no I/O: persistence of the cart between requests
// is the repository layer's concern.
package carrito

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Linea is one cart line. Invariant: 1 ≤ Cantidad ≤ Stock.
type Linea struct {
	ProductoID   uuid.UUID       `json:"producto_id"`
	Codigo       string          `json:"codigo"`
	Nombre       string          `json:"nombre"`
	Precio       decimal.Decimal `json:"precio"`
	Cantidad     int             `json:"cantidad"`
	Stock        int             `json:"stock"`
	Imagen       *string         `json:"imagen,omitempty"`
	Categoria    string          `json:"categoria,omitempty"`
	Subcategoria string          `json:"subcategoria,omitempty"`
}

// Carrito holds the cart lines plus the totals, which are recomputed
// synchronously after every mutation.
type Carrito struct {
	Items         []Linea         `json:"items"`
	Total         decimal.Decimal `json:"total"`
	CantidadTotal int             `json:"cantidad_total"`
}

// Nuevo returns an empty cart with zeroed totals.
func Nuevo() *Carrito {
	return &Carrito{Items: []Linea{}, Total: decimal.Zero}
}

// Agregar inserts producto into the cart or, when a line with the same id
// already exists, increments its quantity. The resulting quantity is clamped
// so it never exceeds the line's stock figure (which is refreshed from the
// incoming producto). Zero-stock products never produce a line.
func (c *Carrito) Agregar(producto Linea, cantidad int) {
	if cantidad < 1 {
		cantidad = 1
	}
	for i := range c.Items {
		if c.Items[i].ProductoID == producto.ProductoID {
			// Adopt the (possibly updated) stock figure before clamping.
			c.Items[i].Stock = producto.Stock
			c.Items[i].Precio = producto.Precio
			c.Items[i].Cantidad = clamp(c.Items[i].Cantidad+cantidad, producto.Stock)
			if c.Items[i].Cantidad == 0 {
				c.Items = append(c.Items[:i], c.Items[i+1:]...)
			}
			c.recalcular()
			return
		}
	}
	if producto.Stock <= 0 {
		return
	}
	producto.Cantidad = clamp(cantidad, producto.Stock)
	c.Items = append(c.Items, producto)
	c.recalcular()
}

// Eliminar removes the line with the given product id.
func (c *Carrito) Eliminar(productoID uuid.UUID) {
	for i := range c.Items {
		if c.Items[i].ProductoID == productoID {
			c.Items = append(c.Items[:i], c.Items[i+1:]...)
			break
		}
	}
	c.recalcular()
}

// ActualizarCantidad sets an exact quantity on a line. It applies only when
// 0 < cantidad ≤ stock and silently no-ops otherwise; the caller surfaces
// the rejection by disabling the +/- controls at the boundary.
func (c *Carrito) ActualizarCantidad(productoID uuid.UUID, cantidad int) {
	for i := range c.Items {
		if c.Items[i].ProductoID == productoID {
			if cantidad > 0 && cantidad <= c.Items[i].Stock {
				c.Items[i].Cantidad = cantidad
				c.recalcular()
			}
			return
		}
	}
}

// Vaciar resets the cart to empty/zero.
func (c *Carrito) Vaciar() {
	c.Items = []Linea{}
	c.recalcular()
}

// Vacio reports whether the cart has no lines.
func (c *Carrito) Vacio() bool { return len(c.Items) == 0 }

func (c *Carrito) recalcular() {
	total := decimal.Zero
	cantidad := 0
	for _, l := range c.Items {
		total = total.Add(l.Precio.Mul(decimal.NewFromInt(int64(l.Cantidad))))
		cantidad += l.Cantidad
	}
	c.Total = total
	c.CantidadTotal = cantidad
}

func clamp(cantidad, stock int) int {
	if cantidad > stock {
		return stock
	}
	return cantidad
}
