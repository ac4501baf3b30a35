package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Venta estados.
const (
	VentaCompletada = "completada"
	VentaAnulada    = "anulada"
)

// Metodos de pago aceptados: FT (efectivo), TC (tarjeta), TB (transferencia).
const (
	MetodoPagoEfectivo      = "FT"
	MetodoPagoTarjeta       = "TC"
	MetodoPagoTransferencia = "TB"
)

// Venta is a completed sale attached to an open caja session.
type Venta struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	NumeroTicket int       `gorm:"uniqueIndex;not null"`
	CajaID       uuid.UUID `gorm:"type:uuid;index;not null"`
	ClienteID    uuid.UUID `gorm:"type:uuid;index;not null"`
	UsuarioID    uuid.UUID `gorm:"type:uuid;not null"`
	MetodoPago   string    `gorm:"type:varchar(4);not null"`
	// DescuentoPorcentaje in [0,100]; Total = Subtotal × (1 − pct/100).
	DescuentoPorcentaje decimal.Decimal `gorm:"type:decimal(5,2);not null;default:0"`
	Subtotal            decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Total               decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Estado              string          `gorm:"type:varchar(20);not null;default:'completada'"`
	CreatedAt           time.Time

	Cliente *Cliente    `gorm:"foreignKey:ClienteID"`
	Usuario *Usuario    `gorm:"foreignKey:UsuarioID"`
	Items   []VentaItem `gorm:"foreignKey:VentaID"`
}

// VentaItem is an immutable sale line. Price is captured at sale time so a
// later catalog price change never rewrites history.
type VentaItem struct {
	ID             uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	VentaID        uuid.UUID       `gorm:"type:uuid;index;not null"`
	ProductoID     uuid.UUID       `gorm:"type:uuid;not null"`
	Cantidad       int             `gorm:"not null"`
	PrecioUnitario decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	Subtotal       decimal.Decimal `gorm:"type:decimal(12,2);not null"`

	Producto *Producto `gorm:"foreignKey:ProductoID"`
}
