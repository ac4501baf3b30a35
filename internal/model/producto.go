package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Producto is a catalog/stock item.
type Producto struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Codigo      string    `gorm:"uniqueIndex;not null"`
	Nombre      string    `gorm:"index;not null"`
	Descripcion *string
	Precio      decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	Stock       int             `gorm:"not null;default:0"`
	Imagen      *string
	CategoriaID    *uuid.UUID `gorm:"type:uuid;index"`
	SubcategoriaID *uuid.UUID `gorm:"type:uuid;index"`
	Activo         bool       `gorm:"not null;default:true"`
	CreatedAt      time.Time
	UpdatedAt      time.Time

	Categoria    *Categoria    `gorm:"foreignKey:CategoriaID"`
	Subcategoria *Subcategoria `gorm:"foreignKey:SubcategoriaID"`
}

func (Producto) TableName() string { return "productos" }
