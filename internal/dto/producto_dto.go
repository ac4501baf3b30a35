package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type CrearProductoRequest struct {
	Codigo         string          `json:"codigo"      validate:"required,min=1"`
	Nombre         string          `json:"nombre"      validate:"required,min=2"`
	Descripcion    *string         `json:"descripcion"`
	Precio         decimal.Decimal `json:"precio"      validate:"min=0"`
	Stock          int             `json:"stock"       validate:"min=0"`
	Imagen         *string         `json:"imagen"`
	CategoriaID    *string         `json:"categoria_id"    validate:"omitempty,uuid"`
	SubcategoriaID *string         `json:"subcategoria_id" validate:"omitempty,uuid"`
}

type ActualizarProductoRequest struct {
	Nombre         *string          `json:"nombre"      validate:"omitempty,min=2"`
	Descripcion    *string          `json:"descripcion"`
	Precio         *decimal.Decimal `json:"precio"`
	Stock          *int             `json:"stock"       validate:"omitempty,min=0"`
	Imagen         *string          `json:"imagen"`
	CategoriaID    *string          `json:"categoria_id"    validate:"omitempty,uuid"`
	SubcategoriaID *string          `json:"subcategoria_id" validate:"omitempty,uuid"`
}

// ProductoFilter narrows the catalog listing.
type ProductoFilter struct {
	Busqueda    string `form:"busqueda"`
	CategoriaID string `form:"categoria_id"`
	Activo      string `form:"activo"` // "", "true", "false"
	Page        int    `form:"page"`
	Limit       int    `form:"limit"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type ProductoResponse struct {
	ID           string          `json:"id"`
	Codigo       string          `json:"codigo"`
	Nombre       string          `json:"nombre"`
	Descripcion  *string         `json:"descripcion"`
	Precio       decimal.Decimal `json:"precio"`
	Stock        int             `json:"stock"`
	Imagen       *string         `json:"imagen"`
	Categoria    *string         `json:"categoria"`
	Subcategoria *string         `json:"subcategoria"`
	Activo       bool            `json:"activo"`
}

type ProductoListResponse struct {
	Data  []ProductoResponse `json:"data"`
	Total int64              `json:"total"`
	Page  int                `json:"page"`
	Limit int                `json:"limit"`
}
