package dto

import "github.com/google/uuid"

type CrearCategoriaRequest struct {
	Nombre string `json:"nombre" validate:"required,min=2"`
}

type ActualizarCategoriaRequest struct {
	Nombre *string `json:"nombre" validate:"omitempty,min=2"`
	Activo *bool   `json:"activo"`
}

type CrearSubcategoriaRequest struct {
	Nombre string `json:"nombre" validate:"required,min=2"`
}

type SubcategoriaResponse struct {
	ID     uuid.UUID `json:"id"`
	Nombre string    `json:"nombre"`
	Activo bool      `json:"activo"`
}

type CategoriaResponse struct {
	ID            uuid.UUID              `json:"id"`
	Nombre        string                 `json:"nombre"`
	Activo        bool                   `json:"activo"`
	Subcategorias []SubcategoriaResponse `json:"subcategorias"`
}
