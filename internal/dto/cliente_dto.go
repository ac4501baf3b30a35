package dto

// ─── Request DTOs ────────────────────────────────────────────────────────────

type CrearClienteRequest struct {
	Nombre          string  `json:"nombre"           validate:"required,min=2"`
	Apellido        string  `json:"apellido"         validate:"required,min=2"`
	Telefono        string  `json:"telefono"         validate:"required,min=6"`
	Email           *string `json:"email"            validate:"omitempty,email"`
	FechaNacimiento *string `json:"fecha_nacimiento" validate:"omitempty,datetime=2006-01-02"`
}

type ActualizarClienteRequest struct {
	Nombre          *string `json:"nombre"           validate:"omitempty,min=2"`
	Apellido        *string `json:"apellido"         validate:"omitempty,min=2"`
	Telefono        *string `json:"telefono"         validate:"omitempty,min=6"`
	Email           *string `json:"email"            validate:"omitempty,email"`
	FechaNacimiento *string `json:"fecha_nacimiento" validate:"omitempty,datetime=2006-01-02"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type ClienteResponse struct {
	ID              string  `json:"id"`
	Nombre          string  `json:"nombre"`
	Apellido        string  `json:"apellido"`
	Telefono        string  `json:"telefono"`
	Email           *string `json:"email"`
	FechaNacimiento *string `json:"fecha_nacimiento"`
	UltimoSaludo    *string `json:"ultimo_saludo"`
	Activo          bool    `json:"activo"`
}

// CumpleanosItem is one row of the upcoming-birthdays listing.
type CumpleanosItem struct {
	Cliente      ClienteResponse `json:"cliente"`
	DiasRestantes int            `json:"dias_restantes"`
	EstadoSaludo string          `json:"estado_saludo"` // pendiente | saludado
}
