package model

import (
	"time"

	"github.com/google/uuid"
)

// Saludo classifications for the upcoming-birthdays listing.
const (
	SaludoPendiente = "pendiente"
	SaludoSaludado  = "saludado"
)

// Cliente is a customer record with birthday-greeting tracking.
type Cliente struct {
	ID              uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Nombre          string     `gorm:"not null;index"`
	Apellido        string     `gorm:"not null;index"`
	Telefono        string     `gorm:"not null"`
	Email           *string    `gorm:"index"`
	FechaNacimiento *time.Time `gorm:"type:date"`
	// UltimoSaludo moves forward exactly once per birthday-greeting send;
	// whether the customer is "pendiente" for this year is derived, not stored.
	UltimoSaludo *time.Time `gorm:"type:date"`
	Activo       bool       `gorm:"not null;default:true"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (Cliente) TableName() string { return "clientes" }

// SaludadoEsteAno reports whether the customer already received a greeting in
// hoy's calendar year.
func (c *Cliente) SaludadoEsteAno(hoy time.Time) bool {
	return c.UltimoSaludo != nil && c.UltimoSaludo.Year() == hoy.Year()
}

// EstadoSaludo classifies the customer as pendiente/saludado for hoy's year.
// Pure function of (fecha_nacimiento, ultimo_saludo, hoy).
func (c *Cliente) EstadoSaludo(hoy time.Time) string {
	if c.SaludadoEsteAno(hoy) {
		return SaludoSaludado
	}
	return SaludoPendiente
}

// DiasHastaCumpleanos returns how many days until the next birthday, or -1
// when no birth date is recorded. Feb 29 birthdays resolve to Mar 1 on
// non-leap years.
func (c *Cliente) DiasHastaCumpleanos(hoy time.Time) int {
	if c.FechaNacimiento == nil {
		return -1
	}
	hoy = time.Date(hoy.Year(), hoy.Month(), hoy.Day(), 0, 0, 0, 0, time.UTC)
	next := time.Date(hoy.Year(), c.FechaNacimiento.Month(), c.FechaNacimiento.Day(), 0, 0, 0, 0, time.UTC)
	if next.Before(hoy) {
		next = time.Date(hoy.Year()+1, c.FechaNacimiento.Month(), c.FechaNacimiento.Day(), 0, 0, 0, 0, time.UTC)
	}
	return int(next.Sub(hoy).Hours() / 24)
}
