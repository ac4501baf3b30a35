package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func fecha(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestSaludadoEsteAno(t *testing.T) {
	hoy := fecha(2026, time.August, 30)

	c := &Cliente{}
	assert.False(t, c.SaludadoEsteAno(hoy), "sin saludo previo")

	previo := fecha(2025, time.December, 31)
	c.UltimoSaludo = &previo
	assert.False(t, c.SaludadoEsteAno(hoy), "saludo del año anterior no cuenta")

	esteAno := fecha(2026, time.January, 2)
	c.UltimoSaludo = &esteAno
	assert.True(t, c.SaludadoEsteAno(hoy), "cualquier fecha del mismo año calendario cuenta")
}

func TestEstadoSaludo(t *testing.T) {
	hoy := fecha(2026, time.August, 30)
	c := &Cliente{}
	assert.Equal(t, SaludoPendiente, c.EstadoSaludo(hoy))

	f := fecha(2026, time.March, 1)
	c.UltimoSaludo = &f
	assert.Equal(t, SaludoSaludado, c.EstadoSaludo(hoy))
}

func TestDiasHastaCumpleanos(t *testing.T) {
	hoy := fecha(2026, time.August, 30)

	c := &Cliente{}
	assert.Equal(t, -1, c.DiasHastaCumpleanos(hoy), "sin fecha de nacimiento")

	mismoDia := fecha(1990, time.August, 30)
	c.FechaNacimiento = &mismoDia
	assert.Equal(t, 0, c.DiasHastaCumpleanos(hoy))

	enTresDias := fecha(1990, time.September, 2)
	c.FechaNacimiento = &enTresDias
	assert.Equal(t, 3, c.DiasHastaCumpleanos(hoy))

	// Cumpleaños ya pasado este año: envuelve al año siguiente
	ayer := fecha(1990, time.August, 29)
	c.FechaNacimiento = &ayer
	assert.Equal(t, 364, c.DiasHastaCumpleanos(hoy))
}
