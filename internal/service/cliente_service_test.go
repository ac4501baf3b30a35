package service

import (
	"context"
	"testing"
	"time"

	"ananda/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedHoy(year int, month time.Month, day int) func() time.Time {
	return func() time.Time {
		return time.Date(year, month, day, 10, 0, 0, 0, time.UTC)
	}
}

func newClienteSvc(repo *stubClienteRepo, hoy func() time.Time) *clienteService {
	svc := NewClienteService(repo, nil).(*clienteService)
	svc.hoy = hoy
	return svc
}

func seedCliente(t *testing.T, repo *stubClienteRepo, nombre string, nacimiento string) *model.Cliente {
	t.Helper()
	c := &model.Cliente{Nombre: nombre, Apellido: "García", Telefono: "1155667788", Activo: true}
	if nacimiento != "" {
		fn, err := time.Parse("2006-01-02", nacimiento)
		require.NoError(t, err)
		c.FechaNacimiento = &fn
	}
	require.NoError(t, repo.Create(context.Background(), c))
	return c
}

func TestSaludarUnaVezPorAnoCalendario(t *testing.T) {
	repo := newStubClienteRepo()
	svc := newClienteSvc(repo, fixedHoy(2026, time.August, 30))
	ctx := context.Background()

	c := seedCliente(t, repo, "Ana", "1990-08-30")

	resp, err := svc.Saludar(ctx, c.ID)
	require.NoError(t, err)
	require.NotNil(t, resp.UltimoSaludo)
	assert.Equal(t, "2026-08-30", *resp.UltimoSaludo)

	// El mismo año no admite un segundo saludo, ni siquiera meses después.
	svc.hoy = fixedHoy(2026, time.December, 31)
	_, err = svc.Saludar(ctx, c.ID)
	assert.ErrorIs(t, err, ErrYaSaludado)

	// El cambio de año calendario rehabilita el saludo.
	svc.hoy = fixedHoy(2027, time.January, 2)
	resp, err = svc.Saludar(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "2027-01-02", *resp.UltimoSaludo)
}

func TestSaludarClienteInexistente(t *testing.T) {
	svc := newClienteSvc(newStubClienteRepo(), fixedHoy(2026, time.August, 30))

	_, err := svc.Saludar(context.Background(), uuid.New())
	require.Error(t, err)
	assert.Equal(t, "cliente no encontrado", err.Error())
}

func TestCumpleanosVentanaYOrden(t *testing.T) {
	repo := newStubClienteRepo()
	svc := newClienteSvc(repo, fixedHoy(2026, time.August, 30))
	ctx := context.Background()

	hoyMismo := seedCliente(t, repo, "Ana", "1990-08-30")
	enTres := seedCliente(t, repo, "Bruno", "1985-09-02")
	seedCliente(t, repo, "Carla", "1992-09-09")  // a 10 días, fuera de la ventana
	seedCliente(t, repo, "Diego", "1970-08-29")  // ayer: da la vuelta a 364
	seedCliente(t, repo, "Elena", "")            // sin fecha, nunca aparece

	// Ana ya fue saludada este año; Bruno sigue pendiente.
	saludo := time.Date(2026, time.March, 15, 0, 0, 0, 0, time.UTC)
	hoyMismo.UltimoSaludo = &saludo

	items, err := svc.Cumpleanos(ctx, 7)
	require.NoError(t, err)
	require.Len(t, items, 2)

	assert.Equal(t, hoyMismo.ID.String(), items[0].Cliente.ID)
	assert.Equal(t, 0, items[0].DiasRestantes)
	assert.Equal(t, model.SaludoSaludado, items[0].EstadoSaludo)

	assert.Equal(t, enTres.ID.String(), items[1].Cliente.ID)
	assert.Equal(t, 3, items[1].DiasRestantes)
	assert.Equal(t, model.SaludoPendiente, items[1].EstadoSaludo)
}

func TestCumpleanosDiasNegativoEquivaleAHoy(t *testing.T) {
	repo := newStubClienteRepo()
	svc := newClienteSvc(repo, fixedHoy(2026, time.August, 30))

	seedCliente(t, repo, "Ana", "1990-08-30")
	seedCliente(t, repo, "Bruno", "1985-09-02")

	items, err := svc.Cumpleanos(context.Background(), -5)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, 0, items[0].DiasRestantes)
}
