package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"ananda/internal/dto"
	"ananda/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func abrirCaja(t *testing.T, svc CajaService, monto string) *dto.CajaResponse {
	t.Helper()
	resp, err := svc.Abrir(context.Background(), uuid.New(), dto.AbrirCajaRequest{
		MontoInicial: decimal.RequireFromString(monto),
	})
	require.NoError(t, err)
	return resp
}

func TestAbrirCajaNueva(t *testing.T) {
	repo := newStubCajaRepo()
	svc := NewCajaService(repo, time.Millisecond)

	resp := abrirCaja(t, svc, "1000")

	assert.Equal(t, model.CajaAbierta, resp.Estado)
	assert.True(t, resp.MontoInicial.Equal(decimal.RequireFromString("1000")))
	assert.True(t, resp.MontoSistema.Equal(decimal.RequireFromString("1000")))
	assert.Nil(t, resp.FechaCierre)
}

func TestAbrirCajaAdoptaLaExistente(t *testing.T) {
	repo := newStubCajaRepo()
	svc := NewCajaService(repo, time.Millisecond)

	primera := abrirCaja(t, svc, "1000")
	segunda := abrirCaja(t, svc, "9999")

	assert.Equal(t, primera.ID, segunda.ID)
	assert.True(t, segunda.MontoInicial.Equal(decimal.RequireFromString("1000")),
		"la segunda apertura no debe crear otra caja ni pisar el monto")
	assert.Len(t, repo.cajas, 1)
}

func TestCerrarCajaCalculaDiferencia(t *testing.T) {
	repo := newStubCajaRepo()
	svc := NewCajaService(repo, time.Millisecond)

	caja := &model.Caja{
		ID:                uuid.New(),
		MontoInicial:      decimal.RequireFromString("1000"),
		FechaApertura:     time.Now(),
		UsuarioAperturaID: uuid.New(),
		Ventas: []model.Venta{
			{ID: uuid.New(), Total: decimal.RequireFromString("300"), Estado: model.VentaCompletada},
			{ID: uuid.New(), Total: decimal.RequireFromString("200"), Estado: model.VentaCompletada},
		},
	}
	require.NoError(t, repo.Create(context.Background(), caja))

	resp, err := svc.Cerrar(context.Background(), uuid.New(), dto.CerrarCajaRequest{
		MontoDeclarado: decimal.RequireFromString("1450"),
	})
	require.NoError(t, err)

	assert.Equal(t, model.CajaCerrada, resp.Estado)
	require.NotNil(t, resp.MontoFinal)
	assert.True(t, resp.MontoFinal.Equal(decimal.RequireFromString("1500")))
	require.NotNil(t, resp.Diferencia)
	assert.True(t, resp.Diferencia.Monto.Equal(decimal.RequireFromString("-50")))
	assert.Equal(t, model.DiferenciaNegativa, resp.Diferencia.Clasificacion)
}

func TestCerrarSinCajaAbierta(t *testing.T) {
	svc := NewCajaService(newStubCajaRepo(), time.Millisecond)

	_, err := svc.Cerrar(context.Background(), uuid.New(), dto.CerrarCajaRequest{
		MontoDeclarado: decimal.RequireFromString("100"),
	})
	require.Error(t, err)
	assert.Equal(t, "No hay una caja abierta", err.Error())
}

func TestMarcarControladaSoloDesdeCerrada(t *testing.T) {
	repo := newStubCajaRepo()
	svc := NewCajaService(repo, time.Millisecond)
	ctx := context.Background()

	abierta := abrirCaja(t, svc, "500")
	cajaID := uuid.MustParse(abierta.ID)

	_, err := svc.MarcarControlada(ctx, cajaID)
	require.Error(t, err)
	assert.Equal(t, "la caja aún está abierta", err.Error())

	_, err = svc.Cerrar(ctx, uuid.New(), dto.CerrarCajaRequest{
		MontoDeclarado: decimal.RequireFromString("500"),
	})
	require.NoError(t, err)

	resp, err := svc.MarcarControlada(ctx, cajaID)
	require.NoError(t, err)
	assert.Equal(t, model.CajaControlada, resp.Estado)
	assert.NotNil(t, resp.FechaControl)

	_, err = svc.MarcarControlada(ctx, cajaID)
	require.Error(t, err)
	assert.Equal(t, "la caja ya fue controlada", err.Error())
}

func TestActualThrottleaLasLecturas(t *testing.T) {
	repo := newStubCajaRepo()
	svc := NewCajaService(repo, 80*time.Millisecond)
	ctx := context.Background()

	caja := &model.Caja{
		ID:                uuid.New(),
		MontoInicial:      decimal.RequireFromString("100"),
		FechaApertura:     time.Now(),
		UsuarioAperturaID: uuid.New(),
	}
	require.NoError(t, repo.Create(ctx, caja))

	for i := 0; i < 5; i++ {
		got, err := svc.Actual(ctx)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, caja.ID, got.ID)
	}
	assert.Equal(t, 1, repo.findAbiertaCalls(), "lecturas dentro de la ventana comparten un solo fetch")

	time.Sleep(100 * time.Millisecond)
	_, err := svc.Actual(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, repo.findAbiertaCalls(), "tras vencer la ventana vuelve a consultar")
}

func TestActualSinCajaDevuelveNil(t *testing.T) {
	repo := newStubCajaRepo()
	svc := NewCajaService(repo, 80*time.Millisecond)
	ctx := context.Background()

	got, err := svc.Actual(ctx)
	require.NoError(t, err)
	assert.Nil(t, got)

	// "No hay caja" también se cachea: la segunda lectura no vuelve al repo.
	_, err = svc.Actual(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, repo.findAbiertaCalls())
}

func TestActualPropagaErroresDeTransporte(t *testing.T) {
	repo := newStubCajaRepo()
	svc := NewCajaService(repo, time.Hour)
	ctx := context.Background()

	repo.errOnFindAbierta = errors.New("db down: connection refused")
	_, err := svc.Actual(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")

	// La falla no se cachea como "no hay caja": al volver la DB, la próxima
	// lectura consulta de nuevo y ve la caja abierta.
	repo.errOnFindAbierta = nil
	caja := &model.Caja{
		ID:                uuid.New(),
		MontoInicial:      decimal.RequireFromString("100"),
		FechaApertura:     time.Now(),
		UsuarioAperturaID: uuid.New(),
	}
	require.NoError(t, repo.Create(ctx, caja))

	got, err := svc.Actual(ctx)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, caja.ID, got.ID)
	assert.Equal(t, 2, repo.findAbiertaCalls())
}

func TestCerrarPropagaErroresDeTransporte(t *testing.T) {
	repo := newStubCajaRepo()
	repo.errOnFindAbierta = errors.New("db down: connection refused")
	svc := NewCajaService(repo, time.Millisecond)

	_, err := svc.Cerrar(context.Background(), uuid.New(), dto.CerrarCajaRequest{
		MontoDeclarado: decimal.RequireFromString("100"),
	})
	require.Error(t, err)
	assert.NotEqual(t, "No hay una caja abierta", err.Error(),
		"una caída de la DB no es lo mismo que no tener caja abierta")
}

func TestActualConFetchEnVueloNoBloquea(t *testing.T) {
	repo := newStubCajaRepo()
	repo.fetchStarted = make(chan struct{})
	repo.fetchRelease = make(chan struct{})
	svc := NewCajaService(repo, time.Hour)
	ctx := context.Background()

	caja := &model.Caja{
		ID:                uuid.New(),
		MontoInicial:      decimal.RequireFromString("100"),
		FechaApertura:     time.Now(),
		UsuarioAperturaID: uuid.New(),
	}
	require.NoError(t, repo.Create(ctx, caja))

	primero := make(chan *model.Caja, 1)
	go func() {
		c, _ := svc.Actual(ctx)
		primero <- c
	}()
	<-repo.fetchStarted // el primer fetch quedó en vuelo

	// El segundo llamado no espera al fetch: cae sobre el último snapshot
	// conocido (todavía vacío) y retorna de inmediato.
	listo := make(chan struct{})
	var segundo *model.Caja
	go func() {
		segundo, _ = svc.Actual(ctx)
		close(listo)
	}()
	select {
	case <-listo:
	case <-time.After(time.Second):
		t.Fatal("el segundo Actual quedó bloqueado detrás del fetch en vuelo")
	}
	assert.Nil(t, segundo)

	close(repo.fetchRelease)
	require.NotNil(t, <-primero)
	assert.Equal(t, 1, repo.findAbiertaCalls(), "un solo fetch entre ambos llamados")
}

func TestCajaResponseFechasEnUTC(t *testing.T) {
	zona := time.FixedZone("ART", -3*60*60)
	apertura := time.Date(2026, time.August, 30, 23, 30, 0, 0, zona)
	cierre := time.Date(2026, time.August, 31, 1, 0, 0, 0, zona)

	resp := CajaToResponse(&model.Caja{
		ID:                uuid.New(),
		MontoInicial:      decimal.RequireFromString("100"),
		FechaApertura:     apertura,
		FechaCierre:       &cierre,
		UsuarioAperturaID: uuid.New(),
	})

	assert.Equal(t, "2026-08-31T02:30:00Z", resp.FechaApertura)
	require.NotNil(t, resp.FechaCierre)
	assert.Equal(t, "2026-08-31T04:00:00Z", *resp.FechaCierre)
}

func TestAbrirInvalidaElCache(t *testing.T) {
	repo := newStubCajaRepo()
	svc := NewCajaService(repo, time.Hour)
	ctx := context.Background()

	got, err := svc.Actual(ctx)
	require.NoError(t, err)
	require.Nil(t, got)

	abrirCaja(t, svc, "250")

	got, err = svc.Actual(ctx)
	require.NoError(t, err)
	require.NotNil(t, got, "abrir debe invalidar el snapshot cacheado aunque el TTL no haya vencido")
	assert.True(t, got.MontoInicial.Equal(decimal.RequireFromString("250")))
}
