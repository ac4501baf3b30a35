package service

import (
	"context"
	"testing"

	"ananda/internal/dto"
	"ananda/internal/model"
	"ananda/internal/proceso"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type carritoFixture struct {
	svc       CarritoService
	repo      *stubCarritoRepo
	usuarioID uuid.UUID
	cliente   *model.Cliente
	producto  *model.Producto
}

func newCarritoFixture(t *testing.T) *carritoFixture {
	t.Helper()
	ctx := context.Background()

	clienteRepo := newStubClienteRepo()
	cliente := &model.Cliente{Nombre: "Ana", Apellido: "Pérez", Telefono: "1144556677", Activo: true}
	require.NoError(t, clienteRepo.Create(ctx, cliente))

	prodRepo := newStubProductoRepo()
	producto := &model.Producto{
		Codigo: "PAN-010",
		Nombre: "Pantalón",
		Precio: decimal.RequireFromString("150"),
		Stock:  4,
		Activo: true,
	}
	require.NoError(t, prodRepo.Create(ctx, producto))

	repo := newStubCarritoRepo()
	return &carritoFixture{
		svc:       NewCarritoService(repo, prodRepo, clienteRepo),
		repo:      repo,
		usuarioID: uuid.New(),
		cliente:   cliente,
		producto:  producto,
	}
}

func (f *carritoFixture) agregar(t *testing.T, cantidad int) {
	t.Helper()
	_, err := f.svc.Agregar(context.Background(), f.usuarioID, dto.AgregarCarritoRequest{
		ProductoID: f.producto.ID.String(),
		Cantidad:   cantidad,
	})
	require.NoError(t, err)
}

func (f *carritoFixture) setCliente(t *testing.T) {
	t.Helper()
	_, err := f.svc.SetCliente(context.Background(), f.usuarioID, dto.SetClienteRequest{
		ClienteID: f.cliente.ID.String(),
	})
	require.NoError(t, err)
}

func TestAgregarSinClienteNoAvanzaElPaso(t *testing.T) {
	f := newCarritoFixture(t)

	f.agregar(t, 2)

	s, err := f.svc.Obtener(context.Background(), f.usuarioID)
	require.NoError(t, err)
	require.Len(t, s.Carrito.Items, 1)
	assert.Equal(t, proceso.PasoCliente, s.Estado.Paso,
		"con ítems pero sin cliente el wizard queda en el paso 1")
}

func TestSetClienteConItemsCorrigeAPaso2(t *testing.T) {
	f := newCarritoFixture(t)

	f.agregar(t, 2)
	f.setCliente(t)

	s, err := f.svc.Obtener(context.Background(), f.usuarioID)
	require.NoError(t, err)
	assert.Equal(t, proceso.PasoCarrito, s.Estado.Paso)
	assert.True(t, s.Carrito.Total.Equal(decimal.RequireFromString("300")))
}

func TestVaciarRegresaAPaso1(t *testing.T) {
	f := newCarritoFixture(t)
	ctx := context.Background()

	f.agregar(t, 1)
	f.setCliente(t)
	_, err := f.svc.AvanzarPaso(ctx, f.usuarioID)
	require.NoError(t, err)

	s, err := f.svc.Obtener(ctx, f.usuarioID)
	require.NoError(t, err)
	require.Equal(t, proceso.PasoConfirmacion, s.Estado.Paso)

	s, err = f.svc.Vaciar(ctx, f.usuarioID)
	require.NoError(t, err)
	assert.True(t, s.Carrito.Vacio())
	assert.Equal(t, proceso.PasoCliente, s.Estado.Paso,
		"sin productos el paso retrocede, venga de donde venga")
}

func TestAvanzarPasoSoloDesdePaso2(t *testing.T) {
	f := newCarritoFixture(t)
	ctx := context.Background()

	// En paso 1 el avance explícito no hace nada.
	s, err := f.svc.AvanzarPaso(ctx, f.usuarioID)
	require.NoError(t, err)
	assert.Equal(t, proceso.PasoCliente, s.Estado.Paso)

	f.agregar(t, 1)
	f.setCliente(t)

	s, err = f.svc.AvanzarPaso(ctx, f.usuarioID)
	require.NoError(t, err)
	assert.Equal(t, proceso.PasoConfirmacion, s.Estado.Paso)
}

func TestAgregarClampeaAlStock(t *testing.T) {
	f := newCarritoFixture(t)

	f.agregar(t, 99)

	s, err := f.svc.Obtener(context.Background(), f.usuarioID)
	require.NoError(t, err)
	require.Len(t, s.Carrito.Items, 1)
	assert.Equal(t, 4, s.Carrito.Items[0].Cantidad)
}

func TestAgregarProductoInactivo(t *testing.T) {
	f := newCarritoFixture(t)
	f.producto.Activo = false

	_, err := f.svc.Agregar(context.Background(), f.usuarioID, dto.AgregarCarritoRequest{
		ProductoID: f.producto.ID.String(),
		Cantidad:   1,
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "inactivo")
}

func TestSetClienteInexistente(t *testing.T) {
	f := newCarritoFixture(t)

	_, err := f.svc.SetCliente(context.Background(), f.usuarioID, dto.SetClienteRequest{
		ClienteID: uuid.New().String(),
	})
	require.Error(t, err)
	assert.Equal(t, "cliente no encontrado", err.Error())
}

func TestSetDescuentoSeClampeaEnLaSesion(t *testing.T) {
	f := newCarritoFixture(t)
	ctx := context.Background()

	s, err := f.svc.SetDescuento(ctx, f.usuarioID, decimal.RequireFromString("250"))
	require.NoError(t, err)
	assert.True(t, s.Estado.DescuentoPorcentaje.Equal(decimal.RequireFromString("100")))

	s, err = f.svc.SetDescuento(ctx, f.usuarioID, decimal.RequireFromString("-3"))
	require.NoError(t, err)
	assert.True(t, s.Estado.DescuentoPorcentaje.Equal(decimal.Zero))
}

func TestReiniciarVuelveAlEstadoInicial(t *testing.T) {
	f := newCarritoFixture(t)
	ctx := context.Background()

	f.agregar(t, 2)
	f.setCliente(t)
	_, err := f.svc.SetMetodoPago(ctx, f.usuarioID, "TC")
	require.NoError(t, err)

	s, err := f.svc.Reiniciar(ctx, f.usuarioID)
	require.NoError(t, err)
	assert.True(t, s.Carrito.Vacio())
	assert.Equal(t, proceso.PasoCliente, s.Estado.Paso)
	assert.Nil(t, s.Estado.ClienteID)
	assert.Empty(t, s.Estado.MetodoPago)
}
