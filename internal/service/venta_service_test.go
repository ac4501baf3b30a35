package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"ananda/internal/dto"
	"ananda/internal/model"
	"ananda/internal/proceso"
	"ananda/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type ventaFixture struct {
	svc         VentaService
	ventaRepo   *stubVentaRepo
	cajaRepo    *stubCajaRepo
	clienteRepo *stubClienteRepo
	prodRepo    *stubProductoRepo
	carrRepo    *stubCarritoRepo

	usuarioID uuid.UUID
	cliente   *model.Cliente
	producto  *model.Producto
}

// newVentaFixture arma el escenario feliz: caja abierta, cliente Ana Pérez y
// una remera con stock 5 a $100.
func newVentaFixture(t *testing.T) *ventaFixture {
	t.Helper()
	ctx := context.Background()

	cajaRepo := newStubCajaRepo()
	require.NoError(t, cajaRepo.Create(ctx, &model.Caja{
		ID:                uuid.New(),
		MontoInicial:      decimal.RequireFromString("1000"),
		FechaApertura:     time.Now(),
		UsuarioAperturaID: uuid.New(),
	}))

	clienteRepo := newStubClienteRepo()
	cliente := &model.Cliente{Nombre: "Ana", Apellido: "Pérez", Telefono: "1144556677", Activo: true}
	require.NoError(t, clienteRepo.Create(ctx, cliente))

	prodRepo := newStubProductoRepo()
	producto := &model.Producto{
		Codigo: "REM-001",
		Nombre: "Remera",
		Precio: decimal.RequireFromString("100"),
		Stock:  5,
		Activo: true,
	}
	require.NoError(t, prodRepo.Create(ctx, producto))

	ventaRepo := newStubVentaRepo()
	carrRepo := newStubCarritoRepo()

	return &ventaFixture{
		svc:         NewVentaService(ventaRepo, cajaRepo, clienteRepo, prodRepo, carrRepo),
		ventaRepo:   ventaRepo,
		cajaRepo:    cajaRepo,
		clienteRepo: clienteRepo,
		prodRepo:    prodRepo,
		carrRepo:    carrRepo,
		usuarioID:   uuid.New(),
		cliente:     cliente,
		producto:    producto,
	}
}

func (f *ventaFixture) request(cantidad int) dto.ProcesarVentaRequest {
	return dto.ProcesarVentaRequest{
		ClienteID:  f.cliente.ID.String(),
		MetodoPago: "FT",
		Items: []dto.ItemVentaRequest{
			{ProductoID: f.producto.ID.String(), Cantidad: cantidad},
		},
	}
}

func TestProcesarCompletaExito(t *testing.T) {
	f := newVentaFixture(t)
	ctx := context.Background()

	// Sesión previa con un ítem, para verificar que el éxito la limpia.
	sesion := repository.NuevaSesionVenta()
	sesion.Estado.SetCliente(f.cliente.ID)
	require.NoError(t, f.carrRepo.Save(ctx, f.usuarioID, sesion))

	resp, err := f.svc.ProcesarCompleta(ctx, f.usuarioID, f.request(3))
	require.NoError(t, err)

	assert.Equal(t, 1, resp.NumeroTicket)
	assert.Equal(t, "Ana Pérez", resp.Cliente)
	assert.Equal(t, "FT", resp.MetodoPago)
	assert.True(t, resp.Subtotal.Equal(decimal.RequireFromString("300")))
	assert.True(t, resp.Total.Equal(decimal.RequireFromString("300")))
	assert.Equal(t, model.VentaCompletada, resp.Estado)
	require.Len(t, resp.Items, 1)
	assert.Equal(t, "Remera", resp.Items[0].Producto)
	assert.Equal(t, 3, resp.Items[0].Cantidad)

	assert.Equal(t, 2, f.producto.Stock, "el stock se descuenta dentro de la venta")
	assert.Equal(t, 1, f.ventaRepo.count())

	after, err := f.carrRepo.Get(ctx, f.usuarioID)
	require.NoError(t, err)
	assert.True(t, after.Carrito.Vacio())
	assert.Equal(t, proceso.PasoConfirmacion, after.Estado.Paso)
	assert.True(t, after.Estado.VentaExitosa)
	assert.True(t, after.Estado.NuevaVentaCompletada)
}

func TestProcesarCompletaAplicaDescuento(t *testing.T) {
	f := newVentaFixture(t)

	req := f.request(2)
	req.Descuento = decimal.RequireFromString("10")

	resp, err := f.svc.ProcesarCompleta(context.Background(), f.usuarioID, req)
	require.NoError(t, err)

	assert.True(t, resp.Subtotal.Equal(decimal.RequireFromString("200")))
	assert.True(t, resp.Total.Equal(decimal.RequireFromString("180")))
	assert.True(t, resp.DescuentoPorcentaje.Equal(decimal.RequireFromString("10")))
}

func TestProcesarCompletaNumeraTicketsConsecutivos(t *testing.T) {
	f := newVentaFixture(t)
	ctx := context.Background()

	primera, err := f.svc.ProcesarCompleta(ctx, f.usuarioID, f.request(1))
	require.NoError(t, err)
	segunda, err := f.svc.ProcesarCompleta(ctx, f.usuarioID, f.request(1))
	require.NoError(t, err)

	assert.Equal(t, 1, primera.NumeroTicket)
	assert.Equal(t, 2, segunda.NumeroTicket)
}

func TestProcesarCompletaPrecondicionesEnOrden(t *testing.T) {
	clienteID := uuid.New().String()
	items := []dto.ItemVentaRequest{{ProductoID: uuid.New().String(), Cantidad: 1}}

	casos := []struct {
		nombre      string
		req         dto.ProcesarVentaRequest
		cajaCerrada bool
		esperado    string
	}{
		{
			nombre:   "sin cliente gana aunque falte todo lo demás",
			req:      dto.ProcesarVentaRequest{},
			esperado: proceso.ErrSinCliente,
		},
		{
			nombre:   "sin productos",
			req:      dto.ProcesarVentaRequest{ClienteID: clienteID},
			esperado: proceso.ErrSinProductos,
		},
		{
			nombre:   "sin método de pago",
			req:      dto.ProcesarVentaRequest{ClienteID: clienteID, Items: items},
			esperado: proceso.ErrSinMetodoPago,
		},
		{
			nombre:      "sin caja abierta",
			req:         dto.ProcesarVentaRequest{ClienteID: clienteID, Items: items, MetodoPago: "FT"},
			cajaCerrada: true,
			esperado:    proceso.ErrSinCaja,
		},
	}

	for _, tc := range casos {
		t.Run(tc.nombre, func(t *testing.T) {
			f := newVentaFixture(t)
			if tc.cajaCerrada {
				for _, c := range f.cajaRepo.cajas {
					now := time.Now()
					c.FechaCierre = &now
				}
			}

			_, err := f.svc.ProcesarCompleta(context.Background(), f.usuarioID, tc.req)
			require.Error(t, err)

			var ve *proceso.ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tc.esperado, ve.Msg)
		})
	}
}

func TestProcesarCompletaRechazaProductoInactivo(t *testing.T) {
	f := newVentaFixture(t)
	f.producto.Activo = false

	_, err := f.svc.ProcesarCompleta(context.Background(), f.usuarioID, f.request(1))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "inactivo")
	assert.Equal(t, 0, f.ventaRepo.count())
}

func TestProcesarCompletaRechazaStockInsuficiente(t *testing.T) {
	f := newVentaFixture(t)

	_, err := f.svc.ProcesarCompleta(context.Background(), f.usuarioID, f.request(6))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "stock insuficiente")
	assert.Equal(t, 5, f.producto.Stock, "el stock queda intacto cuando la venta no procede")
	assert.Equal(t, 0, f.ventaRepo.count())
}

// El recorrido completo: seleccionar cliente, armar el carrito (con clampeo
// de stock), elegir medio de pago, avanzar a confirmación y procesar.
func TestEscenarioCompletoDeVenta(t *testing.T) {
	f := newVentaFixture(t)
	ctx := context.Background()

	f.producto.Stock = 3
	carritoSvc := NewCarritoService(f.carrRepo, f.prodRepo, f.clienteRepo)

	_, err := carritoSvc.SetCliente(ctx, f.usuarioID, dto.SetClienteRequest{ClienteID: f.cliente.ID.String()})
	require.NoError(t, err)

	s, err := carritoSvc.Agregar(ctx, f.usuarioID, dto.AgregarCarritoRequest{
		ProductoID: f.producto.ID.String(),
		Cantidad:   5,
	})
	require.NoError(t, err)
	require.Len(t, s.Carrito.Items, 1)
	assert.Equal(t, 3, s.Carrito.Items[0].Cantidad, "pedir 5 con stock 3 clampea a 3")
	assert.True(t, s.Carrito.Total.Equal(decimal.RequireFromString("300")))
	assert.Equal(t, proceso.PasoCarrito, s.Estado.Paso)

	_, err = carritoSvc.SetMetodoPago(ctx, f.usuarioID, "FT")
	require.NoError(t, err)
	s, err = carritoSvc.AvanzarPaso(ctx, f.usuarioID)
	require.NoError(t, err)
	require.Equal(t, proceso.PasoConfirmacion, s.Estado.Paso)

	req := dto.ProcesarVentaRequest{
		ClienteID:  f.cliente.ID.String(),
		MetodoPago: s.Estado.MetodoPago,
	}
	for _, linea := range s.Carrito.Items {
		req.Items = append(req.Items, dto.ItemVentaRequest{
			ProductoID: linea.ProductoID.String(),
			Cantidad:   linea.Cantidad,
		})
	}

	resp, err := f.svc.ProcesarCompleta(ctx, f.usuarioID, req)
	require.NoError(t, err)
	assert.True(t, resp.Total.Equal(decimal.RequireFromString("300")))
	assert.Equal(t, 0, f.producto.Stock)

	after, err := f.carrRepo.Get(ctx, f.usuarioID)
	require.NoError(t, err)
	assert.True(t, after.Carrito.Vacio())
	assert.True(t, after.Estado.NuevaVentaCompletada)
}

func TestProcesarCompletaNoConfundeCaidaDeDBConCajaCerrada(t *testing.T) {
	f := newVentaFixture(t)
	f.cajaRepo.errOnFindAbierta = errors.New("db down: connection refused")

	_, err := f.svc.ProcesarCompleta(context.Background(), f.usuarioID, f.request(1))
	require.Error(t, err)

	var ve *proceso.ValidationError
	assert.False(t, errors.As(err, &ve), "una caída de la DB no es un error de validación")
	assert.NotEqual(t, proceso.ErrSinCaja, err.Error())
	assert.Contains(t, err.Error(), "connection refused")
	assert.Equal(t, 0, f.ventaRepo.count())
}

func TestProcesarCompletaMarcaProcesandoEnLaSesion(t *testing.T) {
	f := newVentaFixture(t)
	ctx := context.Background()

	_, err := f.svc.ProcesarCompleta(ctx, f.usuarioID, f.request(1))
	require.NoError(t, err)

	require.NotEmpty(t, f.carrRepo.historial)
	enProceso := false
	for _, e := range f.carrRepo.historial {
		if e.Procesando {
			enProceso = true
		}
	}
	assert.True(t, enProceso, "la sesión pasa por procesando=true mientras corre la venta")

	final := f.carrRepo.historial[len(f.carrRepo.historial)-1]
	assert.False(t, final.Procesando)
	assert.True(t, final.VentaExitosa)
}

func TestProcesarCompletaFallidaDejaLaSesionConElError(t *testing.T) {
	f := newVentaFixture(t)
	ctx := context.Background()

	_, err := f.svc.ProcesarCompleta(ctx, f.usuarioID, f.request(6))
	require.Error(t, err)

	after, err := f.carrRepo.Get(ctx, f.usuarioID)
	require.NoError(t, err)
	assert.False(t, after.Estado.Procesando)
	assert.Contains(t, after.Estado.Error, "stock insuficiente")
	assert.False(t, after.Estado.VentaExitosa)
}

func TestProcesarCompletaClienteInexistente(t *testing.T) {
	f := newVentaFixture(t)

	req := f.request(1)
	req.ClienteID = uuid.New().String()

	_, err := f.svc.ProcesarCompleta(context.Background(), f.usuarioID, req)
	require.Error(t, err)
	assert.Equal(t, "cliente no encontrado", err.Error())
}
