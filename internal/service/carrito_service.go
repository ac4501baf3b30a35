package service

import (
	"context"
	"errors"
	"fmt"

	"ananda/internal/carrito"
	"ananda/internal/dto"
	"ananda/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CarritoService drives one user's checkout session: the cart reducer plus
// the wizard state machine. Every mutation re-runs the paso correction with
// the full (cliente, items) snapshot before persisting.
type CarritoService interface {
	Obtener(ctx context.Context, usuarioID uuid.UUID) (*repository.SesionVenta, error)
	Agregar(ctx context.Context, usuarioID uuid.UUID, req dto.AgregarCarritoRequest) (*repository.SesionVenta, error)
	ActualizarCantidad(ctx context.Context, usuarioID uuid.UUID, req dto.ActualizarCantidadRequest) (*repository.SesionVenta, error)
	Eliminar(ctx context.Context, usuarioID, productoID uuid.UUID) (*repository.SesionVenta, error)
	Vaciar(ctx context.Context, usuarioID uuid.UUID) (*repository.SesionVenta, error)

	SetCliente(ctx context.Context, usuarioID uuid.UUID, req dto.SetClienteRequest) (*repository.SesionVenta, error)
	SetDescuento(ctx context.Context, usuarioID uuid.UUID, pct decimal.Decimal) (*repository.SesionVenta, error)
	SetMetodoPago(ctx context.Context, usuarioID uuid.UUID, codigo string) (*repository.SesionVenta, error)
	AvanzarPaso(ctx context.Context, usuarioID uuid.UUID) (*repository.SesionVenta, error)
	Reiniciar(ctx context.Context, usuarioID uuid.UUID) (*repository.SesionVenta, error)
}

type carritoService struct {
	repo         repository.CarritoRepository
	productoRepo repository.ProductoRepository
	clienteRepo  repository.ClienteRepository
}

func NewCarritoService(
	repo repository.CarritoRepository,
	productoRepo repository.ProductoRepository,
	clienteRepo repository.ClienteRepository,
) CarritoService {
	return &carritoService{repo: repo, productoRepo: productoRepo, clienteRepo: clienteRepo}
}

func (s *carritoService) Obtener(ctx context.Context, usuarioID uuid.UUID) (*repository.SesionVenta, error) {
	return s.repo.Get(ctx, usuarioID)
}

func (s *carritoService) Agregar(ctx context.Context, usuarioID uuid.UUID, req dto.AgregarCarritoRequest) (*repository.SesionVenta, error) {
	productoID, err := uuid.Parse(req.ProductoID)
	if err != nil {
		return nil, fmt.Errorf("producto_id inválido: %w", err)
	}
	p, err := s.productoRepo.FindByID(ctx, productoID)
	if err != nil {
		return nil, errors.New("producto no encontrado")
	}
	if !p.Activo {
		return nil, errors.New("el producto está inactivo")
	}

	linea := carrito.Linea{
		ProductoID: p.ID,
		Codigo:     p.Codigo,
		Nombre:     p.Nombre,
		Precio:     p.Precio,
		Stock:      p.Stock,
		Imagen:     p.Imagen,
	}
	if p.Categoria != nil {
		linea.Categoria = p.Categoria.Nombre
	}
	if p.Subcategoria != nil {
		linea.Subcategoria = p.Subcategoria.Nombre
	}

	return s.mutar(ctx, usuarioID, func(sesion *repository.SesionVenta) {
		sesion.Carrito.Agregar(linea, req.Cantidad)
	})
}

func (s *carritoService) ActualizarCantidad(ctx context.Context, usuarioID uuid.UUID, req dto.ActualizarCantidadRequest) (*repository.SesionVenta, error) {
	productoID, err := uuid.Parse(req.ProductoID)
	if err != nil {
		return nil, fmt.Errorf("producto_id inválido: %w", err)
	}
	return s.mutar(ctx, usuarioID, func(sesion *repository.SesionVenta) {
		sesion.Carrito.ActualizarCantidad(productoID, req.Cantidad)
	})
}

func (s *carritoService) Eliminar(ctx context.Context, usuarioID, productoID uuid.UUID) (*repository.SesionVenta, error) {
	return s.mutar(ctx, usuarioID, func(sesion *repository.SesionVenta) {
		sesion.Carrito.Eliminar(productoID)
	})
}

func (s *carritoService) Vaciar(ctx context.Context, usuarioID uuid.UUID) (*repository.SesionVenta, error) {
	return s.mutar(ctx, usuarioID, func(sesion *repository.SesionVenta) {
		sesion.Carrito.Vaciar()
	})
}

func (s *carritoService) SetCliente(ctx context.Context, usuarioID uuid.UUID, req dto.SetClienteRequest) (*repository.SesionVenta, error) {
	clienteID, err := uuid.Parse(req.ClienteID)
	if err != nil {
		return nil, fmt.Errorf("cliente_id inválido: %w", err)
	}
	if _, err := s.clienteRepo.FindByID(ctx, clienteID); err != nil {
		return nil, errors.New("cliente no encontrado")
	}
	return s.mutar(ctx, usuarioID, func(sesion *repository.SesionVenta) {
		sesion.Estado.SetCliente(clienteID)
	})
}

func (s *carritoService) SetDescuento(ctx context.Context, usuarioID uuid.UUID, pct decimal.Decimal) (*repository.SesionVenta, error) {
	return s.mutar(ctx, usuarioID, func(sesion *repository.SesionVenta) {
		sesion.Estado.SetDescuento(pct)
	})
}

func (s *carritoService) SetMetodoPago(ctx context.Context, usuarioID uuid.UUID, codigo string) (*repository.SesionVenta, error) {
	return s.mutar(ctx, usuarioID, func(sesion *repository.SesionVenta) {
		sesion.Estado.SetMetodoPago(codigo)
	})
}

func (s *carritoService) AvanzarPaso(ctx context.Context, usuarioID uuid.UUID) (*repository.SesionVenta, error) {
	return s.mutar(ctx, usuarioID, func(sesion *repository.SesionVenta) {
		sesion.Estado.AvanzarPaso()
	})
}

// Reiniciar resets the wizard and empties the cart in the same operation.
func (s *carritoService) Reiniciar(ctx context.Context, usuarioID uuid.UUID) (*repository.SesionVenta, error) {
	sesion := repository.NuevaSesionVenta()
	if err := s.repo.Save(ctx, usuarioID, sesion); err != nil {
		return nil, err
	}
	return sesion, nil
}

// mutar loads the session, applies fn, re-derives the paso from the full
// snapshot and persists. The wizard is never left on an unreachable step.
func (s *carritoService) mutar(ctx context.Context, usuarioID uuid.UUID, fn func(*repository.SesionVenta)) (*repository.SesionVenta, error) {
	sesion, err := s.repo.Get(ctx, usuarioID)
	if err != nil {
		return nil, err
	}
	fn(sesion)
	sesion.Estado.Corregir(len(sesion.Carrito.Items))
	if err := s.repo.Save(ctx, usuarioID, sesion); err != nil {
		return nil, err
	}
	return sesion, nil
}
