package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ananda/internal/dto"
	"ananda/internal/model"
	"ananda/internal/proceso"
	"ananda/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type VentaService interface {
	// ProcesarCompleta runs the whole checkout atomically: sale + stock
	// decrement + register attachment, then clears the user's checkout session.
	ProcesarCompleta(ctx context.Context, usuarioID uuid.UUID, req dto.ProcesarVentaRequest) (*dto.VentaResponse, error)
	Listar(ctx context.Context, filter dto.VentaFilter) (*dto.VentaListResponse, error)
	Detalle(ctx context.Context, id uuid.UUID) (*dto.VentaResponse, error)
	Resumen(ctx context.Context, fechaInicio, fechaFin string) ([]dto.ResumenDia, error)
	ObtenerParaTicket(ctx context.Context, id uuid.UUID) (*model.Venta, error)
}

type ventaService struct {
	repo         repository.VentaRepository
	cajaRepo     repository.CajaRepository
	clienteRepo  repository.ClienteRepository
	productoRepo repository.ProductoRepository
	carritoRepo  repository.CarritoRepository
}

func NewVentaService(
	repo repository.VentaRepository,
	cajaRepo repository.CajaRepository,
	clienteRepo repository.ClienteRepository,
	productoRepo repository.ProductoRepository,
	carritoRepo repository.CarritoRepository,
) VentaService {
	return &ventaService{
		repo:         repo,
		cajaRepo:     cajaRepo,
		clienteRepo:  clienteRepo,
		productoRepo: productoRepo,
		carritoRepo:  carritoRepo,
	}
}

// runTx executes fn inside a GORM transaction when db is available,
// or calls fn(nil) directly when db is nil (unit test mode).
func runTx(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	if db == nil {
		return fn(nil)
	}
	return db.WithContext(ctx).Transaction(fn)
}

// ── ProcesarCompleta ─────────────────────────────────────────────────────────

func (s *ventaService) ProcesarCompleta(ctx context.Context, usuarioID uuid.UUID, req dto.ProcesarVentaRequest) (*dto.VentaResponse, error) {
	// The register lookup bypasses the read throttle: a state-changing
	// operation must see the real current state, never a cached one. Only
	// "not found" means no open register; a transport failure is not a
	// precondition and surfaces as-is.
	caja, cajaErr := s.cajaRepo.FindAbierta(ctx)
	if cajaErr != nil && !errors.Is(cajaErr, gorm.ErrRecordNotFound) {
		return nil, cajaErr
	}
	cajaAbierta := cajaErr == nil && caja != nil

	// Preconditions, in order. The first failure wins.
	if err := proceso.ValidarVenta(proceso.Snapshot{
		ClienteSet:  req.ClienteID != "",
		ItemCount:   len(req.Items),
		MetodoPago:  req.MetodoPago,
		CajaAbierta: cajaAbierta,
	}); err != nil {
		return nil, err
	}

	// From here on the session mirrors the operation: procesando while it
	// runs, the rejection reason if it fails, the success flags if it lands.
	s.marcarProcesando(ctx, usuarioID)
	fail := func(err error) (*dto.VentaResponse, error) {
		s.marcarFalla(ctx, usuarioID, err)
		return nil, err
	}

	clienteID, err := uuid.Parse(req.ClienteID)
	if err != nil {
		return fail(fmt.Errorf("cliente_id inválido: %w", err))
	}
	cliente, err := s.clienteRepo.FindByID(ctx, clienteID)
	if err != nil {
		return fail(errors.New("cliente no encontrado"))
	}

	// Resolve products and calculate totals (pre-flight, outside TX).
	type resolvedItem struct {
		productoID uuid.UUID
		nombre     string
		precio     decimal.Decimal
		cantidad   int
		subtotal   decimal.Decimal
	}

	var resolved []resolvedItem
	subtotal := decimal.Zero
	for _, item := range req.Items {
		pid, err := uuid.Parse(item.ProductoID)
		if err != nil {
			return fail(fmt.Errorf("producto_id inválido: %w", err))
		}
		p, err := s.productoRepo.FindByID(ctx, pid)
		if err != nil {
			return fail(fmt.Errorf("producto %s no encontrado", item.ProductoID))
		}
		if !p.Activo {
			return fail(fmt.Errorf("producto %s está inactivo y no puede venderse", p.Nombre))
		}
		if p.Stock < item.Cantidad {
			return fail(fmt.Errorf("stock insuficiente de %s", p.Nombre))
		}
		lineSubtotal := p.Precio.Mul(decimal.NewFromInt(int64(item.Cantidad)))
		subtotal = subtotal.Add(lineSubtotal)
		resolved = append(resolved, resolvedItem{
			productoID: pid,
			nombre:     p.Nombre,
			precio:     p.Precio,
			cantidad:   item.Cantidad,
			subtotal:   lineSubtotal,
		})
	}

	descuento := clampDescuento(req.Descuento)
	total := subtotal.Mul(decimal.NewFromInt(100).Sub(descuento)).Div(decimal.NewFromInt(100)).Round(2)

	// ACID transaction: venta + items + stock decrement.
	var venta model.Venta
	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		ticketNum, err := s.repo.NextTicketNumber(ctx, tx)
		if err != nil {
			return err
		}

		venta = model.Venta{
			NumeroTicket:        ticketNum,
			CajaID:              caja.ID,
			ClienteID:           clienteID,
			UsuarioID:           usuarioID,
			MetodoPago:          req.MetodoPago,
			DescuentoPorcentaje: descuento,
			Subtotal:            subtotal,
			Total:               total,
			Estado:              model.VentaCompletada,
		}
		for _, r := range resolved {
			venta.Items = append(venta.Items, model.VentaItem{
				ProductoID:     r.productoID,
				Cantidad:       r.cantidad,
				PrecioUnitario: r.precio,
				Subtotal:       r.subtotal,
			})
		}

		if err := s.repo.Create(ctx, tx, &venta); err != nil {
			return err
		}

		for _, r := range resolved {
			if err := s.productoRepo.DescontarStockTx(tx, r.productoID, r.cantidad); err != nil {
				if errors.Is(err, repository.ErrStockInsuficiente) {
					return fmt.Errorf("stock insuficiente de %s", r.nombre)
				}
				return err
			}
		}
		return nil
	})
	if txErr != nil {
		return fail(txErr)
	}

	// Clear the checkout session in the same gesture: cart emptied, wizard
	// left on paso 3 as the terminal confirmation state until reiniciar.
	if s.carritoRepo != nil {
		if sesion, err := s.carritoRepo.Get(ctx, usuarioID); err == nil {
			sesion.Carrito.Vaciar()
			sesion.Estado.Paso = proceso.PasoConfirmacion
			sesion.Estado.Procesando = false
			sesion.Estado.Error = ""
			sesion.Estado.VentaExitosa = true
			sesion.Estado.NuevaVentaCompletada = true
			_ = s.carritoRepo.Save(ctx, usuarioID, sesion)
		}
	}

	venta.Cliente = cliente
	resp := ventaToResponse(&venta)
	for i, r := range resolved {
		resp.Items[i].Producto = r.nombre
	}
	return resp, nil
}

// marcarProcesando flags the session while the checkout runs, so a concurrent
// GET /venta-proceso sees the operation in flight.
func (s *ventaService) marcarProcesando(ctx context.Context, usuarioID uuid.UUID) {
	if s.carritoRepo == nil {
		return
	}
	if sesion, err := s.carritoRepo.Get(ctx, usuarioID); err == nil {
		sesion.Estado.Procesando = true
		sesion.Estado.Error = ""
		_ = s.carritoRepo.Save(ctx, usuarioID, sesion)
	}
}

// marcarFalla clears the in-flight flag and records the rejection reason in
// the session before it surfaces to the caller.
func (s *ventaService) marcarFalla(ctx context.Context, usuarioID uuid.UUID, cause error) {
	if s.carritoRepo == nil {
		return
	}
	if sesion, err := s.carritoRepo.Get(ctx, usuarioID); err == nil {
		sesion.Estado.Procesando = false
		sesion.Estado.Error = cause.Error()
		_ = s.carritoRepo.Save(ctx, usuarioID, sesion)
	}
}

// ── Listar / Detalle / Resumen ───────────────────────────────────────────────

func (s *ventaService) Listar(ctx context.Context, filter dto.VentaFilter) (*dto.VentaListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 || filter.Limit > 200 {
		filter.Limit = 50
	}
	ventas, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	items := make([]dto.VentaListItem, 0, len(ventas))
	for i := range ventas {
		items = append(items, *ventaToListItem(&ventas[i]))
	}
	return &dto.VentaListResponse{Data: items, Total: total, Page: filter.Page, Limit: filter.Limit}, nil
}

func (s *ventaService) Detalle(ctx context.Context, id uuid.UUID) (*dto.VentaResponse, error) {
	venta, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, errors.New("venta no encontrada")
	}
	return ventaToResponse(venta), nil
}

func (s *ventaService) Resumen(ctx context.Context, fechaInicio, fechaFin string) ([]dto.ResumenDia, error) {
	return s.repo.ResumenPorDia(ctx, fechaInicio, fechaFin)
}

func (s *ventaService) ObtenerParaTicket(ctx context.Context, id uuid.UUID) (*model.Venta, error) {
	venta, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, errors.New("venta no encontrada")
	}
	return venta, nil
}

// ── Helpers ──────────────────────────────────────────────────────────────────

func clampDescuento(pct decimal.Decimal) decimal.Decimal {
	if pct.IsNegative() {
		return decimal.Zero
	}
	if pct.GreaterThan(decimal.NewFromInt(100)) {
		return decimal.NewFromInt(100)
	}
	return pct
}

func nombreCliente(c *model.Cliente) string {
	if c == nil {
		return ""
	}
	return c.Nombre + " " + c.Apellido
}

func ventaToResponse(v *model.Venta) *dto.VentaResponse {
	items := make([]dto.ItemVentaResponse, 0, len(v.Items))
	for _, item := range v.Items {
		nombre := ""
		if item.Producto != nil {
			nombre = item.Producto.Nombre
		}
		items = append(items, dto.ItemVentaResponse{
			ProductoID:     item.ProductoID.String(),
			Producto:       nombre,
			Cantidad:       item.Cantidad,
			PrecioUnitario: item.PrecioUnitario,
			Subtotal:       item.Subtotal,
		})
	}
	return &dto.VentaResponse{
		ID:                  v.ID.String(),
		NumeroTicket:        v.NumeroTicket,
		CajaID:              v.CajaID.String(),
		Cliente:             nombreCliente(v.Cliente),
		MetodoPago:          v.MetodoPago,
		DescuentoPorcentaje: v.DescuentoPorcentaje,
		Subtotal:            v.Subtotal,
		Total:               v.Total,
		Estado:              v.Estado,
		Items:               items,
		CreatedAt:           v.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func ventaToListItem(v *model.Venta) *dto.VentaListItem {
	vendedor := ""
	if v.Usuario != nil {
		vendedor = v.Usuario.Username
	}
	return &dto.VentaListItem{
		ID:           v.ID.String(),
		NumeroTicket: v.NumeroTicket,
		Cliente:      nombreCliente(v.Cliente),
		Vendedor:     vendedor,
		MetodoPago:   v.MetodoPago,
		Total:        v.Total,
		Estado:       v.Estado,
		CreatedAt:    v.CreatedAt.UTC().Format(time.RFC3339),
	}
}
