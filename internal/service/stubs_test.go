package service

import (
	"context"
	"sync"

	"ananda/internal/dto"
	"ananda/internal/model"
	"ananda/internal/proceso"
	"ananda/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// In-memory repository stubs shared by the service tests. They mirror the
// semantics the real GORM/Redis repositories expose, including the not-found
// error convention.

// ─── Caja ────────────────────────────────────────────────────────────────────

type stubCajaRepo struct {
	mu           sync.Mutex
	cajas        map[uuid.UUID]*model.Caja
	abiertaCalls int
	agg          map[uuid.UUID]repository.CajaAgregados
	errOnCreate  error

	// Transport-failure / slow-fetch hooks for FindAbierta.
	errOnFindAbierta error
	fetchStarted     chan struct{}
	fetchRelease     chan struct{}
}

func newStubCajaRepo() *stubCajaRepo {
	return &stubCajaRepo{
		cajas: make(map[uuid.UUID]*model.Caja),
		agg:   make(map[uuid.UUID]repository.CajaAgregados),
	}
}

func (r *stubCajaRepo) Create(_ context.Context, c *model.Caja) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.errOnCreate != nil {
		return r.errOnCreate
	}
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	r.cajas[c.ID] = c
	return nil
}

func (r *stubCajaRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Caja, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.cajas[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return c, nil
}

func (r *stubCajaRepo) FindAbierta(_ context.Context) (*model.Caja, error) {
	if r.fetchStarted != nil {
		r.fetchStarted <- struct{}{}
		<-r.fetchRelease
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.abiertaCalls++
	if r.errOnFindAbierta != nil {
		return nil, r.errOnFindAbierta
	}
	for _, c := range r.cajas {
		if c.FechaCierre == nil {
			return c, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubCajaRepo) Update(_ context.Context, c *model.Caja) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cajas[c.ID] = c
	return nil
}

func (r *stubCajaRepo) List(_ context.Context, _ dto.CajaFilter) ([]model.Caja, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]model.Caja, 0, len(r.cajas))
	for _, c := range r.cajas {
		out = append(out, *c)
	}
	return out, nil
}

func (r *stubCajaRepo) SumVentas(_ context.Context, cajaID uuid.UUID) (repository.CajaAgregados, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.agg[cajaID], nil
}

func (r *stubCajaRepo) findAbiertaCalls() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.abiertaCalls
}

// ─── Venta ───────────────────────────────────────────────────────────────────

type stubVentaRepo struct {
	mu     sync.Mutex
	ventas []*model.Venta
	ticket int
}

func newStubVentaRepo() *stubVentaRepo { return &stubVentaRepo{} }

func (r *stubVentaRepo) Create(_ context.Context, _ *gorm.DB, v *model.Venta) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	r.ventas = append(r.ventas, v)
	return nil
}

func (r *stubVentaRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Venta, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, v := range r.ventas {
		if v.ID == id {
			return v, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubVentaRepo) NextTicketNumber(_ context.Context, _ *gorm.DB) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ticket++
	return r.ticket, nil
}

func (r *stubVentaRepo) List(_ context.Context, _ dto.VentaFilter) ([]model.Venta, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]model.Venta, 0, len(r.ventas))
	for _, v := range r.ventas {
		out = append(out, *v)
	}
	return out, int64(len(out)), nil
}

func (r *stubVentaRepo) ResumenPorDia(_ context.Context, _, _ string) ([]dto.ResumenDia, error) {
	return nil, nil
}

// DB returns nil so runTx executes the closure without a transaction.
func (r *stubVentaRepo) DB() *gorm.DB { return nil }

func (r *stubVentaRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.ventas)
}

// ─── Cliente ─────────────────────────────────────────────────────────────────

type stubClienteRepo struct {
	mu       sync.Mutex
	clientes map[uuid.UUID]*model.Cliente
}

func newStubClienteRepo() *stubClienteRepo {
	return &stubClienteRepo{clientes: make(map[uuid.UUID]*model.Cliente)}
}

func (r *stubClienteRepo) Create(_ context.Context, c *model.Cliente) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	r.clientes[c.ID] = c
	return nil
}

func (r *stubClienteRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Cliente, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.clientes[id]
	if !ok || !c.Activo {
		return nil, gorm.ErrRecordNotFound
	}
	return c, nil
}

func (r *stubClienteRepo) List(_ context.Context, _ string) ([]model.Cliente, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]model.Cliente, 0, len(r.clientes))
	for _, c := range r.clientes {
		if c.Activo {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (r *stubClienteRepo) ListConCumpleanos(_ context.Context) ([]model.Cliente, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]model.Cliente, 0, len(r.clientes))
	for _, c := range r.clientes {
		if c.Activo && c.FechaNacimiento != nil {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (r *stubClienteRepo) Update(_ context.Context, c *model.Cliente) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.clientes[c.ID] = c
	return nil
}

func (r *stubClienteRepo) SoftDelete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.clientes[id]; ok {
		c.Activo = false
	}
	return nil
}

// ─── Producto ────────────────────────────────────────────────────────────────

type stubProductoRepo struct {
	mu        sync.Mutex
	productos map[uuid.UUID]*model.Producto
}

func newStubProductoRepo() *stubProductoRepo {
	return &stubProductoRepo{productos: make(map[uuid.UUID]*model.Producto)}
}

func (r *stubProductoRepo) Create(_ context.Context, p *model.Producto) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	r.productos[p.ID] = p
	return nil
}

func (r *stubProductoRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Producto, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.productos[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return p, nil
}

func (r *stubProductoRepo) FindByCodigo(_ context.Context, codigo string) (*model.Producto, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.productos {
		if p.Codigo == codigo {
			return p, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubProductoRepo) List(_ context.Context, _ dto.ProductoFilter) ([]model.Producto, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]model.Producto, 0, len(r.productos))
	for _, p := range r.productos {
		out = append(out, *p)
	}
	return out, int64(len(out)), nil
}

func (r *stubProductoRepo) Update(_ context.Context, p *model.Producto) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.productos[p.ID] = p
	return nil
}

func (r *stubProductoRepo) SoftDelete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.productos[id]; ok {
		p.Activo = false
	}
	return nil
}

func (r *stubProductoRepo) DescontarStockTx(_ *gorm.DB, id uuid.UUID, cantidad int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.productos[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if p.Stock < cantidad {
		return repository.ErrStockInsuficiente
	}
	p.Stock -= cantidad
	return nil
}

// ─── Carrito (sesión) ────────────────────────────────────────────────────────

type stubCarritoRepo struct {
	mu       sync.Mutex
	sesiones map[uuid.UUID]*repository.SesionVenta
	// historial keeps a copy of the wizard state at every Save, so tests can
	// observe intermediate states of a multi-save operation.
	historial []proceso.Estado
}

func newStubCarritoRepo() *stubCarritoRepo {
	return &stubCarritoRepo{sesiones: make(map[uuid.UUID]*repository.SesionVenta)}
}

func (r *stubCarritoRepo) Get(_ context.Context, usuarioID uuid.UUID) (*repository.SesionVenta, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.sesiones[usuarioID]; ok {
		return s, nil
	}
	return repository.NuevaSesionVenta(), nil
}

func (r *stubCarritoRepo) Save(_ context.Context, usuarioID uuid.UUID, s *repository.SesionVenta) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sesiones[usuarioID] = s
	r.historial = append(r.historial, *s.Estado)
	return nil
}

func (r *stubCarritoRepo) Delete(_ context.Context, usuarioID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sesiones, usuarioID)
	return nil
}
