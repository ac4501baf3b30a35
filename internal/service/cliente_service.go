package service

import (
	"context"
	"errors"
	"sort"
	"time"

	"ananda/internal/dto"
	"ananda/internal/model"
	"ananda/internal/repository"
	"ananda/internal/worker"

	"github.com/google/uuid"
)

type ClienteService interface {
	Crear(ctx context.Context, req dto.CrearClienteRequest) (*dto.ClienteResponse, error)
	Listar(ctx context.Context, busqueda string) ([]dto.ClienteResponse, error)
	Obtener(ctx context.Context, id uuid.UUID) (*dto.ClienteResponse, error)
	Actualizar(ctx context.Context, id uuid.UUID, req dto.ActualizarClienteRequest) (*dto.ClienteResponse, error)
	Eliminar(ctx context.Context, id uuid.UUID) error

	// Saludar marks the birthday greeting as sent, at most once per calendar
	// year, and enqueues the greeting email when the customer has an address.
	Saludar(ctx context.Context, id uuid.UUID) (*dto.ClienteResponse, error)
	Cumpleanos(ctx context.Context, dias int) ([]dto.CumpleanosItem, error)
}

// ErrYaSaludado signals a repeat greeting within the same year.
var ErrYaSaludado = errors.New("el cliente ya fue saludado este año")

type clienteService struct {
	repo       repository.ClienteRepository
	dispatcher *worker.Dispatcher
	hoy        func() time.Time
}

func NewClienteService(repo repository.ClienteRepository, dispatcher *worker.Dispatcher) ClienteService {
	return &clienteService{repo: repo, dispatcher: dispatcher, hoy: time.Now}
}

func (s *clienteService) Crear(ctx context.Context, req dto.CrearClienteRequest) (*dto.ClienteResponse, error) {
	c := &model.Cliente{
		Nombre:   req.Nombre,
		Apellido: req.Apellido,
		Telefono: req.Telefono,
		Email:    req.Email,
		Activo:   true,
	}
	if req.FechaNacimiento != nil {
		fn, err := time.Parse("2006-01-02", *req.FechaNacimiento)
		if err != nil {
			return nil, errors.New("fecha_nacimiento inválida")
		}
		c.FechaNacimiento = &fn
	}
	if err := s.repo.Create(ctx, c); err != nil {
		return nil, err
	}
	return clienteToResponse(c), nil
}

func (s *clienteService) Listar(ctx context.Context, busqueda string) ([]dto.ClienteResponse, error) {
	clientes, err := s.repo.List(ctx, busqueda)
	if err != nil {
		return nil, err
	}
	resp := make([]dto.ClienteResponse, 0, len(clientes))
	for i := range clientes {
		resp = append(resp, *clienteToResponse(&clientes[i]))
	}
	return resp, nil
}

func (s *clienteService) Obtener(ctx context.Context, id uuid.UUID) (*dto.ClienteResponse, error) {
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, errors.New("cliente no encontrado")
	}
	return clienteToResponse(c), nil
}

func (s *clienteService) Actualizar(ctx context.Context, id uuid.UUID, req dto.ActualizarClienteRequest) (*dto.ClienteResponse, error) {
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, errors.New("cliente no encontrado")
	}
	if req.Nombre != nil {
		c.Nombre = *req.Nombre
	}
	if req.Apellido != nil {
		c.Apellido = *req.Apellido
	}
	if req.Telefono != nil {
		c.Telefono = *req.Telefono
	}
	if req.Email != nil {
		c.Email = req.Email
	}
	if req.FechaNacimiento != nil {
		fn, err := time.Parse("2006-01-02", *req.FechaNacimiento)
		if err != nil {
			return nil, errors.New("fecha_nacimiento inválida")
		}
		c.FechaNacimiento = &fn
	}
	if err := s.repo.Update(ctx, c); err != nil {
		return nil, err
	}
	return clienteToResponse(c), nil
}

func (s *clienteService) Eliminar(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return errors.New("cliente no encontrado")
	}
	return s.repo.SoftDelete(ctx, id)
}

// ── Saludos de cumpleaños ────────────────────────────────────────────────────

func (s *clienteService) Saludar(ctx context.Context, id uuid.UUID) (*dto.ClienteResponse, error) {
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, errors.New("cliente no encontrado")
	}

	hoy := s.hoy()
	if c.SaludadoEsteAno(hoy) {
		return nil, ErrYaSaludado
	}

	fecha := time.Date(hoy.Year(), hoy.Month(), hoy.Day(), 0, 0, 0, 0, time.UTC)
	c.UltimoSaludo = &fecha
	if err := s.repo.Update(ctx, c); err != nil {
		return nil, err
	}

	// Best-effort async send; the greeting stays marked even if the email
	// later fails (the retry cron picks it up from the DLQ).
	if s.dispatcher != nil && c.Email != nil && *c.Email != "" {
		_ = s.dispatcher.EnqueueSaludo(ctx, worker.SaludoJobPayload{
			ClienteID: c.ID.String(),
			Nombre:    c.Nombre,
			Email:     *c.Email,
		})
	}

	return clienteToResponse(c), nil
}

func (s *clienteService) Cumpleanos(ctx context.Context, dias int) ([]dto.CumpleanosItem, error) {
	if dias < 0 {
		dias = 0
	}
	clientes, err := s.repo.ListConCumpleanos(ctx)
	if err != nil {
		return nil, err
	}

	hoy := s.hoy()
	items := make([]dto.CumpleanosItem, 0)
	for i := range clientes {
		restantes := clientes[i].DiasHastaCumpleanos(hoy)
		if restantes < 0 || restantes > dias {
			continue
		}
		items = append(items, dto.CumpleanosItem{
			Cliente:       *clienteToResponse(&clientes[i]),
			DiasRestantes: restantes,
			EstadoSaludo:  clientes[i].EstadoSaludo(hoy),
		})
	}
	sort.Slice(items, func(a, b int) bool { return items[a].DiasRestantes < items[b].DiasRestantes })
	return items, nil
}

func clienteToResponse(c *model.Cliente) *dto.ClienteResponse {
	resp := &dto.ClienteResponse{
		ID:       c.ID.String(),
		Nombre:   c.Nombre,
		Apellido: c.Apellido,
		Telefono: c.Telefono,
		Email:    c.Email,
		Activo:   c.Activo,
	}
	if c.FechaNacimiento != nil {
		f := c.FechaNacimiento.Format("2006-01-02")
		resp.FechaNacimiento = &f
	}
	if c.UltimoSaludo != nil {
		f := c.UltimoSaludo.Format("2006-01-02")
		resp.UltimoSaludo = &f
	}
	return resp
}
