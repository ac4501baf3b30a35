package service

import (
	"context"
	"errors"

	"ananda/internal/dto"
	"ananda/internal/model"
	"ananda/internal/repository"

	"github.com/google/uuid"
)

type CategoriaService interface {
	Crear(ctx context.Context, req dto.CrearCategoriaRequest) (*dto.CategoriaResponse, error)
	Listar(ctx context.Context) ([]dto.CategoriaResponse, error)
	Actualizar(ctx context.Context, id uuid.UUID, req dto.ActualizarCategoriaRequest) (*dto.CategoriaResponse, error)
	Desactivar(ctx context.Context, id uuid.UUID) error
	CrearSubcategoria(ctx context.Context, categoriaID uuid.UUID, req dto.CrearSubcategoriaRequest) (*dto.SubcategoriaResponse, error)
	DesactivarSubcategoria(ctx context.Context, id uuid.UUID) error
}

type categoriaService struct {
	repo repository.CategoriaRepository
}

func NewCategoriaService(repo repository.CategoriaRepository) CategoriaService {
	return &categoriaService{repo: repo}
}

func (s *categoriaService) Crear(ctx context.Context, req dto.CrearCategoriaRequest) (*dto.CategoriaResponse, error) {
	if _, err := s.repo.ObtenerPorNombre(ctx, req.Nombre); err == nil {
		return nil, errors.New("ya existe una categoria con ese nombre")
	}

	c := &model.Categoria{Nombre: req.Nombre, Activo: true}
	if err := s.repo.Crear(ctx, c); err != nil {
		return nil, err
	}
	resp := categoriaToResponse(c)
	return &resp, nil
}

func (s *categoriaService) Listar(ctx context.Context) ([]dto.CategoriaResponse, error) {
	categorias, err := s.repo.Listar(ctx)
	if err != nil {
		return nil, err
	}
	resp := make([]dto.CategoriaResponse, len(categorias))
	for i := range categorias {
		resp[i] = categoriaToResponse(&categorias[i])
	}
	return resp, nil
}

func (s *categoriaService) Actualizar(ctx context.Context, id uuid.UUID, req dto.ActualizarCategoriaRequest) (*dto.CategoriaResponse, error) {
	c, err := s.repo.ObtenerPorID(ctx, id)
	if err != nil {
		return nil, errors.New("categoria no encontrada")
	}
	if req.Nombre != nil {
		c.Nombre = *req.Nombre
	}
	if req.Activo != nil {
		c.Activo = *req.Activo
	}
	if err := s.repo.Actualizar(ctx, c); err != nil {
		return nil, err
	}
	resp := categoriaToResponse(c)
	return &resp, nil
}

func (s *categoriaService) Desactivar(ctx context.Context, id uuid.UUID) error {
	return s.repo.Desactivar(ctx, id)
}

func (s *categoriaService) CrearSubcategoria(ctx context.Context, categoriaID uuid.UUID, req dto.CrearSubcategoriaRequest) (*dto.SubcategoriaResponse, error) {
	if _, err := s.repo.ObtenerPorID(ctx, categoriaID); err != nil {
		return nil, errors.New("categoria no encontrada")
	}

	sub := &model.Subcategoria{CategoriaID: categoriaID, Nombre: req.Nombre, Activo: true}
	if err := s.repo.CrearSubcategoria(ctx, sub); err != nil {
		return nil, err
	}
	return &dto.SubcategoriaResponse{ID: sub.ID, Nombre: sub.Nombre, Activo: sub.Activo}, nil
}

func (s *categoriaService) DesactivarSubcategoria(ctx context.Context, id uuid.UUID) error {
	return s.repo.DesactivarSubcategoria(ctx, id)
}

func categoriaToResponse(c *model.Categoria) dto.CategoriaResponse {
	subs := make([]dto.SubcategoriaResponse, len(c.Subcategorias))
	for i, sub := range c.Subcategorias {
		subs[i] = dto.SubcategoriaResponse{ID: sub.ID, Nombre: sub.Nombre, Activo: sub.Activo}
	}
	return dto.CategoriaResponse{
		ID:            c.ID,
		Nombre:        c.Nombre,
		Activo:        c.Activo,
		Subcategorias: subs,
	}
}
