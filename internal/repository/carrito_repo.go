package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"ananda/internal/carrito"
	"ananda/internal/proceso"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// SesionVenta is one user's in-progress checkout: wizard state plus cart.
// It lives in Redis under a TTL so an abandoned cart expires on its own.
type SesionVenta struct {
	Estado  *proceso.Estado  `json:"estado"`
	Carrito *carrito.Carrito `json:"carrito"`
}

// NuevaSesionVenta returns the initial session shape.
func NuevaSesionVenta() *SesionVenta {
	return &SesionVenta{Estado: proceso.NuevoEstado(), Carrito: carrito.Nuevo()}
}

// CarritoRepository persists per-user checkout sessions.
type CarritoRepository interface {
	Get(ctx context.Context, usuarioID uuid.UUID) (*SesionVenta, error)
	Save(ctx context.Context, usuarioID uuid.UUID, s *SesionVenta) error
	Delete(ctx context.Context, usuarioID uuid.UUID) error
}

const (
	sesionKeyPrefix = "sesion:venta:"
	sesionTTL       = 12 * time.Hour
)

type carritoRepo struct{ rdb *redis.Client }

func NewCarritoRepository(rdb *redis.Client) CarritoRepository { return &carritoRepo{rdb: rdb} }

func (r *carritoRepo) Get(ctx context.Context, usuarioID uuid.UUID) (*SesionVenta, error) {
	raw, err := r.rdb.Get(ctx, sesionKeyPrefix+usuarioID.String()).Bytes()
	if errors.Is(err, redis.Nil) {
		return NuevaSesionVenta(), nil
	}
	if err != nil {
		return nil, err
	}
	var s SesionVenta
	if err := json.Unmarshal(raw, &s); err != nil {
		// A corrupt session is unrecoverable; start clean rather than fail.
		return NuevaSesionVenta(), nil
	}
	if s.Estado == nil {
		s.Estado = proceso.NuevoEstado()
	}
	if s.Carrito == nil {
		s.Carrito = carrito.Nuevo()
	}
	return &s, nil
}

func (r *carritoRepo) Save(ctx context.Context, usuarioID uuid.UUID, s *SesionVenta) error {
	data, err := json.Marshal(s)
	if err != nil {
		return err
	}
	return r.rdb.Set(ctx, sesionKeyPrefix+usuarioID.String(), data, sesionTTL).Err()
}

func (r *carritoRepo) Delete(ctx context.Context, usuarioID uuid.UUID) error {
	return r.rdb.Del(ctx, sesionKeyPrefix+usuarioID.String()).Err()
}
