package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"ananda/internal/dto"
	"ananda/internal/model"
	"ananda/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

type CajaService interface {
	// Actual returns the open register, or nil when none exists. Reads are
	// throttled; state-changing operations never are.
	Actual(ctx context.Context) (*model.Caja, error)
	Abrir(ctx context.Context, usuarioID uuid.UUID, req dto.AbrirCajaRequest) (*dto.CajaResponse, error)
	Cerrar(ctx context.Context, usuarioID uuid.UUID, req dto.CerrarCajaRequest) (*dto.CajaResponse, error)
	MarcarControlada(ctx context.Context, cajaID uuid.UUID) (*dto.CajaResponse, error)
	Listar(ctx context.Context, filter dto.CajaFilter) ([]dto.CajaResponse, error)
	Detalle(ctx context.Context, cajaID uuid.UUID) (*dto.CajaResponse, error)
}

type cajaService struct {
	repo     repository.CajaRepository
	cacheTTL time.Duration

	// "Caja actual" read de-duplication: at most one round-trip per cacheTTL,
	// and a concurrent in-flight fetch drops the second caller onto the
	// cached value instead of queueing.
	mu        sync.Mutex
	fetchGate sync.Mutex
	cached    *model.Caja
	cachedOK  bool
	cachedAt  time.Time
}

func NewCajaService(repo repository.CajaRepository, cacheTTL time.Duration) CajaService {
	if cacheTTL <= 0 {
		cacheTTL = 2 * time.Second
	}
	return &cajaService{repo: repo, cacheTTL: cacheTTL}
}

// ── Actual ───────────────────────────────────────────────────────────────────

func (s *cajaService) Actual(ctx context.Context) (*model.Caja, error) {
	s.mu.Lock()
	if s.cachedOK && time.Since(s.cachedAt) < s.cacheTTL {
		c := s.cached
		s.mu.Unlock()
		return c, nil
	}
	s.mu.Unlock()

	if !s.fetchGate.TryLock() {
		// A fetch is already in flight; serve the last known state unchanged.
		s.mu.Lock()
		c := s.cached
		s.mu.Unlock()
		return c, nil
	}
	defer s.fetchGate.Unlock()

	caja, err := s.repo.FindAbierta(ctx)
	if err != nil {
		// "No open register" is a valid state; anything else is a real
		// failure and must surface without poisoning the cache.
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		caja = nil
	}

	s.mu.Lock()
	s.cached = caja
	s.cachedOK = true
	s.cachedAt = time.Now()
	s.mu.Unlock()

	return caja, nil
}

// invalidar drops the cached snapshot after any state-changing operation.
func (s *cajaService) invalidar() {
	s.mu.Lock()
	s.cachedOK = false
	s.cached = nil
	s.mu.Unlock()
}

// ── Abrir ────────────────────────────────────────────────────────────────────

// Abrir opens a new register session. When one is already open, whether the
// pre-check catches it or the partial unique index rejects the insert, the
// existing register is adopted and returned as success, not an error.
func (s *cajaService) Abrir(ctx context.Context, usuarioID uuid.UUID, req dto.AbrirCajaRequest) (*dto.CajaResponse, error) {
	if existing, err := s.repo.FindAbierta(ctx); err == nil && existing != nil {
		log.Info().Str("caja_id", existing.ID.String()).Msg("caja ya abierta, se adopta la existente")
		return s.buildResponse(ctx, existing), nil
	}

	caja := &model.Caja{
		MontoInicial:      req.MontoInicial,
		FechaApertura:     time.Now(),
		UsuarioAperturaID: usuarioID,
	}
	if err := s.repo.Create(ctx, caja); err != nil {
		// Lost the race against another session: adopt the winner.
		if existing, ferr := s.repo.FindAbierta(ctx); ferr == nil && existing != nil {
			log.Info().Str("caja_id", existing.ID.String()).Msg("apertura concurrente, se adopta la existente")
			s.invalidar()
			return s.buildResponse(ctx, existing), nil
		}
		return nil, err
	}

	s.invalidar()
	return s.buildResponse(ctx, caja), nil
}

// ── Cerrar ───────────────────────────────────────────────────────────────────

func (s *cajaService) Cerrar(ctx context.Context, usuarioID uuid.UUID, req dto.CerrarCajaRequest) (*dto.CajaResponse, error) {
	abierta, err := s.repo.FindAbierta(ctx)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		return nil, errors.New("No hay una caja abierta")
	}

	// Reload with sales so the reconciliation uses line items (first tier).
	caja, err := s.repo.FindByID(ctx, abierta.ID)
	if err != nil {
		return nil, err
	}

	montoSistema := caja.MontoSistema()
	diferencia := caja.CalcularDiferencia(req.MontoDeclarado)

	now := time.Now()
	declarado := req.MontoDeclarado
	caja.MontoFinal = &montoSistema
	caja.MontoDeclarado = &declarado
	caja.Diferencia = &diferencia
	caja.Notas = req.Notas
	caja.FechaCierre = &now
	caja.UsuarioCierreID = &usuarioID

	if err := s.repo.Update(ctx, caja); err != nil {
		return nil, err
	}

	log.Info().
		Str("caja_id", caja.ID.String()).
		Str("monto_sistema", montoSistema.String()).
		Str("diferencia", diferencia.String()).
		Str("clasificacion", model.ClasificarDiferencia(diferencia)).
		Msg("caja cerrada")

	s.invalidar()
	return s.buildResponse(ctx, caja), nil
}

// ── MarcarControlada ─────────────────────────────────────────────────────────

func (s *cajaService) MarcarControlada(ctx context.Context, cajaID uuid.UUID) (*dto.CajaResponse, error) {
	caja, err := s.repo.FindByID(ctx, cajaID)
	if err != nil {
		return nil, errors.New("caja no encontrada")
	}

	switch caja.Estado() {
	case model.CajaAbierta:
		return nil, errors.New("la caja aún está abierta")
	case model.CajaControlada:
		return nil, errors.New("la caja ya fue controlada")
	}

	now := time.Now()
	caja.FechaControl = &now
	if err := s.repo.Update(ctx, caja); err != nil {
		return nil, err
	}

	s.invalidar()
	return s.buildResponse(ctx, caja), nil
}

// ── Listar / Detalle ─────────────────────────────────────────────────────────

func (s *cajaService) Listar(ctx context.Context, filter dto.CajaFilter) ([]dto.CajaResponse, error) {
	cajas, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	resp := make([]dto.CajaResponse, 0, len(cajas))
	for i := range cajas {
		if agg, err := s.repo.SumVentas(ctx, cajas[i].ID); err == nil {
			total := agg.Total
			cajas[i].VentasTotalAgg = &total
			cajas[i].VentasCantidad = agg.Cantidad
		}
		resp = append(resp, *cajaToResponse(&cajas[i], false))
	}
	return resp, nil
}

func (s *cajaService) Detalle(ctx context.Context, cajaID uuid.UUID) (*dto.CajaResponse, error) {
	caja, err := s.repo.FindByID(ctx, cajaID)
	if err != nil {
		return nil, errors.New("caja no encontrada")
	}
	return cajaToResponse(caja, true), nil
}

// ── Helpers ──────────────────────────────────────────────────────────────────

// CajaToResponse maps a model.Caja for transport. Used by handlers that
// receive the raw model from Actual.
func CajaToResponse(c *model.Caja) *dto.CajaResponse {
	return cajaToResponse(c, true)
}

func (s *cajaService) buildResponse(ctx context.Context, caja *model.Caja) *dto.CajaResponse {
	if len(caja.Ventas) == 0 {
		if agg, err := s.repo.SumVentas(ctx, caja.ID); err == nil {
			total := agg.Total
			caja.VentasTotalAgg = &total
			caja.VentasCantidad = agg.Cantidad
		}
	}
	return cajaToResponse(caja, false)
}

func cajaToResponse(c *model.Caja, conVentas bool) *dto.CajaResponse {
	resp := &dto.CajaResponse{
		ID:             c.ID.String(),
		Estado:         c.Estado(),
		MontoInicial:   c.MontoInicial,
		MontoSistema:   c.MontoSistema(),
		MontoFinal:     c.MontoFinal,
		MontoDeclarado: c.MontoDeclarado,
		Notas:          c.Notas,
		FechaApertura:  c.FechaApertura.UTC().Format(time.RFC3339),
		VentasTotal:    c.VentasTotal(),
		VentasCantidad: c.VentasCantidad,
	}
	if c.VentasCantidad == 0 && len(c.Ventas) > 0 {
		resp.VentasCantidad = int64(len(c.Ventas))
	}
	if c.Diferencia != nil {
		resp.Diferencia = &dto.DiferenciaResponse{
			Monto:         *c.Diferencia,
			Clasificacion: model.ClasificarDiferencia(*c.Diferencia),
		}
	}
	if c.UsuarioApertura != nil {
		resp.UsuarioApertura = c.UsuarioApertura.Username
	}
	if c.UsuarioCierre != nil {
		resp.UsuarioCierre = &c.UsuarioCierre.Username
	}
	if c.FechaCierre != nil {
		t := c.FechaCierre.UTC().Format(time.RFC3339)
		resp.FechaCierre = &t
	}
	if c.FechaControl != nil {
		t := c.FechaControl.UTC().Format(time.RFC3339)
		resp.FechaControl = &t
	}
	if conVentas {
		for i := range c.Ventas {
			resp.Ventas = append(resp.Ventas, *ventaToListItem(&c.Ventas[i]))
		}
	}
	return resp
}
