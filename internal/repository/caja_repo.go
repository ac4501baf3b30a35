package repository

import (
	"context"

	"ananda/internal/dto"
	"ananda/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// CajaAgregados carries the per-session sale aggregates the list query
// computes when line items are not loaded.
type CajaAgregados struct {
	Total    decimal.Decimal
	Cantidad int64
}

type CajaRepository interface {
	Create(ctx context.Context, c *model.Caja) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Caja, error)
	FindAbierta(ctx context.Context) (*model.Caja, error)
	Update(ctx context.Context, c *model.Caja) error
	List(ctx context.Context, filter dto.CajaFilter) ([]model.Caja, error)
	SumVentas(ctx context.Context, cajaID uuid.UUID) (CajaAgregados, error)
}

type cajaRepo struct{ db *gorm.DB }

func NewCajaRepository(db *gorm.DB) CajaRepository { return &cajaRepo{db: db} }

func (r *cajaRepo) Create(ctx context.Context, c *model.Caja) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *cajaRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Caja, error) {
	var c model.Caja
	err := r.db.WithContext(ctx).
		Preload("Ventas").Preload("Ventas.Cliente").
		Preload("UsuarioApertura").Preload("UsuarioCierre").
		First(&c, id).Error
	return &c, err
}

func (r *cajaRepo) FindAbierta(ctx context.Context) (*model.Caja, error) {
	var c model.Caja
	err := r.db.WithContext(ctx).
		Preload("UsuarioApertura").
		Where("fecha_cierre IS NULL").First(&c).Error
	return &c, err
}

func (r *cajaRepo) Update(ctx context.Context, c *model.Caja) error {
	return r.db.WithContext(ctx).Save(c).Error
}

func (r *cajaRepo) List(ctx context.Context, filter dto.CajaFilter) ([]model.Caja, error) {
	q := r.db.WithContext(ctx).Model(&model.Caja{}).
		Preload("UsuarioApertura").Preload("UsuarioCierre")

	if filter.FechaInicio != "" {
		q = q.Where("DATE(fecha_apertura) >= ?", filter.FechaInicio)
	}
	if filter.FechaFin != "" {
		q = q.Where("DATE(fecha_apertura) <= ?", filter.FechaFin)
	}
	if filter.UsuarioID != "" {
		q = q.Where("usuario_apertura_id = ?", filter.UsuarioID)
	}
	switch filter.Estado {
	case model.CajaAbierta:
		q = q.Where("fecha_cierre IS NULL")
	case model.CajaCerrada:
		q = q.Where("fecha_cierre IS NOT NULL AND fecha_control IS NULL")
	case model.CajaControlada:
		q = q.Where("fecha_control IS NOT NULL")
	}

	var cajas []model.Caja
	err := q.Order("fecha_apertura DESC").Find(&cajas).Error
	return cajas, err
}

func (r *cajaRepo) SumVentas(ctx context.Context, cajaID uuid.UUID) (CajaAgregados, error) {
	var row struct {
		Total    decimal.Decimal
		Cantidad int64
	}
	err := r.db.WithContext(ctx).Model(&model.Venta{}).
		Select("COALESCE(SUM(total), 0) AS total, COUNT(*) AS cantidad").
		Where("caja_id = ? AND estado <> ?", cajaID, model.VentaAnulada).
		Scan(&row).Error
	return CajaAgregados{Total: row.Total, Cantidad: row.Cantidad}, err
}
