package repository

import (
	"context"

	"ananda/internal/dto"
	"ananda/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type VentaRepository interface {
	Create(ctx context.Context, tx *gorm.DB, v *model.Venta) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Venta, error)
	NextTicketNumber(ctx context.Context, tx *gorm.DB) (int, error)
	List(ctx context.Context, filter dto.VentaFilter) ([]model.Venta, int64, error)
	ResumenPorDia(ctx context.Context, fechaInicio, fechaFin string) ([]dto.ResumenDia, error)
	DB() *gorm.DB // exposes the DB for transaction creation in the service layer
}

type ventaRepo struct{ db *gorm.DB }

func NewVentaRepository(db *gorm.DB) VentaRepository { return &ventaRepo{db: db} }

func (r *ventaRepo) DB() *gorm.DB { return r.db }

func (r *ventaRepo) Create(ctx context.Context, tx *gorm.DB, v *model.Venta) error {
	return tx.WithContext(ctx).Create(v).Error
}

func (r *ventaRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Venta, error) {
	var v model.Venta
	err := r.db.WithContext(ctx).
		Preload("Items.Producto").Preload("Cliente").Preload("Usuario").
		First(&v, id).Error
	return &v, err
}

func (r *ventaRepo) NextTicketNumber(ctx context.Context, tx *gorm.DB) (int, error) {
	// PostgreSQL sequence keeps ticket numbers atomic across sessions
	var num int
	err := tx.WithContext(ctx).Raw("SELECT nextval('ventas_numero_ticket_seq')").Scan(&num).Error
	return num, err
}

func (r *ventaRepo) List(ctx context.Context, filter dto.VentaFilter) ([]model.Venta, int64, error) {
	var ventas []model.Venta
	var total int64
	offset := (filter.Page - 1) * filter.Limit

	q := r.db.WithContext(ctx).Model(&model.Venta{})

	if filter.Estado != "" && filter.Estado != "all" {
		q = q.Where("estado = ?", filter.Estado)
	}
	if filter.FechaInicio != "" {
		q = q.Where("DATE(created_at) >= ?", filter.FechaInicio)
	}
	if filter.FechaFin != "" {
		q = q.Where("DATE(created_at) <= ?", filter.FechaFin)
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := q.Preload("Items.Producto").Preload("Cliente").Preload("Usuario").
		Order("created_at DESC").
		Offset(offset).Limit(filter.Limit).
		Find(&ventas).Error

	return ventas, total, err
}

func (r *ventaRepo) ResumenPorDia(ctx context.Context, fechaInicio, fechaFin string) ([]dto.ResumenDia, error) {
	var rows []struct {
		Fecha    string
		Total    decimal.Decimal
		Cantidad int64
	}
	q := r.db.WithContext(ctx).Model(&model.Venta{}).
		Select("DATE(created_at) AS fecha, COALESCE(SUM(total), 0) AS total, COUNT(*) AS cantidad").
		Where("estado = ?", model.VentaCompletada)
	if fechaInicio != "" {
		q = q.Where("DATE(created_at) >= ?", fechaInicio)
	}
	if fechaFin != "" {
		q = q.Where("DATE(created_at) <= ?", fechaFin)
	}
	if err := q.Group("DATE(created_at)").Order("fecha ASC").Scan(&rows).Error; err != nil {
		return nil, err
	}

	resumen := make([]dto.ResumenDia, 0, len(rows))
	for _, row := range rows {
		resumen = append(resumen, dto.ResumenDia{Fecha: row.Fecha, Total: row.Total, Cantidad: row.Cantidad})
	}
	return resumen, nil
}
