package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/lankaline/freight-api/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PredefinedRateFilters contains all filter options for listing catalog rates
type PredefinedRateFilters struct {
	TradeLaneID *uuid.UUID
	Region      *string
	PolID       *uuid.UUID
	PodID       *uuid.UUID
	Service     *string
	EquipTypeID *uuid.UUID
	Status      *domain.PredefinedRateStatus
	IsLcl       *bool
}

type PredefinedRateRepository struct {
	db *gorm.DB
}

func NewPredefinedRateRepository(db *gorm.DB) *PredefinedRateRepository {
	return &PredefinedRateRepository{db: db}
}

func (r *PredefinedRateRepository) Create(ctx context.Context, rate *domain.PredefinedRate) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(rate).Error
}

func (r *PredefinedRateRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.PredefinedRate, error) {
	var rate domain.PredefinedRate
	err := r.db.WithContext(ctx).
		Preload("TradeLane").
		First(&rate, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &rate, nil
}

func (r *PredefinedRateRepository) Update(ctx context.Context, rate *domain.PredefinedRate) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(rate).Error
}

func (r *PredefinedRateRepository) List(ctx context.Context, page, pageSize int, filters *PredefinedRateFilters) ([]domain.PredefinedRate, int64, error) {
	var rates []domain.PredefinedRate
	var total int64

	query := r.db.WithContext(ctx).Model(&domain.PredefinedRate{})

	if filters != nil {
		if filters.TradeLaneID != nil {
			query = query.Where("trade_lane_id = ?", *filters.TradeLaneID)
		}
		if filters.Region != nil {
			query = query.
				Select("predefined_rates.*").
				Joins("JOIN trade_lanes ON trade_lanes.id = predefined_rates.trade_lane_id").
				Where("trade_lanes.region = ?", *filters.Region)
		}
		if filters.PolID != nil {
			query = query.Where("pol_id = ?", *filters.PolID)
		}
		if filters.PodID != nil {
			query = query.Where("pod_id = ?", *filters.PodID)
		}
		if filters.Service != nil {
			query = query.Where("service LIKE ?", "%"+*filters.Service+"%")
		}
		if filters.EquipTypeID != nil {
			query = query.Where("equip_type_id = ?", *filters.EquipTypeID)
		}
		if filters.Status != nil {
			query = query.Where("status = ?", *filters.Status)
		}
		if filters.IsLcl != nil {
			query = query.Where("is_lcl = ?", *filters.IsLcl)
		}
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.Offset(offset).Limit(pageSize).Order("valid_to ASC").Find(&rates).Error

	return rates, total, err
}

// ListExpiringUnnotified returns active rates whose validity ends inside
// the window and which have not been swept yet.
func (r *PredefinedRateRepository) ListExpiringUnnotified(ctx context.Context, from, to time.Time) ([]domain.PredefinedRate, error) {
	var rates []domain.PredefinedRate
	err := r.db.WithContext(ctx).
		Where("status = ?", domain.PredefinedRateActive).
		Where("valid_to >= ? AND valid_to <= ?", from, to).
		Where("expiry_notified_at IS NULL").
		Order("valid_to ASC").
		Find(&rates).Error
	return rates, err
}

// MarkExpiryNotified stamps a rate so the sweep does not pick it up again
func (r *PredefinedRateRepository) MarkExpiryNotified(ctx context.Context, id uuid.UUID, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&domain.PredefinedRate{}).
		Where("id = ?", id).
		Update("expiry_notified_at", at).Error
}

func (r *PredefinedRateRepository) CreateUpdateRequest(ctx context.Context, request *domain.RateUpdateRequest) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(request).Error
}

func (r *PredefinedRateRepository) ListUpdateRequests(ctx context.Context, rateID uuid.UUID) ([]domain.RateUpdateRequest, error) {
	var requests []domain.RateUpdateRequest
	err := r.db.WithContext(ctx).
		Where("predefined_rate_id = ?", rateID).
		Order("created_at DESC").
		Find(&requests).Error
	return requests, err
}
