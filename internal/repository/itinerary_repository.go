package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/lankaline/freight-api/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ItineraryFilters contains all filter options for listing itineraries
type ItineraryFilters struct {
	OwnerID   *uuid.UUID
	Status    *domain.ItineraryStatus
	Type      *domain.ItineraryType
	WeekStart *time.Time
}

type ItineraryRepository struct {
	db *gorm.DB
}

func NewItineraryRepository(db *gorm.DB) *ItineraryRepository {
	return &ItineraryRepository{db: db}
}

// Create persists an itinerary together with its initial items
func (r *ItineraryRepository) Create(ctx context.Context, itinerary *domain.Itinerary) error {
	return r.db.WithContext(ctx).Omit("Owner", "Items.Customer").Create(itinerary).Error
}

func (r *ItineraryRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Itinerary, error) {
	var itinerary domain.Itinerary
	err := r.db.WithContext(ctx).
		Preload("Owner").
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("date ASC, created_at ASC")
		}).
		First(&itinerary, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &itinerary, nil
}

func (r *ItineraryRepository) Update(ctx context.Context, itinerary *domain.Itinerary) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(itinerary).Error
}

func (r *ItineraryRepository) List(ctx context.Context, page, pageSize int, filters *ItineraryFilters) ([]domain.Itinerary, int64, error) {
	var itineraries []domain.Itinerary
	var total int64

	query := r.db.WithContext(ctx).Model(&domain.Itinerary{}).Preload("Owner")

	if filters != nil {
		if filters.OwnerID != nil {
			query = query.Where("owner_id = ?", *filters.OwnerID)
		}
		if filters.Status != nil {
			query = query.Where("status = ?", *filters.Status)
		}
		if filters.Type != nil {
			query = query.Where("type = ?", *filters.Type)
		}
		if filters.WeekStart != nil {
			query = query.Where("week_start = ?", *filters.WeekStart)
		}
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.Offset(offset).Limit(pageSize).Order("week_start DESC, created_at DESC").Find(&itineraries).Error

	return itineraries, total, err
}

func (r *ItineraryRepository) CreateItem(ctx context.Context, item *domain.ItineraryItem) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(item).Error
}

func (r *ItineraryRepository) GetItemByID(ctx context.Context, id uuid.UUID) (*domain.ItineraryItem, error) {
	var item domain.ItineraryItem
	err := r.db.WithContext(ctx).First(&item, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *ItineraryRepository) UpdateItem(ctx context.Context, item *domain.ItineraryItem) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(item).Error
}

func (r *ItineraryRepository) DeleteItem(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&domain.ItineraryItem{}, "id = ?", id).Error
}
