package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/lankaline/freight-api/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// BookingFilters contains all filter options for listing booking requests
type BookingFilters struct {
	Status     *domain.BookingStatus
	RateSource *domain.RateSource
	CustomerID *uuid.UUID
	RaisedByID *uuid.UUID
}

type BookingRepository struct {
	db *gorm.DB
}

func NewBookingRepository(db *gorm.DB) *BookingRepository {
	return &BookingRepository{db: db}
}

func (r *BookingRepository) Create(ctx context.Context, booking *domain.BookingRequest) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(booking).Error
}

func (r *BookingRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.BookingRequest, error) {
	var booking domain.BookingRequest
	err := r.db.WithContext(ctx).
		Preload("Customer").
		Preload("RODocuments", func(db *gorm.DB) *gorm.DB {
			return db.Order("received_at ASC")
		}).
		Preload("Job").
		Preload("Job.Completions", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		}).
		First(&booking, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

func (r *BookingRepository) Update(ctx context.Context, booking *domain.BookingRequest) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(booking).Error
}

func (r *BookingRepository) List(ctx context.Context, page, pageSize int, filters *BookingFilters) ([]domain.BookingRequest, int64, error) {
	var bookings []domain.BookingRequest
	var total int64

	query := r.db.WithContext(ctx).Model(&domain.BookingRequest{}).Preload("Customer")

	if filters != nil {
		if filters.Status != nil {
			query = query.Where("status = ?", *filters.Status)
		}
		if filters.RateSource != nil {
			query = query.Where("rate_source = ?", *filters.RateSource)
		}
		if filters.CustomerID != nil {
			query = query.Where("customer_id = ?", *filters.CustomerID)
		}
		if filters.RaisedByID != nil {
			query = query.Where("raised_by_id = ?", *filters.RaisedByID)
		}
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.Offset(offset).Limit(pageSize).Order("created_at DESC").Find(&bookings).Error

	return bookings, total, err
}

func (r *BookingRepository) CreateRODocument(ctx context.Context, doc *domain.RODocument) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(doc).Error
}

// CreateJob inserts the ERP job for a booking. The unique index on
// booking_request_id makes a second insert fail with a duplicate key
// error, which the service maps to a conflict.
func (r *BookingRepository) CreateJob(ctx context.Context, job *domain.Job) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(job).Error
}

func (r *BookingRepository) GetJobByID(ctx context.Context, id uuid.UUID) (*domain.Job, error) {
	var job domain.Job
	err := r.db.WithContext(ctx).
		Preload("Completions", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		}).
		First(&job, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &job, nil
}

func (r *BookingRepository) GetJobByBooking(ctx context.Context, bookingID uuid.UUID) (*domain.Job, error) {
	var job domain.Job
	err := r.db.WithContext(ctx).
		First(&job, "booking_request_id = ?", bookingID).Error
	if err != nil {
		return nil, err
	}
	return &job, nil
}

func (r *BookingRepository) CreateJobCompletion(ctx context.Context, completion *domain.JobCompletion) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(completion).Error
}
