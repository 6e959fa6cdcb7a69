package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/lankaline/freight-api/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// RateRequestFilters contains all filter options for listing rate requests
type RateRequestFilters struct {
	Status        *domain.RateRequestStatus
	Mode          *domain.TransportMode
	CustomerID    *uuid.UUID
	SalespersonID *uuid.UUID
	PolID         *uuid.UUID
	PodID         *uuid.UUID
	CreatedAfter  *time.Time
	CreatedBefore *time.Time
	RefNo         *string
}

// RateRequestSortOption represents available sort options
type RateRequestSortOption string

const (
	RateRequestSortByCreatedDesc   RateRequestSortOption = "created_desc"
	RateRequestSortByCreatedAsc    RateRequestSortOption = "created_asc"
	RateRequestSortByCargoReadyAsc RateRequestSortOption = "cargo_ready_asc"
)

type RateRequestRepository struct {
	db *gorm.DB
}

func NewRateRequestRepository(db *gorm.DB) *RateRequestRepository {
	return &RateRequestRepository{db: db}
}

func (r *RateRequestRepository) Create(ctx context.Context, request *domain.RateRequest) error {
	// Omit associations to avoid GORM trying to validate related records
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(request).Error
}

func (r *RateRequestRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.RateRequest, error) {
	var request domain.RateRequest
	err := r.db.WithContext(ctx).
		Preload("Pol").
		Preload("Pod").
		Preload("Responses", func(db *gorm.DB) *gorm.DB {
			return db.Order("line_no ASC")
		}).
		Preload("LineQuotes", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		}).
		First(&request, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &request, nil
}

func (r *RateRequestRepository) GetByRefNo(ctx context.Context, refNo string) (*domain.RateRequest, error) {
	var request domain.RateRequest
	err := r.db.WithContext(ctx).First(&request, "ref_no = ?", refNo).Error
	if err != nil {
		return nil, err
	}
	return &request, nil
}

func (r *RateRequestRepository) Update(ctx context.Context, request *domain.RateRequest) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(request).Error
}

func (r *RateRequestRepository) List(ctx context.Context, page, pageSize int, filters *RateRequestFilters, sortBy RateRequestSortOption) ([]domain.RateRequest, int64, error) {
	var requests []domain.RateRequest
	var total int64

	query := r.db.WithContext(ctx).Model(&domain.RateRequest{}).
		Preload("Pol").
		Preload("Pod")

	query = r.applyFilters(query, filters)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = r.applySorting(query, sortBy)

	offset := (page - 1) * pageSize
	err := query.Offset(offset).Limit(pageSize).Find(&requests).Error

	return requests, total, err
}

func (r *RateRequestRepository) applyFilters(query *gorm.DB, filters *RateRequestFilters) *gorm.DB {
	if filters == nil {
		return query
	}
	if filters.Status != nil {
		query = query.Where("status = ?", *filters.Status)
	}
	if filters.Mode != nil {
		query = query.Where("mode = ?", *filters.Mode)
	}
	if filters.CustomerID != nil {
		query = query.Where("customer_id = ?", *filters.CustomerID)
	}
	if filters.SalespersonID != nil {
		query = query.Where("salesperson_id = ?", *filters.SalespersonID)
	}
	if filters.PolID != nil {
		query = query.Where("pol_id = ?", *filters.PolID)
	}
	if filters.PodID != nil {
		query = query.Where("pod_id = ?", *filters.PodID)
	}
	if filters.CreatedAfter != nil {
		query = query.Where("created_at >= ?", *filters.CreatedAfter)
	}
	if filters.CreatedBefore != nil {
		query = query.Where("created_at <= ?", *filters.CreatedBefore)
	}
	if filters.RefNo != nil {
		query = query.Where("ref_no = ?", *filters.RefNo)
	}
	return query
}

func (r *RateRequestRepository) applySorting(query *gorm.DB, sortBy RateRequestSortOption) *gorm.DB {
	switch sortBy {
	case RateRequestSortByCreatedAsc:
		return query.Order("created_at ASC")
	case RateRequestSortByCargoReadyAsc:
		return query.Order("cargo_ready_date ASC")
	default:
		return query.Order("created_at DESC")
	}
}

// CreateResponse inserts a pricing reply with the next line number for its
// request. The read and insert run in one transaction so concurrent
// replies cannot claim the same line number; the composite unique index
// backs this up at the database level.
func (r *RateRequestRepository) CreateResponse(ctx context.Context, response *domain.RateRequestResponse) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var maxLineNo int
		err := tx.Model(&domain.RateRequestResponse{}).
			Where("rate_request_id = ?", response.RateRequestID).
			Select("COALESCE(MAX(line_no), 0)").
			Scan(&maxLineNo).Error
		if err != nil {
			return err
		}
		response.LineNo = maxLineNo + 1
		return tx.Omit(clause.Associations).Create(response).Error
	})
}

func (r *RateRequestRepository) ListResponses(ctx context.Context, requestID uuid.UUID) ([]domain.RateRequestResponse, error) {
	var responses []domain.RateRequestResponse
	err := r.db.WithContext(ctx).
		Where("rate_request_id = ?", requestID).
		Order("line_no ASC").
		Find(&responses).Error
	return responses, err
}

func (r *RateRequestRepository) CreateLineQuote(ctx context.Context, quote *domain.LineQuote) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(quote).Error
}

// CreateSelectedLineQuote inserts a quote marked as selected, clearing any
// previously selected quote on the same request in the same transaction.
// The partial unique index on (rate_request_id) WHERE selected rejects
// interleaved writers.
func (r *RateRequestRepository) CreateSelectedLineQuote(ctx context.Context, quote *domain.LineQuote) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Model(&domain.LineQuote{}).
			Where("rate_request_id = ? AND selected = ?", quote.RateRequestID, true).
			Update("selected", false).Error
		if err != nil {
			return err
		}
		quote.Selected = true
		return tx.Omit(clause.Associations).Create(quote).Error
	})
}

func (r *RateRequestRepository) GetLineQuoteByID(ctx context.Context, id uuid.UUID) (*domain.LineQuote, error) {
	var quote domain.LineQuote
	err := r.db.WithContext(ctx).First(&quote, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &quote, nil
}

// GetSelectedLineQuote returns the selected quote for a request, if any
func (r *RateRequestRepository) GetSelectedLineQuote(ctx context.Context, requestID uuid.UUID) (*domain.LineQuote, error) {
	var quote domain.LineQuote
	err := r.db.WithContext(ctx).
		Where("rate_request_id = ? AND selected = ?", requestID, true).
		First(&quote).Error
	if err != nil {
		return nil, err
	}
	return &quote, nil
}
