package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/lankaline/freight-api/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CustomerFilters contains all filter options for listing customers
type CustomerFilters struct {
	ApprovalStatus *domain.CustomerApprovalStatus
	SearchQuery    *string
}

type CustomerRepository struct {
	db *gorm.DB
}

func NewCustomerRepository(db *gorm.DB) *CustomerRepository {
	return &CustomerRepository{db: db}
}

func (r *CustomerRepository) Create(ctx context.Context, customer *domain.Customer) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(customer).Error
}

func (r *CustomerRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Customer, error) {
	var customer domain.Customer
	err := r.db.WithContext(ctx).First(&customer, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &customer, nil
}

func (r *CustomerRepository) Update(ctx context.Context, customer *domain.Customer) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(customer).Error
}

func (r *CustomerRepository) List(ctx context.Context, page, pageSize int, filters *CustomerFilters) ([]domain.Customer, int64, error) {
	var customers []domain.Customer
	var total int64

	query := r.db.WithContext(ctx).Model(&domain.Customer{})

	if filters != nil {
		if filters.ApprovalStatus != nil {
			query = query.Where("approval_status = ?", *filters.ApprovalStatus)
		}
		if filters.SearchQuery != nil && *filters.SearchQuery != "" {
			search := "%" + *filters.SearchQuery + "%"
			query = query.Where("name ILIKE ? OR contact_email ILIKE ?", search, search)
		}
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.Offset(offset).Limit(pageSize).Order("name ASC").Find(&customers).Error

	return customers, total, err
}
