package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lankaline/freight-api/internal/auth"
	"github.com/lankaline/freight-api/internal/domain"
	"github.com/lankaline/freight-api/internal/mapper"
	"github.com/lankaline/freight-api/internal/notify"
	"github.com/lankaline/freight-api/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// CustomerService handles customer onboarding. New customers enter
// PENDING and must be approved by management before workflows may
// reference them.
type CustomerService struct {
	customerRepo *repository.CustomerRepository
	dispatcher   notify.Dispatcher
	logger       *zap.Logger
}

func NewCustomerService(
	customerRepo *repository.CustomerRepository,
	dispatcher notify.Dispatcher,
	logger *zap.Logger,
) *CustomerService {
	return &CustomerService{
		customerRepo: customerRepo,
		dispatcher:   dispatcher,
		logger:       logger,
	}
}

func (s *CustomerService) Create(ctx context.Context, input *domain.CreateCustomerInput) (*domain.CustomerDTO, error) {
	userCtx, ok := auth.FromContext(ctx)
	if !ok {
		return nil, ErrUserContextRequired
	}

	customer := &domain.Customer{
		Name:           input.Name,
		Address:        input.Address,
		ContactEmail:   input.ContactEmail,
		ContactPhone:   input.ContactPhone,
		ApprovalStatus: domain.CustomerPending,
		CreatedByID:    userCtx.UserID,
	}

	if err := s.customerRepo.Create(ctx, customer); err != nil {
		return nil, fmt.Errorf("failed to create customer: %w", err)
	}

	s.logger.Info("customer created",
		zap.String("customerID", customer.ID.String()),
		zap.String("createdByID", userCtx.UserID.String()),
	)

	dto := mapper.ToCustomerDTO(customer)
	return &dto, nil
}

func (s *CustomerService) GetByID(ctx context.Context, id uuid.UUID) (*domain.CustomerDTO, error) {
	customer, err := s.customerRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCustomerNotFound
		}
		return nil, fmt.Errorf("failed to get customer: %w", err)
	}

	dto := mapper.ToCustomerDTO(customer)
	return &dto, nil
}

func (s *CustomerService) List(ctx context.Context, page, pageSize int, filters *repository.CustomerFilters) (*domain.PaginatedResponse, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	if pageSize > 200 {
		pageSize = 200
	}

	customers, total, err := s.customerRepo.List(ctx, page, pageSize, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list customers: %w", err)
	}

	dtos := make([]domain.CustomerDTO, len(customers))
	for i := range customers {
		dtos[i] = mapper.ToCustomerDTO(&customers[i])
	}

	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))
	return &domain.PaginatedResponse{
		Data:       dtos,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	}, nil
}

// Approve clears a pending customer for use in bookings
func (s *CustomerService) Approve(ctx context.Context, id uuid.UUID, input *domain.CustomerDecisionInput) (*domain.CustomerDTO, error) {
	return s.decide(ctx, id, domain.CustomerApproved, input.Note)
}

// Reject turns down a pending customer. A note is required so sales
// knows what to fix.
func (s *CustomerService) Reject(ctx context.Context, id uuid.UUID, input *domain.CustomerDecisionInput) (*domain.CustomerDTO, error) {
	if len(input.Note) < 10 {
		return nil, fmt.Errorf("%w: a rejection note of at least 10 characters is required", ErrValidation)
	}
	return s.decide(ctx, id, domain.CustomerRejected, input.Note)
}

func (s *CustomerService) decide(ctx context.Context, id uuid.UUID, status domain.CustomerApprovalStatus, note string) (*domain.CustomerDTO, error) {
	userCtx, ok := auth.FromContext(ctx)
	if !ok {
		return nil, ErrUserContextRequired
	}
	if !userCtx.CanDecideCustomers() {
		return nil, fmt.Errorf("%w: customer decisions require management", ErrPermissionDenied)
	}

	customer, err := s.customerRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCustomerNotFound
		}
		return nil, fmt.Errorf("failed to get customer: %w", err)
	}

	if customer.ApprovalStatus != domain.CustomerPending {
		return nil, ErrCustomerDecided
	}

	now := time.Now()
	customer.ApprovalStatus = status
	customer.ApprovalNote = note
	customer.DecidedByID = &userCtx.UserID
	customer.DecidedAt = &now
	if err := s.customerRepo.Update(ctx, customer); err != nil {
		return nil, fmt.Errorf("failed to decide customer: %w", err)
	}

	s.logger.Info("customer decided",
		zap.String("customerID", customer.ID.String()),
		zap.String("status", string(status)),
		zap.String("decidedByID", userCtx.UserID.String()),
	)

	s.dispatcher.Dispatch(notify.Intent{
		UserID:   customer.CreatedByID,
		Type:     domain.NotificationTypeCustomerDecided,
		Title:    fmt.Sprintf("Customer %s", status),
		Message:  fmt.Sprintf("Customer %s was %s.", customer.Name, status),
		Channels: []domain.NotificationChannel{domain.ChannelSystem},
		Metadata: domain.JSONMap{"customerId": customer.ID.String(), "status": string(status)},
	})

	dto := mapper.ToCustomerDTO(customer)
	return &dto, nil
}
