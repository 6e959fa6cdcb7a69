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

// RateCatalogService manages the predefined rate catalog. Validity
// classification is always derived from the validity window at read time;
// the stored status only distinguishes ACTIVE from SUSPENDED.
type RateCatalogService struct {
	rateRepo       *repository.PredefinedRateRepository
	masterDataRepo *repository.MasterDataRepository
	userRepo       *repository.UserRepository
	dispatcher     notify.Dispatcher
	logger         *zap.Logger

	// now is swappable for tests
	now func() time.Time
}

func NewRateCatalogService(
	rateRepo *repository.PredefinedRateRepository,
	masterDataRepo *repository.MasterDataRepository,
	userRepo *repository.UserRepository,
	dispatcher notify.Dispatcher,
	logger *zap.Logger,
) *RateCatalogService {
	return &RateCatalogService{
		rateRepo:       rateRepo,
		masterDataRepo: masterDataRepo,
		userRepo:       userRepo,
		dispatcher:     dispatcher,
		logger:         logger,
		now:            time.Now,
	}
}

func (s *RateCatalogService) Create(ctx context.Context, input *domain.CreatePredefinedRateInput) (*domain.PredefinedRateDTO, error) {
	if !input.ValidTo.After(input.ValidFrom) {
		return nil, fmt.Errorf("%w: validTo must be after validFrom", ErrValidation)
	}

	if _, err := s.masterDataRepo.GetTradeLaneByID(ctx, input.TradeLaneID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTradeLaneNotFound
		}
		return nil, fmt.Errorf("failed to get trade lane: %w", err)
	}

	rate := &domain.PredefinedRate{
		TradeLaneID: input.TradeLaneID,
		PolID:       input.PolID,
		PodID:       input.PodID,
		Service:     input.Service,
		EquipTypeID: input.EquipTypeID,
		IsLcl:       input.IsLcl,
		ValidFrom:   input.ValidFrom,
		ValidTo:     input.ValidTo,
		Status:      domain.PredefinedRateActive,
		Notes:       input.Notes,
		Charges:     input.Charges,
	}

	if err := s.rateRepo.Create(ctx, rate); err != nil {
		return nil, fmt.Errorf("failed to create predefined rate: %w", err)
	}

	s.logger.Info("predefined rate created",
		zap.String("rateID", rate.ID.String()),
		zap.String("tradeLaneID", rate.TradeLaneID.String()),
		zap.Time("validTo", rate.ValidTo),
	)

	dto := mapper.ToPredefinedRateDTO(rate, s.now())
	return &dto, nil
}

func (s *RateCatalogService) GetByID(ctx context.Context, id uuid.UUID) (*domain.PredefinedRateDTO, error) {
	rate, err := s.rateRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPredefinedRateNotFound
		}
		return nil, fmt.Errorf("failed to get predefined rate: %w", err)
	}

	dto := mapper.ToPredefinedRateDTO(rate, s.now())
	return &dto, nil
}

// List returns catalog rates with derived validity. The optional validity
// filter (active/expiring/expired) is applied after classification since
// the bucket is a function of the clock, not a stored column.
func (s *RateCatalogService) List(ctx context.Context, page, pageSize int, filters *repository.PredefinedRateFilters, validity *domain.RateValidity) (*domain.PaginatedResponse, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	if pageSize > 200 {
		pageSize = 200
	}

	rates, total, err := s.rateRepo.List(ctx, page, pageSize, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list predefined rates: %w", err)
	}

	now := s.now()
	dtos := make([]domain.PredefinedRateDTO, 0, len(rates))
	for i := range rates {
		dto := mapper.ToPredefinedRateDTO(&rates[i], now)
		if validity != nil && dto.Validity != *validity {
			continue
		}
		dtos = append(dtos, dto)
	}
	if validity != nil {
		total = int64(len(dtos))
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

func (s *RateCatalogService) Update(ctx context.Context, id uuid.UUID, input *domain.UpdatePredefinedRateInput) (*domain.PredefinedRateDTO, error) {
	rate, err := s.rateRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPredefinedRateNotFound
		}
		return nil, fmt.Errorf("failed to get predefined rate: %w", err)
	}

	if input.Service != nil {
		rate.Service = *input.Service
	}
	if input.ValidFrom != nil {
		rate.ValidFrom = *input.ValidFrom
	}
	if input.ValidTo != nil {
		rate.ValidTo = *input.ValidTo
		// A refreshed validity window re-arms the expiry sweep
		rate.ExpiryNotifiedAt = nil
	}
	if input.Status != nil {
		rate.Status = domain.PredefinedRateStatus(*input.Status)
	}
	if input.Notes != nil {
		rate.Notes = *input.Notes
	}
	if input.Charges != nil {
		rate.Charges = input.Charges
	}

	if !rate.ValidTo.After(rate.ValidFrom) {
		return nil, fmt.Errorf("%w: validTo must be after validFrom", ErrValidation)
	}

	if err := s.rateRepo.Update(ctx, rate); err != nil {
		return nil, fmt.Errorf("failed to update predefined rate: %w", err)
	}

	dto := mapper.ToPredefinedRateDTO(rate, s.now())
	return &dto, nil
}

// RequestUpdate records an advisory refresh request against a rate and
// fans it out to the pricing users of the rate's trade lane. The rate
// itself is never mutated.
func (s *RateCatalogService) RequestUpdate(ctx context.Context, rateID uuid.UUID, input *domain.RequestRateUpdateInput) error {
	userCtx, ok := auth.FromContext(ctx)
	if !ok {
		return ErrUserContextRequired
	}

	rate, err := s.rateRepo.GetByID(ctx, rateID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrPredefinedRateNotFound
		}
		return fmt.Errorf("failed to get predefined rate: %w", err)
	}

	request := &domain.RateUpdateRequest{
		PredefinedRateID: rate.ID,
		Reason:           input.Reason,
		RequestedByID:    userCtx.UserID,
	}
	if err := s.rateRepo.CreateUpdateRequest(ctx, request); err != nil {
		return fmt.Errorf("failed to create rate update request: %w", err)
	}

	recipients, err := s.masterDataRepo.ListPricingAssignees(ctx, rate.TradeLaneID)
	if err != nil || len(recipients) == 0 {
		recipients, err = s.userRepo.ListActiveByRole(ctx, domain.RolePricing)
		if err != nil {
			s.logger.Warn("failed to list pricing users for rate update request", zap.Error(err))
			return nil
		}
	}

	intents := make([]notify.Intent, 0, len(recipients))
	for _, user := range recipients {
		intents = append(intents, notify.Intent{
			UserID:   user.ID,
			Type:     domain.NotificationTypeRateUpdateRequested,
			Title:    "Rate update requested",
			Message:  fmt.Sprintf("An update was requested for rate %s: %s", rate.Service, input.Reason),
			Channels: []domain.NotificationChannel{domain.ChannelSystem, domain.ChannelEmail},
			Metadata: domain.JSONMap{"predefinedRateId": rate.ID.String()},
		})
	}
	s.dispatcher.Dispatch(intents...)

	return nil
}

// SweepExpiring notifies pricing once per rate when its validity enters
// the expiring window. Called from the scheduler; returns the number of
// rates notified.
func (s *RateCatalogService) SweepExpiring(ctx context.Context) (int, error) {
	now := s.now()
	rates, err := s.rateRepo.ListExpiringUnnotified(ctx, now, now.Add(domain.ExpiringWindow))
	if err != nil {
		return 0, fmt.Errorf("failed to list expiring rates: %w", err)
	}
	if len(rates) == 0 {
		return 0, nil
	}

	pricingUsers, err := s.userRepo.ListActiveByRole(ctx, domain.RolePricing)
	if err != nil {
		return 0, fmt.Errorf("failed to list pricing users: %w", err)
	}

	notified := 0
	for i := range rates {
		rate := &rates[i]

		intents := make([]notify.Intent, 0, len(pricingUsers))
		for _, user := range pricingUsers {
			intents = append(intents, notify.Intent{
				UserID:   user.ID,
				Type:     domain.NotificationTypeRateExpiring,
				Title:    "Catalog rate expiring",
				Message:  fmt.Sprintf("Rate %s expires on %s.", rate.Service, rate.ValidTo.Format("2006-01-02")),
				Channels: []domain.NotificationChannel{domain.ChannelSystem, domain.ChannelEmail},
				Metadata: domain.JSONMap{"predefinedRateId": rate.ID.String()},
			})
		}
		s.dispatcher.Dispatch(intents...)

		if err := s.rateRepo.MarkExpiryNotified(ctx, rate.ID, now); err != nil {
			s.logger.Warn("failed to mark rate as expiry-notified",
				zap.String("rateID", rate.ID.String()),
				zap.Error(err),
			)
			continue
		}
		notified++
	}

	s.logger.Info("rate expiry sweep completed",
		zap.Int("expiring", len(rates)),
		zap.Int("notified", notified),
	)
	return notified, nil
}
