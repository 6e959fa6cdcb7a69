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

// ItineraryService drives the weekly plan approval workflow
type ItineraryService struct {
	itineraryRepo *repository.ItineraryRepository
	userRepo      *repository.UserRepository
	dispatcher    notify.Dispatcher
	logger        *zap.Logger
}

func NewItineraryService(
	itineraryRepo *repository.ItineraryRepository,
	userRepo *repository.UserRepository,
	dispatcher notify.Dispatcher,
	logger *zap.Logger,
) *ItineraryService {
	return &ItineraryService{
		itineraryRepo: itineraryRepo,
		userRepo:      userRepo,
		dispatcher:    dispatcher,
		logger:        logger,
	}
}

// Create starts a draft itinerary owned by the caller
func (s *ItineraryService) Create(ctx context.Context, input *domain.CreateItineraryInput) (*domain.ItineraryDTO, error) {
	userCtx, ok := auth.FromContext(ctx)
	if !ok {
		return nil, ErrUserContextRequired
	}

	itinerary := &domain.Itinerary{
		Type:      domain.ItineraryType(input.Type),
		WeekStart: input.WeekStart,
		OwnerID:   userCtx.UserID,
		Status:    domain.ItineraryDraft,
	}
	for _, item := range input.Items {
		itinerary.Items = append(itinerary.Items, domain.ItineraryItem{
			Date:        item.Date,
			CustomerID:  item.CustomerID,
			LeadRef:     item.LeadRef,
			Purpose:     item.Purpose,
			PlannedTime: item.PlannedTime,
			Location:    item.Location,
			Notes:       item.Notes,
		})
	}

	if err := s.itineraryRepo.Create(ctx, itinerary); err != nil {
		return nil, fmt.Errorf("failed to create itinerary: %w", err)
	}

	s.logger.Info("itinerary created",
		zap.String("itineraryID", itinerary.ID.String()),
		zap.String("ownerID", userCtx.UserID.String()),
		zap.Int("items", len(itinerary.Items)),
	)

	dto := mapper.ToItineraryDTO(itinerary)
	return &dto, nil
}

func (s *ItineraryService) GetByID(ctx context.Context, id uuid.UUID) (*domain.ItineraryDTO, error) {
	itinerary, err := s.itineraryRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrItineraryNotFound
		}
		return nil, fmt.Errorf("failed to get itinerary: %w", err)
	}

	dto := mapper.ToItineraryDTO(itinerary)
	return &dto, nil
}

func (s *ItineraryService) List(ctx context.Context, page, pageSize int, filters *repository.ItineraryFilters) (*domain.PaginatedResponse, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	if pageSize > 200 {
		pageSize = 200
	}

	itineraries, total, err := s.itineraryRepo.List(ctx, page, pageSize, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list itineraries: %w", err)
	}

	dtos := make([]domain.ItineraryDTO, len(itineraries))
	for i := range itineraries {
		dtos[i] = mapper.ToItineraryDTO(&itineraries[i])
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

// Submit hands a draft itinerary to the owner's SBU head for decision.
// Only the owner may submit.
func (s *ItineraryService) Submit(ctx context.Context, id uuid.UUID) (*domain.ItineraryDTO, error) {
	userCtx, ok := auth.FromContext(ctx)
	if !ok {
		return nil, ErrUserContextRequired
	}

	itinerary, err := s.itineraryRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrItineraryNotFound
		}
		return nil, fmt.Errorf("failed to get itinerary: %w", err)
	}

	if itinerary.OwnerID != userCtx.UserID {
		return nil, fmt.Errorf("%w: only the owner may submit an itinerary", ErrPermissionDenied)
	}
	if itinerary.Status != domain.ItineraryDraft {
		return nil, ErrItineraryNotDraft
	}

	itinerary.Status = domain.ItinerarySubmitted
	if err := s.itineraryRepo.Update(ctx, itinerary); err != nil {
		return nil, fmt.Errorf("failed to submit itinerary: %w", err)
	}

	s.notifyApprover(ctx, itinerary)

	dto := mapper.ToItineraryDTO(itinerary)
	return &dto, nil
}

// notifyApprover alerts the head of the owner's SBU that a plan awaits
// decision. Missing SBU wiring is logged, never fatal.
func (s *ItineraryService) notifyApprover(ctx context.Context, itinerary *domain.Itinerary) {
	owner, err := s.userRepo.GetByID(ctx, itinerary.OwnerID)
	if err != nil {
		s.logger.Warn("failed to load itinerary owner for notification", zap.Error(err))
		return
	}
	if owner.SbuID == nil {
		s.logger.Warn("itinerary owner has no SBU, skipping approver notification",
			zap.String("ownerID", owner.ID.String()),
		)
		return
	}
	head, err := s.userRepo.GetSbuHead(ctx, *owner.SbuID)
	if err != nil {
		s.logger.Warn("failed to resolve SBU head for notification", zap.Error(err))
		return
	}

	s.dispatcher.Dispatch(notify.Intent{
		UserID:   head.ID,
		Type:     domain.NotificationTypeItinerarySubmitted,
		Title:    "Itinerary awaiting approval",
		Message:  fmt.Sprintf("%s submitted a weekly itinerary for approval.", owner.DisplayName),
		Channels: []domain.NotificationChannel{domain.ChannelSystem, domain.ChannelEmail},
		Metadata: domain.JSONMap{"itineraryId": itinerary.ID.String()},
	})
}

// Approve decides a submitted itinerary in the owner's favor. The note is
// optional on approval.
func (s *ItineraryService) Approve(ctx context.Context, id uuid.UUID, input *domain.ItineraryDecisionInput) (*domain.ItineraryDTO, error) {
	return s.decide(ctx, id, domain.ItineraryApproved, input.Note)
}

// Reject turns down a submitted itinerary. A note is required.
func (s *ItineraryService) Reject(ctx context.Context, id uuid.UUID, input *domain.ItineraryDecisionInput) (*domain.ItineraryDTO, error) {
	if input.Note == "" {
		return nil, ErrRejectNoteRequired
	}
	return s.decide(ctx, id, domain.ItineraryRejected, input.Note)
}

func (s *ItineraryService) decide(ctx context.Context, id uuid.UUID, status domain.ItineraryStatus, note string) (*domain.ItineraryDTO, error) {
	userCtx, ok := auth.FromContext(ctx)
	if !ok {
		return nil, ErrUserContextRequired
	}

	itinerary, err := s.itineraryRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrItineraryNotFound
		}
		return nil, fmt.Errorf("failed to get itinerary: %w", err)
	}

	if itinerary.Status != domain.ItinerarySubmitted {
		return nil, ErrItineraryNotSubmitted
	}
	if err := s.checkApprover(ctx, userCtx, itinerary); err != nil {
		return nil, err
	}

	now := time.Now()
	itinerary.Status = status
	itinerary.DecisionNote = note
	itinerary.DecidedByID = &userCtx.UserID
	itinerary.DecidedAt = &now
	if err := s.itineraryRepo.Update(ctx, itinerary); err != nil {
		return nil, fmt.Errorf("failed to decide itinerary: %w", err)
	}

	s.logger.Info("itinerary decided",
		zap.String("itineraryID", itinerary.ID.String()),
		zap.String("status", string(status)),
		zap.String("decidedByID", userCtx.UserID.String()),
	)

	s.dispatcher.Dispatch(notify.Intent{
		UserID:   itinerary.OwnerID,
		Type:     domain.NotificationTypeItineraryDecided,
		Title:    fmt.Sprintf("Itinerary %s", status),
		Message:  fmt.Sprintf("Your weekly itinerary was %s.", status),
		Channels: []domain.NotificationChannel{domain.ChannelSystem},
		Metadata: domain.JSONMap{"itineraryId": itinerary.ID.String(), "status": string(status)},
	})

	dto := mapper.ToItineraryDTO(itinerary)
	return &dto, nil
}

// checkApprover permits admins and the head of the owner's SBU
func (s *ItineraryService) checkApprover(ctx context.Context, userCtx *auth.UserContext, itinerary *domain.Itinerary) error {
	if userCtx.IsAdmin() {
		return nil
	}
	if !userCtx.CanDecideItineraries() {
		return fmt.Errorf("%w: itinerary decisions require an SBU head", ErrPermissionDenied)
	}

	owner, err := s.userRepo.GetByID(ctx, itinerary.OwnerID)
	if err != nil {
		return fmt.Errorf("failed to load itinerary owner: %w", err)
	}
	if owner.SbuID == nil {
		return fmt.Errorf("%w: itinerary owner has no SBU", ErrPermissionDenied)
	}
	head, err := s.userRepo.GetSbuHead(ctx, *owner.SbuID)
	if err != nil {
		return fmt.Errorf("%w: owner's SBU has no head", ErrPermissionDenied)
	}
	if head.ID != userCtx.UserID {
		return fmt.Errorf("%w: only the owner's SBU head may decide", ErrPermissionDenied)
	}
	return nil
}

// AddItem appends a planned visit. Items are mutable only while the
// itinerary is in DRAFT.
func (s *ItineraryService) AddItem(ctx context.Context, itineraryID uuid.UUID, input *domain.ItineraryItemInput) (*domain.ItineraryItemDTO, error) {
	itinerary, err := s.getDraft(ctx, itineraryID)
	if err != nil {
		return nil, err
	}

	item := &domain.ItineraryItem{
		ItineraryID: itinerary.ID,
		Date:        input.Date,
		CustomerID:  input.CustomerID,
		LeadRef:     input.LeadRef,
		Purpose:     input.Purpose,
		PlannedTime: input.PlannedTime,
		Location:    input.Location,
		Notes:       input.Notes,
	}
	if err := s.itineraryRepo.CreateItem(ctx, item); err != nil {
		return nil, fmt.Errorf("failed to create itinerary item: %w", err)
	}

	dto := mapper.ToItineraryItemDTO(item)
	return &dto, nil
}

// UpdateItem edits a planned visit on a draft itinerary
func (s *ItineraryService) UpdateItem(ctx context.Context, itineraryID, itemID uuid.UUID, input *domain.ItineraryItemInput) (*domain.ItineraryItemDTO, error) {
	itinerary, err := s.getDraft(ctx, itineraryID)
	if err != nil {
		return nil, err
	}

	item, err := s.itineraryRepo.GetItemByID(ctx, itemID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: itinerary item", ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get itinerary item: %w", err)
	}
	if item.ItineraryID != itinerary.ID {
		return nil, fmt.Errorf("%w: itinerary item", ErrNotFound)
	}

	item.Date = input.Date
	item.CustomerID = input.CustomerID
	item.LeadRef = input.LeadRef
	item.Purpose = input.Purpose
	item.PlannedTime = input.PlannedTime
	item.Location = input.Location
	item.Notes = input.Notes
	if err := s.itineraryRepo.UpdateItem(ctx, item); err != nil {
		return nil, fmt.Errorf("failed to update itinerary item: %w", err)
	}

	dto := mapper.ToItineraryItemDTO(item)
	return &dto, nil
}

// RemoveItem deletes a planned visit from a draft itinerary
func (s *ItineraryService) RemoveItem(ctx context.Context, itineraryID, itemID uuid.UUID) error {
	itinerary, err := s.getDraft(ctx, itineraryID)
	if err != nil {
		return err
	}

	item, err := s.itineraryRepo.GetItemByID(ctx, itemID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: itinerary item", ErrNotFound)
		}
		return fmt.Errorf("failed to get itinerary item: %w", err)
	}
	if item.ItineraryID != itinerary.ID {
		return fmt.Errorf("%w: itinerary item", ErrNotFound)
	}

	return s.itineraryRepo.DeleteItem(ctx, itemID)
}

func (s *ItineraryService) getDraft(ctx context.Context, id uuid.UUID) (*domain.Itinerary, error) {
	itinerary, err := s.itineraryRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrItineraryNotFound
		}
		return nil, fmt.Errorf("failed to get itinerary: %w", err)
	}
	if itinerary.Status != domain.ItineraryDraft {
		return nil, ErrItineraryNotDraft
	}
	return itinerary, nil
}
