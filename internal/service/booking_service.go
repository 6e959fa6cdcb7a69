package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lankaline/freight-api/internal/auth"
	"github.com/lankaline/freight-api/internal/domain"
	"github.com/lankaline/freight-api/internal/mapper"
	"github.com/lankaline/freight-api/internal/notify"
	"github.com/lankaline/freight-api/internal/repository"
	"github.com/lankaline/freight-api/internal/storage"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ERPVerifier checks job numbers against the finance system. A nil
// verifier (ERP disabled) skips the check.
type ERPVerifier interface {
	JobExists(ctx context.Context, erpJobNo string) (bool, error)
}

// BookingService drives the booking lifecycle from creation through
// confirmation, release order handling and the ERP job.
type BookingService struct {
	bookingRepo     *repository.BookingRepository
	rateRequestRepo *repository.RateRequestRepository
	rateRepo        *repository.PredefinedRateRepository
	customerRepo    *repository.CustomerRepository
	store           storage.Storage
	erp             ERPVerifier
	dispatcher      notify.Dispatcher
	logger          *zap.Logger
}

func NewBookingService(
	bookingRepo *repository.BookingRepository,
	rateRequestRepo *repository.RateRequestRepository,
	rateRepo *repository.PredefinedRateRepository,
	customerRepo *repository.CustomerRepository,
	store storage.Storage,
	erp ERPVerifier,
	dispatcher notify.Dispatcher,
	logger *zap.Logger,
) *BookingService {
	return &BookingService{
		bookingRepo:     bookingRepo,
		rateRequestRepo: rateRequestRepo,
		rateRepo:        rateRepo,
		customerRepo:    customerRepo,
		store:           store,
		erp:             erp,
		dispatcher:      dispatcher,
		logger:          logger,
	}
}

// Create raises a booking against either a predefined catalog rate or a
// completed rate request. For rateSource=request the link id is the rate
// request id; the selected line quote is resolved and denormalized onto
// the booking at creation time.
func (s *BookingService) Create(ctx context.Context, input *domain.CreateBookingInput) (*domain.BookingRequestDTO, error) {
	userCtx, ok := auth.FromContext(ctx)
	if !ok {
		return nil, ErrUserContextRequired
	}

	customer, err := s.customerRepo.GetByID(ctx, input.CustomerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCustomerNotFound
		}
		return nil, fmt.Errorf("failed to get customer: %w", err)
	}
	if customer.ApprovalStatus != domain.CustomerApproved {
		return nil, ErrCustomerNotApproved
	}

	booking := &domain.BookingRequest{
		RateSource: domain.RateSource(input.RateSource),
		CustomerID: input.CustomerID,
		RaisedByID: userCtx.UserID,
		Status:     domain.BookingPending,
	}

	switch domain.RateSource(input.RateSource) {
	case domain.RateSourcePredefined:
		rate, err := s.rateRepo.GetByID(ctx, input.LinkID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrPredefinedRateNotFound
			}
			return nil, fmt.Errorf("failed to get predefined rate: %w", err)
		}
		booking.PredefinedRateID = &rate.ID

	case domain.RateSourceRequest:
		request, err := s.rateRequestRepo.GetByID(ctx, input.LinkID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrRateRequestNotFound
			}
			return nil, fmt.Errorf("failed to get rate request: %w", err)
		}
		if request.Status != domain.RateRequestCompleted {
			return nil, fmt.Errorf("%w: rate request must be completed before booking", ErrValidation)
		}
		quote, err := s.rateRequestRepo.GetSelectedLineQuote(ctx, request.ID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrNoSelectedQuote
			}
			return nil, fmt.Errorf("failed to get selected line quote: %w", err)
		}
		booking.RateRequestID = &request.ID
		booking.LineQuoteID = &quote.ID

	default:
		return nil, fmt.Errorf("%w: unknown rate source", ErrValidation)
	}

	if err := s.bookingRepo.Create(ctx, booking); err != nil {
		return nil, fmt.Errorf("failed to create booking request: %w", err)
	}

	s.logger.Info("booking request created",
		zap.String("bookingID", booking.ID.String()),
		zap.String("rateSource", string(booking.RateSource)),
		zap.String("raisedByID", userCtx.UserID.String()),
	)

	dto := mapper.ToBookingRequestDTO(booking)
	return &dto, nil
}

func (s *BookingService) GetByID(ctx context.Context, id uuid.UUID) (*domain.BookingRequestDTO, error) {
	booking, err := s.bookingRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, fmt.Errorf("failed to get booking request: %w", err)
	}

	dto := mapper.ToBookingRequestDTO(booking)
	return &dto, nil
}

func (s *BookingService) List(ctx context.Context, page, pageSize int, filters *repository.BookingFilters) (*domain.PaginatedResponse, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	if pageSize > 200 {
		pageSize = 200
	}

	bookings, total, err := s.bookingRepo.List(ctx, page, pageSize, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list booking requests: %w", err)
	}

	dtos := make([]domain.BookingRequestDTO, len(bookings))
	for i := range bookings {
		dtos[i] = mapper.ToBookingRequestDTO(&bookings[i])
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

// Confirm moves a pending booking to CONFIRMED. The linked rate's
// validity deadline is checked against the clock; an expired rate refuses
// confirmation unless the caller passes the override flag.
func (s *BookingService) Confirm(ctx context.Context, id uuid.UUID, input *domain.ConfirmBookingInput) (*domain.BookingRequestDTO, error) {
	booking, err := s.bookingRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, fmt.Errorf("failed to get booking request: %w", err)
	}

	if booking.Status != domain.BookingPending {
		return nil, ErrBookingNotPending
	}

	deadline, err := s.resolveValidityDeadline(ctx, booking)
	if err != nil {
		return nil, err
	}
	if deadline.Before(time.Now()) && !input.OverrideExpiry {
		return nil, fmt.Errorf("%w, pass overrideExpiry to confirm anyway", ErrRateExpired)
	}

	now := time.Now()
	booking.Status = domain.BookingConfirmed
	booking.ConfirmedAt = &now
	if err := s.bookingRepo.Update(ctx, booking); err != nil {
		return nil, fmt.Errorf("failed to confirm booking request: %w", err)
	}

	s.logger.Info("booking request confirmed",
		zap.String("bookingID", booking.ID.String()),
		zap.Bool("overrideExpiry", input.OverrideExpiry),
	)

	s.dispatcher.Dispatch(notify.Intent{
		UserID:   booking.RaisedByID,
		Type:     domain.NotificationTypeBookingDecided,
		Title:    "Booking confirmed",
		Message:  fmt.Sprintf("Booking request %s has been confirmed.", booking.ID),
		Channels: []domain.NotificationChannel{domain.ChannelSystem, domain.ChannelEmail},
		Metadata: domain.JSONMap{"bookingId": booking.ID.String(), "status": string(booking.Status)},
	})

	dto := mapper.ToBookingRequestDTO(booking)
	return &dto, nil
}

// resolveValidityDeadline returns the validTo of whichever rate the
// booking is priced against.
func (s *BookingService) resolveValidityDeadline(ctx context.Context, booking *domain.BookingRequest) (time.Time, error) {
	switch booking.RateSource {
	case domain.RateSourcePredefined:
		if booking.PredefinedRateID == nil {
			return time.Time{}, fmt.Errorf("%w: booking has no linked predefined rate", ErrValidation)
		}
		rate, err := s.rateRepo.GetByID(ctx, *booking.PredefinedRateID)
		if err != nil {
			return time.Time{}, fmt.Errorf("failed to get predefined rate: %w", err)
		}
		return rate.ValidTo, nil
	case domain.RateSourceRequest:
		if booking.LineQuoteID == nil {
			return time.Time{}, fmt.Errorf("%w: booking has no linked line quote", ErrValidation)
		}
		quote, err := s.rateRequestRepo.GetLineQuoteByID(ctx, *booking.LineQuoteID)
		if err != nil {
			return time.Time{}, fmt.Errorf("failed to get line quote: %w", err)
		}
		return quote.ValidTo, nil
	}
	return time.Time{}, fmt.Errorf("%w: unknown rate source", ErrValidation)
}

// Cancel stores the reason and sets CANCELLED. A booking can be cancelled
// from PENDING or CONFIRMED but never twice.
func (s *BookingService) Cancel(ctx context.Context, id uuid.UUID, input *domain.CancelBookingInput) (*domain.BookingRequestDTO, error) {
	booking, err := s.bookingRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, fmt.Errorf("failed to get booking request: %w", err)
	}

	if booking.Status == domain.BookingCancelled {
		return nil, fmt.Errorf("%w: booking is already cancelled", ErrConflict)
	}

	booking.Status = domain.BookingCancelled
	booking.CancelReason = input.Reason
	if err := s.bookingRepo.Update(ctx, booking); err != nil {
		return nil, fmt.Errorf("failed to cancel booking request: %w", err)
	}

	s.logger.Info("booking request cancelled",
		zap.String("bookingID", booking.ID.String()),
	)

	s.dispatcher.Dispatch(notify.Intent{
		UserID:   booking.RaisedByID,
		Type:     domain.NotificationTypeBookingDecided,
		Title:    "Booking cancelled",
		Message:  fmt.Sprintf("Booking request %s was cancelled: %s", booking.ID, input.Reason),
		Channels: []domain.NotificationChannel{domain.ChannelSystem},
		Metadata: domain.JSONMap{"bookingId": booking.ID.String(), "status": string(booking.Status)},
	})

	dto := mapper.ToBookingRequestDTO(booking)
	return &dto, nil
}

// AddRODocument attaches a release order to a confirmed booking. When a
// file is provided it is uploaded to blob storage and its path stored on
// the document.
func (s *BookingService) AddRODocument(ctx context.Context, bookingID uuid.UUID, input *domain.CreateRODocumentInput, filename string, file io.Reader) (*domain.RODocumentDTO, error) {
	booking, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, fmt.Errorf("failed to get booking request: %w", err)
	}

	if booking.Status != domain.BookingConfirmed {
		return nil, ErrBookingNotConfirmed
	}

	doc := &domain.RODocument{
		BookingRequestID: booking.ID,
		Number:           input.Number,
		ReceivedAt:       input.ReceivedAt,
	}

	if file != nil {
		storagePath, size, err := s.store.Upload(ctx, filename, "application/octet-stream", file)
		if err != nil {
			return nil, fmt.Errorf("failed to upload RO document: %w", err)
		}
		doc.FileURL = &storagePath
		s.logger.Info("RO document file uploaded",
			zap.String("bookingID", booking.ID.String()),
			zap.String("path", storagePath),
			zap.Int64("size", size),
		)
	}

	if err := s.bookingRepo.CreateRODocument(ctx, doc); err != nil {
		return nil, fmt.Errorf("failed to create RO document: %w", err)
	}

	dto := mapper.ToRODocumentDTO(doc)
	return &dto, nil
}

// OpenERPJob opens the single ERP job for a confirmed booking. The job
// number is soft-verified against the ERP when the connection is
// configured; an unreachable ERP logs a warning and does not block.
func (s *BookingService) OpenERPJob(ctx context.Context, bookingID uuid.UUID, input *domain.OpenJobInput) (*domain.JobDTO, error) {
	userCtx, ok := auth.FromContext(ctx)
	if !ok {
		return nil, ErrUserContextRequired
	}

	booking, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, fmt.Errorf("failed to get booking request: %w", err)
	}

	if booking.Status != domain.BookingConfirmed {
		return nil, ErrBookingNotConfirmed
	}

	if _, err := s.bookingRepo.GetJobByBooking(ctx, booking.ID); err == nil {
		return nil, ErrJobAlreadyOpen
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check existing job: %w", err)
	}

	if s.erp != nil {
		exists, err := s.erp.JobExists(ctx, input.ErpJobNo)
		if err != nil {
			s.logger.Warn("ERP job verification unavailable, continuing",
				zap.String("erpJobNo", input.ErpJobNo),
				zap.Error(err),
			)
		} else if !exists {
			return nil, fmt.Errorf("%w: job number %s not found in ERP", ErrValidation, input.ErpJobNo)
		}
	}

	job := &domain.Job{
		BookingRequestID: booking.ID,
		ErpJobNo:         input.ErpJobNo,
		OpenedByID:       userCtx.UserID,
	}

	if err := s.bookingRepo.CreateJob(ctx, job); err != nil {
		// The unique index closes the race between the existence check
		// and the insert.
		if isDuplicateKeyError(err) {
			return nil, ErrJobAlreadyOpen
		}
		return nil, fmt.Errorf("failed to create job: %w", err)
	}

	s.logger.Info("ERP job opened",
		zap.String("bookingID", booking.ID.String()),
		zap.String("erpJobNo", job.ErpJobNo),
	)

	dto := mapper.ToJobDTO(job)
	return &dto, nil
}

// CompleteJob appends a completion event. Jobs may be completed any
// number of times; each completion is an independent record.
func (s *BookingService) CompleteJob(ctx context.Context, jobID uuid.UUID, input *domain.CompleteJobInput) (*domain.JobCompletionDTO, error) {
	userCtx, ok := auth.FromContext(ctx)
	if !ok {
		return nil, ErrUserContextRequired
	}

	job, err := s.bookingRepo.GetJobByID(ctx, jobID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrJobNotFound
		}
		return nil, fmt.Errorf("failed to get job: %w", err)
	}

	completion := &domain.JobCompletion{
		JobID:         job.ID,
		Details:       input.Details,
		CompletedByID: userCtx.UserID,
	}

	if err := s.bookingRepo.CreateJobCompletion(ctx, completion); err != nil {
		return nil, fmt.Errorf("failed to create job completion: %w", err)
	}

	dto := mapper.ToJobCompletionDTO(completion)
	return &dto, nil
}

// isDuplicateKeyError detects unique constraint violations across the
// postgres and sqlite drivers.
func isDuplicateKeyError(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "duplicate key") || strings.Contains(msg, "UNIQUE constraint failed")
}
