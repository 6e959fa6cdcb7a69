package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/lankaline/freight-api/internal/auth"
	"github.com/lankaline/freight-api/internal/domain"
	"github.com/lankaline/freight-api/internal/mapper"
	"github.com/lankaline/freight-api/internal/notify"
	"github.com/lankaline/freight-api/internal/repository"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// minWeightTons is the smallest billable shipment weight (one kilogram)
var minWeightTons = decimal.NewFromFloat(0.001)

// RateRequestService drives the quote solicitation workflow between sales
// and the pricing team.
type RateRequestService struct {
	rateRequestRepo *repository.RateRequestRepository
	masterDataRepo  *repository.MasterDataRepository
	customerRepo    *repository.CustomerRepository
	userRepo        *repository.UserRepository
	dispatcher      notify.Dispatcher
	logger          *zap.Logger
}

func NewRateRequestService(
	rateRequestRepo *repository.RateRequestRepository,
	masterDataRepo *repository.MasterDataRepository,
	customerRepo *repository.CustomerRepository,
	userRepo *repository.UserRepository,
	dispatcher notify.Dispatcher,
	logger *zap.Logger,
) *RateRequestService {
	return &RateRequestService{
		rateRequestRepo: rateRequestRepo,
		masterDataRepo:  masterDataRepo,
		customerRepo:    customerRepo,
		userRepo:        userRepo,
		dispatcher:      dispatcher,
		logger:          logger,
	}
}

// Create raises a new rate request on behalf of the authenticated
// salesperson. A sea request without an explicit origin port is resolved
// to the home port before persisting, never left empty.
func (s *RateRequestService) Create(ctx context.Context, input *domain.CreateRateRequestInput) (*domain.RateRequestDTO, error) {
	userCtx, ok := auth.FromContext(ctx)
	if !ok {
		return nil, ErrUserContextRequired
	}

	if input.WeightTons.LessThan(minWeightTons) {
		return nil, fmt.Errorf("%w: weight must be at least 0.001 tons", ErrValidation)
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

	polID, err := s.resolveOriginPort(ctx, input)
	if err != nil {
		return nil, err
	}

	if _, err := s.masterDataRepo.GetPortByID(ctx, input.PodID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: destination port", ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get destination port: %w", err)
	}

	equip, err := s.masterDataRepo.GetEquipmentTypeByID(ctx, input.EquipTypeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEquipmentTypeNotFound
		}
		return nil, fmt.Errorf("failed to get equipment type: %w", err)
	}

	if equip.IsReefer && (input.ReeferTemp == nil || *input.ReeferTemp == "") {
		return nil, ErrReeferTempRequired
	}
	if equip.IsFlatRackOpenTop {
		if input.PalletCount == nil || input.PalletDims == nil || *input.PalletDims == "" {
			return nil, ErrPalletInfoRequired
		}
	}

	request := &domain.RateRequest{
		RefNo:             generateRefNo(),
		Mode:              domain.TransportMode(input.Mode),
		CargoType:         domain.CargoType(input.CargoType),
		PolID:             polID,
		PodID:             input.PodID,
		DeliveryMode:      domain.DeliveryMode(input.DeliveryMode),
		PreferredLineID:   input.PreferredLineID,
		EquipTypeID:       input.EquipTypeID,
		ReeferTemp:        input.ReeferTemp,
		PalletCount:       input.PalletCount,
		PalletDims:        input.PalletDims,
		HsCode:            input.HsCode,
		WeightTons:        input.WeightTons,
		Incoterm:          input.Incoterm,
		MarketRate:        input.MarketRate,
		Instructions:      input.Instructions,
		CargoReadyDate:    input.CargoReadyDate,
		VesselRequired:    input.VesselRequired,
		DetentionFreeTime: domain.DetentionFreeTime(input.DetentionFreeTime),
		CustomerID:        input.CustomerID,
		SalespersonID:     userCtx.UserID,
		Status:            domain.RateRequestPending,
	}

	if err := s.rateRequestRepo.Create(ctx, request); err != nil {
		return nil, fmt.Errorf("failed to create rate request: %w", err)
	}

	s.logger.Info("rate request created",
		zap.String("rateRequestID", request.ID.String()),
		zap.String("refNo", request.RefNo),
		zap.String("salespersonID", userCtx.UserID.String()),
	)

	s.notifyPricingTeam(ctx, request)

	dto := mapper.ToRateRequestDTO(request)
	return &dto, nil
}

// resolveOriginPort applies the home port default for sea shipments
func (s *RateRequestService) resolveOriginPort(ctx context.Context, input *domain.CreateRateRequestInput) (uuid.UUID, error) {
	if input.PolID != nil {
		if _, err := s.masterDataRepo.GetPortByID(ctx, *input.PolID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return uuid.Nil, fmt.Errorf("%w: origin port", ErrNotFound)
			}
			return uuid.Nil, fmt.Errorf("failed to get origin port: %w", err)
		}
		return *input.PolID, nil
	}

	if domain.TransportMode(input.Mode) != domain.ModeSea {
		return uuid.Nil, fmt.Errorf("%w: origin port is required for air shipments", ErrValidation)
	}

	home, err := s.masterDataRepo.GetPortByUnlocode(ctx, domain.HomePortUnlocode)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return uuid.Nil, fmt.Errorf("%w: home port %s is not configured", ErrValidation, domain.HomePortUnlocode)
		}
		return uuid.Nil, fmt.Errorf("failed to resolve home port: %w", err)
	}
	return home.ID, nil
}

// notifyPricingTeam fans the new request out to the pricing users assigned
// to the request's trade lane, falling back to every active pricing user
// when the lane has no assignees. Notification failures never fail the
// request.
func (s *RateRequestService) notifyPricingTeam(ctx context.Context, request *domain.RateRequest) {
	var recipients []domain.User

	lane, err := s.masterDataRepo.FindTradeLaneForPorts(ctx, request.PolID, request.PodID)
	if err == nil {
		recipients, err = s.masterDataRepo.ListPricingAssignees(ctx, lane.ID)
		if err != nil {
			s.logger.Warn("failed to list pricing assignees", zap.Error(err))
		}
	}

	if len(recipients) == 0 {
		recipients, err = s.userRepo.ListActiveByRole(ctx, domain.RolePricing)
		if err != nil {
			s.logger.Warn("failed to list pricing users for notification", zap.Error(err))
			return
		}
	}

	intents := make([]notify.Intent, 0, len(recipients))
	for _, user := range recipients {
		intents = append(intents, notify.Intent{
			UserID:   user.ID,
			Type:     domain.NotificationTypeRateRequestCreated,
			Title:    "New rate request " + request.RefNo,
			Message:  fmt.Sprintf("Rate request %s is awaiting pricing.", request.RefNo),
			Channels: []domain.NotificationChannel{domain.ChannelSystem, domain.ChannelEmail},
			Metadata: domain.JSONMap{"rateRequestId": request.ID.String(), "refNo": request.RefNo},
		})
	}
	s.dispatcher.Dispatch(intents...)
}

func (s *RateRequestService) GetByID(ctx context.Context, id uuid.UUID) (*domain.RateRequestDTO, error) {
	request, err := s.rateRequestRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRateRequestNotFound
		}
		return nil, fmt.Errorf("failed to get rate request: %w", err)
	}

	dto := mapper.ToRateRequestDTO(request)
	return &dto, nil
}

func (s *RateRequestService) List(ctx context.Context, page, pageSize int, filters *repository.RateRequestFilters, sortBy repository.RateRequestSortOption) (*domain.PaginatedResponse, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	if pageSize > 200 {
		pageSize = 200
	}

	requests, total, err := s.rateRequestRepo.List(ctx, page, pageSize, filters, sortBy)
	if err != nil {
		return nil, fmt.Errorf("failed to list rate requests: %w", err)
	}

	dtos := make([]domain.RateRequestDTO, len(requests))
	for i := range requests {
		dtos[i] = mapper.ToRateRequestDTO(&requests[i])
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

// Update edits the request body. Only permitted while PENDING; once
// pricing has started working the request is frozen.
func (s *RateRequestService) Update(ctx context.Context, id uuid.UUID, input *domain.UpdateRateRequestInput) (*domain.RateRequestDTO, error) {
	request, err := s.rateRequestRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRateRequestNotFound
		}
		return nil, fmt.Errorf("failed to get rate request: %w", err)
	}

	if request.Status != domain.RateRequestPending {
		return nil, ErrRateRequestNotPending
	}

	if input.CargoType != nil {
		request.CargoType = domain.CargoType(*input.CargoType)
	}
	if input.DeliveryMode != nil {
		request.DeliveryMode = domain.DeliveryMode(*input.DeliveryMode)
	}
	if input.PreferredLineID != nil {
		request.PreferredLineID = input.PreferredLineID
	}
	if input.ReeferTemp != nil {
		request.ReeferTemp = input.ReeferTemp
	}
	if input.PalletCount != nil {
		request.PalletCount = input.PalletCount
	}
	if input.PalletDims != nil {
		request.PalletDims = input.PalletDims
	}
	if input.HsCode != nil {
		request.HsCode = *input.HsCode
	}
	if input.WeightTons != nil {
		if input.WeightTons.LessThan(minWeightTons) {
			return nil, fmt.Errorf("%w: weight must be at least 0.001 tons", ErrValidation)
		}
		request.WeightTons = *input.WeightTons
	}
	if input.Incoterm != nil {
		request.Incoterm = *input.Incoterm
	}
	if input.MarketRate != nil {
		request.MarketRate = input.MarketRate
	}
	if input.Instructions != nil {
		request.Instructions = *input.Instructions
	}
	if input.CargoReadyDate != nil {
		request.CargoReadyDate = *input.CargoReadyDate
	}
	if input.VesselRequired != nil {
		request.VesselRequired = *input.VesselRequired
	}
	if input.DetentionFreeTime != nil {
		request.DetentionFreeTime = domain.DetentionFreeTime(*input.DetentionFreeTime)
	}

	if err := s.rateRequestRepo.Update(ctx, request); err != nil {
		return nil, fmt.Errorf("failed to update rate request: %w", err)
	}

	dto := mapper.ToRateRequestDTO(request)
	return &dto, nil
}

// Respond records one pricing reply line and moves the request to
// PROCESSING if it was still PENDING. Repeated responses are allowed and
// keep the request PROCESSING.
func (s *RateRequestService) Respond(ctx context.Context, requestID uuid.UUID, input *domain.RespondInput) (*domain.RateRequestResponseDTO, error) {
	userCtx, ok := auth.FromContext(ctx)
	if !ok {
		return nil, ErrUserContextRequired
	}

	request, err := s.rateRequestRepo.GetByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRateRequestNotFound
		}
		return nil, fmt.Errorf("failed to get rate request: %w", err)
	}

	if request.Status.IsTerminal() {
		return nil, ErrRateRequestTerminal
	}

	if request.VesselRequired {
		if input.VesselName == nil || *input.VesselName == "" || input.Eta == nil || input.Etd == nil {
			return nil, ErrVesselDetailsMissing
		}
	}

	response := &domain.RateRequestResponse{
		RateRequestID:        request.ID,
		RequestedLineID:      input.RequestedLineID,
		RequestedEquipTypeID: input.RequestedEquipTypeID,
		VesselName:           input.VesselName,
		Eta:                  input.Eta,
		Etd:                  input.Etd,
		FclCutoff:            input.FclCutoff,
		DocCutoff:            input.DocCutoff,
		ValidTo:              input.ValidTo,
		Charges:              input.Charges,
		ResponderID:          userCtx.UserID,
	}

	if err := s.rateRequestRepo.CreateResponse(ctx, response); err != nil {
		return nil, fmt.Errorf("failed to create response: %w", err)
	}

	if request.Status == domain.RateRequestPending {
		request.Status = domain.RateRequestProcessing
		if err := s.rateRequestRepo.Update(ctx, request); err != nil {
			return nil, fmt.Errorf("failed to transition rate request: %w", err)
		}
	}

	s.logger.Info("rate request response recorded",
		zap.String("rateRequestID", request.ID.String()),
		zap.Int("lineNo", response.LineNo),
		zap.String("responderID", userCtx.UserID.String()),
	)

	s.dispatcher.Dispatch(notify.Intent{
		UserID:   request.SalespersonID,
		Type:     domain.NotificationTypeRateRequestResponse,
		Title:    "Pricing response on " + request.RefNo,
		Message:  fmt.Sprintf("Line %d was quoted on rate request %s.", response.LineNo, request.RefNo),
		Channels: []domain.NotificationChannel{domain.ChannelSystem},
		Metadata: domain.JSONMap{"rateRequestId": request.ID.String(), "lineNo": response.LineNo},
	})

	dto := mapper.ToRateRequestResponseDTO(response)
	return &dto, nil
}

// CreateLineQuote records a finalized carrier quote. Requires PROCESSING.
// A quote submitted as selected atomically displaces any previously
// selected quote on the request.
func (s *RateRequestService) CreateLineQuote(ctx context.Context, requestID uuid.UUID, input *domain.CreateLineQuoteInput) (*domain.LineQuoteDTO, error) {
	userCtx, ok := auth.FromContext(ctx)
	if !ok {
		return nil, ErrUserContextRequired
	}

	request, err := s.rateRequestRepo.GetByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRateRequestNotFound
		}
		return nil, fmt.Errorf("failed to get rate request: %w", err)
	}

	if request.Status != domain.RateRequestProcessing {
		return nil, fmt.Errorf("%w: line quotes require a processing rate request", ErrConflict)
	}

	if _, err := s.masterDataRepo.GetShippingLineByID(ctx, input.LineID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrShippingLineNotFound
		}
		return nil, fmt.Errorf("failed to get shipping line: %w", err)
	}

	quote := &domain.LineQuote{
		RateRequestID: request.ID,
		LineID:        input.LineID,
		EquipTypeID:   input.EquipTypeID,
		Terms:         input.Terms,
		ValidTo:       input.ValidTo,
		QuotedByID:    userCtx.UserID,
	}

	if input.Selected {
		err = s.rateRequestRepo.CreateSelectedLineQuote(ctx, quote)
	} else {
		err = s.rateRequestRepo.CreateLineQuote(ctx, quote)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create line quote: %w", err)
	}

	s.logger.Info("line quote created",
		zap.String("rateRequestID", request.ID.String()),
		zap.String("lineQuoteID", quote.ID.String()),
		zap.Bool("selected", quote.Selected),
	)

	dto := mapper.ToLineQuoteDTO(quote)
	return &dto, nil
}

// Complete closes a processing request as COMPLETED. Terminal.
func (s *RateRequestService) Complete(ctx context.Context, id uuid.UUID) (*domain.RateRequestDTO, error) {
	request, err := s.rateRequestRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRateRequestNotFound
		}
		return nil, fmt.Errorf("failed to get rate request: %w", err)
	}

	if request.Status != domain.RateRequestProcessing {
		return nil, fmt.Errorf("%w: only processing requests can be completed", ErrConflict)
	}

	request.Status = domain.RateRequestCompleted
	if err := s.rateRequestRepo.Update(ctx, request); err != nil {
		return nil, fmt.Errorf("failed to complete rate request: %w", err)
	}

	s.dispatcher.Dispatch(notify.Intent{
		UserID:   request.SalespersonID,
		Type:     domain.NotificationTypeRateRequestDecided,
		Title:    "Rate request " + request.RefNo + " completed",
		Message:  fmt.Sprintf("Rate request %s has been completed by pricing.", request.RefNo),
		Channels: []domain.NotificationChannel{domain.ChannelSystem, domain.ChannelEmail},
		Metadata: domain.JSONMap{"rateRequestId": request.ID.String(), "status": string(request.Status)},
	})

	dto := mapper.ToRateRequestDTO(request)
	return &dto, nil
}

// Reject closes a request as REJECTED with a mandatory remark. Valid from
// PENDING or PROCESSING. Terminal.
func (s *RateRequestService) Reject(ctx context.Context, id uuid.UUID, input *domain.RejectRateRequestInput) (*domain.RateRequestDTO, error) {
	request, err := s.rateRequestRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRateRequestNotFound
		}
		return nil, fmt.Errorf("failed to get rate request: %w", err)
	}

	if request.Status.IsTerminal() {
		return nil, ErrRateRequestTerminal
	}

	request.Status = domain.RateRequestRejected
	request.RejectRemark = input.Remark
	if err := s.rateRequestRepo.Update(ctx, request); err != nil {
		return nil, fmt.Errorf("failed to reject rate request: %w", err)
	}

	s.dispatcher.Dispatch(notify.Intent{
		UserID:   request.SalespersonID,
		Type:     domain.NotificationTypeRateRequestDecided,
		Title:    "Rate request " + request.RefNo + " rejected",
		Message:  fmt.Sprintf("Rate request %s was rejected: %s", request.RefNo, input.Remark),
		Channels: []domain.NotificationChannel{domain.ChannelSystem, domain.ChannelEmail},
		Metadata: domain.JSONMap{"rateRequestId": request.ID.String(), "status": string(request.Status)},
	})

	dto := mapper.ToRateRequestDTO(request)
	return &dto, nil
}

// generateRefNo builds a human-scannable reference: fixed prefix, the low
// digits of the current millisecond clock and a random 3-digit suffix.
// Effectively unique in practice; the database unique index catches the
// residual collision.
func generateRefNo() string {
	ms := time.Now().UnixMilli() % 100000000
	return fmt.Sprintf("RR%08d%03d", ms, rand.Intn(1000))
}
