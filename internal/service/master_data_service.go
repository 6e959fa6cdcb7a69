package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/lankaline/freight-api/internal/domain"
	"github.com/lankaline/freight-api/internal/mapper"
	"github.com/lankaline/freight-api/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// MasterDataService manages the reference data the workflows depend on
type MasterDataService struct {
	masterDataRepo *repository.MasterDataRepository
	logger         *zap.Logger
}

func NewMasterDataService(masterDataRepo *repository.MasterDataRepository, logger *zap.Logger) *MasterDataService {
	return &MasterDataService{
		masterDataRepo: masterDataRepo,
		logger:         logger,
	}
}

func (s *MasterDataService) CreatePort(ctx context.Context, input *domain.CreatePortInput) (*domain.PortDTO, error) {
	port := &domain.Port{
		Name:        input.Name,
		Unlocode:    strings.ToUpper(input.Unlocode),
		CountryCode: strings.ToUpper(input.CountryCode),
	}
	if err := s.masterDataRepo.CreatePort(ctx, port); err != nil {
		if isDuplicateKeyError(err) {
			return nil, ErrDuplicateUnlocode
		}
		return nil, fmt.Errorf("failed to create port: %w", err)
	}

	dto := mapper.ToPortDTO(port)
	return &dto, nil
}

func (s *MasterDataService) ListPorts(ctx context.Context) ([]domain.PortDTO, error) {
	ports, err := s.masterDataRepo.ListPorts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list ports: %w", err)
	}
	dtos := make([]domain.PortDTO, len(ports))
	for i := range ports {
		dtos[i] = mapper.ToPortDTO(&ports[i])
	}
	return dtos, nil
}

func (s *MasterDataService) CreateTradeLane(ctx context.Context, input *domain.CreateTradeLaneInput) (*domain.TradeLaneDTO, error) {
	for _, portID := range []uuid.UUID{input.OriginPortID, input.DestinationPortID} {
		if _, err := s.masterDataRepo.GetPortByID(ctx, portID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrPortNotFound
			}
			return nil, fmt.Errorf("failed to get port: %w", err)
		}
	}

	lane := &domain.TradeLane{
		Code:              strings.ToUpper(input.Code),
		Name:              input.Name,
		Region:            input.Region,
		OriginPortID:      input.OriginPortID,
		DestinationPortID: input.DestinationPortID,
	}
	if err := s.masterDataRepo.CreateTradeLane(ctx, lane); err != nil {
		if isDuplicateKeyError(err) {
			return nil, ErrDuplicateLaneCode
		}
		return nil, fmt.Errorf("failed to create trade lane: %w", err)
	}

	dto := mapper.ToTradeLaneDTO(lane)
	return &dto, nil
}

func (s *MasterDataService) ListTradeLanes(ctx context.Context, region string) ([]domain.TradeLaneDTO, error) {
	lanes, err := s.masterDataRepo.ListTradeLanes(ctx, region)
	if err != nil {
		return nil, fmt.Errorf("failed to list trade lanes: %w", err)
	}
	dtos := make([]domain.TradeLaneDTO, len(lanes))
	for i := range lanes {
		dtos[i] = mapper.ToTradeLaneDTO(&lanes[i])
	}
	return dtos, nil
}

func (s *MasterDataService) CreateEquipmentType(ctx context.Context, input *domain.CreateEquipmentTypeInput) (*domain.EquipmentTypeDTO, error) {
	equip := &domain.EquipmentType{
		Code:              strings.ToUpper(input.Code),
		Name:              input.Name,
		IsReefer:          input.IsReefer,
		IsFlatRackOpenTop: input.IsFlatRackOpenTop,
	}
	if err := s.masterDataRepo.CreateEquipmentType(ctx, equip); err != nil {
		if isDuplicateKeyError(err) {
			return nil, fmt.Errorf("%w: equipment code already exists", ErrConflict)
		}
		return nil, fmt.Errorf("failed to create equipment type: %w", err)
	}

	dto := mapper.ToEquipmentTypeDTO(equip)
	return &dto, nil
}

func (s *MasterDataService) ListEquipmentTypes(ctx context.Context) ([]domain.EquipmentTypeDTO, error) {
	equips, err := s.masterDataRepo.ListEquipmentTypes(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list equipment types: %w", err)
	}
	dtos := make([]domain.EquipmentTypeDTO, len(equips))
	for i := range equips {
		dtos[i] = mapper.ToEquipmentTypeDTO(&equips[i])
	}
	return dtos, nil
}

func (s *MasterDataService) CreateShippingLine(ctx context.Context, input *domain.CreateShippingLineInput) (*domain.ShippingLineDTO, error) {
	line := &domain.ShippingLine{
		ScacCode: strings.ToUpper(input.ScacCode),
		Name:     input.Name,
	}
	if err := s.masterDataRepo.CreateShippingLine(ctx, line); err != nil {
		if isDuplicateKeyError(err) {
			return nil, fmt.Errorf("%w: SCAC code already exists", ErrConflict)
		}
		return nil, fmt.Errorf("failed to create shipping line: %w", err)
	}

	dto := mapper.ToShippingLineDTO(line)
	return &dto, nil
}

func (s *MasterDataService) ListShippingLines(ctx context.Context) ([]domain.ShippingLineDTO, error) {
	lines, err := s.masterDataRepo.ListShippingLines(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list shipping lines: %w", err)
	}
	dtos := make([]domain.ShippingLineDTO, len(lines))
	for i := range lines {
		dtos[i] = mapper.ToShippingLineDTO(&lines[i])
	}
	return dtos, nil
}

// ListPricingUsers returns the pricing users assigned to a trade lane
func (s *MasterDataService) ListPricingUsers(ctx context.Context, tradeLaneID uuid.UUID) ([]domain.UserDTO, error) {
	if _, err := s.masterDataRepo.GetTradeLaneByID(ctx, tradeLaneID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTradeLaneNotFound
		}
		return nil, fmt.Errorf("failed to get trade lane: %w", err)
	}

	users, err := s.masterDataRepo.ListPricingAssignees(ctx, tradeLaneID)
	if err != nil {
		return nil, fmt.Errorf("failed to list pricing assignees: %w", err)
	}
	dtos := make([]domain.UserDTO, len(users))
	for i := range users {
		dtos[i] = mapper.ToUserDTO(&users[i])
	}
	return dtos, nil
}

// AssignPricingUser makes a pricing user responsible for a trade lane
func (s *MasterDataService) AssignPricingUser(ctx context.Context, tradeLaneID, userID uuid.UUID) error {
	if _, err := s.masterDataRepo.GetTradeLaneByID(ctx, tradeLaneID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTradeLaneNotFound
		}
		return fmt.Errorf("failed to get trade lane: %w", err)
	}

	assignment := &domain.PricingTeamAssignment{
		TradeLaneID: tradeLaneID,
		UserID:      userID,
	}
	if err := s.masterDataRepo.CreatePricingAssignment(ctx, assignment); err != nil {
		if isDuplicateKeyError(err) {
			return ErrDuplicateAssignment
		}
		return fmt.Errorf("failed to create pricing assignment: %w", err)
	}

	s.logger.Info("pricing user assigned to trade lane",
		zap.String("tradeLaneID", tradeLaneID.String()),
		zap.String("userID", userID.String()),
	)
	return nil
}
