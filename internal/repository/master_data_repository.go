package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/lankaline/freight-api/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// MasterDataRepository holds the reference data used by the workflows:
// ports, trade lanes, equipment types, shipping lines, SBUs and pricing
// team assignments.
type MasterDataRepository struct {
	db *gorm.DB
}

func NewMasterDataRepository(db *gorm.DB) *MasterDataRepository {
	return &MasterDataRepository{db: db}
}

func (r *MasterDataRepository) CreatePort(ctx context.Context, port *domain.Port) error {
	return r.db.WithContext(ctx).Create(port).Error
}

func (r *MasterDataRepository) GetPortByID(ctx context.Context, id uuid.UUID) (*domain.Port, error) {
	var port domain.Port
	err := r.db.WithContext(ctx).First(&port, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &port, nil
}

func (r *MasterDataRepository) GetPortByUnlocode(ctx context.Context, unlocode string) (*domain.Port, error) {
	var port domain.Port
	err := r.db.WithContext(ctx).First(&port, "unlocode = ?", unlocode).Error
	if err != nil {
		return nil, err
	}
	return &port, nil
}

func (r *MasterDataRepository) ListPorts(ctx context.Context) ([]domain.Port, error) {
	var ports []domain.Port
	err := r.db.WithContext(ctx).Order("unlocode ASC").Find(&ports).Error
	return ports, err
}

func (r *MasterDataRepository) CreateTradeLane(ctx context.Context, lane *domain.TradeLane) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(lane).Error
}

func (r *MasterDataRepository) GetTradeLaneByID(ctx context.Context, id uuid.UUID) (*domain.TradeLane, error) {
	var lane domain.TradeLane
	err := r.db.WithContext(ctx).
		Preload("OriginPort").
		Preload("DestinationPort").
		First(&lane, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &lane, nil
}

func (r *MasterDataRepository) ListTradeLanes(ctx context.Context, region string) ([]domain.TradeLane, error) {
	query := r.db.WithContext(ctx).
		Preload("OriginPort").
		Preload("DestinationPort").
		Order("code ASC")
	if region != "" {
		query = query.Where("region = ?", region)
	}

	var lanes []domain.TradeLane
	err := query.Find(&lanes).Error
	return lanes, err
}

// FindTradeLaneForPorts returns the lane covering the given port pair.
// Rate requests are routed to pricing through this lookup.
func (r *MasterDataRepository) FindTradeLaneForPorts(ctx context.Context, originPortID, destinationPortID uuid.UUID) (*domain.TradeLane, error) {
	var lane domain.TradeLane
	err := r.db.WithContext(ctx).
		Where("origin_port_id = ? AND destination_port_id = ?", originPortID, destinationPortID).
		First(&lane).Error
	if err != nil {
		return nil, err
	}
	return &lane, nil
}

func (r *MasterDataRepository) CreateEquipmentType(ctx context.Context, equip *domain.EquipmentType) error {
	return r.db.WithContext(ctx).Create(equip).Error
}

func (r *MasterDataRepository) GetEquipmentTypeByID(ctx context.Context, id uuid.UUID) (*domain.EquipmentType, error) {
	var equip domain.EquipmentType
	err := r.db.WithContext(ctx).First(&equip, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &equip, nil
}

func (r *MasterDataRepository) ListEquipmentTypes(ctx context.Context) ([]domain.EquipmentType, error) {
	var equips []domain.EquipmentType
	err := r.db.WithContext(ctx).Order("code ASC").Find(&equips).Error
	return equips, err
}

func (r *MasterDataRepository) CreateShippingLine(ctx context.Context, line *domain.ShippingLine) error {
	return r.db.WithContext(ctx).Create(line).Error
}

func (r *MasterDataRepository) GetShippingLineByID(ctx context.Context, id uuid.UUID) (*domain.ShippingLine, error) {
	var line domain.ShippingLine
	err := r.db.WithContext(ctx).First(&line, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &line, nil
}

func (r *MasterDataRepository) ListShippingLines(ctx context.Context) ([]domain.ShippingLine, error) {
	var lines []domain.ShippingLine
	err := r.db.WithContext(ctx).Order("scac_code ASC").Find(&lines).Error
	return lines, err
}

func (r *MasterDataRepository) GetSBUByID(ctx context.Context, id uuid.UUID) (*domain.SBU, error) {
	var sbu domain.SBU
	err := r.db.WithContext(ctx).First(&sbu, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &sbu, nil
}

func (r *MasterDataRepository) ListSBUs(ctx context.Context) ([]domain.SBU, error) {
	var sbus []domain.SBU
	err := r.db.WithContext(ctx).Order("code ASC").Find(&sbus).Error
	return sbus, err
}

func (r *MasterDataRepository) CreatePricingAssignment(ctx context.Context, assignment *domain.PricingTeamAssignment) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(assignment).Error
}

func (r *MasterDataRepository) DeletePricingAssignment(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&domain.PricingTeamAssignment{}, "id = ?", id).Error
}

// ListPricingAssignees returns the users assigned to price a trade lane
func (r *MasterDataRepository) ListPricingAssignees(ctx context.Context, tradeLaneID uuid.UUID) ([]domain.User, error) {
	var users []domain.User
	err := r.db.WithContext(ctx).
		Joins("JOIN pricing_team_assignments pta ON pta.user_id = users.id").
		Where("pta.trade_lane_id = ?", tradeLaneID).
		Where("users.active = ?", true).
		Find(&users).Error
	return users, err
}
