package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Base model with common fields
type BaseModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// BeforeCreate assigns the primary key in the application so the same
// models work against Postgres and the in-memory test database.
func (m *BaseModel) BeforeCreate(_ *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

// HomePortUnlocode is the UN/LOCODE of the default port of loading for
// sea shipments (Colombo).
const HomePortUnlocode = "LKCMB"

// Port represents a sea or air port in the master data
type Port struct {
	BaseModel
	Name        string `gorm:"type:varchar(200);not null"`
	Unlocode    string `gorm:"type:varchar(10);not null;uniqueIndex"`
	CountryCode string `gorm:"type:varchar(2);not null;column:country_code"`
}

// TradeLane represents a serviced origin/destination port pair
type TradeLane struct {
	BaseModel
	Code              string    `gorm:"type:varchar(20);not null;uniqueIndex"`
	Name              string    `gorm:"type:varchar(200);not null"`
	Region            string    `gorm:"type:varchar(100);index"`
	OriginPortID      uuid.UUID `gorm:"type:uuid;not null;column:origin_port_id;index"`
	OriginPort        *Port     `gorm:"foreignKey:OriginPortID"`
	DestinationPortID uuid.UUID `gorm:"type:uuid;not null;column:destination_port_id;index"`
	DestinationPort   *Port     `gorm:"foreignKey:DestinationPortID"`
}

// EquipmentType represents a container/equipment category. The capability
// flags drive conditional validation in the rate request workflow.
type EquipmentType struct {
	BaseModel
	Code              string `gorm:"type:varchar(20);not null;uniqueIndex"`
	Name              string `gorm:"type:varchar(200);not null"`
	IsReefer          bool   `gorm:"not null;default:false;column:is_reefer"`
	IsFlatRackOpenTop bool   `gorm:"not null;default:false;column:is_flat_rack_open_top"`
}

// ShippingLine represents an ocean carrier
type ShippingLine struct {
	BaseModel
	ScacCode string `gorm:"type:varchar(10);not null;uniqueIndex;column:scac_code"`
	Name     string `gorm:"type:varchar(200);not null"`
}

// SBU represents a strategic business unit. The head user approves
// itineraries submitted by the unit's members.
type SBU struct {
	BaseModel
	Code       string     `gorm:"type:varchar(20);not null;uniqueIndex"`
	Name       string     `gorm:"type:varchar(200);not null"`
	HeadUserID *uuid.UUID `gorm:"type:uuid;column:head_user_id"`
}

// TableName overrides the default pluralization for SBU
func (SBU) TableName() string {
	return "sbus"
}

// UserRole represents a user's functional role
type UserRole string

const (
	RoleAdmin   UserRole = "ADMIN"
	RoleSBUHead UserRole = "SBU_HEAD"
	RoleSales   UserRole = "SALES"
	RoleCSE     UserRole = "CSE"
	RolePricing UserRole = "PRICING"
	RoleMgmt    UserRole = "MGMT"
)

// IsValid checks if the role is a known value
func (r UserRole) IsValid() bool {
	switch r {
	case RoleAdmin, RoleSBUHead, RoleSales, RoleCSE, RolePricing, RoleMgmt:
		return true
	}
	return false
}

// User represents an internal platform user
type User struct {
	BaseModel
	Email       string     `gorm:"type:varchar(255);not null;uniqueIndex"`
	DisplayName string     `gorm:"type:varchar(200);not null;column:display_name"`
	Phone       string     `gorm:"type:varchar(50)"`
	Role        UserRole   `gorm:"type:varchar(20);not null;index"`
	SbuID       *uuid.UUID `gorm:"type:uuid;column:sbu_id;index"`
	Sbu         *SBU       `gorm:"foreignKey:SbuID"`
	Active      bool       `gorm:"not null;default:true"`
}

// PricingTeamAssignment routes rate request notifications: each row makes
// a pricing user responsible for one trade lane.
type PricingTeamAssignment struct {
	BaseModel
	TradeLaneID uuid.UUID  `gorm:"type:uuid;not null;column:trade_lane_id;uniqueIndex:idx_pricing_lane_user"`
	TradeLane   *TradeLane `gorm:"foreignKey:TradeLaneID"`
	UserID      uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_pricing_lane_user"`
	User        *User      `gorm:"foreignKey:UserID"`
}

// CustomerApprovalStatus represents the onboarding state of a customer
type CustomerApprovalStatus string

const (
	CustomerPending  CustomerApprovalStatus = "PENDING"
	CustomerApproved CustomerApprovalStatus = "APPROVED"
	CustomerRejected CustomerApprovalStatus = "REJECTED"
)

// IsValid checks if the approval status is a known value
func (s CustomerApprovalStatus) IsValid() bool {
	switch s {
	case CustomerPending, CustomerApproved, CustomerRejected:
		return true
	}
	return false
}

// Customer represents a freight customer. New customers enter PENDING and
// must be approved by management before bookings can reference them.
type Customer struct {
	BaseModel
	Name           string                 `gorm:"type:varchar(200);not null;index"`
	Address        string                 `gorm:"type:varchar(500)"`
	ContactEmail   string                 `gorm:"type:varchar(255);column:contact_email"`
	ContactPhone   string                 `gorm:"type:varchar(50);column:contact_phone"`
	ApprovalStatus CustomerApprovalStatus `gorm:"type:varchar(20);not null;default:'PENDING';column:approval_status;index"`
	ApprovalNote   string                 `gorm:"type:text;column:approval_note"`
	CreatedByID    uuid.UUID              `gorm:"type:uuid;not null;column:created_by_id"`
	DecidedByID    *uuid.UUID             `gorm:"type:uuid;column:decided_by_id"`
	DecidedAt      *time.Time             `gorm:"column:decided_at"`
}

// NotificationType classifies notifications for filtering in the UI
type NotificationType string

const (
	NotificationTypeRateRequestCreated  NotificationType = "rate_request_created"
	NotificationTypeRateRequestResponse NotificationType = "rate_request_response"
	NotificationTypeRateRequestDecided  NotificationType = "rate_request_decided"
	NotificationTypeRateUpdateRequested NotificationType = "rate_update_requested"
	NotificationTypeRateExpiring        NotificationType = "rate_expiring"
	NotificationTypeBookingDecided      NotificationType = "booking_decided"
	NotificationTypeItinerarySubmitted  NotificationType = "itinerary_submitted"
	NotificationTypeItineraryDecided    NotificationType = "itinerary_decided"
	NotificationTypeCustomerDecided     NotificationType = "customer_decided"
)

// IsValid checks if the notification type is a known value
func (t NotificationType) IsValid() bool {
	switch t {
	case NotificationTypeRateRequestCreated, NotificationTypeRateRequestResponse,
		NotificationTypeRateRequestDecided, NotificationTypeRateUpdateRequested,
		NotificationTypeRateExpiring, NotificationTypeBookingDecided,
		NotificationTypeItinerarySubmitted, NotificationTypeItineraryDecided,
		NotificationTypeCustomerDecided:
		return true
	}
	return false
}

// NotificationChannel is a delivery channel for an intent
type NotificationChannel string

const (
	ChannelSystem NotificationChannel = "SYSTEM"
	ChannelEmail  NotificationChannel = "EMAIL"
	ChannelSMS    NotificationChannel = "SMS"
)

// Notification represents an in-app (SYSTEM channel) notification
type Notification struct {
	BaseModel
	UserID   uuid.UUID        `gorm:"type:uuid;not null;index"`
	Type     NotificationType `gorm:"type:varchar(50);not null;index"`
	Title    string           `gorm:"type:varchar(255);not null"`
	Message  string           `gorm:"type:text;not null"`
	Metadata JSONMap          `gorm:"type:jsonb"`
	Read     bool             `gorm:"not null;default:false;index"`
	ReadAt   *time.Time       `gorm:"column:read_at"`
}
