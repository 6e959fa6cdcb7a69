package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaginatedResponse wraps list results with pagination metadata
type PaginatedResponse struct {
	Data       any   `json:"data"`
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	PageSize   int   `json:"pageSize"`
	TotalPages int   `json:"totalPages"`
}

// UnreadCountDTO carries an unread notification count
type UnreadCountDTO struct {
	Count int `json:"count"`
}

// PortDTO is the API representation of a port
type PortDTO struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Unlocode    string    `json:"unlocode"`
	CountryCode string    `json:"countryCode"`
}

// TradeLaneDTO is the API representation of a trade lane
type TradeLaneDTO struct {
	ID              uuid.UUID `json:"id"`
	Code            string    `json:"code"`
	Name            string    `json:"name"`
	Region          string    `json:"region,omitempty"`
	OriginPort      *PortDTO  `json:"originPort,omitempty"`
	DestinationPort *PortDTO  `json:"destinationPort,omitempty"`
}

// EquipmentTypeDTO is the API representation of an equipment type
type EquipmentTypeDTO struct {
	ID                uuid.UUID `json:"id"`
	Code              string    `json:"code"`
	Name              string    `json:"name"`
	IsReefer          bool      `json:"isReefer"`
	IsFlatRackOpenTop bool      `json:"isFlatRackOpenTop"`
}

// ShippingLineDTO is the API representation of a carrier
type ShippingLineDTO struct {
	ID       uuid.UUID `json:"id"`
	ScacCode string    `json:"scacCode"`
	Name     string    `json:"name"`
}

// UserDTO is the API representation of a platform user
type UserDTO struct {
	ID          uuid.UUID  `json:"id"`
	Email       string     `json:"email"`
	DisplayName string     `json:"displayName"`
	Role        UserRole   `json:"role"`
	SbuID       *uuid.UUID `json:"sbuId,omitempty"`
	Active      bool       `json:"active"`
}

// CustomerDTO is the API representation of a customer
type CustomerDTO struct {
	ID             uuid.UUID              `json:"id"`
	Name           string                 `json:"name"`
	Address        string                 `json:"address,omitempty"`
	ContactEmail   string                 `json:"contactEmail,omitempty"`
	ContactPhone   string                 `json:"contactPhone,omitempty"`
	ApprovalStatus CustomerApprovalStatus `json:"approvalStatus"`
	ApprovalNote   string                 `json:"approvalNote,omitempty"`
	CreatedByID    uuid.UUID              `json:"createdById"`
	DecidedByID    *uuid.UUID             `json:"decidedById,omitempty"`
	DecidedAt      *time.Time             `json:"decidedAt,omitempty"`
	CreatedAt      time.Time              `json:"createdAt"`
}

// RateRequestResponseDTO is one pricing reply line
type RateRequestResponseDTO struct {
	ID                   uuid.UUID  `json:"id"`
	RateRequestID        uuid.UUID  `json:"rateRequestId"`
	LineNo               int        `json:"lineNo"`
	RequestedLineID      *uuid.UUID `json:"requestedLineId,omitempty"`
	RequestedEquipTypeID *uuid.UUID `json:"requestedEquipTypeId,omitempty"`
	VesselName           *string    `json:"vesselName,omitempty"`
	Eta                  *time.Time `json:"eta,omitempty"`
	Etd                  *time.Time `json:"etd,omitempty"`
	FclCutoff            *time.Time `json:"fclCutoff,omitempty"`
	DocCutoff            *time.Time `json:"docCutoff,omitempty"`
	ValidTo              *time.Time `json:"validTo,omitempty"`
	Charges              JSONMap    `json:"charges,omitempty"`
	ResponderID          uuid.UUID  `json:"responderId"`
	CreatedAt            time.Time  `json:"createdAt"`
}

// LineQuoteDTO is a selectable carrier quote
type LineQuoteDTO struct {
	ID            uuid.UUID  `json:"id"`
	RateRequestID uuid.UUID  `json:"rateRequestId"`
	LineID        uuid.UUID  `json:"lineId"`
	EquipTypeID   *uuid.UUID `json:"equipTypeId,omitempty"`
	Terms         JSONMap    `json:"terms,omitempty"`
	ValidTo       time.Time  `json:"validTo"`
	Selected      bool       `json:"selected"`
	QuotedByID    uuid.UUID  `json:"quotedById"`
	CreatedAt     time.Time  `json:"createdAt"`
}

// RateRequestDTO is the API representation of a rate request
type RateRequestDTO struct {
	ID                uuid.UUID                `json:"id"`
	RefNo             string                   `json:"refNo"`
	Mode              TransportMode            `json:"mode"`
	CargoType         CargoType                `json:"cargoType"`
	PolID             uuid.UUID                `json:"polId"`
	PodID             uuid.UUID                `json:"podId"`
	DeliveryMode      DeliveryMode             `json:"deliveryMode"`
	PreferredLineID   *uuid.UUID               `json:"preferredLineId,omitempty"`
	EquipTypeID       uuid.UUID                `json:"equipTypeId"`
	ReeferTemp        *string                  `json:"reeferTemp,omitempty"`
	PalletCount       *int                     `json:"palletCount,omitempty"`
	PalletDims        *string                  `json:"palletDims,omitempty"`
	HsCode            string                   `json:"hsCode,omitempty"`
	WeightTons        decimal.Decimal          `json:"weightTons"`
	Incoterm          string                   `json:"incoterm,omitempty"`
	MarketRate        *decimal.Decimal         `json:"marketRate,omitempty"`
	Instructions      string                   `json:"instructions,omitempty"`
	CargoReadyDate    time.Time                `json:"cargoReadyDate"`
	VesselRequired    bool                     `json:"vesselRequired"`
	DetentionFreeTime DetentionFreeTime        `json:"detentionFreeTime"`
	CustomerID        uuid.UUID                `json:"customerId"`
	SalespersonID     uuid.UUID                `json:"salespersonId"`
	Status            RateRequestStatus        `json:"status"`
	RejectRemark      string                   `json:"rejectRemark,omitempty"`
	Responses         []RateRequestResponseDTO `json:"responses,omitempty"`
	LineQuotes        []LineQuoteDTO           `json:"lineQuotes,omitempty"`
	CreatedAt         time.Time                `json:"createdAt"`
	UpdatedAt         time.Time                `json:"updatedAt"`
}

// PredefinedRateDTO is the API representation of a catalog rate.
// Validity is derived at read time, never stored.
type PredefinedRateDTO struct {
	ID          uuid.UUID            `json:"id"`
	TradeLaneID uuid.UUID            `json:"tradeLaneId"`
	PolID       uuid.UUID            `json:"polId"`
	PodID       uuid.UUID            `json:"podId"`
	Service     string               `json:"service"`
	EquipTypeID *uuid.UUID           `json:"equipTypeId,omitempty"`
	IsLcl       bool                 `json:"isLcl"`
	ValidFrom   time.Time            `json:"validFrom"`
	ValidTo     time.Time            `json:"validTo"`
	Status      PredefinedRateStatus `json:"status"`
	Validity    RateValidity         `json:"validity"`
	Notes       string               `json:"notes,omitempty"`
	Charges     JSONMap              `json:"charges,omitempty"`
	CreatedAt   time.Time            `json:"createdAt"`
}

// RODocumentDTO is a release order document
type RODocumentDTO struct {
	ID               uuid.UUID `json:"id"`
	BookingRequestID uuid.UUID `json:"bookingRequestId"`
	Number           string    `json:"number"`
	FileURL          *string   `json:"fileUrl,omitempty"`
	ReceivedAt       time.Time `json:"receivedAt"`
}

// JobCompletionDTO is one completion event on a job
type JobCompletionDTO struct {
	ID            uuid.UUID `json:"id"`
	JobID         uuid.UUID `json:"jobId"`
	Details       JSONMap   `json:"details,omitempty"`
	CompletedByID uuid.UUID `json:"completedById"`
	CreatedAt     time.Time `json:"createdAt"`
}

// JobDTO is the ERP job for a booking
type JobDTO struct {
	ID               uuid.UUID          `json:"id"`
	BookingRequestID uuid.UUID          `json:"bookingRequestId"`
	ErpJobNo         string             `json:"erpJobNo"`
	OpenedByID       uuid.UUID          `json:"openedById"`
	Completions      []JobCompletionDTO `json:"completions,omitempty"`
	CreatedAt        time.Time          `json:"createdAt"`
}

// BookingRequestDTO is the API representation of a booking request
type BookingRequestDTO struct {
	ID               uuid.UUID       `json:"id"`
	RateSource       RateSource      `json:"rateSource"`
	CustomerID       uuid.UUID       `json:"customerId"`
	PredefinedRateID *uuid.UUID      `json:"predefinedRateId,omitempty"`
	RateRequestID    *uuid.UUID      `json:"rateRequestId,omitempty"`
	LineQuoteID      *uuid.UUID      `json:"lineQuoteId,omitempty"`
	Status           BookingStatus   `json:"status"`
	CancelReason     string          `json:"cancelReason,omitempty"`
	RaisedByID       uuid.UUID       `json:"raisedById"`
	ConfirmedAt      *time.Time      `json:"confirmedAt,omitempty"`
	RODocuments      []RODocumentDTO `json:"roDocuments,omitempty"`
	Job              *JobDTO         `json:"job,omitempty"`
	CreatedAt        time.Time       `json:"createdAt"`
	UpdatedAt        time.Time       `json:"updatedAt"`
}

// ItineraryItemDTO is one planned visit
type ItineraryItemDTO struct {
	ID          uuid.UUID  `json:"id"`
	ItineraryID uuid.UUID  `json:"itineraryId"`
	Date        time.Time  `json:"date"`
	CustomerID  *uuid.UUID `json:"customerId,omitempty"`
	LeadRef     string     `json:"leadRef,omitempty"`
	Purpose     string     `json:"purpose"`
	PlannedTime string     `json:"plannedTime,omitempty"`
	Location    string     `json:"location,omitempty"`
	Notes       string     `json:"notes,omitempty"`
}

// ItineraryDTO is the API representation of an itinerary
type ItineraryDTO struct {
	ID           uuid.UUID          `json:"id"`
	Type         ItineraryType      `json:"type"`
	WeekStart    time.Time          `json:"weekStart"`
	OwnerID      uuid.UUID          `json:"ownerId"`
	Status       ItineraryStatus    `json:"status"`
	DecisionNote string             `json:"decisionNote,omitempty"`
	DecidedByID  *uuid.UUID         `json:"decidedById,omitempty"`
	DecidedAt    *time.Time         `json:"decidedAt,omitempty"`
	Items        []ItineraryItemDTO `json:"items,omitempty"`
	CreatedAt    time.Time          `json:"createdAt"`
}

// NotificationDTO is the API representation of a notification
type NotificationDTO struct {
	ID        uuid.UUID        `json:"id"`
	UserID    uuid.UUID        `json:"userId"`
	Type      NotificationType `json:"type"`
	Title     string           `json:"title"`
	Message   string           `json:"message"`
	Metadata  JSONMap          `json:"metadata,omitempty"`
	Read      bool             `json:"read"`
	ReadAt    *time.Time       `json:"readAt,omitempty"`
	CreatedAt time.Time        `json:"createdAt"`
}

// --- Request inputs ---

// CreateRateRequestInput is the payload for creating a rate request.
// PolID may be omitted for SEA shipments; the home port is resolved as
// the default at creation time.
type CreateRateRequestInput struct {
	Mode              string           `json:"mode" validate:"required,oneof=SEA AIR"`
	CargoType         string           `json:"cargoType" validate:"required,oneof=FCL LCL"`
	PolID             *uuid.UUID       `json:"polId"`
	PodID             uuid.UUID        `json:"podId" validate:"required"`
	DeliveryMode      string           `json:"deliveryMode" validate:"required,oneof=DOOR CY"`
	PreferredLineID   *uuid.UUID       `json:"preferredLineId"`
	EquipTypeID       uuid.UUID        `json:"equipTypeId" validate:"required"`
	ReeferTemp        *string          `json:"reeferTemp"`
	PalletCount       *int             `json:"palletCount" validate:"omitempty,gt=0"`
	PalletDims        *string          `json:"palletDims"`
	HsCode            string           `json:"hsCode" validate:"omitempty,max=20"`
	WeightTons        decimal.Decimal  `json:"weightTons" validate:"required"`
	Incoterm          string           `json:"incoterm" validate:"omitempty,max=10"`
	MarketRate        *decimal.Decimal `json:"marketRate"`
	Instructions      string           `json:"instructions" validate:"omitempty,min=10"`
	CargoReadyDate    time.Time        `json:"cargoReadyDate" validate:"required"`
	VesselRequired    bool             `json:"vesselRequired"`
	DetentionFreeTime string           `json:"detentionFreeTime" validate:"required,oneof=7 14 21 other"`
	CustomerID        uuid.UUID        `json:"customerId" validate:"required"`
}

// UpdateRateRequestInput carries the mutable fields of a pending request.
// Nil fields keep their current value.
type UpdateRateRequestInput struct {
	CargoType         *string          `json:"cargoType" validate:"omitempty,oneof=FCL LCL"`
	DeliveryMode      *string          `json:"deliveryMode" validate:"omitempty,oneof=DOOR CY"`
	PreferredLineID   *uuid.UUID       `json:"preferredLineId"`
	ReeferTemp        *string          `json:"reeferTemp"`
	PalletCount       *int             `json:"palletCount" validate:"omitempty,gt=0"`
	PalletDims        *string          `json:"palletDims"`
	HsCode            *string          `json:"hsCode" validate:"omitempty,max=20"`
	WeightTons        *decimal.Decimal `json:"weightTons"`
	Incoterm          *string          `json:"incoterm" validate:"omitempty,max=10"`
	MarketRate        *decimal.Decimal `json:"marketRate"`
	Instructions      *string          `json:"instructions" validate:"omitempty,min=10"`
	CargoReadyDate    *time.Time       `json:"cargoReadyDate"`
	VesselRequired    *bool            `json:"vesselRequired"`
	DetentionFreeTime *string          `json:"detentionFreeTime" validate:"omitempty,oneof=7 14 21 other"`
}

// RespondInput is the payload for a pricing reply line
type RespondInput struct {
	RequestedLineID      *uuid.UUID `json:"requestedLineId"`
	RequestedEquipTypeID *uuid.UUID `json:"requestedEquipTypeId"`
	VesselName           *string    `json:"vesselName"`
	Eta                  *time.Time `json:"eta"`
	Etd                  *time.Time `json:"etd"`
	FclCutoff            *time.Time `json:"fclCutoff"`
	DocCutoff            *time.Time `json:"docCutoff"`
	ValidTo              *time.Time `json:"validTo"`
	Charges              JSONMap    `json:"charges"`
}

// CreateLineQuoteInput is the payload for a finalized carrier quote
type CreateLineQuoteInput struct {
	LineID      uuid.UUID  `json:"lineId" validate:"required"`
	EquipTypeID *uuid.UUID `json:"equipTypeId"`
	Terms       JSONMap    `json:"terms"`
	ValidTo     time.Time  `json:"validTo" validate:"required"`
	Selected    bool       `json:"selected"`
}

// RejectRateRequestInput carries the mandatory rejection remark
type RejectRateRequestInput struct {
	Remark string `json:"remark" validate:"required,min=10"`
}

// CreateBookingInput links a customer to a rate. LinkID is the
// PredefinedRate id for rateSource=predefined and the RateRequest id for
// rateSource=request.
type CreateBookingInput struct {
	CustomerID uuid.UUID `json:"customerId" validate:"required"`
	RateSource string    `json:"rateSource" validate:"required,oneof=predefined request"`
	LinkID     uuid.UUID `json:"linkId" validate:"required"`
}

// ConfirmBookingInput carries the expiry override flag
type ConfirmBookingInput struct {
	OverrideExpiry bool `json:"overrideExpiry"`
}

// CancelBookingInput carries the mandatory cancellation reason
type CancelBookingInput struct {
	Reason string `json:"reason" validate:"required,min=10"`
}

// CreateRODocumentInput is the payload for attaching a release order
type CreateRODocumentInput struct {
	Number     string    `json:"number" validate:"required,max=100"`
	ReceivedAt time.Time `json:"receivedAt" validate:"required"`
}

// OpenJobInput is the payload for opening the ERP job
type OpenJobInput struct {
	ErpJobNo string `json:"erpJobNo" validate:"required,min=3,max=50"`
}

// CompleteJobInput carries the opaque completion details
type CompleteJobInput struct {
	Details JSONMap `json:"details"`
}

// ItineraryItemInput is the payload for one planned visit
type ItineraryItemInput struct {
	Date        time.Time  `json:"date" validate:"required"`
	CustomerID  *uuid.UUID `json:"customerId"`
	LeadRef     string     `json:"leadRef" validate:"omitempty,max=200"`
	Purpose     string     `json:"purpose" validate:"required,max=500"`
	PlannedTime string     `json:"plannedTime" validate:"omitempty,max=100"`
	Location    string     `json:"location" validate:"omitempty,max=500"`
	Notes       string     `json:"notes"`
}

// CreateItineraryInput is the payload for creating a weekly plan
type CreateItineraryInput struct {
	Type      string               `json:"type" validate:"required,oneof=SP CSE"`
	WeekStart time.Time            `json:"weekStart" validate:"required"`
	Items     []ItineraryItemInput `json:"items" validate:"omitempty,dive"`
}

// ItineraryDecisionInput carries the approver's note. The note is
// optional on approve and mandatory on reject.
type ItineraryDecisionInput struct {
	Note string `json:"note"`
}

// CreateCustomerInput is the payload for onboarding a customer
type CreateCustomerInput struct {
	Name         string `json:"name" validate:"required,max=200"`
	Address      string `json:"address" validate:"omitempty,max=500"`
	ContactEmail string `json:"contactEmail" validate:"omitempty,email"`
	ContactPhone string `json:"contactPhone" validate:"omitempty,max=50"`
}

// CustomerDecisionInput carries the management decision note
type CustomerDecisionInput struct {
	Note string `json:"note"`
}

// CreatePredefinedRateInput is the payload for a catalog rate
type CreatePredefinedRateInput struct {
	TradeLaneID uuid.UUID  `json:"tradeLaneId" validate:"required"`
	PolID       uuid.UUID  `json:"polId" validate:"required"`
	PodID       uuid.UUID  `json:"podId" validate:"required"`
	Service     string     `json:"service" validate:"required,max=200"`
	EquipTypeID *uuid.UUID `json:"equipTypeId"`
	IsLcl       bool       `json:"isLcl"`
	ValidFrom   time.Time  `json:"validFrom" validate:"required"`
	ValidTo     time.Time  `json:"validTo" validate:"required"`
	Notes       string     `json:"notes"`
	Charges     JSONMap    `json:"charges"`
}

// UpdatePredefinedRateInput carries the mutable fields of a catalog rate
type UpdatePredefinedRateInput struct {
	Service   *string    `json:"service" validate:"omitempty,max=200"`
	ValidFrom *time.Time `json:"validFrom"`
	ValidTo   *time.Time `json:"validTo"`
	Status    *string    `json:"status" validate:"omitempty,oneof=ACTIVE SUSPENDED"`
	Notes     *string    `json:"notes"`
	Charges   JSONMap    `json:"charges"`
}

// RequestRateUpdateInput carries the reason for refreshing a rate
type RequestRateUpdateInput struct {
	Reason string `json:"reason" validate:"required,min=10"`
}

// CreatePortInput is the payload for a master data port
type CreatePortInput struct {
	Name        string `json:"name" validate:"required,max=200"`
	Unlocode    string `json:"unlocode" validate:"required,len=5"`
	CountryCode string `json:"countryCode" validate:"required,len=2"`
}

// CreateTradeLaneInput is the payload for a trade lane
type CreateTradeLaneInput struct {
	Code              string    `json:"code" validate:"required,max=20"`
	Name              string    `json:"name" validate:"required,max=200"`
	Region            string    `json:"region" validate:"omitempty,max=100"`
	OriginPortID      uuid.UUID `json:"originPortId" validate:"required"`
	DestinationPortID uuid.UUID `json:"destinationPortId" validate:"required"`
}

// CreateEquipmentTypeInput is the payload for an equipment type
type CreateEquipmentTypeInput struct {
	Code              string `json:"code" validate:"required,max=20"`
	Name              string `json:"name" validate:"required,max=200"`
	IsReefer          bool   `json:"isReefer"`
	IsFlatRackOpenTop bool   `json:"isFlatRackOpenTop"`
}

// CreateShippingLineInput is the payload for a carrier
type CreateShippingLineInput struct {
	ScacCode string `json:"scacCode" validate:"required,max=10"`
	Name     string `json:"name" validate:"required,max=200"`
}

// AssignPricingUserInput links a pricing user to a trade lane
type AssignPricingUserInput struct {
	UserID uuid.UUID `json:"userId" validate:"required"`
}
