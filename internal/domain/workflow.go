package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransportMode represents the mode of transport for a rate request
type TransportMode string

const (
	ModeSea TransportMode = "SEA"
	ModeAir TransportMode = "AIR"
)

// IsValid checks if the transport mode is a known value
func (m TransportMode) IsValid() bool {
	return m == ModeSea || m == ModeAir
}

// CargoType represents container utilization
type CargoType string

const (
	CargoFCL CargoType = "FCL"
	CargoLCL CargoType = "LCL"
)

// IsValid checks if the cargo type is a known value
func (c CargoType) IsValid() bool {
	return c == CargoFCL || c == CargoLCL
}

// DeliveryMode represents where the carrier hands over the cargo
type DeliveryMode string

const (
	DeliveryDoor DeliveryMode = "DOOR"
	DeliveryCY   DeliveryMode = "CY"
)

// IsValid checks if the delivery mode is a known value
func (d DeliveryMode) IsValid() bool {
	return d == DeliveryDoor || d == DeliveryCY
}

// DetentionFreeTime represents contractual free days before demurrage
type DetentionFreeTime string

const (
	DetentionSeven     DetentionFreeTime = "7"
	DetentionFourteen  DetentionFreeTime = "14"
	DetentionTwentyOne DetentionFreeTime = "21"
	DetentionOther     DetentionFreeTime = "other"
)

// IsValid checks if the detention free time is a known value
func (d DetentionFreeTime) IsValid() bool {
	switch d {
	case DetentionSeven, DetentionFourteen, DetentionTwentyOne, DetentionOther:
		return true
	}
	return false
}

// RateRequestStatus represents the lifecycle state of a rate request
type RateRequestStatus string

const (
	RateRequestPending    RateRequestStatus = "PENDING"
	RateRequestProcessing RateRequestStatus = "PROCESSING"
	RateRequestCompleted  RateRequestStatus = "COMPLETED"
	RateRequestRejected   RateRequestStatus = "REJECTED"
)

// IsValid checks if the status is a known value
func (s RateRequestStatus) IsValid() bool {
	switch s {
	case RateRequestPending, RateRequestProcessing, RateRequestCompleted, RateRequestRejected:
		return true
	}
	return false
}

// IsTerminal reports whether no further workflow actions are permitted
func (s RateRequestStatus) IsTerminal() bool {
	return s == RateRequestCompleted || s == RateRequestRejected
}

// RateRequest represents a quote solicitation raised by sales towards the
// pricing team of a trade lane.
type RateRequest struct {
	BaseModel
	RefNo             string            `gorm:"type:varchar(20);not null;uniqueIndex;column:ref_no"`
	Mode              TransportMode     `gorm:"type:varchar(10);not null"`
	CargoType         CargoType         `gorm:"type:varchar(10);not null;column:cargo_type"`
	PolID             uuid.UUID         `gorm:"type:uuid;not null;column:pol_id"`
	Pol               *Port             `gorm:"foreignKey:PolID"`
	PodID             uuid.UUID         `gorm:"type:uuid;not null;column:pod_id"`
	Pod               *Port             `gorm:"foreignKey:PodID"`
	DeliveryMode      DeliveryMode      `gorm:"type:varchar(10);not null;column:delivery_mode"`
	PreferredLineID   *uuid.UUID        `gorm:"type:uuid;column:preferred_line_id"`
	PreferredLine     *ShippingLine     `gorm:"foreignKey:PreferredLineID"`
	EquipTypeID       uuid.UUID         `gorm:"type:uuid;not null;column:equip_type_id"`
	EquipType         *EquipmentType    `gorm:"foreignKey:EquipTypeID"`
	ReeferTemp        *string           `gorm:"type:varchar(20);column:reefer_temp"`
	PalletCount       *int              `gorm:"column:pallet_count"`
	PalletDims        *string           `gorm:"type:varchar(100);column:pallet_dims"`
	HsCode            string            `gorm:"type:varchar(20);column:hs_code"`
	WeightTons        decimal.Decimal   `gorm:"type:numeric(12,3);not null;column:weight_tons"`
	Incoterm          string            `gorm:"type:varchar(10)"`
	MarketRate        *decimal.Decimal  `gorm:"type:numeric(14,2);column:market_rate"`
	Instructions      string            `gorm:"type:text"`
	CargoReadyDate    time.Time         `gorm:"not null;column:cargo_ready_date"`
	VesselRequired    bool              `gorm:"not null;default:false;column:vessel_required"`
	DetentionFreeTime DetentionFreeTime `gorm:"type:varchar(10);not null;column:detention_free_time"`
	CustomerID        uuid.UUID         `gorm:"type:uuid;not null;index"`
	Customer          *Customer         `gorm:"foreignKey:CustomerID"`
	SalespersonID     uuid.UUID         `gorm:"type:uuid;not null;column:salesperson_id;index"`
	Status            RateRequestStatus `gorm:"type:varchar(20);not null;default:'PENDING';index"`
	RejectRemark      string            `gorm:"type:text;column:reject_remark"`
	Responses         []RateRequestResponse `gorm:"foreignKey:RateRequestID;constraint:OnDelete:CASCADE"`
	LineQuotes        []LineQuote           `gorm:"foreignKey:RateRequestID;constraint:OnDelete:CASCADE"`
}

// RateRequestResponse represents one pricing reply line within a request.
// Line numbers start at 1 and increase monotonically per request.
type RateRequestResponse struct {
	BaseModel
	RateRequestID        uuid.UUID      `gorm:"type:uuid;not null;column:rate_request_id;uniqueIndex:idx_response_line_no"`
	LineNo               int            `gorm:"not null;column:line_no;uniqueIndex:idx_response_line_no"`
	RequestedLineID      *uuid.UUID     `gorm:"type:uuid;column:requested_line_id"`
	RequestedLine        *ShippingLine  `gorm:"foreignKey:RequestedLineID"`
	RequestedEquipTypeID *uuid.UUID     `gorm:"type:uuid;column:requested_equip_type_id"`
	RequestedEquipType   *EquipmentType `gorm:"foreignKey:RequestedEquipTypeID"`
	VesselName           *string        `gorm:"type:varchar(200);column:vessel_name"`
	Eta                  *time.Time
	Etd                  *time.Time
	FclCutoff            *time.Time `gorm:"column:fcl_cutoff"`
	DocCutoff            *time.Time `gorm:"column:doc_cutoff"`
	ValidTo              *time.Time `gorm:"column:valid_to"`
	Charges              JSONMap    `gorm:"type:jsonb"`
	ResponderID          uuid.UUID  `gorm:"type:uuid;not null;column:responder_id"`
}

// LineQuote represents a finalized, selectable carrier quote for a
// request. At most one quote per request may be selected at a time.
type LineQuote struct {
	BaseModel
	RateRequestID uuid.UUID      `gorm:"type:uuid;not null;column:rate_request_id;index"`
	LineID        uuid.UUID      `gorm:"type:uuid;not null;column:line_id"`
	Line          *ShippingLine  `gorm:"foreignKey:LineID"`
	EquipTypeID   *uuid.UUID     `gorm:"type:uuid;column:equip_type_id"`
	EquipType     *EquipmentType `gorm:"foreignKey:EquipTypeID"`
	Terms         JSONMap        `gorm:"type:jsonb"`
	ValidTo       time.Time      `gorm:"not null;column:valid_to"`
	Selected      bool           `gorm:"not null;default:false"`
	QuotedByID    uuid.UUID      `gorm:"type:uuid;not null;column:quoted_by_id"`
}

// PredefinedRateStatus represents the stored lifecycle state of a catalog
// rate. Validity classification (active/expiring/expired) is derived from
// the validity window at read time and never stored.
type PredefinedRateStatus string

const (
	PredefinedRateActive    PredefinedRateStatus = "ACTIVE"
	PredefinedRateSuspended PredefinedRateStatus = "SUSPENDED"
)

// IsValid checks if the status is a known value
func (s PredefinedRateStatus) IsValid() bool {
	return s == PredefinedRateActive || s == PredefinedRateSuspended
}

// RateValidity is the derived classification of a predefined rate
type RateValidity string

const (
	RateValidityActive   RateValidity = "active"
	RateValidityExpiring RateValidity = "expiring"
	RateValidityExpired  RateValidity = "expired"
)

// ExpiringWindow is how close to validTo a rate counts as expiring
const ExpiringWindow = 7 * 24 * time.Hour

// ClassifyValidity computes the validity bucket for a validTo deadline
// relative to now. Pure function of wall-clock time; recomputed per read.
func ClassifyValidity(validTo, now time.Time) RateValidity {
	switch {
	case validTo.Before(now):
		return RateValidityExpired
	case !validTo.After(now.Add(ExpiringWindow)):
		return RateValidityExpiring
	default:
		return RateValidityActive
	}
}

// PredefinedRate represents a standing pre-negotiated catalog rate
type PredefinedRate struct {
	BaseModel
	TradeLaneID      uuid.UUID            `gorm:"type:uuid;not null;column:trade_lane_id;index"`
	TradeLane        *TradeLane           `gorm:"foreignKey:TradeLaneID"`
	PolID            uuid.UUID            `gorm:"type:uuid;not null;column:pol_id"`
	Pol              *Port                `gorm:"foreignKey:PolID"`
	PodID            uuid.UUID            `gorm:"type:uuid;not null;column:pod_id"`
	Pod              *Port                `gorm:"foreignKey:PodID"`
	Service          string               `gorm:"type:varchar(200);not null"`
	EquipTypeID      *uuid.UUID           `gorm:"type:uuid;column:equip_type_id"`
	EquipType        *EquipmentType       `gorm:"foreignKey:EquipTypeID"`
	IsLcl            bool                 `gorm:"not null;default:false;column:is_lcl"`
	ValidFrom        time.Time            `gorm:"not null;column:valid_from"`
	ValidTo          time.Time            `gorm:"not null;column:valid_to;index"`
	Status           PredefinedRateStatus `gorm:"type:varchar(20);not null;default:'ACTIVE'"`
	Notes            string               `gorm:"type:text"`
	Charges          JSONMap              `gorm:"type:jsonb"`
	ExpiryNotifiedAt *time.Time           `gorm:"column:expiry_notified_at"`
}

// RateUpdateRequest is an advisory request to refresh an expired rate.
// It fans out notifications and never mutates the rate itself.
type RateUpdateRequest struct {
	BaseModel
	PredefinedRateID uuid.UUID       `gorm:"type:uuid;not null;column:predefined_rate_id;index"`
	PredefinedRate   *PredefinedRate `gorm:"foreignKey:PredefinedRateID"`
	Reason           string          `gorm:"type:text;not null"`
	RequestedByID    uuid.UUID       `gorm:"type:uuid;not null;column:requested_by_id"`
}

// RateSource discriminates what a booking is priced against
type RateSource string

const (
	RateSourcePredefined RateSource = "predefined"
	RateSourceRequest    RateSource = "request"
)

// IsValid checks if the rate source is a known value
func (r RateSource) IsValid() bool {
	return r == RateSourcePredefined || r == RateSourceRequest
}

// BookingStatus represents the lifecycle state of a booking request
type BookingStatus string

const (
	BookingPending   BookingStatus = "PENDING"
	BookingConfirmed BookingStatus = "CONFIRMED"
	BookingCancelled BookingStatus = "CANCELLED"
)

// IsValid checks if the status is a known value
func (s BookingStatus) IsValid() bool {
	switch s {
	case BookingPending, BookingConfirmed, BookingCancelled:
		return true
	}
	return false
}

// BookingRequest links a customer to either a predefined rate or a
// completed rate request's selected line quote.
type BookingRequest struct {
	BaseModel
	RateSource       RateSource      `gorm:"type:varchar(20);not null;column:rate_source"`
	CustomerID       uuid.UUID       `gorm:"type:uuid;not null;index"`
	Customer         *Customer       `gorm:"foreignKey:CustomerID"`
	PredefinedRateID *uuid.UUID      `gorm:"type:uuid;column:predefined_rate_id"`
	PredefinedRate   *PredefinedRate `gorm:"foreignKey:PredefinedRateID"`
	RateRequestID    *uuid.UUID      `gorm:"type:uuid;column:rate_request_id"`
	RateRequest      *RateRequest    `gorm:"foreignKey:RateRequestID"`
	LineQuoteID      *uuid.UUID      `gorm:"type:uuid;column:line_quote_id"`
	LineQuote        *LineQuote      `gorm:"foreignKey:LineQuoteID"`
	Status           BookingStatus   `gorm:"type:varchar(20);not null;default:'PENDING';index"`
	CancelReason     string          `gorm:"type:text;column:cancel_reason"`
	RaisedByID       uuid.UUID       `gorm:"type:uuid;not null;column:raised_by_id;index"`
	ConfirmedAt      *time.Time      `gorm:"column:confirmed_at"`
	RODocuments      []RODocument    `gorm:"foreignKey:BookingRequestID;constraint:OnDelete:CASCADE"`
	Job              *Job            `gorm:"foreignKey:BookingRequestID"`
}

// RODocument is a release order document attached to a confirmed booking
type RODocument struct {
	BaseModel
	BookingRequestID uuid.UUID `gorm:"type:uuid;not null;column:booking_request_id;index"`
	Number           string    `gorm:"type:varchar(100);not null"`
	FileURL          *string   `gorm:"type:varchar(1000);column:file_url"`
	ReceivedAt       time.Time `gorm:"not null;column:received_at"`
}

// TableName overrides the default pluralization for RODocument
func (RODocument) TableName() string {
	return "ro_documents"
}

// Job is the ERP job opened for a confirmed booking. The unique index on
// booking_request_id enforces at most one job per booking at the storage
// layer; an optimistic check-then-insert alone would race.
type Job struct {
	BaseModel
	BookingRequestID uuid.UUID       `gorm:"type:uuid;not null;column:booking_request_id;uniqueIndex"`
	ErpJobNo         string          `gorm:"type:varchar(50);not null;column:erp_job_no"`
	OpenedByID       uuid.UUID       `gorm:"type:uuid;not null;column:opened_by_id"`
	Completions      []JobCompletion `gorm:"foreignKey:JobID;constraint:OnDelete:CASCADE"`
}

// JobCompletion is an append-only completion event on a job. A job may be
// completed any number of times.
type JobCompletion struct {
	BaseModel
	JobID         uuid.UUID `gorm:"type:uuid;not null;column:job_id;index"`
	Details       JSONMap   `gorm:"type:jsonb"`
	CompletedByID uuid.UUID `gorm:"type:uuid;not null;column:completed_by_id"`
}

// ItineraryType distinguishes salesperson and CSE weekly plans
type ItineraryType string

const (
	ItinerarySP  ItineraryType = "SP"
	ItineraryCSE ItineraryType = "CSE"
)

// IsValid checks if the itinerary type is a known value
func (t ItineraryType) IsValid() bool {
	return t == ItinerarySP || t == ItineraryCSE
}

// ItineraryStatus represents the approval state of an itinerary
type ItineraryStatus string

const (
	ItineraryDraft     ItineraryStatus = "DRAFT"
	ItinerarySubmitted ItineraryStatus = "SUBMITTED"
	ItineraryApproved  ItineraryStatus = "APPROVED"
	ItineraryRejected  ItineraryStatus = "REJECTED"
)

// IsValid checks if the status is a known value
func (s ItineraryStatus) IsValid() bool {
	switch s {
	case ItineraryDraft, ItinerarySubmitted, ItineraryApproved, ItineraryRejected:
		return true
	}
	return false
}

// Itinerary represents a weekly visit plan requiring SBU head approval
type Itinerary struct {
	BaseModel
	Type         ItineraryType   `gorm:"type:varchar(10);not null"`
	WeekStart    time.Time       `gorm:"not null;column:week_start;index"`
	OwnerID      uuid.UUID       `gorm:"type:uuid;not null;column:owner_id;index"`
	Owner        *User           `gorm:"foreignKey:OwnerID"`
	Status       ItineraryStatus `gorm:"type:varchar(20);not null;default:'DRAFT';index"`
	DecisionNote string          `gorm:"type:text;column:decision_note"`
	DecidedByID  *uuid.UUID      `gorm:"type:uuid;column:decided_by_id"`
	DecidedAt    *time.Time      `gorm:"column:decided_at"`
	Items        []ItineraryItem `gorm:"foreignKey:ItineraryID;constraint:OnDelete:CASCADE"`
}

// ItineraryItem is one planned visit within an itinerary
type ItineraryItem struct {
	BaseModel
	ItineraryID uuid.UUID  `gorm:"type:uuid;not null;column:itinerary_id;index"`
	Date        time.Time  `gorm:"not null"`
	CustomerID  *uuid.UUID `gorm:"type:uuid;column:customer_id"`
	Customer    *Customer  `gorm:"foreignKey:CustomerID"`
	LeadRef     string     `gorm:"type:varchar(200);column:lead_ref"`
	Purpose     string     `gorm:"type:varchar(500);not null"`
	PlannedTime string     `gorm:"type:varchar(100);column:planned_time"`
	Location    string     `gorm:"type:varchar(500)"`
	Notes       string     `gorm:"type:text"`
}
