package service

import (
	"errors"
	"fmt"
)

// Base service errors. Handlers map these to HTTP statuses with errors.Is,
// so every specific error below wraps exactly one of them.
var (
	// ErrNotFound is returned when a resource is not found
	ErrNotFound = errors.New("resource not found")

	// ErrValidation is returned when input fails a domain rule
	ErrValidation = errors.New("validation failed")

	// ErrConflict is returned when a state transition or uniqueness rule is violated
	ErrConflict = errors.New("resource conflict")

	// ErrPermissionDenied is returned when the caller lacks the required role
	ErrPermissionDenied = errors.New("permission denied")

	// ErrUnauthorized is returned when the caller is not authenticated
	ErrUnauthorized = errors.New("unauthorized")

	// ErrUserContextRequired is returned when user context is not available
	ErrUserContextRequired = fmt.Errorf("%w: user context required", ErrUnauthorized)
)

// Not-found specifics
var (
	ErrRateRequestNotFound    = fmt.Errorf("%w: rate request", ErrNotFound)
	ErrLineQuoteNotFound      = fmt.Errorf("%w: line quote", ErrNotFound)
	ErrPredefinedRateNotFound = fmt.Errorf("%w: predefined rate", ErrNotFound)
	ErrBookingNotFound        = fmt.Errorf("%w: booking request", ErrNotFound)
	ErrJobNotFound            = fmt.Errorf("%w: job", ErrNotFound)
	ErrItineraryNotFound      = fmt.Errorf("%w: itinerary", ErrNotFound)
	ErrCustomerNotFound       = fmt.Errorf("%w: customer", ErrNotFound)
	ErrUserNotFound           = fmt.Errorf("%w: user", ErrNotFound)
	ErrPortNotFound           = fmt.Errorf("%w: port", ErrNotFound)
	ErrTradeLaneNotFound      = fmt.Errorf("%w: trade lane", ErrNotFound)
	ErrEquipmentTypeNotFound  = fmt.Errorf("%w: equipment type", ErrNotFound)
	ErrShippingLineNotFound   = fmt.Errorf("%w: shipping line", ErrNotFound)
	ErrNotificationNotFound   = fmt.Errorf("%w: notification", ErrNotFound)
)

// Workflow conflicts
var (
	ErrRateRequestTerminal   = fmt.Errorf("%w: rate request already decided", ErrConflict)
	ErrRateRequestNotPending = fmt.Errorf("%w: rate request is not pending", ErrConflict)
	ErrBookingNotPending     = fmt.Errorf("%w: booking request is not pending", ErrConflict)
	ErrBookingNotConfirmed   = fmt.Errorf("%w: booking request is not confirmed", ErrConflict)
	ErrJobAlreadyOpen        = fmt.Errorf("%w: booking already has a job", ErrConflict)
	ErrItineraryNotDraft     = fmt.Errorf("%w: itinerary is not in draft", ErrConflict)
	ErrItineraryNotSubmitted = fmt.Errorf("%w: itinerary is not submitted", ErrConflict)
	ErrCustomerDecided       = fmt.Errorf("%w: customer already decided", ErrConflict)
	ErrDuplicateUnlocode     = fmt.Errorf("%w: port code already exists", ErrConflict)
	ErrDuplicateLaneCode     = fmt.Errorf("%w: trade lane code already exists", ErrConflict)
	ErrDuplicateAssignment   = fmt.Errorf("%w: pricing assignment already exists", ErrConflict)
)

// Workflow validation failures
var (
	ErrReeferTempRequired   = fmt.Errorf("%w: reefer temperature is required for reefer equipment", ErrValidation)
	ErrPalletInfoRequired   = fmt.Errorf("%w: pallet count and dimensions are required for flat rack or open top equipment", ErrValidation)
	ErrVesselDetailsMissing = fmt.Errorf("%w: vessel name, eta and etd are required when a vessel is requested", ErrValidation)
	ErrNoSelectedQuote      = fmt.Errorf("%w: rate request has no selected line quote", ErrValidation)
	ErrRateExpired          = fmt.Errorf("%w: rate validity has lapsed", ErrValidation)
	ErrCustomerNotApproved  = fmt.Errorf("%w: customer is not approved", ErrValidation)
	ErrRejectNoteRequired   = fmt.Errorf("%w: a rejection note is required", ErrValidation)
)
