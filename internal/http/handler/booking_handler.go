package handler

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/lankaline/freight-api/internal/auth"
	"github.com/lankaline/freight-api/internal/domain"
	"github.com/lankaline/freight-api/internal/repository"
	"github.com/lankaline/freight-api/internal/service"
	"go.uber.org/zap"
)

// BookingHandler handles HTTP requests for the booking workflow
type BookingHandler struct {
	bookingService *service.BookingService
	maxUploadMB    int64
	logger         *zap.Logger
}

// NewBookingHandler creates a new BookingHandler instance
func NewBookingHandler(bookingService *service.BookingService, maxUploadMB int64, logger *zap.Logger) *BookingHandler {
	return &BookingHandler{
		bookingService: bookingService,
		maxUploadMB:    maxUploadMB,
		logger:         logger,
	}
}

// Create godoc
// @Summary Create booking request
// @Description Raise a booking against a catalog rate or a completed rate request
// @Tags Bookings
// @Accept json
// @Produce json
// @Param request body domain.CreateBookingInput true "Booking request"
// @Success 201 {object} domain.BookingRequestDTO
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Router /bookings [post]
func (h *BookingHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input domain.CreateBookingInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(&input); err != nil {
		respondValidationError(w, err)
		return
	}

	booking, err := h.bookingService.Create(r.Context(), &input)
	if err != nil {
		h.logger.Warn("failed to create booking", zap.Error(err))
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, booking)
}

// List godoc
// @Summary List booking requests
// @Tags Bookings
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Items per page (max 200)" default(20)
// @Param status query string false "Filter by status" Enums(PENDING, CONFIRMED, CANCELLED)
// @Param rateSource query string false "Filter by rate source" Enums(predefined, request)
// @Param customerId query string false "Filter by customer" format(uuid)
// @Param mine query bool false "Only the caller's own bookings"
// @Success 200 {object} domain.PaginatedResponse{data=[]domain.BookingRequestDTO}
// @Security BearerAuth
// @Router /bookings [get]
func (h *BookingHandler) List(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	pageSize, _ := strconv.Atoi(r.URL.Query().Get("pageSize"))

	filters := &repository.BookingFilters{}
	if v := r.URL.Query().Get("status"); v != "" {
		status := domain.BookingStatus(v)
		filters.Status = &status
	}
	if v := r.URL.Query().Get("rateSource"); v != "" {
		source := domain.RateSource(v)
		filters.RateSource = &source
	}
	if id, err := uuid.Parse(r.URL.Query().Get("customerId")); err == nil {
		filters.CustomerID = &id
	}
	if id, err := uuid.Parse(r.URL.Query().Get("raisedById")); err == nil {
		filters.RaisedByID = &id
	}
	if r.URL.Query().Get("mine") == "true" {
		if userCtx, ok := auth.FromContext(r.Context()); ok {
			filters.RaisedByID = &userCtx.UserID
		}
	}

	result, err := h.bookingService.List(r.Context(), page, pageSize, filters)
	if err != nil {
		h.logger.Error("failed to list bookings", zap.Error(err))
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// GetByID godoc
// @Summary Get booking request by ID
// @Tags Bookings
// @Produce json
// @Param id path string true "Booking ID" format(uuid)
// @Success 200 {object} domain.BookingRequestDTO
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Router /bookings/{id} [get]
func (h *BookingHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid booking ID format")
		return
	}

	booking, err := h.bookingService.GetByID(r.Context(), id)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, booking)
}

// Confirm godoc
// @Summary Confirm booking
// @Description Confirm a pending booking. Fails if the linked rate has expired unless overrideExpiry is set.
// @Tags Bookings
// @Accept json
// @Produce json
// @Param id path string true "Booking ID" format(uuid)
// @Param request body domain.ConfirmBookingInput false "Confirmation options"
// @Success 200 {object} domain.BookingRequestDTO
// @Failure 404 {object} domain.APIError
// @Failure 409 {object} domain.APIError
// @Security BearerAuth
// @Router /bookings/{id}/confirm [post]
func (h *BookingHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid booking ID format")
		return
	}

	var input domain.ConfirmBookingInput
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
			respondWithError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
	}

	booking, err := h.bookingService.Confirm(r.Context(), id, &input)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, booking)
}

// Cancel godoc
// @Summary Cancel booking
// @Description Cancel a booking with a mandatory reason
// @Tags Bookings
// @Accept json
// @Produce json
// @Param id path string true "Booking ID" format(uuid)
// @Param request body domain.CancelBookingInput true "Cancellation reason"
// @Success 200 {object} domain.BookingRequestDTO
// @Failure 404 {object} domain.APIError
// @Failure 409 {object} domain.APIError
// @Security BearerAuth
// @Router /bookings/{id}/cancel [post]
func (h *BookingHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid booking ID format")
		return
	}

	var input domain.CancelBookingInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(&input); err != nil {
		respondValidationError(w, err)
		return
	}

	booking, err := h.bookingService.Cancel(r.Context(), id, &input)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, booking)
}

// AddRODocument godoc
// @Summary Attach release order document
// @Description Attach an RO document to a confirmed booking. Accepts multipart form data with fields number, receivedAt (RFC 3339) and an optional file.
// @Tags Bookings
// @Accept multipart/form-data
// @Produce json
// @Param id path string true "Booking ID" format(uuid)
// @Param number formData string true "RO number"
// @Param receivedAt formData string true "When the RO was received"
// @Param file formData file false "Scanned document"
// @Success 201 {object} domain.RODocumentDTO
// @Failure 404 {object} domain.APIError
// @Failure 409 {object} domain.APIError
// @Security BearerAuth
// @Router /bookings/{id}/ro-documents [post]
func (h *BookingHandler) AddRODocument(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid booking ID format")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadMB*1024*1024)
	if err := r.ParseMultipartForm(h.maxUploadMB * 1024 * 1024); err != nil {
		respondWithError(w, http.StatusRequestEntityTooLarge, fmt.Sprintf("File too large: maximum size is %dMB", h.maxUploadMB))
		return
	}

	receivedAt, err := time.Parse(time.RFC3339, r.FormValue("receivedAt"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "receivedAt must be an RFC 3339 timestamp")
		return
	}

	input := domain.CreateRODocumentInput{
		Number:     r.FormValue("number"),
		ReceivedAt: receivedAt,
	}
	if err := validate.Struct(&input); err != nil {
		respondValidationError(w, err)
		return
	}

	var filename string
	var file io.Reader
	if f, header, err := r.FormFile("file"); err == nil {
		defer f.Close()
		filename = header.Filename
		file = f
	}

	doc, err := h.bookingService.AddRODocument(r.Context(), id, &input, filename, file)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, doc)
}

// OpenJob godoc
// @Summary Open ERP job
// @Description Link a confirmed booking to its operational job in the ERP. Each booking can hold at most one job.
// @Tags Bookings
// @Accept json
// @Produce json
// @Param id path string true "Booking ID" format(uuid)
// @Param request body domain.OpenJobInput true "ERP job number"
// @Success 201 {object} domain.JobDTO
// @Failure 404 {object} domain.APIError
// @Failure 409 {object} domain.APIError
// @Security BearerAuth
// @Router /bookings/{id}/job [post]
func (h *BookingHandler) OpenJob(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid booking ID format")
		return
	}

	var input domain.OpenJobInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(&input); err != nil {
		respondValidationError(w, err)
		return
	}

	job, err := h.bookingService.OpenERPJob(r.Context(), id, &input)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, job)
}

// CompleteJob godoc
// @Summary Record job completion
// @Description Append a completion record to a job. Completions are append-only.
// @Tags Bookings
// @Accept json
// @Produce json
// @Param jobId path string true "Job ID" format(uuid)
// @Param request body domain.CompleteJobInput true "Completion details"
// @Success 201 {object} domain.JobCompletionDTO
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Router /jobs/{jobId}/completions [post]
func (h *BookingHandler) CompleteJob(w http.ResponseWriter, r *http.Request) {
	jobID, err := uuid.Parse(chi.URLParam(r, "jobId"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid job ID format")
		return
	}

	var input domain.CompleteJobInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	completion, err := h.bookingService.CompleteJob(r.Context(), jobID, &input)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, completion)
}
