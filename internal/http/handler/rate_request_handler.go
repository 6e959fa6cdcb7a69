package handler

import (
	"encoding/json"
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

// RateRequestHandler handles HTTP requests for the rate request workflow
type RateRequestHandler struct {
	rateRequestService *service.RateRequestService
	logger             *zap.Logger
}

// NewRateRequestHandler creates a new RateRequestHandler instance
func NewRateRequestHandler(rateRequestService *service.RateRequestService, logger *zap.Logger) *RateRequestHandler {
	return &RateRequestHandler{
		rateRequestService: rateRequestService,
		logger:             logger,
	}
}

// Create godoc
// @Summary Create rate request
// @Description Raise a new rate request for pricing to quote
// @Tags RateRequests
// @Accept json
// @Produce json
// @Param request body domain.CreateRateRequestInput true "Rate request"
// @Success 201 {object} domain.RateRequestDTO
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Router /rate-requests [post]
func (h *RateRequestHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input domain.CreateRateRequestInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(&input); err != nil {
		respondValidationError(w, err)
		return
	}

	request, err := h.rateRequestService.Create(r.Context(), &input)
	if err != nil {
		h.logger.Warn("failed to create rate request", zap.Error(err))
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, request)
}

// List godoc
// @Summary List rate requests
// @Description Get paginated list of rate requests with optional filters
// @Tags RateRequests
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Items per page (max 200)" default(20)
// @Param status query string false "Filter by status" Enums(PENDING, PROCESSING, COMPLETED, REJECTED)
// @Param mode query string false "Filter by transport mode" Enums(SEA, AIR)
// @Param customerId query string false "Filter by customer" format(uuid)
// @Param salespersonId query string false "Filter by salesperson" format(uuid)
// @Param mine query bool false "Only the caller's own requests"
// @Param refNo query string false "Filter by reference number"
// @Param sortBy query string false "Sort order" Enums(created_desc, created_asc, cargo_ready_asc)
// @Success 200 {object} domain.PaginatedResponse{data=[]domain.RateRequestDTO}
// @Security BearerAuth
// @Router /rate-requests [get]
func (h *RateRequestHandler) List(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	pageSize, _ := strconv.Atoi(r.URL.Query().Get("pageSize"))

	filters := &repository.RateRequestFilters{}
	if v := r.URL.Query().Get("status"); v != "" {
		status := domain.RateRequestStatus(v)
		filters.Status = &status
	}
	if v := r.URL.Query().Get("mode"); v != "" {
		mode := domain.TransportMode(v)
		filters.Mode = &mode
	}
	if id, err := uuid.Parse(r.URL.Query().Get("customerId")); err == nil {
		filters.CustomerID = &id
	}
	if id, err := uuid.Parse(r.URL.Query().Get("salespersonId")); err == nil {
		filters.SalespersonID = &id
	}
	if r.URL.Query().Get("mine") == "true" {
		if userCtx, ok := auth.FromContext(r.Context()); ok {
			filters.SalespersonID = &userCtx.UserID
		}
	}
	if id, err := uuid.Parse(r.URL.Query().Get("polId")); err == nil {
		filters.PolID = &id
	}
	if id, err := uuid.Parse(r.URL.Query().Get("podId")); err == nil {
		filters.PodID = &id
	}
	if v := r.URL.Query().Get("refNo"); v != "" {
		filters.RefNo = &v
	}
	if t, err := time.Parse(time.RFC3339, r.URL.Query().Get("createdAfter")); err == nil {
		filters.CreatedAfter = &t
	}
	if t, err := time.Parse(time.RFC3339, r.URL.Query().Get("createdBefore")); err == nil {
		filters.CreatedBefore = &t
	}

	sortBy := repository.RateRequestSortOption(r.URL.Query().Get("sortBy"))

	result, err := h.rateRequestService.List(r.Context(), page, pageSize, filters, sortBy)
	if err != nil {
		h.logger.Error("failed to list rate requests", zap.Error(err))
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// GetByID godoc
// @Summary Get rate request by ID
// @Description Get a single rate request including its responses and line quotes
// @Tags RateRequests
// @Produce json
// @Param id path string true "Rate request ID" format(uuid)
// @Success 200 {object} domain.RateRequestDTO
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Router /rate-requests/{id} [get]
func (h *RateRequestHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid rate request ID format")
		return
	}

	request, err := h.rateRequestService.GetByID(r.Context(), id)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, request)
}

// Update godoc
// @Summary Update rate request
// @Description Update a rate request while it is still pending
// @Tags RateRequests
// @Accept json
// @Produce json
// @Param id path string true "Rate request ID" format(uuid)
// @Param request body domain.UpdateRateRequestInput true "Fields to update"
// @Success 200 {object} domain.RateRequestDTO
// @Failure 404 {object} domain.APIError
// @Failure 409 {object} domain.APIError
// @Security BearerAuth
// @Router /rate-requests/{id} [put]
func (h *RateRequestHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid rate request ID format")
		return
	}

	var input domain.UpdateRateRequestInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(&input); err != nil {
		respondValidationError(w, err)
		return
	}

	request, err := h.rateRequestService.Update(r.Context(), id, &input)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, request)
}

// Respond godoc
// @Summary Add pricing response
// @Description Add a pricing reply line to a rate request. The first response moves the request to PROCESSING.
// @Tags RateRequests
// @Accept json
// @Produce json
// @Param id path string true "Rate request ID" format(uuid)
// @Param request body domain.RespondInput true "Response line"
// @Success 201 {object} domain.RateRequestResponseDTO
// @Failure 404 {object} domain.APIError
// @Failure 409 {object} domain.APIError
// @Security BearerAuth
// @Router /rate-requests/{id}/responses [post]
func (h *RateRequestHandler) Respond(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid rate request ID format")
		return
	}

	var input domain.RespondInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(&input); err != nil {
		respondValidationError(w, err)
		return
	}

	response, err := h.rateRequestService.Respond(r.Context(), id, &input)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, response)
}

// CreateLineQuote godoc
// @Summary Add line quote
// @Description Record a finalized carrier quote against a processing rate request
// @Tags RateRequests
// @Accept json
// @Produce json
// @Param id path string true "Rate request ID" format(uuid)
// @Param request body domain.CreateLineQuoteInput true "Line quote"
// @Success 201 {object} domain.LineQuoteDTO
// @Failure 404 {object} domain.APIError
// @Failure 409 {object} domain.APIError
// @Security BearerAuth
// @Router /rate-requests/{id}/line-quotes [post]
func (h *RateRequestHandler) CreateLineQuote(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid rate request ID format")
		return
	}

	var input domain.CreateLineQuoteInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(&input); err != nil {
		respondValidationError(w, err)
		return
	}

	quote, err := h.rateRequestService.CreateLineQuote(r.Context(), id, &input)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, quote)
}

// Complete godoc
// @Summary Complete rate request
// @Description Mark a processing rate request as completed
// @Tags RateRequests
// @Produce json
// @Param id path string true "Rate request ID" format(uuid)
// @Success 200 {object} domain.RateRequestDTO
// @Failure 404 {object} domain.APIError
// @Failure 409 {object} domain.APIError
// @Security BearerAuth
// @Router /rate-requests/{id}/complete [post]
func (h *RateRequestHandler) Complete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid rate request ID format")
		return
	}

	request, err := h.rateRequestService.Complete(r.Context(), id)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, request)
}

// Reject godoc
// @Summary Reject rate request
// @Description Reject a rate request with a mandatory remark
// @Tags RateRequests
// @Accept json
// @Produce json
// @Param id path string true "Rate request ID" format(uuid)
// @Param request body domain.RejectRateRequestInput true "Rejection remark"
// @Success 200 {object} domain.RateRequestDTO
// @Failure 404 {object} domain.APIError
// @Failure 409 {object} domain.APIError
// @Security BearerAuth
// @Router /rate-requests/{id}/reject [post]
func (h *RateRequestHandler) Reject(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid rate request ID format")
		return
	}

	var input domain.RejectRateRequestInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(&input); err != nil {
		respondValidationError(w, err)
		return
	}

	request, err := h.rateRequestService.Reject(r.Context(), id, &input)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, request)
}
