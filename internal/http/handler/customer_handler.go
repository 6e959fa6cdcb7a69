package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/lankaline/freight-api/internal/domain"
	"github.com/lankaline/freight-api/internal/repository"
	"github.com/lankaline/freight-api/internal/service"
	"go.uber.org/zap"
)

// CustomerHandler handles HTTP requests for customer onboarding
type CustomerHandler struct {
	customerService *service.CustomerService
	logger          *zap.Logger
}

// NewCustomerHandler creates a new CustomerHandler instance
func NewCustomerHandler(customerService *service.CustomerService, logger *zap.Logger) *CustomerHandler {
	return &CustomerHandler{
		customerService: customerService,
		logger:          logger,
	}
}

// Create godoc
// @Summary Create customer
// @Description Register a customer. New customers start in PENDING until management approves them.
// @Tags Customers
// @Accept json
// @Produce json
// @Param request body domain.CreateCustomerInput true "Customer"
// @Success 201 {object} domain.CustomerDTO
// @Failure 400 {object} domain.APIError
// @Security BearerAuth
// @Router /customers [post]
func (h *CustomerHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input domain.CreateCustomerInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(&input); err != nil {
		respondValidationError(w, err)
		return
	}

	customer, err := h.customerService.Create(r.Context(), &input)
	if err != nil {
		h.logger.Warn("failed to create customer", zap.Error(err))
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, customer)
}

// List godoc
// @Summary List customers
// @Tags Customers
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Items per page (max 200)" default(20)
// @Param approvalStatus query string false "Filter by approval status" Enums(PENDING, APPROVED, REJECTED)
// @Param q query string false "Search by name or contact email"
// @Success 200 {object} domain.PaginatedResponse{data=[]domain.CustomerDTO}
// @Security BearerAuth
// @Router /customers [get]
func (h *CustomerHandler) List(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	pageSize, _ := strconv.Atoi(r.URL.Query().Get("pageSize"))

	filters := &repository.CustomerFilters{}
	if v := r.URL.Query().Get("approvalStatus"); v != "" {
		status := domain.CustomerApprovalStatus(v)
		filters.ApprovalStatus = &status
	}
	if v := r.URL.Query().Get("q"); v != "" {
		filters.SearchQuery = &v
	}

	result, err := h.customerService.List(r.Context(), page, pageSize, filters)
	if err != nil {
		h.logger.Error("failed to list customers", zap.Error(err))
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// GetByID godoc
// @Summary Get customer by ID
// @Tags Customers
// @Produce json
// @Param id path string true "Customer ID" format(uuid)
// @Success 200 {object} domain.CustomerDTO
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Router /customers/{id} [get]
func (h *CustomerHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid customer ID format")
		return
	}

	customer, err := h.customerService.GetByID(r.Context(), id)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, customer)
}

// Approve godoc
// @Summary Approve customer
// @Description Approve a pending customer. Restricted to management and admins.
// @Tags Customers
// @Accept json
// @Produce json
// @Param id path string true "Customer ID" format(uuid)
// @Param request body domain.CustomerDecisionInput false "Optional note"
// @Success 200 {object} domain.CustomerDTO
// @Failure 403 {object} domain.APIError
// @Failure 409 {object} domain.APIError
// @Security BearerAuth
// @Router /customers/{id}/approve [post]
func (h *CustomerHandler) Approve(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid customer ID format")
		return
	}

	var input domain.CustomerDecisionInput
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
			respondWithError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
	}

	customer, err := h.customerService.Approve(r.Context(), id, &input)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, customer)
}

// Reject godoc
// @Summary Reject customer
// @Description Reject a pending customer. A note of at least 10 characters is required.
// @Tags Customers
// @Accept json
// @Produce json
// @Param id path string true "Customer ID" format(uuid)
// @Param request body domain.CustomerDecisionInput true "Rejection note"
// @Success 200 {object} domain.CustomerDTO
// @Failure 400 {object} domain.APIError
// @Failure 403 {object} domain.APIError
// @Failure 409 {object} domain.APIError
// @Security BearerAuth
// @Router /customers/{id}/reject [post]
func (h *CustomerHandler) Reject(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid customer ID format")
		return
	}

	var input domain.CustomerDecisionInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	customer, err := h.customerService.Reject(r.Context(), id, &input)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, customer)
}
