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

// RateCatalogHandler handles HTTP requests for the predefined rate catalog
type RateCatalogHandler struct {
	catalogService *service.RateCatalogService
	logger         *zap.Logger
}

// NewRateCatalogHandler creates a new RateCatalogHandler instance
func NewRateCatalogHandler(catalogService *service.RateCatalogService, logger *zap.Logger) *RateCatalogHandler {
	return &RateCatalogHandler{
		catalogService: catalogService,
		logger:         logger,
	}
}

// Create godoc
// @Summary Create catalog rate
// @Description Publish a predefined rate to the catalog
// @Tags RateCatalog
// @Accept json
// @Produce json
// @Param request body domain.CreatePredefinedRateInput true "Catalog rate"
// @Success 201 {object} domain.PredefinedRateDTO
// @Failure 400 {object} domain.APIError
// @Security BearerAuth
// @Router /rates [post]
func (h *RateCatalogHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input domain.CreatePredefinedRateInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(&input); err != nil {
		respondValidationError(w, err)
		return
	}

	rate, err := h.catalogService.Create(r.Context(), &input)
	if err != nil {
		h.logger.Warn("failed to create catalog rate", zap.Error(err))
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, rate)
}

// List godoc
// @Summary List catalog rates
// @Description Get paginated catalog rates with derived validity classification
// @Tags RateCatalog
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Items per page (max 200)" default(20)
// @Param tradeLaneId query string false "Filter by trade lane" format(uuid)
// @Param region query string false "Filter by trade lane region"
// @Param service query string false "Filter by service name substring"
// @Param status query string false "Filter by status" Enums(ACTIVE, SUSPENDED)
// @Param validity query string false "Filter by derived validity" Enums(active, expiring, expired)
// @Success 200 {object} domain.PaginatedResponse{data=[]domain.PredefinedRateDTO}
// @Failure 400 {object} domain.APIError
// @Security BearerAuth
// @Router /rates [get]
func (h *RateCatalogHandler) List(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	pageSize, _ := strconv.Atoi(r.URL.Query().Get("pageSize"))

	filters := &repository.PredefinedRateFilters{}
	if id, err := uuid.Parse(r.URL.Query().Get("tradeLaneId")); err == nil {
		filters.TradeLaneID = &id
	}
	if v := r.URL.Query().Get("region"); v != "" {
		filters.Region = &v
	}
	if v := r.URL.Query().Get("service"); v != "" {
		filters.Service = &v
	}
	if id, err := uuid.Parse(r.URL.Query().Get("polId")); err == nil {
		filters.PolID = &id
	}
	if id, err := uuid.Parse(r.URL.Query().Get("podId")); err == nil {
		filters.PodID = &id
	}
	if id, err := uuid.Parse(r.URL.Query().Get("equipTypeId")); err == nil {
		filters.EquipTypeID = &id
	}
	if v := r.URL.Query().Get("status"); v != "" {
		status := domain.PredefinedRateStatus(v)
		filters.Status = &status
	}
	if v := r.URL.Query().Get("isLcl"); v != "" {
		isLcl := v == "true"
		filters.IsLcl = &isLcl
	}

	var validity *domain.RateValidity
	switch v := r.URL.Query().Get("validity"); v {
	case "":
	case string(domain.RateValidityActive), string(domain.RateValidityExpiring), string(domain.RateValidityExpired):
		rv := domain.RateValidity(v)
		validity = &rv
	default:
		respondWithError(w, http.StatusBadRequest, "validity must be one of active, expiring, expired")
		return
	}

	result, err := h.catalogService.List(r.Context(), page, pageSize, filters, validity)
	if err != nil {
		h.logger.Error("failed to list catalog rates", zap.Error(err))
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// GetByID godoc
// @Summary Get catalog rate by ID
// @Tags RateCatalog
// @Produce json
// @Param id path string true "Rate ID" format(uuid)
// @Success 200 {object} domain.PredefinedRateDTO
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Router /rates/{id} [get]
func (h *RateCatalogHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid rate ID format")
		return
	}

	rate, err := h.catalogService.GetByID(r.Context(), id)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, rate)
}

// Update godoc
// @Summary Update catalog rate
// @Description Update a catalog rate. Extending validTo re-arms the expiry notification.
// @Tags RateCatalog
// @Accept json
// @Produce json
// @Param id path string true "Rate ID" format(uuid)
// @Param request body domain.UpdatePredefinedRateInput true "Fields to update"
// @Success 200 {object} domain.PredefinedRateDTO
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Router /rates/{id} [put]
func (h *RateCatalogHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid rate ID format")
		return
	}

	var input domain.UpdatePredefinedRateInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(&input); err != nil {
		respondValidationError(w, err)
		return
	}

	rate, err := h.catalogService.Update(r.Context(), id, &input)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, rate)
}

// RequestUpdate godoc
// @Summary Request rate refresh
// @Description Ask pricing to refresh a catalog rate. The rate itself is not modified.
// @Tags RateCatalog
// @Accept json
// @Produce json
// @Param id path string true "Rate ID" format(uuid)
// @Param request body domain.RequestRateUpdateInput true "Reason"
// @Success 202 "Accepted"
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Router /rates/{id}/request-update [post]
func (h *RateCatalogHandler) RequestUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid rate ID format")
		return
	}

	var input domain.RequestRateUpdateInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(&input); err != nil {
		respondValidationError(w, err)
		return
	}

	if err := h.catalogService.RequestUpdate(r.Context(), id, &input); err != nil {
		respondServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusAccepted)
}
