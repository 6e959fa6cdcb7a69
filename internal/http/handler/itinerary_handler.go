package handler

import (
	"context"
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

// ItineraryHandler handles HTTP requests for weekly itinerary plans
type ItineraryHandler struct {
	itineraryService *service.ItineraryService
	logger           *zap.Logger
}

// NewItineraryHandler creates a new ItineraryHandler instance
func NewItineraryHandler(itineraryService *service.ItineraryService, logger *zap.Logger) *ItineraryHandler {
	return &ItineraryHandler{
		itineraryService: itineraryService,
		logger:           logger,
	}
}

// Create godoc
// @Summary Create itinerary
// @Description Create a weekly itinerary draft for the current user
// @Tags Itineraries
// @Accept json
// @Produce json
// @Param request body domain.CreateItineraryInput true "Itinerary"
// @Success 201 {object} domain.ItineraryDTO
// @Failure 400 {object} domain.APIError
// @Security BearerAuth
// @Router /itineraries [post]
func (h *ItineraryHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input domain.CreateItineraryInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(&input); err != nil {
		respondValidationError(w, err)
		return
	}

	itinerary, err := h.itineraryService.Create(r.Context(), &input)
	if err != nil {
		h.logger.Warn("failed to create itinerary", zap.Error(err))
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, itinerary)
}

// List godoc
// @Summary List itineraries
// @Tags Itineraries
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Items per page (max 200)" default(20)
// @Param ownerId query string false "Filter by owner" format(uuid)
// @Param mine query bool false "Only the caller's own itineraries"
// @Param status query string false "Filter by status" Enums(DRAFT, SUBMITTED, APPROVED, REJECTED)
// @Param type query string false "Filter by plan type" Enums(SP, CSE)
// @Success 200 {object} domain.PaginatedResponse{data=[]domain.ItineraryDTO}
// @Security BearerAuth
// @Router /itineraries [get]
func (h *ItineraryHandler) List(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	pageSize, _ := strconv.Atoi(r.URL.Query().Get("pageSize"))

	filters := &repository.ItineraryFilters{}
	if id, err := uuid.Parse(r.URL.Query().Get("ownerId")); err == nil {
		filters.OwnerID = &id
	}
	if r.URL.Query().Get("mine") == "true" {
		if userCtx, ok := auth.FromContext(r.Context()); ok {
			filters.OwnerID = &userCtx.UserID
		}
	}
	if v := r.URL.Query().Get("status"); v != "" {
		status := domain.ItineraryStatus(v)
		filters.Status = &status
	}
	if v := r.URL.Query().Get("type"); v != "" {
		planType := domain.ItineraryType(v)
		filters.Type = &planType
	}
	if t, err := time.Parse("2006-01-02", r.URL.Query().Get("weekStart")); err == nil {
		filters.WeekStart = &t
	}

	result, err := h.itineraryService.List(r.Context(), page, pageSize, filters)
	if err != nil {
		h.logger.Error("failed to list itineraries", zap.Error(err))
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// GetByID godoc
// @Summary Get itinerary by ID
// @Tags Itineraries
// @Produce json
// @Param id path string true "Itinerary ID" format(uuid)
// @Success 200 {object} domain.ItineraryDTO
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Router /itineraries/{id} [get]
func (h *ItineraryHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid itinerary ID format")
		return
	}

	itinerary, err := h.itineraryService.GetByID(r.Context(), id)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, itinerary)
}

// Submit godoc
// @Summary Submit itinerary
// @Description Submit a draft itinerary for approval. Only the owner may submit.
// @Tags Itineraries
// @Produce json
// @Param id path string true "Itinerary ID" format(uuid)
// @Success 200 {object} domain.ItineraryDTO
// @Failure 403 {object} domain.APIError
// @Failure 409 {object} domain.APIError
// @Security BearerAuth
// @Router /itineraries/{id}/submit [post]
func (h *ItineraryHandler) Submit(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid itinerary ID format")
		return
	}

	itinerary, err := h.itineraryService.Submit(r.Context(), id)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, itinerary)
}

// Approve godoc
// @Summary Approve itinerary
// @Description Approve a submitted itinerary. Restricted to the owner's SBU head or an admin.
// @Tags Itineraries
// @Accept json
// @Produce json
// @Param id path string true "Itinerary ID" format(uuid)
// @Param request body domain.ItineraryDecisionInput false "Optional note"
// @Success 200 {object} domain.ItineraryDTO
// @Failure 403 {object} domain.APIError
// @Failure 409 {object} domain.APIError
// @Security BearerAuth
// @Router /itineraries/{id}/approve [post]
func (h *ItineraryHandler) Approve(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, h.itineraryService.Approve)
}

// Reject godoc
// @Summary Reject itinerary
// @Description Reject a submitted itinerary. A note explaining the rejection is required.
// @Tags Itineraries
// @Accept json
// @Produce json
// @Param id path string true "Itinerary ID" format(uuid)
// @Param request body domain.ItineraryDecisionInput true "Rejection note"
// @Success 200 {object} domain.ItineraryDTO
// @Failure 400 {object} domain.APIError
// @Failure 403 {object} domain.APIError
// @Failure 409 {object} domain.APIError
// @Security BearerAuth
// @Router /itineraries/{id}/reject [post]
func (h *ItineraryHandler) Reject(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, h.itineraryService.Reject)
}

func (h *ItineraryHandler) decide(
	w http.ResponseWriter,
	r *http.Request,
	fn func(context.Context, uuid.UUID, *domain.ItineraryDecisionInput) (*domain.ItineraryDTO, error),
) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid itinerary ID format")
		return
	}

	var input domain.ItineraryDecisionInput
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
			respondWithError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
	}

	itinerary, err := fn(r.Context(), id, &input)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, itinerary)
}

// AddItem godoc
// @Summary Add itinerary item
// @Description Add a planned visit to a draft itinerary
// @Tags Itineraries
// @Accept json
// @Produce json
// @Param id path string true "Itinerary ID" format(uuid)
// @Param request body domain.ItineraryItemInput true "Item"
// @Success 201 {object} domain.ItineraryItemDTO
// @Failure 409 {object} domain.APIError
// @Security BearerAuth
// @Router /itineraries/{id}/items [post]
func (h *ItineraryHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid itinerary ID format")
		return
	}

	var input domain.ItineraryItemInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(&input); err != nil {
		respondValidationError(w, err)
		return
	}

	item, err := h.itineraryService.AddItem(r.Context(), id, &input)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, item)
}

// UpdateItem godoc
// @Summary Update itinerary item
// @Tags Itineraries
// @Accept json
// @Produce json
// @Param id path string true "Itinerary ID" format(uuid)
// @Param itemId path string true "Item ID" format(uuid)
// @Param request body domain.ItineraryItemInput true "Item"
// @Success 200 {object} domain.ItineraryItemDTO
// @Failure 404 {object} domain.APIError
// @Failure 409 {object} domain.APIError
// @Security BearerAuth
// @Router /itineraries/{id}/items/{itemId} [put]
func (h *ItineraryHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid itinerary ID format")
		return
	}
	itemID, err := uuid.Parse(chi.URLParam(r, "itemId"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid item ID format")
		return
	}

	var input domain.ItineraryItemInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(&input); err != nil {
		respondValidationError(w, err)
		return
	}

	item, err := h.itineraryService.UpdateItem(r.Context(), id, itemID, &input)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, item)
}

// RemoveItem godoc
// @Summary Remove itinerary item
// @Tags Itineraries
// @Param id path string true "Itinerary ID" format(uuid)
// @Param itemId path string true "Item ID" format(uuid)
// @Success 204 "No Content"
// @Failure 404 {object} domain.APIError
// @Failure 409 {object} domain.APIError
// @Security BearerAuth
// @Router /itineraries/{id}/items/{itemId} [delete]
func (h *ItineraryHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid itinerary ID format")
		return
	}
	itemID, err := uuid.Parse(chi.URLParam(r, "itemId"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid item ID format")
		return
	}

	if err := h.itineraryService.RemoveItem(r.Context(), id, itemID); err != nil {
		respondServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
