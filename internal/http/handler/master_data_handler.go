package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/lankaline/freight-api/internal/domain"
	"github.com/lankaline/freight-api/internal/service"
	"go.uber.org/zap"
)

// MasterDataHandler handles HTTP requests for reference data
type MasterDataHandler struct {
	masterDataService *service.MasterDataService
	logger            *zap.Logger
}

// NewMasterDataHandler creates a new MasterDataHandler instance
func NewMasterDataHandler(masterDataService *service.MasterDataService, logger *zap.Logger) *MasterDataHandler {
	return &MasterDataHandler{
		masterDataService: masterDataService,
		logger:            logger,
	}
}

// CreatePort godoc
// @Summary Create port
// @Tags MasterData
// @Accept json
// @Produce json
// @Param request body domain.CreatePortInput true "Port"
// @Success 201 {object} domain.PortDTO
// @Failure 409 {object} domain.APIError
// @Security BearerAuth
// @Router /master-data/ports [post]
func (h *MasterDataHandler) CreatePort(w http.ResponseWriter, r *http.Request) {
	var input domain.CreatePortInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(&input); err != nil {
		respondValidationError(w, err)
		return
	}

	port, err := h.masterDataService.CreatePort(r.Context(), &input)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, port)
}

// ListPorts godoc
// @Summary List ports
// @Tags MasterData
// @Produce json
// @Success 200 {array} domain.PortDTO
// @Security BearerAuth
// @Router /master-data/ports [get]
func (h *MasterDataHandler) ListPorts(w http.ResponseWriter, r *http.Request) {
	ports, err := h.masterDataService.ListPorts(r.Context())
	if err != nil {
		h.logger.Error("failed to list ports", zap.Error(err))
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, ports)
}

// CreateTradeLane godoc
// @Summary Create trade lane
// @Tags MasterData
// @Accept json
// @Produce json
// @Param request body domain.CreateTradeLaneInput true "Trade lane"
// @Success 201 {object} domain.TradeLaneDTO
// @Failure 404 {object} domain.APIError
// @Failure 409 {object} domain.APIError
// @Security BearerAuth
// @Router /master-data/trade-lanes [post]
func (h *MasterDataHandler) CreateTradeLane(w http.ResponseWriter, r *http.Request) {
	var input domain.CreateTradeLaneInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(&input); err != nil {
		respondValidationError(w, err)
		return
	}

	lane, err := h.masterDataService.CreateTradeLane(r.Context(), &input)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, lane)
}

// ListTradeLanes godoc
// @Summary List trade lanes
// @Tags MasterData
// @Produce json
// @Param region query string false "Filter by region"
// @Success 200 {array} domain.TradeLaneDTO
// @Security BearerAuth
// @Router /master-data/trade-lanes [get]
func (h *MasterDataHandler) ListTradeLanes(w http.ResponseWriter, r *http.Request) {
	lanes, err := h.masterDataService.ListTradeLanes(r.Context(), r.URL.Query().Get("region"))
	if err != nil {
		h.logger.Error("failed to list trade lanes", zap.Error(err))
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, lanes)
}

// CreateEquipmentType godoc
// @Summary Create equipment type
// @Tags MasterData
// @Accept json
// @Produce json
// @Param request body domain.CreateEquipmentTypeInput true "Equipment type"
// @Success 201 {object} domain.EquipmentTypeDTO
// @Failure 409 {object} domain.APIError
// @Security BearerAuth
// @Router /master-data/equipment-types [post]
func (h *MasterDataHandler) CreateEquipmentType(w http.ResponseWriter, r *http.Request) {
	var input domain.CreateEquipmentTypeInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(&input); err != nil {
		respondValidationError(w, err)
		return
	}

	equip, err := h.masterDataService.CreateEquipmentType(r.Context(), &input)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, equip)
}

// ListEquipmentTypes godoc
// @Summary List equipment types
// @Tags MasterData
// @Produce json
// @Success 200 {array} domain.EquipmentTypeDTO
// @Security BearerAuth
// @Router /master-data/equipment-types [get]
func (h *MasterDataHandler) ListEquipmentTypes(w http.ResponseWriter, r *http.Request) {
	equips, err := h.masterDataService.ListEquipmentTypes(r.Context())
	if err != nil {
		h.logger.Error("failed to list equipment types", zap.Error(err))
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, equips)
}

// CreateShippingLine godoc
// @Summary Create shipping line
// @Tags MasterData
// @Accept json
// @Produce json
// @Param request body domain.CreateShippingLineInput true "Shipping line"
// @Success 201 {object} domain.ShippingLineDTO
// @Failure 409 {object} domain.APIError
// @Security BearerAuth
// @Router /master-data/shipping-lines [post]
func (h *MasterDataHandler) CreateShippingLine(w http.ResponseWriter, r *http.Request) {
	var input domain.CreateShippingLineInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(&input); err != nil {
		respondValidationError(w, err)
		return
	}

	line, err := h.masterDataService.CreateShippingLine(r.Context(), &input)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, line)
}

// ListShippingLines godoc
// @Summary List shipping lines
// @Tags MasterData
// @Produce json
// @Success 200 {array} domain.ShippingLineDTO
// @Security BearerAuth
// @Router /master-data/shipping-lines [get]
func (h *MasterDataHandler) ListShippingLines(w http.ResponseWriter, r *http.Request) {
	lines, err := h.masterDataService.ListShippingLines(r.Context())
	if err != nil {
		h.logger.Error("failed to list shipping lines", zap.Error(err))
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, lines)
}

// ListPricingUsers godoc
// @Summary List pricing users for a trade lane
// @Tags MasterData
// @Produce json
// @Param id path string true "Trade lane ID" format(uuid)
// @Success 200 {array} domain.UserDTO
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Router /master-data/trade-lanes/{id}/pricing-users [get]
func (h *MasterDataHandler) ListPricingUsers(w http.ResponseWriter, r *http.Request) {
	laneID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid trade lane ID format")
		return
	}

	users, err := h.masterDataService.ListPricingUsers(r.Context(), laneID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, users)
}

// AssignPricingUser godoc
// @Summary Assign pricing user to trade lane
// @Description Make a pricing user responsible for quoting a trade lane
// @Tags MasterData
// @Accept json
// @Produce json
// @Param id path string true "Trade lane ID" format(uuid)
// @Param request body domain.AssignPricingUserInput true "User"
// @Success 204 "No Content"
// @Failure 404 {object} domain.APIError
// @Failure 409 {object} domain.APIError
// @Security BearerAuth
// @Router /master-data/trade-lanes/{id}/pricing-users [post]
func (h *MasterDataHandler) AssignPricingUser(w http.ResponseWriter, r *http.Request) {
	laneID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid trade lane ID format")
		return
	}

	var input domain.AssignPricingUserInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(&input); err != nil {
		respondValidationError(w, err)
		return
	}

	if err := h.masterDataService.AssignPricingUser(r.Context(), laneID, input.UserID); err != nil {
		respondServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
