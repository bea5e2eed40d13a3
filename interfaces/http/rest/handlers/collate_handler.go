package handlers

import (
	"net/http"
	"strings"

	"crosstalk/application/queries"
	querybus "crosstalk/application/queries/bus"
	"crosstalk/pkg/auth"
	"crosstalk/pkg/common"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CollateHandler serves collated feature, receptor, and ligand lists
type CollateHandler struct {
	queryBus *querybus.QueryBus
	logger   *zap.Logger
}

// NewCollateHandler creates a new collate handler
func NewCollateHandler(queryBus *querybus.QueryBus, logger *zap.Logger) *CollateHandler {
	return &CollateHandler{
		queryBus: queryBus,
		logger:   logger,
	}
}

// CollateItems handles GET /networks/{networkID}/collation
func (h *CollateHandler) CollateItems(w http.ResponseWriter, r *http.Request) {
	networkID := chi.URLParam(r, "networkID")
	if networkID == "" {
		h.respondError(w, http.StatusBadRequest, "Network ID is required")
		return
	}

	if _, err := uuid.Parse(networkID); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid network ID format")
		return
	}

	userCtx, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		h.respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	query := queries.CollateItemsQuery{
		UserID:    userCtx.UserID,
		NetworkID: networkID,
		Clusters:  parseClustersParam(r),
	}

	result, err := h.queryBus.Ask(r.Context(), query)
	if err != nil {
		h.logger.Error("Failed to collate items",
			zap.String("networkID", networkID),
			zap.String("userID", userCtx.UserID),
			zap.Error(err),
		)
		switch {
		case strings.Contains(err.Error(), "not found"):
			h.respondError(w, http.StatusNotFound, "Network not found")
		case strings.Contains(err.Error(), "unauthorized"):
			h.respondError(w, http.StatusForbidden, "Not the network owner")
		case strings.Contains(err.Error(), "cluster"):
			h.respondError(w, http.StatusBadRequest, err.Error())
		default:
			h.respondError(w, http.StatusInternalServerError, "Failed to collate items")
		}
		return
	}

	h.respondJSON(w, http.StatusOK, result)
}

func (h *CollateHandler) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	common.RespondJSON(w, status, data)
}

func (h *CollateHandler) respondError(w http.ResponseWriter, status int, message string) {
	common.RespondError(w, status, common.ErrorCode(status), message)
}
