package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"crosstalk/application/queries"
	querybus "crosstalk/application/queries/bus"
	"crosstalk/pkg/auth"
	"crosstalk/pkg/common"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// MatrixHandler serves the signaling matrix, optionally transformed
type MatrixHandler struct {
	queryBus *querybus.QueryBus
	logger   *zap.Logger
}

// NewMatrixHandler creates a new matrix handler
func NewMatrixHandler(queryBus *querybus.QueryBus, logger *zap.Logger) *MatrixHandler {
	return &MatrixHandler{
		queryBus: queryBus,
		logger:   logger,
	}
}

// GetMatrix handles GET /networks/{networkID}/matrix.
// Transform parameters: min_thresh, max_thresh, scale (none, sqrt,
// log), normalize (none, row, col). The transform always applies
// clamp, then scale, then normalize.
func (h *MatrixHandler) GetMatrix(w http.ResponseWriter, r *http.Request) {
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

	query := queries.GetSignalingMatrixQuery{
		UserID:    userCtx.UserID,
		NetworkID: networkID,
		MinThresh: parseFloatParam(r, "min_thresh"),
		MaxThresh: parseFloatParam(r, "max_thresh"),
		Scale:     r.URL.Query().Get("scale"),
		Normalize: r.URL.Query().Get("normalize"),
	}

	result, err := h.queryBus.Ask(r.Context(), query)
	if err != nil {
		h.logger.Error("Failed to get matrix",
			zap.String("networkID", networkID),
			zap.String("userID", userCtx.UserID),
			zap.Error(err),
		)
		switch {
		case strings.Contains(err.Error(), "not found"):
			h.respondError(w, http.StatusNotFound, "Network not found")
		case strings.Contains(err.Error(), "unauthorized"):
			h.respondError(w, http.StatusForbidden, "Not the network owner")
		case strings.Contains(err.Error(), "scale"), strings.Contains(err.Error(), "normalize"), strings.Contains(err.Error(), "threshold"):
			h.respondError(w, http.StatusBadRequest, err.Error())
		default:
			h.respondError(w, http.StatusInternalServerError, "Failed to retrieve matrix")
		}
		return
	}

	h.respondJSON(w, http.StatusOK, result)
}

// parseFloatParam parses an optional float query parameter
func parseFloatParam(r *http.Request, name string) *float64 {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil
	}
	return &v
}

func (h *MatrixHandler) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	common.RespondJSON(w, status, data)
}

func (h *MatrixHandler) respondError(w http.ResponseWriter, status int, message string) {
	common.RespondError(w, status, common.ErrorCode(status), message)
}
