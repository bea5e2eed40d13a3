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

// GraphHandler serves cluster-level and gene-level signaling graphs
type GraphHandler struct {
	queryBus *querybus.QueryBus
	logger   *zap.Logger
}

// NewGraphHandler creates a new graph handler
func NewGraphHandler(queryBus *querybus.QueryBus, logger *zap.Logger) *GraphHandler {
	return &GraphHandler{
		queryBus: queryBus,
		logger:   logger,
	}
}

// GetClusterGraph handles GET /networks/{networkID}/cluster-graph.
// Unlike the matrix endpoint, scale additionally accepts "sq".
func (h *GraphHandler) GetClusterGraph(w http.ResponseWriter, r *http.Request) {
	networkID, userCtx, ok := h.resolveRequest(w, r)
	if !ok {
		return
	}

	params := r.URL.Query()
	query := queries.GetClusterGraphQuery{
		UserID:     userCtx.UserID,
		NetworkID:  networkID,
		MinThresh:  parseFloatParam(r, "min_thresh"),
		MaxThresh:  parseFloatParam(r, "max_thresh"),
		Scale:      params.Get("scale"),
		Normalize:  params.Get("normalize"),
		ScaleBy:    params.Get("scale_by"),
		VertScale:  parseFloatParam(r, "vert_scale"),
		EdgeWeight: parseFloatParam(r, "edge_weight"),
		Layout:     params.Get("layout"),
		Seed:       parseSeedParam(r),
	}

	result, err := h.queryBus.Ask(r.Context(), query)
	if err != nil {
		h.logger.Error("Failed to get cluster graph",
			zap.String("networkID", networkID),
			zap.String("userID", userCtx.UserID),
			zap.Error(err),
		)
		h.respondGraphError(w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, result)
}

// GetGeneGraph handles GET /networks/{networkID}/gene-graph.
// The clusters parameter is a comma-separated list; omitting it means
// all clusters.
func (h *GraphHandler) GetGeneGraph(w http.ResponseWriter, r *http.Request) {
	networkID, userCtx, ok := h.resolveRequest(w, r)
	if !ok {
		return
	}

	query := queries.GetGeneGraphQuery{
		UserID:    userCtx.UserID,
		NetworkID: networkID,
		Clusters:  parseClustersParam(r),
		Layout:    r.URL.Query().Get("layout"),
		Seed:      parseSeedParam(r),
	}

	result, err := h.queryBus.Ask(r.Context(), query)
	if err != nil {
		h.logger.Error("Failed to get gene graph",
			zap.String("networkID", networkID),
			zap.String("userID", userCtx.UserID),
			zap.Error(err),
		)
		h.respondGraphError(w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, result)
}

// resolveRequest extracts and validates the network ID and user
func (h *GraphHandler) resolveRequest(w http.ResponseWriter, r *http.Request) (string, *auth.UserContext, bool) {
	networkID := chi.URLParam(r, "networkID")
	if networkID == "" {
		h.respondError(w, http.StatusBadRequest, "Network ID is required")
		return "", nil, false
	}

	if _, err := uuid.Parse(networkID); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid network ID format")
		return "", nil, false
	}

	userCtx, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		h.respondError(w, http.StatusUnauthorized, "Unauthorized")
		return "", nil, false
	}

	return networkID, userCtx, true
}

// parseClustersParam parses the comma-separated clusters parameter.
// Absent means nil (all clusters); present but empty means an
// explicitly empty selection.
func parseClustersParam(r *http.Request) []string {
	if !r.URL.Query().Has("clusters") {
		return nil
	}
	raw := r.URL.Query().Get("clusters")
	if raw == "" {
		return []string{}
	}
	parts := strings.Split(raw, ",")
	clusters := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			clusters = append(clusters, trimmed)
		}
	}
	return clusters
}

func parseSeedParam(r *http.Request) int64 {
	raw := r.URL.Query().Get("seed")
	if raw == "" {
		return 0
	}
	seed, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0
	}
	return seed
}

func (h *GraphHandler) respondGraphError(w http.ResponseWriter, err error) {
	switch {
	case strings.Contains(err.Error(), "not found"):
		h.respondError(w, http.StatusNotFound, "Network not found")
	case strings.Contains(err.Error(), "unauthorized"):
		h.respondError(w, http.StatusForbidden, "Not the network owner")
	case strings.Contains(err.Error(), "scale"), strings.Contains(err.Error(), "layout"), strings.Contains(err.Error(), "cluster"):
		h.respondError(w, http.StatusBadRequest, err.Error())
	default:
		h.respondError(w, http.StatusInternalServerError, "Failed to assemble graph")
	}
}

func (h *GraphHandler) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	common.RespondJSON(w, status, data)
}

func (h *GraphHandler) respondError(w http.ResponseWriter, status int, message string) {
	common.RespondError(w, status, common.ErrorCode(status), message)
}
