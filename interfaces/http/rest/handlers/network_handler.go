package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"crosstalk/application/commands"
	"crosstalk/application/commands/bus"
	commands_handlers "crosstalk/application/commands/handlers"
	"crosstalk/application/queries"
	querybus "crosstalk/application/queries/bus"
	"crosstalk/pkg/auth"
	"crosstalk/pkg/common"
	"crosstalk/pkg/utils"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// NetworkHandler handles network-related HTTP requests
type NetworkHandler struct {
	commandBus   *bus.CommandBus
	queryBus     *querybus.QueryBus
	buildHandler *commands_handlers.BuildNetworkHandler
	logger       *zap.Logger
}

// NewNetworkHandler creates a new network handler
func NewNetworkHandler(
	commandBus *bus.CommandBus,
	queryBus *querybus.QueryBus,
	buildHandler *commands_handlers.BuildNetworkHandler,
	logger *zap.Logger,
) *NetworkHandler {
	return &NetworkHandler{
		commandBus:   commandBus,
		queryBus:     queryBus,
		buildHandler: buildHandler,
		logger:       logger,
	}
}

// BuildNetworkRequest represents the request body for building a network
type BuildNetworkRequest struct {
	Name string `json:"name" validate:"required,min=1,max=200"`

	Genes      []string    `json:"genes" validate:"required,min=1"`
	Cells      []string    `json:"cells" validate:"required,min=1"`
	Expression [][]float64 `json:"expression" validate:"required"`

	TFs        []string    `json:"tfs" validate:"required,min=1"`
	Activities [][]float64 `json:"activities" validate:"required"`

	Clusters     []string `json:"clusters" validate:"required"`
	ClusterOrder []string `json:"cluster_order,omitempty"`

	ReceptorLigands map[string][]string `json:"receptor_ligands" validate:"required"`

	Colors map[string]string `json:"colors,omitempty"`

	MaxTFPValue       *float64 `json:"max_tf_p_value,omitempty"`
	MinCorrelation    *float64 `json:"min_correlation,omitempty"`
	MaxTFsPerCluster  *int     `json:"max_tfs_per_cluster,omitempty"`
	MaxReceptorsPerTF *int     `json:"max_receptors_per_tf,omitempty"`
}

// BuildNetworkResponse represents the response for building a network
type BuildNetworkResponse struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	ClusterCount int    `json:"clusterCount"`
	Message      string `json:"message"`
	CreatedAt    string `json:"createdAt"`
}

// BuildNetwork handles POST /networks
func (h *NetworkHandler) BuildNetwork(w http.ResponseWriter, r *http.Request) {
	var req BuildNetworkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	if err := utils.ValidateStruct(req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	userCtx, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		h.respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	cmd := commands.BuildNetworkCommand{
		UserID:            userCtx.UserID,
		Name:              req.Name,
		Genes:             req.Genes,
		Cells:             req.Cells,
		Expression:        req.Expression,
		TFs:               req.TFs,
		Activities:        req.Activities,
		Clusters:          req.Clusters,
		ClusterOrder:      req.ClusterOrder,
		ReceptorLigands:   req.ReceptorLigands,
		Colors:            req.Colors,
		MaxTFPValue:       req.MaxTFPValue,
		MinCorrelation:    req.MinCorrelation,
		MaxTFsPerCluster:  req.MaxTFsPerCluster,
		MaxReceptorsPerTF: req.MaxReceptorsPerTF,
	}

	// The build handler is invoked directly because the response needs
	// the new network's identity
	network, err := h.buildHandler.Handle(r.Context(), cmd)
	if err != nil {
		h.logger.Error("Failed to build network",
			zap.String("userID", userCtx.UserID),
			zap.String("name", req.Name),
			zap.Error(err),
		)
		switch {
		case strings.Contains(err.Error(), "validation"), strings.Contains(err.Error(), "invalid"):
			h.respondError(w, http.StatusBadRequest, err.Error())
		case strings.Contains(err.Error(), "rejected"):
			h.respondError(w, http.StatusUnprocessableEntity, err.Error())
		case strings.Contains(err.Error(), "lock"):
			h.respondError(w, http.StatusConflict, "A build is already in progress for this user")
		default:
			h.respondError(w, http.StatusInternalServerError, "Failed to build network")
		}
		return
	}

	response := BuildNetworkResponse{
		ID:           network.ID().String(),
		Name:         network.Name(),
		ClusterCount: len(network.Levels()),
		Message:      "Network built successfully",
		CreatedAt:    utils.FormatRFC3339(network.CreatedAt()),
	}

	h.respondJSON(w, http.StatusCreated, response)
}

// GetNetwork handles GET /networks/{networkID}
func (h *NetworkHandler) GetNetwork(w http.ResponseWriter, r *http.Request) {
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

	query := queries.GetNetworkQuery{
		UserID:    userCtx.UserID,
		NetworkID: networkID,
	}

	result, err := h.queryBus.Ask(r.Context(), query)
	if err != nil {
		h.logger.Error("Failed to get network",
			zap.String("networkID", networkID),
			zap.String("userID", userCtx.UserID),
			zap.Error(err),
		)
		h.respondQueryError(w, err, "Failed to retrieve network")
		return
	}

	h.respondJSON(w, http.StatusOK, result)
}

// ListNetworks handles GET /networks
func (h *NetworkHandler) ListNetworks(w http.ResponseWriter, r *http.Request) {
	userCtx, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		h.respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	query := queries.ListNetworksQuery{
		UserID: userCtx.UserID,
		Limit:  limit,
		Offset: offset,
		SortBy: r.URL.Query().Get("sort_by"),
		Order:  r.URL.Query().Get("order"),
	}

	result, err := h.queryBus.Ask(r.Context(), query)
	if err != nil {
		h.logger.Error("Failed to list networks",
			zap.String("userID", userCtx.UserID),
			zap.Error(err),
		)
		h.respondQueryError(w, err, "Failed to list networks")
		return
	}

	h.respondJSON(w, http.StatusOK, result)
}

// RenameClustersRequest represents the request body for renaming clusters
type RenameClustersRequest struct {
	Renames map[string]string `json:"renames" validate:"required,min=1"`
}

// RenameClusters handles PUT /networks/{networkID}/clusters
func (h *NetworkHandler) RenameClusters(w http.ResponseWriter, r *http.Request) {
	networkID := chi.URLParam(r, "networkID")
	if networkID == "" {
		h.respondError(w, http.StatusBadRequest, "Network ID is required")
		return
	}

	if _, err := uuid.Parse(networkID); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid network ID format")
		return
	}

	var req RenameClustersRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	if err := utils.ValidateStruct(req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	userCtx, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		h.respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	cmd := commands.RenameClustersCommand{
		NetworkID: networkID,
		UserID:    userCtx.UserID,
		Renames:   req.Renames,
	}

	if err := h.commandBus.Send(r.Context(), cmd); err != nil {
		h.logger.Error("Failed to rename clusters",
			zap.String("networkID", networkID),
			zap.String("userID", userCtx.UserID),
			zap.Error(err),
		)
		switch {
		case strings.Contains(err.Error(), "not found"):
			h.respondError(w, http.StatusNotFound, "Network not found")
		case strings.Contains(err.Error(), "unauthorized"):
			h.respondError(w, http.StatusForbidden, "Not the network owner")
		case strings.Contains(err.Error(), "validation"), strings.Contains(err.Error(), "unknown cluster"):
			h.respondError(w, http.StatusBadRequest, err.Error())
		default:
			h.respondError(w, http.StatusInternalServerError, "Failed to rename clusters")
		}
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]string{
		"message": "Clusters renamed successfully",
		"id":      networkID,
	})
}

// DeleteNetwork handles DELETE /networks/{networkID}
func (h *NetworkHandler) DeleteNetwork(w http.ResponseWriter, r *http.Request) {
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

	cmd := commands.DeleteNetworkCommand{
		NetworkID: networkID,
		UserID:    userCtx.UserID,
	}

	if err := h.commandBus.Send(r.Context(), cmd); err != nil {
		h.logger.Error("Failed to delete network",
			zap.String("networkID", networkID),
			zap.String("userID", userCtx.UserID),
			zap.Error(err),
		)
		switch {
		case strings.Contains(err.Error(), "not found"):
			h.respondError(w, http.StatusNotFound, "Network not found")
		case strings.Contains(err.Error(), "unauthorized"):
			h.respondError(w, http.StatusForbidden, "Not the network owner")
		default:
			h.respondError(w, http.StatusInternalServerError, "Failed to delete network")
		}
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// BulkDeleteNetworks handles POST /networks/bulk-delete
func (h *NetworkHandler) BulkDeleteNetworks(w http.ResponseWriter, r *http.Request) {
	var req struct {
		NetworkIDs []string `json:"network_ids" validate:"required,min=1,max=50"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := utils.ValidateStruct(req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	userCtx, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		h.respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	cmd := commands.BulkDeleteNetworksCommand{
		NetworkIDs: req.NetworkIDs,
		UserID:     userCtx.UserID,
	}

	if err := h.commandBus.Send(r.Context(), cmd); err != nil {
		h.logger.Error("Failed bulk network delete",
			zap.String("userID", userCtx.UserID),
			zap.Int("count", len(req.NetworkIDs)),
			zap.Error(err),
		)
		h.respondError(w, http.StatusInternalServerError, "Failed to delete networks")
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Bulk delete completed",
		"count":   len(req.NetworkIDs),
	})
}

// Helper methods

func (h *NetworkHandler) respondQueryError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case strings.Contains(err.Error(), "not found"):
		h.respondError(w, http.StatusNotFound, "Network not found")
	case strings.Contains(err.Error(), "unauthorized"):
		h.respondError(w, http.StatusForbidden, "Not the network owner")
	case strings.Contains(err.Error(), "validation"):
		h.respondError(w, http.StatusBadRequest, err.Error())
	default:
		h.respondError(w, http.StatusInternalServerError, fallback)
	}
}

func (h *NetworkHandler) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	common.RespondJSON(w, status, data)
}

func (h *NetworkHandler) respondError(w http.ResponseWriter, status int, message string) {
	common.RespondError(w, status, common.ErrorCode(status), message)
}
