package handlers

import (
	"context"
	"fmt"
	"time"

	"crosstalk/application/ports"
	"crosstalk/application/queries"
	"go.uber.org/zap"
)

// GetNetworkHandler handles full network retrieval queries
type GetNetworkHandler struct {
	networkRepo ports.NetworkRepository
	cache       ports.Cache
	logger      *zap.Logger
}

// NewGetNetworkHandler creates a new handler instance
func NewGetNetworkHandler(networkRepo ports.NetworkRepository, cache ports.Cache, logger *zap.Logger) *GetNetworkHandler {
	return &GetNetworkHandler{
		networkRepo: networkRepo,
		cache:       cache,
		logger:      logger,
	}
}

// Handle executes the get network query
func (h *GetNetworkHandler) Handle(ctx context.Context, query queries.GetNetworkQuery) (*queries.GetNetworkResult, error) {
	if err := query.Validate(); err != nil {
		return nil, fmt.Errorf("invalid query: %w", err)
	}

	cacheKey := fmt.Sprintf("network:%s", query.NetworkID)
	if h.cache != nil {
		if cached, found := h.cache.Get(ctx, cacheKey); found {
			if result, ok := cached.(*queries.GetNetworkResult); ok && result.UserID == query.UserID {
				return result, nil
			}
		}
	}

	network, err := loadOwnedNetwork(ctx, h.networkRepo, query.UserID, query.NetworkID)
	if err != nil {
		return nil, err
	}

	linkage := network.Linkage()
	linkageDTO := queries.LinkageDTO{
		ClusterTFs:      make(map[string][]string),
		TFReceptors:     make(map[string][]string),
		ReceptorLigands: make(map[string][]string),
	}
	for _, cluster := range linkage.Clusters() {
		tfs := linkage.TFsFor(cluster)
		linkageDTO.ClusterTFs[cluster] = tfs
		for _, tf := range tfs {
			if _, seen := linkageDTO.TFReceptors[tf]; seen {
				continue
			}
			receptors := linkage.ReceptorsFor(tf)
			linkageDTO.TFReceptors[tf] = receptors
			for _, receptor := range receptors {
				if _, seen := linkageDTO.ReceptorLigands[receptor]; !seen {
					linkageDTO.ReceptorLigands[receptor] = linkage.LigandsFor(receptor)
				}
			}
		}
	}

	result := &queries.GetNetworkResult{
		ID:        network.ID().String(),
		UserID:    network.UserID(),
		Name:      network.Name(),
		Clusters:  network.Levels(),
		Genes:     network.Genes(),
		Colors:    network.Colors(),
		Matrix:    toMatrixDTO(network.Matrix()),
		Linkage:   linkageDTO,
		Version:   network.Version(),
		CreatedAt: network.CreatedAt().Format(time.RFC3339),
		UpdatedAt: network.UpdatedAt().Format(time.RFC3339),
	}

	if h.cache != nil {
		if err := h.cache.Set(ctx, cacheKey, result, 300); err != nil {
			h.logger.Debug("Failed to cache network", zap.Error(err))
		}
	}

	return result, nil
}
