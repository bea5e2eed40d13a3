package handlers

import (
	"context"
	"fmt"

	"crosstalk/application/ports"
	"crosstalk/application/queries"
	"go.uber.org/zap"
)

// CollateItemsHandler handles collation queries
type CollateItemsHandler struct {
	networkRepo ports.NetworkRepository
	logger      *zap.Logger
}

// NewCollateItemsHandler creates a new handler instance
func NewCollateItemsHandler(networkRepo ports.NetworkRepository, logger *zap.Logger) *CollateItemsHandler {
	return &CollateItemsHandler{
		networkRepo: networkRepo,
		logger:      logger,
	}
}

// Handle executes the collate items query
func (h *CollateItemsHandler) Handle(ctx context.Context, query queries.CollateItemsQuery) (*queries.CollateItemsResult, error) {
	if err := query.Validate(); err != nil {
		return nil, fmt.Errorf("invalid query: %w", err)
	}

	network, err := loadOwnedNetwork(ctx, h.networkRepo, query.UserID, query.NetworkID)
	if err != nil {
		return nil, err
	}

	collation, err := network.CollateItems(query.Clusters)
	if err != nil {
		return nil, err
	}

	clusters := query.Clusters
	if clusters == nil {
		clusters = network.Levels()
	}

	return &queries.CollateItemsResult{
		NetworkID: query.NetworkID,
		Clusters:  clusters,
		Features:  collation.Features,
		Receptors: collation.Receptors,
		Ligands:   collation.Ligands,
	}, nil
}
