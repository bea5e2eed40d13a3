package handlers

import (
	"context"
	"fmt"

	"crosstalk/application/ports"
	"crosstalk/application/queries"
	"crosstalk/domain/analysis"
	"go.uber.org/zap"
)

// GetGeneGraphHandler handles gene graph rendering queries
type GetGeneGraphHandler struct {
	networkRepo ports.NetworkRepository
	logger      *zap.Logger
}

// NewGetGeneGraphHandler creates a new handler instance
func NewGetGeneGraphHandler(networkRepo ports.NetworkRepository, logger *zap.Logger) *GetGeneGraphHandler {
	return &GetGeneGraphHandler{
		networkRepo: networkRepo,
		logger:      logger,
	}
}

// Handle executes the gene graph query
func (h *GetGeneGraphHandler) Handle(ctx context.Context, query queries.GetGeneGraphQuery) (*queries.GraphResult, error) {
	if err := query.Validate(); err != nil {
		return nil, fmt.Errorf("invalid query: %w", err)
	}

	network, err := loadOwnedNetwork(ctx, h.networkRepo, query.UserID, query.NetworkID)
	if err != nil {
		return nil, err
	}

	graph, err := network.GeneGraph(query.Clusters, analysis.DefaultGeneGraphOptions())
	if err != nil {
		return nil, err
	}

	positions, err := analysis.ComputeLayout(graph, layoutMode(query.Layout), query.Seed)
	if err != nil {
		return nil, err
	}

	result := toGraphResult(query.NetworkID, graph, positions)

	h.logger.Debug("Gene graph rendered",
		zap.String("networkID", query.NetworkID),
		zap.Strings("clusters", query.Clusters),
		zap.Int("nodes", len(result.Nodes)),
	)

	return &result, nil
}
