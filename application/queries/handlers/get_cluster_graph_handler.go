package handlers

import (
	"context"
	"fmt"

	"crosstalk/application/ports"
	"crosstalk/application/queries"
	"crosstalk/domain/analysis"
	"go.uber.org/zap"
)

// GetClusterGraphHandler handles cluster graph rendering queries
type GetClusterGraphHandler struct {
	networkRepo ports.NetworkRepository
	logger      *zap.Logger
}

// NewGetClusterGraphHandler creates a new handler instance
func NewGetClusterGraphHandler(networkRepo ports.NetworkRepository, logger *zap.Logger) *GetClusterGraphHandler {
	return &GetClusterGraphHandler{
		networkRepo: networkRepo,
		logger:      logger,
	}
}

// Handle executes the cluster graph query
func (h *GetClusterGraphHandler) Handle(ctx context.Context, query queries.GetClusterGraphQuery) (*queries.GraphResult, error) {
	if err := query.Validate(); err != nil {
		return nil, fmt.Errorf("invalid query: %w", err)
	}

	network, err := loadOwnedNetwork(ctx, h.networkRepo, query.UserID, query.NetworkID)
	if err != nil {
		return nil, err
	}

	transform := transformOptions(query.MinThresh, query.MaxThresh, query.Scale, query.Normalize)

	opts := analysis.DefaultClusterGraphOptions()
	if query.ScaleBy != "" {
		opts.ScaleBy = analysis.ScaleBy(query.ScaleBy)
	}
	if query.VertScale != nil {
		opts.VertScale = *query.VertScale
	}
	if query.EdgeWeight != nil {
		opts.EdgeWeight = *query.EdgeWeight
	}

	graph, err := network.ClusterGraph(transform, opts)
	if err != nil {
		return nil, err
	}

	positions, err := analysis.ComputeLayout(graph, layoutMode(query.Layout), query.Seed)
	if err != nil {
		return nil, err
	}

	result := toGraphResult(query.NetworkID, graph, positions)

	h.logger.Debug("Cluster graph rendered",
		zap.String("networkID", query.NetworkID),
		zap.Int("nodes", len(result.Nodes)),
		zap.Int("edges", len(result.Edges)),
	)

	return &result, nil
}
