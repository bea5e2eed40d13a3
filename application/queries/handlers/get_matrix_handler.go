package handlers

import (
	"context"
	"fmt"

	"crosstalk/application/ports"
	"crosstalk/application/queries"
	"crosstalk/domain/analysis"
	"go.uber.org/zap"
)

// GetSignalingMatrixHandler handles matrix retrieval queries. The
// square scale mode is reserved for cluster graph rendering and is
// rejected here.
type GetSignalingMatrixHandler struct {
	networkRepo ports.NetworkRepository
	logger      *zap.Logger
}

// NewGetSignalingMatrixHandler creates a new handler instance
func NewGetSignalingMatrixHandler(networkRepo ports.NetworkRepository, logger *zap.Logger) *GetSignalingMatrixHandler {
	return &GetSignalingMatrixHandler{
		networkRepo: networkRepo,
		logger:      logger,
	}
}

// Handle executes the get matrix query
func (h *GetSignalingMatrixHandler) Handle(ctx context.Context, query queries.GetSignalingMatrixQuery) (*queries.GetSignalingMatrixResult, error) {
	if err := query.Validate(); err != nil {
		return nil, fmt.Errorf("invalid query: %w", err)
	}

	network, err := loadOwnedNetwork(ctx, h.networkRepo, query.UserID, query.NetworkID)
	if err != nil {
		return nil, err
	}

	opts := transformOptions(query.MinThresh, query.MaxThresh, query.Scale, query.Normalize)
	transformed, err := network.TransformedMatrix(opts,
		analysis.ScaleNone, analysis.ScaleSqrt, analysis.ScaleLog)
	if err != nil {
		return nil, err
	}

	return &queries.GetSignalingMatrixResult{
		NetworkID: query.NetworkID,
		Matrix:    toMatrixDTO(transformed),
		Scale:     string(opts.Scale),
		Normalize: string(opts.Normalize),
	}, nil
}
