package handlers

import (
	"context"
	"fmt"
	"sort"
	"time"

	"crosstalk/application/ports"
	"crosstalk/application/queries"
	"crosstalk/domain/core/aggregates"
	"go.uber.org/zap"
)

// ListNetworksHandler handles network listing queries
type ListNetworksHandler struct {
	networkRepo ports.NetworkRepository
	logger      *zap.Logger
}

// NewListNetworksHandler creates a new handler instance
func NewListNetworksHandler(networkRepo ports.NetworkRepository, logger *zap.Logger) *ListNetworksHandler {
	return &ListNetworksHandler{
		networkRepo: networkRepo,
		logger:      logger,
	}
}

// Handle executes the list networks query
func (h *ListNetworksHandler) Handle(ctx context.Context, query queries.ListNetworksQuery) (*queries.ListNetworksResult, error) {
	if err := query.Validate(); err != nil {
		return nil, fmt.Errorf("invalid query: %w", err)
	}

	networks, err := h.networkRepo.GetByUserID(ctx, query.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to list networks: %w", err)
	}

	sortNetworks(networks, query.SortBy, query.Order)

	total := len(networks)
	limit := query.Limit
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	offset := query.Offset
	if offset > total {
		offset = total
	}
	end := offset + limit
	if end > total {
		end = total
	}

	result := &queries.ListNetworksResult{
		Networks:   make([]queries.NetworkSummary, 0, end-offset),
		TotalCount: total,
		Limit:      limit,
		Offset:     offset,
	}

	for _, network := range networks[offset:end] {
		result.Networks = append(result.Networks, queries.NetworkSummary{
			ID:           network.ID().String(),
			Name:         network.Name(),
			ClusterCount: len(network.Levels()),
			GeneCount:    len(network.Genes()),
			Version:      network.Version(),
			CreatedAt:    network.CreatedAt().Format(time.RFC3339),
			UpdatedAt:    network.UpdatedAt().Format(time.RFC3339),
		})
	}

	h.logger.Debug("Networks listed",
		zap.String("userID", query.UserID),
		zap.Int("total", total),
		zap.Int("returned", len(result.Networks)),
	)

	return result, nil
}

func sortNetworks(networks []*aggregates.SignalingNetwork, sortBy, order string) {
	less := func(a, b *aggregates.SignalingNetwork) bool {
		switch sortBy {
		case "name":
			return a.Name() < b.Name()
		case "created":
			return a.CreatedAt().Before(b.CreatedAt())
		default: // "updated"
			return a.UpdatedAt().Before(b.UpdatedAt())
		}
	}

	sort.SliceStable(networks, func(i, j int) bool {
		if order == "asc" {
			return less(networks[i], networks[j])
		}
		return less(networks[j], networks[i])
	})
}
