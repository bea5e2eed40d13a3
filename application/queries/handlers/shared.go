package handlers

import (
	"context"
	"fmt"

	"crosstalk/application/ports"
	"crosstalk/application/queries"
	"crosstalk/domain/analysis"
	"crosstalk/domain/core/aggregates"
	"crosstalk/domain/core/valueobjects"
	"crosstalk/pkg/errors"
)

// loadOwnedNetwork fetches a network and verifies ownership
func loadOwnedNetwork(ctx context.Context, repo ports.NetworkRepository, userID, networkID string) (*aggregates.SignalingNetwork, error) {
	id, err := valueobjects.NewNetworkIDFromString(networkID)
	if err != nil {
		return nil, fmt.Errorf("invalid network ID: %w", err)
	}

	network, err := repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get network: %w", err)
	}

	if network.UserID() != userID {
		return nil, errors.NewUnauthorizedError("network does not belong to user")
	}
	return network, nil
}

// toMatrixDTO flattens a signaling matrix for transport
func toMatrixDTO(m *analysis.SignalingMatrix) queries.MatrixDTO {
	rowKeys := m.Rows()
	colKeys := m.Cols()

	rows := make([]string, len(rowKeys))
	for i, k := range rowKeys {
		rows[i] = k.String()
	}
	cols := make([]string, len(colKeys))
	for j, k := range colKeys {
		cols[j] = k.String()
	}

	return queries.MatrixDTO{Rows: rows, Cols: cols, Data: m.Data()}
}

// toGraphResult converts a graph and its layout for transport
func toGraphResult(networkID string, g *analysis.Graph, positions map[string]analysis.Position) queries.GraphResult {
	result := queries.GraphResult{
		NetworkID: networkID,
		Nodes:     make([]queries.GraphNodeDTO, 0, g.NodeCount()),
		Edges:     make([]queries.GraphEdgeDTO, 0, g.EdgeCount()),
	}

	for _, node := range g.Nodes() {
		pos := positions[node.ID]
		result.Nodes = append(result.Nodes, queries.GraphNodeDTO{
			ID:    node.ID,
			Class: string(node.Class),
			Color: node.Color,
			Size:  node.Size,
			X:     pos.X,
			Y:     pos.Y,
		})
	}

	for _, edge := range g.Edges() {
		result.Edges = append(result.Edges, queries.GraphEdgeDTO{
			Source: edge.Source,
			Target: edge.Target,
			Weight: edge.Weight,
			Color:  edge.Color,
		})
	}

	return result
}

// transformOptions builds matrix transform options from query fields,
// falling back to the open-interval defaults
func transformOptions(minThresh, maxThresh *float64, scale, normalize string) analysis.TransformOptions {
	opts := analysis.DefaultTransformOptions()
	if minThresh != nil {
		opts.MinThresh = *minThresh
	}
	if maxThresh != nil {
		opts.MaxThresh = *maxThresh
	}
	if scale != "" {
		opts.Scale = analysis.ScaleMode(scale)
	}
	if normalize != "" {
		opts.Normalize = analysis.NormalizeMode(normalize)
	}
	return opts
}

// layoutMode resolves the requested layout, defaulting to grid
func layoutMode(layout string) analysis.LayoutMode {
	if layout == "" {
		return analysis.LayoutGrid
	}
	return analysis.LayoutMode(layout)
}
