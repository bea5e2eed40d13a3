package handlers

import (
	"context"
	"math"
	"testing"

	"crosstalk/application/queries"
	"crosstalk/tests/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestGetClusterGraphHandler_Handle_RendersGraph(t *testing.T) {
	// Arrange
	ctx := context.Background()
	network := fixtureNetwork(t)
	repo := new(mocks.MockNetworkRepository)
	repo.On("GetByID", ctx, network.ID()).Return(network, nil)

	handler := NewGetClusterGraphHandler(repo, zap.NewNop())

	// Act
	result, err := handler.Handle(ctx, queries.GetClusterGraphQuery{
		UserID:    fixtureUserID,
		NetworkID: network.ID().String(),
		Layout:    "circle",
	})

	// Assert
	require.NoError(t, err)
	require.Len(t, result.Nodes, 2)
	require.Len(t, result.Edges, 1)

	// Signal flows from the ligand cluster to the receptor cluster
	edge := result.Edges[0]
	assert.Equal(t, "B", edge.Source)
	assert.Equal(t, "A", edge.Target)
	assert.InDelta(t, 4*0.3, edge.Weight, 1e-12)

	for _, node := range result.Nodes {
		assert.InDelta(t, 1.0, math.Hypot(node.X, node.Y), 1e-9)
	}
}

func TestGetClusterGraphHandler_Handle_SquareScaleAdmitted(t *testing.T) {
	// Arrange
	ctx := context.Background()
	network := fixtureNetwork(t)
	repo := new(mocks.MockNetworkRepository)
	repo.On("GetByID", ctx, network.ID()).Return(network, nil)

	handler := NewGetClusterGraphHandler(repo, zap.NewNop())
	edgeWeight := 1.0

	// Act
	result, err := handler.Handle(ctx, queries.GetClusterGraphQuery{
		UserID:     fixtureUserID,
		NetworkID:  network.ID().String(),
		Scale:      "sq",
		EdgeWeight: &edgeWeight,
	})

	// Assert
	require.NoError(t, err)
	require.Len(t, result.Edges, 1)
	assert.InDelta(t, 16.0, result.Edges[0].Weight, 1e-12)
}

func TestGetClusterGraphHandler_Handle_NodeSizingFromColumnSums(t *testing.T) {
	// Arrange
	ctx := context.Background()
	network := fixtureNetwork(t)
	repo := new(mocks.MockNetworkRepository)
	repo.On("GetByID", ctx, network.ID()).Return(network, nil)

	handler := NewGetClusterGraphHandler(repo, zap.NewNop())
	vertScale := 2.0

	// Act
	result, err := handler.Handle(ctx, queries.GetClusterGraphQuery{
		UserID:    fixtureUserID,
		NetworkID: network.ID().String(),
		ScaleBy:   "lig_sig",
		VertScale: &vertScale,
	})

	// Assert
	require.NoError(t, err)
	sizes := make(map[string]float64, len(result.Nodes))
	for _, node := range result.Nodes {
		sizes[node.ID] = node.Size
	}
	// Outgoing ligand signal: column L_A sums to 0, column L_B to 4
	assert.InDelta(t, 0.0, sizes["A"], 1e-12)
	assert.InDelta(t, math.Asinh(4)*2, sizes["B"], 1e-12)
}

func TestGetClusterGraphHandler_Handle_UnknownLayout(t *testing.T) {
	ctx := context.Background()
	network := fixtureNetwork(t)
	repo := new(mocks.MockNetworkRepository)
	repo.On("GetByID", ctx, network.ID()).Return(network, nil)

	handler := NewGetClusterGraphHandler(repo, zap.NewNop())

	_, err := handler.Handle(ctx, queries.GetClusterGraphQuery{
		UserID:    fixtureUserID,
		NetworkID: network.ID().String(),
		Layout:    "spiral",
	})

	assert.Error(t, err)
}
