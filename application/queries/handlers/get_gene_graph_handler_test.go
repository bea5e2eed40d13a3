package handlers

import (
	"context"
	"testing"

	"crosstalk/application/queries"
	"crosstalk/tests/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestGetGeneGraphHandler_Handle_GridColumns(t *testing.T) {
	// Arrange
	ctx := context.Background()
	network := fixtureNetwork(t)
	repo := new(mocks.MockNetworkRepository)
	repo.On("GetByID", ctx, network.ID()).Return(network, nil)

	handler := NewGetGeneGraphHandler(repo, zap.NewNop())

	// Act
	result, err := handler.Handle(ctx, queries.GetGeneGraphQuery{
		UserID:    fixtureUserID,
		NetworkID: network.ID().String(),
	})

	// Assert
	require.NoError(t, err)
	require.Len(t, result.Nodes, 3)

	nodes := make(map[string]queries.GraphNodeDTO, len(result.Nodes))
	for _, node := range result.Nodes {
		nodes[node.ID] = node
	}
	assert.Equal(t, "ligand", nodes["lig1"].Class)
	assert.Equal(t, "receptor", nodes["rec1"].Class)
	assert.Equal(t, "feature", nodes["tf1"].Class)

	// One node per column sits on the column axis
	assert.InDelta(t, -0.75, nodes["lig1"].X, 1e-12)
	assert.InDelta(t, 0.0, nodes["rec1"].X, 1e-12)
	assert.InDelta(t, 0.75, nodes["tf1"].X, 1e-12)
	assert.InDelta(t, 0.0, nodes["lig1"].Y, 1e-12)

	require.Len(t, result.Edges, 2)
	edges := make(map[string]string, len(result.Edges))
	for _, edge := range result.Edges {
		edges[edge.Source] = edge.Target
	}
	assert.Equal(t, "tf1", edges["rec1"])
	assert.Equal(t, "rec1", edges["lig1"])
}

func TestGetGeneGraphHandler_Handle_EmptySelection(t *testing.T) {
	ctx := context.Background()
	network := fixtureNetwork(t)
	repo := new(mocks.MockNetworkRepository)
	repo.On("GetByID", ctx, network.ID()).Return(network, nil)

	handler := NewGetGeneGraphHandler(repo, zap.NewNop())

	result, err := handler.Handle(ctx, queries.GetGeneGraphQuery{
		UserID:    fixtureUserID,
		NetworkID: network.ID().String(),
		Clusters:  []string{},
	})

	require.NoError(t, err)
	assert.Empty(t, result.Nodes)
	assert.Empty(t, result.Edges)
}
