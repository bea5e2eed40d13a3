package handlers

import (
	"context"
	"testing"

	"crosstalk/application/queries"
	"crosstalk/domain/analysis"
	"crosstalk/domain/core/aggregates"
	"crosstalk/tests/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const fixtureUserID = "user-123"

// fixtureNetwork builds a two cluster network where cluster A receives
// signal from ligands expressed in cluster B, shared by the handler
// tests in this package.
func fixtureNetwork(t *testing.T) *aggregates.SignalingNetwork {
	t.Helper()

	matrix := analysis.NewSignalingMatrix([]string{"A", "B"})
	matrix.Set(0, 1, 4)

	linkage := analysis.NewLinkageIndex()
	linkage.LinkClusterTFs("A", "tf1")
	linkage.LinkTFReceptors("tf1", "rec1")
	linkage.LinkReceptorLigands("rec1", "lig1")

	network, err := aggregates.NewSignalingNetwork(fixtureUserID, "tumor-map", &analysis.BuildResult{
		Matrix:  matrix,
		Linkage: linkage,
		Genes:   []string{"rec1", "lig1"},
		LigandSums: map[string]map[string]float64{
			"A": {"lig1": 1},
			"B": {"lig1": 12},
		},
	}, []string{"A", "B"}, map[string]string{"A": "#ff0000"})
	require.NoError(t, err)
	network.ClearEvents()
	return network
}

func TestGetNetworkHandler_Handle_Success(t *testing.T) {
	// Arrange
	ctx := context.Background()
	network := fixtureNetwork(t)
	repo := new(mocks.MockNetworkRepository)
	cache := new(mocks.MockCache)

	repo.On("GetByID", ctx, network.ID()).Return(network, nil)
	cache.On("Get", ctx, "network:"+network.ID().String()).Return(nil, false)
	cache.On("Set", ctx, "network:"+network.ID().String(), mock.Anything, 300).Return(nil)

	handler := NewGetNetworkHandler(repo, cache, zap.NewNop())

	// Act
	result, err := handler.Handle(ctx, queries.GetNetworkQuery{
		UserID:    fixtureUserID,
		NetworkID: network.ID().String(),
	})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "tumor-map", result.Name)
	assert.Equal(t, []string{"A", "B"}, result.Clusters)
	assert.Equal(t, []string{"rec1", "lig1"}, result.Genes)
	assert.Equal(t, []string{"R_A", "R_B"}, result.Matrix.Rows)
	assert.Equal(t, []string{"L_A", "L_B"}, result.Matrix.Cols)
	assert.Equal(t, 4.0, result.Matrix.Data[0][1])
	assert.Equal(t, []string{"tf1"}, result.Linkage.ClusterTFs["A"])
	assert.Equal(t, []string{"rec1"}, result.Linkage.TFReceptors["tf1"])
	assert.Equal(t, []string{"lig1"}, result.Linkage.ReceptorLigands["rec1"])
	cache.AssertExpectations(t)
}

func TestGetNetworkHandler_Handle_CacheHitSkipsRepository(t *testing.T) {
	// Arrange
	ctx := context.Background()
	repo := new(mocks.MockNetworkRepository)
	cache := new(mocks.MockCache)

	network := fixtureNetwork(t)
	cached := &queries.GetNetworkResult{
		ID:     network.ID().String(),
		UserID: fixtureUserID,
		Name:   "tumor-map",
	}
	cache.On("Get", ctx, "network:"+network.ID().String()).Return(cached, true)

	handler := NewGetNetworkHandler(repo, cache, zap.NewNop())

	// Act
	result, err := handler.Handle(ctx, queries.GetNetworkQuery{
		UserID:    fixtureUserID,
		NetworkID: network.ID().String(),
	})

	// Assert
	require.NoError(t, err)
	assert.Same(t, cached, result)
	repo.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
}

func TestGetNetworkHandler_Handle_CacheHitForOtherUserIgnored(t *testing.T) {
	// Arrange
	ctx := context.Background()
	network := fixtureNetwork(t)
	repo := new(mocks.MockNetworkRepository)
	cache := new(mocks.MockCache)

	cached := &queries.GetNetworkResult{
		ID:     network.ID().String(),
		UserID: "someone-else",
	}
	cache.On("Get", ctx, "network:"+network.ID().String()).Return(cached, true)
	cache.On("Set", ctx, mock.Anything, mock.Anything, 300).Return(nil)
	repo.On("GetByID", ctx, network.ID()).Return(network, nil)

	handler := NewGetNetworkHandler(repo, cache, zap.NewNop())

	// Act
	result, err := handler.Handle(ctx, queries.GetNetworkQuery{
		UserID:    fixtureUserID,
		NetworkID: network.ID().String(),
	})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, fixtureUserID, result.UserID)
	repo.AssertCalled(t, "GetByID", ctx, network.ID())
}

func TestGetNetworkHandler_Handle_InvalidQuery(t *testing.T) {
	handler := NewGetNetworkHandler(new(mocks.MockNetworkRepository), nil, zap.NewNop())

	_, err := handler.Handle(context.Background(), queries.GetNetworkQuery{NetworkID: "abc"})

	assert.Error(t, err)
}
