package handlers

import (
	"context"
	"errors"
	"testing"

	"crosstalk/application/queries"
	pkgerrors "crosstalk/pkg/errors"
	"crosstalk/tests/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestGetSignalingMatrixHandler_Handle_Untransformed(t *testing.T) {
	// Arrange
	ctx := context.Background()
	network := fixtureNetwork(t)
	repo := new(mocks.MockNetworkRepository)
	repo.On("GetByID", ctx, network.ID()).Return(network, nil)

	handler := NewGetSignalingMatrixHandler(repo, zap.NewNop())

	// Act
	result, err := handler.Handle(ctx, queries.GetSignalingMatrixQuery{
		UserID:    fixtureUserID,
		NetworkID: network.ID().String(),
	})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, []string{"R_A", "R_B"}, result.Matrix.Rows)
	assert.Equal(t, []string{"L_A", "L_B"}, result.Matrix.Cols)
	assert.Equal(t, 4.0, result.Matrix.Data[0][1])
	assert.Equal(t, "none", result.Scale)
	assert.Equal(t, "none", result.Normalize)
}

func TestGetSignalingMatrixHandler_Handle_SqrtScale(t *testing.T) {
	// Arrange
	ctx := context.Background()
	network := fixtureNetwork(t)
	repo := new(mocks.MockNetworkRepository)
	repo.On("GetByID", ctx, network.ID()).Return(network, nil)

	handler := NewGetSignalingMatrixHandler(repo, zap.NewNop())

	// Act
	result, err := handler.Handle(ctx, queries.GetSignalingMatrixQuery{
		UserID:    fixtureUserID,
		NetworkID: network.ID().String(),
		Scale:     "sqrt",
	})

	// Assert
	require.NoError(t, err)
	assert.InDelta(t, 2.0, result.Matrix.Data[0][1], 1e-12)
}

func TestGetSignalingMatrixHandler_Handle_SquareScaleRejected(t *testing.T) {
	// The square scale exists only for cluster graph rendering
	ctx := context.Background()
	network := fixtureNetwork(t)
	repo := new(mocks.MockNetworkRepository)
	repo.On("GetByID", ctx, network.ID()).Return(network, nil)

	handler := NewGetSignalingMatrixHandler(repo, zap.NewNop())

	_, err := handler.Handle(ctx, queries.GetSignalingMatrixQuery{
		UserID:    fixtureUserID,
		NetworkID: network.ID().String(),
		Scale:     "sq",
	})

	assert.True(t, pkgerrors.IsConfigError(err))
}

func TestGetSignalingMatrixHandler_Handle_OtherUsersNetwork(t *testing.T) {
	ctx := context.Background()
	network := fixtureNetwork(t)
	repo := new(mocks.MockNetworkRepository)
	repo.On("GetByID", ctx, network.ID()).Return(network, nil)

	handler := NewGetSignalingMatrixHandler(repo, zap.NewNop())

	_, err := handler.Handle(ctx, queries.GetSignalingMatrixQuery{
		UserID:    "intruder",
		NetworkID: network.ID().String(),
	})

	assert.True(t, pkgerrors.IsType(err, pkgerrors.ErrorTypeUnauthorized))
}

func TestGetSignalingMatrixHandler_Handle_BadNetworkID(t *testing.T) {
	handler := NewGetSignalingMatrixHandler(new(mocks.MockNetworkRepository), zap.NewNop())

	_, err := handler.Handle(context.Background(), queries.GetSignalingMatrixQuery{
		UserID:    fixtureUserID,
		NetworkID: "not-a-uuid",
	})

	assert.Error(t, err)
}

func TestGetSignalingMatrixHandler_Handle_RepositoryError(t *testing.T) {
	ctx := context.Background()
	network := fixtureNetwork(t)
	repo := new(mocks.MockNetworkRepository)
	repo.On("GetByID", ctx, network.ID()).Return(nil, errors.New("table offline"))

	handler := NewGetSignalingMatrixHandler(repo, zap.NewNop())

	_, err := handler.Handle(ctx, queries.GetSignalingMatrixQuery{
		UserID:    fixtureUserID,
		NetworkID: network.ID().String(),
	})

	assert.ErrorContains(t, err, "table offline")
}
