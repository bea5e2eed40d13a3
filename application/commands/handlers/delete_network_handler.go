package handlers

import (
	"context"
	"fmt"
	"time"

	"crosstalk/application/commands"
	"crosstalk/application/ports"
	"crosstalk/domain/core/valueobjects"
	"crosstalk/domain/events"
	"crosstalk/pkg/errors"
	"go.uber.org/zap"
)

// DeleteNetworkHandler handles network deletion commands
type DeleteNetworkHandler struct {
	networkRepo ports.NetworkRepository
	publisher   ports.EventPublisher
	logger      *zap.Logger
}

// NewDeleteNetworkHandler creates a new delete handler
func NewDeleteNetworkHandler(
	networkRepo ports.NetworkRepository,
	publisher ports.EventPublisher,
	logger *zap.Logger,
) *DeleteNetworkHandler {
	return &DeleteNetworkHandler{
		networkRepo: networkRepo,
		publisher:   publisher,
		logger:      logger,
	}
}

// Handle executes the delete network command
func (h *DeleteNetworkHandler) Handle(ctx context.Context, cmd commands.DeleteNetworkCommand) error {
	if err := cmd.Validate(); err != nil {
		return fmt.Errorf("invalid command: %w", err)
	}

	networkID, err := valueobjects.NewNetworkIDFromString(cmd.NetworkID)
	if err != nil {
		return fmt.Errorf("invalid network ID: %w", err)
	}

	network, err := h.networkRepo.GetByID(ctx, networkID)
	if err != nil {
		return fmt.Errorf("failed to get network: %w", err)
	}

	if network.UserID() != cmd.UserID {
		return errors.NewUnauthorizedError("network does not belong to user")
	}

	if err := h.networkRepo.Delete(ctx, networkID); err != nil {
		return fmt.Errorf("failed to delete network: %w", err)
	}

	event := events.NewNetworkDeleted(networkID, cmd.UserID, time.Now())
	if err := h.publisher.Publish(ctx, event); err != nil {
		// Deletion already committed, cleanup runs off the event
		h.logger.Warn("Failed to publish deletion event", zap.Error(err))
	}

	h.logger.Info("Network deleted",
		zap.String("networkID", cmd.NetworkID),
		zap.String("userID", cmd.UserID),
	)

	return nil
}
