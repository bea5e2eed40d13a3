package handlers

import (
	"context"
	"fmt"
	"time"

	"crosstalk/application/commands"
	"crosstalk/application/ports"
	"crosstalk/domain/core/valueobjects"
	"crosstalk/domain/events"
	"go.uber.org/zap"
)

// BulkDeleteNetworksHandler handles bulk delete commands. Deletions are
// independent single-item operations, so partial success is reported
// rather than rolled back.
type BulkDeleteNetworksHandler struct {
	networkRepo ports.NetworkRepository
	publisher   ports.EventPublisher
	logger      *zap.Logger
}

// NewBulkDeleteNetworksHandler creates a new bulk delete handler
func NewBulkDeleteNetworksHandler(
	networkRepo ports.NetworkRepository,
	publisher ports.EventPublisher,
	logger *zap.Logger,
) *BulkDeleteNetworksHandler {
	return &BulkDeleteNetworksHandler{
		networkRepo: networkRepo,
		publisher:   publisher,
		logger:      logger,
	}
}

// Handle executes the bulk delete command
func (h *BulkDeleteNetworksHandler) Handle(ctx context.Context, cmd commands.BulkDeleteNetworksCommand) (*commands.BulkDeleteNetworksResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, fmt.Errorf("invalid command: %w", err)
	}

	result := &commands.BulkDeleteNetworksResult{}
	deletedEvents := make([]events.DomainEvent, 0, len(cmd.NetworkIDs))

	for _, idStr := range cmd.NetworkIDs {
		networkID, err := valueobjects.NewNetworkIDFromString(idStr)
		if err != nil {
			result.FailedIDs = append(result.FailedIDs, idStr)
			result.Errors = append(result.Errors, fmt.Sprintf("invalid network ID %s", idStr))
			continue
		}

		network, err := h.networkRepo.GetByID(ctx, networkID)
		if err != nil {
			result.FailedIDs = append(result.FailedIDs, idStr)
			result.Errors = append(result.Errors, fmt.Sprintf("network %s not found: %v", idStr, err))
			continue
		}

		if network.UserID() != cmd.UserID {
			result.FailedIDs = append(result.FailedIDs, idStr)
			result.Errors = append(result.Errors, fmt.Sprintf("network %s does not belong to user", idStr))
			continue
		}

		if err := h.networkRepo.Delete(ctx, networkID); err != nil {
			result.FailedIDs = append(result.FailedIDs, idStr)
			result.Errors = append(result.Errors, fmt.Sprintf("failed to delete network %s: %v", idStr, err))
			continue
		}

		result.DeletedCount++
		deletedEvents = append(deletedEvents, events.NewNetworkDeleted(networkID, cmd.UserID, time.Now()))
	}

	if len(deletedEvents) > 0 {
		if err := h.publisher.PublishBatch(ctx, deletedEvents); err != nil {
			h.logger.Warn("Failed to publish deletion events",
				zap.Int("eventCount", len(deletedEvents)),
				zap.Error(err),
			)
		}
	}

	h.logger.Info("Bulk delete completed",
		zap.String("userID", cmd.UserID),
		zap.Int("requested", len(cmd.NetworkIDs)),
		zap.Int("deleted", result.DeletedCount),
		zap.Int("failed", len(result.FailedIDs)),
	)

	return result, nil
}
