package handlers

import (
	"context"
	"fmt"

	"crosstalk/application/commands"
	"crosstalk/application/ports"
	"crosstalk/domain/core/valueobjects"
	"crosstalk/domain/versioning"
	"crosstalk/pkg/errors"
	"go.uber.org/zap"
)

// RenameClustersHandler handles cluster rename commands
type RenameClustersHandler struct {
	networkRepo ports.NetworkRepository
	eventStore  ports.EventStore
	publisher   ports.EventPublisher
	versioning  *versioning.VersioningService
	logger      *zap.Logger
}

// NewRenameClustersHandler creates a new rename handler
func NewRenameClustersHandler(
	networkRepo ports.NetworkRepository,
	eventStore ports.EventStore,
	publisher ports.EventPublisher,
	versioningService *versioning.VersioningService,
	logger *zap.Logger,
) *RenameClustersHandler {
	return &RenameClustersHandler{
		networkRepo: networkRepo,
		eventStore:  eventStore,
		publisher:   publisher,
		versioning:  versioningService,
		logger:      logger,
	}
}

// Handle executes the rename clusters command
func (h *RenameClustersHandler) Handle(ctx context.Context, cmd commands.RenameClustersCommand) error {
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

	if err := network.RenameClusters(cmd.Renames); err != nil {
		return err
	}

	if err := h.networkRepo.Save(ctx, network); err != nil {
		return fmt.Errorf("failed to save network: %w", err)
	}

	evts := network.DomainEvents()
	if len(evts) > 0 {
		if err := h.eventStore.SaveEvents(ctx, network.ID().String(), evts); err != nil {
			h.logger.Warn("Failed to store domain events", zap.Error(err))
		}
		if err := h.publisher.PublishBatch(ctx, evts); err != nil {
			h.logger.Warn("Failed to publish events", zap.Error(err))
		} else {
			network.ClearEvents()
		}
	}

	logFields := []zap.Field{
		zap.String("networkID", cmd.NetworkID),
		zap.String("userID", cmd.UserID),
		zap.Int("renames", len(cmd.Renames)),
	}
	if h.versioning != nil {
		record, verErr := h.versioning.CreateVersion(network, cmd.UserID, "cluster rename")
		if verErr != nil {
			h.logger.Warn("Failed to record network version", zap.Error(verErr))
		} else {
			logFields = append(logFields,
				zap.Int("version", record.Version),
				zap.String("checksum", record.Checksum),
			)
		}
	}

	h.logger.Info("Clusters renamed", logFields...)

	return nil
}
