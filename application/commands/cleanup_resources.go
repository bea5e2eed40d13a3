package commands

import (
	"context"
	"fmt"

	"crosstalk/application/ports"
	"go.uber.org/zap"
)

// CleanupNetworkResourcesCommand represents a command to clean up
// resources after a network has been deleted
type CleanupNetworkResourcesCommand struct {
	NetworkID string
	UserID    string
}

// Validate validates the command
func (c *CleanupNetworkResourcesCommand) Validate() error {
	if c.NetworkID == "" {
		return fmt.Errorf("network ID is required")
	}
	if c.UserID == "" {
		return fmt.Errorf("user ID is required")
	}
	return nil
}

// CleanupNetworkResourcesHandler removes derived state left behind by a
// deleted network: its event history and any cached query results
type CleanupNetworkResourcesHandler struct {
	eventStore ports.EventStore
	cache      ports.Cache
	logger     *zap.Logger
}

// NewCleanupNetworkResourcesHandler creates a new cleanup handler
func NewCleanupNetworkResourcesHandler(
	eventStore ports.EventStore,
	cache ports.Cache,
	logger *zap.Logger,
) *CleanupNetworkResourcesHandler {
	return &CleanupNetworkResourcesHandler{
		eventStore: eventStore,
		cache:      cache,
		logger:     logger,
	}
}

// Handle executes the cleanup command
func (h *CleanupNetworkResourcesHandler) Handle(ctx context.Context, cmd interface{}) error {
	cleanupCmd, ok := cmd.(*CleanupNetworkResourcesCommand)
	if !ok {
		return fmt.Errorf("invalid command type")
	}

	if h.eventStore != nil {
		if err := h.eventStore.DeleteEvents(ctx, cleanupCmd.NetworkID); err != nil {
			h.logger.Warn("Failed to delete event history",
				zap.String("networkID", cleanupCmd.NetworkID),
				zap.Error(err),
			)
		}
	}

	if h.cache != nil {
		// Query cache keys embed the network ID, one per query shape
		for _, prefix := range []string{"network", "matrix", "cluster_graph", "gene_graph", "collation"} {
			key := fmt.Sprintf("%s:%s", prefix, cleanupCmd.NetworkID)
			if err := h.cache.Delete(ctx, key); err != nil {
				h.logger.Debug("Cache invalidation failed",
					zap.String("key", key),
					zap.Error(err),
				)
			}
		}
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	h.logger.Info("Cleaned up network resources",
		zap.String("networkID", cleanupCmd.NetworkID),
		zap.String("userID", cleanupCmd.UserID),
	)
	return nil
}
