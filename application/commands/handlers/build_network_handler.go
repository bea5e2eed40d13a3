package handlers

import (
	"context"
	"fmt"
	"time"

	"crosstalk/application/commands"
	"crosstalk/application/ports"
	"crosstalk/application/sagas"
	"crosstalk/domain/analysis"
	"crosstalk/domain/core/aggregates"
	"crosstalk/domain/core/entities"
	"crosstalk/domain/core/validators"
	"crosstalk/domain/events"
	"go.uber.org/zap"
)

// BuildNetworkHandler orchestrates network construction: dataset
// assembly and validation, the build itself, persistence, and event
// publication. Builds are serialized per user with a distributed lock
// so concurrent submissions don't thrash the table.
type BuildNetworkHandler struct {
	saga      *sagas.BuildNetworkSaga
	publisher ports.EventPublisher
	lock      ports.DistributedLock
	validator *validators.DatasetValidator
	logger    *zap.Logger
}

// NewBuildNetworkHandler creates a new handler instance
func NewBuildNetworkHandler(
	saga *sagas.BuildNetworkSaga,
	publisher ports.EventPublisher,
	lock ports.DistributedLock,
	validator *validators.DatasetValidator,
	logger *zap.Logger,
) *BuildNetworkHandler {
	return &BuildNetworkHandler{
		saga:      saga,
		publisher: publisher,
		lock:      lock,
		validator: validator,
		logger:    logger,
	}
}

// Handle executes the build network command and returns the
// constructed network aggregate
func (h *BuildNetworkHandler) Handle(ctx context.Context, cmd commands.BuildNetworkCommand) (*aggregates.SignalingNetwork, error) {
	if err := cmd.Validate(); err != nil {
		return nil, fmt.Errorf("invalid command: %w", err)
	}

	dataset, err := h.assembleDataset(cmd)
	if err != nil {
		return nil, err
	}

	if reasons, err := h.validator.Validate(dataset); err != nil {
		rejected := events.NewDatasetRejected(cmd.Name, cmd.UserID, reasons, time.Now())
		if pubErr := h.publisher.Publish(ctx, rejected); pubErr != nil {
			h.logger.Warn("Failed to publish rejection event", zap.Error(pubErr))
		}
		return nil, err
	}

	release, err := h.lock.Acquire(ctx, fmt.Sprintf("network_build_%s", cmd.UserID), 5*time.Minute)
	if err != nil {
		return nil, fmt.Errorf("failed to acquire build lock: %w", err)
	}
	defer func() {
		if releaseErr := release(ctx); releaseErr != nil {
			h.logger.Error("Failed to release build lock",
				zap.String("userID", cmd.UserID),
				zap.Error(releaseErr),
			)
		}
	}()

	opts := h.buildOptions(cmd)
	result, err := analysis.BuildNetwork(dataset.BuildInput(), opts)
	if err != nil {
		return nil, err
	}

	if len(result.MissingReceptors) > 0 || len(result.MissingLigands) > 0 {
		h.logger.Info("Genes absent from expression data were skipped",
			zap.Strings("receptors", result.MissingReceptors),
			zap.Strings("ligands", result.MissingLigands),
		)
	}

	network, err := aggregates.NewSignalingNetwork(
		cmd.UserID,
		cmd.Name,
		result,
		dataset.Clusters().Levels(),
		cmd.Colors,
	)
	if err != nil {
		return nil, err
	}

	if err := h.saga.Persist(ctx, network); err != nil {
		return nil, err
	}

	h.logger.Info("Network built",
		zap.String("networkID", network.ID().String()),
		zap.String("userID", cmd.UserID),
		zap.Int("clusters", len(network.Levels())),
		zap.Int("genes", len(network.Genes())),
	)

	return network, nil
}

func (h *BuildNetworkHandler) assembleDataset(cmd commands.BuildNetworkCommand) (*entities.Dataset, error) {
	expression, err := analysis.NewExpressionMatrix(cmd.Genes, cmd.Cells, cmd.Expression)
	if err != nil {
		return nil, fmt.Errorf("invalid expression matrix: %w", err)
	}

	activities, err := analysis.NewExpressionMatrix(cmd.TFs, cmd.Cells, cmd.Activities)
	if err != nil {
		return nil, fmt.Errorf("invalid activity matrix: %w", err)
	}

	clusters, err := analysis.NewClusterAssignment(cmd.Cells, cmd.Clusters, cmd.ClusterOrder)
	if err != nil {
		return nil, fmt.Errorf("invalid cluster assignment: %w", err)
	}

	return entities.NewDataset(cmd.Name, cmd.UserID, expression, activities, clusters, cmd.ReceptorLigands)
}

func (h *BuildNetworkHandler) buildOptions(cmd commands.BuildNetworkCommand) analysis.BuildOptions {
	opts := analysis.DefaultBuildOptions()
	if cmd.MaxTFPValue != nil {
		opts.MaxTFPValue = *cmd.MaxTFPValue
	}
	if cmd.MinCorrelation != nil {
		opts.MinCorrelation = *cmd.MinCorrelation
	}
	if cmd.MaxTFsPerCluster != nil {
		opts.MaxTFsPerCluster = *cmd.MaxTFsPerCluster
	}
	if cmd.MaxReceptorsPerTF != nil {
		opts.MaxReceptorsPerTF = *cmd.MaxReceptorsPerTF
	}
	return opts
}
