// Package main implements the ws-notify Lambda. EventBridge routes
// network lifecycle events here, and the handler pushes them to the
// owning user's active WebSocket connections.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	awsevents "github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"go.uber.org/zap"

	"crosstalk/application/services"
	"crosstalk/domain/events"
	"crosstalk/infrastructure/config"
	"crosstalk/infrastructure/messaging/apigateway"
	dynamopersistence "crosstalk/infrastructure/persistence/dynamodb"
)

// Global dependencies for Lambda performance optimization
var (
	notifications *services.NotificationService
	logger        *zap.Logger
)

func init() {
	ctx := context.Background()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err = zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		log.Fatalf("Failed to load AWS config: %v", err)
	}

	client := awsdynamodb.NewFromConfig(awsCfg)
	connections := dynamopersistence.NewConnectionRepository(client, cfg.ConnectionsTable, logger)
	notifier := apigateway.NewNotifier(awsCfg, cfg.WebSocketEndpoint, logger)

	notifications = services.NewNotificationService(connections, notifier, logger)

	logger.Info("ws-notify handler initialized",
		zap.String("websocket_endpoint", cfg.WebSocketEndpoint),
	)
}

// eventDetail is the shared shape of the lifecycle events we relay
type eventDetail struct {
	AggregateID string `json:"aggregate_id"`
	UserID      string `json:"user_id"`
	Name        string `json:"name"`
	DatasetName string `json:"dataset_name"`
	Reasons     []string `json:"reasons"`
}

// handler relays one EventBridge event to its user's connections
func handler(ctx context.Context, event awsevents.CloudWatchEvent) error {
	var detail eventDetail
	if err := json.Unmarshal(event.Detail, &detail); err != nil {
		return fmt.Errorf("failed to parse event detail: %w", err)
	}

	if detail.UserID == "" {
		logger.Warn("Event without user ID, nothing to notify",
			zap.String("detail_type", event.DetailType),
		)
		return nil
	}

	n := services.Notification{
		Type:      event.DetailType,
		NetworkID: detail.AggregateID,
		Name:      detail.Name,
		Timestamp: time.Now(),
	}

	switch event.DetailType {
	case events.EventTypeDatasetRejected:
		n.NetworkID = ""
		n.Name = detail.DatasetName
		if len(detail.Reasons) > 0 {
			n.Detail = strings.Join(detail.Reasons, "; ")
		}
	case events.EventTypeNetworkBuilt, events.EventTypeClustersRenamed, events.EventTypeNetworkDeleted:
		// Standard shape
	default:
		logger.Debug("Ignoring unrecognized event type",
			zap.String("detail_type", event.DetailType),
		)
		return nil
	}

	reached, err := notifications.NotifyUser(ctx, detail.UserID, n)
	if err != nil {
		logger.Error("Failed to notify user",
			zap.String("user_id", detail.UserID),
			zap.String("detail_type", event.DetailType),
			zap.Error(err),
		)
		return err
	}

	logger.Info("Notification delivered",
		zap.String("user_id", detail.UserID),
		zap.String("detail_type", event.DetailType),
		zap.Int("connections_reached", reached),
	)

	return nil
}

func main() {
	lambda.Start(handler)
}
