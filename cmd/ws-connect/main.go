// Package main implements the WebSocket $connect/$disconnect Lambda
// handler. Clients subscribe here to receive build lifecycle events
// pushed by the ws-notify function.
package main

import (
	"context"
	"log"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"go.uber.org/zap"

	"crosstalk/application/ports"
	"crosstalk/infrastructure/config"
	dynamopersistence "crosstalk/infrastructure/persistence/dynamodb"
	"crosstalk/pkg/auth"
)

// Connections outlive a build by a wide margin; stale records are
// swept by DynamoDB TTL.
const connectionTTL = 24 * time.Hour

// Global dependencies for Lambda performance optimization
var (
	connections ports.ConnectionRepository
	validator   *auth.JWTValidator
	logger      *zap.Logger
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
	connections = dynamopersistence.NewConnectionRepository(client, cfg.ConnectionsTable, logger)

	validator, err = auth.NewJWTValidator(auth.JWTConfig{
		SigningMethod: "HS256",
		SecretKey:     cfg.JWTSecret,
		Issuer:        cfg.JWTIssuer,
		Audience:      []string{"crosstalk-api"},
	})
	if err != nil {
		log.Fatalf("Failed to create JWT validator: %v", err)
	}

	logger.Info("WebSocket connect handler initialized")
}

// handler processes $connect and $disconnect route events
func handler(ctx context.Context, request events.APIGatewayWebsocketProxyRequest) (events.APIGatewayProxyResponse, error) {
	switch request.RequestContext.RouteKey {
	case "$connect":
		return handleConnect(ctx, request)
	case "$disconnect":
		return handleDisconnect(ctx, request)
	default:
		return events.APIGatewayProxyResponse{StatusCode: 400, Body: "unsupported route"}, nil
	}
}

func handleConnect(ctx context.Context, request events.APIGatewayWebsocketProxyRequest) (events.APIGatewayProxyResponse, error) {
	connectionID := request.RequestContext.ConnectionID

	// Browsers cannot set headers on WebSocket upgrade, so the token
	// arrives as a query parameter.
	token := request.QueryStringParameters["token"]
	if token == "" {
		logger.Warn("Connection attempt without token",
			zap.String("connection_id", connectionID),
		)
		return events.APIGatewayProxyResponse{StatusCode: 401, Body: "missing token"}, nil
	}

	claims, err := validator.ValidateToken(token)
	if err != nil {
		logger.Warn("Connection attempt with invalid token",
			zap.String("connection_id", connectionID),
			zap.Error(err),
		)
		return events.APIGatewayProxyResponse{StatusCode: 401, Body: "invalid token"}, nil
	}

	now := time.Now()
	conn := ports.Connection{
		ConnectionID: connectionID,
		UserID:       claims.UserID,
		Endpoint:     request.RequestContext.DomainName + "/" + request.RequestContext.Stage,
		ConnectedAt:  now,
		ExpiresAt:    now.Add(connectionTTL),
	}

	if err := connections.Save(ctx, conn); err != nil {
		logger.Error("Failed to store connection",
			zap.String("connection_id", connectionID),
			zap.String("user_id", claims.UserID),
			zap.Error(err),
		)
		return events.APIGatewayProxyResponse{StatusCode: 500, Body: "failed to register connection"}, nil
	}

	logger.Info("Connection established",
		zap.String("connection_id", connectionID),
		zap.String("user_id", claims.UserID),
	)

	return events.APIGatewayProxyResponse{StatusCode: 200, Body: "connected"}, nil
}

func handleDisconnect(ctx context.Context, request events.APIGatewayWebsocketProxyRequest) (events.APIGatewayProxyResponse, error) {
	connectionID := request.RequestContext.ConnectionID

	if err := connections.Delete(ctx, connectionID); err != nil {
		// The TTL sweep will reclaim it; disconnect still succeeds.
		logger.Warn("Failed to delete connection record",
			zap.String("connection_id", connectionID),
			zap.Error(err),
		)
	}

	logger.Info("Connection closed", zap.String("connection_id", connectionID))
	return events.APIGatewayProxyResponse{StatusCode: 200, Body: "disconnected"}, nil
}

func main() {
	lambda.Start(handler)
}
