package di

import (
	"context"
	"fmt"
	"time"

	"crosstalk/application/commands"
	"crosstalk/application/commands/bus"
	commands_handlers "crosstalk/application/commands/handlers"
	"crosstalk/application/ports"
	"crosstalk/application/queries"
	querybus "crosstalk/application/queries/bus"
	queries_handlers "crosstalk/application/queries/handlers"
	"crosstalk/application/sagas"
	"crosstalk/domain/core/validators"
	"crosstalk/domain/versioning"
	"crosstalk/infrastructure/config"
	"crosstalk/infrastructure/messaging/eventbridge"
	"crosstalk/infrastructure/persistence/dynamodb"
	"crosstalk/pkg/auth"
	"crosstalk/pkg/observability"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awscloudwatch "github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	awseventbridge "github.com/aws/aws-sdk-go-v2/service/eventbridge"
	"go.uber.org/zap"
)

// ProvideLogger creates a new logger instance
func ProvideLogger(cfg *config.Config) (*zap.Logger, error) {
	if cfg.Environment == "production" {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}

// ProvideAWSConfig creates AWS configuration
func ProvideAWSConfig(ctx context.Context, cfg *config.Config) (aws.Config, error) {
	return awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.AWSRegion),
	)
}

// ProvideDynamoDBClient creates a DynamoDB client
func ProvideDynamoDBClient(awsCfg aws.Config) *awsdynamodb.Client {
	return awsdynamodb.NewFromConfig(awsCfg)
}

// ProvideEventBridgeClient creates an EventBridge client
func ProvideEventBridgeClient(awsCfg aws.Config) *awseventbridge.Client {
	return awseventbridge.NewFromConfig(awsCfg)
}

// ProvideCloudWatchClient creates a CloudWatch client
func ProvideCloudWatchClient(awsCfg aws.Config) *awscloudwatch.Client {
	return awscloudwatch.NewFromConfig(awsCfg)
}

// ProvideNetworkRepository creates a network repository
func ProvideNetworkRepository(client *awsdynamodb.Client, cfg *config.Config, logger *zap.Logger) ports.NetworkRepository {
	return dynamodb.NewNetworkRepository(
		client,
		cfg.DynamoDBTable,
		cfg.IndexName,
		logger,
	)
}

// ProvideConnectionRepository creates a WebSocket connection repository
func ProvideConnectionRepository(client *awsdynamodb.Client, cfg *config.Config, logger *zap.Logger) ports.ConnectionRepository {
	return dynamodb.NewConnectionRepository(
		client,
		cfg.ConnectionsTable,
		logger,
	)
}

// ProvideEventPublisher creates an EventBridge-backed event publisher
func ProvideEventPublisher(client *awseventbridge.Client, cfg *config.Config, logger *zap.Logger) ports.EventPublisher {
	return eventbridge.NewPublisher(
		client,
		cfg.EventBusName,
		logger,
	)
}

// ProvideEventStore creates an event store
func ProvideEventStore(client *awsdynamodb.Client, cfg *config.Config) *dynamodb.EventStore {
	return dynamodb.NewEventStore(client, cfg.DynamoDBTable)
}

// ProvideEventStorePort exposes the event store through its port
func ProvideEventStorePort(store *dynamodb.EventStore) ports.EventStore {
	return store
}

// ProvideOutboxProcessor creates the background outbox processor
func ProvideOutboxProcessor(store *dynamodb.EventStore, publisher ports.EventPublisher, logger *zap.Logger) *dynamodb.OutboxProcessor {
	return dynamodb.NewOutboxProcessor(store, publisher, logger)
}

// ProvideMetrics creates metrics instance
func ProvideMetrics(client *awscloudwatch.Client, cfg *config.Config) *observability.Metrics {
	namespace := fmt.Sprintf("Crosstalk/%s", cfg.Environment)
	return observability.NewMetrics(namespace, client)
}

// ProvideDistributedRateLimiter creates a distributed rate limiter
func ProvideDistributedRateLimiter(client *awsdynamodb.Client, cfg *config.Config) *auth.DistributedRateLimiter {
	return auth.NewDistributedRateLimiter(
		client,
		cfg.DynamoDBTable,
		100,           // 100 requests
		1*time.Minute, // per minute
		"USER",
	)
}

// ProvideDistributedLock creates a distributed lock instance
func ProvideDistributedLock(client *awsdynamodb.Client, cfg *config.Config, logger *zap.Logger) ports.DistributedLock {
	return dynamodb.NewDistributedLock(client, cfg.DynamoDBTable, logger)
}

// ProvideDatasetValidator creates the dataset validator
func ProvideDatasetValidator() *validators.DatasetValidator {
	return validators.NewDatasetValidator()
}

// ProvideBuildNetworkSaga creates the build persistence saga
func ProvideBuildNetworkSaga(
	networkRepo ports.NetworkRepository,
	eventStore ports.EventStore,
	publisher ports.EventPublisher,
	logger *zap.Logger,
) *sagas.BuildNetworkSaga {
	return sagas.NewBuildNetworkSaga(networkRepo, eventStore, publisher, logger)
}

// ProvideBuildNetworkHandler creates the build handler. It is exposed
// on the container directly because callers need the built network
// back, which the fire-and-forget command bus does not return.
func ProvideBuildNetworkHandler(
	saga *sagas.BuildNetworkSaga,
	publisher ports.EventPublisher,
	lock ports.DistributedLock,
	validator *validators.DatasetValidator,
	logger *zap.Logger,
) *commands_handlers.BuildNetworkHandler {
	return commands_handlers.NewBuildNetworkHandler(saga, publisher, lock, validator, logger)
}

// ProvideCommandBus creates a command bus with registered handlers
func ProvideCommandBus(
	buildHandler *commands_handlers.BuildNetworkHandler,
	networkRepo ports.NetworkRepository,
	eventStore ports.EventStore,
	publisher ports.EventPublisher,
	cache ports.Cache,
	logger *zap.Logger,
) (*bus.CommandBus, error) {
	commandBus := bus.NewCommandBus(
		bus.LoggingMiddleware(logger),
	)

	if err := commandBus.Register(commands.BuildNetworkCommand{}, bus.CommandHandlerFunc(
		func(ctx context.Context, cmd bus.Command) error {
			buildCmd, ok := cmd.(commands.BuildNetworkCommand)
			if !ok {
				return fmt.Errorf("invalid command type")
			}
			_, err := buildHandler.Handle(ctx, buildCmd)
			return err
		},
	)); err != nil {
		return nil, err
	}

	renameHandler := commands_handlers.NewRenameClustersHandler(networkRepo, eventStore, publisher,
		versioning.NewVersioningService(20), logger)
	if err := commandBus.Register(commands.RenameClustersCommand{}, bus.CommandHandlerFunc(
		func(ctx context.Context, cmd bus.Command) error {
			renameCmd, ok := cmd.(commands.RenameClustersCommand)
			if !ok {
				return fmt.Errorf("invalid command type")
			}
			return renameHandler.Handle(ctx, renameCmd)
		},
	)); err != nil {
		return nil, err
	}

	deleteHandler := commands_handlers.NewDeleteNetworkHandler(networkRepo, publisher, logger)
	if err := commandBus.Register(commands.DeleteNetworkCommand{}, bus.CommandHandlerFunc(
		func(ctx context.Context, cmd bus.Command) error {
			deleteCmd, ok := cmd.(commands.DeleteNetworkCommand)
			if !ok {
				return fmt.Errorf("invalid command type")
			}
			return deleteHandler.Handle(ctx, deleteCmd)
		},
	)); err != nil {
		return nil, err
	}

	bulkDeleteHandler := commands_handlers.NewBulkDeleteNetworksHandler(networkRepo, publisher, logger)
	if err := commandBus.Register(commands.BulkDeleteNetworksCommand{}, bus.CommandHandlerFunc(
		func(ctx context.Context, cmd bus.Command) error {
			bulkCmd, ok := cmd.(commands.BulkDeleteNetworksCommand)
			if !ok {
				return fmt.Errorf("invalid command type")
			}
			_, err := bulkDeleteHandler.Handle(ctx, bulkCmd)
			return err
		},
	)); err != nil {
		return nil, err
	}

	cleanupHandler := commands.NewCleanupNetworkResourcesHandler(eventStore, cache, logger)
	if err := commandBus.Register(&commands.CleanupNetworkResourcesCommand{}, bus.CommandHandlerFunc(
		func(ctx context.Context, cmd bus.Command) error {
			return cleanupHandler.Handle(ctx, cmd)
		},
	)); err != nil {
		return nil, err
	}

	return commandBus, nil
}

// QueryHandlerAdapter adapts specific query handlers to the generic interface
type QueryHandlerAdapter struct {
	handler func(context.Context, querybus.Query) (interface{}, error)
}

func (a *QueryHandlerAdapter) Handle(ctx context.Context, query querybus.Query) (interface{}, error) {
	return a.handler(ctx, query)
}

// ProvideQueryBus creates a query bus with registered handlers
func ProvideQueryBus(
	networkRepo ports.NetworkRepository,
	cache ports.Cache,
	metrics *observability.Metrics,
	logger *zap.Logger,
) (*querybus.QueryBus, error) {
	// Cache keys include the query value, so results stay per-user
	queryBus := querybus.NewQueryBus(
		querybus.LoggingMiddleware(logger),
		querybus.MetricsMiddleware(metrics),
		querybus.CachingMiddleware(NewQueryCacheAdapter(cache), 60*time.Second),
	)

	getNetworkHandler := queries_handlers.NewGetNetworkHandler(networkRepo, cache, logger)
	if err := queryBus.Register(queries.GetNetworkQuery{}, &QueryHandlerAdapter{
		handler: func(ctx context.Context, query querybus.Query) (interface{}, error) {
			getQuery, ok := query.(queries.GetNetworkQuery)
			if !ok {
				return nil, fmt.Errorf("invalid query type")
			}
			return getNetworkHandler.Handle(ctx, getQuery)
		},
	}); err != nil {
		return nil, err
	}

	listHandler := queries_handlers.NewListNetworksHandler(networkRepo, logger)
	if err := queryBus.Register(queries.ListNetworksQuery{}, &QueryHandlerAdapter{
		handler: func(ctx context.Context, query querybus.Query) (interface{}, error) {
			listQuery, ok := query.(queries.ListNetworksQuery)
			if !ok {
				return nil, fmt.Errorf("invalid query type")
			}
			return listHandler.Handle(ctx, listQuery)
		},
	}); err != nil {
		return nil, err
	}

	matrixHandler := queries_handlers.NewGetSignalingMatrixHandler(networkRepo, logger)
	if err := queryBus.Register(queries.GetSignalingMatrixQuery{}, &QueryHandlerAdapter{
		handler: func(ctx context.Context, query querybus.Query) (interface{}, error) {
			matrixQuery, ok := query.(queries.GetSignalingMatrixQuery)
			if !ok {
				return nil, fmt.Errorf("invalid query type")
			}
			return matrixHandler.Handle(ctx, matrixQuery)
		},
	}); err != nil {
		return nil, err
	}

	clusterGraphHandler := queries_handlers.NewGetClusterGraphHandler(networkRepo, logger)
	if err := queryBus.Register(queries.GetClusterGraphQuery{}, &QueryHandlerAdapter{
		handler: func(ctx context.Context, query querybus.Query) (interface{}, error) {
			graphQuery, ok := query.(queries.GetClusterGraphQuery)
			if !ok {
				return nil, fmt.Errorf("invalid query type")
			}
			return clusterGraphHandler.Handle(ctx, graphQuery)
		},
	}); err != nil {
		return nil, err
	}

	geneGraphHandler := queries_handlers.NewGetGeneGraphHandler(networkRepo, logger)
	if err := queryBus.Register(queries.GetGeneGraphQuery{}, &QueryHandlerAdapter{
		handler: func(ctx context.Context, query querybus.Query) (interface{}, error) {
			graphQuery, ok := query.(queries.GetGeneGraphQuery)
			if !ok {
				return nil, fmt.Errorf("invalid query type")
			}
			return geneGraphHandler.Handle(ctx, graphQuery)
		},
	}); err != nil {
		return nil, err
	}

	collateHandler := queries_handlers.NewCollateItemsHandler(networkRepo, logger)
	if err := queryBus.Register(queries.CollateItemsQuery{}, &QueryHandlerAdapter{
		handler: func(ctx context.Context, query querybus.Query) (interface{}, error) {
			collateQuery, ok := query.(queries.CollateItemsQuery)
			if !ok {
				return nil, fmt.Errorf("invalid query type")
			}
			return collateHandler.Handle(ctx, collateQuery)
		},
	}); err != nil {
		return nil, err
	}

	return queryBus, nil
}

// ProvideInMemoryCache creates a simple in-memory cache.
// In production this would be Redis or similar.
func ProvideInMemoryCache() ports.Cache {
	return NewInMemoryCache()
}
