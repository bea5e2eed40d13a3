package di

import (
	"crosstalk/application/commands/bus"
	commands_handlers "crosstalk/application/commands/handlers"
	"crosstalk/application/ports"
	querybus "crosstalk/application/queries/bus"
	"crosstalk/infrastructure/config"
	"crosstalk/infrastructure/persistence/dynamodb"
	"crosstalk/pkg/auth"
	"crosstalk/pkg/observability"

	"go.uber.org/zap"
)

// Container holds all application dependencies
type Container struct {
	Config          *config.Config
	Logger          *zap.Logger
	NetworkRepo     ports.NetworkRepository
	ConnectionRepo  ports.ConnectionRepository
	EventPublisher  ports.EventPublisher
	EventStore      ports.EventStore
	OutboxProcessor *dynamodb.OutboxProcessor
	BuildHandler    *commands_handlers.BuildNetworkHandler
	CommandBus      *bus.CommandBus
	QueryBus        *querybus.QueryBus
	Cache           ports.Cache
	Lock            ports.DistributedLock
	Metrics         *observability.Metrics
	RateLimiter     *auth.DistributedRateLimiter
}
