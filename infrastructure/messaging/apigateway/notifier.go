package apigateway

import (
	"context"
	"errors"
	"fmt"

	"crosstalk/application/ports"
	pkgerrors "crosstalk/pkg/errors"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/apigatewaymanagementapi"
	"github.com/aws/aws-sdk-go-v2/service/apigatewaymanagementapi/types"
	"go.uber.org/zap"
)

// Notifier implements the PushNotifier port against the API Gateway
// management API
type Notifier struct {
	client *apigatewaymanagementapi.Client
	logger *zap.Logger
}

// NewNotifier creates a notifier for the given WebSocket endpoint.
// The endpoint comes from the connect-time request context, e.g.
// "abc123.execute-api.us-east-1.amazonaws.com/prod".
func NewNotifier(cfg aws.Config, endpoint string, logger *zap.Logger) ports.PushNotifier {
	client := apigatewaymanagementapi.NewFromConfig(cfg, func(o *apigatewaymanagementapi.Options) {
		o.BaseEndpoint = aws.String(fmt.Sprintf("https://%s", endpoint))
	})
	return &Notifier{client: client, logger: logger}
}

// Push sends the payload to a single connection
func (n *Notifier) Push(ctx context.Context, connectionID string, payload []byte) error {
	_, err := n.client.PostToConnection(ctx, &apigatewaymanagementapi.PostToConnectionInput{
		ConnectionId: aws.String(connectionID),
		Data:         payload,
	})
	if err != nil {
		var gone *types.GoneException
		if errors.As(err, &gone) {
			// Surface unchanged so IsGone can classify it
			return err
		}
		return pkgerrors.NewExternalError("apigateway", err)
	}
	return nil
}

// IsGone reports whether the gateway rejected the connection as stale
func (n *Notifier) IsGone(err error) bool {
	var gone *types.GoneException
	return errors.As(err, &gone)
}
