package ports

import "context"

// PushNotifier delivers a payload to a single WebSocket connection.
// Implementations wrap the API Gateway management API.
type PushNotifier interface {
	// Push sends the payload. A GoneError from the gateway means the
	// connection is stale and should be pruned.
	Push(ctx context.Context, connectionID string, payload []byte) error

	// IsGone reports whether the error indicates a stale connection
	IsGone(err error) bool
}
