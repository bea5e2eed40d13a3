package dynamodb

import (
	"context"
	"fmt"
	"time"

	"crosstalk/application/ports"
	pkgerrors "crosstalk/pkg/errors"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"
)

// ConnectionRepository implements the ConnectionRepository port using
// a dedicated DynamoDB table for WebSocket connection records
type ConnectionRepository struct {
	client    *dynamodb.Client
	tableName string
	logger    *zap.Logger
}

// NewConnectionRepository creates a new ConnectionRepository
func NewConnectionRepository(client *dynamodb.Client, tableName string, logger *zap.Logger) ports.ConnectionRepository {
	return &ConnectionRepository{
		client:    client,
		tableName: tableName,
		logger:    logger,
	}
}

// connectionItem is the DynamoDB item for a WebSocket connection.
// TTL lets DynamoDB garbage-collect stale connections on its own;
// DeleteExpired exists for callers that cannot wait for TTL sweeps.
type connectionItem struct {
	PK           string `dynamodbav:"PK"` // USER#<user_id>
	SK           string `dynamodbav:"SK"` // CONN#<connection_id>
	GSI1PK       string `dynamodbav:"GSI1PK"` // CONN#<connection_id>
	GSI1SK       string `dynamodbav:"GSI1SK"` // Always "METADATA"
	EntityType   string `dynamodbav:"EntityType"`
	ConnectionID string `dynamodbav:"ConnectionID"`
	UserID       string `dynamodbav:"UserID"`
	Endpoint     string `dynamodbav:"Endpoint"`
	ConnectedAt  string `dynamodbav:"ConnectedAt"`
	ExpiresAt    string `dynamodbav:"ExpiresAt"`
	TTL          int64  `dynamodbav:"TTL"`
}

// Save stores a connection record
func (r *ConnectionRepository) Save(ctx context.Context, conn ports.Connection) error {
	item := connectionItem{
		PK:           fmt.Sprintf("USER#%s", conn.UserID),
		SK:           fmt.Sprintf("CONN#%s", conn.ConnectionID),
		GSI1PK:       fmt.Sprintf("CONN#%s", conn.ConnectionID),
		GSI1SK:       "METADATA",
		EntityType:   "CONNECTION",
		ConnectionID: conn.ConnectionID,
		UserID:       conn.UserID,
		Endpoint:     conn.Endpoint,
		ConnectedAt:  conn.ConnectedAt.Format(time.RFC3339Nano),
		ExpiresAt:    conn.ExpiresAt.Format(time.RFC3339Nano),
		TTL:          conn.ExpiresAt.Unix(),
	}

	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		return fmt.Errorf("failed to marshal connection: %w", err)
	}

	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      av,
	})
	if err != nil {
		return pkgerrors.NewDatabaseError("save connection", err)
	}

	r.logger.Debug("Connection saved",
		zap.String("connectionID", conn.ConnectionID),
		zap.String("userID", conn.UserID),
	)

	return nil
}

// GetByUserID retrieves a user's active connections
func (r *ConnectionRepository) GetByUserID(ctx context.Context, userID string) ([]ports.Connection, error) {
	input := &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		KeyConditionExpression: aws.String("PK = :pk AND begins_with(SK, :sk)"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pk": &types.AttributeValueMemberS{Value: fmt.Sprintf("USER#%s", userID)},
			":sk": &types.AttributeValueMemberS{Value: "CONN#"},
		},
	}

	now := time.Now()
	var connections []ports.Connection

	paginator := dynamodb.NewQueryPaginator(r.client, input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, pkgerrors.NewDatabaseError("query connections", err)
		}

		for _, raw := range page.Items {
			var item connectionItem
			if err := attributevalue.UnmarshalMap(raw, &item); err != nil {
				r.logger.Warn("Skipping malformed connection item", zap.Error(err))
				continue
			}
			conn, err := item.toConnection()
			if err != nil {
				r.logger.Warn("Skipping malformed connection item",
					zap.String("connectionID", item.ConnectionID),
					zap.Error(err),
				)
				continue
			}
			// TTL deletion lags; filter expired records ourselves
			if !conn.ExpiresAt.After(now) {
				continue
			}
			connections = append(connections, conn)
		}
	}

	return connections, nil
}

// Delete removes a connection record. The connection ID alone does not
// identify the partition, so the record is located through the GSI
// first.
func (r *ConnectionRepository) Delete(ctx context.Context, connectionID string) error {
	out, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		IndexName:              aws.String("ConnectionIndex"),
		KeyConditionExpression: aws.String("GSI1PK = :pk"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pk": &types.AttributeValueMemberS{Value: fmt.Sprintf("CONN#%s", connectionID)},
		},
		Limit: aws.Int32(1),
	})
	if err != nil {
		return pkgerrors.NewDatabaseError("query connection", err)
	}
	if len(out.Items) == 0 {
		return nil
	}

	var item connectionItem
	if err := attributevalue.UnmarshalMap(out.Items[0], &item); err != nil {
		return fmt.Errorf("failed to unmarshal connection: %w", err)
	}

	_, err = r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: item.PK},
			"SK": &types.AttributeValueMemberS{Value: item.SK},
		},
	})
	if err != nil {
		return pkgerrors.NewDatabaseError("delete connection", err)
	}

	return nil
}

// DeleteExpired removes connection records past their expiry and
// returns the number removed
func (r *ConnectionRepository) DeleteExpired(ctx context.Context, now time.Time) (int, error) {
	input := &dynamodb.ScanInput{
		TableName:        aws.String(r.tableName),
		FilterExpression: aws.String("EntityType = :type AND #ttl < :now"),
		ExpressionAttributeNames: map[string]string{
			"#ttl": "TTL",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":type": &types.AttributeValueMemberS{Value: "CONNECTION"},
			":now":  &types.AttributeValueMemberN{Value: fmt.Sprintf("%d", now.Unix())},
		},
		ProjectionExpression: aws.String("PK, SK"),
	}

	deleted := 0
	paginator := dynamodb.NewScanPaginator(r.client, input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return deleted, pkgerrors.NewDatabaseError("scan expired connections", err)
		}

		for _, raw := range page.Items {
			_, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
				TableName: aws.String(r.tableName),
				Key: map[string]types.AttributeValue{
					"PK": raw["PK"],
					"SK": raw["SK"],
				},
			})
			if err != nil {
				r.logger.Warn("Failed to delete expired connection", zap.Error(err))
				continue
			}
			deleted++
		}
	}

	if deleted > 0 {
		r.logger.Info("Expired connections removed", zap.Int("count", deleted))
	}

	return deleted, nil
}

func (item connectionItem) toConnection() (ports.Connection, error) {
	connectedAt, err := time.Parse(time.RFC3339Nano, item.ConnectedAt)
	if err != nil {
		return ports.Connection{}, fmt.Errorf("invalid ConnectedAt: %w", err)
	}
	expiresAt, err := time.Parse(time.RFC3339Nano, item.ExpiresAt)
	if err != nil {
		return ports.Connection{}, fmt.Errorf("invalid ExpiresAt: %w", err)
	}
	return ports.Connection{
		ConnectionID: item.ConnectionID,
		UserID:       item.UserID,
		Endpoint:     item.Endpoint,
		ConnectedAt:  connectedAt,
		ExpiresAt:    expiresAt,
	}, nil
}
