package auth

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// DistributedRateLimiter keeps per-caller request counts in the
// service's single table so quotas hold across Lambda invocations,
// where the in-process limiters lose their state on every cold start.
//
// Counters live under PK "QUOTA#<scope>#<id>" with one SK per fixed
// window, expired by the table's TTL attribute.
type DistributedRateLimiter struct {
	client    *dynamodb.Client
	tableName string
	limit     int
	window    time.Duration
	scope     string
}

type quotaRecord struct {
	PK        string `dynamodbav:"PK"`
	SK        string `dynamodbav:"SK"`
	Count     int    `dynamodbav:"Count"`
	WindowEnd string `dynamodbav:"WindowEnd"`
	TTL       int64  `dynamodbav:"TTL"`
}

// NewDistributedRateLimiter creates a limiter allowing limit requests
// per fixed window, with counters namespaced by scope
func NewDistributedRateLimiter(client *dynamodb.Client, tableName string, limit int, window time.Duration, scope string) *DistributedRateLimiter {
	return &DistributedRateLimiter{
		client:    client,
		tableName: tableName,
		limit:     limit,
		window:    window,
		scope:     scope,
	}
}

func (r *DistributedRateLimiter) keys(id string, windowStart time.Time) (string, string) {
	pk := fmt.Sprintf("QUOTA#%s#%s", r.scope, id)
	sk := "WINDOW#" + strconv.FormatInt(windowStart.Unix(), 10)
	return pk, sk
}

// Allow atomically counts a request against the caller's current
// window. Without a configured client (local development) every
// request passes. Store errors fail open so a DynamoDB outage cannot
// take down reads; the caller decides whether to log the error.
func (r *DistributedRateLimiter) Allow(ctx context.Context, id string) (bool, error) {
	if r.client == nil {
		return true, nil
	}

	windowStart := time.Now().Truncate(r.window)
	windowEnd := windowStart.Add(r.window)
	pk, sk := r.keys(id, windowStart)

	// Conditional increment: the write is rejected once the counter
	// reaches the limit, so concurrent invocations cannot overshoot
	out, err := r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: pk},
			"SK": &types.AttributeValueMemberS{Value: sk},
		},
		UpdateExpression:    aws.String("SET #count = if_not_exists(#count, :zero) + :one, WindowEnd = :end, #ttl = :ttl"),
		ConditionExpression: aws.String("attribute_not_exists(#count) OR #count < :limit"),
		ExpressionAttributeNames: map[string]string{
			"#count": "Count",
			"#ttl":   "TTL",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":zero":  &types.AttributeValueMemberN{Value: "0"},
			":one":   &types.AttributeValueMemberN{Value: "1"},
			":limit": &types.AttributeValueMemberN{Value: strconv.Itoa(r.limit)},
			":end":   &types.AttributeValueMemberS{Value: windowEnd.Format(time.RFC3339)},
			":ttl":   &types.AttributeValueMemberN{Value: strconv.FormatInt(windowEnd.Add(time.Hour).Unix(), 10)},
		},
		ReturnValues: types.ReturnValueAllNew,
	})
	if err != nil {
		var condErr *types.ConditionalCheckFailedException
		if errors.As(err, &condErr) {
			return false, nil
		}
		return true, fmt.Errorf("quota update for %s failed (failing open): %w", pk, err)
	}

	var rec quotaRecord
	if err := attributevalue.UnmarshalMap(out.Attributes, &rec); err != nil {
		return true, fmt.Errorf("quota record for %s unreadable (failing open): %w", pk, err)
	}
	return rec.Count <= r.limit, nil
}

// Remaining reports how many requests are left in the caller's current
// window and when the window resets
func (r *DistributedRateLimiter) Remaining(ctx context.Context, id string) (int, time.Duration, error) {
	windowStart := time.Now().Truncate(r.window)
	windowEnd := windowStart.Add(r.window)
	if r.client == nil {
		return r.limit, time.Until(windowEnd), nil
	}

	pk, sk := r.keys(id, windowStart)
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: pk},
			"SK": &types.AttributeValueMemberS{Value: sk},
		},
	})
	if err != nil || out.Item == nil {
		return r.limit, time.Until(windowEnd), err
	}

	var rec quotaRecord
	if err := attributevalue.UnmarshalMap(out.Item, &rec); err != nil {
		return r.limit, time.Until(windowEnd), fmt.Errorf("quota record for %s unreadable: %w", pk, err)
	}

	remaining := r.limit - rec.Count
	if remaining < 0 {
		remaining = 0
	}
	return remaining, time.Until(windowEnd), nil
}

// Reset clears the caller's current window
func (r *DistributedRateLimiter) Reset(ctx context.Context, id string) error {
	if r.client == nil {
		return nil
	}

	pk, sk := r.keys(id, time.Now().Truncate(r.window))
	_, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: pk},
			"SK": &types.AttributeValueMemberS{Value: sk},
		},
	})
	return err
}
