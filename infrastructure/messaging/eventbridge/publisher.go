package eventbridge

import (
	"context"
	"encoding/json"
	"fmt"

	"crosstalk/application/ports"
	"crosstalk/domain/events"
	pkgerrors "crosstalk/pkg/errors"

	"github.com/aws/aws-sdk-go-v2/aws"
	awseventbridge "github.com/aws/aws-sdk-go-v2/service/eventbridge"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge/types"
	"go.uber.org/zap"
)

// PutEvents accepts at most 10 entries per call
const maxBatchSize = 10

// eventSource identifies this service on the bus
const eventSource = "crosstalk"

// Publisher implements the EventPublisher port on top of EventBridge
type Publisher struct {
	client  *awseventbridge.Client
	busName string
	logger  *zap.Logger
}

// NewPublisher creates a new EventBridge publisher
func NewPublisher(client *awseventbridge.Client, busName string, logger *zap.Logger) ports.EventPublisher {
	return &Publisher{
		client:  client,
		busName: busName,
		logger:  logger,
	}
}

// Publish sends a single domain event to the bus
func (p *Publisher) Publish(ctx context.Context, event events.DomainEvent) error {
	entry, err := p.toEntry(event)
	if err != nil {
		return err
	}

	out, err := p.client.PutEvents(ctx, &awseventbridge.PutEventsInput{
		Entries: []types.PutEventsRequestEntry{entry},
	})
	if err != nil {
		return pkgerrors.NewExternalError("eventbridge", err)
	}
	if out.FailedEntryCount > 0 {
		return pkgerrors.NewExternalError("eventbridge",
			fmt.Errorf("put event rejected: %s", aws.ToString(out.Entries[0].ErrorMessage)))
	}

	p.logger.Debug("Event published",
		zap.String("eventType", event.GetEventType()),
		zap.String("aggregateID", event.GetAggregateID()),
	)

	return nil
}

// PublishBatch sends multiple domain events, splitting into
// EventBridge-sized chunks
func (p *Publisher) PublishBatch(ctx context.Context, evts []events.DomainEvent) error {
	if len(evts) == 0 {
		return nil
	}

	entries := make([]types.PutEventsRequestEntry, 0, len(evts))
	for _, event := range evts {
		entry, err := p.toEntry(event)
		if err != nil {
			return err
		}
		entries = append(entries, entry)
	}

	for start := 0; start < len(entries); start += maxBatchSize {
		end := start + maxBatchSize
		if end > len(entries) {
			end = len(entries)
		}

		out, err := p.client.PutEvents(ctx, &awseventbridge.PutEventsInput{
			Entries: entries[start:end],
		})
		if err != nil {
			return pkgerrors.NewExternalError("eventbridge", err)
		}
		if out.FailedEntryCount > 0 {
			for _, result := range out.Entries {
				if result.ErrorCode != nil {
					p.logger.Error("Event rejected by EventBridge",
						zap.String("errorCode", aws.ToString(result.ErrorCode)),
						zap.String("errorMessage", aws.ToString(result.ErrorMessage)),
					)
				}
			}
			return pkgerrors.NewExternalError("eventbridge",
				fmt.Errorf("%d of %d events rejected", out.FailedEntryCount, end-start))
		}
	}

	p.logger.Debug("Event batch published", zap.Int("count", len(evts)))

	return nil
}

func (p *Publisher) toEntry(event events.DomainEvent) (types.PutEventsRequestEntry, error) {
	detail, err := json.Marshal(event)
	if err != nil {
		return types.PutEventsRequestEntry{}, fmt.Errorf("failed to marshal event %s: %w", event.GetEventType(), err)
	}

	return types.PutEventsRequestEntry{
		EventBusName: aws.String(p.busName),
		Source:       aws.String(eventSource),
		DetailType:   aws.String(event.GetEventType()),
		Detail:       aws.String(string(detail)),
		Time:         aws.Time(event.GetTimestamp()),
	}, nil
}
