package observability

import (
	"context"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
)

// PutMetricData accepts at most 1000 datums per call; we flush well
// before that
const maxBufferedDatums = 20

// Metrics buffers counters and timings and flushes them to CloudWatch.
// Datums are flushed when the buffer fills or when Flush is called, so
// Lambda handlers should Flush before returning.
type Metrics struct {
	namespace string
	client    *cloudwatch.Client

	mu     sync.Mutex
	buffer []types.MetricDatum
}

// NewMetrics creates a CloudWatch-backed metrics recorder
func NewMetrics(namespace string, client *cloudwatch.Client) *Metrics {
	return &Metrics{
		namespace: namespace,
		client:    client,
		buffer:    make([]types.MetricDatum, 0, maxBufferedDatums),
	}
}

// IncrementCounter records a count of one for the named metric
func (m *Metrics) IncrementCounter(name string, tags map[string]string) {
	m.record(types.MetricDatum{
		MetricName: aws.String(name),
		Value:      aws.Float64(1),
		Unit:       types.StandardUnitCount,
		Timestamp:  aws.Time(time.Now()),
		Dimensions: toDimensions(tags),
	})
}

// RecordDuration records a timing for the named metric
func (m *Metrics) RecordDuration(name string, d time.Duration, tags map[string]string) {
	m.record(types.MetricDatum{
		MetricName: aws.String(name),
		Value:      aws.Float64(float64(d.Milliseconds())),
		Unit:       types.StandardUnitMilliseconds,
		Timestamp:  aws.Time(time.Now()),
		Dimensions: toDimensions(tags),
	})
}

// RecordValue records an arbitrary value for the named metric
func (m *Metrics) RecordValue(name string, value float64, tags map[string]string) {
	m.record(types.MetricDatum{
		MetricName: aws.String(name),
		Value:      aws.Float64(value),
		Unit:       types.StandardUnitNone,
		Timestamp:  aws.Time(time.Now()),
		Dimensions: toDimensions(tags),
	})
}

func (m *Metrics) record(datum types.MetricDatum) {
	m.mu.Lock()
	m.buffer = append(m.buffer, datum)
	shouldFlush := len(m.buffer) >= maxBufferedDatums
	m.mu.Unlock()

	if shouldFlush {
		// Best effort; metrics never fail the request path
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = m.Flush(ctx)
		}()
	}
}

// Flush sends all buffered datums to CloudWatch
func (m *Metrics) Flush(ctx context.Context) error {
	m.mu.Lock()
	if len(m.buffer) == 0 {
		m.mu.Unlock()
		return nil
	}
	datums := m.buffer
	m.buffer = make([]types.MetricDatum, 0, maxBufferedDatums)
	m.mu.Unlock()

	_, err := m.client.PutMetricData(ctx, &cloudwatch.PutMetricDataInput{
		Namespace:  aws.String(m.namespace),
		MetricData: datums,
	})
	return err
}

func toDimensions(tags map[string]string) []types.Dimension {
	if len(tags) == 0 {
		return nil
	}
	dims := make([]types.Dimension, 0, len(tags))
	for k, v := range tags {
		dims = append(dims, types.Dimension{
			Name:  aws.String(k),
			Value: aws.String(v),
		})
	}
	return dims
}
