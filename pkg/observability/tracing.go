package observability

import (
	"context"

	"github.com/aws/aws-xray-sdk-go/xray"
)

// Tracer wraps X-Ray segments with this service's naming. Build
// pipeline phases run as subsegments, so one trace shows where a slow
// build spends its time (differential expression, correlation,
// persistence).
type Tracer struct {
	service string
}

// NewTracer creates a tracer namespacing segments under the service name
func NewTracer(service string) *Tracer {
	return &Tracer{service: service}
}

// StartSegment opens a root segment for work that arrives outside an
// instrumented entrypoint, such as an EventBridge invocation
func (t *Tracer) StartSegment(ctx context.Context, name string) (context.Context, *xray.Segment) {
	return xray.BeginSegment(ctx, t.service+"."+name)
}

// TracePhase runs one pipeline phase in its own subsegment, recording
// a failure on the segment before passing it through
func (t *Tracer) TracePhase(ctx context.Context, phase string, fn func(context.Context) error) error {
	ctx, seg := xray.BeginSubsegment(ctx, phase)
	defer seg.Close(nil)

	if err := fn(ctx); err != nil {
		seg.AddError(err)
		return err
	}
	return nil
}

// AnnotateNetwork indexes the current segment by network and user so
// traces can be searched by either
func (t *Tracer) AnnotateNetwork(ctx context.Context, networkID, userID string) {
	seg := xray.GetSegment(ctx)
	if seg == nil {
		return
	}
	seg.AddAnnotation("network_id", networkID)
	seg.AddAnnotation("user_id", userID)
}

// AddMetadata attaches unindexed detail, such as transform options or
// cluster counts, to the current segment
func (t *Tracer) AddMetadata(ctx context.Context, key string, value interface{}) {
	if seg := xray.GetSegment(ctx); seg != nil {
		seg.AddMetadata(key, value)
	}
}

// RecordError records an error on the current segment
func (t *Tracer) RecordError(ctx context.Context, err error) {
	if seg := xray.GetSegment(ctx); seg != nil {
		seg.AddError(err)
	}
}
