// Package telemetry records tool calls into OpenTelemetry.
package telemetry

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"notion-mcp/internal/tools"
)

// ToolObserver records one counter increment, one latency sample and one
// span per tool call.
type ToolObserver struct {
	tracer trace.Tracer

	calls    metric.Int64Counter
	duration metric.Float64Histogram
}

// NewToolObserver creates a tool observer bound to the provided meter/tracer.
// A nil tracer disables spans.
func NewToolObserver(meter metric.Meter, tracer trace.Tracer) (*ToolObserver, error) {
	calls, err := meter.Int64Counter(
		"notion_mcp.tool.calls",
		metric.WithDescription("Number of tool calls"),
	)
	if err != nil {
		return nil, err
	}
	duration, err := meter.Float64Histogram(
		"notion_mcp.tool.duration",
		metric.WithDescription("Tool call duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}
	return &ToolObserver{
		tracer:   tracer,
		calls:    calls,
		duration: duration,
	}, nil
}

// ObserveCall implements tools.Observer. The span is a child of any span
// carried by ctx.
func (o *ToolObserver) ObserveCall(ctx context.Context, c tools.CallObservation) {
	if o == nil {
		return
	}

	attrs := []attribute.KeyValue{
		attribute.String("tool_name", c.Tool),
		attribute.String("outcome", string(c.Outcome)),
	}
	if ctx == nil {
		ctx = context.Background()
	}
	options := metric.WithAttributes(attrs...)
	o.calls.Add(ctx, 1, options)
	o.duration.Record(ctx, c.Duration.Seconds(), options)

	if o.tracer == nil {
		return
	}
	_, span := o.tracer.Start(ctx, "tool.call",
		trace.WithAttributes(attrs...),
		trace.WithTimestamp(c.Start),
	)
	if c.Err != nil {
		span.RecordError(c.Err)
		span.SetStatus(codes.Error, string(c.Outcome))
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End(trace.WithTimestamp(c.Start.Add(c.Duration)))
}

var _ tools.Observer = (*ToolObserver)(nil)
