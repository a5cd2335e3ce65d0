package ethogram

import (
	"context"

	opentracing "github.com/opentracing/opentracing-go"
	otlog "github.com/opentracing/opentracing-go/log"
)

var noopTracer = opentracing.NoopTracer{}

// childSpanFromContext starts a span for operation, inheriting the
// tracer of whatever span is already active on ctx (falling back to a
// no-op tracer when none is active, so ticking a tree with no
// WithTracer option set costs nothing).
func childSpanFromContext(ctx context.Context, operation string) (opentracing.Span, context.Context) {
	span := opentracing.SpanFromContext(ctx)
	var tracer opentracing.Tracer = &noopTracer

	if span != nil {
		tracer = span.Tracer()
	}

	return opentracing.StartSpanFromContextWithTracer(
		ctx,
		tracer,
		"ethogram::"+operation,
	)
}

// tickTraced runs tick as a traced child span named "ethogram::<name>",
// logging the resulting status. Composite and decorator nodes call this
// around each child tick so that a full tree execution renders as a
// nested span tree under whatever root span Tree.TickOnce started.
func tickTraced(ctx context.Context, name string, tick func(ctx context.Context) (NodeStatus, error)) (NodeStatus, error) {
	span, spanCtx := childSpanFromContext(ctx, name)
	defer span.Finish()

	status, err := tick(spanCtx)

	span.LogFields(
		otlog.String("node_name", name),
		otlog.String("node_status", status.String()),
	)
	if err != nil {
		span.LogFields(otlog.Error(err))
	}

	return status, err
}
