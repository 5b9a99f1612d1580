// Package tracetools holds helpers for tracing build steps with opentracing.
// Spans go to the global tracer, which is a no-op unless one is registered.
package tracetools

import (
	"context"

	"github.com/opentracing/opentracing-go"
	"github.com/opentracing/opentracing-go/ext"
	"github.com/opentracing/opentracing-go/log"
)

// StartSpanFromContext starts a span named operation as a child of any span
// already in ctx, tagging it with tags.
func StartSpanFromContext(ctx context.Context, operation string, tags map[string]any) (opentracing.Span, context.Context) {
	span, ctx := opentracing.StartSpanFromContext(ctx, operation)
	for k, v := range tags {
		span.SetTag(k, v)
	}
	return span, ctx
}

// FinishWithError is syntactic sugar for opentracing APIs to add errors to a span
// and then finishing it. If the error is nil, the span will only be finished.
func FinishWithError(span opentracing.Span, err error, fields ...log.Field) {
	if err != nil {
		ext.LogError(span, err, fields...)
	}
	span.Finish()
}
