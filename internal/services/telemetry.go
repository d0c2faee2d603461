package services

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/premsagarmanikyala/mantrix-ai/internal/clients/redis"
	"github.com/premsagarmanikyala/mantrix-ai/internal/observability"
	"github.com/premsagarmanikyala/mantrix-ai/internal/platform/dbctx"
	"github.com/premsagarmanikyala/mantrix-ai/internal/platform/logger"
)

func startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return observability.Tracer().Start(ctx, name)
}

// endSpan marks the span failed when err is non-nil and ends it.
func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

func dbc(ctx context.Context) dbctx.Context {
	return dbctx.Context{Ctx: ctx}
}

// publish is best-effort. A nil bus disables events.
func publish(ctx context.Context, log *logger.Logger, bus redis.EventBus, evt redis.Event) {
	if bus == nil {
		return
	}
	if evt.OccurredAt.IsZero() {
		evt.OccurredAt = time.Now().UTC()
	}
	if err := bus.Publish(ctx, evt); err != nil {
		log.Warn("event publish failed", "event", evt.Type, "entity_id", evt.EntityID, "error", err)
	}
}
