package services

import (
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/yungbote/dwitter-backend/internal/observability"
	"github.com/yungbote/dwitter-backend/internal/pkg/dbctx"
	"github.com/yungbote/dwitter-backend/internal/pkg/errors"
)

type opScope struct {
	op      string
	span    trace.Span
	metrics *observability.Metrics
}

// startOp opens the span for one service operation and returns dbc carrying the span context.
func startOp(dbc dbctx.Context, metrics *observability.Metrics, op string, attrs ...attribute.KeyValue) (dbctx.Context, *opScope) {
	ctx, span := observability.Tracer().Start(dbc.Context(), op, trace.WithAttributes(attrs...))
	dbc.Ctx = ctx
	return dbc, &opScope{op: op, span: span, metrics: metrics}
}

// end records the outcome; noop marks a successful call that changed nothing.
func (s *opScope) end(err error, noop bool) {
	outcome := outcomeOf(err, noop)
	s.span.SetAttributes(attribute.String("dwitter.outcome", outcome))
	if err != nil {
		s.span.RecordError(err)
		s.span.SetStatus(codes.Error, err.Error())
	}
	s.span.End()
	s.metrics.IncSocialOp(s.op, outcome)
}

func outcomeOf(err error, noop bool) string {
	switch {
	case err == nil && noop:
		return observability.OutcomeNoop
	case err == nil:
		return observability.OutcomeOK
	case errors.Is(err, errors.ErrNotFound):
		return observability.OutcomeNotFound
	case errors.Is(err, errors.ErrInvalidArgument), errors.Is(err, errors.ErrConflict):
		return observability.OutcomeInvalid
	default:
		return observability.OutcomeError
	}
}
