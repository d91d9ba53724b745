package logger

import (
	"context"
	"log/slog"
	"os"

	"go.opentelemetry.io/otel/trace"
)

// Handler is a slog.Handler that enriches every record with the service name
// and, when a span is active, the trace and span identifiers so log lines can
// be correlated with traces.
type Handler struct {
	inner   slog.Handler
	service string
}

type Options struct {
	Service string
	Level   slog.Level
}

// NewHandler creates a new Handler. A nil opts falls back to info level and an
// empty service name.
func NewHandler(opts *Options) *Handler {
	if opts == nil {
		opts = &Options{}
	}

	inner := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: opts.Level,
	})

	return &Handler{
		inner:   inner,
		service: opts.Service,
	}
}

func (h *Handler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level)
}

func (h *Handler) Handle(ctx context.Context, record slog.Record) error {
	if h.service != "" {
		record.AddAttrs(slog.String("service", h.service))
	}

	if span := trace.SpanContextFromContext(ctx); span.IsValid() {
		record.AddAttrs(
			slog.String("trace_id", span.TraceID().String()),
			slog.String("span_id", span.SpanID().String()),
		)
	}

	return h.inner.Handle(ctx, record)
}

func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &Handler{inner: h.inner.WithAttrs(attrs), service: h.service}
}

func (h *Handler) WithGroup(name string) slog.Handler {
	return &Handler{inner: h.inner.WithGroup(name), service: h.service}
}
