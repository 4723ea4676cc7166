// Package logging sets up the module's structured logger, grounded on the
// slog usage the teacher's cmd/ctl entrypoint and pkg/dicos/decode.go
// exercise: a package-level Logger constructor plus an AppendCtx helper
// that folds attributes into every record emitted through a context.
package logging

import (
	"context"
	"io"
	"log/slog"
)

type ctxKey struct{}

// Logger returns a *slog.Logger writing text records to w, or JSON
// records when json is true, at the given minimum level. The returned
// logger's handler is wrapped so attributes stashed in a context via
// AppendCtx are folded into every record emitted through that context.
func Logger(w io.Writer, json bool, level slog.Leveler) *slog.Logger {
	opts := &slog.HandlerOptions{Level: level}
	var h slog.Handler
	if json {
		h = slog.NewJSONHandler(w, opts)
	} else {
		h = slog.NewTextHandler(w, opts)
	}
	return slog.New(&ctxHandler{Handler: h})
}

// AppendCtx returns a context carrying attrs, to be folded into every
// log record subsequently emitted with that context (e.g.
// slog.InfoContext(ctx, "...")).
func AppendCtx(ctx context.Context, attrs ...slog.Attr) context.Context {
	if len(attrs) == 0 {
		return ctx
	}
	existing, _ := ctx.Value(ctxKey{}).([]slog.Attr)
	merged := make([]slog.Attr, 0, len(existing)+len(attrs))
	merged = append(merged, existing...)
	merged = append(merged, attrs...)
	return context.WithValue(ctx, ctxKey{}, merged)
}

// ctxHandler folds attributes stashed by AppendCtx into every record.
type ctxHandler struct {
	slog.Handler
}

func (h *ctxHandler) Handle(ctx context.Context, r slog.Record) error {
	if attrs, ok := ctx.Value(ctxKey{}).([]slog.Attr); ok {
		r.AddAttrs(attrs...)
	}
	return h.Handler.Handle(ctx, r)
}

func (h *ctxHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &ctxHandler{Handler: h.Handler.WithAttrs(attrs)}
}

func (h *ctxHandler) WithGroup(name string) slog.Handler {
	return &ctxHandler{Handler: h.Handler.WithGroup(name)}
}
