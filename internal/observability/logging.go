package observability

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// redacted replaces the value of sensitive attributes.
const redacted = "[REDACTED]"

// sensitiveKeys are matched case-insensitively with underscores removed.
var sensitiveKeys = map[string]bool{
	"password":   true,
	"apikey":     true,
	"secret":     true,
	"secretkey":  true,
	"token":      true,
	"credential": true,
}

// ParseLevel converts a configured level name to a slog.Level.
func ParseLevel(level string) (slog.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, NewInvalidConfigError(fmt.Sprintf("invalid log level: %s", level))
	}
}

// NewLogger builds the process logger from configuration. Output is JSON
// unless Format is "text".
func NewLogger(cfg LoggingConfig, w io.Writer) (*slog.Logger, error) {
	level, err := ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}

	var handler slog.Handler
	switch strings.ToLower(cfg.Format) {
	case "", "json":
		handler = NewJSONHandler(w, level)
	case "text":
		handler = NewTextHandler(w, level)
	default:
		return nil, NewInvalidConfigError(fmt.Sprintf("invalid log format: %s", cfg.Format))
	}

	return slog.New(NewRedactingHandler(handler)), nil
}

// NewJSONHandler creates a new JSON log handler with the specified output and level.
func NewJSONHandler(w io.Writer, level slog.Level) slog.Handler {
	return slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: level,
	})
}

// NewTextHandler creates a new text log handler with the specified output and level.
func NewTextHandler(w io.Writer, level slog.Level) slog.Handler {
	return slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: level,
	})
}

// RedactingHandler masks sensitive attribute values and adds trace
// correlation fields before passing records to the wrapped handler.
type RedactingHandler struct {
	next slog.Handler
}

// NewRedactingHandler wraps next.
func NewRedactingHandler(next slog.Handler) *RedactingHandler {
	return &RedactingHandler{next: next}
}

// Enabled reports whether the wrapped handler handles level.
func (h *RedactingHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

// Handle redacts r's attributes and forwards it. When ctx carries a valid
// span, trace_id and span_id are appended.
func (h *RedactingHandler) Handle(ctx context.Context, r slog.Record) error {
	out := slog.NewRecord(r.Time, r.Level, r.Message, r.PC)
	r.Attrs(func(a slog.Attr) bool {
		out.AddAttrs(redactAttr(a))
		return true
	})

	if traceID := ExtractTraceID(ctx); traceID != "" {
		out.AddAttrs(
			slog.String("trace_id", traceID),
			slog.String("span_id", ExtractSpanID(ctx)),
		)
	}

	return h.next.Handle(ctx, out)
}

// WithAttrs redacts attrs before binding them to the wrapped handler.
func (h *RedactingHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clean := make([]slog.Attr, len(attrs))
	for i, a := range attrs {
		clean[i] = redactAttr(a)
	}
	return &RedactingHandler{next: h.next.WithAttrs(clean)}
}

// WithGroup returns a handler that nests subsequent attributes under name.
func (h *RedactingHandler) WithGroup(name string) slog.Handler {
	return &RedactingHandler{next: h.next.WithGroup(name)}
}

func redactAttr(a slog.Attr) slog.Attr {
	if a.Value.Kind() == slog.KindGroup {
		group := a.Value.Group()
		clean := make([]any, 0, len(group))
		for _, ga := range group {
			clean = append(clean, redactAttr(ga))
		}
		return slog.Group(a.Key, clean...)
	}
	if isSensitiveKey(a.Key) {
		return slog.String(a.Key, redacted)
	}
	return a
}

func isSensitiveKey(key string) bool {
	return sensitiveKeys[strings.ToLower(strings.ReplaceAll(key, "_", ""))]
}
