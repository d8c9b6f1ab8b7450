package notify

import (
	"context"
	"log/slog"
	"slices"
)

// LogNotifier writes events to a slog.Logger. The CLI always includes one
// so events show up in the job log.
type LogNotifier struct {
	logger *slog.Logger
}

// NewLogNotifier creates a LogNotifier. A nil logger means slog.Default().
func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogNotifier{logger: logger}
}

// Name implements the naming used in Multi errors.
func (n *LogNotifier) Name() string { return "log" }

// Notify implements Notifier.
func (n *LogNotifier) Notify(ctx context.Context, event Event) error {
	attrs := []slog.Attr{
		slog.String("event", string(event.Type)),
		slog.String("command", event.Command),
	}
	if event.PipelineURL != "" {
		attrs = append(attrs, slog.String("pipeline_url", event.PipelineURL))
	}
	if len(event.Metadata) > 0 {
		keys := make([]string, 0, len(event.Metadata))
		for k := range event.Metadata {
			keys = append(keys, k)
		}
		slices.Sort(keys)

		meta := make([]any, 0, len(keys))
		for _, k := range keys {
			meta = append(meta, slog.Any(k, event.Metadata[k]))
		}
		attrs = append(attrs, slog.Group("metadata", meta...))
	}

	n.logger.LogAttrs(ctx, logLevel(event.Severity), event.Message, attrs...)
	return nil
}

func logLevel(s Severity) slog.Level {
	switch s {
	case SeverityError:
		return slog.LevelError
	case SeverityWarning:
		return slog.LevelWarn
	}
	return slog.LevelInfo
}
