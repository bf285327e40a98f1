package usecase

import (
	"context"
	"log/slog"

	"github.com/gaushala-net/gaushala"
)

// publishEvent runs after a commit has landed, so failures are only logged.
func publishEvent(ctx context.Context, signal Publisher, module string, event gaushala.Event) {
	if signal == nil {
		return
	}
	if err := signal.Publish(ctx, event.Resource, event); err != nil {
		slog.WarnContext(
			ctx, "failed to publish event",
			slog.String("type", event.Type),
			slog.String("item", event.ItemID),
			slog.String("error", err.Error()),
			slog.String("module", module),
		)
	}
}
