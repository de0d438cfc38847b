package inbox

import (
	"context"
	"log/slog"

	"go.uber.org/fx"

	"github.com/polkiloo/floristportal/internal/config"
)

// Module wires the webhook inbox.
var Module = fx.Options(
	fx.Provide(newInbox),
	fx.Invoke(registerLifecycle),
)

func newInbox(cfg *config.Config, logger *slog.Logger) (*Inbox, error) {
	return Open(cfg.WebhookInboxDir, logger)
}

func registerLifecycle(lc fx.Lifecycle, inbox *Inbox, logger *slog.Logger) {
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			if err := inbox.Close(); err != nil {
				logger.Error("close webhook inbox", slog.String("error", err.Error()))
				return err
			}
			return nil
		},
	})
}
