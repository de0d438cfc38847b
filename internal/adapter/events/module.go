package events

import (
	"context"
	"log/slog"

	"go.uber.org/fx"

	"github.com/polkiloo/floristportal/internal/config"
)

// Module provides the order event publisher.
var Module = fx.Options(
	fx.Provide(newPublisher),
	fx.Invoke(registerLifecycle),
)

func newPublisher(cfg *config.Config, logger *slog.Logger) Publisher {
	if len(cfg.KafkaBrokers) == 0 {
		logger.Info("kafka brokers not configured, order events go to the log")
		return NewLogPublisher(logger)
	}
	logger.Info("publishing order events to kafka",
		slog.Any("brokers", cfg.KafkaBrokers),
		slog.String("topic", cfg.OrderEventsTopic),
	)
	return NewKafkaPublisher(cfg.KafkaBrokers, cfg.OrderEventsTopic, logger)
}

func registerLifecycle(lc fx.Lifecycle, publisher Publisher, logger *slog.Logger) {
	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			if err := publisher.Close(); err != nil {
				logger.Error("close event publisher", slog.String("error", err.Error()))
				return err
			}
			return nil
		},
	})
}
