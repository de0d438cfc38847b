package logger

import (
	"log/slog"

	"go.uber.org/fx"

	"github.com/polkiloo/floristportal/internal/config"
)

// Module provides the process logger and closes its log file on stop.
var Module = fx.Provide(provide)

func provide(lc fx.Lifecycle, cfg *config.Config) *slog.Logger {
	l, closer := New(cfg)
	lc.Append(fx.StopHook(closer.Close))
	return l
}
