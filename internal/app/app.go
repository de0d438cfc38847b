package app

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/fx"

	"github.com/polkiloo/floristportal/internal/config"
	"github.com/polkiloo/floristportal/internal/metrics"
	"github.com/polkiloo/floristportal/internal/server/http/handlers"
	"github.com/polkiloo/floristportal/internal/worker"
)

// Module wires application services, runtime components, and lifecycle hooks.
var Module = fx.Options(
	fx.Provide(
		fx.Annotate(NewPortalFacade, fx.As(fx.Self()), fx.As(new(handlers.PortalFacade))),
		newHTTPServer,
		fx.Annotate(newSyncWorker, fx.As(fx.Self()), fx.As(new(handlers.SyncRunner))),
	),
	fx.Invoke(registerLifecycle),
)

type serverParams struct {
	fx.In

	Config *config.Config
	Router *gin.Engine
}

func newHTTPServer(p serverParams) *http.Server {
	return &http.Server{
		Addr:    p.Config.RunAddress,
		Handler: p.Router,
	}
}

type workerParams struct {
	fx.In

	Facade  *PortalFacade
	Config  *config.Config
	Metrics *metrics.Registry
	Logger  *slog.Logger
}

func newSyncWorker(p workerParams) *worker.SyncWorker {
	return worker.NewSyncWorker(
		p.Facade,
		p.Config.SyncInterval,
		p.Config.SyncBatchSize,
		p.Config.WorkerPoolSize,
		p.Metrics,
		p.Logger,
	)
}

type lifecycleParams struct {
	fx.In

	Lifecycle  fx.Lifecycle
	Shutdowner fx.Shutdowner
	Logger     *slog.Logger
	Facade     *PortalFacade
	Server     *http.Server
	Worker     *worker.SyncWorker
	Config     *config.Config
}

func registerLifecycle(p lifecycleParams) {
	p.Lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			created, err := p.Facade.BootstrapAdmin(ctx, p.Config.AdminEmail, p.Config.AdminPassword)
			if err != nil {
				return err
			}
			if created {
				p.Logger.Info("bootstrap admin created", slog.String("email", p.Config.AdminEmail))
			}

			// Deliveries claimed before a crash are finished before new ones arrive.
			if n, err := p.Facade.ReplayWebhooks(ctx); err != nil {
				p.Logger.Error("webhook replay failed", slog.String("error", err.Error()))
			} else if n > 0 {
				p.Logger.Info("webhook deliveries replayed", slog.Int("count", n))
			}

			p.Logger.Info("starting florist portal", slog.String("addr", p.Server.Addr))
			p.Worker.Start(ctx)
			go func() {
				if err := p.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					p.Logger.Error("http server terminated", slog.String("error", err.Error()))
					_ = p.Shutdowner.Shutdown()
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			p.Worker.Stop()

			shutdownCtx := ctx
			cancel := func() {}
			if _, ok := ctx.Deadline(); !ok {
				shutdownCtx, cancel = context.WithTimeout(ctx, p.Config.ShutdownTimeout)
			}
			defer cancel()

			if err := p.Server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			p.Logger.Info("florist portal stopped")
			return nil
		},
	})
}
