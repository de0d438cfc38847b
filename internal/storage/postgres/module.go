package postgres

import (
	"context"
	"log/slog"

	"go.uber.org/fx"

	"github.com/polkiloo/floristportal/internal/config"
	"github.com/polkiloo/floristportal/internal/domain/repository"
)

// Module opens the PostgreSQL store and exposes its repositories.
var Module = fx.Options(
	fx.Provide(
		newStorage,
		func(s *Storage) repository.Store { return s },
		func(s *Storage) repository.UserRepository { return s.Users() },
		func(s *Storage) repository.OrderRepository { return s.Orders() },
		func(s *Storage) repository.ShopRepository { return s.Shops() },
	),
	fx.Invoke(closeOnStop),
)

type storageParams struct {
	fx.In

	Ctx    context.Context
	Config *config.Config
	Logger *slog.Logger
}

func newStorage(p storageParams) (*Storage, error) {
	opts := Options{
		MaxConns:        int32(p.Config.DBMaxConns),
		MaxConnIdleTime: p.Config.DBMaxIdleTime,
	}
	return New(p.Ctx, p.Config.DatabaseURI, opts, p.Logger.With(slog.String("component", "postgres")))
}

func closeOnStop(lc fx.Lifecycle, s *Storage) {
	lc.Append(fx.StopHook(s.Close))
}
