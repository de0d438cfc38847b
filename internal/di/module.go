package di

import (
	"go.uber.org/fx"

	"github.com/polkiloo/floristportal/internal/adapter/events"
	"github.com/polkiloo/floristportal/internal/adapter/shopify"
	"github.com/polkiloo/floristportal/internal/app"
	"github.com/polkiloo/floristportal/internal/config"
	"github.com/polkiloo/floristportal/internal/ingest"
	"github.com/polkiloo/floristportal/internal/logger"
	"github.com/polkiloo/floristportal/internal/metrics"
	"github.com/polkiloo/floristportal/internal/pkg/auth"
	"github.com/polkiloo/floristportal/internal/pkg/ordernum"
	"github.com/polkiloo/floristportal/internal/server/http/router"
	"github.com/polkiloo/floristportal/internal/storage/inbox"
	"github.com/polkiloo/floristportal/internal/storage/postgres"
	"github.com/polkiloo/floristportal/internal/usecase"
)

func Module(opts ...fx.Option) fx.Option {
	modules := []fx.Option{
		config.Module,
		logger.Module,
		metrics.Module,
		auth.Module,
		ordernum.Module,
		postgres.Module,
		inbox.Module,
		shopify.Module,
		events.Module,
		ingest.Module,
		usecase.Module,
		router.Module,
		app.Module,
	}
	modules = append(modules, opts...)
	return fx.Options(modules...)
}
