package router

import (
	"go.uber.org/fx"

	"github.com/polkiloo/floristportal/internal/domain/repository"
	"github.com/polkiloo/floristportal/internal/server/http/handlers"
)

// Module builds the gin engine; readiness follows the database store.
var Module = fx.Provide(
	Setup,
	func(store repository.Store) handlers.ReadinessProbe { return store },
)
