package auth

import (
	"log/slog"

	"go.uber.org/fx"

	"github.com/polkiloo/floristportal/internal/config"
)

// Module provides the password hasher and session token strategy.
var Module = fx.Provide(
	func(cfg *config.Config) PasswordHasher { return NewBcryptHasher(cfg.BcryptCost) },
	newSessionStrategy,
)

type sessionParams struct {
	fx.In

	Config *config.Config
	Logger *slog.Logger
}

func newSessionStrategy(p sessionParams) Strategy {
	if p.Config.JWTSecret == config.DefaultJWTSecret {
		p.Logger.Warn("session tokens are signed with the built-in default secret; set JWT_SECRET")
	}
	return NewHMACStrategy(p.Config.JWTSecret, Options{
		TTL:         p.Config.SessionTTL,
		RememberTTL: p.Config.RememberTTL,
	})
}
