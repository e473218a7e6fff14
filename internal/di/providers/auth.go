package providers

import (
	"github.com/samber/do/v2"

	"github.com/shelfkeeper/shelfkeeper-server/internal/auth"
	"github.com/shelfkeeper/shelfkeeper-server/internal/config"
	"github.com/shelfkeeper/shelfkeeper-server/internal/logger"
	"github.com/shelfkeeper/shelfkeeper-server/internal/ratelimit"
)

// ProvideAdminGuard hashes the configured admin token, or loads a
// pre-hashed one.
func ProvideAdminGuard(i do.Injector) (*auth.AdminGuard, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	guard, err := auth.NewAdminGuard(cfg.Admin.Token, cfg.Admin.TokenHash)
	if err != nil {
		return nil, err
	}

	if cfg.Admin.UsesDefaultToken() && cfg.App.Environment != "development" {
		log.Warn("Admin token is the built-in default, set ADMIN_TOKEN or ADMIN_TOKEN_HASH",
			"environment", cfg.App.Environment,
		)
	}

	log.Info("Admin guard ready", "prehashed", cfg.Admin.TokenHash != "")

	return guard, nil
}

// RateLimiterHandle wraps the admin rate limiter with shutdown capability.
type RateLimiterHandle struct {
	*ratelimit.KeyedRateLimiter
}

// Shutdown implements do.Shutdownable.
func (h *RateLimiterHandle) Shutdown() error {
	h.Stop()
	return nil
}

// ProvideAdminRateLimiter provides the per-client limiter for admin routes.
func ProvideAdminRateLimiter(i do.Injector) (*RateLimiterHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	limiter := ratelimit.New(cfg.Admin.RateLimit, cfg.Admin.RateBurst)

	log.Info("Admin rate limiter started",
		"rps", cfg.Admin.RateLimit,
		"burst", cfg.Admin.RateBurst,
	)

	return &RateLimiterHandle{KeyedRateLimiter: limiter}, nil
}
