package providers

import (
	"context"
	"errors"
	"net/http"

	"github.com/samber/do/v2"

	"github.com/shelfkeeper/shelfkeeper-server/internal/api"
	"github.com/shelfkeeper/shelfkeeper-server/internal/auth"
	"github.com/shelfkeeper/shelfkeeper-server/internal/config"
	"github.com/shelfkeeper/shelfkeeper-server/internal/logger"
	"github.com/shelfkeeper/shelfkeeper-server/internal/service"
)

// HTTPServerHandle wraps http.Server with Shutdownable.
type HTTPServerHandle struct {
	*http.Server
}

// Shutdown implements do.Shutdownable.
func (h *HTTPServerHandle) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return h.Server.Shutdown(ctx)
}

// ProvideHTTPServer provides the HTTP server and starts it in the background.
func ProvideHTTPServer(i do.Injector) (*HTTPServerHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	guard := do.MustInvoke[*auth.AdminGuard](i)
	limiter := do.MustInvoke[*RateLimiterHandle](i)

	services := &api.Services{
		Catalog: do.MustInvoke[*service.CatalogService](i),
		Users:   do.MustInvoke[*service.UserService](i),
		Library: do.MustInvoke[*service.LibraryService](i),
		Query:   do.MustInvoke[*service.QueryService](i),
		Store:   storeHandle.Store,
	}

	handler := api.NewServer(services, guard, limiter.KeyedRateLimiter, api.Options{
		CORSOrigins:       cfg.Server.CORSOrigins,
		TrustProxyHeaders: cfg.Server.TrustProxy,
	}, log.Component("http"))

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start in background
	go func() {
		log.Info("HTTP server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("HTTP server error", "error", err)
		}
	}()

	log.Info("Server running", "addr", srv.Addr, "docs", "/docs")

	return &HTTPServerHandle{Server: srv}, nil
}
