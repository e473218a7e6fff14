package providers

import (
	"fmt"
	"os"

	"github.com/samber/do/v2"

	"github.com/shelfkeeper/shelfkeeper-server/internal/config"
	"github.com/shelfkeeper/shelfkeeper-server/internal/logger"
	"github.com/shelfkeeper/shelfkeeper-server/internal/store"
	"github.com/shelfkeeper/shelfkeeper-server/internal/store/badgerdb"
	"github.com/shelfkeeper/shelfkeeper-server/internal/store/sqlite"
)

// StoreHandle wraps the store with shutdown capability.
type StoreHandle struct {
	store.Store
	Driver string
}

// Shutdown implements do.Shutdownable.
func (h *StoreHandle) Shutdown() error {
	return h.Close()
}

// ProvideStore opens the store selected by STORE_DRIVER.
func ProvideStore(i do.Injector) (*StoreHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	st, err := OpenStore(cfg.Store, log)
	if err != nil {
		return nil, err
	}

	return &StoreHandle{Store: st, Driver: cfg.Store.Driver}, nil
}

// OpenStore opens the configured store outside the container, for tools
// that need the store without the HTTP server.
func OpenStore(cfg config.StoreConfig, log *logger.Logger) (store.Store, error) {
	storeLog := log.Component("store")

	switch cfg.Driver {
	case config.DriverSQLite:
		if err := os.MkdirAll(cfg.DataPath, 0o755); err != nil {
			return nil, fmt.Errorf("create data directory: %w", err)
		}
		st, err := sqlite.Open(cfg.SQLitePath(), storeLog)
		if err != nil {
			return nil, err
		}
		log.Info("Database initialized", "driver", cfg.Driver, "path", cfg.SQLitePath())
		return st, nil

	case config.DriverBadger:
		st, err := badgerdb.Open(badgerdb.Options{Path: cfg.BadgerPath(), Logger: storeLog})
		if err != nil {
			return nil, err
		}
		log.Info("Database initialized", "driver", cfg.Driver, "path", cfg.BadgerPath())
		return st, nil

	case config.DriverMemory:
		st, err := badgerdb.OpenInMemory(storeLog)
		if err != nil {
			return nil, err
		}
		log.Warn("Using in-memory store, data will be lost on shutdown")
		return st, nil

	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
	}
}
