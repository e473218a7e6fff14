package providers

import (
	"context"

	"github.com/samber/do/v2"

	"github.com/shelfkeeper/shelfkeeper-server/internal/config"
	"github.com/shelfkeeper/shelfkeeper-server/internal/logger"
	"github.com/shelfkeeper/shelfkeeper-server/internal/seed"
	"github.com/shelfkeeper/shelfkeeper-server/internal/service"
)

// SeedResult records whether demo data was loaded at startup.
type SeedResult struct {
	seed.Result
}

// ProvideSeed loads the demo catalog into an empty store when SEED_DEMO_DATA
// is enabled.
func ProvideSeed(i do.Injector) (*SeedResult, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	if !cfg.Seed.DemoData {
		log.Info("Demo data seeding disabled by configuration")
		return &SeedResult{}, nil
	}

	catalog := do.MustInvoke[*service.CatalogService](i)
	library := do.MustInvoke[*service.LibraryService](i)

	res, err := seed.New(catalog, library, log.Component("seed")).Run(context.Background())
	if err != nil {
		return nil, err
	}
	return &SeedResult{Result: res}, nil
}
