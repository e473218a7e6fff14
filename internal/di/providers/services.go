package providers

import (
	"github.com/samber/do/v2"

	"github.com/shelfkeeper/shelfkeeper-server/internal/logger"
	"github.com/shelfkeeper/shelfkeeper-server/internal/service"
	"github.com/shelfkeeper/shelfkeeper-server/internal/validation"
)

// ProvideCatalogService provides the book catalog service.
func ProvideCatalogService(i do.Injector) (*service.CatalogService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	v := do.MustInvoke[*validation.Validator](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewCatalogService(storeHandle.Store, v, log.Component("catalog")), nil
}

// ProvideUserService provides the user directory.
func ProvideUserService(i do.Injector) (*service.UserService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	v := do.MustInvoke[*validation.Validator](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewUserService(storeHandle.Store, v, log.Component("users")), nil
}

// ProvideLibraryService provides the reading library service.
func ProvideLibraryService(i do.Injector) (*service.LibraryService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	users := do.MustInvoke[*service.UserService](i)
	v := do.MustInvoke[*validation.Validator](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewLibraryService(storeHandle.Store, users, v, log.Component("library")), nil
}

// ProvideQueryService provides the joined library views.
func ProvideQueryService(i do.Injector) (*service.QueryService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	library := do.MustInvoke[*service.LibraryService](i)

	return service.NewQueryService(storeHandle.Store, library), nil
}
