package api

import (
	"context"

	"github.com/shelfkeeper/shelfkeeper-server/internal/service"
)

// Pinger reports whether a backing component is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Services groups the business logic services used by the API server.
type Services struct {
	Catalog *service.CatalogService
	Users   *service.UserService
	Library *service.LibraryService
	Query   *service.QueryService
	Store   Pinger
}
