package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

// Read-only catalog routes for library users. No admin token is needed.
func (s *Server) registerCatalogRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listBooks",
		Method:      http.MethodGet,
		Path:        "/user/books",
		Summary:     "Browse books",
		Description: "Returns catalog books in id order",
		Tags:        []string{"Catalog"},
	}, s.handleListBooks)

	huma.Register(s.api, huma.Operation{
		OperationID: "getBook",
		Method:      http.MethodGet,
		Path:        "/user/books/{id}",
		Summary:     "Get book",
		Description: "Returns a single catalog book",
		Tags:        []string{"Catalog"},
	}, s.handleGetBook)

	huma.Register(s.api, huma.Operation{
		OperationID: "searchBooks",
		Method:      http.MethodGet,
		Path:        "/user/search",
		Summary:     "Search books",
		Description: "Case-insensitive substring search on title, author and genre",
		Tags:        []string{"Catalog"},
	}, s.handleSearchBooks)
}

func (s *Server) handleListBooks(ctx context.Context, input *ListBooksInput) (*BookListOutput, error) {
	return s.listBooks(ctx, *input)
}

func (s *Server) handleGetBook(ctx context.Context, input *GetBookInput) (*BookOutput, error) {
	return s.getBook(ctx, *input)
}

func (s *Server) handleSearchBooks(ctx context.Context, input *SearchBooksInput) (*BookSearchOutput, error) {
	return s.searchBooks(ctx, *input)
}
