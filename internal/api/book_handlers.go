package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/shelfkeeper/shelfkeeper-server/internal/domain"
	domainerrors "github.com/shelfkeeper/shelfkeeper-server/internal/errors"
)

func (s *Server) registerAdminBookRoutes() {
	security := []map[string][]string{{"adminToken": {}}}

	huma.Register(s.api, huma.Operation{
		OperationID: "adminListBooks",
		Method:      http.MethodGet,
		Path:        "/admin/books",
		Summary:     "List books",
		Description: "Returns catalog books in id order. X-Total-Count carries the catalog size.",
		Tags:        []string{"Admin"},
		Security:    security,
	}, s.handleAdminListBooks)

	huma.Register(s.api, huma.Operation{
		OperationID: "adminSearchBooks",
		Method:      http.MethodGet,
		Path:        "/admin/books/search",
		Summary:     "Search books",
		Description: "Case-insensitive substring search on title, author and genre",
		Tags:        []string{"Admin"},
		Security:    security,
	}, s.handleAdminSearchBooks)

	huma.Register(s.api, huma.Operation{
		OperationID: "adminGetBook",
		Method:      http.MethodGet,
		Path:        "/admin/books/{id}",
		Summary:     "Get book",
		Description: "Returns a single catalog book",
		Tags:        []string{"Admin"},
		Security:    security,
	}, s.handleAdminGetBook)

	huma.Register(s.api, huma.Operation{
		OperationID:   "adminCreateBook",
		Method:        http.MethodPost,
		Path:          "/admin/books",
		Summary:       "Create book",
		Description:   "Adds a book to the catalog. Books are available unless stated otherwise.",
		Tags:          []string{"Admin"},
		Security:      security,
		DefaultStatus: http.StatusCreated,
	}, s.handleAdminCreateBook)

	huma.Register(s.api, huma.Operation{
		OperationID: "adminUpdateBook",
		Method:      http.MethodPut,
		Path:        "/admin/books/{id}",
		Summary:     "Update book",
		Description: "Changes only the fields present in the body. A null description clears it.",
		Tags:        []string{"Admin"},
		Security:    security,
	}, s.handleAdminUpdateBook)

	huma.Register(s.api, huma.Operation{
		OperationID:   "adminDeleteBook",
		Method:        http.MethodDelete,
		Path:          "/admin/books/{id}",
		Summary:       "Delete book",
		Description:   "Removes a book from the catalog. Library entries pointing at it are kept but hidden from detailed views.",
		Tags:          []string{"Admin"},
		Security:      security,
		DefaultStatus: http.StatusNoContent,
	}, s.handleAdminDeleteBook)
}

// === DTOs ===

// ListBooksInput contains parameters for listing books.
type ListBooksInput struct {
	Skip  int `query:"skip" default:"0" doc:"Number of books to skip"`
	Limit int `query:"limit" default:"100" doc:"Maximum books to return (max 1000)"`
}

// AdminListBooksInput is ListBooksInput behind the admin token.
type AdminListBooksInput struct {
	AdminAuth
	ListBooksInput
}

// BookListOutput contains a page of books.
type BookListOutput struct {
	TotalCount int `header:"X-Total-Count" doc:"Total books in the catalog"`
	Body       []*domain.Book
}

// SearchBooksInput contains the substring filters. Empty filters match everything.
type SearchBooksInput struct {
	Title  string `query:"title" doc:"Substring of the title"`
	Author string `query:"author" doc:"Substring of the author"`
	Genre  string `query:"genre" doc:"Substring of the genre"`
}

func (in SearchBooksInput) filter() domain.BookFilter {
	return domain.BookFilter{Title: in.Title, Author: in.Author, Genre: in.Genre}
}

// AdminSearchBooksInput is SearchBooksInput behind the admin token.
type AdminSearchBooksInput struct {
	AdminAuth
	SearchBooksInput
}

// BookSearchOutput contains search results.
type BookSearchOutput struct {
	Body []*domain.Book
}

// GetBookInput contains parameters for getting a book.
type GetBookInput struct {
	ID int64 `path:"id" doc:"Book ID"`
}

// AdminGetBookInput is GetBookInput behind the admin token.
type AdminGetBookInput struct {
	AdminAuth
	GetBookInput
}

// BookOutput contains a single book.
type BookOutput struct {
	Body *domain.Book
}

// CreateBookRequest is the request body for creating a book.
type CreateBookRequest struct {
	Title       string  `json:"title" doc:"Title, 1-200 characters"`
	Author      string  `json:"author" doc:"Author, 1-100 characters"`
	Year        int     `json:"year" doc:"Publication year, 1000-2025"`
	Genre       string  `json:"genre" doc:"Genre, 1-50 characters"`
	Description *string `json:"description,omitempty" doc:"Up to 1000 characters"`
	IsAvailable *bool   `json:"is_available,omitempty" doc:"Defaults to true"`
}

// CreateBookInput wraps the create book request.
type CreateBookInput struct {
	AdminAuth
	Body CreateBookRequest
}

// UpdateBookRequest is the request body for a partial book update.
type UpdateBookRequest struct {
	Title       OmittableNullable[string] `json:"title,omitempty" doc:"New title"`
	Author      OmittableNullable[string] `json:"author,omitempty" doc:"New author"`
	Year        OmittableNullable[int]    `json:"year,omitempty" doc:"New publication year"`
	Genre       OmittableNullable[string] `json:"genre,omitempty" doc:"New genre"`
	Description OmittableNullable[string] `json:"description,omitempty" doc:"New description; null clears it"`
	IsAvailable OmittableNullable[bool]   `json:"is_available,omitempty" doc:"New availability"`
}

func (r UpdateBookRequest) patch() (domain.BookPatch, error) {
	details := make(map[string]string)
	p := domain.BookPatch{
		Title:       required(r.Title, "title", details),
		Author:      required(r.Author, "author", details),
		Year:        required(r.Year, "year", details),
		Genre:       required(r.Genre, "genre", details),
		Description: nullable(r.Description),
		IsAvailable: required(r.IsAvailable, "is_available", details),
	}
	return p, nullFieldsError(details)
}

// UpdateBookInput wraps the update book request.
type UpdateBookInput struct {
	AdminAuth
	ID   int64 `path:"id" doc:"Book ID"`
	Body UpdateBookRequest
}

// DeleteBookInput contains parameters for deleting a book.
type DeleteBookInput struct {
	AdminAuth
	ID int64 `path:"id" doc:"Book ID"`
}

// === Handlers ===

func (s *Server) handleAdminListBooks(ctx context.Context, input *AdminListBooksInput) (*BookListOutput, error) {
	if err := s.RequireAdmin(input.AdminAuth); err != nil {
		return nil, err
	}
	return s.listBooks(ctx, input.ListBooksInput)
}

func (s *Server) handleAdminSearchBooks(ctx context.Context, input *AdminSearchBooksInput) (*BookSearchOutput, error) {
	if err := s.RequireAdmin(input.AdminAuth); err != nil {
		return nil, err
	}
	return s.searchBooks(ctx, input.SearchBooksInput)
}

func (s *Server) handleAdminGetBook(ctx context.Context, input *AdminGetBookInput) (*BookOutput, error) {
	if err := s.RequireAdmin(input.AdminAuth); err != nil {
		return nil, err
	}
	return s.getBook(ctx, input.GetBookInput)
}

func (s *Server) handleAdminCreateBook(ctx context.Context, input *CreateBookInput) (*BookOutput, error) {
	if err := s.RequireAdmin(input.AdminAuth); err != nil {
		return nil, err
	}

	book, err := s.services.Catalog.Create(ctx, domain.BookInput{
		Title:       input.Body.Title,
		Author:      input.Body.Author,
		Year:        input.Body.Year,
		Genre:       input.Body.Genre,
		Description: input.Body.Description,
		IsAvailable: input.Body.IsAvailable,
	})
	if err != nil {
		return nil, err
	}
	return &BookOutput{Body: book}, nil
}

func (s *Server) handleAdminUpdateBook(ctx context.Context, input *UpdateBookInput) (*BookOutput, error) {
	if err := s.RequireAdmin(input.AdminAuth); err != nil {
		return nil, err
	}

	patch, err := input.Body.patch()
	if err != nil {
		return nil, err
	}

	book, err := s.services.Catalog.Update(ctx, input.ID, patch)
	if err != nil {
		return nil, err
	}
	return &BookOutput{Body: book}, nil
}

func (s *Server) handleAdminDeleteBook(ctx context.Context, input *DeleteBookInput) (*struct{}, error) {
	if err := s.RequireAdmin(input.AdminAuth); err != nil {
		return nil, err
	}

	deleted, err := s.services.Catalog.Delete(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	if !deleted {
		return nil, domainerrors.NotFoundf("book %d not found", input.ID)
	}
	return nil, nil
}

// Shared by the admin and user catalog routes.

func (s *Server) listBooks(ctx context.Context, input ListBooksInput) (*BookListOutput, error) {
	books, err := s.services.Catalog.List(ctx, input.Skip, input.Limit)
	if err != nil {
		return nil, err
	}
	total, err := s.services.Catalog.Count(ctx)
	if err != nil {
		return nil, err
	}
	return &BookListOutput{TotalCount: total, Body: books}, nil
}

func (s *Server) searchBooks(ctx context.Context, input SearchBooksInput) (*BookSearchOutput, error) {
	books, err := s.services.Catalog.Search(ctx, input.filter())
	if err != nil {
		return nil, err
	}
	return &BookSearchOutput{Body: books}, nil
}

func (s *Server) getBook(ctx context.Context, input GetBookInput) (*BookOutput, error) {
	book, err := s.services.Catalog.Get(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	return &BookOutput{Body: book}, nil
}
