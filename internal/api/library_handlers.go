package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/shelfkeeper/shelfkeeper-server/internal/domain"
	domainerrors "github.com/shelfkeeper/shelfkeeper-server/internal/errors"
)

func (s *Server) registerLibraryRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "getLibrary",
		Method:      http.MethodGet,
		Path:        "/user/library",
		Summary:     "Get library",
		Description: "Returns the user's library with book details, oldest first. Entries whose book was deleted are omitted.",
		Tags:        []string{"Library"},
	}, s.handleGetLibrary)

	huma.Register(s.api, huma.Operation{
		OperationID: "addToLibrary",
		Method:      http.MethodPost,
		Path:        "/user/library",
		Summary:     "Add book to library",
		Description: "Adds a catalog book to the user's library, creating the user if needed. Adding a book twice returns the existing entry unchanged.",
		Tags:        []string{"Library"},
	}, s.handleAddToLibrary)

	huma.Register(s.api, huma.Operation{
		OperationID: "listReadBooks",
		Method:      http.MethodGet,
		Path:        "/user/library/read",
		Summary:     "List read books",
		Description: "Returns the read entries of the user's library, oldest first",
		Tags:        []string{"Library"},
	}, s.handleListRead)

	huma.Register(s.api, huma.Operation{
		OperationID: "listUnreadBooks",
		Method:      http.MethodGet,
		Path:        "/user/library/unread",
		Summary:     "List unread books",
		Description: "Returns the unread entries of the user's library, oldest first",
		Tags:        []string{"Library"},
	}, s.handleListUnread)

	huma.Register(s.api, huma.Operation{
		OperationID: "getLibraryEntry",
		Method:      http.MethodGet,
		Path:        "/user/library/{book_id}",
		Summary:     "Get library entry",
		Description: "Returns the user's entry for a book",
		Tags:        []string{"Library"},
	}, s.handleGetEntry)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateLibraryEntry",
		Method:      http.MethodPatch,
		Path:        "/user/library/{book_id}",
		Summary:     "Update library entry",
		Description: "Changes only the fields present in the body. Null clears rating or notes.",
		Tags:        []string{"Library"},
	}, s.handleUpdateEntry)

	huma.Register(s.api, huma.Operation{
		OperationID: "markBookRead",
		Method:      http.MethodPatch,
		Path:        "/user/library/{book_id}/read",
		Summary:     "Mark read",
		Description: "Marks a book in the user's library as read",
		Tags:        []string{"Library"},
	}, s.handleMarkRead)

	huma.Register(s.api, huma.Operation{
		OperationID: "markBookUnread",
		Method:      http.MethodPatch,
		Path:        "/user/library/{book_id}/unread",
		Summary:     "Mark unread",
		Description: "Marks a book in the user's library as unread",
		Tags:        []string{"Library"},
	}, s.handleMarkUnread)

	huma.Register(s.api, huma.Operation{
		OperationID: "removeFromLibrary",
		Method:      http.MethodDelete,
		Path:        "/user/library/{book_id}",
		Summary:     "Remove book from library",
		Description: "Removes a book from the user's library. The catalog is not affected.",
		Tags:        []string{"Library"},
	}, s.handleRemoveFromLibrary)
}

// === DTOs ===

// LibraryInput identifies the library owner.
type LibraryInput struct {
	UserRef
}

// LibraryOutput contains the detailed library view.
type LibraryOutput struct {
	Body []*domain.LibraryItem
}

// EntryListOutput contains bare library entries.
type EntryListOutput struct {
	Body []*domain.LibraryEntry
}

// AddToLibraryRequest is the request body for adding a book. Null and
// omitted fields both keep the defaults.
type AddToLibraryRequest struct {
	BookID int64   `json:"book_id" doc:"Catalog book ID"`
	IsRead *bool   `json:"is_read,omitempty" doc:"Defaults to false"`
	Rating *int    `json:"rating,omitempty" doc:"1-5"`
	Notes  *string `json:"notes,omitempty" doc:"Up to 500 characters"`
}

func (r AddToLibraryRequest) initial() domain.EntryPatch {
	var p domain.EntryPatch
	if r.IsRead != nil {
		p.IsRead = domain.Some(*r.IsRead)
	}
	if r.Rating != nil {
		p.Rating = domain.Some(r.Rating)
	}
	if r.Notes != nil {
		p.Notes = domain.Some(r.Notes)
	}
	return p
}

// AddToLibraryInput wraps the add request.
type AddToLibraryInput struct {
	UserRef
	Body AddToLibraryRequest
}

// EntryInput identifies one entry of the user's library.
type EntryInput struct {
	UserRef
	BookID int64 `path:"book_id" doc:"Catalog book ID"`
}

// EntryOutput contains a single library entry.
type EntryOutput struct {
	Body *domain.LibraryEntry
}

// UpdateEntryRequest is the request body for a partial entry update.
type UpdateEntryRequest struct {
	IsRead OmittableNullable[bool]   `json:"is_read,omitempty" doc:"Read flag"`
	Rating OmittableNullable[int]    `json:"rating,omitempty" doc:"1-5; null clears it"`
	Notes  OmittableNullable[string] `json:"notes,omitempty" doc:"Up to 500 characters; null clears them"`
}

func (r UpdateEntryRequest) patch() (domain.EntryPatch, error) {
	details := make(map[string]string)
	p := domain.EntryPatch{
		IsRead: required(r.IsRead, "is_read", details),
		Rating: nullable(r.Rating),
		Notes:  nullable(r.Notes),
	}
	return p, nullFieldsError(details)
}

// UpdateEntryInput wraps the update request.
type UpdateEntryInput struct {
	UserRef
	BookID int64 `path:"book_id" doc:"Catalog book ID"`
	Body   UpdateEntryRequest
}

// MessageResponse is a plain acknowledgement.
type MessageResponse struct {
	Message string `json:"message" doc:"Human-readable result"`
}

// MessageOutput wraps MessageResponse.
type MessageOutput struct {
	Body MessageResponse
}

// === Handlers ===

func (s *Server) handleGetLibrary(ctx context.Context, input *LibraryInput) (*LibraryOutput, error) {
	username, err := input.Resolve()
	if err != nil {
		return nil, err
	}

	items, err := s.services.Query.LibraryWithDetails(ctx, username)
	if err != nil {
		return nil, err
	}
	return &LibraryOutput{Body: items}, nil
}

func (s *Server) handleAddToLibrary(ctx context.Context, input *AddToLibraryInput) (*EntryOutput, error) {
	username, err := input.Resolve()
	if err != nil {
		return nil, err
	}

	entry, err := s.services.Library.Add(ctx, username, input.Body.BookID, input.Body.initial())
	if err != nil {
		return nil, err
	}
	return &EntryOutput{Body: entry}, nil
}

func (s *Server) handleListRead(ctx context.Context, input *LibraryInput) (*EntryListOutput, error) {
	username, err := input.Resolve()
	if err != nil {
		return nil, err
	}

	entries, err := s.services.Library.ListRead(ctx, username)
	if err != nil {
		return nil, err
	}
	return &EntryListOutput{Body: entries}, nil
}

func (s *Server) handleListUnread(ctx context.Context, input *LibraryInput) (*EntryListOutput, error) {
	username, err := input.Resolve()
	if err != nil {
		return nil, err
	}

	entries, err := s.services.Library.ListUnread(ctx, username)
	if err != nil {
		return nil, err
	}
	return &EntryListOutput{Body: entries}, nil
}

func (s *Server) handleGetEntry(ctx context.Context, input *EntryInput) (*EntryOutput, error) {
	username, err := input.Resolve()
	if err != nil {
		return nil, err
	}

	entry, err := s.services.Library.Get(ctx, username, input.BookID)
	if err != nil {
		return nil, err
	}
	return &EntryOutput{Body: entry}, nil
}

func (s *Server) handleUpdateEntry(ctx context.Context, input *UpdateEntryInput) (*EntryOutput, error) {
	username, err := input.Resolve()
	if err != nil {
		return nil, err
	}

	patch, err := input.Body.patch()
	if err != nil {
		return nil, err
	}

	entry, err := s.services.Library.Update(ctx, username, input.BookID, patch)
	if err != nil {
		return nil, err
	}
	return &EntryOutput{Body: entry}, nil
}

func (s *Server) handleMarkRead(ctx context.Context, input *EntryInput) (*EntryOutput, error) {
	username, err := input.Resolve()
	if err != nil {
		return nil, err
	}

	entry, err := s.services.Library.MarkRead(ctx, username, input.BookID)
	if err != nil {
		return nil, err
	}
	return &EntryOutput{Body: entry}, nil
}

func (s *Server) handleMarkUnread(ctx context.Context, input *EntryInput) (*EntryOutput, error) {
	username, err := input.Resolve()
	if err != nil {
		return nil, err
	}

	entry, err := s.services.Library.MarkUnread(ctx, username, input.BookID)
	if err != nil {
		return nil, err
	}
	return &EntryOutput{Body: entry}, nil
}

func (s *Server) handleRemoveFromLibrary(ctx context.Context, input *EntryInput) (*MessageOutput, error) {
	username, err := input.Resolve()
	if err != nil {
		return nil, err
	}

	removed, err := s.services.Library.Remove(ctx, username, input.BookID)
	if err != nil {
		return nil, err
	}
	if !removed {
		return nil, domainerrors.NotFoundf("book %d not found in library", input.BookID)
	}
	return &MessageOutput{Body: MessageResponse{Message: "book removed from library"}}, nil
}
