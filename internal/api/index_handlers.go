package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/shelfkeeper/shelfkeeper-server/internal/seed"
)

func (s *Server) registerIndexRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "serviceIndex",
		Method:      http.MethodGet,
		Path:        "/",
		Summary:     "Service index",
		Description: "Lists the available endpoints",
		Tags:        []string{"Health"},
	}, s.handleIndex)
}

func (s *Server) registerGuestRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID:   "createGuestUser",
		Method:        http.MethodPost,
		Path:          "/create-test-user",
		Summary:       "Create guest user",
		Description:   "Registers a user with a generated username such as user_k3f9x0qa",
		Tags:          []string{"Library"},
		DefaultStatus: http.StatusCreated,
	}, s.handleCreateGuest)
}

// IndexResponse describes the service and its endpoints.
type IndexResponse struct {
	Message   string                       `json:"message"`
	Version   string                       `json:"version"`
	Docs      string                       `json:"docs" doc:"Interactive API documentation"`
	Endpoints map[string]map[string]string `json:"endpoints" doc:"Endpoint descriptions grouped by audience"`
	TestUser  string                       `json:"test_user" doc:"Username of the seeded demo user"`
}

// IndexOutput wraps IndexResponse.
type IndexOutput struct {
	Body IndexResponse
}

// GuestUserResponse carries the generated username.
type GuestUserResponse struct {
	Message  string `json:"message"`
	Username string `json:"username"`
}

// GuestUserOutput wraps GuestUserResponse.
type GuestUserOutput struct {
	Body GuestUserResponse
}

var endpointIndex = map[string]map[string]string{
	"admin": {
		"GET /admin/books":         "List all books",
		"GET /admin/books/{id}":    "Get a book by id",
		"POST /admin/books":        "Create a book",
		"PUT /admin/books/{id}":    "Update a book",
		"DELETE /admin/books/{id}": "Delete a book",
		"GET /admin/books/search":  "Search books",
	},
	"user": {
		"GET /user/books":                      "Browse books",
		"GET /user/books/{id}":                 "Book details",
		"GET /user/search":                     "Search books",
		"GET /user/library":                    "Personal library (param: username)",
		"POST /user/library":                   "Add to library (body: book_id; param: username)",
		"GET /user/library/read":               "Read books",
		"GET /user/library/unread":             "Unread books",
		"GET /user/library/{book_id}":          "Library entry",
		"PATCH /user/library/{book_id}":        "Update rating, notes or read flag",
		"PATCH /user/library/{book_id}/read":   "Mark as read",
		"PATCH /user/library/{book_id}/unread": "Mark as unread",
		"DELETE /user/library/{book_id}":       "Remove from library",
	},
}

func (s *Server) handleIndex(_ context.Context, _ *struct{}) (*IndexOutput, error) {
	return &IndexOutput{Body: IndexResponse{
		Message:   "Shelfkeeper catalog API",
		Version:   Version,
		Docs:      "/docs",
		Endpoints: endpointIndex,
		TestUser:  seed.DemoUsername,
	}}, nil
}

func (s *Server) handleCreateGuest(ctx context.Context, _ *struct{}) (*GuestUserOutput, error) {
	user, err := s.services.Users.CreateGuest(ctx)
	if err != nil {
		return nil, err
	}
	return &GuestUserOutput{Body: GuestUserResponse{
		Message:  "guest user created",
		Username: user.Username,
	}}, nil
}
