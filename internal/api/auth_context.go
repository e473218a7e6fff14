package api

import (
	"strings"

	domainerrors "github.com/shelfkeeper/shelfkeeper-server/internal/errors"
)

// UserRef identifies the calling user by username. There are no passwords;
// the query parameter wins over the cookie.
type UserRef struct {
	Username       string `query:"username" doc:"Username owning the library; created on first use"`
	UsernameCookie string `cookie:"username" doc:"Username owning the library, when not passed as a query parameter"`
}

// Resolve returns the referenced username or a validation error when none was sent.
func (u UserRef) Resolve() (string, error) {
	name := strings.TrimSpace(u.Username)
	if name == "" {
		name = strings.TrimSpace(u.UsernameCookie)
	}
	if name == "" {
		return "", domainerrors.ValidationWithDetails("username is required", map[string]string{
			"username": "is required",
		})
	}
	return name, nil
}

// AdminAuth carries the admin token from any of the places a client may put it.
type AdminAuth struct {
	HeaderToken string `header:"X-Admin-Token" doc:"Admin token"`
	CookieToken string `cookie:"admin_token" doc:"Admin token, as a cookie"`
	QueryToken  string `query:"admin_token" doc:"Admin token, as a query parameter"`
}

func (a AdminAuth) token() string {
	switch {
	case a.HeaderToken != "":
		return a.HeaderToken
	case a.CookieToken != "":
		return a.CookieToken
	default:
		return a.QueryToken
	}
}

// RequireAdmin checks the admin token. A missing token is 401, a wrong one 403.
func (s *Server) RequireAdmin(a AdminAuth) error {
	token := a.token()
	if token == "" {
		return domainerrors.Unauthorized("admin token required")
	}
	if s.admin == nil || !s.admin.Verify(token) {
		return domainerrors.Forbidden("admin access required")
	}
	return nil
}
