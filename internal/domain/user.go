package domain

import "time"

// MaxUsernameLength bounds the username a caller may register.
const MaxUsernameLength = 100

// User owns a reading library. Users are created on first reference by
// username and never deleted.
type User struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"created_at"`
}
