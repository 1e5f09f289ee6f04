package models

// Group is a user group name as issued by the server. Access decisions
// compare groups by exact match; GroupAdmin is the superuser sentinel.
type Group string

const GroupAdmin Group = "admin"

// User is the authenticated identity held client-side while a session is
// active. It is always replaced wholesale on login/refresh and cleared
// wholesale on logout; individual fields are never mutated in place.
type User struct {
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	Group     Group  `json:"group"`
	AvatarURL string `json:"avatar_url,omitempty"`
}
