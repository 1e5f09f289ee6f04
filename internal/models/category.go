package models

// Category is a catalog category. AllowedGroups lists the user groups that
// may mutate it; an empty list is normalized to [GroupAdmin] at creation.
type Category struct {
	ID            int64   `json:"id"`
	Name          string  `json:"name"`
	AllowedGroups []Group `json:"allowed_groups"`
}
