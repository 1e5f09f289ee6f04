package guard

import "storeadmin/internal/models"

// CanMutate reports whether user may edit or delete the category: admin
// always may, anyone else only when their group appears in the category's
// allowed list.
//
// This is a UI affordance, not a security boundary. It decides whether edit
// controls are offered; the authoritative check happens server-side and a
// client that skips this predicate gains nothing.
func CanMutate(user *models.User, category *models.Category) bool {
	if user == nil {
		return false
	}
	if user.Group == models.GroupAdmin {
		return true
	}
	for _, g := range category.AllowedGroups {
		if user.Group == g {
			return true
		}
	}
	return false
}
