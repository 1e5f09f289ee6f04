// Package guard contains the pure access-decision logic of the client:
// route gating by authentication/group and the advisory per-resource
// mutate-permission check. Nothing here mutates session state or performs
// I/O; both checks read the identity the caller passes in.
package guard

import "storeadmin/internal/models"

// Action is the outcome of a route decision.
type Action string

const (
	// ActionAllow lets the navigation proceed.
	ActionAllow Action = "allow"
	// ActionRedirectToLogin sends an unauthenticated user to the login
	// view; the decision records the originally requested route so login
	// can return there afterwards.
	ActionRedirectToLogin Action = "login"
	// ActionDeny renders the unauthorized view listing the groups that
	// would have been accepted.
	ActionDeny Action = "deny"
)

// Decision is the result of evaluating a navigation attempt.
type Decision struct {
	Action Action

	// From is the route the user originally asked for. Set on
	// ActionRedirectToLogin.
	From string

	// RequiredGroups is the union of the route's required groups and
	// GroupAdmin, deduplicated. Set on ActionDeny for display.
	RequiredGroups []models.Group
}

// Decide evaluates whether user may enter route. Rules, in order:
//
//  1. no identity               -> redirect to login, remembering route;
//  2. no required groups        -> allow any authenticated identity;
//  3. identity group is admin   -> allow, regardless of the required set;
//  4. group in the required set -> allow;
//  5. otherwise                 -> deny with the accepted-group union.
//
// Decide never causes a session transition; it only reads the identity.
func Decide(user *models.User, route string, required []models.Group) Decision {
	if user == nil {
		return Decision{Action: ActionRedirectToLogin, From: route}
	}
	if len(required) == 0 {
		return Decision{Action: ActionAllow}
	}
	if user.Group == models.GroupAdmin {
		return Decision{Action: ActionAllow}
	}
	for _, g := range required {
		if user.Group == g {
			return Decision{Action: ActionAllow}
		}
	}
	return Decision{Action: ActionDeny, RequiredGroups: unionWithAdmin(required)}
}

// unionWithAdmin appends GroupAdmin to the set unless already present,
// preserving the declared order.
func unionWithAdmin(groups []models.Group) []models.Group {
	out := make([]models.Group, 0, len(groups)+1)
	seen := make(map[models.Group]struct{}, len(groups)+1)
	for _, g := range append(append([]models.Group{}, groups...), models.GroupAdmin) {
		if _, ok := seen[g]; ok {
			continue
		}
		seen[g] = struct{}{}
		out = append(out, g)
	}
	return out
}
