package cli

import (
	"context"
	"fmt"

	"storeadmin/internal/guard"
	"storeadmin/internal/models"
)

// routeGroups maps guarded routes to the groups they require. A nil slice
// means any authenticated identity may enter.
var routeGroups = map[string][]models.Group{
	"/products":   nil,
	"/categories": {models.GroupAdmin},
}

// navigate evaluates the route guard for the current identity. On a login
// redirect the target route is remembered and replayed by resumePending
// after the next successful login. On a denial the user is told which
// groups would grant entry.
func (a *App) navigate(route string) bool {
	d := guard.Decide(a.session.Identity(), route, routeGroups[route])

	switch d.Action {
	case guard.ActionAllow:
		return true
	case guard.ActionRedirectToLogin:
		a.pendingRoute = d.From
		printlnFn("Please log in first.")
		return false
	default:
		printlnFn(fmt.Sprintf("Access denied. Allowed groups: %s", joinGroups(d.RequiredGroups)))
		return false
	}
}

// resumePending replays the navigation that was interrupted by a login
// redirect. Called once after a successful login.
func (a *App) resumePending(ctx context.Context) {
	route := a.pendingRoute
	if route == "" {
		return
	}
	a.pendingRoute = ""

	switch route {
	case "/products":
		_ = a.Products(ctx)
	case "/categories":
		_ = a.Categories(ctx)
	}
}

func joinGroups(groups []models.Group) string {
	s := ""
	for i, g := range groups {
		if i > 0 {
			s += ", "
		}
		s += string(g)
	}
	return s
}
