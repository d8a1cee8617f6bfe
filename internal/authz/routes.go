// Package authz holds the single route-to-role table used both to guard navigation
// and to build the sidebar, so a visible link always leads to a reachable page.
package authz

import (
	"strings"

	"github.com/ukydev/aivodrive/internal/models"
)

const (
	PathLogin     = "/login"
	PathDashboard = "/dashboard"
	PathTrips     = "/trips"
)

var (
	allRoles   = []models.Role{models.RoleAdmin, models.RoleDispatcher, models.RoleDriver}
	staff      = []models.Role{models.RoleAdmin, models.RoleDispatcher}
	adminsOnly = []models.Role{models.RoleAdmin}
)

// Route is one entry of the route table.
type Route struct {
	Pattern  string
	Roles    []models.Role
	Fallback string
	// NavLabel is non-empty for routes that appear in the sidebar.
	NavLabel string
}

// Routes is the route table. Order matters only for the sidebar.
var Routes = []Route{
	{Pattern: "/dashboard", Roles: allRoles, Fallback: PathDashboard, NavLabel: "Dashboard"},

	{Pattern: "/vehicles", Roles: staff, Fallback: PathDashboard, NavLabel: "Vehicles"},
	{Pattern: "/vehicles/new", Roles: adminsOnly, Fallback: PathDashboard},
	{Pattern: "/vehicles/:id", Roles: staff, Fallback: PathDashboard},
	{Pattern: "/vehicles/:id/edit", Roles: adminsOnly, Fallback: PathDashboard},

	{Pattern: "/drivers", Roles: staff, Fallback: PathDashboard, NavLabel: "Drivers"},
	{Pattern: "/drivers/new", Roles: adminsOnly, Fallback: PathDashboard},
	{Pattern: "/drivers/:id", Roles: staff, Fallback: PathDashboard},
	{Pattern: "/drivers/:id/edit", Roles: adminsOnly, Fallback: PathDashboard},

	{Pattern: "/trips", Roles: allRoles, Fallback: PathDashboard, NavLabel: "Trips"},
	{Pattern: "/trips/new", Roles: staff, Fallback: PathTrips},
	{Pattern: "/trips/:id", Roles: allRoles, Fallback: PathTrips},
	{Pattern: "/trips/:id/edit", Roles: staff, Fallback: PathTrips},

	{Pattern: "/maintenance", Roles: staff, Fallback: PathDashboard, NavLabel: "Maintenance"},
	{Pattern: "/maintenance/new", Roles: adminsOnly, Fallback: PathDashboard},
	{Pattern: "/maintenance/:id", Roles: staff, Fallback: PathDashboard},
	{Pattern: "/maintenance/:id/edit", Roles: adminsOnly, Fallback: PathDashboard},

	{Pattern: "/reports", Roles: adminsOnly, Fallback: PathDashboard, NavLabel: "Reports"},
	{Pattern: "/notifications", Roles: allRoles, Fallback: PathDashboard, NavLabel: "Notifications"},
	{Pattern: "/settings", Roles: allRoles, Fallback: PathDashboard, NavLabel: "Settings"},
	{Pattern: "/profile", Roles: allRoles, Fallback: PathDashboard},
}

// Match reports whether path matches the pattern. ":name" segments match any
// non-empty segment; "new" is not swallowed by ":id" because literal routes are
// tried first in Lookup.
func (r Route) Match(path string) bool {
	want := splitPath(r.Pattern)
	got := splitPath(path)
	if len(want) != len(got) {
		return false
	}
	for i, seg := range want {
		if strings.HasPrefix(seg, ":") {
			if got[i] == "" {
				return false
			}
			continue
		}
		if seg != got[i] {
			return false
		}
	}
	return true
}

// Permits reports whether role may view the route.
func (r Route) Permits(role models.Role) bool {
	for _, allowed := range r.Roles {
		if allowed == role {
			return true
		}
	}
	return false
}

// Lookup finds the route for a concrete path. Literal patterns win over parameterized ones.
func Lookup(path string) (Route, bool) {
	var param *Route
	for i := range Routes {
		r := &Routes[i]
		if !r.Match(path) {
			continue
		}
		if !strings.Contains(r.Pattern, ":") {
			return *r, true
		}
		if param == nil {
			param = r
		}
	}
	if param != nil {
		return *param, true
	}
	return Route{}, false
}

// Allowed is the one predicate shared by the guard and the sidebar.
func Allowed(path string, role models.Role) bool {
	r, ok := Lookup(path)
	return ok && r.Permits(role)
}

func splitPath(p string) []string {
	if i := strings.IndexAny(p, "?#"); i >= 0 {
		p = p[:i]
	}
	p = strings.Trim(p, "/")
	if p == "" {
		return nil
	}
	return strings.Split(p, "/")
}
