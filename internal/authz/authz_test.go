package authz

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/ukydev/aivodrive/internal/models"
)

func concrete(pattern string) string {
	return strings.ReplaceAll(pattern, ":id", "64b7f0c2a1e4d3b2c1a09f8e")
}

func TestNavigationMatchesGuard(t *testing.T) {
	for _, role := range models.Roles {
		viewer := Viewer{Authenticated: true, Role: role}
		nav := map[string]bool{}
		for _, item := range Navigation(role) {
			nav[item.Path] = true
		}

		for _, r := range Routes {
			if r.NavLabel == "" {
				continue
			}
			d := Decide(r.Pattern, viewer)
			assert.Equal(t, d.Outcome == Render, nav[r.Pattern],
				"role %s route %s: guard=%s sidebar=%v", role, r.Pattern, d.Outcome, nav[r.Pattern])
		}
		for path := range nav {
			assert.Equal(t, Render, Decide(path, viewer).Outcome, "role %s sidebar links to %s", role, path)
		}
	}
}

func TestNavigation_PerRole(t *testing.T) {
	labels := func(role models.Role) []string {
		var out []string
		for _, i := range Navigation(role) {
			out = append(out, i.Label)
		}
		return out
	}

	assert.Equal(t, []string{"Dashboard", "Vehicles", "Drivers", "Trips", "Maintenance", "Reports", "Notifications", "Settings"}, labels(models.RoleAdmin))
	assert.Equal(t, []string{"Dashboard", "Vehicles", "Drivers", "Trips", "Maintenance", "Notifications", "Settings"}, labels(models.RoleDispatcher))
	assert.Equal(t, []string{"Dashboard", "Trips", "Notifications", "Settings"}, labels(models.RoleDriver))
}

func TestDecide(t *testing.T) {
	admin := Viewer{Authenticated: true, Role: models.RoleAdmin}
	dispatcher := Viewer{Authenticated: true, Role: models.RoleDispatcher}
	driver := Viewer{Authenticated: true, Role: models.RoleDriver}
	anonymous := Viewer{}

	tests := []struct {
		name    string
		path    string
		viewer  Viewer
		outcome Outcome
		target  string
	}{
		{"admin creates vehicle", "/vehicles/new", admin, Render, ""},
		{"dispatcher cannot create vehicle", "/vehicles/new", dispatcher, Redirect, "/dashboard"},
		{"dispatcher views vehicle", concrete("/vehicles/:id"), dispatcher, Render, ""},
		{"driver cannot list vehicles", "/vehicles", driver, Redirect, "/dashboard"},
		{"dispatcher creates trip", "/trips/new", dispatcher, Render, ""},
		{"driver cannot create trip", "/trips/new", driver, Redirect, "/trips"},
		{"driver cannot edit trip", concrete("/trips/:id/edit"), driver, Redirect, "/trips"},
		{"driver views trip", concrete("/trips/:id"), driver, Render, ""},
		{"reports admin only", "/reports", dispatcher, Redirect, "/dashboard"},
		{"settings for drivers", "/settings", driver, Render, ""},
		{"anonymous to login", "/trips", anonymous, Redirect, "/login"},
		{"anonymous unknown to login", "/nowhere", anonymous, Redirect, "/login"},
		{"known user unknown route", "/nowhere/at/all", driver, Redirect, "/dashboard"},
		{"login page for anonymous", "/login", anonymous, Render, ""},
		{"login page when signed in", "/login", admin, Redirect, "/dashboard"},
		{"trailing slash and query", "/trips/?page=2", driver, Render, ""},
		{"root is unknown", "/", admin, Redirect, "/dashboard"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := Decide(tt.path, tt.viewer)
			assert.Equal(t, tt.outcome, d.Outcome)
			assert.Equal(t, tt.target, d.Target)
		})
	}
}

func TestDecide_LoadingNeverRedirects(t *testing.T) {
	for _, path := range []string{"/dashboard", "/reports", "/login", "/unknown"} {
		d := Decide(path, Viewer{Loading: true})
		assert.Equal(t, Pending, d.Outcome, path)
		assert.Empty(t, d.Target)
	}
}

func TestResolve_FollowsFallbacks(t *testing.T) {
	path, outcome := Resolve("/trips/new", Viewer{Authenticated: true, Role: models.RoleDriver})
	assert.Equal(t, "/trips", path)
	assert.Equal(t, Render, outcome)

	path, outcome = Resolve("/reports", Viewer{})
	assert.Equal(t, "/login", path)
	assert.Equal(t, Render, outcome)
}

func TestFallbacksAlwaysRender(t *testing.T) {
	for _, r := range Routes {
		for _, role := range models.Roles {
			if r.Permits(role) {
				continue
			}
			d := Decide(r.Fallback, Viewer{Authenticated: true, Role: role})
			assert.Equal(t, Render, d.Outcome, "fallback %s for %s on %s", r.Fallback, role, r.Pattern)
		}
	}
}

func TestLookup_LiteralBeatsParam(t *testing.T) {
	r, ok := Lookup("/trips/new")
	assert.True(t, ok)
	assert.Equal(t, "/trips/new", r.Pattern)

	r, ok = Lookup("/trips/abc")
	assert.True(t, ok)
	assert.Equal(t, "/trips/:id", r.Pattern)

	_, ok = Lookup("/trips/abc/delete")
	assert.False(t, ok)
}

func TestCan(t *testing.T) {
	assert.True(t, Can(models.RoleAdmin, ManageVehicles))
	assert.False(t, Can(models.RoleDispatcher, ManageVehicles))
	assert.True(t, Can(models.RoleDispatcher, ManageTrips))
	assert.False(t, Can(models.RoleDriver, ManageTrips))
	assert.True(t, Can(models.RoleDriver, ViewTrips))
	assert.False(t, Can(models.RoleDriver, ViewMaintenance))
	assert.True(t, Can(models.RoleAdmin, ViewReports))
	assert.False(t, Can(models.RoleAdmin, Permission("launch_rockets")))
}
