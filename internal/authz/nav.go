package authz

import "github.com/ukydev/aivodrive/internal/models"

// NavItem is a sidebar link.
type NavItem struct {
	Label string
	Path  string
}

// Navigation returns the sidebar for role, built from Routes with the same Allowed
// predicate the guard uses.
func Navigation(role models.Role) []NavItem {
	items := make([]NavItem, 0, len(Routes))
	for _, r := range Routes {
		if r.NavLabel == "" {
			continue
		}
		if Allowed(r.Pattern, role) {
			items = append(items, NavItem{Label: r.NavLabel, Path: r.Pattern})
		}
	}
	return items
}
