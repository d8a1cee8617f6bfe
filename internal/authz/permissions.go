package authz

import "github.com/ukydev/aivodrive/internal/models"

// Permission names an API capability. Each one is backed by a route in Routes so the
// server enforces exactly what the client shows.
type Permission string

const (
	ViewVehicles      Permission = "view_vehicles"
	ManageVehicles    Permission = "manage_vehicles"
	ViewDrivers       Permission = "view_drivers"
	ManageDrivers     Permission = "manage_drivers"
	ViewTrips         Permission = "view_trips"
	ManageTrips       Permission = "manage_trips"
	ViewMaintenance   Permission = "view_maintenance"
	ManageMaintenance Permission = "manage_maintenance"
	ViewReports       Permission = "view_reports"
)

var permissionRoutes = map[Permission]string{
	ViewVehicles:      "/vehicles",
	ManageVehicles:    "/vehicles/new",
	ViewDrivers:       "/drivers",
	ManageDrivers:     "/drivers/new",
	ViewTrips:         "/trips",
	ManageTrips:       "/trips/new",
	ViewMaintenance:   "/maintenance",
	ManageMaintenance: "/maintenance/new",
	ViewReports:       "/reports",
}

// Can reports whether role holds the permission. Unknown permissions are denied.
func Can(role models.Role, p Permission) bool {
	path, ok := permissionRoutes[p]
	if !ok {
		return false
	}
	return Allowed(path, role)
}
