package lifecycle

import "github.com/ukydev/aivodrive/internal/models"

// DriverAnomaly reports a driver marked on_trip with no in-progress trip among trips.
// The mismatch is shown to users, never corrected.
func DriverAnomaly(d models.Driver, trips []models.Trip) bool {
	if d.Status != models.DriverOnTrip {
		return false
	}
	id := d.ID.Hex()
	for _, t := range trips {
		if t.DriverID == id && t.Status == models.TripInProgress {
			return false
		}
	}
	return true
}

// CanEditDriver: driver status is set directly by admins through the edit form.
func CanEditDriver(a Actor) bool {
	return a.Role == models.RoleAdmin
}
