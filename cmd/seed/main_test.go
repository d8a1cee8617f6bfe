package main

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ukydev/aivodrive/internal/lifecycle"
	"github.com/ukydev/aivodrive/internal/models"
	"github.com/ukydev/aivodrive/internal/validation"
)

var seedNow = time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC)

func TestBuildFleet_Sizes(t *testing.T) {
	f := buildFleet(rand.New(rand.NewSource(1)), 8, seedNow)

	assert.Len(t, f.Vehicles, 8)
	assert.Len(t, f.Drivers, 8)
	assert.Len(t, f.Trips, 24)
	assert.Len(t, f.Maintenance, 8)

	empty := buildFleet(rand.New(rand.NewSource(1)), 0, seedNow)
	assert.Empty(t, empty.Vehicles)
	assert.Empty(t, empty.Trips)
}

func TestBuildFleet_References(t *testing.T) {
	f := buildFleet(rand.New(rand.NewSource(2)), 12, seedNow)

	vehicles := map[string]models.Vehicle{}
	for _, v := range f.Vehicles {
		vehicles[v.ID.Hex()] = v
		assert.True(t, v.Status.IsValid(), "vehicle status %q", v.Status)
	}
	drivers := map[string]models.Driver{}
	for _, d := range f.Drivers {
		drivers[d.ID.Hex()] = d
		assert.Contains(t, vehicles, d.AssignedVehicleID)
	}

	for _, trip := range f.Trips {
		assert.Contains(t, vehicles, trip.VehicleID)
		assert.Contains(t, drivers, trip.DriverID)
		assert.NotEqual(t, trip.Origin, trip.Destination)
	}
	for _, m := range f.Maintenance {
		assert.Contains(t, vehicles, m.VehicleID)
	}
}

func TestBuildFleet_StatusesAreConsistent(t *testing.T) {
	f := buildFleet(rand.New(rand.NewSource(3)), 12, seedNow)

	inProgress := map[string]int{}
	statuses := map[models.TripStatus]int{}
	for _, trip := range f.Trips {
		statuses[trip.Status]++
		switch trip.Status {
		case models.TripInProgress:
			inProgress[trip.DriverID]++
			require.NotNil(t, trip.StartedAt)
		case models.TripCompleted:
			require.NotNil(t, trip.CompletedAt)
			require.NotNil(t, trip.EndTime)
			assert.True(t, trip.CompletedAt.After(trip.StartTime))
		case models.TripCancelled:
			assert.NotEmpty(t, trip.CancellationReason)
		case models.TripScheduled:
			assert.True(t, trip.StartTime.After(seedNow))
		}
	}
	for _, s := range models.TripStatuses {
		assert.Positive(t, statuses[s], "no %s trip seeded", s)
	}

	for _, d := range f.Drivers {
		onTrip := d.Status == models.DriverOnTrip
		assert.Equal(t, onTrip, inProgress[d.ID.Hex()] == 1, "driver %s", d.ID.Hex())
		assert.False(t, lifecycle.DriverAnomaly(d, tripsOf(f.Trips, d.ID.Hex(), models.TripInProgress)))
	}

	overdue := 0
	for _, m := range f.Maintenance {
		if m.DisplayStatus(seedNow) == models.MaintenanceOverdue {
			overdue++
		}
		if m.Status == models.MaintenanceInProgress {
			assert.False(t, tripInProgress(f.Trips, m.VehicleID), "vehicle in the shop is also on a trip")
		}
	}
	assert.Positive(t, overdue)
}

func TestAccounts_OnePerRole(t *testing.T) {
	f := buildFleet(rand.New(rand.NewSource(4)), 3, seedNow)
	accts := accounts(f, "password123")

	require.Len(t, accts, 3)
	roles := map[models.Role]models.User{}
	for _, a := range accts {
		roles[a.User.Role] = a.User
		assert.NoError(t, validation.Struct(models.LoginRequest{Email: a.User.Email, Password: a.Password}))
	}
	assert.Contains(t, roles, models.RoleAdmin)
	assert.Contains(t, roles, models.RoleDispatcher)
	assert.Equal(t, f.Drivers[0].ID.Hex(), roles[models.RoleDriver].DriverID)
}

func tripsOf(trips []models.Trip, driverID string, status models.TripStatus) []models.Trip {
	var out []models.Trip
	for _, t := range trips {
		if t.DriverID == driverID && t.Status == status {
			out = append(out, t)
		}
	}
	return out
}
