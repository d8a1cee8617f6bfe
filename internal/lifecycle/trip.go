package lifecycle

import (
	"fmt"

	"github.com/ukydev/aivodrive/internal/models"
)

var tripTransitions = map[Action]struct {
	from []models.TripStatus
	to   models.TripStatus
}{
	ActionStart:    {from: []models.TripStatus{models.TripScheduled}, to: models.TripInProgress},
	ActionComplete: {from: []models.TripStatus{models.TripInProgress}, to: models.TripCompleted},
	ActionCancel:   {from: []models.TripStatus{models.TripScheduled, models.TripInProgress}, to: models.TripCancelled},
}

// NextTripStatus returns the status reached by applying action to from.
func NextTripStatus(from models.TripStatus, action Action) (models.TripStatus, error) {
	t, ok := tripTransitions[action]
	if !ok {
		return from, ErrUnknownAction
	}
	for _, s := range t.from {
		if s == from {
			return t.to, nil
		}
	}
	return from, fmt.Errorf("%w: cannot %s a %s trip", ErrTransitionNotAllowed, action, from)
}

// IsTerminalTrip reports completed or cancelled.
func IsTerminalTrip(s models.TripStatus) bool {
	return s == models.TripCompleted || s == models.TripCancelled
}

// CanActOnTrip checks both the transition and the actor. Start and complete are
// open to staff and the assigned driver; cancel is staff only.
func CanActOnTrip(a Actor, trip models.Trip, action Action) error {
	if _, err := NextTripStatus(trip.Status, action); err != nil {
		return err
	}
	switch action {
	case ActionStart, ActionComplete:
		if a.Role.IsStaff() || isAssignedDriver(a, trip) {
			return nil
		}
	case ActionCancel:
		if a.Role.IsStaff() {
			return nil
		}
	}
	return ErrForbidden
}

// ApplyTrip validates and performs the transition on a copy of trip. Reason is only
// read for cancel.
func ApplyTrip(a Actor, trip models.Trip, action Action, reason string) (models.Trip, error) {
	if err := CanActOnTrip(a, trip, action); err != nil {
		return trip, err
	}
	if action == ActionCancel {
		if err := ValidateReason(reason); err != nil {
			return trip, err
		}
		trip.CancellationReason = reason
	}
	next, _ := NextTripStatus(trip.Status, action)
	trip.Status = next
	return trip, nil
}

// TripActions lists the lifecycle actions offered to a for trip.
func TripActions(a Actor, trip models.Trip) []Action {
	var out []Action
	for _, action := range []Action{ActionStart, ActionComplete, ActionCancel} {
		if CanActOnTrip(a, trip, action) == nil {
			out = append(out, action)
		}
	}
	return out
}

// CanEditTrip: staff only, and never once the trip is completed or cancelled.
func CanEditTrip(a Actor, trip models.Trip) bool {
	return a.Role.IsStaff() && !IsTerminalTrip(trip.Status)
}

// CanDeleteTrip: staff only; an active or completed trip cannot be deleted.
func CanDeleteTrip(a Actor, trip models.Trip) bool {
	if !a.Role.IsStaff() {
		return false
	}
	return trip.Status != models.TripInProgress && trip.Status != models.TripCompleted
}

// CanViewTrip: staff see everything, drivers only their own trips.
func CanViewTrip(a Actor, trip models.Trip) bool {
	return a.Role.IsStaff() || isAssignedDriver(a, trip)
}

func isAssignedDriver(a Actor, trip models.Trip) bool {
	return a.Role == models.RoleDriver && a.DriverID != "" && a.DriverID == trip.DriverID
}
