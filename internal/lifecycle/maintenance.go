package lifecycle

import (
	"fmt"
	"time"

	"github.com/ukydev/aivodrive/internal/models"
)

var maintenanceTransitions = map[Action]struct {
	from models.MaintenanceStatus
	to   models.MaintenanceStatus
}{
	ActionStart:    {from: models.MaintenanceScheduled, to: models.MaintenanceInProgress},
	ActionComplete: {from: models.MaintenanceInProgress, to: models.MaintenanceCompleted},
}

// NextMaintenanceStatus returns the status reached by applying action to from.
// Maintenance has no cancel.
func NextMaintenanceStatus(from models.MaintenanceStatus, action Action) (models.MaintenanceStatus, error) {
	t, ok := maintenanceTransitions[action]
	if !ok {
		return from, ErrUnknownAction
	}
	if t.from != from {
		return from, fmt.Errorf("%w: cannot %s %s maintenance", ErrTransitionNotAllowed, action, from)
	}
	return t.to, nil
}

// CanActOnMaintenance: admins only, and only along the state machine.
func CanActOnMaintenance(a Actor, m models.Maintenance, action Action) error {
	if _, err := NextMaintenanceStatus(m.Status, action); err != nil {
		return err
	}
	if a.Role != models.RoleAdmin {
		return ErrForbidden
	}
	return nil
}

// ApplyMaintenance performs the transition on a copy of m. Completing stamps
// CompletedAt with now and records the optional notes.
func ApplyMaintenance(a Actor, m models.Maintenance, action Action, notes string, now time.Time) (models.Maintenance, error) {
	if err := CanActOnMaintenance(a, m, action); err != nil {
		return m, err
	}
	next, _ := NextMaintenanceStatus(m.Status, action)
	m.Status = next
	if next == models.MaintenanceCompleted {
		m.CompletionNotes = notes
		m.CompletedAt = &now
	}
	return m, nil
}

// MaintenanceActions lists the lifecycle actions offered to a for m.
func MaintenanceActions(a Actor, m models.Maintenance) []Action {
	var out []Action
	for _, action := range []Action{ActionStart, ActionComplete} {
		if CanActOnMaintenance(a, m, action) == nil {
			out = append(out, action)
		}
	}
	return out
}

// CanEditMaintenance: admins only, until completed.
func CanEditMaintenance(a Actor, m models.Maintenance) bool {
	return a.Role == models.RoleAdmin && m.Status != models.MaintenanceCompleted
}

// CanDeleteMaintenance: admins only, in any status. Trips forbid deleting completed
// records; maintenance does not. See DeleteAsymmetry.
func CanDeleteMaintenance(a Actor, _ models.Maintenance) bool {
	return a.Role == models.RoleAdmin
}

// DeleteAsymmetry describes the one place trip and maintenance deletion rules differ,
// so screens can surface it instead of hiding it.
const DeleteAsymmetry = "completed maintenance records can be deleted; completed trips cannot"
