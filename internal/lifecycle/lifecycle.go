// Package lifecycle encodes the trip and maintenance state machines and the
// role rules for acting on them. Client screens and API handlers share it.
package lifecycle

import (
	"errors"
	"strings"

	"github.com/ukydev/aivodrive/internal/models"
)

var (
	ErrTransitionNotAllowed = errors.New("transition not allowed from current status")
	ErrForbidden            = errors.New("not permitted for this user")
	ErrReasonRequired       = errors.New("a cancellation reason is required")
	ErrUnknownAction        = errors.New("unknown action")
)

// Action is a lifecycle verb.
type Action string

const (
	ActionStart    Action = "start"
	ActionComplete Action = "complete"
	ActionCancel   Action = "cancel"
)

// Actor is the user attempting an action. DriverID links a driver account to its
// driver record.
type Actor struct {
	UserID   string
	Role     models.Role
	DriverID string
}

// ActorFromUser builds an actor from a profile.
func ActorFromUser(u models.User) Actor {
	return Actor{UserID: u.ID.Hex(), Role: u.Role, DriverID: u.DriverID}
}

// ActorFromClaims builds an actor from validated token claims.
func ActorFromClaims(c models.Claims) Actor {
	return Actor{UserID: c.UserID, Role: c.Role, DriverID: c.DriverID}
}

// ValidateReason rejects empty or whitespace-only cancellation reasons.
func ValidateReason(reason string) error {
	if strings.TrimSpace(reason) == "" {
		return ErrReasonRequired
	}
	return nil
}
