package screens

import (
	"context"
	"sync"

	log "github.com/sirupsen/logrus"
	"github.com/ukydev/aivodrive/internal/lifecycle"
	"github.com/ukydev/aivodrive/internal/models"
)

// TripAPI is the trip service as seen by the detail screen.
type TripAPI interface {
	Get(ctx context.Context, id string) (*models.Trip, error)
	Start(ctx context.Context, id string) (*models.Trip, error)
	Complete(ctx context.Context, id string) (*models.Trip, error)
	Cancel(ctx context.Context, id, reason string) (*models.Trip, error)
	Delete(ctx context.Context, id string) error
}

// TripDetail is the trip detail screen.
type TripDetail struct {
	base
	*lifetime
	api   TripAPI
	actor lifecycle.Actor

	mu      sync.Mutex
	trip    *models.Trip
	pending bool
}

// NewTripDetail creates the screen for actor. errs may be nil.
func NewTripDetail(api TripAPI, actor lifecycle.Actor, errs ErrorHandler) *TripDetail {
	return &TripDetail{base: base{errs: errs}, lifetime: newLifetime(), api: api, actor: actor}
}

// Load fetches the trip. A driver asking for someone else's trip gets ErrForbidden.
func (s *TripDetail) Load(ctx context.Context, id string) error {
	ctx, done, err := s.begin(ctx)
	if err != nil {
		return err
	}
	defer done()

	trip, err := s.api.Get(ctx, id)
	if s.Closed() {
		return ErrClosed
	}
	if err != nil {
		return s.remote(err)
	}
	if !lifecycle.CanViewTrip(s.actor, *trip) {
		return lifecycle.ErrForbidden
	}
	s.mu.Lock()
	s.trip = trip
	s.mu.Unlock()
	return nil
}

// Trip returns the displayed trip.
func (s *TripDetail) Trip() (models.Trip, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.trip == nil {
		return models.Trip{}, false
	}
	return *s.trip, true
}

// Actions lists the buttons to show. Nothing is offered while an action is pending.
func (s *TripDetail) Actions() []lifecycle.Action {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.trip == nil || s.pending {
		return nil
	}
	return lifecycle.TripActions(s.actor, *s.trip)
}

func (s *TripDetail) CanEdit() bool {
	t, ok := s.Trip()
	return ok && lifecycle.CanEditTrip(s.actor, t)
}

func (s *TripDetail) CanDelete() bool {
	t, ok := s.Trip()
	return ok && lifecycle.CanDeleteTrip(s.actor, t)
}

func (s *TripDetail) Start(ctx context.Context) error {
	return s.act(ctx, lifecycle.ActionStart, "")
}

func (s *TripDetail) Complete(ctx context.Context) error {
	return s.act(ctx, lifecycle.ActionComplete, "")
}

// Cancel requires a non-blank reason; a blank one fails without calling the server.
func (s *TripDetail) Cancel(ctx context.Context, reason string) error {
	return s.act(ctx, lifecycle.ActionCancel, reason)
}

func (s *TripDetail) act(ctx context.Context, action lifecycle.Action, reason string) error {
	s.mu.Lock()
	if s.trip == nil {
		s.mu.Unlock()
		return ErrNotLoaded
	}
	if s.pending {
		s.mu.Unlock()
		return ErrActionPending
	}
	current := *s.trip
	if _, err := lifecycle.ApplyTrip(s.actor, current, action, reason); err != nil {
		s.mu.Unlock()
		return err
	}
	ctx, done, err := s.begin(ctx)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	defer done()
	s.pending = true
	s.mu.Unlock()

	id := current.ID.Hex()
	var updated *models.Trip
	switch action {
	case lifecycle.ActionStart:
		updated, err = s.api.Start(ctx, id)
	case lifecycle.ActionComplete:
		updated, err = s.api.Complete(ctx, id)
	case lifecycle.ActionCancel:
		updated, err = s.api.Cancel(ctx, id, reason)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending = false
	if s.Closed() {
		return ErrClosed
	}
	if err != nil {
		log.WithError(err).WithFields(log.Fields{"trip_id": id, "action": action}).Warn("Trip action failed")
		return s.remote(err)
	}
	s.trip = updated
	return nil
}

// Delete removes the trip if its status allows it.
func (s *TripDetail) Delete(ctx context.Context) error {
	t, ok := s.Trip()
	if !ok {
		return ErrNotLoaded
	}
	if !lifecycle.CanDeleteTrip(s.actor, t) {
		return lifecycle.ErrTransitionNotAllowed
	}
	ctx, done, err := s.begin(ctx)
	if err != nil {
		return err
	}
	defer done()
	return s.remote(s.api.Delete(ctx, t.ID.Hex()))
}
