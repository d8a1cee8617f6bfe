package handlers

import (
	"fmt"
	"net/http"

	log "github.com/sirupsen/logrus"
	"github.com/ukydev/aivodrive/internal/db"
	"github.com/ukydev/aivodrive/internal/lifecycle"
	"github.com/ukydev/aivodrive/internal/models"
	"github.com/ukydev/aivodrive/internal/respond"
	"github.com/ukydev/aivodrive/internal/validation"
	"go.mongodb.org/mongo-driver/bson"
)

var tripList = listSpec{
	sortable: map[string]string{
		"startTime": "start_time", "endTime": "end_time", "status": "status",
		"origin": "origin", "destination": "destination", "distance": "distance",
		"createdAt": "created_at",
	},
	filters: map[string]string{
		"status": "status", "driverId": "driver_id", "vehicleId": "vehicle_id", "purpose": "purpose",
	},
	search: []string{"origin", "destination", "notes"},
}

// TripHandler serves /api/trips. Drivers only ever see their own trips.
type TripHandler struct {
	crud[models.Trip]
	alerts *Alerter
}

func NewTripHandler(store db.Store[models.Trip], alerts *Alerter) *TripHandler {
	return &TripHandler{
		crud:   crud[models.Trip]{name: "Trip", store: store, spec: tripList},
		alerts: alerts,
	}
}

// driverScope restricts queries to the caller's trips when the caller is a driver.
// A driver account with no linked driver record matches nothing.
func driverScope(a lifecycle.Actor) bson.M {
	if a.Role != models.RoleDriver {
		return nil
	}
	if a.DriverID == "" {
		return bson.M{"_id": bson.M{"$exists": false}}
	}
	return bson.M{"driver_id": a.DriverID}
}

func (h *TripHandler) List(w http.ResponseWriter, r *http.Request) {
	a, ok := actor(w, r)
	if !ok {
		return
	}
	h.listScoped(w, r, driverScope(a))
}

func (h *TripHandler) Stats(w http.ResponseWriter, r *http.Request) {
	a, ok := actor(w, r)
	if !ok {
		return
	}
	h.statsScoped(w, r, driverScope(a))
}

func (h *TripHandler) Get(w http.ResponseWriter, r *http.Request) {
	_, trip, ok := h.visible(w, r)
	if !ok {
		return
	}
	respond.Data(w, http.StatusOK, trip)
}

// visible loads the trip and hides it from drivers it is not assigned to.
func (h *TripHandler) visible(w http.ResponseWriter, r *http.Request) (lifecycle.Actor, *models.Trip, bool) {
	a, ok := actor(w, r)
	if !ok {
		return a, nil, false
	}
	trip, ok := h.load(w, r)
	if !ok {
		return a, nil, false
	}
	if !lifecycle.CanViewTrip(a, *trip) {
		respond.Error(w, http.StatusNotFound, "Trip not found")
		return a, nil, false
	}
	return a, trip, true
}

// Create schedules a new trip. Status always starts at scheduled.
func (h *TripHandler) Create(w http.ResponseWriter, r *http.Request) {
	var form validation.TripForm
	if !decodeValid(w, r, &form) {
		return
	}
	t := form.Trip()
	t.CreatedAt = h.clock.now()
	t.UpdatedAt = t.CreatedAt
	h.insert(w, r, t, func(t *models.Trip, id string) { t.ID = objectIDOrZero(id) })
}

// Update edits a trip that is neither completed nor cancelled. Lifecycle fields
// are carried over; status only changes through the transition endpoints.
func (h *TripHandler) Update(w http.ResponseWriter, r *http.Request) {
	a, existing, ok := h.visible(w, r)
	if !ok {
		return
	}
	if !lifecycle.CanEditTrip(a, *existing) {
		respond.Error(w, http.StatusConflict, fmt.Sprintf("a %s trip cannot be edited", existing.Status))
		return
	}

	var form validation.TripForm
	if !decodeJSON(w, r, &form) {
		return
	}
	if err := validation.TripEdit(form, *existing); err != nil {
		fields, _ := validation.FieldErrors(err)
		respond.ErrorWithData(w, http.StatusUnprocessableEntity, "Validation failed", fields)
		return
	}

	t := form.Trip()
	t.ID = existing.ID
	t.Status = existing.Status
	t.StartedAt = existing.StartedAt
	t.CompletedAt = existing.CompletedAt
	t.CancellationReason = existing.CancellationReason
	t.CreatedAt = existing.CreatedAt
	t.UpdatedAt = h.clock.now()
	h.replaceIf(w, r, string(existing.Status), t)
}

// Delete removes a scheduled or cancelled trip.
func (h *TripHandler) Delete(w http.ResponseWriter, r *http.Request) {
	a, trip, ok := h.visible(w, r)
	if !ok {
		return
	}
	if !lifecycle.CanDeleteTrip(a, *trip) {
		if !a.Role.IsStaff() {
			respond.Error(w, http.StatusForbidden, "Insufficient permissions")
			return
		}
		respond.Error(w, http.StatusConflict, fmt.Sprintf("a %s trip cannot be deleted", trip.Status))
		return
	}
	h.removeIf(w, r, string(trip.Status))
}

func (h *TripHandler) Start(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, lifecycle.ActionStart, "")
}

func (h *TripHandler) Complete(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, lifecycle.ActionComplete, "")
}

// Cancel requires a non-blank reason in the body.
func (h *TripHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	var req validation.CancelRequest
	if !decodeValid(w, r, &req) {
		return
	}
	h.transition(w, r, lifecycle.ActionCancel, req.Reason)
}

func (h *TripHandler) transition(w http.ResponseWriter, r *http.Request, action lifecycle.Action, reason string) {
	a, trip, ok := h.visible(w, r)
	if !ok {
		return
	}
	next, err := lifecycle.ApplyTrip(a, *trip, action, reason)
	if err != nil {
		lifecycleError(w, err)
		return
	}

	now := h.clock.now()
	switch next.Status {
	case models.TripInProgress:
		next.StartedAt = &now
	case models.TripCompleted:
		next.CompletedAt = &now
		if next.EndTime == nil {
			next.EndTime = &now
		}
	}
	next.UpdatedAt = now

	if err := h.store.UpdateIf(r.Context(), next.ID.Hex(), statusIs(string(trip.Status)), next); err != nil {
		storeError(w, err, h.name)
		return
	}
	log.WithFields(log.Fields{
		"trip_id": next.ID.Hex(),
		"action":  action,
		"status":  next.Status,
		"user_id": a.UserID,
	}).Info("Trip transition")

	if alert, ok := tripAlert(next, action); ok {
		h.alerts.Raise(r.Context(), alert)
	}
	respond.Data(w, http.StatusOK, next)
}

func tripAlert(t models.Trip, action lifecycle.Action) (models.Alert, bool) {
	link := "/trips/" + t.ID.Hex()
	route := t.Origin + " to " + t.Destination
	switch action {
	case lifecycle.ActionCancel:
		return models.Alert{
			Type:     "trip",
			Title:    "Trip cancelled",
			Message:  fmt.Sprintf("%s was cancelled: %s", route, t.CancellationReason),
			Priority: models.PriorityHigh,
			Link:     link,
		}, true
	case lifecycle.ActionComplete:
		return models.Alert{
			Type:     "trip",
			Title:    "Trip completed",
			Message:  route + " was completed",
			Priority: models.PriorityLow,
			Link:     link,
		}, true
	}
	return models.Alert{}, false
}
