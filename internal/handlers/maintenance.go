package handlers

import (
	"context"
	"fmt"
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/ukydev/aivodrive/internal/db"
	"github.com/ukydev/aivodrive/internal/lifecycle"
	"github.com/ukydev/aivodrive/internal/models"
	"github.com/ukydev/aivodrive/internal/respond"
	"github.com/ukydev/aivodrive/internal/validation"
	"go.mongodb.org/mongo-driver/bson"
)

var maintenanceList = listSpec{
	sortable: map[string]string{
		"date": "date", "cost": "cost", "status": "status",
		"maintenanceType": "maintenance_type", "createdAt": "created_at",
	},
	filters: map[string]string{
		"status": "status", "vehicleId": "vehicle_id", "maintenanceType": "maintenance_type",
	},
	search: []string{"description", "technician", "maintenance_type"},
}

// overdueFilter matches scheduled records whose date has passed.
func overdueFilter(now time.Time) bson.M {
	return bson.M{"status": string(models.MaintenanceScheduled), "date": bson.M{"$lt": now}}
}

// MaintenanceHandler serves /api/maintenance.
type MaintenanceHandler struct {
	crud[models.Maintenance]
	vehicles db.Store[models.Vehicle]
	alerts   *Alerter
}

// NewMaintenanceHandler creates the handler. vehicles may be nil, in which case
// transitions do not touch the serviced vehicle.
func NewMaintenanceHandler(store db.Store[models.Maintenance], vehicles db.Store[models.Vehicle], alerts *Alerter) *MaintenanceHandler {
	return &MaintenanceHandler{
		crud:     crud[models.Maintenance]{name: "Maintenance record", store: store, spec: maintenanceList},
		vehicles: vehicles,
		alerts:   alerts,
	}
}

// List accepts status=overdue in addition to the stored statuses.
func (h *MaintenanceHandler) List(w http.ResponseWriter, r *http.Request) {
	q := h.spec.query(r)
	if q.Filter["status"] == string(models.MaintenanceOverdue) {
		delete(q.Filter, "status")
		for k, v := range overdueFilter(h.clock.now()) {
			q.Filter[k] = v
		}
	}
	items, total, err := h.store.Find(r.Context(), q)
	if err != nil {
		storeError(w, err, h.name)
		return
	}
	page(w, items, q, total)
}

// Stats adds an overdue count to the stored statuses. Overdue records are also
// counted as scheduled, so it is not part of Total.
func (h *MaintenanceHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.store.CountByStatus(r.Context(), nil)
	if err != nil {
		storeError(w, err, h.name)
		return
	}
	_, overdue, err := h.store.Find(r.Context(), db.Query{Filter: overdueFilter(h.clock.now()), Page: 1, Limit: 1})
	if err != nil {
		storeError(w, err, h.name)
		return
	}
	if stats.ByStatus == nil {
		stats.ByStatus = map[string]int64{}
	}
	stats.ByStatus[string(models.MaintenanceOverdue)] = overdue
	respond.Data(w, http.StatusOK, stats)
}

func (h *MaintenanceHandler) Create(w http.ResponseWriter, r *http.Request) {
	var form validation.MaintenanceForm
	if !decodeValid(w, r, &form) {
		return
	}
	m := form.Maintenance()
	m.CreatedAt = h.clock.now()
	m.UpdatedAt = m.CreatedAt
	h.insert(w, r, m, func(m *models.Maintenance, id string) { m.ID = objectIDOrZero(id) })
}

// Update edits a record until it is completed.
func (h *MaintenanceHandler) Update(w http.ResponseWriter, r *http.Request) {
	a, ok := actor(w, r)
	if !ok {
		return
	}
	existing, ok := h.load(w, r)
	if !ok {
		return
	}
	if !lifecycle.CanEditMaintenance(a, *existing) {
		if a.Role != models.RoleAdmin {
			respond.Error(w, http.StatusForbidden, "Insufficient permissions")
			return
		}
		respond.Error(w, http.StatusConflict, "a completed maintenance record cannot be edited")
		return
	}

	var form validation.MaintenanceForm
	if !decodeValid(w, r, &form) {
		return
	}
	m := form.Maintenance()
	m.ID = existing.ID
	m.Status = existing.Status
	m.CreatedAt = existing.CreatedAt
	m.UpdatedAt = h.clock.now()
	h.replaceIf(w, r, string(existing.Status), m)
}

func (h *MaintenanceHandler) Start(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, lifecycle.ActionStart, "")
}

// Complete takes optional completion notes.
func (h *MaintenanceHandler) Complete(w http.ResponseWriter, r *http.Request) {
	var req validation.CompleteRequest
	if !decodeValid(w, r, &req) {
		return
	}
	h.transition(w, r, lifecycle.ActionComplete, req.CompletionNotes)
}

func (h *MaintenanceHandler) transition(w http.ResponseWriter, r *http.Request, action lifecycle.Action, notes string) {
	a, ok := actor(w, r)
	if !ok {
		return
	}
	m, ok := h.load(w, r)
	if !ok {
		return
	}

	now := h.clock.now()
	next, err := lifecycle.ApplyMaintenance(a, *m, action, notes, now)
	if err != nil {
		lifecycleError(w, err)
		return
	}
	next.UpdatedAt = now
	if err := h.store.UpdateIf(r.Context(), next.ID.Hex(), statusIs(string(m.Status)), next); err != nil {
		storeError(w, err, h.name)
		return
	}
	log.WithFields(log.Fields{
		"maintenance_id": next.ID.Hex(),
		"vehicle_id":     next.VehicleID,
		"action":         action,
		"status":         next.Status,
	}).Info("Maintenance transition")

	h.syncVehicle(r.Context(), next, now)
	if next.Status == models.MaintenanceCompleted {
		h.alerts.Raise(r.Context(), models.Alert{
			Type:     "maintenance",
			Title:    "Maintenance completed",
			Message:  fmt.Sprintf("%s on vehicle %s is complete", next.MaintenanceType, next.VehicleID),
			Priority: models.PriorityMedium,
			Link:     "/maintenance/" + next.ID.Hex(),
		})
	}
	respond.Data(w, http.StatusOK, next)
}

// syncVehicle puts an active vehicle into maintenance when work starts, and back
// to active with a fresh last-maintenance date when it completes. Failures are
// logged; the maintenance transition stands.
func (h *MaintenanceHandler) syncVehicle(ctx context.Context, m models.Maintenance, now time.Time) {
	if h.vehicles == nil || m.VehicleID == "" {
		return
	}
	entry := log.WithField("vehicle_id", m.VehicleID)
	v, err := h.vehicles.FindByID(ctx, m.VehicleID)
	if err != nil {
		entry.WithError(err).Warn("Serviced vehicle not found")
		return
	}

	switch m.Status {
	case models.MaintenanceInProgress:
		if v.Status != models.VehicleActive {
			return
		}
		v.Status = models.VehicleMaintenance
	case models.MaintenanceCompleted:
		if v.Status == models.VehicleMaintenance {
			v.Status = models.VehicleActive
		}
		v.LastMaintenanceDate = &now
	default:
		return
	}
	v.UpdatedAt = now
	if err := h.vehicles.Update(ctx, m.VehicleID, *v); err != nil {
		entry.WithError(err).Warn("Failed to update serviced vehicle")
	}
}
