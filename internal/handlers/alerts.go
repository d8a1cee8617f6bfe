package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	log "github.com/sirupsen/logrus"
	"github.com/ukydev/aivodrive/internal/db"
	"github.com/ukydev/aivodrive/internal/models"
	"github.com/ukydev/aivodrive/internal/notify"
	"github.com/ukydev/aivodrive/internal/respond"
)

// Alerter stores alerts raised by lifecycle transitions and publishes them.
type Alerter struct {
	store     db.AlertCollection
	publisher notify.Publisher
	clock     Clock
}

// NewAlerter creates an alerter. A nil publisher disables publishing.
func NewAlerter(store db.AlertCollection, publisher notify.Publisher) *Alerter {
	if publisher == nil {
		publisher = notify.NopPublisher{}
	}
	return &Alerter{store: store, publisher: publisher}
}

// Raise stores and publishes alert. Failures are logged, never returned: the
// transition that raised the alert has already been committed.
func (a *Alerter) Raise(ctx context.Context, alert models.Alert) {
	if a == nil {
		return
	}
	alert.Timestamp = a.clock.now()
	if alert.Priority == "" {
		alert.Priority = models.PriorityMedium
	}

	entry := log.WithFields(log.Fields{"type": alert.Type, "title": alert.Title})
	id, err := a.store.Insert(ctx, alert)
	if err != nil {
		entry.WithError(err).Error("Failed to store alert")
		return
	}
	alert.ID = objectIDOrZero(id)
	if err := a.publisher.Publish(ctx, alert); err != nil {
		entry.WithError(err).Warn("Failed to publish alert")
	}
}

var alertList = listSpec{
	sortable: map[string]string{"timestamp": "timestamp", "priority": "priority", "type": "type"},
	filters:  map[string]string{"type": "type", "priority": "priority"},
	search:   []string{"title", "message"},
}

// AlertHandler serves /api/alerts.
type AlertHandler struct {
	store db.AlertCollection
}

func NewAlertHandler(store db.AlertCollection) *AlertHandler {
	return &AlertHandler{store: store}
}

// List returns alerts, newest first unless another sort is requested. The
// "read" filter accepts true or false.
func (h *AlertHandler) List(w http.ResponseWriter, r *http.Request) {
	q := alertList.query(r)
	if q.Sort == "" {
		q.Sort, q.Desc = "timestamp", true
	}
	switch r.URL.Query().Get("read") {
	case "true":
		q.Filter["read"] = true
	case "false":
		q.Filter["read"] = false
	}

	items, total, err := h.store.Find(r.Context(), q)
	if err != nil {
		storeError(w, err, "Alert")
		return
	}
	page(w, items, q, total)
}

func (h *AlertHandler) UnreadCount(w http.ResponseWriter, r *http.Request) {
	n, err := h.store.CountUnread(r.Context())
	if err != nil {
		storeError(w, err, "Alert")
		return
	}
	respond.Data(w, http.StatusOK, map[string]int64{"count": n})
}

func (h *AlertHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	if err := h.store.MarkRead(r.Context(), chi.URLParam(r, "id")); err != nil {
		storeError(w, err, "Alert")
		return
	}
	respond.NoContent(w)
}

func (h *AlertHandler) MarkAllRead(w http.ResponseWriter, r *http.Request) {
	n, err := h.store.MarkAllRead(r.Context())
	if err != nil {
		storeError(w, err, "Alert")
		return
	}
	respond.Data(w, http.StatusOK, map[string]int64{"updated": n})
}

func (h *AlertHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		storeError(w, err, "Alert")
		return
	}
	respond.NoContent(w)
}
