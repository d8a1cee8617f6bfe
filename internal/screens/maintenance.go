package screens

import (
	"context"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/ukydev/aivodrive/internal/lifecycle"
	"github.com/ukydev/aivodrive/internal/models"
)

// MaintenanceAPI is the maintenance service as seen by the detail screen.
type MaintenanceAPI interface {
	Get(ctx context.Context, id string) (*models.Maintenance, error)
	Start(ctx context.Context, id string) (*models.Maintenance, error)
	Complete(ctx context.Context, id, notes string) (*models.Maintenance, error)
	Delete(ctx context.Context, id string) error
}

// MaintenanceDetail is the maintenance detail screen.
type MaintenanceDetail struct {
	base
	*lifetime
	api   MaintenanceAPI
	actor lifecycle.Actor
	now   func() time.Time

	mu      sync.Mutex
	record  *models.Maintenance
	pending bool
}

func NewMaintenanceDetail(api MaintenanceAPI, actor lifecycle.Actor, errs ErrorHandler) *MaintenanceDetail {
	return &MaintenanceDetail{base: base{errs: errs}, lifetime: newLifetime(), api: api, actor: actor, now: time.Now}
}

func (s *MaintenanceDetail) Load(ctx context.Context, id string) error {
	ctx, done, err := s.begin(ctx)
	if err != nil {
		return err
	}
	defer done()

	m, err := s.api.Get(ctx, id)
	if s.Closed() {
		return ErrClosed
	}
	if err != nil {
		return s.remote(err)
	}
	s.mu.Lock()
	s.record = m
	s.mu.Unlock()
	return nil
}

func (s *MaintenanceDetail) Record() (models.Maintenance, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.record == nil {
		return models.Maintenance{}, false
	}
	return *s.record, true
}

// Status is the displayed status, overdue included.
func (s *MaintenanceDetail) Status() models.MaintenanceStatus {
	m, _ := s.Record()
	return m.DisplayStatus(s.now())
}

func (s *MaintenanceDetail) Actions() []lifecycle.Action {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.record == nil || s.pending {
		return nil
	}
	return lifecycle.MaintenanceActions(s.actor, *s.record)
}

func (s *MaintenanceDetail) CanEdit() bool {
	m, ok := s.Record()
	return ok && lifecycle.CanEditMaintenance(s.actor, m)
}

func (s *MaintenanceDetail) CanDelete() bool {
	m, ok := s.Record()
	return ok && lifecycle.CanDeleteMaintenance(s.actor, m)
}

// DeleteNote is shown next to the delete button of a completed record, where the
// rule differs from trips.
func (s *MaintenanceDetail) DeleteNote() string {
	m, ok := s.Record()
	if ok && m.Status == models.MaintenanceCompleted && lifecycle.CanDeleteMaintenance(s.actor, m) {
		return lifecycle.DeleteAsymmetry
	}
	return ""
}

func (s *MaintenanceDetail) Start(ctx context.Context) error {
	return s.act(ctx, lifecycle.ActionStart, "")
}

// Complete finishes the work with optional notes.
func (s *MaintenanceDetail) Complete(ctx context.Context, notes string) error {
	return s.act(ctx, lifecycle.ActionComplete, notes)
}

func (s *MaintenanceDetail) act(ctx context.Context, action lifecycle.Action, notes string) error {
	s.mu.Lock()
	if s.record == nil {
		s.mu.Unlock()
		return ErrNotLoaded
	}
	if s.pending {
		s.mu.Unlock()
		return ErrActionPending
	}
	current := *s.record
	if err := lifecycle.CanActOnMaintenance(s.actor, current, action); err != nil {
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
	var updated *models.Maintenance
	if action == lifecycle.ActionStart {
		updated, err = s.api.Start(ctx, id)
	} else {
		updated, err = s.api.Complete(ctx, id, notes)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending = false
	if s.Closed() {
		return ErrClosed
	}
	if err != nil {
		log.WithError(err).WithFields(log.Fields{"maintenance_id": id, "action": action}).Warn("Maintenance action failed")
		return s.remote(err)
	}
	s.record = updated
	return nil
}

func (s *MaintenanceDetail) Delete(ctx context.Context) error {
	m, ok := s.Record()
	if !ok {
		return ErrNotLoaded
	}
	if !lifecycle.CanDeleteMaintenance(s.actor, m) {
		return lifecycle.ErrForbidden
	}
	ctx, done, err := s.begin(ctx)
	if err != nil {
		return err
	}
	defer done()
	return s.remote(s.api.Delete(ctx, m.ID.Hex()))
}
