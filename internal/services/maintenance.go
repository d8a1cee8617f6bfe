package services

import (
	"context"

	"github.com/ukydev/aivodrive/internal/apiclient"
	"github.com/ukydev/aivodrive/internal/models"
	"github.com/ukydev/aivodrive/internal/validation"
)

// MaintenanceService calls the /maintenance endpoints, including lifecycle transitions.
type MaintenanceService struct {
	res resource[models.Maintenance]
}

// NewMaintenanceService creates a maintenance service.
func NewMaintenanceService(c *apiclient.Client) *MaintenanceService {
	return &MaintenanceService{res: resource[models.Maintenance]{client: c, path: "/maintenance"}}
}

func (s *MaintenanceService) List(ctx context.Context, p models.ListParams) (Page[models.Maintenance], error) {
	return s.res.list(ctx, p)
}

func (s *MaintenanceService) Get(ctx context.Context, id string) (*models.Maintenance, error) {
	return s.res.get(ctx, id)
}

// Create validates f and creates the record. Nothing is sent when f is invalid.
func (s *MaintenanceService) Create(ctx context.Context, f validation.MaintenanceForm) (*models.Maintenance, error) {
	return s.res.create(ctx, f)
}

// Update validates f and replaces the editable fields of record id.
func (s *MaintenanceService) Update(ctx context.Context, id string, f validation.MaintenanceForm) (*models.Maintenance, error) {
	return s.res.update(ctx, id, f)
}

func (s *MaintenanceService) Delete(ctx context.Context, id string) error {
	return s.res.remove(ctx, id)
}

func (s *MaintenanceService) Stats(ctx context.Context) (models.Stats, error) {
	return s.res.stats(ctx)
}

// Start moves a scheduled record to in_progress.
func (s *MaintenanceService) Start(ctx context.Context, id string) (*models.Maintenance, error) {
	return s.res.action(ctx, id, "start", nil)
}

// Complete finishes a record with optional notes.
func (s *MaintenanceService) Complete(ctx context.Context, id, notes string) (*models.Maintenance, error) {
	return s.res.action(ctx, id, "complete", validation.CompleteRequest{CompletionNotes: notes})
}
