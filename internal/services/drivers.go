package services

import (
	"context"

	"github.com/ukydev/aivodrive/internal/apiclient"
	"github.com/ukydev/aivodrive/internal/models"
	"github.com/ukydev/aivodrive/internal/validation"
)

// DriverService calls the /drivers endpoints.
type DriverService struct {
	res resource[models.Driver]
}

// NewDriverService creates a driver service.
func NewDriverService(c *apiclient.Client) *DriverService {
	return &DriverService{res: resource[models.Driver]{client: c, path: "/drivers"}}
}

func (s *DriverService) List(ctx context.Context, p models.ListParams) (Page[models.Driver], error) {
	return s.res.list(ctx, p)
}

func (s *DriverService) Get(ctx context.Context, id string) (*models.Driver, error) {
	return s.res.get(ctx, id)
}

// Create validates f and creates the record. Nothing is sent when f is invalid.
func (s *DriverService) Create(ctx context.Context, f validation.DriverForm) (*models.Driver, error) {
	return s.res.create(ctx, f)
}

// Update validates f and replaces the editable fields of record id.
func (s *DriverService) Update(ctx context.Context, id string, f validation.DriverForm) (*models.Driver, error) {
	return s.res.update(ctx, id, f)
}

func (s *DriverService) Delete(ctx context.Context, id string) error {
	return s.res.remove(ctx, id)
}

func (s *DriverService) Stats(ctx context.Context) (models.Stats, error) {
	return s.res.stats(ctx)
}
