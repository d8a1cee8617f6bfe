package services

import (
	"context"

	"github.com/ukydev/aivodrive/internal/apiclient"
	"github.com/ukydev/aivodrive/internal/models"
	"github.com/ukydev/aivodrive/internal/validation"
)

// VehicleService calls the /vehicles endpoints.
type VehicleService struct {
	res resource[models.Vehicle]
}

// NewVehicleService creates a vehicle service.
func NewVehicleService(c *apiclient.Client) *VehicleService {
	return &VehicleService{res: resource[models.Vehicle]{client: c, path: "/vehicles"}}
}

func (s *VehicleService) List(ctx context.Context, p models.ListParams) (Page[models.Vehicle], error) {
	return s.res.list(ctx, p)
}

func (s *VehicleService) Get(ctx context.Context, id string) (*models.Vehicle, error) {
	return s.res.get(ctx, id)
}

// Create validates f and creates the record. Nothing is sent when f is invalid.
func (s *VehicleService) Create(ctx context.Context, f validation.VehicleForm) (*models.Vehicle, error) {
	return s.res.create(ctx, f)
}

// Update validates f and replaces the editable fields of record id.
func (s *VehicleService) Update(ctx context.Context, id string, f validation.VehicleForm) (*models.Vehicle, error) {
	return s.res.update(ctx, id, f)
}

func (s *VehicleService) Delete(ctx context.Context, id string) error {
	return s.res.remove(ctx, id)
}

func (s *VehicleService) Stats(ctx context.Context) (models.Stats, error) {
	return s.res.stats(ctx)
}
