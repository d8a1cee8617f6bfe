package services

import (
	"context"

	"github.com/ukydev/aivodrive/internal/apiclient"
	"github.com/ukydev/aivodrive/internal/models"
	"github.com/ukydev/aivodrive/internal/validation"
)

// TripService calls the /trips endpoints, including lifecycle transitions.
type TripService struct {
	res resource[models.Trip]
}

// NewTripService creates a trip service.
func NewTripService(c *apiclient.Client) *TripService {
	return &TripService{res: resource[models.Trip]{client: c, path: "/trips"}}
}

func (s *TripService) List(ctx context.Context, p models.ListParams) (Page[models.Trip], error) {
	return s.res.list(ctx, p)
}

func (s *TripService) Get(ctx context.Context, id string) (*models.Trip, error) {
	return s.res.get(ctx, id)
}

// Create validates f and schedules the trip. Nothing is sent when f is invalid.
func (s *TripService) Create(ctx context.Context, f validation.TripForm) (*models.Trip, error) {
	return s.res.create(ctx, f)
}

// Update validates f as an edit of existing and saves it.
func (s *TripService) Update(ctx context.Context, existing models.Trip, f validation.TripForm) (*models.Trip, error) {
	if err := validation.TripEdit(f, existing); err != nil {
		return nil, err
	}
	return s.res.put(ctx, existing.ID.Hex(), f)
}

func (s *TripService) Delete(ctx context.Context, id string) error {
	return s.res.remove(ctx, id)
}

func (s *TripService) Stats(ctx context.Context) (models.Stats, error) {
	return s.res.stats(ctx)
}

// Start moves a scheduled trip to in_progress.
func (s *TripService) Start(ctx context.Context, id string) (*models.Trip, error) {
	return s.res.action(ctx, id, "start", nil)
}

// Complete moves an in-progress trip to completed.
func (s *TripService) Complete(ctx context.Context, id string) (*models.Trip, error) {
	return s.res.action(ctx, id, "complete", nil)
}

// Cancel cancels a trip with the given reason.
func (s *TripService) Cancel(ctx context.Context, id, reason string) (*models.Trip, error) {
	return s.res.action(ctx, id, "cancel", validation.CancelRequest{Reason: reason})
}
