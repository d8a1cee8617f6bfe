package screens

import (
	"context"

	"github.com/ukydev/aivodrive/internal/lifecycle"
	"github.com/ukydev/aivodrive/internal/models"
	"github.com/ukydev/aivodrive/internal/services"
	"golang.org/x/sync/errgroup"
)

type DriverAPI interface {
	Get(ctx context.Context, id string) (*models.Driver, error)
}

type TripLister interface {
	List(ctx context.Context, p models.ListParams) (services.Page[models.Trip], error)
}

// DriverView is what the driver detail screen shows.
type DriverView struct {
	Driver      models.Driver
	ActiveTrips []models.Trip
	// Anomaly is set when the driver is on_trip without an in-progress trip.
	Anomaly  bool
	CanEdit  bool
	TripsErr error
}

// LoadDriver fetches the driver and its in-progress trips in parallel. A failed trip
// fetch does not fail the screen; the anomaly flag is then left unset.
func LoadDriver(ctx context.Context, drivers DriverAPI, trips TripLister, actor lifecycle.Actor, id string, errs ErrorHandler) (*DriverView, error) {
	b := base{errs: errs}
	var (
		driver  *models.Driver
		active  services.Page[models.Trip]
		tripErr error
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		d, err := drivers.Get(gctx, id)
		if err != nil {
			return b.remote(err)
		}
		driver = d
		return nil
	})
	g.Go(func() error {
		active, tripErr = trips.List(gctx, models.ListParams{
			Page:    1,
			Limit:   5,
			Filters: map[string]string{"driverId": id, "status": string(models.TripInProgress)},
		})
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	view := &DriverView{
		Driver:      *driver,
		ActiveTrips: active.Items,
		CanEdit:     lifecycle.CanEditDriver(actor),
		TripsErr:    tripErr,
	}
	if tripErr == nil {
		view.Anomaly = lifecycle.DriverAnomaly(*driver, active.Items)
	}
	return view, nil
}
