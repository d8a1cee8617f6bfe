// Package dashboard assembles the role-specific landing page. Every section is
// fetched in parallel and fails on its own, so a partial dashboard still renders.
package dashboard

import (
	"context"

	log "github.com/sirupsen/logrus"
	"github.com/ukydev/aivodrive/internal/lifecycle"
	"github.com/ukydev/aivodrive/internal/models"
	"github.com/ukydev/aivodrive/internal/services"
	"golang.org/x/sync/errgroup"
)

// RecentLimit is the number of rows shown in list sections.
const RecentLimit = 5

type StatsSource interface {
	Stats(ctx context.Context) (models.Stats, error)
}

type TripSource interface {
	StatsSource
	List(ctx context.Context, p models.ListParams) (services.Page[models.Trip], error)
}

type AlertSource interface {
	List(ctx context.Context, p models.ListParams) (services.Page[models.Alert], error)
	UnreadCount(ctx context.Context) (int64, error)
}

// Sources are the services a dashboard reads.
type Sources struct {
	Vehicles    StatsSource
	Drivers     StatsSource
	Maintenance StatsSource
	Trips       TripSource
	Alerts      AlertSource
}

// Section is one dashboard panel. On failure Value holds the zero default and Err
// the cause.
type Section[T any] struct {
	Value  T
	Err    error
	Loaded bool
}

// Dashboard is the landing page content for one role. Sections a role does not see
// stay unloaded.
type Dashboard struct {
	Role models.Role

	VehicleStats     Section[models.Stats]
	DriverStats      Section[models.Stats]
	TripStats        Section[models.Stats]
	MaintenanceStats Section[models.Stats]
	ActiveTrips      Section[[]models.Trip]
	UpcomingTrips    Section[[]models.Trip]
	RecentAlerts     Section[[]models.Alert]
	UnreadAlerts     Section[int64]
}

// Errors returns the errors of every failed section.
func (d *Dashboard) Errors() []error {
	var out []error
	for _, err := range []error{
		d.VehicleStats.Err, d.DriverStats.Err, d.TripStats.Err, d.MaintenanceStats.Err,
		d.ActiveTrips.Err, d.UpcomingTrips.Err, d.RecentAlerts.Err, d.UnreadAlerts.Err,
	} {
		if err != nil {
			out = append(out, err)
		}
	}
	return out
}

// DriverMismatch reports whether more drivers are marked on_trip than there are
// in-progress trips. It is shown, never corrected.
func (d *Dashboard) DriverMismatch() bool {
	if !d.DriverStats.Loaded || !d.TripStats.Loaded || d.DriverStats.Err != nil || d.TripStats.Err != nil {
		return false
	}
	return d.DriverStats.Value.Count(string(models.DriverOnTrip)) > d.TripStats.Value.Count(string(models.TripInProgress))
}

// Load builds the dashboard for a. It never fails as a whole.
func Load(ctx context.Context, src Sources, a lifecycle.Actor) *Dashboard {
	d := &Dashboard{Role: a.Role}
	var g errgroup.Group

	switch a.Role {
	case models.RoleAdmin:
		stats(ctx, &g, src.Vehicles, &d.VehicleStats)
		stats(ctx, &g, src.Drivers, &d.DriverStats)
		stats(ctx, &g, src.Trips, &d.TripStats)
		stats(ctx, &g, src.Maintenance, &d.MaintenanceStats)
		alerts(ctx, &g, src.Alerts, d)
	case models.RoleDispatcher:
		stats(ctx, &g, src.Trips, &d.TripStats)
		stats(ctx, &g, src.Drivers, &d.DriverStats)
		trips(ctx, &g, src.Trips, models.TripInProgress, &d.ActiveTrips)
		trips(ctx, &g, src.Trips, models.TripScheduled, &d.UpcomingTrips)
		unread(ctx, &g, src.Alerts, &d.UnreadAlerts)
	case models.RoleDriver:
		// The server scopes trip lists to the caller's own trips.
		trips(ctx, &g, src.Trips, models.TripInProgress, &d.ActiveTrips)
		trips(ctx, &g, src.Trips, models.TripScheduled, &d.UpcomingTrips)
		unread(ctx, &g, src.Alerts, &d.UnreadAlerts)
	}

	_ = g.Wait()

	if errs := d.Errors(); len(errs) > 0 {
		log.WithFields(log.Fields{"role": a.Role, "failed": len(errs)}).Warn("Dashboard loaded partially")
	}
	return d
}

func stats(ctx context.Context, g *errgroup.Group, src StatsSource, out *Section[models.Stats]) {
	g.Go(func() error {
		s, err := src.Stats(ctx)
		out.Loaded = true
		if err != nil {
			out.Value, out.Err = models.Stats{}, err
			return nil
		}
		out.Value = s
		return nil
	})
}

func trips(ctx context.Context, g *errgroup.Group, src TripSource, status models.TripStatus, out *Section[[]models.Trip]) {
	g.Go(func() error {
		page, err := src.List(ctx, models.ListParams{
			Page:    1,
			Limit:   RecentLimit,
			Sort:    "startTime",
			Filters: map[string]string{"status": string(status)},
		})
		out.Loaded = true
		if err != nil {
			out.Value, out.Err = []models.Trip{}, err
			return nil
		}
		out.Value = page.Items
		return nil
	})
}

func alerts(ctx context.Context, g *errgroup.Group, src AlertSource, d *Dashboard) {
	g.Go(func() error {
		page, err := src.List(ctx, models.ListParams{Page: 1, Limit: RecentLimit, Sort: "timestamp", Desc: true})
		d.RecentAlerts.Loaded = true
		if err != nil {
			d.RecentAlerts.Value, d.RecentAlerts.Err = []models.Alert{}, err
			return nil
		}
		d.RecentAlerts.Value = page.Items
		return nil
	})
	unread(ctx, g, src, &d.UnreadAlerts)
}

func unread(ctx context.Context, g *errgroup.Group, src AlertSource, out *Section[int64]) {
	g.Go(func() error {
		n, err := src.UnreadCount(ctx)
		out.Loaded = true
		out.Value, out.Err = n, err
		if err != nil {
			out.Value = 0
		}
		return nil
	})
}
