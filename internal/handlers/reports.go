package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/ukydev/aivodrive/internal/db"
	"github.com/ukydev/aivodrive/internal/models"
	"github.com/ukydev/aivodrive/internal/respond"
	"go.mongodb.org/mongo-driver/bson"
	"golang.org/x/sync/errgroup"
)

// ReportHandler serves /api/reports.
type ReportHandler struct {
	vehicles    db.Store[models.Vehicle]
	drivers     db.Store[models.Driver]
	trips       db.Store[models.Trip]
	maintenance db.Store[models.Maintenance]
	clock       Clock
}

func NewReportHandler(vehicles db.Store[models.Vehicle], drivers db.Store[models.Driver],
	trips db.Store[models.Trip], maintenance db.Store[models.Maintenance]) *ReportHandler {
	return &ReportHandler{vehicles: vehicles, drivers: drivers, trips: trips, maintenance: maintenance}
}

// Summary counts every resource by status and totals maintenance cost.
func (h *ReportHandler) Summary(w http.ResponseWriter, r *http.Request) {
	var out models.FleetSummary
	g, ctx := errgroup.WithContext(r.Context())

	g.Go(func() (err error) { out.Vehicles, err = h.vehicles.CountByStatus(ctx, nil); return })
	g.Go(func() (err error) { out.Drivers, err = h.drivers.CountByStatus(ctx, nil); return })
	g.Go(func() (err error) { out.Trips, err = h.trips.CountByStatus(ctx, nil); return })
	g.Go(func() (err error) { out.Maintenance, err = h.maintenance.CountByStatus(ctx, nil); return })
	g.Go(func() (err error) { out.MaintenanceCost, err = h.maintenance.Sum(ctx, "cost", nil); return })

	if err := g.Wait(); err != nil {
		storeError(w, err, "Report")
		return
	}
	respond.Data(w, http.StatusOK, out)
}

// Trips summarizes trips starting in [from, to).
func (h *ReportHandler) Trips(w http.ResponseWriter, r *http.Request) {
	from, to, err := reportWindow(r, h.clock.now())
	if err != nil {
		respond.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	filter := bson.M{"start_time": bson.M{"$gte": from, "$lt": to}}

	out := models.TripReport{From: from, To: to}
	var stats models.Stats
	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() (err error) { stats, err = h.trips.CountByStatus(ctx, filter); return })
	g.Go(func() (err error) { out.Distance, err = h.trips.Sum(ctx, "distance", filter); return })
	g.Go(func() (err error) { out.TripsByDriver, err = h.trips.CountBy(ctx, "driver_id", filter); return })

	if err := g.Wait(); err != nil {
		storeError(w, err, "Report")
		return
	}
	out.Trips = stats.Total
	out.ByStatus = stats.ByStatus
	if out.ByStatus == nil {
		out.ByStatus = map[string]int64{}
	}
	if out.TripsByDriver == nil {
		out.TripsByDriver = map[string]int64{}
	}
	respond.Data(w, http.StatusOK, out)
}

// reportWindow parses the from and to query parameters (RFC 3339). Both default to
// the last 30 days ending now.
func reportWindow(r *http.Request, now time.Time) (time.Time, time.Time, error) {
	from, to := now.AddDate(0, 0, -30), now
	if raw := r.URL.Query().Get("from"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return from, to, errors.New("from must be an RFC 3339 time")
		}
		from = t
	}
	if raw := r.URL.Query().Get("to"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return from, to, errors.New("to must be an RFC 3339 time")
		}
		to = t
	}
	if !from.Before(to) {
		return from, to, errors.New("from must be before to")
	}
	return from, to, nil
}
