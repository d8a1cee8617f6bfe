package main

import (
	"context"
	"fmt"
	"io"
	"maps"
	"slices"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/ukydev/aivodrive/internal/dashboard"
	"github.com/ukydev/aivodrive/internal/listview"
	"github.com/ukydev/aivodrive/internal/models"
)

type listFlags struct {
	search string
	status string
	sort   string
	desc   bool
	page   int
	limit  int
}

func (f *listFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.search, "search", "s", "", "free-text search")
	cmd.Flags().StringVar(&f.status, "status", "", "only rows with this status")
	cmd.Flags().StringVar(&f.sort, "sort", "", "sort key")
	cmd.Flags().BoolVar(&f.desc, "desc", false, "sort descending")
	cmd.Flags().IntVar(&f.page, "page", 1, "page number")
	cmd.Flags().IntVar(&f.limit, "limit", listview.DefaultPageSize, "rows per page")
}

func (f listFlags) query() listview.Query {
	q := listview.NewQuery().WithPageSize(f.limit).WithSearch(f.search).WithFilter("status", f.status)
	if f.sort != "" {
		q = q.WithSort(f.sort, f.desc)
	}
	return q.WithPage(f.page - 1)
}

type table[T any] struct {
	header []string
	row    func(T) []string
}

// showList loads one page plus the stats header and prints them. A failed stats
// load still prints the rows.
func showList[T any](ctx context.Context, out io.Writer, src listview.Source[T], id func(T) string, q listview.Query, t table[T]) error {
	view := listview.NewView[T](src, id, q)
	defer view.Close()

	err := view.Refresh(ctx)
	snap := view.Snapshot()
	if snap.Err != nil {
		return snap.Err
	}
	if err != nil {
		log.WithError(err).Warn("List loaded partially")
	}

	if stats, statsErr := view.Stats(); statsErr == nil {
		fmt.Fprintln(out, formatStats(stats))
	}
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, strings.Join(t.header, "\t"))
	for _, item := range snap.Items {
		fmt.Fprintln(w, strings.Join(t.row(item), "\t"))
	}
	if err := w.Flush(); err != nil {
		return err
	}
	if len(snap.Items) == 0 {
		fmt.Fprintln(out, "No records found")
	}
	fmt.Fprintf(out, "Page %d of %d, %d total\n", snap.Query.Page+1, max(snap.TotalPages, 1), snap.Total)
	return nil
}

func formatStats(s models.Stats) string {
	parts := []string{"total " + strconv.FormatInt(s.Total, 10)}
	for _, k := range slices.Sorted(maps.Keys(s.ByStatus)) {
		parts = append(parts, fmt.Sprintf("%s %d", k, s.ByStatus[k]))
	}
	return strings.Join(parts, " | ")
}

func day(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format("2006-01-02 15:04")
}

var (
	vehicleTable = table[models.Vehicle]{
		header: []string{"ID", "VEHICLE", "PLATE", "FUEL", "STATUS", "ODOMETER"},
		row: func(v models.Vehicle) []string {
			return []string{v.ID.Hex(), fmt.Sprintf("%s %s %d", v.Make, v.Model, v.Year), v.LicensePlate,
				v.FuelType, v.Status.Chip().Label, fmt.Sprintf("%.0f km", v.Odometer)}
		},
	}
	driverTable = table[models.Driver]{
		header: []string{"ID", "NAME", "EMPLOYEE", "LICENSE", "STATUS"},
		row: func(d models.Driver) []string {
			license := d.License.Type + " " + d.License.Number
			if d.LicenseExpired(time.Now()) {
				license += " (expired)"
			}
			return []string{d.ID.Hex(), d.FirstName + " " + d.LastName, d.EmployeeID, license, d.Status.Chip().Label}
		},
	}
	tripTable = table[models.Trip]{
		header: []string{"ID", "ROUTE", "START", "DRIVER", "VEHICLE", "STATUS"},
		row: func(t models.Trip) []string {
			return []string{t.ID.Hex(), t.Origin + " to " + t.Destination, day(t.StartTime),
				t.DriverID, t.VehicleID, t.Status.Chip().Label}
		},
	}
	maintenanceTable = table[models.Maintenance]{
		header: []string{"ID", "VEHICLE", "TYPE", "DATE", "COST", "STATUS"},
		row: func(m models.Maintenance) []string {
			return []string{m.ID.Hex(), m.VehicleID, m.MaintenanceType, day(m.Date),
				fmt.Sprintf("%.2f", m.Cost), m.DisplayStatus(time.Now()).Chip().Label}
		},
	}
)

func listCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List fleet records",
	}

	var vf, df, tf, mf listFlags
	vehicles := &cobra.Command{
		Use:   "vehicles",
		Short: "List vehicles",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := a.enter(cmd.Context(), "/vehicles"); err != nil {
				return err
			}
			return showList[models.Vehicle](cmd.Context(), cmd.OutOrStdout(), a.vehicles,
				func(v models.Vehicle) string { return v.ID.Hex() }, vf.query(), vehicleTable)
		},
	}
	drivers := &cobra.Command{
		Use:   "drivers",
		Short: "List drivers",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := a.enter(cmd.Context(), "/drivers"); err != nil {
				return err
			}
			return showList[models.Driver](cmd.Context(), cmd.OutOrStdout(), a.drivers,
				func(d models.Driver) string { return d.ID.Hex() }, df.query(), driverTable)
		},
	}
	trips := &cobra.Command{
		Use:   "trips",
		Short: "List trips; drivers see their own",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := a.enter(cmd.Context(), "/trips"); err != nil {
				return err
			}
			return showList[models.Trip](cmd.Context(), cmd.OutOrStdout(), a.trips,
				func(t models.Trip) string { return t.ID.Hex() }, tf.query(), tripTable)
		},
	}
	maintenance := &cobra.Command{
		Use:   "maintenance",
		Short: "List maintenance records; --status overdue lists late work",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := a.enter(cmd.Context(), "/maintenance"); err != nil {
				return err
			}
			return showList[models.Maintenance](cmd.Context(), cmd.OutOrStdout(), a.maintenance,
				func(m models.Maintenance) string { return m.ID.Hex() }, mf.query(), maintenanceTable)
		},
	}
	vf.bind(vehicles)
	df.bind(drivers)
	tf.bind(trips)
	mf.bind(maintenance)

	cmd.AddCommand(vehicles, drivers, trips, maintenance)
	return cmd
}

func dashboardCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "Show the landing page for your role",
		RunE: func(cmd *cobra.Command, args []string) error {
			actor, err := a.enter(cmd.Context(), "/dashboard")
			if err != nil {
				return err
			}
			d := dashboard.Load(cmd.Context(), dashboard.Sources{
				Vehicles:    a.vehicles,
				Drivers:     a.drivers,
				Maintenance: a.maintenance,
				Trips:       a.trips,
				Alerts:      a.alerts,
			}, actor)
			renderDashboard(cmd.OutOrStdout(), d)
			return nil
		},
	}
}

func renderDashboard(out io.Writer, d *dashboard.Dashboard) {
	stats := func(label string, s dashboard.Section[models.Stats]) {
		if !s.Loaded {
			return
		}
		if s.Err != nil {
			fmt.Fprintf(out, "%-12s unavailable\n", label)
			return
		}
		fmt.Fprintf(out, "%-12s %s\n", label, formatStats(s.Value))
	}
	trips := func(label string, s dashboard.Section[[]models.Trip]) {
		if !s.Loaded {
			return
		}
		fmt.Fprintf(out, "\n%s\n", label)
		if s.Err != nil {
			fmt.Fprintln(out, "  unavailable")
			return
		}
		if len(s.Value) == 0 {
			fmt.Fprintln(out, "  none")
		}
		for _, t := range s.Value {
			fmt.Fprintf(out, "  %s  %s to %s  %s\n", t.ID.Hex(), t.Origin, t.Destination, day(t.StartTime))
		}
	}

	fmt.Fprintf(out, "Dashboard (%s)\n\n", roleLabel(d.Role))
	stats("Vehicles", d.VehicleStats)
	stats("Drivers", d.DriverStats)
	stats("Trips", d.TripStats)
	stats("Maintenance", d.MaintenanceStats)
	if d.DriverMismatch() {
		fmt.Fprintln(out, "Warning: more drivers are on a trip than there are trips in progress")
	}
	trips("Active trips", d.ActiveTrips)
	trips("Upcoming trips", d.UpcomingTrips)

	if d.RecentAlerts.Loaded {
		fmt.Fprintln(out, "\nRecent alerts")
		switch {
		case d.RecentAlerts.Err != nil:
			fmt.Fprintln(out, "  unavailable")
		case len(d.RecentAlerts.Value) == 0:
			fmt.Fprintln(out, "  none")
		}
		for _, al := range d.RecentAlerts.Value {
			fmt.Fprintf(out, "  [%s] %s: %s\n", al.Priority.Chip().Label, al.Title, al.Message)
		}
	}
	if d.UnreadAlerts.Loaded && d.UnreadAlerts.Err == nil {
		fmt.Fprintf(out, "\nUnread alerts: %d\n", d.UnreadAlerts.Value)
	}
}
