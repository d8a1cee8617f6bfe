package main

import (
	"fmt"
	"maps"
	"slices"
	"time"

	"github.com/spf13/cobra"
	"github.com/ukydev/aivodrive/internal/models"
)

const dateLayout = "2006-01-02"

func reportsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{Use: "reports", Short: "Fleet reports (admin)"}

	summary := &cobra.Command{
		Use:   "summary",
		Short: "Fleet-wide counts and maintenance spend",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := a.enter(cmd.Context(), "/reports"); err != nil {
				return err
			}
			s, err := a.reports.Summary(cmd.Context())
			if err != nil {
				a.session.HandleError(err)
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%-12s %s\n", "Vehicles", formatStats(s.Vehicles))
			fmt.Fprintf(out, "%-12s %s\n", "Drivers", formatStats(s.Drivers))
			fmt.Fprintf(out, "%-12s %s\n", "Trips", formatStats(s.Trips))
			fmt.Fprintf(out, "%-12s %s\n", "Maintenance", formatStats(s.Maintenance))
			fmt.Fprintf(out, "%-12s %.2f\n", "Spend", s.MaintenanceCost)
			return nil
		},
	}

	var from, to string
	trips := &cobra.Command{
		Use:   "trips",
		Short: "Trips started in a date range (default: last 30 days)",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := a.enter(cmd.Context(), "/reports"); err != nil {
				return err
			}
			start, end, err := reportRange(from, to, time.Now())
			if err != nil {
				return err
			}
			r, err := a.reports.Trips(cmd.Context(), start, end)
			if err != nil {
				a.session.HandleError(err)
				return err
			}
			printTripReport(cmd, r)
			return nil
		},
	}
	trips.Flags().StringVar(&from, "from", "", "first day, "+dateLayout)
	trips.Flags().StringVar(&to, "to", "", "last day inclusive, "+dateLayout)

	cmd.AddCommand(summary, trips)
	return cmd
}

// reportRange turns inclusive local dates into a half-open window.
func reportRange(from, to string, now time.Time) (time.Time, time.Time, error) {
	end := now
	if to != "" {
		d, err := time.ParseInLocation(dateLayout, to, now.Location())
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid --to: %w", err)
		}
		end = d.AddDate(0, 0, 1)
	}
	start := end.AddDate(0, 0, -30)
	if from != "" {
		d, err := time.ParseInLocation(dateLayout, from, now.Location())
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid --from: %w", err)
		}
		start = d
	}
	if !start.Before(end) {
		return time.Time{}, time.Time{}, fmt.Errorf("--from must be before --to")
	}
	return start, end, nil
}

func printTripReport(cmd *cobra.Command, r *models.TripReport) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Trips %s to %s\n", r.From.Local().Format(dateLayout), r.To.Local().Format(dateLayout))
	fmt.Fprintf(out, "  Count:    %d\n  Distance: %.1f km\n", r.Trips, r.Distance)
	for _, k := range slices.Sorted(maps.Keys(r.ByStatus)) {
		fmt.Fprintf(out, "  %-12s %d\n", models.TripStatus(k).Chip().Label, r.ByStatus[k])
	}
	if len(r.TripsByDriver) > 0 {
		fmt.Fprintln(out, "  By driver:")
		for _, k := range slices.Sorted(maps.Keys(r.TripsByDriver)) {
			fmt.Fprintf(out, "    %s  %d\n", k, r.TripsByDriver[k])
		}
	}
}
