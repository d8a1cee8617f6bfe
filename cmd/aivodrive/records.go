package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/ukydev/aivodrive/internal/lifecycle"
	"github.com/ukydev/aivodrive/internal/models"
	"github.com/ukydev/aivodrive/internal/screens"
	"github.com/ukydev/aivodrive/internal/validation"
)

func actionNames(actions []lifecycle.Action) string {
	if len(actions) == 0 {
		return "none"
	}
	names := make([]string, len(actions))
	for i, a := range actions {
		names[i] = string(a)
	}
	return strings.Join(names, ", ")
}

func printTrip(out io.Writer, t models.Trip, s *screens.TripDetail) {
	fmt.Fprintf(out, "Trip %s  [%s]\n", t.ID.Hex(), t.Status.Chip().Label)
	fmt.Fprintf(out, "  Route:    %s to %s\n", t.Origin, t.Destination)
	fmt.Fprintf(out, "  Start:    %s\n", day(t.StartTime))
	if t.EndTime != nil {
		fmt.Fprintf(out, "  End:      %s\n", day(*t.EndTime))
	}
	fmt.Fprintf(out, "  Driver:   %s\n  Vehicle:  %s\n", t.DriverID, t.VehicleID)
	fmt.Fprintf(out, "  Distance: %.1f km  Purpose: %s\n", t.Distance, t.Purpose)
	if t.CancellationReason != "" {
		fmt.Fprintf(out, "  Cancelled because: %s\n", t.CancellationReason)
	}
	if s != nil {
		fmt.Fprintf(out, "  Actions:  %s\n", actionNames(s.Actions()))
	}
}

func printMaintenance(out io.Writer, m models.Maintenance, s *screens.MaintenanceDetail) {
	fmt.Fprintf(out, "Maintenance %s  [%s]\n", m.ID.Hex(), m.DisplayStatus(time.Now()).Chip().Label)
	fmt.Fprintf(out, "  Vehicle:  %s\n  Type:     %s\n", m.VehicleID, m.MaintenanceType)
	fmt.Fprintf(out, "  Date:     %s\n  Cost:     %.2f\n", day(m.Date), m.Cost)
	if m.Technician != "" {
		fmt.Fprintf(out, "  Technician: %s\n", m.Technician)
	}
	if m.Description != "" {
		fmt.Fprintf(out, "  %s\n", m.Description)
	}
	if m.CompletedAt != nil {
		fmt.Fprintf(out, "  Completed: %s  %s\n", day(*m.CompletedAt), m.CompletionNotes)
	}
	if s != nil {
		fmt.Fprintf(out, "  Actions:  %s\n", actionNames(s.Actions()))
		if note := s.DeleteNote(); note != "" {
			fmt.Fprintf(out, "  Note:     %s\n", note)
		}
	}
}

func tripFields(cmd *cobra.Command) *formFlags[validation.TripForm] {
	ff := newFormFlags[validation.TripForm](cmd)
	ff.text("origin", "where the trip starts", func(f *validation.TripForm) *string { return &f.Origin })
	ff.text("destination", "where the trip ends", func(f *validation.TripForm) *string { return &f.Destination })
	ff.date("start", "planned start", func(f *validation.TripForm) *time.Time { return &f.StartTime })
	ff.optionalDate("end", "planned end", func(f *validation.TripForm) **time.Time { return &f.EndTime })
	ff.text("driver", "driver id", func(f *validation.TripForm) *string { return &f.DriverID })
	ff.text("vehicle", "vehicle id", func(f *validation.TripForm) *string { return &f.VehicleID })
	ff.number("distance", "distance in km", func(f *validation.TripForm) *float64 { return &f.Distance })
	ff.text("purpose", "delivery, pickup, transfer or service", func(f *validation.TripForm) *string { return &f.Purpose })
	ff.text("notes", "free text notes", func(f *validation.TripForm) *string { return &f.Notes })
	return ff
}

func maintenanceFields(cmd *cobra.Command) *formFlags[validation.MaintenanceForm] {
	ff := newFormFlags[validation.MaintenanceForm](cmd)
	ff.text("vehicle", "vehicle id", func(f *validation.MaintenanceForm) *string { return &f.VehicleID })
	ff.text("type", "oil_change, tire_rotation, brake_service, battery_service, inspection or repair",
		func(f *validation.MaintenanceForm) *string { return &f.MaintenanceType })
	ff.text("description", "work to be done", func(f *validation.MaintenanceForm) *string { return &f.Description })
	ff.date("date", "planned date", func(f *validation.MaintenanceForm) *time.Time { return &f.Date })
	ff.number("cost", "estimated cost", func(f *validation.MaintenanceForm) *float64 { return &f.Cost })
	ff.text("technician", "assigned technician", func(f *validation.MaintenanceForm) *string { return &f.Technician })
	return ff
}

func tripCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{Use: "trip", Short: "Show, schedule or edit a trip and move it through its lifecycle"}

	// open loads the trip screen after the guard admits the viewer.
	open := func(cmd *cobra.Command, id string) (*screens.TripDetail, error) {
		actor, err := a.enter(cmd.Context(), "/trips/"+id)
		if err != nil {
			return nil, err
		}
		s := screens.NewTripDetail(a.trips, actor, a.session)
		if err := s.Load(cmd.Context(), id); err != nil {
			s.Close()
			return nil, err
		}
		return s, nil
	}
	report := func(cmd *cobra.Command, s *screens.TripDetail) {
		t, _ := s.Trip()
		printTrip(cmd.OutOrStdout(), t, s)
	}

	show := &cobra.Command{
		Use:   "show <id>",
		Short: "Show a trip",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := open(cmd, args[0])
			if err != nil {
				return err
			}
			defer s.Close()
			report(cmd, s)
			return nil
		},
	}
	start := &cobra.Command{
		Use:   "start <id>",
		Short: "Start a scheduled trip",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := open(cmd, args[0])
			if err != nil {
				return err
			}
			defer s.Close()
			if err := s.Start(cmd.Context()); err != nil {
				return err
			}
			report(cmd, s)
			return nil
		},
	}
	complete := &cobra.Command{
		Use:   "complete <id>",
		Short: "Complete a trip in progress",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := open(cmd, args[0])
			if err != nil {
				return err
			}
			defer s.Close()
			if err := s.Complete(cmd.Context()); err != nil {
				return err
			}
			report(cmd, s)
			return nil
		},
	}
	var reason string
	cancel := &cobra.Command{
		Use:   "cancel <id>",
		Short: "Cancel a trip with a reason",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := open(cmd, args[0])
			if err != nil {
				return err
			}
			defer s.Close()
			if err := s.Cancel(cmd.Context(), reason); err != nil {
				return err
			}
			report(cmd, s)
			return nil
		},
	}
	cancel.Flags().StringVarP(&reason, "reason", "r", "", "why the trip is cancelled")

	create := &cobra.Command{
		Use:   "new",
		Short: "Schedule a trip",
		Args:  cobra.NoArgs,
	}
	createFields := tripFields(create)
	create.RunE = func(cmd *cobra.Command, args []string) error {
		if _, err := a.enter(cmd.Context(), "/trips/new"); err != nil {
			return err
		}
		var form validation.TripForm
		if err := createFields.fill(&form); err != nil {
			return err
		}
		t, err := a.trips.Create(cmd.Context(), form)
		if err != nil {
			return a.saveError(cmd.OutOrStdout(), err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Trip scheduled")
		printTrip(cmd.OutOrStdout(), *t, nil)
		return nil
	}

	edit := &cobra.Command{
		Use:   "edit <id>",
		Short: "Edit a trip that is not finished; fields without a flag keep their value",
		Args:  cobra.ExactArgs(1),
	}
	editFields := tripFields(edit)
	edit.RunE = func(cmd *cobra.Command, args []string) error {
		actor, err := a.enter(cmd.Context(), "/trips/"+args[0]+"/edit")
		if err != nil {
			return err
		}
		s := screens.NewTripDetail(a.trips, actor, a.session)
		defer s.Close()
		if err := s.Load(cmd.Context(), args[0]); err != nil {
			return err
		}
		existing, _ := s.Trip()
		if !s.CanEdit() {
			return fmt.Errorf("a %s trip cannot be edited", existing.Status)
		}
		form := validation.NewTripForm(existing)
		if err := editFields.fill(&form); err != nil {
			return err
		}
		t, err := a.trips.Update(cmd.Context(), existing, form)
		if err != nil {
			return a.saveError(cmd.OutOrStdout(), err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Trip saved")
		printTrip(cmd.OutOrStdout(), *t, nil)
		return nil
	}

	cmd.AddCommand(show, create, edit, start, complete, cancel)
	return cmd
}

func maintenanceCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{Use: "maintenance", Short: "Show, schedule or edit maintenance and advance it"}

	open := func(cmd *cobra.Command, id string) (*screens.MaintenanceDetail, error) {
		actor, err := a.enter(cmd.Context(), "/maintenance/"+id)
		if err != nil {
			return nil, err
		}
		s := screens.NewMaintenanceDetail(a.maintenance, actor, a.session)
		if err := s.Load(cmd.Context(), id); err != nil {
			s.Close()
			return nil, err
		}
		return s, nil
	}
	report := func(cmd *cobra.Command, s *screens.MaintenanceDetail) {
		m, _ := s.Record()
		printMaintenance(cmd.OutOrStdout(), m, s)
	}

	show := &cobra.Command{
		Use:   "show <id>",
		Short: "Show a maintenance record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := open(cmd, args[0])
			if err != nil {
				return err
			}
			defer s.Close()
			report(cmd, s)
			return nil
		},
	}
	start := &cobra.Command{
		Use:   "start <id>",
		Short: "Start scheduled work",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := open(cmd, args[0])
			if err != nil {
				return err
			}
			defer s.Close()
			if err := s.Start(cmd.Context()); err != nil {
				return err
			}
			report(cmd, s)
			return nil
		},
	}
	var notes string
	complete := &cobra.Command{
		Use:   "complete <id>",
		Short: "Complete work in progress",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := open(cmd, args[0])
			if err != nil {
				return err
			}
			defer s.Close()
			if err := s.Complete(cmd.Context(), notes); err != nil {
				return err
			}
			report(cmd, s)
			return nil
		},
	}
	complete.Flags().StringVarP(&notes, "notes", "n", "", "completion notes")

	create := &cobra.Command{
		Use:   "new",
		Short: "Schedule maintenance for a vehicle",
		Args:  cobra.NoArgs,
	}
	createFields := maintenanceFields(create)
	create.RunE = func(cmd *cobra.Command, args []string) error {
		if _, err := a.enter(cmd.Context(), "/maintenance/new"); err != nil {
			return err
		}
		var form validation.MaintenanceForm
		if err := createFields.fill(&form); err != nil {
			return err
		}
		m, err := a.maintenance.Create(cmd.Context(), form)
		if err != nil {
			return a.saveError(cmd.OutOrStdout(), err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Maintenance scheduled")
		printMaintenance(cmd.OutOrStdout(), *m, nil)
		return nil
	}

	edit := &cobra.Command{
		Use:   "edit <id>",
		Short: "Edit open maintenance; fields without a flag keep their value",
		Args:  cobra.ExactArgs(1),
	}
	editFields := maintenanceFields(edit)
	edit.RunE = func(cmd *cobra.Command, args []string) error {
		actor, err := a.enter(cmd.Context(), "/maintenance/"+args[0]+"/edit")
		if err != nil {
			return err
		}
		s := screens.NewMaintenanceDetail(a.maintenance, actor, a.session)
		defer s.Close()
		if err := s.Load(cmd.Context(), args[0]); err != nil {
			return err
		}
		existing, _ := s.Record()
		if !s.CanEdit() {
			return fmt.Errorf("%s maintenance cannot be edited", existing.Status)
		}
		form := validation.NewMaintenanceForm(existing)
		if err := editFields.fill(&form); err != nil {
			return err
		}
		m, err := a.maintenance.Update(cmd.Context(), args[0], form)
		if err != nil {
			return a.saveError(cmd.OutOrStdout(), err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Maintenance saved")
		printMaintenance(cmd.OutOrStdout(), *m, nil)
		return nil
	}

	cmd.AddCommand(show, create, edit, start, complete)
	return cmd
}

func deleteCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{Use: "delete", Short: "Delete a fleet record"}

	vehicle := &cobra.Command{
		Use:   "vehicle <id>",
		Short: "Delete a vehicle",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := a.enter(cmd.Context(), "/vehicles/"+args[0]+"/edit"); err != nil {
				return err
			}
			if err := a.vehicles.Delete(cmd.Context(), args[0]); err != nil {
				a.session.HandleError(err)
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Vehicle deleted")
			return nil
		},
	}
	driver := &cobra.Command{
		Use:   "driver <id>",
		Short: "Delete a driver",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := a.enter(cmd.Context(), "/drivers/"+args[0]+"/edit"); err != nil {
				return err
			}
			if err := a.drivers.Delete(cmd.Context(), args[0]); err != nil {
				a.session.HandleError(err)
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Driver deleted")
			return nil
		},
	}
	trip := &cobra.Command{
		Use:   "trip <id>",
		Short: "Delete a scheduled or cancelled trip",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			actor, err := a.enter(cmd.Context(), "/trips/"+args[0]+"/edit")
			if err != nil {
				return err
			}
			s := screens.NewTripDetail(a.trips, actor, a.session)
			defer s.Close()
			if err := s.Load(cmd.Context(), args[0]); err != nil {
				return err
			}
			if err := s.Delete(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Trip deleted")
			return nil
		},
	}
	maintenance := &cobra.Command{
		Use:   "maintenance <id>",
		Short: "Delete a maintenance record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			actor, err := a.enter(cmd.Context(), "/maintenance/"+args[0]+"/edit")
			if err != nil {
				return err
			}
			s := screens.NewMaintenanceDetail(a.maintenance, actor, a.session)
			defer s.Close()
			if err := s.Load(cmd.Context(), args[0]); err != nil {
				return err
			}
			if err := s.Delete(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Maintenance record deleted")
			return nil
		},
	}

	cmd.AddCommand(vehicle, driver, trip, maintenance)
	return cmd
}
