package main

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"
	"github.com/ukydev/aivodrive/internal/models"
	"github.com/ukydev/aivodrive/internal/screens"
	"github.com/ukydev/aivodrive/internal/validation"
)

func printVehicle(out io.Writer, v models.Vehicle) {
	fmt.Fprintf(out, "Vehicle %s  [%s]\n", v.ID.Hex(), v.Status.Chip().Label)
	fmt.Fprintf(out, "  %d %s %s  %s\n", v.Year, v.Make, v.Model, v.LicensePlate)
	if v.VIN != "" {
		fmt.Fprintf(out, "  VIN:      %s\n", v.VIN)
	}
	fmt.Fprintf(out, "  Fuel:     %s  Odometer: %.0f km\n", v.FuelType, v.Odometer)
	if v.AssignedDriverID != "" {
		fmt.Fprintf(out, "  Driver:   %s\n", v.AssignedDriverID)
	}
	if v.LastMaintenanceDate != nil {
		fmt.Fprintf(out, "  Serviced: %s\n", day(*v.LastMaintenanceDate))
	}
}

func vehicleFields(cmd *cobra.Command) *formFlags[validation.VehicleForm] {
	ff := newFormFlags[validation.VehicleForm](cmd)
	ff.text("make", "manufacturer", func(f *validation.VehicleForm) *string { return &f.Make })
	ff.text("model", "model name", func(f *validation.VehicleForm) *string { return &f.Model })
	ff.integer("year", "model year", func(f *validation.VehicleForm) *int { return &f.Year })
	ff.text("plate", "license plate", func(f *validation.VehicleForm) *string { return &f.LicensePlate })
	ff.text("vin", "17 character VIN", func(f *validation.VehicleForm) *string { return &f.VIN })
	ff.text("fuel", "diesel, petrol, electric or hybrid", func(f *validation.VehicleForm) *string { return &f.FuelType })
	ff.text("status", "active, maintenance, inactive or retired", func(f *validation.VehicleForm) *string { return &f.Status })
	ff.text("driver", "assigned driver id", func(f *validation.VehicleForm) *string { return &f.AssignedDriverID })
	ff.number("odometer", "odometer in km", func(f *validation.VehicleForm) *float64 { return &f.Odometer })
	return ff
}

func vehicleCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{Use: "vehicle", Short: "Show, add or edit a vehicle"}

	show := &cobra.Command{
		Use:   "show <id>",
		Short: "Show a vehicle",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := a.enter(cmd.Context(), "/vehicles/"+args[0]); err != nil {
				return err
			}
			v, err := a.vehicles.Get(cmd.Context(), args[0])
			if err != nil {
				a.session.HandleError(err)
				return err
			}
			printVehicle(cmd.OutOrStdout(), *v)
			return nil
		},
	}

	create := &cobra.Command{
		Use:   "new",
		Short: "Add a vehicle",
		Args:  cobra.NoArgs,
	}
	createFields := vehicleFields(create)
	create.RunE = func(cmd *cobra.Command, args []string) error {
		if _, err := a.enter(cmd.Context(), "/vehicles/new"); err != nil {
			return err
		}
		form := validation.VehicleForm{FuelType: "diesel", Status: string(models.VehicleActive)}
		if err := createFields.fill(&form); err != nil {
			return err
		}
		v, err := a.vehicles.Create(cmd.Context(), form)
		if err != nil {
			return a.saveError(cmd.OutOrStdout(), err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Vehicle created")
		printVehicle(cmd.OutOrStdout(), *v)
		return nil
	}

	edit := &cobra.Command{
		Use:   "edit <id>",
		Short: "Edit a vehicle; fields without a flag keep their value",
		Args:  cobra.ExactArgs(1),
	}
	editFields := vehicleFields(edit)
	edit.RunE = func(cmd *cobra.Command, args []string) error {
		if _, err := a.enter(cmd.Context(), "/vehicles/"+args[0]+"/edit"); err != nil {
			return err
		}
		existing, err := a.vehicles.Get(cmd.Context(), args[0])
		if err != nil {
			a.session.HandleError(err)
			return err
		}
		form := validation.NewVehicleForm(*existing)
		if err := editFields.fill(&form); err != nil {
			return err
		}
		v, err := a.vehicles.Update(cmd.Context(), args[0], form)
		if err != nil {
			return a.saveError(cmd.OutOrStdout(), err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Vehicle saved")
		printVehicle(cmd.OutOrStdout(), *v)
		return nil
	}

	cmd.AddCommand(show, create, edit)
	return cmd
}

func driverFields(cmd *cobra.Command) *formFlags[validation.DriverForm] {
	ff := newFormFlags[validation.DriverForm](cmd)
	ff.text("first-name", "first name", func(f *validation.DriverForm) *string { return &f.FirstName })
	ff.text("last-name", "last name", func(f *validation.DriverForm) *string { return &f.LastName })
	ff.text("email", "email address", func(f *validation.DriverForm) *string { return &f.Email })
	ff.text("phone", "phone in E.164 form", func(f *validation.DriverForm) *string { return &f.Phone })
	ff.text("address", "postal address", func(f *validation.DriverForm) *string { return &f.Address })
	ff.text("license-number", "license number", func(f *validation.DriverForm) *string { return &f.License.Number })
	ff.text("license-type", "B, C, CE or D", func(f *validation.DriverForm) *string { return &f.License.Type })
	ff.date("license-issued", "license issue date", func(f *validation.DriverForm) *time.Time { return &f.License.IssueDate })
	ff.date("license-expiry", "license expiry date", func(f *validation.DriverForm) *time.Time { return &f.License.Expiry })
	ff.text("employee-id", "employee number", func(f *validation.DriverForm) *string { return &f.EmployeeID })
	ff.date("hired", "hire date", func(f *validation.DriverForm) *time.Time { return &f.HireDate })
	ff.text("status", "available, on_trip, off_duty or inactive", func(f *validation.DriverForm) *string { return &f.Status })
	ff.text("vehicle", "assigned vehicle id", func(f *validation.DriverForm) *string { return &f.AssignedVehicleID })
	return ff
}

func printDriver(out io.Writer, d models.Driver) {
	fmt.Fprintf(out, "Driver %s  [%s]\n", d.ID.Hex(), d.Status.Chip().Label)
	fmt.Fprintf(out, "  Name:     %s %s (%s)\n", d.FirstName, d.LastName, d.EmployeeID)
	fmt.Fprintf(out, "  Contact:  %s  %s\n", d.Email, d.Phone)
	fmt.Fprintf(out, "  License:  %s %s, expires %s\n", d.License.Type, d.License.Number, d.License.Expiry.Format("2006-01-02"))
}

func driverCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{Use: "driver", Short: "Show, add or edit a driver"}

	show := &cobra.Command{
		Use:   "show <id>",
		Short: "Show a driver and their active trips",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			actor, err := a.enter(cmd.Context(), "/drivers/"+args[0])
			if err != nil {
				return err
			}
			v, err := screens.LoadDriver(cmd.Context(), a.drivers, a.trips, actor, args[0], a.session)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			printDriver(out, v.Driver)
			if v.Anomaly {
				fmt.Fprintln(out, "  Warning:  marked on trip but no trip is in progress")
			}
			switch {
			case v.TripsErr != nil:
				fmt.Fprintln(out, "  Active trips unavailable")
			case len(v.ActiveTrips) == 0:
				fmt.Fprintln(out, "  No active trips")
			}
			for _, t := range v.ActiveTrips {
				fmt.Fprintf(out, "  %s  %s to %s\n", t.ID.Hex(), t.Origin, t.Destination)
			}
			return nil
		},
	}

	create := &cobra.Command{
		Use:   "new",
		Short: "Add a driver",
		Args:  cobra.NoArgs,
	}
	createFields := driverFields(create)
	create.RunE = func(cmd *cobra.Command, args []string) error {
		if _, err := a.enter(cmd.Context(), "/drivers/new"); err != nil {
			return err
		}
		form := validation.DriverForm{Status: string(models.DriverAvailable)}
		if err := createFields.fill(&form); err != nil {
			return err
		}
		d, err := a.drivers.Create(cmd.Context(), form)
		if err != nil {
			return a.saveError(cmd.OutOrStdout(), err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Driver created")
		printDriver(cmd.OutOrStdout(), *d)
		return nil
	}

	edit := &cobra.Command{
		Use:   "edit <id>",
		Short: "Edit a driver; fields without a flag keep their value",
		Args:  cobra.ExactArgs(1),
	}
	editFields := driverFields(edit)
	edit.RunE = func(cmd *cobra.Command, args []string) error {
		if _, err := a.enter(cmd.Context(), "/drivers/"+args[0]+"/edit"); err != nil {
			return err
		}
		existing, err := a.drivers.Get(cmd.Context(), args[0])
		if err != nil {
			a.session.HandleError(err)
			return err
		}
		form := validation.NewDriverForm(*existing)
		if err := editFields.fill(&form); err != nil {
			return err
		}
		d, err := a.drivers.Update(cmd.Context(), args[0], form)
		if err != nil {
			return a.saveError(cmd.OutOrStdout(), err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Driver saved")
		printDriver(cmd.OutOrStdout(), *d)
		return nil
	}

	cmd.AddCommand(show, create, edit)
	return cmd
}
