package validation

import (
	"strings"
	"time"

	"github.com/ukydev/aivodrive/internal/models"
)

// VehicleForm is the vehicle create/edit schema.
type VehicleForm struct {
	Make             string  `json:"make" validate:"notblank,max=50"`
	Model            string  `json:"model" validate:"notblank,max=50"`
	Year             int     `json:"year" validate:"gte=1980,lte=2100"`
	LicensePlate     string  `json:"licensePlate" validate:"notblank,max=15"`
	VIN              string  `json:"vin" validate:"omitempty,len=17,alphanum"`
	FuelType         string  `json:"fuelType" validate:"oneof=diesel petrol electric hybrid"`
	Status           string  `json:"status" validate:"oneof=active maintenance inactive retired"`
	AssignedDriverID string  `json:"assignedDriverId"`
	Odometer         float64 `json:"odometer" validate:"gte=0"`
}

// NewVehicleForm prefills the edit form of v.
func NewVehicleForm(v models.Vehicle) VehicleForm {
	return VehicleForm{
		Make:             v.Make,
		Model:            v.Model,
		Year:             v.Year,
		LicensePlate:     v.LicensePlate,
		VIN:              v.VIN,
		FuelType:         v.FuelType,
		Status:           string(v.Status),
		AssignedDriverID: v.AssignedDriverID,
		Odometer:         v.Odometer,
	}
}

// Vehicle converts the form into a vehicle payload.
func (f VehicleForm) Vehicle() models.Vehicle {
	return models.Vehicle{
		Make:             strings.TrimSpace(f.Make),
		Model:            strings.TrimSpace(f.Model),
		Year:             f.Year,
		LicensePlate:     strings.ToUpper(strings.TrimSpace(f.LicensePlate)),
		VIN:              strings.ToUpper(f.VIN),
		FuelType:         f.FuelType,
		Status:           models.VehicleStatus(f.Status),
		AssignedDriverID: f.AssignedDriverID,
		Odometer:         f.Odometer,
	}
}

// LicenseForm is the nested license section of DriverForm.
type LicenseForm struct {
	Number    string    `json:"number" validate:"notblank,max=30"`
	Type      string    `json:"type" validate:"oneof=B C CE D"`
	IssueDate time.Time `json:"issueDate" validate:"required"`
	Expiry    time.Time `json:"expiry" validate:"required,gtfield=IssueDate"`
}

// DriverForm is the driver create/edit schema.
type DriverForm struct {
	FirstName         string      `json:"firstName" validate:"notblank,max=50"`
	LastName          string      `json:"lastName" validate:"notblank,max=50"`
	Email             string      `json:"email" validate:"required,email"`
	Phone             string      `json:"phone" validate:"required,e164"`
	Address           string      `json:"address" validate:"max=200"`
	License           LicenseForm `json:"license"`
	EmployeeID        string      `json:"employeeId" validate:"notblank"`
	HireDate          time.Time   `json:"hireDate" validate:"required"`
	Status            string      `json:"status" validate:"oneof=available on_trip off_duty inactive"`
	AssignedVehicleID string      `json:"assignedVehicleId"`
}

// NewDriverForm prefills the edit form of d.
func NewDriverForm(d models.Driver) DriverForm {
	return DriverForm{
		FirstName: d.FirstName,
		LastName:  d.LastName,
		Email:     d.Email,
		Phone:     d.Phone,
		Address:   d.Address,
		License: LicenseForm{
			Number:    d.License.Number,
			Type:      d.License.Type,
			IssueDate: d.License.IssueDate,
			Expiry:    d.License.Expiry,
		},
		EmployeeID:        d.EmployeeID,
		HireDate:          d.HireDate,
		Status:            string(d.Status),
		AssignedVehicleID: d.AssignedVehicleID,
	}
}

// Driver converts the form into a driver payload.
func (f DriverForm) Driver() models.Driver {
	return models.Driver{
		FirstName: strings.TrimSpace(f.FirstName),
		LastName:  strings.TrimSpace(f.LastName),
		Email:     strings.ToLower(strings.TrimSpace(f.Email)),
		Phone:     f.Phone,
		Address:   f.Address,
		License: models.License{
			Number:    strings.TrimSpace(f.License.Number),
			Type:      f.License.Type,
			IssueDate: f.License.IssueDate,
			Expiry:    f.License.Expiry,
		},
		EmployeeID:        f.EmployeeID,
		HireDate:          f.HireDate,
		Status:            models.DriverStatus(f.Status),
		AssignedVehicleID: f.AssignedVehicleID,
	}
}

// TripForm is the trip create/edit schema. New trips always start scheduled.
type TripForm struct {
	Origin      string     `json:"origin" validate:"notblank,max=200"`
	Destination string     `json:"destination" validate:"notblank,max=200,nefield=Origin"`
	StartTime   time.Time  `json:"startTime" validate:"required,notpast"`
	EndTime     *time.Time `json:"endTime" validate:"omitempty,gtfield=StartTime"`
	DriverID    string     `json:"driverId" validate:"notblank"`
	VehicleID   string     `json:"vehicleId" validate:"notblank"`
	Distance    float64    `json:"distance" validate:"gte=0"`
	Purpose     string     `json:"purpose" validate:"omitempty,oneof=delivery pickup transfer service"`
	Notes       string     `json:"notes" validate:"max=1000"`
}

// NewTripForm prefills the edit form of t.
func NewTripForm(t models.Trip) TripForm {
	return TripForm{
		Origin:      t.Origin,
		Destination: t.Destination,
		StartTime:   t.StartTime,
		EndTime:     t.EndTime,
		DriverID:    t.DriverID,
		VehicleID:   t.VehicleID,
		Distance:    t.Distance,
		Purpose:     t.Purpose,
		Notes:       t.Notes,
	}
}

// TripEdit checks an edit of existing. A trip that has started keeps its past start
// time, so the start time is only checked when it changes or the trip is scheduled.
func TripEdit(f TripForm, existing models.Trip) error {
	err := Struct(f)
	fields, ok := FieldErrors(err)
	if !ok {
		return err
	}
	if existing.Status != models.TripScheduled && f.StartTime.Equal(existing.StartTime) {
		delete(fields, "startTime")
	}
	if len(fields) == 0 {
		return nil
	}
	return fields
}

// Trip converts the form into a trip payload.
func (f TripForm) Trip() models.Trip {
	return models.Trip{
		Origin:      strings.TrimSpace(f.Origin),
		Destination: strings.TrimSpace(f.Destination),
		StartTime:   f.StartTime,
		EndTime:     f.EndTime,
		DriverID:    f.DriverID,
		VehicleID:   f.VehicleID,
		Distance:    f.Distance,
		Purpose:     f.Purpose,
		Status:      models.TripScheduled,
		Notes:       f.Notes,
	}
}

// MaintenanceForm is the maintenance create/edit schema.
type MaintenanceForm struct {
	VehicleID       string    `json:"vehicleId" validate:"notblank"`
	MaintenanceType string    `json:"maintenanceType" validate:"oneof=oil_change tire_rotation brake_service battery_service inspection repair"`
	Description     string    `json:"description" validate:"notblank,max=1000"`
	Date            time.Time `json:"date" validate:"required"`
	Cost            float64   `json:"cost" validate:"gte=0"`
	Technician      string    `json:"technician" validate:"max=100"`
}

// NewMaintenanceForm prefills the edit form of m.
func NewMaintenanceForm(m models.Maintenance) MaintenanceForm {
	return MaintenanceForm{
		VehicleID:       m.VehicleID,
		MaintenanceType: m.MaintenanceType,
		Description:     m.Description,
		Date:            m.Date,
		Cost:            m.Cost,
		Technician:      m.Technician,
	}
}

// Maintenance converts the form into a maintenance payload. New records start scheduled.
func (f MaintenanceForm) Maintenance() models.Maintenance {
	return models.Maintenance{
		VehicleID:       f.VehicleID,
		MaintenanceType: f.MaintenanceType,
		Description:     strings.TrimSpace(f.Description),
		Date:            f.Date,
		Cost:            f.Cost,
		Technician:      f.Technician,
		Status:          models.MaintenanceScheduled,
	}
}

// CancelRequest is the body of POST /trips/{id}/cancel.
type CancelRequest struct {
	Reason string `json:"reason" validate:"notblank,max=500"`
}

// CompleteRequest is the body of POST /maintenance/{id}/complete.
type CompleteRequest struct {
	CompletionNotes string `json:"completionNotes,omitempty" validate:"max=2000"`
}

// PasswordChange is the body of PUT /auth/password.
type PasswordChange struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,min=8,nefield=CurrentPassword"`
}
