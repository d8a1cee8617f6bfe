package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DriverStatus is the availability of a driver.
type DriverStatus string

const (
	DriverAvailable DriverStatus = "available"
	DriverOnTrip    DriverStatus = "on_trip"
	DriverOffDuty   DriverStatus = "off_duty"
	DriverInactive  DriverStatus = "inactive"
)

// DriverStatuses lists every driver status.
var DriverStatuses = []DriverStatus{DriverAvailable, DriverOnTrip, DriverOffDuty, DriverInactive}

// IsValid reports whether s is a known driver status.
func (s DriverStatus) IsValid() bool {
	for _, v := range DriverStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// License holds a driver's license details.
type License struct {
	Number    string    `bson:"number" json:"number"`
	Type      string    `bson:"type" json:"type"` // "B", "C", "CE", "D"
	IssueDate time.Time `bson:"issue_date" json:"issueDate"`
	Expiry    time.Time `bson:"expiry" json:"expiry"`
}

// Driver represents a fleet driver.
type Driver struct {
	ID                primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	FirstName         string             `bson:"first_name" json:"firstName"`
	LastName          string             `bson:"last_name" json:"lastName"`
	Email             string             `bson:"email" json:"email"`
	Phone             string             `bson:"phone" json:"phone"`
	Address           string             `bson:"address,omitempty" json:"address,omitempty"`
	DateOfBirth       *time.Time         `bson:"date_of_birth,omitempty" json:"dateOfBirth,omitempty"`
	License           License            `bson:"license" json:"license"`
	EmployeeID        string             `bson:"employee_id" json:"employeeId"`
	HireDate          time.Time          `bson:"hire_date" json:"hireDate"`
	Status            DriverStatus       `bson:"status" json:"status"`
	AssignedVehicleID string             `bson:"assigned_vehicle_id,omitempty" json:"assignedVehicleId,omitempty"`
	CreatedAt         time.Time          `bson:"created_at" json:"createdAt"`
	UpdatedAt         time.Time          `bson:"updated_at" json:"updatedAt"`
}

// FullName joins first and last name.
func (d Driver) FullName() string {
	if d.LastName == "" {
		return d.FirstName
	}
	return d.FirstName + " " + d.LastName
}

// LicenseExpired reports whether the license expiry is before now.
func (d Driver) LicenseExpired(now time.Time) bool {
	return !d.License.Expiry.IsZero() && d.License.Expiry.Before(now)
}
