package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
	"time"
)

// VehicleStatus is the operational state of a vehicle.
type VehicleStatus string

const (
	VehicleActive      VehicleStatus = "active"
	VehicleMaintenance VehicleStatus = "maintenance"
	VehicleInactive    VehicleStatus = "inactive"
	VehicleRetired     VehicleStatus = "retired"
)

// VehicleStatuses lists every vehicle status.
var VehicleStatuses = []VehicleStatus{VehicleActive, VehicleMaintenance, VehicleInactive, VehicleRetired}

// IsValid reports whether s is a known vehicle status.
func (s VehicleStatus) IsValid() bool {
	for _, v := range VehicleStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// Vehicle represents a fleet vehicle.
type Vehicle struct {
	ID                  primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Make                string             `bson:"make" json:"make"`
	Model               string             `bson:"model" json:"model"`
	Year                int                `bson:"year" json:"year"`
	LicensePlate        string             `bson:"license_plate" json:"licensePlate"`
	VIN                 string             `bson:"vin,omitempty" json:"vin,omitempty"`
	FuelType            string             `bson:"fuel_type" json:"fuelType"` // "diesel", "petrol", "electric", "hybrid"
	Status              VehicleStatus      `bson:"status" json:"status"`
	AssignedDriverID    string             `bson:"assigned_driver_id,omitempty" json:"assignedDriverId,omitempty"`
	Odometer            float64            `bson:"odometer" json:"odometer"` // in kilometers
	LastMaintenanceDate *time.Time         `bson:"last_maintenance_date,omitempty" json:"lastMaintenanceDate,omitempty"`
	CreatedAt           time.Time          `bson:"created_at" json:"createdAt"`
	UpdatedAt           time.Time          `bson:"updated_at" json:"updatedAt"`
}
