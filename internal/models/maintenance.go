package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
	"time"
)

// MaintenanceStatus is the stored lifecycle state of a maintenance record.
type MaintenanceStatus string

const (
	MaintenanceScheduled  MaintenanceStatus = "scheduled"
	MaintenanceInProgress MaintenanceStatus = "in_progress"
	MaintenanceCompleted  MaintenanceStatus = "completed"

	// MaintenanceOverdue is display only and never stored.
	MaintenanceOverdue MaintenanceStatus = "overdue"
)

// MaintenanceStatuses lists the stored maintenance statuses.
var MaintenanceStatuses = []MaintenanceStatus{MaintenanceScheduled, MaintenanceInProgress, MaintenanceCompleted}

// IsValid reports whether s is a storable maintenance status.
func (s MaintenanceStatus) IsValid() bool {
	for _, v := range MaintenanceStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// Maintenance represents a vehicle maintenance record.
type Maintenance struct {
	ID              primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	VehicleID       string             `json:"vehicleId" bson:"vehicle_id"`
	MaintenanceType string             `json:"maintenanceType" bson:"maintenance_type"` // "oil_change", "tire_rotation", "brake_service", "battery_service", "inspection", "repair"
	Description     string             `json:"description" bson:"description"`
	Date            time.Time          `json:"date" bson:"date"`
	Cost            float64            `json:"cost" bson:"cost"` // in USD
	Technician      string             `json:"technician,omitempty" bson:"technician,omitempty"`
	Status          MaintenanceStatus  `json:"status" bson:"status"`
	CompletionNotes string             `json:"completionNotes,omitempty" bson:"completion_notes,omitempty"`
	CompletedAt     *time.Time         `json:"completedAt,omitempty" bson:"completed_at,omitempty"`
	CreatedAt       time.Time          `json:"createdAt" bson:"created_at"`
	UpdatedAt       time.Time          `json:"updatedAt" bson:"updated_at"`
}

// DisplayStatus returns the status shown to users: a scheduled record whose date has
// passed reads as overdue.
func (m Maintenance) DisplayStatus(now time.Time) MaintenanceStatus {
	if m.Status == MaintenanceScheduled && m.Date.Before(now) {
		return MaintenanceOverdue
	}
	return m.Status
}
