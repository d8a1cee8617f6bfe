package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
	"time"
)

// TripStatus is the lifecycle state of a trip.
type TripStatus string

const (
	TripScheduled  TripStatus = "scheduled"
	TripInProgress TripStatus = "in_progress"
	TripCompleted  TripStatus = "completed"
	TripCancelled  TripStatus = "cancelled"
)

// TripStatuses lists every trip status.
var TripStatuses = []TripStatus{TripScheduled, TripInProgress, TripCompleted, TripCancelled}

// IsValid reports whether s is a known trip status.
func (s TripStatus) IsValid() bool {
	for _, v := range TripStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// Trip represents a vehicle trip from origin to destination.
type Trip struct {
	ID                 primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Origin             string             `json:"origin" bson:"origin"`
	Destination        string             `json:"destination" bson:"destination"`
	StartTime          time.Time          `json:"startTime" bson:"start_time"`
	EndTime            *time.Time         `json:"endTime,omitempty" bson:"end_time,omitempty"`
	DriverID           string             `json:"driverId" bson:"driver_id"`
	VehicleID          string             `json:"vehicleId" bson:"vehicle_id"`
	Distance           float64            `json:"distance" bson:"distance"` // in kilometers
	Purpose            string             `json:"purpose" bson:"purpose"`   // "delivery", "pickup", "transfer", "service"
	Status             TripStatus         `json:"status" bson:"status"`
	CancellationReason string             `json:"cancellationReason,omitempty" bson:"cancellation_reason,omitempty"`
	StartedAt          *time.Time         `json:"startedAt,omitempty" bson:"started_at,omitempty"`
	CompletedAt        *time.Time         `json:"completedAt,omitempty" bson:"completed_at,omitempty"`
	Notes              string             `json:"notes" bson:"notes"`
	CreatedAt          time.Time          `json:"createdAt" bson:"created_at"`
	UpdatedAt          time.Time          `json:"updatedAt" bson:"updated_at"`
}
