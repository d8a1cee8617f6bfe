package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AlertPriority ranks a notification.
type AlertPriority string

const (
	PriorityLow      AlertPriority = "low"
	PriorityMedium   AlertPriority = "medium"
	PriorityHigh     AlertPriority = "high"
	PriorityCritical AlertPriority = "critical"
)

// AlertPriorities lists every priority, lowest first.
var AlertPriorities = []AlertPriority{PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical}

// Alert is a user-facing notification.
type Alert struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Type      string             `bson:"type" json:"type"` // "trip", "maintenance", "driver", "vehicle", "system"
	Title     string             `bson:"title" json:"title"`
	Message   string             `bson:"message" json:"message"`
	Timestamp time.Time          `bson:"timestamp" json:"timestamp"`
	Read      bool               `bson:"read" json:"read"`
	Priority  AlertPriority      `bson:"priority" json:"priority"`
	Link      string             `bson:"link,omitempty" json:"link,omitempty"`
}
