package models

import "time"

// FleetSummary aggregates population counts across resources.
type FleetSummary struct {
	Vehicles        Stats   `json:"vehicles"`
	Drivers         Stats   `json:"drivers"`
	Trips           Stats   `json:"trips"`
	Maintenance     Stats   `json:"maintenance"`
	MaintenanceCost float64 `json:"maintenanceCost"`
}

// TripReport summarizes trips whose start time falls in [From, To).
type TripReport struct {
	From          time.Time        `json:"from"`
	To            time.Time        `json:"to"`
	Trips         int64            `json:"trips"`
	Distance      float64          `json:"distance"`
	ByStatus      map[string]int64 `json:"byStatus"`
	TripsByDriver map[string]int64 `json:"tripsByDriver"`
}
