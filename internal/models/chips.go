package models

// ChipColor is the palette slot used to render a status chip.
type ChipColor string

const (
	ChipDefault ChipColor = "default"
	ChipInfo    ChipColor = "info"
	ChipSuccess ChipColor = "success"
	ChipWarning ChipColor = "warning"
	ChipError   ChipColor = "error"
)

// Chip is the label and color shown for a status.
type Chip struct {
	Label string
	Color ChipColor
}

// Every status constant must have an entry here; chips_test enumerates the status
// lists and fails on a missing key.
var (
	vehicleChips = map[VehicleStatus]Chip{
		VehicleActive:      {"Active", ChipSuccess},
		VehicleMaintenance: {"In Maintenance", ChipWarning},
		VehicleInactive:    {"Inactive", ChipDefault},
		VehicleRetired:     {"Retired", ChipError},
	}
	driverChips = map[DriverStatus]Chip{
		DriverAvailable: {"Available", ChipSuccess},
		DriverOnTrip:    {"On Trip", ChipInfo},
		DriverOffDuty:   {"Off Duty", ChipWarning},
		DriverInactive:  {"Inactive", ChipDefault},
	}
	tripChips = map[TripStatus]Chip{
		TripScheduled:  {"Scheduled", ChipInfo},
		TripInProgress: {"In Progress", ChipWarning},
		TripCompleted:  {"Completed", ChipSuccess},
		TripCancelled:  {"Cancelled", ChipError},
	}
	maintenanceChips = map[MaintenanceStatus]Chip{
		MaintenanceScheduled:  {"Scheduled", ChipInfo},
		MaintenanceInProgress: {"In Progress", ChipWarning},
		MaintenanceCompleted:  {"Completed", ChipSuccess},
		MaintenanceOverdue:    {"Overdue", ChipError},
	}
	priorityChips = map[AlertPriority]Chip{
		PriorityLow:      {"Low", ChipDefault},
		PriorityMedium:   {"Medium", ChipInfo},
		PriorityHigh:     {"High", ChipWarning},
		PriorityCritical: {"Critical", ChipError},
	}
)

func chipOr[K ~string](m map[K]Chip, k K) Chip {
	if c, ok := m[k]; ok {
		return c
	}
	return Chip{Label: string(k), Color: ChipDefault}
}

// Chip returns the status chip for a vehicle status.
func (s VehicleStatus) Chip() Chip { return chipOr(vehicleChips, s) }

// Chip returns the status chip for a driver status.
func (s DriverStatus) Chip() Chip { return chipOr(driverChips, s) }

// Chip returns the status chip for a trip status.
func (s TripStatus) Chip() Chip { return chipOr(tripChips, s) }

// Chip returns the status chip for a maintenance status, including overdue.
func (s MaintenanceStatus) Chip() Chip { return chipOr(maintenanceChips, s) }

// Chip returns the chip for an alert priority.
func (p AlertPriority) Chip() Chip { return chipOr(priorityChips, p) }
