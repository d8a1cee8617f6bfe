package handlers

import (
	"net/http"

	"github.com/ukydev/aivodrive/internal/db"
	"github.com/ukydev/aivodrive/internal/models"
	"github.com/ukydev/aivodrive/internal/validation"
)

var vehicleList = listSpec{
	sortable: map[string]string{
		"make": "make", "model": "model", "year": "year", "licensePlate": "license_plate",
		"status": "status", "odometer": "odometer", "createdAt": "created_at",
	},
	filters: map[string]string{
		"status": "status", "fuelType": "fuel_type", "assignedDriverId": "assigned_driver_id",
	},
	search: []string{"make", "model", "license_plate", "vin"},
}

// VehicleHandler serves /api/vehicles.
type VehicleHandler struct {
	crud[models.Vehicle]
}

func NewVehicleHandler(store db.Store[models.Vehicle]) *VehicleHandler {
	return &VehicleHandler{crud[models.Vehicle]{name: "Vehicle", store: store, spec: vehicleList}}
}

func (h *VehicleHandler) Create(w http.ResponseWriter, r *http.Request) {
	var form validation.VehicleForm
	if !decodeValid(w, r, &form) {
		return
	}
	v := form.Vehicle()
	v.CreatedAt = h.clock.now()
	v.UpdatedAt = v.CreatedAt
	h.insert(w, r, v, func(v *models.Vehicle, id string) { v.ID = objectIDOrZero(id) })
}

// Update replaces the editable fields. The maintenance history stamp is kept.
func (h *VehicleHandler) Update(w http.ResponseWriter, r *http.Request) {
	existing, ok := h.load(w, r)
	if !ok {
		return
	}
	var form validation.VehicleForm
	if !decodeValid(w, r, &form) {
		return
	}
	v := form.Vehicle()
	v.ID = existing.ID
	v.LastMaintenanceDate = existing.LastMaintenanceDate
	v.CreatedAt = existing.CreatedAt
	v.UpdatedAt = h.clock.now()
	h.replace(w, r, v)
}
