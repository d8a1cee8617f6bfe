package handlers

import (
	"net/http"

	"github.com/ukydev/aivodrive/internal/db"
	"github.com/ukydev/aivodrive/internal/models"
	"github.com/ukydev/aivodrive/internal/validation"
)

var driverList = listSpec{
	sortable: map[string]string{
		"firstName": "first_name", "lastName": "last_name", "email": "email",
		"employeeId": "employee_id", "hireDate": "hire_date", "status": "status",
		"licenseExpiry": "license.expiry", "createdAt": "created_at",
	},
	filters: map[string]string{
		"status": "status", "licenseType": "license.type", "assignedVehicleId": "assigned_vehicle_id",
	},
	search: []string{"first_name", "last_name", "email", "employee_id", "license.number"},
}

// DriverHandler serves /api/drivers.
type DriverHandler struct {
	crud[models.Driver]
}

func NewDriverHandler(store db.Store[models.Driver]) *DriverHandler {
	return &DriverHandler{crud[models.Driver]{name: "Driver", store: store, spec: driverList}}
}

func (h *DriverHandler) Create(w http.ResponseWriter, r *http.Request) {
	var form validation.DriverForm
	if !decodeValid(w, r, &form) {
		return
	}
	d := form.Driver()
	d.CreatedAt = h.clock.now()
	d.UpdatedAt = d.CreatedAt
	h.insert(w, r, d, func(d *models.Driver, id string) { d.ID = objectIDOrZero(id) })
}

// Update replaces the driver, status included: driver status has no lifecycle
// endpoint and is set here directly.
func (h *DriverHandler) Update(w http.ResponseWriter, r *http.Request) {
	existing, ok := h.load(w, r)
	if !ok {
		return
	}
	var form validation.DriverForm
	if !decodeValid(w, r, &form) {
		return
	}
	d := form.Driver()
	d.ID = existing.ID
	d.DateOfBirth = existing.DateOfBirth
	d.CreatedAt = existing.CreatedAt
	d.UpdatedAt = h.clock.now()
	h.replace(w, r, d)
}
