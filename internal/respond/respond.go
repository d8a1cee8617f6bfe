// Package respond writes the API envelope: {data, pagination?} on success and
// {message} on failure.
package respond

import (
	"encoding/json"
	"net/http"

	log "github.com/sirupsen/logrus"
	"github.com/ukydev/aivodrive/internal/models"
)

type envelope struct {
	Data       interface{}        `json:"data,omitempty"`
	Pagination *models.Pagination `json:"pagination,omitempty"`
	Message    string             `json:"message,omitempty"`
}

// Data writes data with the given status.
func Data(w http.ResponseWriter, status int, data interface{}) {
	write(w, status, envelope{Data: data})
}

// Page writes a list page.
func Page(w http.ResponseWriter, items interface{}, p models.Pagination) {
	write(w, http.StatusOK, envelope{Data: items, Pagination: &p})
}

// Error writes a {message} body.
func Error(w http.ResponseWriter, status int, message string) {
	write(w, status, envelope{Message: message})
}

// ErrorWithData writes a {message} body plus details under data, used for
// per-field validation errors.
func ErrorWithData(w http.ResponseWriter, status int, message string, data interface{}) {
	write(w, status, envelope{Message: message, Data: data})
}

// NoContent writes 204.
func NoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

func write(w http.ResponseWriter, status int, body envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.WithError(err).Warn("Failed to encode response")
	}
}
