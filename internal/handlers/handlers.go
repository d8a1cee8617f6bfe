// Package handlers implements the REST endpoints consumed by the terminal client
// and any browser front end. Every response uses the {data, pagination} or
// {message} envelope written by package respond.
package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/ukydev/aivodrive/internal/db"
	"github.com/ukydev/aivodrive/internal/lifecycle"
	"github.com/ukydev/aivodrive/internal/middleware"
	"github.com/ukydev/aivodrive/internal/models"
	"github.com/ukydev/aivodrive/internal/respond"
	"github.com/ukydev/aivodrive/internal/validation"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const maxBodyBytes = 1 << 20

// Clock returns the current time. Tests pin it.
type Clock func() time.Time

func (c Clock) now() time.Time {
	if c == nil {
		return time.Now().UTC()
	}
	return c()
}

// decodeJSON reads a bounded JSON body into v.
func decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		respond.Error(w, http.StatusBadRequest, "Failed to read request body")
		return false
	}
	if len(body) == 0 {
		body = []byte("{}")
	}
	if err := json.Unmarshal(body, v); err != nil {
		respond.Error(w, http.StatusBadRequest, "Invalid JSON")
		return false
	}
	return true
}

// decodeValid decodes then validates v, writing 422 with per-field errors on failure.
func decodeValid(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if !decodeJSON(w, r, v) {
		return false
	}
	if err := validation.Struct(v); err != nil {
		if fields, ok := validation.FieldErrors(err); ok {
			respond.ErrorWithData(w, http.StatusUnprocessableEntity, "Validation failed", fields)
			return false
		}
		respond.Error(w, http.StatusBadRequest, err.Error())
		return false
	}
	return true
}

// actor returns the caller from validated token claims.
func actor(w http.ResponseWriter, r *http.Request) (lifecycle.Actor, bool) {
	claims, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		respond.Error(w, http.StatusUnauthorized, "User context not found")
		return lifecycle.Actor{}, false
	}
	return lifecycle.ActorFromClaims(*claims), true
}

// storeError maps storage errors onto status codes.
func storeError(w http.ResponseWriter, err error, what string) {
	switch {
	case errors.Is(err, db.ErrNotFound), errors.Is(err, db.ErrInvalidID):
		respond.Error(w, http.StatusNotFound, what+" not found")
	case errors.Is(err, db.ErrConflict):
		respond.Error(w, http.StatusConflict, what+" was changed by another request")
	default:
		log.WithError(err).WithField("resource", what).Error("Storage operation failed")
		respond.Error(w, http.StatusInternalServerError, "Internal server error")
	}
}

// lifecycleError maps state machine errors onto status codes.
func lifecycleError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, lifecycle.ErrForbidden):
		respond.Error(w, http.StatusForbidden, "Insufficient permissions")
	case errors.Is(err, lifecycle.ErrReasonRequired):
		respond.ErrorWithData(w, http.StatusUnprocessableEntity, "Validation failed",
			validation.Errors{"reason": "is required"})
	case errors.Is(err, lifecycle.ErrTransitionNotAllowed):
		respond.Error(w, http.StatusConflict, err.Error())
	default:
		respond.Error(w, http.StatusBadRequest, err.Error())
	}
}

// listSpec describes how a resource's list endpoint maps query parameters onto
// document fields. Keys are the camelCase names the client sends.
type listSpec struct {
	sortable map[string]string
	filters  map[string]string
	search   []string
}

// query builds a storage query from page, limit, search, sort, order and filter
// parameters. Unknown sort keys fall back to newest first.
func (s listSpec) query(r *http.Request) db.Query {
	v := r.URL.Query()
	q := db.Query{
		Filter: bson.M{},
		Page:   atoiOr(v.Get("page"), 1),
		Limit:  atoiOr(v.Get("limit"), 10),
	}
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit < 1 {
		q.Limit = 10
	}
	if q.Limit > db.MaxLimit {
		q.Limit = db.MaxLimit
	}

	if field, ok := s.sortable[v.Get("sort")]; ok {
		q.Sort = field
		q.Desc = strings.EqualFold(v.Get("order"), "desc")
	}
	for param, field := range s.filters {
		if val := strings.TrimSpace(v.Get(param)); val != "" {
			q.Filter[field] = val
		}
	}
	if term := strings.TrimSpace(v.Get("search")); term != "" && len(s.search) > 0 {
		for k, val := range db.SearchFilter(term, s.search...) {
			q.Filter[k] = val
		}
	}
	return q
}

func atoiOr(raw string, fallback int) int {
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return n
}

// page writes a list response, never encoding a nil slice.
func page[T any](w http.ResponseWriter, items []T, q db.Query, total int64) {
	if items == nil {
		items = []T{}
	}
	respond.Page(w, items, models.NewPagination(q.Page, q.Limit, total))
}

func objectIDOrZero(hex string) primitive.ObjectID {
	id, err := primitive.ObjectIDFromHex(hex)
	if err != nil {
		return primitive.NilObjectID
	}
	return id
}
