package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/ukydev/aivodrive/internal/db"
	"github.com/ukydev/aivodrive/internal/respond"
	"go.mongodb.org/mongo-driver/bson"
)

// crud implements the list, stats, get and delete endpoints shared by every
// fleet resource.
type crud[T any] struct {
	name  string
	store db.Store[T]
	spec  listSpec
	clock Clock
}

func (c crud[T]) List(w http.ResponseWriter, r *http.Request) {
	c.listScoped(w, r, nil)
}

// listScoped lists with scope merged over the request filters.
func (c crud[T]) listScoped(w http.ResponseWriter, r *http.Request, scope bson.M) {
	q := c.spec.query(r)
	for k, v := range scope {
		q.Filter[k] = v
	}
	items, total, err := c.store.Find(r.Context(), q)
	if err != nil {
		storeError(w, err, c.name)
		return
	}
	page(w, items, q, total)
}

// Stats counts the whole population by status, ignoring list filters.
func (c crud[T]) Stats(w http.ResponseWriter, r *http.Request) {
	c.statsScoped(w, r, nil)
}

func (c crud[T]) statsScoped(w http.ResponseWriter, r *http.Request, scope bson.M) {
	stats, err := c.store.CountByStatus(r.Context(), scope)
	if err != nil {
		storeError(w, err, c.name)
		return
	}
	if stats.ByStatus == nil {
		stats.ByStatus = map[string]int64{}
	}
	respond.Data(w, http.StatusOK, stats)
}

func (c crud[T]) Get(w http.ResponseWriter, r *http.Request) {
	doc, ok := c.load(w, r)
	if !ok {
		return
	}
	respond.Data(w, http.StatusOK, doc)
}

func (c crud[T]) Delete(w http.ResponseWriter, r *http.Request) {
	if err := c.store.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		storeError(w, err, c.name)
		return
	}
	respond.NoContent(w)
}

// load fetches the document named by the {id} URL parameter.
func (c crud[T]) load(w http.ResponseWriter, r *http.Request) (*T, bool) {
	doc, err := c.store.FindByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		storeError(w, err, c.name)
		return nil, false
	}
	return doc, true
}

// insert stores doc and hands the new id to setID before responding 201.
func (c crud[T]) insert(w http.ResponseWriter, r *http.Request, doc T, setID func(*T, string)) {
	id, err := c.store.Insert(r.Context(), doc)
	if err != nil {
		storeError(w, err, c.name)
		return
	}
	setID(&doc, id)
	respond.Data(w, http.StatusCreated, doc)
}

// replace stores doc under the {id} URL parameter and responds with it.
func (c crud[T]) replace(w http.ResponseWriter, r *http.Request, doc T) {
	if err := c.store.Update(r.Context(), chi.URLParam(r, "id"), doc); err != nil {
		storeError(w, err, c.name)
		return
	}
	respond.Data(w, http.StatusOK, doc)
}

// replaceIf is replace for documents whose status gates the write. A status
// changed since the caller loaded the document answers 409.
func (c crud[T]) replaceIf(w http.ResponseWriter, r *http.Request, status string, doc T) {
	if err := c.store.UpdateIf(r.Context(), chi.URLParam(r, "id"), statusIs(status), doc); err != nil {
		storeError(w, err, c.name)
		return
	}
	respond.Data(w, http.StatusOK, doc)
}

// removeIf deletes the {id} document while it still has status.
func (c crud[T]) removeIf(w http.ResponseWriter, r *http.Request, status string) {
	if err := c.store.DeleteIf(r.Context(), chi.URLParam(r, "id"), statusIs(status)); err != nil {
		storeError(w, err, c.name)
		return
	}
	respond.NoContent(w)
}

func statusIs(status string) bson.M {
	return bson.M{"status": status}
}
