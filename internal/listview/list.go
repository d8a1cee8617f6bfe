package listview

import (
	"context"
	"errors"
	"sync"

	log "github.com/sirupsen/logrus"
	"github.com/ukydev/aivodrive/internal/models"
	"github.com/ukydev/aivodrive/internal/services"
)

var (
	// ErrStale is returned by Load when a newer load was issued before this one
	// finished; its result was discarded.
	ErrStale = errors.New("stale response discarded")
	// ErrClosed is returned once the list has been closed.
	ErrClosed = errors.New("list view closed")
)

// Lister fetches one page of a resource.
type Lister[T any] interface {
	List(ctx context.Context, p models.ListParams) (services.Page[T], error)
}

// Deleter removes a record by id.
type Deleter interface {
	Delete(ctx context.Context, id string) error
}

// Snapshot is a copy of the list state.
type Snapshot[T any] struct {
	Query      Query
	Items      []T
	Total      int64
	TotalPages int
	Loading    bool
	Err        error
}

// List is one paginated list. Every Load is tagged with a sequence number and only
// the result of the most recently issued load is applied.
type List[T any] struct {
	src Lister[T]
	id  func(T) string

	mu         sync.Mutex
	query      Query
	items      []T
	total      int64
	totalPages int
	loading    bool
	err        error
	seq        uint64
	closed     bool
	inflight   map[uint64]context.CancelFunc
}

// NewList creates a list over src. id extracts the record id used by RemoveLocal.
func NewList[T any](src Lister[T], id func(T) string, q Query) *List[T] {
	return &List[T]{
		src:      src,
		id:       id,
		query:    q,
		inflight: make(map[uint64]context.CancelFunc),
	}
}

// Query returns the current query.
func (l *List[T]) Query() Query {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.query
}

// SetQuery replaces the query without loading.
func (l *List[T]) SetQuery(q Query) {
	l.mu.Lock()
	l.query = q
	l.mu.Unlock()
}

// Update applies fn to the query and loads the result.
func (l *List[T]) Update(ctx context.Context, fn func(Query) Query) error {
	l.mu.Lock()
	l.query = fn(l.query)
	l.mu.Unlock()
	return l.Load(ctx)
}

// Load fetches the page for the current query. A response that arrives after a newer
// Load was issued, or after Close, is dropped and ErrStale or ErrClosed returned.
// On failure the previous items stay and Err is set.
func (l *List[T]) Load(ctx context.Context) error {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return ErrClosed
	}
	l.seq++
	seq := l.seq
	params := l.query.Params()
	l.loading = true
	ctx, cancel := context.WithCancel(ctx)
	l.inflight[seq] = cancel
	l.mu.Unlock()

	page, err := l.src.List(ctx, params)

	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.inflight, seq)
	cancel()
	if l.closed {
		return ErrClosed
	}
	if seq != l.seq {
		log.WithFields(log.Fields{"seq": seq, "latest": l.seq}).Debug("Discarding stale list response")
		return ErrStale
	}
	l.loading = false
	if err != nil {
		l.err = err
		return err
	}
	l.err = nil
	l.items = page.Items
	l.total = page.Pagination.Total
	l.totalPages = page.Pagination.TotalPages
	return nil
}

// Snapshot returns a copy of the current state.
func (l *List[T]) Snapshot() Snapshot[T] {
	l.mu.Lock()
	defer l.mu.Unlock()
	items := make([]T, len(l.items))
	copy(items, l.items)
	return Snapshot[T]{
		Query:      l.query,
		Items:      items,
		Total:      l.total,
		TotalPages: l.totalPages,
		Loading:    l.loading,
		Err:        l.err,
	}
}

// RemoveLocal drops the row with id and decrements the total without refetching.
// The page is left one row short until the next load.
func (l *List[T]) RemoveLocal(id string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i, item := range l.items {
		if l.id(item) == id {
			l.items = append(l.items[:i:i], l.items[i+1:]...)
			if l.total > 0 {
				l.total--
			}
			return true
		}
	}
	return false
}

// find returns the loaded row with id.
func (l *List[T]) find(id string) (T, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, item := range l.items {
		if l.id(item) == id {
			return item, true
		}
	}
	var zero T
	return zero, false
}

// Delete removes id remotely and then locally. On failure the list is unchanged.
func (l *List[T]) Delete(ctx context.Context, d Deleter, id string) error {
	if err := d.Delete(ctx, id); err != nil {
		return err
	}
	l.RemoveLocal(id)
	return nil
}

// Close disposes the list: in-flight loads are cancelled and no later result is
// applied.
func (l *List[T]) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return
	}
	l.closed = true
	for seq, cancel := range l.inflight {
		cancel()
		delete(l.inflight, seq)
	}
}

// Closed reports whether Close was called.
func (l *List[T]) Closed() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.closed
}
