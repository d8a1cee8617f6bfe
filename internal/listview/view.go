package listview

import (
	"context"
	"errors"
	"maps"
	"sync"

	log "github.com/sirupsen/logrus"
	"github.com/ukydev/aivodrive/internal/models"
	"golang.org/x/sync/errgroup"
)

// StatsSource returns population counts for a resource.
type StatsSource interface {
	Stats(ctx context.Context) (models.Stats, error)
}

// Source is a resource service usable by a View.
type Source[T any] interface {
	Lister[T]
	StatsSource
}

// View is a list plus the stats header. Stats describe the whole population and
// ignore the list filters.
type View[T any] struct {
	*List[T]
	stats   StatsSource
	buckets func(T) []string

	mu       sync.Mutex
	summary  models.Stats
	statsErr error
	statsSeq uint64
}

// NewView creates a view over src.
func NewView[T any](src Source[T], id func(T) string, q Query) *View[T] {
	return &View[T]{List: NewList[T](src, id, q), stats: src}
}

// WithBuckets sets the stats buckets a row is counted in, so a local delete can
// decrement them along with the total.
func (v *View[T]) WithBuckets(fn func(T) []string) *View[T] {
	v.buckets = fn
	return v
}

// Refresh loads the page and the stats in parallel. Each half fails on its own; the
// returned error joins whichever failed. A stale response of either half is not an
// error.
func (v *View[T]) Refresh(ctx context.Context) error {
	var listErr, statsErr error
	var g errgroup.Group

	g.Go(func() error {
		if err := v.List.Load(ctx); err != nil && !errors.Is(err, ErrStale) {
			listErr = err
		}
		return nil
	})
	g.Go(func() error {
		statsErr = v.loadStats(ctx)
		return nil
	})
	_ = g.Wait()

	return errors.Join(listErr, statsErr)
}

// loadStats applies the response only if no newer stats load or local delete
// happened while it was in flight.
func (v *View[T]) loadStats(ctx context.Context) error {
	v.mu.Lock()
	v.statsSeq++
	seq := v.statsSeq
	v.mu.Unlock()

	s, err := v.stats.Stats(ctx)
	if v.Closed() {
		return nil
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	if seq != v.statsSeq {
		log.WithFields(log.Fields{"seq": seq, "latest": v.statsSeq}).Debug("Discarding stale stats response")
		return nil
	}
	if err != nil {
		v.statsErr = err
		return err
	}
	v.summary, v.statsErr = s, nil
	return nil
}

// Stats returns the last stats and the error of the last stats load.
func (v *View[T]) Stats() (models.Stats, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	s := v.summary
	s.ByStatus = maps.Clone(s.ByStatus)
	return s, v.statsErr
}

// Delete removes id and adjusts the stats with the list: the total and the buckets
// of the deleted row go down by one. A stats load in flight is discarded.
func (v *View[T]) Delete(ctx context.Context, d Deleter, id string) error {
	item, found := v.List.find(id)
	if err := v.List.Delete(ctx, d, id); err != nil {
		return err
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	v.statsSeq++
	if v.summary.Total > 0 {
		v.summary.Total--
	}
	if !found || v.buckets == nil || v.summary.ByStatus == nil {
		return nil
	}
	for _, k := range v.buckets(item) {
		if v.summary.ByStatus[k] > 0 {
			v.summary.ByStatus[k]--
		}
	}
	return nil
}
