package listview

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ukydev/aivodrive/internal/models"
	"github.com/ukydev/aivodrive/internal/services"
)

type row struct {
	ID   string
	Name string
}

func rowID(r row) string { return r.ID }

// gatedSource answers each List call only when the test releases it.
type gatedSource struct {
	mu      sync.Mutex
	calls   []models.ListParams
	gates   []chan services.Page[row]
	stats   models.Stats
	statErr error
	listErr error
}

func (s *gatedSource) List(ctx context.Context, p models.ListParams) (services.Page[row], error) {
	gate := make(chan services.Page[row], 1)
	s.mu.Lock()
	s.calls = append(s.calls, p)
	s.gates = append(s.gates, gate)
	s.mu.Unlock()

	select {
	case page := <-gate:
		if s.listErr != nil {
			return services.Page[row]{}, s.listErr
		}
		return page, nil
	case <-ctx.Done():
		return services.Page[row]{}, ctx.Err()
	}
}

func (s *gatedSource) Stats(ctx context.Context) (models.Stats, error) {
	return s.stats, s.statErr
}

func (s *gatedSource) release(i int, page services.Page[row]) {
	s.mu.Lock()
	gate := s.gates[i]
	s.mu.Unlock()
	gate <- page
}

func (s *gatedSource) waitCalls(t *testing.T, n int) {
	t.Helper()
	require.Eventually(t, func() bool {
		s.mu.Lock()
		defer s.mu.Unlock()
		return len(s.calls) >= n
	}, time.Second, 5*time.Millisecond)
}

// instantSource answers immediately.
type instantSource struct {
	page    services.Page[row]
	stats   models.Stats
	listErr error
	statErr error
	deleted []string
	delErr  error
}

func (s *instantSource) List(ctx context.Context, p models.ListParams) (services.Page[row], error) {
	return s.page, s.listErr
}

func (s *instantSource) Stats(ctx context.Context) (models.Stats, error) {
	return s.stats, s.statErr
}

func (s *instantSource) Delete(ctx context.Context, id string) error {
	if s.delErr != nil {
		return s.delErr
	}
	s.deleted = append(s.deleted, id)
	return nil
}

// gatedStats answers Stats calls only when the test releases them.
type gatedStats struct {
	instantSource
	mu    sync.Mutex
	gates []chan models.Stats
}

func (s *gatedStats) Stats(ctx context.Context) (models.Stats, error) {
	gate := make(chan models.Stats, 1)
	s.mu.Lock()
	s.gates = append(s.gates, gate)
	s.mu.Unlock()

	select {
	case st := <-gate:
		return st, nil
	case <-ctx.Done():
		return models.Stats{}, ctx.Err()
	}
}

func (s *gatedStats) release(i int, st models.Stats) {
	s.mu.Lock()
	gate := s.gates[i]
	s.mu.Unlock()
	gate <- st
}

func (s *gatedStats) waitCalls(t *testing.T, n int) {
	t.Helper()
	require.Eventually(t, func() bool {
		s.mu.Lock()
		defer s.mu.Unlock()
		return len(s.gates) >= n
	}, time.Second, 5*time.Millisecond)
}

func pageOf(total int64, names ...string) services.Page[row] {
	items := make([]row, len(names))
	for i, n := range names {
		items[i] = row{ID: n, Name: n}
	}
	return services.Page[row]{Items: items, Pagination: models.NewPagination(1, 10, total)}
}

func TestQuery_ChangesResetPage(t *testing.T) {
	q := NewQuery().WithPage(3)
	require.Equal(t, 3, q.Page)

	assert.Equal(t, 0, q.WithSearch("x").Page)
	assert.Equal(t, 0, q.WithFilter("status", "active").Page)
	assert.Equal(t, 0, q.WithFilter("status", "").Page)
	assert.Equal(t, 0, q.WithSort("make", true).Page)
	assert.Equal(t, 0, q.WithPageSize(25).Page)
	assert.Equal(t, 4, q.WithPage(4).Page)
	assert.Equal(t, 0, q.WithPage(-1).Page)
}

func TestQuery_WithFilterDoesNotShareMap(t *testing.T) {
	a := NewQuery().WithFilter("status", "active")
	b := a.WithFilter("type", "van")

	assert.Equal(t, map[string]string{"status": "active"}, a.Filters)
	assert.Equal(t, map[string]string{"status": "active", "type": "van"}, b.Filters)
	assert.Empty(t, b.WithFilter("status", "").WithFilter("type", "").Filters)
}

func TestQuery_Params(t *testing.T) {
	p := NewQuery().WithSearch("ford").WithSort("make", true).WithPage(2).Params()
	assert.Equal(t, 3, p.Page, "API pages are 1-based")
	assert.Equal(t, DefaultPageSize, p.Limit)
	assert.Equal(t, "ford", p.Search)
	assert.Equal(t, "make", p.Sort)
	assert.True(t, p.Desc)

	assert.Equal(t, DefaultPageSize, Query{}.Params().Limit)
}

func TestList_SearchOnPageThreeRequestsFirstPage(t *testing.T) {
	src := &instantSource{page: pageOf(40, "a")}
	l := NewList[row](src, rowID, NewQuery().WithPage(2))

	var seen []models.ListParams
	rec := &recordingLister{inner: src, seen: &seen}
	l.src = rec

	require.NoError(t, l.Load(context.Background()))
	require.NoError(t, l.Update(context.Background(), func(q Query) Query { return q.WithSearch("x") }))

	require.Len(t, seen, 2)
	assert.Equal(t, 3, seen[0].Page)
	assert.Equal(t, 1, seen[1].Page)
	assert.Equal(t, "x", seen[1].Search)
	assert.Equal(t, 0, l.Query().Page)
}

type recordingLister struct {
	inner Lister[row]
	seen  *[]models.ListParams
}

func (r *recordingLister) List(ctx context.Context, p models.ListParams) (services.Page[row], error) {
	*r.seen = append(*r.seen, p)
	return r.inner.List(ctx, p)
}

func TestList_StaleResponseDiscarded(t *testing.T) {
	src := &gatedSource{}
	l := NewList[row](src, rowID, NewQuery())

	first := make(chan error, 1)
	go func() { first <- l.Load(context.Background()) }()
	src.waitCalls(t, 1)

	l.SetQuery(l.Query().WithSearch("b"))
	second := make(chan error, 1)
	go func() { second <- l.Load(context.Background()) }()
	src.waitCalls(t, 2)

	// The newer request answers first, then the older one.
	src.release(1, pageOf(1, "bravo"))
	require.NoError(t, <-second)
	src.release(0, pageOf(5, "alpha", "amber"))
	assert.ErrorIs(t, <-first, ErrStale)

	snap := l.Snapshot()
	assert.Equal(t, []row{{ID: "bravo", Name: "bravo"}}, snap.Items)
	assert.Equal(t, int64(1), snap.Total)
	assert.False(t, snap.Loading)
}

func TestList_ClosedDiscardsInflight(t *testing.T) {
	src := &gatedSource{}
	l := NewList[row](src, rowID, NewQuery())

	done := make(chan error, 1)
	go func() { done <- l.Load(context.Background()) }()
	src.waitCalls(t, 1)

	l.Close()
	assert.ErrorIs(t, <-done, ErrClosed)
	assert.Empty(t, l.Snapshot().Items)
	assert.ErrorIs(t, l.Load(context.Background()), ErrClosed)
	l.Close()
}

func TestList_FailureKeepsPreviousPage(t *testing.T) {
	src := &instantSource{page: pageOf(2, "a", "b")}
	l := NewList[row](src, rowID, NewQuery())
	require.NoError(t, l.Load(context.Background()))

	src.listErr = errors.New("server down")
	assert.Error(t, l.Load(context.Background()))

	snap := l.Snapshot()
	assert.Len(t, snap.Items, 2)
	assert.EqualError(t, snap.Err, "server down")
	assert.False(t, snap.Loading)
}

func TestList_DeleteRemovesLocally(t *testing.T) {
	src := &instantSource{page: pageOf(11, "a", "b", "c")}
	l := NewList[row](src, rowID, NewQuery())
	require.NoError(t, l.Load(context.Background()))

	require.NoError(t, l.Delete(context.Background(), src, "b"))
	snap := l.Snapshot()
	assert.Equal(t, []string{"b"}, src.deleted)
	assert.Equal(t, []row{{"a", "a"}, {"c", "c"}}, snap.Items)
	assert.Equal(t, int64(10), snap.Total)

	assert.False(t, l.RemoveLocal("missing"))

	src.delErr = errors.New("forbidden")
	assert.Error(t, l.Delete(context.Background(), src, "a"))
	assert.Len(t, l.Snapshot().Items, 2)
}

func TestView_RefreshLoadsBothHalves(t *testing.T) {
	src := &instantSource{
		page:  pageOf(3, "a"),
		stats: models.Stats{Total: 30, ByStatus: map[string]int64{"active": 20}},
	}
	v := NewView[row](src, rowID, NewQuery().WithFilter("status", "active"))
	require.NoError(t, v.Refresh(context.Background()))

	stats, err := v.Stats()
	require.NoError(t, err)
	assert.Equal(t, int64(30), stats.Total, "stats ignore list filters")
	assert.Equal(t, int64(3), v.Snapshot().Total)

	require.NoError(t, v.Delete(context.Background(), src, "a"))
	stats, _ = v.Stats()
	assert.Equal(t, int64(29), stats.Total)
	assert.Equal(t, int64(20), stats.Count("active"), "no buckets configured")
	assert.Equal(t, int64(2), v.Snapshot().Total)
}

func TestView_DeleteDecrementsRowBuckets(t *testing.T) {
	src := &instantSource{
		page:  pageOf(3, "active", "retired"),
		stats: models.Stats{Total: 3, ByStatus: map[string]int64{"active": 2, "retired": 1}},
	}
	v := NewView[row](src, rowID, NewQuery()).WithBuckets(func(r row) []string { return []string{r.Name} })
	require.NoError(t, v.Refresh(context.Background()))
	before, _ := v.Stats()

	require.NoError(t, v.Delete(context.Background(), src, "active"))

	after, _ := v.Stats()
	assert.Equal(t, int64(2), after.Total)
	assert.Equal(t, map[string]int64{"active": 1, "retired": 1}, after.ByStatus)
	assert.Equal(t, int64(2), before.Count("active"), "earlier snapshots are not mutated")
}

func TestView_StaleStatsDiscarded(t *testing.T) {
	src := &gatedStats{instantSource: instantSource{page: pageOf(1, "a")}}
	v := NewView[row](src, rowID, NewQuery())

	first := make(chan error, 1)
	go func() { first <- v.Refresh(context.Background()) }()
	src.waitCalls(t, 1)
	second := make(chan error, 1)
	go func() { second <- v.Refresh(context.Background()) }()
	src.waitCalls(t, 2)

	// The newer stats answer first, then the older ones.
	src.release(1, models.Stats{Total: 99})
	require.NoError(t, <-second)
	src.release(0, models.Stats{Total: 1})
	require.NoError(t, <-first)

	stats, err := v.Stats()
	require.NoError(t, err)
	assert.Equal(t, int64(99), stats.Total)
}

func TestView_DeleteDiscardsInflightStats(t *testing.T) {
	src := &gatedStats{instantSource: instantSource{page: pageOf(2, "a", "b")}}
	v := NewView[row](src, rowID, NewQuery()).WithBuckets(func(r row) []string { return []string{"s-" + r.Name} })
	full := models.Stats{Total: 2, ByStatus: map[string]int64{"s-a": 1, "s-b": 1}}

	done := make(chan error, 1)
	go func() { done <- v.Refresh(context.Background()) }()
	src.waitCalls(t, 1)
	src.release(0, full)
	require.NoError(t, <-done)

	go func() { done <- v.Refresh(context.Background()) }()
	src.waitCalls(t, 2)
	require.NoError(t, v.Delete(context.Background(), src, "b"))
	src.release(1, full)
	require.NoError(t, <-done)

	stats, _ := v.Stats()
	assert.Equal(t, int64(1), stats.Total)
	assert.Equal(t, int64(0), stats.Count("s-b"))
}

func TestView_HalvesFailIndependently(t *testing.T) {
	src := &instantSource{page: pageOf(1, "a"), statErr: errors.New("stats down")}
	v := NewView[row](src, rowID, NewQuery())

	err := v.Refresh(context.Background())
	assert.ErrorContains(t, err, "stats down")
	assert.Len(t, v.Snapshot().Items, 1, "list still rendered")

	src.statErr = nil
	src.stats = models.Stats{Total: 1}
	src.listErr = errors.New("list down")
	err = v.Refresh(context.Background())
	assert.ErrorContains(t, err, "list down")
	stats, statsErr := v.Stats()
	assert.NoError(t, statsErr)
	assert.Equal(t, int64(1), stats.Total)
}
