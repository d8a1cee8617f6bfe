// Package listview holds the state behind the paginated, searchable resource lists:
// the query, the current page and the population stats shown above it.
package listview

import "github.com/ukydev/aivodrive/internal/models"

// DefaultPageSize is the page size of a fresh query.
const DefaultPageSize = 10

// Query is the list view query. Page is 0-based; the API is 1-based.
// Changing search, a filter, the sort or the page size moves back to page 0.
type Query struct {
	Page     int
	PageSize int
	Search   string
	Filters  map[string]string
	SortKey  string
	SortDesc bool
}

// NewQuery returns the first page with the default size.
func NewQuery() Query {
	return Query{PageSize: DefaultPageSize}
}

func (q Query) WithSearch(s string) Query {
	q.Search = s
	q.Page = 0
	return q
}

// WithFilter sets a filter; an empty value removes it.
func (q Query) WithFilter(key, value string) Query {
	filters := make(map[string]string, len(q.Filters)+1)
	for k, v := range q.Filters {
		filters[k] = v
	}
	if value == "" {
		delete(filters, key)
	} else {
		filters[key] = value
	}
	q.Filters = filters
	q.Page = 0
	return q
}

func (q Query) WithSort(key string, desc bool) Query {
	q.SortKey = key
	q.SortDesc = desc
	q.Page = 0
	return q
}

func (q Query) WithPageSize(n int) Query {
	if n <= 0 {
		n = DefaultPageSize
	}
	q.PageSize = n
	q.Page = 0
	return q
}

func (q Query) WithPage(p int) Query {
	if p < 0 {
		p = 0
	}
	q.Page = p
	return q
}

// Params converts the query into API list parameters.
func (q Query) Params() models.ListParams {
	size := q.PageSize
	if size <= 0 {
		size = DefaultPageSize
	}
	return models.ListParams{
		Page:    q.Page + 1,
		Limit:   size,
		Search:  q.Search,
		Sort:    q.SortKey,
		Desc:    q.SortDesc,
		Filters: q.Filters,
	}
}
