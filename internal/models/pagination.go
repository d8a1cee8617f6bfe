package models

import (
	"net/url"
	"strconv"
)

// Pagination describes one page of a list response. Page is 1-based.
type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"totalPages"`
}

// NewPagination computes TotalPages for the given page, limit and total.
func NewPagination(page, limit int, total int64) Pagination {
	pages := 0
	if limit > 0 {
		pages = int((total + int64(limit) - 1) / int64(limit))
	}
	return Pagination{Page: page, Limit: limit, Total: total, TotalPages: pages}
}

// ListParams are the query parameters accepted by every list endpoint.
type ListParams struct {
	Page    int // 1-based
	Limit   int
	Search  string
	Sort    string
	Desc    bool
	Filters map[string]string
}

// Values encodes the params as a URL query.
func (p ListParams) Values() url.Values {
	v := url.Values{}
	if p.Page > 0 {
		v.Set("page", strconv.Itoa(p.Page))
	}
	if p.Limit > 0 {
		v.Set("limit", strconv.Itoa(p.Limit))
	}
	if p.Search != "" {
		v.Set("search", p.Search)
	}
	if p.Sort != "" {
		v.Set("sort", p.Sort)
		if p.Desc {
			v.Set("order", "desc")
		} else {
			v.Set("order", "asc")
		}
	}
	for k, val := range p.Filters {
		if val != "" {
			v.Set(k, val)
		}
	}
	return v
}

// Stats holds population counts for a resource, independent of any list filter.
type Stats struct {
	Total    int64            `json:"total"`
	ByStatus map[string]int64 `json:"byStatus"`
}

// Count returns the number of records with the given status.
func (s Stats) Count(status string) int64 {
	if s.ByStatus == nil {
		return 0
	}
	return s.ByStatus[status]
}
