package services

import (
	"context"

	"github.com/ukydev/aivodrive/internal/apiclient"
	"github.com/ukydev/aivodrive/internal/models"
	"github.com/ukydev/aivodrive/internal/validation"
)

// Page is one page of a list endpoint.
type Page[T any] struct {
	Items      []T
	Pagination models.Pagination
}

// resource maps the CRUD verbs shared by every fleet resource onto REST paths.
type resource[T any] struct {
	client *apiclient.Client
	path   string
}

func (r resource[T]) list(ctx context.Context, params models.ListParams) (Page[T], error) {
	var items []T
	pag, err := r.client.Get(ctx, r.path, params.Values(), &items)
	if err != nil {
		return Page[T]{}, err
	}
	page := Page[T]{Items: items}
	if pag != nil {
		page.Pagination = *pag
	} else {
		page.Pagination = models.NewPagination(params.Page, params.Limit, int64(len(items)))
	}
	return page, nil
}

func (r resource[T]) get(ctx context.Context, id string) (*T, error) {
	var out T
	if _, err := r.client.Get(ctx, r.path+"/"+id, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// create validates the form and posts it. An invalid form returns validation.Errors
// without a request.
func (r resource[T]) create(ctx context.Context, form interface{}) (*T, error) {
	if err := validation.Struct(form); err != nil {
		return nil, err
	}
	return r.post(ctx, form)
}

func (r resource[T]) post(ctx context.Context, in interface{}) (*T, error) {
	var out T
	if err := r.client.Post(ctx, r.path, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (r resource[T]) update(ctx context.Context, id string, form interface{}) (*T, error) {
	if err := validation.Struct(form); err != nil {
		return nil, err
	}
	return r.put(ctx, id, form)
}

func (r resource[T]) put(ctx context.Context, id string, in interface{}) (*T, error) {
	var out T
	if err := r.client.Put(ctx, r.path+"/"+id, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (r resource[T]) remove(ctx context.Context, id string) error {
	return r.client.Delete(ctx, r.path+"/"+id)
}

func (r resource[T]) stats(ctx context.Context) (models.Stats, error) {
	var out models.Stats
	if _, err := r.client.Get(ctx, r.path+"/stats", nil, &out); err != nil {
		return models.Stats{}, err
	}
	return out, nil
}

func (r resource[T]) action(ctx context.Context, id, verb string, body interface{}) (*T, error) {
	var out T
	if body == nil {
		body = struct{}{}
	}
	if err := r.client.Post(ctx, r.path+"/"+id+"/"+verb, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
