package services

import (
	"context"

	"github.com/ukydev/aivodrive/internal/apiclient"
	"github.com/ukydev/aivodrive/internal/models"
)

// AlertService calls the /alerts endpoints.
type AlertService struct {
	client *apiclient.Client
}

// NewAlertService creates an alert service.
func NewAlertService(c *apiclient.Client) *AlertService {
	return &AlertService{client: c}
}

func (s *AlertService) List(ctx context.Context, p models.ListParams) (Page[models.Alert], error) {
	return resource[models.Alert]{client: s.client, path: "/alerts"}.list(ctx, p)
}

// UnreadCount returns the number of unread alerts for the current user.
func (s *AlertService) UnreadCount(ctx context.Context) (int64, error) {
	var out struct {
		Count int64 `json:"count"`
	}
	if _, err := s.client.Get(ctx, "/alerts/unread-count", nil, &out); err != nil {
		return 0, err
	}
	return out.Count, nil
}

func (s *AlertService) MarkRead(ctx context.Context, id string) error {
	return s.client.Put(ctx, "/alerts/"+id+"/read", struct{}{}, nil)
}

func (s *AlertService) MarkAllRead(ctx context.Context) error {
	return s.client.Put(ctx, "/alerts/read-all", struct{}{}, nil)
}

func (s *AlertService) Delete(ctx context.Context, id string) error {
	return s.client.Delete(ctx, "/alerts/"+id)
}
