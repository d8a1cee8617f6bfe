package services

import (
	"context"
	"net/url"
	"time"

	"github.com/ukydev/aivodrive/internal/apiclient"
	"github.com/ukydev/aivodrive/internal/models"
)

// ReportService calls the /reports endpoints.
type ReportService struct {
	client *apiclient.Client
}

// NewReportService creates a report service.
func NewReportService(c *apiclient.Client) *ReportService {
	return &ReportService{client: c}
}

func (s *ReportService) Summary(ctx context.Context) (*models.FleetSummary, error) {
	var out models.FleetSummary
	if _, err := s.client.Get(ctx, "/reports/summary", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *ReportService) Trips(ctx context.Context, from, to time.Time) (*models.TripReport, error) {
	q := url.Values{}
	q.Set("from", from.Format(time.RFC3339))
	q.Set("to", to.Format(time.RFC3339))
	var out models.TripReport
	if _, err := s.client.Get(ctx, "/reports/trips", q, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
