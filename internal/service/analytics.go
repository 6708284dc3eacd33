package service

import (
	"context"

	"github.com/techinsights/kbsite/internal/core"
	"github.com/techinsights/kbsite/internal/domain/model"
)

// AnalyticsServiceOptions groups dependencies for AnalyticsService.
type AnalyticsServiceOptions struct {
	Analytics core.AnalyticsRepository
}

// AnalyticsService serves the admin dashboard counters.
type AnalyticsService struct {
	analytics core.AnalyticsRepository
}

// NewAnalyticsService constructs a new AnalyticsService.
func NewAnalyticsService(opts AnalyticsServiceOptions) *AnalyticsService {
	return &AnalyticsService{analytics: opts.Analytics}
}

// SiteAnalytics returns aggregate site counters.
func (s *AnalyticsService) SiteAnalytics(ctx context.Context) (*model.SiteAnalytics, error) {
	return s.analytics.SiteAnalytics(ctx)
}
