package port

import (
	"context"

	"astrox/internal/domain/model"
)

// ChartRepository persists computed charts and their aspects.
type ChartRepository interface {
	SaveChart(ctx context.Context, c *model.Chart) error
	// SaveAspects replaces whatever was stored under chartID.
	SaveAspects(ctx context.Context, chartID string, aspects []model.AspectResult) error

	// Connection management
	Close() error
}

// ChartStore is a ChartRepository that can read charts back.
type ChartStore interface {
	ChartRepository
	LoadChart(ctx context.Context, id string) (*model.Chart, error)
	LoadAspects(ctx context.Context, chartID string) ([]model.AspectResult, error)
}
