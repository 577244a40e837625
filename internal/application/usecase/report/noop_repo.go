package report

import (
	"context"

	"astrox/internal/application/port"
	"astrox/internal/domain/model"
)

type noopRepo struct{}

func NewNoopRepo() port.ChartRepository { return &noopRepo{} }

func (n *noopRepo) SaveChart(ctx context.Context, c *model.Chart) error {
	return nil
}
func (n *noopRepo) SaveAspects(ctx context.Context, chartID string, aspects []model.AspectResult) error {
	return nil
}
func (n *noopRepo) Close() error {
	return nil
}
