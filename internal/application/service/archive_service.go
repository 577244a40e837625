package service

import (
	"context"

	"astrox/internal/application/port"
	"astrox/internal/domain/model"
)

type ArchiveService struct {
	repo port.ChartRepository
}

func NewArchiveService(repo port.ChartRepository) *ArchiveService {
	return &ArchiveService{repo: repo}
}

// Save stores a chart and replaces the aspects kept for it.
func (s *ArchiveService) Save(ctx context.Context, c *model.Chart, aspects []model.AspectResult) error {
	if err := s.repo.SaveChart(ctx, c); err != nil {
		return err
	}
	return s.repo.SaveAspects(ctx, c.ID, aspects)
}

// PairID is the key under which aspects between two charts are stored.
func PairID(a, b *model.Chart) string {
	return a.ID + ":" + b.ID
}

// SaveCross stores the aspects measured from chart a to chart b. Both charts
// are expected to be saved with Save.
func (s *ArchiveService) SaveCross(ctx context.Context, a, b *model.Chart, aspects []model.AspectResult) error {
	return s.repo.SaveAspects(ctx, PairID(a, b), aspects)
}
