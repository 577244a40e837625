package service

import (
	"fmt"

	"astrox/internal/domain/model"
	dsvc "astrox/internal/domain/service"
)

type AspectService struct {
	matcher *dsvc.AspectMatcher
}

func NewAspectService(defs []model.AspectDefinition, axisOrb float64) *AspectService {
	return &AspectService{matcher: dsvc.NewAspectMatcher(defs, axisOrb)}
}

// Natal returns the aspects inside one chart.
func (s *AspectService) Natal(c *model.Chart) model.AspectSet {
	return s.matcher.SingleChart(c.Points, c.Name)
}

// Between returns the aspects from every point of a to every point of b.
func (s *AspectService) Between(a, b *model.Chart) (model.AspectSet, error) {
	if !a.Context.Compatible(b.Context) {
		return model.AspectSet{}, fmt.Errorf("%w: %s vs %s", model.ErrIncompatibleCharts, a.Context.Key(), b.Context.Key())
	}
	return s.matcher.DualChart(a.Points, a.Name, b.Points, b.Name), nil
}

// Synastry is the comparison of two natal charts.
type Synastry struct {
	Aspects model.AspectSet
	// FirstInSecond places the first chart's points in the second chart's houses.
	FirstInSecond []model.HouseOverlayEntry
	SecondInFirst []model.HouseOverlayEntry
}

// Synastry compares two charts: cross aspects and house overlays in both directions.
func (s *AspectService) Synastry(a, b *model.Chart) (*Synastry, error) {
	aspects, err := s.Between(a, b)
	if err != nil {
		return nil, err
	}
	ab, err := dsvc.HouseOverlay(a, b)
	if err != nil {
		return nil, err
	}
	ba, err := dsvc.HouseOverlay(b, a)
	if err != nil {
		return nil, err
	}
	return &Synastry{Aspects: aspects, FirstInSecond: ab, SecondInFirst: ba}, nil
}
