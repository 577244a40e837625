package service

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"astrox/internal/application/port"
	"astrox/internal/domain/model"
)

var epoch = time.Date(2000, 1, 1, 12, 0, 0, 0, time.UTC)

type motion struct {
	base, speed float64
}

// fakeEphemeris moves every body linearly from epoch.
type fakeEphemeris struct {
	mu       sync.Mutex
	bodies   map[model.PointID]motion
	opened   int
	closed   int
	lats     []float64
	contexts []model.ChartContext
}

func newFakeEphemeris() *fakeEphemeris {
	return &fakeEphemeris{bodies: map[model.PointID]motion{
		model.Sun:        {10, 0.9856},
		model.Moon:       {100, 13.17},
		model.Mercury:    {25, 1.2},
		model.Venus:      {50, 1.1},
		model.Mars:       {200, -0.3},
		model.Jupiter:    {250, 0.08},
		model.Saturn:     {300, 0.03},
		model.Uranus:     {20, 0.01},
		model.Neptune:    {330, 0.006},
		model.Pluto:      {271, 0.004},
		model.TrueNode:   {45, -0.053},
		model.MeanNode:   {46, -0.053},
		model.MeanLilith: {170, 0.11},
		// Chiron is missing on purpose
	}}
}

func (f *fakeEphemeris) Open(_ context.Context, cc model.ChartContext) (port.EphemerisSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.opened++
	f.contexts = append(f.contexts, cc)
	return &fakeSession{f: f}, nil
}

func (f *fakeEphemeris) counts() (int, int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.opened, f.closed
}

type fakeSession struct {
	f *fakeEphemeris
}

func days(at time.Time) float64 {
	return at.Sub(epoch).Hours() / 24
}

func wrap(x float64) float64 {
	x = math.Mod(x, 360)
	if x < 0 {
		x += 360
	}
	return x
}

func (s *fakeSession) Position(_ context.Context, id model.PointID, at time.Time) (model.Placement, error) {
	m, ok := s.f.bodies[id]
	if !ok {
		return model.Placement{}, fmt.Errorf("%s: %w", id, model.ErrOracleUnavailable)
	}
	return model.Placement{AbsPos: wrap(m.base + m.speed*days(at)), Speed: m.speed}, nil
}

func (s *fakeSession) Houses(_ context.Context, at time.Time, loc model.Location) (model.HouseFrame, error) {
	s.f.mu.Lock()
	s.f.lats = append(s.f.lats, loc.Latitude)
	s.f.mu.Unlock()

	asc := wrap(95 + days(at))
	var cusps model.HouseCusps
	for i := range cusps {
		cusps[i] = wrap(asc + float64(i)*30)
	}
	return model.HouseFrame{
		Cusps: cusps,
		Angles: map[model.PointID]model.Placement{
			model.Ascendant:   {AbsPos: asc, Speed: 1},
			model.MediumCoeli: {AbsPos: wrap(asc + 270), Speed: 1},
			model.Vertex:      {AbsPos: wrap(asc + 200)},
		},
	}, nil
}

func (s *fakeSession) Close() error {
	s.f.mu.Lock()
	defer s.f.mu.Unlock()
	s.f.closed++
	return nil
}

type mockChartRepo struct {
	charts  map[string]*model.Chart
	aspects map[string][]model.AspectResult
}

func newMockChartRepo() *mockChartRepo {
	return &mockChartRepo{
		charts:  make(map[string]*model.Chart),
		aspects: make(map[string][]model.AspectResult),
	}
}

func (m *mockChartRepo) SaveChart(ctx context.Context, c *model.Chart) error {
	m.charts[c.ID] = c
	return nil
}

func (m *mockChartRepo) SaveAspects(ctx context.Context, chartID string, aspects []model.AspectResult) error {
	m.aspects[chartID] = append([]model.AspectResult(nil), aspects...)
	return nil
}

func (m *mockChartRepo) Close() error {
	return nil
}

var _ port.ChartRepository = (*mockChartRepo)(nil)
