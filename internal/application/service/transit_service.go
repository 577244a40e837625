package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"astrox/internal/domain/model"
)

// ErrInvalidRange is returned for transit ranges that produce no instants.
var ErrInvalidRange = errors.New("invalid transit range")

// MaxTransitMoments bounds the number of instants in a single range.
const MaxTransitMoments = 10000

// TransitMoment is the sky at one instant measured against a natal chart.
type TransitMoment struct {
	Instant time.Time
	Chart   *model.Chart
	Aspects model.AspectSet
}

type TransitService struct {
	charts  *ChartService
	aspects *AspectService
	workers int
}

func NewTransitService(charts *ChartService, aspects *AspectService, workers int) *TransitService {
	if workers <= 0 {
		workers = 1
	}
	return &TransitService{charts: charts, aspects: aspects, workers: workers}
}

// Range casts one transit chart per step from start to end (inclusive) and
// matches each against natal. Every instant runs in its own ephemeris
// session; results are ordered by instant.
func (s *TransitService) Range(ctx context.Context, natal *model.Chart, start, end time.Time, step time.Duration) ([]TransitMoment, error) {
	instants, err := rangeInstants(start, end, step)
	if err != nil {
		return nil, err
	}

	points := natal.PointIDs()
	out := make([]TransitMoment, len(instants))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for i, at := range instants {
		g.Go(func() error {
			if gctx.Err() != nil {
				return gctx.Err()
			}
			chart, err := s.charts.Transit(gctx, ChartRequest{
				Name:     "Transit " + at.Format(time.RFC3339),
				Instant:  at,
				Location: natal.Location,
				Context:  natal.Context,
				Points:   points,
			})
			if err != nil {
				return fmt.Errorf("transit at %s: %w", at.Format(time.RFC3339), err)
			}
			aspects, err := s.aspects.Between(chart, natal)
			if err != nil {
				return err
			}
			out[i] = TransitMoment{Instant: at, Chart: chart, Aspects: aspects}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	log.Info().
		Str("natal", natal.Name).
		Int("moments", len(out)).
		Int("workers", s.workers).
		Msg("transit range computed")
	return out, nil
}

func rangeInstants(start, end time.Time, step time.Duration) ([]time.Time, error) {
	if step <= 0 {
		return nil, fmt.Errorf("%w: step must be positive", ErrInvalidRange)
	}
	if end.Before(start) {
		return nil, fmt.Errorf("%w: end before start", ErrInvalidRange)
	}
	if n := end.Sub(start) / step; n >= MaxTransitMoments {
		return nil, fmt.Errorf("%w: more than %d instants", ErrInvalidRange, MaxTransitMoments)
	}
	var out []time.Time
	for at := start; !at.After(end); at = at.Add(step) {
		out = append(out, at)
	}
	return out, nil
}
