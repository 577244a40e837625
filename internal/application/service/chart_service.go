package service

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"astrox/internal/application/port"
	"astrox/internal/domain/model"
	dsvc "astrox/internal/domain/service"
)

// MaxHouseLatitude caps the latitude passed to house calculation.
const MaxHouseLatitude = 66.0

// ChartRequest describes a chart to cast.
type ChartRequest struct {
	Name     string
	Instant  time.Time
	Location model.Location
	Context  model.ChartContext
	// Points to compute; empty means model.DefaultActivePoints.
	Points []model.PointID
}

type ChartService struct {
	eph    port.Ephemeris
	points []model.PointID
}

// NewChartService uses defaults as the active point set of requests that
// name none.
func NewChartService(eph port.Ephemeris, defaults []model.PointID) *ChartService {
	if len(defaults) == 0 {
		defaults = model.DefaultActivePoints
	}
	return &ChartService{eph: eph, points: append([]model.PointID(nil), defaults...)}
}

// Natal casts a natal chart in its own ephemeris session.
func (s *ChartService) Natal(ctx context.Context, req ChartRequest) (*model.Chart, error) {
	return s.cast(ctx, req, model.KindNatal)
}

// Transit casts the sky at an instant under a given context.
func (s *ChartService) Transit(ctx context.Context, req ChartRequest) (*model.Chart, error) {
	return s.cast(ctx, req, model.KindTransit)
}

func (s *ChartService) cast(ctx context.Context, req ChartRequest, kind model.ChartKind) (*model.Chart, error) {
	cc, err := req.Context.Validate()
	if err != nil {
		return nil, err
	}

	sess, err := s.eph.Open(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("open ephemeris session: %w", err)
	}
	defer func() {
		if err := sess.Close(); err != nil {
			log.Warn().Err(err).Str("chart", req.Name).Msg("close ephemeris session failed")
		}
	}()

	loc := req.Location
	if math.Abs(loc.Latitude) > MaxHouseLatitude {
		log.Warn().
			Str("chart", req.Name).
			Float64("lat", loc.Latitude).
			Msg("polar latitude, houses computed at 66 degrees")
		loc.Latitude = math.Copysign(MaxHouseLatitude, loc.Latitude)
	}

	frame, err := sess.Houses(ctx, req.Instant, loc)
	if err != nil {
		return nil, fmt.Errorf("houses of %s: %w", req.Name, err)
	}
	if err := frame.Cusps.Validate(); err != nil {
		return nil, fmt.Errorf("houses of %s: %w", req.Name, err)
	}

	points := req.Points
	if len(points) == 0 {
		points = s.points
	}
	res, err := dsvc.ResolvePoints(ctx, sess, frame, req.Instant, points)
	if err != nil {
		return nil, fmt.Errorf("resolve points of %s: %w", req.Name, err)
	}

	chart := &model.Chart{
		ID:            uuid.NewString(),
		Name:          req.Name,
		Kind:          kind,
		Context:       cc,
		Instant:       req.Instant.UTC(),
		Location:      req.Location,
		Cusps:         frame.Cusps,
		Points:        make([]model.Point, 0, len(res.Placements)),
		AutoActivated: res.AutoActivated,
		Skipped:       res.Skipped,
	}
	for _, raw := range res.Placements {
		p, err := dsvc.Annotate(raw, frame.Cusps)
		if err != nil {
			return nil, err
		}
		chart.Points = append(chart.Points, p)
	}

	sun, okSun := chart.Point(model.Sun)
	moon, okMoon := chart.Point(model.Moon)
	if okSun && okMoon {
		phase := dsvc.LunarPhaseOf(sun.AbsPos, moon.AbsPos)
		chart.Phase = &phase
	}

	if len(res.Skipped) > 0 {
		log.Warn().
			Str("chart", req.Name).
			Interface("skipped", res.Skipped).
			Msg("points not available from ephemeris")
	}
	log.Debug().
		Str("chart", req.Name).
		Str("kind", string(kind)).
		Int("points", len(chart.Points)).
		Int("auto_activated", len(res.AutoActivated)).
		Msg("chart cast")

	return chart, nil
}
