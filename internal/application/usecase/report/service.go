package report

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"astrox/internal/application/port"
	"astrox/internal/application/service"
	"astrox/internal/domain/model"
)

const (
	ModeNatal     = "natal"
	ModeSynastry  = "synastry"
	ModeComposite = "composite"
	ModeTransit   = "transit"
)

var ErrUnknownMode = errors.New("unknown report mode")

type ServiceDeps struct {
	Charts    *service.ChartService
	Aspects   *service.AspectService
	Composite *service.CompositeService
	Transit   *service.TransitService
	Archive   *service.ArchiveService
	Sink      port.Sink
}

// Window is the transit range.
type Window struct {
	Start, End time.Time
	Step       time.Duration
}

type Service struct {
	deps ServiceDeps
}

func NewService(deps ServiceDeps) *Service {
	if deps.Archive == nil {
		deps.Archive = service.NewArchiveService(NewNoopRepo())
	}
	return &Service{deps: deps}
}

// Run renders one report for the subjects.
func (s *Service) Run(ctx context.Context, mode string, subjects []service.ChartRequest, w Window) error {
	switch mode {
	case ModeNatal:
		return s.Natal(ctx, subjects)
	case ModeSynastry, ModeComposite, ModeTransit:
	default:
		return fmt.Errorf("%w: %s", ErrUnknownMode, mode)
	}

	if mode == ModeTransit {
		if len(subjects) == 0 {
			return errors.New("transit needs a subject")
		}
		return s.Transit(ctx, subjects[0], w)
	}
	if len(subjects) < 2 {
		return fmt.Errorf("%s needs two subjects", mode)
	}
	if mode == ModeSynastry {
		return s.Synastry(ctx, subjects[0], subjects[1])
	}
	return s.Composite(ctx, subjects[0], subjects[1])
}

func (s *Service) Natal(ctx context.Context, subjects []service.ChartRequest) error {
	for _, req := range subjects {
		c, err := s.deps.Charts.Natal(ctx, req)
		if err != nil {
			return fmt.Errorf("natal %s: %w", req.Name, err)
		}
		aspects := s.deps.Aspects.Natal(c)

		_ = s.deps.Sink.WriteChart(c)
		_ = s.deps.Sink.WriteAspects(c.Name+" aspects", aspects.Relevant)
		_ = s.deps.Sink.NewLine()

		s.archive(ctx, c, aspects.Relevant)
	}
	return nil
}

func (s *Service) Synastry(ctx context.Context, a, b service.ChartRequest) error {
	ca, cb, err := s.pair(ctx, a, b)
	if err != nil {
		return err
	}
	syn, err := s.deps.Aspects.Synastry(ca, cb)
	if err != nil {
		return err
	}

	_ = s.deps.Sink.WriteChart(ca)
	_ = s.deps.Sink.WriteChart(cb)
	_ = s.deps.Sink.WriteAspects(fmt.Sprintf("%s and %s synastry", ca.Name, cb.Name), syn.Aspects.Relevant)
	_ = s.deps.Sink.WriteOverlay(fmt.Sprintf("%s in %s houses", ca.Name, cb.Name), syn.FirstInSecond)
	_ = s.deps.Sink.WriteOverlay(fmt.Sprintf("%s in %s houses", cb.Name, ca.Name), syn.SecondInFirst)
	_ = s.deps.Sink.NewLine()

	s.archive(ctx, ca, s.deps.Aspects.Natal(ca).Relevant)
	s.archive(ctx, cb, s.deps.Aspects.Natal(cb).Relevant)
	if err := s.deps.Archive.SaveCross(ctx, ca, cb, syn.Aspects.Relevant); err != nil {
		log.Error().Err(err).Str("pair", service.PairID(ca, cb)).Msg("archive synastry aspects failed")
	}
	return nil
}

func (s *Service) Composite(ctx context.Context, a, b service.ChartRequest) error {
	ca, cb, err := s.pair(ctx, a, b)
	if err != nil {
		return err
	}
	c, aspects, err := s.deps.Composite.Midpoint(ca, cb)
	if err != nil {
		return err
	}

	_ = s.deps.Sink.WriteChart(c)
	_ = s.deps.Sink.WriteAspects(c.Name+" aspects", aspects.Relevant)
	_ = s.deps.Sink.NewLine()

	s.archive(ctx, c, aspects.Relevant)
	return nil
}

func (s *Service) Transit(ctx context.Context, req service.ChartRequest, w Window) error {
	natal, err := s.deps.Charts.Natal(ctx, req)
	if err != nil {
		return fmt.Errorf("natal %s: %w", req.Name, err)
	}
	moments, err := s.deps.Transit.Range(ctx, natal, w.Start, w.End, w.Step)
	if err != nil {
		return err
	}

	_ = s.deps.Sink.WriteChart(natal)
	for _, m := range moments {
		title := fmt.Sprintf("transits to %s at %s", natal.Name, m.Instant.UTC().Format(time.RFC3339))
		_ = s.deps.Sink.WriteAspects(title, m.Aspects.Relevant)
	}
	_ = s.deps.Sink.NewLine()

	s.archive(ctx, natal, s.deps.Aspects.Natal(natal).Relevant)
	for _, m := range moments {
		s.archive(ctx, m.Chart, m.Aspects.Relevant)
	}
	return nil
}

func (s *Service) pair(ctx context.Context, a, b service.ChartRequest) (*model.Chart, *model.Chart, error) {
	ca, err := s.deps.Charts.Natal(ctx, a)
	if err != nil {
		return nil, nil, fmt.Errorf("natal %s: %w", a.Name, err)
	}
	cb, err := s.deps.Charts.Natal(ctx, b)
	if err != nil {
		return nil, nil, fmt.Errorf("natal %s: %w", b.Name, err)
	}
	return ca, cb, nil
}

// archive failures are logged, the report is already out
func (s *Service) archive(ctx context.Context, c *model.Chart, aspects []model.AspectResult) {
	if err := s.deps.Archive.Save(ctx, c, aspects); err != nil {
		log.Error().Err(err).Str("chart", c.ID).Msg("archive chart failed")
	}
}
