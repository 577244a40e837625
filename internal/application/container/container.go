package container

import (
	"astrox/internal/application/port"
	"astrox/internal/application/service"
	"astrox/internal/domain/model"
)

// Options tune the services built by the container.
type Options struct {
	ActivePoints   []model.PointID
	Aspects        []model.AspectDefinition
	AxisOrb        float64
	TransitWorkers int
}

type Container struct {
	eph  port.Ephemeris
	repo port.ChartRepository
	opts Options

	chartService     *service.ChartService
	aspectService    *service.AspectService
	compositeService *service.CompositeService
	transitService   *service.TransitService
	archiveService   *service.ArchiveService
}

func New(eph port.Ephemeris, repo port.ChartRepository, opts Options) *Container {
	return &Container{
		eph:  eph,
		repo: repo,
		opts: opts,
	}
}

func (c *Container) Ephemeris() port.Ephemeris {
	return c.eph
}

func (c *Container) Repository() port.ChartRepository {
	return c.repo
}

func (c *Container) ChartService() *service.ChartService {
	if c.chartService == nil {
		c.chartService = service.NewChartService(c.eph, c.opts.ActivePoints)
	}
	return c.chartService
}

func (c *Container) AspectService() *service.AspectService {
	if c.aspectService == nil {
		c.aspectService = service.NewAspectService(c.opts.Aspects, c.opts.AxisOrb)
	}
	return c.aspectService
}

func (c *Container) CompositeService() *service.CompositeService {
	if c.compositeService == nil {
		c.compositeService = service.NewCompositeService(c.AspectService())
	}
	return c.compositeService
}

func (c *Container) TransitService() *service.TransitService {
	if c.transitService == nil {
		c.transitService = service.NewTransitService(c.ChartService(), c.AspectService(), c.opts.TransitWorkers)
	}
	return c.transitService
}

// ArchiveService is nil when no repository is configured.
func (c *Container) ArchiveService() *service.ArchiveService {
	if c.repo == nil {
		return nil
	}
	if c.archiveService == nil {
		c.archiveService = service.NewArchiveService(c.repo)
	}
	return c.archiveService
}

func (c *Container) Close() error {
	if c.repo == nil {
		return nil
	}
	return c.repo.Close()
}
