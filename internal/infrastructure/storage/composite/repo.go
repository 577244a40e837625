package composite

import (
	"context"
	"errors"

	"astrox/internal/application/port"
	"astrox/internal/domain/model"
)

// Repo writes to every configured repository. Reads go to the first
// repository that can load charts.
type Repo struct {
	repos []port.ChartRepository
}

func New(repos ...port.ChartRepository) *Repo {
	// nil repos are allowed; filter in constructor for safety
	out := make([]port.ChartRepository, 0, len(repos))
	for _, r := range repos {
		if r != nil {
			out = append(out, r)
		}
	}
	return &Repo{repos: out}
}

func (r *Repo) Len() int { return len(r.repos) }

func (r *Repo) SaveChart(ctx context.Context, c *model.Chart) error {
	var firstErr error
	for _, repo := range r.repos {
		if err := repo.SaveChart(ctx, c); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (r *Repo) SaveAspects(ctx context.Context, chartID string, aspects []model.AspectResult) error {
	var firstErr error
	for _, repo := range r.repos {
		if err := repo.SaveAspects(ctx, chartID, aspects); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

var ErrNoChartStore = errors.New("no repository can load charts")

func (r *Repo) store() (port.ChartStore, error) {
	for _, repo := range r.repos {
		if store, ok := repo.(port.ChartStore); ok {
			return store, nil
		}
	}
	return nil, ErrNoChartStore
}

func (r *Repo) LoadChart(ctx context.Context, id string) (*model.Chart, error) {
	store, err := r.store()
	if err != nil {
		return nil, err
	}
	return store.LoadChart(ctx, id)
}

func (r *Repo) LoadAspects(ctx context.Context, chartID string) ([]model.AspectResult, error) {
	store, err := r.store()
	if err != nil {
		return nil, err
	}
	return store.LoadAspects(ctx, chartID)
}

func (r *Repo) Close() error {
	var firstErr error
	for _, repo := range r.repos {
		if err := repo.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

var _ port.ChartStore = (*Repo)(nil)
