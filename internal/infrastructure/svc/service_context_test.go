package svc

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"astrox/internal/domain/model"
	"astrox/internal/infrastructure/config"
)

func TestServiceContextSubjects(t *testing.T) {
	cfg := &config.Config{}
	cfg.App.Mode = config.ModeNatal
	cfg.Chart.HouseSystem = "K"
	cfg.Chart.AxisOrb = model.DefaultAxisOrb
	cfg.Ephemeris.Driver = config.DriverFixture
	cfg.Ephemeris.FixturePath = filepath.Join("..", "..", "..", "configs", "ephemeris.toml")
	cfg.Transit.StepHours = 12
	cfg.Subjects = []config.Subject{
		{Name: "A", Instant: time.Date(1990, 1, 1, 0, 0, 0, 0, time.UTC), City: "Paris", Lat: 48.85, Lng: 2.35},
	}

	sc, err := New(context.Background(), cfg)
	require.NoError(t, err)
	defer sc.Close()

	subjects := sc.Subjects()
	require.Len(t, subjects, 1)
	assert.Equal(t, "A", subjects[0].Name)
	assert.Equal(t, model.HouseSystem("K"), subjects[0].Context.HouseSystem)
	assert.Equal(t, "Paris", subjects[0].Location.Name)
	assert.Equal(t, 12*time.Hour, sc.Window().Step)

	require.NoError(t, sc.Run(""))
}

func TestServiceContextRunChecksModeOverride(t *testing.T) {
	cfg := &config.Config{}
	cfg.App.Mode = config.ModeNatal
	cfg.Ephemeris.Driver = config.DriverFixture
	cfg.Ephemeris.FixturePath = filepath.Join("..", "..", "..", "configs", "ephemeris.toml")
	cfg.Subjects = []config.Subject{
		{Name: "A", Instant: time.Date(1990, 1, 1, 0, 0, 0, 0, time.UTC), Lat: 48.85, Lng: 2.35},
	}

	sc, err := New(context.Background(), cfg)
	require.NoError(t, err)
	defer sc.Close()

	assert.EqualError(t, sc.Run(config.ModeTransit), "transit.start/end invalid")
	assert.EqualError(t, sc.Run(config.ModeSynastry), "mode synastry needs two subjects")
	assert.Error(t, sc.Run("horoscope"))
}
