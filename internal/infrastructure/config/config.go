package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"astrox/internal/domain/model"
)

// 环境变量覆盖（.env 或进程环境）
const (
	EnvPostgresDSN   = "ASTROX_POSTGRES_DSN"
	EnvRedisAddr     = "ASTROX_REDIS_ADDR"
	EnvRedisPassword = "ASTROX_REDIS_PASSWORD"
	EnvEphemerisURL  = "ASTROX_EPHEMERIS_URL"
	EnvLogLevel      = "ASTROX_LOG_LEVEL"
)

const (
	DriverFixture = "fixture"
	DriverRemote  = "remote"
)

const (
	ModeNatal     = "natal"
	ModeSynastry  = "synastry"
	ModeComposite = "composite"
	ModeTransit   = "transit"
)

type Config struct {
	App struct {
		LogLevel string `toml:"log_level"`
		Mode     string `toml:"mode"`
	} `toml:"app"`

	Chart struct {
		Zodiac       string             `toml:"zodiac"`
		SiderealMode string             `toml:"sidereal_mode"`
		HouseSystem  string             `toml:"house_system"`
		Perspective  string             `toml:"perspective"`
		Observer     *model.Coordinates `toml:"observer"`
		ActivePoints []string           `toml:"active_points"`
		AxisOrb      float64            `toml:"axis_orb"`
	} `toml:"chart"`

	// 相位表，留空使用默认 11 项
	Aspects []model.AspectDefinition `toml:"aspects"`

	Ephemeris struct {
		Driver      string `toml:"driver"`
		FixturePath string `toml:"fixture_path"`
		URL         string `toml:"url"`
		TimeoutSec  int    `toml:"timeout_sec"`

		Cache struct {
			Enabled    bool   `toml:"enabled"`
			Prefix     string `toml:"prefix"`
			TTLSeconds int    `toml:"ttl_seconds"`
		} `toml:"cache"`
	} `toml:"ephemeris"`

	Storage struct {
		Enabled bool `toml:"enabled"`

		SQLite struct {
			Enabled bool   `toml:"enabled"`
			Path    string `toml:"path"`
		} `toml:"sqlite"`

		Postgres struct {
			Enabled bool   `toml:"enabled"`
			DSN     string `toml:"dsn"`
		} `toml:"postgres"`

		Redis struct {
			Enabled    bool   `toml:"enabled"`
			Addr       string `toml:"addr"`
			Password   string `toml:"password"`
			DB         int    `toml:"db"`
			Prefix     string `toml:"prefix"`
			TTLSeconds int    `toml:"ttl_seconds"`
			Stream     string `toml:"stream"`
			Channel    string `toml:"channel"`
		} `toml:"redis"`
	} `toml:"storage"`

	Transit struct {
		Workers   int       `toml:"workers"`
		Start     time.Time `toml:"start"`
		End       time.Time `toml:"end"`
		StepHours float64   `toml:"step_hours"`
	} `toml:"transit"`

	Subjects []Subject `toml:"subjects"`
}

// Subject is a person or event to cast a chart for.
type Subject struct {
	Name    string    `toml:"name"`
	Instant time.Time `toml:"instant"`
	City    string    `toml:"city"`
	Lat     float64   `toml:"lat"`
	Lng     float64   `toml:"lng"`
}

func (s Subject) Location() model.Location {
	return model.Location{Name: s.City, Latitude: s.Lat, Longitude: s.Lng}
}

func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	var cfg Config
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, err
	}
	applyEnv(&cfg)
	applyDefaults(&cfg)
	if err := validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func applyEnv(cfg *Config) {
	if v := strings.TrimSpace(os.Getenv(EnvPostgresDSN)); v != "" {
		cfg.Storage.Postgres.DSN = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvRedisAddr)); v != "" {
		cfg.Storage.Redis.Addr = v
	}
	if v := os.Getenv(EnvRedisPassword); v != "" {
		cfg.Storage.Redis.Password = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvEphemerisURL)); v != "" {
		cfg.Ephemeris.URL = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogLevel)); v != "" {
		cfg.App.LogLevel = v
	}
}

func applyDefaults(cfg *Config) {
	if cfg.App.LogLevel == "" {
		cfg.App.LogLevel = "info"
	}
	if cfg.App.Mode == "" {
		cfg.App.Mode = ModeNatal
	}
	if cfg.Chart.AxisOrb == 0 {
		cfg.Chart.AxisOrb = model.DefaultAxisOrb
	}
	if cfg.Ephemeris.Driver == "" {
		cfg.Ephemeris.Driver = DriverFixture
	}
	if cfg.Ephemeris.TimeoutSec <= 0 {
		cfg.Ephemeris.TimeoutSec = 10
	}
	if cfg.Ephemeris.Cache.Prefix == "" {
		cfg.Ephemeris.Cache.Prefix = "astrox:eph"
	}
	if cfg.Ephemeris.Cache.TTLSeconds <= 0 {
		cfg.Ephemeris.Cache.TTLSeconds = 86400
	}
	if cfg.Storage.SQLite.Path == "" {
		cfg.Storage.SQLite.Path = "data/astrox.db"
	}
	if cfg.Storage.Redis.Prefix == "" {
		cfg.Storage.Redis.Prefix = "astrox"
	}
	if cfg.Transit.Workers <= 0 {
		cfg.Transit.Workers = 4
	}
	if cfg.Transit.StepHours <= 0 {
		cfg.Transit.StepHours = 24
	}
}

func validate(cfg *Config) error {
	if _, err := cfg.ChartContext().Validate(); err != nil {
		return err
	}
	points, err := parsePoints(cfg.Chart.ActivePoints)
	if err != nil {
		return err
	}
	cfg.Chart.ActivePoints = cfg.Chart.ActivePoints[:0]
	for _, p := range points {
		cfg.Chart.ActivePoints = append(cfg.Chart.ActivePoints, string(p))
	}

	for i, a := range cfg.Aspects {
		if strings.TrimSpace(a.Name) == "" {
			return fmt.Errorf("aspects[%d].name is empty", i)
		}
		if a.Degree < 0 || a.Degree > 180 {
			return fmt.Errorf("aspects[%d].degree %v out of [0,180]", i, a.Degree)
		}
		if a.Orb < 0 {
			return fmt.Errorf("aspects[%d].orb is negative", i)
		}
	}

	switch cfg.Ephemeris.Driver {
	case DriverFixture:
		if strings.TrimSpace(cfg.Ephemeris.FixturePath) == "" {
			return errors.New("ephemeris.fixture_path empty but driver is fixture")
		}
	case DriverRemote:
		if strings.TrimSpace(cfg.Ephemeris.URL) == "" {
			return errors.New("ephemeris.url empty but driver is remote")
		}
	default:
		return fmt.Errorf("ephemeris.driver %q unknown", cfg.Ephemeris.Driver)
	}
	if cfg.Ephemeris.Cache.Enabled && !cfg.Storage.Redis.Enabled {
		return errors.New("ephemeris.cache needs storage.redis")
	}

	if cfg.Storage.Postgres.Enabled && strings.TrimSpace(cfg.Storage.Postgres.DSN) == "" {
		return errors.New("storage.postgres.dsn empty but enabled")
	}
	if cfg.Storage.Redis.Enabled && strings.TrimSpace(cfg.Storage.Redis.Addr) == "" {
		return errors.New("storage.redis.addr empty but enabled")
	}

	if err := cfg.CheckMode(cfg.App.Mode); err != nil {
		return err
	}

	for i, s := range cfg.Subjects {
		if strings.TrimSpace(s.Name) == "" {
			return fmt.Errorf("subjects[%d].name is empty", i)
		}
		if s.Instant.IsZero() {
			return fmt.Errorf("subjects[%d].instant is empty", i)
		}
		if s.Lat < -90 || s.Lat > 90 || s.Lng < -180 || s.Lng > 180 {
			return fmt.Errorf("subjects[%d] coordinates out of range", i)
		}
	}
	return nil
}

// CheckMode reports whether the subjects and transit window satisfy mode.
func (c *Config) CheckMode(mode string) error {
	switch mode {
	case ModeNatal:
		if len(c.Subjects) == 0 {
			return errors.New("subjects is empty")
		}
	case ModeSynastry, ModeComposite:
		if len(c.Subjects) < 2 {
			return fmt.Errorf("mode %s needs two subjects", mode)
		}
	case ModeTransit:
		if len(c.Subjects) == 0 {
			return errors.New("subjects is empty")
		}
		if c.Transit.Start.IsZero() || c.Transit.End.Before(c.Transit.Start) {
			return errors.New("transit.start/end invalid")
		}
	default:
		return fmt.Errorf("app.mode %q unknown", mode)
	}
	return nil
}

// ChartContext builds the calculation context from the [chart] section.
func (c *Config) ChartContext() model.ChartContext {
	return model.ChartContext{
		Zodiac:       model.ZodiacType(c.Chart.Zodiac),
		SiderealMode: model.SiderealMode(c.Chart.SiderealMode),
		HouseSystem:  model.HouseSystem(c.Chart.HouseSystem),
		Perspective:  model.Perspective(c.Chart.Perspective),
		Observer:     c.Chart.Observer,
	}
}

// Points returns the configured active points; nil means the defaults.
func (c *Config) Points() []model.PointID {
	points, _ := parsePoints(c.Chart.ActivePoints)
	return points
}

func (c *Config) TransitStep() time.Duration {
	return time.Duration(c.Transit.StepHours * float64(time.Hour))
}

func (c *Config) EphemerisTimeout() time.Duration {
	return time.Duration(c.Ephemeris.TimeoutSec) * time.Second
}

func parsePoints(in []string) ([]model.PointID, error) {
	var out []model.PointID
	seen := map[model.PointID]struct{}{}
	for _, s := range in {
		id := model.PointID(strings.TrimSpace(s))
		if id == "" {
			continue
		}
		if !id.Known() {
			return nil, fmt.Errorf("chart.active_points: unknown point %q", id)
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out, nil
}
