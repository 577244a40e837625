// Package fixture is an offline ephemeris backed by a TOML table.
//
// Bodies move linearly from the table epoch. Moments recorded for an exact
// instant take precedence, which lets tests and demos pin real positions.
package fixture

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/BurntSushi/toml"

	"astrox/internal/application/port"
	"astrox/internal/domain/model"
)

var ErrSessionClosed = errors.New("ephemeris session closed")

// Body is a position with its daily motion.
type Body struct {
	Pos   float64 `toml:"pos"`
	Speed float64 `toml:"speed"`
}

// Moment pins exact values for one instant.
type Moment struct {
	Instant time.Time       `toml:"instant"`
	Cusps   []float64       `toml:"cusps"`
	Angles  map[string]Body `toml:"angles"`
	Points  map[string]Body `toml:"points"`
}

type File struct {
	Epoch     time.Time       `toml:"epoch"`
	Obliquity float64         `toml:"obliquity"`
	Bodies    map[string]Body `toml:"bodies"`

	Houses struct {
		Asc  float64 `toml:"asc"`
		Rate float64 `toml:"rate"`
	} `toml:"houses"`

	// degrees subtracted per sidereal mode
	Ayanamsa map[string]float64 `toml:"ayanamsa"`

	Moments []Moment `toml:"moments"`
}

type Ephemeris struct {
	file    File
	moments map[int64]Moment
}

func Load(path string) (*Ephemeris, error) {
	var f File
	if _, err := toml.DecodeFile(path, &f); err != nil {
		return nil, fmt.Errorf("decode fixture %s: %w", path, err)
	}
	return New(f)
}

func New(f File) (*Ephemeris, error) {
	if f.Epoch.IsZero() {
		f.Epoch = time.Date(2000, 1, 1, 12, 0, 0, 0, time.UTC)
	}
	if f.Obliquity == 0 {
		f.Obliquity = 23.4393
	}
	if f.Houses.Rate == 0 {
		f.Houses.Rate = 360.9856
	}

	e := &Ephemeris{file: f, moments: make(map[int64]Moment, len(f.Moments))}
	for i, m := range f.Moments {
		if m.Instant.IsZero() {
			return nil, fmt.Errorf("moments[%d].instant is empty", i)
		}
		if len(m.Cusps) != 0 && len(m.Cusps) != 12 {
			return nil, fmt.Errorf("moments[%d] has %d cusps", i, len(m.Cusps))
		}
		e.moments[m.Instant.UnixNano()] = m
	}
	return e, nil
}

func (e *Ephemeris) Open(_ context.Context, cc model.ChartContext) (port.EphemerisSession, error) {
	var shift float64
	if cc.Zodiac == model.Sidereal {
		v, ok := e.file.Ayanamsa[string(cc.SiderealMode)]
		if !ok {
			return nil, fmt.Errorf("%w: fixture has no ayanamsa for %s", model.ErrConfiguration, cc.SiderealMode)
		}
		shift = v
	}
	return &session{e: e, cc: cc, shift: shift}, nil
}

type session struct {
	e     *Ephemeris
	cc    model.ChartContext
	shift float64

	mu     sync.Mutex
	closed bool
}

func (s *session) days(at time.Time) float64 {
	return at.Sub(s.e.file.Epoch).Hours() / 24
}

func (s *session) Position(_ context.Context, id model.PointID, at time.Time) (model.Placement, error) {
	if err := s.check(); err != nil {
		return model.Placement{}, err
	}

	lookup := id
	flip := false
	if s.cc.Perspective == model.Heliocentric {
		switch id {
		case model.Sun, model.Moon:
			return model.Placement{}, fmt.Errorf("%s heliocentric: %w", id, model.ErrOracleUnavailable)
		case model.Earth:
			lookup, flip = model.Sun, true
		}
	} else if id == model.Earth {
		return model.Placement{}, fmt.Errorf("%s geocentric: %w", id, model.ErrOracleUnavailable)
	}

	b, ok := s.body(lookup, at)
	if !ok {
		return model.Placement{}, fmt.Errorf("%s: %w", id, model.ErrOracleUnavailable)
	}
	pos := b.Pos - s.shift
	if flip {
		pos += 180
	}
	pos = wrap(pos)
	return model.Placement{
		ID:          id,
		AbsPos:      pos,
		Speed:       b.Speed,
		Declination: s.declination(pos),
		HasDecl:     true,
	}, nil
}

func (s *session) body(id model.PointID, at time.Time) (Body, bool) {
	if m, ok := s.e.moments[at.UnixNano()]; ok {
		if b, ok := m.Points[string(id)]; ok {
			return b, true
		}
	}
	b, ok := s.e.file.Bodies[string(id)]
	if !ok {
		return Body{}, false
	}
	return Body{Pos: b.Pos + b.Speed*s.days(at), Speed: b.Speed}, true
}

// declination of an ecliptic longitude with zero latitude
func (s *session) declination(lon float64) float64 {
	eps := s.e.file.Obliquity * math.Pi / 180
	return math.Asin(math.Sin(eps)*math.Sin(lon*math.Pi/180)) * 180 / math.Pi
}

func (s *session) Houses(_ context.Context, at time.Time, loc model.Location) (model.HouseFrame, error) {
	if err := s.check(); err != nil {
		return model.HouseFrame{}, err
	}

	if m, ok := s.e.moments[at.UnixNano()]; ok && len(m.Cusps) == 12 {
		frame := model.HouseFrame{Angles: make(map[model.PointID]model.Placement, len(m.Angles))}
		for i, c := range m.Cusps {
			frame.Cusps[i] = wrap(c - s.shift)
		}
		for name, b := range m.Angles {
			id := model.PointID(name)
			frame.Angles[id] = model.Placement{ID: id, AbsPos: wrap(b.Pos - s.shift), Speed: b.Speed}
		}
		if _, ok := frame.Angles[model.Ascendant]; !ok {
			frame.Angles[model.Ascendant] = model.Placement{ID: model.Ascendant, AbsPos: frame.Cusps[0]}
		}
		if _, ok := frame.Angles[model.MediumCoeli]; !ok {
			frame.Angles[model.MediumCoeli] = model.Placement{ID: model.MediumCoeli, AbsPos: frame.Cusps[9]}
		}
		return frame, nil
	}

	// equal houses from a uniformly rotating ascendant
	rate := s.e.file.Houses.Rate
	asc := wrap(s.e.file.Houses.Asc + rate*s.days(at) + loc.Longitude - s.shift)
	var frame model.HouseFrame
	for i := range frame.Cusps {
		frame.Cusps[i] = wrap(asc + float64(i)*30)
	}
	frame.Angles = map[model.PointID]model.Placement{
		model.Ascendant:   {ID: model.Ascendant, AbsPos: asc, Speed: rate},
		model.MediumCoeli: {ID: model.MediumCoeli, AbsPos: wrap(asc + 270), Speed: rate},
		model.Vertex:      {ID: model.Vertex, AbsPos: wrap(asc + 180 + loc.Latitude/2), Speed: rate},
	}
	return frame, nil
}

func (s *session) check() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrSessionClosed
	}
	return nil
}

func (s *session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func wrap(x float64) float64 {
	x = math.Mod(x, 360)
	if x < 0 {
		x += 360
	}
	return x
}

var _ port.Ephemeris = (*Ephemeris)(nil)
