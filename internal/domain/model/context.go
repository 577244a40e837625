package model

import (
	"fmt"
	"strings"
)

type ZodiacType string

const (
	Tropical ZodiacType = "Tropical"
	Sidereal ZodiacType = "Sidereal"
)

type SiderealMode string

// DefaultSiderealMode applies when a sidereal zodiac is requested without a mode.
const DefaultSiderealMode SiderealMode = "FAGAN_BRADLEY"

var SiderealModes = []SiderealMode{
	"FAGAN_BRADLEY", "LAHIRI", "DELUCE", "RAMAN", "USHASHASHI", "KRISHNAMURTI",
	"DJWHAL_KHUL", "YUKTESHWAR", "JN_BHASIN", "BABYL_KUGLER1", "BABYL_KUGLER2",
	"BABYL_KUGLER3", "BABYL_HUBER", "BABYL_ETPSC", "ALDEBARAN_15TAU", "HIPPARCHOS",
	"SASSANIAN", "J2000", "J1900", "B1950",
}

// HouseSystem is a one-letter house system code.
type HouseSystem string

const DefaultHouseSystem HouseSystem = "P"

// HouseSystems maps each supported code to its name.
var HouseSystems = map[HouseSystem]string{
	"A": "Equal",
	"B": "Alcabitius",
	"C": "Campanus",
	"D": "Equal (MC)",
	"F": "Carter poli-equatorial",
	"H": "Horizon/Azimut",
	"I": "Sunshine",
	"i": "Sunshine/alt.",
	"K": "Koch",
	"L": "Pullen SD",
	"M": "Morinus",
	"N": "Equal/1=Aries",
	"O": "Porphyry",
	"P": "Placidus",
	"Q": "Pullen SR",
	"R": "Regiomontanus",
	"S": "Sripati",
	"T": "Polich/Page",
	"U": "Krusinski-Pisa-Goelzer",
	"V": "Equal/Vehlow",
	"W": "Equal/Whole Sign",
	"X": "Axial rotation system/Meridian houses",
	"Y": "APC houses",
}

type Perspective string

const (
	ApparentGeocentric Perspective = "Apparent Geocentric"
	Heliocentric       Perspective = "Heliocentric"
	Topocentric        Perspective = "Topocentric"
	TrueGeocentric     Perspective = "True Geocentric"
)

// Coordinates is a geographic observer position.
type Coordinates struct {
	Latitude  float64 `json:"lat" toml:"lat"`
	Longitude float64 `json:"lng" toml:"lng"`
	Altitude  float64 `json:"alt" toml:"alt"`
}

// ChartContext holds the calculation settings shared by every point of a chart.
type ChartContext struct {
	Zodiac       ZodiacType   `json:"zodiac"`
	SiderealMode SiderealMode `json:"sidereal_mode,omitempty"`
	HouseSystem  HouseSystem  `json:"house_system"`
	Perspective  Perspective  `json:"perspective"`
	Observer     *Coordinates `json:"observer,omitempty"`
}

// DefaultContext is a tropical, Placidus, apparent geocentric context.
func DefaultContext() ChartContext {
	return ChartContext{
		Zodiac:      Tropical,
		HouseSystem: DefaultHouseSystem,
		Perspective: ApparentGeocentric,
	}
}

// Validate checks the context and returns a normalized copy.
func (c ChartContext) Validate() (ChartContext, error) {
	out := c
	if out.Zodiac == "" {
		out.Zodiac = Tropical
	}
	if out.HouseSystem == "" {
		out.HouseSystem = DefaultHouseSystem
	}
	if out.Perspective == "" {
		out.Perspective = ApparentGeocentric
	}
	out.SiderealMode = SiderealMode(strings.ToUpper(strings.TrimSpace(string(out.SiderealMode))))

	switch out.Zodiac {
	case Tropical:
		if out.SiderealMode != "" {
			return c, fmt.Errorf("%w: sidereal mode %s set with tropical zodiac", ErrConfiguration, out.SiderealMode)
		}
	case Sidereal:
		if out.SiderealMode == "" {
			out.SiderealMode = DefaultSiderealMode
		}
		if !knownSiderealMode(out.SiderealMode) {
			return c, fmt.Errorf("%w: unknown sidereal mode %q", ErrConfiguration, out.SiderealMode)
		}
	default:
		return c, fmt.Errorf("%w: unknown zodiac type %q", ErrConfiguration, out.Zodiac)
	}

	if _, ok := HouseSystems[out.HouseSystem]; !ok {
		return c, fmt.Errorf("%w: unknown house system %q", ErrConfiguration, out.HouseSystem)
	}

	switch out.Perspective {
	case ApparentGeocentric, Heliocentric, TrueGeocentric:
	case Topocentric:
		if out.Observer == nil {
			return c, fmt.Errorf("%w: topocentric perspective requires observer coordinates", ErrConfiguration)
		}
	default:
		return c, fmt.Errorf("%w: unknown perspective %q", ErrConfiguration, out.Perspective)
	}
	return out, nil
}

// Compatible reports whether two charts can be compared or merged.
// Observer coordinates belong to each subject and are not compared.
func (c ChartContext) Compatible(o ChartContext) bool {
	return c.Zodiac == o.Zodiac &&
		c.SiderealMode == o.SiderealMode &&
		c.HouseSystem == o.HouseSystem &&
		c.Perspective == o.Perspective
}

// Key is a stable string form used for cache keys and logs.
func (c ChartContext) Key() string {
	key := fmt.Sprintf("%s|%s|%s|%s", c.Zodiac, c.SiderealMode, c.HouseSystem, c.Perspective)
	if c.Observer != nil {
		key += fmt.Sprintf("|%.6f,%.6f,%.1f", c.Observer.Latitude, c.Observer.Longitude, c.Observer.Altitude)
	}
	return key
}

func knownSiderealMode(m SiderealMode) bool {
	for _, s := range SiderealModes {
		if s == m {
			return true
		}
	}
	return false
}

// CalcFlags is the bit set sent to the ephemeris oracle.
type CalcFlags uint32

const (
	FlagSpeed CalcFlags = 1 << iota
	FlagSidereal
	FlagHeliocentric
	FlagTopocentric
	FlagTruePositions
)

// FlagsFor derives the oracle flags of a context.
func FlagsFor(c ChartContext) CalcFlags {
	f := FlagSpeed
	if c.Zodiac == Sidereal {
		f |= FlagSidereal
	}
	switch c.Perspective {
	case Heliocentric:
		f |= FlagHeliocentric
	case Topocentric:
		f |= FlagTopocentric
	case TrueGeocentric:
		f |= FlagTruePositions
	}
	return f
}
