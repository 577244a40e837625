package model

import "time"

type Element string

const (
	ElementFire  Element = "Fire"
	ElementEarth Element = "Earth"
	ElementAir   Element = "Air"
	ElementWater Element = "Water"
)

type Quality string

const (
	Cardinal Quality = "Cardinal"
	FixedQ   Quality = "Fixed"
	Mutable  Quality = "Mutable"
)

// Sign is a 30 degree zodiac sign.
type Sign struct {
	Name    string  `json:"name"`
	Num     int     `json:"num"` // 0 = Ari
	Element Element `json:"element"`
	Quality Quality `json:"quality"`
}

// LunarPhase is derived from the Sun and Moon positions.
type LunarPhase struct {
	DegreesBetween float64 `json:"degrees_between_s_m"`
	MoonPhase      int     `json:"moon_phase"`
	SunPhase       int     `json:"sun_phase"`
	Name           string  `json:"moon_phase_name"`
	Emoji          string  `json:"moon_emoji"`
}

type ChartKind string

const (
	KindNatal     ChartKind = "Natal"
	KindComposite ChartKind = "Composite"
	KindTransit   ChartKind = "Transit"
)

// Chart is a fully resolved chart.
type Chart struct {
	ID       string       `json:"id"`
	Name     string       `json:"name"`
	Kind     ChartKind    `json:"kind"`
	Context  ChartContext `json:"context"`
	Instant  time.Time    `json:"instant"`
	Location Location     `json:"location"`
	Cusps    HouseCusps   `json:"cusps"`
	Points   []Point      `json:"points"`
	Phase    *LunarPhase  `json:"lunar_phase,omitempty"`

	// AutoActivated lists prerequisites added to satisfy derived points.
	AutoActivated []PointID `json:"auto_activated,omitempty"`
	// Skipped lists requested points that could not be produced.
	Skipped []PointID `json:"skipped,omitempty"`
}

// Point looks up a point by id.
func (c *Chart) Point(id PointID) (Point, bool) {
	for _, p := range c.Points {
		if p.ID == id {
			return p, true
		}
	}
	return Point{}, false
}

// PointIDs returns the ids of the chart's points in order.
func (c *Chart) PointIDs() []PointID {
	out := make([]PointID, len(c.Points))
	for i, p := range c.Points {
		out[i] = p.ID
	}
	return out
}

// HouseOverlayEntry places a point of one chart in the houses of another.
type HouseOverlayEntry struct {
	Point          PointID `json:"point"`
	Owner          string  `json:"owner"`
	AbsPos         float64 `json:"abs_pos"`
	OwnHouse       int     `json:"own_house"`
	ProjectedOwner string  `json:"projected_owner"`
	ProjectedHouse int     `json:"projected_house"`
}
