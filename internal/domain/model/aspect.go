package model

// AspectDefinition is one row of the aspect table.
type AspectDefinition struct {
	Name   string  `json:"name" toml:"name"`
	Degree float64 `json:"degree" toml:"degree"`
	Orb    float64 `json:"orb" toml:"orb"`
	Major  bool    `json:"major" toml:"major"`
}

// DefaultAspects returns a fresh copy of the built-in table, ordered by degree.
func DefaultAspects() []AspectDefinition {
	return []AspectDefinition{
		{Name: "conjunction", Degree: 0, Orb: 10, Major: true},
		{Name: "semi-sextile", Degree: 30, Orb: 1},
		{Name: "semi-square", Degree: 45, Orb: 1},
		{Name: "sextile", Degree: 60, Orb: 6, Major: true},
		{Name: "quintile", Degree: 72, Orb: 1},
		{Name: "square", Degree: 90, Orb: 5, Major: true},
		{Name: "trine", Degree: 120, Orb: 8, Major: true},
		{Name: "sesquiquadrate", Degree: 135, Orb: 1},
		{Name: "biquintile", Degree: 144, Orb: 1},
		{Name: "quincunx", Degree: 150, Orb: 1},
		{Name: "opposition", Degree: 180, Orb: 10, Major: true},
	}
}

// DefaultAxisOrb limits aspects to the chart axes in relevant aspect lists.
const DefaultAxisOrb = 1.0

type Movement string

const (
	Applying   Movement = "Applying"
	Separating Movement = "Separating"
	Fixed      Movement = "Fixed"
)

// AspectResult describes an aspect found between two points.
type AspectResult struct {
	P1          PointID  `json:"p1"`
	P2          PointID  `json:"p2"`
	P1Owner     string   `json:"p1_owner"`
	P2Owner     string   `json:"p2_owner"`
	P1Pos       float64  `json:"p1_abs_pos"`
	P2Pos       float64  `json:"p2_abs_pos"`
	Aspect      string   `json:"aspect"`
	ExactDegree float64  `json:"aspect_degrees"`
	Separation  float64  `json:"separation"`
	SignedOrb   float64  `json:"orbit"`
	Movement    Movement `json:"movement"`
	Major       bool     `json:"major"`
}

// AspectSet is the output of an aspect search.
// All holds every match; Relevant is the deduplicated, filtered list.
type AspectSet struct {
	All      []AspectResult `json:"all"`
	Relevant []AspectResult `json:"relevant"`
}
