package model

import (
	"fmt"
	"math"
)

// HouseCusps holds the 12 cusp longitudes. Index 0 is the first house.
type HouseCusps [12]float64

// Cusp returns the cusp of house n (1..12).
func (h HouseCusps) Cusp(n int) float64 {
	return h[(n-1+12)%12]
}

// Validate checks that every cusp is in [0,360) and that the sequence goes
// around the circle exactly once.
func (h HouseCusps) Validate() error {
	turn := 0.0
	for i, c := range h {
		if math.IsNaN(c) || c < 0 || c >= 360 {
			return fmt.Errorf("%w: cusp %d out of range: %v", ErrHouseAssignment, i+1, c)
		}
		step := math.Mod(h[(i+1)%12]-c, 360)
		if step < 0 {
			step += 360
		}
		turn += step
	}
	if math.Abs(turn-360) > 1e-6 {
		return fmt.Errorf("%w: cusps wind %.3f degrees instead of 360", ErrHouseAssignment, turn)
	}
	return nil
}

// HouseFrame is what the oracle returns for a house query: the cusps plus
// the angles computed alongside them (Ascendant, Medium_Coeli, Vertex).
type HouseFrame struct {
	Cusps  HouseCusps            `json:"cusps"`
	Angles map[PointID]Placement `json:"angles"`
}

// Location is where a chart is cast.
type Location struct {
	Name      string  `json:"name,omitempty" toml:"name"`
	Latitude  float64 `json:"lat" toml:"lat"`
	Longitude float64 `json:"lng" toml:"lng"`
}
