package service

import (
	"math"
	"sort"

	"astrox/internal/domain/model"
)

const (
	fullCircle = 360.0
	halfCircle = 180.0
	snapEps    = 1e-9
)

// Normalize maps any angle into [0,360).
func Normalize(x float64) float64 {
	r := math.Mod(x, fullCircle)
	if r < 0 {
		r += fullCircle
	}
	// -1e-17 + 360 rounds to 360
	if r >= fullCircle {
		r = 0
	}
	return r
}

// Separation returns the shortest arc between a and b, in [0,180].
func Separation(a, b float64) float64 {
	d := Normalize(a - b)
	if d > halfCircle {
		d = fullCircle - d
	}
	return d
}

// IsBetween reports whether point lies on the counterclockwise arc from
// start (inclusive) to end (exclusive). An arc with start == end is empty.
func IsBetween(start, end, point float64) bool {
	s := Normalize(start)
	arc := Normalize(end - s)
	if arc == 0 {
		return false
	}
	return Normalize(point-s) < arc
}

// CircularMean returns the midpoint of a and b on the circle, so the mean
// of 350 and 10 is 0. For antipodal inputs the midpoint is taken 90
// degrees ahead of a. Results within 1e-9 of 0 or 360 snap to 0.
func CircularMean(a, b float64) float64 {
	na, nb := Normalize(a), Normalize(b)
	if na == nb {
		return na
	}
	ra, rb := na*math.Pi/halfCircle, nb*math.Pi/halfCircle
	x := (math.Cos(ra) + math.Cos(rb)) / 2
	y := (math.Sin(ra) + math.Sin(rb)) / 2
	if math.Hypot(x, y) < snapEps {
		return Normalize(na + 90)
	}
	m := Normalize(math.Atan2(y, x) * halfCircle / math.Pi)
	if m < snapEps || fullCircle-m < snapEps {
		m = 0
	}
	return m
}

// CircularSort restores cyclic order on cusps built from pairwise midpoints.
//
// Each value is unwrapped against its predecessor, anchored at the first
// cusp. A forward step above 180 degrees means the pair was averaged across
// the antipode; averaging with one operand unwrapped by 360 moves the
// midpoint by 180, which is the correction applied. House indexes are kept.
// If the corrected sequence still does not wind exactly once the values are
// ordered by clockwise distance from the first cusp.
func CircularSort(cusps model.HouseCusps) model.HouseCusps {
	var out model.HouseCusps
	out[0] = Normalize(cusps[0])
	for i := 1; i < len(cusps); i++ {
		c := Normalize(cusps[i])
		if Normalize(c-out[i-1]) > halfCircle {
			c = Normalize(c + halfCircle)
		}
		out[i] = c
	}
	if winding(out) == 1 {
		return out
	}

	anchor := out[0]
	rest := make([]float64, 0, len(cusps)-1)
	for _, c := range cusps[1:] {
		rest = append(rest, Normalize(c))
	}
	sort.SliceStable(rest, func(i, j int) bool {
		return Normalize(rest[i]-anchor) < Normalize(rest[j]-anchor)
	})
	copy(out[1:], rest)
	return out
}

// winding counts how many times the cyclic sequence goes around the circle.
func winding(c model.HouseCusps) int {
	total := 0.0
	for i := range c {
		total += Normalize(c[(i+1)%len(c)] - c[i])
	}
	return int(math.Round(total / fullCircle))
}
