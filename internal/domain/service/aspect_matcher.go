package service

import (
	"math"

	"astrox/internal/domain/model"
)

// FixedSpeedEps is the relative speed (deg/day) under which a pair is
// considered not to move.
const FixedSpeedEps = 1e-6

// AspectMatcher finds aspects between points using an aspect table.
type AspectMatcher struct {
	defs    []model.AspectDefinition
	axisOrb float64
}

// NewAspectMatcher copies defs; an empty table falls back to the defaults.
// axisOrb <= 0 disables the axis filter on relevant aspects.
func NewAspectMatcher(defs []model.AspectDefinition, axisOrb float64) *AspectMatcher {
	if len(defs) == 0 {
		defs = model.DefaultAspects()
	}
	return &AspectMatcher{
		defs:    append([]model.AspectDefinition(nil), defs...),
		axisOrb: axisOrb,
	}
}

// Definitions returns a copy of the table in use.
func (m *AspectMatcher) Definitions() []model.AspectDefinition {
	return append([]model.AspectDefinition(nil), m.defs...)
}

// Match returns the aspect formed by p1 and p2, if any. Among definitions
// within orb the one closest to exact wins; exact ties go to the
// definition listed first.
func (m *AspectMatcher) Match(p1, p2 model.Point) (model.AspectResult, bool) {
	d := Separation(p1.AbsPos, p2.AbsPos)

	best := -1
	bestDist := math.Inf(1)
	for i, def := range m.defs {
		dist := math.Abs(d - def.Degree)
		if dist > def.Orb {
			continue
		}
		if dist < bestDist {
			best, bestDist = i, dist
		}
	}
	if best < 0 {
		return model.AspectResult{}, false
	}

	def := m.defs[best]
	orb := d - def.Degree
	return model.AspectResult{
		P1:          p1.ID,
		P2:          p2.ID,
		P1Pos:       p1.AbsPos,
		P2Pos:       p2.AbsPos,
		Aspect:      def.Name,
		ExactDegree: def.Degree,
		Separation:  d,
		SignedOrb:   orb,
		Movement:    Movement(p1.AbsPos, p2.AbsPos, p1.Speed, p2.Speed, def.Degree),
		Major:       def.Major,
	}, true
}

// Movement classifies whether the separation of two points is heading
// towards the exact aspect angle (Applying), away from it (Separating), or
// not changing at all (Fixed).
func Movement(pos1, pos2, speed1, speed2, aspectDeg float64) model.Movement {
	rel := speed2 - speed1
	if math.Abs(rel) < FixedSpeedEps {
		return model.Fixed
	}

	// aspect angles above 180 are measured the short way round
	target := aspectDeg
	if target > halfCircle {
		target = fullCircle - target
	}

	diff := Normalize(pos2 - pos1)
	sep := diff
	rate := rel
	switch {
	case diff == 0:
		// conjunct: separation can only grow
		rate = math.Abs(rel)
	case diff == halfCircle:
		// opposed: separation can only shrink
		rate = -math.Abs(rel)
	case diff > halfCircle:
		sep = fullCircle - diff
		rate = -rel
	}

	orb := sep - target
	if orb == 0 {
		return model.Separating
	}
	if orb*rate < 0 {
		return model.Applying
	}
	return model.Separating
}

// SingleChart finds aspects inside one chart. All holds every ordered pair,
// Relevant each unordered pair once with the axis filter applied. Pairs of
// points that are opposite by construction are skipped.
func (m *AspectMatcher) SingleChart(points []model.Point, owner string) model.AspectSet {
	var set model.AspectSet
	for i := range points {
		for j := range points {
			if i == j || builtInPair(points[i].ID, points[j].ID) {
				continue
			}
			res, ok := m.Match(points[i], points[j])
			if !ok {
				continue
			}
			res.P1Owner, res.P2Owner = owner, owner
			set.All = append(set.All, res)
			if i < j && m.keep(res) {
				set.Relevant = append(set.Relevant, res)
			}
		}
	}
	return set
}

// DualChart finds aspects between every point of a and every point of b.
func (m *AspectMatcher) DualChart(a []model.Point, ownerA string, b []model.Point, ownerB string) model.AspectSet {
	var set model.AspectSet
	for _, p1 := range a {
		for _, p2 := range b {
			res, ok := m.Match(p1, p2)
			if !ok {
				continue
			}
			res.P1Owner, res.P2Owner = ownerA, ownerB
			set.All = append(set.All, res)
			if m.keep(res) {
				set.Relevant = append(set.Relevant, res)
			}
		}
	}
	return set
}

// keep drops loose aspects to the horizon and meridian axes.
func (m *AspectMatcher) keep(res model.AspectResult) bool {
	if m.axisOrb <= 0 {
		return true
	}
	if !res.P1.MainAxis() && !res.P2.MainAxis() {
		return true
	}
	return math.Abs(res.SignedOrb) < m.axisOrb
}

var builtInPairs = map[[2]model.PointID]bool{
	{model.Ascendant, model.Descendant}:   true,
	{model.MediumCoeli, model.ImumCoeli}:  true,
	{model.Vertex, model.AntiVertex}:      true,
	{model.TrueNode, model.TrueSouthNode}: true,
	{model.MeanNode, model.MeanSouthNode}: true,
}

func builtInPair(a, b model.PointID) bool {
	return builtInPairs[[2]model.PointID{a, b}] || builtInPairs[[2]model.PointID{b, a}]
}
