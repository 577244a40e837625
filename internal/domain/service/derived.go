package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"astrox/internal/domain/model"
)

// PositionSource supplies raw positions of base points at an instant.
// Implementations return an error wrapping model.ErrOracleUnavailable for
// points they cannot cover.
type PositionSource interface {
	Position(ctx context.Context, id model.PointID, at time.Time) (model.Placement, error)
}

// derivation computes a point from already resolved prerequisites.
type derivation struct {
	requires []model.PointID
	compute  func(in map[model.PointID]model.Placement, day bool) model.Placement
	sect     bool // formula depends on day/night
}

// derivations is the dependency table of every derived point.
var derivations = map[model.PointID]derivation{
	model.MeanSouthNode: opposite(model.MeanNode),
	model.TrueSouthNode: opposite(model.TrueNode),
	model.Descendant:    opposite(model.Ascendant),
	model.ImumCoeli:     opposite(model.MediumCoeli),
	model.AntiVertex:    opposite(model.Vertex),

	model.ParsFortunae: part(luminaries, model.Moon, model.Sun, true),
	model.ParsSpiritus: part(luminaries, model.Sun, model.Moon, true),
	model.ParsAmoris:   part([]model.PointID{model.Ascendant, model.Venus, model.Sun}, model.Venus, model.Sun, false),
	model.ParsFidei:    part([]model.PointID{model.Ascendant, model.Jupiter, model.Saturn}, model.Jupiter, model.Saturn, false),
}

// luminaries is the prerequisite order of the sect parts.
var luminaries = []model.PointID{model.Ascendant, model.Sun, model.Moon}

func opposite(base model.PointID) derivation {
	return derivation{
		requires: []model.PointID{base},
		compute: func(in map[model.PointID]model.Placement, _ bool) model.Placement {
			b := in[base]
			return model.Placement{
				AbsPos:      Normalize(b.AbsPos + halfCircle),
				Speed:       b.Speed,
				Declination: -b.Declination,
				HasDecl:     b.HasDecl,
			}
		},
	}
}

// part builds Asc + plus - minus by day and Asc + minus - plus by night.
// Without sect the day formula is always used. requires lists the
// prerequisites in activation order.
func part(requires []model.PointID, plus, minus model.PointID, sect bool) derivation {
	return derivation{
		requires: requires,
		sect:     sect,
		compute: func(in map[model.PointID]model.Placement, day bool) model.Placement {
			asc, a, b := in[model.Ascendant].AbsPos, in[plus].AbsPos, in[minus].AbsPos
			if sect && !day {
				a, b = b, a
			}
			return model.Placement{AbsPos: Normalize(asc + a - b)}
		},
	}
}

// Prerequisites returns the direct prerequisites of a derived point, or nil
// for base points.
func Prerequisites(id model.PointID) []model.PointID {
	d, ok := derivations[id]
	if !ok {
		return nil
	}
	return append([]model.PointID(nil), d.requires...)
}

// IsDerived reports whether id is computed from other points.
func IsDerived(id model.PointID) bool {
	_, ok := derivations[id]
	return ok
}

// Expand returns a new active point list: the requested ids without
// duplicates, followed by every missing prerequisite in discovery order.
// The input slice is not modified and Expand(Expand(x)) equals Expand(x).
func Expand(requested []model.PointID) []model.PointID {
	out := make([]model.PointID, 0, len(requested))
	seen := make(map[model.PointID]bool, len(requested))
	for _, id := range requested {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}

	var visit func(id model.PointID)
	visit = func(id model.PointID) {
		for _, req := range derivations[id].requires {
			if seen[req] {
				continue
			}
			seen[req] = true
			out = append(out, req)
			visit(req)
		}
	}
	n := len(out)
	for i := 0; i < n; i++ {
		visit(out[i])
	}
	return out
}

// IsDayChart reports whether the Sun is above the horizon, i.e. in houses 7 to 12.
func IsDayChart(sunHouse int) bool {
	return sunHouse >= 7 && sunHouse <= 12
}

// Resolution is the outcome of resolving an active point set.
type Resolution struct {
	// Placements in active set order, without the skipped points.
	Placements []model.Placement
	// AutoActivated lists prerequisites that were not requested.
	AutoActivated []model.PointID
	// Skipped lists points dropped because the oracle could not supply them
	// or one of their prerequisites.
	Skipped []model.PointID
}

// ResolvePoints fetches base points and computes derived points for the
// requested set. Points the oracle reports as unavailable are dropped along
// with everything depending on them; any other oracle error aborts.
func ResolvePoints(
	ctx context.Context,
	src PositionSource,
	frame model.HouseFrame,
	at time.Time,
	requested []model.PointID,
) (Resolution, error) {
	for _, id := range requested {
		if !id.Known() {
			return Resolution{}, fmt.Errorf("%w: unknown point %q", model.ErrConfiguration, id)
		}
	}

	active := Expand(requested)
	r := &resolver{
		ctx:      ctx,
		src:      src,
		frame:    frame,
		at:       at,
		resolved: make(map[model.PointID]model.Placement, len(active)),
		failed:   make(map[model.PointID]bool),
		visiting: make(map[model.PointID]bool),
	}

	res := Resolution{}
	requestedSet := make(map[model.PointID]bool, len(requested))
	for _, id := range requested {
		requestedSet[id] = true
	}
	for _, id := range active {
		if !requestedSet[id] {
			res.AutoActivated = append(res.AutoActivated, id)
		}
		ok, err := r.resolve(id)
		if err != nil {
			return Resolution{}, err
		}
		if !ok {
			res.Skipped = append(res.Skipped, id)
			continue
		}
		res.Placements = append(res.Placements, r.resolved[id])
	}
	return res, nil
}

type resolver struct {
	ctx      context.Context
	src      PositionSource
	frame    model.HouseFrame
	at       time.Time
	resolved map[model.PointID]model.Placement
	failed   map[model.PointID]bool
	visiting map[model.PointID]bool
}

func (r *resolver) resolve(id model.PointID) (bool, error) {
	if _, ok := r.resolved[id]; ok {
		return true, nil
	}
	if r.failed[id] {
		return false, nil
	}
	if r.visiting[id] {
		return false, fmt.Errorf("%w: dependency cycle at %s", model.ErrConfiguration, id)
	}
	r.visiting[id] = true
	defer delete(r.visiting, id)

	if d, ok := derivations[id]; ok {
		return r.derive(id, d)
	}

	if id.FromHouseFrame() {
		p, ok := r.frame.Angles[id]
		if !ok {
			r.failed[id] = true
			return false, nil
		}
		p.ID = id
		p.AbsPos = Normalize(p.AbsPos)
		r.resolved[id] = p
		return true, nil
	}

	p, err := r.src.Position(r.ctx, id, r.at)
	if err != nil {
		if errors.Is(err, model.ErrOracleUnavailable) {
			r.failed[id] = true
			return false, nil
		}
		return false, fmt.Errorf("position of %s: %w", id, err)
	}
	p.ID = id
	p.AbsPos = Normalize(p.AbsPos)
	r.resolved[id] = p
	return true, nil
}

func (r *resolver) derive(id model.PointID, d derivation) (bool, error) {
	for _, req := range d.requires {
		ok, err := r.resolve(req)
		if err != nil {
			return false, err
		}
		if !ok {
			r.failed[id] = true
			return false, nil
		}
	}

	day := true
	if d.sect {
		house, err := HouseOf(r.resolved[model.Sun].AbsPos, r.frame.Cusps)
		if err != nil {
			return false, fmt.Errorf("sect of %s: %w", id, err)
		}
		day = IsDayChart(house)
	}

	p := d.compute(r.resolved, day)
	p.ID = id
	r.resolved[id] = p
	return true, nil
}
