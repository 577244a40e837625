package service

import (
	"fmt"

	"astrox/internal/domain/model"
)

// MidpointComposite merges two resolved charts into a midpoint chart.
// Only points present in both charts are kept, in the order of a. Houses
// are re-derived from the averaged cusps and the lunar phase from the
// averaged Sun and Moon.
func MidpointComposite(a, b *model.Chart) (*model.Chart, error) {
	if !a.Context.Compatible(b.Context) {
		return nil, fmt.Errorf("%w: %s vs %s", model.ErrIncompatibleCharts, a.Context.Key(), b.Context.Key())
	}

	var cusps model.HouseCusps
	for i := range cusps {
		cusps[i] = CircularMean(a.Cusps[i], b.Cusps[i])
	}
	cusps = CircularSort(cusps)

	out := &model.Chart{
		Name:    a.Name + " and " + b.Name + " Composite Chart",
		Kind:    model.KindComposite,
		Context: a.Context,
		Cusps:   cusps,
		Points:  make([]model.Point, 0, len(a.Points)),
	}

	for _, pa := range a.Points {
		pb, ok := b.Point(pa.ID)
		if !ok {
			continue
		}
		raw := model.Placement{
			ID:     pa.ID,
			AbsPos: CircularMean(pa.AbsPos, pb.AbsPos),
			Speed:  (pa.Speed + pb.Speed) / 2,
		}
		if pa.HasDecl && pb.HasDecl {
			raw.Declination = (pa.Declination + pb.Declination) / 2
			raw.HasDecl = true
		}
		p, err := Annotate(raw, cusps)
		if err != nil {
			return nil, err
		}
		out.Points = append(out.Points, p)
	}

	sun, okSun := out.Point(model.Sun)
	moon, okMoon := out.Point(model.Moon)
	if okSun && okMoon {
		phase := LunarPhaseOf(sun.AbsPos, moon.AbsPos)
		out.Phase = &phase
	}
	return out, nil
}

// HouseOverlay places every point of from into the houses of into.
func HouseOverlay(from, into *model.Chart) ([]model.HouseOverlayEntry, error) {
	out := make([]model.HouseOverlayEntry, 0, len(from.Points))
	for _, p := range from.Points {
		house, err := HouseOf(p.AbsPos, into.Cusps)
		if err != nil {
			return nil, fmt.Errorf("%s in %s: %w", p.ID, into.Name, err)
		}
		out = append(out, model.HouseOverlayEntry{
			Point:          p.ID,
			Owner:          from.Name,
			AbsPos:         p.AbsPos,
			OwnHouse:       p.House,
			ProjectedOwner: into.Name,
			ProjectedHouse: house,
		})
	}
	return out, nil
}
