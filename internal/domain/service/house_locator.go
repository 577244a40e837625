package service

import (
	"fmt"
	"math"

	"astrox/internal/domain/model"
)

// HouseOf returns the house (1..12) containing pos. A position exactly on a
// cusp belongs to the house that cusp opens.
func HouseOf(pos float64, cusps model.HouseCusps) (int, error) {
	for i := range cusps {
		if IsBetween(cusps[i], cusps[(i+1)%len(cusps)], pos) {
			return i + 1, nil
		}
	}
	return 0, fmt.Errorf("%w: %.6f not inside any house of %v", model.ErrHouseAssignment, pos, cusps)
}

// Annotate builds the final Point for a placement: house, retrograde flag
// and sign. Chart angles and symbolic parts are never retrograde.
func Annotate(p model.Placement, cusps model.HouseCusps) (model.Point, error) {
	p.AbsPos = Normalize(p.AbsPos)
	house, err := HouseOf(p.AbsPos, cusps)
	if err != nil {
		return model.Point{}, fmt.Errorf("%s: %w", p.ID, err)
	}
	sign, within := SignOf(p.AbsPos)
	return model.Point{
		Placement:    p,
		House:        house,
		Retrograde:   p.Speed < 0 && !p.ID.Axial() && !p.ID.Part(),
		Sign:         sign,
		SignPosition: within,
	}, nil
}

var signs = [12]model.Sign{
	{Name: "Ari", Num: 0, Element: model.ElementFire, Quality: model.Cardinal},
	{Name: "Tau", Num: 1, Element: model.ElementEarth, Quality: model.FixedQ},
	{Name: "Gem", Num: 2, Element: model.ElementAir, Quality: model.Mutable},
	{Name: "Can", Num: 3, Element: model.ElementWater, Quality: model.Cardinal},
	{Name: "Leo", Num: 4, Element: model.ElementFire, Quality: model.FixedQ},
	{Name: "Vir", Num: 5, Element: model.ElementEarth, Quality: model.Mutable},
	{Name: "Lib", Num: 6, Element: model.ElementAir, Quality: model.Cardinal},
	{Name: "Sco", Num: 7, Element: model.ElementWater, Quality: model.FixedQ},
	{Name: "Sag", Num: 8, Element: model.ElementFire, Quality: model.Mutable},
	{Name: "Cap", Num: 9, Element: model.ElementEarth, Quality: model.Cardinal},
	{Name: "Aqu", Num: 10, Element: model.ElementAir, Quality: model.FixedQ},
	{Name: "Pis", Num: 11, Element: model.ElementWater, Quality: model.Mutable},
}

// SignOf returns the sign of a longitude and the position inside it.
func SignOf(abs float64) (model.Sign, float64) {
	abs = Normalize(abs)
	idx := int(math.Floor(abs / 30))
	if idx > 11 {
		idx = 11
	}
	return signs[idx], abs - float64(idx)*30
}
