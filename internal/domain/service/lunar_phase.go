package service

import (
	"math"

	"astrox/internal/domain/model"
)

// sunSteps are the lower bounds of the 28 solar phase steps.
var sunSteps = [28]float64{
	0, 30, 40, 50, 60, 70, 80, 90, 120, 130, 140, 150, 160, 170,
	180, 210, 220, 230, 240, 250, 260, 270, 300, 310, 320, 330, 340, 350,
}

// LunarPhaseOf computes the lunar phase from Sun and Moon longitudes.
func LunarPhaseOf(sun, moon float64) model.LunarPhase {
	between := Normalize(moon - sun)

	moonPhase := int(math.Floor(between/(fullCircle/28))) + 1
	if moonPhase > 28 {
		moonPhase = 28
	}

	sunPhase := 1
	for i, step := range sunSteps {
		if between >= step {
			sunPhase = i + 1
		}
	}

	name, emoji := phaseName(moonPhase)
	return model.LunarPhase{
		DegreesBetween: between,
		MoonPhase:      moonPhase,
		SunPhase:       sunPhase,
		Name:           name,
		Emoji:          emoji,
	}
}

func phaseName(phase int) (string, string) {
	switch {
	case phase == 1:
		return "New Moon", "🌑"
	case phase < 7:
		return "Waxing Crescent", "🌒"
	case phase < 10:
		return "First Quarter", "🌓"
	case phase < 14:
		return "Waxing Gibbous", "🌔"
	case phase == 14:
		return "Full Moon", "🌕"
	case phase < 20:
		return "Waning Gibbous", "🌖"
	case phase < 23:
		return "Last Quarter", "🌗"
	default:
		return "Waning Crescent", "🌘"
	}
}
