package console

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"astrox/internal/domain/model"
)

func TestDegrees(t *testing.T) {
	assert.Equal(t, "24°12'", Degrees(24.2))
	assert.Equal(t, " 0°00'", Degrees(0))
	assert.Equal(t, "12°59'", Degrees(12.9999))
	assert.Equal(t, "29°59'", Degrees(29.9999))
	assert.Equal(t, " 7°30'", Degrees(7.5))
}

func TestPlainSinkChart(t *testing.T) {
	var buf bytes.Buffer
	sink := NewPlainSink(&buf)

	c := &model.Chart{
		Name:     "John",
		Kind:     model.KindNatal,
		Context:  model.DefaultContext(),
		Instant:  time.Date(1990, 6, 15, 8, 30, 0, 0, time.UTC),
		Location: model.Location{Name: "Rome", Latitude: 41.9, Longitude: 12.5},
		Points: []model.Point{
			{Placement: model.Placement{ID: model.Mars, AbsPos: 2.5, Speed: -0.2}, House: 12, Retrograde: true,
				Sign: model.Sign{Name: "Ari"}, SignPosition: 2.5},
		},
		Phase:   &model.LunarPhase{Name: "Full Moon", MoonPhase: 15},
		Skipped: []model.PointID{model.Chiron},
	}
	require.NoError(t, sink.WriteChart(c))

	out := buf.String()
	assert.NotContains(t, out, "\033[")
	assert.Contains(t, out, "John  Natal  1990-06-15 08:30 UTC  Rome")
	assert.Contains(t, out, "Mars")
	assert.Contains(t, out, " 2°30' Ari R")
	assert.Contains(t, out, "house 12")
	assert.Contains(t, out, "Full Moon (15/28)")
	assert.Contains(t, out, "skipped [Chiron]")
}

func TestPlainSinkAspects(t *testing.T) {
	var buf bytes.Buffer
	sink := NewPlainSink(&buf)

	aspects := []model.AspectResult{
		{P1: model.Sun, P2: model.Moon, P1Owner: "A", P2Owner: "B", Aspect: "trine", SignedOrb: -1.5, Movement: model.Applying, Major: true},
	}
	require.NoError(t, sink.WriteAspects("Synastry", aspects))
	require.NoError(t, sink.WriteOverlay("A in B", []model.HouseOverlayEntry{
		{Point: model.Sun, Owner: "A", OwnHouse: 10, ProjectedOwner: "B", ProjectedHouse: 4},
	}))
	require.NoError(t, sink.NewLine())

	lines := strings.Split(buf.String(), "\n")
	assert.Equal(t, "[ASTROX] Synastry (1)", lines[0])
	assert.Contains(t, lines[1], "A.Sun")
	assert.Contains(t, lines[1], "B.Moon")
	assert.Contains(t, lines[1], "orb  -1.50")
	assert.Contains(t, lines[1], "Applying")
	assert.Contains(t, lines[3], "A.Sun")
	assert.Contains(t, lines[3], "house 10 -> B house  4")
}

func TestColorFormatter(t *testing.T) {
	f := NewFormatter(true)
	out := f.Aspects("x", []model.AspectResult{{P1: model.Sun, P2: model.Mars, Aspect: "square", Movement: model.Separating, Major: true}})
	assert.Contains(t, out, ansiRed+"Separating"+ansiReset)
}
