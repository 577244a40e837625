package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"astrox/internal/domain/model"
)

func TestHouseOfEvenCusps(t *testing.T) {
	cusps := evenCusps(0)
	cases := []struct {
		pos  float64
		want int
	}{
		{15, 1},
		{29.999, 1},
		{30.0, 2},
		{0, 1},
		{359.9, 12},
		{180, 7},
		{-15, 12},
	}
	for _, tc := range cases {
		got, err := HouseOf(tc.pos, cusps)
		require.NoError(t, err, "pos %v", tc.pos)
		assert.Equal(t, tc.want, got, "pos %v", tc.pos)
	}
}

func TestHouseOfCuspsAcrossZero(t *testing.T) {
	cusps := model.HouseCusps{350, 15, 42, 70, 101, 133, 170, 195, 222, 250, 281, 313}
	for pos, want := range map[float64]int{355: 1, 5: 1, 15: 2, 349.99: 12, 170: 7} {
		got, err := HouseOf(pos, cusps)
		require.NoError(t, err)
		assert.Equal(t, want, got, "pos %v", pos)
	}
}

func TestHouseOfBrokenCusps(t *testing.T) {
	var cusps model.HouseCusps // every house is empty
	_, err := HouseOf(12, cusps)
	assert.ErrorIs(t, err, model.ErrHouseAssignment)
}

func TestAnnotate(t *testing.T) {
	cusps := evenCusps(0)

	mars, err := Annotate(model.Placement{ID: model.Mars, AbsPos: 405, Speed: -0.3}, cusps)
	require.NoError(t, err)
	assert.Equal(t, 45.0, mars.AbsPos)
	assert.Equal(t, 2, mars.House)
	assert.True(t, mars.Retrograde)
	assert.Equal(t, "Tau", mars.Sign.Name)
	assert.Equal(t, model.ElementEarth, mars.Sign.Element)
	assert.InDelta(t, 15, mars.SignPosition, 1e-9)

	asc, err := Annotate(model.Placement{ID: model.Ascendant, AbsPos: 0, Speed: -1}, cusps)
	require.NoError(t, err)
	assert.False(t, asc.Retrograde, "angles are never retrograde")

	pof, err := Annotate(model.Placement{ID: model.ParsFortunae, AbsPos: 300, Speed: -1}, cusps)
	require.NoError(t, err)
	assert.False(t, pof.Retrograde, "parts are never retrograde")
	assert.Equal(t, 11, pof.House)
	assert.Equal(t, "Aqu", pof.Sign.Name)
}

func TestSignOf(t *testing.T) {
	s, pos := SignOf(359.5)
	assert.Equal(t, "Pis", s.Name)
	assert.Equal(t, model.Mutable, s.Quality)
	assert.InDelta(t, 29.5, pos, 1e-9)

	s, pos = SignOf(0)
	assert.Equal(t, "Ari", s.Name)
	assert.Equal(t, 0.0, pos)
}
