package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"astrox/internal/domain/model"
)

type stubSource struct {
	positions map[model.PointID]model.Placement
	fail      map[model.PointID]error
	calls     map[model.PointID]int
}

func newStubSource(pos map[model.PointID]float64) *stubSource {
	s := &stubSource{
		positions: make(map[model.PointID]model.Placement),
		fail:      make(map[model.PointID]error),
		calls:     make(map[model.PointID]int),
	}
	for id, lon := range pos {
		s.positions[id] = model.Placement{AbsPos: lon, Speed: 1}
	}
	return s
}

func (s *stubSource) Position(_ context.Context, id model.PointID, _ time.Time) (model.Placement, error) {
	s.calls[id]++
	if err, ok := s.fail[id]; ok {
		return model.Placement{}, err
	}
	p, ok := s.positions[id]
	if !ok {
		return model.Placement{}, fmt.Errorf("%s: %w", id, model.ErrOracleUnavailable)
	}
	return p, nil
}

func frameAt(asc float64) model.HouseFrame {
	return model.HouseFrame{
		Cusps: evenCusps(asc),
		Angles: map[model.PointID]model.Placement{
			model.Ascendant:   {AbsPos: asc, Speed: 360},
			model.MediumCoeli: {AbsPos: Normalize(asc + 270), Speed: 360},
			model.Vertex:      {AbsPos: Normalize(asc + 200)},
		},
	}
}

func ids(ps []model.Placement) []model.PointID {
	out := make([]model.PointID, len(ps))
	for i, p := range ps {
		out[i] = p.ID
	}
	return out
}

func placement(t *testing.T, res Resolution, id model.PointID) model.Placement {
	t.Helper()
	for _, p := range res.Placements {
		if p.ID == id {
			return p
		}
	}
	t.Fatalf("placement %s not resolved", id)
	return model.Placement{}
}

func TestExpand(t *testing.T) {
	req := []model.PointID{model.ParsFortunae}
	got := Expand(req)

	assert.Equal(t, []model.PointID{model.ParsFortunae, model.Ascendant, model.Sun, model.Moon}, got)
	assert.Equal(t, []model.PointID{model.ParsFortunae}, req, "request is not modified")
	assert.Equal(t, got, Expand(got), "expansion is idempotent")

	got = Expand([]model.PointID{model.Sun, model.Descendant, model.Sun, model.ParsAmoris, model.ParsFortunae})
	assert.Equal(t, []model.PointID{
		model.Sun, model.Descendant, model.ParsAmoris, model.ParsFortunae,
		model.Ascendant, model.Venus, model.Moon,
	}, got)
}

func TestPrerequisites(t *testing.T) {
	assert.Equal(t, []model.PointID{model.Ascendant, model.Jupiter, model.Saturn}, Prerequisites(model.ParsFidei))
	assert.Equal(t, []model.PointID{model.Ascendant, model.Venus, model.Sun}, Prerequisites(model.ParsAmoris))
	for _, id := range []model.PointID{model.ParsFortunae, model.ParsSpiritus} {
		assert.Equal(t, []model.PointID{model.Ascendant, model.Sun, model.Moon}, Prerequisites(id), id)
	}
	assert.Equal(t, []model.PointID{model.TrueNode}, Prerequisites(model.TrueSouthNode))
	assert.Nil(t, Prerequisites(model.Mars))
	assert.True(t, IsDerived(model.ImumCoeli))
	assert.False(t, IsDerived(model.Ascendant))
}

func TestResolvePartOfFortuneOnly(t *testing.T) {
	src := newStubSource(map[model.PointID]float64{model.Sun: 200, model.Moon: 150})
	res, err := ResolvePoints(context.Background(), src, frameAt(0), time.Time{}, []model.PointID{model.ParsFortunae})
	require.NoError(t, err)

	counts := map[model.PointID]int{}
	for _, p := range res.Placements {
		counts[p.ID]++
	}
	assert.Equal(t, map[model.PointID]int{
		model.Ascendant: 1, model.Sun: 1, model.Moon: 1, model.ParsFortunae: 1,
	}, counts)
	assert.Equal(t, []model.PointID{model.Ascendant, model.Sun, model.Moon}, res.AutoActivated)
	assert.Empty(t, res.Skipped)
	assert.Equal(t, 1, src.calls[model.Sun])
	assert.Equal(t, 1, src.calls[model.Moon])
	assert.Zero(t, src.calls[model.Ascendant], "angles come from the house frame")
}

func TestResolvePartsBySect(t *testing.T) {
	parts := []model.PointID{model.ParsFortunae, model.ParsSpiritus}

	// Sun in the 7th house: day chart
	day := newStubSource(map[model.PointID]float64{model.Sun: 200, model.Moon: 150})
	res, err := ResolvePoints(context.Background(), day, frameAt(0), time.Time{}, parts)
	require.NoError(t, err)
	assert.InDelta(t, 310, placement(t, res, model.ParsFortunae).AbsPos, 1e-9)
	assert.InDelta(t, 50, placement(t, res, model.ParsSpiritus).AbsPos, 1e-9)

	// Sun in the 4th house: night chart
	night := newStubSource(map[model.PointID]float64{model.Sun: 100, model.Moon: 150})
	res, err = ResolvePoints(context.Background(), night, frameAt(0), time.Time{}, parts)
	require.NoError(t, err)
	assert.InDelta(t, 310, placement(t, res, model.ParsFortunae).AbsPos, 1e-9)
	assert.InDelta(t, 50, placement(t, res, model.ParsSpiritus).AbsPos, 1e-9)
}

func TestResolveAmorisAndFidei(t *testing.T) {
	src := newStubSource(map[model.PointID]float64{
		model.Sun: 100, model.Venus: 130, model.Jupiter: 10, model.Saturn: 350,
	})
	res, err := ResolvePoints(context.Background(), src, frameAt(20), time.Time{},
		[]model.PointID{model.ParsAmoris, model.ParsFidei})
	require.NoError(t, err)

	amoris := placement(t, res, model.ParsAmoris)
	assert.InDelta(t, 50, amoris.AbsPos, 1e-9)
	assert.Zero(t, amoris.Speed)
	assert.InDelta(t, 40, placement(t, res, model.ParsFidei).AbsPos, 1e-9)
}

func TestResolveOppositePoints(t *testing.T) {
	src := newStubSource(nil)
	src.positions[model.TrueNode] = model.Placement{AbsPos: 10, Speed: -0.05, Declination: 3, HasDecl: true}

	res, err := ResolvePoints(context.Background(), src, frameAt(95), time.Time{},
		[]model.PointID{model.TrueSouthNode, model.Descendant, model.ImumCoeli, model.AntiVertex})
	require.NoError(t, err)

	south := placement(t, res, model.TrueSouthNode)
	assert.InDelta(t, 190, south.AbsPos, 1e-9)
	assert.Equal(t, -0.05, south.Speed)
	assert.Equal(t, -3.0, south.Declination)

	assert.InDelta(t, 275, placement(t, res, model.Descendant).AbsPos, 1e-9)
	assert.InDelta(t, 185, placement(t, res, model.ImumCoeli).AbsPos, 1e-9)
	assert.InDelta(t, 115, placement(t, res, model.AntiVertex).AbsPos, 1e-9)

	cusps := evenCusps(95)
	node, err := Annotate(placement(t, res, model.TrueNode), cusps)
	require.NoError(t, err)
	sn, err := Annotate(south, cusps)
	require.NoError(t, err)
	assert.True(t, node.Retrograde)
	assert.True(t, sn.Retrograde, "south node follows the node")
}

func TestResolveDropsUnavailablePoints(t *testing.T) {
	src := newStubSource(map[model.PointID]float64{model.Sun: 200, model.Mars: 33})
	req := []model.PointID{model.Sun, model.Chiron, model.Mars, model.ParsFortunae}

	res, err := ResolvePoints(context.Background(), src, frameAt(0), time.Time{}, req)
	require.NoError(t, err)

	assert.Equal(t, []model.PointID{model.Sun, model.Mars, model.Ascendant}, ids(res.Placements))
	assert.ElementsMatch(t, []model.PointID{model.Chiron, model.ParsFortunae, model.Moon}, res.Skipped)
	assert.Equal(t, 1, src.calls[model.Moon], "a failed point is not queried again")
}

func TestResolveFatalOracleError(t *testing.T) {
	src := newStubSource(map[model.PointID]float64{model.Sun: 1})
	boom := errors.New("connection reset")
	src.fail[model.Moon] = boom

	_, err := ResolvePoints(context.Background(), src, frameAt(0), time.Time{},
		[]model.PointID{model.Sun, model.Moon})
	assert.ErrorIs(t, err, boom)
}

func TestResolveUnknownPoint(t *testing.T) {
	_, err := ResolvePoints(context.Background(), newStubSource(nil), frameAt(0), time.Time{},
		[]model.PointID{"Nibiru"})
	assert.ErrorIs(t, err, model.ErrConfiguration)
}

func TestIsDayChart(t *testing.T) {
	for h := 1; h <= 6; h++ {
		assert.False(t, IsDayChart(h), "house %d", h)
	}
	for h := 7; h <= 12; h++ {
		assert.True(t, IsDayChart(h), "house %d", h)
	}
}
