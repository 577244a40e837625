package remote

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"astrox/internal/domain/model"
)

type fakeServer struct {
	mu         sync.Mutex
	configured []Request
	staleFirst bool
}

func (f *fakeServer) handle(t *testing.T) http.HandlerFunc {
	upgrader := websocket.Upgrader{}
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade: %v", err)
			return
		}
		defer conn.Close()

		for {
			var req Request
			if err := conn.ReadJSON(&req); err != nil {
				return
			}
			if f.staleFirst && req.Op == OpPosition {
				_ = conn.WriteJSON(Response{ID: req.ID + 100})
			}
			_ = conn.WriteJSON(f.answer(req))
		}
	}
}

func (f *fakeServer) answer(req Request) Response {
	switch req.Op {
	case OpConfigure:
		f.mu.Lock()
		f.configured = append(f.configured, req)
		f.mu.Unlock()
		if req.Context != nil && req.Context.HouseSystem == "Z" {
			return Response{ID: req.ID, Error: "house system Z", Code: CodeConfig}
		}
		return Response{ID: req.ID}
	case OpPosition:
		switch req.Point {
		case model.Sun:
			return Response{ID: req.ID, Placement: &model.Placement{AbsPos: 84.2, Speed: 0.95, Declination: 23.3, HasDecl: true}}
		case model.Chiron:
			return Response{ID: req.ID, Error: "no asteroid file", Code: CodeUnavailable}
		}
		return Response{ID: req.ID, Error: "boom"}
	case OpHouses:
		cusps := make([]float64, 12)
		for i := range cusps {
			cusps[i] = float64(i)*30 + req.Lng
		}
		return Response{ID: req.ID, Cusps: cusps, Angles: map[model.PointID]model.Placement{
			model.Ascendant:   {AbsPos: cusps[0]},
			model.MediumCoeli: {AbsPos: cusps[9]},
		}}
	}
	return Response{ID: req.ID, Error: "unknown op"}
}

func startServer(t *testing.T, f *fakeServer) *Client {
	t.Helper()
	srv := httptest.NewServer(f.handle(t))
	t.Cleanup(srv.Close)
	return New("ws"+strings.TrimPrefix(srv.URL, "http"), 2*time.Second)
}

func TestOpenSendsContextAndFlags(t *testing.T) {
	f := &fakeServer{}
	c := startServer(t, f)

	cc, err := model.ChartContext{Zodiac: model.Sidereal, Perspective: model.Heliocentric}.Validate()
	require.NoError(t, err)

	s, err := c.Open(context.Background(), cc)
	require.NoError(t, err)
	require.NoError(t, s.Close())

	f.mu.Lock()
	defer f.mu.Unlock()
	require.Len(t, f.configured, 1)
	got := f.configured[0]
	require.NotNil(t, got.Context)
	assert.Equal(t, model.DefaultSiderealMode, got.Context.SiderealMode)
	assert.Equal(t, model.FlagSpeed|model.FlagSidereal|model.FlagHeliocentric, got.Flags)
}

func TestOpenConfigError(t *testing.T) {
	c := startServer(t, &fakeServer{})
	cc := model.DefaultContext()
	cc.HouseSystem = "Z"

	_, err := c.Open(context.Background(), cc)
	assert.ErrorIs(t, err, model.ErrConfiguration)
}

func TestPositionAndErrors(t *testing.T) {
	c := startServer(t, &fakeServer{staleFirst: true})
	s, err := c.Open(context.Background(), model.DefaultContext())
	require.NoError(t, err)
	defer s.Close()

	at := time.Date(1990, 6, 15, 8, 30, 0, 0, time.UTC)
	p, err := s.Position(context.Background(), model.Sun, at)
	require.NoError(t, err)
	assert.Equal(t, model.Sun, p.ID)
	assert.Equal(t, 84.2, p.AbsPos)
	assert.True(t, p.HasDecl)

	_, err = s.Position(context.Background(), model.Chiron, at)
	assert.ErrorIs(t, err, model.ErrOracleUnavailable)

	_, err = s.Position(context.Background(), model.Mars, at)
	require.Error(t, err)
	assert.NotErrorIs(t, err, model.ErrOracleUnavailable)
}

func TestHouses(t *testing.T) {
	c := startServer(t, &fakeServer{})
	s, err := c.Open(context.Background(), model.DefaultContext())
	require.NoError(t, err)
	defer s.Close()

	frame, err := s.Houses(context.Background(), time.Now(), model.Location{Latitude: 45, Longitude: 5})
	require.NoError(t, err)
	assert.Equal(t, 5.0, frame.Cusps[0])
	assert.Equal(t, 335.0, frame.Cusps[11])
	assert.Equal(t, model.MediumCoeli, frame.Angles[model.MediumCoeli].ID)
	assert.Equal(t, 275.0, frame.Angles[model.MediumCoeli].AbsPos)
}

func TestClosedSession(t *testing.T) {
	c := startServer(t, &fakeServer{})
	s, err := c.Open(context.Background(), model.DefaultContext())
	require.NoError(t, err)
	require.NoError(t, s.Close())
	require.NoError(t, s.Close())

	_, err = s.Position(context.Background(), model.Sun, time.Now())
	assert.ErrorIs(t, err, ErrSessionClosed)
}

func TestOpenDialFailure(t *testing.T) {
	c := New("ws://127.0.0.1:1/none", 500*time.Millisecond)
	_, err := c.Open(context.Background(), model.DefaultContext())
	assert.Error(t, err)
}
