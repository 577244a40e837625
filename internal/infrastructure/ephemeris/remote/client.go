// Package remote talks to an ephemeris server over a websocket.
//
// Each session owns one connection. The first frame configures the
// calculation context; every later frame is a request answered by a
// response carrying the same id.
package remote

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"astrox/internal/application/port"
	"astrox/internal/domain/model"
)

const (
	OpConfigure = "configure"
	OpPosition  = "position"
	OpHouses    = "houses"
)

// error codes returned by the server
const (
	CodeUnavailable = "unavailable"
	CodeConfig      = "config"
)

var ErrSessionClosed = errors.New("ephemeris session closed")

type Request struct {
	ID      uint64              `json:"id"`
	Op      string              `json:"op"`
	Context *model.ChartContext `json:"context,omitempty"`
	Flags   model.CalcFlags     `json:"flags,omitempty"`
	Point   model.PointID       `json:"point,omitempty"`
	Time    *time.Time          `json:"time,omitempty"`
	Lat     float64             `json:"lat,omitempty"`
	Lng     float64             `json:"lng,omitempty"`
}

type Response struct {
	ID        uint64                            `json:"id"`
	Error     string                            `json:"error,omitempty"`
	Code      string                            `json:"code,omitempty"`
	Placement *model.Placement                  `json:"placement,omitempty"`
	Cusps     []float64                         `json:"cusps,omitempty"`
	Angles    map[model.PointID]model.Placement `json:"angles,omitempty"`
}

type Client struct {
	url     string
	timeout time.Duration
	dialer  *websocket.Dialer
}

func New(url string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		url:     strings.TrimSpace(url),
		timeout: timeout,
		dialer:  websocket.DefaultDialer,
	}
}

func (c *Client) Open(ctx context.Context, cc model.ChartContext) (port.EphemerisSession, error) {
	if c.url == "" {
		return nil, errors.New("ephemeris url empty")
	}

	dctx, cancel := context.WithTimeout(ctx, c.timeout)
	conn, _, err := c.dialer.DialContext(dctx, c.url, nil)
	cancel()
	if err != nil {
		return nil, fmt.Errorf("dial ephemeris: %w", err)
	}

	s := &session{conn: conn, timeout: c.timeout}
	if _, err := s.roundTrip(ctx, Request{Op: OpConfigure, Context: &cc, Flags: model.FlagsFor(cc)}); err != nil {
		_ = conn.Close()
		return nil, err
	}
	log.Debug().Str("url", c.url).Str("context", cc.Key()).Msg("ephemeris session opened")
	return s, nil
}

type session struct {
	mu      sync.Mutex
	conn    *websocket.Conn
	timeout time.Duration
	nextID  uint64
	closed  bool
}

func (s *session) Position(ctx context.Context, id model.PointID, at time.Time) (model.Placement, error) {
	at = at.UTC()
	resp, err := s.roundTrip(ctx, Request{Op: OpPosition, Point: id, Time: &at})
	if err != nil {
		return model.Placement{}, fmt.Errorf("%s: %w", id, err)
	}
	if resp.Placement == nil {
		return model.Placement{}, fmt.Errorf("%s: empty placement", id)
	}
	p := *resp.Placement
	p.ID = id
	return p, nil
}

func (s *session) Houses(ctx context.Context, at time.Time, loc model.Location) (model.HouseFrame, error) {
	at = at.UTC()
	resp, err := s.roundTrip(ctx, Request{Op: OpHouses, Time: &at, Lat: loc.Latitude, Lng: loc.Longitude})
	if err != nil {
		return model.HouseFrame{}, err
	}
	if len(resp.Cusps) != 12 {
		return model.HouseFrame{}, fmt.Errorf("houses: got %d cusps", len(resp.Cusps))
	}

	var frame model.HouseFrame
	copy(frame.Cusps[:], resp.Cusps)
	frame.Angles = make(map[model.PointID]model.Placement, len(resp.Angles))
	for id, p := range resp.Angles {
		p.ID = id
		frame.Angles[id] = p
	}
	return frame, nil
}

func (s *session) roundTrip(ctx context.Context, req Request) (Response, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return Response{}, ErrSessionClosed
	}

	deadline := time.Now().Add(s.timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	_ = s.conn.SetWriteDeadline(deadline)
	_ = s.conn.SetReadDeadline(deadline)

	s.nextID++
	req.ID = s.nextID
	if err := s.conn.WriteJSON(req); err != nil {
		return Response{}, fmt.Errorf("write %s: %w", req.Op, err)
	}

	for {
		if err := ctx.Err(); err != nil {
			return Response{}, err
		}
		var resp Response
		if err := s.conn.ReadJSON(&resp); err != nil {
			return Response{}, fmt.Errorf("read %s: %w", req.Op, err)
		}
		if resp.ID != req.ID {
			log.Warn().Uint64("want", req.ID).Uint64("got", resp.ID).Msg("ephemeris: stale response dropped")
			continue
		}
		if resp.Error != "" {
			switch resp.Code {
			case CodeUnavailable:
				return resp, fmt.Errorf("%s: %w", resp.Error, model.ErrOracleUnavailable)
			case CodeConfig:
				return resp, fmt.Errorf("%w: %s", model.ErrConfiguration, resp.Error)
			}
			return resp, errors.New(resp.Error)
		}
		return resp, nil
	}
}

func (s *session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	_ = s.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second))
	return s.conn.Close()
}

var _ port.Ephemeris = (*Client)(nil)
