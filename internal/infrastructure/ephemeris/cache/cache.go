// Package cache memoizes ephemeris answers in redis.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"astrox/internal/application/port"
	"astrox/internal/domain/model"
)

// Ephemeris wraps another ephemeris. Redis failures degrade to a miss.
type Ephemeris struct {
	next   port.Ephemeris
	rdb    redis.Cmdable
	prefix string
	ttl    time.Duration

	hits   atomic.Int64
	misses atomic.Int64
}

func New(next port.Ephemeris, rdb redis.Cmdable, prefix string, ttl time.Duration) *Ephemeris {
	if prefix == "" {
		prefix = "astrox:eph"
	}
	return &Ephemeris{next: next, rdb: rdb, prefix: prefix, ttl: ttl}
}

// Stats returns hit and miss counters.
func (e *Ephemeris) Stats() (hits, misses int64) {
	return e.hits.Load(), e.misses.Load()
}

func (e *Ephemeris) Open(ctx context.Context, cc model.ChartContext) (port.EphemerisSession, error) {
	inner, err := e.next.Open(ctx, cc)
	if err != nil {
		return nil, err
	}
	return &session{e: e, inner: inner, scope: e.prefix + ":" + cc.Key()}, nil
}

type session struct {
	e     *Ephemeris
	inner port.EphemerisSession
	scope string
}

func (s *session) Position(ctx context.Context, id model.PointID, at time.Time) (model.Placement, error) {
	key := fmt.Sprintf("%s:pos:%s:%d", s.scope, id, at.UnixNano())

	var p model.Placement
	if s.load(ctx, key, &p) {
		return p, nil
	}
	p, err := s.inner.Position(ctx, id, at)
	if err != nil {
		return p, err
	}
	s.store(ctx, key, p)
	return p, nil
}

func (s *session) Houses(ctx context.Context, at time.Time, loc model.Location) (model.HouseFrame, error) {
	key := fmt.Sprintf("%s:houses:%.6f,%.6f:%d", s.scope, loc.Latitude, loc.Longitude, at.UnixNano())

	var frame model.HouseFrame
	if s.load(ctx, key, &frame) {
		return frame, nil
	}
	frame, err := s.inner.Houses(ctx, at, loc)
	if err != nil {
		return frame, err
	}
	s.store(ctx, key, frame)
	return frame, nil
}

func (s *session) Close() error {
	return s.inner.Close()
}

func (s *session) load(ctx context.Context, key string, v any) bool {
	b, err := s.e.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			log.Warn().Err(err).Str("key", key).Msg("ephemeris cache read failed")
		}
		s.e.misses.Add(1)
		return false
	}
	if err := json.Unmarshal(b, v); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("ephemeris cache entry corrupt")
		s.e.misses.Add(1)
		return false
	}
	s.e.hits.Add(1)
	return true
}

func (s *session) store(ctx context.Context, key string, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := s.e.rdb.Set(ctx, key, b, s.e.ttl).Err(); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("ephemeris cache write failed")
	}
}

var _ port.Ephemeris = (*Ephemeris)(nil)
