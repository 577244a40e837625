package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"astrox/internal/application/port"
	"astrox/internal/domain/model"
)

var ErrChartNotFound = errors.New("chart not found")

type Repo struct {
	rdb         *redis.Client
	prefix      string
	ttl         time.Duration
	keyCharts   string // prefix + ":charts"
	eventStream string
	eventChan   string
}

// ChartEvent is published whenever a chart or its aspects are stored.
type ChartEvent struct {
	Event   string          `json:"event"`
	ChartID string          `json:"chart_id"`
	Name    string          `json:"name,omitempty"`
	Kind    model.ChartKind `json:"kind,omitempty"`
	Count   int             `json:"count,omitempty"`
	Ts      int64           `json:"ts_ms"`
}

const (
	EventChartSaved   = "chart_saved"
	EventAspectsSaved = "aspects_saved"
)

func New(rdb *redis.Client, prefix string, ttl time.Duration, eventStream, eventChan string) *Repo {
	if strings.TrimSpace(eventStream) == "" {
		eventStream = prefix + ":events"
	}
	if strings.TrimSpace(eventChan) == "" {
		eventChan = prefix + ":events:pub"
	}
	return &Repo{
		rdb:         rdb,
		prefix:      prefix,
		ttl:         ttl,
		keyCharts:   prefix + ":charts",
		eventStream: eventStream,
		eventChan:   eventChan,
	}
}

func (r *Repo) aspectsKey(chartID string) string {
	return fmt.Sprintf("%s:aspects:%s", r.prefix, chartID)
}

func (r *Repo) SaveChart(ctx context.Context, c *model.Chart) error {
	b, err := json.Marshal(c)
	if err != nil {
		return err
	}

	// Hash: field = chart id -> json
	pipe := r.rdb.Pipeline()
	pipe.HSet(ctx, r.keyCharts, c.ID, string(b))
	if r.ttl > 0 {
		pipe.Expire(ctx, r.keyCharts, r.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return err
	}
	return r.emit(ctx, ChartEvent{Event: EventChartSaved, ChartID: c.ID, Name: c.Name, Kind: c.Kind})
}

// SaveAspects replaces the aspect list of chartID.
func (r *Repo) SaveAspects(ctx context.Context, chartID string, aspects []model.AspectResult) error {
	key := r.aspectsKey(chartID)
	pipe := r.rdb.TxPipeline()
	pipe.Del(ctx, key)
	for _, a := range aspects {
		b, _ := json.Marshal(a)
		pipe.RPush(ctx, key, string(b))
	}
	if r.ttl > 0 && len(aspects) > 0 {
		pipe.Expire(ctx, key, r.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return err
	}
	return r.emit(ctx, ChartEvent{Event: EventAspectsSaved, ChartID: chartID, Count: len(aspects)})
}

func (r *Repo) LoadChart(ctx context.Context, id string) (*model.Chart, error) {
	s, err := r.rdb.HGet(ctx, r.keyCharts, id).Result()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("%s: %w", id, ErrChartNotFound)
	}
	if err != nil {
		return nil, err
	}
	var c model.Chart
	if err := json.Unmarshal([]byte(s), &c); err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *Repo) LoadAspects(ctx context.Context, chartID string) ([]model.AspectResult, error) {
	items, err := r.rdb.LRange(ctx, r.aspectsKey(chartID), 0, -1).Result()
	if err != nil {
		return nil, err
	}
	out := make([]model.AspectResult, 0, len(items))
	for _, s := range items {
		var a model.AspectResult
		if err := json.Unmarshal([]byte(s), &a); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, nil
}

func (r *Repo) emit(ctx context.Context, ev ChartEvent) error {
	ev.Ts = time.Now().UnixMilli()

	// 1) Stream: XADD <stream> * event chart_id ...
	_, err := r.rdb.XAdd(ctx, &redis.XAddArgs{
		Stream: r.eventStream,
		Values: map[string]any{
			"event":    ev.Event,
			"chart_id": ev.ChartID,
			"name":     ev.Name,
			"kind":     string(ev.Kind),
			"count":    ev.Count,
			"ts_ms":    ev.Ts,
		},
	}).Result()
	if err != nil {
		return err
	}

	// 2) PubSub: PUBLISH <channel> json
	b, _ := json.Marshal(ev)
	return r.rdb.Publish(ctx, r.eventChan, string(b)).Err()
}

// Close is a no-op; the client is owned by the container.
func (r *Repo) Close() error { return nil }

var _ port.ChartStore = (*Repo)(nil)
