package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"astrox/internal/application/port"
	"astrox/internal/domain/model"
	dsvc "astrox/internal/domain/service"
)

var ErrChartNotFound = errors.New("chart not found")

type Repo struct {
	db *sql.DB
}

func New(path string) (*Repo, error) {
	// ensure directory exists
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		_ = os.MkdirAll(dir, 0o755)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)

	r := &Repo{db: db}
	if err := r.migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return r, nil
}

func (r *Repo) Close() error { return r.db.Close() }

func (r *Repo) migrate(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS charts (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  kind TEXT NOT NULL,
  context TEXT NOT NULL,
  instant_ms INTEGER NOT NULL,
  location TEXT NOT NULL,
  cusps TEXT NOT NULL,
  phase TEXT,
  created_at INTEGER NOT NULL,
  updated_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_charts_name ON charts(name);
CREATE INDEX IF NOT EXISTS idx_charts_instant ON charts(instant_ms);

CREATE TABLE IF NOT EXISTS chart_points (
  chart_id TEXT NOT NULL,
  ord INTEGER NOT NULL,
  point TEXT NOT NULL,
  abs_pos REAL NOT NULL,
  speed REAL NOT NULL,
  declination REAL NOT NULL,
  has_decl INTEGER NOT NULL,
  house INTEGER NOT NULL,
  retrograde INTEGER NOT NULL,
  PRIMARY KEY(chart_id, point)
);

CREATE TABLE IF NOT EXISTS aspects (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  chart_id TEXT NOT NULL,
  p1 TEXT NOT NULL,
  p2 TEXT NOT NULL,
  p1_owner TEXT NOT NULL,
  p2_owner TEXT NOT NULL,
  p1_pos REAL NOT NULL,
  p2_pos REAL NOT NULL,
  aspect TEXT NOT NULL,
  exact_degree REAL NOT NULL,
  separation REAL NOT NULL,
  orb REAL NOT NULL,
  movement TEXT NOT NULL,
  major INTEGER NOT NULL,
  created_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_aspects_chart ON aspects(chart_id);
`)
	return err
}

func (r *Repo) SaveChart(ctx context.Context, c *model.Chart) error {
	if c.ID == "" {
		return errors.New("chart id empty")
	}
	cc, _ := json.Marshal(c.Context)
	loc, _ := json.Marshal(c.Location)
	cusps, _ := json.Marshal(c.Cusps)
	var phase sql.NullString
	if c.Phase != nil {
		b, _ := json.Marshal(c.Phase)
		phase = sql.NullString{String: string(b), Valid: true}
	}
	now := time.Now().UnixMilli()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO charts(id, name, kind, context, instant_ms, location, cusps, phase, created_at, updated_at)
		VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
		name=excluded.name, kind=excluded.kind, context=excluded.context, instant_ms=excluded.instant_ms,
		location=excluded.location, cusps=excluded.cusps, phase=excluded.phase, updated_at=excluded.updated_at
	`, c.ID, c.Name, string(c.Kind), string(cc), c.Instant.UnixMilli(), string(loc), string(cusps), phase, now, now)
	if err != nil {
		return fmt.Errorf("upsert chart: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM chart_points WHERE chart_id=?`, c.ID); err != nil {
		return err
	}
	for i, p := range c.Points {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO chart_points(chart_id, ord, point, abs_pos, speed, declination, has_decl, house, retrograde)
			VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, c.ID, i, string(p.ID), p.AbsPos, p.Speed, p.Declination, p.HasDecl, p.House, p.Retrograde)
		if err != nil {
			return fmt.Errorf("insert point %s: %w", p.ID, err)
		}
	}
	return tx.Commit()
}

// SaveAspects replaces the aspects stored for chartID.
func (r *Repo) SaveAspects(ctx context.Context, chartID string, aspects []model.AspectResult) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM aspects WHERE chart_id=?`, chartID); err != nil {
		return err
	}

	now := time.Now().UnixMilli()
	for _, a := range aspects {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO aspects(chart_id, p1, p2, p1_owner, p2_owner, p1_pos, p2_pos, aspect, exact_degree, separation, orb, movement, major, created_at)
			VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, chartID, string(a.P1), string(a.P2), a.P1Owner, a.P2Owner, a.P1Pos, a.P2Pos, a.Aspect,
			a.ExactDegree, a.Separation, a.SignedOrb, string(a.Movement), a.Major, now)
		if err != nil {
			return fmt.Errorf("insert aspect %s-%s: %w", a.P1, a.P2, err)
		}
	}
	return tx.Commit()
}

func (r *Repo) LoadChart(ctx context.Context, id string) (*model.Chart, error) {
	var (
		c                    model.Chart
		kind, cc, loc, cusps string
		instant              int64
		phase                sql.NullString
	)
	err := r.db.QueryRowContext(ctx, `
		SELECT id, name, kind, context, instant_ms, location, cusps, phase FROM charts WHERE id=?
	`, id).Scan(&c.ID, &c.Name, &kind, &cc, &instant, &loc, &cusps, &phase)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", id, ErrChartNotFound)
	}
	if err != nil {
		return nil, err
	}

	c.Kind = model.ChartKind(kind)
	c.Instant = time.UnixMilli(instant).UTC()
	if err := json.Unmarshal([]byte(cc), &c.Context); err != nil {
		return nil, fmt.Errorf("decode context: %w", err)
	}
	if err := json.Unmarshal([]byte(loc), &c.Location); err != nil {
		return nil, fmt.Errorf("decode location: %w", err)
	}
	if err := json.Unmarshal([]byte(cusps), &c.Cusps); err != nil {
		return nil, fmt.Errorf("decode cusps: %w", err)
	}
	if phase.Valid {
		c.Phase = &model.LunarPhase{}
		if err := json.Unmarshal([]byte(phase.String), c.Phase); err != nil {
			return nil, fmt.Errorf("decode phase: %w", err)
		}
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT point, abs_pos, speed, declination, has_decl, house, retrograde
		FROM chart_points WHERE chart_id=? ORDER BY ord
	`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var p model.Point
		var point string
		if err := rows.Scan(&point, &p.AbsPos, &p.Speed, &p.Declination, &p.HasDecl, &p.House, &p.Retrograde); err != nil {
			return nil, err
		}
		p.ID = model.PointID(point)
		p.Sign, p.SignPosition = dsvc.SignOf(p.AbsPos)
		c.Points = append(c.Points, p)
	}
	return &c, rows.Err()
}

func (r *Repo) LoadAspects(ctx context.Context, chartID string) ([]model.AspectResult, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT p1, p2, p1_owner, p2_owner, p1_pos, p2_pos, aspect, exact_degree, separation, orb, movement, major
		FROM aspects WHERE chart_id=? ORDER BY id
	`, chartID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.AspectResult
	for rows.Next() {
		var a model.AspectResult
		var p1, p2, movement string
		if err := rows.Scan(&p1, &p2, &a.P1Owner, &a.P2Owner, &a.P1Pos, &a.P2Pos, &a.Aspect,
			&a.ExactDegree, &a.Separation, &a.SignedOrb, &movement, &a.Major); err != nil {
			return nil, err
		}
		a.P1, a.P2, a.Movement = model.PointID(p1), model.PointID(p2), model.Movement(movement)
		out = append(out, a)
	}
	return out, rows.Err()
}

var _ port.ChartStore = (*Repo)(nil)
