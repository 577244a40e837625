package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"astrox/internal/application/port"
	"astrox/internal/domain/model"
	dsvc "astrox/internal/domain/service"
)

var ErrChartNotFound = errors.New("chart not found")

type Repo struct {
	db *sql.DB
}

func New(dsn string) (*Repo, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)

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
  context JSONB NOT NULL,
  instant TIMESTAMPTZ NOT NULL,
  location JSONB NOT NULL,
  cusps JSONB NOT NULL,
  phase JSONB,
  created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
  updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS idx_charts_name ON charts(name);

CREATE TABLE IF NOT EXISTS chart_points (
  chart_id TEXT NOT NULL REFERENCES charts(id) ON DELETE CASCADE,
  ord INTEGER NOT NULL,
  point TEXT NOT NULL,
  abs_pos DOUBLE PRECISION NOT NULL,
  speed DOUBLE PRECISION NOT NULL,
  declination DOUBLE PRECISION NOT NULL,
  has_decl BOOLEAN NOT NULL,
  house SMALLINT NOT NULL,
  retrograde BOOLEAN NOT NULL,
  PRIMARY KEY(chart_id, point)
);

CREATE TABLE IF NOT EXISTS aspects (
  id BIGSERIAL PRIMARY KEY,
  chart_id TEXT NOT NULL,
  p1 TEXT NOT NULL,
  p2 TEXT NOT NULL,
  p1_owner TEXT NOT NULL,
  p2_owner TEXT NOT NULL,
  p1_pos DOUBLE PRECISION NOT NULL,
  p2_pos DOUBLE PRECISION NOT NULL,
  aspect TEXT NOT NULL,
  exact_degree DOUBLE PRECISION NOT NULL,
  separation DOUBLE PRECISION NOT NULL,
  orb DOUBLE PRECISION NOT NULL,
  movement TEXT NOT NULL,
  major BOOLEAN NOT NULL,
  created_at TIMESTAMPTZ NOT NULL DEFAULT now()
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

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO charts(id, name, kind, context, instant, location, cusps, phase)
		VALUES($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT(id) DO UPDATE SET
		name=excluded.name, kind=excluded.kind, context=excluded.context, instant=excluded.instant,
		location=excluded.location, cusps=excluded.cusps, phase=excluded.phase, updated_at=now()
	`, c.ID, c.Name, string(c.Kind), string(cc), c.Instant.UTC(), string(loc), string(cusps), phase)
	if err != nil {
		return fmt.Errorf("upsert chart: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM chart_points WHERE chart_id=$1`, c.ID); err != nil {
		return err
	}
	for i, p := range c.Points {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO chart_points(chart_id, ord, point, abs_pos, speed, declination, has_decl, house, retrograde)
			VALUES($1, $2, $3, $4, $5, $6, $7, $8, $9)
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

	if _, err := tx.ExecContext(ctx, `DELETE FROM aspects WHERE chart_id=$1`, chartID); err != nil {
		return err
	}

	for _, a := range aspects {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO aspects(chart_id, p1, p2, p1_owner, p2_owner, p1_pos, p2_pos, aspect, exact_degree, separation, orb, movement, major)
			VALUES($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		`, chartID, string(a.P1), string(a.P2), a.P1Owner, a.P2Owner, a.P1Pos, a.P2Pos, a.Aspect,
			a.ExactDegree, a.Separation, a.SignedOrb, string(a.Movement), a.Major)
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
		phase                sql.NullString
		instant              time.Time
	)
	err := r.db.QueryRowContext(ctx, `
		SELECT id, name, kind, context::text, instant, location::text, cusps::text, phase::text FROM charts WHERE id=$1
	`, id).Scan(&c.ID, &c.Name, &kind, &cc, &instant, &loc, &cusps, &phase)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", id, ErrChartNotFound)
	}
	if err != nil {
		return nil, err
	}

	c.Kind = model.ChartKind(kind)
	c.Instant = instant.UTC()
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
		FROM chart_points WHERE chart_id=$1 ORDER BY ord
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
		FROM aspects WHERE chart_id=$1 ORDER BY id
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
