package sqlite

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"astrox/internal/domain/model"
)

func sampleChart() *model.Chart {
	var cusps model.HouseCusps
	for i := range cusps {
		cusps[i] = float64(i*30) + 5
	}
	return &model.Chart{
		ID:       "c-1",
		Name:     "John",
		Kind:     model.KindNatal,
		Context:  model.DefaultContext(),
		Instant:  time.Date(1990, 6, 15, 8, 30, 0, 0, time.UTC),
		Location: model.Location{Name: "Rome", Latitude: 41.9, Longitude: 12.5},
		Cusps:    cusps,
		Points: []model.Point{
			{Placement: model.Placement{ID: model.Sun, AbsPos: 84.2, Speed: 0.95, Declination: 23.3, HasDecl: true}, House: 3},
			{Placement: model.Placement{ID: model.Mars, AbsPos: 2.5, Speed: -0.2}, House: 12, Retrograde: true},
		},
		Phase: &model.LunarPhase{DegreesBetween: 120, MoonPhase: 10, SunPhase: 9, Name: "Waxing Gibbous"},
	}
}

func TestSQLiteRepoSaveAndLoadChart(t *testing.T) {
	dbPath := "test_chart.db"
	defer os.Remove(dbPath)

	repo, err := New(dbPath)
	if err != nil {
		t.Fatalf("failed to create repo: %v", err)
	}
	defer repo.Close()

	ctx := context.Background()
	chart := sampleChart()
	if err := repo.SaveChart(ctx, chart); err != nil {
		t.Fatalf("SaveChart failed: %v", err)
	}

	got, err := repo.LoadChart(ctx, "c-1")
	if err != nil {
		t.Fatalf("LoadChart failed: %v", err)
	}

	if got.Name != "John" || got.Kind != model.KindNatal {
		t.Errorf("unexpected chart header %s/%s", got.Name, got.Kind)
	}
	if !got.Instant.Equal(chart.Instant) {
		t.Errorf("expected instant %s, got %s", chart.Instant, got.Instant)
	}
	if got.Cusps != chart.Cusps {
		t.Errorf("expected cusps %v, got %v", chart.Cusps, got.Cusps)
	}
	if got.Location != chart.Location {
		t.Errorf("expected location %v, got %v", chart.Location, got.Location)
	}
	if got.Context.HouseSystem != model.DefaultHouseSystem {
		t.Errorf("expected house system %s, got %s", model.DefaultHouseSystem, got.Context.HouseSystem)
	}
	if got.Phase == nil || got.Phase.Name != "Waxing Gibbous" {
		t.Errorf("expected lunar phase to survive, got %v", got.Phase)
	}

	if len(got.Points) != 2 {
		t.Fatalf("expected 2 points, got %d", len(got.Points))
	}
	sun, mars := got.Points[0], got.Points[1]
	if sun.ID != model.Sun || sun.House != 3 || !sun.HasDecl || sun.Declination != 23.3 {
		t.Errorf("unexpected sun %+v", sun)
	}
	if sun.Sign.Name != "Gem" || sun.SignPosition < 24.19 || sun.SignPosition > 24.21 {
		t.Errorf("expected sun in Gem 24.2, got %s %v", sun.Sign.Name, sun.SignPosition)
	}
	if mars.ID != model.Mars || !mars.Retrograde || mars.HasDecl {
		t.Errorf("unexpected mars %+v", mars)
	}
}

func TestSQLiteRepoSaveChartOverwrites(t *testing.T) {
	dbPath := "test_chart_upsert.db"
	defer os.Remove(dbPath)

	repo, err := New(dbPath)
	if err != nil {
		t.Fatalf("failed to create repo: %v", err)
	}
	defer repo.Close()

	ctx := context.Background()
	chart := sampleChart()
	if err := repo.SaveChart(ctx, chart); err != nil {
		t.Fatalf("SaveChart failed: %v", err)
	}

	chart.Name = "John Doe"
	chart.Points = chart.Points[:1]
	chart.Phase = nil
	if err := repo.SaveChart(ctx, chart); err != nil {
		t.Fatalf("SaveChart failed: %v", err)
	}

	got, err := repo.LoadChart(ctx, chart.ID)
	if err != nil {
		t.Fatalf("LoadChart failed: %v", err)
	}
	if got.Name != "John Doe" || len(got.Points) != 1 || got.Phase != nil {
		t.Errorf("expected overwritten chart, got %s with %d points", got.Name, len(got.Points))
	}

	if len(got.Points) == 1 && got.Points[0].ID != model.Sun {
		t.Errorf("expected stale points replaced, got %s", got.Points[0].ID)
	}
}

func TestSQLiteRepoLoadMissingChart(t *testing.T) {
	dbPath := "test_chart_missing.db"
	defer os.Remove(dbPath)

	repo, err := New(dbPath)
	if err != nil {
		t.Fatalf("failed to create repo: %v", err)
	}
	defer repo.Close()

	_, err = repo.LoadChart(context.Background(), "nope")
	if !errors.Is(err, ErrChartNotFound) {
		t.Errorf("expected ErrChartNotFound, got %v", err)
	}
}

func TestSQLiteRepoSaveAspects(t *testing.T) {
	dbPath := "test_aspects.db"
	defer os.Remove(dbPath)

	repo, err := New(dbPath)
	if err != nil {
		t.Fatalf("failed to create repo: %v", err)
	}
	defer repo.Close()

	ctx := context.Background()
	aspects := []model.AspectResult{
		{P1: model.Sun, P2: model.Mars, P1Owner: "John", P2Owner: "John", P1Pos: 84.2, P2Pos: 2.5,
			Aspect: "square", ExactDegree: 90, Separation: 81.7, SignedOrb: -8.3, Movement: model.Separating, Major: true},
		{P1: model.Sun, P2: model.Moon, P1Owner: "John", P2Owner: "Jane", P1Pos: 84.2, P2Pos: 85,
			Aspect: "conjunction", ExactDegree: 0, Separation: 0.8, SignedOrb: 0.8, Movement: model.Applying, Major: true},
	}
	if err := repo.SaveAspects(ctx, "c-1", aspects); err != nil {
		t.Fatalf("SaveAspects failed: %v", err)
	}
	if err := repo.SaveAspects(ctx, "c-1", aspects); err != nil {
		t.Fatalf("SaveAspects again failed: %v", err)
	}

	got, err := repo.LoadAspects(ctx, "c-1")
	if err != nil {
		t.Fatalf("LoadAspects failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 aspects after saving twice, got %d", len(got))
	}
	if got[0] != aspects[0] || got[1] != aspects[1] {
		t.Errorf("aspects changed on the way: %+v", got)
	}

	if err := repo.SaveAspects(ctx, "c-1", nil); err != nil {
		t.Fatalf("SaveAspects with no aspects failed: %v", err)
	}
	got, err = repo.LoadAspects(ctx, "c-1")
	if err != nil {
		t.Fatalf("LoadAspects failed: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected aspects cleared, got %d", len(got))
	}
}
