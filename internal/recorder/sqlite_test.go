package recorder

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"MarketPulse/internal/model"
)

func openTemp(t *testing.T) *SQLiteRecorder {
	t.Helper()
	r, err := NewSQLiteRecorder(filepath.Join(t.TempDir(), "pulse.db"), nil)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { r.Close() })
	return r
}

func generation(id string, closes ...float64) *Generation {
	marketCap := 2.8e12
	g := &Generation{
		ID:        id,
		CreatedAt: time.Date(2024, time.March, 15, 8, 0, 0, 0, time.UTC),
		Companies: []model.Company{
			{Symbol: "ACME", Name: "Acme Corp", Sector: "Industrials", BasePrice: 100, MarketCap: &marketCap},
			{Symbol: "BARE", Name: "Bare Inc", BasePrice: 5},
		},
		Series: map[string][]model.PricePoint{},
	}
	for i, c := range closes {
		g.Series["ACME"] = append(g.Series["ACME"], model.PricePoint{
			Symbol: "ACME",
			Date:   time.Date(2024, time.March, 10+i, 0, 0, 0, 0, time.UTC),
			Open:   c, High: c + 1, Low: c - 1, Close: c, Volume: 12_000_000,
		})
	}
	return g
}

func TestSQLiteRecorder_LoadEmpty(t *testing.T) {
	r := openTemp(t)
	if _, err := r.LoadGeneration(context.Background()); !errors.Is(err, model.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestSQLiteRecorder_SaveAndLoad(t *testing.T) {
	r := openTemp(t)
	ctx := context.Background()

	if err := r.SaveGeneration(ctx, generation("gen-1", 100, 101, 102)); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := r.SaveGeneration(ctx, generation("gen-2", 50, 51)); err != nil {
		t.Fatalf("save: %v", err)
	}

	g, err := r.LoadGeneration(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if g.ID != "gen-2" {
		t.Errorf("expected latest generation gen-2, got %s", g.ID)
	}
	if !g.CreatedAt.Equal(time.Date(2024, time.March, 15, 8, 0, 0, 0, time.UTC)) {
		t.Errorf("unexpected created_at %s", g.CreatedAt)
	}
	if len(g.Companies) != 2 || g.Companies[0].Symbol != "ACME" {
		t.Fatalf("unexpected companies: %+v", g.Companies)
	}
	if g.Companies[0].MarketCap == nil || *g.Companies[0].MarketCap != 2.8e12 {
		t.Errorf("expected market cap to survive, got %v", g.Companies[0].MarketCap)
	}
	if g.Companies[1].MarketCap != nil || g.Companies[1].Sector != "" {
		t.Errorf("expected absent optional fields, got %+v", g.Companies[1])
	}
	acme := g.Series["ACME"]
	if len(acme) != 2 || acme[0].Close != 50 || acme[1].Date.Format(model.DateLayout) != "2024-03-11" {
		t.Errorf("unexpected series: %+v", acme)
	}
	if _, ok := g.Series["BARE"]; ok {
		t.Error("expected no series for BARE")
	}
}

func TestSQLiteRecorder_DetectsMissingRows(t *testing.T) {
	r := openTemp(t)
	ctx := context.Background()
	if err := r.SaveGeneration(ctx, generation("gen-1", 100, 101, 102)); err != nil {
		t.Fatalf("save: %v", err)
	}
	if _, err := r.db.Exec(`DELETE FROM price_points WHERE date = '2024-03-11'`); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := r.LoadGeneration(ctx); !errors.Is(err, model.ErrCorrupt) {
		t.Errorf("expected ErrCorrupt, got %v", err)
	}
}

func TestSQLiteRecorder_KeepsOnlyCurrentGeneration(t *testing.T) {
	r := openTemp(t)
	ctx := context.Background()
	for _, id := range []string{"gen-1", "gen-2", "gen-3", "gen-3"} {
		if err := r.SaveGeneration(ctx, generation(id, 100, 101)); err != nil {
			t.Fatalf("save %s: %v", id, err)
		}
	}

	var total int
	var id string
	if err := r.db.QueryRow(`SELECT COUNT(*), MAX(id) FROM generations`).Scan(&total, &id); err != nil {
		t.Fatalf("count: %v", err)
	}
	if total != 1 || id != "gen-3" {
		t.Errorf("expected only gen-3 kept, got %d rows (max id %s)", total, id)
	}
}

func TestNoopRecorder(t *testing.T) {
	r := NewNoopRecorder()
	if err := r.SaveGeneration(context.Background(), generation("x")); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if _, err := r.LoadGeneration(context.Background()); !errors.Is(err, model.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}
