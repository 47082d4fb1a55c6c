package recorder

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"MarketPulse/internal/model"
)

// SQLiteRecorder persists dataset generations to a SQLite database.
type SQLiteRecorder struct {
	db  *sql.DB
	mu  sync.Mutex
	log *zap.Logger
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string, log *zap.Logger) (*SQLiteRecorder, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create data dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL lets API reads proceed while a refresh writes.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	r := &SQLiteRecorder{db: db, log: log}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Info("sqlite recorder opened", zap.String("path", dbPath))
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS generations (
			id             TEXT PRIMARY KEY,
			created_at     INTEGER NOT NULL,
			companies      INTEGER NOT NULL,
			points         INTEGER NOT NULL,
			current        INTEGER NOT NULL DEFAULT 0
		)`,
		`CREATE INDEX IF NOT EXISTS idx_generations_ts ON generations(created_at)`,

		`CREATE TABLE IF NOT EXISTS companies (
			symbol         TEXT PRIMARY KEY,
			name           TEXT NOT NULL,
			sector         TEXT,
			base_price     REAL NOT NULL,
			market_cap     REAL,
			pe_ratio       REAL,
			dividend_yield REAL,
			beta           REAL,
			eps            REAL
		)`,

		`CREATE TABLE IF NOT EXISTS price_points (
			symbol      TEXT NOT NULL REFERENCES companies(symbol) ON DELETE CASCADE,
			date        TEXT NOT NULL,
			open_price  REAL NOT NULL,
			high_price  REAL NOT NULL,
			low_price   REAL NOT NULL,
			close_price REAL NOT NULL,
			volume      INTEGER NOT NULL,
			PRIMARY KEY (symbol, date)
		)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

func (r *SQLiteRecorder) SaveGeneration(ctx context.Context, g *Generation) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	for _, s := range []string{
		`DELETE FROM price_points`,
		`DELETE FROM companies`,
		`UPDATE generations SET current = 0`,
	} {
		if _, err := tx.ExecContext(ctx, s); err != nil {
			return fmt.Errorf("clear: %w", err)
		}
	}

	insCompany, err := tx.PrepareContext(ctx, `INSERT INTO companies
		(symbol, name, sector, base_price, market_cap, pe_ratio, dividend_yield, beta, eps)
		VALUES (?,?,?,?,?,?,?,?,?)`)
	if err != nil {
		return fmt.Errorf("prepare companies: %w", err)
	}
	defer insCompany.Close()
	for _, c := range g.Companies {
		if _, err := insCompany.ExecContext(ctx,
			c.Symbol, c.Name, c.Sector, c.BasePrice,
			nullable(c.MarketCap), nullable(c.PERatio), nullable(c.DividendYield),
			nullable(c.Beta), nullable(c.EPS),
		); err != nil {
			return fmt.Errorf("insert company %s: %w", c.Symbol, err)
		}
	}

	insPoint, err := tx.PrepareContext(ctx, `INSERT INTO price_points
		(symbol, date, open_price, high_price, low_price, close_price, volume)
		VALUES (?,?,?,?,?,?,?)`)
	if err != nil {
		return fmt.Errorf("prepare price points: %w", err)
	}
	defer insPoint.Close()
	for symbol, points := range g.Series {
		for _, p := range points {
			if _, err := insPoint.ExecContext(ctx,
				symbol, p.Date.UTC().Format(model.DateLayout),
				p.Open, p.High, p.Low, p.Close, p.Volume,
			); err != nil {
				return fmt.Errorf("insert %s %s: %w", symbol, p.Date.Format(model.DateLayout), err)
			}
		}
	}

	if _, err := tx.ExecContext(ctx, `INSERT OR REPLACE INTO generations
		(id, created_at, companies, points, current) VALUES (?,?,?,?,1)`,
		g.ID, g.CreatedAt.Unix(), len(g.Companies), g.PointsCount(),
	); err != nil {
		return fmt.Errorf("insert generation: %w", err)
	}
	// Rows of earlier generations no longer exist, so neither do their headers.
	if _, err := tx.ExecContext(ctx, `DELETE FROM generations WHERE current = 0`); err != nil {
		return fmt.Errorf("prune generations: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	r.log.Info("generation saved",
		zap.String("generation", g.ID),
		zap.Int("companies", len(g.Companies)),
		zap.Int("points", g.PointsCount()))
	return nil
}

func (r *SQLiteRecorder) LoadGeneration(ctx context.Context) (*Generation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	g := &Generation{Series: make(map[string][]model.PricePoint)}
	var createdAt, wantCompanies, wantPoints int64
	err := r.db.QueryRowContext(ctx,
		`SELECT id, created_at, companies, points FROM generations WHERE current = 1`,
	).Scan(&g.ID, &createdAt, &wantCompanies, &wantPoints)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load generation: %w", err)
	}
	g.CreatedAt = time.Unix(createdAt, 0).UTC()

	rows, err := r.db.QueryContext(ctx, `SELECT symbol, name, sector, base_price,
		market_cap, pe_ratio, dividend_yield, beta, eps FROM companies ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("load companies: %w", err)
	}
	for rows.Next() {
		var c model.Company
		var sector sql.NullString
		var mc, pe, dy, beta, eps sql.NullFloat64
		if err := rows.Scan(&c.Symbol, &c.Name, &sector, &c.BasePrice, &mc, &pe, &dy, &beta, &eps); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan company: %w", err)
		}
		c.Sector = sector.String
		c.MarketCap, c.PERatio, c.DividendYield = pointer(mc), pointer(pe), pointer(dy)
		c.Beta, c.EPS = pointer(beta), pointer(eps)
		g.Companies = append(g.Companies, c)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load companies: %w", err)
	}

	rows, err = r.db.QueryContext(ctx, `SELECT symbol, date, open_price, high_price,
		low_price, close_price, volume FROM price_points ORDER BY symbol, date`)
	if err != nil {
		return nil, fmt.Errorf("load price points: %w", err)
	}
	defer rows.Close()
	var points int64
	for rows.Next() {
		var p model.PricePoint
		var date string
		if err := rows.Scan(&p.Symbol, &date, &p.Open, &p.High, &p.Low, &p.Close, &p.Volume); err != nil {
			return nil, fmt.Errorf("scan price point: %w", err)
		}
		if p.Date, err = time.Parse(model.DateLayout, date); err != nil {
			return nil, fmt.Errorf("price point %s: bad date %q: %w", p.Symbol, date, model.ErrCorrupt)
		}
		g.Series[p.Symbol] = append(g.Series[p.Symbol], p)
		points++
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load price points: %w", err)
	}

	if int64(len(g.Companies)) != wantCompanies || points != wantPoints {
		return nil, fmt.Errorf("generation %s: expected %d companies and %d points, found %d and %d: %w",
			g.ID, wantCompanies, wantPoints, len(g.Companies), points, model.ErrCorrupt)
	}
	return g, nil
}

func (r *SQLiteRecorder) Close() error {
	r.log.Info("closing sqlite recorder")
	return r.db.Close()
}

func nullable(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}

func pointer(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}
