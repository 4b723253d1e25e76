/*
Package sqlite provides a SQLite-backed implementation of generic.Store.

PURPOSE:
  Persists vesting schemes, saved calculator plans, the yearly BTC price
  table and the history of spot quotes. The calculators never touch the
  database; they receive what this store loads.

KEY TABLES:
  schemes:       Scheme definitions as JSON (versioned)
  plans:         Saved calculator state; custom events as JSON
  yearly_prices: Historical price table, one row per calendar year
  price_quotes:  Append-only spot quote history

QUOTE HISTORY:
  price_quotes is append-only: no UPDATE or DELETE outside Reset. The
  latest row is what the price tracker restores after a restart.

NUMBERS:
  BTC amounts and prices are stored as decimal strings, never REAL, so a
  round trip through the database is exact.

CONCURRENCY:
  Uses sync.RWMutex for thread-safety on top of SQLite's WAL mode.

USAGE:
  store, err := sqlite.New("./data/vesting.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

SEE ALSO:
  - generic/store.go: Interface definitions
  - generic/store/memory.go: In-memory implementation for testing
  - factory/scheme.go: Scheme JSON encoding
*/
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/warp/vesting-engine/factory"
	"github.com/warp/vesting-engine/generic"
)

// Fixed-width UTC timestamps sort lexically in time order.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// Store implements generic.Store using SQLite.
type Store struct {
	db      *sql.DB
	mu      sync.RWMutex
	schemes *factory.SchemeFactory
}

var _ generic.Store = (*Store)(nil)

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if strings.HasPrefix(dbPath, ":memory:") {
		// Each connection to :memory: is a separate database.
		db.SetMaxOpenConns(1)
	}

	store := &Store{db: db, schemes: factory.NewSchemeFactory()}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS schemes (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		config_json TEXT NOT NULL,
		version INTEGER DEFAULT 1,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS plans (
		id TEXT PRIMARY KEY,
		scheme_id TEXT NOT NULL,
		name TEXT NOT NULL DEFAULT '',
		growth_rate REAL NOT NULL DEFAULT 0,
		custom_events_json TEXT,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_plans_scheme
		ON plans(scheme_id);

	CREATE TABLE IF NOT EXISTS yearly_prices (
		year INTEGER PRIMARY KEY,
		high TEXT NOT NULL,
		low TEXT NOT NULL,
		average TEXT NOT NULL,
		open TEXT NOT NULL,
		close TEXT NOT NULL
	);

	-- Append-only
	CREATE TABLE IF NOT EXISTS price_quotes (
		id TEXT PRIMARY KEY,
		price TEXT NOT NULL,
		change_24h TEXT NOT NULL,
		source TEXT NOT NULL,
		last_updated TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_price_quotes_last_updated
		ON price_quotes(last_updated DESC);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// SCHEME STORE
// =============================================================================

// SaveScheme inserts a scheme or replaces it, bumping the version.
func (s *Store) SaveScheme(ctx context.Context, scheme generic.Scheme) error {
	config, err := s.schemes.MarshalScheme(&scheme)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO schemes (id, name, config_json, version, created_at, updated_at)
		VALUES (?, ?, ?, 1, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			config_json = excluded.config_json,
			version = schemes.version + 1,
			updated_at = excluded.updated_at
	`

	now := formatTime(time.Now())
	if _, err := s.db.ExecContext(ctx, query, scheme.ID, scheme.Name, config, now, now); err != nil {
		return fmt.Errorf("failed to save scheme %s: %w", scheme.ID, err)
	}
	return nil
}

func (s *Store) GetScheme(ctx context.Context, id generic.SchemeID) (*generic.Scheme, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var config string
	var version int
	err := s.db.QueryRowContext(ctx,
		"SELECT config_json, version FROM schemes WHERE id = ?", id,
	).Scan(&config, &version)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, generic.ErrSchemeNotFound
	}
	if err != nil {
		return nil, err
	}

	scheme, err := s.schemes.DecodeStored(config)
	if err != nil {
		return nil, err
	}
	scheme.Version = version
	return scheme, nil
}

func (s *Store) ListSchemes(ctx context.Context) ([]generic.Scheme, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, "SELECT config_json, version FROM schemes ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []generic.Scheme
	for rows.Next() {
		var config string
		var version int
		if err := rows.Scan(&config, &version); err != nil {
			return nil, err
		}
		scheme, err := s.schemes.DecodeStored(config)
		if err != nil {
			return nil, err
		}
		scheme.Version = version
		out = append(out, *scheme)
	}
	return out, rows.Err()
}

// =============================================================================
// PLAN STORE
// =============================================================================

// SavePlan upserts a plan. created_at is kept from the first save.
func (s *Store) SavePlan(ctx context.Context, plan generic.Plan) error {
	events, err := json.Marshal(factory.CustomEventsToJSON(plan.CustomEvents))
	if err != nil {
		return fmt.Errorf("failed to encode custom events: %w", err)
	}

	now := time.Now()
	if plan.CreatedAt.IsZero() {
		plan.CreatedAt = now
	}
	if plan.UpdatedAt.IsZero() {
		plan.UpdatedAt = now
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO plans (id, scheme_id, name, growth_rate, custom_events_json, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			scheme_id = excluded.scheme_id,
			name = excluded.name,
			growth_rate = excluded.growth_rate,
			custom_events_json = excluded.custom_events_json,
			updated_at = excluded.updated_at
	`

	_, err = s.db.ExecContext(ctx, query,
		plan.ID, plan.SchemeID, plan.Name, plan.GrowthRate, string(events),
		formatTime(plan.CreatedAt), formatTime(plan.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to save plan %s: %w", plan.ID, err)
	}
	return nil
}

const planColumns = "id, scheme_id, name, growth_rate, custom_events_json, created_at, updated_at"

func (s *Store) GetPlan(ctx context.Context, id generic.PlanID) (*generic.Plan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, "SELECT "+planColumns+" FROM plans WHERE id = ?", id)
	p, err := scanPlan(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, generic.ErrPlanNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *Store) ListPlans(ctx context.Context) ([]generic.Plan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, "SELECT "+planColumns+" FROM plans ORDER BY created_at")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []generic.Plan
	for rows.Next() {
		p, err := scanPlan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *Store) DeletePlan(ctx context.Context, id generic.PlanID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, "DELETE FROM plans WHERE id = ?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return generic.ErrPlanNotFound
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanPlan(row scanner) (generic.Plan, error) {
	var p generic.Plan
	var events sql.NullString
	var createdAt, updatedAt string

	if err := row.Scan(&p.ID, &p.SchemeID, &p.Name, &p.GrowthRate, &events, &createdAt, &updatedAt); err != nil {
		return generic.Plan{}, err
	}
	if events.Valid && events.String != "" {
		var ej []factory.CustomEventJSON
		if err := json.Unmarshal([]byte(events.String), &ej); err != nil {
			return generic.Plan{}, fmt.Errorf("plan %s: bad custom events: %w", p.ID, err)
		}
		p.CustomEvents = factory.CustomEventsFromJSON(ej)
	}
	p.CreatedAt = parseTime(createdAt)
	p.UpdatedAt = parseTime(updatedAt)
	return p, nil
}

// =============================================================================
// PRICE STORE
// =============================================================================

// SaveYearlyPrice inserts or corrects one year of the price table.
func (s *Store) SaveYearlyPrice(ctx context.Context, p generic.YearlyPrice) error {
	if p.Year <= 0 {
		return generic.ErrInvalidYear
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO yearly_prices (year, high, low, average, open, close)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(year) DO UPDATE SET
			high = excluded.high,
			low = excluded.low,
			average = excluded.average,
			open = excluded.open,
			close = excluded.close
	`
	_, err := s.db.ExecContext(ctx, query,
		p.Year, p.High.String(), p.Low.String(), p.Average.String(), p.Open.String(), p.Close.String(),
	)
	if err != nil {
		return fmt.Errorf("failed to save price for %d: %w", p.Year, err)
	}
	return nil
}

func (s *Store) YearlyPrices(ctx context.Context) (map[int]generic.YearlyPrice, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, "SELECT year, high, low, average, open, close FROM yearly_prices")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[int]generic.YearlyPrice)
	for rows.Next() {
		var year int
		var high, low, avg, open, closePrice string
		if err := rows.Scan(&year, &high, &low, &avg, &open, &closePrice); err != nil {
			return nil, err
		}
		out[year] = generic.YearlyPrice{
			Year:    year,
			High:    generic.MustParseDecimal(high),
			Low:     generic.MustParseDecimal(low),
			Average: generic.MustParseDecimal(avg),
			Open:    generic.MustParseDecimal(open),
			Close:   generic.MustParseDecimal(closePrice),
		}
	}
	return out, rows.Err()
}

// AppendQuote records a spot quote. Append-only.
func (s *Store) AppendQuote(ctx context.Context, q generic.PriceQuote) error {
	if q.ID == "" {
		q.ID = uuid.NewString()
	}
	if q.LastUpdated.IsZero() {
		q.LastUpdated = time.Now()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO price_quotes (id, price, change_24h, source, last_updated, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		q.ID, q.Price.String(), q.Change24h.String(), q.Source,
		formatTime(q.LastUpdated), formatTime(time.Now()),
	)
	if err != nil {
		return fmt.Errorf("failed to append quote: %w", err)
	}
	return nil
}

func (s *Store) LatestQuote(ctx context.Context) (*generic.PriceQuote, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var q generic.PriceQuote
	var price, change, updated string
	err := s.db.QueryRowContext(ctx, `
		SELECT id, price, change_24h, source, last_updated
		FROM price_quotes ORDER BY last_updated DESC LIMIT 1`,
	).Scan(&q.ID, &price, &change, &q.Source, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	q.Price = generic.MustParseDecimal(price)
	q.Change24h = generic.MustParseDecimal(change)
	q.LastUpdated = parseTime(updated)
	return &q, nil
}

// =============================================================================
// UTILITIES
// =============================================================================

// Reset clears all data (for testing/demo).
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tables := []string{"plans", "schemes", "yearly_prices", "price_quotes"}
	for _, table := range tables {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return err
		}
	}
	return nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) time.Time {
	t, _ := time.Parse(timeLayout, s)
	return t
}
