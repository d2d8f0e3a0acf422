package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/sunscout/sunscout/internal/feasibility"
)

const schema = `
CREATE TABLE IF NOT EXISTS evaluations (
	id              TEXT PRIMARY KEY,
	site            TEXT NOT NULL,
	decision        TEXT NOT NULL,
	composite_score REAL NOT NULL,
	score_defined   INTEGER NOT NULL,
	report          TEXT NOT NULL,
	created_at      TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_evaluations_created_at ON evaluations(created_at);
CREATE INDEX IF NOT EXISTS idx_evaluations_site ON evaluations(site);
`

// Store persists evaluation reports in SQLite and evicts entries older than
// the configured retention. Safe for concurrent use (database/sql pools).
type Store struct {
	db        *sql.DB
	retention time.Duration
	now       func() time.Time // injectable for deterministic tests
}

// Open opens (or creates) the database at path and applies the schema.
func Open(path string, retention time.Duration) (*Store, error) {
	if retention <= 0 {
		return nil, fmt.Errorf("history: retention must be positive")
	}
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("history: open database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("history: apply schema: %w", err)
	}
	return &Store{db: db, retention: retention, now: time.Now}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error { return s.db.Close() }

// Save persists one report. Reports are immutable; saving the same ID twice
// is an error.
func (s *Store) Save(ctx context.Context, r *feasibility.Report) error {
	body, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("history: marshal report: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO evaluations (id, site, decision, composite_score, score_defined, report, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.Site, string(r.Decision), r.CompositeScore, boolToInt(r.ScoreDefined),
		string(body), s.now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("history: insert evaluation: %w", err)
	}
	return nil
}

// Get returns the report with the given ID, or ok=false if absent.
func (s *Store) Get(ctx context.Context, id string) (*feasibility.Report, bool, error) {
	var body string
	err := s.db.QueryRowContext(ctx,
		`SELECT report FROM evaluations WHERE id = ?`, id).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("history: query evaluation: %w", err)
	}

	var r feasibility.Report
	if err := json.Unmarshal([]byte(body), &r); err != nil {
		return nil, false, fmt.Errorf("history: decode stored report: %w", err)
	}
	return &r, true, nil
}

// Recent returns up to limit reports, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]*feasibility.Report, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT report FROM evaluations ORDER BY created_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("history: query recent: %w", err)
	}
	defer rows.Close()

	var out []*feasibility.Report
	for rows.Next() {
		var body string
		if err := rows.Scan(&body); err != nil {
			return nil, fmt.Errorf("history: scan row: %w", err)
		}
		var r feasibility.Report
		if err := json.Unmarshal([]byte(body), &r); err != nil {
			return nil, fmt.Errorf("history: decode stored report: %w", err)
		}
		out = append(out, &r)
	}
	return out, rows.Err()
}

// Stats summarises the retained evaluations for the health endpoint.
type Stats struct {
	Total         int     `json:"total"`
	Go            int     `json:"go"`
	NoGo          int     `json:"no_go"`
	Indeterminate int     `json:"indeterminate"`
	MeanComposite float64 `json:"mean_composite"`
	ScoredCount   int     `json:"scored_count"`
}

// Stats aggregates decision counts and the mean composite over all retained rows.
func (s *Store) Stats(ctx context.Context) (Stats, error) {
	var st Stats
	rows, err := s.db.QueryContext(ctx,
		`SELECT decision, COUNT(*) FROM evaluations GROUP BY decision`)
	if err != nil {
		return st, fmt.Errorf("history: query stats: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var decision string
		var n int
		if err := rows.Scan(&decision, &n); err != nil {
			return st, fmt.Errorf("history: scan stats: %w", err)
		}
		st.Total += n
		switch feasibility.Decision(decision) {
		case feasibility.DecisionGo:
			st.Go = n
		case feasibility.DecisionNoGo:
			st.NoGo = n
		case feasibility.DecisionIndeterminate:
			st.Indeterminate = n
		}
	}
	if err := rows.Err(); err != nil {
		return st, err
	}

	err = s.db.QueryRowContext(ctx, `
		SELECT COUNT(*), COALESCE(AVG(composite_score), 0)
		FROM evaluations WHERE score_defined = 1`).
		Scan(&st.ScoredCount, &st.MeanComposite)
	if err != nil {
		return st, fmt.Errorf("history: query mean composite: %w", err)
	}
	return st, nil
}

// Evict removes evaluations created before now minus the retention.
// It returns the number of rows removed.
func (s *Store) Evict(ctx context.Context, now time.Time) (int64, error) {
	cutoff := now.Add(-s.retention).UTC()
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM evaluations WHERE created_at < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("history: evict: %w", err)
	}
	return res.RowsAffected()
}

// Run starts the background retention sweep. It ticks at half the retention
// interval, capped to the hour so long retentions still sweep regularly.
// Run blocks until ctx is cancelled.
func (s *Store) Run(ctx context.Context) {
	interval := s.retention / 2
	if interval > time.Hour {
		interval = time.Hour
	}
	if interval < time.Second {
		interval = time.Second
	}
	t := time.NewTicker(interval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-t.C:
			n, err := s.Evict(ctx, now)
			if err != nil {
				slog.Error("history: retention sweep failed", "err", err)
				continue
			}
			if n > 0 {
				slog.Debug("history: evicted expired evaluations", "count", n)
			}
		}
	}
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
