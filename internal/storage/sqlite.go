// Package storage persists pipeline run outputs to SQLite for the
// external dashboard and export layers. The live pipeline never reads
// from here; a stored run is an opaque serialization of one execution.
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3" // SQLite driver

	"github.com/segmint/segmint/internal/model"
	"github.com/segmint/segmint/internal/pipeline"
)

// SQLiteStore implements run persistence using SQLite.
type SQLiteStore struct {
	db   *sql.DB
	path string
}

// RunSummary is one row of the stored-run listing.
type RunSummary struct {
	StartedAt time.Time
	RunID     string
	Customers int
	K         int
	Rules     int
}

// RunDetail is a single stored run with its per-cluster outputs.
type RunDetail struct {
	StartedAt     time.Time
	ReferenceDate time.Time
	RunID         string
	Profiles      []model.ClusterProfile
	Strategies    []model.Strategy
	Customers     int
	Transactions  int
	Categories    int
	K             int
	AlternateK    int
	Rules         int
	TotalRevenue  float64
}

// NewSQLiteStore opens (and migrates) a results database at the given path.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("database path cannot be empty")
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite doesn't benefit from multiple connections.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	store := &SQLiteStore{db: db, path: path}
	if err := store.migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

func (s *SQLiteStore) migrate() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			run_id TEXT PRIMARY KEY,
			started_at DATETIME NOT NULL,
			reference_date DATETIME NOT NULL,
			customers INTEGER NOT NULL,
			transactions INTEGER NOT NULL,
			categories INTEGER NOT NULL,
			selected_k INTEGER NOT NULL,
			alternate_k INTEGER NOT NULL,
			rule_count INTEGER NOT NULL,
			total_revenue REAL NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS customer_features (
			run_id TEXT NOT NULL,
			customer_id INTEGER NOT NULL,
			length REAL NOT NULL,
			recency INTEGER NOT NULL,
			frequency INTEGER NOT NULL,
			monetary REAL NOT NULL,
			r_score INTEGER NOT NULL,
			f_score INTEGER NOT NULL,
			m_score INTEGER NOT NULL,
			rfm_score TEXT NOT NULL,
			segment TEXT NOT NULL,
			cluster INTEGER NOT NULL,
			clv REAL NOT NULL,
			proportions TEXT NOT NULL,
			PRIMARY KEY (run_id, customer_id),
			FOREIGN KEY (run_id) REFERENCES runs(run_id)
		)`,
		`CREATE TABLE IF NOT EXISTS cluster_profiles (
			run_id TEXT NOT NULL,
			cluster INTEGER NOT NULL,
			archetype TEXT NOT NULL,
			customer_count INTEGER NOT NULL,
			percent REAL NOT NULL,
			mean_recency REAL NOT NULL,
			mean_frequency REAL NOT NULL,
			mean_monetary REAL NOT NULL,
			mean_r_score REAL NOT NULL,
			mean_f_score REAL NOT NULL,
			mean_m_score REAL NOT NULL,
			top_categories TEXT NOT NULL,
			PRIMARY KEY (run_id, cluster),
			FOREIGN KEY (run_id) REFERENCES runs(run_id)
		)`,
		`CREATE TABLE IF NOT EXISTS association_rules (
			run_id TEXT NOT NULL,
			cluster INTEGER NOT NULL,
			rank INTEGER NOT NULL,
			antecedent TEXT NOT NULL,
			consequent TEXT NOT NULL,
			support REAL NOT NULL,
			confidence REAL NOT NULL,
			lift REAL NOT NULL,
			interpretation TEXT NOT NULL,
			PRIMARY KEY (run_id, cluster, rank),
			FOREIGN KEY (run_id) REFERENCES runs(run_id)
		)`,
		`CREATE TABLE IF NOT EXISTS strategies (
			run_id TEXT NOT NULL,
			cluster INTEGER NOT NULL,
			rank INTEGER NOT NULL,
			type TEXT NOT NULL,
			description TEXT NOT NULL,
			rationale TEXT NOT NULL,
			PRIMARY KEY (run_id, cluster, rank),
			FOREIGN KEY (run_id) REFERENCES runs(run_id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_features_cluster ON customer_features(run_id, cluster)`,
	}
	for _, q := range queries {
		if _, err := s.db.Exec(q); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}
	return nil
}

// SaveRun persists every output table of a pipeline run atomically.
func (s *SQLiteStore) SaveRun(ctx context.Context, result *pipeline.Result) (err error) {
	if result == nil {
		return fmt.Errorf("result cannot be nil")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	report := result.Report
	if _, err = tx.ExecContext(ctx,
		`INSERT INTO runs (run_id, started_at, reference_date, customers, transactions,
			categories, selected_k, alternate_k, rule_count, total_revenue)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		report.RunID, report.StartedAt, report.ReferenceDate, report.Customers,
		report.Transactions, report.Categories, report.SelectedK, report.AlternateK,
		report.RuleCount, report.TotalRevenue); err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}

	if err = s.saveFeatures(ctx, tx, report.RunID, result.Features); err != nil {
		return err
	}
	if err = s.saveProfiles(ctx, tx, report.RunID, result.Profiles); err != nil {
		return err
	}
	if err = s.saveRules(ctx, tx, report.RunID, result.Rules); err != nil {
		return err
	}
	if err = s.saveStrategies(ctx, tx, report.RunID, result.Strategies); err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit run: %w", err)
	}
	return nil
}

func (s *SQLiteStore) saveFeatures(ctx context.Context, tx *sql.Tx, runID string, features []*model.CustomerFeatures) error {
	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO customer_features (run_id, customer_id, length, recency, frequency,
			monetary, r_score, f_score, m_score, rfm_score, segment, cluster, clv, proportions)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare feature insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, f := range features {
		proportions, err := json.Marshal(f.Proportions)
		if err != nil {
			return fmt.Errorf("failed to encode proportions for customer %d: %w", f.CustomerID, err)
		}
		if _, err := stmt.ExecContext(ctx,
			runID, f.CustomerID, f.Length, f.Recency, f.Frequency, f.Monetary,
			f.RScore, f.FScore, f.MScore, f.RFMScore, f.Segment, f.Cluster, f.CLV,
			string(proportions)); err != nil {
			return fmt.Errorf("failed to insert customer %d: %w", f.CustomerID, err)
		}
	}
	return nil
}

func (s *SQLiteStore) saveProfiles(ctx context.Context, tx *sql.Tx, runID string, profiles []model.ClusterProfile) error {
	for _, p := range profiles {
		topCategories, err := json.Marshal(p.TopCategories)
		if err != nil {
			return fmt.Errorf("failed to encode top categories for cluster %d: %w", p.ID, err)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO cluster_profiles (run_id, cluster, archetype, customer_count, percent,
				mean_recency, mean_frequency, mean_monetary, mean_r_score, mean_f_score,
				mean_m_score, top_categories)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			runID, p.ID, p.Archetype, p.Count, p.Percent,
			p.Recency.Mean, p.Frequency.Mean, p.Monetary.Mean,
			p.MeanRScore, p.MeanFScore, p.MeanMScore, string(topCategories)); err != nil {
			return fmt.Errorf("failed to insert profile for cluster %d: %w", p.ID, err)
		}
	}
	return nil
}

func (s *SQLiteStore) saveRules(ctx context.Context, tx *sql.Tx, runID string, rules []model.AssociationRule) error {
	ranks := make(map[int]int)
	for _, r := range rules {
		ranks[r.Cluster]++
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO association_rules (run_id, cluster, rank, antecedent, consequent,
				support, confidence, lift, interpretation)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			runID, r.Cluster, ranks[r.Cluster],
			strings.Join(r.Antecedent, ","), strings.Join(r.Consequent, ","),
			r.Support, r.Confidence, r.Lift, string(r.Interpretation)); err != nil {
			return fmt.Errorf("failed to insert rule for cluster %d: %w", r.Cluster, err)
		}
	}
	return nil
}

func (s *SQLiteStore) saveStrategies(ctx context.Context, tx *sql.Tx, runID string, strategies []model.Strategy) error {
	ranks := make(map[int]int)
	for _, st := range strategies {
		ranks[st.Cluster]++
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO strategies (run_id, cluster, rank, type, description, rationale)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			runID, st.Cluster, ranks[st.Cluster], string(st.Type), st.Description, st.Rationale); err != nil {
			return fmt.Errorf("failed to insert strategy for cluster %d: %w", st.Cluster, err)
		}
	}
	return nil
}

// GetRun loads one stored run with its cluster profiles and strategies.
func (s *SQLiteStore) GetRun(ctx context.Context, runID string) (*RunDetail, error) {
	var d RunDetail
	err := s.db.QueryRowContext(ctx,
		`SELECT run_id, started_at, reference_date, customers, transactions,
			categories, selected_k, alternate_k, rule_count, total_revenue
		 FROM runs WHERE run_id = ?`, runID).
		Scan(&d.RunID, &d.StartedAt, &d.ReferenceDate, &d.Customers, &d.Transactions,
			&d.Categories, &d.K, &d.AlternateK, &d.Rules, &d.TotalRevenue)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("run %s not found", runID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load run %s: %w", runID, err)
	}

	if d.Profiles, err = s.loadProfiles(ctx, runID); err != nil {
		return nil, err
	}
	if d.Strategies, err = s.loadStrategies(ctx, runID); err != nil {
		return nil, err
	}
	return &d, nil
}

func (s *SQLiteStore) loadProfiles(ctx context.Context, runID string) ([]model.ClusterProfile, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT cluster, archetype, customer_count, percent, mean_recency, mean_frequency,
			mean_monetary, mean_r_score, mean_f_score, mean_m_score, top_categories
		 FROM cluster_profiles WHERE run_id = ? ORDER BY cluster`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to load profiles: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []model.ClusterProfile
	for rows.Next() {
		var p model.ClusterProfile
		var topCategories string
		if err := rows.Scan(&p.ID, &p.Archetype, &p.Count, &p.Percent,
			&p.Recency.Mean, &p.Frequency.Mean, &p.Monetary.Mean,
			&p.MeanRScore, &p.MeanFScore, &p.MeanMScore, &topCategories); err != nil {
			return nil, fmt.Errorf("failed to scan profile: %w", err)
		}
		if err := json.Unmarshal([]byte(topCategories), &p.TopCategories); err != nil {
			return nil, fmt.Errorf("failed to decode top categories for cluster %d: %w", p.ID, err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) loadStrategies(ctx context.Context, runID string) ([]model.Strategy, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT cluster, type, description, rationale
		 FROM strategies WHERE run_id = ? ORDER BY cluster, rank`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to load strategies: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []model.Strategy
	for rows.Next() {
		var st model.Strategy
		var kind string
		if err := rows.Scan(&st.Cluster, &kind, &st.Description, &st.Rationale); err != nil {
			return nil, fmt.Errorf("failed to scan strategy: %w", err)
		}
		st.Type = model.StrategyType(kind)
		out = append(out, st)
	}
	return out, rows.Err()
}

// ListRuns returns stored runs, newest first.
func (s *SQLiteStore) ListRuns(ctx context.Context) ([]RunSummary, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT run_id, started_at, customers, selected_k, rule_count
		 FROM runs ORDER BY started_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []RunSummary
	for rows.Next() {
		var r RunSummary
		if err := rows.Scan(&r.RunID, &r.StartedAt, &r.Customers, &r.K, &r.Rules); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
