package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"sync"

	"github.com/jackc/pgx/v5/pgxpool"

	"efficiency_optimizer/pkg/models"
)

var (
	pool     *pgxpool.Pool
	poolOnce sync.Once
)

// InitDB initializes the database connection pool using the DATABASE_URL environment variable
func InitDB(ctx context.Context) error {
	var err error
	poolOnce.Do(func() {
		dbURL := os.Getenv("DATABASE_URL")
		if dbURL == "" {
			err = fmt.Errorf("DATABASE_URL environment variable not set")
			return
		}

		config, parseErr := pgxpool.ParseConfig(dbURL)
		if parseErr != nil {
			err = fmt.Errorf("failed to parse database config: %w", parseErr)
			return
		}

		pool, err = pgxpool.NewWithConfig(ctx, config)
	})
	return err
}

// GetPool returns the database connection pool
func GetPool() *pgxpool.Pool {
	return pool
}

// Close closes the database connection pool
func Close() {
	if pool != nil {
		pool.Close()
	}
}

// PGStore persists entries in Postgres. Filters are pushed into SQL;
// similarity ranking happens in-process over the filtered rows, which is
// adequate at the row counts a single company history produces.
type PGStore struct{}

var _ Store = (*PGStore)(nil)

// NewPGStore creates a Postgres-backed store. InitDB must have been
// called first.
func NewPGStore() *PGStore {
	return &PGStore{}
}

// EnsureSchema creates the backing table when it does not exist.
func (s *PGStore) EnsureSchema(ctx context.Context) error {
	p := GetPool()
	if p == nil {
		return fmt.Errorf("database pool not initialized")
	}
	query := `
		CREATE TABLE IF NOT EXISTS analysis_memory (
			id TEXT PRIMARY KEY,
			kind TEXT NOT NULL,
			company_name TEXT NOT NULL DEFAULT '',
			kpi_name TEXT NOT NULL DEFAULT '',
			entry_json JSONB NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		);
	`
	if _, err := p.Exec(ctx, query); err != nil {
		return fmt.Errorf("failed to ensure analysis_memory schema: %w", err)
	}
	return nil
}

func (s *PGStore) Store(ctx context.Context, entry models.MemoryEntry) error {
	p := GetPool()
	if p == nil {
		return fmt.Errorf("database pool not initialized")
	}
	jsonData, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal memory entry: %w", err)
	}
	query := `
		INSERT INTO analysis_memory (id, kind, company_name, kpi_name, entry_json, created_at)
		VALUES ($1, $2, $3, $4, $5, $6);
	`
	_, err = p.Exec(ctx, query,
		entry.ID, string(entry.Metadata.Kind), entry.Metadata.CompanyName,
		entry.Metadata.KPIName, jsonData, entry.Metadata.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to store memory entry: %w", err)
	}
	return nil
}

func (s *PGStore) Query(ctx context.Context, embedding []float32, filter Filter) ([]Match, error) {
	entries, err := s.fetch(ctx, filter, 0)
	if err != nil {
		return nil, err
	}
	var matches []Match
	for _, e := range entries {
		matches = append(matches, Match{Entry: e, Score: cosine(embedding, e.Embedding)})
	}
	sort.SliceStable(matches, func(i, j int) bool { return matches[i].Score > matches[j].Score })
	if filter.Limit > 0 && len(matches) > filter.Limit {
		matches = matches[:filter.Limit]
	}
	return matches, nil
}

func (s *PGStore) List(ctx context.Context, filter Filter) ([]models.MemoryEntry, error) {
	return s.fetch(ctx, filter, filter.Limit)
}

func (s *PGStore) fetch(ctx context.Context, filter Filter, limit int) ([]models.MemoryEntry, error) {
	p := GetPool()
	if p == nil {
		return nil, fmt.Errorf("database pool not initialized")
	}

	query := `SELECT entry_json FROM analysis_memory WHERE 1=1`
	var args []interface{}
	if filter.Kind != "" {
		args = append(args, string(filter.Kind))
		query += fmt.Sprintf(" AND kind = $%d", len(args))
	}
	if filter.CompanyName != "" {
		args = append(args, filter.CompanyName)
		query += fmt.Sprintf(" AND company_name = $%d", len(args))
	}
	if filter.KPIName != "" {
		args = append(args, filter.KPIName)
		query += fmt.Sprintf(" AND kpi_name = $%d", len(args))
	}
	query += " ORDER BY created_at DESC"
	if limit > 0 {
		args = append(args, limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	rows, err := p.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query analysis_memory: %w", err)
	}
	defer rows.Close()

	var out []models.MemoryEntry
	for rows.Next() {
		var jsonData []byte
		if err := rows.Scan(&jsonData); err != nil {
			return nil, fmt.Errorf("failed to scan memory row: %w", err)
		}
		var e models.MemoryEntry
		if err := json.Unmarshal(jsonData, &e); err != nil {
			return nil, fmt.Errorf("failed to unmarshal memory entry: %w", err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read memory rows: %w", err)
	}
	return out, nil
}
