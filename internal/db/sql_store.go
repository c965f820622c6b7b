package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/lib/pq"

	"mubench-review/internal/logger"
	"mubench-review/models"
)

type Dialect int

const (
	Postgres Dialect = iota
	SQLite
)

// DialectFor mapeia o nome do driver database/sql para o dialeto.
func DialectFor(driver string) (Dialect, error) {
	switch driver {
	case "postgres":
		return Postgres, nil
	case "sqlite":
		return SQLite, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownDriver, driver)
}

func (d Dialect) placeholder(n int) string {
	if d == SQLite {
		return "?"
	}
	return fmt.Sprintf("$%d", n)
}

var tableNamePattern = regexp.MustCompile(`^[A-Za-z0-9_]+$`)

// SQLStore implementa DataStore sobre database/sql.
type SQLStore struct {
	DB      *sql.DB
	Dialect Dialect
}

func (s *SQLStore) GetPotentialHits(ctx context.Context, table string) ([]models.PotentialHit, error) {
	start := time.Now()
	defer logger.Trace("GetPotentialHits", start)

	if !tableNamePattern.MatchString(table) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidTableName, table)
	}

	query := `SELECT project, version, misuse FROM ` + pq.QuoteIdentifier(table) + ` ORDER BY project, version`
	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("erro ao consultar potential hits de %s: %w", table, err)
	}
	defer rows.Close()

	hits := make([]models.PotentialHit, 0)
	for rows.Next() {
		var h models.PotentialHit
		if err := rows.Scan(&h.Project, &h.Version, &h.Misuse); err != nil {
			return nil, fmt.Errorf("erro ao ler potential hit de %s: %w", table, err)
		}
		hits = append(hits, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("erro ao iterar potential hits de %s: %w", table, err)
	}
	return hits, nil
}

func (s *SQLStore) GetStats(ctx context.Context, key string) (models.Stats, error) {
	start := time.Now()
	defer logger.Trace("GetStats", start)

	query := `SELECT id, COALESCE(result, ''), COALESCE(runtime, 0), COALESCE(number_of_findings, 0)
		FROM stats WHERE id = ` + s.Dialect.placeholder(1)

	var st models.Stats
	err := s.DB.QueryRowContext(ctx, query, key).Scan(&st.ID, &st.Result, &st.Runtime, &st.NumberOfFindings)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Stats{}, fmt.Errorf("%w: %s", ErrStatsNotFound, key)
	}
	if err != nil {
		return models.Stats{}, fmt.Errorf("erro ao consultar stats %s: %w", key, err)
	}
	return st, nil
}

func (s *SQLStore) GetTables(ctx context.Context) ([]string, error) {
	start := time.Now()
	defer logger.Trace("GetTables", start)

	query := `SELECT table_name FROM information_schema.tables
		WHERE table_schema = current_schema() ORDER BY table_name`
	if s.Dialect == SQLite {
		query = `SELECT name FROM sqlite_master
		WHERE type = 'table' AND name NOT LIKE 'sqlite_%' ORDER BY name`
	}

	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("erro ao listar tabelas: %w", err)
	}
	defer rows.Close()

	tables := make([]string, 0)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("erro ao ler nome de tabela: %w", err)
		}
		tables = append(tables, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("erro ao iterar tabelas: %w", err)
	}
	return tables, nil
}

func (s *SQLStore) Ping(ctx context.Context) error {
	return s.DB.PingContext(ctx)
}
