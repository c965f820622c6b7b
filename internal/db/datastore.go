package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"mubench-review/models"
)

var (
	ErrInvalidTableName = errors.New("nome de tabela inválido")
	ErrStatsNotFound    = errors.New("estatísticas não encontradas")
	ErrUnknownDriver    = errors.New("driver de banco desconhecido")
)

// DataStore define as consultas de leitura usadas pelo backend.
type DataStore interface {
	// GetPotentialHits devolve as linhas da tabela ordenadas por projeto e versão.
	GetPotentialHits(ctx context.Context, table string) ([]models.PotentialHit, error)
	// GetStats devolve as estatísticas para a chave tabela_projeto_versao.
	GetStats(ctx context.Context, key string) (models.Stats, error)
	GetTables(ctx context.Context) ([]string, error)
	Ping(ctx context.Context) error
}

// StatsKey monta a chave da tabela stats para um par projeto/versão.
func StatsKey(table, project, version string) string {
	return table + "_" + project + "_" + version
}

// Database é um wrapper fino em torno de *sql.DB para facilitar testes (sqlmock).
type Database struct {
	conn *sql.DB
}

func NewDatabase() *Database { return &Database{} }

// Connect abre a conexão com o driver informado (postgres via lib/pq ou
// sqlite via modernc) e valida com Ping.
func (d *Database) Connect(ctx context.Context, driver, dsn string) (*SQLStore, error) {
	dialect, err := DialectFor(driver)
	if err != nil {
		return nil, err
	}
	conn, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open conn: %w", err)
	}
	if dialect == SQLite {
		conn.SetMaxOpenConns(1)
	}
	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}
	d.conn = conn
	return &SQLStore{DB: conn, Dialect: dialect}, nil
}

func (d *Database) Close() error {
	if d.conn == nil {
		return nil
	}
	return d.conn.Close()
}
