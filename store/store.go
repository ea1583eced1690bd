package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-sql-driver/mysql"
	"github.com/xor-shift/prng/util/rng"
)

const (
	createTableQuery = "" +
		"CREATE TABLE IF NOT EXISTS prng_streams (" +
		"name VARCHAR(128) NOT NULL PRIMARY KEY, " +
		"state CHAR(32) NOT NULL, " +
		"steps BIGINT UNSIGNED NOT NULL, " +
		"updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP)"

	upsertQuery = "" +
		"INSERT INTO prng_streams (name, state, steps) VALUES (?, ?, ?) " +
		"ON DUPLICATE KEY UPDATE state = VALUES(state), steps = VALUES(steps)"

	selectQuery = "SELECT state, steps FROM prng_streams WHERE name=?"
)

var ErrNotFound = errors.New("stream not found")

// Store persists named generator states so a stream can be resumed.
type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

func Open(cfg mysql.Config) (*Store, error) {
	db, err := sql.Open("mysql", cfg.FormatDSN())
	if err != nil {
		return nil, err
	}

	return New(db), nil
}

func (s *Store) Init(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, createTableQuery)
	return err
}

// Save records state and the number of steps drawn so far under name.
func (s *Store) Save(ctx context.Context, name string, state *rng.Xoroshiro128PState, steps uint64) error {
	if _, err := s.db.ExecContext(ctx, upsertQuery, name, state.String(), steps); err != nil {
		return fmt.Errorf("saving stream %q: %w", name, err)
	}

	return nil
}

func (s *Store) Load(ctx context.Context, name string) (*rng.Xoroshiro128PState, uint64, error) {
	var stateText string
	var steps uint64

	err := s.db.QueryRowContext(ctx, selectQuery, name).Scan(&stateText, &steps)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, 0, ErrNotFound
	}
	if err != nil {
		return nil, 0, fmt.Errorf("loading stream %q: %w", name, err)
	}

	state, err := rng.ParseXoroshiro128P(stateText)
	if err != nil {
		return nil, 0, fmt.Errorf("stream %q: %w", name, err)
	}

	return state, steps, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}
