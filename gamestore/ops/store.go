package ops

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Masterminds/squirrel"

	"github.com/nonibytes/gamestore/gamestore/planner"
	"github.com/nonibytes/gamestore/gamestore/storage"
)

// Store executes catalog reads and writes against a SQL database.
type Store struct {
	db      *sql.DB
	adapter storage.Adapter
	planner *planner.Planner
	sq      squirrel.StatementBuilderType
}

// NewStore wraps an open database created by adapter.
func NewStore(db *sql.DB, adapter storage.Adapter) *Store {
	style := adapter.PlaceholderStyle()
	return &Store{
		db:      db,
		adapter: adapter,
		planner: planner.New(style, adapter.Dialect()),
		sq:      squirrel.StatementBuilder.PlaceholderFormat(style.Squirrel()),
	}
}

// DB returns the underlying handle.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Close closes the database and the adapter.
func (s *Store) Close() error {
	if s.db != nil {
		if err := s.db.Close(); err != nil {
			return err
		}
	}
	return s.adapter.Close()
}

// readTx runs fn inside one read transaction so every query sees the same
// snapshot.
func (s *Store) readTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, s.adapter.Dialect().ReadTxOptions())
	if err != nil {
		return fmt.Errorf("begin read: %w", err)
	}
	defer tx.Rollback()
	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit read: %w", err)
	}
	return nil
}

// writeTx runs fn inside a read-write transaction.
func (s *Store) writeTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()
	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}
