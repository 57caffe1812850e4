package ops

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"

	"github.com/nonibytes/gamestore/gamestore/game"
	"github.com/nonibytes/gamestore/gamestore/order"
	"github.com/nonibytes/gamestore/gamestore/storage"
)

// upsertSuffix updates every column but id on conflict.
var upsertSuffix = func() string {
	sets := make([]string, 0, len(storage.GameColumns)-1)
	for _, c := range storage.GameColumns[1:] {
		sets = append(sets, fmt.Sprintf("%s = excluded.%s", c, c))
	}
	return "ON CONFLICT (id) DO UPDATE SET " + strings.Join(sets, ", ")
}()

// Put inserts or replaces games together with their value postings and
// folded search text.
func (s *Store) Put(ctx context.Context, games ...game.Game) error {
	return s.writeTx(ctx, func(tx *sql.Tx) error {
		for _, g := range games {
			if err := s.putOne(ctx, tx, order.Prepare(g)); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *Store) putOne(ctx context.Context, tx *sql.Tx, g game.Game) error {
	if g.ID == "" {
		return fmt.Errorf("put: game without id")
	}
	values, err := rowValues(g)
	if err != nil {
		return err
	}
	sqlStr, args, err := s.sq.Insert("game").
		Columns(storage.GameColumns...).
		Values(values...).
		Suffix(upsertSuffix).
		ToSql()
	if err != nil {
		return fmt.Errorf("build upsert: %w", err)
	}
	if _, err := tx.ExecContext(ctx, sqlStr, args...); err != nil {
		return fmt.Errorf("upsert game %s: %w", g.ID, err)
	}

	var postings [][]any
	for _, f := range game.ValueSetFields() {
		for _, v := range f.Values(&g) {
			postings = append(postings, []any{g.ID, f.Name, v})
		}
	}
	if err := s.replaceRows(ctx, tx, "game_value", []string{"game_id", "field", "value"}, g.ID, postings); err != nil {
		return err
	}

	var texts [][]any
	for _, f := range game.TextFields() {
		if text := f.Folded(&g); text != "" {
			texts = append(texts, []any{g.ID, f.Name, text})
		}
	}
	return s.replaceRows(ctx, tx, "game_text", []string{"game_id", "field", "text"}, g.ID, texts)
}

// replaceRows swaps the rows of a per-game side table for rows.
func (s *Store) replaceRows(ctx context.Context, tx *sql.Tx, table string, columns []string, id string, rows [][]any) error {
	sqlStr, args, err := s.sq.Delete(table).Where(squirrel.Eq{"game_id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("build delete %s: %w", table, err)
	}
	if _, err := tx.ExecContext(ctx, sqlStr, args...); err != nil {
		return fmt.Errorf("delete %s of %s: %w", table, id, err)
	}
	if len(rows) == 0 {
		return nil
	}
	ins := s.sq.Insert(table).Columns(columns...)
	for _, r := range rows {
		ins = ins.Values(r...)
	}
	sqlStr, args, err = ins.ToSql()
	if err != nil {
		return fmt.Errorf("build insert %s: %w", table, err)
	}
	if _, err := tx.ExecContext(ctx, sqlStr, args...); err != nil {
		return fmt.Errorf("insert %s of %s: %w", table, id, err)
	}
	return nil
}

// Get loads one game by id.
func (s *Store) Get(ctx context.Context, id string) (game.Game, bool, error) {
	sqlStr, args, err := s.sq.Select(storage.GameColumns...).
		From("game").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return game.Game{}, false, fmt.Errorf("build get: %w", err)
	}
	g, err := scanGame(s.db.QueryRowContext(ctx, sqlStr, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return game.Game{}, false, nil
	}
	if err != nil {
		return game.Game{}, false, fmt.Errorf("get %s: %w", id, err)
	}
	return g, true, nil
}

// Delete removes games by id and reports how many existed.
func (s *Store) Delete(ctx context.Context, ids ...string) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	var deleted int
	err := s.writeTx(ctx, func(tx *sql.Tx) error {
		for _, table := range []string{"game_value", "game_text"} {
			sqlStr, args, err := s.sq.Delete(table).Where(squirrel.Eq{"game_id": ids}).ToSql()
			if err != nil {
				return fmt.Errorf("build delete %s: %w", table, err)
			}
			if _, err := tx.ExecContext(ctx, sqlStr, args...); err != nil {
				return fmt.Errorf("delete %s: %w", table, err)
			}
		}

		sqlStr, args, err := s.sq.Delete("game").Where(squirrel.Eq{"id": ids}).ToSql()
		if err != nil {
			return fmt.Errorf("build delete games: %w", err)
		}
		res, err := tx.ExecContext(ctx, sqlStr, args...)
		if err != nil {
			return fmt.Errorf("delete games: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("delete games: %w", err)
		}
		deleted = int(n)
		return nil
	})
	return deleted, err
}
