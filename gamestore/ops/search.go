package ops

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/nonibytes/gamestore/gamestore/filter"
	"github.com/nonibytes/gamestore/gamestore/order"
	"github.com/nonibytes/gamestore/gamestore/paging"
	"github.com/nonibytes/gamestore/gamestore/planner"
)

// Count returns the number of games matching f.
func (s *Store) Count(ctx context.Context, f *filter.Filter) (int, error) {
	q, err := s.planner.BuildCountSQL(f)
	if err != nil {
		return 0, err
	}
	var total int
	err = s.readTx(ctx, func(tx *sql.Tx) error {
		return queryCount(ctx, tx, q, &total)
	})
	return total, err
}

func queryCount(ctx context.Context, tx *sql.Tx, q planner.Query, total *int) error {
	if err := tx.QueryRowContext(ctx, q.SQL, q.Args...).Scan(total); err != nil {
		return fmt.Errorf("count query: %w", err)
	}
	return nil
}

// Page returns one keyset page. The count, the page and the requested
// keyset entries are read from one snapshot.
func (s *Store) Page(ctx context.Context, f *filter.Filter, spec order.Spec, req paging.Request) (paging.Result, error) {
	spec = f.Order(spec)

	countQ, err := s.planner.BuildCountSQL(f)
	if err != nil {
		return paging.Result{}, err
	}
	pageQ, err := s.planner.BuildPageSQL(f, spec, req.Anchor, req.Inclusive, req.Size)
	if err != nil {
		return paging.Result{}, err
	}

	var res paging.Result
	err = s.readTx(ctx, func(tx *sql.Tx) error {
		if err := queryCount(ctx, tx, countQ, &res.Total); err != nil {
			return err
		}
		if err := s.queryPage(ctx, tx, pageQ, &res); err != nil {
			return err
		}
		ranks := inRange(paging.PageStarts(req.Pages, req.Size), res.Total)
		if len(ranks) == 0 {
			return nil
		}
		keysetQ, err := s.planner.BuildKeysetSQL(f, spec, ranks)
		if err != nil {
			return err
		}
		return s.queryKeyset(ctx, tx, keysetQ, req.Size, &res)
	})
	if err != nil {
		return paging.Result{}, err
	}
	if req.Explain {
		res.Explain = append(append([]string{}, pageQ.Explain...), pageQ.SQL)
	}
	return res, nil
}

func (s *Store) queryPage(ctx context.Context, tx *sql.Tx, q planner.Query, res *paging.Result) error {
	rows, err := tx.QueryContext(ctx, q.SQL, q.Args...)
	if err != nil {
		return fmt.Errorf("page query: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		g, e, err := scanGameEntry(rows)
		if err != nil {
			return fmt.Errorf("page row: %w", err)
		}
		res.Games = append(res.Games, g)
		res.Next = &e
	}
	return rows.Err()
}

func (s *Store) queryKeyset(ctx context.Context, tx *sql.Tx, q planner.Query, size int, res *paging.Result) error {
	rows, err := tx.QueryContext(ctx, q.SQL, q.Args...)
	if err != nil {
		return fmt.Errorf("keyset query: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var rank int
		var e order.Entry
		if err := rows.Scan(&rank, &e.ID, &e.Value, &e.Title, &e.Position); err != nil {
			return fmt.Errorf("keyset row: %w", err)
		}
		if res.Keyset == nil {
			res.Keyset = make(map[int]*order.Entry)
		}
		res.Keyset[(rank-1)/size] = &e
	}
	return rows.Err()
}

// RowOf returns the 1-based rank of id among the games matching f under
// spec, or paging.NotFound.
func (s *Store) RowOf(ctx context.Context, id string, f *filter.Filter, spec order.Spec) (int, error) {
	spec = f.Order(spec)
	q, err := s.planner.BuildRowSQL(f, spec, id)
	if err != nil {
		return 0, err
	}
	rank := paging.NotFound
	err = s.readTx(ctx, func(tx *sql.Tx) error {
		err := tx.QueryRowContext(ctx, q.SQL, q.Args...).Scan(&rank)
		if errors.Is(err, sql.ErrNoRows) {
			rank = paging.NotFound
			return nil
		}
		if err != nil {
			return fmt.Errorf("row query: %w", err)
		}
		return nil
	})
	return rank, err
}

func inRange(ranks []int, total int) []int {
	var out []int
	for _, r := range ranks {
		if r <= total {
			out = append(out, r)
		}
	}
	return out
}
