// Package memory keeps a catalog in process memory. Every read filters and
// sorts the whole set, which makes it the reference the SQL stores are
// checked against.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/nonibytes/gamestore/gamestore/filter"
	"github.com/nonibytes/gamestore/gamestore/game"
	"github.com/nonibytes/gamestore/gamestore/order"
	"github.com/nonibytes/gamestore/gamestore/paging"
)

// Store is an in-memory catalog. The read lock held during a read gives each
// call a single snapshot.
type Store struct {
	mu    sync.RWMutex
	games map[string]game.Game
}

func New() *Store {
	return &Store{games: make(map[string]game.Game)}
}

// sorted filters and orders the catalog. Callers hold the read lock.
func (s *Store) sorted(f *filter.Filter, spec order.Spec) paging.Sorted {
	spec = f.Order(spec)
	var matched []game.Game
	for _, g := range s.games {
		if f.Match(&g) {
			matched = append(matched, g)
		}
	}

	if spec.Key == order.KeyPlaylist {
		pos := order.Positions(f.Playlist())
		entry := func(g *game.Game) order.Entry { return order.PlaylistEntry(g.ID, pos[g.ID]) }
		return paging.Sort(matched, spec, order.PlaylistComparator(f.Playlist()), entry)
	}
	entry := func(g *game.Game) order.Entry { return order.EntryOf(g, spec.Key) }
	return paging.Sort(matched, spec, spec.Comparator(), entry)
}

func (s *Store) Page(ctx context.Context, f *filter.Filter, spec order.Spec, req paging.Request) (paging.Result, error) {
	if err := ctx.Err(); err != nil {
		return paging.Result{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	res := s.sorted(f, spec).Page(req)
	if req.Explain {
		res.Explain = append(append([]string{}, f.Explain()...), fmt.Sprintf("memory scan of %d games", len(s.games)))
	}
	return res, nil
}

func (s *Store) RowOf(ctx context.Context, id string, f *filter.Filter, spec order.Spec) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if g, ok := s.games[id]; !ok || !f.Match(&g) {
		return paging.NotFound, nil
	}
	return s.sorted(f, spec).RankOf(id), nil
}

func (s *Store) Count(ctx context.Context, f *filter.Filter) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, g := range s.games {
		if f.Match(&g) {
			n++
		}
	}
	return n, nil
}

func (s *Store) Put(ctx context.Context, games ...game.Game) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	for _, g := range games {
		if g.ID == "" {
			return fmt.Errorf("put: game without id")
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, g := range games {
		s.games[g.ID] = order.Prepare(g)
	}
	return nil
}

func (s *Store) Get(ctx context.Context, id string) (game.Game, bool, error) {
	if err := ctx.Err(); err != nil {
		return game.Game{}, false, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	g, ok := s.games[id]
	return g, ok, nil
}

func (s *Store) Delete(ctx context.Context, ids ...string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, id := range ids {
		if _, ok := s.games[id]; ok {
			delete(s.games, id)
			n++
		}
	}
	return n, nil
}

func (s *Store) Close() error {
	return nil
}
