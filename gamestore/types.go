package gamestore

import (
	"context"

	"pkt.systems/pslog"

	"github.com/nonibytes/gamestore/gamestore/filter"
	"github.com/nonibytes/gamestore/gamestore/game"
	"github.com/nonibytes/gamestore/gamestore/metrics"
	"github.com/nonibytes/gamestore/gamestore/order"
	"github.com/nonibytes/gamestore/gamestore/paging"
)

const (
	DefaultPageSize = 100
	MaxPageSize     = 1000
)

// NotFoundRow is the rank RowOf reports for games outside the result set.
const NotFoundRow = paging.NotFound

// Store is the backend a Catalog reads and writes. The SQL store in ops and
// the in-memory store both implement it.
type Store interface {
	Page(ctx context.Context, f *filter.Filter, spec order.Spec, req paging.Request) (paging.Result, error)
	RowOf(ctx context.Context, id string, f *filter.Filter, spec order.Spec) (int, error)
	Count(ctx context.Context, f *filter.Filter) (int, error)
	Put(ctx context.Context, games ...game.Game) error
	Get(ctx context.Context, id string) (game.Game, bool, error)
	Delete(ctx context.Context, ids ...string) (int, error)
	Close() error
}

// Options configures a Catalog.
type Options struct {
	Logger          pslog.Logger
	Metrics         *metrics.Metrics
	DefaultPageSize int
	MaxPageSize     int
}

// DefaultOptions returns sensible defaults
func DefaultOptions() Options {
	return Options{
		DefaultPageSize: DefaultPageSize,
		MaxPageSize:     MaxPageSize,
	}
}
