package gamestore

import (
	"context"
	"time"

	"pkt.systems/pslog"

	"github.com/nonibytes/gamestore/gamestore/filter"
	"github.com/nonibytes/gamestore/gamestore/game"
	"github.com/nonibytes/gamestore/gamestore/ops"
	"github.com/nonibytes/gamestore/gamestore/order"
	"github.com/nonibytes/gamestore/gamestore/paging"
	"github.com/nonibytes/gamestore/gamestore/query"
	"github.com/nonibytes/gamestore/gamestore/storage"
	"github.com/nonibytes/gamestore/gamestore/storage/memory"
)

// Catalog is the search, ordering and paging front of a game store. It is
// safe for concurrent use.
type Catalog struct {
	store  Store
	opts   Options
	logger pslog.Logger
}

// New wraps an existing store.
func New(store Store, opts Options) *Catalog {
	if opts.DefaultPageSize <= 0 {
		opts.DefaultPageSize = DefaultPageSize
	}
	if opts.MaxPageSize <= 0 {
		opts.MaxPageSize = MaxPageSize
	}
	logger := opts.Logger
	if logger == nil {
		logger = pslog.NoopLogger()
	}
	return &Catalog{store: store, opts: opts, logger: logger.With("svc", "gamestore")}
}

// NewMemory returns a catalog kept in process memory.
func NewMemory(opts Options) *Catalog {
	return New(memory.New(), opts)
}

// Create creates the tables behind adapter and opens a catalog on them.
func Create(ctx context.Context, adapter storage.Adapter, opts Options) (*Catalog, error) {
	db, err := adapter.Connect(ctx)
	if err != nil {
		return nil, Wrap(ErrStoreUnavailable, "connect to database", err)
	}
	if err := adapter.CreateStore(ctx, db); err != nil {
		db.Close()
		return nil, classify("create store", err)
	}
	c := New(ops.NewStore(db, adapter), opts)
	c.logger.Info("catalog created", "backend", adapter.Backend(), "store", adapter.StoreID())
	return c, nil
}

// Open opens a catalog created earlier by Create.
func Open(ctx context.Context, adapter storage.Adapter, opts Options) (*Catalog, error) {
	db, err := adapter.Connect(ctx)
	if err != nil {
		return nil, Wrap(ErrStoreUnavailable, "connect to database", err)
	}
	if err := adapter.OpenStore(ctx, db); err != nil {
		db.Close()
		return nil, Wrap(ErrSchema, "open store", err)
	}
	c := New(ops.NewStore(db, adapter), opts)
	c.logger.Debug("catalog opened", "backend", adapter.Backend(), "store", adapter.StoreID())
	return c, nil
}

// Close closes the catalog
func (c *Catalog) Close() error {
	if err := c.store.Close(); err != nil {
		return classify("close store", err)
	}
	return nil
}

// Compile parses text and combines it with state.
func (c *Catalog) Compile(text string, state filter.State) *filter.Filter {
	f := filter.Compile(query.Parse(text), state)
	c.logger.Trace("filter compiled", "query", text, "steps", f.Explain())
	return f
}

// Search parses text, compiles it with state and returns one page.
func (c *Catalog) Search(ctx context.Context, text string, state filter.State, spec order.Spec, req paging.Request) (paging.Result, error) {
	return c.Page(ctx, c.Compile(text, state), spec, req)
}

// Page returns the games after req.Anchor under spec, the total match count
// and the keyset entries of the requested pages.
func (c *Catalog) Page(ctx context.Context, f *filter.Filter, spec order.Spec, req paging.Request) (paging.Result, error) {
	start := time.Now()
	if err := validSpec(f, spec); err != nil {
		return paging.Result{}, err
	}
	req.Size = c.pageSize(req.Size)

	res, err := c.store.Page(ctx, f, spec, req)
	err = c.finish("page", start, err)
	if err != nil {
		return paging.Result{}, err
	}
	c.logger.Debug("page served",
		"order", f.Order(spec).String(),
		"size", req.Size,
		"anchored", req.Anchor != nil,
		"returned", len(res.Games),
		"total", res.Total,
		"elapsed", time.Since(start),
	)
	return res, nil
}

// RowOf returns the 1-based rank of id in the filtered, ordered set, or
// NotFoundRow when the game does not exist or does not match.
func (c *Catalog) RowOf(ctx context.Context, id string, f *filter.Filter, spec order.Spec) (int, error) {
	start := time.Now()
	if err := validSpec(f, spec); err != nil {
		return 0, err
	}
	rank, err := c.store.RowOf(ctx, id, f, spec)
	if err = c.finish("row", start, err); err != nil {
		return 0, err
	}
	c.logger.Debug("row located", "id", id, "row", rank, "elapsed", time.Since(start))
	return rank, nil
}

// Count returns the number of games matching f.
func (c *Catalog) Count(ctx context.Context, f *filter.Filter) (int, error) {
	start := time.Now()
	n, err := c.store.Count(ctx, f)
	if err = c.finish("count", start, err); err != nil {
		return 0, err
	}
	return n, nil
}

// Put inserts or replaces games.
func (c *Catalog) Put(ctx context.Context, games ...game.Game) error {
	start := time.Now()
	for _, g := range games {
		if g.ID == "" {
			return InvalidError("game without id")
		}
	}
	if err := c.finish("put", start, c.store.Put(ctx, games...)); err != nil {
		return err
	}
	c.logger.Debug("games stored", "count", len(games))
	return nil
}

// Get loads one game.
func (c *Catalog) Get(ctx context.Context, id string) (game.Game, error) {
	start := time.Now()
	g, ok, err := c.store.Get(ctx, id)
	if err = c.finish("get", start, err); err != nil {
		return game.Game{}, err
	}
	if !ok {
		return game.Game{}, NotFoundError(id)
	}
	return g, nil
}

// Delete removes games and reports how many existed.
func (c *Catalog) Delete(ctx context.Context, ids ...string) (int, error) {
	start := time.Now()
	n, err := c.store.Delete(ctx, ids...)
	if err = c.finish("delete", start, err); err != nil {
		return 0, err
	}
	c.logger.Debug("games deleted", "requested", len(ids), "deleted", n)
	return n, nil
}

func (c *Catalog) pageSize(size int) int {
	if size <= 0 {
		return c.opts.DefaultPageSize
	}
	if size > c.opts.MaxPageSize {
		return c.opts.MaxPageSize
	}
	return size
}

// finish classifies err, records metrics and logs failures.
func (c *Catalog) finish(op string, start time.Time, err error) error {
	err = classify(op, err)
	c.opts.Metrics.Observe(op, start, string(KindOf(err)))
	if err != nil {
		c.logger.Warn("catalog operation failed", "op", op, "kind", KindOf(err), "error", err)
	}
	return err
}

func validSpec(f *filter.Filter, spec order.Spec) error {
	if f.IsPlaylist() {
		return nil
	}
	if _, ok := order.Lookup(spec.Key); !ok {
		return InvalidError("unknown order key " + string(spec.Key))
	}
	if spec.Direction != order.Asc && spec.Direction != order.Desc {
		return InvalidError("unknown order direction " + string(spec.Direction))
	}
	return nil
}
