package commands

import (
	"context"
	"errors"
	"time"

	"github.com/spf13/cobra"

	"github.com/nonibytes/gamestore/gamestore"
	"github.com/nonibytes/gamestore/gamestore/order"
	"github.com/nonibytes/gamestore/gamestore/paging"
	"github.com/nonibytes/gamestore/internal/cliopt"
	"github.com/nonibytes/gamestore/internal/cliutil"
)

func NewSearchCommand(env *cliopt.Env) *cobra.Command {
	var qf queryFlags
	var size, page int
	var after, keysetFile string
	var explain bool

	cmd := &cobra.Command{
		Use:   "search [query...]",
		Short: "Search the catalog and print one page",
		Example: `  gamestore search mario @nintendo --order releaseDate --desc
  gamestore search '#puzzle' -f filters.jsonc --size 20 --page 3 --keyset-file .keyset.json
  gamestore search zelda --after <token>`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if after != "" && page > 0 {
				return gamestore.InvalidError("use --after or --page, not both")
			}
			if size <= 0 {
				size = gamestore.DefaultPageSize
			}
			size = min(size, gamestore.MaxPageSize)
			r, err := qf.resolve(args)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			c, err := cliutil.OpenCatalog(ctx, env)
			if err != nil {
				return err
			}
			defer c.Close()

			req := paging.Request{Size: size, Explain: explain}
			if after != "" {
				e, err := order.DecodeEntry(after)
				if err != nil {
					return gamestore.CursorError(err.Error())
				}
				req.Anchor = &e
			}

			var cache *cliutil.KeysetCache
			if keysetFile != "" {
				if cache, err = cliutil.LoadKeysetCache(keysetFile, r.fingerprint(), size); err != nil {
					return err
				}
			}
			if page > 1 {
				anchor, err := pageAnchor(ctx, c, r, size, page-1, cache)
				if errors.Is(err, errPastEnd) {
					env.Logger.Warn("page is past the end of the results", "page", page)
				} else if err != nil {
					return err
				}
				req.Anchor = anchor
				req.Inclusive = true
				req.Pages = []int{page - 1}
				if anchor == nil {
					// only the total is printed
					req.Size = 0
				}
			}

			start := time.Now()
			var res paging.Result
			if req.Size == 0 {
				n, err := c.Count(ctx, r.filter)
				if err != nil {
					return err
				}
				res.Total = n
			} else if res, err = c.Page(ctx, r.filter, r.spec, req); err != nil {
				return err
			}
			elapsed := time.Since(start)

			if cache != nil {
				if err := cache.Merge(res.Keyset); err != nil {
					return err
				}
				if err := cache.Save(keysetFile); err != nil {
					return err
				}
			}

			v, err := newPageView(res, r.spec, size)
			if err != nil {
				return err
			}
			printPage(env.Out, cliutil.ParseOutputFormat(env.Global.Format), v, elapsed)
			return nil
		},
	}
	qf.bind(cmd, true)
	fs := cmd.Flags()
	fs.IntVarP(&size, "size", "n", 20, "page size")
	fs.IntVarP(&page, "page", "p", 0, "1-based page to show, located through the keyset")
	fs.StringVar(&after, "after", "", "continue after this token")
	fs.StringVar(&keysetFile, "keyset-file", "", "cache page boundaries in this file between runs")
	fs.BoolVar(&explain, "explain", false, "describe how the page was computed")
	return cmd
}

var errPastEnd = errors.New("page past the end")

// pageAnchor returns the first entry of the 0-based page idx, from cache when
// it can. Otherwise it asks the store for every boundary up to idx and
// remembers them.
func pageAnchor(ctx context.Context, c *gamestore.Catalog, r resolved, size, idx int, cache *cliutil.KeysetCache) (*order.Entry, error) {
	if cache != nil {
		if e, ok := cache.Entry(idx); ok {
			return e, nil
		}
	}
	pages := make([]int, idx+1)
	for i := range pages {
		pages[i] = i
	}
	res, err := c.Page(ctx, r.filter, r.spec, paging.Request{Size: size, Pages: pages})
	if err != nil {
		return nil, err
	}
	if cache != nil {
		if err := cache.Merge(res.Keyset); err != nil {
			return nil, err
		}
	}
	e, ok := res.Keyset[idx]
	if !ok {
		return nil, errPastEnd
	}
	return e, nil
}
