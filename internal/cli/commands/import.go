package commands

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/google/go-cmp/cmp"
	"github.com/spf13/cobra"

	"github.com/nonibytes/gamestore/gamestore"
	"github.com/nonibytes/gamestore/gamestore/filter"
	"github.com/nonibytes/gamestore/gamestore/game"
	"github.com/nonibytes/gamestore/gamestore/order"
	"github.com/nonibytes/gamestore/gamestore/paging"
	"github.com/nonibytes/gamestore/gamestore/reconcile"
	"github.com/nonibytes/gamestore/internal/cliopt"
	"github.com/nonibytes/gamestore/internal/cliutil"
)

func NewInitCommand(env *cliopt.Env) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create an empty catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := cliutil.CreateCatalog(cmd.Context(), env)
			if err != nil {
				return err
			}
			defer c.Close()
			fmt.Fprintf(env.Out, "Created %s catalog\n", env.Global.Backend)
			return nil
		},
	}
}

func NewImportCommand(env *cliopt.Env) *cobra.Command {
	var prune, dryRun bool
	cmd := &cobra.Command{
		Use:   "import [file]",
		Short: "Load games from a JSON array or JSON lines (stdin when no file is given)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var in io.Reader = env.In
			if len(args) == 1 && args[0] != "-" {
				f, err := os.Open(args[0])
				if err != nil {
					return err
				}
				defer f.Close()
				in = f
			}
			games, err := cliutil.ReadGames(in)
			if err != nil {
				return gamestore.Wrap(gamestore.ErrInvalid, "read games", err)
			}

			ctx := cmd.Context()
			c, err := cliutil.OpenCatalog(ctx, env)
			if err != nil {
				return err
			}
			defer c.Close()

			existing, err := allGames(ctx, c)
			if err != nil {
				return err
			}
			for i := range games {
				games[i] = order.Prepare(games[i])
			}
			diff := reconcile.Diff(existing, games,
				func(g game.Game) string { return g.ID },
				func(a, b game.Game) bool { return cmp.Equal(a, b) },
			)
			env.Logger.Debug("import reconciled",
				"read", len(games),
				"added", len(diff.Added),
				"changed", len(diff.Changed),
				"removed", len(diff.Removed),
			)

			if !dryRun {
				if put := append(diff.Added, diff.Changed...); len(put) > 0 {
					if err := c.Put(ctx, put...); err != nil {
						return err
					}
				}
				if prune && len(diff.Removed) > 0 {
					ids := make([]string, len(diff.Removed))
					for i, g := range diff.Removed {
						ids[i] = g.ID
					}
					if _, err := c.Delete(ctx, ids...); err != nil {
						return err
					}
				}
			}

			removed := "kept"
			if prune {
				removed = "removed"
			}
			fmt.Fprintf(env.Out, "%d added, %d changed, %d unchanged, %d %s\n",
				len(diff.Added), len(diff.Changed),
				len(games)-len(diff.Added)-len(diff.Changed), len(diff.Removed), removed)
			return nil
		},
	}
	cmd.Flags().BoolVar(&prune, "prune", false, "delete games missing from the input")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "report changes without writing")
	return cmd
}

// allGames reads the whole catalog, children included.
func allGames(ctx context.Context, c *gamestore.Catalog) ([]game.Game, error) {
	f := c.Compile("", filter.State{IncludeChildren: true})
	var out []game.Game
	var anchor *order.Entry
	for {
		res, err := c.Page(ctx, f, order.DefaultSpec(), paging.Request{Size: gamestore.MaxPageSize, Anchor: anchor})
		if err != nil {
			return nil, err
		}
		out = append(out, res.Games...)
		if len(res.Games) < gamestore.MaxPageSize {
			return out, nil
		}
		anchor = res.Next
	}
}
