package commands

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/nonibytes/gamestore/gamestore"
	"github.com/nonibytes/gamestore/internal/cliopt"
	"github.com/nonibytes/gamestore/internal/cliutil"
)

func NewRowCommand(env *cliopt.Env) *cobra.Command {
	var qf queryFlags
	var size int
	cmd := &cobra.Command{
		Use:   "row <id> [query...]",
		Short: "Print the 1-based row of a game in a search",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := qf.resolve(args[1:])
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			c, err := cliutil.OpenCatalog(ctx, env)
			if err != nil {
				return err
			}
			defer c.Close()

			id := args[0]
			row, err := c.RowOf(ctx, id, r.filter, r.spec)
			if err != nil {
				return err
			}
			switch cliutil.ParseOutputFormat(env.Global.Format) {
			case cliutil.FormatJSON:
				cliutil.PrintJSON(env.Out, map[string]any{"id": id, "row": row})
			case cliutil.FormatIDs:
				fmt.Fprintln(env.Out, row)
			default:
				if row == gamestore.NotFoundRow {
					fmt.Fprintf(env.Out, "%s is not in the results\n", id)
					return nil
				}
				fmt.Fprintf(env.Out, "%s is row %s", id, humanize.Comma(int64(row)))
				if size > 0 {
					fmt.Fprintf(env.Out, " (page %s)", humanize.Comma(int64((row-1)/size+1)))
				}
				fmt.Fprintln(env.Out)
			}
			return nil
		},
	}
	qf.bind(cmd, true)
	cmd.Flags().IntVarP(&size, "size", "n", 20, "page size used to report the page")
	return cmd
}

func NewCountCommand(env *cliopt.Env) *cobra.Command {
	var qf queryFlags
	cmd := &cobra.Command{
		Use:   "count [query...]",
		Short: "Count the games matching a search",
		RunE: func(cmd *cobra.Command, args []string) error {
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

			n, err := c.Count(ctx, r.filter)
			if err != nil {
				return err
			}
			if cliutil.ParseOutputFormat(env.Global.Format) == cliutil.FormatPretty {
				fmt.Fprintf(env.Out, "%s games\n", humanize.Comma(int64(n)))
				return nil
			}
			fmt.Fprintln(env.Out, n)
			return nil
		},
	}
	qf.bind(cmd, false)
	return cmd
}
