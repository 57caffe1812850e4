package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nonibytes/gamestore/internal/cliopt"
	"github.com/nonibytes/gamestore/internal/cliutil"
)

func NewGetCommand(env *cliopt.Env) *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Print one game",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			c, err := cliutil.OpenCatalog(ctx, env)
			if err != nil {
				return err
			}
			defer c.Close()

			g, err := c.Get(ctx, args[0])
			if err != nil {
				return err
			}
			if cliutil.ParseOutputFormat(env.Global.Format) == cliutil.FormatIDs {
				fmt.Fprintln(env.Out, g.ID)
				return nil
			}
			cliutil.PrintJSON(env.Out, g)
			return nil
		},
	}
}

func NewDeleteCommand(env *cliopt.Env) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>...",
		Short: "Delete games by id",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			c, err := cliutil.OpenCatalog(ctx, env)
			if err != nil {
				return err
			}
			defer c.Close()

			n, err := c.Delete(ctx, args...)
			if err != nil {
				return err
			}
			fmt.Fprintf(env.Out, "Deleted %d of %d\n", n, len(args))
			return nil
		},
	}
}
