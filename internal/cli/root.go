package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"pkt.systems/pslog"

	"github.com/nonibytes/gamestore/gamestore"
	"github.com/nonibytes/gamestore/internal/cli/commands"
	"github.com/nonibytes/gamestore/internal/cliopt"
)

// Execute runs the CLI and returns an exit code.
func Execute(ctx context.Context, argv []string, stdin io.Reader, stdout, stderr io.Writer) int {
	baseLogger := pslog.LoggerFromEnv(
		pslog.WithEnvPrefix("GAMESTORE_LOG_"),
		pslog.WithEnvOptions(pslog.Options{Mode: pslog.ModeStructured, MinLevel: pslog.InfoLevel}),
		pslog.WithEnvWriter(stderr),
	).With("app", "gamestore")

	g := cliopt.DefaultGlobalOptions()
	env := &cliopt.Env{Global: &g, Logger: baseLogger, In: stdin, Out: stdout, Err: stderr}
	cmd := NewRootCommand(env)
	cmd.SetArgs(argv)
	_, err := cmd.ExecuteContextC(ctx)
	if werr := env.WriteMetrics(); werr != nil {
		fmt.Fprintf(stderr, "write metrics: %s\n", werr)
	}
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return 1
		}
		fmt.Fprintf(stderr, "%s\n", err)
		switch gamestore.KindOf(err) {
		case gamestore.ErrInvalid, gamestore.ErrCursor:
			return 2
		case gamestore.ErrNotFound:
			return 3
		}
		return 1
	}
	return 0
}

// NewRootCommand builds the command tree around env. Global options are
// resolved into env.Global before any subcommand runs.
func NewRootCommand(env *cliopt.Env) *cobra.Command {
	g := env.Global
	baseLogger := env.Logger

	cmd := &cobra.Command{
		Use:           "gamestore",
		Short:         "gamestore searches, orders and pages a game catalog",
		SilenceErrors: true,
		SilenceUsage:  true,
		Example: `
  # create a SQLite catalog and load games into it
  gamestore --sqlite-path games.db init
  gamestore --sqlite-path games.db import games.json

  # search with the query language and jump to page 3
  gamestore search 'mario @nintendo -kart' --order releaseDate --desc --page 3 --keyset-file .keyset

  # the same against PostgreSQL
  GAMESTORE_BACKEND=postgres GAMESTORE_PG_DSN=postgres://localhost/games gamestore search zelda
`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := cliopt.Load(g); err != nil {
				return err
			}
			if g.MetricsFile != "" {
				if err := env.EnableMetrics(); err != nil {
					return err
				}
			}
			logger := baseLogger
			if level, ok := pslog.ParseLevel(strings.TrimSpace(g.LogLevel)); ok {
				logger = logger.LogLevel(level)
			}
			env.Logger = logger
			env.Logger.Debug("options resolved", "backend", g.Backend, "format", g.Format)
			return nil
		},
	}
	cmd.SetIn(env.In)
	cmd.SetOut(env.Out)
	cmd.SetErr(env.Err)
	cliopt.BindGlobalFlags(cmd.PersistentFlags(), g)

	cmd.AddCommand(
		commands.NewInitCommand(env),
		commands.NewImportCommand(env),
		commands.NewSearchCommand(env),
		commands.NewRowCommand(env),
		commands.NewCountCommand(env),
		commands.NewGetCommand(env),
		commands.NewDeleteCommand(env),
		commands.NewFieldsCommand(env),
		commands.NewShellCommand(env),
	)
	return cmd
}
