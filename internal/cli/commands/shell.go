package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/peterh/liner"
	"github.com/spf13/cobra"

	"github.com/nonibytes/gamestore/gamestore"
	"github.com/nonibytes/gamestore/gamestore/filter"
	"github.com/nonibytes/gamestore/gamestore/order"
	"github.com/nonibytes/gamestore/gamestore/paging"
	"github.com/nonibytes/gamestore/internal/cliopt"
	"github.com/nonibytes/gamestore/internal/cliutil"
)

var errQuit = errors.New("quit")

// session is the state of an interactive search: the current query and
// where the next page starts.
type session struct {
	c      *gamestore.Catalog
	out    io.Writer
	text   string
	state  filter.State
	spec   order.Spec
	size   int
	anchor *order.Entry
	done   bool
}

func newSession(c *gamestore.Catalog, out io.Writer, state filter.State) *session {
	return &session{c: c, out: out, state: state, spec: order.DefaultSpec(), size: 10}
}

func (s *session) filter() *filter.Filter {
	return s.c.Compile(s.text, s.state)
}

// exec runs one input line. Lines starting with ':' are commands; anything
// else is a new query.
func (s *session) exec(ctx context.Context, line string) error {
	line = strings.TrimSpace(line)
	if line == "" {
		return nil
	}
	if !strings.HasPrefix(line, ":") {
		s.text = line
		return s.first(ctx)
	}

	parts := strings.Fields(line[1:])
	if len(parts) == 0 {
		return nil
	}
	args := parts[1:]
	switch strings.ToLower(parts[0]) {
	case "q", "quit", "exit":
		return errQuit
	case "h", "help":
		s.help()
	case "n", "next":
		if s.done {
			fmt.Fprintln(s.out, "(end of results)")
			return nil
		}
		return s.page(ctx)
	case "all":
		s.text = ""
		return s.first(ctx)
	case "order":
		if len(args) == 0 {
			fmt.Fprintf(s.out, "order: %s\n", s.spec)
			return nil
		}
		key, err := order.ParseKey(args[0])
		if err != nil {
			return err
		}
		s.spec = order.Spec{Key: key, Direction: order.Asc}
		if len(args) > 1 {
			if s.spec.Direction, err = order.ParseDirection(args[1]); err != nil {
				return err
			}
		}
		return s.first(ctx)
	case "size":
		if len(args) != 1 {
			return fmt.Errorf("usage: :size <n>")
		}
		n, err := strconv.Atoi(args[0])
		if err != nil || n <= 0 {
			return fmt.Errorf("invalid size %q", args[0])
		}
		s.size = n
		return s.first(ctx)
	case "children":
		s.state.IncludeChildren = !s.state.IncludeChildren
		fmt.Fprintf(s.out, "children included: %v\n", s.state.IncludeChildren)
		return s.first(ctx)
	case "row":
		if len(args) != 1 {
			return fmt.Errorf("usage: :row <id>")
		}
		row, err := s.c.RowOf(ctx, args[0], s.filter(), s.spec)
		if err != nil {
			return err
		}
		if row == gamestore.NotFoundRow {
			fmt.Fprintf(s.out, "%s is not in the results\n", args[0])
			return nil
		}
		fmt.Fprintf(s.out, "%s is row %s\n", args[0], humanize.Comma(int64(row)))
	case "get":
		if len(args) != 1 {
			return fmt.Errorf("usage: :get <id>")
		}
		g, err := s.c.Get(ctx, args[0])
		if err != nil {
			return err
		}
		cliutil.PrintJSON(s.out, g)
	default:
		return fmt.Errorf("unknown command :%s (try :help)", parts[0])
	}
	return nil
}

func (s *session) first(ctx context.Context) error {
	s.anchor = nil
	s.done = false
	return s.page(ctx)
}

func (s *session) page(ctx context.Context) error {
	start := time.Now()
	res, err := s.c.Page(ctx, s.filter(), s.spec, paging.Request{Size: s.size, Anchor: s.anchor})
	if err != nil {
		return err
	}
	if s.anchor == nil {
		fmt.Fprintf(s.out, "%s games, %s (%s)\n", humanize.Comma(int64(res.Total)), s.spec, time.Since(start).Round(time.Microsecond))
	}
	for _, g := range res.Games {
		printGameLine(s.out, g)
	}
	s.anchor = res.Next
	s.done = len(res.Games) < s.size
	if !s.done {
		fmt.Fprintln(s.out, "(:next for more)")
	}
	return nil
}

func (s *session) help() {
	fmt.Fprintln(s.out, `Type a query to search, e.g.  mario @nintendo -kart #platformer
  :next            next page
  :all             clear the query
  :order <key> [asc|desc]
  :size <n>        page size
  :children        toggle child games
  :row <id>        row of a game in the current results
  :get <id>        show a game
  :quit`)
}

func historyFile() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "gamestore", "history")
}

func NewShellCommand(env *cliopt.Env) *cobra.Command {
	var load, filters string
	cmd := &cobra.Command{
		Use:   "shell",
		Short: "Search interactively",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			state, err := cliutil.ReadFilterState(filters)
			if err != nil {
				return err
			}
			c, err := cliutil.OpenCatalog(ctx, env)
			if err != nil {
				return err
			}
			defer c.Close()
			if load != "" {
				if err := loadFile(ctx, c, load); err != nil {
					return err
				}
			}

			line := liner.NewLiner()
			defer line.Close()
			line.SetCtrlCAborts(true)
			if f, err := os.Open(historyFile()); err == nil {
				line.ReadHistory(f)
				f.Close()
			}

			s := newSession(c, env.Out, state)
			fmt.Fprintln(env.Out, "gamestore shell, :help for commands")
			for {
				input, err := line.Prompt("games> ")
				if err == liner.ErrPromptAborted || err == io.EOF {
					break
				}
				if err != nil {
					return err
				}
				line.AppendHistory(input)
				if err := s.exec(ctx, input); errors.Is(err, errQuit) {
					break
				} else if err != nil {
					fmt.Fprintf(env.Err, "error: %v\n", err)
				}
			}

			if path := historyFile(); path != "" {
				if err := os.MkdirAll(filepath.Dir(path), 0o755); err == nil {
					if f, err := os.Create(path); err == nil {
						line.WriteHistory(f)
						f.Close()
					}
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&load, "load", "", "import games from this file first")
	cmd.Flags().StringVarP(&filters, "filters", "f", "", "filter state file (JSON with comments)")
	return cmd
}

func loadFile(ctx context.Context, c *gamestore.Catalog, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	games, err := cliutil.ReadGames(f)
	if err != nil {
		return err
	}
	if len(games) == 0 {
		return nil
	}
	return c.Put(ctx, games...)
}
