package commands

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/nonibytes/gamestore/gamestore"
	"github.com/nonibytes/gamestore/gamestore/filter"
	"github.com/nonibytes/gamestore/gamestore/order"
	"github.com/nonibytes/gamestore/gamestore/query"
	"github.com/nonibytes/gamestore/internal/cliutil"
)

// queryFlags are the filter and ordering flags shared by search, row and
// count.
type queryFlags struct {
	filters  string
	orderBy  string
	desc     bool
	children bool
	playlist []string
}

func (q *queryFlags) bind(cmd *cobra.Command, withOrder bool) {
	fs := cmd.Flags()
	fs.StringVarP(&q.filters, "filters", "f", "", "filter state file (JSON with comments)")
	fs.BoolVar(&q.children, "children", false, "include child games")
	fs.StringSliceVar(&q.playlist, "playlist", nil, "restrict to these game ids, in this order")
	if withOrder {
		fs.StringVar(&q.orderBy, "order", string(order.KeyTitle), "order key: "+keyList())
		fs.BoolVar(&q.desc, "desc", false, "descending order")
	}
}

func keyList() string {
	var names []string
	for _, k := range order.Keys() {
		names = append(names, string(k))
	}
	return strings.Join(names, "|")
}

// resolved is a query ready to run.
type resolved struct {
	parsed query.ParsedQuery
	state  filter.State
	spec   order.Spec
	filter *filter.Filter
}

func (q *queryFlags) resolve(args []string) (resolved, error) {
	state, err := cliutil.ReadFilterState(q.filters)
	if err != nil {
		return resolved{}, err
	}
	if q.children {
		state.IncludeChildren = true
	}
	if len(q.playlist) > 0 {
		state.Playlist = q.playlist
	}

	spec := order.DefaultSpec()
	if q.orderBy != "" {
		if spec.Key, err = order.ParseKey(q.orderBy); err != nil {
			return resolved{}, gamestore.InvalidError(err.Error())
		}
	}
	if q.desc {
		spec.Direction = order.Desc
	}

	parsed := query.Parse(strings.Join(args, " "))
	f := filter.Compile(parsed, state)
	return resolved{parsed: parsed, state: state, spec: f.Order(spec), filter: f}, nil
}

func (r resolved) fingerprint() string {
	return filter.Fingerprint(r.parsed, r.state, r.spec)
}
