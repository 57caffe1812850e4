package planner

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/nonibytes/gamestore/gamestore/filter"
	"github.com/nonibytes/gamestore/gamestore/order"
	"github.com/nonibytes/gamestore/gamestore/storage"
	"github.com/nonibytes/gamestore/gamestore/storage/sqlbuilder"
)

// Query is a built statement with its arguments.
type Query struct {
	SQL     string
	Args    []any
	Explain []string
}

// Planner builds the read statements for one engine.
type Planner struct {
	style   sqlbuilder.PlaceholderStyle
	dialect storage.Dialect
}

func New(style sqlbuilder.PlaceholderStyle, dialect storage.Dialect) *Planner {
	return &Planner{style: style, dialect: dialect}
}

// sortCols are the expressions a spec orders by, primary first.
type sortCols struct {
	playlist bool
	value    string
	title    string
	position string
}

func columnsFor(spec order.Spec) sortCols {
	if spec.Key == order.KeyPlaylist {
		return sortCols{playlist: true, value: "''", title: "''", position: "pl.position"}
	}
	return sortCols{
		value:    "g." + order.ValueColumn(spec.Key),
		title:    "g.order_title",
		position: "0",
	}
}

func (s sortCols) orderBy(desc bool) string {
	dir := "ASC"
	if desc {
		dir = "DESC"
	}
	if s.playlist {
		return fmt.Sprintf("pl.position %s, g.id %s", dir, dir)
	}
	return fmt.Sprintf("%s %s, %s %s, g.id %s", s.value, dir, s.title, dir, dir)
}

// selectEntry selects the columns EntryOf needs, aliased sort_*.
func (s sortCols) selectEntry() string {
	return fmt.Sprintf("%s AS sort_value, %s AS sort_title, %s AS sort_pos", s.value, s.title, s.position)
}

// source renders the FROM clause and WHERE expression shared by every read.
// The playlist join must be rendered before the filter so '?' placeholders
// stay in textual order.
func (p *Planner) source(b *sqlbuilder.Builder, f *filter.Filter, spec order.Spec) (from, where string, explain []string, err error) {
	if spec.Key == order.KeyPlaylist && !f.IsPlaylist() {
		return "", "", nil, fmt.Errorf("planner: playlist order without a playlist filter")
	}
	from = "game g"
	if f.IsPlaylist() {
		ids, err := json.Marshal(f.Playlist())
		if err != nil {
			return "", "", nil, fmt.Errorf("planner: playlist json: %w", err)
		}
		from = fmt.Sprintf("game g JOIN %s pl ON pl.game_id = g.id", p.dialect.PlaylistSource(b, string(ids)))
	}
	out, err := CompileWhere(b, f)
	if err != nil {
		return "", "", nil, err
	}
	return from, out.Where, out.ExplainSteps, nil
}

// BuildCountSQL counts the games matching f.
func (p *Planner) BuildCountSQL(f *filter.Filter) (Query, error) {
	b := sqlbuilder.New(p.style)
	spec := f.Order(order.DefaultSpec())
	from, where, explain, err := p.source(b, f, spec)
	if err != nil {
		return Query{}, err
	}
	sql := fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE %s", from, where)
	return Query{SQL: sql, Args: b.Args(), Explain: explain}, nil
}

// BuildPageSQL selects up to limit games after the optional anchor.
func (p *Planner) BuildPageSQL(f *filter.Filter, spec order.Spec, anchor *order.Entry, inclusive bool, limit int) (Query, error) {
	b := sqlbuilder.New(p.style)
	from, where, explain, err := p.source(b, f, spec)
	if err != nil {
		return Query{}, err
	}
	cols := columnsFor(spec)
	if anchor != nil {
		where = fmt.Sprintf("%s AND %s", where, BuildAfterFilter(b, spec, *anchor, inclusive))
	}
	selectCols := make([]string, len(storage.GameColumns))
	for i, c := range storage.GameColumns {
		selectCols[i] = "g." + c
	}
	sql := fmt.Sprintf(`SELECT %s, %s
FROM %s
WHERE %s
ORDER BY %s
LIMIT %d`,
		strings.Join(selectCols, ", "), cols.selectEntry(),
		from, where, cols.orderBy(spec.Desc()), limit,
	)
	return Query{SQL: sql, Args: b.Args(), Explain: explain}, nil
}

// ranked wraps the filtered set with a ROW_NUMBER() under spec.
func (p *Planner) ranked(b *sqlbuilder.Builder, f *filter.Filter, spec order.Spec) (string, []string, error) {
	from, where, explain, err := p.source(b, f, spec)
	if err != nil {
		return "", nil, err
	}
	cols := columnsFor(spec)
	sql := fmt.Sprintf(
		"SELECT g.id AS id, %s, ROW_NUMBER() OVER (ORDER BY %s) AS rn FROM %s WHERE %s",
		cols.selectEntry(), cols.orderBy(spec.Desc()), from, where,
	)
	return sql, explain, nil
}

// BuildRowSQL ranks the filtered set and selects the 1-based rank of id.
func (p *Planner) BuildRowSQL(f *filter.Filter, spec order.Spec, id string) (Query, error) {
	b := sqlbuilder.New(p.style)
	inner, explain, err := p.ranked(b, f, spec)
	if err != nil {
		return Query{}, err
	}
	sql := fmt.Sprintf("SELECT r.rn FROM (%s) r WHERE r.id = %s", inner, b.Arg(id))
	return Query{SQL: sql, Args: b.Args(), Explain: explain}, nil
}

// BuildKeysetSQL selects the entries at the given 1-based ranks.
func (p *Planner) BuildKeysetSQL(f *filter.Filter, spec order.Spec, ranks []int) (Query, error) {
	if len(ranks) == 0 {
		return Query{}, fmt.Errorf("planner: no ranks requested")
	}
	b := sqlbuilder.New(p.style)
	inner, explain, err := p.ranked(b, f, spec)
	if err != nil {
		return Query{}, err
	}
	phs := make([]string, len(ranks))
	for i, r := range ranks {
		phs[i] = b.Arg(r)
	}
	sql := fmt.Sprintf(
		"SELECT r.rn, r.id, r.sort_value, r.sort_title, r.sort_pos FROM (%s) r WHERE r.rn IN (%s) ORDER BY r.rn",
		inner, strings.Join(phs, ", "),
	)
	return Query{SQL: sql, Args: b.Args(), Explain: explain}, nil
}

// BuildAfterFilter builds the seek predicate that keeps rows after anchor
// under spec (or at it when inclusive). The anchor is a value; the row it
// came from need not exist.
func BuildAfterFilter(builder storage.Builder, spec order.Spec, anchor order.Entry, inclusive bool) string {
	op := ">"
	if spec.Desc() {
		op = "<"
	}
	last := op
	if inclusive {
		last += "="
	}

	if spec.Key == order.KeyPlaylist {
		ph1 := builder.Arg(anchor.Position)
		ph2 := builder.Arg(anchor.Position)
		ph3 := builder.Arg(anchor.ID)
		return fmt.Sprintf("(pl.position %s %s OR (pl.position = %s AND g.id %s %s))", op, ph1, ph2, last, ph3)
	}

	col := "g." + order.ValueColumn(spec.Key)
	phV1 := builder.Arg(anchor.Value)
	phV2 := builder.Arg(anchor.Value)
	phT1 := builder.Arg(anchor.Title)
	phT2 := builder.Arg(anchor.Title)
	phID := builder.Arg(anchor.ID)
	return fmt.Sprintf(
		"(%[1]s %[2]s %[3]s OR (%[1]s = %[4]s AND (g.order_title %[2]s %[5]s OR (g.order_title = %[6]s AND g.id %[7]s %[8]s))))",
		col, op, phV1, phV2, phT1, phT2, last, phID,
	)
}
