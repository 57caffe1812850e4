package planner

import (
	"database/sql"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nonibytes/gamestore/gamestore/filter"
	"github.com/nonibytes/gamestore/gamestore/order"
	"github.com/nonibytes/gamestore/gamestore/query"
	"github.com/nonibytes/gamestore/gamestore/storage"
	"github.com/nonibytes/gamestore/gamestore/storage/sqlbuilder"
)

type testDialect struct{}

func (testDialect) PlaylistSource(b storage.Builder, idsJSON string) string {
	return fmt.Sprintf("(SELECT value AS game_id, key AS position FROM json_each(%s))", b.Arg(idsJSON))
}

func (testDialect) ReadTxOptions() *sql.TxOptions { return nil }

func compile(text string, s filter.State) *filter.Filter {
	return filter.Compile(query.Parse(text), s)
}

func TestBuildAfterFilterShape(t *testing.T) {
	b := sqlbuilder.New(sqlbuilder.PlaceholderDollar)
	anchor := order.Entry{ID: "g1", Value: "doom", Title: "doom"}
	got := BuildAfterFilter(b, order.Spec{Key: order.KeyTitle, Direction: order.Asc}, anchor, false)
	assert.Equal(t,
		"(g.order_title > $1 OR (g.order_title = $2 AND (g.order_title > $3 OR (g.order_title = $4 AND g.id > $5))))",
		got)
	assert.Equal(t, []any{"doom", "doom", "doom", "doom", "g1"}, b.Args())

	b = sqlbuilder.New(sqlbuilder.PlaceholderQuestion)
	got = BuildAfterFilter(b, order.Spec{Key: order.KeyDeveloper, Direction: order.Desc}, anchor, true)
	assert.Contains(t, got, "g.developer < ?")
	assert.Contains(t, got, "g.id <= ?")
	assert.Equal(t, 5, b.Len())
}

func TestBuildAfterFilterPlaylist(t *testing.T) {
	b := sqlbuilder.New(sqlbuilder.PlaceholderDollar)
	got := BuildAfterFilter(b, order.Spec{Key: order.KeyPlaylist, Direction: order.Asc}, order.PlaylistEntry("g2", 3), false)
	assert.Equal(t, "(pl.position > $1 OR (pl.position = $2 AND g.id > $3))", got)
	assert.Equal(t, []any{3, 3, "g2"}, b.Args())
}

func TestPlaceholdersFollowTextualOrder(t *testing.T) {
	p := New(sqlbuilder.PlaceholderQuestion, testDialect{})
	f := compile("mario developer:nintendo", filter.State{Playlist: []string{"a", "b"}})
	anchor := order.PlaylistEntry("a", 0)

	q, err := p.BuildPageSQL(f, f.Order(order.DefaultSpec()), &anchor, false, 10)
	require.NoError(t, err)
	assert.Equal(t, strings.Count(q.SQL, "?"), len(q.Args))
	require.NotEmpty(t, q.Args)
	assert.Equal(t, `["a","b"]`, q.Args[0], "playlist source comes first")
	assert.Equal(t, "a", q.Args[len(q.Args)-1], "seek id comes last")
	assert.Contains(t, q.SQL, "ORDER BY pl.position ASC, g.id ASC")
	assert.Contains(t, q.SQL, "LIMIT 10")
}

func TestPageSQLOrdersByTotalOrder(t *testing.T) {
	p := New(sqlbuilder.PlaceholderDollar, testDialect{})
	f := compile("", filter.State{})
	for _, dir := range []order.Direction{order.Asc, order.Desc} {
		q, err := p.BuildPageSQL(f, order.Spec{Key: order.KeyDateAdded, Direction: dir}, nil, false, 5)
		require.NoError(t, err)
		want := fmt.Sprintf("ORDER BY g.date_added %[1]s, g.order_title %[1]s, g.id %[1]s", strings.ToUpper(string(dir)))
		assert.Contains(t, q.SQL, want)
		assert.NotContains(t, q.SQL, "pl.position")
	}
}

func TestRowAndKeysetSQL(t *testing.T) {
	p := New(sqlbuilder.PlaceholderDollar, testDialect{})
	f := compile("title:zelda", filter.State{})
	spec := order.Spec{Key: order.KeyTitle, Direction: order.Asc}

	row, err := p.BuildRowSQL(f, spec, "g9")
	require.NoError(t, err)
	assert.Contains(t, row.SQL, "ROW_NUMBER() OVER (ORDER BY g.order_title ASC, g.order_title ASC, g.id ASC)")
	assert.Equal(t, "g9", row.Args[len(row.Args)-1])
	assert.Contains(t, row.SQL, fmt.Sprintf("r.id = $%d", len(row.Args)))

	ks, err := p.BuildKeysetSQL(f, spec, []int{1, 11, 21})
	require.NoError(t, err)
	assert.Equal(t, []any{1, 11, 21}, ks.Args[len(ks.Args)-3:])
	assert.Contains(t, ks.SQL, "ORDER BY r.rn")

	_, err = p.BuildKeysetSQL(f, spec, nil)
	assert.Error(t, err)
}

func TestPlaylistOrderNeedsPlaylist(t *testing.T) {
	p := New(sqlbuilder.PlaceholderQuestion, testDialect{})
	_, err := p.BuildPageSQL(compile("", filter.State{}), order.Spec{Key: order.KeyPlaylist, Direction: order.Asc}, nil, false, 5)
	assert.Error(t, err)
}

func TestCountSQL(t *testing.T) {
	p := New(sqlbuilder.PlaceholderQuestion, testDialect{})
	q, err := p.BuildCountSQL(compile("", filter.State{IncludeChildren: true}))
	require.NoError(t, err)
	assert.Equal(t, "SELECT COUNT(*) FROM game g WHERE 1=1", q.SQL)
	assert.Empty(t, q.Args)
}

func TestSubstringMatchUsesFoldedText(t *testing.T) {
	p := New(sqlbuilder.PlaceholderDollar, testDialect{})
	q, err := p.BuildCountSQL(compile("Élan developer:ÜberSoft", filter.State{IncludeChildren: true}))
	require.NoError(t, err)
	assert.NotContains(t, q.SQL, "lower(")
	assert.Contains(t, q.SQL, "t.field IN ($1, $2, $3, $4) AND t.text LIKE $5")
	assert.Contains(t, q.SQL, "t.field = $6 AND t.text LIKE $7")
	assert.Equal(t, []any{"title", "developer", "publisher", "series", "%élan%", "developer", "%übersoft%"}, q.Args)
}
