package gamestore_test

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/nonibytes/gamestore/gamestore"
	"github.com/nonibytes/gamestore/gamestore/filter"
	"github.com/nonibytes/gamestore/gamestore/game"
	"github.com/nonibytes/gamestore/gamestore/order"
	"github.com/nonibytes/gamestore/gamestore/paging"
	"github.com/nonibytes/gamestore/gamestore/storage/sqlite"
)

var (
	developers = []string{"Nintendo", "Sega", "Valve; Gearbox", "", "id Software"}
	platforms  = []string{"Nintendo 64", "Genesis", "Windows", "Windows"}
	tagSets    = [][]string{{"Action", "Platformer"}, {"Puzzle"}, nil, {"Action"}, {"Shooter", "Action"}}
)

// fixture builds n games with repeated titles and values so every ordering
// needs its tie-breaks. Every seventh game is a child.
func fixture(n int) []game.Game {
	base := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	games := make([]game.Game, n)
	for i := range games {
		g := game.Game{
			ID:          fmt.Sprintf("g%03d", (i*37)%n),
			Title:       fmt.Sprintf("Title %d", i%6),
			Developer:   developers[i%len(developers)],
			Publisher:   developers[(i+2)%len(developers)],
			Series:      []string{"", "Mario", "Zelda"}[i%3],
			Platform:    platforms[i%len(platforms)],
			Tags:        tagSets[i%len(tagSets)],
			ReleaseDate: fmt.Sprintf("199%d-0%d-01", i%10, i%9+1),
			DateAdded:   base.Add(time.Duration(i%8) * time.Hour),
			// modified times are unique
			DateModified: base.Add(time.Duration(i) * time.Minute),
			Broken:       i%5 == 0,
			Installed:    i%2 == 0,
		}
		if i%7 == 6 {
			g.ParentGameID = "g000"
		}
		if i%11 == 3 {
			g.Title = "Élan Vital"
		}
		games[i] = g
	}
	return games
}

func newSQLite(t *testing.T, games []game.Game) *gamestore.Catalog {
	t.Helper()
	ctx := context.Background()
	c, err := gamestore.Create(ctx, sqlite.New(filepath.Join(t.TempDir(), "games.db")), gamestore.DefaultOptions())
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	require.NoError(t, c.Put(ctx, games...))
	return c
}

func newMemory(t *testing.T, games []game.Game) *gamestore.Catalog {
	t.Helper()
	c := gamestore.NewMemory(gamestore.DefaultOptions())
	require.NoError(t, c.Put(context.Background(), games...))
	return c
}

func ids(games []game.Game) []string {
	out := make([]string, 0, len(games))
	for _, g := range games {
		out = append(out, g.ID)
	}
	return out
}

// walk pages through the whole result set.
func walk(t *testing.T, c *gamestore.Catalog, f *filter.Filter, spec order.Spec, size int) []string {
	t.Helper()
	var out []string
	var anchor *order.Entry
	for i := 0; ; i++ {
		require.Less(t, i, 1000, "walk does not terminate")
		res, err := c.Page(context.Background(), f, spec, paging.Request{Size: size, Anchor: anchor})
		require.NoError(t, err)
		if len(res.Games) == 0 {
			return out
		}
		out = append(out, ids(res.Games)...)
		anchor = res.Next
	}
}

func TestSQLiteMatchesMemory(t *testing.T) {
	games := fixture(60)
	sql := newSQLite(t, games)
	mem := newMemory(t, games)

	queries := []struct {
		text  string
		state filter.State
	}{
		{"", filter.State{}},
		{"", filter.State{IncludeChildren: true}},
		{"title 1", filter.State{}},
		{"-sega @nintendo", filter.State{}},
		{"#action", filter.State{Installed: filter.Bool(true)}},
		{"missing:series", filter.State{}},
		{`platform:"windows"`, filter.State{Broken: filter.Bool(false)}},
	}
	withValues := filter.State{}
	withValues.Set("tags", "Action", filter.Whitelist)
	withValues.Set("developer", "valve", filter.Blacklist)
	queries = append(queries, struct {
		text  string
		state filter.State
	}{"", withValues})

	for _, q := range queries {
		for _, key := range order.Keys() {
			for _, dir := range []order.Direction{order.Asc, order.Desc} {
				spec := order.Spec{Key: key, Direction: dir}
				name := fmt.Sprintf("%q/%s", q.text, spec)
				f := sql.Compile(q.text, q.state)

				want := walk(t, mem, f, spec, 1000)
				got := walk(t, sql, f, spec, 7)
				if diff := cmp.Diff(want, got); diff != "" {
					t.Fatalf("%s: order mismatch (-memory +sqlite):\n%s", name, diff)
				}

				n, err := sql.Count(context.Background(), f)
				require.NoError(t, err)
				assert.Equal(t, len(want), n, name)
			}
		}
	}
}

func TestSQLiteRowOfMatchesPage(t *testing.T) {
	ctx := context.Background()
	games := fixture(40)
	c := newSQLite(t, games)
	f := c.Compile("", filter.State{})

	for _, spec := range []order.Spec{
		{Key: order.KeyDeveloper, Direction: order.Asc},
		{Key: order.KeyDateAdded, Direction: order.Desc},
		{Key: order.KeyTags, Direction: order.Desc},
	} {
		res, err := c.Page(ctx, f, spec, paging.Request{Size: 1000})
		require.NoError(t, err)
		for i, g := range res.Games {
			row, err := c.RowOf(ctx, g.ID, f, spec)
			require.NoError(t, err)
			assert.Equal(t, i+1, row, "%s %s", spec, g.ID)
		}
	}

	// a child is excluded by default
	row, err := c.RowOf(ctx, games[6].ID, f, order.DefaultSpec())
	require.NoError(t, err)
	assert.Equal(t, gamestore.NotFoundRow, row)

	row, err = c.RowOf(ctx, "nope", f, order.DefaultSpec())
	require.NoError(t, err)
	assert.Equal(t, gamestore.NotFoundRow, row)
}

func TestSQLiteKeyset(t *testing.T) {
	ctx := context.Background()
	games := fixture(50)
	sql := newSQLite(t, games)
	mem := newMemory(t, games)
	spec := order.Spec{Key: order.KeyPlatform, Direction: order.Desc}
	f := sql.Compile("", filter.State{IncludeChildren: true})

	req := paging.Request{Size: 10, Pages: []int{0, 2, 4, 9}}
	got, err := sql.Page(ctx, f, spec, req)
	require.NoError(t, err)
	want, err := mem.Page(ctx, f, spec, req)
	require.NoError(t, err)

	assert.Equal(t, want.Keyset, got.Keyset)
	assert.Len(t, got.Keyset, 3, "page 9 is past the end")

	// jumping with a keyset entry lands on that page
	jump, err := sql.Page(ctx, f, spec, paging.Request{Size: 10, Anchor: got.Keyset[2], Inclusive: true})
	require.NoError(t, err)
	all := walk(t, mem, f, spec, 1000)
	assert.Equal(t, all[20:30], ids(jump.Games))
}

func TestSQLitePlaylist(t *testing.T) {
	ctx := context.Background()
	games := fixture(20)
	sql := newSQLite(t, games)
	mem := newMemory(t, games)

	// duplicates keep their first position; unknown ids are dropped
	list := []string{"g005", "g001", "missing", "g013", "g001", "g006"}
	for _, c := range []*gamestore.Catalog{sql, mem} {
		f := c.Compile("title:nothing-matches", filter.State{Playlist: list})
		for _, dir := range []order.Direction{order.Asc, order.Desc} {
			got := walk(t, c, f, order.Spec{Key: order.KeyTitle, Direction: dir}, 2)
			assert.Equal(t, []string{"g005", "g001", "g013", "g006"}, got)
		}
		row, err := c.RowOf(ctx, "g013", f, order.DefaultSpec())
		require.NoError(t, err)
		assert.Equal(t, 3, row)
	}
}

func TestSQLiteDeletedAnchor(t *testing.T) {
	ctx := context.Background()
	games := fixture(30)
	c := newSQLite(t, games)
	f := c.Compile("", filter.State{IncludeChildren: true})
	spec := order.DefaultSpec()

	first, err := c.Page(ctx, f, spec, paging.Request{Size: 10})
	require.NoError(t, err)
	all := walk(t, c, f, spec, 1000)

	n, err := c.Delete(ctx, first.Next.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	next, err := c.Page(ctx, f, spec, paging.Request{Size: 10, Anchor: first.Next})
	require.NoError(t, err)
	assert.Equal(t, all[10:20], ids(next.Games))
	assert.Equal(t, 29, next.Total)
}

func TestSQLiteEmptyResult(t *testing.T) {
	c := newSQLite(t, fixture(10))
	res, err := c.Search(context.Background(), "title:zzz", filter.State{}, order.DefaultSpec(), paging.Request{Size: 5, Pages: []int{0}})
	require.NoError(t, err)
	assert.Empty(t, res.Games)
	assert.Nil(t, res.Next)
	assert.Empty(t, res.Keyset)
	assert.Zero(t, res.Total)
}

func TestSQLiteRoundTrip(t *testing.T) {
	ctx := context.Background()
	g := game.Game{
		ID:           "rt",
		Title:        "  Round   Trip ",
		Developer:    "A; B",
		Tags:         []string{" x ", "", "y"},
		DateAdded:    time.Date(2021, 5, 6, 7, 8, 9, 123456789, time.FixedZone("x", 3600)),
		Installed:    true,
		ParentGameID: "p",
	}
	c := newSQLite(t, []game.Game{g})
	got, err := c.Get(ctx, "rt")
	require.NoError(t, err)
	assert.Equal(t, order.Prepare(g), got)

	_, err = c.Get(ctx, "missing")
	assert.True(t, gamestore.IsKind(err, gamestore.ErrNotFound))

	n, err := c.Delete(ctx, "rt", "missing")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestSQLiteReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "games.db")
	c, err := gamestore.Create(ctx, sqlite.New(path), gamestore.DefaultOptions())
	require.NoError(t, err)
	require.NoError(t, c.Put(ctx, fixture(5)...))
	require.NoError(t, c.Close())

	c, err = gamestore.Open(ctx, sqlite.New(path), gamestore.DefaultOptions())
	require.NoError(t, err)
	defer c.Close()
	n, err := c.Count(ctx, c.Compile("", filter.State{IncludeChildren: true}))
	require.NoError(t, err)
	assert.Equal(t, 5, n)
}

func TestSQLiteCanceledContext(t *testing.T) {
	c := newSQLite(t, fixture(5))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := c.Page(ctx, c.Compile("", filter.State{}), order.DefaultSpec(), paging.Request{})
	require.Error(t, err)
	assert.True(t, gamestore.IsKind(err, gamestore.ErrQueryFailed))
}

func TestSQLiteFoldsNonASCIICase(t *testing.T) {
	ctx := context.Background()
	games := []game.Game{
		{ID: "elan", Title: "Élan Vital", Developer: "ÜberSoft", Notes: "ÇA VA"},
		{ID: "plain", Title: "Elan", Developer: "Uber"},
		{ID: "other", Title: "Straße", Publisher: "ÉDITIONS"},
	}
	lite := newSQLite(t, games)
	mem := newMemory(t, games)

	cases := []struct {
		text string
		want []string
	}{
		{"Élan", []string{"elan"}},
		{"élan", []string{"elan"}},
		{"ÉLAN VITAL", []string{"elan"}},
		{"elan", []string{"plain"}},
		{"@ÜberSoft", []string{"elan"}},
		{"@übersoft", []string{"elan"}},
		{"developer:ÜBER", []string{"elan"}},
		{"notes:ça", []string{"elan"}},
		{"éditions", []string{"other"}},
		{"STRASSE", nil},
		{"straße", []string{"other"}},
		{"-élan", []string{"plain", "other"}},
	}
	for _, tc := range cases {
		t.Run(tc.text, func(t *testing.T) {
			for name, c := range map[string]*gamestore.Catalog{"sqlite": lite, "memory": mem} {
				f := c.Compile(tc.text, filter.State{})
				res, err := c.Page(ctx, f, order.DefaultSpec(), paging.Request{Size: 10})
				require.NoError(t, err)
				assert.ElementsMatch(t, tc.want, ids(res.Games), name)
				assert.Equal(t, len(tc.want), res.Total, name)
			}
		})
	}

	// folded text follows updates and deletes
	require.NoError(t, lite.Put(ctx, game.Game{ID: "elan", Title: "Öde"}))
	res, err := lite.Page(ctx, lite.Compile("élan", filter.State{}), order.DefaultSpec(), paging.Request{Size: 10})
	require.NoError(t, err)
	assert.Empty(t, res.Games)
	res, err = lite.Page(ctx, lite.Compile("ÖDE", filter.State{}), order.DefaultSpec(), paging.Request{Size: 10})
	require.NoError(t, err)
	assert.Equal(t, []string{"elan"}, ids(res.Games))

	_, err = lite.Delete(ctx, "elan")
	require.NoError(t, err)
	n, err := lite.Count(ctx, lite.Compile("öde", filter.State{}))
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestSQLiteOpenRejectsOldSchema(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "games.db")
	c, err := gamestore.Create(ctx, sqlite.New(path), gamestore.DefaultOptions())
	require.NoError(t, err)
	require.NoError(t, c.Close())

	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	_, err = db.ExecContext(ctx, "UPDATE meta SET value = '1' WHERE key = 'gamestore_version'")
	require.NoError(t, err)
	require.NoError(t, db.Close())

	_, err = gamestore.Open(ctx, sqlite.New(path), gamestore.DefaultOptions())
	require.Error(t, err)
	assert.True(t, gamestore.IsKind(err, gamestore.ErrSchema))
}
