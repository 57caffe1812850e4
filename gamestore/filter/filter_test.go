package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nonibytes/gamestore/gamestore/game"
	"github.com/nonibytes/gamestore/gamestore/order"
	"github.com/nonibytes/gamestore/gamestore/query"
)

func ids(games []game.Game, f *Filter) []string {
	var out []string
	for i := range games {
		if f.Match(&games[i]) {
			out = append(out, games[i].ID)
		}
	}
	return out
}

func catalog() []game.Game {
	return []game.Game{
		{ID: "1", Title: "Foo", Developer: "Acme", Platform: "Flash", Tags: []string{"Puzzle", "Action"}},
		{ID: "2", Title: "Bar", Developer: "Acme; Nitrome", Platform: "HTML5", Tags: []string{"Action"}, Extreme: true},
		{ID: "3", Title: "Baz Quest", Developer: "Nitrome", Series: "Foo Saga", Platform: "Flash", Notes: "fun", Broken: true},
		{ID: "4", Title: "Foo Junior", Developer: "Acme", ParentGameID: "1"},
	}
}

func TestFilterExample(t *testing.T) {
	games := []game.Game{
		{ID: "foo", Title: "Foo", Developer: "Acme", Extreme: false},
		{ID: "bar", Title: "Bar", Developer: "Acme", Extreme: true},
	}
	f := Compile(query.Parse("-extreme:true developer:Acme"), State{Extreme: Bool(false)})
	assert.Equal(t, []string{"foo"}, ids(games, f))
}

func TestTitleFilters(t *testing.T) {
	games := catalog()
	assert.Equal(t, []string{"1", "3"}, ids(games, Compile(query.Parse("foo"), State{})))
	assert.Equal(t, []string{"2"}, ids(games, Compile(query.Parse("-foo"), State{})))
	assert.Equal(t, []string{"2", "3"}, ids(games, Compile(query.Parse("NITROME"), State{})))
}

func TestFieldFilters(t *testing.T) {
	games := catalog()
	tests := []struct {
		q    string
		want []string
	}{
		{"developer:nitro", []string{"2", "3"}},
		{"-developer:nitro", []string{"1"}},
		{"@Acme", []string{"1", "2"}},
		{"#puzz", []string{"1"}},
		{"tags:action", []string{"1", "2"}},
		{"!flash", []string{"1", "3"}},
		{"has:notes", []string{"3"}},
		{"missing:notes", []string{"1", "2"}},
		{"-has:series", []string{"1", "2"}},
		{"is:broken", []string{"3"}},
		{"not:tags", []string{"3"}},
		{"broken:yes", []string{"3"}},
		{"-broken:true", []string{"1", "2"}},
		{"broken:maybe", []string{"1", "2", "3"}},
		{"rating:5", []string{"1", "2", "3"}},
		{"has:rating", []string{"1", "2", "3"}},
	}
	for _, tt := range tests {
		t.Run(tt.q, func(t *testing.T) {
			assert.Equal(t, tt.want, ids(games, Compile(query.Parse(tt.q), State{})))
		})
	}
}

func TestUnknownFieldIsExplained(t *testing.T) {
	f := Compile(query.Parse("rating:5"), State{})
	assert.Contains(t, f.Explain(), `ignored: unknown field "rating"`)
}

func TestValueSets(t *testing.T) {
	games := catalog()

	var s State
	s.Set("developer", "acme", Whitelist)
	s.Set("developer", "Nitrome", Whitelist)
	assert.Equal(t, []string{"1", "2", "3"}, ids(games, Compile(query.ParsedQuery{}, s)))

	s.SetAnd("developer", true)
	assert.Equal(t, []string{"2"}, ids(games, Compile(query.ParsedQuery{}, s)))

	var b State
	b.Set("tags", "Action", Blacklist)
	assert.Equal(t, []string{"3"}, ids(games, Compile(query.ParsedQuery{}, b)))

	var mixed State
	mixed.Set("dev", "Acme", Whitelist)
	mixed.Set("platform", "HTML5", Blacklist)
	assert.Equal(t, []string{"1"}, ids(games, Compile(query.ParsedQuery{}, mixed)))
}

func TestTriStateBooleans(t *testing.T) {
	games := catalog()
	assert.Equal(t, []string{"2"}, ids(games, Compile(query.ParsedQuery{}, State{Extreme: Bool(true)})))
	assert.Equal(t, []string{"1", "2"}, ids(games, Compile(query.ParsedQuery{}, State{Broken: Bool(false)})))
	assert.Equal(t, []string{"1", "2", "3"}, ids(games, Compile(query.ParsedQuery{}, State{})))
}

func TestChildExclusion(t *testing.T) {
	games := catalog()
	q := query.Parse("foo")
	assert.Equal(t, []string{"1", "3"}, ids(games, Compile(q, State{})))
	assert.Equal(t, []string{"1", "3", "4"}, ids(games, Compile(q, State{IncludeChildren: true})))
}

func TestPlaylistReplacesFiltering(t *testing.T) {
	games := catalog()
	f := Compile(query.Parse("@Nitrome"), State{Playlist: []string{"4", "1", "4"}, Extreme: Bool(true)})
	require.True(t, f.IsPlaylist())
	assert.Equal(t, []string{"1", "4"}, ids(games, f))
	assert.Equal(t, order.KeyPlaylist, f.Order(order.Spec{Key: order.KeyTitle, Direction: order.Desc}).Key)

	plain := Compile(query.ParsedQuery{}, State{})
	assert.False(t, plain.IsPlaylist())
	assert.Equal(t, order.KeyTitle, plain.Order(order.DefaultSpec()).Key)
}

func TestParseState(t *testing.T) {
	data := []byte(`{
		// hide adult content
		"extreme": false,
		"values": {
			"tags": {"entries": {"Puzzle": "whitelist", "Horror": "blacklist"}, "and": true,},
		},
		"includeChildren": true,
	}`)
	s, err := ParseState(data)
	require.NoError(t, err)
	require.NotNil(t, s.Extreme)
	assert.False(t, *s.Extreme)
	assert.True(t, s.IncludeChildren)
	white, black := s.Values["tags"].Lists()
	assert.Equal(t, []string{"Puzzle"}, white)
	assert.Equal(t, []string{"Horror"}, black)
	assert.True(t, s.Values["tags"].AndToggle)

	_, err = ParseState([]byte(`{"values": {"tags": {"entries": {"x": "maybe"}}}}`))
	assert.Error(t, err)
}

func TestFingerprint(t *testing.T) {
	q := query.Parse("foo")
	a := Fingerprint(q, State{}, order.DefaultSpec())
	b := Fingerprint(q, State{}, order.DefaultSpec())
	c := Fingerprint(q, State{}, order.Spec{Key: order.KeyTitle, Direction: order.Desc})
	d := Fingerprint(q, State{Extreme: Bool(false)}, order.DefaultSpec())
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.NotEqual(t, a, d)
}
