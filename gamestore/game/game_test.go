package game

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitValues(t *testing.T) {
	got := SplitValues(" Acme ;  ; Nitrome;")
	if diff := cmp.Diff([]string{"Acme", "Nitrome"}, got); diff != "" {
		t.Fatalf("SplitValues mismatch (-want +got):\n%s", diff)
	}
	assert.Nil(t, SplitValues(""))
}

func TestLookupAliases(t *testing.T) {
	cases := map[string]string{
		"tag":             "tags",
		"DEV":             "developer",
		"pub":             "publisher",
		"mode":            "playMode",
		"playmode":        "playMode",
		"applicationPath": "applicationPath",
		"desc":            "originalDescription",
	}
	for in, want := range cases {
		f, ok := Lookup(in)
		require.True(t, ok, in)
		assert.Equal(t, want, f.Name, in)
	}
	_, ok := Lookup("nonsense")
	assert.False(t, ok)

	assert.Equal(t, []string{"desc", "description"}, Aliases("originalDescription"))
	assert.Empty(t, Aliases("title"))
}

func TestFormatTimeOrdersChronologically(t *testing.T) {
	a := time.Date(2009, 3, 1, 10, 0, 0, 0, time.UTC)
	b := a.Add(1500 * time.Millisecond)
	assert.Less(t, FormatTime(a), FormatTime(b))
	assert.Equal(t, "", FormatTime(time.Time{}))

	back, err := ParseTime(FormatTime(b))
	require.NoError(t, err)
	assert.True(t, back.Equal(b))
}

func TestFieldValuesAndPresence(t *testing.T) {
	g := &Game{
		ID:        "1",
		Developer: "Acme; acme ;Nitrome",
		Tags:      []string{"Puzzle", " Action "},
		Extreme:   true,
	}
	dev, _ := Lookup("developer")
	assert.Equal(t, []string{"acme", "nitrome"}, dev.Values(g))

	tags, _ := Lookup("tags")
	assert.Equal(t, []string{"puzzle", "action"}, tags.Values(g))
	assert.True(t, tags.Present(g))

	ext, _ := Lookup("extreme")
	assert.True(t, ext.Present(g))
	assert.Equal(t, "1", ext.Text(g))

	notes, _ := Lookup("notes")
	assert.False(t, notes.Present(g))

	added, _ := Lookup("dateAdded")
	assert.False(t, added.Present(g))
}

func TestEveryFieldHasColumn(t *testing.T) {
	seen := map[string]bool{}
	for _, f := range Fields() {
		require.NotEmpty(t, f.Column, f.Name)
		require.False(t, seen[f.Column], "duplicate column %s", f.Column)
		seen[f.Column] = true
	}
	for _, f := range ValueSetFields() {
		assert.Contains(t, []Kind{KindMulti, KindTags}, f.Kind)
	}
}

func TestTextFields(t *testing.T) {
	var names []string
	for _, f := range TextFields() {
		names = append(names, f.Name)
		assert.NotEqual(t, KindTags, f.Kind)
		assert.NotEqual(t, KindBool, f.Kind)
	}
	assert.Contains(t, names, "title")
	assert.Contains(t, names, "developer")
	assert.Contains(t, names, "dateAdded")
	assert.NotContains(t, names, "tags")

	title, _ := Lookup("title")
	dev, _ := Lookup("dev")
	g := &Game{Title: "Élan Vital", Developer: "ÜberSoft"}
	assert.Equal(t, "élan vital", title.Folded(g))
	assert.Equal(t, "übersoft", dev.Folded(g))
}
