package order

import (
	"fmt"
	"strings"

	"github.com/nonibytes/gamestore/gamestore/game"
)

// Key names an ordering. The set is closed: every Key has exactly one
// registered comparator.
type Key string

const (
	KeyTitle        Key = "title"
	KeyDateAdded    Key = "dateAdded"
	KeyDateModified Key = "dateModified"
	KeyReleaseDate  Key = "releaseDate"
	KeyDeveloper    Key = "developer"
	KeyPublisher    Key = "publisher"
	KeySeries       Key = "series"
	KeyPlatform     Key = "platform"
	KeyTags         Key = "tags"

	// KeyPlaylist orders by position in an explicit id list. It is selected
	// by playlist filters, never parsed from user input.
	KeyPlaylist Key = "playlist"
)

// Direction of an ordering.
type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// Spec is a requested ordering.
type Spec struct {
	Key       Key       `json:"orderBy"`
	Direction Direction `json:"direction"`
}

// DefaultSpec orders by title ascending.
func DefaultSpec() Spec {
	return Spec{Key: KeyTitle, Direction: Asc}
}

// Desc reports whether the ordering is descending.
func (s Spec) Desc() bool {
	return s.Direction == Desc
}

func (s Spec) String() string {
	return fmt.Sprintf("%s %s", s.Key, s.Direction)
}

// column describes how a key reads its primary value.
type column struct {
	sql   string
	value func(g *game.Game) string
}

var registry = map[Key]column{
	KeyTitle:        {sql: "order_title", value: func(g *game.Game) string { return TitleOf(g) }},
	KeyDateAdded:    {sql: "date_added", value: func(g *game.Game) string { return game.FormatTime(g.DateAdded) }},
	KeyDateModified: {sql: "date_modified", value: func(g *game.Game) string { return game.FormatTime(g.DateModified) }},
	KeyReleaseDate:  {sql: "release_date", value: func(g *game.Game) string { return g.ReleaseDate }},
	KeyDeveloper:    {sql: "developer", value: func(g *game.Game) string { return g.Developer }},
	KeyPublisher:    {sql: "publisher", value: func(g *game.Game) string { return g.Publisher }},
	KeySeries:       {sql: "series", value: func(g *game.Game) string { return g.Series }},
	KeyPlatform:     {sql: "platform", value: func(g *game.Game) string { return g.Platform }},
	KeyTags:         {sql: "tags_str", value: func(g *game.Game) string { return g.TagString() }},
}

// Keys returns the user-selectable keys in display order.
func Keys() []Key {
	return []Key{
		KeyTitle, KeyDateAdded, KeyDateModified, KeyReleaseDate,
		KeyDeveloper, KeyPublisher, KeySeries, KeyPlatform, KeyTags,
	}
}

// ParseKey resolves a user supplied order key, case-insensitively.
func ParseKey(s string) (Key, error) {
	for _, k := range Keys() {
		if strings.EqualFold(string(k), s) {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown order key %q", s)
}

// ParseDirection accepts asc/desc in any case. The empty string is Asc.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "asc", "ascending":
		return Asc, nil
	case "desc", "descending":
		return Desc, nil
	}
	return "", fmt.Errorf("unknown order direction %q", s)
}

// ValueColumn returns the store column holding the primary sort value of k.
// It panics for unregistered keys and for KeyPlaylist.
func ValueColumn(k Key) string {
	return mustColumn(k).sql
}

func mustColumn(k Key) column {
	c, ok := registry[k]
	if !ok {
		panic(fmt.Sprintf("order: no comparator registered for key %q", k))
	}
	return c
}

// TitleOf returns the stored order title of g, deriving it when unset.
func TitleOf(g *game.Game) string {
	if g.OrderTitle != "" {
		return g.OrderTitle
	}
	return NormalizeTitle(g.Title)
}
