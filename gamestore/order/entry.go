package order

import (
	"cmp"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/nonibytes/gamestore/gamestore/game"
)

// Entry is the sort key snapshot of one row: enough to re-seek to the row
// without fetching it again. The row itself need not exist any more.
type Entry struct {
	ID       string `json:"id"`
	Value    string `json:"v,omitempty"`
	Title    string `json:"t,omitempty"`
	Position int    `json:"p,omitempty"`
}

// EntryOf captures the sort key of g under k. For KeyPlaylist use
// PlaylistEntry instead.
func EntryOf(g *game.Game, k Key) Entry {
	c := mustColumn(k)
	return Entry{ID: g.ID, Value: c.value(g), Title: TitleOf(g)}
}

// PlaylistEntry captures the sort key of a playlist row.
func PlaylistEntry(id string, position int) Entry {
	return Entry{ID: id, Position: position}
}

// CompareEntries orders two entries ascending under k. Ties on the primary
// value fall back to the order title, then to the id, so only entries with
// the same id compare equal.
func CompareEntries(k Key, a, b Entry) int {
	if k == KeyPlaylist {
		if c := cmp.Compare(a.Position, b.Position); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	}
	mustColumn(k)
	if c := strings.Compare(a.Value, b.Value); c != 0 {
		return c
	}
	if c := strings.Compare(a.Title, b.Title); c != 0 {
		return c
	}
	return strings.Compare(a.ID, b.ID)
}

// Compare orders two entries under s, negating the ascending result for
// descending orderings.
func (s Spec) Compare(a, b Entry) int {
	c := CompareEntries(s.Key, a, b)
	if s.Desc() {
		return -c
	}
	return c
}

// Comparator is a total order over games.
type Comparator func(a, b *game.Game) int

// Lookup returns the ascending comparator registered for k.
func Lookup(k Key) (Comparator, bool) {
	if _, ok := registry[k]; !ok {
		return nil, false
	}
	return func(a, b *game.Game) int {
		return CompareEntries(k, EntryOf(a, k), EntryOf(b, k))
	}, true
}

// ComparatorFor returns the ascending comparator registered for k. An
// unregistered key is a programming error and panics.
func ComparatorFor(k Key) Comparator {
	c, ok := Lookup(k)
	if !ok {
		panic(fmt.Sprintf("order: no comparator registered for key %q", k))
	}
	return c
}

// Comparator returns the comparator for s with direction applied.
func (s Spec) Comparator() Comparator {
	asc := ComparatorFor(s.Key)
	if !s.Desc() {
		return asc
	}
	return func(a, b *game.Game) int { return -asc(a, b) }
}

// PlaylistComparator orders games by first position in ids. Games missing
// from ids sort after every listed game, by id.
func PlaylistComparator(ids []string) Comparator {
	pos := Positions(ids)
	return func(a, b *game.Game) int {
		pa, oka := pos[a.ID]
		pb, okb := pos[b.ID]
		switch {
		case oka && !okb:
			return -1
		case !oka && okb:
			return 1
		}
		return CompareEntries(KeyPlaylist, PlaylistEntry(a.ID, pa), PlaylistEntry(b.ID, pb))
	}
}

// Positions maps each id to the index of its first occurrence.
func Positions(ids []string) map[string]int {
	pos := make(map[string]int, len(ids))
	for i, id := range ids {
		if _, ok := pos[id]; !ok {
			pos[id] = i
		}
	}
	return pos
}

// EncodeEntry renders e as an opaque URL-safe token.
func EncodeEntry(e Entry) (string, error) {
	b, err := json.Marshal(e)
	if err != nil {
		return "", fmt.Errorf("entry json: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// DecodeEntry parses a token produced by EncodeEntry.
func DecodeEntry(tok string) (Entry, error) {
	b, err := base64.RawURLEncoding.DecodeString(tok)
	if err != nil {
		return Entry{}, fmt.Errorf("entry token: base64 decode: %w", err)
	}
	var e Entry
	if err := json.Unmarshal(b, &e); err != nil {
		return Entry{}, fmt.Errorf("entry token: json: %w", err)
	}
	if e.ID == "" {
		return Entry{}, fmt.Errorf("entry token: missing id")
	}
	return e, nil
}
