package filter

import (
	"fmt"
	"strings"

	"github.com/nonibytes/gamestore/gamestore/game"
)

// TitleFields are searched by plain title phrases.
var TitleFields = []string{"title", "developer", "publisher", "series"}

// Clause is one conjunct of a compiled filter. Every clause can be evaluated
// in memory; the planner turns the same clauses into SQL.
type Clause interface {
	Match(g *game.Game) bool
	String() string
}

// TitleClause matches Phrase as a case-insensitive substring of any title
// field. Phrase is lower-cased.
type TitleClause struct {
	Phrase  string
	Inverse bool
}

func (c TitleClause) Match(g *game.Game) bool {
	found := false
	for _, name := range TitleFields {
		f, _ := game.Lookup(name)
		if contains(f.Text(g), c.Phrase) {
			found = true
			break
		}
	}
	return found != c.Inverse
}

func (c TitleClause) String() string {
	return fmt.Sprintf("title %s %q", verb(c.Inverse, "contains"), c.Phrase)
}

// FieldClause matches Phrase as a case-insensitive substring of one field.
// For tags the phrase must be found in a single tag. Phrase is lower-cased.
type FieldClause struct {
	Field   game.Field
	Phrase  string
	Inverse bool
}

func (c FieldClause) Match(g *game.Game) bool {
	var found bool
	if c.Field.Kind == game.KindTags {
		for _, v := range c.Field.Values(g) {
			if strings.Contains(v, c.Phrase) {
				found = true
				break
			}
		}
	} else {
		found = contains(c.Field.Text(g), c.Phrase)
	}
	return found != c.Inverse
}

func (c FieldClause) String() string {
	return fmt.Sprintf("%s %s %q", c.Field.Name, verb(c.Inverse, "contains"), c.Phrase)
}

// PresenceClause checks that a field is truthy/non-empty, or the opposite.
type PresenceClause struct {
	Field   game.Field
	Present bool
}

func (c PresenceClause) Match(g *game.Game) bool {
	return c.Field.Present(g) == c.Present
}

func (c PresenceClause) String() string {
	if c.Present {
		return fmt.Sprintf("%s is set", c.Field.Name)
	}
	return fmt.Sprintf("%s is missing", c.Field.Name)
}

// BoolClause constrains a boolean field to Value.
type BoolClause struct {
	Field game.Field
	Value bool
}

func (c BoolClause) Match(g *game.Game) bool {
	return c.Field.Bool(g) == c.Value
}

func (c BoolClause) String() string {
	return fmt.Sprintf("%s = %t", c.Field.Name, c.Value)
}

// ValueSetClause applies whitelist/blacklist membership to a multi-valued
// field. Values are lower-cased.
type ValueSetClause struct {
	Field     game.Field
	Whitelist []string
	Blacklist []string
	// All requires every whitelisted value; otherwise one suffices.
	All bool
}

func (c ValueSetClause) Match(g *game.Game) bool {
	have := make(map[string]struct{})
	for _, v := range c.Field.Values(g) {
		have[v] = struct{}{}
	}
	for _, v := range c.Blacklist {
		if _, ok := have[v]; ok {
			return false
		}
	}
	if len(c.Whitelist) == 0 {
		return true
	}
	hits := 0
	for _, v := range c.Whitelist {
		if _, ok := have[v]; ok {
			hits++
		}
	}
	if c.All {
		return hits == len(c.Whitelist)
	}
	return hits > 0
}

func (c ValueSetClause) String() string {
	join := "any of"
	if c.All {
		join = "all of"
	}
	var parts []string
	if len(c.Whitelist) > 0 {
		parts = append(parts, fmt.Sprintf("%s has %s %q", c.Field.Name, join, c.Whitelist))
	}
	if len(c.Blacklist) > 0 {
		parts = append(parts, fmt.Sprintf("%s has none of %q", c.Field.Name, c.Blacklist))
	}
	return strings.Join(parts, " and ")
}

// ChildClause excludes games that have a parent.
type ChildClause struct{}

func (ChildClause) Match(g *game.Game) bool { return !g.IsChild() }

func (ChildClause) String() string { return "exclude child games" }

// PlaylistClause keeps only games listed in IDs.
type PlaylistClause struct {
	IDs []string
	set map[string]struct{}
}

func (c PlaylistClause) Match(g *game.Game) bool {
	_, ok := c.set[g.ID]
	return ok
}

func (c PlaylistClause) String() string {
	return fmt.Sprintf("in playlist of %d games", len(c.set))
}

func newPlaylistClause(ids []string) PlaylistClause {
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return PlaylistClause{IDs: ids, set: set}
}

func contains(haystack, lowerNeedle string) bool {
	return strings.Contains(strings.ToLower(haystack), lowerNeedle)
}

func verb(inverse bool, v string) string {
	if inverse {
		return "not " + v
	}
	return v
}
