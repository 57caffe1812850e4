package filter

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/nonibytes/gamestore/gamestore/game"
	"github.com/nonibytes/gamestore/gamestore/order"
	"github.com/nonibytes/gamestore/gamestore/query"
)

// Filter is a compiled, immutable predicate over games. It is safe for
// concurrent use.
type Filter struct {
	clauses  []Clause
	playlist []string
	steps    []string
}

// Clauses returns the conjuncts in evaluation order.
func (f *Filter) Clauses() []Clause {
	return f.clauses
}

// Playlist returns the playlist ids when the filter is in playlist mode.
func (f *Filter) Playlist() []string {
	return f.playlist
}

// IsPlaylist reports whether the filter selects by playlist membership.
func (f *Filter) IsPlaylist() bool {
	return f.playlist != nil
}

// Match reports whether g satisfies every clause.
func (f *Filter) Match(g *game.Game) bool {
	for _, c := range f.clauses {
		if !c.Match(g) {
			return false
		}
	}
	return true
}

// Explain lists the compiled clauses and anything that was ignored.
func (f *Filter) Explain() []string {
	return f.steps
}

// Order returns the ordering the filter imposes on spec: playlist filters
// always order by list position.
func (f *Filter) Order(spec order.Spec) order.Spec {
	if f.IsPlaylist() {
		return order.Spec{Key: order.KeyPlaylist, Direction: order.Asc}
	}
	return spec
}

// Compiler accumulates clauses for one compilation.
type Compiler struct {
	clauses []Clause
	steps   []string
}

// Compile combines a parsed query and structured state into a Filter.
func Compile(q query.ParsedQuery, s State) *Filter {
	if s.Playlist != nil {
		ids := append([]string{}, s.Playlist...)
		pc := newPlaylistClause(ids)
		return &Filter{
			clauses:  []Clause{pc},
			playlist: ids,
			steps:    []string{pc.String()},
		}
	}

	c := &Compiler{}
	for _, tf := range q.TitleFilters {
		c.add(TitleClause{Phrase: strings.ToLower(tf.Phrase), Inverse: tf.Inverse})
	}
	for _, ff := range q.FieldFilters {
		c.compileField(ff)
	}
	c.compileValues(s)
	c.compileBool("broken", s.Broken)
	c.compileBool("extreme", s.Extreme)
	c.compileBool("installed", s.Installed)
	c.compileBool("legacy", s.Legacy)
	if !s.IncludeChildren {
		c.add(ChildClause{})
	}
	return &Filter{clauses: c.clauses, steps: c.steps}
}

func (c *Compiler) add(cl Clause) {
	c.clauses = append(c.clauses, cl)
	c.steps = append(c.steps, cl.String())
}

func (c *Compiler) skip(format string, args ...any) {
	c.steps = append(c.steps, "ignored: "+fmt.Sprintf(format, args...))
}

func (c *Compiler) compileField(ff query.FieldFilter) {
	switch strings.ToLower(ff.Field) {
	case "has", "is":
		c.compilePresence(ff.Phrase, !ff.Inverse)
		return
	case "missing", "not":
		c.compilePresence(ff.Phrase, ff.Inverse)
		return
	}

	f, ok := game.Lookup(ff.Field)
	if !ok {
		c.skip("unknown field %q", ff.Field)
		return
	}
	if f.Kind == game.KindBool {
		v, ok := parseBool(ff.Phrase)
		if !ok {
			c.skip("%s expects a boolean, got %q", f.Name, ff.Phrase)
			return
		}
		c.add(BoolClause{Field: f, Value: v != ff.Inverse})
		return
	}
	c.add(FieldClause{Field: f, Phrase: strings.ToLower(ff.Phrase), Inverse: ff.Inverse})
}

func (c *Compiler) compilePresence(name string, present bool) {
	f, ok := game.Lookup(name)
	if !ok {
		c.skip("unknown field %q", name)
		return
	}
	c.add(PresenceClause{Field: f, Present: present})
}

func (c *Compiler) compileValues(s State) {
	for _, f := range game.ValueSetFields() {
		vf, ok := lookupValues(s.Values, f.Name)
		if !ok {
			continue
		}
		white, black := vf.Lists()
		if len(white) == 0 && len(black) == 0 {
			continue
		}
		c.add(ValueSetClause{
			Field:     f,
			Whitelist: lowerAll(white),
			Blacklist: lowerAll(black),
			All:       vf.AndToggle,
		})
	}
	names := make([]string, 0, len(s.Values))
	for name := range s.Values {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		f, ok := game.Lookup(name)
		if !ok || (f.Kind != game.KindMulti && f.Kind != game.KindTags) {
			c.skip("no value filter for field %q", name)
		}
	}
}

// lookupValues finds the value filter for a field under its name or any
// alias, merging entries when several spellings are present.
func lookupValues(values map[string]ValueFilter, field string) (ValueFilter, bool) {
	var out ValueFilter
	found := false
	for name, vf := range values {
		f, ok := game.Lookup(name)
		if !ok || f.Name != field {
			continue
		}
		if !found {
			out = ValueFilter{Entries: make(map[string]Mode), AndToggle: vf.AndToggle}
			found = true
		}
		out.AndToggle = out.AndToggle || vf.AndToggle
		for v, m := range vf.Entries {
			out.Entries[v] = m
		}
	}
	return out, found
}

func (c *Compiler) compileBool(name string, v *bool) {
	if v == nil {
		return
	}
	f, _ := game.Lookup(name)
	c.add(BoolClause{Field: f, Value: *v})
}

func parseBool(s string) (bool, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "t", "true", "y", "yes", "on":
		return true, true
	case "0", "f", "false", "n", "no", "off":
		return false, true
	}
	return false, false
}

func lowerAll(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, v := range in {
		v = strings.ToLower(strings.TrimSpace(v))
		if _, ok := seen[v]; ok || v == "" {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

type fingerprint struct {
	Query query.ParsedQuery `json:"q"`
	State State             `json:"s"`
	Order order.Spec        `json:"o"`
}

// Fingerprint identifies a (query, state, order) combination. Cached keyset
// entries are only valid for the fingerprint they were captured under.
func Fingerprint(q query.ParsedQuery, s State, spec order.Spec) string {
	b, err := json.Marshal(fingerprint{Query: q, State: s, Order: spec})
	if err != nil {
		// every field is plain data
		panic(err)
	}
	return fmt.Sprintf("%x", sha256.Sum256(b))
}
