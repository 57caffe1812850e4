package game

import (
	"sort"
	"strings"
)

// Kind tells filters and stores how a field is matched.
type Kind int

const (
	KindText Kind = iota
	KindMulti
	KindTags
	KindBool
	KindDate
)

func (k Kind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindMulti:
		return "multi"
	case KindTags:
		return "tags"
	case KindBool:
		return "bool"
	case KindDate:
		return "date"
	default:
		return "unknown"
	}
}

// Field describes one filterable attribute of a Game.
type Field struct {
	Name   string // query name, e.g. "applicationPath"
	Column string // store column
	Kind   Kind
}

var fields = []Field{
	{Name: "id", Column: "id", Kind: KindText},
	{Name: "parentGameId", Column: "parent_game_id", Kind: KindText},
	{Name: "title", Column: "title", Kind: KindText},
	{Name: "alternateTitles", Column: "alternate_titles", Kind: KindText},
	{Name: "developer", Column: "developer", Kind: KindMulti},
	{Name: "publisher", Column: "publisher", Kind: KindMulti},
	{Name: "series", Column: "series", Kind: KindMulti},
	{Name: "platform", Column: "platform", Kind: KindMulti},
	{Name: "playMode", Column: "play_mode", Kind: KindMulti},
	{Name: "library", Column: "library", Kind: KindMulti},
	{Name: "status", Column: "status", Kind: KindText},
	{Name: "notes", Column: "notes", Kind: KindText},
	{Name: "source", Column: "source", Kind: KindText},
	{Name: "applicationPath", Column: "application_path", Kind: KindText},
	{Name: "launchCommand", Column: "launch_command", Kind: KindText},
	{Name: "originalDescription", Column: "original_description", Kind: KindText},
	{Name: "language", Column: "language", Kind: KindText},
	{Name: "version", Column: "version", Kind: KindText},
	{Name: "releaseDate", Column: "release_date", Kind: KindText},
	{Name: "tags", Column: "tags_str", Kind: KindTags},
	{Name: "dateAdded", Column: "date_added", Kind: KindDate},
	{Name: "dateModified", Column: "date_modified", Kind: KindDate},
	{Name: "broken", Column: "broken", Kind: KindBool},
	{Name: "extreme", Column: "extreme", Kind: KindBool},
	{Name: "installed", Column: "installed", Kind: KindBool},
	{Name: "legacy", Column: "legacy", Kind: KindBool},
}

var aliases = map[string]string{
	"tag":         "tags",
	"dev":         "developer",
	"pub":         "publisher",
	"mode":        "playMode",
	"desc":        "originalDescription",
	"description": "originalDescription",
	"added":       "dateAdded",
	"modified":    "dateModified",
	"parent":      "parentGameId",
}

var byName = func() map[string]Field {
	m := make(map[string]Field, len(fields)+len(aliases))
	for _, f := range fields {
		m[strings.ToLower(f.Name)] = f
	}
	for alias, target := range aliases {
		m[alias] = m[strings.ToLower(target)]
	}
	return m
}()

// Lookup resolves a query field name or alias, case-insensitively.
func Lookup(name string) (Field, bool) {
	f, ok := byName[strings.ToLower(name)]
	return f, ok
}

// Fields returns every registered field sorted by name.
func Fields() []Field {
	out := make([]Field, len(fields))
	copy(out, fields)
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// ValueSetFields are the fields that carry per-value postings and accept
// whitelist/blacklist filters.
func ValueSetFields() []Field {
	var out []Field
	for _, f := range fields {
		if f.Kind == KindMulti || f.Kind == KindTags {
			out = append(out, f)
		}
	}
	return out
}

// TextFields are the fields matched by substring against their rendered
// text. Tags match per value and booleans by value, so neither is listed.
func TextFields() []Field {
	var out []Field
	for _, f := range fields {
		if f.Kind != KindTags && f.Kind != KindBool {
			out = append(out, f)
		}
	}
	return out
}

// Folded returns the lower-cased text of f on g, the form substring
// matching compares against.
func (f Field) Folded(g *Game) string {
	return strings.ToLower(f.Text(g))
}

// Text returns the rendered value of f on g, the same string the store keeps
// in f.Column.
func (f Field) Text(g *Game) string {
	switch f.Name {
	case "id":
		return g.ID
	case "parentGameId":
		return g.ParentGameID
	case "title":
		return g.Title
	case "alternateTitles":
		return g.AlternateTitles
	case "developer":
		return g.Developer
	case "publisher":
		return g.Publisher
	case "series":
		return g.Series
	case "platform":
		return g.Platform
	case "playMode":
		return g.PlayMode
	case "library":
		return g.Library
	case "status":
		return g.Status
	case "notes":
		return g.Notes
	case "source":
		return g.Source
	case "applicationPath":
		return g.ApplicationPath
	case "launchCommand":
		return g.LaunchCommand
	case "originalDescription":
		return g.OriginalDescription
	case "language":
		return g.Language
	case "version":
		return g.Version
	case "releaseDate":
		return g.ReleaseDate
	case "tags":
		return g.TagString()
	case "dateAdded":
		return FormatTime(g.DateAdded)
	case "dateModified":
		return FormatTime(g.DateModified)
	case "broken", "extreme", "installed", "legacy":
		if f.Bool(g) {
			return "1"
		}
		return "0"
	}
	return ""
}

// Bool returns the value of a KindBool field.
func (f Field) Bool(g *Game) bool {
	switch f.Name {
	case "broken":
		return g.Broken
	case "extreme":
		return g.Extreme
	case "installed":
		return g.Installed
	case "legacy":
		return g.Legacy
	}
	return false
}

// Present reports whether the field is truthy (bool) or non-empty.
func (f Field) Present(g *Game) bool {
	switch f.Kind {
	case KindBool:
		return f.Bool(g)
	case KindTags:
		return len(g.Tags) > 0
	default:
		return f.Text(g) != ""
	}
}

// Values returns the lower-cased, split values used for set membership.
func (f Field) Values(g *Game) []string {
	var raw []string
	switch f.Kind {
	case KindTags:
		for _, t := range g.Tags {
			if t = strings.TrimSpace(t); t != "" {
				raw = append(raw, t)
			}
		}
	case KindMulti:
		raw = SplitValues(f.Text(g))
	default:
		return nil
	}
	out := make([]string, 0, len(raw))
	seen := make(map[string]struct{}, len(raw))
	for _, v := range raw {
		v = strings.ToLower(v)
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

// Aliases returns the alternative query names of the field called name.
func Aliases(name string) []string {
	var out []string
	for alias, target := range aliases {
		if strings.EqualFold(target, name) {
			out = append(out, alias)
		}
	}
	sort.Strings(out)
	return out
}
